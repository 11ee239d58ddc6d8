//-------------------------------------------------------------------------
//
// pgEdge Northwind BI
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for northwind-bi.
// Configuration is loaded from config files, NORTHWIND_BI_* environment
// variables and CLI flags. CLI flags take precedence over the environment,
// which takes precedence over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Source kinds understood by the data context.
const (
	SourcePostgres = "postgres"
	SourceMySQL    = "mysql"
	SourceCSV      = "csv"
	SourceSnapshot = "snapshot"
)

// Config holds all configuration for northwind-bi.
type Config struct {
	// Connection is the database connection string. A PostgreSQL URL for
	// the postgres source and the loader, a go-sql-driver DSN for mysql.
	Connection string `mapstructure:"connection"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// LogFormat is "pretty" or "json".
	LogFormat string `mapstructure:"log_format"`

	// Source selects where the dashboard reads its data from.
	Source SourceConfig `mapstructure:"source"`

	// Load holds configuration for the load subcommand.
	Load LoadConfig `mapstructure:"load"`

	// Serve holds configuration for the serve subcommand.
	Serve ServeConfig `mapstructure:"serve"`

	// Generate holds configuration for the generate subcommand.
	Generate GenerateConfig `mapstructure:"generate"`
}

// SourceConfig holds data source configuration.
type SourceConfig struct {
	// Kind is one of postgres, mysql, csv, snapshot.
	Kind string `mapstructure:"kind"`

	// Path is the directory (csv) or file (snapshot) to read.
	Path string `mapstructure:"path"`

	// MetricsTable is the qualified name of the metrics fact table.
	MetricsTable string `mapstructure:"metrics_table"`

	// ChurnTable is the qualified name of the churn summary table.
	ChurnTable string `mapstructure:"churn_table"`
}

// LoadConfig holds configuration for CSV ingestion.
type LoadConfig struct {
	// Dir is the directory scanned for CSV files.
	Dir string `mapstructure:"dir"`

	// Pattern is the glob matched against file names in Dir.
	Pattern string `mapstructure:"pattern"`

	// Delimiter is the field separator. Only the first rune is used.
	Delimiter string `mapstructure:"delimiter"`

	// Schema is the target PostgreSQL schema for loaded tables.
	Schema string `mapstructure:"schema"`
}

// ServeConfig holds configuration for the dashboard API server.
type ServeConfig struct {
	// Addr is the listen address.
	Addr string `mapstructure:"addr"`

	// ReadTimeout is the HTTP read timeout in seconds.
	ReadTimeout int `mapstructure:"read_timeout"`

	// WriteTimeout is the HTTP write timeout in seconds.
	WriteTimeout int `mapstructure:"write_timeout"`
}

// GenerateConfig holds configuration for synthetic data generation.
type GenerateConfig struct {
	// Dir is the output directory for generated CSV files.
	Dir string `mapstructure:"dir"`

	// Customers is the number of distinct customers to generate.
	Customers int `mapstructure:"customers"`

	// Products is the number of distinct products to generate.
	Products int `mapstructure:"products"`

	// Employees is the number of distinct employees to generate.
	Employees int `mapstructure:"employees"`

	// Rows is the number of fact rows to generate.
	Rows int `mapstructure:"rows"`

	// Seed makes generation reproducible when non-zero.
	Seed uint64 `mapstructure:"seed"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "pretty",
		Source: SourceConfig{
			Kind:         SourcePostgres,
			MetricsTable: "public_metrics.metrics",
			ChurnTable:   "public_metrics.churns",
		},
		Load: LoadConfig{
			Dir:       "./data",
			Pattern:   "*.csv",
			Delimiter: ";",
			Schema:    "public",
		},
		Serve: ServeConfig{
			Addr:         ":8080",
			ReadTimeout:  15,
			WriteTimeout: 30,
		},
		Generate: GenerateConfig{
			Dir:       "./data",
			Customers: 90,
			Products:  77,
			Employees: 9,
			Rows:      2000,
		},
	}
}

// envKeys may be set from the environment.
var envKeys = []string{
	"connection",
	"log_level",
	"log_format",
	"source.kind",
	"source.path",
	"source.metrics_table",
	"source.churn_table",
	"load.schema",
	"serve.addr",
}

// Load reads configuration from config files and the environment.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./northwind-bi.yaml
// 3. ~/.config/northwind-bi/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("northwind-bi")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "northwind-bi"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// NORTHWIND_BI_CONNECTION, NORTHWIND_BI_SOURCE_KIND, ...
	v.SetEnvPrefix("NORTHWIND_BI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment for %s: %w", key, err)
		}
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// ValidateSource checks configuration required to load dashboard data.
func (c *Config) ValidateSource() error {
	switch c.Source.Kind {
	case SourcePostgres, SourceMySQL:
		if c.Connection == "" {
			return fmt.Errorf("connection string is required for source %q", c.Source.Kind)
		}
		if c.Source.MetricsTable == "" || c.Source.ChurnTable == "" {
			return fmt.Errorf("metrics_table and churn_table are required")
		}
	case SourceCSV, SourceSnapshot:
		if c.Source.Path == "" {
			return fmt.Errorf("source path is required for source %q", c.Source.Kind)
		}
	case "":
		return fmt.Errorf("source kind is required")
	default:
		return fmt.Errorf("unknown source kind %q (want postgres, mysql, csv or snapshot)", c.Source.Kind)
	}
	return nil
}

// ValidateLoad checks configuration required for the load command.
func (c *Config) ValidateLoad() error {
	if c.Connection == "" {
		return fmt.Errorf("connection string is required")
	}
	if c.Load.Dir == "" {
		return fmt.Errorf("load directory is required")
	}
	if c.Load.Delimiter == "" {
		return fmt.Errorf("delimiter must not be empty")
	}
	if c.Load.Pattern == "" {
		return fmt.Errorf("file pattern must not be empty")
	}
	if _, err := filepath.Match(c.Load.Pattern, ""); err != nil {
		return fmt.Errorf("invalid file pattern %q: %w", c.Load.Pattern, err)
	}
	return nil
}

// ValidateServe checks configuration required for the serve command.
func (c *Config) ValidateServe() error {
	if err := c.ValidateSource(); err != nil {
		return err
	}
	if c.Serve.Addr == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.Serve.ReadTimeout < 1 {
		return fmt.Errorf("read_timeout must be at least 1 second")
	}
	if c.Serve.WriteTimeout < 1 {
		return fmt.Errorf("write_timeout must be at least 1 second")
	}
	return nil
}

// ValidateGenerate checks configuration required for the generate command.
func (c *Config) ValidateGenerate() error {
	if c.Generate.Dir == "" {
		return fmt.Errorf("output directory is required")
	}
	if c.Generate.Customers < 1 {
		return fmt.Errorf("customers must be at least 1")
	}
	if c.Generate.Products < 1 {
		return fmt.Errorf("products must be at least 1")
	}
	if c.Generate.Employees < 1 {
		return fmt.Errorf("employees must be at least 1")
	}
	if c.Generate.Rows < 1 {
		return fmt.Errorf("rows must be at least 1")
	}
	return nil
}
