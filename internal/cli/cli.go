//-------------------------------------------------------------------------
//
// pgEdge Northwind BI
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for northwind-bi.
package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pgEdge/northwind-bi/internal/config"
	"github.com/pgEdge/northwind-bi/internal/engine"
	"github.com/pgEdge/northwind-bi/internal/logging"
	"github.com/pgEdge/northwind-bi/internal/views"
	"github.com/pgEdge/northwind-bi/pkg/version"
)

var (
	// Global flags
	cfgFile    string
	connection string
	source     string
	sourcePath string
	logLevel   string
	logFormat  string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "northwind-bi",
		Short: "Filter-and-aggregate dashboards over the Northwind metrics schema",
		Long: `northwind-bi loads the Northwind metrics fact table and churn summary
from PostgreSQL, MySQL, a CSV directory or a snapshot file, applies the
sidebar filters (region, category, customer status, product and order
date) and computes the dashboard aggregations.

Results can be printed as reports, served over HTTP and websocket, or
frozen into a snapshot. The load command ingests CSV exports into
PostgreSQL.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./northwind-bi.yaml)")
	rootCmd.PersistentFlags().StringVar(&connection, "connection", "",
		"database connection string")
	rootCmd.PersistentFlags().StringVar(&source, "source", "",
		"data source (postgres, mysql, csv, snapshot)")
	rootCmd.PersistentFlags().StringVar(&sourcePath, "source-path", "",
		"directory (csv) or file (snapshot) to read data from")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"log format (pretty, json)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(viewsCmd)
	rootCmd.AddCommand(kindsCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if connection != "" {
		cfg.Connection = connection
	}
	if source != "" {
		cfg.Source.Kind = source
	}
	if sourcePath != "" {
		cfg.Source.Path = sourcePath
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}

	// Reinitialize logger with config
	return logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}

var viewsCmd = &cobra.Command{
	Use:   "views",
	Short: "List available dashboard views",
	Long: `List the dashboard views that can be passed to report --view and
requested from the API. Each view groups a set of aggregations.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		for _, v := range views.All() {
			fmt.Fprintf(tw, "  %s\t%s\n", v.Name(), v.Description())
		}
		return tw.Flush()
	},
}

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List available aggregations",
	RunE: func(cmd *cobra.Command, args []string) error {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		for _, d := range engine.Kinds() {
			fmt.Fprintf(tw, "  %s\t%s\n", d.Kind, d.Title)
		}
		return tw.Flush()
	},
}
