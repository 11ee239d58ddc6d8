//-------------------------------------------------------------------------
//
// pgEdge Northwind BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cli

import (
	"github.com/spf13/cobra"

	"github.com/pgEdge/northwind-bi/internal/dataset/csvsource"
	"github.com/pgEdge/northwind-bi/internal/datagen"
	"github.com/pgEdge/northwind-bi/internal/logging"
)

var (
	genDir       string
	genCustomers int
	genProducts  int
	genEmployees int
	genRows      int
	genSeed      uint64
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic Northwind metrics dataset",
	Long: `Generate metrics.csv and churns.csv with synthetic Northwind-style
data. The output can be read with --source csv or loaded into PostgreSQL
with the load command.

Example:
  northwind-bi generate --dir ./data --rows 5000 --seed 42`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&genDir, "dir", "",
		"output directory (default: ./data)")
	generateCmd.Flags().IntVar(&genCustomers, "customers", 0,
		"number of customers")
	generateCmd.Flags().IntVar(&genProducts, "products", 0,
		"number of products")
	generateCmd.Flags().IntVar(&genEmployees, "employees", 0,
		"number of employees")
	generateCmd.Flags().IntVar(&genRows, "rows", 0,
		"number of metrics rows")
	generateCmd.Flags().Uint64Var(&genSeed, "seed", 0,
		"random seed for reproducible output")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if genDir != "" {
		cfg.Generate.Dir = genDir
	}
	if genCustomers > 0 {
		cfg.Generate.Customers = genCustomers
	}
	if genProducts > 0 {
		cfg.Generate.Products = genProducts
	}
	if genEmployees > 0 {
		cfg.Generate.Employees = genEmployees
	}
	if genRows > 0 {
		cfg.Generate.Rows = genRows
	}
	if genSeed != 0 {
		cfg.Generate.Seed = genSeed
	}

	if err := cfg.ValidateGenerate(); err != nil {
		return err
	}
	delim, err := csvsource.ParseDelimiter(cfg.Load.Delimiter)
	if err != nil {
		return err
	}

	opts := datagen.DefaultOptions()
	opts.Customers = cfg.Generate.Customers
	opts.Products = cfg.Generate.Products
	opts.Employees = cfg.Generate.Employees
	opts.Rows = cfg.Generate.Rows
	opts.Seed = cfg.Generate.Seed

	logging.Info().
		Str("dir", cfg.Generate.Dir).
		Int("rows", opts.Rows).
		Uint64("seed", opts.Seed).
		Msg("Generating dataset")

	ctx, cancel := signalContext()
	defer cancel()

	ds, err := datagen.Generate(ctx, opts)
	if err != nil {
		return err
	}
	return ds.WriteDir(cfg.Generate.Dir, delim)
}
