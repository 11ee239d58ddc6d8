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
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgEdge/northwind-bi/internal/dataset/csvsource"
	"github.com/pgEdge/northwind-bi/internal/db"
	"github.com/pgEdge/northwind-bi/internal/ingest"
	"github.com/pgEdge/northwind-bi/internal/logging"
)

var (
	loadDir       string
	loadPattern   string
	loadDelimiter string
	loadSchema    string
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load CSV exports into PostgreSQL",
	Long: `Load every CSV file in a directory into PostgreSQL. Each file
becomes a table named after the file, with column types inferred from
the data. Existing tables are replaced inside a transaction, so a file
that fails to load leaves the previous table intact.

Example:
  northwind-bi load --dir ./data --schema public_metrics --connection "postgres://..."`,
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().StringVar(&loadDir, "dir", "",
		"directory containing CSV files (default: ./data)")
	loadCmd.Flags().StringVar(&loadPattern, "pattern", "",
		"file name glob (default: *.csv)")
	loadCmd.Flags().StringVar(&loadDelimiter, "delimiter", "",
		"field delimiter (default: ;)")
	loadCmd.Flags().StringVar(&loadSchema, "schema", "",
		"target schema (default: public)")
}

func runLoad(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if loadDir != "" {
		cfg.Load.Dir = loadDir
	}
	if loadPattern != "" {
		cfg.Load.Pattern = loadPattern
	}
	if loadDelimiter != "" {
		cfg.Load.Delimiter = loadDelimiter
	}
	if loadSchema != "" {
		cfg.Load.Schema = loadSchema
	}

	if err := cfg.ValidateLoad(); err != nil {
		return err
	}
	delim, err := csvsource.ParseDelimiter(cfg.Load.Delimiter)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	target := ingest.NewPostgresTarget(pool)
	if err := target.Prepare(ctx, cfg.Load.Schema); err != nil {
		return err
	}

	logging.Info().
		Str("dir", cfg.Load.Dir).
		Str("schema", cfg.Load.Schema).
		Msg("Loading CSV files")

	summary, err := ingest.Run(ctx, target, ingest.Options{
		Dir:       cfg.Load.Dir,
		Pattern:   cfg.Load.Pattern,
		Delimiter: delim,
		Schema:    cfg.Load.Schema,
	})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	for _, l := range summary.Loaded {
		fmt.Fprintf(tw, "loaded\t%s\t%d rows\t%s\n", l.Table, l.Rows, l.Duration.Round(time.Millisecond))
	}
	for _, f := range summary.Failed {
		fmt.Fprintf(tw, "failed\t%s\t%v\n", f.Table, f.Err)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if err := summary.Err(); err != nil {
		return fmt.Errorf("%d of %d tables failed to load: %w",
			len(summary.Failed), len(summary.Failed)+len(summary.Loaded), err)
	}
	return nil
}
