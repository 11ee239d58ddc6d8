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
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgEdge/northwind-bi/internal/db"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the most recent load of each table",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	if cfg.Connection == "" {
		return fmt.Errorf("connection string is required")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	exists, err := db.LoadLogExists(ctx, pool)
	if err != nil {
		return err
	}
	if !exists {
		cmd.Println("No tables have been loaded.")
		return nil
	}

	records, err := db.LoadLog(ctx, pool)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TABLE\tROWS\tFILE\tLOADED AT\tTOOL")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
			r.Table, r.Rows, r.File, r.LoadedAt.Local().Format(time.DateTime), r.Tool)
	}
	return tw.Flush()
}
