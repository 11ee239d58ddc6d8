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

	"github.com/spf13/cobra"

	"github.com/pgEdge/northwind-bi/internal/dataset/snapshot"
)

var snapshotOutput string

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Freeze the configured data source into a snapshot file",
	Long: `Read the metrics and churn tables from the configured source and write
them to a compressed snapshot file. The file can then be used as a data
source with --source snapshot --source-path <file>.

Example:
  northwind-bi snapshot --output northwind.snap --connection "postgres://..."`,
	RunE: runSnapshot,
}

func init() {
	snapshotCmd.Flags().StringVarP(&snapshotOutput, "output", "o", "northwind.snap",
		"snapshot file to write")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	if snapshotOutput == "" {
		return fmt.Errorf("output path is required")
	}

	ctx, cancel := signalContext()
	defer cancel()

	src, err := openSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	doc, err := snapshot.Write(ctx, src, snapshotOutput)
	if err != nil {
		return err
	}

	cmd.Printf("Wrote %d metrics rows and %d churn records to %s\n",
		len(doc.Metrics), len(doc.Churn.Records), snapshotOutput)
	return nil
}
