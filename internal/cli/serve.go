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

	"github.com/pgEdge/northwind-bi/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard API over HTTP and websocket",
	Long: `Load the configured data source once and serve the dashboard API
until interrupted with SIGINT or SIGTERM.

Example:
  northwind-bi serve --addr :8080 --connection "postgres://..."`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "",
		"listen address (default: :8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddr != "" {
		cfg.Serve.Addr = serveAddr
	}
	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	e, data, err := loadEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer data.Close()

	return server.New(e, cfg.Serve).Run(ctx)
}
