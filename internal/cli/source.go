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
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pgEdge/northwind-bi/internal/config"
	"github.com/pgEdge/northwind-bi/internal/dataset"
	"github.com/pgEdge/northwind-bi/internal/dataset/csvsource"
	"github.com/pgEdge/northwind-bi/internal/dataset/pgsource"
	"github.com/pgEdge/northwind-bi/internal/dataset/snapshot"
	"github.com/pgEdge/northwind-bi/internal/dataset/sqlsource"
	"github.com/pgEdge/northwind-bi/internal/engine"
	"github.com/pgEdge/northwind-bi/internal/logging"
)

// openSource returns the data source selected by c.
func openSource(ctx context.Context, c *config.Config) (dataset.Source, error) {
	if err := c.ValidateSource(); err != nil {
		return nil, err
	}

	switch c.Source.Kind {
	case config.SourcePostgres:
		return pgsource.Open(ctx, c.Connection, c.Source.MetricsTable, c.Source.ChurnTable)
	case config.SourceMySQL:
		return sqlsource.Open(ctx, c.Connection, c.Source.MetricsTable, c.Source.ChurnTable)
	case config.SourceCSV:
		return csvsource.New(c.Source.Path, c.Load.Delimiter)
	case config.SourceSnapshot:
		return snapshot.Open(c.Source.Path), nil
	}
	return nil, fmt.Errorf("unknown source: %s", c.Source.Kind)
}

// loadData opens the configured source and loads it into memory. The
// caller closes the returned context.
func loadData(ctx context.Context, c *config.Config) (*dataset.Context, error) {
	src, err := openSource(ctx, c)
	if err != nil {
		return nil, err
	}

	data := dataset.NewContext(src)
	start := time.Now()
	if err := data.Load(ctx); err != nil {
		data.Close()
		return nil, err
	}

	rows, _ := data.Metrics()
	logging.Info().
		Str("source", data.SourceName()).
		Int("rows", len(rows)).
		Dur("duration", time.Since(start)).
		Msg("Data loaded")
	return data, nil
}

// loadEngine loads the configured source and builds an engine over it.
func loadEngine(ctx context.Context, c *config.Config) (*engine.Engine, *dataset.Context, error) {
	data, err := loadData(ctx, c)
	if err != nil {
		return nil, nil, err
	}
	e, err := engine.New(data)
	if err != nil {
		data.Close()
		return nil, nil, err
	}
	return e, data, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigChan:
			logging.Info().
				Str("signal", sig.String()).
				Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}
