//-------------------------------------------------------------------------
//
// pgEdge Northwind BI
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package db provides PostgreSQL connection management for northwind-bi.
package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/northwind-bi/internal/logging"
	"github.com/pgEdge/northwind-bi/pkg/version"
)

// DB is satisfied by both *pgxpool.Pool and *pgx.Conn, so readers and the
// loader work with either a pool or a dedicated connection.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Pool settings. The dashboard reads its data once and the loader copies
// one table at a time, so the pool stays small.
const (
	maxConns          = 4
	maxConnLifetime   = 30 * time.Minute
	maxConnIdleTime   = 5 * time.Minute
	healthCheckPeriod = 30 * time.Second
)

// ParseConfig parses connString and applies the pool settings. The
// application_name runtime parameter is set to the user agent unless the
// connection string names one.
func ParseConfig(connString string) (*pgxpool.Config, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	config.MaxConns = maxConns
	config.MinConns = 0
	config.MaxConnLifetime = maxConnLifetime
	config.MaxConnIdleTime = maxConnIdleTime
	config.HealthCheckPeriod = healthCheckPeriod

	params := config.ConnConfig.RuntimeParams
	if params == nil {
		params = make(map[string]string)
		config.ConnConfig.RuntimeParams = params
	}
	if params["application_name"] == "" {
		params["application_name"] = version.UserAgent()
	}
	return config, nil
}

// Connect opens a pool and verifies it with a ping.
func Connect(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	config, err := ParseConfig(connString)
	if err != nil {
		return nil, err
	}
	cc := config.ConnConfig

	logging.Debug().
		Str("host", cc.Host).
		Uint16("port", cc.Port).
		Str("database", cc.Database).
		Str("application_name", cc.RuntimeParams["application_name"]).
		Msg("Opening connection pool")

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping %s/%s: %w", cc.Host, cc.Database, err)
	}

	logging.Info().
		Str("host", cc.Host).
		Str("database", cc.Database).
		Msg("Connected to database")
	return pool, nil
}

// QuoteQualified quotes a possibly schema-qualified table name such as
// public_metrics.metrics.
func QuoteQualified(name string) string {
	return pgx.Identifier(strings.Split(name, ".")).Sanitize()
}
