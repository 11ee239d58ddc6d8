//-------------------------------------------------------------------------
//
// pgEdge Northwind BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package pgsource reads the dashboard data from PostgreSQL.
package pgsource

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/northwind-bi/internal/dataset"
	"github.com/pgEdge/northwind-bi/internal/db"
	"github.com/pgEdge/northwind-bi/internal/logging"
)

// Default table names of the loaded Northwind schema.
const (
	DefaultMetricsTable = "public_metrics.metrics"
	DefaultChurnTable   = "public_metrics.churns"
)

// Source reads the metrics and churn tables through a pgx pool.
type Source struct {
	pool         *pgxpool.Pool
	ownsPool     bool
	metricsTable string
	churnTable   string
}

// Open connects to connString and returns a source owning the pool.
// Connection failures are reported as dataset.ErrUnavailable.
func Open(ctx context.Context, connString, metricsTable, churnTable string) (*Source, error) {
	pool, err := db.Connect(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", dataset.ErrUnavailable, err)
	}
	s := New(pool, metricsTable, churnTable)
	s.ownsPool = true
	return s, nil
}

// New returns a source reading through an existing pool. Empty table
// names fall back to the defaults.
func New(pool *pgxpool.Pool, metricsTable, churnTable string) *Source {
	if metricsTable == "" {
		metricsTable = DefaultMetricsTable
	}
	if churnTable == "" {
		churnTable = DefaultChurnTable
	}
	return &Source{pool: pool, metricsTable: metricsTable, churnTable: churnTable}
}

// Name identifies the source in logs.
func (s *Source) Name() string {
	return "postgres"
}

// LoadMetrics reads every row of the metrics table.
func (s *Source) LoadMetrics(ctx context.Context) ([]dataset.MetricsRow, error) {
	return loadMetrics(ctx, s.pool, s.metricsTable)
}

// LoadChurnSummary reads every row of the churn table.
func (s *Source) LoadChurnSummary(ctx context.Context) (dataset.ChurnSummary, error) {
	return loadChurn(ctx, s.pool, s.churnTable)
}

// Close closes the pool if the source opened it.
func (s *Source) Close() error {
	if s.ownsPool {
		s.pool.Close()
	}
	return nil
}

// tableColumns returns the column names of table without reading rows.
func tableColumns(ctx context.Context, conn db.DB, table string) ([]string, error) {
	rows, err := conn.Query(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT 0", db.QuoteQualified(table)))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read table %s: %w", dataset.ErrUnavailable, table, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names, rows.Err()
}

// metricsQuery projects cols with casts matching the scan destinations,
// so integer or numeric columns written by the loader read as floats.
func metricsQuery(table string, cols []dataset.Column) string {
	exprs := make([]string, len(cols))
	for i, c := range cols {
		ident := pgx.Identifier{c.Name}.Sanitize()
		switch c.Kind {
		case dataset.KindNumber:
			exprs[i] = ident + "::double precision"
		case dataset.KindDate:
			exprs[i] = ident + "::date"
		default:
			exprs[i] = ident + "::text"
		}
	}
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(exprs, ", "), db.QuoteQualified(table))
}

func loadMetrics(ctx context.Context, conn db.DB, table string) ([]dataset.MetricsRow, error) {
	names, err := tableColumns(ctx, conn, table)
	if err != nil {
		return nil, err
	}
	cols, err := dataset.ResolveColumns(names)
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", table, err)
	}

	rows, err := conn.Query(ctx, metricsQuery(table, cols))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query %s: %w", dataset.ErrUnavailable, table, err)
	}

	scanner := dataset.NewRowScanner(cols)
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (dataset.MetricsRow, error) {
		if err := row.Scan(scanner.Targets()...); err != nil {
			return dataset.MetricsRow{}, err
		}
		return scanner.Row(), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", table, err)
	}

	logging.Info().
		Str("table", table).
		Int("rows", len(out)).
		Msg("Loaded metrics")

	return out, nil
}

func loadChurn(ctx context.Context, conn db.DB, table string) (dataset.ChurnSummary, error) {
	query := fmt.Sprintf(
		"SELECT %s::double precision, %s::double precision FROM %s",
		pgx.Identifier{dataset.ChurnColumns[0]}.Sanitize(),
		pgx.Identifier{dataset.ChurnColumns[1]}.Sanitize(),
		db.QuoteQualified(table),
	)
	rows, err := conn.Query(ctx, query)
	if err != nil {
		return dataset.ChurnSummary{}, fmt.Errorf("%w: failed to query %s: %w", dataset.ErrUnavailable, table, err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (dataset.ChurnRecord, error) {
		var r dataset.ChurnRecord
		err := row.Scan(&r.Rate6m, &r.Rate12m)
		return r, err
	})
	if err != nil {
		return dataset.ChurnSummary{}, fmt.Errorf("failed to read %s: %w", table, err)
	}

	logging.Info().
		Str("table", table).
		Int("rows", len(records)).
		Msg("Loaded churn summary")

	return dataset.ChurnSummary{Records: records}, nil
}
