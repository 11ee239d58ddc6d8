//-------------------------------------------------------------------------
//
// pgEdge Northwind BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package sqlsource reads the dashboard data from a MySQL copy of the
// Northwind metrics schema.
package sqlsource

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/pgEdge/northwind-bi/internal/dataset"
	"github.com/pgEdge/northwind-bi/internal/logging"
)

// Default table names. MySQL has no schemas, so the metrics database is
// addressed as the qualifier.
const (
	DefaultMetricsTable = "public_metrics.metrics"
	DefaultChurnTable   = "public_metrics.churns"
)

// Source reads the metrics and churn tables through database/sql.
type Source struct {
	db           *sql.DB
	metricsTable string
	churnTable   string
}

// Open parses dsn, connects and verifies the connection. Dates are
// scanned as time.Time, so parseTime is forced on.
func Open(ctx context.Context, dsn, metricsTable, churnTable string) (*Source, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create mysql connector: %w", err)
	}
	conn := sql.OpenDB(connector)
	conn.SetMaxOpenConns(4)
	conn.SetConnMaxLifetime(30 * time.Minute)

	logging.Debug().
		Str("addr", cfg.Addr).
		Str("database", cfg.DBName).
		Msg("Connecting to database")

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: failed to ping mysql: %w", dataset.ErrUnavailable, err)
	}

	logging.Info().
		Str("addr", cfg.Addr).
		Str("database", cfg.DBName).
		Msg("Connected to database")

	return New(conn, metricsTable, churnTable), nil
}

// New returns a source reading through db. Empty table names fall back to
// the defaults.
func New(db *sql.DB, metricsTable, churnTable string) *Source {
	if metricsTable == "" {
		metricsTable = DefaultMetricsTable
	}
	if churnTable == "" {
		churnTable = DefaultChurnTable
	}
	return &Source{db: db, metricsTable: metricsTable, churnTable: churnTable}
}

// Name identifies the source in logs.
func (s *Source) Name() string {
	return "mysql"
}

// LoadMetrics reads every row of the metrics table.
func (s *Source) LoadMetrics(ctx context.Context) ([]dataset.MetricsRow, error) {
	table := quoteQualified(s.metricsTable)

	header, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT 0", table))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read table %s: %w", dataset.ErrUnavailable, s.metricsTable, err)
	}
	names, err := header.Columns()
	header.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", s.metricsTable, err)
	}

	cols, err := dataset.ResolveColumns(names)
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", s.metricsTable, err)
	}

	rows, err := s.db.QueryContext(ctx, metricsQuery(table, cols))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query %s: %w", dataset.ErrUnavailable, s.metricsTable, err)
	}
	defer rows.Close()

	scanner := dataset.NewRowScanner(cols)
	var out []dataset.MetricsRow
	for rows.Next() {
		if err := rows.Scan(scanner.Targets()...); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", s.metricsTable, err)
		}
		out = append(out, scanner.Row())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.metricsTable, err)
	}

	logging.Info().
		Str("table", s.metricsTable).
		Int("rows", len(out)).
		Msg("Loaded metrics")

	return out, nil
}

// LoadChurnSummary reads every row of the churn table.
func (s *Source) LoadChurnSummary(ctx context.Context) (dataset.ChurnSummary, error) {
	query := fmt.Sprintf("SELECT %s, %s FROM %s",
		quoteIdent(dataset.ChurnColumns[0]),
		quoteIdent(dataset.ChurnColumns[1]),
		quoteQualified(s.churnTable),
	)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return dataset.ChurnSummary{}, fmt.Errorf("%w: failed to query %s: %w", dataset.ErrUnavailable, s.churnTable, err)
	}
	defer rows.Close()

	var summary dataset.ChurnSummary
	for rows.Next() {
		var r dataset.ChurnRecord
		if err := rows.Scan(&r.Rate6m, &r.Rate12m); err != nil {
			return dataset.ChurnSummary{}, fmt.Errorf("failed to scan %s: %w", s.churnTable, err)
		}
		summary.Records = append(summary.Records, r)
	}
	if err := rows.Err(); err != nil {
		return dataset.ChurnSummary{}, fmt.Errorf("failed to read %s: %w", s.churnTable, err)
	}

	logging.Info().
		Str("table", s.churnTable).
		Int("rows", len(summary.Records)).
		Msg("Loaded churn summary")

	return summary, nil
}

// Close closes the database handle.
func (s *Source) Close() error {
	return s.db.Close()
}

func metricsQuery(table string, cols []dataset.Column) string {
	exprs := make([]string, len(cols))
	for i, c := range cols {
		ident := quoteIdent(c.Name)
		switch c.Kind {
		case dataset.KindNumber:
			exprs[i] = "CAST(" + ident + " AS DOUBLE)"
		case dataset.KindDate:
			exprs[i] = "CAST(" + ident + " AS DATE)"
		default:
			exprs[i] = "CAST(" + ident + " AS CHAR)"
		}
	}
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(exprs, ", "), table)
}

func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func quoteQualified(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = quoteIdent(p)
	}
	return strings.Join(parts, ".")
}
