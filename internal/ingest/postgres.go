//-------------------------------------------------------------------------
//
// pgEdge Northwind BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/pgEdge/northwind-bi/internal/db"
	"github.com/pgEdge/northwind-bi/internal/logging"
)

// PostgresTarget replaces tables in PostgreSQL. Each table is dropped,
// recreated and filled with COPY inside one transaction, and the load is
// recorded in the load log in the same transaction.
type PostgresTarget struct {
	conn db.DB
}

// NewPostgresTarget returns a target writing through conn.
func NewPostgresTarget(conn db.DB) *PostgresTarget {
	return &PostgresTarget{conn: conn}
}

// Prepare creates the schema and the load log table if needed.
func (p *PostgresTarget) Prepare(ctx context.Context, schema string) error {
	if schema != "" {
		_, err := p.conn.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{schema}.Sanitize())
		if err != nil {
			return fmt.Errorf("failed to create schema %s: %w", schema, err)
		}
	}
	return db.EnsureLoadLog(ctx, p.conn)
}

// ReplaceTable implements Target.
func (p *PostgresTarget) ReplaceTable(ctx context.Context, schema string, t *Table) (int64, error) {
	ident := tableIdent(schema, t.Name)

	tx, err := p.conn.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+ident.Sanitize()); err != nil {
		return 0, fmt.Errorf("failed to drop table: %w", err)
	}
	if _, err := tx.Exec(ctx, CreateTableSQL(ident, t.Columns)); err != nil {
		return 0, fmt.Errorf("failed to create table: %w", err)
	}

	n, err := tx.CopyFrom(ctx, ident, t.ColumnNames(), pgx.CopyFromRows(t.Rows))
	if err != nil {
		return 0, fmt.Errorf("failed to copy rows: %w", err)
	}

	if err := db.RecordLoad(ctx, tx, ident.Sanitize(), t.File, n); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}

	logging.Debug().
		Str("table", ident.Sanitize()).
		Int("columns", len(t.Columns)).
		Int64("rows", n).
		Msg("Replaced table")

	return n, nil
}

func tableIdent(schema, name string) pgx.Identifier {
	if schema == "" {
		return pgx.Identifier{name}
	}
	return pgx.Identifier{schema, name}
}

// CreateTableSQL returns the CREATE TABLE statement for cols.
func CreateTableSQL(ident pgx.Identifier, cols []Column) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = pgx.Identifier{c.Name}.Sanitize() + " " + string(c.Type)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", ident.Sanitize(), strings.Join(defs, ", "))
}
