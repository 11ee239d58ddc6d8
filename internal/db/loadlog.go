//-------------------------------------------------------------------------
//
// pgEdge Northwind BI
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pgEdge/northwind-bi/internal/logging"
	"github.com/pgEdge/northwind-bi/pkg/version"
)

// LoadLogTable records every table loaded from a file.
const LoadLogTable = "bi_load_log"

const createLoadLogTableSQL = `
CREATE TABLE IF NOT EXISTS bi_load_log (
    id          BIGSERIAL PRIMARY KEY,
    table_name  TEXT NOT NULL,
    source_file TEXT NOT NULL,
    row_count   BIGINT NOT NULL,
    tool        TEXT NOT NULL,
    loaded_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// LoadRecord is one entry of the load log.
type LoadRecord struct {
	Table    string
	File     string
	Rows     int64
	Tool     string
	LoadedAt time.Time
}

// EnsureLoadLog creates the load log table if it doesn't exist.
func EnsureLoadLog(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, createLoadLogTableSQL); err != nil {
		return fmt.Errorf("failed to create load log table: %w", err)
	}
	return nil
}

// RecordLoad appends an entry to the load log. It is meant to run inside
// the transaction that replaced the table.
func RecordLoad(ctx context.Context, db DB, table, file string, rows int64) error {
	_, err := db.Exec(ctx, `
        INSERT INTO bi_load_log (table_name, source_file, row_count, tool)
        VALUES ($1, $2, $3, $4)
    `, table, file, rows, version.UserAgent())
	if err != nil {
		return fmt.Errorf("failed to record load of %s: %w", table, err)
	}

	logging.Debug().
		Str("table", table).
		Str("file", file).
		Int64("rows", rows).
		Msg("Recorded load")

	return nil
}

// LoadLog returns the most recent load of every table, newest first.
func LoadLog(ctx context.Context, db DB) ([]LoadRecord, error) {
	rows, err := db.Query(ctx, `
        SELECT table_name, source_file, row_count, tool, loaded_at
        FROM (
            SELECT DISTINCT ON (table_name) *
            FROM bi_load_log
            ORDER BY table_name, loaded_at DESC, id DESC
        ) latest
        ORDER BY loaded_at DESC, table_name
    `)
	if err != nil {
		return nil, fmt.Errorf("failed to read load log: %w", err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (LoadRecord, error) {
		var r LoadRecord
		err := row.Scan(&r.Table, &r.File, &r.Rows, &r.Tool, &r.LoadedAt)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read load log: %w", err)
	}

	return records, nil
}

// LoadLogExists checks if the load log table exists.
func LoadLogExists(ctx context.Context, db DB) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT FROM information_schema.tables
            WHERE table_name = $1
        )
    `, LoadLogTable).Scan(&exists)
	return exists, err
}
