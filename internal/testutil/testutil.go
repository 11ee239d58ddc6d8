//-------------------------------------------------------------------------
//
// pgEdge Northwind BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package testutil provides PostgreSQL helpers for integration tests.
package testutil

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/northwind-bi/internal/db"
)

const (
	// ConnEnv overrides DefaultConnString.
	ConnEnv = "NORTHWIND_TEST_CONN"

	// DefaultConnString points at the maintenance database of a local
	// server. Test databases are created and dropped through it.
	DefaultConnString = "postgres://postgres@localhost:5432/postgres"

	// DBPrefix starts the name of every test database.
	DBPrefix = "northwind_test_"
)

// BaseConnString returns the server integration tests run against, and
// skips the test when that server cannot be reached.
func BaseConnString(t *testing.T) string {
	t.Helper()

	connStr := os.Getenv(ConnEnv)
	if connStr == "" {
		connStr = DefaultConnString
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, connStr)
	if err == nil {
		err = pool.Ping(ctx)
		pool.Close()
	}
	if err != nil {
		t.Skipf("PostgreSQL not available, skipping integration test: %v", err)
	}
	return connStr
}

// TestDB is a throwaway database owned by one test.
type TestDB struct {
	Name       string
	ConnString string
	Pool       *pgxpool.Pool
}

// NewTestDB creates a fresh database and connects to it with db.Connect.
// The pool is closed when the test ends. The database is dropped only if
// the test passed; a failing test leaves it behind for inspection.
func NewTestDB(t *testing.T, suffix string) *TestDB {
	t.Helper()
	base := BaseConnString(t)

	random := make([]byte, 6)
	if _, err := rand.Read(random); err != nil {
		t.Fatalf("Failed to generate database name: %v", err)
	}
	name := DBPrefix + suffix + "_" + hex.EncodeToString(random)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	admin, err := pgxpool.New(ctx, base)
	if err != nil {
		t.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer admin.Close()

	if _, err := admin.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{name}.Sanitize()); err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	connStr, err := withDatabase(base, name)
	if err != nil {
		t.Fatalf("Failed to build connection string: %v", err)
	}
	pool, err := db.Connect(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	tdb := &TestDB{Name: name, ConnString: connStr, Pool: pool}
	t.Cleanup(func() {
		pool.Close()
		if t.Failed() {
			t.Logf("Test failed - keeping database %s for diagnostics", name)
			return
		}
		dropDatabase(t, base, name)
	})
	return tdb
}

// Exec runs statements in order, failing the test on the first error.
func (d *TestDB) Exec(t *testing.T, statements ...string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, stmt := range statements {
		if _, err := d.Pool.Exec(ctx, stmt); err != nil {
			t.Fatalf("Failed to execute %q: %v", stmt, err)
		}
	}
}

// withDatabase points connStr, in URL or keyword/value form, at name.
func withDatabase(connStr, name string) (string, error) {
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		u, err := url.Parse(connStr)
		if err != nil {
			return "", err
		}
		u.Path = "/" + name
		return u.String(), nil
	}
	if _, err := pgxpool.ParseConfig(connStr); err != nil {
		return "", err
	}
	// A later dbname overrides an earlier one.
	return fmt.Sprintf("%s dbname=%s", connStr, name), nil
}

func dropDatabase(t *testing.T, base, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	admin, err := pgxpool.New(ctx, base)
	if err != nil {
		t.Logf("Warning: failed to connect to drop test database: %v", err)
		return
	}
	defer admin.Close()

	if _, err := admin.Exec(ctx, "DROP DATABASE IF EXISTS "+pgx.Identifier{name}.Sanitize()+" WITH (FORCE)"); err != nil {
		t.Logf("Warning: failed to drop test database %s: %v", name, err)
	}
}
