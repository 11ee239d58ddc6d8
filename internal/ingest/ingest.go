//-------------------------------------------------------------------------
//
// pgEdge Northwind BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package ingest loads a directory of delimited files into database
// tables, one table per file, replacing any existing table of the same
// name.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pgEdge/northwind-bi/internal/logging"
)

// Target receives parsed tables. ReplaceTable must be atomic: on error the
// previous table, if any, is left as it was.
type Target interface {
	ReplaceTable(ctx context.Context, schema string, t *Table) (int64, error)
}

// TableError reports a file whose table could not be loaded.
type TableError struct {
	Table string
	File  string
	Err   error
}

func (e *TableError) Error() string {
	return fmt.Sprintf("table %s (%s): %v", e.Table, e.File, e.Err)
}

func (e *TableError) Unwrap() error {
	return e.Err
}

// Options control a load run.
type Options struct {
	Dir       string
	Pattern   string
	Delimiter rune
	Schema    string
}

// Loaded describes one table written by a run.
type Loaded struct {
	Table    string
	File     string
	Rows     int64
	Duration time.Duration
}

// Summary is the outcome of a run.
type Summary struct {
	Loaded []Loaded
	Failed []*TableError
}

// Err joins every table failure, or returns nil.
func (s *Summary) Err() error {
	if len(s.Failed) == 0 {
		return nil
	}
	errs := make([]error, len(s.Failed))
	for i, f := range s.Failed {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// Scan returns the files in dir matching pattern, sorted by name.
func Scan(dir, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*.csv"
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ok, err := filepath.Match(pattern, e.Name())
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		if ok {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// Run loads every matching file into target. A failing file does not
// stop the run; its error is collected in the summary and the remaining
// files are still loaded. The returned error is non-nil only when the
// directory itself cannot be scanned or ctx is cancelled.
func Run(ctx context.Context, target Target, opts Options) (*Summary, error) {
	files, err := Scan(opts.Dir, opts.Pattern)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		logging.Warn().
			Str("dir", opts.Dir).
			Str("pattern", opts.Pattern).
			Msg("No files to load")
	}

	summary := &Summary{}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		name := TableName(file)
		start := time.Now()
		rows, err := loadFile(ctx, target, opts, file, name)
		if err != nil {
			te := &TableError{Table: name, File: file, Err: err}
			summary.Failed = append(summary.Failed, te)
			logging.Error().
				Err(err).
				Str("table", name).
				Str("file", file).
				Msg("Failed to load table")
			continue
		}

		loaded := Loaded{Table: name, File: file, Rows: rows, Duration: time.Since(start)}
		summary.Loaded = append(summary.Loaded, loaded)
		logging.Info().
			Str("table", name).
			Int64("rows", rows).
			Dur("duration", loaded.Duration).
			Msg("Table loaded")
	}
	return summary, nil
}

func loadFile(ctx context.Context, target Target, opts Options, file, name string) (int64, error) {
	f, err := os.Open(file)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	delimiter := opts.Delimiter
	if delimiter == 0 {
		delimiter = ';'
	}
	t, err := ReadTable(f, name, delimiter)
	if err != nil {
		return 0, err
	}
	t.File = filepath.Base(file)

	return target.ReplaceTable(ctx, opts.Schema, t)
}
