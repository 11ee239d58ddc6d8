//-------------------------------------------------------------------------
//
// pgEdge Northwind BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package csvsource reads and writes the dashboard data as delimited text
// files in the layout produced by the Northwind export: one file for the
// metrics fact table and one for the churn summary.
package csvsource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/pgEdge/northwind-bi/internal/dataset"
	"github.com/pgEdge/northwind-bi/internal/logging"
)

// File names within the data directory.
const (
	MetricsFile = "metrics.csv"
	ChurnFile   = "churns.csv"
)

// DefaultDelimiter separates fields in the Northwind export.
const DefaultDelimiter = ';'

// Source reads metrics.csv and churns.csv from a directory.
type Source struct {
	dir       string
	delimiter rune
}

// New returns a source reading from dir. An empty delimiter selects
// DefaultDelimiter.
func New(dir, delimiter string) (*Source, error) {
	d, err := ParseDelimiter(delimiter)
	if err != nil {
		return nil, err
	}
	return &Source{dir: dir, delimiter: d}, nil
}

// ParseDelimiter returns the single rune of s, or DefaultDelimiter when s
// is empty.
func ParseDelimiter(s string) (rune, error) {
	if s == "" {
		return DefaultDelimiter, nil
	}
	if s == `\t` {
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, fmt.Errorf("invalid delimiter %q", s)
	}
	return r, nil
}

// Name identifies the source in logs.
func (s *Source) Name() string {
	return "csv"
}

// LoadMetrics reads metrics.csv.
func (s *Source) LoadMetrics(ctx context.Context) ([]dataset.MetricsRow, error) {
	path := filepath.Join(s.dir, MetricsFile)
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := ReadMetrics(f, s.delimiter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	logging.Info().
		Str("file", path).
		Int("rows", len(rows)).
		Msg("Loaded metrics")

	return rows, nil
}

// LoadChurnSummary reads churns.csv.
func (s *Source) LoadChurnSummary(ctx context.Context) (dataset.ChurnSummary, error) {
	path := filepath.Join(s.dir, ChurnFile)
	f, err := open(path)
	if err != nil {
		return dataset.ChurnSummary{}, err
	}
	defer f.Close()

	summary, err := ReadChurn(f, s.delimiter)
	if err != nil {
		return dataset.ChurnSummary{}, fmt.Errorf("%s: %w", path, err)
	}

	logging.Info().
		Str("file", path).
		Int("rows", len(summary.Records)).
		Msg("Loaded churn summary")

	return summary, nil
}

// Close is a no-op; files are closed after each read.
func (s *Source) Close() error {
	return nil
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", dataset.ErrUnavailable, err)
	}
	return f, nil
}

func newReader(r io.Reader, delimiter rune) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.ReuseRecord = true
	return cr
}

// ReadMetrics parses a metrics file with a header row. Columns are matched
// by name; unknown columns are ignored.
func ReadMetrics(r io.Reader, delimiter rune) ([]dataset.MetricsRow, error) {
	cr := newReader(r, delimiter)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("missing header row")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	names := make([]string, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		names[i] = name
		index[name] = i
	}

	cols, err := dataset.ResolveColumns(names)
	if err != nil {
		return nil, err
	}

	var rows []dataset.MetricsRow
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", line, err)
		}

		var row dataset.MetricsRow
		for _, c := range cols {
			if err := c.Parse(&row, record[index[c.Name]]); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadChurn parses a churn file with a header row.
func ReadChurn(r io.Reader, delimiter rune) (dataset.ChurnSummary, error) {
	cr := newReader(r, delimiter)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return dataset.ChurnSummary{}, errors.New("missing header row")
		}
		return dataset.ChurnSummary{}, fmt.Errorf("failed to read header: %w", err)
	}

	pos := make([]int, len(dataset.ChurnColumns))
	for i, want := range dataset.ChurnColumns {
		pos[i] = -1
		for j, h := range header {
			if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), want) {
				pos[i] = j
			}
		}
		if pos[i] < 0 {
			return dataset.ChurnSummary{}, fmt.Errorf("churn file is missing column %s", want)
		}
	}

	var summary dataset.ChurnSummary
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return dataset.ChurnSummary{}, fmt.Errorf("failed to read line %d: %w", line, err)
		}

		var vals [2]float64
		for i, p := range pos {
			v, err := dataset.ParseNumber(record[p])
			if err != nil {
				return dataset.ChurnSummary{}, fmt.Errorf("line %d: column %s: %w",
					line, dataset.ChurnColumns[i], err)
			}
			vals[i] = v
		}
		summary.Records = append(summary.Records, dataset.ChurnRecord{Rate6m: vals[0], Rate12m: vals[1]})
	}
	return summary, nil
}
