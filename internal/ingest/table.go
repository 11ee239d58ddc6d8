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
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
)

// ColumnType is the SQL type inferred for a column.
type ColumnType string

// Inferred column types, narrowest first.
const (
	TypeBigint ColumnType = "BIGINT"
	TypeDouble ColumnType = "DOUBLE PRECISION"
	TypeText   ColumnType = "TEXT"
)

// Column is a named, typed column of a parsed file.
type Column struct {
	Name string
	Type ColumnType
}

// Table is a parsed file ready to be written. Values hold int64, float64,
// string or nil, matching the column types.
type Table struct {
	Name    string
	File    string
	Columns []Column
	Rows    [][]any
}

// ColumnNames returns the column names in file order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// TableName derives the table name from a file path by dropping the
// directory and extension.
func TableName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ReadTable parses a delimited file with a header row and infers a type
// per column. Empty cells become NULL. Any malformed row fails the whole
// file.
func ReadTable(r io.Reader, name string, delimiter rune) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = delimiter

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("missing header row")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := make([]Column, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		if seen[h] {
			return nil, fmt.Errorf("duplicate column %q", h)
		}
		seen[h] = true
		cols[i] = Column{Name: h, Type: TypeBigint}
	}

	filled := make([]bool, len(cols))
	var raw [][]string
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", line, err)
		}
		for i, v := range record {
			v = strings.TrimSpace(v)
			filled[i] = filled[i] || v != ""
			cols[i].Type = widen(cols[i].Type, v)
		}
		raw = append(raw, record)
	}
	// A column with no values at all reads as numeric NULLs.
	for i := range cols {
		if !filled[i] {
			cols[i].Type = TypeDouble
		}
	}

	t := &Table{Name: name, Columns: cols, Rows: make([][]any, len(raw))}
	for r, record := range raw {
		row := make([]any, len(cols))
		for i, v := range record {
			row[i] = convert(cols[i].Type, v)
		}
		t.Rows[r] = row
	}
	return t, nil
}

// widen returns the narrowest type holding both the current type and v.
func widen(current ColumnType, v string) ColumnType {
	if v == "" || current == TypeText {
		return current
	}
	if current == TypeBigint {
		if _, err := strconv.ParseInt(v, 10, 64); err == nil {
			return TypeBigint
		}
	}
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		return TypeDouble
	}
	return TypeText
}

func convert(t ColumnType, raw string) any {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil
	}
	switch t {
	case TypeBigint:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	case TypeDouble:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	}
	return v
}
