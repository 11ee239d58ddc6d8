//-------------------------------------------------------------------------
//
// pgEdge Northwind BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package csvsource

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/pgEdge/northwind-bi/internal/dataset"
)

// WriteMetrics writes rows with a header row, every column in canonical
// order. Missing values are written as empty fields.
func WriteMetrics(w io.Writer, rows []dataset.MetricsRow, delimiter rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = delimiter

	record := make([]string, len(dataset.MetricsColumns))
	for i, c := range dataset.MetricsColumns {
		record[i] = c.Name
	}
	if err := cw.Write(record); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, row := range rows {
		for i, c := range dataset.MetricsColumns {
			record[i] = c.Format(row)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteChurn writes the churn summary with a header row.
func WriteChurn(w io.Writer, summary dataset.ChurnSummary, delimiter rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = delimiter

	if err := cw.Write(dataset.ChurnColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range summary.Records {
		err := cw.Write([]string{
			strconv.FormatFloat(r.Rate6m, 'f', -1, 64),
			strconv.FormatFloat(r.Rate12m, 'f', -1, 64),
		})
		if err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
