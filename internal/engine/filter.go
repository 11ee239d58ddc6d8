//-------------------------------------------------------------------------
//
// pgEdge Northwind BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package engine

import (
	"github.com/pgEdge/northwind-bi/internal/dataset"
)

// ApplyFilter returns the rows matching sel, in their original order.
// Values within a dimension are OR-combined and dimensions are
// AND-combined. The input slice is not modified.
func ApplyFilter(rows []dataset.MetricsRow, sel Selection) []dataset.MetricsRow {
	out := make([]dataset.MetricsRow, 0, len(rows))
	for i := range rows {
		if sel.Matches(&rows[i]) {
			out = append(out, rows[i])
		}
	}
	return out
}
