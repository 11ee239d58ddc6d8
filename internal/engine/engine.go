//-------------------------------------------------------------------------
//
// pgEdge Northwind BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package engine filters the metrics fact table by a user selection and
// computes the fixed catalogue of dashboard aggregations over the result.
// Every function is pure: inputs are never modified and the same input
// always yields the same output.
package engine

import (
	"fmt"

	"github.com/pgEdge/northwind-bi/internal/dataset"
)

// Engine answers selections against a loaded data context.
type Engine struct {
	data   *dataset.Context
	rows   []dataset.MetricsRow
	domain Domain
}

// New builds an engine over data, which must already be loaded. The
// filter domain is computed once here.
func New(data *dataset.Context) (*Engine, error) {
	rows, err := data.Metrics()
	if err != nil {
		return nil, fmt.Errorf("failed to read metrics: %w", err)
	}
	return &Engine{
		data:   data,
		rows:   rows,
		domain: NewDomain(rows),
	}, nil
}

// Domain returns the known values of every filter dimension.
func (e *Engine) Domain() Domain {
	return e.domain
}

// TotalRows is the size of the unfiltered fact table.
func (e *Engine) TotalRows() int {
	return len(e.rows)
}

// Select expands a raw request into a concrete selection.
func (e *Engine) Select(req Request) Selection {
	return NewSelection(e.domain, req)
}

// Filter returns the rows matching sel.
func (e *Engine) Filter(sel Selection) []dataset.MetricsRow {
	return ApplyFilter(e.rows, sel)
}

// Run filters by sel and computes the full catalogue.
func (e *Engine) Run(sel Selection) Result {
	return Build(e.Filter(sel), len(e.rows))
}

// Aggregate filters by sel and computes a single kind.
func (e *Engine) Aggregate(sel Selection, kind Kind) (any, int, error) {
	filtered := e.Filter(sel)
	v, err := Aggregate(filtered, kind)
	if err != nil {
		return nil, 0, err
	}
	return v, len(filtered), nil
}

// Churn returns the churn rates, failing when the summary does not hold
// exactly one record.
func (e *Engine) Churn() (ChurnRates, error) {
	summary, err := e.data.Churn()
	if err != nil {
		return ChurnRates{}, fmt.Errorf("failed to read churn summary: %w", err)
	}
	return GetChurnRates(summary)
}

// FilterOptions returns the sidebar choices of every dimension, the All
// sentinel first.
func FilterOptions(rows []dataset.MetricsRow) map[Dimension][]string {
	return NewDomain(rows).Options()
}
