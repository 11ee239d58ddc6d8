//-------------------------------------------------------------------------
//
// pgEdge Northwind BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package views

import (
	"fmt"

	"github.com/pgEdge/northwind-bi/internal/engine"
)

// PanelOutput is the evaluated value of a panel.
type PanelOutput struct {
	Type  PanelType   `json:"type"`
	Kind  engine.Kind `json:"kind,omitempty"`
	Title string      `json:"title"`
	Value any         `json:"value"`
}

// Output is an evaluated view.
type Output struct {
	View         string        `json:"view"`
	Title        string        `json:"title"`
	TotalRows    int           `json:"total_rows"`
	FilteredRows int           `json:"filtered_rows"`
	Panels       []PanelOutput `json:"panels"`
}

// Evaluate computes every panel of v for sel.
func Evaluate(e *engine.Engine, v View, sel engine.Selection) (*Output, error) {
	return EvaluateResult(e, v, e.Run(sel))
}

// EvaluateResult fills the panels of v from an already computed result.
// Churn panels are read from the engine since they ignore the selection.
func EvaluateResult(e *engine.Engine, v View, res engine.Result) (*Output, error) {
	out := &Output{
		View:         v.Name(),
		Title:        v.Title(),
		TotalRows:    res.TotalRows,
		FilteredRows: res.FilteredRows,
	}

	for _, p := range v.Panels() {
		po := PanelOutput{Type: p.Type, Kind: p.Kind, Title: p.Title}
		switch p.Type {
		case PanelAggregation:
			val, err := res.Get(p.Kind)
			if err != nil {
				return nil, err
			}
			po.Value = val
		case PanelChurn:
			rates, err := e.Churn()
			if err != nil {
				return nil, fmt.Errorf("failed to evaluate view %s: %w", v.Name(), err)
			}
			po.Value = rates
		default:
			return nil, fmt.Errorf("view %s has a panel of unknown type %q", v.Name(), p.Type)
		}
		out.Panels = append(out.Panels, po)
	}
	return out, nil
}
