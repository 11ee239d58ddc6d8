//-------------------------------------------------------------------------
//
// pgEdge Northwind BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package views defines the dashboard views and evaluates them against
// the aggregation engine.
package views

import (
	"fmt"

	"github.com/pgEdge/northwind-bi/internal/engine"
)

// PanelType identifies where a panel takes its value from.
type PanelType string

// Panel types.
const (
	// PanelAggregation shows one aggregation of the engine catalogue.
	PanelAggregation PanelType = "aggregation"

	// PanelChurn shows the churn rates, which are not filtered.
	PanelChurn PanelType = "churn"
)

// Panel is one block of a view.
type Panel struct {
	// Type says where the value comes from.
	Type PanelType

	// Kind is the aggregation shown by a PanelAggregation.
	Kind engine.Kind

	// Title is the panel heading.
	Title string
}

// View defines the interface every dashboard view implements.
type View interface {
	// Name returns the view identifier used on the command line and in URLs.
	Name() string

	// Title returns the heading shown above the view.
	Title() string

	// Description returns a human-readable description.
	Description() string

	// Order returns the position of the view among its siblings.
	Order() int

	// Panels returns the panels of the view in display order.
	Panels() []Panel
}

// definition is the View implementation shared by the built-in views.
type definition struct {
	name        string
	title       string
	description string
	order       int
	panels      []Panel
}

func (d *definition) Name() string        { return d.name }
func (d *definition) Title() string       { return d.title }
func (d *definition) Description() string { return d.description }
func (d *definition) Order() int          { return d.order }

func (d *definition) Panels() []Panel {
	return append([]Panel(nil), d.panels...)
}

// aggregation builds a panel for kind titled after the catalogue entry.
func aggregation(kind engine.Kind) Panel {
	def, err := engine.Lookup(kind)
	if err != nil {
		panic(fmt.Sprintf("view references %v", err))
	}
	return Panel{Type: PanelAggregation, Kind: kind, Title: def.Title}
}

func churn() Panel {
	return Panel{Type: PanelChurn, Title: "Customer Churn Rate"}
}
