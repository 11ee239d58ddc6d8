//-------------------------------------------------------------------------
//
// pgEdge Northwind BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package views_test

import (
	"errors"
	"testing"

	"github.com/pgEdge/northwind-bi/internal/dataset"
	"github.com/pgEdge/northwind-bi/internal/engine"
	"github.com/pgEdge/northwind-bi/internal/views"
)

var knownViews = []string{"kpis", "revenue", "inventory", "customers"}

func TestGet(t *testing.T) {
	for _, name := range knownViews {
		t.Run(name, func(t *testing.T) {
			v, err := views.Get(name)
			if err != nil {
				t.Fatalf("Failed to get view '%s': %v", name, err)
			}
			if v.Name() != name {
				t.Errorf("View name mismatch: expected '%s', got '%s'", name, v.Name())
			}
			if v.Title() == "" {
				t.Error("View title should not be empty")
			}
			if v.Description() == "" {
				t.Error("View description should not be empty")
			}
		})
	}
}

func TestGetInvalidView(t *testing.T) {
	if _, err := views.Get("nonexistent"); err == nil {
		t.Error("Expected error for nonexistent view, got nil")
	}
	if _, err := views.Get(""); err == nil {
		t.Error("Expected error for empty view name, got nil")
	}
}

func TestListOrder(t *testing.T) {
	got := views.List()
	if len(got) != len(knownViews) {
		t.Fatalf("Expected %d views, got %d", len(knownViews), len(got))
	}
	for i := range knownViews {
		if got[i] != knownViews[i] {
			t.Errorf("Expected view %d to be '%s', got '%s'", i, knownViews[i], got[i])
		}
	}
}

func TestPanelsCoverCatalogue(t *testing.T) {
	seen := make(map[engine.Kind]bool)
	churnPanels := 0

	for _, v := range views.All() {
		panels := v.Panels()
		if len(panels) == 0 {
			t.Errorf("View '%s' has no panels", v.Name())
		}
		for _, p := range panels {
			if p.Title == "" {
				t.Errorf("View '%s' has a panel without a title", v.Name())
			}
			switch p.Type {
			case views.PanelAggregation:
				seen[p.Kind] = true
			case views.PanelChurn:
				churnPanels++
			default:
				t.Errorf("View '%s' has a panel of type '%s'", v.Name(), p.Type)
			}
		}
	}

	for _, def := range engine.Kinds() {
		if !seen[def.Kind] {
			t.Errorf("Kind '%s' is not shown by any view", def.Kind)
		}
	}
	if churnPanels != 1 {
		t.Errorf("Expected 1 churn panel, got %d", churnPanels)
	}
}

func newEngine(t *testing.T, churn dataset.ChurnSummary) *engine.Engine {
	t.Helper()
	rows := []dataset.MetricsRow{
		{Region: "North", CategoryName: "Beverages", CustomerStatus: dataset.StatusActive, ProductName: "Chai", AvgTicketPerOrder: dataset.Float(40)},
		{Region: "South", CategoryName: "Seafood", CustomerStatus: dataset.StatusInactive, ProductName: "Ikura", AvgTicketPerOrder: dataset.Float(60)},
	}
	e, err := engine.New(dataset.NewStaticContext(rows, churn))
	if err != nil {
		t.Fatalf("engine.New failed: %v", err)
	}
	return e
}

func TestEvaluate(t *testing.T) {
	e := newEngine(t, dataset.ChurnSummary{Records: []dataset.ChurnRecord{{Rate6m: 3, Rate12m: 7}}})
	v, err := views.Get("kpis")
	if err != nil {
		t.Fatalf("Failed to get view: %v", err)
	}

	out, err := views.Evaluate(e, v, e.Select(engine.AllRequest()))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if out.FilteredRows != 2 || out.TotalRows != 2 {
		t.Errorf("Expected 2/2 rows, got %d/%d", out.FilteredRows, out.TotalRows)
	}
	if len(out.Panels) != len(v.Panels()) {
		t.Fatalf("Expected %d panels, got %d", len(v.Panels()), len(out.Panels))
	}

	mean, ok := out.Panels[0].Value.(*float64)
	if !ok || mean == nil || *mean != 50 {
		t.Errorf("Expected mean ticket 50, got %v", out.Panels[0].Value)
	}
	rates, ok := out.Panels[2].Value.(engine.ChurnRates)
	if !ok || rates.Rate6m != 3 {
		t.Errorf("Expected churn rates, got %v", out.Panels[2].Value)
	}
}

func TestEvaluateChurnIntegrity(t *testing.T) {
	e := newEngine(t, dataset.ChurnSummary{})

	kpis, _ := views.Get("kpis")
	if _, err := views.Evaluate(e, kpis, e.Select(engine.AllRequest())); !errors.Is(err, engine.ErrChurnCardinality) {
		t.Errorf("Expected ErrChurnCardinality, got %v", err)
	}

	revenue, _ := views.Get("revenue")
	if _, err := views.Evaluate(e, revenue, e.Select(engine.AllRequest())); err != nil {
		t.Errorf("Expected views without churn to evaluate, got %v", err)
	}
}

func BenchmarkGet(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = views.Get("revenue")
	}
}
