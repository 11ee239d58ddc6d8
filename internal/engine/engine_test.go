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
	"errors"
	"testing"

	"github.com/pgEdge/northwind-bi/internal/dataset"
)

func TestGetChurnRates(t *testing.T) {
	tests := []struct {
		name    string
		records []dataset.ChurnRecord
		wantErr bool
	}{
		{"none", nil, true},
		{"one", []dataset.ChurnRecord{{Rate6m: 12.5, Rate12m: 20}}, false},
		{"two", []dataset.ChurnRecord{{Rate6m: 1}, {Rate6m: 2}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rates, err := GetChurnRates(dataset.ChurnSummary{Records: tt.records})
			if tt.wantErr {
				if !errors.Is(err, ErrChurnCardinality) {
					t.Errorf("Expected ErrChurnCardinality, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if rates.Rate6m != 12.5 || rates.Rate12m != 20 {
				t.Errorf("Expected 12.5/20, got %v/%v", rates.Rate6m, rates.Rate12m)
			}
		})
	}
}

func TestNewRequiresLoadedContext(t *testing.T) {
	_, err := New(dataset.NewContext(nil))
	if !errors.Is(err, dataset.ErrNotLoaded) {
		t.Errorf("Expected ErrNotLoaded, got %v", err)
	}
}

func TestEngineRun(t *testing.T) {
	rows := sampleRows()
	rows[0].RevenueByCountry = num(100)
	rows[2].RevenueByCountry = num(50)
	rows[1].RevenueByCountry = num(30)

	data := dataset.NewStaticContext(rows, dataset.ChurnSummary{
		Records: []dataset.ChurnRecord{{Rate6m: 5, Rate12m: 9}},
	})
	e, err := New(data)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	res := e.Run(e.Select(AllRequest()))
	if res.TotalRows != 4 || res.FilteredRows != 4 {
		t.Errorf("Expected 4/4 rows, got %d/%d", res.TotalRows, res.FilteredRows)
	}
	if res.MeanTicketPerOrder != nil {
		t.Errorf("Expected no data for mean ticket per order, got %v", *res.MeanTicketPerOrder)
	}

	req := AllRequest()
	req.Regions = []string{"North"}
	v, n, err := e.Aggregate(e.Select(req), KindRevenueByRegion)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 filtered rows, got %d", n)
	}
	series := v.([]RegionRevenue)
	if len(series) != 1 || series[0].Revenue != 150 {
		t.Errorf("Expected North 150, got %+v", series)
	}

	rates, err := e.Churn()
	if err != nil {
		t.Fatalf("Churn failed: %v", err)
	}
	if rates.Rate6m != 5 || rates.Rate12m != 9 {
		t.Errorf("Expected 5/9, got %v/%v", rates.Rate6m, rates.Rate12m)
	}
}

func TestEngineChurnCardinality(t *testing.T) {
	e, err := New(dataset.NewStaticContext(sampleRows(), dataset.ChurnSummary{}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := e.Churn(); !errors.Is(err, ErrChurnCardinality) {
		t.Errorf("Expected ErrChurnCardinality, got %v", err)
	}
}

func TestFilterOptions(t *testing.T) {
	opts := FilterOptions(sampleRows())
	want := []string{All, "Active", "Inactive"}
	got := opts[DimStatus]
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, got)
		}
	}
}
