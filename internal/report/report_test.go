//-------------------------------------------------------------------------
//
// pgEdge Northwind BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/pgEdge/northwind-bi/internal/dataset"
	"github.com/pgEdge/northwind-bi/internal/engine"
	"github.com/pgEdge/northwind-bi/internal/views"
)

func TestMoney(t *testing.T) {
	if got := Money(nil); got != NoData {
		t.Errorf("Expected %q, got %q", NoData, got)
	}
	if got := Money(dataset.Float(12.345)); got != "12.35" {
		t.Errorf("Expected 12.35, got %q", got)
	}
}

func emptyOutput() *views.Output {
	return &views.Output{
		View:  "kpis",
		Title: "Key Indicators",
		Panels: []views.PanelOutput{
			{Type: views.PanelAggregation, Kind: engine.KindMeanTicketPerOrder, Title: "Average Ticket per Order", Value: engine.MeanTicketPerOrder(nil)},
			{Type: views.PanelAggregation, Kind: engine.KindDeliveryTimeDistribution, Title: "Delivery", Value: engine.DeliveryTimeDistribution(nil)},
			{Type: views.PanelAggregation, Kind: engine.KindInactiveCustomersByRegion, Title: "Inactive", Value: engine.InactiveCustomersByRegion(nil)},
		},
	}
}

func TestWriteTextNoData(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, emptyOutput()); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Key Indicators (0 of 0 rows)") {
		t.Errorf("Expected row counts in heading, got:\n%s", out)
	}
	if strings.Count(out, NoData) != 2 {
		t.Errorf("Expected 2 %q markers, got:\n%s", NoData, out)
	}
	if strings.Contains(out, "0.00") {
		t.Errorf("Missing mean rendered as zero:\n%s", out)
	}
}

func TestWriteTextValues(t *testing.T) {
	out := &views.Output{
		Title:        "Revenue",
		TotalRows:    3,
		FilteredRows: 3,
		Panels: []views.PanelOutput{
			{Title: "By region", Value: []engine.RegionRevenue{
				{Region: "North", Revenue: 150, AvgTicket: dataset.Float(15)},
				{Region: "South", Revenue: 30},
			}},
			{Title: "Churn", Value: engine.ChurnRates{Rate6m: 4.5, Rate12m: 10}},
		},
	}

	var buf bytes.Buffer
	if err := WriteText(&buf, out); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}

	for _, want := range []string{"150.00", "15.00", "30.00", "no data", "4.50%", "10.00%"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, buf.String())
		}
	}
}

func TestWriteJSONNull(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatJSON, emptyOutput()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	panels := decoded[0]["panels"].([]any)
	first := panels[0].(map[string]any)
	if v, ok := first["value"]; !ok || v != nil {
		t.Errorf("Expected null value for missing mean, got %v", v)
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, "xml", emptyOutput()); err == nil {
		t.Error("Expected error for unknown format, got nil")
	}
}
