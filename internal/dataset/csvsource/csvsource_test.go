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
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/pgEdge/northwind-bi/internal/dataset"
)

const sampleMetrics = `region;category_name;customer_status;product_name;employee_name;shipper_name;customer_id;customer_name;avg_ticket_per_order;avg_ticket_per_customer;avg_ticket_per_region;revenue_by_country;revenue_by_category;revenue_by_employee;low_stock_products;high_stock_products;discontinued_products_with_sales;avg_delivery_time_days;avg_freight_cost_by_shipper;frequent_restock_products_by_region;quantity_sold;extra
Western Europe;Beverages;Ativo;Chai;Nancy Davolio;Speedy Express;ALFKI;Alfreds Futterkiste;100.5;200;150;1000;500;300;1;2;0;7.5;32.1;3;12;x
South America;Seafood;Inativo;Ikura;Janet Leverling;United Package;HANAR;Hanari Carnes;;;;;;;;;;;;;;y
`

func TestReadMetrics(t *testing.T) {
	rows, err := ReadMetrics(strings.NewReader(sampleMetrics), DefaultDelimiter)
	if err != nil {
		t.Fatalf("ReadMetrics failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}

	first := rows[0]
	if first.Region != "Western Europe" || first.CustomerStatus != dataset.StatusActive {
		t.Errorf("Unexpected first row: %+v", first)
	}
	if first.AvgTicketPerOrder == nil || *first.AvgTicketPerOrder != 100.5 {
		t.Errorf("Expected avg ticket 100.5, got %v", first.AvgTicketPerOrder)
	}
	if first.OrderDate != nil {
		t.Errorf("Expected no order date, got %v", first.OrderDate)
	}

	second := rows[1]
	if second.CustomerStatus != dataset.StatusInactive {
		t.Errorf("Expected Inactive, got %s", second.CustomerStatus)
	}
	if second.QuantitySold != nil || second.RevenueByCountry != nil {
		t.Error("Expected empty fields to read as missing values")
	}
}

func TestReadMetricsErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing columns", "region;category_name\nNorth;Beverages\n"},
		{"bad number", strings.Replace(sampleMetrics, "100.5", "abc", 1)},
		{"NaN measure", strings.Replace(sampleMetrics, "100.5", "NaN", 1)},
		{"infinite measure", strings.Replace(sampleMetrics, "100.5", "+Inf", 1)},
		{"short row", strings.Replace(sampleMetrics, ";y\n", "\n", 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadMetrics(strings.NewReader(tt.input), DefaultDelimiter); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestReadChurn(t *testing.T) {
	summary, err := ReadChurn(strings.NewReader("churn_rate_12m;churn_rate_6m\n20;12.5\n"), DefaultDelimiter)
	if err != nil {
		t.Fatalf("ReadChurn failed: %v", err)
	}
	want := []dataset.ChurnRecord{{Rate6m: 12.5, Rate12m: 20}}
	if !reflect.DeepEqual(summary.Records, want) {
		t.Errorf("Expected %v, got %v", want, summary.Records)
	}

	if _, err := ReadChurn(strings.NewReader("churn_rate_6m\n1\n"), DefaultDelimiter); err == nil {
		t.Error("Expected error for missing column, got nil")
	}
	if _, err := ReadChurn(strings.NewReader("churn_rate_12m;churn_rate_6m\n20;NaN\n"), DefaultDelimiter); err == nil {
		t.Error("Expected error for NaN rate, got nil")
	}
}

func TestParseDelimiter(t *testing.T) {
	tests := []struct {
		in      string
		want    rune
		wantErr bool
	}{
		{"", ';', false},
		{",", ',', false},
		{`\t`, '\t', false},
		{"|", '|', false},
		{";;", 0, true},
		{`"`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDelimiter(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	date := time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC)
	rows := []dataset.MetricsRow{
		{
			Region: "North America", CategoryName: "Dairy Products", CustomerStatus: dataset.StatusActive,
			ProductName: "Gorgonzola; Telino", EmployeeName: "Robert King", ShipperName: "Federal Shipping",
			CustomerID: "GREAL", CustomerName: "Great Lakes Food Market", OrderDate: &date,
			RevenueByCountry: dataset.Float(1234.56), QuantitySold: dataset.Float(7),
		},
	}

	var buf bytes.Buffer
	if err := WriteMetrics(&buf, rows, DefaultDelimiter); err != nil {
		t.Fatalf("WriteMetrics failed: %v", err)
	}
	got, err := ReadMetrics(&buf, DefaultDelimiter)
	if err != nil {
		t.Fatalf("ReadMetrics failed: %v", err)
	}
	if !reflect.DeepEqual(got, rows) {
		t.Errorf("Expected %+v, got %+v", rows[0], got[0])
	}
}

func TestSourceLoad(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, MetricsFile), []byte(sampleMetrics), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ChurnFile), []byte("churn_rate_6m;churn_rate_12m\n1;2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	src, err := New(dir, "")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	data := dataset.NewContext(src)
	if err := data.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	rows, _ := data.Metrics()
	if len(rows) != 2 {
		t.Errorf("Expected 2 rows, got %d", len(rows))
	}
}

func TestSourceMissingDirectory(t *testing.T) {
	src, err := New(filepath.Join(t.TempDir(), "absent"), ";")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	_, err = src.LoadMetrics(context.Background())
	if !errors.Is(err, dataset.ErrUnavailable) {
		t.Errorf("Expected ErrUnavailable, got %v", err)
	}
}
