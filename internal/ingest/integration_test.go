//-------------------------------------------------------------------------
//
// pgEdge Northwind BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

//go:build integration
// +build integration

// Integration tests for loading files into PostgreSQL and reading them
// back through the postgres data source.
// Run with: go test -tags=integration ./internal/ingest/...
// Requires PostgreSQL to be available.
// Set NORTHWIND_TEST_CONN environment variable to override connection string.

package ingest_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pgEdge/northwind-bi/internal/dataset"
	"github.com/pgEdge/northwind-bi/internal/dataset/pgsource"
	"github.com/pgEdge/northwind-bi/internal/db"
	"github.com/pgEdge/northwind-bi/internal/engine"
	"github.com/pgEdge/northwind-bi/internal/ingest"
	"github.com/pgEdge/northwind-bi/internal/testutil"
)

const metricsCSV = `region;category_name;customer_status;product_name;employee_name;shipper_name;customer_id;customer_name;order_date;avg_ticket_per_order;avg_ticket_per_customer;avg_ticket_per_region;revenue_by_country;revenue_by_category;revenue_by_employee;low_stock_products;high_stock_products;discontinued_products_with_sales;avg_delivery_time_days;avg_freight_cost_by_shipper;frequent_restock_products_by_region;quantity_sold
North;Beverages;Ativo;Chai;Nancy Davolio;Speedy Express;ALFKI;Alfreds Futterkiste;2024-01-10;10;20;30;100;50;70;1;0;0;5;12.5;2;3
North;Seafood;Inativo;Ikura;Janet Leverling;United Package;HANAR;Hanari Carnes;2024-02-11;20;;;50;25;30;0;1;0;7;8;1;4
South;Beverages;Ativo;Chang;Nancy Davolio;Federal Shipping;QUICK;QUICK-Stop;;30;40;50;30;10;20;2;1;1;9;6;3;5
`

func setup(t *testing.T) (context.Context, *ingest.PostgresTarget, *testutil.TestDB) {
	tdb := testutil.NewTestDB(t, "ingest")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancel)

	target := ingest.NewPostgresTarget(tdb.Pool)
	if err := target.Prepare(ctx, "public_metrics"); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	return ctx, target, tdb
}

func writeDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	return dir
}

func TestLoadAndRead(t *testing.T) {
	ctx, target, tdb := setup(t)

	dir := writeDir(t, map[string]string{
		"metrics.csv": metricsCSV,
		"churns.csv":  "churn_rate_6m;churn_rate_12m\n12.5;20\n",
	})
	summary, err := ingest.Run(ctx, target, ingest.Options{Dir: dir, Delimiter: ';', Schema: "public_metrics"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if err := summary.Err(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	src, err := pgsource.Open(ctx, tdb.ConnString, "", "")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	data := dataset.NewContext(src)
	defer data.Close()
	if err := data.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	e, err := engine.New(data)
	if err != nil {
		t.Fatalf("engine.New failed: %v", err)
	}
	res := e.Run(e.Select(engine.AllRequest()))
	if res.FilteredRows != 3 {
		t.Fatalf("Expected 3 rows, got %d", res.FilteredRows)
	}
	if len(res.RevenueByRegion) != 2 || res.RevenueByRegion[0].Revenue != 150 {
		t.Errorf("Expected North revenue 150, got %+v", res.RevenueByRegion)
	}
	if len(res.InactiveCustomersByRegion) != 1 || res.InactiveCustomersByRegion[0].CustomerID != "HANAR" {
		t.Errorf("Expected HANAR inactive, got %+v", res.InactiveCustomersByRegion)
	}

	rates, err := e.Churn()
	if err != nil {
		t.Fatalf("Churn failed: %v", err)
	}
	if rates.Rate6m != 12.5 || rates.Rate12m != 20 {
		t.Errorf("Expected 12.5/20, got %+v", rates)
	}
}

func TestFailedReplaceKeepsPreviousTable(t *testing.T) {
	ctx, target, tdb := setup(t)

	good := writeDir(t, map[string]string{"churns.csv": "churn_rate_6m;churn_rate_12m\n1;2\n"})
	summary, err := ingest.Run(ctx, target, ingest.Options{Dir: good, Delimiter: ';', Schema: "public_metrics"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if err := summary.Err(); err != nil {
		t.Fatalf("Initial load failed: %v", err)
	}

	// A text value cannot be copied into a BIGINT column.
	bad := &ingest.Table{
		Name:    "churns",
		File:    "churns.csv",
		Columns: []ingest.Column{{Name: "churn_rate_6m", Type: ingest.TypeBigint}},
		Rows:    [][]any{{"not a number"}},
	}
	if _, err := target.ReplaceTable(ctx, "public_metrics", bad); err == nil {
		t.Fatal("Expected ReplaceTable to fail")
	}

	src, err := pgsource.Open(ctx, tdb.ConnString, "public_metrics.missing", "")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer src.Close()

	churn, err := src.LoadChurnSummary(ctx)
	if err != nil {
		t.Fatalf("Expected previous table to survive, got %v", err)
	}
	if len(churn.Records) != 1 || churn.Records[0].Rate12m != 2 {
		t.Errorf("Unexpected churn records: %+v", churn.Records)
	}

	if _, err := src.LoadMetrics(ctx); !errors.Is(err, dataset.ErrUnavailable) {
		t.Errorf("Expected ErrUnavailable for a missing table, got %v", err)
	}

	records, err := db.LoadLog(ctx, tdb.Pool)
	if err != nil {
		t.Fatalf("LoadLog failed: %v", err)
	}
	if len(records) != 1 || records[0].Table != `"public_metrics"."churns"` {
		t.Errorf("Expected one load log entry, got %+v", records)
	}
}
