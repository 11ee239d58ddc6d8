package dataset

import (
	"context"
	"errors"
	"testing"
)

type fakeSource struct {
	metrics    []MetricsRow
	churn      ChurnSummary
	metricsErr error
	calls      int
	closed     bool
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) LoadMetrics(ctx context.Context) ([]MetricsRow, error) {
	f.calls++
	if f.metricsErr != nil {
		return nil, f.metricsErr
	}
	return f.metrics, nil
}

func (f *fakeSource) LoadChurnSummary(ctx context.Context) (ChurnSummary, error) {
	return f.churn, nil
}

func (f *fakeSource) Close() error {
	f.closed = true
	return nil
}

func TestParseCustomerStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want CustomerStatus
	}{
		{"Active", StatusActive},
		{"active", StatusActive},
		{"Ativo", StatusActive},
		{" Inactive ", StatusInactive},
		{"INATIVO", StatusInactive},
		{"Suspended", CustomerStatus("Suspended")},
		{"", CustomerStatus("")},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := ParseCustomerStatus(tt.raw); got != tt.want {
				t.Errorf("ParseCustomerStatus(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestContextLoadsOnce(t *testing.T) {
	src := &fakeSource{
		metrics: []MetricsRow{{Region: "North"}},
		churn:   ChurnSummary{Records: []ChurnRecord{{Rate6m: 10, Rate12m: 20}}},
	}
	dc := NewContext(src)

	if dc.Loaded() {
		t.Fatal("New context should not be loaded")
	}
	if _, err := dc.Metrics(); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Expected ErrNotLoaded before load, got %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := dc.Load(context.Background()); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
	}
	if src.calls != 1 {
		t.Errorf("Expected source to be read once, got %d", src.calls)
	}

	rows, err := dc.Metrics()
	if err != nil {
		t.Fatalf("Metrics failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Region != "North" {
		t.Errorf("Unexpected metrics: %+v", rows)
	}
	churn, err := dc.Churn()
	if err != nil {
		t.Fatalf("Churn failed: %v", err)
	}
	if len(churn.Records) != 1 {
		t.Errorf("Expected 1 churn record, got %d", len(churn.Records))
	}
	if dc.LoadedAt().IsZero() {
		t.Error("LoadedAt should be set after load")
	}
}

func TestContextFailedLoadStaysUnloaded(t *testing.T) {
	src := &fakeSource{metricsErr: ErrUnavailable}
	dc := NewContext(src)

	err := dc.Load(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Expected ErrUnavailable, got %v", err)
	}
	if dc.Loaded() {
		t.Error("Context should stay unloaded after a failed load")
	}
	if _, err := dc.Churn(); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Expected ErrNotLoaded after failed load, got %v", err)
	}

	// A later successful load is allowed
	src.metricsErr = nil
	if err := dc.Load(context.Background()); err != nil {
		t.Fatalf("Retry load failed: %v", err)
	}
	if !dc.Loaded() {
		t.Error("Context should be loaded after retry")
	}
}

func TestStaticContext(t *testing.T) {
	dc := NewStaticContext([]MetricsRow{{Region: "South"}}, ChurnSummary{})
	if !dc.Loaded() {
		t.Fatal("Static context should be loaded")
	}
	if err := dc.Load(context.Background()); err != nil {
		t.Errorf("Load on static context should be a no-op, got %v", err)
	}
	if dc.SourceName() != "static" {
		t.Errorf("Expected source name 'static', got %q", dc.SourceName())
	}
	if err := dc.Close(); err != nil {
		t.Errorf("Close on static context failed: %v", err)
	}
}

func TestContextClose(t *testing.T) {
	src := &fakeSource{}
	dc := NewContext(src)
	if err := dc.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !src.closed {
		t.Error("Close should close the source")
	}
}

func TestResolveColumns(t *testing.T) {
	var all []string
	for _, c := range MetricsColumns {
		if c.Name != "order_date" {
			all = append(all, c.Name)
		}
	}

	cols, err := ResolveColumns(append([]string{"extra_column"}, all...))
	if err != nil {
		t.Fatalf("ResolveColumns failed: %v", err)
	}
	if len(cols) != len(MetricsColumns)-1 {
		t.Errorf("Expected %d columns, got %d", len(MetricsColumns)-1, len(cols))
	}
	if cols[0].Name != "region" {
		t.Errorf("Expected canonical order starting with region, got %s", cols[0].Name)
	}

	_, err = ResolveColumns([]string{"REGION", "category_name"})
	if err == nil {
		t.Fatal("Expected error for missing required columns")
	}
}

func TestColumnParseAndFormat(t *testing.T) {
	cols, err := ResolveColumns(columnNames())
	if err != nil {
		t.Fatalf("ResolveColumns failed: %v", err)
	}
	byName := make(map[string]Column)
	for _, c := range cols {
		byName[c.Name] = c
	}

	var row MetricsRow
	inputs := map[string]string{
		"region":               " North ",
		"customer_status":      "Inativo",
		"order_date":           "1997-03-14",
		"avg_ticket_per_order": "125.5",
		"quantity_sold":        "",
	}
	for name, raw := range inputs {
		if err := byName[name].Parse(&row, raw); err != nil {
			t.Fatalf("Parse %s failed: %v", name, err)
		}
	}

	if row.Region != "North" {
		t.Errorf("Expected trimmed region, got %q", row.Region)
	}
	if row.CustomerStatus != StatusInactive {
		t.Errorf("Expected Inactive, got %q", row.CustomerStatus)
	}
	if row.OrderDate == nil || row.OrderDate.Format(DateLayout) != "1997-03-14" {
		t.Errorf("Unexpected order date: %v", row.OrderDate)
	}
	if row.AvgTicketPerOrder == nil || *row.AvgTicketPerOrder != 125.5 {
		t.Errorf("Unexpected avg ticket: %v", row.AvgTicketPerOrder)
	}
	if row.QuantitySold != nil {
		t.Errorf("Empty measure should stay nil, got %v", *row.QuantitySold)
	}

	if got := byName["avg_ticket_per_order"].Format(row); got != "125.5" {
		t.Errorf("Format avg_ticket_per_order = %q", got)
	}
	if got := byName["quantity_sold"].Format(row); got != "" {
		t.Errorf("Format nil measure = %q, want empty", got)
	}
	if got := byName["customer_status"].Format(row); got != "Inactive" {
		t.Errorf("Format status = %q", got)
	}

	if err := byName["quantity_sold"].Parse(&row, "lots"); err == nil {
		t.Error("Expected error for invalid number")
	}
	if err := byName["order_date"].Parse(&row, "yesterday"); err == nil {
		t.Error("Expected error for invalid date")
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{"125.5", 125.5, false},
		{" -3 ", -3, false},
		{"1e3", 1000, false},
		{"", 0, true},
		{"lots", 0, true},
		{"NaN", 0, true},
		{"Inf", 0, true},
		{"-infinity", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseNumber(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestRowScanner(t *testing.T) {
	cols, err := ResolveColumns(columnNames())
	if err != nil {
		t.Fatalf("ResolveColumns failed: %v", err)
	}
	s := NewRowScanner(cols)

	targets := s.Targets()
	if len(targets) != len(cols) {
		t.Fatalf("Expected %d targets, got %d", len(cols), len(targets))
	}

	// Simulate a driver filling the destinations.
	region := "West"
	status := "Ativo"
	*(targets[0].(**string)) = &region
	*(targets[2].(**string)) = &status
	for i, c := range cols {
		if c.Name == "revenue_by_country" {
			*(targets[i].(**float64)) = Float(99)
		}
	}

	row := s.Row()
	if row.Region != "West" {
		t.Errorf("Expected region West, got %q", row.Region)
	}
	if row.CustomerStatus != StatusActive {
		t.Errorf("Expected Active, got %q", row.CustomerStatus)
	}
	if row.CategoryName != "" {
		t.Errorf("NULL text should scan as empty, got %q", row.CategoryName)
	}
	if row.RevenueByCountry == nil || *row.RevenueByCountry != 99 {
		t.Errorf("Unexpected revenue: %v", row.RevenueByCountry)
	}

	// A fresh scan does not leak previous values.
	s.Targets()
	if next := s.Row(); next.RevenueByCountry != nil || next.Region != "" {
		t.Errorf("Scanner leaked values across rows: %+v", next)
	}
}

func columnNames() []string {
	names := make([]string, len(MetricsColumns))
	for i, c := range MetricsColumns {
		names[i] = c.Name
	}
	return names
}
