//-------------------------------------------------------------------------
//
// pgEdge Northwind BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ColumnKind classifies how a fact table column is read and written.
type ColumnKind int

// Column kinds.
const (
	KindText ColumnKind = iota
	KindStatus
	KindNumber
	KindDate
)

// DateLayout is the textual form of order dates in files.
const DateLayout = "2006-01-02"

// Column describes one column of the metrics fact table and binds it to
// its MetricsRow field.
type Column struct {
	Name     string
	Kind     ColumnKind
	Required bool

	text   func(*MetricsRow) *string
	number func(*MetricsRow) **float64
}

func textColumn(name string, field func(*MetricsRow) *string) Column {
	return Column{Name: name, Kind: KindText, Required: true, text: field}
}

func numberColumn(name string, field func(*MetricsRow) **float64) Column {
	return Column{Name: name, Kind: KindNumber, Required: true, number: field}
}

// MetricsColumns lists the fact table columns in canonical order.
var MetricsColumns = []Column{
	textColumn("region", func(r *MetricsRow) *string { return &r.Region }),
	textColumn("category_name", func(r *MetricsRow) *string { return &r.CategoryName }),
	{Name: "customer_status", Kind: KindStatus, Required: true},
	textColumn("product_name", func(r *MetricsRow) *string { return &r.ProductName }),
	textColumn("employee_name", func(r *MetricsRow) *string { return &r.EmployeeName }),
	textColumn("shipper_name", func(r *MetricsRow) *string { return &r.ShipperName }),
	textColumn("customer_id", func(r *MetricsRow) *string { return &r.CustomerID }),
	textColumn("customer_name", func(r *MetricsRow) *string { return &r.CustomerName }),
	{Name: "order_date", Kind: KindDate},
	numberColumn("avg_ticket_per_order", func(r *MetricsRow) **float64 { return &r.AvgTicketPerOrder }),
	numberColumn("avg_ticket_per_customer", func(r *MetricsRow) **float64 { return &r.AvgTicketPerCustomer }),
	numberColumn("avg_ticket_per_region", func(r *MetricsRow) **float64 { return &r.AvgTicketPerRegion }),
	numberColumn("revenue_by_country", func(r *MetricsRow) **float64 { return &r.RevenueByCountry }),
	numberColumn("revenue_by_category", func(r *MetricsRow) **float64 { return &r.RevenueByCategory }),
	numberColumn("revenue_by_employee", func(r *MetricsRow) **float64 { return &r.RevenueByEmployee }),
	numberColumn("low_stock_products", func(r *MetricsRow) **float64 { return &r.LowStockProducts }),
	numberColumn("high_stock_products", func(r *MetricsRow) **float64 { return &r.HighStockProducts }),
	numberColumn("discontinued_products_with_sales", func(r *MetricsRow) **float64 { return &r.DiscontinuedProductsWithSales }),
	numberColumn("avg_delivery_time_days", func(r *MetricsRow) **float64 { return &r.AvgDeliveryTimeDays }),
	numberColumn("avg_freight_cost_by_shipper", func(r *MetricsRow) **float64 { return &r.AvgFreightCostByShipper }),
	numberColumn("frequent_restock_products_by_region", func(r *MetricsRow) **float64 { return &r.FrequentRestockProductsByRegion }),
	numberColumn("quantity_sold", func(r *MetricsRow) **float64 { return &r.QuantitySold }),
}

// ChurnColumns lists the churn summary columns in scan order.
var ChurnColumns = []string{"churn_rate_6m", "churn_rate_12m"}

// ResolveColumns returns the fact table columns present in available, in
// canonical order. Column names are matched case-insensitively. It fails
// listing every required column that is missing.
func ResolveColumns(available []string) ([]Column, error) {
	present := make(map[string]bool, len(available))
	for _, name := range available {
		present[strings.ToLower(strings.TrimSpace(name))] = true
	}

	var cols []Column
	var missing []string
	for _, c := range MetricsColumns {
		if present[c.Name] {
			cols = append(cols, c)
		} else if c.Required {
			missing = append(missing, c.Name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("metrics table is missing columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

// ParseNumber parses a measure. NaN and infinities are rejected since no
// aggregate or JSON encoding can carry them.
func ParseNumber(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	return v, nil
}

// Parse sets the column's field on row from its textual form. Empty
// input leaves measures and dates nil.
func (c Column) Parse(row *MetricsRow, raw string) error {
	raw = strings.TrimSpace(raw)
	switch c.Kind {
	case KindText:
		*c.text(row) = raw
	case KindStatus:
		row.CustomerStatus = ParseCustomerStatus(raw)
	case KindNumber:
		if raw == "" {
			*c.number(row) = nil
			return nil
		}
		v, err := ParseNumber(raw)
		if err != nil {
			return fmt.Errorf("column %s: %w", c.Name, err)
		}
		*c.number(row) = &v
	case KindDate:
		if raw == "" {
			row.OrderDate = nil
			return nil
		}
		t, err := parseDate(raw)
		if err != nil {
			return fmt.Errorf("column %s: %w", c.Name, err)
		}
		row.OrderDate = &t
	}
	return nil
}

// Format returns the textual form of the column's field on row.
func (c Column) Format(row MetricsRow) string {
	switch c.Kind {
	case KindText:
		return *c.text(&row)
	case KindStatus:
		return string(row.CustomerStatus)
	case KindNumber:
		v := *c.number(&row)
		if v == nil {
			return ""
		}
		return strconv.FormatFloat(*v, 'f', -1, 64)
	case KindDate:
		if row.OrderDate == nil {
			return ""
		}
		return row.OrderDate.Format(DateLayout)
	}
	return ""
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range []string{DateLayout, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}

// RowScanner produces scan destinations for a database row holding the
// given columns and assembles the scanned values into a MetricsRow.
// Destinations are pointer-to-pointer so NULLs scan as nil.
type RowScanner struct {
	cols []Column
	row  MetricsRow
	text []*string
}

// NewRowScanner returns a scanner for cols, in that order.
func NewRowScanner(cols []Column) *RowScanner {
	return &RowScanner{cols: cols}
}

// Targets resets the scanner and returns one destination per column.
func (s *RowScanner) Targets() []any {
	s.row = MetricsRow{}
	s.text = make([]*string, len(s.cols))

	targets := make([]any, len(s.cols))
	for i, c := range s.cols {
		switch c.Kind {
		case KindText, KindStatus:
			targets[i] = &s.text[i]
		case KindNumber:
			targets[i] = c.number(&s.row)
		case KindDate:
			targets[i] = &s.row.OrderDate
		}
	}
	return targets
}

// Row returns the row assembled from the last scan.
func (s *RowScanner) Row() MetricsRow {
	row := s.row
	for i, c := range s.cols {
		var v string
		if s.text[i] != nil {
			v = *s.text[i]
		}
		switch c.Kind {
		case KindText:
			*c.text(&row) = v
		case KindStatus:
			row.CustomerStatus = ParseCustomerStatus(v)
		}
	}
	return row
}
