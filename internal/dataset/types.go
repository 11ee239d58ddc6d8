//-------------------------------------------------------------------------
//
// pgEdge Northwind BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package dataset defines the dashboard data model, the contract every
// data source implements, and the load-once data context handed to the
// aggregation engine.
package dataset

import (
	"strings"
	"time"
)

// CustomerStatus is the activity state of a customer.
type CustomerStatus string

// Known customer states.
const (
	StatusActive   CustomerStatus = "Active"
	StatusInactive CustomerStatus = "Inactive"
)

// Statuses lists the known customer states in display order.
var Statuses = []CustomerStatus{StatusActive, StatusInactive}

// ParseCustomerStatus normalizes a raw status label. The Northwind export
// uses Portuguese labels, so "Ativo" and "Inativo" are accepted as well.
// Unrecognized labels are returned trimmed but otherwise unchanged.
func ParseCustomerStatus(raw string) CustomerStatus {
	s := strings.TrimSpace(raw)
	switch strings.ToLower(s) {
	case "active", "ativo":
		return StatusActive
	case "inactive", "inativo":
		return StatusInactive
	}
	return CustomerStatus(s)
}

// MetricsRow is one row of the denormalized metrics fact table.
// Measures are nil where the source holds no value; a nil measure
// contributes nothing to an aggregate.
type MetricsRow struct {
	Region         string         `json:"region"`
	CategoryName   string         `json:"category_name"`
	CustomerStatus CustomerStatus `json:"customer_status"`
	ProductName    string         `json:"product_name"`
	EmployeeName   string         `json:"employee_name"`
	ShipperName    string         `json:"shipper_name"`
	CustomerID     string         `json:"customer_id"`
	CustomerName   string         `json:"customer_name"`
	OrderDate      *time.Time     `json:"order_date,omitempty"`

	AvgTicketPerOrder               *float64 `json:"avg_ticket_per_order"`
	AvgTicketPerCustomer            *float64 `json:"avg_ticket_per_customer"`
	AvgTicketPerRegion              *float64 `json:"avg_ticket_per_region"`
	RevenueByCountry                *float64 `json:"revenue_by_country"`
	RevenueByCategory               *float64 `json:"revenue_by_category"`
	RevenueByEmployee               *float64 `json:"revenue_by_employee"`
	LowStockProducts                *float64 `json:"low_stock_products"`
	HighStockProducts               *float64 `json:"high_stock_products"`
	DiscontinuedProductsWithSales   *float64 `json:"discontinued_products_with_sales"`
	AvgDeliveryTimeDays             *float64 `json:"avg_delivery_time_days"`
	AvgFreightCostByShipper         *float64 `json:"avg_freight_cost_by_shipper"`
	FrequentRestockProductsByRegion *float64 `json:"frequent_restock_products_by_region"`
	QuantitySold                    *float64 `json:"quantity_sold"`
}

// ChurnRecord is one row of the churn summary table. Rates are
// percentages in the range 0-100.
type ChurnRecord struct {
	Rate6m  float64 `json:"churn_rate_6m"`
	Rate12m float64 `json:"churn_rate_12m"`
}

// ChurnSummary holds every record read from the churn summary table.
// Exactly one record is expected; callers validate the cardinality
// instead of trusting the first row.
type ChurnSummary struct {
	Records []ChurnRecord `json:"records"`
}

// Float returns a pointer to v, for building rows in code.
func Float(v float64) *float64 {
	return &v
}
