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
	"fmt"

	"github.com/pgEdge/northwind-bi/internal/dataset"
)

// ErrUnknownKind is returned for an aggregation kind outside the catalogue.
var ErrUnknownKind = errors.New("unknown aggregation kind")

// Kind names one aggregation of the catalogue.
type Kind string

// Aggregation kinds.
const (
	KindMeanTicketPerOrder         Kind = "mean_ticket_per_order"
	KindMeanTicketPerCustomer      Kind = "mean_ticket_per_customer"
	KindTicketTrendByRegion        Kind = "ticket_trend_by_region"
	KindRevenueByRegion            Kind = "revenue_by_region"
	KindRevenueByCategory          Kind = "revenue_by_category"
	KindTopEmployeesByRevenue      Kind = "top_employees_by_revenue"
	KindStockStatusTotals          Kind = "stock_status_totals"
	KindDeliveryTimeDistribution   Kind = "delivery_time_distribution"
	KindFreightCostByShipper       Kind = "freight_cost_by_shipper"
	KindRestockNeedsByRegion       Kind = "restock_needs_by_region"
	KindCustomerStatusDistribution Kind = "customer_status_distribution"
	KindTopProductsByQuantity      Kind = "top_products_by_quantity"
	KindInactiveCustomersByRegion  Kind = "inactive_customers_by_region"
)

// KindDefinition describes an aggregation of the catalogue.
type KindDefinition struct {
	// Kind is the aggregation identifier.
	Kind Kind

	// Title is the heading shown above the aggregation.
	Title string

	// Description describes what the aggregation computes.
	Description string

	// Reducer is one of mean, sum, count, distribution or none.
	Reducer string

	compute func([]dataset.MetricsRow) any
}

var catalogue = []KindDefinition{
	{
		Kind:        KindMeanTicketPerOrder,
		Title:       "Average Ticket per Order",
		Description: "Mean of avg_ticket_per_order over the filtered rows",
		Reducer:     "mean",
		compute:     func(rows []dataset.MetricsRow) any { return MeanTicketPerOrder(rows) },
	},
	{
		Kind:        KindMeanTicketPerCustomer,
		Title:       "Average Ticket per Customer",
		Description: "Mean of avg_ticket_per_customer over the filtered rows",
		Reducer:     "mean",
		compute:     func(rows []dataset.MetricsRow) any { return MeanTicketPerCustomer(rows) },
	},
	{
		Kind:        KindTicketTrendByRegion,
		Title:       "Average Ticket by Region",
		Description: "Mean of avg_ticket_per_region per region",
		Reducer:     "mean",
		compute:     func(rows []dataset.MetricsRow) any { return TicketTrendByRegion(rows) },
	},
	{
		Kind:        KindRevenueByRegion,
		Title:       "Revenue and Average Ticket by Region",
		Description: "Sum of revenue_by_country per region with the mean ticket overlay",
		Reducer:     "sum",
		compute:     func(rows []dataset.MetricsRow) any { return RevenueByRegion(rows) },
	},
	{
		Kind:        KindRevenueByCategory,
		Title:       "Revenue by Category",
		Description: "Sum of revenue_by_category per category, largest first",
		Reducer:     "sum",
		compute:     func(rows []dataset.MetricsRow) any { return RevenueByCategory(rows) },
	},
	{
		Kind:        KindTopEmployeesByRevenue,
		Title:       "Top 10 Employees by Revenue",
		Description: "Employees ranked by summed revenue_by_employee",
		Reducer:     "sum",
		compute:     func(rows []dataset.MetricsRow) any { return TopEmployeesByRevenue(rows) },
	},
	{
		Kind:        KindStockStatusTotals,
		Title:       "Stock Status",
		Description: "Totals of low-stock, high-stock and discontinued-with-sales products",
		Reducer:     "sum",
		compute:     func(rows []dataset.MetricsRow) any { return StockStatusTotals(rows) },
	},
	{
		Kind:        KindDeliveryTimeDistribution,
		Title:       "Average Delivery Time (Days)",
		Description: "Min, quartiles, median and max of avg_delivery_time_days",
		Reducer:     "distribution",
		compute:     func(rows []dataset.MetricsRow) any { return DeliveryTimeDistribution(rows) },
	},
	{
		Kind:        KindFreightCostByShipper,
		Title:       "Average Freight Cost by Shipper",
		Description: "Mean of avg_freight_cost_by_shipper per shipper",
		Reducer:     "mean",
		compute:     func(rows []dataset.MetricsRow) any { return FreightCostByShipper(rows) },
	},
	{
		Kind:        KindRestockNeedsByRegion,
		Title:       "Products Needing Restock by Region",
		Description: "Sum of frequent_restock_products_by_region per region",
		Reducer:     "sum",
		compute:     func(rows []dataset.MetricsRow) any { return RestockNeedsByRegion(rows) },
	},
	{
		Kind:        KindCustomerStatusDistribution,
		Title:       "Customer Status Distribution",
		Description: "Number of rows per customer status",
		Reducer:     "count",
		compute:     func(rows []dataset.MetricsRow) any { return CustomerStatusDistribution(rows) },
	},
	{
		Kind:        KindTopProductsByQuantity,
		Title:       "Top 10 Products by Quantity Sold",
		Description: "Products ranked by summed quantity_sold",
		Reducer:     "sum",
		compute:     func(rows []dataset.MetricsRow) any { return TopProductsByQuantity(rows) },
	},
	{
		Kind:        KindInactiveCustomersByRegion,
		Title:       "Inactive Customers by Region",
		Description: "Distinct inactive customers with their region",
		Reducer:     "none",
		compute:     func(rows []dataset.MetricsRow) any { return InactiveCustomersByRegion(rows) },
	},
}

// Kinds returns the catalogue in display order.
func Kinds() []KindDefinition {
	return append([]KindDefinition(nil), catalogue...)
}

// Lookup returns the definition of kind.
func Lookup(kind Kind) (KindDefinition, error) {
	for _, def := range catalogue {
		if def.Kind == kind {
			return def, nil
		}
	}
	return KindDefinition{}, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
}

// Aggregate computes a single aggregation over already filtered rows. The
// concrete result type depends on kind: *float64 for the scalar means,
// a slice for grouped series, StockStatus or *Distribution.
func Aggregate(rows []dataset.MetricsRow, kind Kind) (any, error) {
	def, err := Lookup(kind)
	if err != nil {
		return nil, err
	}
	return def.compute(rows), nil
}
