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

// ErrChurnCardinality is returned when the churn summary does not hold
// exactly one record.
var ErrChurnCardinality = errors.New("churn summary must hold exactly one record")

// ChurnRates are the trailing churn percentages.
type ChurnRates struct {
	Rate6m  float64 `json:"churn_rate_6m"`
	Rate12m float64 `json:"churn_rate_12m"`
}

// GetChurnRates returns the rates of the single churn record.
func GetChurnRates(summary dataset.ChurnSummary) (ChurnRates, error) {
	if n := len(summary.Records); n != 1 {
		return ChurnRates{}, fmt.Errorf("%w: found %d", ErrChurnCardinality, n)
	}
	rec := summary.Records[0]
	return ChurnRates{Rate6m: rec.Rate6m, Rate12m: rec.Rate12m}, nil
}

// Result bundles every aggregation of the catalogue for one selection.
// It is built once and never modified.
type Result struct {
	TotalRows    int `json:"total_rows"`
	FilteredRows int `json:"filtered_rows"`

	MeanTicketPerOrder         *float64           `json:"mean_ticket_per_order"`
	MeanTicketPerCustomer      *float64           `json:"mean_ticket_per_customer"`
	TicketTrendByRegion        []MeanPoint        `json:"ticket_trend_by_region"`
	RevenueByRegion            []RegionRevenue    `json:"revenue_by_region"`
	RevenueByCategory          []Point            `json:"revenue_by_category"`
	TopEmployeesByRevenue      []Point            `json:"top_employees_by_revenue"`
	StockStatusTotals          StockStatus        `json:"stock_status_totals"`
	DeliveryTimeDistribution   *Distribution      `json:"delivery_time_distribution"`
	FreightCostByShipper       []MeanPoint        `json:"freight_cost_by_shipper"`
	RestockNeedsByRegion       []RegionCount      `json:"restock_needs_by_region"`
	CustomerStatusDistribution []StatusCount      `json:"customer_status_distribution"`
	TopProductsByQuantity      []Point            `json:"top_products_by_quantity"`
	InactiveCustomersByRegion  []InactiveCustomer `json:"inactive_customers_by_region"`
}

// Build computes the full catalogue over filtered rows. total is the size
// of the unfiltered row set, reported alongside.
func Build(filtered []dataset.MetricsRow, total int) Result {
	return Result{
		TotalRows:                  total,
		FilteredRows:               len(filtered),
		MeanTicketPerOrder:         MeanTicketPerOrder(filtered),
		MeanTicketPerCustomer:      MeanTicketPerCustomer(filtered),
		TicketTrendByRegion:        TicketTrendByRegion(filtered),
		RevenueByRegion:            RevenueByRegion(filtered),
		RevenueByCategory:          RevenueByCategory(filtered),
		TopEmployeesByRevenue:      TopEmployeesByRevenue(filtered),
		StockStatusTotals:          StockStatusTotals(filtered),
		DeliveryTimeDistribution:   DeliveryTimeDistribution(filtered),
		FreightCostByShipper:       FreightCostByShipper(filtered),
		RestockNeedsByRegion:       RestockNeedsByRegion(filtered),
		CustomerStatusDistribution: CustomerStatusDistribution(filtered),
		TopProductsByQuantity:      TopProductsByQuantity(filtered),
		InactiveCustomersByRegion:  InactiveCustomersByRegion(filtered),
	}
}

// Get returns the value of kind from the bundle.
func (r Result) Get(kind Kind) (any, error) {
	switch kind {
	case KindMeanTicketPerOrder:
		return r.MeanTicketPerOrder, nil
	case KindMeanTicketPerCustomer:
		return r.MeanTicketPerCustomer, nil
	case KindTicketTrendByRegion:
		return r.TicketTrendByRegion, nil
	case KindRevenueByRegion:
		return r.RevenueByRegion, nil
	case KindRevenueByCategory:
		return r.RevenueByCategory, nil
	case KindTopEmployeesByRevenue:
		return r.TopEmployeesByRevenue, nil
	case KindStockStatusTotals:
		return r.StockStatusTotals, nil
	case KindDeliveryTimeDistribution:
		return r.DeliveryTimeDistribution, nil
	case KindFreightCostByShipper:
		return r.FreightCostByShipper, nil
	case KindRestockNeedsByRegion:
		return r.RestockNeedsByRegion, nil
	case KindCustomerStatusDistribution:
		return r.CustomerStatusDistribution, nil
	case KindTopProductsByQuantity:
		return r.TopProductsByQuantity, nil
	case KindInactiveCustomersByRegion:
		return r.InactiveCustomersByRegion, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
}
