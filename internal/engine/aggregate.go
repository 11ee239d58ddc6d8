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
	"math"
	"sort"

	"github.com/pgEdge/northwind-bi/internal/dataset"
)

// TopN is the number of entries kept by the ranking aggregations.
const TopN = 10

// Point is one labelled value of a grouped series.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// MeanPoint is one labelled mean of a grouped series. Value is nil when
// no row in the group carries the measure.
type MeanPoint struct {
	Label string   `json:"label"`
	Value *float64 `json:"value"`
}

// RegionRevenue is the revenue of a region with its mean ticket overlay.
type RegionRevenue struct {
	Region    string   `json:"region"`
	Revenue   float64  `json:"revenue"`
	AvgTicket *float64 `json:"avg_ticket"`
}

// StockStatus holds the stock bucket totals.
type StockStatus struct {
	LowStock              float64 `json:"low_stock"`
	HighStock             float64 `json:"high_stock"`
	DiscontinuedWithSales float64 `json:"discontinued_with_sales"`
}

// Distribution summarizes a measure as a box plot does.
type Distribution struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// RegionCount is an integer total per region.
type RegionCount struct {
	Region string `json:"region"`
	Count  int64  `json:"count"`
}

// StatusCount is the number of rows per customer status.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// InactiveCustomer identifies an inactive customer and its region.
type InactiveCustomer struct {
	CustomerID   string `json:"customer_id"`
	CustomerName string `json:"customer_name"`
	Region       string `json:"region"`
}

type measure func(*dataset.MetricsRow) *float64
type key func(*dataset.MetricsRow) string

func byRegion(r *dataset.MetricsRow) string   { return r.Region }
func byCategory(r *dataset.MetricsRow) string { return r.CategoryName }
func byEmployee(r *dataset.MetricsRow) string { return r.EmployeeName }
func byShipper(r *dataset.MetricsRow) string  { return r.ShipperName }
func byProduct(r *dataset.MetricsRow) string  { return r.ProductName }

// MeanTicketPerOrder is the mean of avg_ticket_per_order, or nil.
func MeanTicketPerOrder(rows []dataset.MetricsRow) *float64 {
	return mean(rows, func(r *dataset.MetricsRow) *float64 { return r.AvgTicketPerOrder })
}

// MeanTicketPerCustomer is the mean of avg_ticket_per_customer, or nil.
func MeanTicketPerCustomer(rows []dataset.MetricsRow) *float64 {
	return mean(rows, func(r *dataset.MetricsRow) *float64 { return r.AvgTicketPerCustomer })
}

// TicketTrendByRegion is the mean of avg_ticket_per_region per region,
// ordered by region.
func TicketTrendByRegion(rows []dataset.MetricsRow) []MeanPoint {
	return groupMean(rows, byRegion, func(r *dataset.MetricsRow) *float64 { return r.AvgTicketPerRegion })
}

// RevenueByRegion sums revenue_by_country per region and overlays the mean
// of avg_ticket_per_region, ordered by region.
func RevenueByRegion(rows []dataset.MetricsRow) []RegionRevenue {
	revenue := groupSum(rows, byRegion, func(r *dataset.MetricsRow) *float64 { return r.RevenueByCountry })
	tickets := groupMean(rows, byRegion, func(r *dataset.MetricsRow) *float64 { return r.AvgTicketPerRegion })

	out := make([]RegionRevenue, len(revenue))
	for i := range revenue {
		// Both series group the same rows by the same key, so they align.
		out[i] = RegionRevenue{
			Region:    revenue[i].Label,
			Revenue:   revenue[i].Value,
			AvgTicket: tickets[i].Value,
		}
	}
	return out
}

// RevenueByCategory sums revenue_by_category per category, largest first.
func RevenueByCategory(rows []dataset.MetricsRow) []Point {
	points := groupSum(rows, byCategory, func(r *dataset.MetricsRow) *float64 { return r.RevenueByCategory })
	sortDescending(points)
	return points
}

// TopEmployeesByRevenue ranks employees by summed revenue_by_employee.
func TopEmployeesByRevenue(rows []dataset.MetricsRow) []Point {
	points := groupSum(rows, byEmployee, func(r *dataset.MetricsRow) *float64 { return r.RevenueByEmployee })
	return top(points, TopN)
}

// StockStatusTotals sums the three stock buckets.
func StockStatusTotals(rows []dataset.MetricsRow) StockStatus {
	return StockStatus{
		LowStock:              sum(rows, func(r *dataset.MetricsRow) *float64 { return r.LowStockProducts }),
		HighStock:             sum(rows, func(r *dataset.MetricsRow) *float64 { return r.HighStockProducts }),
		DiscontinuedWithSales: sum(rows, func(r *dataset.MetricsRow) *float64 { return r.DiscontinuedProductsWithSales }),
	}
}

// DeliveryTimeDistribution summarizes avg_delivery_time_days, or returns
// nil when no row carries it.
func DeliveryTimeDistribution(rows []dataset.MetricsRow) *Distribution {
	vals := values(rows, func(r *dataset.MetricsRow) *float64 { return r.AvgDeliveryTimeDays })
	if len(vals) == 0 {
		return nil
	}
	sort.Float64s(vals)
	return &Distribution{
		Count:  len(vals),
		Min:    vals[0],
		Q1:     quantile(vals, 0.25),
		Median: quantile(vals, 0.5),
		Q3:     quantile(vals, 0.75),
		Max:    vals[len(vals)-1],
	}
}

// FreightCostByShipper is the mean of avg_freight_cost_by_shipper per
// shipper, ordered by shipper.
func FreightCostByShipper(rows []dataset.MetricsRow) []MeanPoint {
	return groupMean(rows, byShipper, func(r *dataset.MetricsRow) *float64 { return r.AvgFreightCostByShipper })
}

// RestockNeedsByRegion sums frequent_restock_products_by_region per region,
// truncated to an integer, ordered by region.
func RestockNeedsByRegion(rows []dataset.MetricsRow) []RegionCount {
	points := groupSum(rows, byRegion, func(r *dataset.MetricsRow) *float64 { return r.FrequentRestockProductsByRegion })
	out := make([]RegionCount, len(points))
	for i, p := range points {
		out[i] = RegionCount{Region: p.Label, Count: int64(p.Value)}
	}
	return out
}

// CustomerStatusDistribution counts rows per customer status. Known
// statuses come first in their fixed order, then any others by label.
func CustomerStatusDistribution(rows []dataset.MetricsRow) []StatusCount {
	counts := make(map[string]int)
	for i := range rows {
		counts[string(rows[i].CustomerStatus)]++
	}

	rank := make(map[string]int, len(dataset.Statuses))
	for i, s := range dataset.Statuses {
		rank[string(s)] = i
	}

	out := make([]StatusCount, 0, len(counts))
	for status, n := range counts {
		out = append(out, StatusCount{Status: status, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		ri, iKnown := rank[out[i].Status]
		rj, jKnown := rank[out[j].Status]
		switch {
		case iKnown && jKnown:
			return ri < rj
		case iKnown != jKnown:
			return iKnown
		default:
			return out[i].Status < out[j].Status
		}
	})
	return out
}

// TopProductsByQuantity ranks products by summed quantity_sold.
func TopProductsByQuantity(rows []dataset.MetricsRow) []Point {
	points := groupSum(rows, byProduct, func(r *dataset.MetricsRow) *float64 { return r.QuantitySold })
	return top(points, TopN)
}

// InactiveCustomersByRegion lists the distinct inactive customers, in the
// order they first appear.
func InactiveCustomersByRegion(rows []dataset.MetricsRow) []InactiveCustomer {
	seen := make(map[InactiveCustomer]struct{})
	out := make([]InactiveCustomer, 0)
	for i := range rows {
		if rows[i].CustomerStatus != dataset.StatusInactive {
			continue
		}
		c := InactiveCustomer{
			CustomerID:   rows[i].CustomerID,
			CustomerName: rows[i].CustomerName,
			Region:       rows[i].Region,
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func values(rows []dataset.MetricsRow, m measure) []float64 {
	out := make([]float64, 0, len(rows))
	for i := range rows {
		if v := m(&rows[i]); v != nil && !math.IsNaN(*v) {
			out = append(out, *v)
		}
	}
	return out
}

func sum(rows []dataset.MetricsRow, m measure) float64 {
	var total float64
	for _, v := range values(rows, m) {
		total += v
	}
	return total
}

func mean(rows []dataset.MetricsRow, m measure) *float64 {
	vals := values(rows, m)
	if len(vals) == 0 {
		return nil
	}
	var total float64
	for _, v := range vals {
		total += v
	}
	avg := total / float64(len(vals))
	return &avg
}

// partition groups rows by key, returning the keys in ascending order.
func partition(rows []dataset.MetricsRow, k key) ([]string, map[string][]dataset.MetricsRow) {
	groups := make(map[string][]dataset.MetricsRow)
	for i := range rows {
		label := k(&rows[i])
		groups[label] = append(groups[label], rows[i])
	}
	keys := make([]string, 0, len(groups))
	for label := range groups {
		keys = append(keys, label)
	}
	sort.Strings(keys)
	return keys, groups
}

func groupSum(rows []dataset.MetricsRow, k key, m measure) []Point {
	keys, groups := partition(rows, k)
	out := make([]Point, len(keys))
	for i, label := range keys {
		out[i] = Point{Label: label, Value: sum(groups[label], m)}
	}
	return out
}

func groupMean(rows []dataset.MetricsRow, k key, m measure) []MeanPoint {
	keys, groups := partition(rows, k)
	out := make([]MeanPoint, len(keys))
	for i, label := range keys {
		out[i] = MeanPoint{Label: label, Value: mean(groups[label], m)}
	}
	return out
}

// sortDescending orders points by value, largest first, ties by label.
func sortDescending(points []Point) {
	sort.SliceStable(points, func(i, j int) bool {
		if points[i].Value != points[j].Value {
			return points[i].Value > points[j].Value
		}
		return points[i].Label < points[j].Label
	})
}

func top(points []Point, n int) []Point {
	sortDescending(points)
	if len(points) > n {
		points = points[:n]
	}
	return points
}

// quantile interpolates linearly between the closest ranks of sorted.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
