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
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/pgEdge/northwind-bi/internal/dataset"
)

// All is the sentinel filter value meaning every known value of a
// dimension. It is expanded when a Selection is built, never matched
// against rows.
const All = "all"

// Dimension names a set-valued filter dimension.
type Dimension string

// Filter dimensions.
const (
	DimRegion   Dimension = "region"
	DimCategory Dimension = "category"
	DimStatus   Dimension = "status"
	DimProduct  Dimension = "product"
)

// Dimensions lists the filter dimensions in sidebar order.
var Dimensions = []Dimension{DimRegion, DimCategory, DimStatus, DimProduct}

func (d Dimension) value(row *dataset.MetricsRow) string {
	switch d {
	case DimRegion:
		return row.Region
	case DimCategory:
		return row.CategoryName
	case DimStatus:
		return string(row.CustomerStatus)
	case DimProduct:
		return row.ProductName
	}
	return ""
}

// Domain holds the known values of every dimension, as observed in the
// loaded data. Customer status always has the fixed Active/Inactive set.
type Domain struct {
	values map[Dimension][]string
}

// NewDomain collects the sorted distinct values of each dimension.
func NewDomain(rows []dataset.MetricsRow) Domain {
	d := Domain{values: make(map[Dimension][]string, len(Dimensions))}
	for _, dim := range []Dimension{DimRegion, DimCategory, DimProduct} {
		seen := make(map[string]struct{})
		for i := range rows {
			seen[dim.value(&rows[i])] = struct{}{}
		}
		vals := make([]string, 0, len(seen))
		for v := range seen {
			vals = append(vals, v)
		}
		sort.Strings(vals)
		d.values[dim] = vals
	}

	d.values[DimStatus] = statusDomain(rows)
	return d
}

// statusDomain lists Active and Inactive first, whether or not they occur,
// followed by any other observed labels in sorted order.
func statusDomain(rows []dataset.MetricsRow) []string {
	known := make(map[string]struct{}, len(dataset.Statuses))
	out := make([]string, 0, len(dataset.Statuses))
	for _, s := range dataset.Statuses {
		known[string(s)] = struct{}{}
		out = append(out, string(s))
	}

	var extra []string
	for i := range rows {
		v := string(rows[i].CustomerStatus)
		if _, ok := known[v]; ok {
			continue
		}
		known[v] = struct{}{}
		extra = append(extra, v)
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// Values returns a copy of the known values of dim.
func (d Domain) Values(dim Dimension) []string {
	return append([]string(nil), d.values[dim]...)
}

// Options returns, per dimension, the All sentinel followed by the known
// values, as offered to users picking filters.
func (d Domain) Options() map[Dimension][]string {
	opts := make(map[Dimension][]string, len(Dimensions))
	for _, dim := range Dimensions {
		opts[dim] = append([]string{All}, d.values[dim]...)
	}
	return opts
}

// DateRange is an inclusive range of calendar days. A zero bound is open.
type DateRange struct {
	From time.Time
	To   time.Time
}

// IsZero reports whether the range is unbounded on both sides.
func (r DateRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// Contains reports whether t falls on a day within the range.
func (r DateRange) Contains(t time.Time) bool {
	day := truncateDay(t)
	if !r.From.IsZero() && day.Before(truncateDay(r.From)) {
		return false
	}
	if !r.To.IsZero() && day.After(truncateDay(r.To)) {
		return false
	}
	return true
}

// ParseDateRange parses inclusive day bounds in YYYY-MM-DD form. An empty
// bound is left open.
func ParseDateRange(from, to string) (DateRange, error) {
	var r DateRange
	var err error
	if from != "" {
		if r.From, err = time.Parse(dataset.DateLayout, from); err != nil {
			return DateRange{}, fmt.Errorf("invalid from date %q: %w", from, err)
		}
	}
	if to != "" {
		if r.To, err = time.Parse(dataset.DateLayout, to); err != nil {
			return DateRange{}, fmt.Errorf("invalid to date %q: %w", to, err)
		}
	}
	if !r.From.IsZero() && !r.To.IsZero() && r.From.After(r.To) {
		return DateRange{}, fmt.Errorf("from date %s is after to date %s", from, to)
	}
	return r, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Request is the raw filter choice made by a user. Each list may contain
// the All sentinel, matched exactly, so a value spelled "All" or "ALL"
// is an ordinary value. A nil or empty list selects nothing for that
// dimension; callers wanting the default must say so with AllRequest.
type Request struct {
	Regions    []string
	Categories []string
	Statuses   []string
	Products   []string
	Dates      DateRange
}

// AllRequest selects every value of every dimension with no date bound.
func AllRequest() Request {
	return Request{
		Regions:    []string{All},
		Categories: []string{All},
		Statuses:   []string{All},
		Products:   []string{All},
	}
}

func (r Request) choices(dim Dimension) []string {
	switch dim {
	case DimRegion:
		return r.Regions
	case DimCategory:
		return r.Categories
	case DimStatus:
		return r.Statuses
	case DimProduct:
		return r.Products
	}
	return nil
}

// Selection is an immutable, fully expanded filter. Every dimension holds
// a concrete value set; the All sentinel has already been resolved
// against the Domain the selection was built from.
type Selection struct {
	values map[Dimension][]string
	sets   map[Dimension]map[string]struct{}
	dates  DateRange
}

// NewSelection expands req against domain. A list containing All becomes
// the domain's value set for that dimension; any other list is taken as
// given, so values unknown to the domain simply match nothing. Status
// labels are normalized the same way loaded rows are.
func NewSelection(domain Domain, req Request) Selection {
	s := Selection{
		values: make(map[Dimension][]string, len(Dimensions)),
		sets:   make(map[Dimension]map[string]struct{}, len(Dimensions)),
		dates:  req.Dates,
	}

	for _, dim := range Dimensions {
		chosen := req.choices(dim)
		var vals []string
		if containsAll(chosen) {
			vals = domain.Values(dim)
		} else {
			vals = make([]string, 0, len(chosen))
			for _, v := range chosen {
				if dim == DimStatus {
					v = string(dataset.ParseCustomerStatus(v))
				}
				vals = append(vals, v)
			}
		}

		set := make(map[string]struct{}, len(vals))
		unique := vals[:0:0]
		for _, v := range vals {
			if _, dup := set[v]; dup {
				continue
			}
			set[v] = struct{}{}
			unique = append(unique, v)
		}
		s.values[dim] = unique
		s.sets[dim] = set
	}
	return s
}

func containsAll(vals []string) bool {
	return slices.Contains(vals, All)
}

// Values returns a copy of the concrete values selected for dim.
func (s Selection) Values(dim Dimension) []string {
	return append([]string(nil), s.values[dim]...)
}

// Dates returns the selected date range.
func (s Selection) Dates() DateRange {
	return s.dates
}

// Matches reports whether row satisfies every predicate of the selection.
func (s Selection) Matches(row *dataset.MetricsRow) bool {
	for _, dim := range Dimensions {
		if _, ok := s.sets[dim][dim.value(row)]; !ok {
			return false
		}
	}
	if row.OrderDate != nil && !s.dates.Contains(*row.OrderDate) {
		return false
	}
	return true
}
