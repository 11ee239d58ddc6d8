//-------------------------------------------------------------------------
//
// pgEdge Northwind BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package report renders evaluated views for terminals and for machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/pgEdge/northwind-bi/internal/engine"
	"github.com/pgEdge/northwind-bi/internal/views"
)

// NoData is printed in place of a mean that has no values behind it.
const NoData = "no data"

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Write renders outputs to w in the given format.
func Write(w io.Writer, format string, outputs ...*views.Output) error {
	switch format {
	case FormatText, "":
		for i, out := range outputs {
			if i > 0 {
				if _, err := fmt.Fprintln(w); err != nil {
					return err
				}
			}
			if err := WriteText(w, out); err != nil {
				return err
			}
		}
		return nil
	case FormatJSON:
		return WriteJSON(w, outputs)
	}
	return fmt.Errorf("unknown report format: %s", format)
}

// WriteJSON encodes v as indented JSON. Missing means encode as null.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// WriteText prints a view as headed, aligned tables.
func WriteText(w io.Writer, out *views.Output) error {
	heading := fmt.Sprintf("%s (%d of %d rows)", out.Title, out.FilteredRows, out.TotalRows)
	fmt.Fprintf(w, "%s\n%s\n", heading, strings.Repeat("=", len(heading)))

	for _, p := range out.Panels {
		fmt.Fprintf(w, "\n%s\n%s\n", p.Title, strings.Repeat("-", len(p.Title)))

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		writePanel(tw, p.Value)
		if err := tw.Flush(); err != nil {
			return fmt.Errorf("failed to write panel %s: %w", p.Title, err)
		}
	}
	return nil
}

func writePanel(w io.Writer, value any) {
	switch v := value.(type) {
	case *float64:
		fmt.Fprintln(w, Money(v))
	case engine.ChurnRates:
		fmt.Fprintf(w, "6 months\t%.2f%%\n", v.Rate6m)
		fmt.Fprintf(w, "12 months\t%.2f%%\n", v.Rate12m)
	case []engine.MeanPoint:
		if len(v) == 0 {
			fmt.Fprintln(w, NoData)
		}
		for _, p := range v {
			fmt.Fprintf(w, "%s\t%s\n", p.Label, Money(p.Value))
		}
	case []engine.Point:
		if len(v) == 0 {
			fmt.Fprintln(w, NoData)
		}
		for _, p := range v {
			fmt.Fprintf(w, "%s\t%.2f\n", p.Label, p.Value)
		}
	case []engine.RegionRevenue:
		if len(v) == 0 {
			fmt.Fprintln(w, NoData)
			return
		}
		fmt.Fprintln(w, "REGION\tREVENUE\tAVG TICKET")
		for _, r := range v {
			fmt.Fprintf(w, "%s\t%.2f\t%s\n", r.Region, r.Revenue, Money(r.AvgTicket))
		}
	case engine.StockStatus:
		fmt.Fprintf(w, "Low stock\t%.0f\n", v.LowStock)
		fmt.Fprintf(w, "High stock\t%.0f\n", v.HighStock)
		fmt.Fprintf(w, "Discontinued with sales\t%.0f\n", v.DiscontinuedWithSales)
	case *engine.Distribution:
		if v == nil {
			fmt.Fprintln(w, NoData)
			return
		}
		fmt.Fprintln(w, "COUNT\tMIN\tQ1\tMEDIAN\tQ3\tMAX")
		fmt.Fprintf(w, "%d\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\n", v.Count, v.Min, v.Q1, v.Median, v.Q3, v.Max)
	case []engine.RegionCount:
		if len(v) == 0 {
			fmt.Fprintln(w, NoData)
		}
		for _, r := range v {
			fmt.Fprintf(w, "%s\t%d\n", r.Region, r.Count)
		}
	case []engine.StatusCount:
		if len(v) == 0 {
			fmt.Fprintln(w, NoData)
		}
		for _, s := range v {
			fmt.Fprintf(w, "%s\t%d\n", s.Status, s.Count)
		}
	case []engine.InactiveCustomer:
		if len(v) == 0 {
			fmt.Fprintln(w, "(none)")
			return
		}
		fmt.Fprintln(w, "CUSTOMER ID\tCUSTOMER\tREGION")
		for _, c := range v {
			fmt.Fprintf(w, "%s\t%s\t%s\n", c.CustomerID, c.CustomerName, c.Region)
		}
	default:
		fmt.Fprintf(w, "%v\n", v)
	}
}

// Money formats an optional amount with two decimals, or NoData.
func Money(v *float64) string {
	if v == nil {
		return NoData
	}
	return fmt.Sprintf("%.2f", *v)
}
