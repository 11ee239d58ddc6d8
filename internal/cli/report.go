//-------------------------------------------------------------------------
//
// pgEdge Northwind BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/pgEdge/northwind-bi/internal/engine"
	"github.com/pgEdge/northwind-bi/internal/logging"
	"github.com/pgEdge/northwind-bi/internal/report"
	"github.com/pgEdge/northwind-bi/internal/views"
)

var (
	reportFilters filterFlags
	reportViews   []string
	reportFormat  string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print dashboard views for a filter selection",
	Long: `Load the configured data source, apply the filter selection and
print the requested dashboard views.

A filter flag that is not given selects every value of its dimension.
Passing it with an empty value selects nothing.

Example:
  northwind-bi report --source csv --source-path ./data \
    --region "Western Europe" --status Inactive --view customers`,
	RunE: runReport,
}

func init() {
	reportFilters.register(reportCmd.Flags())
	reportCmd.Flags().StringSliceVar(&reportViews, "view", nil,
		"views to print (default: all views)")
	reportCmd.Flags().StringVar(&reportFormat, "format", report.FormatText,
		"output format (text, json)")
}

// filterFlags holds the sidebar filter flags.
type filterFlags struct {
	regions    []string
	categories []string
	statuses   []string
	products   []string
	from       string
	to         string
}

func (f *filterFlags) register(fs *pflag.FlagSet) {
	fs.StringSliceVar(&f.regions, "region", nil,
		"regions to include (repeatable, \"all\" for every region)")
	fs.StringSliceVar(&f.categories, "category", nil,
		"product categories to include (repeatable)")
	fs.StringSliceVar(&f.statuses, "status", nil,
		"customer statuses to include (Active, Inactive)")
	fs.StringSliceVar(&f.products, "product", nil,
		"products to include (repeatable)")
	fs.StringVar(&f.from, "from", "",
		"first order date to include (YYYY-MM-DD)")
	fs.StringVar(&f.to, "to", "",
		"last order date to include (YYYY-MM-DD)")
}

// request builds a filter request. Unset dimension flags select every
// value.
func (f *filterFlags) request(fs *pflag.FlagSet) (engine.Request, error) {
	dates, err := engine.ParseDateRange(f.from, f.to)
	if err != nil {
		return engine.Request{}, err
	}

	pick := func(name string, vals []string) []string {
		if !fs.Changed(name) {
			return []string{engine.All}
		}
		out := make([]string, 0, len(vals))
		for _, v := range vals {
			if v != "" {
				out = append(out, v)
			}
		}
		return out
	}

	return engine.Request{
		Regions:    pick("region", f.regions),
		Categories: pick("category", f.categories),
		Statuses:   pick("status", f.statuses),
		Products:   pick("product", f.products),
		Dates:      dates,
	}, nil
}

func selectedViews(names []string) ([]views.View, error) {
	if len(names) == 0 {
		return views.All(), nil
	}
	out := make([]views.View, 0, len(names))
	for _, name := range names {
		v, err := views.Get(name)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func runReport(cmd *cobra.Command, args []string) error {
	req, err := reportFilters.request(cmd.Flags())
	if err != nil {
		return err
	}
	selected, err := selectedViews(reportViews)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	e, data, err := loadEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer data.Close()

	// A view that cannot be evaluated is reported after the others are
	// printed.
	res := e.Run(e.Select(req))
	outputs := make([]*views.Output, 0, len(selected))
	var failed []error
	for _, v := range selected {
		out, err := views.EvaluateResult(e, v, res)
		if err != nil {
			logging.Error().Err(err).Str("view", v.Name()).Msg("Failed to evaluate view")
			failed = append(failed, err)
			continue
		}
		outputs = append(outputs, out)
	}

	if err := report.Write(cmd.OutOrStdout(), reportFormat, outputs...); err != nil {
		return err
	}
	return errors.Join(failed...)
}
