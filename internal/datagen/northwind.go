//-------------------------------------------------------------------------
//
// pgEdge Northwind BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/pgEdge/northwind-bi/internal/dataset"
	"github.com/pgEdge/northwind-bi/internal/dataset/csvsource"
	"github.com/pgEdge/northwind-bi/internal/logging"
)

// Fixed Northwind dimensions.
var (
	Regions = []string{
		"British Isles", "Central America", "Eastern Europe", "North America",
		"Northern Europe", "Scandinavia", "South America", "Southern Europe",
		"Western Europe",
	}

	Categories = []string{
		"Beverages", "Condiments", "Confections", "Dairy Products",
		"Grains/Cereals", "Meat/Poultry", "Produce", "Seafood",
	}

	Shippers = []string{"Federal Shipping", "Speedy Express", "United Package"}
)

// Options control the size and shape of a generated dataset.
type Options struct {
	Customers int
	Products  int
	Employees int
	Rows      int

	// Seed makes the output reproducible. Zero picks a random seed.
	Seed uint64

	// Orders fall between Start and End.
	Start time.Time
	End   time.Time

	// NullProbability is the chance of any single measure being empty.
	NullProbability float64
}

// DefaultOptions returns options sized like the Northwind sample database.
func DefaultOptions() Options {
	return Options{
		Customers:       91,
		Products:        77,
		Employees:       9,
		Rows:            2000,
		Start:           time.Date(1996, 7, 4, 0, 0, 0, 0, time.UTC),
		End:             time.Date(1998, 5, 6, 0, 0, 0, 0, time.UTC),
		NullProbability: 0.02,
	}
}

type customer struct {
	id     string
	name   string
	region string
	status dataset.CustomerStatus
}

type product struct {
	name     string
	category string
	price    float64
}

// Dataset is a generated fact table with its churn summary.
type Dataset struct {
	Metrics []dataset.MetricsRow
	Churn   dataset.ChurnSummary
}

// Generate builds a dataset. Measures are drawn independently per row, so
// the totals are plausible in scale but not mutually consistent.
func Generate(ctx context.Context, opts Options) (*Dataset, error) {
	if opts.Customers < 1 || opts.Products < 1 || opts.Employees < 1 {
		return nil, fmt.Errorf("customers, products and employees must each be at least 1")
	}
	if opts.Rows < 0 {
		return nil, fmt.Errorf("rows must not be negative")
	}
	if opts.End.Before(opts.Start) {
		return nil, fmt.Errorf("end date %s is before start date %s",
			opts.End.Format(dataset.DateLayout), opts.Start.Format(dataset.DateLayout))
	}

	f := NewFaker(opts.Seed)

	customers := make([]customer, opts.Customers)
	seenIDs := make(map[string]bool, opts.Customers)
	inactive := 0
	for i := range customers {
		id := f.CustomerID()
		for seenIDs[id] {
			id = f.CustomerID()
		}
		seenIDs[id] = true

		status := ChooseWeighted(f, dataset.Statuses, []int{4, 1})
		if status == dataset.StatusInactive {
			inactive++
		}
		customers[i] = customer{
			id:     id,
			name:   f.Company(),
			region: Choose(f, Regions),
			status: status,
		}
	}

	products := make([]product, opts.Products)
	for i := range products {
		products[i] = product{
			name:     f.ProductName(),
			category: Choose(f, Categories),
			price:    f.Price(2.5, 263.5),
		}
	}

	employees := make([]string, opts.Employees)
	for i := range employees {
		employees[i] = f.Name()
	}

	progress := NewProgressReporter(csvsource.MetricsFile, int64(opts.Rows), 500)
	rows := make([]dataset.MetricsRow, 0, opts.Rows)
	for i := 0; i < opts.Rows; i++ {
		if i%500 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		c := Choose(f, customers)
		p := Choose(f, products)
		qty := float64(f.Int(1, 120))
		ticket := math.Round(p.price*qty*100) / 100
		date := f.OrderDate(opts.Start, opts.End)
		null := opts.NullProbability

		rows = append(rows, dataset.MetricsRow{
			Region:                          c.region,
			CategoryName:                    p.category,
			CustomerStatus:                  c.status,
			ProductName:                     p.name,
			EmployeeName:                    Choose(f, employees),
			ShipperName:                     Choose(f, Shippers),
			CustomerID:                      c.id,
			CustomerName:                    c.name,
			OrderDate:                       &date,
			AvgTicketPerOrder:               f.Nullable(ticket, null),
			AvgTicketPerCustomer:            f.Nullable(round2(ticket*f.Float64(0.8, 3)), null),
			AvgTicketPerRegion:              f.Nullable(round2(ticket*f.Float64(0.5, 1.5)), null),
			RevenueByCountry:                f.Nullable(round2(ticket*f.Float64(5, 40)), null),
			RevenueByCategory:               f.Nullable(round2(ticket*f.Float64(10, 60)), null),
			RevenueByEmployee:               f.Nullable(round2(ticket*f.Float64(8, 50)), null),
			LowStockProducts:                f.Nullable(float64(f.Int(0, 3)), null),
			HighStockProducts:               f.Nullable(float64(f.Int(0, 3)), null),
			DiscontinuedProductsWithSales:   f.Nullable(float64(f.Int(0, 1)), null),
			AvgDeliveryTimeDays:             f.Nullable(round2(f.Float64(1, 35)), null),
			AvgFreightCostByShipper:         f.Nullable(round2(f.Float64(5, 120)), null),
			FrequentRestockProductsByRegion: f.Nullable(float64(f.Int(0, 5)), null),
			QuantitySold:                    f.Nullable(qty, null),
		})
		progress.Update(1)
	}
	progress.Done()

	rate12m := round2(float64(inactive) / float64(len(customers)) * 100)
	rate6m := round2(rate12m * f.Float64(0.4, 0.8))

	return &Dataset{
		Metrics: rows,
		Churn: dataset.ChurnSummary{
			Records: []dataset.ChurnRecord{{Rate6m: rate6m, Rate12m: rate12m}},
		},
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// WriteDir writes the dataset as metrics.csv and churns.csv in dir, in
// the layout the csv source and the loader read.
func (d *Dataset) WriteDir(dir string, delimiter rune) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	err := writeFile(filepath.Join(dir, csvsource.MetricsFile), func(f *os.File) error {
		return csvsource.WriteMetrics(f, d.Metrics, delimiter)
	})
	if err != nil {
		return err
	}
	return writeFile(filepath.Join(dir, csvsource.ChurnFile), func(f *os.File) error {
		return csvsource.WriteChurn(f, d.Churn, delimiter)
	})
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	if info, err := os.Stat(path); err == nil {
		logging.Info().
			Str("file", path).
			Str("size", FormatSize(info.Size())).
			Msg("Wrote file")
	}
	return nil
}
