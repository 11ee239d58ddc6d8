//-------------------------------------------------------------------------
//
// pgEdge Northwind BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package datagen generates synthetic Northwind-style dashboard data.
package datagen

import (
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// Faker wraps gofakeit with the value shapes the Northwind tables use.
type Faker struct {
	faker *gofakeit.Faker
}

// NewFaker returns a Faker seeded with seed. A zero seed draws one from
// the clock, so repeated runs differ.
func NewFaker(seed uint64) *Faker {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Faker{faker: gofakeit.New(seed)}
}

// Name is an employee's full name.
func (f *Faker) Name() string {
	return f.faker.Name()
}

// Company is a customer's company name.
func (f *Faker) Company() string {
	return f.faker.Company()
}

func (f *Faker) ProductName() string {
	return f.faker.ProductName()
}

// CustomerID returns five upper-case letters, like ALFKI.
func (f *Faker) CustomerID() string {
	return strings.ToUpper(f.faker.LetterN(5))
}

// Price returns a unit price in [lo, hi].
func (f *Faker) Price(lo, hi float64) float64 {
	return f.faker.Price(lo, hi)
}

// OrderDate returns a UTC calendar day in [start, end].
func (f *Faker) OrderDate(start, end time.Time) time.Time {
	return f.faker.DateRange(start, end).UTC().Truncate(24 * time.Hour)
}

// Int returns an integer in [lo, hi].
func (f *Faker) Int(lo, hi int) int {
	return f.faker.IntRange(lo, hi)
}

func (f *Faker) Float64(lo, hi float64) float64 {
	return f.faker.Float64Range(lo, hi)
}

// Nullable returns a pointer to v, or nil with the given probability.
func (f *Faker) Nullable(v float64, nullProbability float64) *float64 {
	if f.Float64(0, 1) < nullProbability {
		return nil
	}
	return &v
}

// Choose picks one of items uniformly, or the zero value when empty.
func Choose[T any](f *Faker, items []T) T {
	if len(items) == 0 {
		var zero T
		return zero
	}
	return items[f.Int(0, len(items)-1)]
}

// ChooseWeighted picks items[i] with probability weights[i] over the
// weight total. Items beyond the last weight are never picked.
func ChooseWeighted[T any](f *Faker, items []T, weights []int) T {
	n := min(len(items), len(weights))
	total := 0
	for _, w := range weights[:n] {
		total += w
	}
	if total <= 0 {
		var zero T
		return zero
	}

	r := f.Int(1, total)
	for i, w := range weights[:n] {
		if r -= w; r <= 0 {
			return items[i]
		}
	}
	return items[n-1]
}
