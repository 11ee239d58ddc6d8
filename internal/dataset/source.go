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
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrUnavailable reports a data source that is missing, unreadable or
	// unreachable.
	ErrUnavailable = errors.New("data source unavailable")

	// ErrNotLoaded is returned when data is requested from a context that
	// has not completed a load.
	ErrNotLoaded = errors.New("data not loaded")
)

// Source supplies the metrics fact table and the churn summary. Both
// loads are read-only and expected to run once per process.
type Source interface {
	// Name identifies the source in logs.
	Name() string

	// LoadMetrics returns every row of the metrics fact table.
	LoadMetrics(ctx context.Context) ([]MetricsRow, error)

	// LoadChurnSummary returns every row of the churn summary table.
	LoadChurnSummary(ctx context.Context) (ChurnSummary, error)

	// Close releases any resources held by the source.
	Close() error
}

// Context owns the data loaded from a Source for the lifetime of the
// process. Data is fetched once; later reads are served from memory.
type Context struct {
	src Source

	mu       sync.RWMutex
	loaded   bool
	metrics  []MetricsRow
	churn    ChurnSummary
	loadedAt time.Time
}

// NewContext returns an unloaded context reading from src.
func NewContext(src Source) *Context {
	return &Context{src: src}
}

// NewStaticContext returns a context that is already loaded with the
// given data and has no backing source.
func NewStaticContext(metrics []MetricsRow, churn ChurnSummary) *Context {
	return &Context{
		loaded:   true,
		metrics:  metrics,
		churn:    churn,
		loadedAt: time.Now(),
	}
}

// Load fetches both datasets from the source. It is a no-op once a load
// has succeeded. A failed load leaves the context unloaded.
func (c *Context) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return nil
	}
	if c.src == nil {
		return ErrNotLoaded
	}

	metrics, err := c.src.LoadMetrics(ctx)
	if err != nil {
		return err
	}
	churn, err := c.src.LoadChurnSummary(ctx)
	if err != nil {
		return err
	}

	c.metrics = metrics
	c.churn = churn
	c.loaded = true
	c.loadedAt = time.Now()
	return nil
}

// Loaded reports whether data is available.
func (c *Context) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// LoadedAt returns the time the data was loaded.
func (c *Context) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}

// Metrics returns the loaded fact rows. The slice is shared and must not
// be modified.
func (c *Context) Metrics() ([]MetricsRow, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return nil, ErrNotLoaded
	}
	return c.metrics, nil
}

// Churn returns the loaded churn summary.
func (c *Context) Churn() (ChurnSummary, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return ChurnSummary{}, ErrNotLoaded
	}
	return c.churn, nil
}

// SourceName returns the backing source's name, or "static".
func (c *Context) SourceName() string {
	if c.src == nil {
		return "static"
	}
	return c.src.Name()
}

// Close closes the backing source, if any.
func (c *Context) Close() error {
	if c.src == nil {
		return nil
	}
	return c.src.Close()
}
