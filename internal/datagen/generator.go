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
	"fmt"
	"time"

	"github.com/pgEdge/northwind-bi/internal/logging"
)

// ProgressReporter logs generation progress every step rows.
type ProgressReporter struct {
	name    string
	total   int64
	step    int64
	rows    int64
	started time.Time
}

// NewProgressReporter returns a reporter for total rows of name. A step
// below one is treated as one.
func NewProgressReporter(name string, total, step int64) *ProgressReporter {
	return &ProgressReporter{
		name:    name,
		total:   total,
		step:    max(step, 1),
		started: time.Now(),
	}
}

// Update adds n generated rows, logging at debug level each time a step
// boundary is crossed.
func (p *ProgressReporter) Update(n int64) {
	before := p.rows / p.step
	p.rows += n
	if p.rows/p.step == before || p.total == 0 {
		return
	}
	logging.Debug().
		Str("file", p.name).
		Int64("rows", p.rows).
		Int64("total", p.total).
		Float64("percent", float64(p.rows)*100/float64(p.total)).
		Msg("Generating rows")
}

// Rows returns the number of rows reported so far.
func (p *ProgressReporter) Rows() int64 {
	return p.rows
}

// Done logs the final row count and throughput.
func (p *ProgressReporter) Done() {
	elapsed := time.Since(p.started)
	event := logging.Info().
		Str("file", p.name).
		Int64("rows", p.rows).
		Dur("duration", elapsed)
	if secs := elapsed.Seconds(); secs > 0 {
		event = event.Float64("rows_per_sec", float64(p.rows)/secs)
	}
	event.Msg("Generation complete")
}

// FormatSize renders a byte count with a binary unit.
func FormatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	units := []string{"KB", "MB", "GB", "TB"}
	v := float64(bytes) / unit
	i := 0
	for v >= unit && i < len(units)-1 {
		v /= unit
		i++
	}
	return fmt.Sprintf("%.2f %s", v, units[i])
}
