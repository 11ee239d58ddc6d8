//-------------------------------------------------------------------------
//
// pgEdge Northwind BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package snapshot stores a loaded dataset as a snappy-compressed JSON
// file and serves it back as a data source.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/golang/snappy"

	"github.com/pgEdge/northwind-bi/internal/dataset"
	"github.com/pgEdge/northwind-bi/internal/logging"
	"github.com/pgEdge/northwind-bi/pkg/version"
)

// FormatVersion is bumped whenever the document layout changes.
const FormatVersion = 1

// Document is the decoded content of a snapshot file.
type Document struct {
	Format    int                  `json:"format"`
	CreatedAt time.Time            `json:"created_at"`
	CreatedBy string               `json:"created_by"`
	Source    string               `json:"source"`
	Metrics   []dataset.MetricsRow `json:"metrics"`
	Churn     dataset.ChurnSummary `json:"churn"`
}

// Encode writes doc to w in the snappy framing format.
func Encode(w io.Writer, doc *Document) error {
	sw := snappy.NewBufferedWriter(w)
	if err := json.NewEncoder(sw).Encode(doc); err != nil {
		sw.Close()
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := sw.Close(); err != nil {
		return fmt.Errorf("failed to flush snapshot: %w", err)
	}
	return nil
}

// Decode reads a document written by Encode.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(snappy.NewReader(r)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if doc.Format != FormatVersion {
		return nil, fmt.Errorf("unsupported snapshot format %d", doc.Format)
	}
	return &doc, nil
}

// Write loads data from src and stores it at path. The file is written
// to a temporary name first and renamed into place.
func Write(ctx context.Context, src dataset.Source, path string) (*Document, error) {
	metrics, err := src.LoadMetrics(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load metrics: %w", err)
	}
	churn, err := src.LoadChurnSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load churn summary: %w", err)
	}

	doc := &Document{
		Format:    FormatVersion,
		CreatedAt: time.Now().UTC(),
		CreatedBy: version.UserAgent(),
		Source:    src.Name(),
		Metrics:   metrics,
		Churn:     churn,
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, doc); err != nil {
		tmp.Close()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close snapshot file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return nil, fmt.Errorf("failed to move snapshot into place: %w", err)
	}

	logging.Info().
		Str("file", path).
		Str("source", doc.Source).
		Int("rows", len(metrics)).
		Msg("Wrote snapshot")

	return doc, nil
}

// Source serves a snapshot file. The file is decoded on first use.
type Source struct {
	path string
	doc  *Document
}

// Open returns a source reading the snapshot at path.
func Open(path string) *Source {
	return &Source{path: path}
}

// Name identifies the source in logs.
func (s *Source) Name() string {
	return "snapshot"
}

func (s *Source) document() (*Document, error) {
	if s.doc != nil {
		return s.doc, nil
	}

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: snapshot %s not found", dataset.ErrUnavailable, s.path)
		}
		return nil, fmt.Errorf("%w: %w", dataset.ErrUnavailable, err)
	}
	defer f.Close()

	doc, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}

	logging.Info().
		Str("file", s.path).
		Time("created_at", doc.CreatedAt).
		Int("rows", len(doc.Metrics)).
		Msg("Opened snapshot")

	s.doc = doc
	return doc, nil
}

// LoadMetrics returns the stored fact rows.
func (s *Source) LoadMetrics(ctx context.Context) ([]dataset.MetricsRow, error) {
	doc, err := s.document()
	if err != nil {
		return nil, err
	}
	return doc.Metrics, nil
}

// LoadChurnSummary returns the stored churn summary.
func (s *Source) LoadChurnSummary(ctx context.Context) (dataset.ChurnSummary, error) {
	doc, err := s.document()
	if err != nil {
		return dataset.ChurnSummary{}, err
	}
	return doc.Churn, nil
}

// Close releases the decoded document.
func (s *Source) Close() error {
	s.doc = nil
	return nil
}
