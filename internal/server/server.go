//-------------------------------------------------------------------------
//
// pgEdge Northwind BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package server exposes the dashboard over HTTP and websocket.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/pgEdge/northwind-bi/internal/config"
	"github.com/pgEdge/northwind-bi/internal/engine"
	"github.com/pgEdge/northwind-bi/internal/logging"
	"github.com/pgEdge/northwind-bi/internal/views"
	"github.com/pgEdge/northwind-bi/pkg/version"
)

// Error codes returned in error bodies.
const (
	CodeBadRequest    = "bad_request"
	CodeNotFound      = "not_found"
	CodeDataIntegrity = "data_integrity"
	CodeInternal      = "internal"
)

const shutdownTimeout = 10 * time.Second

// Server serves one engine over HTTP.
type Server struct {
	engine *engine.Engine
	cfg    config.ServeConfig
	router *mux.Router
}

// New builds a server and registers its routes.
func New(e *engine.Engine, cfg config.ServeConfig) *Server {
	s := &Server{
		engine: e,
		cfg:    cfg,
		router: mux.NewRouter(),
	}

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/filters", s.handleFilters).Methods(http.MethodGet)
	api.HandleFunc("/views", s.handleViews).Methods(http.MethodGet)
	api.HandleFunc("/views/{view}", s.handleView).Methods(http.MethodGet)
	api.HandleFunc("/aggregations", s.handleKinds).Methods(http.MethodGet)
	api.HandleFunc("/aggregations/{kind}", s.handleAggregation).Methods(http.MethodGet)
	api.HandleFunc("/churn", s.handleChurn).Methods(http.MethodGet)
	s.router.HandleFunc("/ws", s.handleSession)

	s.router.Use(logRequests)
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().
			Str("addr", s.cfg.Addr).
			Str("version", version.Short()).
			Msg("Dashboard server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logging.Info().Msg("Shutting down dashboard server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("Request served")
	})
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeJSON encodes v before sending the status, so a value that cannot
// be encoded turns into a 500 error body instead of a truncated 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		logging.Error().Err(err).Msg("Failed to encode response")
		buf.Reset()
		status = http.StatusInternalServerError
		body := errorBody{Error: "failed to encode response", Code: CodeInternal}
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			http.Error(w, err.Error(), status)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logging.Warn().Err(err).Msg("Failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	if status >= http.StatusInternalServerError {
		logging.Error().Err(err).Str("code", code).Msg("Request failed")
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Code: code})
}

// writeEngineError maps an engine error to a status and code.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrChurnCardinality):
		writeError(w, http.StatusInternalServerError, CodeDataIntegrity, err)
	case errors.Is(err, engine.ErrUnknownKind):
		writeError(w, http.StatusNotFound, CodeNotFound, err)
	default:
		writeError(w, http.StatusInternalServerError, CodeInternal, err)
	}
}

type healthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	TotalRows int    `json:"total_rows"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Version:   version.Short(),
		TotalRows: s.engine.TotalRows(),
	})
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Domain().Options())
}

type viewSummary struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (s *Server) handleViews(w http.ResponseWriter, r *http.Request) {
	all := views.All()
	out := make([]viewSummary, len(all))
	for i, v := range all {
		out[i] = viewSummary{Name: v.Name(), Title: v.Title(), Description: v.Description()}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) selection(w http.ResponseWriter, r *http.Request) (engine.Selection, bool) {
	req, err := ParseRequest(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err)
		return engine.Selection{}, false
	}
	return s.engine.Select(req), true
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	v, err := views.Get(mux.Vars(r)["view"])
	if err != nil {
		writeError(w, http.StatusNotFound, CodeNotFound, err)
		return
	}
	sel, ok := s.selection(w, r)
	if !ok {
		return
	}
	out, err := views.Evaluate(s.engine, v, sel)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type kindSummary struct {
	Kind        engine.Kind `json:"kind"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
}

func (s *Server) handleKinds(w http.ResponseWriter, r *http.Request) {
	defs := engine.Kinds()
	out := make([]kindSummary, len(defs))
	for i, d := range defs {
		out[i] = kindSummary{Kind: d.Kind, Title: d.Title, Description: d.Description}
	}
	writeJSON(w, http.StatusOK, out)
}

type aggregationResponse struct {
	Kind         engine.Kind `json:"kind"`
	TotalRows    int         `json:"total_rows"`
	FilteredRows int         `json:"filtered_rows"`
	Value        any         `json:"value"`
}

func (s *Server) handleAggregation(w http.ResponseWriter, r *http.Request) {
	kind := engine.Kind(mux.Vars(r)["kind"])
	if _, err := engine.Lookup(kind); err != nil {
		writeEngineError(w, err)
		return
	}
	sel, ok := s.selection(w, r)
	if !ok {
		return
	}
	v, filtered, err := s.engine.Aggregate(sel, kind)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, aggregationResponse{
		Kind:         kind,
		TotalRows:    s.engine.TotalRows(),
		FilteredRows: filtered,
		Value:        v,
	})
}

func (s *Server) handleChurn(w http.ResponseWriter, r *http.Request) {
	rates, err := s.engine.Churn()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rates)
}
