//-------------------------------------------------------------------------
//
// pgEdge Northwind BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package server

import (
	"net/url"

	"github.com/pgEdge/northwind-bi/internal/engine"
)

// Query parameter names.
const (
	paramRegion   = "region"
	paramCategory = "category"
	paramStatus   = "status"
	paramProduct  = "product"
	paramFrom     = "from"
	paramTo       = "to"
)

// ParseRequest builds a filter request from query parameters. An absent
// dimension parameter selects every value. A parameter that is present
// but carries only empty values selects nothing.
func ParseRequest(q url.Values) (engine.Request, error) {
	dates, err := engine.ParseDateRange(q.Get(paramFrom), q.Get(paramTo))
	if err != nil {
		return engine.Request{}, err
	}
	return engine.Request{
		Regions:    choices(q, paramRegion),
		Categories: choices(q, paramCategory),
		Statuses:   choices(q, paramStatus),
		Products:   choices(q, paramProduct),
		Dates:      dates,
	}, nil
}

func choices(q url.Values, name string) []string {
	vals, ok := q[name]
	if !ok {
		return []string{engine.All}
	}
	return nonEmpty(vals)
}

func nonEmpty(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// SelectionMessage is a filter choice sent over a websocket session. A
// dimension left out of the message selects every value; an empty list
// selects nothing.
type SelectionMessage struct {
	Type     string   `json:"type"`
	View     string   `json:"view,omitempty"`
	Region   []string `json:"region"`
	Category []string `json:"category"`
	Status   []string `json:"status"`
	Product  []string `json:"product"`
	From     string   `json:"from,omitempty"`
	To       string   `json:"to,omitempty"`
}

// Request converts the message into a filter request.
func (m SelectionMessage) Request() (engine.Request, error) {
	dates, err := engine.ParseDateRange(m.From, m.To)
	if err != nil {
		return engine.Request{}, err
	}
	return engine.Request{
		Regions:    messageChoices(m.Region),
		Categories: messageChoices(m.Category),
		Statuses:   messageChoices(m.Status),
		Products:   messageChoices(m.Product),
		Dates:      dates,
	}, nil
}

func messageChoices(vals []string) []string {
	if vals == nil {
		return []string{engine.All}
	}
	return nonEmpty(vals)
}
