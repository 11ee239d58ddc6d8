//-------------------------------------------------------------------------
//
// pgEdge Northwind BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package views

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry = make(map[string]View)
	mu       sync.RWMutex
)

// Register adds a view to the registry.
func Register(v View) {
	mu.Lock()
	defer mu.Unlock()
	registry[v.Name()] = v
}

// Get retrieves a view by name.
func Get(name string) (View, error) {
	mu.RLock()
	defer mu.RUnlock()

	v, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown view: %s", name)
	}
	return v, nil
}

// List returns all registered view names in display order.
func List() []string {
	all := All()
	names := make([]string, len(all))
	for i, v := range all {
		names[i] = v.Name()
	}
	return names
}

// All returns all registered views in display order.
func All() []View {
	mu.RLock()
	defer mu.RUnlock()

	views := make([]View, 0, len(registry))
	for _, v := range registry {
		views = append(views, v)
	}
	sort.Slice(views, func(i, j int) bool {
		if views[i].Order() != views[j].Order() {
			return views[i].Order() < views[j].Order()
		}
		return views[i].Name() < views[j].Name()
	})
	return views
}
