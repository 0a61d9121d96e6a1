// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package world

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/wingedpig/blockwatch/internal/config"
	"github.com/wingedpig/blockwatch/internal/logs"
)

// Registry holds the configured worlds.
type Registry struct {
	mu     sync.RWMutex
	worlds map[string]World
	order  []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{worlds: make(map[string]World)}
}

// Add registers w. Ids must be unique.
func (r *Registry) Add(w World) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := w.Info().ID
	if _, exists := r.worlds[id]; exists {
		return fmt.Errorf("duplicate world id %q", id)
	}
	r.worlds[id] = w
	r.order = append(r.order, id)
	return nil
}

// Get returns the world with the given id.
func (r *Registry) Get(id string) (World, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.worlds[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWorldNotFound, id)
	}
	return w, nil
}

// List returns the identity of every world in registration order.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Info, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.worlds[id].Info())
	}
	return result
}

// Backends returns the distinct backends in use, sorted.
func (r *Registry) Backends() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	result := []string{}
	for _, w := range r.worlds {
		b := w.Info().Backend
		if !seen[b] {
			seen[b] = true
			result = append(result, b)
		}
	}
	sort.Strings(result)
	return result
}

// Deps are the shared collaborators worlds are built from.
type Deps struct {
	Portal  Portal
	History HistoryReader
	Buffer  *logs.ChatBuffer
	Scripts ScriptRunner
	Logger  *slog.Logger
}

// Build creates a registry from configuration. Mac worlds need History and
// Buffer; cloud worlds need Portal.
func Build(worlds []config.WorldConfig, deps Deps) (*Registry, error) {
	r := NewRegistry()
	for _, wc := range worlds {
		parser, err := logs.NewParser(wc.Parser)
		if err != nil {
			return nil, fmt.Errorf("world %s: %w", wc.Name, err)
		}

		var w World
		switch wc.Backend {
		case BackendMac:
			if deps.History == nil || deps.Buffer == nil {
				return nil, fmt.Errorf("world %s: mac backend not available", wc.Name)
			}
			w = NewLocal(wc.Name, wc.ID, deps.History, deps.Buffer, parser, deps.Scripts)
		case BackendCloud, "":
			if deps.Portal == nil {
				return nil, fmt.Errorf("world %s: portal not configured", wc.Name)
			}
			w = NewCloud(wc.Name, wc.ID, deps.Portal, parser, deps.Logger)
		default:
			return nil, fmt.Errorf("world %s: unknown backend %q", wc.Name, wc.Backend)
		}

		if err := r.Add(w); err != nil {
			return nil, err
		}
	}
	return r, nil
}
