// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"sync"
	"time"
)

// EventHistoryConfig configures event history.
type EventHistoryConfig struct {
	MaxEvents int
	MaxAge    time.Duration
}

// EventHistory keeps recent events in publish order.
type EventHistory struct {
	mu        sync.RWMutex
	events    []Event
	maxEvents int
	maxAge    time.Duration
	now       func() time.Time
}

// NewEventHistory creates a new event history.
func NewEventHistory(cfg EventHistoryConfig) *EventHistory {
	if cfg.MaxEvents <= 0 {
		cfg.MaxEvents = 10000
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = time.Hour
	}

	return &EventHistory{
		maxEvents: cfg.MaxEvents,
		maxAge:    cfg.MaxAge,
		now:       time.Now,
	}
}

// Add stores an event in history.
func (h *EventHistory) Add(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.events = append(h.events, event)
	if len(h.events) > h.maxEvents {
		// Copy so the dropped prefix can be collected
		kept := make([]Event, h.maxEvents)
		copy(kept, h.events[len(h.events)-h.maxEvents:])
		h.events = kept
	}
}

// Query retrieves events matching filter, oldest first.
func (h *EventHistory) Query(filter EventFilter) []Event {
	var patterns []Pattern
	for _, t := range filter.Types {
		if p, err := CompilePattern(t); err == nil {
			patterns = append(patterns, p)
		}
	}
	if len(filter.Types) > 0 && len(patterns) == 0 {
		return []Event{}
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	result := make([]Event, 0)
	for _, event := range h.events {
		if matchesFilter(event, filter, patterns) {
			result = append(result, event)
		}
	}

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[len(result)-filter.Limit:]
	}
	return result
}

func matchesFilter(event Event, filter EventFilter, patterns []Pattern) bool {
	if len(patterns) > 0 {
		matched := false
		for _, p := range patterns {
			if p.Match(event.Type) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	if filter.World != "" && event.World != filter.World {
		return false
	}
	if filter.AfterSeq > 0 && event.Seq <= filter.AfterSeq {
		return false
	}
	if !filter.Since.IsZero() && event.Timestamp.Before(filter.Since) {
		return false
	}
	if !filter.Until.IsZero() && event.Timestamp.After(filter.Until) {
		return false
	}
	return true
}

// Prune removes events older than max age.
func (h *EventHistory) Prune() {
	h.mu.Lock()
	defer h.mu.Unlock()

	cutoff := h.now().Add(-h.maxAge)
	// Events are in publish order, so expired ones form a prefix
	i := 0
	for i < len(h.events) && !h.events[i].Timestamp.After(cutoff) {
		i++
	}
	if i > 0 {
		h.events = append([]Event(nil), h.events[i:]...)
	}
}

// Len returns the number of stored events.
func (h *EventHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.events)
}

// Close releases resources.
func (h *EventHistory) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = nil
}
