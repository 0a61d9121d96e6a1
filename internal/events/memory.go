// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// ErrBusClosed is returned when operating on a closed bus.
var ErrBusClosed = errors.New("event bus is closed")

// ErrSubscriptionNotFound is returned when unsubscribing with invalid ID.
var ErrSubscriptionNotFound = errors.New("subscription not found")

// MemoryBusConfig configures the memory event bus.
type MemoryBusConfig struct {
	HistoryMaxEvents int
	HistoryMaxAge    time.Duration
	Logger           *slog.Logger
}

// MemoryEventBus is an in-memory event bus implementation.
type MemoryEventBus struct {
	mu            sync.RWMutex
	subscriptions map[SubscriptionID]*subscription
	history       *EventHistory
	logger        *slog.Logger
	closed        atomic.Bool
	wg            sync.WaitGroup
	seq           atomic.Uint64
	subSeq        atomic.Uint64
	stopPruner    chan struct{}
}

type subscription struct {
	id      SubscriptionID
	pattern Pattern
	handler EventHandler
	ch      chan Event // nil for synchronous subscribers
	stopCh  chan struct{}
}

// NewMemoryEventBus creates a new in-memory event bus.
func NewMemoryEventBus(cfg MemoryBusConfig) *MemoryEventBus {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	bus := &MemoryEventBus{
		subscriptions: make(map[SubscriptionID]*subscription),
		history: NewEventHistory(EventHistoryConfig{
			MaxEvents: cfg.HistoryMaxEvents,
			MaxAge:    cfg.HistoryMaxAge,
		}),
		logger:     logger.With("component", "events"),
		stopPruner: make(chan struct{}),
	}

	// Background pruner enforces max age
	pruneInterval := min(max(bus.history.maxAge/10, time.Minute), time.Hour)

	bus.wg.Add(1)
	go func() {
		defer bus.wg.Done()
		ticker := time.NewTicker(pruneInterval)
		defer ticker.Stop()
		for {
			select {
			case <-bus.stopPruner:
				return
			case <-ticker.C:
				bus.history.Prune()
			}
		}
	}()

	return bus
}

// Publish emits an event to all matching subscribers.
func (bus *MemoryEventBus) Publish(ctx context.Context, event Event) error {
	if bus.closed.Load() {
		return ErrBusClosed
	}
	if event.Type == "" {
		return errors.New("event type is required")
	}

	event.Seq = bus.seq.Add(1)
	if event.ID == "" {
		event.ID = "evt-" + strconv.FormatUint(event.Seq, 10)
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	bus.history.Add(event)

	bus.mu.RLock()
	subs := make([]*subscription, 0, len(bus.subscriptions))
	for _, sub := range bus.subscriptions {
		if sub.pattern.Match(event.Type) {
			subs = append(subs, sub)
		}
	}
	bus.mu.RUnlock()

	for _, sub := range subs {
		if sub.ch != nil {
			select {
			case sub.ch <- event:
			default:
				bus.logger.Warn("dropped event, subscriber buffer full",
					"type", event.Type, "subscription", sub.id)
			}
			continue
		}
		bus.dispatch(ctx, sub, event)
	}

	return nil
}

// dispatch runs a handler, recovering from panics.
func (bus *MemoryEventBus) dispatch(ctx context.Context, sub *subscription, event Event) {
	defer func() {
		if r := recover(); r != nil {
			bus.logger.Error("event handler panic", "type", event.Type, "panic", fmt.Sprint(r))
		}
	}()
	if err := sub.handler(ctx, event); err != nil {
		bus.logger.Debug("event handler error", "type", event.Type, "error", err)
	}
}

// Subscribe registers a synchronous handler for events matching pattern.
func (bus *MemoryEventBus) Subscribe(pattern string, handler EventHandler) (SubscriptionID, error) {
	return bus.subscribe(pattern, handler, 0)
}

// SubscribeAsync registers an async handler with buffered channel.
func (bus *MemoryEventBus) SubscribeAsync(pattern string, handler EventHandler, bufferSize int) (SubscriptionID, error) {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	return bus.subscribe(pattern, handler, bufferSize)
}

func (bus *MemoryEventBus) subscribe(pattern string, handler EventHandler, bufferSize int) (SubscriptionID, error) {
	if bus.closed.Load() {
		return "", ErrBusClosed
	}
	if handler == nil {
		return "", errors.New("handler is required")
	}

	compiled, err := CompilePattern(pattern)
	if err != nil {
		return "", err
	}

	sub := &subscription{
		id:      SubscriptionID("sub-" + strconv.FormatUint(bus.subSeq.Add(1), 10)),
		pattern: compiled,
		handler: handler,
	}
	if bufferSize > 0 {
		sub.ch = make(chan Event, bufferSize)
		sub.stopCh = make(chan struct{})

		bus.wg.Add(1)
		go func() {
			defer bus.wg.Done()
			for {
				select {
				case <-sub.stopCh:
					return
				case event := <-sub.ch:
					bus.dispatch(context.Background(), sub, event)
				}
			}
		}()
	}

	bus.mu.Lock()
	bus.subscriptions[sub.id] = sub
	bus.mu.Unlock()

	return sub.id, nil
}

// Unsubscribe removes a subscription.
func (bus *MemoryEventBus) Unsubscribe(id SubscriptionID) error {
	bus.mu.Lock()
	sub, ok := bus.subscriptions[id]
	if !ok {
		bus.mu.Unlock()
		return ErrSubscriptionNotFound
	}
	delete(bus.subscriptions, id)
	bus.mu.Unlock()

	if sub.stopCh != nil {
		close(sub.stopCh)
	}
	return nil
}

// History retrieves past events matching filter.
func (bus *MemoryEventBus) History(filter EventFilter) ([]Event, error) {
	if bus.closed.Load() {
		return nil, ErrBusClosed
	}
	return bus.history.Query(filter), nil
}

// Close shuts down the event bus gracefully.
func (bus *MemoryEventBus) Close() error {
	if bus.closed.Swap(true) {
		return nil
	}

	close(bus.stopPruner)

	bus.mu.Lock()
	for _, sub := range bus.subscriptions {
		if sub.stopCh != nil {
			close(sub.stopCh)
		}
	}
	bus.subscriptions = make(map[SubscriptionID]*subscription)
	bus.mu.Unlock()

	bus.wg.Wait()
	bus.history.Close()

	return nil
}
