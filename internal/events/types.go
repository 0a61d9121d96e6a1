// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package events provides the in-process event bus used to fan out chat
// activity to API streams and log sinks.
package events

import (
	"context"
	"time"
)

// Event represents an immutable event record.
type Event struct {
	ID        string         `json:"id"`
	Seq       uint64         `json:"seq"`
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	World     string         `json:"world,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// EventHandler processes received events.
type EventHandler func(ctx context.Context, event Event) error

// SubscriptionID uniquely identifies a subscription.
type SubscriptionID string

// EventFilter for querying event history.
type EventFilter struct {
	Types    []string  // Event types to match (supports wildcards)
	World    string    // Filter by world
	AfterSeq uint64    // Events with a larger sequence number
	Since    time.Time // Events after this time
	Until    time.Time // Events before this time
	Limit    int       // Maximum events to return, newest kept
}

// EventBus is the core event pub/sub system.
type EventBus interface {
	// Publish emits an event to all matching subscribers.
	Publish(ctx context.Context, event Event) error

	// Subscribe registers a synchronous handler for events matching pattern.
	Subscribe(pattern string, handler EventHandler) (SubscriptionID, error)

	// SubscribeAsync registers an async handler with buffered channel.
	SubscribeAsync(pattern string, handler EventHandler, bufferSize int) (SubscriptionID, error)

	// Unsubscribe removes a subscription.
	Unsubscribe(id SubscriptionID) error

	// History retrieves past events matching filter.
	History(filter EventFilter) ([]Event, error)

	// Close shuts down the event bus gracefully.
	Close() error
}

// Event types
const (
	// Local chat tail
	EventChatMessage = "chat.message" // A line was appended to the tail buffer
	EventChatWatch   = "chat.watch"   // Tailing (re)started, buffer cleared
	EventChatUnwatch = "chat.unwatch" // Tailing stopped
	EventChatError   = "chat.error"   // The tail source failed

	// World activity seen by pollers
	EventWorldMessages = "world.messages" // A poll returned new lines
	EventWorldSend     = "world.send"     // A message was sent to a world
)
