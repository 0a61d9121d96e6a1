// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventHistory_AddAndQuery(t *testing.T) {
	h := NewEventHistory(EventHistoryConfig{})
	now := time.Now()

	h.Add(Event{Seq: 1, Type: "chat.message", World: "a", Timestamp: now.Add(-3 * time.Minute)})
	h.Add(Event{Seq: 2, Type: "chat.watch", World: "b", Timestamp: now.Add(-2 * time.Minute)})
	h.Add(Event{Seq: 3, Type: "world.messages", World: "a", Timestamp: now.Add(-time.Minute)})

	assert.Len(t, h.Query(EventFilter{}), 3)

	byType := h.Query(EventFilter{Types: []string{"chat.*"}})
	assert.Len(t, byType, 2)
	assert.Equal(t, uint64(1), byType[0].Seq)

	byWorld := h.Query(EventFilter{World: "a"})
	assert.Len(t, byWorld, 2)

	after := h.Query(EventFilter{AfterSeq: 1})
	assert.Len(t, after, 2)
	assert.Equal(t, uint64(2), after[0].Seq)

	since := h.Query(EventFilter{Since: now.Add(-90 * time.Second)})
	assert.Len(t, since, 1)

	until := h.Query(EventFilter{Until: now.Add(-90 * time.Second)})
	assert.Len(t, until, 2)
}

func TestEventHistory_LimitKeepsNewest(t *testing.T) {
	h := NewEventHistory(EventHistoryConfig{})
	for i := 1; i <= 5; i++ {
		h.Add(Event{Seq: uint64(i), Type: "chat.message", Timestamp: time.Now()})
	}

	result := h.Query(EventFilter{Limit: 2})
	assert.Len(t, result, 2)
	assert.Equal(t, uint64(4), result[0].Seq)
	assert.Equal(t, uint64(5), result[1].Seq)
}

func TestEventHistory_MaxEvents(t *testing.T) {
	h := NewEventHistory(EventHistoryConfig{MaxEvents: 3})
	for i := 1; i <= 5; i++ {
		h.Add(Event{Seq: uint64(i), Type: "chat.message", Timestamp: time.Now()})
	}

	assert.Equal(t, 3, h.Len())
	result := h.Query(EventFilter{})
	assert.Equal(t, uint64(3), result[0].Seq)
}

func TestEventHistory_InvalidTypePatternMatchesNothing(t *testing.T) {
	h := NewEventHistory(EventHistoryConfig{})
	h.Add(Event{Seq: 1, Type: "chat.message", Timestamp: time.Now()})

	assert.Empty(t, h.Query(EventFilter{Types: []string{""}}))
}

func TestEventHistory_Prune(t *testing.T) {
	h := NewEventHistory(EventHistoryConfig{MaxAge: time.Minute})
	now := time.Now()
	h.now = func() time.Time { return now }

	h.Add(Event{Seq: 1, Type: "chat.message", Timestamp: now.Add(-2 * time.Minute)})
	h.Add(Event{Seq: 2, Type: "chat.message", Timestamp: now.Add(-30 * time.Second)})

	h.Prune()

	result := h.Query(EventFilter{})
	assert.Len(t, result, 1)
	assert.Equal(t, uint64(2), result[0].Seq)
}

func TestEventHistory_Close(t *testing.T) {
	h := NewEventHistory(EventHistoryConfig{})
	h.Add(Event{Seq: 1, Type: "chat.message", Timestamp: time.Now()})
	h.Close()
	assert.Equal(t, 0, h.Len())
}
