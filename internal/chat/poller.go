// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"context"
	"log/slog"
	"time"
)

const defaultPollInterval = 5 * time.Second

// Handler receives each non-empty batch. Returning an error stops the poller.
type Handler func(ctx context.Context, batch Batch) error

// Poller repeatedly reads a Source, advancing the cursor between calls.
type Poller struct {
	source   Source
	interval time.Duration
	logger   *slog.Logger
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithInterval sets the delay between polls.
func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithLogger sets the poller's logger.
func WithLogger(logger *slog.Logger) PollerOption {
	return func(p *Poller) {
		p.logger = logger
	}
}

// NewPoller creates a poller over source.
func NewPoller(source Source, opts ...PollerOption) *Poller {
	p := &Poller{
		source:   source,
		interval: defaultPollInterval,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Interval returns the delay between polls.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Run polls from cursor until ctx is done or handler fails. The first poll
// happens immediately. It returns the cursor to resume from.
func (p *Poller) Run(ctx context.Context, cursor uint64, handler Handler) (uint64, error) {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return cursor, nil
		case <-timer.C:
		}

		batch := p.source.Messages(ctx, cursor)
		if ctx.Err() != nil {
			// The request was cut short; the batch says nothing about the source
			return cursor, nil
		}
		if batch.NextID < cursor {
			p.logger.Debug("chat cursor reset", "from", cursor, "to", batch.NextID)
		}
		if len(batch.Log) > 0 {
			if err := handler(ctx, batch); err != nil {
				return cursor, err
			}
		}
		cursor = batch.NextID

		timer.Reset(p.interval)
	}
}
