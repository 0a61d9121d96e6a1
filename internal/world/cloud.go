// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package world

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wingedpig/blockwatch/internal/chat"
	"github.com/wingedpig/blockwatch/internal/logs"
	"github.com/wingedpig/blockwatch/internal/portal"
)

// Portal is the part of the portal client a cloud world uses.
type Portal interface {
	chat.ChatFetcher
	FetchLogs(ctx context.Context, worldID string) (string, error)
	Send(ctx context.Context, worldID, message string) error
	Status(ctx context.Context, worldID string) (string, error)
}

var _ Portal = (*portal.Client)(nil)

// Cloud is a world hosted on the portal.
type Cloud struct {
	info   Info
	portal Portal
	parser logs.LogParser
	chat   *chat.RemoteSource
}

// NewCloud creates a portal-backed world. parser may be nil for the
// default portal parser.
func NewCloud(name, id string, p Portal, parser logs.LogParser, logger *slog.Logger) *Cloud {
	if parser == nil {
		parser = logs.NewPortalParser()
	}
	return &Cloud{
		info:   Info{Name: name, ID: id, Backend: BackendCloud},
		portal: p,
		parser: parser,
		chat:   chat.NewRemoteSource(p, id, logger),
	}
}

// Info returns the world identity.
func (w *Cloud) Info() Info {
	return w.info
}

// Logs downloads and parses the world log.
func (w *Cloud) Logs(ctx context.Context) ([]logs.LogEntry, error) {
	raw, err := w.portal.FetchLogs(ctx, w.info.ID)
	if err != nil {
		return nil, fmt.Errorf("fetching logs for %s: %w", w.info.ID, err)
	}
	return w.parser.Parse(raw), nil
}

// Messages returns chat lines from lastID on.
func (w *Cloud) Messages(ctx context.Context, lastID uint64) chat.Batch {
	return w.chat.Messages(ctx, lastID)
}

// Send posts a chat message.
func (w *Cloud) Send(ctx context.Context, message string) error {
	if err := w.portal.Send(ctx, w.info.ID, message); err != nil {
		return fmt.Errorf("unable to send %q: %w", message, err)
	}
	return nil
}

// Status asks the portal for the world status.
func (w *Cloud) Status(ctx context.Context) (string, error) {
	return w.portal.Status(ctx, w.info.ID)
}
