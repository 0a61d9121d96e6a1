// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"context"
	"log/slog"

	"github.com/wingedpig/blockwatch/internal/portal"
)

// ChatFetcher is the portal call used by RemoteSource.
type ChatFetcher interface {
	GetChat(ctx context.Context, worldID string, firstID uint64) (portal.ChatResponse, error)
}

// RemoteSource reads chat from the cloud portal.
type RemoteSource struct {
	fetcher ChatFetcher
	worldID string
	logger  *slog.Logger
}

// NewRemoteSource creates a source for worldID. logger may be nil.
func NewRemoteSource(fetcher ChatFetcher, worldID string, logger *slog.Logger) *RemoteSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &RemoteSource{
		fetcher: fetcher,
		worldID: worldID,
		logger:  logger.With("world", worldID),
	}
}

// Messages asks the portal for lines from lastID on. The server's cursor is
// trusted when it reports ok. Any other status resets the cursor to 0, since
// it usually means the world went offline and its history is gone. When the
// portal cannot be reached the cursor is kept so the caller can retry.
func (s *RemoteSource) Messages(ctx context.Context, lastID uint64) Batch {
	resp, err := s.fetcher.GetChat(ctx, s.worldID, lastID)
	if err != nil {
		s.logger.Warn("chat request failed", "last_id", lastID, "error", err)
		return retry(lastID)
	}
	if resp.Status != portal.StatusOK {
		s.logger.Debug("chat reset", "status", resp.Status)
		return reset()
	}

	log := resp.Log
	if log == nil {
		log = []string{}
	}
	return Batch{NextID: resp.NextID, Log: log}
}
