// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"context"

	"github.com/wingedpig/blockwatch/internal/logs"
)

// LocalSource reads chat from a tail buffer shared by every server on the
// host, scoped to one server name.
type LocalSource struct {
	buffer *logs.ChatBuffer
	filter logs.NameFilter
}

// NewLocalSource creates a source over buffer for serverName.
func NewLocalSource(buffer *logs.ChatBuffer, serverName string) *LocalSource {
	return &LocalSource{
		buffer: buffer,
		filter: logs.NameFilter{Name: serverName},
	}
}

// Messages returns the buffered lines with id >= lastID that belong to the
// server. NextID always comes from the buffer, never from lastID.
func (s *LocalSource) Messages(ctx context.Context, lastID uint64) Batch {
	lines, next := s.buffer.Read(lastID)

	log := make([]string, 0, len(lines))
	for _, line := range lines {
		if msg, ok := s.filter.Scope(line.Message); ok {
			log = append(log, msg)
		}
	}
	return Batch{NextID: next, Log: log}
}
