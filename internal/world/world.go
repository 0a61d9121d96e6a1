// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package world exposes Blockheads worlds hosted on the cloud portal or on
// the local mac server behind one interface.
package world

import (
	"context"
	"errors"

	"github.com/wingedpig/blockwatch/internal/chat"
	"github.com/wingedpig/blockwatch/internal/logs"
)

// ErrWorldNotFound is returned when no world has the requested id.
var ErrWorldNotFound = errors.New("world not found")

// Backend names.
const (
	BackendCloud = "cloud"
	BackendMac   = "mac"
)

// Info identifies a world.
type Info struct {
	Name    string `json:"name"`
	ID      string `json:"id"`
	Backend string `json:"backend"`
}

// World is a single Blockheads world.
type World interface {
	chat.Source

	// Info returns the world identity.
	Info() Info

	// Logs returns the world's parsed log, oldest first.
	Logs(ctx context.Context) ([]logs.LogEntry, error)

	// Send posts a chat message as the server.
	Send(ctx context.Context, message string) error

	// Status returns the world status, e.g. "online".
	Status(ctx context.Context) (string, error)
}
