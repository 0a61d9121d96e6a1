// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// WorldClient provides access to world operations.
//
// Access this client through [Client.Worlds]:
//
//	worlds, err := client.Worlds.List(ctx)
//	batch, err := client.Worlds.Messages(ctx, "42", 0)
type WorldClient struct {
	c *Client
}

// List returns all configured worlds.
func (w *WorldClient) List(ctx context.Context) ([]World, error) {
	data, err := w.c.get(ctx, "/api/v1/worlds")
	if err != nil {
		return nil, err
	}

	var worlds []World
	if err := json.Unmarshal(data, &worlds); err != nil {
		return nil, fmt.Errorf("failed to parse worlds: %w", err)
	}
	return worlds, nil
}

// Get returns a single world.
func (w *WorldClient) Get(ctx context.Context, id string) (*World, error) {
	data, err := w.c.get(ctx, worldPath(id, ""))
	if err != nil {
		return nil, err
	}

	var world World
	if err := json.Unmarshal(data, &world); err != nil {
		return nil, fmt.Errorf("failed to parse world: %w", err)
	}
	return &world, nil
}

// Logs returns the world's parsed log, oldest first. A positive limit keeps
// only the newest entries.
func (w *WorldClient) Logs(ctx context.Context, id string, limit int) ([]LogEntry, error) {
	path := worldPath(id, "/logs")
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	data, err := w.c.get(ctx, path)
	if err != nil {
		return nil, err
	}

	var entries []LogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse log entries: %w", err)
	}
	return entries, nil
}

// Messages returns the chat lines after the lastID cursor. Use 0 to read
// everything the server still has.
func (w *WorldClient) Messages(ctx context.Context, id string, lastID uint64) (*ChatBatch, error) {
	data, err := w.c.get(ctx, worldPath(id, "/messages")+"?lastId="+strconv.FormatUint(lastID, 10))
	if err != nil {
		return nil, err
	}

	var batch ChatBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("failed to parse chat batch: %w", err)
	}
	return &batch, nil
}

// Send posts a chat message to the world.
func (w *WorldClient) Send(ctx context.Context, id, message string) error {
	_, err := w.c.postJSON(ctx, worldPath(id, "/send"), map[string]string{"message": message})
	return err
}

// Status returns the world's status.
func (w *WorldClient) Status(ctx context.Context, id string) (*WorldStatus, error) {
	data, err := w.c.get(ctx, worldPath(id, "/status"))
	if err != nil {
		return nil, err
	}

	var status WorldStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status: %w", err)
	}
	return &status, nil
}

// Follow polls Messages every interval starting at lastID and calls fn for
// each batch that carries lines. Request errors are retried on the next
// tick with the same cursor. Follow returns when ctx is done (with a nil
// error) or when fn fails, along with the cursor to resume from.
func (w *WorldClient) Follow(ctx context.Context, id string, lastID uint64, interval time.Duration, fn func(*ChatBatch) error) (uint64, error) {
	if interval <= 0 {
		interval = 5 * time.Second
	}

	timer := time.NewTimer(0)
	defer timer.Stop()

	cursor := lastID
	for {
		select {
		case <-ctx.Done():
			return cursor, nil
		case <-timer.C:
		}

		batch, err := w.Messages(ctx, id, cursor)
		if err == nil {
			if len(batch.Log) > 0 {
				if err := fn(batch); err != nil {
					return cursor, err
				}
			}
			cursor = batch.NextID
		}

		timer.Reset(interval)
	}
}

func worldPath(id, suffix string) string {
	return "/api/v1/worlds/" + url.PathEscape(id) + suffix
}
