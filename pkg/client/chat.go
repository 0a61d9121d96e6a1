// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// TailClient controls the local chat tailer, which follows the system log
// of the blockwatch host for worlds run by the mac server app.
//
// The tail routes only exist when a mac world is configured; otherwise
// every call fails with a not found error.
type TailClient struct {
	c *Client
}

// Status returns the tailer status.
func (t *TailClient) Status(ctx context.Context) (*TailStatus, error) {
	return t.status(t.c.get(ctx, "/api/v1/chat/tail"))
}

// Lines returns the raw buffered lines from lastID on, across all worlds.
func (t *TailClient) Lines(ctx context.Context, lastID uint64) (*TailLines, error) {
	data, err := t.c.get(ctx, "/api/v1/chat/tail/lines?lastId="+strconv.FormatUint(lastID, 10))
	if err != nil {
		return nil, err
	}

	var lines TailLines
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("failed to parse tail lines: %w", err)
	}
	return &lines, nil
}

// Watch starts or restarts tailing. The buffer is cleared.
func (t *TailClient) Watch(ctx context.Context) (*TailStatus, error) {
	return t.status(t.c.post(ctx, "/api/v1/chat/tail/watch"))
}

// Unwatch stops tailing. Buffered lines stay readable.
func (t *TailClient) Unwatch(ctx context.Context) (*TailStatus, error) {
	return t.status(t.c.post(ctx, "/api/v1/chat/tail/unwatch"))
}

func (t *TailClient) status(data json.RawMessage, err error) (*TailStatus, error) {
	if err != nil {
		return nil, err
	}

	var status TailStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse tail status: %w", err)
	}
	return &status, nil
}
