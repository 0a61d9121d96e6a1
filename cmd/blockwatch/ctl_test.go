// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/wingedpig/blockwatch/pkg/client"
)

func TestPoll(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()

		batch := client.ChatBatch{NextID: 2, Log: []string{}}
		if n == 1 {
			batch.Log = []string{"alice: hi", "bob: hello"}
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"data": batch})
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	var out bytes.Buffer
	if err := poll(ctx, client.New(server.URL), "42", 0, 20*time.Millisecond, &out); err != nil {
		t.Fatalf("poll() error = %v", err)
	}

	if out.String() != "alice: hi\nbob: hello\n" {
		t.Errorf("output = %q", out.String())
	}
	mu.Lock()
	defer mu.Unlock()
	if calls < 2 {
		t.Errorf("calls = %d, want at least 2", calls)
	}
}

func TestCmdPollRequiresWorld(t *testing.T) {
	err := cmdPoll(nil, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "-world") {
		t.Errorf("cmdPoll() error = %v", err)
	}
}

func TestCmdSendUsage(t *testing.T) {
	if err := cmdSend([]string{"-world", "42"}); err == nil {
		t.Error("expected usage error without a message")
	}
}

func TestCmdTailUnknownAction(t *testing.T) {
	if err := cmdTail([]string{"restart"}, &bytes.Buffer{}); err == nil {
		t.Error("expected usage error")
	}
}
