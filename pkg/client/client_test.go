// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// mockServer creates a test server that returns the given response.
func mockServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(handler)
}

// apiHandler creates a handler that returns a standard API response.
func apiHandler(data interface{}, statusCode int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)

		resp := map[string]interface{}{
			"data": data,
		}
		json.NewEncoder(w).Encode(resp)
	}
}

// apiErrorHandler creates a handler that returns an API error.
func apiErrorHandler(code, message string, statusCode int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)

		resp := map[string]interface{}{
			"error": map[string]string{
				"code":    code,
				"message": message,
			},
		}
		json.NewEncoder(w).Encode(resp)
	}
}

func TestNew(t *testing.T) {
	c := New("http://localhost:8420")

	if c.BaseURL() != "http://localhost:8420" {
		t.Errorf("BaseURL() = %q, want %q", c.BaseURL(), "http://localhost:8420")
	}

	if c.Version() != LatestVersion {
		t.Errorf("Version() = %q, want %q", c.Version(), LatestVersion)
	}

	if c.Worlds == nil {
		t.Error("Worlds client is nil")
	}
	if c.Tail == nil {
		t.Error("Tail client is nil")
	}
	if c.Events == nil {
		t.Error("Events client is nil")
	}
}

func TestNewWithOptions(t *testing.T) {
	t.Run("WithVersion", func(t *testing.T) {
		c := New("http://localhost:8420", WithVersion("2026-01-01"))
		if c.Version() != "2026-01-01" {
			t.Errorf("Version() = %q, want %q", c.Version(), "2026-01-01")
		}
	})

	t.Run("WithHTTPClient", func(t *testing.T) {
		customClient := &http.Client{Timeout: 10 * time.Second}
		c := New("http://localhost:8420", WithHTTPClient(customClient))
		if c.httpClient != customClient {
			t.Error("custom HTTP client not used")
		}
	})

	t.Run("WithTimeout", func(t *testing.T) {
		c := New("http://localhost:8420", WithTimeout(60*time.Second))
		if c.httpClient.Timeout != 60*time.Second {
			t.Errorf("Timeout = %v, want 60s", c.httpClient.Timeout)
		}
	})

	t.Run("trailing slash removed", func(t *testing.T) {
		c := New("http://localhost:8420/")
		if c.BaseURL() != "http://localhost:8420" {
			t.Errorf("BaseURL() = %q, want trailing slash removed", c.BaseURL())
		}
	})
}

func TestAPIError(t *testing.T) {
	err := &APIError{
		Code:    "NOT_FOUND",
		Message: "world not found",
	}

	expected := "NOT_FOUND: world not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}

	err2 := &APIError{
		Message: "Something went wrong",
	}
	if err2.Error() != "Something went wrong" {
		t.Errorf("Error() = %q, want %q", err2.Error(), "Something went wrong")
	}
}

func TestVersionHeader(t *testing.T) {
	var receivedVersion string
	server := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		receivedVersion = r.Header.Get(VersionHeader)
		apiHandler([]World{}, http.StatusOK)(w, r)
	})
	defer server.Close()

	c := New(server.URL, WithVersion("2026-01-17"))
	_, _ = c.Worlds.List(context.Background())

	if receivedVersion != "2026-01-17" {
		t.Errorf("%s header = %q, want %q", VersionHeader, receivedVersion, "2026-01-17")
	}
}

func TestWorldClient_List(t *testing.T) {
	worlds := []World{
		{Name: "DEMO", ID: "DEMO", Backend: "mac"},
		{Name: "Cloudy", ID: "42", Backend: "cloud"},
	}

	var path string
	server := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		apiHandler(worlds, http.StatusOK)(w, r)
	})
	defer server.Close()

	c := New(server.URL)
	result, err := c.Worlds.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if path != "/api/v1/worlds" {
		t.Errorf("path = %q, want /api/v1/worlds", path)
	}
	if len(result) != 2 {
		t.Fatalf("List() returned %d worlds, want 2", len(result))
	}
	if result[1].ID != "42" || result[1].Backend != "cloud" {
		t.Errorf("result[1] = %+v", result[1])
	}
}

func TestWorldClient_GetNotFound(t *testing.T) {
	server := mockServer(t, apiErrorHandler("NOT_FOUND", "world not found: nope", http.StatusNotFound))
	defer server.Close()

	c := New(server.URL)
	_, err := c.Worlds.Get(context.Background(), "nope")
	if err == nil {
		t.Fatal("Get() expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error is %T, want *APIError", err)
	}
	if apiErr.Code != "NOT_FOUND" {
		t.Errorf("Code = %q, want NOT_FOUND", apiErr.Code)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
	}
	if !IsNotFound(err) {
		t.Error("IsNotFound() = false")
	}
}

func TestNonEnvelopeError(t *testing.T) {
	server := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})
	defer server.Close()

	_, err := New(server.URL).Worlds.List(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error is %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadGateway || apiErr.Message != "bad gateway" {
		t.Errorf("apiErr = %+v", apiErr)
	}
	if IsNotFound(err) {
		t.Error("IsNotFound() = true")
	}
}

func TestWorldClient_Logs(t *testing.T) {
	var query string
	server := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		apiHandler([]LogEntry{{Raw: "raw", Message: "World load complete"}}, http.StatusOK)(w, r)
	})
	defer server.Close()

	c := New(server.URL)
	entries, err := c.Worlds.Logs(context.Background(), "42", 10)
	if err != nil {
		t.Fatalf("Logs() error = %v", err)
	}
	if query != "limit=10" {
		t.Errorf("query = %q, want limit=10", query)
	}
	if len(entries) != 1 || entries[0].Message != "World load complete" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestWorldClient_Messages(t *testing.T) {
	var path, lastID string
	server := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		lastID = r.URL.Query().Get("lastId")
		apiHandler(ChatBatch{NextID: 12, Log: []string{"alice: hi"}}, http.StatusOK)(w, r)
	})
	defer server.Close()

	c := New(server.URL)
	batch, err := c.Worlds.Messages(context.Background(), "42", 11)
	if err != nil {
		t.Fatalf("Messages() error = %v", err)
	}

	if path != "/api/v1/worlds/42/messages" {
		t.Errorf("path = %q", path)
	}
	if lastID != "11" {
		t.Errorf("lastId = %q, want 11", lastID)
	}
	if batch.NextID != 12 || len(batch.Log) != 1 {
		t.Errorf("batch = %+v", batch)
	}
}

func TestWorldClient_Send(t *testing.T) {
	var body map[string]string
	var method string
	server := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		json.NewDecoder(r.Body).Decode(&body)
		apiHandler(map[string]string{"status": "sent"}, http.StatusOK)(w, r)
	})
	defer server.Close()

	c := New(server.URL)
	if err := c.Worlds.Send(context.Background(), "42", "hello"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if method != http.MethodPost {
		t.Errorf("method = %q, want POST", method)
	}
	if body["message"] != "hello" {
		t.Errorf("message = %q, want hello", body["message"])
	}
}

func TestWorldClient_SendFailed(t *testing.T) {
	server := mockServer(t, apiErrorHandler("SEND_FAILED", "unable to send message", http.StatusBadGateway))
	defer server.Close()

	c := New(server.URL)
	err := c.Worlds.Send(context.Background(), "42", "hello")

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != "SEND_FAILED" {
		t.Errorf("Send() error = %v, want SEND_FAILED", err)
	}
}

func TestWorldClient_Status(t *testing.T) {
	server := mockServer(t, apiHandler(WorldStatus{ID: "42", Status: "online"}, http.StatusOK))
	defer server.Close()

	c := New(server.URL)
	status, err := c.Worlds.Status(context.Background(), "42")
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if status.Status != "online" {
		t.Errorf("Status = %q, want online", status.Status)
	}
}

func TestWorldClient_Follow(t *testing.T) {
	var mu sync.Mutex
	var cursors []string
	calls := 0

	server := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		cursors = append(cursors, r.URL.Query().Get("lastId"))
		calls++
		n := calls
		mu.Unlock()

		switch n {
		case 1:
			apiHandler(ChatBatch{NextID: 2, Log: []string{"a", "b"}}, http.StatusOK)(w, r)
		case 2:
			apiErrorHandler("WORLD_ERROR", "portal down", http.StatusBadGateway)(w, r)
		case 3:
			apiHandler(ChatBatch{NextID: 2, Log: []string{}}, http.StatusOK)(w, r)
		default:
			apiHandler(ChatBatch{NextID: 3, Log: []string{"c"}}, http.StatusOK)(w, r)
		}
	})
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var got []string
	stop := errors.New("stop")

	c := New(server.URL)
	cursor, err := c.Worlds.Follow(ctx, "42", 0, 10*time.Millisecond, func(b *ChatBatch) error {
		got = append(got, b.Log...)
		if len(got) == 3 {
			return stop
		}
		return nil
	})

	if !errors.Is(err, stop) {
		t.Fatalf("Follow() error = %v, want stop", err)
	}
	if cursor != 2 {
		t.Errorf("cursor = %d, want 2", cursor)
	}
	if len(got) != 3 || got[2] != "c" {
		t.Errorf("got = %v", got)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"0", "2", "2", "2"}
	for i, w := range want {
		if cursors[i] != w {
			t.Errorf("cursor[%d] = %q, want %q", i, cursors[i], w)
		}
	}
}

func TestTailClient(t *testing.T) {
	var paths []string
	server := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		switch r.URL.Path {
		case "/api/v1/chat/tail/lines":
			apiHandler(TailLines{NextID: 2, Lines: []ChatLine{{ID: 1, Message: "DEMO - hi"}}}, http.StatusOK)(w, r)
		case "/api/v1/chat/tail/watch":
			apiHandler(TailStatus{Watching: true, BufferMax: 2000}, http.StatusOK)(w, r)
		default:
			apiHandler(TailStatus{Watching: false, BufferMax: 2000}, http.StatusOK)(w, r)
		}
	})
	defer server.Close()

	c := New(server.URL)
	ctx := context.Background()

	status, err := c.Tail.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if !status.Watching {
		t.Error("Watch() status not watching")
	}

	lines, err := c.Tail.Lines(ctx, 1)
	if err != nil {
		t.Fatalf("Lines() error = %v", err)
	}
	if lines.NextID != 2 || len(lines.Lines) != 1 || lines.Lines[0].ID != 1 {
		t.Errorf("lines = %+v", lines)
	}

	status, err = c.Tail.Unwatch(ctx)
	if err != nil {
		t.Fatalf("Unwatch() error = %v", err)
	}
	if status.Watching {
		t.Error("Unwatch() status still watching")
	}

	if _, err := c.Tail.Status(ctx); err != nil {
		t.Fatalf("Status() error = %v", err)
	}

	want := []string{
		"POST /api/v1/chat/tail/watch",
		"GET /api/v1/chat/tail/lines",
		"POST /api/v1/chat/tail/unwatch",
		"GET /api/v1/chat/tail",
	}
	for i, w := range want {
		if paths[i] != w {
			t.Errorf("request %d = %q, want %q", i, paths[i], w)
		}
	}
}

func TestEventClient_List(t *testing.T) {
	var query map[string][]string
	server := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		apiHandler([]Event{{ID: "evt-3", Seq: 3, Type: "chat.message", World: "local"}}, http.StatusOK)(w, r)
	})
	defer server.Close()

	c := New(server.URL)
	events, err := c.Events.List(context.Background(), &ListOptions{
		Limit: 5,
		Types: []string{"chat.*"},
		World: "local",
		After: 2,
	})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if len(events) != 1 || events[0].Seq != 3 {
		t.Errorf("events = %+v", events)
	}
	if query["limit"][0] != "5" || query["type"][0] != "chat.*" || query["world"][0] != "local" || query["after"][0] != "2" {
		t.Errorf("query = %v", query)
	}
}

func TestListOptionsQuery(t *testing.T) {
	var nilOpts *ListOptions
	if q := nilOpts.query(); q != "" {
		t.Errorf("nil query = %q", q)
	}
	if q := (&ListOptions{}).query(); q != "" {
		t.Errorf("empty query = %q", q)
	}

	since := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	q := (&ListOptions{Types: []string{"chat.*", "world.send"}, Since: since}).query()
	want := "?since=2026-10-19T08%3A00%3A00Z&type=chat.%2A&type=world.send"
	if q != want {
		t.Errorf("query = %q, want %q", q, want)
	}
}
