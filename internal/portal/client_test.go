// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package portal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	c := New("")
	assert.Equal(t, DefaultURL, c.BaseURL())

	c = New("http://example.com/")
	assert.Equal(t, "http://example.com", c.BaseURL())
}

func TestFetchLogs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/worlds/logs/123", r.URL.Path)
		assert.Equal(t, "XMLHttpRequest", r.Header.Get("X-Requested-With"))
		assert.Equal(t, "PHPSESSID=abc", r.Header.Get("Cookie"))
		w.Write([]byte("line one\nline two"))
	}))
	defer server.Close()

	c := New(server.URL, WithCookie("PHPSESSID=abc"))
	logs, err := c.FetchLogs(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", logs)
}

func TestFetchLogsHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	_, err := New(server.URL).FetchLogs(context.Background(), "123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusForbidden, httpErr.StatusCode)
	assert.Equal(t, "nope", httpErr.Body)
}

func TestCommandHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := New(server.URL).GetChat(context.Background(), "123", 0)
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.StatusCode)
}

func TestGetChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "getchat", r.PostForm.Get("command"))
		assert.Equal(t, "123", r.PostForm.Get("worldId"))
		assert.Equal(t, "7", r.PostForm.Get("firstId"))

		json.NewEncoder(w).Encode(map[string]any{
			"status": "ok",
			"log":    []string{"SERVER: hi"},
			"nextId": 8,
		})
	}))
	defer server.Close()

	resp, err := New(server.URL).GetChat(context.Background(), "123", 7)
	require.NoError(t, err)
	assert.Equal(t, ChatResponse{Status: "ok", Log: []string{"SERVER: hi"}, NextID: 8}, resp)
}

func TestGetChatNonOKStatusIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error"}`))
	}))
	defer server.Close()

	resp, err := New(server.URL).GetChat(context.Background(), "123", 7)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
}

func TestGetChatInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>login</html>`))
	}))
	defer server.Close()

	_, err := New(server.URL).GetChat(context.Background(), "123", 0)
	assert.Error(t, err)
}

func TestSend(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "send", r.PostForm.Get("command"))
		got = r.PostForm.Get("message")
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	err := New(server.URL).Send(context.Background(), "123", "hello & goodbye")
	require.NoError(t, err)
	assert.Equal(t, "hello & goodbye", got)
}

func TestSendFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error"}`))
	}))
	defer server.Close()

	err := New(server.URL).Send(context.Background(), "123", "hi")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, "send", statusErr.Command)
	assert.Equal(t, "error", statusErr.Status)
}

func TestStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "status", r.PostForm.Get("command"))
		w.Write([]byte(`{"status":"ok","worldStatus":"online"}`))
	}))
	defer server.Close()

	status, err := New(server.URL).Status(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, "online", status)
}

func TestTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	_, err := New(server.URL, WithTimeout(20*time.Millisecond)).GetChat(context.Background(), "123", 0)
	assert.Error(t, err)
}
