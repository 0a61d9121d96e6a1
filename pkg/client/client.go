// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package client provides a Go client library for the blockwatch API.
//
// blockwatch normalizes the chat and logs of Blockheads worlds, whether
// hosted on the cloud portal or run by the mac server app, and serves them
// over HTTP. This package gives typed access to that API.
//
// # Getting Started
//
//	c := client.New("http://localhost:8420")
//
//	// List worlds
//	worlds, err := c.Worlds.List(ctx)
//
//	// Read chat incrementally
//	batch, err := c.Worlds.Messages(ctx, "42", 0)
//	next, err := c.Worlds.Messages(ctx, "42", batch.NextID)
//
//	// Send a message
//	err = c.Worlds.Send(ctx, "42", "hello")
//
// # API Versioning
//
// The version is sent via the Blockwatch-Version HTTP header on each
// request. Pin one with [WithVersion]:
//
//	c := client.New("http://localhost:8420", client.WithVersion(client.Version20261019))
//
// # Error Handling
//
// API errors are returned as *APIError values:
//
//	_, err := c.Worlds.Get(ctx, "unknown")
//	var apiErr *client.APIError
//	if errors.As(err, &apiErr) {
//	    fmt.Printf("API error: %s - %s\n", apiErr.Code, apiErr.Message)
//	}
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is a blockwatch API client.
//
// A Client provides access to the API through resource-specific
// sub-clients. Use [New] to create a Client instance.
//
// The Client is safe for concurrent use by multiple goroutines.
type Client struct {
	baseURL    string
	version    string
	httpClient *http.Client

	// Worlds provides access to world logs, chat and status.
	Worlds *WorldClient

	// Tail controls the local chat tailer.
	Tail *TailClient

	// Events provides access to the event log.
	Events *EventClient
}

// Option configures a [Client]. Options are passed to [New] to customize
// client behavior.
type Option func(*Client)

// New creates a new API client with the given base URL and options.
//
// The baseURL should be the root URL of the blockwatch server (e.g., "http://localhost:8420").
// Any trailing slash is automatically removed.
//
// By default, the client uses:
//   - The latest API version ([LatestVersion])
//   - A 30-second HTTP timeout
//
// Use options like [WithVersion], [WithTimeout], or [WithHTTPClient] to customize.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		version: LatestVersion,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	c.Worlds = &WorldClient{c: c}
	c.Tail = &TailClient{c: c}
	c.Events = &EventClient{c: c}

	return c
}

// WithVersion sets the API version to use for all requests.
// See [LatestVersion] and [Version20261019].
func WithVersion(v string) Option {
	return func(c *Client) {
		c.version = v
	}
}

// WithHTTPClient sets a custom HTTP client for making requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the HTTP client timeout for all requests.
// The default timeout is 30 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// Version returns the API version being used.
func (c *Client) Version() string {
	return c.version
}

// BaseURL returns the base URL of the API.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// envelope is the wrapper around every API response body.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *APIError       `json:"error"`
}

// APIError is an error reported by the blockwatch API.
//
// Codes include NOT_FOUND, BAD_REQUEST, WORLD_ERROR (the portal or server
// app failed), SEND_FAILED, TAIL_ERROR and INTERNAL_ERROR.
type APIError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int `json:"-"`

	// Code is a machine-readable error code (e.g., "NOT_FOUND").
	Code string `json:"code"`

	// Message is a human-readable description of the error.
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// IsNotFound reports whether err is an API error with code NOT_FOUND.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == "NOT_FOUND"
}

func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *Client) post(ctx context.Context, path string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, path, nil)
}

func (c *Client) postJSON(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(data))
}

// do sends a request and returns the data member of the response envelope.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set(VersionHeader, c.version)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	return decodeEnvelope(resp)
}

func decodeEnvelope(resp *http.Response) (json.RawMessage, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 400 {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		}
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if env.Error != nil {
		env.Error.StatusCode = resp.StatusCode
		return nil, env.Error
	}
	if resp.StatusCode >= 400 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	return env.Data, nil
}
