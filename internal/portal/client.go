// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package portal is a thin client for the Blockheads cloud server portal.
//
// Only the calls needed to read logs, read chat and send chat are covered.
// The session cookie is obtained out of band and supplied with [WithCookie].
package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultURL is the portal root.
const DefaultURL = "http://portal.theblockheads.net"

// StatusOK is the status the portal API reports on success.
const StatusOK = "ok"

// Client talks to the portal. It is safe for concurrent use.
type Client struct {
	baseURL    string
	cookie     string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// New creates a portal client. An empty baseURL selects [DefaultURL].
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	jar, _ := cookiejar.New(nil)
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithHTTPClient sets a custom HTTP client for making requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the HTTP client timeout for all requests.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithCookie sends a raw Cookie header (e.g. "PHPSESSID=...") with every request.
func WithCookie(cookie string) Option {
	return func(c *Client) {
		c.cookie = cookie
	}
}

// BaseURL returns the portal root in use.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// StatusError is returned when the portal API answers with a status other than "ok".
type StatusError struct {
	Command string
	Status  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("portal %s: status %q", e.Command, e.Status)
}

// HTTPError is returned when the portal answers with a non-2xx status.
type HTTPError struct {
	StatusCode int
	Body       string // first bytes of the response body
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("portal request failed with status %d: %s", e.StatusCode, e.Body)
}

// ChatResponse is the portal answer to a getchat command.
type ChatResponse struct {
	Status string   `json:"status"`
	Log    []string `json:"log"`
	NextID uint64   `json:"nextId"`
}

// FetchLogs returns the raw log of a world.
func (c *Client) FetchLogs(ctx context.Context, worldID string) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, "/worlds/logs/"+url.PathEscape(worldID), nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return string(body), nil
}

// GetChat requests chat lines starting at firstID. A non-ok status is
// reported in the response, not as an error; errors mean the request or
// its decoding failed.
func (c *Client) GetChat(ctx context.Context, worldID string, firstID uint64) (ChatResponse, error) {
	var resp ChatResponse
	err := c.command(ctx, url.Values{
		"command": {"getchat"},
		"worldId": {worldID},
		"firstId": {strconv.FormatUint(firstID, 10)},
	}, &resp)
	return resp, err
}

// Send posts a chat message to a world.
func (c *Client) Send(ctx context.Context, worldID, message string) error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.command(ctx, url.Values{
		"command": {"send"},
		"worldId": {worldID},
		"message": {message},
	}, &resp); err != nil {
		return err
	}
	if resp.Status != StatusOK {
		return &StatusError{Command: "send", Status: resp.Status}
	}
	return nil
}

// Status returns the world status reported by the portal (e.g. "online").
func (c *Client) Status(ctx context.Context, worldID string) (string, error) {
	var resp struct {
		Status      string `json:"status"`
		WorldStatus string `json:"worldStatus"`
	}
	if err := c.command(ctx, url.Values{
		"command": {"status"},
		"worldId": {worldID},
	}, &resp); err != nil {
		return "", err
	}
	return resp.WorldStatus, nil
}

// command posts a form-encoded command to /api and decodes the JSON answer.
func (c *Client) command(ctx context.Context, form url.Values, out any) error {
	resp, err := c.do(ctx, http.MethodPost, "/api", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", form.Get("command"), err)
	}
	return nil
}

// do performs an HTTP request. Non-2xx answers are errors.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	return resp, nil
}
