// Package api is the typed REST client for the MediLink backend. It owns
// bearer-token injection, response decoding, and the error taxonomy; no
// other package talks to the network.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/medilink/medilink/internal/session"
	"github.com/medilink/medilink/internal/util"
)

// DefaultTimeout bounds every request; there are no retries.
const DefaultTimeout = 15 * time.Second

// Client talks to the MediLink REST API. All methods are safe to call from
// Bubble Tea commands.
type Client struct {
	baseURL string
	http    *http.Client
	session *session.Store
	ids     *util.IDGenerator
}

// New creates a client rooted at baseURL (e.g. "http://localhost:8000/api").
func New(baseURL string, timeout time.Duration, sess *session.Store) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		session: sess,
		ids:     util.NewIDGenerator(),
	}
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Session returns the session store backing this client.
func (c *Client) Session() *session.Store {
	return c.session
}

// do issues one request. When authed is true the stored bearer token is
// attached; its absence fails before any network I/O.
func (c *Client) do(ctx context.Context, method, path string, body any, authed bool) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", c.ids.NewID())

	if authed {
		token := c.session.Token()
		if token == "" {
			return nil, ErrMissingToken()
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		slog.Debug("API request failed",
			"method", method,
			"path", path,
			"request_id", req.Header.Get("X-Request-ID"),
			"error", err,
		)
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	slog.Debug("API request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", req.Header.Get("X-Request-ID"),
		"elapsed", time.Since(start),
	)
	return resp, nil
}

// detailBody is the error envelope the backend uses for failures.
type detailBody struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

// errorDetail extracts the server-provided failure message, or "".
func errorDetail(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return ""
	}
	var d detailBody
	if err := json.Unmarshal(data, &d); err != nil {
		return strings.TrimSpace(string(data))
	}
	if d.Detail != "" {
		return d.Detail
	}
	return d.Message
}

// unauthorized clears the session and returns the invalid-session error.
// A 401 anywhere means the token is no longer usable.
func (c *Client) unauthorized() error {
	c.session.Clear()
	return ErrInvalidSession()
}

// decode reads a 2xx response body into v.
func decode(resp *http.Response, v any) error {
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &DataFormatError{Detail: fmt.Sprintf("decoding response: %v", err)}
	}
	return nil
}
