// Package travelapi is a typed client for the Matribhumi booking backend.
// The admin console owns no storage of its own; every screen reads and
// writes through this API.
package travelapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 15 * time.Second

// Client talks to the booking backend over JSON/HTTPS.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// NewClient constructs a client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// WithHTTPClient overrides the underlying HTTP client, mainly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// WithToken returns a shallow copy of the client that sends the given
// bearer token on every request. The zero token sends no header, which the
// backend treats as an anonymous call.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

// Error is a failure reported by the backend. The message is the backend's
// own error string when the response body carried one.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return e.Message
}

// NotFound reports whether the failure indicates a missing route or
// resource. Status 404 is the structural signal; the message match is a
// compatibility shim for deployments whose proxy rewrites the status.
func (e *Error) NotFound() bool {
	if e.StatusCode == http.StatusNotFound {
		return true
	}
	return strings.Contains(strings.ToLower(e.Message), "not found")
}

// Unauthorized reports whether the backend rejected the credential.
func (e *Error) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsNotFound reports whether err is a backend not-found failure.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.NotFound()
}

// IsUnauthorized reports whether err is a backend credential rejection.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Unauthorized()
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("travelapi: encode %s %s: %w", method, path, err)
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, payload)
	if err != nil {
		return fmt.Errorf("travelapi: build %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("travelapi: %s %s: %w", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("travelapi: read %s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("travelapi: decode %s %s: %w", method, path, err)
	}
	return nil
}

// decodeError maps a non-2xx body of shape {"error": "..."} to an Error,
// falling back to a generic message when the body carries no string.
func decodeError(status int, raw []byte) error {
	var body struct {
		Error string `json:"error"`
	}
	message := "request failed"
	if err := json.Unmarshal(raw, &body); err == nil && strings.TrimSpace(body.Error) != "" {
		message = body.Error
	}
	return &Error{StatusCode: status, Message: message}
}
