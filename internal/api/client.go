package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Client is a thin HTTP client for the job-board REST backend. It
// handles Bearer token authentication, JSON marshaling, status-to-error
// mapping, and automatic retry with exponential backoff on HTTP 429.
type Client struct {
	mu         sync.RWMutex
	baseURL    string
	token      string
	httpClient *http.Client
	maxRetries int
}

// NewClient creates a new backend HTTP client. The baseURL is the API
// origin (e.g., https://api.careernet.app). The token is the session
// bearer credential; an empty token causes every call to fail with an
// AuthError before any request is attempted.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxRetries: 3,
	}
}

// SetCredentials re-points the client at a new origin and session
// token. In-flight requests keep the values they started with.
func (c *Client) SetCredentials(baseURL, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = strings.TrimRight(baseURL, "/")
	c.token = token
}

// Get performs an HTTP GET request and unmarshals the JSON response.
func (c *Client) Get(
	ctx context.Context,
	path string,
	result interface{},
) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

// Post performs an HTTP POST request with a JSON body and unmarshals
// the JSON response.
func (c *Client) Post(
	ctx context.Context,
	path string,
	body interface{},
	result interface{},
) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// Put performs an HTTP PUT request with an optional JSON body and
// unmarshals the JSON response.
func (c *Client) Put(
	ctx context.Context,
	path string,
	body interface{},
	result interface{},
) error {
	return c.do(ctx, http.MethodPut, path, body, result)
}

// Delete performs an HTTP DELETE request and unmarshals the JSON response.
func (c *Client) Delete(
	ctx context.Context,
	path string,
	result interface{},
) error {
	return c.do(ctx, http.MethodDelete, path, nil, result)
}

// errorResponse is the backend's error envelope.
type errorResponse struct {
	Message string `json:"message"`
}

// do is the core HTTP method that builds the request, handles auth,
// rate limiting with exponential backoff, and JSON (de)serialization.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	result interface{},
) error {
	c.mu.RLock()
	baseURL, token := c.baseURL, c.token
	c.mu.RUnlock()

	if token == "" {
		return &AuthError{
			Message: fmt.Sprintf(
				"no session credential; log in before calling %s %s",
				method, path,
			),
		}
	}

	url := baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		// Rebuild the body reader on retries since it was consumed.
		if attempt > 0 && body != nil {
			data, _ := json.Marshal(body)
			bodyReader = bytes.NewReader(data)
		}

		req, err := http.NewRequestWithContext(
			ctx, method, url, bodyReader,
		)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf(
				"executing request %s %s: %w", method, path, err,
			)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("reading response body: %w", readErr)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			waitDuration := retryAfterDuration(resp, attempt)
			lastErr = fmt.Errorf(
				"rate limited (429) on %s %s", method, path,
			)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(waitDuration):
				continue
			}
		}

		if mapped := mapStatusError(resp.StatusCode, method, path, respBody); mapped != nil {
			return mapped
		}

		// No content to parse (e.g. 204).
		if result == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}

		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf(
				"unmarshaling response from %s %s: %w",
				method, path, err,
			)
		}

		return nil
	}

	return fmt.Errorf(
		"max retries (%d) exceeded: %w", c.maxRetries, lastErr,
	)
}

// mapStatusError converts a non-2xx response into the caller-facing
// error taxonomy. Returns nil for success statuses.
func mapStatusError(
	status int,
	method string,
	path string,
	respBody []byte,
) error {
	if status >= 200 && status < 300 {
		return nil
	}

	var serverErr errorResponse
	_ = json.Unmarshal(respBody, &serverErr)

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		msg := serverErr.Message
		if msg == "" {
			msg = fmt.Sprintf(
				"authentication failed (%d): check your session token",
				status,
			)
		}
		return &AuthError{Message: msg}

	case http.StatusBadRequest, http.StatusConflict,
		http.StatusUnprocessableEntity:
		return &ValidationError{Message: serverErr.Message}

	case http.StatusNotFound:
		return &NotFoundError{
			Resource: "resource",
			ID:       path,
		}
	}

	if serverErr.Message != "" {
		return fmt.Errorf(
			"server error (%d) on %s %s: %s",
			status, method, path, serverErr.Message,
		)
	}
	return fmt.Errorf(
		"unexpected status %d on %s %s: %s",
		status, method, path, string(respBody),
	)
}

// retryAfterDuration reads the Retry-After header and computes a wait
// duration. Falls back to exponential backoff if the header is missing.
func retryAfterDuration(resp *http.Response, attempt int) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}

	// Exponential backoff: 1s, 2s, 4s, ...
	backoff := time.Duration(1<<uint(attempt)) * time.Second
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	return backoff
}
