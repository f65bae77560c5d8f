package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"shopfront/internal/observability"
)

// Client talks to the storefront backend API.
//
// The zero timeout is deliberate: a hung request stays pending until the
// caller cancels its context (parameter change, navigation, logout).
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a storefront API client. timeout of 0 disables the
// automatic HTTP timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do issues one request and returns the raw response body. Non-2xx responses
// become *APIError with the message extracted from the body. A cancelled
// context propagates as-is so callers can tell cancellation from failure.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, token string, payload any) ([]byte, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		observability.APIRequestsTotal.WithLabelValues(op, "error").Inc()
		observability.FromContext(ctx).Debug("api request failed",
			"operation", op, "error", err.Error())
		return nil, fmt.Errorf("request could not complete: %w", err)
	}
	defer resp.Body.Close()

	status := strconv.Itoa(resp.StatusCode)
	observability.APIRequestDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
	observability.APIRequestsTotal.WithLabelValues(op, status).Inc()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			Status:  resp.StatusCode,
			Message: parseErrorMessage(resp.StatusCode, raw),
		}
	}

	return raw, nil
}

// decode unmarshals a success body into out, mapping malformed JSON to
// ErrInvalidPayload: a 2xx with a body we cannot read is still an error.
func decode(raw []byte, out any) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPayload, err)
	}
	return nil
}
