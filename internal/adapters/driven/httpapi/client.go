// Package httpapi is the JSON-over-HTTP client shared by the model
// provider adapters. Rate limits and server errors are retried with
// exponential backoff; everything else fails on the first response.
package httpapi

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

	"github.com/cenkalti/backoff/v4"
	"github.com/tidwall/gjson"

	"github.com/custodia-labs/sercha-rag/internal/logger"
)

const (
	// DefaultRetries is how many times a retryable request is repeated.
	DefaultRetries = 2

	// DefaultInitialInterval is the wait before the first retry.
	DefaultInitialInterval = 250 * time.Millisecond

	// maxErrorBody caps how much of an error response is kept.
	maxErrorBody = 512
)

// StatusError is a non-2xx provider response.
type StatusError struct {
	Provider string
	Status   int
	Message  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.Status, e.Message)
}

// Retryable reports whether the request may succeed if sent again.
func (e *StatusError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
}

// Config configures a Client.
type Config struct {
	// Provider prefixes every error, e.g. "openai".
	Provider string

	// BaseURL is joined with each request path. A trailing slash is dropped.
	BaseURL string

	// Timeout bounds a single attempt.
	Timeout time.Duration

	// Header is sent with every request.
	Header http.Header

	// Retries is the retry count. Zero means DefaultRetries, negative disables retries.
	Retries int

	// InitialInterval is the first backoff wait (default: 250ms).
	InitialInterval time.Duration
}

// Client sends JSON requests to one provider.
type Client struct {
	provider string
	baseURL  string
	http     *http.Client
	header   http.Header
	retries  uint64
	interval time.Duration
}

// New creates a client.
func New(cfg Config) *Client {
	retries := uint64(DefaultRetries)
	switch {
	case cfg.Retries < 0:
		retries = 0
	case cfg.Retries > 0:
		retries = uint64(cfg.Retries)
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = DefaultInitialInterval
	}
	header := cfg.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	return &Client{
		provider: cfg.Provider,
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		http:     &http.Client{Timeout: cfg.Timeout},
		header:   header,
		retries:  retries,
		interval: cfg.InitialInterval,
	}
}

// BaseURL returns the base URL requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// PostJSON sends in as JSON to path and decodes the response into out.
// A response that is 200 but carries an "error" object is a StatusError too.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	return c.DoJSON(ctx, http.MethodPost, path, in, out)
}

// PutJSON is PostJSON with the PUT method.
func (c *Client) PutJSON(ctx context.Context, path string, in, out any) error {
	return c.DoJSON(ctx, http.MethodPut, path, in, out)
}

// GetJSON fetches path and decodes the response into out, retrying like PostJSON.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	return c.DoJSON(ctx, http.MethodGet, path, nil, out)
}

// DoJSON sends one request with retries. A nil in sends no body and a nil
// out discards the response.
func (c *Client) DoJSON(ctx context.Context, method, path string, in, out any) error {
	var (
		body []byte
		err  error
	)
	if in != nil {
		body, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", c.provider, err)
		}
	}

	var respBody []byte
	attempt := func() error {
		respBody, err = c.do(ctx, method, path, body)
		if err == nil {
			return nil
		}
		var se *StatusError
		if errors.As(err, &se) && !se.Retryable() {
			return backoff.Permanent(err)
		}
		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		logger.Debug("%s %s %s failed, retrying in %s: %v", c.provider, method, path, wait.Round(time.Millisecond), err)
	}
	if err := backoff.RetryNotify(attempt, c.backOff(ctx), notify); err != nil {
		return err
	}

	if msg := errorMessage(respBody); msg != "" && gjson.GetBytes(respBody, "error").Exists() {
		return &StatusError{Provider: c.provider, Status: http.StatusOK, Message: msg}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.provider, err)
	}
	return nil
}

// Get sends a single GET to path and discards the body. Used for health checks.
func (c *Client) Get(ctx context.Context, path string) error {
	_, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return fmt.Errorf("%s: ping failed: %w", c.provider, err)
	}
	return nil
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == http.StatusNotFound
}

// Close drops idle connections.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

func (c *Client) backOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.interval
	eb.MaxElapsedTime = 0
	eb.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(eb, c.retries), ctx)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", c.provider, err)
	}
	for k, v := range c.header {
		req.Header[k] = v
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: send request: %w", c.provider, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", c.provider, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := errorMessage(data)
		if msg == "" {
			msg = truncate(strings.TrimSpace(string(data)))
		}
		return nil, &StatusError{Provider: c.provider, Status: resp.StatusCode, Message: msg}
	}
	return data, nil
}

// errorMessage pulls the message out of the error shapes providers use:
// {"error":{"message":...}} for OpenAI and Anthropic, {"error":"..."} for
// Ollama and {"status":{"error":"..."}} for Qdrant.
func errorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	e := gjson.GetBytes(body, "error")
	switch {
	case e.IsObject():
		return e.Get("message").String()
	case e.Type == gjson.String:
		return e.String()
	}
	return gjson.GetBytes(body, "status.error").String()
}

func truncate(s string) string {
	if len(s) <= maxErrorBody {
		return s
	}
	return s[:maxErrorBody] + "..."
}
