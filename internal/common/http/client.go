// internal/common/http/client.go
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"listing-service/internal/common/logger"
	"listing-service/internal/common/retry"
)

// maxBodyBytes caps how much of a response is read.
const maxBodyBytes = 32 << 20

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the status is worth another attempt.
func (e *StatusError) Retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// Client is a thin wrapper over net/http with retries on transient failures.
type Client struct {
	httpClient *http.Client
	policy     retry.Policy
	logger     logger.Logger
}

type Option func(*Client)

// WithRetry sets the backoff policy for Get.
func WithRetry(p retry.Policy) Option {
	return func(c *Client) { c.policy = p }
}

// WithLogger sets the logger used to report retries.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithTransport swaps the round tripper, mostly for tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.httpClient.Transport = rt }
}

func NewClient(timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		policy:     retry.Policy{MaxAttempts: 1},
		logger:     logger.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	return c.httpClient.Do(req)
}

// Get fetches url and returns the body of a 2xx response. Network errors and
// retryable statuses are retried per the client's policy.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := c.policy.Do(ctx, c.logger, "GET "+url, func(ctx context.Context) error {
		b, err := c.getOnce(ctx, url)
		if err != nil {
			if se, ok := err.(*StatusError); ok && !se.Retryable() {
				return retry.Stop(err)
			}
			return err
		}
		body = b
		return nil
	})
	return body, err
}

func (c *Client) getOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, retry.Stop(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(body)
		if len(snippet) > 256 {
			snippet = snippet[:256]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: snippet}
	}
	return body, nil
}
