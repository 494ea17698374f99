// Package transport provides the shared HTTP plumbing for source adapters:
// a rate-limit aware client and response decoding helpers.
package transport

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/citemap/citemap/pkg/errors"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
var DefaultHTTPTimeout = 30 * time.Second

// Client wraps an http.Client with an optional per-client rate limiter.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	headers map[string]string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout overrides the HTTP timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.http.Timeout = timeout
	}
}

// WithRateLimit throttles requests to the given rate per second.
func WithRateLimit(perSecond float64, burst int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithHeader sets a header applied to every request.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// New creates a transport client.
func New(opts ...ClientOption) *Client {
	c := &Client{
		http:    &http.Client{Timeout: DefaultHTTPTimeout},
		headers: make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do performs an HTTP request, waiting on the rate limiter first.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errors.ErrCanceled
		}
	}

	req = req.WithContext(ctx)
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	return c.http.Do(req)
}

// Get performs a GET request against a URL.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, req)
}
