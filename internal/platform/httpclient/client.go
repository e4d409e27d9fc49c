// Package httpclient wraps http.Client with request logging and default
// headers for outbound calls to external services.
package httpclient

import (
	"log/slog"
	stdhttp "net/http"
	"time"
)

// Client wraps http.Client with logging.
type Client struct {
	hc      *stdhttp.Client
	log     *slog.Logger
	headers map[string]string
}

// Option configures Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(t time.Duration) Option {
	return func(c *Client) { c.hc.Timeout = t }
}

// WithLogger sets the logger used by the client.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithHeaders adds default headers to each request.
func WithHeaders(h map[string]string) Option {
	return func(c *Client) {
		for k, v := range h {
			c.headers[k] = v
		}
	}
}

// New creates a Client with a 30s timeout unless overridden.
func New(opts ...Option) *Client {
	c := &Client{
		hc:      &stdhttp.Client{Timeout: 30 * time.Second},
		log:     slog.New(slog.DiscardHandler),
		headers: map[string]string{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Do executes the request, applying default headers and logging the
// method, host, status and duration at debug level.
func (c *Client) Do(req *stdhttp.Request) (*stdhttp.Response, error) {
	for k, v := range c.headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		c.log.Debug("http request failed",
			slog.String("method", req.Method),
			slog.String("host", req.URL.Host),
			slog.Duration("elapsed", elapsed),
			slog.Any("err", err),
		)
		return nil, err
	}

	c.log.Debug("http request",
		slog.String("method", req.Method),
		slog.String("host", req.URL.Host),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", elapsed),
	)
	return resp, nil
}
