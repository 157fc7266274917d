package dashboard

import (
	"net/http"
	"time"

	"github.com/okian/dashport/internal/config"
	"github.com/okian/dashport/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (timeouts, transport).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithEndpoints sets the endpoints scraped by Records.
func WithEndpoints(endpoints []config.Endpoint) Option {
	return func(c *Client) {
		c.endpoints = endpoints
	}
}

// WithRetries sets the retry budget and base backoff for transient
// failures (429/5xx/network). The delay doubles per attempt.
func WithRetries(maxRetries int, backoff time.Duration) Option {
	return func(c *Client) {
		if maxRetries >= 0 {
			c.maxRetries = maxRetries
		}
		if backoff > 0 {
			c.backoff = backoff
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(log logger.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}
