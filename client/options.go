package client

// Functional options applied by New, after the resty client is built.

import (
	"fmt"
	"net/http"
	"time"
)

// Option configures a Client during construction in New.
type Option func(*Client) error

// WithHTTPTimeout bounds a single HTTP request. Prefer per-request context
// deadlines; this is a coarse safety net. The value must be greater than zero.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.rc.SetTimeout(d)
		return nil
	}
}

// WithDebugLogging wraps the transport so each request and response is logged.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		if enabled {
			c.rc.SetTransport(&debugTransport{base: c.rc.GetClient().Transport})
		}
		return nil
	}
}

// WithTransport replaces the underlying round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) error {
		if rt == nil {
			return fmt.Errorf("transport cannot be nil")
		}
		c.rc.SetTransport(rt)
		return nil
	}
}

// WithSessionStore persists tokens across processes. The default keeps them in
// memory only.
func WithSessionStore(s SessionStore) Option {
	return func(c *Client) error {
		if s == nil {
			return fmt.Errorf("session store cannot be nil")
		}
		c.store = s
		return nil
	}
}
