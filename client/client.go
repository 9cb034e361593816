// Package client is the Go SDK for the media journal HTTP API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mediajournal/mediajournal/internal/auth"
)

type Client struct {
	rc      *resty.Client
	store   SessionStore
	session *Session
}

// New constructs a Client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL cannot be empty")
	}
	c := &Client{
		rc: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetHeader("Content-Type", "application/json").
			SetTimeout(30 * time.Second),
	}

	// Auto-enable debug via env variable without changing code.
	if debugLoggingRequested() {
		opts = append(opts, WithDebugLogging(true))
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.store == nil {
		c.store = &MemoryStore{}
	}

	s, err := newSession(c.store, c.refresh)
	if err != nil {
		return nil, err
	}
	c.session = s
	return c, nil
}

// Session exposes the token state shared by every call on c.
func (c *Client) Session() *Session { return c.session }

// send performs a single request. authed requests carry the current access
// token and report which token they used.
func (c *Client) send(ctx context.Context, method, path string, body any, authed bool) (*resty.Response, string, error) {
	req := c.rc.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	var used string
	if authed {
		used = c.session.AccessToken()
		if used == "" {
			return nil, "", ErrNoSession
		}
		req.SetHeader(auth.TokenHeader, used)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, used, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, used, nil
}

// do sends a request and decodes a 2xx body into out. An authenticated call
// answered with 401 is replayed once after a token refresh; a second 401 is
// returned to the caller.
func (c *Client) do(ctx context.Context, method, path string, body, out any, authed bool) error {
	resp, used, err := c.send(ctx, method, path, body, authed)
	if err != nil {
		return err
	}
	if authed && resp.StatusCode() == http.StatusUnauthorized {
		if rerr := c.session.refreshAfter(ctx, used); rerr != nil {
			if IsUnauthorized(rerr) {
				return rerr
			}
			return decodeError(resp)
		}
		requestRetriesTotal.Inc()
		if resp, _, err = c.send(ctx, method, path, body, authed); err != nil {
			return err
		}
	}
	if resp.IsError() {
		return decodeError(resp)
	}
	if out != nil {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return nil
}

func (c *Client) refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	var pair TokenPair
	err := c.do(ctx, http.MethodPost, "/api/auth/refresh-token", refreshRequest{RefreshToken: refreshToken}, &pair, false)
	return pair, err
}

// --------------------------------------------------------------------
// Account operations
// --------------------------------------------------------------------

// Register creates an account and returns its id. It does not log in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (string, error) {
	var out registered
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", req, &out, false); err != nil {
		return "", err
	}
	return out.ID, nil
}

// Login exchanges credentials for a token pair and stores it in the session.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var pair TokenPair
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", loginRequest{Email: email, Password: password}, &pair, false); err != nil {
		return err
	}
	return c.session.set(pair)
}

// Logout discards the session. Tokens are stateless, so the server is not told.
func (c *Client) Logout() error { return c.session.Clear() }

// Me returns the account behind the current session.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &u, true); err != nil {
		return nil, err
	}
	return &u, nil
}

// Health reports whether the server answers its health endpoint with UP.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", nil, nil, false)
}
