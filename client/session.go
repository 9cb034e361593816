package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mediajournal/mediajournal/internal/auth"
)

// SessionStore persists the token pair between runs.
type SessionStore interface {
	Load() (TokenPair, error)
	Save(TokenPair) error
	Clear() error
}

// MemoryStore keeps tokens for the life of the process.
type MemoryStore struct {
	mu     sync.Mutex
	tokens TokenPair
}

func (m *MemoryStore) Load() (TokenPair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens, nil
}

func (m *MemoryStore) Save(p TokenPair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = p
	return nil
}

func (m *MemoryStore) Clear() error { return m.Save(TokenPair{}) }

type refreshFunc func(ctx context.Context, refreshToken string) (TokenPair, error)

// Session owns the caller's tokens. Every authenticated request reads the
// access token from here, and at most one refresh runs at a time.
type Session struct {
	mu      sync.Mutex
	tokens  TokenPair
	store   SessionStore
	refresh refreshFunc
	now     func() time.Time
}

func newSession(store SessionStore, refresh refreshFunc) (*Session, error) {
	tokens, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return &Session{tokens: tokens, store: store, refresh: refresh, now: time.Now}, nil
}

// AccessToken returns the current access token or "".
func (s *Session) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens.Token
}

// LoggedIn reports whether any token pair is held.
func (s *Session) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens.Token != "" || s.tokens.RefreshToken != ""
}

func (s *Session) set(p TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLocked(p)
}

func (s *Session) setLocked(p TokenPair) error {
	s.tokens = p
	return s.store.Save(p)
}

// Clear forgets the tokens locally and in the store.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = TokenPair{}
	return s.store.Clear()
}

func parseClaims(token string) (*auth.Claims, error) {
	var claims auth.Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, err
	}
	return &claims, nil
}

// CurrentUser decodes the identity from the access token without verifying
// it. The server remains the authority.
func (s *Session) CurrentUser() (*Identity, error) {
	tok := s.AccessToken()
	if tok == "" {
		return nil, ErrNoSession
	}
	claims, err := parseClaims(tok)
	if err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	return &Identity{UserID: claims.Subject, Username: claims.Username}, nil
}

// IsValid reports whether the access token has not yet expired.
func (s *Session) IsValid() bool {
	tok := s.AccessToken()
	if tok == "" {
		return false
	}
	claims, err := parseClaims(tok)
	if err != nil || claims.ExpiresAt == nil {
		return false
	}
	return s.now().Before(claims.ExpiresAt.Time)
}

// RefreshOnce exchanges the refresh token for a new pair.
func (s *Session) RefreshOnce(ctx context.Context) error {
	return s.refreshAfter(ctx, s.AccessToken())
}

// refreshAfter refreshes unless another caller already replaced stale since
// it was read.
func (s *Session) refreshAfter(ctx context.Context, stale string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tokens.Token != stale && s.tokens.Token != "" {
		return nil
	}
	if s.tokens.RefreshToken == "" {
		return ErrNoSession
	}
	pair, err := s.refresh(ctx, s.tokens.RefreshToken)
	if err != nil {
		tokenRefreshesTotal.WithLabelValues("failed").Inc()
		var ae *APIError
		if errors.As(err, &ae) && ae.StatusCode < 500 {
			s.tokens = TokenPair{}
			expired := fmt.Errorf("%w: %s", ErrSessionExpired, ae.Message)
			if cerr := s.store.Clear(); cerr != nil {
				return errors.Join(expired, fmt.Errorf("clear stored session: %w", cerr))
			}
			return expired
		}
		return err
	}
	tokenRefreshesTotal.WithLabelValues("ok").Inc()
	return s.setLocked(pair)
}
