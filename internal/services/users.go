package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mediajournal/mediajournal/internal/auth"
	"github.com/mediajournal/mediajournal/internal/model"
	"github.com/mediajournal/mediajournal/internal/store"
)

// UserService handles registration and token issuance.
type UserService struct {
	store  store.Store
	tokens *auth.Issuer
	now    func() time.Time
}

func NewUserService(s store.Store, tokens *auth.Issuer) *UserService {
	return &UserService{store: s, tokens: tokens, now: time.Now}
}

// Register creates an account. Emails are matched case-insensitively; a
// second registration with the same email fails with model.ErrConflict.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	if len(password) < auth.MinPasswordLength {
		return nil, model.Invalidf("password", "must be at least %d characters long", auth.MinPasswordLength)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, model.NewValidationError("password", err.Error())
	}
	return s.store.Users().Create(ctx, &model.User{
		Username:     strings.TrimSpace(username),
		Email:        NormalizeEmail(email),
		PasswordHash: hash,
		CreatedAt:    s.now().UTC().Truncate(time.Microsecond),
	})
}

// Login checks credentials and returns a fresh token pair. Unknown emails and
// wrong passwords both yield auth.ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, password string) (auth.TokenPair, error) {
	u, err := s.store.Users().GetByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, model.ErrNotFound) {
		return auth.TokenPair{}, auth.ErrInvalidCredentials
	}
	if err != nil {
		return auth.TokenPair{}, err
	}
	if err := auth.ComparePassword(u.PasswordHash, password); err != nil {
		return auth.TokenPair{}, err
	}
	return s.tokens.IssuePair(auth.Identity{UserID: u.ID, Username: u.Username})
}

// Refresh exchanges a refresh token for a new pair. The account must still exist.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
	id, err := s.tokens.Verify(refreshToken, auth.TypeRefresh)
	if err != nil {
		return auth.TokenPair{}, err
	}
	u, err := s.store.Users().GetByID(ctx, id.UserID)
	if errors.Is(err, model.ErrNotFound) {
		return auth.TokenPair{}, auth.ErrInvalidToken
	}
	if err != nil {
		return auth.TokenPair{}, err
	}
	return s.tokens.IssuePair(auth.Identity{UserID: u.ID, Username: u.Username})
}

func (s *UserService) Get(ctx context.Context, userID string) (*model.User, error) {
	return s.store.Users().GetByID(ctx, userID)
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
