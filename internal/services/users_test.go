package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mediajournal/mediajournal/internal/auth"
	"github.com/mediajournal/mediajournal/internal/model"
)

func newUserService(t *testing.T) *UserService {
	t.Helper()
	auth.HashCost = bcrypt.MinCost
	return NewUserService(newTestStore(t), auth.NewIssuer("test-secret", time.Hour, 24*time.Hour))
}

func TestRegisterLoginRefresh(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, " alice ", "Alice@Example.com ", "password1")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.NotEqual(t, "password1", u.PasswordHash)

	_, err = svc.Register(ctx, "alice2", "ALICE@example.com", "password2")
	assert.ErrorIs(t, err, model.ErrConflict)

	pair, err := svc.Login(ctx, "alice@EXAMPLE.com", "password1")
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.Token)

	_, err = svc.Refresh(ctx, pair.Token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken, "access tokens cannot refresh")

	got, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "bob", "bob@example.com", "password1")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "bob@example.com", "nope-nope")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@example.com", "password1")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestRegister_ShortPassword(t *testing.T) {
	svc := newUserService(t)
	_, err := svc.Register(context.Background(), "c", "c@example.com", "short")
	assert.ErrorIs(t, err, model.ErrValidation)
}
