package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediajournal/mediajournal/internal/store"
	"github.com/mediajournal/mediajournal/internal/store/bolt"
	"github.com/mediajournal/mediajournal/internal/store/sqlite"
)

// plainStore hides any HealthPing so the checker falls back to a user lookup.
type plainStore struct{ store.Store }

func TestHealthChecker_StartsUnhealthy(t *testing.T) {
	s, err := bolt.Open(filepath.Join(t.TempDir(), "hc.bolt"), time.Second)
	require.NoError(t, err)
	defer s.Close()

	hc := store.NewHealthChecker(s, zerolog.Nop(), 0)
	assert.Equal(t, "store", hc.Name())
	assert.False(t, hc.IsHealthy())
	assert.True(t, hc.Check(context.Background()))
	assert.True(t, hc.IsHealthy())
}

func TestHealthChecker_ClosedStoreGoesDown(t *testing.T) {
	s, err := bolt.Open(filepath.Join(t.TempDir(), "hc.bolt"), time.Second)
	require.NoError(t, err)

	hc := store.NewHealthChecker(s, zerolog.Nop(), time.Second)
	require.True(t, hc.Check(context.Background()))

	require.NoError(t, s.Close())
	assert.False(t, hc.Check(context.Background()))
	assert.False(t, hc.IsHealthy())
}

func TestHealthChecker_FallbackProbe(t *testing.T) {
	s, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "hc.db"))
	require.NoError(t, err)

	hc := store.NewHealthChecker(plainStore{s}, zerolog.Nop(), time.Second)
	assert.True(t, hc.Check(context.Background()))

	require.NoError(t, s.Close())
	assert.False(t, hc.Check(context.Background()))
}

func TestHealthChecker_StartProbesImmediately(t *testing.T) {
	s, err := bolt.Open(filepath.Join(t.TempDir(), "hc.bolt"), time.Second)
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hc := store.NewHealthChecker(s, zerolog.Nop(), time.Second)
	go hc.Start(ctx, time.Hour)
	assert.Eventually(t, hc.IsHealthy, 2*time.Second, 10*time.Millisecond)
}
