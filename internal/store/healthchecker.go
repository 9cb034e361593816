package store

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/mediajournal/mediajournal/internal/health"
	"github.com/mediajournal/mediajournal/internal/model"
)

const defaultProbeTimeout = 2 * time.Second

// HealthChecker probes the store on an interval and caches the result.
type HealthChecker struct {
	store        Store
	healthy      atomic.Bool
	log          zerolog.Logger
	probeTimeout time.Duration
}

// NewHealthChecker returns a checker that reports unhealthy until its first
// successful probe.
func NewHealthChecker(s Store, log zerolog.Logger, probeTimeout time.Duration) *HealthChecker {
	if probeTimeout <= 0 {
		probeTimeout = defaultProbeTimeout
	}
	return &HealthChecker{store: s, log: log, probeTimeout: probeTimeout}
}

func (hc *HealthChecker) Name() string { return "store" }

func (hc *HealthChecker) IsHealthy() bool { return hc.healthy.Load() }

// Start probes immediately and then once per interval until ctx is done.
func (hc *HealthChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	hc.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			hc.Check(ctx)
		}
	}
}

// Check runs a single probe and records its outcome.
func (hc *HealthChecker) Check(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, hc.probeTimeout)
	defer cancel()

	err := hc.probe(probeCtx)
	if err != nil {
		hc.log.Error().Stack().Str("checker", hc.Name()).Err(err).Msg("store health check failed")
	}
	hc.healthy.Store(err == nil)
	return err == nil
}

func (hc *HealthChecker) probe(ctx context.Context) error {
	if p, ok := hc.store.(health.HealthPinger); ok {
		return p.HealthPing(ctx)
	}
	// A lookup that misses still proves the store answers.
	_, err := hc.store.Users().GetByID(ctx, "00000000-0000-0000-0000-000000000000")
	if errors.Is(err, model.ErrNotFound) {
		return nil
	}
	return err
}
