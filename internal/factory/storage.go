package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/mediajournal/mediajournal/internal/config"
	"github.com/mediajournal/mediajournal/internal/store"
	"github.com/mediajournal/mediajournal/internal/store/bolt"
	"github.com/mediajournal/mediajournal/internal/store/postgres"
	"github.com/mediajournal/mediajournal/internal/store/sqlite"
)

// boltLockTimeout bounds how long a single attempt waits for the file lock.
const boltLockTimeout = time.Second

// NewStore opens the store selected by cfg.DBDriver and applies its schema.
// Connection failures are retried with exponential backoff until
// cfg.BootstrapTimeoutSeconds elapses.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, error) {
	open, err := opener(cfg)
	if err != nil {
		return nil, err
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 200 * time.Millisecond
	exp.Multiplier = 2
	exp.MaxInterval = 2 * time.Second
	exp.MaxElapsedTime = time.Duration(cfg.BootstrapTimeoutSeconds) * time.Second
	exp.Reset()

	var st store.Store
	attempt := 0
	op := func() error {
		attempt++
		s, err := open(ctx)
		if err != nil {
			log.Warn().Err(err).Str("db_driver", cfg.DBDriver).Int("attempt", attempt).Msg("store open failed")
			return err
		}
		st = s
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(exp, ctx)); err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.DBDriver, err)
	}

	log.Info().Str("db_driver", cfg.DBDriver).Int("attempts", attempt).Msg("store ready")
	return st, nil
}

func opener(cfg *config.Config) (func(context.Context) (store.Store, error), error) {
	switch cfg.DBDriver {
	case "sqlite":
		return func(ctx context.Context) (store.Store, error) { return sqlite.New(ctx, cfg.SQLitePath) }, nil
	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("MEDIAJOURNAL_POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
		return func(ctx context.Context) (store.Store, error) { return postgres.New(ctx, cfg.PostgresDSN) }, nil
	case "bolt":
		return func(context.Context) (store.Store, error) { return bolt.Open(cfg.BoltPath, boltLockTimeout) }, nil
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
	}
}
