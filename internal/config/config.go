package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// DevJWTSecret signs tokens when no secret is configured in development.
const DevJWTSecret = "mediajournal-dev-secret"

// Config holds the configuration for the journal service.
// Environment variables are parsed from the MEDIAJOURNAL_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort           int      `envconfig:"HTTP_PORT" default:"5000"`
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	// Storage: sqlite | postgres | bolt
	DBDriver    string `envconfig:"DB_DRIVER" default:"sqlite"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"data/mediajournal.db"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`
	BoltPath    string `envconfig:"BOLT_PATH" default:"data/mediajournal.bolt"`

	// Tokens
	JWTSecret       string        `envconfig:"JWT_SECRET" default:""`
	AccessTokenTTL  time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"1h"`
	RefreshTokenTTL time.Duration `envconfig:"REFRESH_TOKEN_TTL" default:"168h"`

	// Health and startup
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"2"`
	BootstrapTimeoutSeconds   int `envconfig:"BOOTSTRAP_TIMEOUT_SECONDS" default:"10"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// New creates a Config from MEDIAJOURNAL_* environment variables, e.g.
// MEDIAJOURNAL_HTTP_PORT or MEDIAJOURNAL_DB_DRIVER.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("MEDIAJOURNAL", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Str("db_driver", cfg.DBDriver).
		Int("port", cfg.HTTPPort).
		Bool("postgres_dsn_present", cfg.PostgresDSN != "").
		Bool("jwt_secret_present", cfg.JWTSecret != "").
		Msg("Configuration loaded")

	return &cfg, nil
}

// ResolveDefaults normalizes fields and fails on settings the service cannot
// start with.
func (c *Config) ResolveDefaults() error {
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	switch c.Environment {
	case EnvDevelopment, EnvTesting, EnvProduction:
	default:
		return fmt.Errorf("unsupported ENVIRONMENT: %s", c.Environment)
	}

	switch c.DBDriver {
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("MEDIAJOURNAL_SQLITE_PATH is required when DB_DRIVER=sqlite")
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("MEDIAJOURNAL_POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
	case "bolt":
		if c.BoltPath == "" {
			return fmt.Errorf("MEDIAJOURNAL_BOLT_PATH is required when DB_DRIVER=bolt")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}

	if c.JWTSecret == "" {
		if c.Environment != EnvDevelopment {
			return fmt.Errorf("MEDIAJOURNAL_JWT_SECRET is required outside development")
		}
		c.JWTSecret = DevJWTSecret
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}
	if c.HealthIntervalSeconds <= 0 {
		return fmt.Errorf("HEALTH_INTERVAL_SECONDS must be positive")
	}
	return nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	return &Config{
		Environment:               EnvTesting,
		HTTPPort:                  5000,
		CORSAllowedOrigins:        []string{"*"},
		DBDriver:                  "sqlite",
		SQLitePath:                "mediajournal-test.db",
		JWTSecret:                 "test-secret",
		AccessTokenTTL:            time.Hour,
		RefreshTokenTTL:           7 * 24 * time.Hour,
		HealthIntervalSeconds:     1,
		HealthProbeTimeoutSeconds: 1,
		BootstrapTimeoutSeconds:   2,
		LogLevel:                  "debug",
	}
}

// IsDevelopment returns true if the environment is set to development
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
