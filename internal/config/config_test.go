package config

import (
	"os"
	"testing"
	"time"
)

// unsetEnv clears keys for the duration of the test. envconfig only applies
// defaults to variables that are absent, not empty.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		if err := os.Unsetenv(k); err != nil {
			t.Fatalf("unset %s: %v", k, err)
		}
	}
}

var allKeys = []string{
	"MEDIAJOURNAL_ENVIRONMENT", "MEDIAJOURNAL_HTTP_PORT", "MEDIAJOURNAL_CORS_ALLOWED_ORIGINS",
	"MEDIAJOURNAL_DB_DRIVER", "MEDIAJOURNAL_SQLITE_PATH", "MEDIAJOURNAL_POSTGRES_DSN", "MEDIAJOURNAL_BOLT_PATH",
	"MEDIAJOURNAL_JWT_SECRET", "MEDIAJOURNAL_ACCESS_TOKEN_TTL", "MEDIAJOURNAL_REFRESH_TOKEN_TTL",
	"MEDIAJOURNAL_HEALTH_INTERVAL_SECONDS", "MEDIAJOURNAL_HEALTH_PROBE_TIMEOUT_SECONDS",
	"MEDIAJOURNAL_BOOTSTRAP_TIMEOUT_SECONDS", "MEDIAJOURNAL_LOG_LEVEL",
}

func TestConfigLoad_Defaults(t *testing.T) {
	unsetEnv(t, allKeys...)

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.HTTPPort != 5000 || cfg.DBDriver != "sqlite" || cfg.AccessTokenTTL != time.Hour || cfg.RefreshTokenTTL != 168*time.Hour {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.JWTSecret != DevJWTSecret {
		t.Fatalf("development should fall back to the dev secret, got %q", cfg.JWTSecret)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("unexpected CORS default: %v", cfg.CORSAllowedOrigins)
	}
}

func TestConfigLoad_EnvOverride(t *testing.T) {
	unsetEnv(t, allKeys...)
	t.Setenv("MEDIAJOURNAL_HTTP_PORT", "8081")
	t.Setenv("MEDIAJOURNAL_DB_DRIVER", "Bolt")
	t.Setenv("MEDIAJOURNAL_BOLT_PATH", "/tmp/journal.bolt")
	t.Setenv("MEDIAJOURNAL_ACCESS_TOKEN_TTL", "15m")
	t.Setenv("MEDIAJOURNAL_CORS_ALLOWED_ORIGINS", "http://localhost:3000,https://journal.example")

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.HTTPPort != 8081 || cfg.DBDriver != "bolt" || cfg.AccessTokenTTL != 15*time.Minute {
		t.Fatalf("env override failed: %+v", cfg)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("expected two origins, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestResolveDefaults_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown driver", func(c *Config) { c.DBDriver = "mongo" }},
		{"postgres without dsn", func(c *Config) { c.DBDriver = "postgres"; c.PostgresDSN = "" }},
		{"production without secret", func(c *Config) { c.Environment = EnvProduction; c.JWTSecret = "" }},
		{"unknown environment", func(c *Config) { c.Environment = "staging" }},
		{"zero ttl", func(c *Config) { c.AccessTokenTTL = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewForTesting()
			tt.mutate(cfg)
			if err := cfg.ResolveDefaults(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}

	if err := NewForTesting().ResolveDefaults(); err != nil {
		t.Fatalf("testing config should be valid: %v", err)
	}
}
