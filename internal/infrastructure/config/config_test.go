package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iho/fundflow/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if cfg.EventsChannel != "fundflow.events" {
		t.Fatalf("expected default events channel, got %s", cfg.EventsChannel)
	}

	if cfg.OutboxRetention != 7*24*time.Hour || cfg.EventsPublisher != "redis" {
		t.Fatalf("unexpected outbox defaults: retention=%s publisher=%s", cfg.OutboxRetention, cfg.EventsPublisher)
	}

	if cfg.AttributionCacheTTL != time.Hour {
		t.Fatalf("expected 1h attribution cache TTL, got %s", cfg.AttributionCacheTTL)
	}

	attribution := cfg.Attribution()
	if attribution.HurdleRatePct != 8 || attribution.CarryRatePct != 20 || attribution.NAVMarkupPct != 10 {
		t.Fatalf("unexpected attribution defaults: %+v", attribution)
	}
	if attribution.MaxAgeYears != 12 {
		t.Fatalf("expected age bounds to keep their defaults, got %v", attribution.MaxAgeYears)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("RUN_MIGRATIONS", "true")
	t.Setenv("OUTBOX_BATCH_SIZE", "10")
	t.Setenv("ATTRIBUTION_HURDLE_RATE_PCT", "6.5")
	t.Setenv("ATTRIBUTION_DEFAULT_TAX_RATE_PCT", "35")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected custom database URL, got %s", cfg.DatabaseURL)
	}

	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}

	if cfg.DatabaseTimeout != 45*time.Second {
		t.Fatalf("expected database timeout override, got %s", cfg.DatabaseTimeout)
	}

	if !cfg.RunMigrations || cfg.OutboxBatchSize != 10 {
		t.Fatalf("expected migration and outbox overrides, got run=%v batch=%d", cfg.RunMigrations, cfg.OutboxBatchSize)
	}

	attribution := cfg.Attribution()
	if attribution.HurdleRatePct != 6.5 || attribution.DefaultTaxRatePct != 35 {
		t.Fatalf("expected attribution overrides, got %+v", attribution)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	original := os.Getenv("HTTP_READ_TIMEOUT")
	t.Setenv("HTTP_READ_TIMEOUT", "not-a-duration")
	t.Cleanup(func() {
		t.Setenv("HTTP_READ_TIMEOUT", original)
	})

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"negative hurdle", "ATTRIBUTION_HURDLE_RATE_PCT", "-1"},
		{"carry above 100", "ATTRIBUTION_CARRY_RATE_PCT", "120"},
		{"non-numeric tax", "ATTRIBUTION_DEFAULT_TAX_RATE_PCT", "lots"},
		{"zero batch size", "OUTBOX_BATCH_SIZE", "0"},
		{"min conns above max", "DATABASE_MIN_CONNS", "500"},
		{"unknown publisher", "EVENTS_PUBLISHER", "kafka"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			if _, err := config.Load(); err == nil {
				t.Fatalf("expected %s=%s to be rejected", tt.key, tt.value)
			}
		})
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	dotenv := "CORS_ALLOWED_ORIGINS=https://a.example.com,https://b.example.com\nHTTP_PORT=7070\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(dotenv), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Chdir(dir)

	// Registers a cleanup that restores the unset state after godotenv sets it.
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	os.Unsetenv("CORS_ALLOWED_ORIGINS")
	t.Setenv("HTTP_PORT", "9191")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("expected origins from .env, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.HTTPPort != "9191" {
		t.Fatalf("expected the environment to win over .env, got %s", cfg.HTTPPort)
	}
}
