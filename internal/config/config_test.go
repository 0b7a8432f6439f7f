package config

import (
	"strings"
	"testing"
	"time"
)

// setRequired sets the minimum environment for Load to succeed.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/guestlist")
	t.Setenv("JWT_SECRET", "0123456789abcdef")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("expected default read timeout 15s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Database.MaxConns != 10 {
		t.Errorf("expected default max conns 10, got %d", cfg.Database.MaxConns)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Errorf("expected default token TTL 24h, got %v", cfg.Auth.TokenTTL)
	}
	if cfg.Upload.MaxFileSize != 16*1024*1024 {
		t.Errorf("expected default max file size 16MB, got %d", cfg.Upload.MaxFileSize)
	}
	if cfg.Photos.Dir != "./photos" {
		t.Errorf("expected default photo dir ./photos, got %q", cfg.Photos.Dir)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level info, got %q", cfg.Logging.Level)
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("DB_MAX_CONNS", "25")
	t.Setenv("AUTH_TOKEN_TTL", "2h")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Database.MaxConns != 25 {
		t.Errorf("expected max conns 25, got %d", cfg.Database.MaxConns)
	}
	if cfg.Auth.TokenTTL != 2*time.Hour {
		t.Errorf("expected token TTL 2h, got %v", cfg.Auth.TokenTTL)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected log format json, got %q", cfg.Logging.Format)
	}
	if cfg.Rate.Enabled {
		t.Error("expected rate limiting disabled")
	}
}

func TestLoad_DatabaseURLAlternate(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost:5432/alt")
	t.Setenv("JWT_SECRET", "0123456789abcdef")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Database.URL != "postgres://localhost:5432/alt" {
		t.Errorf("expected DB_URL fallback, got %q", cfg.Database.URL)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_URL", "")
	t.Setenv("JWT_SECRET", "0123456789abcdef")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing DATABASE_URL")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad port", "SERVER_PORT", "not-a-number"},
		{"bad duration", "SERVER_READ_TIMEOUT", "fifteen"},
		{"bad bool", "RATE_LIMIT_ENABLED", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestValidate_CollectsAllFailures(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_PORT", "70000")
	t.Setenv("DB_MIN_CONNS", "50")
	t.Setenv("LOG_LEVEL", "verbose")

	_, err := Load()
	if err == nil {
		t.Fatal("expected validation error")
	}

	msg := err.Error()
	for _, want := range []string{"SERVER_PORT", "DB_MAX_CONNS", "LOG_LEVEL"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected validation message to mention %s, got: %s", want, msg)
		}
	}
}

func TestConfig_StringMasksSecrets(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	s := cfg.String()
	if strings.Contains(s, "postgres://") {
		t.Error("config String() leaked database URL")
	}
	if strings.Contains(s, "0123456789abcdef") {
		t.Error("config String() leaked JWT secret")
	}
}
