package core

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "3000" {
		t.Fatalf("default port: got %q", cfg.Port)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Fatalf("default token ttl: got %v", cfg.TokenTTL)
	}
	if cfg.CookieSameSite != "Strict" {
		t.Fatalf("default samesite: got %q", cfg.CookieSameSite)
	}
	if cfg.Production() {
		t.Fatal("default env must not be production")
	}
	if !cfg.BootstrapAdminEnabled {
		t.Fatal("bootstrap admin should default to enabled")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example.com , https://b.example.com ,")
	t.Setenv("BOOTSTRAP_ADMIN", "false")

	cfg := Load()

	if !cfg.Production() {
		t.Fatal("ENV=production must enable production mode")
	}
	if cfg.TokenTTL != 30*time.Minute {
		t.Fatalf("token ttl override: got %v", cfg.TokenTTL)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != "https://a.example.com" {
		t.Fatalf("allowed origins: got %v", cfg.AllowedOrigins)
	}
	if cfg.BootstrapAdminEnabled {
		t.Fatal("BOOTSTRAP_ADMIN=false must disable bootstrap")
	}
}

func TestDurationFromEnvInvalid(t *testing.T) {
	t.Setenv("TOKEN_TTL", "not-a-duration")
	if got := durationFromEnv("TOKEN_TTL", time.Hour); got != time.Hour {
		t.Fatalf("invalid duration must fall back: got %v", got)
	}
	t.Setenv("TOKEN_TTL", "-5m")
	if got := durationFromEnv("TOKEN_TTL", time.Hour); got != time.Hour {
		t.Fatalf("non-positive duration must fall back: got %v", got)
	}
}
