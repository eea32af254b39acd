package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "prod" {
		t.Fatalf("expected App.Env to be prod, got %q", cfg.App.Env)
	}
	if cfg.Backend.BaseURL != "https://api.smartsales.test/" {
		t.Fatalf("unexpected backend url: %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.Timeout != 15*time.Second {
		t.Fatalf("expected default backend timeout 15s, got %v", cfg.Backend.Timeout)
	}
	if cfg.Cart.Store != CartStoreRedis {
		t.Fatalf("expected default cart store redis, got %q", cfg.Cart.Store)
	}
	if cfg.Cart.TTL != 720*time.Hour {
		t.Fatalf("expected cart ttl 720h, got %v", cfg.Cart.TTL)
	}
	if got := cfg.JWT.SessionTTL(); got != 8*time.Hour {
		t.Fatalf("expected session ttl 8h, got %v", got)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 {
		t.Fatalf("expected two default cors origins, got %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvAppEnv); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvAppEnv, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_RejectsBackendWithoutScheme(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvBackendURL, "api.smartsales.test")

	if _, err := Load(); err == nil {
		t.Fatal("expected backend url without scheme to be rejected")
	}
}

func TestLoad_RejectsUnknownCartStore(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvCartStore, "localstorage")

	if _, err := Load(); err == nil {
		t.Fatal("expected unknown cart store to be rejected")
	}
}

func TestLoad_DatabaseCartStoreNeedsDSN(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvCartStore, CartStoreDatabase)

	if _, err := Load(); err == nil {
		t.Fatal("expected database cart store without dsn to fail")
	}

	t.Setenv(EnvUseSQLite, "true")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("sqlite fallback should satisfy database store: %v", err)
	}
	if !cfg.Cart.UsesDatabase() {
		t.Fatalf("expected database cart store")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "prod")
	t.Setenv(EnvPort, "8081")
	t.Setenv(EnvBackendURL, "https://api.smartsales.test/")
	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")
	t.Setenv(EnvJWTSecret, "secret")
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}

	prodConfig := AppConfig{Env: "prod"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
}
