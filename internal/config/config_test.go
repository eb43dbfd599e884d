package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Provider != "gemini" {
		t.Fatalf("expected default provider gemini, got %s", cfg.Provider)
	}
	if cfg.Gateway.MaxConcurrent != 10 {
		t.Fatalf("expected default max concurrent 10, got %d", cfg.Gateway.MaxConcurrent)
	}
	if cfg.Gateway.RequestTimeout != 30*time.Second {
		t.Fatalf("expected default request timeout 30s, got %v", cfg.Gateway.RequestTimeout)
	}
	if cfg.Gateway.MaxAttempts != 3 {
		t.Fatalf("expected default max attempts 3, got %d", cfg.Gateway.MaxAttempts)
	}
	if cfg.Gateway.RetryDelay != time.Second {
		t.Fatalf("expected default retry delay 1s, got %v", cfg.Gateway.RetryDelay)
	}
	if !cfg.Gateway.Enabled {
		t.Fatal("expected generation enabled by default")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("AI_PROVIDER", "openai")
	t.Setenv("AI_ENABLED", "false")
	t.Setenv("GATEWAY_MAX_CONCURRENT", "4")
	t.Setenv("GATEWAY_REQUEST_TIMEOUT", "5s")
	t.Setenv("GATEWAY_MAX_ATTEMPTS", "1")
	t.Setenv("GATEWAY_RETRY_DELAY", "250ms")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Provider != "openai" {
		t.Fatalf("expected openai provider, got %s", cfg.Provider)
	}
	if cfg.Gateway.Enabled {
		t.Fatal("expected generation disabled")
	}
	if cfg.Gateway.MaxConcurrent != 4 || cfg.Gateway.MaxAttempts != 1 {
		t.Fatalf("overrides not applied: %+v", cfg.Gateway)
	}
	if cfg.Gateway.RequestTimeout != 5*time.Second || cfg.Gateway.RetryDelay != 250*time.Millisecond {
		t.Fatalf("duration overrides not applied: %+v", cfg.Gateway)
	}
}

func TestLoadConfigRejectsUnknownProvider(t *testing.T) {
	t.Setenv("AI_PROVIDER", "other")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}
