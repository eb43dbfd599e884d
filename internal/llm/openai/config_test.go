package openai

import "testing"

func TestNewConfigRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := NewConfig(); err == nil {
		t.Fatal("expected error when OPENAI_API_KEY is unset")
	}
}

func TestNewConfigDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_MODEL", "")

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected default model: %s", cfg.Model)
	}
}
