package config

import (
	"testing"
)

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Discovery.MinURLs != 8 {
		t.Errorf("expected min_urls default 8, got %d", cfg.Discovery.MinURLs)
	}
	if cfg.Providers.Scrape.MaxQueryLen != 230 || cfg.Providers.Keyword.MaxQueryLen != 256 {
		t.Errorf("unexpected provider query caps: %d, %d",
			cfg.Providers.Scrape.MaxQueryLen, cfg.Providers.Keyword.MaxQueryLen)
	}
	if cfg.Providers.Scrape.OpenThreshold != 5 || cfg.Providers.Scrape.HalfOpenAfterSec != 30 {
		t.Errorf("unexpected breaker defaults: %+v", cfg.Providers.Scrape)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		HTTP:      HTTPConfig{Port: 8080},
		Database:  DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Embedding: EmbeddingConfig{Model: "text-embedding-3-small", Dimensions: 1536},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := valid
	bad.Database.Addrs = nil
	if err := bad.Validate(); err == nil {
		t.Error("expected error for missing database.addrs")
	}

	bad = valid
	bad.Embedding.Dimensions = 0
	if err := bad.Validate(); err == nil {
		t.Error("expected error for zero embedding.dimensions")
	}
}

func TestEnvOverride_Augmentation(t *testing.T) {
	t.Setenv("ENABLE_QUERY_AUGMENTATION", "true")
	cfg := Config{}
	cfg.applyEnvOverrides()
	if !cfg.Discovery.EnableQueryAugmentation {
		t.Error("expected augmentation enabled via env")
	}

	t.Setenv("ENABLE_QUERY_AUGMENTATION", "0")
	cfg.applyEnvOverrides()
	if cfg.Discovery.EnableQueryAugmentation {
		t.Error("expected augmentation disabled via env")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("CONFRADAR_TEST_KEY", "secret")
	got := string(expandEnvVars([]byte("api_key: ${CONFRADAR_TEST_KEY}\nurl: ${MISSING:-http://fallback}")))
	want := "api_key: secret\nurl: http://fallback"
	if got != want {
		t.Errorf("expandEnvVars = %q, want %q", got, want)
	}
}
