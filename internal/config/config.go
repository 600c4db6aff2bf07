package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the confradar service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Rerank    RerankConfig    `yaml:"rerank"`
	Providers ProvidersConfig `yaml:"providers"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds Redis connection settings (document index + cache).
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds the query embedder settings.
type EmbeddingConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// RerankConfig holds the cross-encoder settings. Empty model disables
// reranking (the deterministic fallback ordering is used instead).
type RerankConfig struct {
	APIKey       string `yaml:"api_key"`
	BaseURL      string `yaml:"base_url"`
	Model        string `yaml:"model"`
	BudgetTokens int    `yaml:"budget_tokens"`
}

// ProviderConfig holds per-provider resilience settings.
type ProviderConfig struct {
	APIKey           string `yaml:"api_key"`
	BaseURL          string `yaml:"base_url"`
	TimeoutSec       int    `yaml:"timeout_sec"`
	Retries          int    `yaml:"retries"`
	BackoffBaseMs    int    `yaml:"backoff_base_ms"`
	OpenThreshold    int    `yaml:"open_threshold"`
	HalfOpenAfterSec int    `yaml:"half_open_after_sec"`
	MaxQueryLen      int    `yaml:"max_query_len"`
}

// ProvidersConfig holds the discovery provider chain settings.
type ProvidersConfig struct {
	Scrape  ProviderConfig `yaml:"scrape"`
	Keyword ProviderConfig `yaml:"keyword"`
}

// DiscoveryConfig holds discovery orchestration settings.
type DiscoveryConfig struct {
	MinURLs                 int  `yaml:"min_urls"`
	EnableQueryAugmentation bool `yaml:"enable_query_augmentation"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Load reads configuration from config/<env>.yaml, expanding ${VAR} and
// ${VAR:-default} references from the environment.
func Load(env string) (Config, error) {
	path := filepath.Join("config", fmt.Sprintf("%s.yaml", env))

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// GetEnv returns the current environment from ENV, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// applyEnvOverrides honors the flat environment switches recognized
// independently of the YAML file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("ENABLE_QUERY_AUGMENTATION"); v != "" {
		c.Discovery.EnableQueryAugmentation = v == "1" || strings.EqualFold(v, "true")
	}
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Discovery.MinURLs <= 0 {
		c.Discovery.MinURLs = 8
	}
	applyProviderDefaults(&c.Providers.Scrape, 20, 230)
	applyProviderDefaults(&c.Providers.Keyword, 10, 256)
}

func applyProviderDefaults(p *ProviderConfig, timeoutSec, maxQueryLen int) {
	if p.TimeoutSec <= 0 {
		p.TimeoutSec = timeoutSec
	}
	if p.Retries <= 0 {
		p.Retries = 3
	}
	if p.BackoffBaseMs <= 0 {
		p.BackoffBaseMs = 400
	}
	if p.OpenThreshold <= 0 {
		p.OpenThreshold = 5
	}
	if p.HalfOpenAfterSec <= 0 {
		p.HalfOpenAfterSec = 30
	}
	if p.MaxQueryLen <= 0 {
		p.MaxQueryLen = maxQueryLen
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model is required")
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions must be positive")
	}
	return nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		name, def, hasDef := strings.Cut(expr, ":-")
		val := os.Getenv(name)
		if val == "" && hasDef {
			val = def
		}
		return []byte(val)
	})
}
