package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	cfg := Config{HTTP: HTTPConfig{Port: 8080}}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 70000

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown provider", func(c *Config) { c.Embedding.Provider = "nebius" }, "embedding.provider"},
		{"openai without key", func(c *Config) { c.Embedding.Provider = ProviderOpenAI }, "embedding.api_key"},
		{"negative dimensions", func(c *Config) { c.Embedding.Dimensions = -1 }, "embedding.dimensions"},
		{"cache without addrs", func(c *Config) { c.Embedding.Cache.Enabled = true }, "embedding.cache.addrs"},
		{"geocoding too fast", func(c *Config) { c.Geocoding.MinIntervalMs = 200 }, "geocoding.min_interval_ms"},
		{"zero default top_k", func(c *Config) { c.Search.DefaultTopK = 0 }, "search.default_top_k"},
		{"default above max", func(c *Config) { c.Search.DefaultTopK = 500 }, "exceeds search.max_top_k"},
		{"negative weight", func(c *Config) { c.Search.Weights = map[string]float64{"scenery": -0.1} }, "search.weights.scenery"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.want)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected Port=8080, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Data.SourceDir != "data/destinations" || cfg.Data.IndexDir != "data/index" {
		t.Errorf("unexpected data dirs %+v", cfg.Data)
	}
	if cfg.Embedding.Provider != ProviderHash {
		t.Errorf("expected provider=hash, got %q", cfg.Embedding.Provider)
	}
	if cfg.Embedding.Dimensions != 384 || cfg.Embedding.Model != "hash-384" {
		t.Errorf("expected hash-384, got %q/%d", cfg.Embedding.Model, cfg.Embedding.Dimensions)
	}
	if cfg.Embedding.Cache.TTL() != 30*24*time.Hour {
		t.Errorf("expected 30 day cache TTL, got %s", cfg.Embedding.Cache.TTL())
	}
	if cfg.Geocoding.MinIntervalMs != MinGeocodeIntervalMs {
		t.Errorf("expected MinIntervalMs=%d, got %d", MinGeocodeIntervalMs, cfg.Geocoding.MinIntervalMs)
	}
	if cfg.Search.DefaultTopK != 5 || cfg.Search.MaxTopK != 100 {
		t.Errorf("expected top_k 5/100, got %d/%d", cfg.Search.DefaultTopK, cfg.Search.MaxTopK)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Embedding: EmbeddingConfig{Provider: ProviderOpenAI, Model: "text-embedding-3-large"},
		Geocoding: GeocodingConfig{MinIntervalMs: 1500},
		Search:    SearchConfig{DefaultTopK: 3},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Embedding.Model != "text-embedding-3-large" || cfg.Embedding.Dimensions != 0 {
		t.Errorf("openai settings overridden: %+v", cfg.Embedding)
	}
	if cfg.Geocoding.MinIntervalMs != 1500 {
		t.Errorf("expected MinIntervalMs=1500, got %d", cfg.Geocoding.MinIntervalMs)
	}
	if cfg.Search.DefaultTopK != 3 {
		t.Errorf("expected DefaultTopK=3, got %d", cfg.Search.DefaultTopK)
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("TRIPDEX_TEST_KEY", "sk-test")
	data := []byte(`
http:
  port: ${TRIPDEX_TEST_PORT:-9090}
embedding:
  provider: openai
  api_key: ${TRIPDEX_TEST_KEY}
search:
  weights:
    activities: 1
    location: 0.5
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected default port expansion, got %d", cfg.HTTP.Port)
	}
	if cfg.Embedding.APIKey != "sk-test" {
		t.Errorf("expected api key from env, got %q", cfg.Embedding.APIKey)
	}
	if cfg.Search.Weights["location"] != 0.5 {
		t.Errorf("weights = %v", cfg.Search.Weights)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Error("expected YAML error")
	}
	if _, err := Parse([]byte("geocoding:\n  min_interval_ms: 10\n")); err == nil {
		t.Error("expected validation error")
	}
}

func TestExpandEnvVars_Unset(t *testing.T) {
	got := string(expandEnvVars([]byte("a: ${TRIPDEX_SURELY_UNSET}")))
	if got != "a: " {
		t.Errorf("got %q", got)
	}
}

func TestLoad_LocalDefaults(t *testing.T) {
	for _, name := range []string{"GEOCODING_ENABLED", "EMBEDDING_PROVIDER", "EMBEDDING_MODEL", "PORT"} {
		t.Setenv(name, "")
	}
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("Load(local): %v", err)
	}
	if !cfg.Geocoding.Enabled {
		t.Error("local builds should geocode missing coordinates by default")
	}
	if cfg.Geocoding.MinIntervalMs < MinGeocodeIntervalMs {
		t.Errorf("MinIntervalMs = %d", cfg.Geocoding.MinIntervalMs)
	}
	if cfg.Embedding.Provider != ProviderHash || cfg.Search.Weights["activities"] != 0.4 {
		t.Errorf("unexpected local config: %+v", cfg)
	}
}
