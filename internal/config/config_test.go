package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config failed validation: %v", err)
	}

	if cfg.Scryfall.RequestsPerSecond != 5 {
		t.Errorf("requests per second = %d, want 5", cfg.Scryfall.RequestsPerSecond)
	}
	if cfg.Scryfall.MaxRetries != 3 {
		t.Errorf("max retries = %d, want 3", cfg.Scryfall.MaxRetries)
	}
	if cfg.Cache.Enabled {
		t.Error("cache should be disabled by default")
	}
	if cfg.Analysis.TopPriciest != 10 {
		t.Errorf("top priciest = %d, want 10", cfg.Analysis.TopPriciest)
	}
	if cfg.Analysis.LandMatch != "word" {
		t.Errorf("land match = %q, want word", cfg.Analysis.LandMatch)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "zero request rate",
			mutate:  func(c *Config) { c.Scryfall.RequestsPerSecond = 0 },
			wantErr: "requests per second",
		},
		{
			name:    "negative retries",
			mutate:  func(c *Config) { c.Scryfall.MaxRetries = -1 },
			wantErr: "max retries",
		},
		{
			name:    "bad timeout",
			mutate:  func(c *Config) { c.Scryfall.Timeout = "soon" },
			wantErr: "timeout",
		},
		{
			name:    "bad cache ttl",
			mutate:  func(c *Config) { c.Cache.TTL = "a week" },
			wantErr: "cache TTL",
		},
		{
			name:    "zero top priciest",
			mutate:  func(c *Config) { c.Analysis.TopPriciest = 0 },
			wantErr: "top priciest",
		},
		{
			name:    "unknown land match",
			mutate:  func(c *Config) { c.Analysis.LandMatch = "fuzzy" },
			wantErr: "land match",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestDurationAccessors(t *testing.T) {
	cfg := DefaultConfig()

	timeout, err := cfg.GetScryfallTimeout()
	if err != nil {
		t.Fatalf("GetScryfallTimeout() error = %v", err)
	}
	if timeout != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", timeout)
	}

	ttl, err := cfg.GetCacheTTL()
	if err != nil {
		t.Fatalf("GetCacheTTL() error = %v", err)
	}
	if ttl != 168*time.Hour {
		t.Errorf("ttl = %v, want 168h", ttl)
	}
}
