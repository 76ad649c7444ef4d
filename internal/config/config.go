// Package config loads and saves the application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	Scryfall ScryfallConfig `toml:"scryfall"`
	Cache    CacheConfig    `toml:"cache"`
	Analysis AnalysisConfig `toml:"analysis"`
	Charts   ChartsConfig   `toml:"charts"`
	Server   ServerConfig   `toml:"server"`
}

// ScryfallConfig contains API client settings.
type ScryfallConfig struct {
	RequestsPerSecond int    `toml:"requests_per_second"` // Request-rate ceiling
	MaxRetries        int    `toml:"max_retries"`         // Retry attempts per request
	Timeout           string `toml:"timeout"`             // Per-request timeout (e.g., "30s")
	UserAgent         string `toml:"user_agent"`          // User-Agent header
}

// CacheConfig contains persistent card cache settings.
type CacheConfig struct {
	Enabled bool   `toml:"enabled"` // Enable the on-disk card cache
	Path    string `toml:"path"`    // Database path ("" = default location)
	TTL     string `toml:"ttl"`     // Staleness threshold (e.g., "168h")
}

// AnalysisConfig contains aggregation settings.
type AnalysisConfig struct {
	TopPriciest int    `toml:"top_priciest"` // Rows in the price ranking
	LandMatch   string `toml:"land_match"`   // "word" or "substring"
}

// ChartsConfig contains chart rendering settings.
type ChartsConfig struct {
	OutputDir   string `toml:"output_dir"`   // Directory for chart HTML files
	Theme       string `toml:"theme"`        // Chart theme
	Width       string `toml:"width"`        // Chart width (e.g., "900px")
	Height      string `toml:"height"`       // Chart height (e.g., "500px")
	OpenBrowser bool   `toml:"open_browser"` // Open rendered charts in the browser
}

// ServerConfig contains API server settings.
type ServerConfig struct {
	Port int `toml:"port"` // Listen port
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Scryfall: ScryfallConfig{
			RequestsPerSecond: 5,
			MaxRetries:        3,
			Timeout:           "30s",
			UserAgent:         "deck-analyzer/1.0",
		},
		Cache: CacheConfig{
			Enabled: false,
			Path:    "",
			TTL:     "168h",
		},
		Analysis: AnalysisConfig{
			TopPriciest: 10,
			LandMatch:   "word",
		},
		Charts: ChartsConfig{
			OutputDir:   "charts",
			Theme:       "light",
			Width:       "900px",
			Height:      "500px",
			OpenBrowser: false,
		},
		Server: ServerConfig{
			Port: 8080,
		},
	}
}

// configDir returns the application configuration directory, creating
// it if needed.
func configDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	dir := filepath.Join(homeDir, ".deck-analyzer")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	return dir, nil
}

func configPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DefaultCachePath returns the default card cache location.
func DefaultCachePath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cards.db"), nil
}

// Load loads the configuration from disk. Returns default config if
// the file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return &config, nil
}

// Save saves the configuration to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Scryfall.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests per second must be positive: %d", c.Scryfall.RequestsPerSecond)
	}

	if c.Scryfall.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative: %d", c.Scryfall.MaxRetries)
	}

	if _, err := time.ParseDuration(c.Scryfall.Timeout); err != nil {
		return fmt.Errorf("invalid scryfall timeout %q: %w", c.Scryfall.Timeout, err)
	}

	if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
		return fmt.Errorf("invalid cache TTL %q: %w", c.Cache.TTL, err)
	}

	if c.Analysis.TopPriciest <= 0 {
		return fmt.Errorf("top priciest must be positive: %d", c.Analysis.TopPriciest)
	}

	if c.Analysis.LandMatch != "word" && c.Analysis.LandMatch != "substring" {
		return fmt.Errorf("land match must be \"word\" or \"substring\": %q", c.Analysis.LandMatch)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	return nil
}

// GetScryfallTimeout returns the Scryfall timeout as a duration.
func (c *Config) GetScryfallTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Scryfall.Timeout)
}

// GetCacheTTL returns the cache TTL as a duration.
func (c *Config) GetCacheTTL() (time.Duration, error) {
	return time.ParseDuration(c.Cache.TTL)
}
