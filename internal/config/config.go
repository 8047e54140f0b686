// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// Config represents the scraper configuration that can be loaded from a JSON
// file. All fields are optional; missing values use defaults or come from
// CLI flags.
type Config struct {
	// Targets
	BaseURL   string `json:"base_url,omitempty"`
	OutputDir string `json:"output_dir,omitempty"`

	// Pipeline limits
	Workers  int `json:"workers,omitempty" validate:"gte=0,lte=64"`
	MaxDepth int `json:"max_depth,omitempty" validate:"gte=0,lte=10"`
	Retries  int `json:"retries,omitempty" validate:"gte=0,lte=10"`

	// Cache. NoCache is inverted so the zero value means "cache on",
	// matching the default.
	NoCache         bool `json:"no_cache,omitempty"`
	CacheExpireDays int  `json:"cache_expire_days,omitempty" validate:"gte=0"`

	// Behavior
	UseBrowser   bool `json:"use_browser,omitempty"`
	FollowGitHub bool `json:"follow_github,omitempty"`
	Verbose      bool `json:"verbose,omitempty"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		OutputDir:       "tutorials",
		Workers:         5,
		MaxDepth:        3,
		Retries:         3,
		CacheExpireDays: 30,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values. An invalid output
// path is a fatal configuration error, caught here before any work begins.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.OutputDir != "" {
		if info, err := os.Stat(c.OutputDir); err == nil && !info.IsDir() {
			return fmt.Errorf("config error: output path %s exists and is not a directory", c.OutputDir)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from
// defaults. This is used to apply config file values underneath CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.BaseURL == "" {
		result.BaseURL = defaults.BaseURL
	}
	if result.OutputDir == "" {
		result.OutputDir = defaults.OutputDir
	}
	if result.Workers == 0 {
		result.Workers = defaults.Workers
	}
	if result.MaxDepth == 0 {
		result.MaxDepth = defaults.MaxDepth
	}
	if result.Retries == 0 {
		result.Retries = defaults.Retries
	}
	if result.CacheExpireDays == 0 {
		result.CacheExpireDays = defaults.CacheExpireDays
	}

	return result
}
