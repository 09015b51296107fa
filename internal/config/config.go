// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/minji/book-fairy/internal/ranking"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Credentials
	GeminiAPIKey string `json:"gemini_api_key,omitempty"` // Gemini API key
	KakaoAPIKey  string `json:"kakao_api_key,omitempty"`  // Kakao REST API key

	// Data sources
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL for holdings
	HoldingsCSV string `json:"holdings_csv,omitempty"` // Path to a holdings CSV export

	// Limits
	MaxRecommendations int `json:"max_recommendations,omitempty"` // Final picks per run
	ShortlistSize      int `json:"shortlist_size,omitempty"`      // Candidates offered to the model
	PerQueryResults    int `json:"per_query_results,omitempty"`   // Kakao results fetched per query
	KakaoRPM           int `json:"kakao_rpm,omitempty"`           // Kakao request rate ceiling per minute

	// Behavior
	Verbose    bool   `json:"verbose,omitempty"`     // Print detailed debug information
	ServerAddr string `json:"server_addr,omitempty"` // Listen address for serve mode

	// Scoring and filter tables. Nil falls back to the built-ins.
	Rules *ranking.Ruleset `json:"rules,omitempty"`
}

// DefaultConfig returns the built-in defaults applied beneath any config
// file or flags.
func DefaultConfig() Config {
	return Config{
		MaxRecommendations: 3,
		ShortlistSize:      7,
		PerQueryResults:    10,
		KakaoRPM:           60,
		ServerAddr:         ":8080",
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
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

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.MaxRecommendations < 0 {
		return fmt.Errorf("config error: 'max_recommendations' must be non-negative")
	}
	if c.ShortlistSize < 0 {
		return fmt.Errorf("config error: 'shortlist_size' must be non-negative")
	}
	if c.PerQueryResults < 0 || c.PerQueryResults > 50 {
		return fmt.Errorf("config error: 'per_query_results' must be between 0 and 50")
	}
	if c.KakaoRPM < 0 {
		return fmt.Errorf("config error: 'kakao_rpm' must be non-negative")
	}

	if c.HoldingsCSV != "" {
		if _, err := os.Stat(c.HoldingsCSV); os.IsNotExist(err) {
			return fmt.Errorf("config error: holdings CSV not found: %s", c.HoldingsCSV)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. This is used to apply config file values beneath CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.KakaoAPIKey == "" {
		result.KakaoAPIKey = defaults.KakaoAPIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.HoldingsCSV == "" {
		result.HoldingsCSV = defaults.HoldingsCSV
	}
	if result.ServerAddr == "" {
		result.ServerAddr = defaults.ServerAddr
	}

	// Int fields: use default if zero
	if result.MaxRecommendations == 0 {
		result.MaxRecommendations = defaults.MaxRecommendations
	}
	if result.ShortlistSize == 0 {
		result.ShortlistSize = defaults.ShortlistSize
	}
	if result.PerQueryResults == 0 {
		result.PerQueryResults = defaults.PerQueryResults
	}
	if result.KakaoRPM == 0 {
		result.KakaoRPM = defaults.KakaoRPM
	}

	if result.Rules == nil {
		result.Rules = defaults.Rules
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// Ruleset returns the configured scoring tables, falling back to the
// built-ins when the config carries none.
func (c *Config) Ruleset() ranking.Ruleset {
	if c.Rules != nil {
		return *c.Rules
	}
	return ranking.DefaultRuleset()
}
