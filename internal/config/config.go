// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/resume-mailer/internal/llm"
	"github.com/jonathan/resume-mailer/internal/logger"
	"github.com/jonathan/resume-mailer/internal/types"
)

// Config represents the CLI configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// LLM
	APIKey            string `json:"api_key,omitempty" yaml:"api_key,omitempty"`                         // Gemini API key
	Provider          string `json:"provider,omitempty" yaml:"provider,omitempty"`                       // gemini or genai
	Model             string `json:"model,omitempty" yaml:"model,omitempty"`                             // Overrides the standard tier model
	LLMTimeoutSeconds int    `json:"llm_timeout_seconds,omitempty" yaml:"llm_timeout_seconds,omitempty"` // Bound on the model call

	// Email
	Tone   string `json:"tone,omitempty" yaml:"tone,omitempty"`     // professional, friendly or enthusiastic
	Length string `json:"length,omitempty" yaml:"length,omitempty"` // short, normal or long

	// Storage
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"` // postgres:// or sqlite:PATH

	// Behavior
	UseBrowser bool   `json:"use_browser,omitempty" yaml:"use_browser,omitempty"` // Use headless browser for SPA job pages
	Verbose    bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"`         // Print detailed debug information
	LogLevel   string `json:"log_level,omitempty" yaml:"log_level,omitempty"`     // debug, info, warn or error
	LogFormat  string `json:"log_format,omitempty" yaml:"log_format,omitempty"`   // json or pretty
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Provider:          string(llm.ProviderGemini),
		LLMTimeoutSeconds: 60,
		Tone:              string(types.ToneProfessional),
		Length:            string(types.LengthNormal),
		LogLevel:          "info",
		LogFormat:         "json",
	}
}

// LoadConfig loads configuration from a JSON file, or YAML when the extension
// is .yaml or .yml. Returns an error if the file cannot be read or parsed.
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
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.Provider != "" {
		if _, err := llm.ParseProvider(c.Provider); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}
	if c.Tone != "" {
		if _, err := types.ParseTone(c.Tone); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}
	if c.Length != "" {
		if _, err := types.ParseLength(c.Length); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}
	if c.LLMTimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'llm_timeout_seconds' must be non-negative")
	}
	if c.LogLevel != "" {
		if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("config error: invalid log_level %q", c.LogLevel)
		}
	}
	if c.LogFormat != "" && c.LogFormat != "json" && c.LogFormat != "pretty" {
		return fmt.Errorf("config error: 'log_format' must be json or pretty")
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	fill := func(field *string, fallback string) {
		if *field == "" {
			*field = fallback
		}
	}
	fill(&result.APIKey, defaults.APIKey)
	fill(&result.Provider, defaults.Provider)
	fill(&result.Model, defaults.Model)
	fill(&result.Tone, defaults.Tone)
	fill(&result.Length, defaults.Length)
	fill(&result.DatabaseURL, defaults.DatabaseURL)
	fill(&result.LogLevel, defaults.LogLevel)
	fill(&result.LogFormat, defaults.LogFormat)

	if result.LLMTimeoutSeconds == 0 {
		result.LLMTimeoutSeconds = defaults.LLMTimeoutSeconds
	}

	// Bool fields: true wins
	result.UseBrowser = result.UseBrowser || defaults.UseBrowser
	result.Verbose = result.Verbose || defaults.Verbose

	return result
}

// LLMTimeout returns the model call bound, zero when unset.
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutSeconds) * time.Second
}

// LLMConfig builds the model configuration. A model override replaces the standard tier.
func (c *Config) LLMConfig() (*llm.Config, error) {
	cfg := llm.DefaultConfig()
	if c.Provider != "" {
		provider, err := llm.ParseProvider(c.Provider)
		if err != nil {
			return nil, err
		}
		cfg = cfg.WithProvider(provider)
	}
	if c.Model != "" {
		cfg = cfg.WithModel(llm.TierStandard, c.Model)
	}
	return cfg, nil
}

// LoggerConfig maps the logging fields onto logger.Config. Verbose raises the level to debug.
func (c *Config) LoggerConfig() logger.Config {
	level := c.LogLevel
	if c.Verbose {
		level = "debug"
	}
	return logger.Config{
		Level:      level,
		Format:     c.LogFormat,
		TimeFormat: time.RFC3339,
	}
}
