package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jonathan/resume-mailer/internal/config"
	"github.com/jonathan/resume-mailer/internal/db"
	"github.com/jonathan/resume-mailer/internal/generation"
	"github.com/jonathan/resume-mailer/internal/llm"
	"github.com/jonathan/resume-mailer/internal/logger"
)

// Environment variables read when the matching flag is empty.
const (
	envAPIKey      = "GEMINI_API_KEY"
	envDatabaseURL = "DATABASE_URL"
)

// firstNonEmpty returns the first non-empty value.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// writeJSON writes v as indented JSON to path, or to w when path is empty.
func writeJSON(w io.Writer, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// openDatabase connects using url or DATABASE_URL. It returns nil without a URL.
// A sqlite: URL opens a local database file instead of PostgreSQL.
func openDatabase(ctx context.Context, url string) (db.Store, error) {
	url = firstNonEmpty(url, os.Getenv(envDatabaseURL))
	if url == "" {
		return nil, nil
	}
	database, err := db.Open(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return database, nil
}

// requireDatabase is openDatabase for commands that cannot run without storage.
func requireDatabase(ctx context.Context, url string) (db.Store, error) {
	database, err := openDatabase(ctx, url)
	if err != nil {
		return nil, err
	}
	if database == nil {
		return nil, fmt.Errorf("database URL is required (use --db-url or set %s)", envDatabaseURL)
	}
	return database, nil
}

// resolveConfig layers flags over the config file at path over the defaults.
// Logging is re-initialised when the file sets it.
func resolveConfig(path string, flags config.Config) (config.Config, error) {
	fileCfg := config.Config{}
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return config.Config{}, err
		}
		fileCfg = *loaded
	}

	cfg := flags.MergeWithDefaults(fileCfg.MergeWithDefaults(config.Defaults()))
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	if fileCfg.LogLevel != "" || fileCfg.LogFormat != "" {
		logger.Init(cfg.LoggerConfig())
	}
	return cfg, nil
}

// newBackend builds the LLM backend. Without an API key it reports itself
// unavailable and drafts fall back to the template.
func newBackend(cfg config.Config, llmCfg *llm.Config) *generation.LLMBackend {
	return generation.NewLLMBackend(
		firstNonEmpty(cfg.APIKey, os.Getenv(envAPIKey)),
		llmCfg,
		generation.WithTimeout(cfg.LLMTimeout()),
	)
}
