package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-mailer/internal/llm"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{
		"api_key": "secret",
		"provider": "genai",
		"tone": "friendly",
		"llm_timeout_seconds": 30,
		"verbose": true
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, "genai", cfg.Provider)
	assert.Equal(t, "friendly", cfg.Tone)
	assert.Equal(t, 30, cfg.LLMTimeoutSeconds)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_ValidYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
database_url: postgres://localhost/mailer
length: short
use_browser: true
log_format: pretty
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/mailer", cfg.DatabaseURL)
	assert.Equal(t, "short", cfg.Length)
	assert.True(t, cfg.UseBrowser)
	assert.Equal(t, "pretty", cfg.LogFormat)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		wantErr string
	}{
		{
			name:    "empty path",
			path:    func(*testing.T) string { return "" },
			wantErr: "config path is empty",
		},
		{
			name:    "missing file",
			path:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.json") },
			wantErr: "failed to read config file",
		},
		{
			name:    "invalid JSON",
			path:    func(t *testing.T) string { return writeConfig(t, "config.json", `{ invalid json }`) },
			wantErr: "failed to parse config JSON",
		},
		{
			name:    "invalid YAML",
			path:    func(t *testing.T) string { return writeConfig(t, "config.yml", "tone: [unclosed") },
			wantErr: "failed to parse config YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(tt.path(t))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "empty config", cfg: Config{}},
		{name: "defaults", cfg: Defaults()},
		{name: "bad provider", cfg: Config{Provider: "openai"}, wantErr: "unknown LLM provider"},
		{name: "bad tone", cfg: Config{Tone: "sarcastic"}, wantErr: "unknown tone"},
		{name: "bad length", cfg: Config{Length: "epic"}, wantErr: "unknown length"},
		{name: "negative timeout", cfg: Config{LLMTimeoutSeconds: -1}, wantErr: "llm_timeout_seconds"},
		{name: "bad log level", cfg: Config{LogLevel: "loud"}, wantErr: "log_level"},
		{name: "bad log format", cfg: Config{LogFormat: "xml"}, wantErr: "log_format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{Tone: "enthusiastic", Verbose: true}

	merged := cfg.MergeWithDefaults(Defaults())

	assert.Equal(t, "enthusiastic", merged.Tone)
	assert.Equal(t, "normal", merged.Length)
	assert.Equal(t, "gemini", merged.Provider)
	assert.Equal(t, 60, merged.LLMTimeoutSeconds)
	assert.True(t, merged.Verbose)
	assert.False(t, merged.UseBrowser)
	assert.Empty(t, cfg.Length, "receiver must not be modified")
}

func TestLLMConfig(t *testing.T) {
	cfg := Config{Provider: "genai", Model: "gemini-2.0-flash"}

	llmCfg, err := cfg.LLMConfig()
	require.NoError(t, err)
	assert.Equal(t, llm.ProviderGenAI, llmCfg.Provider)
	assert.Equal(t, "gemini-2.0-flash", llmCfg.GetModel(llm.TierStandard))

	_, err = (&Config{Provider: "nope"}).LLMConfig()
	assert.Error(t, err)
}

func TestLLMTimeout(t *testing.T) {
	assert.Equal(t, 45*time.Second, (&Config{LLMTimeoutSeconds: 45}).LLMTimeout())
	assert.Zero(t, (&Config{}).LLMTimeout())
}

func TestLoggerConfig(t *testing.T) {
	cfg := Config{LogLevel: "warn", LogFormat: "pretty"}
	assert.Equal(t, "warn", cfg.LoggerConfig().Level)
	assert.Equal(t, "pretty", cfg.LoggerConfig().Format)

	cfg.Verbose = true
	assert.Equal(t, "debug", cfg.LoggerConfig().Level)
}
