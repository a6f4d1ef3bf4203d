package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrMissingAPIKey is returned when a client is constructed without credentials.
var ErrMissingAPIKey = errors.New("API key is required")

// Request is a single prompt/response exchange.
type Request struct {
	System          string
	Prompt          string
	Tier            ModelTier
	Temperature     float32
	MaxOutputTokens int32
	JSON            bool // ask for an application/json response
}

// Response is the text returned by the model.
type Response struct {
	Text       string
	Model      string
	TokensUsed int
}

// Client is an abstraction over LLM providers
type Client interface {
	// Generate performs one synchronous completion
	Generate(ctx context.Context, req *Request) (*Response, error)
	// GetModel returns the provider model used for a tier
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a client for config.Provider.
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	switch config.Provider {
	case ProviderGenAI:
		return NewGenAIClient(ctx, config, apiKey)
	case ProviderGemini, "":
		return NewGeminiClient(ctx, config, apiKey)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", config.Provider)
	}
}

// APIError wraps a failed provider call.
type APIError struct {
	Provider Provider
	Model    string
	Message  string
	Cause    error
}

func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s API call failed (%s): %s: %v", e.Provider, e.Model, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s API call failed (%s): %s", e.Provider, e.Model, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Cause
}
