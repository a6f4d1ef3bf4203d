package generation

import (
	"context"
	"time"

	"github.com/jonathan/resume-mailer/internal/llm"
	"github.com/jonathan/resume-mailer/internal/types"
)

// Fixed sampling parameters for drafting.
const (
	DefaultTemperature     float32 = 0.3
	DefaultMaxOutputTokens int32   = 800
	DefaultTimeout                 = 60 * time.Second
)

// ClientFactory creates an llm.Client. It is swapped out in tests.
type ClientFactory func(ctx context.Context, config *llm.Config, apiKey string) (llm.Client, error)

// LLMBackend drafts an email with one model call.
type LLMBackend struct {
	apiKey    string
	config    *llm.Config
	tier      llm.ModelTier
	timeout   time.Duration
	newClient ClientFactory
}

// LLMOption configures an LLMBackend.
type LLMOption func(*LLMBackend)

// WithTier selects the model tier. The default is standard.
func WithTier(tier llm.ModelTier) LLMOption {
	return func(b *LLMBackend) { b.tier = tier }
}

// WithTimeout bounds the model call.
func WithTimeout(d time.Duration) LLMOption {
	return func(b *LLMBackend) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithClientFactory replaces llm.NewClient.
func WithClientFactory(f ClientFactory) LLMOption {
	return func(b *LLMBackend) { b.newClient = f }
}

// NewLLMBackend creates an LLMBackend. An empty apiKey is allowed; Generate
// then reports the backend as unavailable.
func NewLLMBackend(apiKey string, config *llm.Config, opts ...LLMOption) *LLMBackend {
	if config == nil {
		config = llm.DefaultConfig()
	}
	b := &LLMBackend{
		apiKey:    apiKey,
		config:    config,
		tier:      llm.TierStandard,
		timeout:   DefaultTimeout,
		newClient: llm.NewClient,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Generate implements Backend. Every failure is a *BackendUnavailableError.
func (b *LLMBackend) Generate(ctx context.Context, req *types.GenerationRequest) (*types.EmailDraft, error) {
	if b.apiKey == "" {
		return nil, &BackendUnavailableError{Backend: types.BackendLLM, Message: "no API key configured", Cause: llm.ErrMissingAPIKey}
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	client, err := b.newClient(ctx, b.config, b.apiKey)
	if err != nil {
		return nil, &BackendUnavailableError{Backend: types.BackendLLM, Message: "failed to create LLM client", Cause: err}
	}
	defer func() { _ = client.Close() }()

	prompt := req.Prompt
	if prompt == "" {
		prompt = RenderPrompt(req)
	}

	resp, err := client.Generate(ctx, &llm.Request{
		System:          SystemInstruction(),
		Prompt:          prompt,
		Tier:            b.tier,
		Temperature:     DefaultTemperature,
		MaxOutputTokens: DefaultMaxOutputTokens,
		JSON:            true,
	})
	if err != nil {
		return nil, &BackendUnavailableError{Backend: types.BackendLLM, Message: "model call failed", Cause: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &BackendUnavailableError{Backend: types.BackendLLM, Message: "model call cancelled", Cause: err}
	}

	draft := NormalizeResponse(resp.Text, resp.Model, resp.TokensUsed)
	if !usable(draft) {
		return nil, &BackendUnavailableError{Backend: types.BackendLLM, Message: "model returned an unusable draft"}
	}
	return draft, nil
}
