package generation

import (
	"context"

	"github.com/jonathan/resume-mailer/internal/logger"
	"github.com/jonathan/resume-mailer/internal/types"
)

// Backend turns a GenerationRequest into a draft.
type Backend interface {
	Generate(ctx context.Context, req *types.GenerationRequest) (*types.EmailDraft, error)
}

// Generator tries its primary backend and falls back to the template.
type Generator struct {
	primary  Backend
	fallback TemplateBackend
}

// NewGenerator returns a Generator. A nil primary means template only.
func NewGenerator(primary Backend) *Generator {
	return &Generator{primary: primary}
}

// Generate always returns a draft. Failures of the primary backend are logged
// and recorded in the draft's FallbackReason.
func (g *Generator) Generate(ctx context.Context, req *types.GenerationRequest) *types.EmailDraft {
	if g.primary == nil {
		return RenderTemplate(req)
	}

	draft, err := g.primary.Generate(ctx, req)
	if err == nil && usable(draft) {
		return draft
	}

	reason := "primary backend returned an unusable draft"
	if err != nil {
		reason = err.Error()
	}
	logger.Warn().
		Str("company", req.CompanyName).
		Str("role", req.Role).
		Str("reason", reason).
		Msg("falling back to template email")

	draft, _ = g.fallback.Generate(ctx, req)
	draft.Meta.FallbackReason = reason
	return draft
}
