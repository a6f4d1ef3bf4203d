package fetch

import (
	"context"
	"fmt"

	"github.com/jonathan/resume-mailer/internal/ingestion"
	"github.com/jonathan/resume-mailer/internal/logger"
)

// JobOptions configures JobDescription.
type JobOptions struct {
	HTTP *Options
	// UseBrowser re-renders pages whose HTTP text is too short.
	UseBrowser bool
	// Render replaces RenderWithBrowser.
	Render Renderer
}

// JobDescription fetches a job posting and returns its cleaned description text.
// A failed browser render keeps the HTTP text.
func JobDescription(ctx context.Context, urlStr string, opts JobOptions) (string, error) {
	platform := DetectPlatform(urlStr)
	content := ContentSelectors(platform)
	noise := NoiseSelectors(platform)

	page, err := Get(ctx, urlStr, opts.HTTP)
	if err != nil {
		return "", err
	}

	text, err := ExtractMainText(page.HTML, content, noise...)
	if err != nil {
		return "", &Error{URL: urlStr, Message: "content extraction failed", Cause: err}
	}
	logger.Debug().
		Str("url", urlStr).
		Str("platform", string(platform)).
		Int("html_bytes", len(page.HTML)).
		Int("text_chars", len(text)).
		Msg("fetched job posting")

	// the headless browser dials on its own, outside the public-only guard
	browserAllowed := opts.HTTP == nil || !opts.HTTP.PublicOnly
	if opts.UseBrowser && !browserAllowed {
		logger.Debug().Str("url", urlStr).Msg("browser rendering skipped for public-only fetch")
	}
	if opts.UseBrowser && browserAllowed && NeedsBrowser(text) {
		render := opts.Render
		if render == nil {
			render = RenderWithBrowser
		}
		html, renderErr := render(ctx, urlStr, BrowserTimeout)
		if renderErr != nil {
			logger.Warn().Err(renderErr).Str("url", urlStr).Msg("browser rendering failed, using HTTP content")
		} else if rendered, extractErr := ExtractMainText(html, content, noise...); extractErr == nil {
			text = rendered
		}
	}

	text = ingestion.CleanText(text)
	if text == "" {
		return "", &Error{URL: urlStr, Message: fmt.Sprintf("no job description found (platform %s)", platform)}
	}
	return text, nil
}
