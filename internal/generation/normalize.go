package generation

import (
	"encoding/json"
	"strings"

	"github.com/jonathan/resume-mailer/internal/llm"
	"github.com/jonathan/resume-mailer/internal/rendering"
	"github.com/jonathan/resume-mailer/internal/types"
)

const defaultSubject = "Application for Position"

// labelled lines that are never copied into the body of a text response
var responseLabels = []string{"subject:", "body:", "html:", "text:"}

type jsonEmail struct {
	Subject  string `json:"subject"`
	BodyHTML string `json:"body_html"`
	Body     string `json:"body"`
	BodyText string `json:"body_text"`
}

// NormalizeResponse turns raw model output into a draft. JSON objects are read
// field by field; anything else is parsed as "Subject:" plus body lines.
func NormalizeResponse(raw, model string, tokens int) *types.EmailDraft {
	text := llm.CleanJSONBlock(raw)

	if strings.HasPrefix(text, "{") {
		var parsed jsonEmail
		if err := json.Unmarshal([]byte(text), &parsed); err == nil {
			return fromJSON(parsed, model, tokens)
		}
	}
	return fromText(text, model, tokens)
}

func fromJSON(parsed jsonEmail, model string, tokens int) *types.EmailDraft {
	subject := strings.TrimSpace(parsed.Subject)
	if subject == "" {
		subject = defaultSubject
	}

	html := parsed.BodyHTML
	if strings.TrimSpace(html) == "" {
		html = parsed.Body
	}

	plain := parsed.BodyText
	if strings.TrimSpace(plain) == "" {
		plain = rendering.HTMLToText(html)
	}

	return &types.EmailDraft{
		Subject:   subject,
		HTMLBody:  html,
		PlainBody: plain,
		Meta: types.DraftMeta{
			Backend:      types.BackendLLM,
			Model:        model,
			TokensUsed:   tokens,
			ResponseType: types.ResponseJSON,
		},
	}
}

func fromText(text, model string, tokens int) *types.EmailDraft {
	subject := defaultSubject
	var body []string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		if strings.HasPrefix(lower, "subject:") {
			subject = strings.Trim(strings.TrimSpace(line[len("subject:"):]), `"`)
			continue
		}
		if hasLabel(lower) {
			continue
		}
		body = append(body, line)
	}

	plain := strings.Join(body, "\n")
	return &types.EmailDraft{
		Subject:   subject,
		HTMLBody:  rendering.TextToHTML(plain),
		PlainBody: plain,
		Meta: types.DraftMeta{
			Backend:      types.BackendLLM,
			Model:        model,
			TokensUsed:   tokens,
			ResponseType: types.ResponseText,
		},
	}
}

func hasLabel(lower string) bool {
	for _, label := range responseLabels {
		if strings.HasPrefix(lower, label) {
			return true
		}
	}
	return false
}

// usable reports whether a draft can be returned to the caller.
func usable(d *types.EmailDraft) bool {
	return d != nil && strings.TrimSpace(d.Subject) != "" && strings.TrimSpace(d.HTMLBody) != ""
}
