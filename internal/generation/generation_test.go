package generation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-mailer/internal/llm"
	"github.com/jonathan/resume-mailer/internal/types"
)

type fakeClient struct {
	text    string
	tokens  int
	err     error
	delay   time.Duration
	lastReq *llm.Request
	closed  bool
}

func (f *fakeClient) Generate(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	f.lastReq = req
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Response{Text: f.text, Model: "fake-model", TokensUsed: f.tokens}, nil
}

func (f *fakeClient) GetModel(llm.ModelTier) string { return "fake-model" }

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

func factoryFor(c *fakeClient) ClientFactory {
	return func(context.Context, *llm.Config, string) (llm.Client, error) {
		return c, nil
	}
}

func testProfile() *types.CandidateProfile {
	return &types.CandidateProfile{
		Contact: types.ContactInfo{Name: "Jane Doe", Email: "jane@x.com", Phone: "555-1234"},
		Skills:  []string{"Python", "SQL", "Go", "Docker", "AWS", "Rust"},
		Experiences: []types.ExperienceEntry{
			{Title: "Engineer", Company: "Acme Corp"},
			{Title: "Intern"},
			{Title: "Analyst", Company: "Globex"},
			{Title: "Clerk", Company: "Initech"},
		},
		Summary: "Backend engineer.",
	}
}

func testJob() types.JobContext {
	return types.JobContext{CompanyName: "Initrode", Role: "Backend Engineer", JobDescription: "Build APIs in Go."}
}

func TestCandidateSummary(t *testing.T) {
	summary := CandidateSummary(testProfile())

	assert.Equal(t, strings.Join([]string{
		"Name: Jane Doe",
		"Summary: Backend engineer.",
		"Key Skills: Python, SQL, Go, Docker, AWS, Rust",
		"Recent Experience: Engineer at Acme Corp; Analyst at Globex",
	}, "\n"), summary)
}

func TestCandidateSummary_Empty(t *testing.T) {
	assert.Equal(t, "", CandidateSummary(&types.CandidateProfile{}))
}

func TestCandidateSummary_TopTenSkills(t *testing.T) {
	p := &types.CandidateProfile{}
	for i := 0; i < 12; i++ {
		p.Skills = append(p.Skills, string(rune('a'+i))+"x")
	}
	summary := CandidateSummary(p)
	assert.Contains(t, summary, "jx")
	assert.NotContains(t, summary, "kx")
}

func TestBuildRequest(t *testing.T) {
	job := testJob()
	job.JobDescription = strings.Repeat("d", 1500)

	req := BuildRequest(testProfile(), job, types.ToneFriendly, types.LengthShort)

	assert.Len(t, req.JobDescription, types.MaxJobDescriptionChars)
	assert.Equal(t, "Initrode", req.CompanyName)
	assert.Contains(t, req.Prompt, "Company: Initrode")
	assert.Contains(t, req.Prompt, "Position: Backend Engineer")
	assert.Contains(t, req.Prompt, "- Use a warm but professional tone")
	assert.Contains(t, req.Prompt, "- Keep the email concise (150-200 words max)")
	assert.Contains(t, req.Prompt, "Name: Jane Doe")
	assert.NotContains(t, req.Prompt, "{{.")
}

func TestBuildRequest_UnknownToneAndLength(t *testing.T) {
	req := BuildRequest(nil, testJob(), types.Tone("sarcastic"), types.Length("epic"))

	assert.Contains(t, req.Prompt, "Use a formal, professional tone")
	assert.Contains(t, req.Prompt, "Write a standard length email (200-300 words)")
	assert.NotNil(t, req.Profile)
}

func TestTemplateBackend_FullProfile(t *testing.T) {
	req := BuildRequest(testProfile(), testJob(), types.ToneProfessional, types.LengthNormal)
	draft, err := TemplateBackend{}.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "Application for Backend Engineer - Jane Doe", draft.Subject)
	want := strings.Join([]string{
		"Dear Initrode Hiring Team,",
		"I am Jane Doe, and I am writing to express my strong interest in the Backend Engineer position at Initrode.",
		"My technical expertise includes Python, SQL, Go, which aligns well with the requirements for this role.",
		"In my recent role as Engineer at Acme Corp, I have gained valuable experience that would contribute to your team's success.",
		"I would welcome the opportunity to discuss how my background and enthusiasm can contribute to Initrode's continued success. Please feel free to contact me to schedule an interview.",
		"Email: jane@x.com\nPhone: 555-1234",
		"Best regards,\nJane Doe",
	}, "\n\n")
	assert.Equal(t, want, draft.PlainBody)
	assert.True(t, strings.HasPrefix(draft.HTMLBody, "<p>Dear Initrode Hiring Team,</p>\n"))
	assert.Contains(t, draft.HTMLBody, "<p>Email: jane@x.com<br>Phone: 555-1234</p>")
	assert.Contains(t, draft.HTMLBody, "Initrode&#39;s continued success")

	assert.Equal(t, types.DraftMeta{Backend: "template", Model: "template", TokensUsed: 0, ResponseType: "template"}, draft.Meta)
	assert.NoError(t, draft.Validate())
}

func TestTemplateBackend_EmptyProfile(t *testing.T) {
	req := BuildRequest(&types.CandidateProfile{}, testJob(), types.ToneProfessional, types.LengthNormal)
	draft := RenderTemplate(req)

	assert.Equal(t, "Application for Backend Engineer Position", draft.Subject)
	assert.Equal(t, strings.Join([]string{
		"Dear Initrode Hiring Team,",
		"I am writing to express my strong interest in the Backend Engineer position at Initrode.",
		"I would welcome the opportunity to discuss how my background and enthusiasm can contribute to Initrode's continued success. Please feel free to contact me to schedule an interview.",
		"Best regards,",
	}, "\n\n"), draft.PlainBody)
}

func TestTemplateBackend_ExperienceNeedsTitleAndCompany(t *testing.T) {
	p := &types.CandidateProfile{Experiences: []types.ExperienceEntry{{Title: "Engineer"}, {Title: "Dev", Company: "Acme"}}}
	draft := RenderTemplate(BuildRequest(p, testJob(), types.ToneProfessional, types.LengthNormal))
	assert.NotContains(t, draft.PlainBody, "In my recent role")
}

func TestTemplateBackend_Deterministic(t *testing.T) {
	req := BuildRequest(testProfile(), testJob(), types.ToneProfessional, types.LengthNormal)
	assert.Equal(t, RenderTemplate(req), RenderTemplate(req))
}

func TestNormalizeResponse_JSON(t *testing.T) {
	raw := "```json\n{\"subject\": \"Backend role\", \"body_html\": \"<p>Hello</p>\", \"body_text\": \"Hello there\"}\n```"
	draft := NormalizeResponse(raw, "gemini-2.5-flash", 321)

	assert.Equal(t, "Backend role", draft.Subject)
	assert.Equal(t, "<p>Hello</p>", draft.HTMLBody)
	assert.Equal(t, "Hello there", draft.PlainBody)
	assert.Equal(t, types.DraftMeta{Backend: "llm", Model: "gemini-2.5-flash", TokensUsed: 321, ResponseType: "json"}, draft.Meta)
}

func TestNormalizeResponse_JSONDefaults(t *testing.T) {
	draft := NormalizeResponse(`{"body": "<p>Hi<br>there</p>"}`, "m", 0)

	assert.Equal(t, "Application for Position", draft.Subject)
	assert.Equal(t, "<p>Hi<br>there</p>", draft.HTMLBody)
	assert.Equal(t, "Hi\nthere", draft.PlainBody)
}

func TestNormalizeResponse_JSONMissingBody(t *testing.T) {
	draft := NormalizeResponse(`{"subject": "Hi"}`, "m", 0)
	assert.Empty(t, draft.HTMLBody)
	assert.False(t, usable(draft))
}

func TestNormalizeResponse_Text(t *testing.T) {
	raw := "Subject: \"Excited to apply\"\nBody:\nDear team,\n\nI would love to join.\nText: ignored label"
	draft := NormalizeResponse(raw, "m", 7)

	assert.Equal(t, "Excited to apply", draft.Subject)
	assert.Equal(t, "Dear team,\nI would love to join.", draft.PlainBody)
	assert.Equal(t, "<p>Dear team,<br>I would love to join.</p>", draft.HTMLBody)
	assert.Equal(t, "text", draft.Meta.ResponseType)
	assert.Equal(t, 7, draft.Meta.TokensUsed)
}

func TestNormalizeResponse_InvalidJSONFallsToText(t *testing.T) {
	draft := NormalizeResponse("{not json\nSecond line", "m", 0)

	assert.Equal(t, "Application for Position", draft.Subject)
	assert.Equal(t, "{not json\nSecond line", draft.PlainBody)
	assert.Equal(t, "text", draft.Meta.ResponseType)
}

func TestLLMBackend_Success(t *testing.T) {
	client := &fakeClient{text: `{"subject": "Hello", "body_html": "<p>Body</p>"}`, tokens: 99}
	backend := NewLLMBackend("key", nil, WithClientFactory(factoryFor(client)))

	req := BuildRequest(testProfile(), testJob(), types.ToneProfessional, types.LengthNormal)
	draft, err := backend.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "Hello", draft.Subject)
	assert.Equal(t, "Body", draft.PlainBody)
	assert.Equal(t, "llm", draft.Meta.Backend)
	assert.Equal(t, "fake-model", draft.Meta.Model)
	assert.Equal(t, 99, draft.Meta.TokensUsed)
	assert.True(t, client.closed)

	require.NotNil(t, client.lastReq)
	assert.Equal(t, req.Prompt, client.lastReq.Prompt)
	assert.Equal(t, SystemInstruction(), client.lastReq.System)
	assert.Equal(t, DefaultTemperature, client.lastReq.Temperature)
	assert.Equal(t, DefaultMaxOutputTokens, client.lastReq.MaxOutputTokens)
	assert.Equal(t, llm.TierStandard, client.lastReq.Tier)
	assert.True(t, client.lastReq.JSON)
}

func TestLLMBackend_Unavailable(t *testing.T) {
	req := BuildRequest(testProfile(), testJob(), types.ToneProfessional, types.LengthNormal)

	tests := []struct {
		name    string
		backend *LLMBackend
	}{
		{
			name:    "missing key",
			backend: NewLLMBackend("", nil, WithClientFactory(factoryFor(&fakeClient{text: "{}"}))),
		},
		{
			name: "client construction fails",
			backend: NewLLMBackend("key", nil, WithClientFactory(func(context.Context, *llm.Config, string) (llm.Client, error) {
				return nil, errors.New("dial failed")
			})),
		},
		{
			name:    "transport error",
			backend: NewLLMBackend("key", nil, WithClientFactory(factoryFor(&fakeClient{err: errors.New("503")}))),
		},
		{
			name:    "timeout",
			backend: NewLLMBackend("key", nil, WithTimeout(10*time.Millisecond), WithClientFactory(factoryFor(&fakeClient{text: "{}", delay: time.Second}))),
		},
		{
			name:    "empty output",
			backend: NewLLMBackend("key", nil, WithClientFactory(factoryFor(&fakeClient{text: "   "}))),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.backend.Generate(context.Background(), req)
			require.Error(t, err)

			var unavailable *BackendUnavailableError
			assert.True(t, errors.As(err, &unavailable))
			assert.Equal(t, "llm", unavailable.Backend)
		})
	}
}

type stubBackend struct {
	draft *types.EmailDraft
	err   error
}

func (s stubBackend) Generate(context.Context, *types.GenerationRequest) (*types.EmailDraft, error) {
	return s.draft, s.err
}

func TestGenerator_UsesPrimary(t *testing.T) {
	primary := stubBackend{draft: &types.EmailDraft{Subject: "S", HTMLBody: "<p>B</p>", Meta: types.DraftMeta{Backend: "llm"}}}
	draft := NewGenerator(primary).Generate(context.Background(), BuildRequest(testProfile(), testJob(), "", ""))

	assert.Equal(t, "S", draft.Subject)
	assert.Empty(t, draft.Meta.FallbackReason)
}

func TestGenerator_FallsBackOnFailure(t *testing.T) {
	req := BuildRequest(testProfile(), testJob(), types.ToneProfessional, types.LengthNormal)
	failing := NewLLMBackend("key", nil, WithClientFactory(factoryFor(&fakeClient{err: errors.New("boom")})))

	draft := NewGenerator(failing).Generate(context.Background(), req)

	assert.NotEmpty(t, draft.Subject)
	assert.NotEmpty(t, draft.HTMLBody)
	assert.Equal(t, "template", draft.Meta.Backend)
	assert.Contains(t, draft.Meta.FallbackReason, "boom")
}

func TestGenerator_FallsBackOnMalformedDraft(t *testing.T) {
	primary := stubBackend{draft: &types.EmailDraft{Subject: "", HTMLBody: "<p>B</p>"}}
	draft := NewGenerator(primary).Generate(context.Background(), BuildRequest(testProfile(), testJob(), "", ""))

	assert.Equal(t, "template", draft.Meta.Backend)
	assert.Equal(t, "primary backend returned an unusable draft", draft.Meta.FallbackReason)
}

func TestGenerator_FallsBackOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	backend := NewLLMBackend("key", nil, WithClientFactory(factoryFor(&fakeClient{text: "{}", delay: time.Second})))
	draft := NewGenerator(backend).Generate(ctx, BuildRequest(testProfile(), testJob(), "", ""))

	assert.Equal(t, "template", draft.Meta.Backend)
	assert.NotEmpty(t, draft.Subject)
}

func TestGenerator_TemplateOnly(t *testing.T) {
	draft := NewGenerator(nil).Generate(context.Background(), BuildRequest(nil, testJob(), "", ""))

	assert.Equal(t, "Application for Backend Engineer Position", draft.Subject)
	assert.Empty(t, draft.Meta.FallbackReason)
}

func TestBackendUnavailableError(t *testing.T) {
	cause := errors.New("no key")
	err := &BackendUnavailableError{Backend: "llm", Message: "no API key configured", Cause: cause}
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "llm backend unavailable: no API key configured: no key", err.Error())
}
