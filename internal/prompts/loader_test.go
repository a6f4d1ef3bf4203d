package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get(EmailFile, KeyGenerateEmail)
	require.NoError(t, err)
	assert.Contains(t, prompt, "Generate a job application email")
	assert.Contains(t, prompt, "{{.CandidateSummary}}")
	assert.Contains(t, prompt, `"body_html"`)
}

func TestGet_SystemInstruction(t *testing.T) {
	prompt, err := Get(EmailFile, KeySystemInstruction)
	require.NoError(t, err)
	assert.Equal(t, "You are a professional career advisor helping job seekers write compelling application emails.", prompt)
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get(EmailFile, "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestToneInstruction(t *testing.T) {
	tests := []struct {
		tone string
		want string
	}{
		{"professional", "Use a formal, professional tone"},
		{"friendly", "Use a warm but professional tone"},
		{"enthusiastic", "Use an enthusiastic and energetic tone"},
		{"sarcastic", "Use a formal, professional tone"},
		{"", "Use a formal, professional tone"},
	}
	for _, tt := range tests {
		t.Run(tt.tone, func(t *testing.T) {
			assert.Equal(t, tt.want, ToneInstruction(tt.tone))
		})
	}
}

func TestLengthInstruction(t *testing.T) {
	tests := []struct {
		length string
		want   string
	}{
		{"short", "Keep the email concise (150-200 words max)"},
		{"normal", "Write a standard length email (200-300 words)"},
		{"long", "Write a detailed email (300-400 words)"},
		{"epic", "Write a standard length email (200-300 words)"},
	}
	for _, tt := range tests {
		t.Run(tt.length, func(t *testing.T) {
			assert.Equal(t, tt.want, LengthInstruction(tt.length))
		})
	}
}

func TestFormat(t *testing.T) {
	template := "Hello {{.Name}}, welcome to {{.Company}}!"
	data := map[string]string{
		"Name":    "Alice",
		"Company": "Acme Corp",
	}

	assert.Equal(t, "Hello Alice, welcome to Acme Corp!", Format(template, data))
}

func TestFormat_MissingKeyLeftInPlace(t *testing.T) {
	assert.Equal(t, "Hi {{.Name}}", Format("Hi {{.Name}}", map[string]string{"Other": "x"}))
}

func TestFormat_ValuesNotReexpanded(t *testing.T) {
	template := "{{.JobDescription}} / {{.Role}}"
	data := map[string]string{
		"JobDescription": "mentions {{.Role}}",
		"Role":           "Engineer",
	}
	assert.Equal(t, "mentions {{.Role}} / Engineer", Format(template, data))
}

func TestList(t *testing.T) {
	keys, err := List(EmailFile)
	require.NoError(t, err)
	assert.Contains(t, keys, KeyGenerateEmail)
	assert.Contains(t, keys, "tone-friendly")
	assert.Contains(t, keys, "length-long")
	assert.IsIncreasing(t, keys)
}
