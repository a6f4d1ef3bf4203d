package observability

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/resume-mailer/internal/ingestion"
	"github.com/jonathan/resume-mailer/internal/types"
)

func TestPrintProfile(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	profile := &types.CandidateProfile{
		Contact: types.ContactInfo{Name: "Jane Doe", Email: "jane@x.com", GitHub: "https://github.com/jane"},
		Skills:  []string{"Go", "SQL", "Python", "Docker", "AWS", "Rust", "Kafka"},
		Experiences: []types.ExperienceEntry{
			{Title: "Engineer", Company: "Acme Corp", Start: "2019", End: "2023"},
		},
		Education: []types.EducationEntry{{Institution: "State University"}},
	}

	p.PrintProfile(profile)
	output := buf.String()

	assert.Contains(t, output, "CANDIDATE PROFILE")
	assert.Contains(t, output, "Jane Doe")
	assert.Contains(t, output, "Skills (7):")
	assert.Contains(t, output, "AWS")
	assert.NotContains(t, output, "Kafka")
	assert.Contains(t, output, "... and 2 more")
	assert.Contains(t, output, "Engineer at Acme Corp (2019 - 2023)")
	assert.Contains(t, output, "State University")
}

func TestPrintProfile_NoContact(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintProfile(&types.CandidateProfile{})

	assert.Contains(t, buf.String(), "No contact details found")
}

func TestPrintProfile_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintProfile(nil)

	assert.Empty(t, buf.String())
}

func TestPrintDocument(t *testing.T) {
	var buf bytes.Buffer
	doc := ingestion.NewRawDocument("resume.txt", ingestion.KindPlain, "Jane Doe\nEngineer")

	NewPrinter(&buf).PrintDocument(doc)
	output := buf.String()

	assert.Contains(t, output, "EXTRACTED DOCUMENT")
	assert.Contains(t, output, "resume.txt")
	assert.Contains(t, output, "Lines:   2")
}

func TestPrintJob(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintJob(types.JobContext{CompanyName: "Initech", Role: "SRE", JobDescription: "Keep it up"})
	output := buf.String()

	assert.Contains(t, output, "TARGET JOB")
	assert.Contains(t, output, "Initech")
	assert.Contains(t, output, "Job description: 10 chars")
}

func TestPrintDraft(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	var body []string
	for i := 0; i < 10; i++ {
		body = append(body, "line")
	}
	draft := &types.EmailDraft{
		Subject:   "Application for SRE",
		HTMLBody:  "<p>x</p>",
		PlainBody: strings.Join(body, "\n\n"),
		Meta: types.DraftMeta{
			Backend:        types.BackendTemplate,
			Model:          "template",
			ResponseType:   types.ResponseTemplate,
			FallbackReason: "llm backend unavailable",
		},
	}

	p.PrintDraft(draft)
	output := buf.String()

	assert.Contains(t, output, "EMAIL DRAFT")
	assert.Contains(t, output, "Application for SRE")
	assert.Contains(t, output, "Backend:  template (template)")
	assert.Contains(t, output, "Fallback: llm backend unavailable")
	assert.Contains(t, output, "... 2 more lines")
	assert.NotContains(t, output, "Tokens:")
}

func TestPrintDraft_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintDraft(nil)

	assert.Empty(t, buf.String())
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("é", 100))

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, boxWidth, utf8.RuneCountInString(line))
	}
	assert.Contains(t, buf.String(), "...")
}
