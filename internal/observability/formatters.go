// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-mailer/internal/ingestion"
	"github.com/jonathan/resume-mailer/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// bodyPreviewLines bounds the email body shown in a draft box
	bodyPreviewLines = 8
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if utf8.RuneCountInString(line) > inner {
			line = string([]rune(line)[:inner-3]) + "..."
		}
		fmt.Fprintf(p.out, "│ %s │\n", pad(line, inner))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// writeList writes up to limit items as bullets with a "more" line.
func writeList(sb *strings.Builder, items []string, limit int) {
	count := min(len(items), limit)
	for i := 0; i < count; i++ {
		fmt.Fprintf(sb, "  • %s\n", items[i])
	}
	if len(items) > limit {
		fmt.Fprintf(sb, "  ... and %d more\n", len(items)-limit)
	}
}

// PrintDocument outputs a short description of an extracted document.
func (p *Printer) PrintDocument(doc *ingestion.RawDocument) {
	if doc == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Source:  %s\n", doc.Source)
	fmt.Fprintf(&sb, "Kind:    %s\n", doc.Kind)
	fmt.Fprintf(&sb, "Chars:   %d\n", utf8.RuneCountInString(doc.Text))
	fmt.Fprintf(&sb, "Lines:   %d", len(doc.Lines()))

	p.printBox("EXTRACTED DOCUMENT", sb.String())
}

// PrintProfile outputs a human-readable summary of a candidate profile.
func (p *Printer) PrintProfile(profile *types.CandidateProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	c := profile.Contact
	if c.Name != "" {
		fmt.Fprintf(&sb, "Name:     %s\n", c.Name)
	}
	if c.Email != "" {
		fmt.Fprintf(&sb, "Email:    %s\n", c.Email)
	}
	if c.Phone != "" {
		fmt.Fprintf(&sb, "Phone:    %s\n", c.Phone)
	}
	if c.LinkedIn != "" {
		fmt.Fprintf(&sb, "LinkedIn: %s\n", c.LinkedIn)
	}
	if c.GitHub != "" {
		fmt.Fprintf(&sb, "GitHub:   %s\n", c.GitHub)
	}
	if c.IsEmpty() {
		sb.WriteString("No contact details found\n")
	}
	sb.WriteString("\n")

	if len(profile.Skills) > 0 {
		fmt.Fprintf(&sb, "Skills (%d):\n", len(profile.Skills))
		writeList(&sb, profile.Skills, maxItemsToShow)
		sb.WriteString("\n")
	}

	if len(profile.Experiences) > 0 {
		sb.WriteString("Experience:\n")
		roles := make([]string, 0, len(profile.Experiences))
		for _, exp := range profile.Experiences {
			role := exp.Title
			if exp.Company != "" {
				role += " at " + exp.Company
			}
			if exp.Start != "" {
				role += fmt.Sprintf(" (%s - %s)", exp.Start, exp.End)
			}
			roles = append(roles, role)
		}
		writeList(&sb, roles, maxItemsToShow)
		sb.WriteString("\n")
	}

	if len(profile.Education) > 0 {
		sb.WriteString("Education:\n")
		schools := make([]string, 0, len(profile.Education))
		for _, edu := range profile.Education {
			schools = append(schools, edu.Institution)
		}
		writeList(&sb, schools, 3)
	}

	p.printBox("CANDIDATE PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintJob outputs the job the email is addressed to.
func (p *Printer) PrintJob(job types.JobContext) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Company:  %s\n", job.CompanyName)
	fmt.Fprintf(&sb, "Role:     %s", job.Role)
	if job.JobDescription != "" {
		fmt.Fprintf(&sb, "\nJob description: %d chars", utf8.RuneCountInString(job.JobDescription))
	}

	p.printBox("TARGET JOB", sb.String())
}

// PrintDraft outputs the subject, generation metadata and the start of the body.
func (p *Printer) PrintDraft(draft *types.EmailDraft) {
	if draft == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Subject:  %s\n", draft.Subject)
	fmt.Fprintf(&sb, "Backend:  %s (%s)\n", draft.Meta.Backend, draft.Meta.Model)
	if draft.Meta.TokensUsed > 0 {
		fmt.Fprintf(&sb, "Tokens:   %d\n", draft.Meta.TokensUsed)
	}
	if draft.Meta.FallbackReason != "" {
		fmt.Fprintf(&sb, "Fallback: %s\n", draft.Meta.FallbackReason)
	}
	sb.WriteString("\n")

	var lines []string
	for _, line := range strings.Split(draft.PlainBody, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	count := min(len(lines), bodyPreviewLines)
	for i := 0; i < count; i++ {
		sb.WriteString(lines[i] + "\n")
	}
	if len(lines) > bodyPreviewLines {
		fmt.Fprintf(&sb, "... %d more lines\n", len(lines)-bodyPreviewLines)
	}

	p.printBox("EMAIL DRAFT", strings.TrimSuffix(sb.String(), "\n"))
}
