package extraction

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/resume-mailer/internal/patterns"
	"github.com/jonathan/resume-mailer/internal/types"
)

const (
	maxSummaryScanLines = 10
	summaryLineMinChars = 30
	summaryTargetChars  = 200
	fallbackSkillCount  = 5
)

// ExtractSummary collects descriptive sentences from the top of the document.
// When none qualify it builds a sentence from the name, skills and experience count.
func ExtractSummary(lines []string, contact types.ContactInfo, skills []string, experiences []types.ExperienceEntry) string {
	var window []string
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			window = append(window, line)
		}
		if len(window) == maxSummaryScanLines {
			break
		}
	}

	var accepted []string
	for _, line := range window {
		if patterns.MatchesContact(line) {
			continue
		}
		if _, isHeader := patterns.SectionFor(line); isHeader {
			continue
		}
		if utf8.RuneCountInString(line) <= summaryLineMinChars || isAllUpper(line) {
			continue
		}
		accepted = append(accepted, line)
		if utf8.RuneCountInString(strings.Join(accepted, " ")) > summaryTargetChars {
			break
		}
	}

	if len(accepted) > 0 {
		return types.Truncate(strings.Join(accepted, " "), types.MaxSummaryChars)
	}
	return types.Truncate(fallbackSummary(contact, skills, experiences), types.MaxSummaryChars)
}

func fallbackSummary(contact types.ContactInfo, skills []string, experiences []types.ExperienceEntry) string {
	name := contact.Name
	if name == "" {
		name = "Candidate"
	}

	skillList := "various technologies"
	if len(skills) > 0 {
		top := skills
		if len(top) > fallbackSkillCount {
			top = top[:fallbackSkillCount]
		}
		skillList = strings.Join(top, ", ")
	}

	return fmt.Sprintf("%s is a professional with experience in %s. Has %d work experience entries in their background.",
		name, skillList, len(experiences))
}

// isAllUpper reports whether s has at least one cased letter and every cased letter is upper case.
func isAllUpper(s string) bool {
	cased := false
	for _, r := range s {
		switch {
		case unicode.IsLower(r), unicode.IsTitle(r):
			return false
		case unicode.IsUpper(r):
			cased = true
		}
	}
	return cased
}
