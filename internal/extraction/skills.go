package extraction

import (
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-mailer/internal/patterns"
	"github.com/jonathan/resume-mailer/internal/types"
)

// skillSeparators in priority order. Only the first one present is used, so
// "Python, SQL • Go" splits on the comma alone.
var skillSeparators = []string{",", "•", "·", "|", ";", "\n"}

const (
	minSkillChars = 2
	maxSkillChars = 29
)

// ExtractSkills splits the skills section into at most 20 tokens in document order.
// Duplicates are kept; they are removed when profiles are merged.
func ExtractSkills(lines []string) []string {
	text := strings.Join(lines, " ")

	var candidates []string
	for _, sep := range skillSeparators {
		if strings.Contains(text, sep) {
			candidates = strings.Split(text, sep)
			break
		}
	}
	if candidates == nil {
		candidates = strings.Fields(text)
	}

	skills := make([]string, 0, types.MaxSkillsPerDocument)
	for _, candidate := range candidates {
		skill := strings.TrimSpace(candidate)
		if n := utf8.RuneCountInString(skill); n < minSkillChars || n > maxSkillChars {
			continue
		}
		skill = patterns.SkillPrefix.ReplaceAllString(skill, "")
		skill = strings.Trim(skill, ".,;:")
		if skill == "" {
			continue
		}
		skills = append(skills, skill)
		if len(skills) == types.MaxSkillsPerDocument {
			break
		}
	}
	return skills
}
