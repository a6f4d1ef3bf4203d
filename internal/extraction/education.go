package extraction

import (
	"strings"

	"github.com/jonathan/resume-mailer/internal/patterns"
	"github.com/jonathan/resume-mailer/internal/types"
)

const maxEducationLines = 10

// ExtractEducation keeps education lines that carry a year or an education
// keyword, one entry per line, at most three.
func ExtractEducation(lines []string) []types.EducationEntry {
	if len(lines) > maxEducationLines {
		lines = lines[:maxEducationLines]
	}

	entries := []types.EducationEntry{}
	for _, line := range lines {
		dates := patterns.FindTokens(patterns.EducationDate, line)
		if len(dates) == 0 && !hasEducationKeyword(line) {
			continue
		}
		start, end := dateRange(dates)
		entries = append(entries, types.EducationEntry{
			Institution: line,
			Start:       start,
			End:         end,
		})
		if len(entries) == types.MaxEducationPerDocument {
			break
		}
	}
	return entries
}

func hasEducationKeyword(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range patterns.EducationKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
