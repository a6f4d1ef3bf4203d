package ingestion

import (
	"regexp"
	"strings"
)

var (
	spaceRunRegex  = regexp.MustCompile(`[ \t\f\v\x{00A0}]+`)
	blankRunsRegex = regexp.MustCompile(`\n\n\n+`)
)

// CleanText normalizes extracted text while keeping its line structure.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.ReplaceAll(content, "\x00", "")

	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		cleaned = append(cleaned, cleanLine(line))
	}

	result := strings.Join(cleaned, "\n")
	result = blankRunsRegex.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine collapses runs of horizontal whitespace and trims the line.
// Bullet glyphs are kept since skills lists often use them as separators.
func cleanLine(line string) string {
	line = strings.TrimSpace(line)
	if line == "" {
		return ""
	}
	return spaceRunRegex.ReplaceAllString(line, " ")
}

// hasUsableText reports whether text contains anything other than whitespace.
func hasUsableText(text string) bool {
	return strings.TrimSpace(text) != ""
}
