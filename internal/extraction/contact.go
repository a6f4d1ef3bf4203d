package extraction

import (
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-mailer/internal/patterns"
	"github.com/jonathan/resume-mailer/internal/types"
)

const (
	maxNameWords = 4
	maxNameChars = 50
)

// ExtractContact finds the first email, phone number and profile links in text,
// and takes the first line as the name when it looks like one.
// Phone numbers are kept exactly as written.
func ExtractContact(text string, lines []string) types.ContactInfo {
	var c types.ContactInfo

	c.Email = patterns.Email.FindString(text)
	c.Phone = patterns.Phone.FindString(text)
	if m := patterns.LinkedIn.FindString(text); m != "" {
		c.LinkedIn = "https://" + m
	}
	if m := patterns.GitHub.FindString(text); m != "" {
		c.GitHub = "https://" + m
	}

	c.Name = guessName(lines)
	return c
}

func guessName(lines []string) string {
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if patterns.MatchesContact(line) {
			return ""
		}
		if len(strings.Fields(line)) <= maxNameWords && utf8.RuneCountInString(line) <= maxNameChars {
			return line
		}
		return ""
	}
	return ""
}
