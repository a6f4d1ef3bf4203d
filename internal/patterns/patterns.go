// Package patterns holds the compiled regular expressions used to recognise resume structure.
// Everything here is built once at package init and is safe for concurrent use.
package patterns

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

// Section names a recognised resume section.
type Section string

// Recognised sections.
const (
	Experience Section = "experience"
	Education  Section = "education"
	Skills     Section = "skills"
	Summary    Section = "summary"
)

// SectionPattern pairs a section with its header regexp.
type SectionPattern struct {
	Section Section
	Pattern *regexp.Regexp
}

// Sections lists section header patterns in match priority order. Header
// words must stand alone; use MatchToken rather than MatchString.
var Sections = []SectionPattern{
	{Experience, regexp.MustCompile(`(?i)experience|work experience|employment|career|professional experience`)},
	{Education, regexp.MustCompile(`(?i)education|academic|qualifications|degrees`)},
	{Skills, regexp.MustCompile(`(?i)skills|technical skills|competencies|abilities|proficiencies`)},
	{Summary, regexp.MustCompile(`(?i)summary|profile|objective|about|overview`)},
}

// Contact patterns.
var (
	Email    = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)
	Phone    = regexp.MustCompile(`(\+\d{1,3}[-.\s]?)?\(?\d{1,4}\)?[-.\s]?\d{1,4}[-.\s]?\d{1,9}`)
	LinkedIn = regexp.MustCompile(`(?i)linkedin\.com/in/[\w-]+`)
	GitHub   = regexp.MustCompile(`(?i)github\.com/[\w-]+`)
)

// Contact lists every contact pattern.
var Contact = []*regexp.Regexp{Email, Phone, LinkedIn, GitHub}

// Date tokens, matched with FindTokens. Experience lines also accept MM/YYYY.
// Letters and digits are Unicode classes so "Août 2019" stays whole.
var (
	ExperienceDate = regexp.MustCompile(`\p{Nd}{4}|[\p{L}\p{N}_]+\s+\p{Nd}{4}|\p{Nd}{1,2}/\p{Nd}{4}`)
	EducationDate  = regexp.MustCompile(`\p{Nd}{4}|[\p{L}\p{N}_]+\s+\p{Nd}{4}`)
)

// SkillPrefix matches filler phrases that precede a skill name.
var SkillPrefix = regexp.MustCompile(`(?i)^(proficient in|experience with|knowledge of)\s*`)

// EducationKeywords mark a line as an education entry even without a date.
var EducationKeywords = []string{"university", "college", "degree", "bachelor", "master", "phd"}

// FindTokens returns the non-overlapping matches of re in s that begin and end
// on word boundaries. Word characters are Unicode letters, digits and '_';
// RE2's \b only knows ASCII.
func FindTokens(re *regexp.Regexp, s string) []string {
	return findTokens(re, s, -1)
}

// MatchToken reports whether FindTokens would find at least one match.
func MatchToken(re *regexp.Regexp, s string) bool {
	return len(findTokens(re, s, 1)) > 0
}

func findTokens(re *regexp.Regexp, s string, n int) []string {
	var out []string
	for i := 0; i < len(s) && (n < 0 || len(out) < n); {
		loc := re.FindStringIndex(s[i:])
		if loc == nil {
			break
		}
		start, end := i+loc[0], i+loc[1]
		if end > start && wordBoundary(s, start) && wordBoundary(s, end) {
			out = append(out, s[start:end])
			i = end
			continue
		}
		// retry one rune further on, as a backtracking \b would
		_, size := utf8.DecodeRuneInString(s[start:])
		i = start + max(size, 1)
	}
	return out
}

// wordBoundary reports whether the word-ness of the runes either side of byte offset i differs.
func wordBoundary(s string, i int) bool {
	before, after := false, false
	if i > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:i])
		before = isWordRune(r)
	}
	if i < len(s) {
		r, _ := utf8.DecodeRuneInString(s[i:])
		after = isWordRune(r)
	}
	return before != after
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// SectionFor returns the first section whose header word appears in line.
func SectionFor(line string) (Section, bool) {
	for _, sp := range Sections {
		if MatchToken(sp.Pattern, line) {
			return sp.Section, true
		}
	}
	return "", false
}

// MatchesContact reports whether any contact pattern matches line.
func MatchesContact(line string) bool {
	for _, re := range Contact {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}
