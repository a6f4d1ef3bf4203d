package extraction

import (
	"github.com/jonathan/resume-mailer/internal/ingestion"
	"github.com/jonathan/resume-mailer/internal/patterns"
	"github.com/jonathan/resume-mailer/internal/types"
)

// ExtractProfile builds the profile for a single document.
func ExtractProfile(doc *ingestion.RawDocument) *types.CandidateProfile {
	return ExtractProfileFromText(doc.Text, doc.Lines())
}

// ExtractProfileFromText builds a profile from text and its trimmed non-empty lines.
func ExtractProfileFromText(text string, lines []string) *types.CandidateProfile {
	contact := ExtractContact(text, lines)
	sections := Segment(lines)

	skills := ExtractSkills(sections[patterns.Skills])
	experiences := ExtractExperience(sections[patterns.Experience])
	education := ExtractEducation(sections[patterns.Education])

	return &types.CandidateProfile{
		Contact:     contact,
		Skills:      skills,
		Experiences: experiences,
		Education:   education,
		Summary:     ExtractSummary(lines, contact, skills, experiences),
		RawText:     types.Truncate(text, types.MaxRawTextChars),
	}
}
