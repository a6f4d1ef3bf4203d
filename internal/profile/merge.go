// Package profile combines the profiles extracted from several resume documents.
package profile

import (
	"strings"

	"github.com/jonathan/resume-mailer/internal/types"
)

// Merge folds profiles, in order, into one.
//
// Contact fields take the first non-empty value. Skills are concatenated and
// de-duplicated by exact, case-sensitive match keeping first occurrence.
// Experience and education entries are concatenated. Summaries and raw text
// are joined with a single space and truncated to the merged caps.
func Merge(profiles []types.CandidateProfile) (*types.CandidateProfile, error) {
	if len(profiles) == 0 {
		return nil, &EmptyInputError{Message: "no profiles to merge"}
	}

	merged := &types.CandidateProfile{
		Skills:      []string{},
		Experiences: []types.ExperienceEntry{},
		Education:   []types.EducationEntry{},
	}
	seenSkills := make(map[string]struct{})
	var summaries, rawTexts []string

	for i := range profiles {
		p := &profiles[i]

		mergeContact(&merged.Contact, p.Contact)

		for _, skill := range p.Skills {
			if _, ok := seenSkills[skill]; ok {
				continue
			}
			seenSkills[skill] = struct{}{}
			merged.Skills = append(merged.Skills, skill)
		}

		merged.Experiences = append(merged.Experiences, p.Experiences...)
		merged.Education = append(merged.Education, p.Education...)

		if p.Summary != "" {
			summaries = append(summaries, p.Summary)
		}
		if p.RawText != "" {
			rawTexts = append(rawTexts, p.RawText)
		}
	}

	merged.Summary = types.Truncate(strings.Join(summaries, " "), types.MaxMergedSummaryChars)
	merged.RawText = types.Truncate(strings.Join(rawTexts, " "), types.MaxMergedRawTextChars)
	return merged, nil
}

func mergeContact(dst *types.ContactInfo, src types.ContactInfo) {
	fill := func(d *string, s string) {
		if *d == "" && s != "" {
			*d = s
		}
	}
	fill(&dst.Name, src.Name)
	fill(&dst.Email, src.Email)
	fill(&dst.Phone, src.Phone)
	fill(&dst.Address, src.Address)
	fill(&dst.LinkedIn, src.LinkedIn)
	fill(&dst.GitHub, src.GitHub)
}
