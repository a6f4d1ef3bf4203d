// Package types provides type definitions for structured data used throughout the resume-mailer system.
package types

import "github.com/go-playground/validator/v10"

// Per-document and merged caps applied when a profile is built.
const (
	MaxSkillsPerDocument      = 20
	MaxExperiencesPerDocument = 5
	MaxEducationPerDocument   = 3
	MaxSummaryChars           = 500
	MaxRawTextChars           = 2000
	MaxMergedSummaryChars     = 1000
	MaxMergedRawTextChars     = 5000
)

// ContactInfo holds the contact details found in a resume. Every field is optional.
type ContactInfo struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
}

// IsEmpty reports whether no contact field is set.
func (c ContactInfo) IsEmpty() bool {
	return c == ContactInfo{}
}

// ExperienceEntry is one position from the experience section.
type ExperienceEntry struct {
	Title       string   `json:"title,omitempty"`
	Company     string   `json:"company,omitempty"`
	Start       string   `json:"start,omitempty"`
	End         string   `json:"end,omitempty"`
	Description string   `json:"description,omitempty"`
	Highlights  []string `json:"highlights"`
}

// EducationEntry is one qualifying line from the education section.
type EducationEntry struct {
	Institution string `json:"institution" validate:"required"`
	Degree      string `json:"degree,omitempty"`
	GPA         string `json:"gpa,omitempty"`
	Start       string `json:"start,omitempty"`
	End         string `json:"end,omitempty"`
}

// CandidateProfile is the structured view of one or more resumes.
type CandidateProfile struct {
	Contact     ContactInfo       `json:"contact"`
	Skills      []string          `json:"skills"`
	Experiences []ExperienceEntry `json:"experiences"`
	Education   []EducationEntry  `json:"education"`
	Summary     string            `json:"summary"`
	RawText     string            `json:"raw_text"`
}

// Validate validates the education entries of the profile.
func (p *CandidateProfile) Validate() error {
	validate := validator.New()
	for i := range p.Education {
		if err := validate.Struct(&p.Education[i]); err != nil {
			return err
		}
	}
	return nil
}

// Truncate returns the first n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
