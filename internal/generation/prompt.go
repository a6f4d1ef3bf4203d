// Package generation drafts application emails from a candidate profile and a job,
// using a language model when one is configured and a fixed template otherwise.
package generation

import (
	"strings"

	"github.com/jonathan/resume-mailer/internal/prompts"
	"github.com/jonathan/resume-mailer/internal/types"
)

const (
	promptSkillCount      = 10
	promptExperienceCount = 3
)

// BuildRequest assembles the request handed to a Backend, including the rendered prompt.
// The job description is cut to 1000 characters.
func BuildRequest(profile *types.CandidateProfile, job types.JobContext, tone types.Tone, length types.Length) *types.GenerationRequest {
	if profile == nil {
		profile = &types.CandidateProfile{}
	}

	req := &types.GenerationRequest{
		Profile:          profile,
		JobDescription:   types.Truncate(job.JobDescription, types.MaxJobDescriptionChars),
		CompanyName:      job.CompanyName,
		Role:             job.Role,
		Tone:             tone,
		Length:           length,
		CandidateSummary: CandidateSummary(profile),
	}
	req.Prompt = RenderPrompt(req)
	return req
}

// CandidateSummary condenses a profile into the lines shown to the model.
func CandidateSummary(profile *types.CandidateProfile) string {
	var lines []string

	if profile.Contact.Name != "" {
		lines = append(lines, "Name: "+profile.Contact.Name)
	}
	if summary := types.Truncate(profile.Summary, types.MaxSummaryChars); summary != "" {
		lines = append(lines, "Summary: "+summary)
	}
	if skills := headStrings(profile.Skills, promptSkillCount); len(skills) > 0 {
		lines = append(lines, "Key Skills: "+strings.Join(skills, ", "))
	}

	experiences := profile.Experiences
	if len(experiences) > promptExperienceCount {
		experiences = experiences[:promptExperienceCount]
	}
	var roles []string
	for _, exp := range experiences {
		if exp.Title != "" && exp.Company != "" {
			roles = append(roles, exp.Title+" at "+exp.Company)
		}
	}
	if len(roles) > 0 {
		lines = append(lines, "Recent Experience: "+strings.Join(roles, "; "))
	}

	return strings.Join(lines, "\n")
}

// RenderPrompt fills the email prompt template for req.
func RenderPrompt(req *types.GenerationRequest) string {
	template := prompts.MustGet(prompts.EmailFile, prompts.KeyGenerateEmail)
	return prompts.Format(template, map[string]string{
		"CandidateSummary":  req.CandidateSummary,
		"CompanyName":       req.CompanyName,
		"Role":              req.Role,
		"JobDescription":    req.JobDescription,
		"ToneInstruction":   prompts.ToneInstruction(string(req.Tone)),
		"LengthInstruction": prompts.LengthInstruction(string(req.Length)),
	})
}

// SystemInstruction is the fixed system prompt for email drafting.
func SystemInstruction() string {
	return prompts.MustGet(prompts.EmailFile, prompts.KeySystemInstruction)
}

func headStrings(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
