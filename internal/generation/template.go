package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/resume-mailer/internal/rendering"
	"github.com/jonathan/resume-mailer/internal/types"
)

const (
	templateSkillPool  = 5
	templateSkillShown = 3
)

// TemplateBackend fills a fixed email template. It is deterministic and never fails.
type TemplateBackend struct{}

// Generate implements Backend.
func (TemplateBackend) Generate(_ context.Context, req *types.GenerationRequest) (*types.EmailDraft, error) {
	return RenderTemplate(req), nil
}

// RenderTemplate builds the template draft for req.
func RenderTemplate(req *types.GenerationRequest) *types.EmailDraft {
	profile := req.Profile
	if profile == nil {
		profile = &types.CandidateProfile{}
	}
	name := profile.Contact.Name
	company := req.CompanyName
	role := req.Role

	subject := fmt.Sprintf("Application for %s Position", role)
	if name != "" {
		subject = fmt.Sprintf("Application for %s - %s", role, name)
	}

	opening := fmt.Sprintf("I am writing to express my strong interest in the %s position at %s.", role, company)
	if name != "" {
		opening = fmt.Sprintf("I am %s, and I am writing to express my strong interest in the %s position at %s.", name, role, company)
	}

	var skillsText string
	if skills := headStrings(headStrings(profile.Skills, templateSkillPool), templateSkillShown); len(skills) > 0 {
		skillsText = fmt.Sprintf("My technical expertise includes %s, which aligns well with the requirements for this role.",
			strings.Join(skills, ", "))
	}

	var experienceText string
	if len(profile.Experiences) > 0 {
		exp := profile.Experiences[0]
		if exp.Title != "" && exp.Company != "" {
			experienceText = fmt.Sprintf("In my recent role as %s at %s, I have gained valuable experience that would contribute to your team's success.",
				exp.Title, exp.Company)
		}
	}

	closing := fmt.Sprintf("I would welcome the opportunity to discuss how my background and enthusiasm can contribute to %s's continued success. Please feel free to contact me to schedule an interview.", company)

	var contactLines []string
	if profile.Contact.Email != "" {
		contactLines = append(contactLines, "Email: "+profile.Contact.Email)
	}
	if profile.Contact.Phone != "" {
		contactLines = append(contactLines, "Phone: "+profile.Contact.Phone)
	}

	signature := "Best regards,"
	if name != "" {
		signature += "\n" + name
	}

	slots := []string{
		fmt.Sprintf("Dear %s Hiring Team,", company),
		opening,
		skillsText,
		experienceText,
		closing,
		strings.Join(contactLines, "\n"),
		signature,
	}
	var parts []string
	for _, s := range slots {
		if s != "" {
			parts = append(parts, s)
		}
	}
	plain := strings.Join(parts, "\n\n")

	return &types.EmailDraft{
		Subject:   subject,
		HTMLBody:  rendering.TextToHTML(plain),
		PlainBody: plain,
		Meta: types.DraftMeta{
			Backend:      types.BackendTemplate,
			Model:        "template",
			TokensUsed:   0,
			ResponseType: types.ResponseTemplate,
		},
	}
}
