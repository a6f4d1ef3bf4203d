package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Tone selects the register of a generated email.
type Tone string

// Supported tones.
const (
	ToneProfessional Tone = "professional"
	ToneFriendly     Tone = "friendly"
	ToneEnthusiastic Tone = "enthusiastic"
)

// Length selects the target length of a generated email.
type Length string

// Supported lengths.
const (
	LengthShort  Length = "short"
	LengthNormal Length = "normal"
	LengthLong   Length = "long"
)

// ParseTone returns the tone named by s.
func ParseTone(s string) (Tone, error) {
	switch Tone(s) {
	case ToneProfessional, ToneFriendly, ToneEnthusiastic:
		return Tone(s), nil
	}
	return "", fmt.Errorf("unknown tone %q (want professional, friendly or enthusiastic)", s)
}

// ParseLength returns the length named by s.
func ParseLength(s string) (Length, error) {
	switch Length(s) {
	case LengthShort, LengthNormal, LengthLong:
		return Length(s), nil
	}
	return "", fmt.Errorf("unknown length %q (want short, normal or long)", s)
}

// MaxJobDescriptionChars bounds the job description forwarded to a backend.
const MaxJobDescriptionChars = 1000

// JobContext describes the position being applied for.
type JobContext struct {
	JobDescription string `json:"job_description"`
	CompanyName    string `json:"company_name" validate:"required"`
	Role           string `json:"role" validate:"required"`
}

// Validate validates the JobContext using the validator.
func (j *JobContext) Validate() error {
	validate := validator.New()
	return validate.Struct(j)
}

// GenerationRequest is everything a generation backend needs to draft one email.
type GenerationRequest struct {
	Profile          *CandidateProfile `json:"profile"`
	JobDescription   string            `json:"job_description"`
	CompanyName      string            `json:"company_name"`
	Role             string            `json:"role"`
	Tone             Tone              `json:"tone"`
	Length           Length            `json:"length"`
	CandidateSummary string            `json:"candidate_summary"`
	Prompt           string            `json:"prompt"`
}

// Backend names recorded in DraftMeta.
const (
	BackendLLM      = "llm"
	BackendTemplate = "template"
)

// Response types recorded in DraftMeta.
const (
	ResponseJSON     = "json"
	ResponseText     = "text"
	ResponseTemplate = "template"
)

// DraftMeta records how a draft was produced.
type DraftMeta struct {
	Backend        string `json:"backend" validate:"required,oneof=llm template"`
	Model          string `json:"model"`
	TokensUsed     int    `json:"tokens_used" validate:"gte=0"`
	ResponseType   string `json:"response_type" validate:"required,oneof=json text template"`
	FallbackReason string `json:"fallback_reason,omitempty"`
}

// EmailDraft is a generated application email.
type EmailDraft struct {
	Subject   string    `json:"subject" validate:"required"`
	HTMLBody  string    `json:"html_body" validate:"required"`
	PlainBody string    `json:"plain_body"`
	Meta      DraftMeta `json:"meta"`
}

// Validate validates the EmailDraft using the validator.
func (d *EmailDraft) Validate() error {
	validate := validator.New()
	return validate.Struct(d)
}
