package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-mailer/internal/ingestion"
	"github.com/jonathan/resume-mailer/internal/types"
)

// ParsedDocument is a profile extracted from one stored résumé file.
type ParsedDocument struct {
	ID        uuid.UUID              `json:"id"`
	Source    string                 `json:"source"`
	Kind      string                 `json:"kind"`
	TextHash  string                 `json:"text_hash"`
	Profile   types.CandidateProfile `json:"profile"`
	CreatedAt time.Time              `json:"created_at"`
}

// NewParsedDocument pairs an extracted document with its profile.
func NewParsedDocument(doc *ingestion.RawDocument, profile *types.CandidateProfile) *ParsedDocument {
	return &ParsedDocument{
		Source:   doc.Source,
		Kind:     string(doc.Kind),
		TextHash: doc.Hash,
		Profile:  *profile,
	}
}

// DraftRecord is a generated email together with the inputs that produced it.
type DraftRecord struct {
	ID                uuid.UUID        `json:"id"`
	CompanyName       string           `json:"company_name"`
	Role              string           `json:"role"`
	Tone              string           `json:"tone"`
	Length            string           `json:"length"`
	JobDescription    string           `json:"job_description"`
	SourceDocumentIDs []uuid.UUID      `json:"source_document_ids"`
	Draft             types.EmailDraft `json:"draft"`
	CreatedAt         time.Time        `json:"created_at"`
}

// NewDraftRecord captures a generation request and its result.
func NewDraftRecord(req *types.GenerationRequest, draft *types.EmailDraft, sourceIDs []uuid.UUID) *DraftRecord {
	return &DraftRecord{
		CompanyName:       req.CompanyName,
		Role:              req.Role,
		Tone:              string(req.Tone),
		Length:            string(req.Length),
		JobDescription:    req.JobDescription,
		SourceDocumentIDs: sourceIDs,
		Draft:             *draft,
	}
}

// DraftSummary is a row of ListDrafts.
type DraftSummary struct {
	ID          uuid.UUID `json:"id"`
	CompanyName string    `json:"company_name"`
	Role        string    `json:"role"`
	Subject     string    `json:"subject"`
	Backend     string    `json:"backend"`
	CreatedAt   time.Time `json:"created_at"`
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func parseUUIDs(values []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
