// Package pipeline runs the résumé to email flow: extract each document, merge
// the profiles, then draft the email.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/resume-mailer/internal/generation"
	"github.com/jonathan/resume-mailer/internal/ingestion"
	"github.com/jonathan/resume-mailer/internal/logger"
	"github.com/jonathan/resume-mailer/internal/profile"
	"github.com/jonathan/resume-mailer/internal/types"
)

// Pipeline steps reported through ProgressCallback.
const (
	StepExtract  = "extract"
	StepMerge    = "merge"
	StepGenerate = "generate"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Options holds the inputs of one run. Documents and Profiles may both be set;
// document profiles come first in merge order.
type Options struct {
	Documents []Document
	Profiles  []types.CandidateProfile

	Job    types.JobContext
	Tone   types.Tone
	Length types.Length

	// Extractor is required when Documents is non-empty.
	Extractor *ingestion.Service
	// Backend is the primary generation backend. Nil drafts from the template only.
	Backend     generation.Backend
	Concurrency int
	OnProgress  ProgressCallback
}

// Result is the output of Run.
type Result struct {
	Parsed  []Parsed
	Profile *types.CandidateProfile
	Request *types.GenerationRequest
	Draft   *types.EmailDraft
}

func emitProgress(opts *Options, step, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{Step: step, Message: message, Content: content})
	}
}

// Run executes the pipeline. It fails only when no profile can be built or the
// job context is invalid; generation always yields a draft.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Job.Validate(); err != nil {
		return nil, fmt.Errorf("invalid job context: %w", err)
	}

	result := &Result{}
	profiles := make([]types.CandidateProfile, 0, len(opts.Documents)+len(opts.Profiles))

	if len(opts.Documents) > 0 {
		if opts.Extractor == nil {
			return nil, errors.New("pipeline: documents given without an extractor")
		}
		result.Parsed = ParseDocuments(ctx, opts.Extractor, opts.Documents, opts.Concurrency)

		for _, p := range result.Parsed {
			if p.Err == nil {
				profiles = append(profiles, *p.Profile)
			}
		}
		emitProgress(&opts, StepExtract,
			fmt.Sprintf("extracted %d of %d documents", len(profiles), len(opts.Documents)), result.Parsed)
	}
	profiles = append(profiles, opts.Profiles...)

	if len(profiles) == 0 {
		if err := firstExtractionError(result.Parsed); err != nil {
			return nil, err
		}
		return nil, &profile.EmptyInputError{Message: "no resume documents or profiles supplied"}
	}

	merged, err := profile.Merge(profiles)
	if err != nil {
		return nil, err
	}
	result.Profile = merged
	emitProgress(&opts, StepMerge, fmt.Sprintf("merged %d profiles", len(profiles)), merged)

	result.Request = generation.BuildRequest(merged, opts.Job, opts.Tone, opts.Length)
	result.Draft = generation.NewGenerator(opts.Backend).Generate(ctx, result.Request)
	emitProgress(&opts, StepGenerate, "drafted email with "+result.Draft.Meta.Backend+" backend", result.Draft)

	logger.Info().
		Str("company", opts.Job.CompanyName).
		Str("role", opts.Job.Role).
		Int("profiles", len(profiles)).
		Str("backend", result.Draft.Meta.Backend).
		Int("tokens", result.Draft.Meta.TokensUsed).
		Msg("email drafted")

	return result, nil
}

// firstExtractionError returns the first document failure, preferring
// *ingestion.TextExtractionError.
func firstExtractionError(parsed []Parsed) error {
	var first error
	for _, p := range parsed {
		if p.Err == nil {
			continue
		}
		var extractErr *ingestion.TextExtractionError
		if errors.As(p.Err, &extractErr) {
			return p.Err
		}
		if first == nil {
			first = p.Err
		}
	}
	return first
}
