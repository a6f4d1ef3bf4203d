package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-mailer/internal/extraction"
	"github.com/jonathan/resume-mailer/internal/ingestion"
	"github.com/jonathan/resume-mailer/internal/logger"
	"github.com/jonathan/resume-mailer/internal/types"
)

// DefaultConcurrency is the number of documents extracted at once.
const DefaultConcurrency = 4

// Document is an uploaded résumé file.
type Document struct {
	Source string
	Kind   ingestion.ContentKind
	Data   []byte
}

// ReadDocument loads path, taking the kind from its extension.
func ReadDocument(path string) (Document, error) {
	source := filepath.Base(path)
	kind, ok := ingestion.KindFromFilename(path)
	if !ok {
		return Document{}, &ingestion.TextExtractionError{
			Source:  source,
			Message: fmt.Sprintf("unsupported file extension %q", filepath.Ext(path)),
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Document{Source: source, Kind: kind, Data: data}, nil
}

// Parsed is the outcome for one document. Exactly one of Profile and Err is set.
type Parsed struct {
	Source   string
	Document *ingestion.RawDocument
	Profile  *types.CandidateProfile
	Err      error
}

// ParseDocuments extracts a profile from every document. Results are in input
// order; a failing document does not stop the others.
func ParseDocuments(ctx context.Context, extractor *ingestion.Service, docs []Document, concurrency int) []Parsed {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]Parsed, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, doc := range docs {
		g.Go(func() error {
			results[i] = parseOne(gctx, extractor, doc)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func parseOne(ctx context.Context, extractor *ingestion.Service, doc Document) Parsed {
	result := Parsed{Source: doc.Source}
	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}

	raw, err := extractor.Extract(ctx, doc.Kind, doc.Data, doc.Source)
	if err != nil {
		logger.Warn().Err(err).Str("source", doc.Source).Msg("document extraction failed")
		result.Err = err
		return result
	}

	result.Document = raw
	result.Profile = extraction.ExtractProfile(raw)
	logger.Debug().
		Str("source", doc.Source).
		Int("skills", len(result.Profile.Skills)).
		Int("experiences", len(result.Profile.Experiences)).
		Msg("document parsed")
	return result
}
