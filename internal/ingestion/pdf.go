package ingestion

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"

	"github.com/jonathan/resume-mailer/internal/logger"
)

// DefaultPDFTimeout bounds a single PDF parse.
const DefaultPDFTimeout = 30 * time.Second

// PDFExtractor pulls plain text out of PDF files using the Eino PDF parser.
type PDFExtractor struct {
	parser  *pdf.PDFParser
	timeout time.Duration
}

// NewPDFExtractor creates a PDFExtractor that returns the whole document as one text.
func NewPDFExtractor(ctx context.Context) (*PDFExtractor, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{ToPages: false})
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF parser: %w", err)
	}
	return &PDFExtractor{parser: p, timeout: DefaultPDFTimeout}, nil
}

// Extract reads a PDF from r and returns its text.
func (e *PDFExtractor) Extract(ctx context.Context, r io.Reader, source string) (string, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	docs, err := e.parser.Parse(ctx, r,
		einoParser.WithURI(source),
		einoParser.WithExtraMeta(map[string]any{"source": source}),
	)
	if err != nil {
		return "", fmt.Errorf("PDF parser failed: %w", err)
	}

	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc != nil {
			parts = append(parts, doc.Content)
		}
	}
	text := strings.Join(parts, "\n")

	logger.Debug().
		Str("source", source).
		Int("documents", len(docs)).
		Int("chars", len(text)).
		Dur("elapsed", time.Since(start)).
		Msg("pdf text extracted")

	return text, nil
}
