package ingestion

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Extractor pulls raw text out of one document format.
type Extractor interface {
	Extract(ctx context.Context, r io.Reader, source string) (string, error)
}

// Service dispatches documents to the Extractor registered for their kind.
type Service struct {
	extractors map[ContentKind]Extractor
}

// NewService returns a Service with the PDF, DOCX and plain-text extractors registered.
func NewService(ctx context.Context) (*Service, error) {
	pdfExtractor, err := NewPDFExtractor(ctx)
	if err != nil {
		return nil, err
	}
	return NewServiceWith(map[ContentKind]Extractor{
		KindPDF:   pdfExtractor,
		KindDOCX:  DOCXExtractor{},
		KindPlain: PlainExtractor{},
	}), nil
}

// NewServiceWith returns a Service using the given extractors.
func NewServiceWith(extractors map[ContentKind]Extractor) *Service {
	m := make(map[ContentKind]Extractor, len(extractors))
	for k, v := range extractors {
		m[k] = v
	}
	return &Service{extractors: m}
}

// Extract turns data of the given kind into a RawDocument.
// It fails with *TextExtractionError for unsupported kinds, extractor failures
// and documents that contain no usable characters.
func (s *Service) Extract(ctx context.Context, kind ContentKind, data []byte, source string) (*RawDocument, error) {
	extractor, ok := s.extractors[kind]
	if !ok {
		return nil, &TextExtractionError{
			Source:  source,
			Message: fmt.Sprintf("unsupported content kind %q", kind),
		}
	}

	text, err := extractor.Extract(ctx, bytes.NewReader(data), source)
	if err != nil {
		return nil, &TextExtractionError{
			Source:  source,
			Message: fmt.Sprintf("%s extraction failed", kind),
			Cause:   err,
		}
	}

	if !hasUsableText(text) {
		return nil, &TextExtractionError{
			Source:  source,
			Message: "document appears to be empty or scanned (OCR not implemented)",
		}
	}

	return NewRawDocument(source, kind, text), nil
}

// ExtractContentType is Extract with the kind taken from a MIME content type.
func (s *Service) ExtractContentType(ctx context.Context, contentType string, data []byte, source string) (*RawDocument, error) {
	kind, ok := KindFromContentType(contentType)
	if !ok {
		return nil, &TextExtractionError{
			Source:  source,
			Message: fmt.Sprintf("unsupported content type %q", contentType),
		}
	}
	return s.Extract(ctx, kind, data, source)
}

// ExtractFile reads path and extracts it using the kind implied by its extension.
func (s *Service) ExtractFile(ctx context.Context, path string) (*RawDocument, error) {
	source := filepath.Base(path)
	kind, ok := KindFromFilename(path)
	if !ok {
		return nil, &TextExtractionError{
			Source:  source,
			Message: fmt.Sprintf("unsupported file extension %q", filepath.Ext(path)),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %w", err)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return s.Extract(ctx, kind, data, source)
}
