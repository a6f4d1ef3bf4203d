package ingestion

import "fmt"

// TextExtractionError is returned when no usable text can be pulled from a document.
type TextExtractionError struct {
	Source  string
	Message string
	Cause   error
}

func (e *TextExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("text extraction failed for %s: %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("text extraction failed for %s: %s", e.Source, e.Message)
}

func (e *TextExtractionError) Unwrap() error {
	return e.Cause
}
