// Package ingestion turns uploaded resume files into cleaned text documents.
package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"mime"
	"path/filepath"
	"strings"
	"time"
)

// ContentKind identifies the format of an uploaded document.
type ContentKind string

// Supported content kinds.
const (
	KindPDF   ContentKind = "pdf"
	KindDOCX  ContentKind = "docx"
	KindPlain ContentKind = "plain"
)

// MIME types accepted for upload.
const (
	MIMEPDF   = "application/pdf"
	MIMEDOCX  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEPlain = "text/plain"
)

// KindFromContentType maps a MIME content type to a ContentKind.
// Parameters such as charset are ignored.
func KindFromContentType(contentType string) (ContentKind, bool) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.TrimSpace(strings.ToLower(contentType))
	}
	switch mediaType {
	case MIMEPDF:
		return KindPDF, true
	case MIMEDOCX:
		return KindDOCX, true
	case MIMEPlain:
		return KindPlain, true
	}
	return "", false
}

// KindFromFilename maps a file extension to a ContentKind.
func KindFromFilename(name string) (ContentKind, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return KindPDF, true
	case ".docx":
		return KindDOCX, true
	case ".txt", ".text", ".md":
		return KindPlain, true
	}
	return "", false
}

// ContentType returns the MIME type for the kind.
func (k ContentKind) ContentType() string {
	switch k {
	case KindPDF:
		return MIMEPDF
	case KindDOCX:
		return MIMEDOCX
	case KindPlain:
		return MIMEPlain
	}
	return ""
}

// RawDocument is the cleaned text of one uploaded file. It is not modified after construction.
type RawDocument struct {
	Source      string      `json:"source"`
	Kind        ContentKind `json:"kind"`
	Text        string      `json:"text"`
	Hash        string      `json:"hash"`       // SHA256 hex digest of Text
	ExtractedAt string      `json:"extracted_at"` // RFC3339

	lines []string
}

// NewRawDocument cleans text and builds a RawDocument from it.
func NewRawDocument(source string, kind ContentKind, text string) *RawDocument {
	cleaned := CleanText(text)
	return &RawDocument{
		Source:      source,
		Kind:        kind,
		Text:        cleaned,
		Hash:        computeHash(cleaned),
		ExtractedAt: time.Now().UTC().Format(time.RFC3339),
		lines:       splitLines(cleaned),
	}
}

// Lines returns the trimmed, non-empty lines of the document in order.
func (d *RawDocument) Lines() []string {
	if d.lines == nil {
		return splitLines(d.Text)
	}
	out := make([]string, len(d.lines))
	copy(out, d.lines)
	return out
}

func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func computeHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}
