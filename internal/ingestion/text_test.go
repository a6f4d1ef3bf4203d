package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText_NormalizeWhitespace(t *testing.T) {
	result := CleanText("Line    with \t multiple    spaces")
	assert.Equal(t, "Line with multiple spaces", result)
}

func TestCleanText_RemoveExcessiveBlankLines(t *testing.T) {
	result := CleanText("Line 1\n\n\n\n\nLine 2")
	assert.Equal(t, "Line 1\n\nLine 2", result)
}

func TestCleanText_NormalizeLineEndings(t *testing.T) {
	result := CleanText("Line 1\r\nLine 2\rLine 3\nLine 4")
	assert.Equal(t, "Line 1\nLine 2\nLine 3\nLine 4", result)
}

func TestCleanText_EmptyInput(t *testing.T) {
	assert.Equal(t, "", CleanText(""))
	assert.Equal(t, "", CleanText("   \n\t\n  "))
}

func TestCleanText_KeepsBullets(t *testing.T) {
	result := CleanText("  • Go\n  · Rust  ")
	assert.Equal(t, "• Go\n· Rust", result)
}

func TestCleanText_StripsNUL(t *testing.T) {
	assert.Equal(t, "Jane", CleanText("Ja\x00ne"))
}

func TestCleanText_DeterministicOutput(t *testing.T) {
	input := "Jane Doe\r\n\r\n\r\nSKILLS\r\nGo,   SQL"
	assert.Equal(t, CleanText(input), CleanText(input))
}

func TestRawDocument_Lines(t *testing.T) {
	doc := NewRawDocument("resume.txt", KindPlain, "Jane Doe\n\n  EXPERIENCE  \nEngineer\n")

	assert.Equal(t, []string{"Jane Doe", "EXPERIENCE", "Engineer"}, doc.Lines())
	assert.Equal(t, "Jane Doe\n\nEXPERIENCE\nEngineer", doc.Text)
	assert.Len(t, doc.Hash, 64)

	lines := doc.Lines()
	lines[0] = "changed"
	assert.Equal(t, "Jane Doe", doc.Lines()[0])
}

func TestRawDocument_LinesFromLiteral(t *testing.T) {
	doc := &RawDocument{Text: "a\n\nb"}
	assert.Equal(t, []string{"a", "b"}, doc.Lines())
}

func TestKindFromContentType(t *testing.T) {
	tests := []struct {
		contentType string
		want        ContentKind
		wantOK      bool
	}{
		{"application/pdf", KindPDF, true},
		{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", KindDOCX, true},
		{"text/plain; charset=utf-8", KindPlain, true},
		{"image/png", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			got, ok := KindFromContentType(tt.contentType)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKindFromFilename(t *testing.T) {
	kind, ok := KindFromFilename("/tmp/Resume.PDF")
	assert.True(t, ok)
	assert.Equal(t, KindPDF, kind)

	kind, ok = KindFromFilename("cv.docx")
	assert.True(t, ok)
	assert.Equal(t, KindDOCX, kind)

	kind, ok = KindFromFilename("cv.txt")
	assert.True(t, ok)
	assert.Equal(t, KindPlain, kind)

	_, ok = KindFromFilename("cv.doc")
	assert.False(t, ok)
}

func TestContentKind_ContentType(t *testing.T) {
	assert.Equal(t, MIMEPDF, KindPDF.ContentType())
	assert.Equal(t, MIMEDOCX, KindDOCX.ContentType())
	assert.Equal(t, MIMEPlain, KindPlain.ContentType())
	assert.Equal(t, "", ContentKind("rtf").ContentType())
}
