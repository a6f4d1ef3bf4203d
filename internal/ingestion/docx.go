package ingestion

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	docxBodyPart = "word/document.xml"
	// DefaultMaxDOCXBodyBytes caps the decompressed size of word/document.xml.
	DefaultMaxDOCXBodyBytes = 32 << 20
)

// DOCXExtractor reads paragraph text from Office Open XML documents.
type DOCXExtractor struct {
	// MaxBodyBytes defaults to DefaultMaxDOCXBodyBytes.
	MaxBodyBytes int64
}

// Extract reads a .docx archive from r and returns one line per paragraph.
func (e DOCXExtractor) Extract(_ context.Context, r io.Reader, _ string) (string, error) {
	limit := e.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxDOCXBodyBytes
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("not a DOCX archive: %w", err)
	}

	var body *zip.File
	for _, f := range zr.File {
		if f.Name == docxBodyPart {
			body = f
			break
		}
	}
	if body == nil {
		return "", errors.New("DOCX archive has no " + docxBodyPart)
	}

	tooLarge := fmt.Errorf("%s expands past %d bytes", docxBodyPart, limit)
	if body.UncompressedSize64 > uint64(limit) {
		return "", tooLarge
	}

	rc, err := body.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", docxBodyPart, err)
	}
	defer func() { _ = rc.Close() }()

	// the header size can lie, so count what actually comes out
	xmlData, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", docxBodyPart, err)
	}
	if int64(len(xmlData)) > limit {
		return "", tooLarge
	}

	return paragraphText(bytes.NewReader(xmlData))
}

// paragraphText walks WordprocessingML and emits the text runs of every w:p element.
func paragraphText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var (
		sb     strings.Builder
		inText bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("malformed document XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br", "cr":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}
