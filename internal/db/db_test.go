package db

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-mailer/internal/ingestion"
	"github.com/jonathan/resume-mailer/internal/types"
)

func TestMigrationFiles(t *testing.T) {
	for _, dialect := range []string{dialectPostgres, dialectSQLite} {
		t.Run(dialect, func(t *testing.T) {
			files, err := migrationFiles(dialect)
			require.NoError(t, err)
			require.NotEmpty(t, files)
			assert.Equal(t, "schema/"+dialect+"/001_init.sql", files[0])

			data, err := schemaFS.ReadFile(files[0])
			require.NoError(t, err)
			assert.Contains(t, string(data), "CREATE TABLE IF NOT EXISTS parsed_documents")
			assert.Contains(t, string(data), "CREATE TABLE IF NOT EXISTS email_drafts")
		})
	}
}

func TestConnect_EmptyURL(t *testing.T) {
	_, err := Connect(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database URL is required")
}

func TestConnect_InvalidURL(t *testing.T) {
	_, err := Connect(context.Background(), "postgres://%zz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse database URL")
}

func TestOrderByIDs(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	found := map[uuid.UUID]ParsedDocument{
		a: {ID: a, Source: "a.pdf"},
		b: {ID: b, Source: "b.docx"},
		c: {ID: c, Source: "c.txt"},
	}

	docs, err := orderByIDs([]uuid.UUID{c, a, b, a}, found)
	require.NoError(t, err)

	var sources []string
	for _, d := range docs {
		sources = append(sources, d.Source)
	}
	assert.Equal(t, []string{"c.txt", "a.pdf", "b.docx", "a.pdf"}, sources)
}

func TestOrderByIDs_Missing(t *testing.T) {
	a := uuid.New()
	_, err := orderByIDs([]uuid.UUID{a, uuid.New()}, map[uuid.UUID]ParsedDocument{a: {ID: a}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestNewParsedDocument(t *testing.T) {
	raw := ingestion.NewRawDocument("resume.txt", ingestion.KindPlain, "Jane Doe\njane@x.com")
	profile := &types.CandidateProfile{Contact: types.ContactInfo{Name: "Jane Doe"}}

	doc := NewParsedDocument(raw, profile)

	assert.Equal(t, "resume.txt", doc.Source)
	assert.Equal(t, "plain", doc.Kind)
	assert.Equal(t, raw.Hash, doc.TextHash)
	assert.Equal(t, "Jane Doe", doc.Profile.Contact.Name)
	assert.Equal(t, uuid.Nil, doc.ID)
}

func TestNewDraftRecord(t *testing.T) {
	req := &types.GenerationRequest{
		CompanyName:    "Initech",
		Role:           "SRE",
		Tone:           types.ToneFriendly,
		Length:         types.LengthShort,
		JobDescription: "Keep it up",
	}
	draft := &types.EmailDraft{Subject: "Hi", HTMLBody: "<p>Hi</p>", Meta: types.DraftMeta{Backend: types.BackendTemplate}}
	ids := []uuid.UUID{uuid.New()}

	rec := NewDraftRecord(req, draft, ids)

	assert.Equal(t, "Initech", rec.CompanyName)
	assert.Equal(t, "friendly", rec.Tone)
	assert.Equal(t, "short", rec.Length)
	assert.Equal(t, ids, rec.SourceDocumentIDs)
	assert.Equal(t, "Hi", rec.Draft.Subject)
}

func TestUUIDStringsRoundTrip(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New()}

	parsed, err := parseUUIDs(uuidStrings(ids))
	require.NoError(t, err)
	assert.Equal(t, ids, parsed)

	_, err = parseUUIDs([]string{"not-a-uuid"})
	assert.Error(t, err)
}
