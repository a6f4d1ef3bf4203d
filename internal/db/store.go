package db

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Store is implemented by both DB and SQLite.
type Store interface {
	SaveParsedDocument(ctx context.Context, doc *ParsedDocument) (uuid.UUID, error)
	GetParsedDocuments(ctx context.Context, ids []uuid.UUID) ([]ParsedDocument, error)
	SaveDraft(ctx context.Context, rec *DraftRecord) (uuid.UUID, error)
	GetDraft(ctx context.Context, id uuid.UUID) (*DraftRecord, error)
	ListDrafts(ctx context.Context, limit int) ([]DraftSummary, error)
	DeleteDraft(ctx context.Context, id uuid.UUID) error
	Close()
}

// SQLitePrefix selects SQLite in Open, e.g. sqlite:///var/lib/mailer.db or
// sqlite:drafts.db.
const SQLitePrefix = "sqlite:"

// Open connects to the store named by databaseURL: a SQLite file for
// sqlite: URLs, PostgreSQL otherwise.
func Open(ctx context.Context, databaseURL string) (Store, error) {
	if path, ok := sqlitePath(databaseURL); ok {
		s, err := OpenSQLite(ctx, path)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	d, err := Connect(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func sqlitePath(databaseURL string) (string, bool) {
	rest, ok := strings.CutPrefix(databaseURL, SQLitePrefix)
	if !ok {
		return "", false
	}
	return strings.TrimPrefix(rest, "//"), true
}
