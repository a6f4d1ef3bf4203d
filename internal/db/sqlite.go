package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jonathan/resume-mailer/internal/logger"
)

// sqliteTime is fixed width so created_at sorts as text.
const sqliteTime = "2006-01-02T15:04:05.000000000Z"

// SQLite is a single-file store for running without PostgreSQL.
type SQLite struct {
	conn *sql.DB
	now  func() time.Time
}

// OpenSQLite opens or creates the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	conn.SetMaxOpenConns(1) // single writer

	s := &SQLite{conn: conn, now: time.Now}
	if err := s.Migrate(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}

	logger.Debug().Str("path", path).Msg("sqlite database opened")
	return s, nil
}

// Close closes the database.
func (s *SQLite) Close() {
	if err := s.conn.Close(); err != nil {
		logger.Warn().Err(err).Msg("failed to close sqlite database")
	}
}

// Migrate runs the embedded SQLite schema files in name order.
func (s *SQLite) Migrate(ctx context.Context) error {
	files, err := migrationFiles(dialectSQLite)
	if err != nil {
		return err
	}
	for _, name := range files {
		data, err := schemaFS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		if _, err := s.conn.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", name, err)
		}
	}
	return nil
}

func (s *SQLite) timestamp() (string, time.Time) {
	now := s.now().UTC()
	return now.Format(sqliteTime), now
}

func parseSQLiteTime(v string) (time.Time, error) {
	return time.Parse(sqliteTime, v)
}

// SaveParsedDocument inserts doc with a fresh ID and returns it.
func (s *SQLite) SaveParsedDocument(ctx context.Context, doc *ParsedDocument) (uuid.UUID, error) {
	profileJSON, err := json.Marshal(doc.Profile)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal profile: %w", err)
	}

	id := uuid.New()
	stamp, createdAt := s.timestamp()
	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO parsed_documents (id, source, kind, text_hash, profile, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id.String(), doc.Source, doc.Kind, doc.TextHash, string(profileJSON), stamp,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save parsed document: %w", err)
	}
	doc.ID = id
	doc.CreatedAt = createdAt
	return id, nil
}

// GetParsedDocuments loads documents in the order of ids. Any missing ID fails
// the whole call with ErrNotFound.
func (s *SQLite) GetParsedDocuments(ctx context.Context, ids []uuid.UUID) ([]ParsedDocument, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id.String()
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, source, kind, text_hash, profile, created_at
		 FROM parsed_documents WHERE id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query parsed documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	found := make(map[uuid.UUID]ParsedDocument, len(ids))
	for rows.Next() {
		var (
			doc                    ParsedDocument
			id, profileJSON, stamp string
		)
		if err := rows.Scan(&id, &doc.Source, &doc.Kind, &doc.TextHash, &profileJSON, &stamp); err != nil {
			return nil, fmt.Errorf("failed to scan parsed document: %w", err)
		}
		if doc.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid document id %q: %w", id, err)
		}
		if doc.CreatedAt, err = parseSQLiteTime(stamp); err != nil {
			return nil, fmt.Errorf("invalid created_at on document %s: %w", id, err)
		}
		if err := json.Unmarshal([]byte(profileJSON), &doc.Profile); err != nil {
			return nil, fmt.Errorf("failed to unmarshal profile %s: %w", id, err)
		}
		found[doc.ID] = doc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read parsed documents: %w", err)
	}

	return orderByIDs(ids, found)
}

// SaveDraft inserts rec with a fresh ID and returns it.
func (s *SQLite) SaveDraft(ctx context.Context, rec *DraftRecord) (uuid.UUID, error) {
	metaJSON, err := json.Marshal(rec.Draft.Meta)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal draft meta: %w", err)
	}
	sourceJSON, err := json.Marshal(uuidStrings(rec.SourceDocumentIDs))
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal source document ids: %w", err)
	}

	id := uuid.New()
	stamp, createdAt := s.timestamp()
	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO email_drafts
		   (id, company_name, role, tone, length, job_description, source_document_ids,
		    subject, html_body, plain_body, meta, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id.String(), rec.CompanyName, rec.Role, rec.Tone, rec.Length, rec.JobDescription,
		string(sourceJSON), rec.Draft.Subject, rec.Draft.HTMLBody, rec.Draft.PlainBody,
		string(metaJSON), stamp,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save draft: %w", err)
	}
	rec.ID = id
	rec.CreatedAt = createdAt
	return id, nil
}

// GetDraft loads one draft. A missing ID returns ErrNotFound.
func (s *SQLite) GetDraft(ctx context.Context, id uuid.UUID) (*DraftRecord, error) {
	var (
		rec                         DraftRecord
		sourceJSON, metaJSON, stamp string
	)
	err := s.conn.QueryRowContext(ctx,
		`SELECT company_name, role, tone, length, job_description, source_document_ids,
		        subject, html_body, plain_body, meta, created_at
		 FROM email_drafts WHERE id = ?`,
		id.String(),
	).Scan(&rec.CompanyName, &rec.Role, &rec.Tone, &rec.Length, &rec.JobDescription, &sourceJSON,
		&rec.Draft.Subject, &rec.Draft.HTMLBody, &rec.Draft.PlainBody, &metaJSON, &stamp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("draft %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get draft %s: %w", id, err)
	}

	rec.ID = id
	var sourceIDs []string
	if err := json.Unmarshal([]byte(sourceJSON), &sourceIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal source document ids on draft %s: %w", id, err)
	}
	if rec.SourceDocumentIDs, err = parseUUIDs(sourceIDs); err != nil {
		return nil, fmt.Errorf("invalid source document id on draft %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(metaJSON), &rec.Draft.Meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft meta %s: %w", id, err)
	}
	if rec.CreatedAt, err = parseSQLiteTime(stamp); err != nil {
		return nil, fmt.Errorf("invalid created_at on draft %s: %w", id, err)
	}
	return &rec, nil
}

// ListDrafts returns the newest drafts first.
func (s *SQLite) ListDrafts(ctx context.Context, limit int) ([]DraftSummary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, company_name, role, subject, COALESCE(json_extract(meta, '$.backend'), ''), created_at
		 FROM email_drafts ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var drafts []DraftSummary
	for rows.Next() {
		var (
			d         DraftSummary
			id, stamp string
		)
		if err := rows.Scan(&id, &d.CompanyName, &d.Role, &d.Subject, &d.Backend, &stamp); err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		if d.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid draft id %q: %w", id, err)
		}
		if d.CreatedAt, err = parseSQLiteTime(stamp); err != nil {
			return nil, fmt.Errorf("invalid created_at on draft %s: %w", id, err)
		}
		drafts = append(drafts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read drafts: %w", err)
	}
	return drafts, nil
}

// DeleteDraft removes a draft. A missing ID returns ErrNotFound.
func (s *SQLite) DeleteDraft(ctx context.Context, id uuid.UUID) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM email_drafts WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete draft %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete draft %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("draft %s: %w", id, ErrNotFound)
	}
	return nil
}
