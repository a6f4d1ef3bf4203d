package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DefaultListLimit bounds ListDrafts when no limit is given.
const DefaultListLimit = 50

// SaveDraft inserts rec with a fresh ID and returns it.
func (db *DB) SaveDraft(ctx context.Context, rec *DraftRecord) (uuid.UUID, error) {
	metaJSON, err := json.Marshal(rec.Draft.Meta)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal draft meta: %w", err)
	}

	id := uuid.New()
	err = db.pool.QueryRow(ctx,
		`INSERT INTO email_drafts
		   (id, company_name, role, tone, length, job_description, source_document_ids,
		    subject, html_body, plain_body, meta)
		 VALUES ($1, $2, $3, $4, $5, $6, $7::uuid[], $8, $9, $10, $11)
		 RETURNING created_at`,
		id.String(), rec.CompanyName, rec.Role, rec.Tone, rec.Length, rec.JobDescription,
		uuidStrings(rec.SourceDocumentIDs),
		rec.Draft.Subject, rec.Draft.HTMLBody, rec.Draft.PlainBody, metaJSON,
	).Scan(&rec.CreatedAt)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save draft: %w", err)
	}
	rec.ID = id
	return id, nil
}

// GetDraft loads one draft. A missing ID returns ErrNotFound.
func (db *DB) GetDraft(ctx context.Context, id uuid.UUID) (*DraftRecord, error) {
	var (
		rec       DraftRecord
		sourceIDs []string
		metaJSON  []byte
	)
	err := db.pool.QueryRow(ctx,
		`SELECT company_name, role, tone, length, job_description, source_document_ids::text[],
		        subject, html_body, plain_body, meta, created_at
		 FROM email_drafts WHERE id = $1`,
		id.String(),
	).Scan(&rec.CompanyName, &rec.Role, &rec.Tone, &rec.Length, &rec.JobDescription, &sourceIDs,
		&rec.Draft.Subject, &rec.Draft.HTMLBody, &rec.Draft.PlainBody, &metaJSON, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("draft %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get draft %s: %w", id, err)
	}

	rec.ID = id
	if rec.SourceDocumentIDs, err = parseUUIDs(sourceIDs); err != nil {
		return nil, fmt.Errorf("invalid source document id on draft %s: %w", id, err)
	}
	if err := json.Unmarshal(metaJSON, &rec.Draft.Meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft meta %s: %w", id, err)
	}
	return &rec, nil
}

// ListDrafts returns the newest drafts first.
func (db *DB) ListDrafts(ctx context.Context, limit int) ([]DraftSummary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id::text, company_name, role, subject, meta->>'backend', created_at
		 FROM email_drafts ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	defer rows.Close()

	var drafts []DraftSummary
	for rows.Next() {
		var (
			s  DraftSummary
			id string
		)
		if err := rows.Scan(&id, &s.CompanyName, &s.Role, &s.Subject, &s.Backend, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		if s.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid draft id %q: %w", id, err)
		}
		drafts = append(drafts, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read drafts: %w", err)
	}
	return drafts, nil
}

// DeleteDraft removes a draft. A missing ID returns ErrNotFound.
func (db *DB) DeleteDraft(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM email_drafts WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete draft %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("draft %s: %w", id, ErrNotFound)
	}
	return nil
}
