package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// SaveParsedDocument inserts doc with a fresh ID and returns it.
func (db *DB) SaveParsedDocument(ctx context.Context, doc *ParsedDocument) (uuid.UUID, error) {
	profileJSON, err := json.Marshal(doc.Profile)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal profile: %w", err)
	}

	id := uuid.New()
	err = db.pool.QueryRow(ctx,
		`INSERT INTO parsed_documents (id, source, kind, text_hash, profile)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		id.String(), doc.Source, doc.Kind, doc.TextHash, profileJSON,
	).Scan(&doc.CreatedAt)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save parsed document: %w", err)
	}
	doc.ID = id
	return id, nil
}

// GetParsedDocuments loads documents in the order of ids. Any missing ID fails
// the whole call with ErrNotFound.
func (db *DB) GetParsedDocuments(ctx context.Context, ids []uuid.UUID) ([]ParsedDocument, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id::text, source, kind, text_hash, profile, created_at
		 FROM parsed_documents WHERE id = ANY($1::uuid[])`,
		uuidStrings(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query parsed documents: %w", err)
	}
	defer rows.Close()

	found := make(map[uuid.UUID]ParsedDocument, len(ids))
	for rows.Next() {
		var (
			doc         ParsedDocument
			id          string
			profileJSON []byte
		)
		if err := rows.Scan(&id, &doc.Source, &doc.Kind, &doc.TextHash, &profileJSON, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan parsed document: %w", err)
		}
		if doc.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid document id %q: %w", id, err)
		}
		if err := json.Unmarshal(profileJSON, &doc.Profile); err != nil {
			return nil, fmt.Errorf("failed to unmarshal profile %s: %w", id, err)
		}
		found[doc.ID] = doc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read parsed documents: %w", err)
	}

	return orderByIDs(ids, found)
}

// orderByIDs returns found in the order of ids, repeating duplicates.
func orderByIDs(ids []uuid.UUID, found map[uuid.UUID]ParsedDocument) ([]ParsedDocument, error) {
	docs := make([]ParsedDocument, 0, len(ids))
	for _, id := range ids {
		doc, ok := found[id]
		if !ok {
			return nil, fmt.Errorf("parsed document %s: %w", id, ErrNotFound)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
