// ABOUTME: Document registry operations for SQLite
// ABOUTME: Tracks what has been ingested into the knowledge base
package store

import (
	"database/sql"
	"time"
)

// DocumentRecord is one registry row for an ingested document.
type DocumentRecord struct {
	DocumentID string    `json:"document_id"`
	Origin     string    `json:"origin"`
	ChunkCount int       `json:"chunk_count"`
	CharCount  int       `json:"char_count"`
	IngestedAt time.Time `json:"ingested_at"`
}

// DocumentStore handles the knowledge base registry
type DocumentStore struct {
	db *DB
}

// NewDocumentStore creates a new DocumentStore
func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// Record saves or updates a registry row (upsert on document ID).
func (s *DocumentStore) Record(rec *DocumentRecord) error {
	if rec.IngestedAt.IsZero() {
		rec.IngestedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(`
		INSERT INTO documents (id, origin, chunk_count, char_count, ingested_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			origin = excluded.origin,
			chunk_count = excluded.chunk_count,
			char_count = excluded.char_count,
			ingested_at = excluded.ingested_at
	`, rec.DocumentID, rec.Origin, rec.ChunkCount, rec.CharCount, rec.IngestedAt)

	return err
}

// Get retrieves a registry row by document ID. Returns nil when not found.
func (s *DocumentStore) Get(documentID string) (*DocumentRecord, error) {
	var rec DocumentRecord

	err := s.db.QueryRow(`
		SELECT id, origin, chunk_count, char_count, ingested_at
		FROM documents
		WHERE id = ?
	`, documentID).Scan(&rec.DocumentID, &rec.Origin, &rec.ChunkCount,
		&rec.CharCount, &rec.IngestedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &rec, nil
}

// ListAll retrieves all registry rows, most recently ingested first.
func (s *DocumentStore) ListAll() ([]DocumentRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, origin, chunk_count, char_count, ingested_at
		FROM documents
		ORDER BY ingested_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var recs []DocumentRecord
	for rows.Next() {
		var rec DocumentRecord
		err := rows.Scan(&rec.DocumentID, &rec.Origin, &rec.ChunkCount,
			&rec.CharCount, &rec.IngestedAt)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}

	return recs, rows.Err()
}

// Delete removes a registry row.
func (s *DocumentStore) Delete(documentID string) error {
	_, err := s.db.Exec("DELETE FROM documents WHERE id = ?", documentID)
	return err
}

// Clear empties the registry.
func (s *DocumentStore) Clear() error {
	_, err := s.db.Exec("DELETE FROM documents")
	return err
}
