// ABOUTME: Document represents an ingested knowledge source
// ABOUTME: Immutable once chunked; removed only by deleting its derived chunks
package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Document is a raw knowledge source (a file or pasted text).
type Document struct {
	DocumentID string    `json:"document_id"`
	Origin     string    `json:"origin"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewDocument creates a Document with validation.
// An empty id gets a generated one; origin defaults to the id.
func NewDocument(id, origin, text string) (*Document, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("document text cannot be empty")
	}
	if id == "" {
		id = GenerateDocumentID()
	}
	if origin == "" {
		origin = id
	}
	return &Document{
		DocumentID: id,
		Origin:     origin,
		Text:       text,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// GenerateDocumentID generates a unique document identifier.
func GenerateDocumentID() string {
	return "doc_" + uuid.New().String()
}
