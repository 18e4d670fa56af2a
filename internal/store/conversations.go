// ABOUTME: Conversation storage operations for SQLite
// ABOUTME: Implements CRUD and listing for chat threads
package store

import (
	"database/sql"
	"time"

	"github.com/fitstack/fitcoach/internal/models"
)

// ConversationStore handles conversation persistence
type ConversationStore struct {
	db *DB
}

// NewConversationStore creates a new ConversationStore
func NewConversationStore(db *DB) *ConversationStore {
	return &ConversationStore{db: db}
}

// Create starts a new conversation and returns its metadata.
func (s *ConversationStore) Create(title string) (*models.Conversation, error) {
	now := time.Now().UTC()
	conv := &models.Conversation{
		ConversationID: models.GenerateConversationID(),
		Title:          title,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	_, err := s.db.Exec(`
		INSERT INTO conversations (id, title, turn_count, created_at, updated_at)
		VALUES (?, ?, 0, ?, ?)
	`, conv.ConversationID, conv.Title, conv.CreatedAt, conv.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return conv, nil
}

// Get retrieves conversation metadata by ID. Returns nil when not found.
func (s *ConversationStore) Get(conversationID string) (*models.Conversation, error) {
	var (
		conv  models.Conversation
		title sql.NullString
	)

	err := s.db.QueryRow(`
		SELECT id, title, turn_count, created_at, updated_at
		FROM conversations
		WHERE id = ?
	`, conversationID).Scan(&conv.ConversationID, &title, &conv.TurnCount,
		&conv.CreatedAt, &conv.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if title.Valid {
		conv.Title = title.String
	}

	return &conv, nil
}

// ListAll retrieves all conversations, most recently updated first.
func (s *ConversationStore) ListAll() ([]models.Conversation, error) {
	rows, err := s.db.Query(`
		SELECT id, title, turn_count, created_at, updated_at
		FROM conversations
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var convs []models.Conversation
	for rows.Next() {
		var (
			conv  models.Conversation
			title sql.NullString
		)

		err := rows.Scan(&conv.ConversationID, &title, &conv.TurnCount,
			&conv.CreatedAt, &conv.UpdatedAt)
		if err != nil {
			return nil, err
		}

		if title.Valid {
			conv.Title = title.String
		}

		convs = append(convs, conv)
	}

	return convs, rows.Err()
}

// Delete removes a conversation (turns cascade delete).
func (s *ConversationStore) Delete(conversationID string) error {
	_, err := s.db.Exec("DELETE FROM conversations WHERE id = ?", conversationID)
	return err
}

// Rename updates only the title of a conversation.
func (s *ConversationStore) Rename(conversationID, title string) error {
	_, err := s.db.Exec(`
		UPDATE conversations
		SET title = ?, updated_at = ?
		WHERE id = ?
	`, title, time.Now().UTC(), conversationID)
	return err
}
