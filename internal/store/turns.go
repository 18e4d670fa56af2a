// ABOUTME: Turn storage operations for SQLite
// ABOUTME: Appends messages and loads the bounded view handed to the pipeline
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fitstack/fitcoach/internal/models"
)

// titleLimit caps auto-generated conversation titles.
const titleLimit = 60

// TurnStore handles turn persistence
type TurnStore struct {
	db *DB
}

// NewTurnStore creates a new TurnStore
func NewTurnStore(db *DB) *TurnStore {
	return &TurnStore{db: db}
}

// Append stores a turn at the end of a conversation and bumps the
// conversation's turn count, in one transaction so seq and turn_count
// never drift apart. The first user turn titles an untitled
// conversation.
func (s *TurnStore) Append(conversationID string, turn *models.Turn) error {
	var sourcesJSON sql.NullString
	if len(turn.Sources) > 0 {
		data, err := json.Marshal(turn.Sources)
		if err != nil {
			return err
		}
		sourcesJSON = sql.NullString{String: string(data), Valid: true}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var seq int
	err = tx.QueryRow(`
		SELECT turn_count FROM conversations WHERE id = ?
	`, conversationID).Scan(&seq)
	if err == sql.ErrNoRows {
		return fmt.Errorf("conversation %s not found", conversationID)
	}
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO turns (id, conversation_id, seq, role, content, sources, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, turn.TurnID, conversationID, seq, string(turn.Role), turn.Content,
		sourcesJSON, turn.CreatedAt)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		UPDATE conversations
		SET turn_count = turn_count + 1, updated_at = ?
		WHERE id = ?
	`, time.Now().UTC(), conversationID)
	if err != nil {
		return err
	}

	if turn.Role == models.RoleUser {
		_, err = tx.Exec(`
			UPDATE conversations
			SET title = ?
			WHERE id = ? AND (title IS NULL OR title = '')
		`, autoTitle(turn.Content), conversationID)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByConversation retrieves all turns of a conversation, oldest first.
func (s *TurnStore) GetByConversation(conversationID string) ([]models.Turn, error) {
	rows, err := s.db.Query(`
		SELECT id, role, content, sources, created_at
		FROM turns
		WHERE conversation_id = ?
		ORDER BY seq ASC
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return s.scanTurns(rows)
}

// LoadView loads the last maxTurns turns of a conversation, oldest
// first, ready for context assembly. An unknown conversation yields an
// empty view with the requested ID.
func (s *TurnStore) LoadView(conversationID string, maxTurns int) (models.ConversationView, error) {
	view := models.ConversationView{ConversationID: conversationID}

	rows, err := s.db.Query(`
		SELECT id, role, content, sources, created_at
		FROM turns
		WHERE conversation_id = ?
		ORDER BY seq DESC
		LIMIT ?
	`, conversationID, maxTurns)
	if err != nil {
		return view, err
	}
	defer func() { _ = rows.Close() }()

	turns, err := s.scanTurns(rows)
	if err != nil {
		return view, err
	}

	// Newest-first from the query; the view wants oldest-first.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}

	view.Turns = turns
	return view, nil
}

// scanTurns scans rows into a slice of Turn
func (s *TurnStore) scanTurns(rows *sql.Rows) ([]models.Turn, error) {
	var turns []models.Turn

	for rows.Next() {
		var (
			turn        models.Turn
			role        string
			sourcesJSON sql.NullString
		)

		err := rows.Scan(&turn.TurnID, &role, &turn.Content, &sourcesJSON, &turn.CreatedAt)
		if err != nil {
			return nil, err
		}

		turn.Role = models.Role(role)

		if sourcesJSON.Valid && sourcesJSON.String != "" {
			if err := json.Unmarshal([]byte(sourcesJSON.String), &turn.Sources); err != nil {
				turn.Sources = nil
			}
		}

		turns = append(turns, turn)
	}

	return turns, rows.Err()
}

// autoTitle derives a conversation title from its first user message.
func autoTitle(content string) string {
	runes := []rune(content)
	if len(runes) <= titleLimit {
		return content
	}
	return string(runes[:titleLimit-3]) + "..."
}
