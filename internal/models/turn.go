// ABOUTME: Turn represents a single conversation exchange (one role, one message)
// ABOUTME: Core data structure for bounded conversation context
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role identifies who produced a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single message in a conversation. Assistant turns may carry
// the sources that grounded the answer.
type Turn struct {
	TurnID    string      `json:"turn_id"`
	Role      Role        `json:"role"`
	Content   string      `json:"content"`
	Sources   []SourceRef `json:"sources,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// SourceRef points an answer back at the passage that grounded it.
type SourceRef struct {
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"document_id"`
	Origin     string  `json:"origin"`
	Score      float64 `json:"score"`
}

// NewTurn creates a Turn with validation.
func NewTurn(role Role, content string, sources []SourceRef) (*Turn, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errors.New("turn content cannot be empty")
	}
	if role != RoleUser && role != RoleAssistant {
		return nil, fmt.Errorf("unknown role %q", role)
	}
	return &Turn{
		TurnID:    generateTurnID(),
		Role:      role,
		Content:   content,
		Sources:   sources,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// generateTurnID generates a unique turn identifier.
func generateTurnID() string {
	return fmt.Sprintf("turn_%s_%s", time.Now().Format("20060102_150405"), uuid.New().String()[:8])
}
