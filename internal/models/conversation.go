// ABOUTME: Conversation metadata and the in-memory view handed to the context assembler
// ABOUTME: Persistence of turns lives in the store package; the core only sees views
package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is the stored metadata for one chat thread.
type Conversation struct {
	ConversationID string    `json:"conversation_id"`
	Title          string    `json:"title"`
	TurnCount      int       `json:"turn_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ConversationView is the bounded, oldest-first slice of turns the
// retrieval core operates on. The caller owns eviction: the view never
// exceeds the configured maximum retained turns.
type ConversationView struct {
	ConversationID string `json:"conversation_id"`
	Turns          []Turn `json:"turns"`
}

// GenerateConversationID generates a unique conversation identifier.
func GenerateConversationID() string {
	return "conv_" + uuid.New().String()
}
