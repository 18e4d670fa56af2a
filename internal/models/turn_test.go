// ABOUTME: Tests for Turn construction and validation
// ABOUTME: Verifies roles, content checks, and source attachment
package models

import (
	"strings"
	"testing"
)

func TestNewTurn(t *testing.T) {
	sources := []SourceRef{{ChunkID: "c1", DocumentID: "d1", Origin: "d1.md", Score: 0.8}}

	turn, err := NewTurn(RoleAssistant, "Rest 2-3 minutes between heavy sets.", sources)
	if err != nil {
		t.Fatalf("NewTurn() error = %v", err)
	}
	if !strings.HasPrefix(turn.TurnID, "turn_") {
		t.Errorf("TurnID = %q, want turn_ prefix", turn.TurnID)
	}
	if turn.Role != RoleAssistant {
		t.Errorf("Role = %q", turn.Role)
	}
	if len(turn.Sources) != 1 || turn.Sources[0].ChunkID != "c1" {
		t.Errorf("Sources = %+v", turn.Sources)
	}
	if turn.CreatedAt.IsZero() {
		t.Error("CreatedAt not stamped")
	}
}

func TestNewTurn_Validation(t *testing.T) {
	tests := []struct {
		name    string
		role    Role
		content string
	}{
		{"empty content", RoleUser, "   "},
		{"unknown role", Role("system"), "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTurn(tt.role, tt.content, nil); err == nil {
				t.Error("expected error")
			}
		})
	}
}
