// ABOUTME: Tests for turn storage operations
// ABOUTME: Verifies appends, bounded views, cascades, and auto-titling
package store

import (
	"strings"
	"testing"

	"github.com/fitstack/fitcoach/internal/models"
)

func appendTurn(t *testing.T, store *TurnStore, convID string, role models.Role, content string, sources []models.SourceRef) {
	t.Helper()
	turn, err := models.NewTurn(role, content, sources)
	if err != nil {
		t.Fatalf("NewTurn() error = %v", err)
	}
	if err := store.Append(convID, turn); err != nil {
		t.Fatalf("Append(%q) error = %v", content, err)
	}
}

func TestTurnStore_FailedAppendRollsBack(t *testing.T) {
	db := testDB(t)
	convStore := NewConversationStore(db)
	turnStore := NewTurnStore(db)

	conv, err := convStore.Create("")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	first, err := models.NewTurn(models.RoleUser, "how heavy should I squat", nil)
	if err != nil {
		t.Fatalf("NewTurn() error = %v", err)
	}
	if err := turnStore.Append(conv.ConversationID, first); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	// Reusing the turn ID makes the insert fail mid-append; the whole
	// write must roll back, leaving seq and turn_count in step.
	dup, err := models.NewTurn(models.RoleAssistant, "Start with the bar.", nil)
	if err != nil {
		t.Fatalf("NewTurn() error = %v", err)
	}
	dup.TurnID = first.TurnID
	if err := turnStore.Append(conv.ConversationID, dup); err == nil {
		t.Fatal("Append() with duplicate turn ID should fail")
	}

	turns, err := turnStore.GetByConversation(conv.ConversationID)
	if err != nil {
		t.Fatalf("GetByConversation() error = %v", err)
	}
	if len(turns) != 1 {
		t.Fatalf("got %d turns after failed append, want 1", len(turns))
	}

	got, err := convStore.Get(conv.ConversationID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.TurnCount != len(turns) {
		t.Errorf("turn_count = %d, want %d stored turns", got.TurnCount, len(turns))
	}
}

func TestTurnStore_AppendAndGetByConversation(t *testing.T) {
	db := testDB(t)
	convStore := NewConversationStore(db)
	turnStore := NewTurnStore(db)

	conv, err := convStore.Create("")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	sources := []models.SourceRef{
		{ChunkID: "c1", DocumentID: "doc", Origin: "doc.md", Score: 0.87},
	}
	appendTurn(t, turnStore, conv.ConversationID, models.RoleUser, "how much protein do I need", nil)
	appendTurn(t, turnStore, conv.ConversationID, models.RoleAssistant, "About 1.6g per kg of bodyweight.", sources)

	turns, err := turnStore.GetByConversation(conv.ConversationID)
	if err != nil {
		t.Fatalf("GetByConversation() error = %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("got %d turns, want 2", len(turns))
	}
	if turns[0].Role != models.RoleUser || turns[1].Role != models.RoleAssistant {
		t.Errorf("turns out of order: %v then %v", turns[0].Role, turns[1].Role)
	}
	if len(turns[1].Sources) != 1 || turns[1].Sources[0].ChunkID != "c1" {
		t.Errorf("sources = %+v, want the stored citation", turns[1].Sources)
	}

	got, err := convStore.Get(conv.ConversationID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.TurnCount != 2 {
		t.Errorf("turn_count = %d, want 2", got.TurnCount)
	}
}

func TestTurnStore_AppendToMissingConversation(t *testing.T) {
	db := testDB(t)
	turnStore := NewTurnStore(db)

	turn, err := models.NewTurn(models.RoleUser, "hello", nil)
	if err != nil {
		t.Fatalf("NewTurn() error = %v", err)
	}
	if err := turnStore.Append("conv_missing", turn); err == nil {
		t.Error("expected error appending to a missing conversation")
	}
}

func TestTurnStore_AutoTitle(t *testing.T) {
	db := testDB(t)
	convStore := NewConversationStore(db)
	turnStore := NewTurnStore(db)

	conv, err := convStore.Create("")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	long := strings.Repeat("a", 100)
	appendTurn(t, turnStore, conv.ConversationID, models.RoleUser, long, nil)

	got, err := convStore.Get(conv.ConversationID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Title == "" {
		t.Fatal("first user turn did not title the conversation")
	}
	if len([]rune(got.Title)) > titleLimit {
		t.Errorf("auto title length = %d, want <= %d", len([]rune(got.Title)), titleLimit)
	}
	if !strings.HasSuffix(got.Title, "...") {
		t.Errorf("long auto title = %q, want ellipsis suffix", got.Title)
	}

	// A later user turn must not rename the conversation.
	appendTurn(t, turnStore, conv.ConversationID, models.RoleUser, "different question", nil)
	after, err := convStore.Get(conv.ConversationID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if after.Title != got.Title {
		t.Errorf("title changed from %q to %q", got.Title, after.Title)
	}
}

func TestTurnStore_LoadViewBoundedOldestFirst(t *testing.T) {
	db := testDB(t)
	convStore := NewConversationStore(db)
	turnStore := NewTurnStore(db)

	conv, err := convStore.Create("history")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	contents := []string{"one", "two", "three", "four", "five"}
	for _, c := range contents {
		appendTurn(t, turnStore, conv.ConversationID, models.RoleUser, c, nil)
	}

	view, err := turnStore.LoadView(conv.ConversationID, 3)
	if err != nil {
		t.Fatalf("LoadView() error = %v", err)
	}
	if view.ConversationID != conv.ConversationID {
		t.Errorf("view ID = %q, want %q", view.ConversationID, conv.ConversationID)
	}
	if len(view.Turns) != 3 {
		t.Fatalf("view = %d turns, want 3", len(view.Turns))
	}
	for i, want := range []string{"three", "four", "five"} {
		if view.Turns[i].Content != want {
			t.Errorf("view.Turns[%d] = %q, want %q", i, view.Turns[i].Content, want)
		}
	}
}

func TestTurnStore_LoadViewMissingConversation(t *testing.T) {
	db := testDB(t)
	turnStore := NewTurnStore(db)

	view, err := turnStore.LoadView("conv_missing", 10)
	if err != nil {
		t.Fatalf("LoadView() error = %v", err)
	}
	if len(view.Turns) != 0 {
		t.Errorf("view = %d turns, want empty", len(view.Turns))
	}
}

func TestTurnStore_CascadeDelete(t *testing.T) {
	db := testDB(t)
	convStore := NewConversationStore(db)
	turnStore := NewTurnStore(db)

	conv, err := convStore.Create("doomed")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	appendTurn(t, turnStore, conv.ConversationID, models.RoleUser, "hello", nil)

	if err := convStore.Delete(conv.ConversationID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	turns, err := turnStore.GetByConversation(conv.ConversationID)
	if err != nil {
		t.Fatalf("GetByConversation() error = %v", err)
	}
	if len(turns) != 0 {
		t.Errorf("turns survived conversation delete: %d", len(turns))
	}
}
