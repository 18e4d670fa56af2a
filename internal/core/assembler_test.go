// ABOUTME: Tests for the context assembler
// ABOUTME: Covers ordering, budget trimming priority, and overflow failure
package core

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/fitstack/fitcoach/internal/models"
)

func turn(role models.Role, content string) models.Turn {
	return models.Turn{TurnID: "t_" + content[:3], Role: role, Content: content}
}

func passage(id string, score float64, text string) models.RetrievedPassage {
	return models.RetrievedPassage{
		Entry: models.IndexEntry{ChunkID: id, DocumentID: "doc", Origin: "doc.md", Text: text},
		Score: score,
	}
}

func TestAssemble_StructureAndOrder(t *testing.T) {
	a := NewAssembler("You are a coach.", 10)

	view := models.ConversationView{Turns: []models.Turn{
		turn(models.RoleUser, "first question"),
		turn(models.RoleAssistant, "first answer"),
	}}
	passages := []models.RetrievedPassage{
		passage("p1", 0.9, "squat depth cues"),
		passage("p2", 0.6, "rest day guidance"),
	}

	prompt, err := a.Assemble(view, passages, "how deep should I squat", 10000)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	messages := prompt.Messages()
	if messages[0].Role != openai.ChatMessageRoleSystem {
		t.Error("first message must be the system instructions")
	}
	if messages[1].Content != "first question" || messages[1].Role != openai.ChatMessageRoleUser {
		t.Error("history must follow the system message, oldest first")
	}
	if messages[2].Role != openai.ChatMessageRoleAssistant {
		t.Error("assistant turn must keep its role")
	}

	last := messages[len(messages)-1]
	if last.Role != openai.ChatMessageRoleUser {
		t.Error("final message must be the user query")
	}
	// Passages render highest score first, ahead of the query.
	p1 := strings.Index(last.Content, "squat depth cues")
	p2 := strings.Index(last.Content, "rest day guidance")
	q := strings.Index(last.Content, "how deep should I squat")
	if p1 == -1 || p2 == -1 || q == -1 {
		t.Fatalf("final message missing passages or query: %q", last.Content)
	}
	if !(p1 < p2 && p2 < q) {
		t.Error("final message order must be passages (score desc) then query")
	}
}

func TestAssemble_DropsLowestScoredPassageFirst(t *testing.T) {
	a := NewAssembler("sys", 10)

	passages := []models.RetrievedPassage{
		passage("high", 0.9, strings.Repeat("h", 200)),
		passage("low", 0.4, strings.Repeat("l", 200)),
	}

	// Budget fits system + query + one passage, not two.
	budget := len("sys") + len("the query") + 400
	prompt, err := a.Assemble(models.ConversationView{}, passages, "the query", budget)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	if len(prompt.Passages) != 1 {
		t.Fatalf("kept %d passages, want 1", len(prompt.Passages))
	}
	if prompt.Passages[0].Entry.ChunkID != "high" {
		t.Errorf("kept passage = %s, want the higher-scoring one", prompt.Passages[0].Entry.ChunkID)
	}
	if prompt.size() > budget {
		t.Errorf("prompt size %d exceeds budget %d", prompt.size(), budget)
	}
}

func TestAssemble_DropsOldestTurnsAfterPassages(t *testing.T) {
	a := NewAssembler("sys", 10)

	view := models.ConversationView{Turns: []models.Turn{
		turn(models.RoleUser, strings.Repeat("old turn ", 30)),
		turn(models.RoleAssistant, strings.Repeat("mid turn ", 30)),
		turn(models.RoleUser, "new question"),
	}}
	passages := []models.RetrievedPassage{passage("p1x", 0.9, strings.Repeat("p", 300))}

	// Enough for system, query, and the newest turn only.
	budget := len("sys") + len("query") + len("new question") + 50
	prompt, err := a.Assemble(view, passages, "query", budget)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	if len(prompt.Passages) != 0 {
		t.Errorf("passages must be dropped before turns, kept %d", len(prompt.Passages))
	}
	if len(prompt.History) != 1 || prompt.History[0].Content != "new question" {
		t.Errorf("history = %d turns, want only the newest", len(prompt.History))
	}
	if prompt.size() > budget {
		t.Errorf("prompt size %d exceeds budget %d", prompt.size(), budget)
	}
}

func TestAssemble_NeverTrimsQuery(t *testing.T) {
	a := NewAssembler("sys", 10)

	query := strings.Repeat("q", 100)
	prompt, err := a.Assemble(models.ConversationView{}, nil, query, len("sys")+100)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if prompt.Query != query {
		t.Error("query must never be trimmed")
	}
}

func TestAssemble_ContextOverflow(t *testing.T) {
	a := NewAssembler(strings.Repeat("s", 100), 10)

	_, err := a.Assemble(models.ConversationView{}, nil, strings.Repeat("q", 100), 150)
	if !errors.Is(err, ErrContextOverflow) {
		t.Errorf("error = %v, want ErrContextOverflow", err)
	}
}

func TestAssemble_ExactBoundaryDropsPassageNotQuery(t *testing.T) {
	a := NewAssembler("sys", 10)

	query := "the exact query"
	budget := len("sys") + len(query) // exactly system + query

	prompt, err := a.Assemble(models.ConversationView{}, []models.RetrievedPassage{
		passage("p1x", 0.5, "anything at all"),
	}, query, budget)
	if err != nil {
		t.Fatalf("Assemble() error = %v, query and system alone fit exactly", err)
	}
	if len(prompt.Passages) != 0 {
		t.Error("the passage must be dropped at the boundary, never the query")
	}
	if prompt.Query != query {
		t.Error("query altered")
	}
}

func TestAssemble_ClampsHistoryToMaxTurns(t *testing.T) {
	a := NewAssembler("sys", 2)

	view := models.ConversationView{Turns: []models.Turn{
		turn(models.RoleUser, "one"),
		turn(models.RoleAssistant, "two"),
		turn(models.RoleUser, "three"),
		turn(models.RoleAssistant, "four"),
	}}

	prompt, err := a.Assemble(view, nil, "q", 10000)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if len(prompt.History) != 2 {
		t.Fatalf("history = %d turns, want 2", len(prompt.History))
	}
	if prompt.History[0].Content != "three" || prompt.History[1].Content != "four" {
		t.Error("clamping must keep the most recent turns")
	}
}

func TestAssemble_Deterministic(t *testing.T) {
	a := NewAssembler("sys", 10)
	view := models.ConversationView{Turns: []models.Turn{turn(models.RoleUser, "hello there")}}
	passages := []models.RetrievedPassage{passage("p1x", 0.8, "some passage")}

	first, err := a.Assemble(view, passages, "query", 10000)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	second, err := a.Assemble(view, passages, "query", 10000)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	fm, sm := first.Messages(), second.Messages()
	if len(fm) != len(sm) {
		t.Fatalf("message counts differ")
	}
	for i := range fm {
		if !reflect.DeepEqual(fm[i], sm[i]) {
			t.Errorf("message %d differs between identical assemblies", i)
		}
	}
}
