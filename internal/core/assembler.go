// ABOUTME: Context assembler merging history and retrieved passages into one prompt
// ABOUTME: Enforces the character budget; passages trim before turns, the query never trims
package core

import (
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/fitstack/fitcoach/internal/models"
)

// Prompt is the assembled, ordered structure sent to the generator:
// system instructions, retained turns oldest-first, retrieved passages
// highest-score-first, then the current user query.
type Prompt struct {
	System   string
	History  []models.Turn
	Passages []models.RetrievedPassage
	Query    string
}

// Assembler builds prompts deterministically; it holds no hidden state.
type Assembler struct {
	system          string
	maxHistoryTurns int
}

// NewAssembler creates an Assembler with fixed system instructions and a
// cap on retained conversation turns.
func NewAssembler(system string, maxHistoryTurns int) *Assembler {
	return &Assembler{system: system, maxHistoryTurns: maxHistoryTurns}
}

// Assemble merges the conversation view and retrieved passages with the
// query under maxChars. Trimming order: lowest-scored passages first, then
// oldest turns. System instructions and the query are never trimmed; if
// they alone exceed the budget the call fails with ErrContextOverflow.
func (a *Assembler) Assemble(view models.ConversationView, passages []models.RetrievedPassage, query string, maxChars int) (*Prompt, error) {
	history := view.Turns
	if a.maxHistoryTurns >= 0 && len(history) > a.maxHistoryTurns {
		history = history[len(history)-a.maxHistoryTurns:]
	}

	prompt := &Prompt{
		System:   a.system,
		History:  append([]models.Turn(nil), history...),
		Passages: append([]models.RetrievedPassage(nil), passages...),
		Query:    query,
	}

	fixed := len(renderSystem(a.system)) + len(renderQuery(query, nil))
	if fixed > maxChars {
		return nil, fmt.Errorf("%w: system and query need %d chars, budget is %d",
			ErrContextOverflow, fixed, maxChars)
	}

	for prompt.size() > maxChars && len(prompt.Passages) > 0 {
		prompt.Passages = prompt.Passages[:len(prompt.Passages)-1]
	}
	for prompt.size() > maxChars && len(prompt.History) > 0 {
		prompt.History = prompt.History[1:]
	}

	return prompt, nil
}

// size is the total rendered length in characters.
func (p *Prompt) size() int {
	total := len(renderSystem(p.System)) + len(renderQuery(p.Query, p.Passages))
	for _, t := range p.History {
		total += len(t.Content)
	}
	return total
}

// Messages renders the prompt as chat messages for the generation call.
func (p *Prompt) Messages() []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(p.History)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: renderSystem(p.System),
	})

	for _, t := range p.History {
		role := openai.ChatMessageRoleUser
		if t.Role == models.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: t.Content,
		})
	}

	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: renderQuery(p.Query, p.Passages),
	})
	return messages
}

func renderSystem(system string) string {
	return system
}

// renderQuery formats the grounding passages ahead of the current query
// in the final user message.
func renderQuery(query string, passages []models.RetrievedPassage) string {
	if len(passages) == 0 {
		return query
	}

	var sb strings.Builder
	sb.WriteString("Reference material from the knowledge base:\n\n")
	for i, p := range passages {
		fmt.Fprintf(&sb, "[%d] %s (relevance %.2f)\n%s\n\n", i+1, p.Entry.Origin, p.Score, p.Entry.Text)
	}
	sb.WriteString("Question: ")
	sb.WriteString(query)
	return sb.String()
}
