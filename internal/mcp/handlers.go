// ABOUTME: MCP tool handler implementations for the fitness coach server
// ABOUTME: Bridges tool calls onto the retrieval pipeline and local stores
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/fitstack/fitcoach/internal/core"
	"github.com/fitstack/fitcoach/internal/models"
	"github.com/fitstack/fitcoach/internal/store"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	coach           *core.Coach
	conversations   *store.ConversationStore
	turns           *store.TurnStore
	documents       *store.DocumentStore
	maxHistoryTurns int
}

// Ask handles the ask tool. The streamed answer is drained into a single
// response because MCP tool calls are request/response.
func (h *Handlers) Ask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("question argument is required and must be a string"), nil
	}

	conversationID := request.GetString("conversation_id", "")

	view := models.ConversationView{}
	if conversationID != "" {
		conv, err := h.conversations.Get(conversationID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to load conversation: %v", err)), nil
		}
		if conv == nil {
			return mcp.NewToolResultError(fmt.Sprintf("conversation %s not found", conversationID)), nil
		}
		view, err = h.turns.LoadView(conversationID, h.maxHistoryTurns)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to load history: %v", err)), nil
		}
	}

	events, passages, err := h.coach.Ask(ctx, view, question)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ask failed: %v", err)), nil
	}

	var answer strings.Builder
	sources := make([]models.SourceRef, 0, len(passages))
	for ev := range events {
		switch ev.Type {
		case core.EventTextDelta:
			answer.WriteString(ev.Text)
		case core.EventCitation:
			sources = append(sources, *ev.Citation)
		case core.EventError:
			return mcp.NewToolResultError(fmt.Sprintf("generation failed: %v", ev.Err)), nil
		}
	}

	if conversationID != "" {
		if err := h.persistExchange(conversationID, question, answer.String(), sources); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to save turns: %v", err)), nil
		}
	}

	response := map[string]interface{}{
		"answer":  answer.String(),
		"sources": sources,
	}
	if conversationID != "" {
		response["conversation_id"] = conversationID
	}

	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}

	return mcp.NewToolResultText(string(responseJSON)), nil
}

// SearchKnowledge handles the search_knowledge tool
func (h *Handlers) SearchKnowledge(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}

	maxResults := request.GetInt("max_results", 5)

	passages, err := h.coach.Search(ctx, query, maxResults)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	results := make([]map[string]interface{}, 0, len(passages))
	for _, p := range passages {
		results = append(results, map[string]interface{}{
			"chunk_id":    p.Entry.ChunkID,
			"document_id": p.Entry.DocumentID,
			"origin":      p.Entry.Origin,
			"text":        p.Entry.Text,
			"score":       p.Score,
			"rank":        p.Rank,
		})
	}

	responseJSON, err := json.Marshal(map[string]interface{}{"passages": results})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}

	return mcp.NewToolResultText(string(responseJSON)), nil
}

// AddKnowledge handles the add_knowledge tool
func (h *Handlers) AddKnowledge(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text argument is required and must be a string"), nil
	}

	origin := request.GetString("origin", "")
	documentID := request.GetString("document_id", "")

	doc, err := models.NewDocument(documentID, origin, text)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid document: %v", err)), nil
	}

	chunks, err := h.coach.IngestDocument(ctx, doc.DocumentID, doc.Origin, doc.Text)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ingestion failed: %v", err)), nil
	}

	if err := h.documents.Record(&store.DocumentRecord{
		DocumentID: doc.DocumentID,
		Origin:     doc.Origin,
		ChunkCount: chunks,
		CharCount:  len([]rune(doc.Text)),
	}); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to record document: %v", err)), nil
	}

	responseJSON, err := json.Marshal(map[string]interface{}{
		"document_id": doc.DocumentID,
		"origin":      doc.Origin,
		"chunks":      chunks,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}

	return mcp.NewToolResultText(string(responseJSON)), nil
}

// KnowledgeStats handles the knowledge_stats tool
func (h *Handlers) KnowledgeStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats := h.coach.Stats()

	responseJSON, err := json.Marshal(stats)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}

	return mcp.NewToolResultText(string(responseJSON)), nil
}

// persistExchange appends the question and the answer to the conversation.
func (h *Handlers) persistExchange(conversationID, question, answer string, sources []models.SourceRef) error {
	userTurn, err := models.NewTurn(models.RoleUser, question, nil)
	if err != nil {
		return err
	}
	if err := h.turns.Append(conversationID, userTurn); err != nil {
		return err
	}

	if strings.TrimSpace(answer) == "" {
		return nil
	}
	assistantTurn, err := models.NewTurn(models.RoleAssistant, answer, sources)
	if err != nil {
		return err
	}
	return h.turns.Append(conversationID, assistantTurn)
}
