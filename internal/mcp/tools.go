// ABOUTME: MCP tool definitions and registration for the fitness coach server
// ABOUTME: Defines JSON schemas for all 4 MCP tools
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/fitstack/fitcoach/internal/core"
	"github.com/fitstack/fitcoach/internal/store"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, coach *core.Coach, convStore *store.ConversationStore, turnStore *store.TurnStore, docStore *store.DocumentStore, maxHistoryTurns int) *Handlers {
	handlers := &Handlers{
		coach:           coach,
		conversations:   convStore,
		turns:           turnStore,
		documents:       docStore,
		maxHistoryTurns: maxHistoryTurns,
	}

	// 1. ask - Answer a fitness question grounded in the knowledge base
	server.AddTool(mcp.Tool{
		Name:        "ask",
		Description: "Ask the fitness coach a question. The answer is grounded in the ingested knowledge base and cites its sources.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"question": map[string]interface{}{
					"type":        "string",
					"description": "The fitness question to answer",
				},
				"conversation_id": map[string]interface{}{
					"type":        "string",
					"description": "Optional conversation to continue; omit for a one-off question",
				},
			},
			Required: []string{"question"},
		},
	}, handlers.Ask)

	// 2. search_knowledge - Semantic search over the knowledge base
	server.AddTool(mcp.Tool{
		Name:        "search_knowledge",
		Description: "Search the fitness knowledge base by semantic similarity and return the matching passages with scores.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query",
				},
				"max_results": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of passages to return (default: 5)",
					"default":     5,
				},
			},
			Required: []string{"query"},
		},
	}, handlers.SearchKnowledge)

	// 3. add_knowledge - Ingest a document into the knowledge base
	server.AddTool(mcp.Tool{
		Name:        "add_knowledge",
		Description: "Add a document to the fitness knowledge base. The text is chunked, embedded, and indexed; re-adding the same ID replaces the previous version.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Document text to ingest",
				},
				"origin": map[string]interface{}{
					"type":        "string",
					"description": "Human-readable source label (e.g. a filename)",
				},
				"document_id": map[string]interface{}{
					"type":        "string",
					"description": "Optional stable document ID; omit to generate one",
				},
			},
			Required: []string{"text"},
		},
	}, handlers.AddKnowledge)

	// 4. knowledge_stats - Knowledge base statistics
	server.AddTool(mcp.Tool{
		Name:        "knowledge_stats",
		Description: "Get knowledge base statistics: document and chunk counts, vector dimension, and configured models.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.KnowledgeStats)

	return handlers
}
