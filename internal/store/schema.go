// ABOUTME: SQLite database schema for conversation and document storage
// ABOUTME: Creates all tables and indexes for local persistence
package store

// Schema contains all SQL statements for database initialization
const Schema = `
-- Conversations table (chat threads)
CREATE TABLE IF NOT EXISTS conversations (
    id TEXT PRIMARY KEY,
    title TEXT,
    turn_count INTEGER DEFAULT 0,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Turns table (individual messages within a conversation)
CREATE TABLE IF NOT EXISTS turns (
    id TEXT PRIMARY KEY,
    conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
    seq INTEGER NOT NULL,
    role TEXT NOT NULL,
    content TEXT NOT NULL,
    sources TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Documents table (knowledge base registry)
CREATE TABLE IF NOT EXISTS documents (
    id TEXT PRIMARY KEY,
    origin TEXT NOT NULL,
    chunk_count INTEGER DEFAULT 0,
    char_count INTEGER DEFAULT 0,
    ingested_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Indexes for efficient querying
CREATE INDEX IF NOT EXISTS idx_turns_conversation ON turns(conversation_id, seq);
CREATE INDEX IF NOT EXISTS idx_conversations_updated ON conversations(updated_at);
CREATE INDEX IF NOT EXISTS idx_documents_origin ON documents(origin);
`

// SchemaVersion is the current schema version for migrations
const SchemaVersion = 1
