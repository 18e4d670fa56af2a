// ABOUTME: Shared application wiring for CLI commands
// ABOUTME: Opens config, stores, the vector index, and the coach pipeline
package commands

import (
	"fmt"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/fitstack/fitcoach/internal/config"
	"github.com/fitstack/fitcoach/internal/core"
	"github.com/fitstack/fitcoach/internal/index"
	"github.com/fitstack/fitcoach/internal/llm"
	"github.com/fitstack/fitcoach/internal/store"
)

// app bundles everything a command needs to run the pipeline.
type app struct {
	cfg           *config.Config
	client        *llm.Client
	coach         *core.Coach
	db            *store.DB
	conversations *store.ConversationStore
	turns         *store.TurnStore
	documents     *store.DocumentStore

	indexPath string
}

// openApp loads configuration and opens the database and vector index.
func openApp() (*app, error) {
	// Load .env if present; environment wins over defaults either way
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	db, err := store.Open(filepath.Join(cfg.DataDir, "fitcoach.db"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	indexPath := filepath.Join(cfg.DataDir, "index.gob")
	ix, err := index.Load(indexPath, index.MetricCosine)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("loading vector index: %w", err)
	}

	client := llm.New(cfg)

	return &app{
		cfg:           cfg,
		client:        client,
		coach:         core.NewCoach(cfg, client, ix),
		db:            db,
		conversations: store.NewConversationStore(db),
		turns:         store.NewTurnStore(db),
		documents:     store.NewDocumentStore(db),
		indexPath:     indexPath,
	}, nil
}

// saveIndex persists the vector index after mutations.
func (a *app) saveIndex() error {
	if err := a.coach.Index().Save(a.indexPath); err != nil {
		return fmt.Errorf("saving vector index: %w", err)
	}
	return nil
}

// close releases the database connection.
func (a *app) close() {
	_ = a.db.Close()
}
