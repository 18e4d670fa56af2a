// ABOUTME: Centralized configuration for the fitness coach RAG engine
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all runtime parameters. Components receive it (or the
// relevant slice of it) at construction time rather than reading the
// environment themselves.
type Config struct {
	// Model endpoint settings. BaseURL points at any OpenAI-compatible
	// server; the default is a local Ollama instance.
	BaseURL        string
	APIKey         string
	EmbeddingModel string
	ChatModel      string
	EmbedTimeout   time.Duration
	ChatTimeout    time.Duration
	MaxRetries     int
	RetryDelay     time.Duration

	// Retrieval pipeline settings.
	ChunkSize       int
	ChunkOverlap    int
	TopK            int
	MinScore        float64
	MaxHistoryTurns int
	MaxContextChars int
	IngestWorkers   int
	EmbedBatchSize  int

	// Storage settings.
	DataDir string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		BaseURL:         getEnv("FITCOACH_BASE_URL", "http://localhost:11434/v1"),
		APIKey:          getEnv("FITCOACH_API_KEY", "ollama"),
		EmbeddingModel:  getEnv("FITCOACH_EMBEDDING_MODEL", "bge-m3"),
		ChatModel:       getEnv("FITCOACH_CHAT_MODEL", "deepseek-r1:7b"),
		EmbedTimeout:    getEnvDuration("FITCOACH_EMBED_TIMEOUT", 30*time.Second),
		ChatTimeout:     getEnvDuration("FITCOACH_CHAT_TIMEOUT", 120*time.Second),
		MaxRetries:      getEnvInt("FITCOACH_MAX_RETRIES", 2),
		RetryDelay:      getEnvDuration("FITCOACH_RETRY_DELAY", time.Second),
		ChunkSize:       getEnvInt("FITCOACH_CHUNK_SIZE", 500),
		ChunkOverlap:    getEnvInt("FITCOACH_CHUNK_OVERLAP", 50),
		TopK:            getEnvInt("FITCOACH_TOP_K", 5),
		MinScore:        getEnvFloat("FITCOACH_MIN_SCORE", 0.3),
		MaxHistoryTurns: getEnvInt("FITCOACH_MAX_HISTORY_TURNS", 10),
		MaxContextChars: getEnvInt("FITCOACH_MAX_CONTEXT_CHARS", 16000),
		IngestWorkers:   getEnvInt("FITCOACH_INGEST_WORKERS", 4),
		EmbedBatchSize:  getEnvInt("FITCOACH_EMBED_BATCH_SIZE", 16),
		DataDir:         getEnv("FITCOACH_DATA_DIR", defaultDataDir()),
	}

	return cfg, cfg.Validate()
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("FITCOACH_CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("FITCOACH_CHUNK_OVERLAP must be in [0, chunk size), got %d", c.ChunkOverlap)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("FITCOACH_TOP_K must be positive, got %d", c.TopK)
	}
	if c.MinScore < -1 || c.MinScore > 1 {
		return fmt.Errorf("FITCOACH_MIN_SCORE must be in [-1, 1], got %f", c.MinScore)
	}
	if c.MaxHistoryTurns < 0 {
		return fmt.Errorf("FITCOACH_MAX_HISTORY_TURNS must be >= 0, got %d", c.MaxHistoryTurns)
	}
	if c.MaxContextChars <= 0 {
		return fmt.Errorf("FITCOACH_MAX_CONTEXT_CHARS must be positive, got %d", c.MaxContextChars)
	}
	if c.IngestWorkers <= 0 {
		return fmt.Errorf("FITCOACH_INGEST_WORKERS must be positive, got %d", c.IngestWorkers)
	}
	if c.EmbedBatchSize <= 0 {
		return fmt.Errorf("FITCOACH_EMBED_BATCH_SIZE must be positive, got %d", c.EmbedBatchSize)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("FITCOACH_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	return nil
}

// defaultDataDir returns the XDG-compliant data directory.
func defaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return ".local/share/fitcoach"
		}
		dataHome = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataHome, "fitcoach")
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
