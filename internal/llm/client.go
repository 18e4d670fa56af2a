// ABOUTME: Client for any OpenAI-compatible model server (Ollama by default)
// ABOUTME: Provides embeddings, streamed chat completions, and a health probe
package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/fitstack/fitcoach/internal/config"
	"github.com/fitstack/fitcoach/internal/util"
)

// ErrUnavailable marks a remote model call that failed because the server
// was unreachable, timed out, or returned a malformed response. Callers
// match it with errors.Is.
var ErrUnavailable = errors.New("model server unavailable")

// Client wraps the OpenAI-compatible API with timeouts and retry logic.
// Retries apply to embeddings only; a generation stream is never retried
// once deltas may have been delivered.
type Client struct {
	api            *openai.Client
	embeddingModel string
	chatModel      string
	embedTimeout   time.Duration
	chatTimeout    time.Duration
	maxRetries     int
	retryDelay     time.Duration
}

// New creates a Client from configuration.
func New(cfg *config.Config) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	apiCfg.BaseURL = cfg.BaseURL

	return &Client{
		api:            openai.NewClientWithConfig(apiCfg),
		embeddingModel: cfg.EmbeddingModel,
		chatModel:      cfg.ChatModel,
		embedTimeout:   cfg.EmbedTimeout,
		chatTimeout:    cfg.ChatTimeout,
		maxRetries:     cfg.MaxRetries,
		retryDelay:     cfg.RetryDelay,
	}
}

// ChatModel returns the configured generation model name.
func (c *Client) ChatModel() string {
	return c.chatModel
}

// EmbeddingModel returns the configured embedding model name.
func (c *Client) EmbeddingModel() string {
	return c.embeddingModel
}

// Embed returns one vector per input text, in input order. The whole
// batch fails atomically: either every text gets a vector or an error
// is returned.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
			case <-time.After(util.Backoff(c.retryDelay, attempt)):
			}
		}

		vectors, err := c.embedOnce(ctx, texts)
		if err == nil {
			return vectors, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}

	return nil, lastErr
}

func (c *Client) embedOnce(ctx context.Context, texts []string) ([][]float64, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.embedTimeout)
	defer cancel()

	resp, err := c.api.CreateEmbeddings(callCtx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: openai.EmbeddingModel(c.embeddingModel),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d inputs",
			ErrUnavailable, len(resp.Data), len(texts))
	}

	// Response order is not guaranteed to match input order; the Index
	// field is authoritative.
	vectors := make([][]float64, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, fmt.Errorf("%w: embedding index %d out of range", ErrUnavailable, d.Index)
		}
		v := make([]float64, len(d.Embedding))
		for i, x := range d.Embedding {
			v[i] = float64(x)
		}
		vectors[d.Index] = v
	}
	for i, v := range vectors {
		if v == nil {
			return nil, fmt.Errorf("%w: missing embedding for input %d", ErrUnavailable, i)
		}
	}

	return vectors, nil
}

// StreamChat opens a streamed chat completion. The returned stream stays
// open until the caller closes it or ctx is cancelled; the caller owns
// both the stream and ctx lifetime.
func (c *Client) StreamChat(ctx context.Context, messages []openai.ChatCompletionMessage) (*openai.ChatCompletionStream, error) {
	stream, err := c.api.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    c.chatModel,
		Messages: messages,
		Stream:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return stream, nil
}

// ChatTimeout returns the configured generation timeout.
func (c *Client) ChatTimeout() time.Duration {
	return c.chatTimeout
}

// Health describes the model server's readiness.
type Health struct {
	Connected      bool
	Models         []string
	EmbeddingReady bool
	ChatReady      bool
}

// CheckHealth verifies the server is reachable and reports whether the
// configured embedding and chat models are installed.
func (c *Client) CheckHealth(ctx context.Context) Health {
	callCtx, cancel := context.WithTimeout(ctx, c.embedTimeout)
	defer cancel()

	resp, err := c.api.ListModels(callCtx)
	if err != nil {
		return Health{}
	}

	h := Health{Connected: true}
	for _, m := range resp.Models {
		h.Models = append(h.Models, m.ID)
		if modelMatches(m.ID, c.embeddingModel) {
			h.EmbeddingReady = true
		}
		if modelMatches(m.ID, c.chatModel) {
			h.ChatReady = true
		}
	}
	return h
}

// modelMatches compares model names ignoring an omitted ":latest" tag.
func modelMatches(installed, want string) bool {
	if installed == want {
		return true
	}
	return strings.TrimSuffix(installed, ":latest") == strings.TrimSuffix(want, ":latest")
}

// IsTimeout reports whether err stems from a deadline or network timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
