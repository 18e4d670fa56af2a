// ABOUTME: Answer generator streaming tagged events from the remote model
// ABOUTME: Finite, non-restartable event sequence with cooperative cancellation
package core

import (
	"context"
	"errors"
	"io"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/fitstack/fitcoach/internal/llm"
	"github.com/fitstack/fitcoach/internal/models"
)

// EventType tags one generation event.
type EventType int

const (
	EventTextDelta EventType = iota
	EventCitation
	EventDone
	EventError
)

// Event is one element of the generation stream. Exactly one terminal
// event (Done or Error) ends every stream; TextDeltas delivered before a
// terminal Error remain valid and are never retracted.
type Event struct {
	Type         EventType
	Text         string            // EventTextDelta
	Citation     *models.SourceRef // EventCitation
	FinishReason string            // EventDone
	Err          *GenerationError  // EventError
}

// ChatStream is the minimal surface of a streamed completion. The
// go-openai stream satisfies it directly.
type ChatStream interface {
	Recv() (openai.ChatCompletionStreamResponse, error)
	Close() error
}

// Generator drives the remote generative model and emits structured
// events. Each Generate call issues a fresh remote call; streams are not
// restartable.
type Generator struct {
	open    func(ctx context.Context, messages []openai.ChatCompletionMessage) (ChatStream, error)
	timeout time.Duration
}

// NewGenerator creates a Generator backed by the LLM client.
func NewGenerator(client *llm.Client) *Generator {
	return &Generator{
		open: func(ctx context.Context, messages []openai.ChatCompletionMessage) (ChatStream, error) {
			return client.StreamChat(ctx, messages)
		},
		timeout: client.ChatTimeout(),
	}
}

// newGeneratorWith wires a custom stream opener, used by tests.
func newGeneratorWith(open func(ctx context.Context, messages []openai.ChatCompletionMessage) (ChatStream, error), timeout time.Duration) *Generator {
	return &Generator{open: open, timeout: timeout}
}

// Generate streams the answer for the assembled prompt. The returned
// channel closes after a terminal Done or Error event. Cancelling ctx
// abandons the stream and releases the remote connection; one Citation is
// emitted up front for every passage included in the prompt's grounding
// section, regardless of whether the model text references it.
func (g *Generator) Generate(ctx context.Context, prompt *Prompt) <-chan Event {
	events := make(chan Event)

	go func() {
		defer close(events)

		streamCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		stream, err := g.open(streamCtx, prompt.Messages())
		if err != nil {
			emit(streamCtx, events, Event{Type: EventError, Err: classify(err)})
			return
		}
		defer stream.Close()

		for i := range prompt.Passages {
			ref := prompt.Passages[i].Source()
			if !emit(streamCtx, events, Event{Type: EventCitation, Citation: &ref}) {
				return
			}
		}

		finishReason := string(openai.FinishReasonStop)
		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				emit(streamCtx, events, Event{Type: EventDone, FinishReason: finishReason})
				return
			}
			if err != nil {
				emit(streamCtx, events, Event{Type: EventError, Err: classify(err)})
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}

			choice := resp.Choices[0]
			if choice.FinishReason != "" {
				finishReason = string(choice.FinishReason)
			}
			if choice.Delta.Content == "" {
				continue
			}
			if !emit(streamCtx, events, Event{Type: EventTextDelta, Text: choice.Delta.Content}) {
				return
			}
		}
	}()

	return events
}

// emit sends an event unless the stream context is gone. Returning false
// stops the producer, which closes the remote connection via the deferred
// stream.Close.
func emit(ctx context.Context, events chan<- Event, ev Event) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// classify maps a transport failure onto the generation error taxonomy.
func classify(err error) *GenerationError {
	switch {
	case llm.IsTimeout(err):
		return &GenerationError{Kind: GenerationRemoteTimeout, Err: err}
	case errors.Is(err, llm.ErrUnavailable), errors.Is(err, context.Canceled):
		return &GenerationError{Kind: GenerationRemoteUnavailable, Err: err}
	default:
		return &GenerationError{Kind: GenerationMalformedStream, Err: err}
	}
}
