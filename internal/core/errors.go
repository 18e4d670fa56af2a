// ABOUTME: Error taxonomy for the retrieval-and-context pipeline
// ABOUTME: Sentinel errors matched with errors.Is plus the structured GenerationError
package core

import (
	"errors"
	"fmt"
)

var (
	// ErrEmbeddingUnavailable marks an embedding call that failed because
	// the remote service was unreachable or timed out.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrEmbeddingDimensionMismatch marks a returned vector whose dimension
	// disagrees with the index's established dimension.
	ErrEmbeddingDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrRetrievalUnavailable marks a retrieval that failed because the
	// embedding or index call failed. An empty result set is NOT this
	// error; zero qualifying passages is a valid outcome.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")

	// ErrContextOverflow marks a prompt whose untrimmable parts (system
	// instructions plus the current query) exceed the context budget.
	ErrContextOverflow = errors.New("context budget exceeded")
)

// GenerationErrorKind is the sub-reason of a failed generation.
type GenerationErrorKind string

const (
	GenerationRemoteUnavailable GenerationErrorKind = "remote-unavailable"
	GenerationRemoteTimeout     GenerationErrorKind = "remote-timeout"
	GenerationMalformedStream   GenerationErrorKind = "malformed-stream"
)

// GenerationError is a terminal failure of the answer stream.
type GenerationError struct {
	Kind GenerationErrorKind
	Err  error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("generation failed: %s", e.Kind)
	}
	return fmt.Sprintf("generation failed (%s): %v", e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
