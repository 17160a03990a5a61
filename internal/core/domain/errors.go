package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSourceLimit indicates the notebook already holds the maximum
	// number of sources. No ingestion work is started past the cap.
	ErrSourceLimit = errors.New("source limit reached")

	// ErrNoSources indicates no ready, non-excluded source exists, so
	// there is nothing to ground an answer on.
	ErrNoSources = errors.New("no usable sources")

	// ErrTurnInFlight indicates a conversational turn is already
	// streaming. Exactly one turn may be in flight at a time.
	ErrTurnInFlight = errors.New("a reply is already being generated")

	// ErrDimensionMismatch indicates vectors of different lengths were
	// compared. This is an internal invariant violation, not a user
	// condition: all vectors come from one embedding model.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrGeneration indicates the conversational capability failed to
	// produce or finish a reply.
	ErrGeneration = errors.New("generation failed")

	// ErrEmbeddingUnavailable indicates no embedding provider is
	// configured. Retrieval is disabled; grounding falls back to full
	// source content.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)

// EmbeddingError wraps a failed embedding provider call. Batch reports
// whether the failure happened while embedding a batch of chunk texts or
// a single query.
type EmbeddingError struct {
	// Batch is true for a batched chunk-embedding call.
	Batch bool

	// Err is the underlying provider error.
	Err error
}

// Error implements the error interface.
func (e *EmbeddingError) Error() string {
	if e.Batch {
		return fmt.Sprintf("batch embedding failed: %v", e.Err)
	}
	return fmt.Sprintf("embedding failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *EmbeddingError) Unwrap() error {
	return e.Err
}

// ExtractionError wraps a failed text extraction. The message is intended
// to be user-presentable; it becomes the source's error content.
type ExtractionError struct {
	// Ref is the file path or URL that failed.
	Ref string

	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	return fmt.Sprintf("could not read %s: %v", e.Ref, e.Err)
}

// Unwrap returns the underlying error.
func (e *ExtractionError) Unwrap() error {
	return e.Err
}
