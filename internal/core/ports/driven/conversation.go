package driven

import (
	"context"

	"github.com/custodia-labs/notebook-cli/internal/core/domain"
)

// ConversationService is the generative capability the notebook chats
// through. Sessions carry a fixed system instruction (the grounding
// context); the provider does not support changing it mid-session, so the
// orchestrator starts a new session whenever the grounding must change.
type ConversationService interface {
	// StartSession opens a conversation with a fixed system instruction.
	StartSession(ctx context.Context, systemInstruction string) (ConversationSession, error)

	// Generate produces a one-shot completion outside any session.
	// Used for synthesis (summary, outline, flashcards).
	Generate(ctx context.Context, prompt string) (string, error)

	// Summarize produces a structured analysis of a newly ingested source.
	Summarize(ctx context.Context, text string) (*domain.SourceSummary, error)

	// ModelName returns the name of the chat model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ConversationSession is a live multi-turn conversation. History
// accumulates inside the provider; callers only send the new user text.
type ConversationSession interface {
	// StreamTurn sends one user message and returns the reply stream.
	// Cancelling ctx stops the stream between increments.
	StreamTurn(ctx context.Context, userText string) (TurnStream, error)
}

// TurnStream is a finite, non-restartable sequence of reply increments.
type TurnStream interface {
	// Recv returns the cumulative reply text so far (not a delta).
	// It returns io.EOF when the reply is complete, or the context error
	// when the turn was cancelled.
	Recv() (string, error)

	// Close releases the stream. Safe to call more than once.
	Close() error
}
