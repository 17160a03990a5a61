package driven

import (
	"context"

	"github.com/custodia-labs/notebook-cli/internal/core/domain"
)

// TranscriptStore persists the chat history so a notebook can be reopened
// with its conversation intact. Vectors are never persisted; only the
// rendered messages and their cited-source snapshots.
type TranscriptStore interface {
	// Append stores a new message at the end of the transcript.
	Append(ctx context.Context, msg domain.ChatMessage) error

	// Update rewrites an existing message by ID. Used to freeze a
	// streaming message once its text is final.
	Update(ctx context.Context, msg domain.ChatMessage) error

	// List returns all messages in append order.
	List(ctx context.Context) ([]domain.ChatMessage, error)

	// Clear removes all messages.
	Clear(ctx context.Context) error

	// Close releases resources.
	Close() error
}
