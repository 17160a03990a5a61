package driven

import (
	"context"

	"github.com/custodia-labs/notebook-cli/internal/core/domain"
)

// SourceStore persists source metadata and lifecycle state.
type SourceStore interface {
	// Save stores or updates a source.
	Save(ctx context.Context, source domain.Source) error

	// Get retrieves a source by ID. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.Source, error)

	// List returns all sources in the order they were added.
	List(ctx context.Context) ([]domain.Source, error)

	// Delete removes a source. No-op if absent.
	Delete(ctx context.Context, id string) error

	// Clear removes all sources.
	Clear(ctx context.Context) error
}
