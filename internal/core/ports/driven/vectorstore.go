package driven

import (
	"context"

	"github.com/custodia-labs/notebook-cli/internal/core/domain"
)

// VectorStore holds the retrievable chunks for every indexed source and
// ranks them against query vectors. At most one chunk set exists per
// source ID at any time; re-ingestion is modelled as delete-then-insert.
type VectorStore interface {
	// Upsert replaces any existing chunks for sourceID with a freshly
	// chunked and embedded set built from fullText. The replacement is
	// atomic: if embedding fails the store is left exactly as it was
	// before the call.
	Upsert(ctx context.Context, sourceID, sourceName, fullText string) error

	// Remove deletes all chunks for the source. No-op if absent.
	Remove(ctx context.Context, sourceID string) error

	// Clear empties the store.
	Clear(ctx context.Context) error

	// Stats reports the current store contents.
	Stats(ctx context.Context) (domain.StoreStats, error)

	// Search ranks stored chunks by cosine similarity to the query
	// vector, descending, and returns at most topK. Chunks without an
	// embedding are excluded from the candidate set entirely. If
	// sourceIDs is non-empty, only chunks from those sources are
	// candidates. Ties keep insertion order. An empty result is not an
	// error.
	Search(ctx context.Context, query []float32, topK int, sourceIDs []string) ([]domain.Chunk, error)
}
