package domain

import "fmt"

// Chunk represents a retrievable unit of a source's text.
type Chunk struct {
	// ID is derived deterministically from (SourceID, Index).
	ID string

	// SourceID links to the Source this chunk was split from.
	SourceID string

	// SourceName is the display name of the source, denormalised so
	// retrieval results can be rendered without a store lookup.
	SourceName string

	// Text is the chunk content.
	Text string

	// Index is the 0-based ordinal position within the source.
	// Indexes for a source always form a contiguous sequence.
	Index int

	// Embedding is the vector representation. A nil embedding means the
	// chunk is not retrievable; it is never ranked with a default score.
	Embedding []float32
}

// ChunkID derives the deterministic chunk identifier for a source and
// position.
func ChunkID(sourceID string, index int) string {
	return fmt.Sprintf("%s:%d", sourceID, index)
}

// StoreStats describes the current contents of a vector store.
type StoreStats struct {
	// TotalChunks is the number of stored chunks across all sources.
	TotalChunks int

	// SourceCount is the number of distinct sources with chunks.
	SourceCount int

	// SourceIDs lists the sources currently present, in insertion order.
	SourceIDs []string
}
