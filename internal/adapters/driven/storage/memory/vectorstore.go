// Package memory provides in-memory implementations of the storage ports.
// Nothing here survives a restart; vectors are deliberately never
// persisted.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/notebook-cli/internal/core/domain"
	"github.com/custodia-labs/notebook-cli/internal/core/ports/driven"
	"github.com/custodia-labs/notebook-cli/internal/logger"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// Splitter cuts source text into retrievable segments.
type Splitter interface {
	Chunk(text string) []string
}

// Embedder turns a segment batch into one vector per segment, in order.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorStore is an in-memory chunk collection with brute-force cosine
// ranking. Embedding happens outside the lock; the chunk-set swap for a
// source is atomic with respect to Remove and Clear.
type VectorStore struct {
	splitter Splitter
	embedder Embedder

	mu     sync.RWMutex
	order  []string // source IDs in first-insertion order
	chunks map[string][]domain.Chunk
}

// NewVectorStore creates a vector store that chunks with s and embeds
// through e.
func NewVectorStore(s Splitter, e Embedder) *VectorStore {
	return &VectorStore{
		splitter: s,
		embedder: e,
		chunks:   make(map[string][]domain.Chunk),
	}
}

// Upsert replaces the chunk set for a source. The full set is chunked and
// embedded before the store is touched, so an embedding failure leaves
// the store exactly as it was.
func (s *VectorStore) Upsert(ctx context.Context, sourceID, sourceName, fullText string) error {
	texts := s.splitter.Chunk(fullText)
	if len(texts) == 0 {
		// Nothing retrievable; still honour delete-then-insert.
		return s.Remove(ctx, sourceID)
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return err
	}

	set := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		set[i] = domain.Chunk{
			ID:         domain.ChunkID(sourceID, i),
			SourceID:   sourceID,
			SourceName: sourceName,
			Text:       text,
			Index:      i,
			Embedding:  vectors[i],
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.chunks[sourceID]; !exists {
		s.order = append(s.order, sourceID)
	}
	s.chunks[sourceID] = set

	logger.Debug("Indexed %d chunk(s) for source %s", len(set), sourceID)
	return nil
}

// Remove deletes all chunks for the source. No-op if absent.
func (s *VectorStore) Remove(_ context.Context, sourceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.chunks[sourceID]; !exists {
		return nil
	}

	delete(s.chunks, sourceID)
	for i, id := range s.order {
		if id == sourceID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Clear empties the store.
func (s *VectorStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.chunks = make(map[string][]domain.Chunk)
	return nil
}

// Stats reports the current store contents.
func (s *VectorStore) Stats(_ context.Context) (domain.StoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := domain.StoreStats{
		SourceCount: len(s.order),
		SourceIDs:   append([]string(nil), s.order...),
	}
	for _, set := range s.chunks {
		stats.TotalChunks += len(set)
	}
	return stats, nil
}

// scored pairs a candidate chunk with its similarity for ranking.
type scored struct {
	chunk domain.Chunk
	score float64
}

// Search ranks stored chunks by cosine similarity to the query vector,
// descending. Chunks without an embedding never enter the candidate set:
// absence must read as "not retrievable", never as a tie-breakable zero.
// Ties keep insertion order. An empty result is not an error.
func (s *VectorStore) Search(
	_ context.Context, query []float32, topK int, sourceIDs []string,
) ([]domain.Chunk, error) {
	if topK <= 0 {
		topK = 1
	}

	var filter map[string]bool
	if len(sourceIDs) > 0 {
		filter = make(map[string]bool, len(sourceIDs))
		for _, id := range sourceIDs {
			filter[id] = true
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var candidates []scored
	for _, sourceID := range s.order {
		if filter != nil && !filter[sourceID] {
			continue
		}
		for _, ch := range s.chunks[sourceID] {
			if ch.Embedding == nil {
				continue
			}
			score, err := domain.CosineSimilarity(query, ch.Embedding)
			if err != nil {
				return nil, err
			}
			candidates = append(candidates, scored{chunk: ch, score: score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if topK > len(candidates) {
		topK = len(candidates)
	}

	results := make([]domain.Chunk, 0, topK)
	for i := 0; i < topK; i++ {
		results = append(results, candidates[i].chunk)
	}
	return results, nil
}
