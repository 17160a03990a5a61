package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/notebook-cli/internal/core/domain"
)

// countingEmbedder records call counts and batch sizes and can fail on
// demand.
type countingEmbedder struct {
	mu         sync.Mutex
	calls      int
	batchCalls int
	batchSizes []int
	failText   string
}

func (m *countingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.failText != "" && text == m.failText {
		return nil, errors.New("provider rejected text")
	}
	return []float32{float32(len(text)), 1}, nil
}

func (m *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batchCalls++
	m.batchSizes = append(m.batchSizes, len(texts))
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := make([][]float32, len(texts))
	for i, text := range texts {
		if m.failText != "" && text == m.failText {
			return nil, errors.New("provider rejected text")
		}
		result[i] = []float32{float32(len(text)), 1}
	}
	return result, nil
}

func (m *countingEmbedder) Dimensions() int              { return 2 }
func (m *countingEmbedder) ModelName() string            { return "counting-embed" }
func (m *countingEmbedder) Ping(_ context.Context) error { return nil }
func (m *countingEmbedder) Close() error                 { return nil }

func TestEmbedOne(t *testing.T) {
	svc := &countingEmbedder{}
	g := NewEmbeddingGateway(svc, WithEmbedRate(1000))

	vec, err := g.EmbedOne(context.Background(), "query")

	require.NoError(t, err)
	assert.Equal(t, []float32{5, 1}, vec)
	assert.Equal(t, 1, svc.calls)
	assert.Equal(t, 0, svc.batchCalls, "single texts skip the batch endpoint")
}

func TestEmbedOne_WrapsProviderError(t *testing.T) {
	svc := &countingEmbedder{failText: "bad"}
	g := NewEmbeddingGateway(svc, WithEmbedRate(1000))

	_, err := g.EmbedOne(context.Background(), "bad")

	require.Error(t, err)
	var embErr *domain.EmbeddingError
	require.ErrorAs(t, err, &embErr)
	assert.False(t, embErr.Batch)
}

func TestEmbedBatch_Empty(t *testing.T) {
	g := NewEmbeddingGateway(&countingEmbedder{}, WithEmbedRate(1000))

	vecs, err := g.EmbedBatch(context.Background(), nil)

	require.NoError(t, err)
	assert.Nil(t, vecs)
}

func TestEmbedBatch_OneVectorPerTextInOrder(t *testing.T) {
	svc := &countingEmbedder{}
	g := NewEmbeddingGateway(svc, WithSubBatchSize(4), WithEmbedRate(1000))

	texts := []string{"a", "bb", "ccc", "dddd", "eeeee"}
	vecs, err := g.EmbedBatch(context.Background(), texts)

	require.NoError(t, err)
	require.Len(t, vecs, len(texts))
	for i, text := range texts {
		assert.Equal(t, float32(len(text)), vecs[i][0], "vector %d out of order", i)
	}
}

func TestEmbedBatch_OneProviderCallPerSubBatch(t *testing.T) {
	svc := &countingEmbedder{}
	g := NewEmbeddingGateway(svc, WithSubBatchSize(3), WithEmbedRate(1000))

	texts := make([]string, 8)
	for i := range texts {
		texts[i] = "text"
	}

	_, err := g.EmbedBatch(context.Background(), texts)

	require.NoError(t, err)
	assert.Equal(t, 0, svc.calls, "batching must use the provider batch endpoint")
	assert.Equal(t, 3, svc.batchCalls)
	assert.Equal(t, []int{3, 3, 2}, svc.batchSizes)
}

func TestEmbedBatch_FailureFailsWholeBatch(t *testing.T) {
	svc := &countingEmbedder{failText: "poison"}
	g := NewEmbeddingGateway(svc, WithSubBatchSize(2), WithEmbedRate(1000))

	_, err := g.EmbedBatch(context.Background(), []string{"ok", "poison", "never"})

	require.Error(t, err)
	var embErr *domain.EmbeddingError
	require.ErrorAs(t, err, &embErr)
	assert.True(t, embErr.Batch)
}

func TestEmbedBatch_ShortProviderResponse(t *testing.T) {
	svc := &truncatingEmbedder{}
	g := NewEmbeddingGateway(svc, WithEmbedRate(1000))

	_, err := g.EmbedBatch(context.Background(), []string{"a", "b"})

	require.Error(t, err)
	var embErr *domain.EmbeddingError
	require.ErrorAs(t, err, &embErr)
	assert.True(t, embErr.Batch)
	assert.Contains(t, err.Error(), "1 vectors for 2 texts")
}

func TestEmbedBatch_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := NewEmbeddingGateway(&countingEmbedder{}, WithEmbedRate(1000))

	_, err := g.EmbedBatch(ctx, []string{"a"})
	assert.Error(t, err)
}

// truncatingEmbedder returns one vector fewer than asked, simulating a
// provider that silently drops an input.
type truncatingEmbedder struct{ countingEmbedder }

func (m *truncatingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := m.countingEmbedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	return vecs[:len(vecs)-1], nil
}
