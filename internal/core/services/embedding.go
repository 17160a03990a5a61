package services

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/notebook-cli/internal/core/domain"
	"github.com/custodia-labs/notebook-cli/internal/core/ports/driven"
	"github.com/custodia-labs/notebook-cli/internal/logger"
)

// DefaultSubBatchSize is how many texts go into one provider batch call.
const DefaultSubBatchSize = 10

// DefaultEmbedRate is the proactive throttle on sub-batch starts, in
// sub-batches per second. Providers rate-limit bursts, not throughput, so
// pacing the fan-out start is enough.
const DefaultEmbedRate = 2.0

// EmbeddingGateway wraps an EmbeddingService with batching and pacing
// policy. Batches are split into fixed-size sub-batches; each sub-batch
// is one provider round trip, and sub-batches run sequentially so a
// large source cannot exhaust the provider's rate limit.
type EmbeddingGateway struct {
	svc          driven.EmbeddingService
	limiter      *rate.Limiter
	subBatchSize int
}

// GatewayOption configures the embedding gateway.
type GatewayOption func(*EmbeddingGateway)

// WithSubBatchSize sets the number of texts per provider batch call.
func WithSubBatchSize(n int) GatewayOption {
	return func(g *EmbeddingGateway) {
		if n > 0 {
			g.subBatchSize = n
		}
	}
}

// WithEmbedRate sets the sub-batch pacing rate per second.
func WithEmbedRate(perSecond float64) GatewayOption {
	return func(g *EmbeddingGateway) {
		if perSecond > 0 {
			g.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// NewEmbeddingGateway creates a gateway around the given provider.
func NewEmbeddingGateway(svc driven.EmbeddingService, opts ...GatewayOption) *EmbeddingGateway {
	g := &EmbeddingGateway{
		svc:          svc,
		limiter:      rate.NewLimiter(rate.Limit(DefaultEmbedRate), 1),
		subBatchSize: DefaultSubBatchSize,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Dimensions returns the provider's embedding vector size.
func (g *EmbeddingGateway) Dimensions() int {
	return g.svc.Dimensions()
}

// EmbedOne embeds a single text, typically a user query.
func (g *EmbeddingGateway) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vec, err := g.svc.Embed(ctx, text)
	if err != nil {
		return nil, &domain.EmbeddingError{Batch: false, Err: err}
	}
	return vec, nil
}

// EmbedBatch embeds texts in order, one vector per input. A failed
// sub-batch fails the whole batch: callers must never be handed a
// partial vector set that could end up half-indexed.
func (g *EmbeddingGateway) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += g.subBatchSize {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, &domain.EmbeddingError{Batch: true, Err: err}
		}

		end := start + g.subBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		logger.Debug("Embedding sub-batch %d..%d of %d texts", start, end-1, len(texts))

		vecs, err := g.svc.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			logger.Warn("Batch embedding failed: %v", err)
			return nil, &domain.EmbeddingError{Batch: true, Err: err}
		}
		if len(vecs) != end-start {
			err := fmt.Errorf("provider returned %d vectors for %d texts", len(vecs), end-start)
			return nil, &domain.EmbeddingError{Batch: true, Err: err}
		}

		vectors = append(vectors, vecs...)
	}

	return vectors, nil
}
