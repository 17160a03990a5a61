package driving

import (
	"context"

	"github.com/custodia-labs/notebook-cli/internal/core/domain"
)

// NotebookService is the driving port for the whole notebook: source
// lifecycle, grounded conversation, and synthesis.
type NotebookService interface {
	// AddSources ingests local files concurrently. Each returned source
	// carries its own terminal status; one source failing never aborts
	// its siblings. Returns domain.ErrSourceLimit before any ingestion
	// work begins if the cap would be exceeded.
	AddSources(ctx context.Context, paths []string) ([]domain.Source, error)

	// AddSourceFromURL fetches a web page and ingests its readable text.
	AddSourceFromURL(ctx context.Context, url string) (*domain.Source, error)

	// DeleteSource removes a source and all its chunks, and invalidates
	// the current conversation session.
	DeleteSource(ctx context.Context, id string) error

	// ToggleExclusion flips a source's excluded flag. Chunks stay in the
	// vector store; re-inclusion needs no re-embedding.
	ToggleExclusion(ctx context.Context, id string) error

	// ReingestSource re-extracts and re-indexes a source from its
	// original reference (delete-then-insert, never in-place).
	ReingestSource(ctx context.Context, id string) error

	// RebuildIndex re-embeds every ready source from its stored content.
	// Called at startup because vectors are never persisted. Sources that
	// fail to embed are left unindexed, not errored; answers about them
	// fall back to full-text grounding.
	RebuildIndex(ctx context.Context) error

	// Sources returns all sources in the order they were added.
	Sources(ctx context.Context) ([]domain.Source, error)

	// Messages returns the chat transcript in order.
	Messages(ctx context.Context) ([]domain.ChatMessage, error)

	// IsStreaming reports whether a turn is currently in flight.
	IsStreaming() bool

	// SendMessage runs one conversational turn: retrieve, ground, stream.
	// onUpdate is invoked with the in-progress model message after each
	// received increment; it may be nil. The returned message is frozen.
	// Returns domain.ErrTurnInFlight if a turn is already streaming and
	// domain.ErrNoSources if nothing can ground an answer.
	SendMessage(ctx context.Context, text string, onUpdate func(domain.ChatMessage)) (*domain.ChatMessage, error)

	// Synthesize produces a one-shot cross-source artifact.
	Synthesize(ctx context.Context, format domain.SynthesisFormat) (string, error)

	// StopGenerating cancels the in-flight turn, if any. The partial
	// message is kept as valid history. Idempotent.
	StopGenerating()

	// ClearChat drops the transcript and the conversation session.
	ClearChat(ctx context.Context) error

	// ClearWorkspace drops everything: sources, chunks, and transcript.
	ClearWorkspace(ctx context.Context) error

	// Stats reports the vector store contents.
	Stats(ctx context.Context) (domain.StoreStats, error)
}
