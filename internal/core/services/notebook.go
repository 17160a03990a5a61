package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/notebook-cli/internal/core/domain"
	"github.com/custodia-labs/notebook-cli/internal/core/ports/driven"
	"github.com/custodia-labs/notebook-cli/internal/core/ports/driving"
	"github.com/custodia-labs/notebook-cli/internal/logger"
)

// Ensure NotebookService implements the interface.
var _ driving.NotebookService = (*NotebookService)(nil)

// DefaultMaxSources is the hard cap on concurrent sources. The check runs
// before any ingestion work begins.
const DefaultMaxSources = 20

// DefaultTopK is how many chunks a turn retrieves for grounding.
const DefaultTopK = 5

// errorReplyText replaces an in-flight reply when a turn fails. The
// message is frozen with this text rather than left loading forever.
const errorReplyText = "Sorry, something went wrong while answering. Please try again."

// groundingPreamble is the fixed part of every session's system
// instruction; the numbered source blocks follow it.
const groundingPreamble = "You are a research assistant for a notebook of user-provided sources. " +
	"Answer strictly from the numbered sources below and cite every statement " +
	"with its source number in square brackets, like [1]. If the sources do " +
	"not contain the answer, say so plainly instead of guessing."

// NotebookService coordinates the source lifecycle, the vector store, and
// the grounded conversation. It is the single owner of session state;
// exactly one conversational turn may be in flight at a time.
type NotebookService struct {
	sourceStore driven.SourceStore
	vectorStore driven.VectorStore
	gateway     *EmbeddingGateway // nil disables retrieval
	conv        driven.ConversationService
	transcript  driven.TranscriptStore
	extractors  driven.ExtractorRegistry
	formatter   *ContextFormatter

	topK       int
	maxSources int

	mu               sync.Mutex
	session          driven.ConversationSession
	sessionGrounding string
	sessionTurns     int
	streaming        bool
	cancelTurn       context.CancelFunc
}

// NotebookOption configures the notebook service.
type NotebookOption func(*NotebookService)

// WithTopK sets how many chunks each turn retrieves.
func WithTopK(k int) NotebookOption {
	return func(s *NotebookService) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithMaxSources sets the source cap.
func WithMaxSources(n int) NotebookOption {
	return func(s *NotebookService) {
		if n > 0 {
			s.maxSources = n
		}
	}
}

// NewNotebookService creates the orchestrator. gateway may be nil, in
// which case every turn grounds on full source content instead of
// retrieved chunks.
func NewNotebookService(
	sourceStore driven.SourceStore,
	vectorStore driven.VectorStore,
	gateway *EmbeddingGateway,
	conv driven.ConversationService,
	transcript driven.TranscriptStore,
	extractors driven.ExtractorRegistry,
	opts ...NotebookOption,
) *NotebookService {
	s := &NotebookService{
		sourceStore: sourceStore,
		vectorStore: vectorStore,
		gateway:     gateway,
		conv:        conv,
		transcript:  transcript,
		extractors:  extractors,
		formatter:   NewContextFormatter(),
		topK:        DefaultTopK,
		maxSources:  DefaultMaxSources,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// AddSources ingests local files, one independent pipeline per file.
// A failing source ends up with status error and its error text as
// content; siblings are unaffected.
func (s *NotebookService) AddSources(ctx context.Context, paths []string) ([]domain.Source, error) {
	if len(paths) == 0 {
		return nil, domain.ErrInvalidInput
	}

	if err := s.checkCapacity(ctx, len(paths)); err != nil {
		return nil, err
	}

	logger.Section("Ingestion")
	logger.Info("Ingesting %d source(s)", len(paths))

	results := make([]domain.Source, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			results[i] = s.ingestFile(ctx, path)
		}(i, path)
	}
	wg.Wait()

	s.invalidateSession()
	return results, nil
}

// AddSourceFromURL fetches a web page and ingests its readable text.
func (s *NotebookService) AddSourceFromURL(ctx context.Context, url string) (*domain.Source, error) {
	if strings.TrimSpace(url) == "" {
		return nil, domain.ErrInvalidInput
	}

	if err := s.checkCapacity(ctx, 1); err != nil {
		return nil, err
	}

	src := s.newSource(url, url, domain.SourceKindURL)
	if err := s.sourceStore.Save(ctx, src); err != nil {
		return nil, err
	}

	src = s.runExtraction(ctx, src, s.extractors.ForURL())
	s.invalidateSession()
	return &src, nil
}

// DeleteSource removes a source and all its chunks.
func (s *NotebookService) DeleteSource(ctx context.Context, id string) error {
	if _, err := s.sourceStore.Get(ctx, id); err != nil {
		return err
	}

	if err := s.vectorStore.Remove(ctx, id); err != nil {
		return fmt.Errorf("remove chunks: %w", err)
	}
	if err := s.sourceStore.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete source: %w", err)
	}

	s.invalidateSession()
	return nil
}

// ToggleExclusion flips a source's excluded flag. Its chunks stay in the
// vector store so re-inclusion needs no re-embedding.
func (s *NotebookService) ToggleExclusion(ctx context.Context, id string) error {
	src, err := s.sourceStore.Get(ctx, id)
	if err != nil {
		return err
	}

	src.Excluded = !src.Excluded
	if err := s.sourceStore.Save(ctx, *src); err != nil {
		return err
	}

	s.invalidateSession()
	return nil
}

// ReingestSource re-extracts and re-indexes a source from its original
// reference. Indexing replaces the old chunk set atomically.
func (s *NotebookService) ReingestSource(ctx context.Context, id string) error {
	src, err := s.sourceStore.Get(ctx, id)
	if err != nil {
		return err
	}

	var extractor driven.TextExtractor
	if src.Kind == domain.SourceKindURL {
		extractor = s.extractors.ForURL()
	} else {
		extractor, err = s.extractors.ForFile(src.Ref)
		if err != nil {
			return err
		}
	}

	src.Status = domain.SourceStatusIngesting
	if err := s.sourceStore.Save(ctx, *src); err != nil {
		return err
	}

	logger.Info("Re-ingesting source %s (%s)", src.Name, src.Ref)
	*src = s.runExtraction(ctx, *src, extractor)
	s.invalidateSession()

	if src.Status == domain.SourceStatusError {
		return fmt.Errorf("re-ingest %s: %s", src.Ref, src.Content)
	}
	return nil
}

// RebuildIndex re-embeds every ready source from its stored content.
// Vectors are never persisted, so this runs once at startup. A source
// that fails to embed stays unindexed and grounds on its full content.
func (s *NotebookService) RebuildIndex(ctx context.Context) error {
	if s.gateway == nil {
		return nil
	}

	all, err := s.sourceStore.List(ctx)
	if err != nil {
		return err
	}

	var ready []domain.Source
	for i := range all {
		if all[i].Status == domain.SourceStatusReady {
			ready = append(ready, all[i])
		}
	}
	if len(ready) == 0 {
		return nil
	}

	logger.Section("Index")
	logger.Info("Rebuilding index for %d source(s)", len(ready))

	var wg sync.WaitGroup
	for i := range ready {
		wg.Add(1)
		go func(src domain.Source) {
			defer wg.Done()

			indexed := true
			if err := s.vectorStore.Upsert(ctx, src.ID, src.Name, src.Content); err != nil {
				logger.Warn("Index rebuild failed for %s: %v", src.Name, err)
				indexed = false
			}

			if src.Indexed != indexed {
				src.Indexed = indexed
				if err := s.sourceStore.Save(ctx, src); err != nil {
					logger.Warn("Could not persist index state for %s: %v", src.ID, err)
				}
			}
		}(ready[i])
	}
	wg.Wait()

	return nil
}

// Sources returns all sources in the order they were added.
func (s *NotebookService) Sources(ctx context.Context) ([]domain.Source, error) {
	return s.sourceStore.List(ctx)
}

// Messages returns the chat transcript in order.
func (s *NotebookService) Messages(ctx context.Context) ([]domain.ChatMessage, error) {
	return s.transcript.List(ctx)
}

// IsStreaming reports whether a turn is currently in flight.
func (s *NotebookService) IsStreaming() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streaming
}

// SendMessage runs one conversational turn. The reply streams into a
// single in-progress message; onUpdate observes each increment. The
// returned message is frozen, with the cited-source snapshot attached.
func (s *NotebookService) SendMessage(
	ctx context.Context, text string, onUpdate func(domain.ChatMessage),
) (*domain.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrInvalidInput
	}

	turnCtx, err := s.beginTurn(ctx)
	if err != nil {
		return nil, err
	}
	defer s.endTurn()

	logger.Section("Turn")
	logger.Debug("User message: %q", text)

	usable, err := s.usableSources(ctx)
	if err != nil {
		return nil, err
	}
	if len(usable) == 0 {
		return nil, domain.ErrNoSources
	}

	userMsg := domain.ChatMessage{
		ID:        uuid.New().String(),
		Role:      domain.RoleUser,
		Text:      text,
		CreatedAt: time.Now(),
	}
	if err := s.transcript.Append(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("append user message: %w", err)
	}

	reply := domain.ChatMessage{
		ID:        uuid.New().String(),
		Role:      domain.RoleModel,
		Streaming: true,
		CreatedAt: time.Now(),
	}
	if err := s.transcript.Append(ctx, reply); err != nil {
		return nil, fmt.Errorf("append reply placeholder: %w", err)
	}

	grounding, citations, err := s.buildGrounding(turnCtx, text, usable)
	if err != nil {
		return s.failTurn(ctx, reply, err)
	}

	session, err := s.ensureSession(ctx, grounding)
	if err != nil {
		return s.failTurn(ctx, reply, err)
	}

	stream, err := session.StreamTurn(turnCtx, text)
	if err != nil {
		return s.failTurn(ctx, reply, err)
	}
	defer stream.Close()

	cancelled := false
	for {
		cumulative, recvErr := stream.Recv()
		if recvErr != nil {
			if errors.Is(recvErr, io.EOF) {
				break
			}
			if turnCtx.Err() != nil || errors.Is(recvErr, context.Canceled) {
				// Cancellation is not an error: the turn ends with
				// whatever text had accumulated.
				cancelled = true
				break
			}
			return s.failTurn(ctx, reply, recvErr)
		}

		reply.Text = cumulative
		if onUpdate != nil {
			onUpdate(reply)
		}
	}

	s.mu.Lock()
	s.sessionTurns++
	s.mu.Unlock()

	reply.Streaming = false
	reply.CitedSources = snapshotSources(citations, usable)
	if err := s.transcript.Update(ctx, reply); err != nil {
		return &reply, fmt.Errorf("freeze reply: %w", err)
	}

	if cancelled {
		logger.Info("Turn cancelled after %d characters", len(reply.Text))
	} else {
		logger.Debug("Turn complete: %d characters, %d citations", len(reply.Text), len(citations))
	}

	return &reply, nil
}

// Synthesize produces a one-shot cross-source artifact in the requested
// format from the full content of every usable source.
func (s *NotebookService) Synthesize(ctx context.Context, format domain.SynthesisFormat) (string, error) {
	if !format.IsValid() {
		return "", domain.ErrInvalidInput
	}

	usable, err := s.usableSources(ctx)
	if err != nil {
		return "", err
	}
	if len(usable) == 0 {
		return "", domain.ErrNoSources
	}

	grounding, _ := s.formatter.FormatSources(usable)

	var instruction string
	switch format {
	case domain.SynthesisSummary:
		instruction = "Write a concise prose summary of the numbered sources below. Cite sources with their numbers in square brackets."
	case domain.SynthesisOutline:
		instruction = "Produce a hierarchical outline of the numbered sources below, using nested bullet points. Cite sources with their numbers in square brackets."
	case domain.SynthesisFlashcards:
		instruction = "Produce study flashcards from the numbered sources below, one per line, formatted as 'Q: ... | A: ...'."
	}

	out, err := s.conv.Generate(ctx, instruction+"\n\nSources:\n\n"+grounding)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGeneration, err)
	}
	return out, nil
}

// StopGenerating cancels the in-flight turn, if any. Cancelling a
// finished or already-cancelled turn is a no-op.
func (s *NotebookService) StopGenerating() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelTurn != nil {
		s.cancelTurn()
	}
}

// ClearChat drops the transcript and the conversation session. Sources
// and their chunks are untouched.
func (s *NotebookService) ClearChat(ctx context.Context) error {
	if err := s.transcript.Clear(ctx); err != nil {
		return err
	}
	s.invalidateSession()
	return nil
}

// ClearWorkspace drops everything: sources, chunks, and transcript.
func (s *NotebookService) ClearWorkspace(ctx context.Context) error {
	if err := s.vectorStore.Clear(ctx); err != nil {
		return err
	}
	if err := s.sourceStore.Clear(ctx); err != nil {
		return err
	}
	return s.ClearChat(ctx)
}

// Stats reports the vector store contents.
func (s *NotebookService) Stats(ctx context.Context) (domain.StoreStats, error) {
	return s.vectorStore.Stats(ctx)
}

// --- turn plumbing ---

// beginTurn claims the single in-flight turn slot.
func (s *NotebookService) beginTurn(ctx context.Context) (context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.streaming {
		return nil, domain.ErrTurnInFlight
	}
	turnCtx, cancel := context.WithCancel(ctx)
	s.streaming = true
	s.cancelTurn = cancel
	return turnCtx, nil
}

// endTurn releases the turn slot and its cancellation token so a new turn
// can proceed.
func (s *NotebookService) endTurn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelTurn != nil {
		s.cancelTurn()
		s.cancelTurn = nil
	}
	s.streaming = false
}

// failTurn converts the in-flight reply into a fixed, user-visible error
// message instead of leaving it stuck streaming, then surfaces the cause.
func (s *NotebookService) failTurn(
	ctx context.Context, reply domain.ChatMessage, cause error,
) (*domain.ChatMessage, error) {
	logger.Warn("Turn failed: %v", cause)

	reply.Text = errorReplyText
	reply.Streaming = false
	if err := s.transcript.Update(ctx, reply); err != nil {
		logger.Warn("Could not persist error reply: %v", err)
	}

	return &reply, fmt.Errorf("%w: %v", domain.ErrGeneration, cause)
}

// buildGrounding assembles the grounding context for a turn: retrieval
// over indexed sources when possible, full source content otherwise.
func (s *NotebookService) buildGrounding(
	ctx context.Context, query string, usable []domain.Source,
) (string, []domain.Citation, error) {
	var indexedIDs []string
	for _, src := range usable {
		if src.Indexed {
			indexedIDs = append(indexedIDs, src.ID)
		}
	}

	if s.gateway != nil && len(indexedIDs) > 0 {
		queryVec, err := s.gateway.EmbedOne(ctx, query)
		if err != nil {
			return "", nil, err
		}

		chunks, err := s.vectorStore.Search(ctx, queryVec, s.topK, indexedIDs)
		if err != nil {
			return "", nil, err
		}

		logger.Debug("Retrieved %d chunk(s) from %d indexed source(s)", len(chunks), len(indexedIDs))

		if len(chunks) > 0 {
			grounding, citations := s.formatter.Format(chunks)
			return grounding, citations, nil
		}
	}

	// Degraded but defined: ground on full source content when retrieval
	// is unavailable or returned nothing.
	logger.Debug("Grounding on full content of %d source(s)", len(usable))
	grounding, citations := s.formatter.FormatSources(usable)
	return grounding, citations, nil
}

// ensureSession returns the live conversation session, creating one when
// none exists or when the grounding changed before any turn was sent
// against the current session. Once a turn has been sent, the session is
// kept so follow-ups resolve against prior turns; structural source
// changes invalidate it instead.
func (s *NotebookService) ensureSession(ctx context.Context, grounding string) (driven.ConversationSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil && (s.sessionTurns > 0 || s.sessionGrounding == grounding) {
		return s.session, nil
	}

	logger.Debug("Starting conversation session (%d grounding characters)", len(grounding))

	session, err := s.conv.StartSession(ctx, groundingPreamble+"\n\nSources:\n\n"+grounding)
	if err != nil {
		return nil, err
	}

	s.session = session
	s.sessionGrounding = grounding
	s.sessionTurns = 0
	return session, nil
}

// invalidateSession drops the session reference so the next turn starts a
// fresh session with recomputed grounding.
func (s *NotebookService) invalidateSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	s.sessionGrounding = ""
	s.sessionTurns = 0
}

// --- ingestion plumbing ---

// checkCapacity enforces the source cap before any ingestion work begins.
func (s *NotebookService) checkCapacity(ctx context.Context, adding int) error {
	existing, err := s.sourceStore.List(ctx)
	if err != nil {
		return err
	}
	if len(existing)+adding > s.maxSources {
		return domain.ErrSourceLimit
	}
	return nil
}

func (s *NotebookService) newSource(name, ref string, kind domain.SourceKind) domain.Source {
	return domain.Source{
		ID:      uuid.New().String(),
		Name:    name,
		Kind:    kind,
		Ref:     ref,
		Status:  domain.SourceStatusIngesting,
		AddedAt: time.Now(),
	}
}

// ingestFile runs one source's full pipeline: resolve extractor, extract,
// summarise, index.
func (s *NotebookService) ingestFile(ctx context.Context, path string) domain.Source {
	src := s.newSource(filepath.Base(path), path, domain.SourceKindText)

	extractor, err := s.extractors.ForFile(path)
	if err != nil {
		return s.failSource(ctx, src, err)
	}
	src.Kind = extractor.Kind()

	if err := s.sourceStore.Save(ctx, src); err != nil {
		return s.failSource(ctx, src, err)
	}

	return s.runExtraction(ctx, src, extractor)
}

// runExtraction completes ingestion for a saved source: extraction,
// best-effort summary, then indexing.
func (s *NotebookService) runExtraction(
	ctx context.Context, src domain.Source, extractor driven.TextExtractor,
) domain.Source {
	text, name, err := extractor.Extract(ctx, src.Ref)
	if err != nil {
		return s.failSource(ctx, src, err)
	}
	if name != "" {
		src.Name = name
	}
	src.Content = text

	if s.conv != nil {
		if summary, err := s.conv.Summarize(ctx, src.Content); err != nil {
			logger.Warn("Summary failed for %s: %v", src.Name, err)
		} else {
			src.Summary = summary
		}
	}

	src.Indexed = false
	if s.gateway != nil {
		if err := s.vectorStore.Upsert(ctx, src.ID, src.Name, src.Content); err != nil {
			// Indexing failure only degrades this source to full-context
			// grounding; it does not fail the ingestion.
			logger.Warn("Indexing failed for %s: %v", src.Name, err)
		} else {
			src.Indexed = true
		}
	}

	src.Status = domain.SourceStatusReady
	if err := s.sourceStore.Save(ctx, src); err != nil {
		return s.failSource(ctx, src, err)
	}

	logger.Info("Source ready: %s (indexed=%t)", src.Name, src.Indexed)
	return src
}

// failSource marks a source as terminally failed, with the error text as
// its content.
func (s *NotebookService) failSource(ctx context.Context, src domain.Source, cause error) domain.Source {
	logger.Warn("Ingestion failed for %s: %v", src.Ref, cause)

	src.Status = domain.SourceStatusError
	src.Content = cause.Error()
	src.Indexed = false
	if err := s.sourceStore.Save(ctx, src); err != nil {
		logger.Warn("Could not persist failed source %s: %v", src.ID, err)
	}
	return src
}

// usableSources returns ready, non-excluded sources in added order.
func (s *NotebookService) usableSources(ctx context.Context) ([]domain.Source, error) {
	all, err := s.sourceStore.List(ctx)
	if err != nil {
		return nil, err
	}

	usable := make([]domain.Source, 0, len(all))
	for i := range all {
		if all[i].Usable() {
			usable = append(usable, all[i])
		}
	}
	return usable, nil
}

// snapshotSources resolves citation numbers back to full sources, in
// citation order, for attachment to a frozen message.
func snapshotSources(citations []domain.Citation, usable []domain.Source) []domain.Source {
	byID := make(map[string]domain.Source, len(usable))
	for _, src := range usable {
		byID[src.ID] = src
	}

	snapshot := make([]domain.Source, 0, len(citations))
	for _, c := range citations {
		if src, ok := byID[c.SourceID]; ok {
			snapshot = append(snapshot, src)
		}
	}
	return snapshot
}
