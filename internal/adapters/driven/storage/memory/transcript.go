package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/notebook-cli/internal/core/domain"
	"github.com/custodia-labs/notebook-cli/internal/core/ports/driven"
)

// Ensure TranscriptStore implements the interface.
var _ driven.TranscriptStore = (*TranscriptStore)(nil)

// TranscriptStore is an in-memory implementation of driven.TranscriptStore.
type TranscriptStore struct {
	mu       sync.RWMutex
	messages []domain.ChatMessage
}

// NewTranscriptStore creates a new in-memory transcript store.
func NewTranscriptStore() *TranscriptStore {
	return &TranscriptStore{}
}

// Append stores a new message at the end of the transcript.
func (s *TranscriptStore) Append(_ context.Context, msg domain.ChatMessage) error {
	if msg.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return nil
}

// Update rewrites an existing message by ID.
func (s *TranscriptStore) Update(_ context.Context, msg domain.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.messages {
		if s.messages[i].ID == msg.ID {
			s.messages[i] = msg
			return nil
		}
	}
	return domain.ErrNotFound
}

// List returns all messages in append order.
func (s *TranscriptStore) List(_ context.Context) ([]domain.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.ChatMessage(nil), s.messages...), nil
}

// Clear removes all messages.
func (s *TranscriptStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	return nil
}

// Close releases resources. No-op for the in-memory store.
func (s *TranscriptStore) Close() error {
	return nil
}
