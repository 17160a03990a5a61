package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/custodia-labs/notebook-cli/internal/core/domain"
	"github.com/custodia-labs/notebook-cli/internal/core/ports/driven"
)

// Ensure the adapter implements the ports.
var (
	_ driven.ConversationService = (*ConversationService)(nil)
	_ driven.ConversationSession = (*session)(nil)
	_ driven.TurnStream          = (*turnStream)(nil)
)

// DefaultChatModel is the chat model used when none is configured.
const DefaultChatModel = "gemini-1.5-flash-latest"

// summarizeInstruction asks for the structured source analysis in JSON so
// the response parses without prompt-format scraping.
const summarizeInstruction = "Analyse the following document. Respond with JSON only, " +
	`matching {"summary": string, "key_points": [string]}: a 2-3 sentence summary ` +
	"and 3-5 key points in document order."

// ConversationConfig holds configuration for the Gemini chat service.
type ConversationConfig struct {
	// APIKey is the Google AI API key (required).
	APIKey string

	// Model is the chat model to use (default: gemini-1.5-flash-latest).
	Model string
}

// ConversationService provides grounded chat sessions, one-shot
// generation, and source summarisation using the Gemini API.
type ConversationService struct {
	client *genai.Client
	model  string
}

// NewConversationService creates a new Gemini conversation service.
func NewConversationService(ctx context.Context, cfg ConversationConfig) (*ConversationService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultChatModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &ConversationService{client: client, model: cfg.Model}, nil
}

// StartSession opens a chat session with a fixed system instruction. The
// provider does not support changing the instruction mid-session.
func (s *ConversationService) StartSession(_ context.Context, systemInstruction string) (driven.ConversationSession, error) {
	model := s.client.GenerativeModel(s.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemInstruction)},
	}

	return &session{chat: model.StartChat()}, nil
}

// Generate produces a one-shot completion outside any session.
func (s *ConversationService) Generate(ctx context.Context, prompt string) (string, error) {
	model := s.client.GenerativeModel(s.model)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini: generate: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return "", fmt.Errorf("gemini: empty response")
	}
	return text, nil
}

// Summarize produces a structured analysis of a source's text.
func (s *ConversationService) Summarize(ctx context.Context, text string) (*domain.SourceSummary, error) {
	model := s.client.GenerativeModel(s.model)
	model.GenerationConfig.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(summarizeInstruction+"\n\n"+text))
	if err != nil {
		return nil, fmt.Errorf("gemini: summarize: %w", err)
	}

	raw := responseText(resp)
	if raw == "" {
		return nil, fmt.Errorf("gemini: empty summary response")
	}

	var parsed struct {
		Summary   string   `json:"summary"`
		KeyPoints []string `json:"key_points"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("gemini: decode summary: %w", err)
	}

	return &domain.SourceSummary{
		Summary:   parsed.Summary,
		KeyPoints: parsed.KeyPoints,
	}, nil
}

// ModelName returns the name of the chat model being used.
func (s *ConversationService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable by counting tokens for a
// trivial input, which runs no inference.
func (s *ConversationService) Ping(ctx context.Context) error {
	model := s.client.GenerativeModel(s.model)
	if _, err := model.CountTokens(ctx, genai.Text("ping")); err != nil {
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *ConversationService) Close() error {
	return s.client.Close()
}

// session wraps a genai chat session.
type session struct {
	chat *genai.ChatSession
}

// StreamTurn sends one user message and returns the reply stream.
func (s *session) StreamTurn(ctx context.Context, userText string) (driven.TurnStream, error) {
	iter := s.chat.SendMessageStream(ctx, genai.Text(userText))
	return &turnStream{iter: iter}, nil
}

// turnStream adapts the genai response iterator, which yields deltas, to
// the cumulative-text contract of driven.TurnStream.
type turnStream struct {
	iter   *genai.GenerateContentResponseIterator
	text   strings.Builder
	closed bool
}

// Recv returns the cumulative reply text so far.
func (t *turnStream) Recv() (string, error) {
	if t.closed {
		return "", io.EOF
	}

	resp, err := t.iter.Next()
	if err != nil {
		if err == iterator.Done {
			return "", io.EOF
		}
		return "", err
	}

	t.text.WriteString(responseText(resp))
	return t.text.String(), nil
}

// Close releases the stream. Safe to call more than once.
func (t *turnStream) Close() error {
	t.closed = true
	return nil
}

// responseText concatenates the text parts of a response's first
// candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}
