// Package ai provides factory functions for creating AI service adapters
// from settings, with connectivity validation and graceful degradation.
package ai

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/custodia-labs/notebook-cli/internal/adapters/driven/ai/gemini"
	openaiembed "github.com/custodia-labs/notebook-cli/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/notebook-cli/internal/core/domain"
	"github.com/custodia-labs/notebook-cli/internal/core/ports/driven"
	"github.com/custodia-labs/notebook-cli/internal/logger"
)

// pingTimeout is the maximum time to wait for connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	EmbeddingService driven.EmbeddingService // nil when retrieval is disabled
	Conversation     driven.ConversationService
	Warnings         []string // Non-fatal issues that caused fallback.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.Conversation != nil {
		r.Conversation.Close()
	}
}

// Init builds the conversation and embedding services from settings.
// The conversation service is required; an unreachable or unconfigured
// embedding provider only disables retrieval, with a warning, because the
// notebook can still ground answers on full source content.
func Init(ctx context.Context, settings *domain.Settings) (*InitResult, error) {
	result := &InitResult{}

	conv, err := buildConversation(ctx, &settings.Chat)
	if err != nil {
		return nil, err
	}
	result.Conversation = conv

	embed, err := buildEmbedding(ctx, &settings.Embedding)
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("embedding unavailable (%v); answers will use full source content", err))
		logger.Warn("Embedding disabled: %v", err)
		return result, nil
	}
	result.EmbeddingService = embed

	return result, nil
}

func buildConversation(ctx context.Context, settings *domain.ChatSettings) (driven.ConversationService, error) {
	apiKey := settings.APIKey
	if apiKey == "" {
		apiKey = geminiKeyFromEnv()
	}
	if apiKey == "" {
		return nil, fmt.Errorf("no Gemini API key: set chat.api_key or GEMINI_API_KEY")
	}

	conv, err := gemini.NewConversationService(ctx, gemini.ConversationConfig{
		APIKey: apiKey,
		Model:  settings.Model,
	})
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := conv.Ping(pingCtx); err != nil {
		conv.Close()
		return nil, fmt.Errorf("chat provider unreachable: %w", err)
	}

	logger.Info("Chat provider ready: %s", conv.ModelName())
	return conv, nil
}

func buildEmbedding(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	var (
		svc driven.EmbeddingService
		err error
	)

	provider := settings.Provider
	if provider == "" {
		provider = domain.EmbeddingProviderGemini
	}

	switch provider {
	case domain.EmbeddingProviderGemini:
		apiKey := settings.APIKey
		if apiKey == "" {
			apiKey = geminiKeyFromEnv()
		}
		svc, err = gemini.NewEmbeddingService(ctx, gemini.EmbeddingConfig{
			APIKey: apiKey,
			Model:  settings.Model,
		})

	case domain.EmbeddingProviderOpenAI:
		apiKey := settings.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		svc, err = openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  apiKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unknown embedding provider %q", provider)
	}

	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := svc.Ping(pingCtx); err != nil {
		svc.Close()
		return nil, err
	}

	logger.Info("Embedding provider ready: %s (%d dimensions)", svc.ModelName(), svc.Dimensions())
	return svc, nil
}

// geminiKeyFromEnv checks the two conventional environment variables.
func geminiKeyFromEnv() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return os.Getenv("GOOGLE_API_KEY")
}
