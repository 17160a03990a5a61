package domain

// EmbeddingProvider identifies an embedding service provider.
type EmbeddingProvider string

// Available embedding providers.
const (
	// EmbeddingProviderGemini is the Google Generative AI API.
	EmbeddingProviderGemini EmbeddingProvider = "gemini"

	// EmbeddingProviderOpenAI is the OpenAI cloud API.
	EmbeddingProviderOpenAI EmbeddingProvider = "openai"
)

// IsValid returns true if the embedding provider is recognised.
func (p EmbeddingProvider) IsValid() bool {
	switch p {
	case EmbeddingProviderGemini, EmbeddingProviderOpenAI:
		return true
	default:
		return false
	}
}

// Settings is the persisted notebook configuration.
type Settings struct {
	// Embedding configures the embedding provider. When unconfigured,
	// retrieval is disabled and grounding uses full source content.
	Embedding EmbeddingSettings `toml:"embedding"`

	// Chat configures the conversational provider.
	Chat ChatSettings `toml:"chat"`

	// Chunking configures how source text is split.
	Chunking ChunkingSettings `toml:"chunking"`

	// TopK is how many chunks each turn retrieves (default 5).
	TopK int `toml:"top_k"`
}

// EmbeddingSettings configures the embedding provider.
type EmbeddingSettings struct {
	// Provider selects the embedding backend (gemini or openai).
	Provider EmbeddingProvider `toml:"provider"`

	// Model is the embedding model name; empty uses the provider default.
	Model string `toml:"model"`

	// APIKey authenticates with the provider. May be left empty and
	// supplied via environment instead.
	APIKey string `toml:"api_key"`

	// BaseURL overrides the API endpoint (OpenAI-compatible APIs only).
	BaseURL string `toml:"base_url"`
}

// IsConfigured returns true if the embedding settings name a provider.
func (s *EmbeddingSettings) IsConfigured() bool {
	return s != nil && s.Provider != ""
}

// ChatSettings configures the conversational provider.
type ChatSettings struct {
	// Model is the chat model name; empty uses the provider default.
	Model string `toml:"model"`

	// APIKey authenticates with the Gemini API. May be left empty and
	// supplied via environment instead.
	APIKey string `toml:"api_key"`
}

// ChunkingSettings configures how source text is split into chunks.
type ChunkingSettings struct {
	// Size is the target chunk size in characters (default 1000).
	Size int `toml:"size"`

	// Overlap is the overlap between chunks in characters (default 200).
	Overlap int `toml:"overlap"`
}
