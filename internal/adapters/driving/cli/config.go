package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/notebook-cli/internal/core/domain"
)

var (
	configEmbeddingModel string
	configChatModel      string
	configTopK           int
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage notebook configuration",
	Long: `View and change provider, model, and retrieval settings.

Settings live in a TOML file under the config directory. API keys can be
stored there or supplied via GEMINI_API_KEY / OPENAI_API_KEY instead.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Store an API key",
	Long:  `Prompts for an API key without echoing it and stores it in the settings file.`,
	RunE:  runConfigSetKey,
}

var configEmbeddingCmd = &cobra.Command{
	Use:   "embedding [provider]",
	Short: "Set the embedding provider",
	Long: `Sets the embedding provider used for retrieval.

Available providers:
  gemini - Google Generative AI (default)
  openai - OpenAI, or any OpenAI-compatible API`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigEmbedding,
}

var configChatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Set chat model options",
	RunE:  runConfigChat,
}

func init() {
	configEmbeddingCmd.Flags().StringVar(&configEmbeddingModel, "model", "", "embedding model (empty uses the provider default)")
	configChatCmd.Flags().StringVar(&configChatModel, "model", "", "chat model (empty uses the provider default)")
	configChatCmd.Flags().IntVar(&configTopK, "top-k", 0, "chunks retrieved per question")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetKeyCmd)
	configCmd.AddCommand(configEmbeddingCmd)
	configCmd.AddCommand(configChatCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if err := initConfig(); err != nil {
		return err
	}

	cmd.Println("Current Configuration")
	cmd.Println("=====================")
	cmd.Println()

	cmd.Println("[Embedding]")
	provider := settings.Embedding.Provider
	if provider == "" {
		provider = domain.EmbeddingProviderGemini
	}
	cmd.Printf("  Provider: %s\n", provider)
	cmd.Printf("  Model: %s\n", orDefault(settings.Embedding.Model, "(provider default)"))
	if settings.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	cmd.Printf("  API Key: %s\n", keyStatus(settings.Embedding.APIKey))
	cmd.Println()

	cmd.Println("[Chat]")
	cmd.Printf("  Model: %s\n", orDefault(settings.Chat.Model, "(provider default)"))
	cmd.Printf("  API Key: %s\n", keyStatus(settings.Chat.APIKey))
	cmd.Println()

	cmd.Println("[Retrieval]")
	if settings.TopK > 0 {
		cmd.Printf("  Top K: %d\n", settings.TopK)
	} else {
		cmd.Println("  Top K: (default)")
	}
	if settings.Chunking.Size > 0 {
		cmd.Printf("  Chunk size: %d\n", settings.Chunking.Size)
	}
	if settings.Chunking.Overlap > 0 {
		cmd.Printf("  Chunk overlap: %d\n", settings.Chunking.Overlap)
	}
	cmd.Println()

	cmd.Printf("Settings file: %s\n", configStore.Path())
	return nil
}

func runConfigSetKey(cmd *cobra.Command, _ []string) error {
	if err := initConfig(); err != nil {
		return err
	}

	cmd.Print("Which key? [1] chat (Gemini)  [2] embedding: ")
	reader := bufio.NewReader(os.Stdin)
	choice := readLine(reader)

	cmd.Print("Enter API key: ")
	key := readPassword()
	cmd.Println()
	if key == "" {
		return errors.New("no key entered")
	}

	switch choice {
	case "", "1":
		settings.Chat.APIKey = key
	case "2":
		settings.Embedding.APIKey = key
	default:
		return fmt.Errorf("unknown choice %q", choice)
	}

	if err := configStore.Save(settings); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}

	cmd.Println("API key saved.")
	return nil
}

func runConfigEmbedding(cmd *cobra.Command, args []string) error {
	provider := domain.EmbeddingProvider(args[0])
	if !provider.IsValid() {
		return fmt.Errorf("unknown provider %q: use gemini or openai", args[0])
	}

	if err := initConfig(); err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	if configEmbeddingModel != "" {
		settings.Embedding.Model = configEmbeddingModel
	}

	if err := configStore.Save(settings); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}

	cmd.Printf("Embedding provider set to %s.\n", provider)
	return nil
}

func runConfigChat(cmd *cobra.Command, _ []string) error {
	if err := initConfig(); err != nil {
		return err
	}

	changed := false
	if configChatModel != "" {
		settings.Chat.Model = configChatModel
		changed = true
	}
	if configTopK > 0 {
		settings.TopK = configTopK
		changed = true
	}

	if !changed {
		return errors.New("nothing to change: pass --model or --top-k")
	}

	if err := configStore.Save(settings); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}

	cmd.Println("Chat settings saved.")
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read the key without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func keyStatus(key string) string {
	if key == "" {
		return "(not set; environment is checked at startup)"
	}
	return maskAPIKey(key)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
