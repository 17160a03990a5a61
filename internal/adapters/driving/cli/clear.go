package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the chat or the whole notebook",
}

var clearChatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Clear the conversation history",
	Long:  `Removes all chat messages. Sources and their index entries are kept.`,
	RunE:  runClearChat,
}

var clearAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Clear everything: sources, index, and chat",
	RunE:  runClearAll,
}

func init() {
	clearCmd.AddCommand(clearChatCmd)
	clearCmd.AddCommand(clearAllCmd)
	rootCmd.AddCommand(clearCmd)
}

func runClearChat(cmd *cobra.Command, _ []string) error {
	if err := initNotebook(cmd.Context()); err != nil {
		return err
	}

	if err := notebookService.ClearChat(cmd.Context()); err != nil {
		return fmt.Errorf("clear failed: %w", err)
	}

	cmd.Println("Chat cleared.")
	return nil
}

func runClearAll(cmd *cobra.Command, _ []string) error {
	if err := initNotebook(cmd.Context()); err != nil {
		return err
	}

	if err := notebookService.ClearWorkspace(cmd.Context()); err != nil {
		return fmt.Errorf("clear failed: %w", err)
	}

	cmd.Println("Notebook cleared.")
	return nil
}
