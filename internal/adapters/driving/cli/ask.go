package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/notebook-cli/internal/core/domain"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question grounded in your sources",
	Long: `Asks a single question and streams the answer to the terminal.
Statements in the answer cite sources by number, like [1]; the cited
sources are listed after the answer. Press Ctrl-C to stop generating;
the partial answer is kept.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := initNotebook(cmd.Context()); err != nil {
		return err
	}

	// Ctrl-C stops generation instead of killing the process so the
	// partial answer still gets printed and persisted.
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)
	go func() {
		for range interrupts {
			notebookService.StopGenerating()
		}
	}()

	printed := 0
	reply, err := notebookService.SendMessage(cmd.Context(), args[0], func(msg domain.ChatMessage) {
		// Cumulative text; print only what is new.
		if len(msg.Text) > printed {
			cmd.Print(msg.Text[printed:])
			printed = len(msg.Text)
		}
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoSources):
			return fmt.Errorf("no usable sources: add one with 'notebook source add <file>'")
		case errors.Is(err, domain.ErrInvalidInput):
			return fmt.Errorf("empty question")
		default:
			return fmt.Errorf("ask failed: %w", err)
		}
	}

	cmd.Println()
	printCitedSources(cmd, reply.CitedSources)
	return nil
}

// printCitedSources lists the numbered sources a reply drew on.
func printCitedSources(cmd *cobra.Command, sources []domain.Source) {
	if len(sources) == 0 {
		return
	}

	cmd.Println()
	cmd.Println("Sources:")
	for i := range sources {
		cmd.Printf("  [%d] %s\n", i+1, sources[i].Name)
	}
}
