package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/notebook-cli/internal/core/domain"
)

var synthesizeCmd = &cobra.Command{
	Use:   "synthesize [format]",
	Short: "Generate a cross-source study artifact",
	Long: `Generates a one-shot artifact from the full content of every
included source.

Available formats:
  summary    - Prose overview of all sources
  outline    - Hierarchical bullet structure
  flashcards - Question/answer pairs`,
	Args: cobra.ExactArgs(1),
	RunE: runSynthesize,
}

func init() {
	rootCmd.AddCommand(synthesizeCmd)
}

func runSynthesize(cmd *cobra.Command, args []string) error {
	format := domain.SynthesisFormat(args[0])
	if !format.IsValid() {
		return fmt.Errorf("unknown format %q: use summary, outline, or flashcards", args[0])
	}

	if err := initNotebook(cmd.Context()); err != nil {
		return err
	}

	out, err := notebookService.Synthesize(cmd.Context(), format)
	if err != nil {
		if errors.Is(err, domain.ErrNoSources) {
			return fmt.Errorf("no usable sources: add one with 'notebook source add <file>'")
		}
		return fmt.Errorf("synthesize failed: %w", err)
	}

	cmd.Println(out)
	return nil
}
