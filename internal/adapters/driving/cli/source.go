package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/notebook-cli/internal/core/domain"
)

var sourceListStats bool

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Manage notebook sources",
	Long: `Add, list, and remove the sources the notebook answers from.

Supported sources: plain text and markdown files, PDFs, and web pages.`,
}

var sourceAddCmd = &cobra.Command{
	Use:   "add [file...]",
	Short: "Add local files as sources",
	Long: `Ingests one or more local files. Files are ingested concurrently
and independently: a file that fails to extract does not stop the others.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSourceAdd,
}

var sourceAddURLCmd = &cobra.Command{
	Use:   "add-url [url]",
	Short: "Add a web page as a source",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourceAddURL,
}

var sourceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all sources",
	RunE:  runSourceList,
}

var sourceRemoveCmd = &cobra.Command{
	Use:   "remove [source-id]",
	Short: "Remove a source and its index entries",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourceRemove,
}

var sourceToggleCmd = &cobra.Command{
	Use:   "toggle [source-id]",
	Short: "Include or exclude a source from answers",
	Long: `Flips a source's excluded flag. An excluded source keeps its index
entries, so re-including it needs no re-embedding.`,
	Args: cobra.ExactArgs(1),
	RunE: runSourceToggle,
}

var sourceReingestCmd = &cobra.Command{
	Use:   "reingest [source-id]",
	Short: "Re-extract and re-index a source from its original location",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourceReingest,
}

func init() {
	sourceListCmd.Flags().BoolVar(&sourceListStats, "stats", false, "include vector index statistics")

	sourceCmd.AddCommand(sourceAddCmd)
	sourceCmd.AddCommand(sourceAddURLCmd)
	sourceCmd.AddCommand(sourceListCmd)
	sourceCmd.AddCommand(sourceRemoveCmd)
	sourceCmd.AddCommand(sourceToggleCmd)
	sourceCmd.AddCommand(sourceReingestCmd)
	rootCmd.AddCommand(sourceCmd)
}

func runSourceAdd(cmd *cobra.Command, args []string) error {
	if err := initNotebook(cmd.Context()); err != nil {
		return err
	}

	results, err := notebookService.AddSources(cmd.Context(), args)
	if err != nil {
		if errors.Is(err, domain.ErrSourceLimit) {
			return fmt.Errorf("source limit reached: remove a source before adding more")
		}
		return fmt.Errorf("add failed: %w", err)
	}

	failed := 0
	for i := range results {
		printSource(cmd, &results[i])
		if results[i].Status == domain.SourceStatusError {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d source(s) failed to ingest", failed, len(results))
	}
	return nil
}

func runSourceAddURL(cmd *cobra.Command, args []string) error {
	if err := initNotebook(cmd.Context()); err != nil {
		return err
	}

	src, err := notebookService.AddSourceFromURL(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("add failed: %w", err)
	}

	printSource(cmd, src)
	if src.Status == domain.SourceStatusError {
		return fmt.Errorf("could not ingest %s", args[0])
	}
	return nil
}

func runSourceList(cmd *cobra.Command, _ []string) error {
	if err := initNotebook(cmd.Context()); err != nil {
		return err
	}

	sources, err := notebookService.Sources(cmd.Context())
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	if len(sources) == 0 {
		cmd.Println("No sources. Add one with 'notebook source add <file>'.")
		return nil
	}

	cmd.Printf("Sources (%d):\n\n", len(sources))
	for i := range sources {
		printSource(cmd, &sources[i])
	}

	if sourceListStats {
		stats, err := notebookService.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("stats failed: %w", err)
		}
		cmd.Println("Index:")
		cmd.Printf("  Chunks:  %d\n", stats.TotalChunks)
		cmd.Printf("  Sources: %d\n", stats.SourceCount)
	}

	return nil
}

func runSourceRemove(cmd *cobra.Command, args []string) error {
	if err := initNotebook(cmd.Context()); err != nil {
		return err
	}

	if err := notebookService.DeleteSource(cmd.Context(), args[0]); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no source with ID %s", args[0])
		}
		return fmt.Errorf("remove failed: %w", err)
	}

	cmd.Printf("Removed source %s.\n", args[0])
	return nil
}

func runSourceToggle(cmd *cobra.Command, args []string) error {
	if err := initNotebook(cmd.Context()); err != nil {
		return err
	}

	if err := notebookService.ToggleExclusion(cmd.Context(), args[0]); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no source with ID %s", args[0])
		}
		return fmt.Errorf("toggle failed: %w", err)
	}

	cmd.Printf("Toggled source %s.\n", args[0])
	return nil
}

func runSourceReingest(cmd *cobra.Command, args []string) error {
	if err := initNotebook(cmd.Context()); err != nil {
		return err
	}

	if err := notebookService.ReingestSource(cmd.Context(), args[0]); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no source with ID %s", args[0])
		}
		return fmt.Errorf("reingest failed: %w", err)
	}

	cmd.Printf("Re-ingested source %s.\n", args[0])
	return nil
}

// printSource renders one source with its status and summary, if any.
func printSource(cmd *cobra.Command, src *domain.Source) {
	marker := " "
	if src.Excluded {
		marker = "x"
	}

	cmd.Printf("  [%s] %s (%s, %s)\n", marker, src.Name, src.Kind, src.Status)
	cmd.Printf("      ID: %s\n", src.ID)

	switch src.Status {
	case domain.SourceStatusError:
		cmd.Printf("      Error: %s\n", src.Content)
	case domain.SourceStatusReady:
		if !src.Indexed {
			cmd.Println("      Not indexed; answers use full content.")
		}
		if src.Summary != nil && src.Summary.Summary != "" {
			cmd.Printf("      %s\n", src.Summary.Summary)
		}
	}
	cmd.Println()
}
