package cli

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/notebook-cli/internal/adapters/driven/watch"
	"github.com/custodia-labs/notebook-cli/internal/adapters/driving/tui"
	"github.com/custodia-labs/notebook-cli/internal/core/domain"
	"github.com/custodia-labs/notebook-cli/internal/logger"
)

var chatWatch bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive chat",
	Long: `Opens the interactive chat interface.

Controls:
  Enter  - Send message
  Esc    - Stop generating (partial answer is kept)
  Ctrl-C - Quit`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatWatch, "watch", false, "re-ingest file sources when they change on disk")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	// Stack traces beat a garbled terminal when the TUI panics.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in chat: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if err := initNotebook(cmd.Context()); err != nil {
		return err
	}

	if chatWatch {
		stop, err := startWatcher(cmd)
		if err != nil {
			return err
		}
		defer stop()
	}

	model, err := tui.New(cmd.Context(), notebookService)
	if err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat error: %w", err)
	}
	return nil
}

// startWatcher wires every current file-backed source into a filesystem
// watcher that re-ingests it on change.
func startWatcher(cmd *cobra.Command) (func(), error) {
	watcher, err := watch.New(notebookService)
	if err != nil {
		return nil, fmt.Errorf("starting watcher: %w", err)
	}

	sources, err := notebookService.Sources(cmd.Context())
	if err != nil {
		watcher.Close() //nolint:errcheck // setup failure path
		return nil, err
	}

	watched := 0
	for i := range sources {
		if sources[i].Kind == domain.SourceKindURL {
			continue
		}
		if err := watcher.Add(sources[i].Ref, sources[i].ID); err != nil {
			logger.Warn("Cannot watch %s: %v", sources[i].Ref, err)
			continue
		}
		watched++
	}
	logger.Info("Watching %d file source(s)", watched)

	ctx, cancel := context.WithCancel(cmd.Context())
	go watcher.Run(ctx)

	return func() {
		cancel()
		watcher.Close() //nolint:errcheck // shutdown path
	}, nil
}
