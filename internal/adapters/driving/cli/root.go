// Package cli implements the command-line interface for the notebook.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/notebook-cli/internal/logger"
)

var (
	verbose   bool
	configDir string
	dataDir   string
)

var rootCmd = &cobra.Command{
	Use:   "notebook",
	Short: "Chat with your own sources",
	Long: `Notebook is a research assistant grounded in your own documents.

Add text files, PDFs, and web pages as sources, then ask questions.
Answers are generated strictly from your sources, with numbered
citations back to them.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "config directory (default ~/.notebook)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.notebook/data)")
}

// Execute runs the root command and releases the application's resources
// when it returns.
func Execute() error {
	defer closeApp()
	return rootCmd.Execute()
}
