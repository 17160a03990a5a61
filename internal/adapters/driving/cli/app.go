package cli

import (
	"context"
	"fmt"

	"github.com/custodia-labs/notebook-cli/internal/adapters/driven/ai"
	configfile "github.com/custodia-labs/notebook-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/notebook-cli/internal/adapters/driven/extract"
	"github.com/custodia-labs/notebook-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/notebook-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/notebook-cli/internal/chunker"
	"github.com/custodia-labs/notebook-cli/internal/core/domain"
	"github.com/custodia-labs/notebook-cli/internal/core/ports/driving"
	"github.com/custodia-labs/notebook-cli/internal/core/services"
)

// Application state shared by the commands. Built lazily because not
// every command needs AI providers or storage.
var (
	configStore     *configfile.ConfigStore
	settings        *domain.Settings
	aiServices      *ai.InitResult
	store           *sqlite.Store
	notebookService driving.NotebookService
)

// initConfig builds the config store and loads settings. Idempotent.
func initConfig() error {
	if configStore != nil {
		return nil
	}

	cs, err := configfile.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}

	s, err := cs.Load()
	if err != nil {
		return fmt.Errorf("loading settings from %s: %w", cs.Path(), err)
	}

	configStore = cs
	settings = s
	return nil
}

// initNotebook builds the full application: providers, storage, and the
// notebook service, then rebuilds the vector index from persisted
// sources. Idempotent.
func initNotebook(ctx context.Context) error {
	if notebookService != nil {
		return nil
	}

	if err := initConfig(); err != nil {
		return err
	}

	result, err := ai.Init(ctx, settings)
	if err != nil {
		return err
	}
	aiServices = result

	for _, warning := range result.Warnings {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "warning: %s\n", warning)
	}

	db, err := sqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("opening notebook database: %w", err)
	}
	store = db

	var chunkOpts []chunker.Option
	if settings.Chunking.Size > 0 {
		chunkOpts = append(chunkOpts, chunker.WithChunkSize(settings.Chunking.Size))
	}
	if settings.Chunking.Overlap > 0 {
		chunkOpts = append(chunkOpts, chunker.WithOverlap(settings.Chunking.Overlap))
	}

	var gateway *services.EmbeddingGateway
	if result.EmbeddingService != nil {
		gateway = services.NewEmbeddingGateway(result.EmbeddingService)
	}

	vectorStore := memory.NewVectorStore(chunker.New(chunkOpts...), gateway)

	var notebookOpts []services.NotebookOption
	if settings.TopK > 0 {
		notebookOpts = append(notebookOpts, services.WithTopK(settings.TopK))
	}

	notebookService = services.NewNotebookService(
		db.SourceStore(),
		vectorStore,
		gateway,
		result.Conversation,
		db.TranscriptStore(),
		extract.NewRegistry(),
		notebookOpts...,
	)

	// Vectors are not persisted, so the index is rebuilt from stored
	// source content on every start.
	if err := notebookService.RebuildIndex(ctx); err != nil {
		return fmt.Errorf("rebuilding index: %w", err)
	}

	return nil
}

// closeApp releases providers and storage. Safe to call when nothing was
// initialised.
func closeApp() {
	if aiServices != nil {
		aiServices.Close()
		aiServices = nil
	}
	if store != nil {
		store.Close() //nolint:errcheck // shutdown path
		store = nil
	}
	notebookService = nil
}
