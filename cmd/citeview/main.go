// Command citeview is the citation-grounded document Q&A CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/citeview-labs/citeview-cli/internal/adapters/driven/ai"
	"github.com/citeview-labs/citeview-cli/internal/adapters/driven/config/file"
	"github.com/citeview-labs/citeview-cli/internal/adapters/driven/storage/sqlite"
	"github.com/citeview-labs/citeview-cli/internal/adapters/driven/vector"
	"github.com/citeview-labs/citeview-cli/internal/adapters/driven/vector/flat"
	"github.com/citeview-labs/citeview-cli/internal/adapters/driven/vector/pinecone"
	"github.com/citeview-labs/citeview-cli/internal/adapters/driving/cli"
	"github.com/citeview-labs/citeview-cli/internal/chunker"
	"github.com/citeview-labs/citeview-cli/internal/core/ports/driven"
	"github.com/citeview-labs/citeview-cli/internal/core/services"
	"github.com/citeview-labs/citeview-cli/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	promptStore, err := file.NewPromptStore("")
	if err != nil {
		return fmt.Errorf("loading prompts: %w", err)
	}

	store, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("opening metadata store: %w", err)
	}
	defer store.Close()

	vectorStore, err := buildVectorStore(configStore)
	if err != nil {
		return err
	}
	defer vectorStore.Close()

	// AI services are optional at startup: without them ingest and ask
	// fail with a clear message while docs, history, config, and stats
	// keep working.
	embeddingSettings := configStore.EmbeddingSettings()
	embeddingService, err := ai.CreateAndValidateEmbeddingService(&embeddingSettings)
	if err != nil {
		logger.Warn("Embedding service unavailable: %v", err)
	}
	if embeddingService != nil {
		defer embeddingService.Close()
	}

	llmSettings := configStore.LLMSettings()
	llmService, err := ai.CreateLLMService(&llmSettings)
	if err != nil {
		logger.Warn("LLM service unavailable: %v", err)
	}
	if llmService != nil {
		defer llmService.Close()
	}

	chunking := configStore.ChunkingSettings()
	ck := chunker.New(
		chunker.WithTargetTokens(chunking.TargetTokens),
		chunker.WithOverlapTokens(chunking.OverlapTokens),
	)

	searchService := services.NewSearchService(
		store.DocumentStore(), vectorStore, embeddingService, store.LexicalSearch())
	askService := services.NewAskService(
		searchService, store.DocumentStore(), store.ChatLogStore(), llmService, promptStore)
	ingestService := services.NewIngestService(
		store.DocumentStore(), vectorStore, embeddingService, ck)

	cli.Configure(cli.Services{
		Search:      searchService,
		Ask:         askService,
		Ingest:      ingestService,
		Documents:   store.DocumentStore(),
		VectorStore: vectorStore,
		Config:      configStore,
	})

	return cli.ExecuteContext(ctx)
}

// buildVectorStore assembles the dual-backend façade: Pinecone when
// configured, the local flat index always.
func buildVectorStore(configStore *file.ConfigStore) (driven.VectorStore, error) {
	settings := configStore.VectorStoreSettings()

	var primary driven.VectorBackend
	if client := pinecone.NewClient(pinecone.Config{
		APIKey: settings.PineconeAPIKey,
		Host:   settings.PineconeHost,
	}); client != nil {
		primary = client
	}

	var fallback driven.VectorBackend
	index, err := flat.NewIndex(settings.DataDir, settings.Dimensions)
	if err != nil {
		logger.Warn("Local vector index unavailable: %v", err)
	} else {
		fallback = index
	}

	vectorStore, err := vector.NewStore(primary, fallback)
	if err != nil {
		return nil, fmt.Errorf("initialising vector store: %w", err)
	}
	return vectorStore, nil
}
