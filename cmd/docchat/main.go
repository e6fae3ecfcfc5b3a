// Command docchat is a desktop RAG assistant: it ingests local
// documents and answers questions grounded in their content through a
// local Ollama-compatible inference server.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/custodia-labs/docchat-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docchat-cli/internal/adapters/driven/inference/ollama"
	"github.com/custodia-labs/docchat-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docchat-cli/internal/adapters/driven/watcher"
	"github.com/custodia-labs/docchat-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/docchat-cli/internal/chunking"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docchat-cli/internal/core/services"
	"github.com/custodia-labs/docchat-cli/internal/logger"
	"github.com/custodia-labs/docchat-cli/internal/resilience"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	settingsStore, err := file.NewSettingsStore("")
	if err != nil {
		return fmt.Errorf("opening settings store: %w", err)
	}

	settings, err := settingsStore.Load()
	if err != nil {
		logger.Warn("Config unusable, falling back to defaults: %v", err)
	}

	store, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer store.Close()

	client := resilience.New(resilience.Config{
		MaxRetries:       settings.MaxRetries,
		BaseDelay:        settings.RetryBaseDelay,
		BreakerThreshold: settings.BreakerThreshold,
		BreakerCooldown:  settings.BreakerCooldown,
		MaxConcurrent:    settings.MaxConcurrentRequests,
		Timeout:          settings.RequestTimeout,
	})

	embedder := ollama.NewEmbeddingService(client, ollama.EmbeddingConfig{
		BaseURL: settings.BaseURL,
		Model:   settings.EmbeddingModel,
	})
	defer embedder.Close()

	generator := ollama.NewGenerationService(client, ollama.GenerationConfig{
		BaseURL: settings.BaseURL,
		Model:   settings.GenerationModel,
	})
	defer generator.Close()

	engine := chunking.New(
		chunking.WithChunkSize(settings.ChunkSize),
		chunking.WithOverlap(settings.ChunkOverlap),
	)

	docStore := store.DocumentStore()
	vectorStore := store.VectorStore()

	documentService := services.NewDocumentService(docStore, vectorStore, engine, embedder, settings)
	retrieval := services.NewRetrievalService(vectorStore, embedder, settings)
	chatService := services.NewChatService(retrieval, services.NewPromptComposer(), generator, settings)

	// Source watching is best-effort; the CLI works without it.
	if w, err := watcher.New(docStore); err == nil {
		defer w.Close()
		documentService.SetWatcher(w)
		watchKnownSources(w, docStore)
	} else {
		logger.Warn("File watching unavailable: %v", err)
	}

	cli.SetServices(documentService, chatService, settingsStore)
	return cli.Execute()
}

// watchKnownSources registers the source files of already-processed
// documents so external edits show up as stale during the session.
func watchKnownSources(w *watcher.Watcher, docStore driven.DocumentStore) {
	docs, err := docStore.ListDocuments(context.Background())
	if err != nil {
		logger.Debug("Listing documents for watch registration: %v", err)
		return
	}
	for i := range docs {
		if !docs[i].Processed {
			continue
		}
		if err := w.Watch(docs[i].SourcePath, docs[i].ID); err != nil {
			logger.Debug("Watching %s: %v", docs[i].SourcePath, err)
		}
	}
}
