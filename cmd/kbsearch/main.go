// Command kbsearch is the knowledge-base retrieval CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pool-labs/kbsearch/internal/adapters/driven/config/file"
	"github.com/pool-labs/kbsearch/internal/adapters/driven/embedding/disabled"
	"github.com/pool-labs/kbsearch/internal/adapters/driven/embedding/ollama"
	"github.com/pool-labs/kbsearch/internal/adapters/driven/embedding/openai"
	"github.com/pool-labs/kbsearch/internal/adapters/driven/index/keyword"
	"github.com/pool-labs/kbsearch/internal/adapters/driven/index/linear"
	filestore "github.com/pool-labs/kbsearch/internal/adapters/driven/storage/file"
	"github.com/pool-labs/kbsearch/internal/adapters/driven/storage/memory"
	"github.com/pool-labs/kbsearch/internal/adapters/driven/storage/sqlite"
	"github.com/pool-labs/kbsearch/internal/adapters/driving/cli"
	"github.com/pool-labs/kbsearch/internal/core/ports/driven"
	"github.com/pool-labs/kbsearch/internal/core/services"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	config, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}

	docStore, err := newDocumentStore(config)
	if err != nil {
		return fmt.Errorf("opening document store: %w", err)
	}
	defer docStore.Close()

	embedder := newEmbeddingService(config)
	defer embedder.Close()

	vectorIndex := linear.New(embedder.Dimensions())
	keywordIndex := keyword.New()

	engine := services.NewRetrievalEngine(docStore, embedder, vectorIndex, keywordIndex)
	if limit := config.GetInt("search.default_limit"); limit > 0 {
		engine.SetDefaultLimit(limit)
	}
	documents := services.NewDocumentService(docStore)

	ctx := context.Background()
	if err := engine.Start(ctx); err != nil {
		return fmt.Errorf("starting retrieval engine: %w", err)
	}

	cli.SetServices(engine, documents, config)
	cli.SetSeeder(documents.Seed)
	return cli.Execute(version)
}

// newDocumentStore picks the storage backend from configuration.
// SQLite is the default.
func newDocumentStore(config driven.ConfigStore) (driven.DocumentStore, error) {
	dataDir := config.GetString("storage.data_dir")

	switch config.GetString("storage.backend") {
	case "file":
		return filestore.NewDocumentStore(dataDir)
	case "memory":
		return memory.NewDocumentStore(), nil
	default:
		return sqlite.NewStore(dataDir)
	}
}

// newEmbeddingService picks the embedding provider from configuration.
// No provider, or a misconfigured one, yields the disabled provider and
// keyword-only retrieval rather than a startup error.
func newEmbeddingService(config driven.ConfigStore) driven.EmbeddingService {
	switch config.GetString("embedding.provider") {
	case "openai":
		svc, err := openai.NewEmbeddingService(openai.Config{
			APIKey:  config.GetString("embedding.api_key"),
			BaseURL: config.GetString("embedding.base_url"),
			Model:   config.GetString("embedding.model"),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v; falling back to keyword search\n", err)
			return disabled.NewEmbeddingService()
		}
		return svc
	case "ollama":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL: config.GetString("embedding.base_url"),
			Model:   config.GetString("embedding.model"),
		})
	default:
		return disabled.NewEmbeddingService()
	}
}
