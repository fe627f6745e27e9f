// Package cli implements the kbsearch command-line interface using
// cobra. Commands are thin adapters over the driving ports; wiring is
// injected by the composition root via SetServices.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pool-labs/kbsearch/internal/core/ports/driven"
	"github.com/pool-labs/kbsearch/internal/core/ports/driving"
	"github.com/pool-labs/kbsearch/internal/logger"
)

// version is set by Execute from build information.
var version = "dev"

// Services injected by the composition root.
var (
	searchService   driving.RetrievalService
	documentService driving.DocumentService
	configStore     driven.ConfigStore

	// seedFunc populates an empty store with sample documents.
	seedFunc func(ctx context.Context) (int, error)
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "kbsearch",
	Short: "Semantic search over a local knowledge base",
	Long: `kbsearch indexes knowledge-base documents and answers relevance
queries. It uses embedding-based vector search when an embedding
provider is configured, and falls back to keyword search otherwise.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "verbose logging to stderr")
}

// SetServices injects the application services. Must be called before
// Execute.
func SetServices(
	search driving.RetrievalService,
	documents driving.DocumentService,
	config driven.ConfigStore,
) {
	searchService = search
	documentService = documents
	configStore = config
}

// SetSeeder injects the sample-corpus seeding function.
func SetSeeder(fn func(ctx context.Context) (int, error)) {
	seedFunc = fn
}

// Execute runs the root command.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	return rootCmd.Execute()
}
