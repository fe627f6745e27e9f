package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var reindexAll bool

var reindexCmd = &cobra.Command{
	Use:   "reindex [doc-id]",
	Short: "Recompute index entries",
	Long: `Recomputes the index entries for one document, or rebuilds the
whole index from the document store with --all. A full rebuild is the
recovery path after switching embedding models.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReindex,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show engine phase and retrieval mode",
	RunE:  runStatus,
}

func init() {
	reindexCmd.Flags().BoolVar(&reindexAll, "all", false, "rebuild the whole index")
	rootCmd.AddCommand(reindexCmd)
	rootCmd.AddCommand(statusCmd)
}

func runReindex(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	ctx := context.Background()

	if reindexAll {
		if len(args) > 0 {
			return errors.New("cannot combine --all with a document ID")
		}
		cmd.Println("Rebuilding index...")
		if err := searchService.Rebuild(ctx); err != nil {
			return fmt.Errorf("rebuild failed: %w", err)
		}
		cmd.Println("Index rebuilt.")
		return nil
	}

	if len(args) == 0 {
		return errors.New("a document ID or --all is required")
	}

	if err := searchService.Reindex(ctx, args[0]); err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}
	cmd.Printf("Reindexed document %s.\n", args[0])
	return nil
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	state := searchService.State()
	cmd.Printf("Phase: %s\n", state.Phase)
	cmd.Printf("Mode:  %s\n", state.Mode)
	return nil
}
