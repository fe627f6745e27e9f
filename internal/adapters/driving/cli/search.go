package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pool-labs/kbsearch/internal/core/domain"
)

var (
	searchLimit    int
	searchLanguage string
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the knowledge base",
	Long: `Returns the most relevant documents for a free-text query.
Uses semantic vector search when an embedding provider is available,
and keyword search otherwise. The mode actually used is reported with
the results.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultLimit, "maximum number of results")
	searchCmd.Flags().StringVarP(&searchLanguage, "language", "l", "", "filter results by language tag")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchService == nil {
		return errors.New("search service not configured")
	}

	ctx := context.Background()
	opts := domain.SearchOptions{
		Limit:    searchLimit,
		Language: searchLanguage,
	}

	resp, err := searchService.Search(ctx, query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, resp)
	}

	return outputSearchTable(cmd, resp)
}

func outputSearchJSON(cmd *cobra.Command, resp *domain.SearchResponse) error {
	payload := struct {
		Results  []domain.SearchResult `json:"results"`
		ModeUsed string                `json:"mode_used"`
	}{
		Results:  resp.Results,
		ModeUsed: string(resp.ModeUsed),
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, resp *domain.SearchResponse) error {
	if len(resp.Results) == 0 {
		cmd.Printf("No results found (mode: %s).\n", resp.ModeUsed)
		return nil
	}

	cmd.Printf("Results (mode: %s):\n", resp.ModeUsed)
	cmd.Println()
	for i := range resp.Results {
		r := &resp.Results[i]
		title := r.Title
		if title == "" {
			title = r.DocumentID
		}

		cmd.Printf("  [%d] %s (%.3f)\n", i+1, title, r.Score)
		cmd.Printf("      %s\n", r.Reason)
		if r.MatchedSnippet != "" {
			cmd.Printf("      %s\n", r.MatchedSnippet)
		}
		cmd.Println()
	}

	return nil
}
