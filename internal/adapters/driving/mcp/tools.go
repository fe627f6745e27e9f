package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pool-labs/kbsearch/internal/core/domain"
	"github.com/pool-labs/kbsearch/internal/core/ports/driving"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query    string `json:"query" jsonschema:"the search query to find documents"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"maximum number of results to return (default 3)"`
	Language string `json:"language,omitempty" jsonschema:"filter results by language tag"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results  []SearchResultOutput `json:"results"`
	Count    int                  `json:"count"`
	ModeUsed string               `json:"mode_used"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	DocumentID string  `json:"document_id"`
	Title      string  `json:"title"`
	Score      float64 `json:"score"`
	Snippet    string  `json:"snippet,omitempty"`
	Reason     string  `json:"reason"`
	Language   string  `json:"language,omitempty"`
}

// AddPostInput is the input schema for the add_post tool.
type AddPostInput struct {
	Title    string   `json:"title" jsonschema:"the document title"`
	Content  string   `json:"content" jsonschema:"the full document content"`
	Tags     []string `json:"tags,omitempty" jsonschema:"free-form labels for the document"`
	Language string   `json:"language,omitempty" jsonschema:"language tag, defaults to zh-CN"`
}

// AddPostOutput is the output schema for the add_post tool.
type AddPostOutput struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search the knowledge base for relevant documents",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "add_post",
		Description: "Add a new document to the knowledge base",
	}, s.handleAddPost)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	opts := domain.SearchOptions{
		Limit:    input.TopK,
		Language: input.Language,
	}

	resp, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results:  make([]SearchResultOutput, len(resp.Results)),
		Count:    len(resp.Results),
		ModeUsed: string(resp.ModeUsed),
	}

	for i := range resp.Results {
		output.Results[i] = SearchResultOutput{
			DocumentID: resp.Results[i].DocumentID,
			Title:      resp.Results[i].Title,
			Score:      resp.Results[i].Score,
			Snippet:    resp.Results[i].MatchedSnippet,
			Reason:     resp.Results[i].Reason,
			Language:   resp.Results[i].Language,
		}
	}

	return nil, output, nil
}

// handleAddPost handles the add_post tool invocation.
func (s *Server) handleAddPost(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AddPostInput,
) (*mcp.CallToolResult, AddPostOutput, error) {
	if s.ports.Documents == nil {
		return nil, AddPostOutput{}, errors.New("document service is not available")
	}

	doc, err := s.ports.Documents.Create(ctx, driving.DocumentInput{
		Title:    input.Title,
		Content:  input.Content,
		Tags:     input.Tags,
		Language: input.Language,
	})
	if err != nil {
		return nil, AddPostOutput{}, err
	}

	return nil, AddPostOutput{DocumentID: doc.ID, Title: doc.Title}, nil
}
