package driving

import (
	"context"

	"github.com/pool-labs/kbsearch/internal/core/domain"
)

// RetrievalService answers top-k relevance queries over the knowledge
// base and keeps the index consistent with document mutations.
type RetrievalService interface {
	// Search returns the most relevant documents for a free-text
	// query. It always returns something (possibly empty) unless the
	// document store itself is unreachable; embedding failures degrade
	// to keyword retrieval and are reflected in ModeUsed.
	Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchResponse, error)

	// Reindex recomputes the embedding for a single document and
	// replaces its index entry. Returns domain.ErrNotFound when the
	// document does not exist.
	Reindex(ctx context.Context, documentID string) error

	// Rebuild discards the index and rebuilds it from the document
	// store, re-embedding every active document.
	Rebuild(ctx context.Context) error

	// State reports the engine's current phase and mode.
	State() domain.EngineState

	// HandleEvent applies one committed document mutation to the
	// indexes. Stores call this through Subscribe; it is exposed so
	// composition code can forward events from other origins.
	HandleEvent(evt domain.DocumentEvent)
}
