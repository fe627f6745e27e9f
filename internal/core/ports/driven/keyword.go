package driven

import (
	"context"

	"github.com/pool-labs/kbsearch/internal/core/domain"
)

// KeywordIndex is the deterministic retrieval fallback. It scores
// documents by literal term overlap against title and content, with
// title matches weighted higher. It never depends on an embedding
// provider.
type KeywordIndex interface {
	// Index adds or replaces a document in the keyword index.
	Index(ctx context.Context, doc domain.Document) error

	// Remove deletes a document from the index. Removing an absent ID
	// is a no-op.
	Remove(ctx context.Context, id string) error

	// Search returns up to k documents with nonzero overlap score,
	// descending by score, ties broken most-recently-updated first.
	Search(ctx context.Context, query string, k int) ([]KeywordHit, error)

	// Len returns the number of indexed documents.
	Len() int

	// Clear discards every indexed document.
	Clear(ctx context.Context) error
}

// KeywordHit represents a keyword search result.
type KeywordHit struct {
	// Document is the matched document as indexed.
	Document domain.Document

	// Score is the normalised overlap score in (0, 1].
	Score float64

	// MatchedTerms are the query terms that hit title or content.
	MatchedTerms []string
}
