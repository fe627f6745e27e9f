package driven

import (
	"context"

	"github.com/pool-labs/kbsearch/internal/core/domain"
)

// EntryMetadata is the per-entry payload stored alongside a vector.
// It carries enough to assemble a search result without a store lookup.
type EntryMetadata struct {
	// Title is the document title at index time.
	Title string

	// Snippet is the leading portion of the content.
	Snippet string

	// Tags are the document tags at index time.
	Tags []string

	// Language is the document language tag.
	Language string
}

// VectorIndex provides exact nearest-neighbour search over
// (vector, document-id, metadata) tuples. One entry per document ID;
// dimensionality is constant for the lifetime of one index instance.
//
// All implementations must be safe for concurrent use.
type VectorIndex interface {
	// Insert adds a vector for the given document ID. Fails with
	// domain.ErrDimensionMismatch when the vector length differs from
	// the index's established dimension.
	Insert(ctx context.Context, id string, vector []float32, meta EntryMetadata) error

	// Remove deletes the entry for ID. Removing an absent ID is a
	// no-op, not an error.
	Remove(ctx context.Context, id string) error

	// Upsert replaces any existing entry for ID, guaranteeing at most
	// one live entry per ID at any observable point.
	Upsert(ctx context.Context, id string, vector []float32, meta EntryMetadata) error

	// Query returns the k entries nearest to the query vector by L2
	// distance, ascending, ties broken by insertion order (earlier
	// wins). Returns min(k, entry count) hits; k <= 0 yields none.
	Query(ctx context.Context, vector []float32, k int) ([]VectorHit, error)

	// Len returns the number of live entries.
	Len() int

	// Clear discards every entry. The established dimension is kept;
	// a rebuild with a different provider requires a new index.
	Clear(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// DocumentID is the matched document.
	DocumentID string

	// Distance is the L2 distance to the query vector.
	Distance float64

	// Metadata is the payload stored with the entry.
	Metadata EntryMetadata
}

// Score returns the similarity score for this hit, in (0, 1].
func (h VectorHit) Score() float64 {
	return domain.SimilarityScore(h.Distance)
}
