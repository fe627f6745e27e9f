// Package linear provides an in-memory exact nearest-neighbour index
// using a brute-force L2 scan. Exact search is a deliberate scope
// choice: the target corpus is hundreds to low thousands of documents,
// where a linear scan beats the bookkeeping of an approximate index.
package linear

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/pool-labs/kbsearch/internal/core/domain"
	"github.com/pool-labs/kbsearch/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// entry is one live (vector, document-id, metadata) tuple.
type entry struct {
	id     string
	vector []float32
	meta   driven.EntryMetadata

	// seq orders entries by insertion for deterministic tie-breaking.
	seq uint64
}

// Index is a brute-force exact L2 nearest-neighbour index.
// Safe for concurrent use: queries take a read lock, mutations a write
// lock. The dimension is established at construction or by the first
// insert and is constant for the index's lifetime.
type Index struct {
	mu        sync.RWMutex
	dimension int
	entries   map[string]*entry
	nextSeq   uint64
}

// New creates an index. A zero dimension is established by the first
// inserted vector.
func New(dimension int) *Index {
	return &Index{
		dimension: dimension,
		entries:   make(map[string]*entry),
	}
}

// Insert adds a vector for the given document ID.
func (idx *Index) Insert(_ context.Context, id string, vector []float32, meta driven.EntryMetadata) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.insertLocked(id, vector, meta)
}

func (idx *Index) insertLocked(id string, vector []float32, meta driven.EntryMetadata) error {
	if len(vector) == 0 {
		return fmt.Errorf("%w: empty vector for %s", domain.ErrDimensionMismatch, id)
	}
	if idx.dimension == 0 {
		idx.dimension = len(vector)
	}
	if len(vector) != idx.dimension {
		return fmt.Errorf("%w: got %d, index dimension is %d",
			domain.ErrDimensionMismatch, len(vector), idx.dimension)
	}

	stored := make([]float32, len(vector))
	copy(stored, vector)

	idx.nextSeq++
	idx.entries[id] = &entry{
		id:     id,
		vector: stored,
		meta:   meta,
		seq:    idx.nextSeq,
	}
	return nil
}

// Remove deletes the entry for ID. Absent IDs are a no-op.
func (idx *Index) Remove(_ context.Context, id string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.entries, id)
	return nil
}

// Upsert replaces any existing entry for ID. The dimension check runs
// before the old entry is touched, so a mismatch never corrupts
// existing state.
func (idx *Index) Upsert(_ context.Context, id string, vector []float32, meta driven.EntryMetadata) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.dimension != 0 && len(vector) != idx.dimension {
		return fmt.Errorf("%w: got %d, index dimension is %d",
			domain.ErrDimensionMismatch, len(vector), idx.dimension)
	}

	delete(idx.entries, id)
	return idx.insertLocked(id, vector, meta)
}

// Query scans every stored vector and returns the k nearest by L2
// distance, ascending, ties broken by insertion order (earlier wins).
func (idx *Index) Query(_ context.Context, vector []float32, k int) ([]driven.VectorHit, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if k <= 0 || len(idx.entries) == 0 {
		return []driven.VectorHit{}, nil
	}
	if idx.dimension != 0 && len(vector) != idx.dimension {
		return nil, fmt.Errorf("%w: query has %d, index dimension is %d",
			domain.ErrDimensionMismatch, len(vector), idx.dimension)
	}

	type scored struct {
		e        *entry
		distance float64
	}

	candidates := make([]scored, 0, len(idx.entries))
	for _, e := range idx.entries {
		candidates = append(candidates, scored{e: e, distance: l2Distance(vector, e.vector)})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].e.seq < candidates[j].e.seq
	})

	if k > len(candidates) {
		k = len(candidates)
	}

	hits := make([]driven.VectorHit, k)
	for i := 0; i < k; i++ {
		hits[i] = driven.VectorHit{
			DocumentID: candidates[i].e.id,
			Distance:   candidates[i].distance,
			Metadata:   candidates[i].e.meta,
		}
	}
	return hits, nil
}

// Len returns the number of live entries.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// Clear discards every entry, keeping the established dimension.
func (idx *Index) Clear(_ context.Context) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.entries = make(map[string]*entry)
	return nil
}

// Close releases resources.
func (idx *Index) Close() error {
	return nil
}

// l2Distance computes the Euclidean distance between two equal-length
// vectors, accumulating in float64.
func l2Distance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
