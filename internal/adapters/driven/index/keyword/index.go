// Package keyword provides the deterministic retrieval fallback: an
// in-memory index scoring documents by literal term overlap against
// title and content. It never depends on an embedding provider.
package keyword

import (
	"context"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/pool-labs/kbsearch/internal/core/domain"
	"github.com/pool-labs/kbsearch/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.KeywordIndex = (*Index)(nil)

// titleWeight is how much more a title hit counts than a content hit.
const titleWeight = 2.0

// indexedDoc caches the token sets so scoring is a set lookup.
type indexedDoc struct {
	doc           domain.Document
	titleTokens   map[string]struct{}
	contentTokens map[string]struct{}
}

// Index is an in-memory keyword index. Safe for concurrent use.
type Index struct {
	mu   sync.RWMutex
	docs map[string]indexedDoc
}

// New creates an empty keyword index.
func New() *Index {
	return &Index{docs: make(map[string]indexedDoc)}
}

// Index adds or replaces a document.
func (idx *Index) Index(_ context.Context, doc domain.Document) error {
	entry := indexedDoc{
		doc:           doc,
		titleTokens:   tokenSet(doc.Title),
		contentTokens: tokenSet(doc.Content + " " + strings.Join(doc.Tags, " ")),
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.docs[doc.ID] = entry
	return nil
}

// Remove deletes a document. Absent IDs are a no-op.
func (idx *Index) Remove(_ context.Context, id string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.docs, id)
	return nil
}

// Search returns up to k documents with nonzero overlap score,
// descending by score, ties broken most-recently-updated first.
func (idx *Index) Search(_ context.Context, query string, k int) ([]driven.KeywordHit, error) {
	terms := tokenize(query)
	if len(terms) == 0 || k <= 0 {
		return []driven.KeywordHit{}, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	hits := make([]driven.KeywordHit, 0, len(idx.docs))
	for _, entry := range idx.docs {
		score, matched := score(terms, entry)
		if score <= 0 {
			continue
		}
		hits = append(hits, driven.KeywordHit{
			Document:     entry.doc,
			Score:        score,
			MatchedTerms: matched,
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		if !hits[i].Document.UpdatedAt.Equal(hits[j].Document.UpdatedAt) {
			return hits[i].Document.UpdatedAt.After(hits[j].Document.UpdatedAt)
		}
		return hits[i].Document.ID < hits[j].Document.ID
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Len returns the number of indexed documents.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.docs)
}

// Clear discards every indexed document.
func (idx *Index) Clear(_ context.Context) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.docs = make(map[string]indexedDoc)
	return nil
}

// score computes the normalised overlap of query terms against one
// document: each term contributes titleWeight for a title hit or 1.0
// for a content hit, normalised so a query whose every term hits the
// title scores 1.0.
func score(terms []string, entry indexedDoc) (float64, []string) {
	var sum float64
	var matched []string

	for _, term := range terms {
		if _, ok := entry.titleTokens[term]; ok {
			sum += titleWeight
			matched = append(matched, term)
			continue
		}
		if _, ok := entry.contentTokens[term]; ok {
			sum += 1.0
			matched = append(matched, term)
		}
	}

	if sum == 0 {
		return 0, nil
	}
	return sum / (titleWeight * float64(len(terms))), matched
}

// tokenize lowercases and splits text on any non-letter, non-digit
// rune, dropping duplicates in order of first appearance.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]struct{}, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		tokens = append(tokens, f)
	}
	return tokens
}

// tokenSet returns the distinct tokens of text.
func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range tokenize(text) {
		set[tok] = struct{}{}
	}
	return set
}
