package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pool-labs/kbsearch/internal/core/domain"
	"github.com/pool-labs/kbsearch/internal/core/ports/driven"
	"github.com/pool-labs/kbsearch/internal/core/ports/driving"
	"github.com/pool-labs/kbsearch/internal/logger"
)

// Ensure RetrievalEngine implements the interface.
var _ driving.RetrievalService = (*RetrievalEngine)(nil)

// Default tuning values.
const (
	// DefaultQueryTimeout bounds the wait on a query embedding call
	// before falling back to keyword retrieval for that call.
	DefaultQueryTimeout = 10 * time.Second

	// DefaultEmbedBatchSize is the bulk-build batch size.
	DefaultEmbedBatchSize = 16

	// DefaultFailureThreshold is the number of consecutive embedding
	// failures across distinct documents that degrades the engine.
	DefaultFailureThreshold = 3

	// DefaultFailureWindow is how long a failure counts towards the
	// degradation threshold.
	DefaultFailureWindow = 2 * time.Minute
)

// embedFailure records one embedding failure for degradation tracking.
type embedFailure struct {
	documentID string
	at         time.Time
}

// RetrievalEngine orchestrates retrieval: it bulk-builds the indexes at
// startup, applies document mutations incrementally, and routes queries
// to the vector index when healthy or the keyword index otherwise.
//
// The engine is an explicitly constructed instance owning its indexes;
// there is no process-global index. Embedding calls are never made
// while holding the engine lock.
type RetrievalEngine struct {
	docStore driven.DocumentStore
	embedder driven.EmbeddingService
	vectors  driven.VectorIndex
	keywords driven.KeywordIndex

	queryTimeout     time.Duration
	batchSize        int
	defaultLimit     int
	failureThreshold int
	failureWindow    time.Duration

	mu            sync.RWMutex
	phase         domain.EnginePhase
	vectorEnabled bool
	failures      []embedFailure
}

// NewRetrievalEngine creates a retrieval engine over the given
// collaborators. The embedder is optional (nil disables vector mode).
func NewRetrievalEngine(
	docStore driven.DocumentStore,
	embedder driven.EmbeddingService,
	vectorIndex driven.VectorIndex,
	keywordIndex driven.KeywordIndex,
) *RetrievalEngine {
	return &RetrievalEngine{
		docStore:         docStore,
		embedder:         embedder,
		vectors:          vectorIndex,
		keywords:         keywordIndex,
		queryTimeout:     DefaultQueryTimeout,
		batchSize:        DefaultEmbedBatchSize,
		defaultLimit:     domain.DefaultLimit,
		failureThreshold: DefaultFailureThreshold,
		failureWindow:    DefaultFailureWindow,
	}
}

// SetQueryTimeout overrides the bound on query embedding calls.
func (e *RetrievalEngine) SetQueryTimeout(d time.Duration) {
	if d > 0 {
		e.queryTimeout = d
	}
}

// SetFailureThreshold overrides the degradation threshold.
func (e *RetrievalEngine) SetFailureThreshold(n int) {
	if n > 0 {
		e.failureThreshold = n
	}
}

// SetDefaultLimit overrides the result count used when a query does
// not specify one.
func (e *RetrievalEngine) SetDefaultLimit(n int) {
	if n > 0 {
		e.defaultLimit = n
	}
}

// Start bulk-loads all active documents and builds the indexes.
// A missing or unreachable embedding provider is not an error: the
// engine comes up in keyword mode. Start also subscribes the engine to
// document store mutations.
func (e *RetrievalEngine) Start(ctx context.Context) error {
	e.mu.Lock()
	e.phase = domain.PhaseBuilding
	e.mu.Unlock()

	logger.Section("Index Build")

	docs, err := e.docStore.ListActive(ctx)
	if err != nil {
		e.mu.Lock()
		e.phase = domain.PhaseUninitialized
		e.mu.Unlock()
		return fmt.Errorf("list active documents: %w", err)
	}
	logger.Info("Loaded %d active documents", len(docs))

	for i := range docs {
		if err := e.keywords.Index(ctx, docs[i]); err != nil {
			return fmt.Errorf("keyword index %s: %w", docs[i].ID, err)
		}
	}

	vectorEnabled := false
	if e.embedder != nil {
		if err := e.embedder.Ping(ctx); err != nil {
			logger.Warn("Embedding provider unreachable, keyword mode: %v", err)
		} else if err := e.buildVectors(ctx, docs); err != nil {
			logger.Warn("Vector build failed, keyword mode: %v", err)
		} else {
			vectorEnabled = true
			logger.Info("Vector index built: %d entries, model %s",
				e.vectors.Len(), e.embedder.ModelName())
		}
	} else {
		logger.Info("No embedding provider configured, keyword mode")
	}

	e.mu.Lock()
	e.phase = domain.PhaseReady
	e.vectorEnabled = vectorEnabled
	e.failures = nil
	e.mu.Unlock()

	e.docStore.Subscribe(e.HandleEvent)
	return nil
}

// buildVectors embeds all documents in batches and fills the vector
// index. Runs with no engine lock held; the index does its own locking.
func (e *RetrievalEngine) buildVectors(ctx context.Context, docs []domain.Document) error {
	for start := 0; start < len(docs); start += e.batchSize {
		end := start + e.batchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[start:end]

		texts := make([]string, len(batch))
		for i := range batch {
			texts[i] = batch[i].EmbeddingText()
		}

		vectors, err := e.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed batch at %d: %w", start, err)
		}
		if len(vectors) != len(batch) {
			return fmt.Errorf("%w: got %d embeddings for %d texts",
				domain.ErrEmbeddingUnavailable, len(vectors), len(batch))
		}

		for i := range batch {
			if err := e.vectors.Upsert(ctx, batch[i].ID, vectors[i], entryMetadata(batch[i])); err != nil {
				return fmt.Errorf("index %s: %w", batch[i].ID, err)
			}
		}
	}
	return nil
}

// HandleEvent applies one committed document mutation to the indexes.
// Index maintenance is best-effort: the document mutation has already
// committed, so embedding failures are logged, counted towards
// degradation, and never propagated.
func (e *RetrievalEngine) HandleEvent(evt domain.DocumentEvent) {
	ctx := context.Background()

	switch evt.Type {
	case domain.EventDeleted, domain.EventDeactivated:
		e.removeDocument(ctx, evt.DocumentID)

	case domain.EventCreated, domain.EventUpdated:
		if evt.Document == nil {
			return
		}
		if !evt.Document.Active {
			e.removeDocument(ctx, evt.DocumentID)
			return
		}
		if err := e.indexDocument(ctx, *evt.Document); err != nil {
			logger.Warn("Index update for %s failed: %v", evt.DocumentID, err)
		}
	}
}

// removeDocument drops a document from both indexes. Idempotent.
func (e *RetrievalEngine) removeDocument(ctx context.Context, id string) {
	if err := e.vectors.Remove(ctx, id); err != nil {
		logger.Warn("Vector remove %s: %v", id, err)
	}
	if err := e.keywords.Remove(ctx, id); err != nil {
		logger.Warn("Keyword remove %s: %v", id, err)
	}
}

// indexDocument refreshes a single active document in both indexes.
// The embedding call runs before any index mutation; the prior vector
// entry stays in place when embedding fails.
func (e *RetrievalEngine) indexDocument(ctx context.Context, doc domain.Document) error {
	if err := e.keywords.Index(ctx, doc); err != nil {
		return fmt.Errorf("keyword index: %w", err)
	}

	if !e.vectorCapable() {
		return nil
	}

	vector, err := e.embedder.Embed(ctx, doc.EmbeddingText())
	if err != nil {
		e.recordEmbedFailure(doc.ID)
		return fmt.Errorf("embed: %w", err)
	}

	if err := e.vectors.Upsert(ctx, doc.ID, vector, entryMetadata(doc)); err != nil {
		if errors.Is(err, domain.ErrDimensionMismatch) {
			// Provider swap without rebuild. Loud, never silent.
			logger.Warn("DIMENSION MISMATCH for %s: %v - a full rebuild is required", doc.ID, err)
		}
		return fmt.Errorf("vector upsert: %w", err)
	}

	e.recordEmbedSuccess()
	return nil
}

// Reindex recomputes a single document's index entries on demand.
// Unlike the event path, errors surface to the caller.
func (e *RetrievalEngine) Reindex(ctx context.Context, documentID string) error {
	doc, err := e.docStore.Get(ctx, documentID)
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}

	if !doc.Active {
		e.removeDocument(ctx, documentID)
		return nil
	}
	return e.indexDocument(ctx, *doc)
}

// Rebuild discards both indexes and rebuilds them from the store.
// This is the recovery path for dimension mismatches and the restart
// semantics: no index state survives, everything is recomputed.
func (e *RetrievalEngine) Rebuild(ctx context.Context) error {
	if err := e.vectors.Clear(ctx); err != nil {
		return fmt.Errorf("clear vector index: %w", err)
	}
	if err := e.keywords.Clear(ctx); err != nil {
		return fmt.Errorf("clear keyword index: %w", err)
	}

	e.mu.Lock()
	e.phase = domain.PhaseBuilding
	e.failures = nil
	e.mu.Unlock()

	docs, err := e.docStore.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active documents: %w", err)
	}

	for i := range docs {
		if err := e.keywords.Index(ctx, docs[i]); err != nil {
			return fmt.Errorf("keyword index %s: %w", docs[i].ID, err)
		}
	}

	vectorEnabled := false
	if e.embedder != nil {
		if err := e.buildVectors(ctx, docs); err != nil {
			logger.Warn("Vector rebuild failed, keyword mode: %v", err)
		} else {
			vectorEnabled = true
		}
	}

	e.mu.Lock()
	e.phase = domain.PhaseReady
	e.vectorEnabled = vectorEnabled
	e.mu.Unlock()
	return nil
}

// State reports the engine's phase and the mode queries route to.
func (e *RetrievalEngine) State() domain.EngineState {
	e.mu.RLock()
	defer e.mu.RUnlock()

	mode := domain.ModeKeyword
	if e.vectorEnabled && e.phase == domain.PhaseReady {
		mode = domain.ModeVector
	}
	return domain.EngineState{Phase: e.phase, Mode: mode}
}

// Search answers a top-k relevance query. In vector mode a query
// embedding failure falls back to keyword retrieval for this call only;
// the engine mode is unchanged.
func (e *RetrievalEngine) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) (*domain.SearchResponse, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	limit := opts.Limit
	if limit <= 0 {
		limit = e.defaultLimit
	}

	state := e.State()
	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return &domain.SearchResponse{Results: []domain.SearchResult{}, ModeUsed: state.Mode}, nil
	}

	logger.Debug("Limit: %d, Language: %q, Mode: %s", limit, opts.Language, state.Mode)

	if state.Mode == domain.ModeVector {
		resp, err := e.vectorSearch(ctx, query, limit, opts.Language)
		if err == nil {
			return resp, nil
		}
		logger.Warn("Vector search failed, keyword fallback for this call: %v", err)
	}

	return e.keywordSearch(ctx, query, limit, opts.Language)
}

// fetchSize over-requests from the index so a language post-filter
// still fills the caller's limit at this corpus scale.
func fetchSize(limit int, language string) int {
	if language == "" {
		return limit
	}
	return limit * 3
}

// vectorSearch embeds the query under a bounded timeout and scans the
// vector index.
func (e *RetrievalEngine) vectorSearch(
	ctx context.Context, query string, limit int, language string,
) (*domain.SearchResponse, error) {
	embedCtx, cancel := context.WithTimeout(ctx, e.queryTimeout)
	defer cancel()

	// Query failures fall back per-call and do not count towards
	// degradation; only document embeds do.
	vector, err := e.embedder.Embed(embedCtx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	e.recordEmbedSuccess()

	hits, err := e.vectors.Query(ctx, vector, fetchSize(limit, language))
	if err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}
	logger.Debug("Vector search: %d hits", len(hits))

	results := make([]domain.SearchResult, 0, len(hits))
	for _, hit := range hits {
		score := hit.Score()
		reason := fmt.Sprintf("Semantic similarity: %.3f", score)
		if len(hit.Metadata.Tags) > 0 {
			reason += "; Tags: " + strings.Join(hit.Metadata.Tags, ", ")
		}
		results = append(results, domain.SearchResult{
			DocumentID:     hit.DocumentID,
			Title:          hit.Metadata.Title,
			Score:          score,
			MatchedSnippet: hit.Metadata.Snippet,
			Reason:         reason,
			Language:       hit.Metadata.Language,
		})
	}

	results = filterByLanguage(results, language)
	if len(results) > limit {
		results = results[:limit]
	}
	return &domain.SearchResponse{Results: results, ModeUsed: domain.ModeVector}, nil
}

// keywordSearch runs the deterministic term-overlap fallback. It only
// needs the keyword index, never the embedding provider.
func (e *RetrievalEngine) keywordSearch(
	ctx context.Context, query string, limit int, language string,
) (*domain.SearchResponse, error) {
	hits, err := e.keywords.Search(ctx, query, fetchSize(limit, language))
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	logger.Debug("Keyword search: %d hits", len(hits))

	results := make([]domain.SearchResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, domain.SearchResult{
			DocumentID:     hit.Document.ID,
			Title:          hit.Document.Title,
			Score:          hit.Score,
			MatchedSnippet: hit.Document.Snippet(domain.SnippetLength),
			Reason:         "Keyword match: " + strings.Join(hit.MatchedTerms, ", "),
			Language:       hit.Document.Language,
		})
	}

	results = filterByLanguage(results, language)
	if len(results) > limit {
		results = results[:limit]
	}
	return &domain.SearchResponse{Results: results, ModeUsed: domain.ModeKeyword}, nil
}

// filterByLanguage keeps results whose language tag (defaulted when
// empty) matches the filter. An empty filter keeps everything.
func filterByLanguage(results []domain.SearchResult, language string) []domain.SearchResult {
	if language == "" {
		return results
	}

	filtered := make([]domain.SearchResult, 0, len(results))
	for _, r := range results {
		lang := r.Language
		if lang == "" {
			lang = domain.DefaultLanguage
		}
		if strings.EqualFold(lang, language) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// recordEmbedFailure counts one embedding failure towards degradation.
// Three failures across distinct subjects within the window switch the
// engine to keyword routing while the vector index keeps its entries.
func (e *RetrievalEngine) recordEmbedFailure(subject string) {
	now := time.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	kept := e.failures[:0]
	for _, f := range e.failures {
		if now.Sub(f.at) <= e.failureWindow {
			kept = append(kept, f)
		}
	}
	e.failures = append(kept, embedFailure{documentID: subject, at: now})

	distinct := make(map[string]struct{}, len(e.failures))
	for _, f := range e.failures {
		distinct[f.documentID] = struct{}{}
	}

	if len(distinct) >= e.failureThreshold && e.phase == domain.PhaseReady && e.vectorEnabled {
		logger.Warn("Entering degraded mode after %d embedding failures", len(distinct))
		e.phase = domain.PhaseDegraded
	}
}

// recordEmbedSuccess clears failure tracking and recovers from
// degraded mode.
func (e *RetrievalEngine) recordEmbedSuccess() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.failures = nil
	if e.phase == domain.PhaseDegraded {
		logger.Info("Embedding recovered, returning to vector mode")
		e.phase = domain.PhaseReady
	}
}

// vectorCapable reports whether the engine should attempt embeddings
// for index maintenance. Degraded mode still attempts them: the next
// success is the recovery signal.
func (e *RetrievalEngine) vectorCapable() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.vectorEnabled && e.embedder != nil
}

// entryMetadata builds the index payload for a document.
func entryMetadata(doc domain.Document) driven.EntryMetadata {
	return driven.EntryMetadata{
		Title:    doc.Title,
		Snippet:  doc.Snippet(domain.SnippetLength),
		Tags:     doc.Tags,
		Language: doc.Language,
	}
}
