package domain

// DefaultLimit is applied when a search request carries no positive limit.
const DefaultLimit = 3

// SearchMode identifies which retrieval path produced a result set.
type SearchMode string

const (
	// ModeVector is semantic retrieval over embedding vectors.
	ModeVector SearchMode = "vector"

	// ModeKeyword is literal term-overlap retrieval.
	ModeKeyword SearchMode = "keyword"
)

// EnginePhase represents the retrieval engine lifecycle phase.
type EnginePhase int

const (
	// PhaseUninitialized is the state before Start is called.
	PhaseUninitialized EnginePhase = iota

	// PhaseBuilding is the startup bulk index build.
	PhaseBuilding

	// PhaseReady means the engine answers queries in its current mode.
	PhaseReady

	// PhaseDegraded means repeated embedding failures forced keyword
	// routing even though the vector index still holds entries.
	PhaseDegraded
)

// String returns the phase name.
func (p EnginePhase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseBuilding:
		return "building"
	case PhaseReady:
		return "ready"
	case PhaseDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// EngineState is the observable state of the retrieval engine.
type EngineState struct {
	// Phase is the lifecycle phase.
	Phase EnginePhase

	// Mode is the retrieval path queries currently route to.
	Mode SearchMode
}

// SearchOptions configures a search query.
type SearchOptions struct {
	// Limit is the maximum number of results. Non-positive values
	// fall back to DefaultLimit.
	Limit int

	// Language filters results to documents with this language tag.
	// Empty means no filtering.
	Language string
}

// SearchResult represents a single search hit. Results are ephemeral
// and never persisted.
type SearchResult struct {
	// DocumentID is the matched document.
	DocumentID string

	// Title is the matched document title.
	Title string

	// Score is the relevance score in (0, 1], higher is more relevant.
	Score float64

	// MatchedSnippet is the leading portion of the document content.
	MatchedSnippet string

	// Reason explains why this document was returned.
	Reason string

	// Language is the matched document's language tag.
	Language string
}

// SearchResponse is the full answer to one search call.
type SearchResponse struct {
	// Results are the ranked hits, best first.
	Results []SearchResult

	// ModeUsed is the retrieval path that actually produced the
	// results, so callers can distinguish degraded operation.
	ModeUsed SearchMode
}

// SimilarityScore maps an L2 distance to a similarity score in (0, 1].
// Distance 0 maps to 1.0 and the score decreases monotonically as the
// distance grows.
func SimilarityScore(distance float64) float64 {
	if distance <= 0 {
		return 1.0
	}
	return 1.0 / (1.0 + distance)
}
