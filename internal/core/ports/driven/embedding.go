package driven

import "context"

// EmbeddingService generates vector embeddings from text.
// Provider absence is a first-class mode: the "disabled" implementation
// fails every call with domain.ErrEmbeddingUnavailable and the engine
// runs keyword-only, it is never a startup error.
//
// Note: This is separate from VectorIndex which stores and searches
// vectors. EmbeddingService generates vectors; VectorIndex stores them.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm)
//   - Disabled (constant failure, keyword-only operation)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	// Fails with domain.ErrEmbeddingUnavailable or
	// domain.ErrEmbeddingRateLimited.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts, preserving
	// input order one-to-one.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 1536).
	// This is fixed for the lifetime of one vector index instance.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight
	// request. Used at startup to pick the initial search mode.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
