package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a document id is already taken.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmbeddingUnavailable indicates the embedding provider is
	// unreachable, unconfigured, or returned a malformed response.
	// Non-fatal: the engine falls back to keyword retrieval.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrEmbeddingRateLimited indicates the embedding provider signalled
	// backoff. Transient; callers may retry after a delay.
	ErrEmbeddingRateLimited = errors.New("embedding service rate limited")

	// ErrDimensionMismatch indicates a vector's length differs from the
	// index's established dimension. This is an operational
	// misconfiguration (e.g. the embedding model was swapped without a
	// rebuild) and is never recovered automatically.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrEngineNotReady indicates a query arrived before the startup
	// build finished.
	ErrEngineNotReady = errors.New("retrieval engine not ready")
)
