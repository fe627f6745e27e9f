// Package domain defines the core business entities for the knowledge-base
// retrieval engine.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A knowledge-base article eligible for retrieval
//   - DocumentEvent: A committed mutation notification from a store
//   - SearchResult / SearchResponse: Per-query ephemeral results
//   - EngineState: The retrieval engine's observable state
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
