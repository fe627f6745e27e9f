// Package disabled provides the no-provider embedding variant.
// Every call fails with domain.ErrEmbeddingUnavailable, so the engine
// runs keyword-only. Provider absence is a first-class mode, not a
// startup error.
package disabled

import (
	"context"

	"github.com/pool-labs/kbsearch/internal/core/domain"
	"github.com/pool-labs/kbsearch/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// EmbeddingService is the disabled embedding provider.
type EmbeddingService struct{}

// NewEmbeddingService creates the disabled provider.
func NewEmbeddingService() *EmbeddingService {
	return &EmbeddingService{}
}

// Embed always fails with domain.ErrEmbeddingUnavailable.
func (s *EmbeddingService) Embed(_ context.Context, _ string) ([]float32, error) {
	return nil, domain.ErrEmbeddingUnavailable
}

// EmbedBatch always fails with domain.ErrEmbeddingUnavailable.
func (s *EmbeddingService) EmbedBatch(_ context.Context, _ []string) ([][]float32, error) {
	return nil, domain.ErrEmbeddingUnavailable
}

// Dimensions returns 0; no index dimension is established.
func (s *EmbeddingService) Dimensions() int {
	return 0
}

// ModelName returns the provider name.
func (s *EmbeddingService) ModelName() string {
	return "disabled"
}

// Ping always fails, steering the engine to keyword mode at startup.
func (s *EmbeddingService) Ping(_ context.Context) error {
	return domain.ErrEmbeddingUnavailable
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
