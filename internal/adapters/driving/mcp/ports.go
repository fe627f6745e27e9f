package mcp

import (
	"github.com/pool-labs/kbsearch/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP
// server. This provides a single injection point.
type Ports struct {
	// Search answers relevance queries.
	Search driving.RetrievalService

	// Documents manages knowledge-base documents. Optional; the
	// add_post tool and document resources need it.
	Documents driving.DocumentService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
