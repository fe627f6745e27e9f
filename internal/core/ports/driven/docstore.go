package driven

import (
	"context"

	"github.com/pool-labs/kbsearch/internal/core/domain"
)

// EventHandler receives committed mutation notifications from a store.
type EventHandler func(domain.DocumentEvent)

// DocumentStore persists knowledge-base documents and notifies
// subscribers after each committed mutation. Backends include SQLite,
// a watched JSON file, and an in-memory store for tests.
type DocumentStore interface {
	// Save stores or updates a document verbatim and emits a Created,
	// Updated, or Deactivated event depending on the prior state.
	Save(ctx context.Context, doc *domain.Document) error

	// Get retrieves a document by ID. Returns domain.ErrNotFound when
	// the document does not exist.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// Delete removes a document and emits a Deleted event.
	// Deleting an absent ID is not an error.
	Delete(ctx context.Context, id string) error

	// List returns all documents, active or not.
	List(ctx context.Context) ([]domain.Document, error)

	// ListActive returns only documents whose Active flag is set.
	ListActive(ctx context.Context) ([]domain.Document, error)

	// Subscribe registers a handler invoked after each committed
	// mutation. Handlers are called synchronously in commit order;
	// they must not mutate the store re-entrantly.
	Subscribe(handler EventHandler)

	// Close releases resources.
	Close() error
}
