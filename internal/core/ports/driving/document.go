package driving

import (
	"context"

	"github.com/pool-labs/kbsearch/internal/core/domain"
)

// DocumentInput carries caller-supplied fields for create and update.
type DocumentInput struct {
	// ID is optional on create; a UUID is generated when empty.
	ID string

	// Title is the document title.
	Title string

	// Content is the body text.
	Content string

	// Tags are free-form labels.
	Tags []string

	// Language is the language tag, defaulted when empty.
	Language string
}

// DocumentService manages knowledge-base documents. Index maintenance
// is not its concern: stores notify the retrieval engine after commit.
type DocumentService interface {
	// Create stores a new document and returns it.
	Create(ctx context.Context, input DocumentInput) (*domain.Document, error)

	// Update modifies an existing document's content fields.
	Update(ctx context.Context, input DocumentInput) (*domain.Document, error)

	// SetActive toggles a document in or out of retrieval.
	SetActive(ctx context.Context, id string, active bool) error

	// Delete removes a document permanently.
	Delete(ctx context.Context, id string) error

	// Get retrieves a document by ID.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// List returns all documents, active or not.
	List(ctx context.Context) ([]domain.Document, error)
}
