package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pool-labs/kbsearch/internal/core/domain"
	"github.com/pool-labs/kbsearch/internal/core/ports/driven"
	"github.com/pool-labs/kbsearch/internal/core/ports/driving"
	"github.com/pool-labs/kbsearch/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService manages knowledge-base documents. It never touches
// the indexes directly: the store notifies the retrieval engine after
// each commit, so document mutations succeed regardless of embedding
// health.
type DocumentService struct {
	store driven.DocumentStore
}

// NewDocumentService creates a new document service.
func NewDocumentService(store driven.DocumentStore) *DocumentService {
	return &DocumentService{store: store}
}

// Create stores a new active document. A UUID is generated when the
// input carries no ID.
func (s *DocumentService) Create(ctx context.Context, input driving.DocumentInput) (*domain.Document, error) {
	if input.Title == "" || input.Content == "" {
		return nil, fmt.Errorf("%w: title and content are required", domain.ErrInvalidInput)
	}

	id := input.ID
	if id == "" {
		id = uuid.NewString()
	}

	if _, err := s.store.Get(ctx, id); err == nil {
		return nil, fmt.Errorf("%w: document %s", domain.ErrAlreadyExists, id)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check existing: %w", err)
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:        id,
		Title:     input.Title,
		Content:   input.Content,
		Tags:      input.Tags,
		Language:  input.Language,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	logger.Info("Created document %s (%q)", doc.ID, doc.Title)
	return doc, nil
}

// Update modifies a document's content fields. Empty input fields are
// left unchanged; a nil Tags slice keeps the existing tags.
func (s *DocumentService) Update(ctx context.Context, input driving.DocumentInput) (*domain.Document, error) {
	if input.ID == "" {
		return nil, fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}

	doc, err := s.store.Get(ctx, input.ID)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}

	if input.Title != "" {
		doc.Title = input.Title
	}
	if input.Content != "" {
		doc.Content = input.Content
	}
	if input.Tags != nil {
		doc.Tags = input.Tags
	}
	if input.Language != "" {
		doc.Language = input.Language
	}
	doc.UpdatedAt = time.Now().UTC()

	if err := s.store.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	logger.Info("Updated document %s", doc.ID)
	return doc, nil
}

// SetActive toggles a document in or out of retrieval. Setting the
// current value is a no-op.
func (s *DocumentService) SetActive(ctx context.Context, id string, active bool) error {
	doc, err := s.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}
	if doc.Active == active {
		return nil
	}

	doc.Active = active
	doc.UpdatedAt = time.Now().UTC()
	if err := s.store.Save(ctx, doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	logger.Info("Document %s active=%t", id, active)
	return nil
}

// Delete removes a document permanently.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	logger.Info("Deleted document %s", id)
	return nil
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	return s.store.Get(ctx, id)
}

// List returns all documents, active or not.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	return s.store.List(ctx)
}

// Seed populates an empty store with a small sample corpus and returns
// how many documents were created. A non-empty store is left untouched.
func (s *DocumentService) Seed(ctx context.Context) (int, error) {
	existing, err := s.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list documents: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	samples := []driving.DocumentInput{
		{
			ID:      "post_001",
			Title:   "Python Virtual Environment Guide",
			Content: "Python virtual environments are essential tools for isolating project dependencies. Use 'python -m venv venv' to create a virtual environment, and 'source venv/bin/activate' to activate it. Virtual environments help avoid dependency conflicts between different projects.",
			Tags:    []string{"Python", "Virtual Environment", "Development Tools"},
		},
		{
			ID:      "post_002",
			Title:   "FastAPI Quick Start",
			Content: "FastAPI is a modern, fast web framework. It's based on Python type hints and automatically generates API documentation. Use the @app.get() decorator to define routes, and it supports asynchronous request handling.",
			Tags:    []string{"FastAPI", "Python", "Web Development"},
		},
		{
			ID:      "post_003",
			Title:   "Agent Development Kits",
			Content: "Agent development kits are frameworks for building AI agents. They support custom tools, plugins, and multi-agent systems. Define an agent with its model and toolset, then run it through a runner loop.",
			Tags:    []string{"AI", "Agent Development"},
		},
	}

	for _, sample := range samples {
		if _, err := s.Create(ctx, sample); err != nil {
			return 0, fmt.Errorf("seed %s: %w", sample.ID, err)
		}
	}
	return len(samples), nil
}
