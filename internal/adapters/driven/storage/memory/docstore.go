// Package memory provides in-memory implementations of the driven
// storage ports, used in tests and for throwaway corpora.
package memory

import (
	"context"
	"sync"

	"github.com/pool-labs/kbsearch/internal/core/domain"
	"github.com/pool-labs/kbsearch/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document

	subMu       sync.RWMutex
	subscribers []driven.EventHandler
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
	}
}

// Save stores or updates a document and notifies subscribers.
func (s *DocumentStore) Save(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	prior, existed := s.documents[doc.ID]
	s.documents[doc.ID] = *doc
	s.mu.Unlock()

	s.notify(saveEvent(doc, prior, existed))
	return nil
}

// Get retrieves a document by ID.
func (s *DocumentStore) Get(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// Delete removes a document and notifies subscribers.
// Deleting an absent ID is a no-op.
func (s *DocumentStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	_, existed := s.documents[id]
	delete(s.documents, id)
	s.mu.Unlock()

	if existed {
		s.notify(domain.DocumentEvent{Type: domain.EventDeleted, DocumentID: id})
	}
	return nil
}

// List returns all documents, active or not.
func (s *DocumentStore) List(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Document, 0, len(s.documents))
	for id := range s.documents {
		result = append(result, s.documents[id])
	}
	return result, nil
}

// ListActive returns only documents whose Active flag is set.
func (s *DocumentStore) ListActive(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Document
	for id := range s.documents {
		if s.documents[id].Active {
			result = append(result, s.documents[id])
		}
	}
	return result, nil
}

// Subscribe registers a mutation handler.
func (s *DocumentStore) Subscribe(handler driven.EventHandler) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subscribers = append(s.subscribers, handler)
}

// Close releases resources.
func (s *DocumentStore) Close() error {
	return nil
}

// notify delivers an event to all subscribers, synchronously and in
// commit order. The store lock is not held here so handlers may read
// the store.
func (s *DocumentStore) notify(evt domain.DocumentEvent) {
	s.subMu.RLock()
	handlers := make([]driven.EventHandler, len(s.subscribers))
	copy(handlers, s.subscribers)
	s.subMu.RUnlock()

	for _, h := range handlers {
		h(evt)
	}
}

// saveEvent classifies a committed save against the prior state.
func saveEvent(doc *domain.Document, prior domain.Document, existed bool) domain.DocumentEvent {
	evt := domain.DocumentEvent{DocumentID: doc.ID, Document: doc}
	switch {
	case !existed:
		evt.Type = domain.EventCreated
	case prior.Active && !doc.Active:
		evt.Type = domain.EventDeactivated
	default:
		evt.Type = domain.EventUpdated
	}
	return evt
}
