// Package file provides a JSON-file document store that watches its
// backing file for external edits. The file is human-editable; when an
// outside process rewrites it, the store reloads, diffs against its
// in-memory view, and emits the corresponding mutation events so the
// retrieval indexes stay current.
package file

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pool-labs/kbsearch/internal/core/domain"
	"github.com/pool-labs/kbsearch/internal/core/ports/driven"
	"github.com/pool-labs/kbsearch/internal/logger"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

const storeFileName = "documents.json"

// storedDocument is the on-disk representation.
type storedDocument struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags,omitempty"`
	Language  string    `json:"language,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentStore is a JSON-file implementation of driven.DocumentStore.
type DocumentStore struct {
	mu        sync.RWMutex
	path      string
	documents map[string]domain.Document
	// lastHash is the digest of the bytes this store wrote last, so the
	// watcher can tell its own writes from external edits.
	lastHash [sha256.Size]byte

	subMu       sync.RWMutex
	subscribers []driven.EventHandler

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewDocumentStore creates a store backed by <dataDir>/documents.json.
// If dataDir is empty, defaults to ~/.kbsearch/data. The backing file
// is watched for external modifications.
func NewDocumentStore(dataDir string) (*DocumentStore, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".kbsearch", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	s := &DocumentStore{
		path:      filepath.Join(dataDir, storeFileName),
		documents: make(map[string]domain.Document),
		done:      make(chan struct{}),
	}

	if err := s.load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	// Watch the directory, not the file: editors and atomic renames
	// replace the inode and a file watch would go stale.
	if err := watcher.Add(dataDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching data directory: %w", err)
	}
	s.watcher = watcher
	go s.watch()

	return s, nil
}

// Path returns the backing file path.
func (s *DocumentStore) Path() string {
	return s.path
}

// Save stores or updates a document, persists the file, and notifies
// subscribers.
func (s *DocumentStore) Save(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	prior, existed := s.documents[doc.ID]
	s.documents[doc.ID] = *doc
	err := s.persist()
	if err != nil {
		// Roll back the in-memory change so the map mirrors the file.
		if existed {
			s.documents[doc.ID] = prior
		} else {
			delete(s.documents, doc.ID)
		}
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	evt := domain.DocumentEvent{DocumentID: doc.ID, Document: doc}
	switch {
	case !existed:
		evt.Type = domain.EventCreated
	case prior.Active && !doc.Active:
		evt.Type = domain.EventDeactivated
	default:
		evt.Type = domain.EventUpdated
	}
	s.notify(evt)
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

// Delete removes a document. Deleting an absent ID is a no-op.
func (s *DocumentStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	prior, existed := s.documents[id]
	if !existed {
		s.mu.Unlock()
		return nil
	}
	delete(s.documents, id)
	if err := s.persist(); err != nil {
		s.documents[id] = prior
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.notify(domain.DocumentEvent{Type: domain.EventDeleted, DocumentID: id})
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

// Close stops the watcher.
func (s *DocumentStore) Close() error {
	close(s.done)
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

// load reads the backing file into memory. Caller setup only; no
// events are emitted.
func (s *DocumentStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}

	docs, err := decodeDocuments(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", s.path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastHash = sha256.Sum256(data)
	s.documents = docs
	return nil
}

// persist writes the store atomically. Caller must hold s.mu.
func (s *DocumentStore) persist() error {
	docs := make([]storedDocument, 0, len(s.documents))
	for id := range s.documents {
		d := s.documents[id]
		docs = append(docs, storedDocument{
			ID: d.ID, Title: d.Title, Content: d.Content, Tags: d.Tags,
			Language: d.Language, Active: d.Active,
			CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt,
		})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })

	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding documents: %w", err)
	}
	data = append(data, '\n')

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}

	s.lastHash = sha256.Sum256(data)
	return nil
}

// watch reacts to external edits of the backing file.
func (s *DocumentStore) watch() {
	for {
		select {
		case <-s.done:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != s.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := s.reload(); err != nil {
				logger.Warn("Reloading %s failed: %v", s.path, err)
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Document file watcher error: %v", err)
		}
	}
}

// reload re-reads the file after an external change, diffs it against
// the in-memory view, and emits the resulting events.
func (s *DocumentStore) reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			// Racing a rename; next event covers the final content.
			return nil
		}
		return err
	}

	hash := sha256.Sum256(data)

	s.mu.Lock()
	if hash == s.lastHash {
		// Our own write coming back through the watcher.
		s.mu.Unlock()
		return nil
	}

	docs, err := decodeDocuments(data)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	events := diffDocuments(s.documents, docs)
	s.documents = docs
	s.lastHash = hash
	s.mu.Unlock()

	for _, evt := range events {
		s.notify(evt)
	}
	return nil
}

func (s *DocumentStore) notify(evt domain.DocumentEvent) {
	s.subMu.RLock()
	handlers := make([]driven.EventHandler, len(s.subscribers))
	copy(handlers, s.subscribers)
	s.subMu.RUnlock()

	for _, h := range handlers {
		h(evt)
	}
}

func decodeDocuments(data []byte) (map[string]domain.Document, error) {
	var stored []storedDocument
	if len(data) > 0 {
		if err := json.Unmarshal(data, &stored); err != nil {
			return nil, err
		}
	}

	docs := make(map[string]domain.Document, len(stored))
	for _, d := range stored {
		docs[d.ID] = domain.Document{
			ID: d.ID, Title: d.Title, Content: d.Content, Tags: d.Tags,
			Language: d.Language, Active: d.Active,
			CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt,
		}
	}
	return docs, nil
}

// diffDocuments computes the events that turn the previous view into
// the current one.
func diffDocuments(prev, curr map[string]domain.Document) []domain.DocumentEvent {
	var events []domain.DocumentEvent

	ids := make([]string, 0, len(curr))
	for id := range curr {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		doc := curr[id]
		prior, existed := prev[id]
		evt := domain.DocumentEvent{DocumentID: id, Document: &doc}
		switch {
		case !existed:
			evt.Type = domain.EventCreated
		case prior.Active && !doc.Active:
			evt.Type = domain.EventDeactivated
		case documentsEqual(prior, doc):
			continue
		default:
			evt.Type = domain.EventUpdated
		}
		events = append(events, evt)
	}

	removed := make([]string, 0)
	for id := range prev {
		if _, ok := curr[id]; !ok {
			removed = append(removed, id)
		}
	}
	sort.Strings(removed)
	for _, id := range removed {
		events = append(events, domain.DocumentEvent{Type: domain.EventDeleted, DocumentID: id})
	}

	return events
}

func documentsEqual(a, b domain.Document) bool {
	if a.ID != b.ID || a.Title != b.Title || a.Content != b.Content ||
		a.Language != b.Language || a.Active != b.Active ||
		!a.UpdatedAt.Equal(b.UpdatedAt) || len(a.Tags) != len(b.Tags) {
		return false
	}
	for i := range a.Tags {
		if a.Tags[i] != b.Tags[i] {
			return false
		}
	}
	return true
}
