package cli

import (
	"context"
	"time"

	"github.com/pool-labs/kbsearch/internal/core/domain"
	"github.com/pool-labs/kbsearch/internal/core/ports/driving"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	response *domain.SearchResponse
	state    domain.EngineState
	err      error

	reindexed string
	rebuilt   bool
}

func (m *mockRetrievalService) Search(
	_ context.Context,
	_ string,
	_ domain.SearchOptions,
) (*domain.SearchResponse, error) {
	if m.response == nil {
		return &domain.SearchResponse{
			Results: []domain.SearchResult{
				{
					DocumentID:     "doc-1",
					Title:          "Test Document 1",
					Score:          0.87,
					MatchedSnippet: "A matched snippet...",
					Reason:         "Semantic similarity: 0.870",
					Language:       "zh-CN",
				},
			},
			ModeUsed: domain.ModeVector,
		}, m.err
	}
	return m.response, m.err
}

func (m *mockRetrievalService) Reindex(_ context.Context, documentID string) error {
	m.reindexed = documentID
	return m.err
}

func (m *mockRetrievalService) Rebuild(_ context.Context) error {
	m.rebuilt = true
	return m.err
}

func (m *mockRetrievalService) State() domain.EngineState {
	return m.state
}

func (m *mockRetrievalService) HandleEvent(_ domain.DocumentEvent) {}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	err       error

	lastInput  driving.DocumentInput
	lastActive bool
	deleted    string
}

func (m *mockDocumentService) Create(_ context.Context, input driving.DocumentInput) (*domain.Document, error) {
	m.lastInput = input
	if m.err != nil {
		return nil, m.err
	}
	id := input.ID
	if id == "" {
		id = "doc-generated"
	}
	return &domain.Document{ID: id, Title: input.Title, Content: input.Content}, nil
}

func (m *mockDocumentService) Update(_ context.Context, input driving.DocumentInput) (*domain.Document, error) {
	m.lastInput = input
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Document{ID: input.ID, Title: input.Title}, nil
}

func (m *mockDocumentService) SetActive(_ context.Context, _ string, active bool) error {
	m.lastActive = active
	return m.err
}

func (m *mockDocumentService) Delete(_ context.Context, id string) error {
	m.deleted = id
	return m.err
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Document{
		ID:        id,
		Title:     "Test Document 1",
		Content:   "Full document content.",
		Tags:      []string{"Python", "Web"},
		Language:  "zh-CN",
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.documents != nil {
		return m.documents, nil
	}
	return []domain.Document{
		{ID: "doc-1", Title: "Test Document 1", Tags: []string{"Python"}, Active: true},
		{ID: "doc-2", Title: "Test Document 2", Active: false},
	}, nil
}

// mockConfigStore is an in-memory driven.ConfigStore.
type mockConfigStore struct {
	values map[string]any
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{values: make(map[string]any)}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	val, ok := m.values[key]
	return val, ok
}

func (m *mockConfigStore) GetString(key string) string {
	if s, ok := m.values[key].(string); ok {
		return s
	}
	return ""
}

func (m *mockConfigStore) GetInt(key string) int {
	if n, ok := m.values[key].(int); ok {
		return n
	}
	return 0
}

func (m *mockConfigStore) GetBool(key string) bool {
	if b, ok := m.values[key].(bool); ok {
		return b
	}
	return false
}

func (m *mockConfigStore) GetStringSlice(key string) []string {
	if s, ok := m.values[key].([]string); ok {
		return s
	}
	return nil
}

func (m *mockConfigStore) Set(key string, value any) error {
	m.values[key] = value
	return nil
}

func (m *mockConfigStore) Save() error { return nil }
func (m *mockConfigStore) Load() error { return nil }

// setupTestServices swaps in mock services and returns a cleanup that
// restores the previous wiring.
func setupTestServices() func() {
	oldSearch := searchService
	oldDocuments := documentService
	oldConfig := configStore
	oldSeed := seedFunc

	searchService = &mockRetrievalService{}
	documentService = &mockDocumentService{}
	configStore = newMockConfigStore()
	seedFunc = func(context.Context) (int, error) { return 3, nil }

	return func() {
		searchService = oldSearch
		documentService = oldDocuments
		configStore = oldConfig
		seedFunc = oldSeed
	}
}
