package mcp

import (
	"context"

	"github.com/pool-labs/kbsearch/internal/core/domain"
	"github.com/pool-labs/kbsearch/internal/core/ports/driving"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	response *domain.SearchResponse
	state    domain.EngineState
	err      error

	lastQuery string
	lastOpts  domain.SearchOptions
}

func (m *mockRetrievalService) Search(
	_ context.Context,
	query string,
	opts domain.SearchOptions,
) (*domain.SearchResponse, error) {
	m.lastQuery = query
	m.lastOpts = opts
	return m.response, m.err
}

func (m *mockRetrievalService) Reindex(_ context.Context, _ string) error {
	return m.err
}

func (m *mockRetrievalService) Rebuild(_ context.Context) error {
	return m.err
}

func (m *mockRetrievalService) State() domain.EngineState {
	return m.state
}

func (m *mockRetrievalService) HandleEvent(_ domain.DocumentEvent) {}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	err       error

	lastInput driving.DocumentInput
}

func (m *mockDocumentService) Create(_ context.Context, input driving.DocumentInput) (*domain.Document, error) {
	m.lastInput = input
	return m.document, m.err
}

func (m *mockDocumentService) Update(_ context.Context, input driving.DocumentInput) (*domain.Document, error) {
	m.lastInput = input
	return m.document, m.err
}

func (m *mockDocumentService) SetActive(_ context.Context, _ string, _ bool) error {
	return m.err
}

func (m *mockDocumentService) Delete(_ context.Context, _ string) error {
	return m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}
