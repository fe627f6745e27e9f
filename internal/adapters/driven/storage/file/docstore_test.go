package file

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pool-labs/kbsearch/internal/core/domain"
)

func newTestStore(t *testing.T) *DocumentStore {
	t.Helper()
	store, err := NewDocumentStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleDoc(id string) *domain.Document {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Document{
		ID: id, Title: "Title " + id, Content: "Content", Tags: []string{"Go"},
		Active: true, CreatedAt: now, UpdatedAt: now,
	}
}

func TestDocumentStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleDoc("d1")))

	got, err := store.Get(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "Title d1", got.Title)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store1, err := NewDocumentStore(dir)
	require.NoError(t, err)
	require.NoError(t, store1.Save(ctx, sampleDoc("d1")))
	require.NoError(t, store1.Close())

	store2, err := NewDocumentStore(dir)
	require.NoError(t, err)
	defer store2.Close()

	got, err := store2.Get(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Go"}, got.Tags)
	assert.True(t, got.CreatedAt.Equal(sampleDoc("d1").CreatedAt))
}

func TestDocumentStore_DeleteAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleDoc("d1")))
	inactive := sampleDoc("d2")
	inactive.Active = false
	require.NoError(t, store.Save(ctx, inactive))

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := store.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "d1", active[0].ID)

	require.NoError(t, store.Delete(ctx, "d1"))
	require.NoError(t, store.Delete(ctx, "d1")) // absent: no-op

	all, err = store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDocumentStore_SaveEmitsEvents(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var events []domain.DocumentEvent
	store.Subscribe(func(evt domain.DocumentEvent) {
		events = append(events, evt)
	})

	doc := sampleDoc("d1")
	require.NoError(t, store.Save(ctx, doc))

	doc.Active = false
	require.NoError(t, store.Save(ctx, doc))

	require.NoError(t, store.Delete(ctx, "d1"))

	require.Len(t, events, 3)
	assert.Equal(t, domain.EventCreated, events[0].Type)
	assert.Equal(t, domain.EventDeactivated, events[1].Type)
	assert.Equal(t, domain.EventDeleted, events[2].Type)
}

func TestDocumentStore_ReloadIgnoresOwnWrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleDoc("d1")))

	var events int
	store.Subscribe(func(domain.DocumentEvent) { events++ })

	// Re-reading our own bytes must not emit anything.
	require.NoError(t, store.reload())
	assert.Equal(t, 0, events)
}

func TestDocumentStore_ReloadDiffsExternalEdit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleDoc("keep")))
	require.NoError(t, store.Save(ctx, sampleDoc("change")))
	require.NoError(t, store.Save(ctx, sampleDoc("remove")))

	var events []domain.DocumentEvent
	store.Subscribe(func(evt domain.DocumentEvent) {
		events = append(events, evt)
	})

	// Simulate an external editor: drop one doc, change one, add one.
	now := time.Date(2026, 8, 2, 12, 0, 0, 0, time.UTC)
	external := []storedDocument{
		{ID: "keep", Title: "Title keep", Content: "Content", Tags: []string{"Go"},
			Active: true, CreatedAt: sampleDoc("keep").CreatedAt, UpdatedAt: sampleDoc("keep").UpdatedAt},
		{ID: "change", Title: "Edited Title", Content: "Content", Tags: []string{"Go"},
			Active: true, CreatedAt: sampleDoc("change").CreatedAt, UpdatedAt: now},
		{ID: "added", Title: "Brand New", Content: "Content",
			Active: true, CreatedAt: now, UpdatedAt: now},
	}
	data, err := json.MarshalIndent(external, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.Path(), data, 0600))

	require.NoError(t, store.reload())

	require.Len(t, events, 3)

	byID := make(map[string]domain.DocumentEvent)
	for _, evt := range events {
		byID[evt.DocumentID] = evt
	}
	assert.Equal(t, domain.EventCreated, byID["added"].Type)
	assert.Equal(t, domain.EventUpdated, byID["change"].Type)
	assert.Equal(t, domain.EventDeleted, byID["remove"].Type)

	got, err := store.Get(ctx, "change")
	require.NoError(t, err)
	assert.Equal(t, "Edited Title", got.Title)

	_, err = store.Get(ctx, "remove")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_ReloadDetectsDeactivation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleDoc("d1")))

	var events []domain.DocumentEvent
	store.Subscribe(func(evt domain.DocumentEvent) {
		events = append(events, evt)
	})

	external := []storedDocument{
		{ID: "d1", Title: "Title d1", Content: "Content", Tags: []string{"Go"},
			Active: false, CreatedAt: sampleDoc("d1").CreatedAt, UpdatedAt: sampleDoc("d1").UpdatedAt},
	}
	data, err := json.MarshalIndent(external, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.Path(), data, 0600))

	require.NoError(t, store.reload())

	require.Len(t, events, 1)
	assert.Equal(t, domain.EventDeactivated, events[0].Type)
}

func TestDiffDocuments_UnchangedEmitsNothing(t *testing.T) {
	doc := *sampleDoc("d1")
	prev := map[string]domain.Document{"d1": doc}
	curr := map[string]domain.Document{"d1": doc}

	events := diffDocuments(prev, curr)
	assert.Empty(t, events)
}

func TestDocumentStore_CorruptFileFailsOpen(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(dir+"/"+storeFileName, []byte("{not json"), 0600))

	store, err := NewDocumentStore(dir)
	assert.Error(t, err)
	assert.Nil(t, store)
}
