package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pool-labs/kbsearch/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleDoc(id string) *domain.Document {
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.Document{
		ID:        id,
		Title:     "Title " + id,
		Content:   "Content for " + id,
		Tags:      []string{"Python", "Web"},
		Language:  "zh-CN",
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "documents.db"), store.Path())
}

func TestStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := sampleDoc("d1")
	require.NoError(t, store.Save(ctx, doc))

	got, err := store.Get(ctx, "d1")
	require.NoError(t, err)

	assert.Equal(t, doc.ID, got.ID)
	assert.Equal(t, doc.Title, got.Title)
	assert.Equal(t, doc.Content, got.Content)
	assert.Equal(t, doc.Tags, got.Tags)
	assert.Equal(t, doc.Language, got.Language)
	assert.True(t, got.Active)
}

func TestStore_Get_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_SaveUpserts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := sampleDoc("d1")
	require.NoError(t, store.Save(ctx, doc))

	doc.Title = "Renamed"
	doc.Tags = nil
	require.NoError(t, store.Save(ctx, doc))

	got, err := store.Get(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Nil(t, got.Tags)

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleDoc("d1")))
	require.NoError(t, store.Delete(ctx, "d1"))
	require.NoError(t, store.Delete(ctx, "d1")) // absent: no-op

	_, err := store.Get(ctx, "d1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_ListActive(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	active := sampleDoc("active")
	inactive := sampleDoc("inactive")
	inactive.Active = false

	require.NoError(t, store.Save(ctx, active))
	require.NoError(t, store.Save(ctx, inactive))

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got, err := store.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "active", got[0].ID)
}

func TestStore_EventClassification(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var events []domain.DocumentEvent
	store.Subscribe(func(evt domain.DocumentEvent) {
		events = append(events, evt)
	})

	doc := sampleDoc("d1")
	require.NoError(t, store.Save(ctx, doc))

	doc.Content = "changed"
	require.NoError(t, store.Save(ctx, doc))

	doc.Active = false
	require.NoError(t, store.Save(ctx, doc))

	require.NoError(t, store.Delete(ctx, "d1"))

	require.Len(t, events, 4)
	assert.Equal(t, domain.EventCreated, events[0].Type)
	assert.Equal(t, domain.EventUpdated, events[1].Type)
	assert.Equal(t, domain.EventDeactivated, events[2].Type)
	assert.Equal(t, domain.EventDeleted, events[3].Type)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store1, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store1.Save(ctx, sampleDoc("d1")))
	require.NoError(t, store1.Close())

	store2, err := NewStore(dir)
	require.NoError(t, err)
	defer store2.Close()

	got, err := store2.Get(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "Title d1", got.Title)
}

func TestStore_MigrationsAreIdempotent(t *testing.T) {
	dir := t.TempDir()

	store1, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store1.Close())

	// Reopening re-runs migrate against an up-to-date schema.
	store2, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store2.Close())
}

func TestStore_TagsWithCommasRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := sampleDoc("d1")
	doc.Tags = []string{"web, backend", "c++"}
	require.NoError(t, store.Save(ctx, doc))

	got, err := store.Get(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, []string{"web, backend", "c++"}, got.Tags)
}

func TestStore_EmptyTags(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := sampleDoc("d1")
	doc.Tags = nil
	require.NoError(t, store.Save(ctx, doc))

	got, err := store.Get(ctx, "d1")
	require.NoError(t, err)
	assert.Nil(t, got.Tags)
}
