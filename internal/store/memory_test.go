package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCollectionCRUD(t *testing.T) {
	db := NewMemoryDatabase()
	c := db.Mem("docs")
	ctx := context.Background()

	created := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, c.InsertOne(ctx, &doc{ID: "d1", Status: "draft", CreatedAt: created}))

	var got doc
	require.NoError(t, c.FindByID(ctx, "d1", &got))
	assert.Equal(t, "draft", got.Status)
	assert.True(t, got.CreatedAt.Equal(created), "time survives the BSON round trip")

	require.NoError(t, c.UpdateByID(ctx, "d1", map[string]interface{}{"status": "published"}))
	require.NoError(t, c.FindByID(ctx, "d1", &got))
	assert.Equal(t, "published", got.Status)

	require.NoError(t, c.DeleteByID(ctx, "d1"))
	assert.ErrorIs(t, c.FindByID(ctx, "d1", &got), ErrNotFound)
	assert.ErrorIs(t, c.UpdateByID(ctx, "d1", map[string]interface{}{"status": "x"}), ErrNotFound)
	assert.ErrorIs(t, c.DeleteByID(ctx, "d1"), ErrNotFound)
}

func TestMemoryCollectionRejectsDocumentsWithoutID(t *testing.T) {
	db := NewMemoryDatabase()
	err := db.Mem("docs").InsertOne(context.Background(), &struct {
		Name string `bson:"name"`
	}{Name: "kimliksiz"})
	require.Error(t, err)
}

func TestMemoryCollectionFilterAndTimeSort(t *testing.T) {
	db := NewMemoryDatabase()
	c := db.Mem("docs")
	seedDocs(t, c, 9)

	var published []doc
	sortBy := Sort{Field: "created_at", Desc: true}
	require.NoError(t, c.Find(context.Background(), Filter{"status": "published"}, FindOptions{Sort: &sortBy}, &published))
	require.NotEmpty(t, published)
	for _, d := range published {
		assert.Equal(t, "published", d.Status)
	}
	for i := 1; i < len(published); i++ {
		assert.False(t, published[i].CreatedAt.After(published[i-1].CreatedAt))
	}
}

func TestSimulateMissingIndexOnlyBreaksFilteredSorts(t *testing.T) {
	db := NewMemoryDatabase()
	c := db.Mem("docs")
	seedDocs(t, c, 4)
	c.SimulateMissingIndex(true)

	ctx := context.Background()
	sortBy := Sort{Field: "created_at", Desc: true}
	var out []doc

	err := c.Find(ctx, Filter{"status": "published"}, FindOptions{Sort: &sortBy}, &out)
	require.Error(t, err)
	var iue *IndexUnavailableError
	assert.True(t, errors.As(err, &iue))

	// Equality-only and sort-only queries still work.
	assert.NoError(t, c.Find(ctx, Filter{"status": "published"}, FindOptions{}, &out))
	assert.NoError(t, c.Find(ctx, nil, FindOptions{Sort: &sortBy}, &out))

	c.SimulateMissingIndex(false)
	assert.NoError(t, c.Find(ctx, Filter{"status": "published"}, FindOptions{Sort: &sortBy}, &out))
}

func TestMemoryCollectionWatchDeliversChanges(t *testing.T) {
	db := NewMemoryDatabase()
	c := db.Mem("docs")
	ctx := context.Background()

	sub, err := c.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, c.InsertOne(ctx, &doc{ID: "d1"}))
	require.NoError(t, c.UpdateByID(ctx, "d1", map[string]interface{}{"status": "published"}))
	require.NoError(t, c.DeleteByID(ctx, "d1"))

	ops := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		select {
		case ev := <-sub.Events():
			assert.Equal(t, "docs", ev.Collection)
			assert.Equal(t, "d1", ev.DocumentID)
			ops = append(ops, ev.Op)
		case <-time.After(time.Second):
			t.Fatal("missing change event")
		}
	}
	assert.Equal(t, []string{"insert", "update", "delete"}, ops)

	sub.Cancel()
	sub.Cancel() // idempotent

	// Writes after cancellation neither panic nor deliver.
	require.NoError(t, c.InsertOne(ctx, &doc{ID: "d2"}))
	_, open := <-sub.Events()
	assert.False(t, open)
}
