package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	ID        string    `bson:"_id"`
	Status    string    `bson:"status"`
	CreatedAt time.Time `bson:"created_at"`
}

func docsNewestFirst(a, b doc) bool { return a.CreatedAt.After(b.CreatedAt) }

func seedDocs(t *testing.T, c *MemoryCollection, n int) {
	t.Helper()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		status := "published"
		if i%3 == 0 {
			status = "draft"
		}
		d := doc{
			ID:        string(rune('a' + i)),
			Status:    status,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, c.InsertOne(context.Background(), &d))
	}
}

func TestFindOrderedTiersAreOrderEquivalent(t *testing.T) {
	db := NewMemoryDatabase()
	c := db.Mem("docs")
	seedDocs(t, c, 12)

	filter := Filter{"status": "published"}
	sortBy := Sort{Field: "created_at", Desc: true}

	indexed := make([]doc, 0)
	require.NoError(t, c.Find(context.Background(), filter, FindOptions{Sort: &sortBy, Limit: 5}, &indexed))

	c.SimulateMissingIndex(true)
	degraded, err := FindOrdered(context.Background(), c, filter, sortBy, 5, docsNewestFirst)
	require.NoError(t, err)

	require.Equal(t, len(indexed), len(degraded))
	for i := range indexed {
		assert.Equal(t, indexed[i].ID, degraded[i].ID)
	}
}

func TestFindOrderedUsesIndexedTierWhenAvailable(t *testing.T) {
	db := NewMemoryDatabase()
	c := db.Mem("docs")
	seedDocs(t, c, 6)

	out, err := FindOrdered(context.Background(), c, Filter{"status": "published"},
		Sort{Field: "created_at", Desc: true}, 0, docsNewestFirst)
	require.NoError(t, err)
	require.NotEmpty(t, out)
	for i := 1; i < len(out); i++ {
		assert.False(t, out[i].CreatedAt.After(out[i-1].CreatedAt))
	}
}

func TestIsIndexUnavailableIsSpecific(t *testing.T) {
	assert.False(t, IsIndexUnavailable(context.Canceled))
	assert.False(t, IsIndexUnavailable(ErrNotFound))
	assert.True(t, IsIndexUnavailable(&IndexUnavailableError{Reason: "no composite index"}))
}

func TestReorderTruncatesAfterStableSort(t *testing.T) {
	items := []doc{
		{ID: "1", CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "2", CreatedAt: time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC)},
		{ID: "3", CreatedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)},
		{ID: "4", CreatedAt: time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC)}, // tie with "2"
	}

	out := Reorder(items, docsNewestFirst, 3)
	require.Len(t, out, 3)
	assert.Equal(t, "2", out[0].ID, "stable sort keeps first-seen tie winner")
	assert.Equal(t, "4", out[1].ID)
	assert.Equal(t, "3", out[2].ID)

	// Zero limit means no truncation.
	assert.Len(t, Reorder(items, docsNewestFirst, 0), 4)

	// Input is not mutated.
	assert.Equal(t, "1", items[0].ID)
}

func TestFallbackCapInflatesLimit(t *testing.T) {
	assert.Equal(t, int64(0), fallbackCap(0))
	assert.Equal(t, int64(500), fallbackCap(10))
	assert.Equal(t, int64(1000), fallbackCap(100))
}
