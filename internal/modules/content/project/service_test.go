package project

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santiyer/core/internal/models"
	"github.com/santiyer/core/internal/modules/media"
	"github.com/santiyer/core/internal/storage"
	"github.com/santiyer/core/internal/store"
)

func testImage(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 16, 16)), nil))
	return buf.Bytes()
}

type fixture struct {
	svc     *Service
	db      *store.MemoryDatabase
	blobs   *storage.MemoryStore
	service models.ServiceModel
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := store.NewMemoryDatabase()
	blobs := storage.NewMemoryStore("https://media.example.com", "santiyer-media")
	pipeline := media.NewPipeline(blobs, media.CompressOptions{MaxSizeMB: 5, MaxWidthOrHeight: 1920}, nil)

	owner := models.ServiceModel{Name: "Çelik Yapılar", Slug: "celik-yapilar"}
	owner.Touch()
	require.NoError(t, db.Mem("services").InsertOne(context.Background(), &owner))

	return &fixture{
		svc:     NewService(db, pipeline, media.NewReconciler(blobs, nil)),
		db:      db,
		blobs:   blobs,
		service: owner,
	}
}

func (f *fixture) create(t *testing.T, title string, files []media.File) *models.ProjectModel {
	t.Helper()
	m, err := f.svc.Create(context.Background(), &CreateProjectDTO{
		Title:     title,
		ServiceID: f.service.ID,
	}, files)
	require.NoError(t, err)
	return m
}

func imageFile(t *testing.T, name string) media.File {
	return media.File{Name: name, ContentType: "image/jpeg", Data: testImage(t)}
}

func TestCreateCoverIsFirstImageAndVideoDetected(t *testing.T) {
	f := newFixture(t)

	m := f.create(t, "City Park", []media.File{
		imageFile(t, "one.jpg"),
		imageFile(t, "two.jpg"),
		{Name: "tour.mp4", ContentType: "video/mp4", Data: []byte("clip")},
	})

	require.Len(t, m.MediaURLs, 3)
	assert.Equal(t, m.MediaURLs[0], m.Cover())
	assert.False(t, media.IsVideoURL(m.MediaURLs[0]))
	assert.False(t, media.IsVideoURL(m.MediaURLs[1]))
	assert.True(t, media.IsVideoURL(m.MediaURLs[2]))
}

func TestCreateRequiresMediaAndKnownService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, &CreateProjectDTO{Title: "Bos", ServiceID: f.service.ID}, nil)
	assert.Error(t, err)

	_, err = f.svc.Create(ctx, &CreateProjectDTO{Title: "Hayalet", ServiceID: "yok"},
		[]media.File{imageFile(t, "a.jpg")})
	assert.Error(t, err)
}

func TestCreateDenormalizesServiceSlug(t *testing.T) {
	f := newFixture(t)

	m := f.create(t, "Kule", []media.File{imageFile(t, "a.jpg")})
	assert.Equal(t, f.service.ID, m.ServiceID)
	assert.Equal(t, "celik-yapilar", m.ServiceSlug)
}

func TestUpdateRemovingSecondImageDeletesExactlyOneBlob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m := f.create(t, "Konut", []media.File{
		imageFile(t, "1.jpg"), imageFile(t, "2.jpg"), imageFile(t, "3.jpg"),
	})
	require.Equal(t, 3, f.blobs.Len())

	kept := []string{m.MediaURLs[0], m.MediaURLs[2]}
	next, err := f.svc.Update(ctx, m.ID, &UpdateProjectDTO{
		Title:     m.Title,
		ServiceID: m.ServiceID,
		MediaURLs: kept,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, kept, next.MediaURLs)

	removedPath, err := storage.PathFromURL(m.MediaURLs[1])
	require.NoError(t, err)
	assert.Equal(t, []string{removedPath}, f.blobs.Deletes)
	assert.Equal(t, 2, f.blobs.Len())

	stored, err := f.svc.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, kept, stored.MediaURLs)
}

func TestUpdateCannotEmptyMediaList(t *testing.T) {
	f := newFixture(t)

	m := f.create(t, "Tek", []media.File{imageFile(t, "a.jpg")})
	_, err := f.svc.Update(context.Background(), m.ID, &UpdateProjectDTO{
		Title:     m.Title,
		ServiceID: m.ServiceID,
	}, nil)
	assert.Error(t, err)
}

func TestListByServiceFallsBackToSlug(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m := f.create(t, "Depo", []media.File{imageFile(t, "a.jpg")})

	// The service record is recreated under a new ID, as after a restore.
	// The project now carries a stale service_id but a matching slug.
	require.NoError(t, f.db.Mem("services").DeleteByID(ctx, f.service.ID))
	reborn := models.ServiceModel{Name: f.service.Name, Slug: f.service.Slug}
	reborn.Touch()
	require.NoError(t, f.db.Mem("services").InsertOne(ctx, &reborn))

	items, err := f.svc.ListByService(ctx, reborn.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, m.ID, items[0].ID)
}

func TestListByServiceUnknownServiceIsEmpty(t *testing.T) {
	f := newFixture(t)

	items, err := f.svc.ListByService(context.Background(), "yok")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestStatusTransitionChangesListVisibilityOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m := f.create(t, "Stadyum", []media.File{imageFile(t, "a.jpg")})
	require.Equal(t, models.ProjectOngoing, m.Status)

	ongoing, err := f.svc.List(ctx, models.ProjectOngoing, 0)
	require.NoError(t, err)
	require.Len(t, ongoing, 1)

	require.NoError(t, f.svc.SetStatus(ctx, m.ID, models.ProjectFinished))

	ongoing, err = f.svc.List(ctx, models.ProjectOngoing, 0)
	require.NoError(t, err)
	assert.Empty(t, ongoing)

	finished, err := f.svc.List(ctx, models.ProjectFinished, 0)
	require.NoError(t, err)
	require.Len(t, finished, 1)
	assert.Equal(t, m.MediaURLs, finished[0].MediaURLs)
}

func TestListDegradedTierMatchesIndexedTier(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, title := range []string{"Bir", "İki", "Üç", "Dört"} {
		f.create(t, title, []media.File{imageFile(t, "a.jpg")})
	}

	indexed, err := f.svc.List(ctx, models.ProjectOngoing, 2)
	require.NoError(t, err)

	f.db.Mem("projects").SimulateMissingIndex(true)
	degraded, err := f.svc.List(ctx, models.ProjectOngoing, 2)
	require.NoError(t, err)

	require.Len(t, degraded, len(indexed))
	for i := range indexed {
		assert.Equal(t, indexed[i].ID, degraded[i].ID)
	}
}

func TestDeleteRemovesRecordAndAllMedia(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m := f.create(t, "Yikim", []media.File{imageFile(t, "1.jpg"), imageFile(t, "2.jpg")})
	require.NoError(t, f.svc.Delete(ctx, m.ID))

	got, err := f.svc.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 0, f.blobs.Len())
	assert.Len(t, f.blobs.Deletes, 2)

	assert.ErrorIs(t, f.svc.Delete(ctx, m.ID), store.ErrNotFound)
}
