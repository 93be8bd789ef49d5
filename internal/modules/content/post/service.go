// Package post manages news entries: draft/published visibility, cover and
// gallery media, and the related-posts set computed by category at read time.
package post

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/santiyer/core/internal/models"
	"github.com/santiyer/core/internal/modules/media"
	"github.com/santiyer/core/internal/pkg/slug"
	"github.com/santiyer/core/internal/store"
)

const (
	kind = "posts"

	relatedLimit = 4
)

type CreatePostDTO struct {
	Title    string   `form:"title" json:"title" binding:"required"`
	Excerpt  string   `form:"excerpt" json:"excerpt"`
	Content  string   `form:"content" json:"content" binding:"required"`
	Status   string   `form:"status" json:"status"`
	Category string   `form:"category" json:"category"`
	Tags     []string `form:"tags" json:"tags"`
}

// UpdatePostDTO is a full replacement. CoverURL and GalleryURLs carry the
// kept stored URLs; new uploads replace the cover or extend the gallery.
type UpdatePostDTO struct {
	Title       string   `form:"title" json:"title" binding:"required"`
	Excerpt     string   `form:"excerpt" json:"excerpt"`
	Content     string   `form:"content" json:"content" binding:"required"`
	Status      string   `form:"status" json:"status"`
	Category    string   `form:"category" json:"category"`
	Tags        []string `form:"tags" json:"tags"`
	CoverURL    string   `form:"cover_url" json:"cover_url"`
	GalleryURLs []string `form:"gallery_urls" json:"gallery_urls"`
}

type Service struct {
	col       store.Collection
	pipeline  *media.Pipeline
	reconcile *media.Reconciler
}

func NewService(db store.Database, pipeline *media.Pipeline, reconcile *media.Reconciler) *Service {
	return &Service{
		col:       db.Collection(models.PostModel{}.CollectionName()),
		pipeline:  pipeline,
		reconcile: reconcile,
	}
}

// Create derives the slug from the title, uploads the cover (first file) and
// gallery (remaining files) as one batch, then writes the record.
func (s *Service) Create(ctx context.Context, dto *CreatePostDTO, files []media.File) (*models.PostModel, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("post: a cover image is required")
	}
	status := dto.Status
	if status == "" {
		status = models.PostDraft
	}
	if !models.ValidPostStatus(status) {
		return nil, fmt.Errorf("post: unknown status %q", status)
	}

	m := models.PostModel{
		Title:    dto.Title,
		Excerpt:  dto.Excerpt,
		Content:  dto.Content,
		Status:   status,
		Category: dto.Category,
		Tags:     dto.Tags,
		Slug:     slug.Make(dto.Title),
	}
	m.Touch()

	urls, err := s.pipeline.Upload(ctx, kind, m.Slug, files)
	if err != nil {
		return nil, err
	}
	m.CoverURL = urls[0]
	m.GalleryURLs = urls[1:]

	if err := s.col.InsertOne(ctx, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Update replaces the post state. The first uploaded file, if any, becomes
// the new cover; further uploads extend the gallery. Dropped URLs are
// reconciled after the record commits.
func (s *Service) Update(ctx context.Context, id string, dto *UpdatePostDTO, files []media.File) (*models.PostModel, error) {
	prev, err := s.GetByID(ctx, id)
	if err != nil || prev == nil {
		return prev, err
	}

	status := dto.Status
	if status == "" {
		status = prev.Status
	}
	if !models.ValidPostStatus(status) {
		return nil, fmt.Errorf("post: unknown status %q", status)
	}

	next := *prev
	next.Title = dto.Title
	next.Excerpt = dto.Excerpt
	next.Content = dto.Content
	next.Status = status
	next.Category = dto.Category
	next.Tags = dto.Tags
	next.Slug = slug.Make(dto.Title)
	next.CoverURL = dto.CoverURL
	next.GalleryURLs = append([]string(nil), dto.GalleryURLs...)

	if len(files) > 0 {
		uploaded, err := s.pipeline.Upload(ctx, kind, next.Slug, files)
		if err != nil {
			return nil, err
		}
		if next.CoverURL == "" {
			next.CoverURL = uploaded[0]
			uploaded = uploaded[1:]
		}
		next.GalleryURLs = append(next.GalleryURLs, uploaded...)
	}
	if next.CoverURL == "" {
		return nil, fmt.Errorf("post: cover image cannot be removed without a replacement")
	}

	next.Touch()
	err = s.col.UpdateByID(ctx, id, map[string]interface{}{
		"title":        next.Title,
		"excerpt":      next.Excerpt,
		"content":      next.Content,
		"status":       next.Status,
		"category":     next.Category,
		"tags":         next.Tags,
		"slug":         next.Slug,
		"cover_url":    next.CoverURL,
		"gallery_urls": next.GalleryURLs,
		"updated_at":   next.UpdatedAt,
	})
	if err != nil {
		return nil, err
	}

	s.reconcile.OnUpdate(ctx,
		append([]string{prev.CoverURL}, prev.GalleryURLs...),
		append([]string{next.CoverURL}, next.GalleryURLs...))
	return &next, nil
}

// SetStatus flips draft/published.
func (s *Service) SetStatus(ctx context.Context, id, status string) error {
	if !models.ValidPostStatus(status) {
		return fmt.Errorf("post: unknown status %q", status)
	}
	return s.col.UpdateByID(ctx, id, map[string]interface{}{
		"status":     status,
		"updated_at": time.Now().UTC(),
	})
}

func (s *Service) Delete(ctx context.Context, id string) error {
	prev, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if prev == nil {
		return store.ErrNotFound
	}
	if err := s.col.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.reconcile.OnDelete(ctx, append([]string{prev.CoverURL}, prev.GalleryURLs...))
	return nil
}

func newestFirst(a, b models.PostModel) bool { return a.CreatedAt.After(b.CreatedAt) }

// List returns posts newest first. The public site passes status=published;
// the admin list passes no status and sees drafts too.
func (s *Service) List(ctx context.Context, status string, limit int64) ([]models.PostModel, error) {
	filter := store.Filter{}
	if status != "" {
		if !models.ValidPostStatus(status) {
			return nil, fmt.Errorf("post: unknown status %q", status)
		}
		filter["status"] = status
	}
	return store.FindOrdered(ctx, s.col, filter, store.Sort{Field: "created_at", Desc: true}, limit, newestFirst)
}

// Related returns other published posts in the same category, newest first.
// Computed at read time; nothing is stored.
func (s *Service) Related(ctx context.Context, p *models.PostModel) ([]models.PostModel, error) {
	if p.Category == "" {
		return nil, nil
	}
	items, err := store.FindOrdered(ctx, s.col,
		store.Filter{"category": p.Category, "status": models.PostPublished},
		store.Sort{Field: "created_at", Desc: true}, relatedLimit+1, newestFirst)
	if err != nil {
		return nil, err
	}
	out := make([]models.PostModel, 0, relatedLimit)
	for _, item := range items {
		if item.ID == p.ID {
			continue
		}
		out = append(out, item)
		if len(out) == relatedLimit {
			break
		}
	}
	return out, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.PostModel, error) {
	var m models.PostModel
	if err := s.col.FindByID(ctx, id, &m); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (s *Service) GetBySlug(ctx context.Context, slugVal string) (*models.PostModel, error) {
	var out []models.PostModel
	if err := s.col.Find(ctx, store.Filter{"slug": slugVal}, store.FindOptions{Limit: 1}, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}
