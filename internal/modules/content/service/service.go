// Package service manages the offered-services catalogue: creation with a
// cover image, slug derivation from the Turkish name, and cleanup of the
// replaced cover on edit.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/santiyer/core/internal/models"
	"github.com/santiyer/core/internal/modules/media"
	"github.com/santiyer/core/internal/pkg/slug"
	"github.com/santiyer/core/internal/store"
)

const kind = "services"

type CreateServiceDTO struct {
	Name        string `form:"name" json:"name" binding:"required"`
	Description string `form:"description" json:"description"`
}

// UpdateServiceDTO is a full replacement of the editable fields. The admin
// form always submits the complete state.
type UpdateServiceDTO struct {
	Name        string `form:"name" json:"name" binding:"required"`
	Description string `form:"description" json:"description"`
}

type Service struct {
	col       store.Collection
	pipeline  *media.Pipeline
	reconcile *media.Reconciler
}

func NewService(db store.Database, pipeline *media.Pipeline, reconcile *media.Reconciler) *Service {
	return &Service{
		col:       db.Collection(models.ServiceModel{}.CollectionName()),
		pipeline:  pipeline,
		reconcile: reconcile,
	}
}

// Create uploads the cover first and only then writes the record, so the
// record never references an unconfirmed URL.
func (s *Service) Create(ctx context.Context, dto *CreateServiceDTO, cover []media.File) (*models.ServiceModel, error) {
	if len(cover) == 0 {
		return nil, fmt.Errorf("service: a cover image is required")
	}

	m := models.ServiceModel{
		Name:        dto.Name,
		Description: dto.Description,
		Slug:        slug.Make(dto.Name),
	}
	m.Touch()

	urls, err := s.pipeline.Upload(ctx, kind, m.Slug, cover[:1])
	if err != nil {
		return nil, err
	}
	m.CoverURL = urls[0]

	if err := s.col.InsertOne(ctx, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Update replaces the editable fields and, when a new cover arrives, swaps
// the image and deletes the old blob best-effort. The slug follows the name
// on explicit edit.
func (s *Service) Update(ctx context.Context, id string, dto *UpdateServiceDTO, cover []media.File) (*models.ServiceModel, error) {
	prev, err := s.GetByID(ctx, id)
	if err != nil || prev == nil {
		return prev, err
	}

	next := *prev
	next.Name = dto.Name
	next.Description = dto.Description
	next.Slug = slug.Make(dto.Name)

	if len(cover) > 0 {
		urls, err := s.pipeline.Upload(ctx, kind, next.Slug, cover[:1])
		if err != nil {
			return nil, err
		}
		next.CoverURL = urls[0]
	}

	next.Touch()
	err = s.col.UpdateByID(ctx, id, map[string]interface{}{
		"name":        next.Name,
		"description": next.Description,
		"slug":        next.Slug,
		"cover_url":   next.CoverURL,
		"updated_at":  next.UpdatedAt,
	})
	if err != nil {
		return nil, err
	}

	if next.CoverURL != prev.CoverURL {
		s.reconcile.OnUpdate(ctx, []string{prev.CoverURL}, []string{next.CoverURL})
	}
	return &next, nil
}

// Delete removes the record first; blob cleanup afterwards is best effort.
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
	s.reconcile.OnDelete(ctx, []string{prev.CoverURL})
	return nil
}

// List returns every service, newest first.
func (s *Service) List(ctx context.Context) ([]models.ServiceModel, error) {
	return store.FindOrdered(ctx, s.col, store.Filter{}, store.Sort{Field: "created_at", Desc: true}, 0,
		func(a, b models.ServiceModel) bool { return a.CreatedAt.After(b.CreatedAt) })
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.ServiceModel, error) {
	var m models.ServiceModel
	if err := s.col.FindByID(ctx, id, &m); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (s *Service) GetBySlug(ctx context.Context, slugVal string) (*models.ServiceModel, error) {
	var out []models.ServiceModel
	err := s.col.Find(ctx, store.Filter{"slug": slugVal}, store.FindOptions{Limit: 1}, &out)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}
