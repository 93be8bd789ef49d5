// Package slider manages the landing-page hero entries: ordered image sets
// with an optional caption and link.
package slider

import (
	"context"
	"errors"
	"fmt"

	"github.com/santiyer/core/internal/models"
	"github.com/santiyer/core/internal/modules/media"
	"github.com/santiyer/core/internal/pkg/slug"
	"github.com/santiyer/core/internal/store"
)

const kind = "sliders"

type CreateSliderDTO struct {
	Title   string `form:"title" json:"title" binding:"required"`
	Caption string `form:"caption" json:"caption"`
	LinkURL string `form:"link_url" json:"link_url"`
	Order   int    `form:"order" json:"order"`
}

type UpdateSliderDTO struct {
	Title     string   `form:"title" json:"title" binding:"required"`
	Caption   string   `form:"caption" json:"caption"`
	LinkURL   string   `form:"link_url" json:"link_url"`
	Order     int      `form:"order" json:"order"`
	ImageURLs []string `form:"image_urls" json:"image_urls"`
}

type Service struct {
	col       store.Collection
	pipeline  *media.Pipeline
	reconcile *media.Reconciler
}

func NewService(db store.Database, pipeline *media.Pipeline, reconcile *media.Reconciler) *Service {
	return &Service{
		col:       db.Collection(models.SliderModel{}.CollectionName()),
		pipeline:  pipeline,
		reconcile: reconcile,
	}
}

func (s *Service) Create(ctx context.Context, dto *CreateSliderDTO, images []media.File) (*models.SliderModel, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("slider: at least one image is required")
	}

	m := models.SliderModel{
		Title:   dto.Title,
		Caption: dto.Caption,
		LinkURL: dto.LinkURL,
		Order:   dto.Order,
	}
	m.Touch()

	urls, err := s.pipeline.Upload(ctx, kind, slug.Make(dto.Title), images)
	if err != nil {
		return nil, err
	}
	m.ImageURLs = urls

	if err := s.col.InsertOne(ctx, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Service) Update(ctx context.Context, id string, dto *UpdateSliderDTO, images []media.File) (*models.SliderModel, error) {
	prev, err := s.GetByID(ctx, id)
	if err != nil || prev == nil {
		return prev, err
	}

	next := *prev
	next.Title = dto.Title
	next.Caption = dto.Caption
	next.LinkURL = dto.LinkURL
	next.Order = dto.Order

	nextURLs := append([]string(nil), dto.ImageURLs...)
	if len(images) > 0 {
		uploaded, err := s.pipeline.Upload(ctx, kind, slug.Make(dto.Title), images)
		if err != nil {
			return nil, err
		}
		nextURLs = append(nextURLs, uploaded...)
	}
	if len(nextURLs) == 0 {
		return nil, fmt.Errorf("slider: image list cannot become empty")
	}
	next.ImageURLs = nextURLs

	next.Touch()
	err = s.col.UpdateByID(ctx, id, map[string]interface{}{
		"title":      next.Title,
		"caption":    next.Caption,
		"link_url":   next.LinkURL,
		"order":      next.Order,
		"image_urls": next.ImageURLs,
		"updated_at": next.UpdatedAt,
	})
	if err != nil {
		return nil, err
	}

	s.reconcile.OnUpdate(ctx, prev.ImageURLs, next.ImageURLs)
	return &next, nil
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
	s.reconcile.OnDelete(ctx, prev.ImageURLs)
	return nil
}

// List returns sliders in display order (ascending Order field).
func (s *Service) List(ctx context.Context) ([]models.SliderModel, error) {
	return store.FindOrdered(ctx, s.col, store.Filter{}, store.Sort{Field: "order"}, 0,
		func(a, b models.SliderModel) bool { return a.Order < b.Order })
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.SliderModel, error) {
	var m models.SliderModel
	if err := s.col.FindByID(ctx, id, &m); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}
