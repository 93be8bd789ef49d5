// Package project manages construction projects: media batches with a
// derived cover, the ongoing/finished status flag and the service
// cross-reference with its slug fallback.
package project

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

const kind = "projects"

type CreateProjectDTO struct {
	Title       string `form:"title" json:"title" binding:"required"`
	Description string `form:"description" json:"description"`
	Status      string `form:"status" json:"status"`
	ServiceID   string `form:"service_id" json:"service_id" binding:"required"`
	Client      string `form:"client" json:"client"`
	Location    string `form:"location" json:"location"`
	StartDate   string `form:"start_date" json:"start_date"`
	EndDate     string `form:"end_date" json:"end_date"`
}

// UpdateProjectDTO is a full replacement. MediaURLs lists the already-stored
// URLs the admin kept, in display order; newly uploaded files are appended
// after them.
type UpdateProjectDTO struct {
	Title       string   `form:"title" json:"title" binding:"required"`
	Description string   `form:"description" json:"description"`
	Status      string   `form:"status" json:"status"`
	ServiceID   string   `form:"service_id" json:"service_id" binding:"required"`
	Client      string   `form:"client" json:"client"`
	Location    string   `form:"location" json:"location"`
	StartDate   string   `form:"start_date" json:"start_date"`
	EndDate     string   `form:"end_date" json:"end_date"`
	MediaURLs   []string `form:"media_urls" json:"media_urls"`
}

type Service struct {
	col       store.Collection
	services  store.Collection
	pipeline  *media.Pipeline
	reconcile *media.Reconciler
}

func NewService(db store.Database, pipeline *media.Pipeline, reconcile *media.Reconciler) *Service {
	return &Service{
		col:       db.Collection(models.ProjectModel{}.CollectionName()),
		services:  db.Collection(models.ServiceModel{}.CollectionName()),
		pipeline:  pipeline,
		reconcile: reconcile,
	}
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("project: invalid date %q, expected YYYY-MM-DD", s)
	}
	return &t, nil
}

// Create resolves the owning service, captures its slug as the denormalized
// secondary key, uploads the media batch and only then writes the record.
// At least one file is required so a persisted project always has a cover.
func (s *Service) Create(ctx context.Context, dto *CreateProjectDTO, files []media.File) (*models.ProjectModel, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("project: at least one media file is required")
	}
	status := dto.Status
	if status == "" {
		status = models.ProjectOngoing
	}
	if !models.ValidProjectStatus(status) {
		return nil, fmt.Errorf("project: unknown status %q", status)
	}

	var owner models.ServiceModel
	if err := s.services.FindByID(ctx, dto.ServiceID, &owner); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("project: service %q does not exist", dto.ServiceID)
		}
		return nil, err
	}

	start, err := parseDate(dto.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate(dto.EndDate)
	if err != nil {
		return nil, err
	}

	m := models.ProjectModel{
		Title:       dto.Title,
		Description: dto.Description,
		Status:      status,
		ServiceID:   owner.ID,
		ServiceSlug: owner.Slug,
		Client:      dto.Client,
		Location:    dto.Location,
		StartDate:   start,
		EndDate:     end,
	}
	m.Touch()

	urls, err := s.pipeline.Upload(ctx, kind, slug.Make(dto.Title), files)
	if err != nil {
		return nil, err
	}
	m.MediaURLs = urls

	if err := s.col.InsertOne(ctx, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Update replaces the project state. The next media list is the kept URLs
// followed by any new uploads; URLs dropped from the previous list are
// deleted best-effort after the record commits.
func (s *Service) Update(ctx context.Context, id string, dto *UpdateProjectDTO, files []media.File) (*models.ProjectModel, error) {
	prev, err := s.GetByID(ctx, id)
	if err != nil || prev == nil {
		return prev, err
	}

	status := dto.Status
	if status == "" {
		status = prev.Status
	}
	if !models.ValidProjectStatus(status) {
		return nil, fmt.Errorf("project: unknown status %q", status)
	}

	start, err := parseDate(dto.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate(dto.EndDate)
	if err != nil {
		return nil, err
	}

	next := *prev
	next.Title = dto.Title
	next.Description = dto.Description
	next.Status = status
	next.Client = dto.Client
	next.Location = dto.Location
	next.StartDate = start
	next.EndDate = end

	if dto.ServiceID != prev.ServiceID {
		var owner models.ServiceModel
		if err := s.services.FindByID(ctx, dto.ServiceID, &owner); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("project: service %q does not exist", dto.ServiceID)
			}
			return nil, err
		}
		next.ServiceID = owner.ID
		next.ServiceSlug = owner.Slug
	}

	nextURLs := append([]string(nil), dto.MediaURLs...)
	if len(files) > 0 {
		uploaded, err := s.pipeline.Upload(ctx, kind, slug.Make(dto.Title), files)
		if err != nil {
			return nil, err
		}
		nextURLs = append(nextURLs, uploaded...)
	}
	if len(nextURLs) == 0 {
		return nil, fmt.Errorf("project: media list cannot become empty")
	}
	next.MediaURLs = nextURLs

	next.Touch()
	err = s.col.UpdateByID(ctx, id, map[string]interface{}{
		"title":        next.Title,
		"description":  next.Description,
		"status":       next.Status,
		"service_id":   next.ServiceID,
		"service_slug": next.ServiceSlug,
		"media_urls":   next.MediaURLs,
		"client":       next.Client,
		"location":     next.Location,
		"start_date":   next.StartDate,
		"end_date":     next.EndDate,
		"updated_at":   next.UpdatedAt,
	})
	if err != nil {
		return nil, err
	}

	s.reconcile.OnUpdate(ctx, prev.MediaURLs, next.MediaURLs)
	return &next, nil
}

// SetStatus flips ongoing/finished. A single-field transition; it only
// changes which read filters surface the record.
func (s *Service) SetStatus(ctx context.Context, id, status string) error {
	if !models.ValidProjectStatus(status) {
		return fmt.Errorf("project: unknown status %q", status)
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
	s.reconcile.OnDelete(ctx, prev.MediaURLs)
	return nil
}

func newestFirst(a, b models.ProjectModel) bool { return a.CreatedAt.After(b.CreatedAt) }

// List returns projects newest first, optionally restricted to one status.
func (s *Service) List(ctx context.Context, status string, limit int64) ([]models.ProjectModel, error) {
	filter := store.Filter{}
	if status != "" {
		if !models.ValidProjectStatus(status) {
			return nil, fmt.Errorf("project: unknown status %q", status)
		}
		filter["status"] = status
	}
	return store.FindOrdered(ctx, s.col, filter, store.Sort{Field: "created_at", Desc: true}, limit, newestFirst)
}

// ListByService lists a service's projects by identifier and, when that
// yields nothing, retries by the denormalized service slug. The second path
// keeps records visible when they reference a stale or renamed service.
func (s *Service) ListByService(ctx context.Context, serviceID string) ([]models.ProjectModel, error) {
	items, err := store.FindOrdered(ctx, s.col,
		store.Filter{"service_id": serviceID},
		store.Sort{Field: "created_at", Desc: true}, 0, newestFirst)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		return items, nil
	}

	var owner models.ServiceModel
	if err := s.services.FindByID(ctx, serviceID, &owner); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return items, nil
		}
		return nil, err
	}
	if owner.Slug == "" {
		return items, nil
	}
	return store.FindOrdered(ctx, s.col,
		store.Filter{"service_slug": owner.Slug},
		store.Sort{Field: "created_at", Desc: true}, 0, newestFirst)
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.ProjectModel, error) {
	var m models.ProjectModel
	if err := s.col.FindByID(ctx, id, &m); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}
