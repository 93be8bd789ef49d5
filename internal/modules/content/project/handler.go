package project

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/santiyer/core/internal/models"
	"github.com/santiyer/core/internal/modules/media"
	"github.com/santiyer/core/internal/pkg/pagination"
	"github.com/santiyer/core/internal/pkg/response"
	"github.com/santiyer/core/internal/store"
)

type projectResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	ServiceID   string     `json:"service_id"`
	ServiceSlug string     `json:"service_slug"`
	Cover       string     `json:"cover"`
	MediaURLs   []string   `json:"media_urls"`
	Client      string     `json:"client,omitempty"`
	Location    string     `json:"location,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Created     time.Time  `json:"created"`
	Modified    time.Time  `json:"modified"`
}

func toResponse(m *models.ProjectModel) projectResponse {
	urls := m.MediaURLs
	if urls == nil {
		urls = []string{}
	}
	return projectResponse{
		ID: m.ID, Title: m.Title, Description: m.Description,
		Status: m.Status, ServiceID: m.ServiceID, ServiceSlug: m.ServiceSlug,
		Cover: m.Cover(), MediaURLs: urls,
		Client: m.Client, Location: m.Location,
		StartDate: m.StartDate, EndDate: m.EndDate,
		Created: m.CreatedAt, Modified: m.UpdatedAt,
	}
}

type statusDTO struct {
	Status string `json:"status" binding:"required"`
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/projects")
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.GET("/by-service/:serviceId", h.listByService)

	a := g.Group("", authMW)
	a.POST("", h.create)
	a.PUT("/:id", h.update)
	a.PATCH("/:id/status", h.setStatus)
	a.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)
	items, err := h.svc.List(c.Request.Context(), c.Query("status"), 0)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	page, pag := pagination.Window(items, q)
	out := make([]projectResponse, len(page))
	for i := range page {
		out[i] = toResponse(&page[i])
	}
	response.Paged(c, out, pag)
}

func (h *Handler) listByService(c *gin.Context) {
	items, err := h.svc.ListByService(c.Request.Context(), c.Param("serviceId"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	out := make([]projectResponse, len(items))
	for i := range items {
		out[i] = toResponse(&items[i])
	}
	response.OK(c, out)
}

func (h *Handler) get(c *gin.Context) {
	m, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if m == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, toResponse(m))
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateProjectDTO
	if err := c.ShouldBind(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	files, err := media.FilesFromForm(form, "media")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	m, err := h.svc.Create(c.Request.Context(), &dto, files)
	if err != nil {
		response.UnprocessableEntity(c, err.Error())
		return
	}
	response.Created(c, toResponse(m))
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateProjectDTO
	if err := c.ShouldBind(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	var files []media.File
	if form, err := c.MultipartForm(); err == nil {
		if files, err = media.FilesFromForm(form, "media"); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	}

	m, err := h.svc.Update(c.Request.Context(), c.Param("id"), &dto, files)
	if err != nil {
		response.UnprocessableEntity(c, err.Error())
		return
	}
	if m == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, toResponse(m))
}

func (h *Handler) setStatus(c *gin.Context) {
	var dto statusDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.svc.SetStatus(c.Request.Context(), c.Param("id"), dto.Status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.NotFound(c)
			return
		}
		response.UnprocessableEntity(c, err.Error())
		return
	}
	response.NoContent(c)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
