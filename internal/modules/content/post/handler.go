package post

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/santiyer/core/internal/models"
	"github.com/santiyer/core/internal/modules/media"
	"github.com/santiyer/core/internal/pkg/markdown"
	"github.com/santiyer/core/internal/pkg/pagination"
	"github.com/santiyer/core/internal/pkg/response"
	"github.com/santiyer/core/internal/store"
)

type postResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Excerpt     string    `json:"excerpt"`
	Content     string    `json:"content"`
	Status      string    `json:"status"`
	Category    string    `json:"category,omitempty"`
	Tags        []string  `json:"tags"`
	CoverURL    string    `json:"cover_url"`
	GalleryURLs []string  `json:"gallery_urls"`
	Slug        string    `json:"slug"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
}

func toResponse(m *models.PostModel) postResponse {
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	gallery := m.GalleryURLs
	if gallery == nil {
		gallery = []string{}
	}
	return postResponse{
		ID: m.ID, Title: m.Title, Excerpt: m.Excerpt, Content: m.Content,
		Status: m.Status, Category: m.Category, Tags: tags,
		CoverURL: m.CoverURL, GalleryURLs: gallery, Slug: m.Slug,
		Created: m.CreatedAt, Modified: m.UpdatedAt,
	}
}

type postDetailResponse struct {
	postResponse
	Related []postResponse `json:"related"`
}

type statusDTO struct {
	Status string `json:"status" binding:"required"`
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/posts")
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.GET("/slug/:slug", h.getBySlug)

	a := g.Group("", authMW)
	a.GET("/admin/all", h.listAll)
	a.POST("", h.create)
	a.PUT("/:id", h.update)
	a.PATCH("/:id/status", h.setStatus)
	a.DELETE("/:id", h.delete)
}

// list is the public feed: published posts only.
func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)
	items, err := h.svc.List(c.Request.Context(), models.PostPublished, 0)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	page, pag := pagination.Window(items, q)
	out := make([]postResponse, len(page))
	for i := range page {
		out[i] = toResponse(&page[i])
	}
	response.Paged(c, out, pag)
}

// listAll is the admin list: drafts included, optional ?status filter.
func (h *Handler) listAll(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), c.Query("status"), 0)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	out := make([]postResponse, len(items))
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
	h.detail(c, m)
}

func (h *Handler) getBySlug(c *gin.Context) {
	m, err := h.svc.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if m == nil {
		response.NotFound(c)
		return
	}
	h.detail(c, m)
}

// detail renders the body as HTML when ?format=html and attaches the
// related set.
func (h *Handler) detail(c *gin.Context, m *models.PostModel) {
	out := toResponse(m)
	if c.Query("format") == "html" {
		html, err := markdown.Render(m.Content)
		if err != nil {
			response.InternalError(c, err)
			return
		}
		out.Content = html
	}

	related, err := h.svc.Related(c.Request.Context(), m)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	rel := make([]postResponse, len(related))
	for i := range related {
		rel[i] = toResponse(&related[i])
	}
	response.OK(c, postDetailResponse{postResponse: out, Related: rel})
}

func (h *Handler) create(c *gin.Context) {
	var dto CreatePostDTO
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
	var dto UpdatePostDTO
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
