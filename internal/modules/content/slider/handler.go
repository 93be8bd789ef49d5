package slider

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/santiyer/core/internal/models"
	"github.com/santiyer/core/internal/modules/media"
	"github.com/santiyer/core/internal/pkg/response"
	"github.com/santiyer/core/internal/store"
)

type sliderResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Caption   string    `json:"caption,omitempty"`
	LinkURL   string    `json:"link_url,omitempty"`
	ImageURLs []string  `json:"image_urls"`
	Order     int       `json:"order"`
	Created   time.Time `json:"created"`
	Modified  time.Time `json:"modified"`
}

func toResponse(m *models.SliderModel) sliderResponse {
	urls := m.ImageURLs
	if urls == nil {
		urls = []string{}
	}
	return sliderResponse{
		ID: m.ID, Title: m.Title, Caption: m.Caption, LinkURL: m.LinkURL,
		ImageURLs: urls, Order: m.Order,
		Created: m.CreatedAt, Modified: m.UpdatedAt,
	}
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/sliders")
	g.GET("", h.list)

	a := g.Group("", authMW)
	a.GET("/:id", h.get)
	a.POST("", h.create)
	a.PUT("/:id", h.update)
	a.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	out := make([]sliderResponse, len(items))
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
	var dto CreateSliderDTO
	if err := c.ShouldBind(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	images, err := media.FilesFromForm(form, "images")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	m, err := h.svc.Create(c.Request.Context(), &dto, images)
	if err != nil {
		response.UnprocessableEntity(c, err.Error())
		return
	}
	response.Created(c, toResponse(m))
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateSliderDTO
	if err := c.ShouldBind(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	var images []media.File
	if form, err := c.MultipartForm(); err == nil {
		if images, err = media.FilesFromForm(form, "images"); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	}

	m, err := h.svc.Update(c.Request.Context(), c.Param("id"), &dto, images)
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
