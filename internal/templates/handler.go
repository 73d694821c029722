package templates

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/storage/object"
	"resume-builder/internal/shared/telemetry"
)

// URLResolver turns a storage key into a downloadable URL.
type URLResolver interface {
	URL(ctx context.Context, key string) (string, error)
}

type Handler struct {
	Catalog *Catalog
	Assets  URLResolver
}

func NewHandler(catalog *Catalog, assets URLResolver) *Handler {
	return &Handler{Catalog: catalog, Assets: assets}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/templates", h.list)
	rg.GET("/templates/:templateId", h.get)
}

type templateResponse struct {
	Template
	ImageURL string `json:"imageUrl,omitempty"`
}

func (h *Handler) list(c *gin.Context) {
	items := h.Catalog.List()
	out := make([]templateResponse, 0, len(items))
	for _, t := range items {
		out = append(out, h.withPreview(c.Request.Context(), t))
	}
	respond.OK(c, gin.H{"templates": out})
}

func (h *Handler) get(c *gin.Context) {
	t, err := h.Catalog.Get(c.Param("templateId"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "template not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load template", nil)
		return
	}
	respond.OK(c, h.withPreview(c.Request.Context(), t))
}

// withPreview leaves imageUrl empty when the preview cannot be resolved.
func (h *Handler) withPreview(ctx context.Context, t Template) templateResponse {
	resp := templateResponse{Template: t}
	if h.Assets == nil {
		return resp
	}
	url, err := h.Assets.URL(ctx, t.PreviewKey())
	if err != nil {
		telemetry.Warn("templates.preview_url_failed", map[string]any{"template_id": t.ID, "error": err})
		return resp
	}
	resp.ImageURL = url
	return resp
}

var _ URLResolver = object.ObjectStore(nil)
