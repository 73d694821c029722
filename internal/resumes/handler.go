package resumes

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/events"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/export"
	"resume-builder/resume/model"
	"resume-builder/resume/render"
)

// DefaultTemplate renders resumes whose template id is not a known variant.
const DefaultTemplate = "classic"

// Exporter produces a PDF from a rendered preview.
type Exporter interface {
	Export(ctx context.Context, r *model.Resume, target export.Target) export.Result
}

type Handler struct {
	Svc           *Service
	Exporter      Exporter
	DashboardPath string
}

func NewHandler(svc *Service, exporter Exporter, dashboardPath string) *Handler {
	return &Handler{Svc: svc, Exporter: exporter, DashboardPath: dashboardPath}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/resumes", h.list)
	rg.POST("/templates/:templateId/resumes", h.create)
	rg.GET("/resumes/:resumeId", h.get)
	rg.PATCH("/resumes/:resumeId", h.rename)
	rg.GET("/resumes/:resumeId/preview", h.preview)
	rg.GET("/resumes/:resumeId/export", h.export)
	rg.GET("/legacy/templates/:templateId/resume", h.getLegacy)
}

// OwnerFromContext builds the resume owner from the session identity.
func OwnerFromContext(c *gin.Context) Owner {
	id := middleware.IdentityFromContext(c)
	return Owner{UserID: id.UID, Email: id.Email}
}

// RespondError maps resume errors onto the API error envelope. Missing and
// foreign resumes both answer 404 with a redirect to the dashboard.
func RespondError(c *gin.Context, err error, dashboardPath string) {
	switch {
	case errors.Is(err, ErrNotFound):
		if dashboardPath == "" {
			dashboardPath = "/dashboard"
		}
		respond.Error(c, http.StatusNotFound, "not_found", "resume not found", gin.H{"redirect": dashboardPath})
	case errors.Is(err, ErrUnknownTemplate):
		respond.Error(c, http.StatusNotFound, "template_not_found", "template not found", nil)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, model.ErrUnknownSection):
		respond.Error(c, http.StatusBadRequest, "invalid_input", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "resume operation failed", nil)
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	RespondError(c, err, h.DashboardPath)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Svc.List(c.Request.Context(), OwnerFromContext(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, gin.H{"resumes": items})
}

func (h *Handler) create(c *gin.Context) {
	r, err := h.Svc.Create(c.Request.Context(), OwnerFromContext(c), c.Param("templateId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Set(middleware.ResumeIDKey, r.ID)
	respond.JSON(c, http.StatusCreated, r)
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("resumeId")
	c.Set(middleware.ResumeIDKey, id)
	r, err := h.Svc.Get(c.Request.Context(), OwnerFromContext(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, r)
}

func (h *Handler) getLegacy(c *gin.Context) {
	r, err := h.Svc.GetLegacy(c.Request.Context(), OwnerFromContext(c), c.Param("templateId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, r)
}

type renameRequest struct {
	EditName string `json:"editName"`
}

func (h *Handler) rename(c *gin.Context) {
	id := c.Param("resumeId")
	c.Set(middleware.ResumeIDKey, id)
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_json", "invalid request body", nil)
		return
	}
	r, err := h.Svc.Rename(c.Request.Context(), OwnerFromContext(c), id, req.EditName)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, r)
}

func (h *Handler) preview(c *gin.Context) {
	id := c.Param("resumeId")
	c.Set(middleware.ResumeIDKey, id)
	r, err := h.Svc.Get(c.Request.Context(), OwnerFromContext(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	page, err := h.render(c, r)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "template_not_found", "template not found", nil)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

func (h *Handler) export(c *gin.Context) {
	id := c.Param("resumeId")
	c.Set(middleware.ResumeIDKey, id)
	owner := OwnerFromContext(c)
	r, err := h.Svc.Get(c.Request.Context(), owner, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	page, err := h.render(c, r)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "template_not_found", "template not found", nil)
		return
	}
	if h.Exporter == nil {
		respond.Error(c, http.StatusServiceUnavailable, "export_unavailable", "pdf export is not configured", nil)
		return
	}

	result := h.Exporter.Export(c.Request.Context(), &r, export.Target{HTML: page, Selector: render.PreviewSelector})
	if !result.Success {
		telemetry.Warn("resumes.export_failed", map[string]any{"resume_id": id, "error": result.Error})
		c.JSON(http.StatusUnprocessableEntity, result)
		return
	}

	evt := events.New(events.ResumeExported, id, owner.UserID)
	evt.Attributes = map[string]string{"fileName": result.FileName, "pages": fmt.Sprint(result.Pages)}
	events.Emit(c.Request.Context(), h.Svc.Events, evt)

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Data(http.StatusOK, "application/pdf", result.PDF)
}

// render uses ?template= when given, else the resume's own template.
func (h *Handler) render(c *gin.Context, r model.Resume) (string, error) {
	templateID := c.Query("template")
	if templateID == "" {
		templateID = r.TemplateID
		if !render.Has(templateID) {
			templateID = DefaultTemplate
		}
	}
	return render.HTML(templateID, h.Svc.ResolveAssets(c.Request.Context(), r))
}
