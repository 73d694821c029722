package builder

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/resumes"
	"resume-builder/internal/shared/events"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/resume/model"
)

type Handler struct {
	Resumes       *resumes.Service
	Sessions      *Registry
	Options       Options
	Events        events.Publisher
	DashboardPath string
}

func NewHandler(svc *resumes.Service, sessions *Registry, opts Options, pub events.Publisher, dashboardPath string) *Handler {
	return &Handler{Resumes: svc, Sessions: sessions, Options: opts, Events: pub, DashboardPath: dashboardPath}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes/:resumeId/sessions", h.openFlat)
	rg.POST("/legacy/templates/:templateId/sessions", h.openLegacy)

	s := rg.Group("/sessions/:sessionId")
	s.GET("", h.state)
	s.POST("/step", h.step)
	s.POST("/edit", h.beginEdit)
	s.POST("/mutations", h.mutate)
	s.POST("/entries/:section", h.addEntry)
	s.DELETE("/entries/:section/:index", h.removeEntry)
	s.POST("/save", h.save)
	s.POST("/cancel", h.cancel)
	s.DELETE("", h.close)
}

type sessionResponse struct {
	SessionID string `json:"sessionId"`
	ResumeID  string `json:"resumeId,omitempty"`
	Legacy    bool   `json:"legacy"`
	State     State  `json:"state"`
}

func respondSession(c *gin.Context, status int, s *Session) {
	respond.JSON(c, status, sessionResponse{
		SessionID: s.ID,
		ResumeID:  s.ResumeID,
		Legacy:    s.Legacy,
		State:     s.Controller.State(),
	})
}

func (h *Handler) openFlat(c *gin.Context) {
	id := c.Param("resumeId")
	c.Set(middleware.ResumeIDKey, id)
	owner := resumes.OwnerFromContext(c)
	entry, err := h.Resumes.Load(c.Request.Context(), resumes.FlatLocator{}, owner, id)
	if err != nil {
		resumes.RespondError(c, err, h.DashboardPath)
		return
	}
	h.open(c, owner, entry)
}

func (h *Handler) openLegacy(c *gin.Context) {
	owner := resumes.OwnerFromContext(c)
	entry, err := h.Resumes.OpenLegacy(c.Request.Context(), owner, c.Param("templateId"))
	if err != nil {
		resumes.RespondError(c, err, h.DashboardPath)
		return
	}
	h.open(c, owner, entry)
}

func (h *Handler) open(c *gin.Context, owner resumes.Owner, entry resumes.Entry) {
	ctrl := NewController(h.Resumes, entry.Path, entry.Resume, h.Options)
	resumeID := entry.Resume.ID
	if entry.Legacy {
		resumeID = entry.Path.String()
	}
	s := h.Sessions.Open(owner.UserID, resumeID, entry.Legacy, ctrl)
	c.Set(middleware.SessionIDKey, s.ID)
	respondSession(c, http.StatusCreated, s)
}

// session loads the caller's session or writes the error response.
func (h *Handler) session(c *gin.Context) (*Session, bool) {
	id := c.Param("sessionId")
	c.Set(middleware.SessionIDKey, id)
	s, err := h.Sessions.Get(id, middleware.UserIDFromContext(c))
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	c.Set(middleware.ResumeIDKey, s.ResumeID)
	return s, true
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		respond.Error(c, http.StatusNotFound, "session_not_found", "builder session not found", gin.H{"redirect": h.dashboardPath()})
	case errors.Is(err, ErrClosed):
		respond.Error(c, http.StatusGone, "session_closed", err.Error(), nil)
	case errors.Is(err, ErrNotEditing):
		respond.Error(c, http.StatusConflict, "not_editing", "begin editing before changing fields", nil)
	case errors.Is(err, ErrSaveInProgress):
		respond.Error(c, http.StatusConflict, "save_in_progress", err.Error(), nil)
	case errors.Is(err, ErrInvalidStep), errors.Is(err, ErrInvalidIndex),
		errors.Is(err, ErrInvalidMutation), errors.Is(err, ErrUnknownField),
		errors.Is(err, model.ErrUnknownSection):
		respond.Error(c, http.StatusBadRequest, "invalid_input", err.Error(), nil)
	default:
		resumes.RespondError(c, err, h.DashboardPath)
	}
}

func (h *Handler) dashboardPath() string {
	if h.DashboardPath == "" {
		return "/dashboard"
	}
	return h.DashboardPath
}

func (h *Handler) state(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	respondSession(c, http.StatusOK, s)
}

type stepRequest struct {
	Action string `json:"action"`
	Step   *int   `json:"step,omitempty"`
}

func (h *Handler) step(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req stepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_json", "invalid request body", nil)
		return
	}
	switch req.Action {
	case "next":
		s.Controller.Next()
	case "previous":
		s.Controller.Previous()
	case "jump":
		if req.Step == nil {
			respond.Error(c, http.StatusBadRequest, "invalid_input", "step is required", nil)
			return
		}
		if err := s.Controller.JumpTo(*req.Step); err != nil {
			h.fail(c, err)
			return
		}
	default:
		respond.Error(c, http.StatusBadRequest, "invalid_input", "action must be next, previous or jump", nil)
		return
	}
	respondSession(c, http.StatusOK, s)
}

func (h *Handler) beginEdit(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.Controller.BeginEdit(); err != nil {
		h.fail(c, err)
		return
	}
	respondSession(c, http.StatusOK, s)
}

func (h *Handler) mutate(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req MutationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_json", "invalid request body", nil)
		return
	}
	c.Set(middleware.SectionKey, req.Section)
	m, err := req.Mutation()
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := s.Controller.Apply(m); err != nil {
		h.fail(c, err)
		return
	}
	respondSession(c, http.StatusOK, s)
}

func (h *Handler) addEntry(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	section, err := model.ParseSection(c.Param("section"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Set(middleware.SectionKey, string(section))
	if err := s.Controller.AddEntry(section); err != nil {
		h.fail(c, err)
		return
	}
	respondSession(c, http.StatusOK, s)
}

func (h *Handler) removeEntry(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	section, err := model.ParseSection(c.Param("section"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Set(middleware.SectionKey, string(section))
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_input", "index must be an integer", nil)
		return
	}
	if err := s.Controller.RemoveEntry(section, index); err != nil {
		h.fail(c, err)
		return
	}
	respondSession(c, http.StatusOK, s)
}

type saveResponse struct {
	SaveResult
	State State `json:"state"`
}

func (h *Handler) save(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	result, err := s.Controller.SaveSection(c.Request.Context())
	c.Set(middleware.SectionKey, string(result.Section))
	if err != nil {
		switch {
		case errors.Is(err, ErrSaveInProgress), errors.Is(err, ErrClosed), errors.Is(err, resumes.ErrNotFound):
			h.fail(c, err)
		default:
			respond.Error(c, http.StatusInternalServerError, "save_failed", "failed to save section", gin.H{"section": result.Section})
		}
		return
	}

	evt := events.New(events.ResumeSectionSaved, s.ResumeID, s.UserID)
	evt.Section = string(result.Section)
	events.Emit(c.Request.Context(), h.Events, evt)

	respond.OK(c, saveResponse{SaveResult: result, State: s.Controller.State()})
}

func (h *Handler) cancel(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	s.Controller.Cancel()
	respondSession(c, http.StatusOK, s)
}

func (h *Handler) close(c *gin.Context) {
	id := c.Param("sessionId")
	c.Set(middleware.SessionIDKey, id)
	if err := h.Sessions.Close(id, middleware.UserIDFromContext(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
