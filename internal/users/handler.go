package users

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/profile", h.profile)
}

// profile returns the stored account, falling back to the session claims
// for identities that were never persisted.
func (h *Handler) profile(c *gin.Context) {
	ident := middleware.IdentityFromContext(c)
	user, err := h.Svc.GetByID(c.Request.Context(), ident.UID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.OK(c, User{ID: ident.UID, Email: ident.Email, DisplayName: ident.DisplayName, PhotoURL: ident.PhotoURL})
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load profile", nil)
		return
	}
	respond.OK(c, user)
}
