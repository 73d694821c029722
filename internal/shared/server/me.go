package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
)

// registerMeRoutes attaches the /me endpoint.
func registerMeRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", meHandler)
}

// meHandler exposes the session as uid, email, displayName and photoURL.
func meHandler(c *gin.Context) {
	ident := middleware.IdentityFromContext(c)
	if ident.UID == "" {
		respond.Error(c, http.StatusUnauthorized, "auth_required", "login required", nil)
		return
	}
	respond.JSON(c, http.StatusOK, ident)
}
