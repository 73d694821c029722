package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	sharedauth "resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/users"
)

// Sessions issues and clears the session cookie.
type Sessions struct {
	Signer *sharedauth.Signer
	Secure bool
}

// Issue signs a token for user and sets it as the session cookie.
func (s *Sessions) Issue(c *gin.Context, user users.User) (string, error) {
	token, err := s.Signer.Sign(user.ID, user.Email, user.DisplayName, user.PhotoURL)
	if err != nil {
		return "", err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, int(s.Signer.TTL().Seconds()), "/", "", s.Secure, true)
	return token, nil
}

// Clear expires the session cookie.
func (s *Sessions) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", s.Secure, true)
}
