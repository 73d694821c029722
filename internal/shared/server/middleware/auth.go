package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/server/respond"
)

const (
	userIDKey      = "userId"
	userEmailKey   = "userEmail"
	userNameKey    = "userName"
	userPictureKey = "userPicture"

	// SessionCookie carries the session JWT for browser navigation.
	SessionCookie = "session"
)

// AuthConfig controls the session gate.
type AuthConfig struct {
	Signer    *auth.Signer
	LoginPath string
	// PublicPrefixes bypass the gate entirely.
	PublicPrefixes []string
}

// Identity is the session view handed to handlers.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty"`
}

// Auth validates the session token (bearer header or cookie) and stores identity in context.
// Requests without a valid session are redirected to the login path when they come from a
// browser navigation, and rejected with 401 otherwise.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	loginPath := cfg.LoginPath
	if loginPath == "" {
		loginPath = "/login"
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		path := c.Request.URL.Path
		for _, prefix := range cfg.PublicPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		token, malformed := tokenFromRequest(c)
		if token == "" || malformed || cfg.Signer == nil {
			authRequired(c, loginPath)
			return
		}

		claims, err := cfg.Signer.Verify(token)
		if err != nil {
			authRequired(c, loginPath)
			return
		}

		c.Set(userIDKey, claims.Subject)
		if claims.Email != "" {
			c.Set(userEmailKey, claims.Email)
		}
		if claims.Name != "" {
			c.Set(userNameKey, claims.Name)
		}
		if claims.Picture != "" {
			c.Set(userPictureKey, claims.Picture)
		}
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) (string, bool) {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if authHeader != "" {
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return "", true
		}
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer")), false
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return strings.TrimSpace(cookie), false
	}
	return "", false
}

func authRequired(c *gin.Context, loginPath string) {
	if WantsHTML(c) {
		target := loginPath
		if next := c.Request.URL.RequestURI(); next != "" {
			target += "?next=" + url.QueryEscape(next)
		}
		c.Redirect(http.StatusFound, target)
		c.Abort()
		return
	}
	respond.Error(c, http.StatusUnauthorized, "auth_required", "login required", gin.H{"redirect": loginPath})
}

// WantsHTML reports whether the client is a browser navigation rather than an API call.
func WantsHTML(c *gin.Context) bool {
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, "text/html")
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	return stringFromContext(c, userIDKey)
}

// UserEmailFromContext fetches the user email set by the auth middleware.
func UserEmailFromContext(c *gin.Context) string {
	return stringFromContext(c, userEmailKey)
}

// UserNameFromContext fetches the user name set by the auth middleware.
func UserNameFromContext(c *gin.Context) string {
	return stringFromContext(c, userNameKey)
}

// UserPictureFromContext fetches the user picture set by the auth middleware.
func UserPictureFromContext(c *gin.Context) string {
	return stringFromContext(c, userPictureKey)
}

// IdentityFromContext assembles the session identity.
func IdentityFromContext(c *gin.Context) Identity {
	return Identity{
		UID:         UserIDFromContext(c),
		Email:       UserEmailFromContext(c),
		DisplayName: UserNameFromContext(c),
		PhotoURL:    UserPictureFromContext(c),
	}
}

func stringFromContext(c *gin.Context, key string) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(key)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}
