package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/auth"
)

func newAuthRouter(signer *auth.Signer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(AuthConfig{
		Signer:         signer,
		LoginPath:      "/login",
		PublicPrefixes: []string{"/api/v1/health"},
	}))
	router.GET("/api/v1/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/api/v1/resumes", func(c *gin.Context) {
		c.JSON(http.StatusOK, IdentityFromContext(c))
	})
	router.OPTIONS("/api/v1/resumes", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return router
}

func TestAuthAllowsOptionsWithoutIdentity(t *testing.T) {
	router := newAuthRouter(auth.NewSigner("secret", time.Hour))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/resumes", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
}

func TestAuthRejectsMissingSessionWithLoginRedirectHint(t *testing.T) {
	router := newAuthRouter(auth.NewSigner("secret", time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/resumes", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
	var body struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "auth_required" || body.Error.Details["redirect"] != "/login" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestAuthRedirectsBrowserNavigationToLogin(t *testing.T) {
	router := newAuthRouter(auth.NewSigner("secret", time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/resumes", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", resp.Code)
	}
	if loc := resp.Header().Get("Location"); !strings.HasPrefix(loc, "/login?next=") {
		t.Fatalf("unexpected Location %q", loc)
	}
	if strings.Contains(resp.Body.String(), "uid") {
		t.Fatalf("redirect leaked handler output: %s", resp.Body.String())
	}
}

func TestAuthAcceptsBearerAndCookie(t *testing.T) {
	signer := auth.NewSigner("secret", time.Hour)
	router := newAuthRouter(signer)
	token, err := signer.Sign("user-1", "ada@example.com", "Ada", "")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/resumes", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("bearer: expected 200, got %d", resp.Code)
	}
	var ident Identity
	if err := json.NewDecoder(resp.Body).Decode(&ident); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ident.UID != "user-1" || ident.Email != "ada@example.com" || ident.DisplayName != "Ada" {
		t.Fatalf("unexpected identity: %+v", ident)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/resumes", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("cookie: expected 200, got %d", resp.Code)
	}
}

func TestAuthSkipsPublicPrefixes(t *testing.T) {
	router := newAuthRouter(auth.NewSigner("secret", time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}
