package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	sharedauth "resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/users"
)

func newSessions() *Sessions {
	return &Sessions{Signer: sharedauth.NewSigner("test-secret", time.Hour)}
}

func sessionCookie(resp *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range resp.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	return nil
}

func postJSON(router http.Handler, path string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestSignupLoginLogout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sessions := newSessions()
	svc := users.NewService(users.NewMemoryRepo())
	router := gin.New()
	NewPasswordHandler(svc, sessions).RegisterRoutes(router.Group("/api/v1"))

	resp := postJSON(router, "/api/v1/auth/signup", map[string]string{
		"email": "ada@example.com", "password": "secret123", "displayName": "Ada",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	cookie := sessionCookie(resp)
	if cookie == nil || cookie.Value == "" || !cookie.HttpOnly {
		t.Fatalf("expected http-only session cookie, got %+v", cookie)
	}
	claims, err := sessions.Signer.Verify(cookie.Value)
	if err != nil || claims.Email != "ada@example.com" || claims.Name != "Ada" {
		t.Fatalf("unexpected claims %+v, %v", claims, err)
	}

	resp = postJSON(router, "/api/v1/auth/signup", map[string]string{"email": "ada@example.com", "password": "secret123"})
	if resp.Code != http.StatusConflict {
		t.Fatalf("duplicate signup: expected 409, got %d", resp.Code)
	}

	resp = postJSON(router, "/api/v1/auth/login", map[string]string{"email": "ada@example.com", "password": "nope-nope"})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d", resp.Code)
	}

	resp = postJSON(router, "/api/v1/auth/login", map[string]string{"email": "ada@example.com", "password": "secret123"})
	if resp.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", resp.Code)
	}
	var body struct {
		Token string `json:"token"`
		User  struct {
			UID string `json:"uid"`
		} `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Token == "" || !strings.HasPrefix(body.User.UID, "password:") {
		t.Fatalf("unexpected login body %+v, %v", body, err)
	}
	if strings.Contains(resp.Body.String(), "passwordHash") {
		t.Fatalf("password hash leaked")
	}

	resp = postJSON(router, "/api/v1/auth/logout", nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("logout: expected 204, got %d", resp.Code)
	}
	if c := sessionCookie(resp); c == nil || c.MaxAge >= 0 {
		t.Fatalf("expected expired cookie, got %+v", c)
	}
}

func TestGoogleCallbackCreatesUserAndSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/token":
			_, _ = w.Write([]byte(`{"access_token":"at","token_type":"Bearer","expires_in":3600}`))
		case "/userinfo":
			_, _ = w.Write([]byte(`{"id":"123","email":"grace@example.com","name":"Grace","picture":"https://img/g.png"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer provider.Close()

	repo := users.NewMemoryRepo()
	svc := NewGoogleService("cid", "secret", "http://api/callback", "http://ui/auth/done", users.NewService(repo), newSessions())
	svc.oauthConfig.Endpoint = oauth2.Endpoint{AuthURL: provider.URL + "/auth", TokenURL: provider.URL + "/token"}
	svc.userInfoURL = provider.URL + "/userinfo"

	router := gin.New()
	svc.RegisterRoutes(router.Group("/api/v1"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/start?next=/dashboard", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusFound {
		t.Fatalf("start: expected 302, got %d", resp.Code)
	}
	loc, _ := url.Parse(resp.Header().Get("Location"))
	state := loc.Query().Get("state")
	if state == "" {
		t.Fatalf("missing state in %s", loc)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/callback?code=abc&state="+state, nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusFound {
		t.Fatalf("callback: expected 302, got %d: %s", resp.Code, resp.Body.String())
	}
	back, _ := url.Parse(resp.Header().Get("Location"))
	if back.Host != "ui" || back.Query().Get("token") == "" || back.Query().Get("next") != "/dashboard" {
		t.Fatalf("unexpected redirect %s", back)
	}
	if sessionCookie(resp) == nil {
		t.Fatalf("expected session cookie")
	}

	user, err := repo.GetByID(req.Context(), "google:123")
	if err != nil || user.DisplayName != "Grace" || user.PhotoURL != "https://img/g.png" {
		t.Fatalf("user not upserted: %+v, %v", user, err)
	}

	// State is single-use.
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/callback?code=abc&state="+state, nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("replayed state: expected 400, got %d", resp.Code)
	}
}

func TestAppendTokenRejectsOffsiteNext(t *testing.T) {
	got, err := appendToken("http://ui/done", "tok", "//evil.example.com")
	if err != nil {
		t.Fatalf("appendToken: %v", err)
	}
	if strings.Contains(got, "evil") {
		t.Fatalf("offsite next leaked into %s", got)
	}
	if _, err := appendToken("", "tok", ""); err == nil {
		t.Fatalf("expected error for empty redirect")
	}
}
