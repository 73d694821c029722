package builder

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-builder/internal/resumes"
	sharedauth "resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/events"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/storage/docstore"
	"resume-builder/internal/templates"
	"resume-builder/resume/model"
)

type apiHarness struct {
	router *gin.Engine
	svc    *resumes.Service
	store  *docstore.MemoryStore
	signer *sharedauth.Signer
	events *events.Recorder
}

func newAPIHarness(t *testing.T) *apiHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	catalog, err := templates.LoadCatalog()
	require.NoError(t, err)
	store := docstore.NewMemoryStore()
	rec := &events.Recorder{}
	svc := resumes.NewService(store, catalog, nil, rec)
	signer := sharedauth.NewSigner("test-secret", time.Hour)

	router := gin.New()
	api := router.Group("/api/v1")
	api.Use(middleware.Auth(middleware.AuthConfig{Signer: signer, LoginPath: "/login"}))
	NewHandler(svc, NewRegistry(time.Hour), Options{RefreshAfterSave: true}, rec, "/dashboard").RegisterRoutes(api)
	return &apiHarness{router: router, svc: svc, store: store, signer: signer, events: rec}
}

func (h *apiHarness) call(t *testing.T, method, path string, owner resumes.Owner, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	token, err := h.signer.Sign(owner.UserID, owner.Email, "", "")
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	h.router.ServeHTTP(resp, req)
	return resp
}

func decodeSession(t *testing.T, resp *httptest.ResponseRecorder) sessionResponse {
	t.Helper()
	var out sessionResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out), resp.Body.String())
	return out
}

var owner = resumes.Owner{UserID: "user-1", Email: "ada@example.com"}

func TestBuilderSaveSummaryFlow(t *testing.T) {
	h := newAPIHarness(t)
	r, err := h.svc.Create(context.Background(), owner, "classic")
	require.NoError(t, err)

	resp := h.call(t, http.MethodPost, "/api/v1/resumes/"+r.ID+"/sessions", owner, nil)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	opened := decodeSession(t, resp)
	require.NotEmpty(t, opened.SessionID)
	assert.Equal(t, 0, opened.State.Step)
	base := "/api/v1/sessions/" + opened.SessionID

	resp = h.call(t, http.MethodPost, base+"/step", owner, map[string]any{"action": "jump", "step": 2})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, model.SectionSummary, decodeSession(t, resp).State.Section)

	resp = h.call(t, http.MethodPost, base+"/mutations", owner, map[string]any{"section": "summary", "value": "Too early"})
	require.Equal(t, http.StatusConflict, resp.Code)

	require.Equal(t, http.StatusOK, h.call(t, http.MethodPost, base+"/edit", owner, nil).Code)
	resp = h.call(t, http.MethodPost, base+"/mutations", owner, map[string]any{"section": "summary", "value": "Platform engineer"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = h.call(t, http.MethodPost, base+"/save", owner, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var saved saveResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &saved))
	assert.Equal(t, model.SectionSummary, saved.Section)
	assert.Equal(t, "Platform engineer", saved.State.Canonical.Summary)
	assert.False(t, saved.State.IsEditing)
	assert.True(t, saved.Refreshed)

	stored, err := h.svc.Get(context.Background(), owner, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Platform engineer", stored.Summary)

	var sectionSaved []events.Event
	for _, evt := range h.events.Events() {
		if evt.Type == events.ResumeSectionSaved {
			sectionSaved = append(sectionSaved, evt)
		}
	}
	require.Len(t, sectionSaved, 1)
	assert.Equal(t, "summary", sectionSaved[0].Section)
	assert.Equal(t, r.ID, sectionSaved[0].ResumeID)

	resp = h.call(t, http.MethodDelete, base, owner, nil)
	require.Equal(t, http.StatusNoContent, resp.Code)
	resp = h.call(t, http.MethodGet, base, owner, nil)
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestBuilderEntries(t *testing.T) {
	h := newAPIHarness(t)
	r, err := h.svc.Create(context.Background(), owner, "modern")
	require.NoError(t, err)
	opened := decodeSession(t, h.call(t, http.MethodPost, "/api/v1/resumes/"+r.ID+"/sessions", owner, nil))
	base := "/api/v1/sessions/" + opened.SessionID
	require.Equal(t, http.StatusOK, h.call(t, http.MethodPost, base+"/edit", owner, nil).Code)

	resp := h.call(t, http.MethodPost, base+"/entries/experience", owner, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, decodeSession(t, resp).State.Editable.Experience, 1)

	resp = h.call(t, http.MethodPost, base+"/mutations", owner, map[string]any{"section": "experience", "index": 0, "field": "company", "value": "Acme"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Acme", decodeSession(t, resp).State.Editable.Experience[0].Company)

	resp = h.call(t, http.MethodPost, base+"/mutations", owner, map[string]any{"section": "skills", "index": 2000000000, "value": "x"})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "invalid_input")

	resp = h.call(t, http.MethodDelete, base+"/entries/experience/0", owner, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, decodeSession(t, resp).State.Editable.Experience)

	assert.Equal(t, http.StatusBadRequest, h.call(t, http.MethodDelete, base+"/entries/experience/3", owner, nil).Code)
	assert.Equal(t, http.StatusBadRequest, h.call(t, http.MethodPost, base+"/entries/hobbies", owner, nil).Code)

	resp = h.call(t, http.MethodPost, base+"/cancel", owner, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.False(t, decodeSession(t, resp).State.IsEditing)
}

func TestBuilderSessionsAreOwnerScoped(t *testing.T) {
	h := newAPIHarness(t)
	r, err := h.svc.Create(context.Background(), owner, "classic")
	require.NoError(t, err)
	intruder := resumes.Owner{UserID: "user-2", Email: "eve@example.com"}

	resp := h.call(t, http.MethodPost, "/api/v1/resumes/"+r.ID+"/sessions", intruder, nil)
	require.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), `"redirect":"/dashboard"`)

	opened := decodeSession(t, h.call(t, http.MethodPost, "/api/v1/resumes/"+r.ID+"/sessions", owner, nil))
	resp = h.call(t, http.MethodGet, "/api/v1/sessions/"+opened.SessionID, intruder, nil)
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestBuilderLegacySession(t *testing.T) {
	h := newAPIHarness(t)

	resp := h.call(t, http.MethodPost, "/api/v1/legacy/templates/compact/sessions", owner, nil)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	opened := decodeSession(t, resp)
	assert.True(t, opened.Legacy)
	assert.Equal(t, "resumes/compact/userEmail/ada@example.com", opened.State.Path)

	base := "/api/v1/sessions/" + opened.SessionID
	require.Equal(t, http.StatusOK, h.call(t, http.MethodPost, base+"/step", owner, map[string]any{"action": "jump", "step": 5}).Code)
	require.Equal(t, http.StatusOK, h.call(t, http.MethodPost, base+"/edit", owner, nil).Code)
	resp = h.call(t, http.MethodPost, base+"/mutations", owner, map[string]any{"kind": "replaceList", "section": "skills", "value": "JavaScript\nPython, SQL"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	require.Equal(t, http.StatusOK, h.call(t, http.MethodPost, base+"/save", owner, nil).Code)

	got, err := h.svc.GetLegacy(context.Background(), owner, "compact")
	require.NoError(t, err)
	assert.Equal(t, []string{"JavaScript", "Python", "SQL"}, got.Skills)
}
