package resumes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	sharedauth "resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/events"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/resume/export"
	"resume-builder/resume/model"
)

type fakeExporter struct {
	result export.Result
	target export.Target
}

func (f *fakeExporter) Export(_ context.Context, r *model.Resume, target export.Target) export.Result {
	f.target = target
	if r == nil {
		return export.Result{Error: export.MsgNoData}
	}
	return f.result
}

type harness struct {
	router   *gin.Engine
	svc      *Service
	signer   *sharedauth.Signer
	exporter *fakeExporter
	events   *events.Recorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc, _, rec := newTestService(t)
	signer := sharedauth.NewSigner("test-secret", time.Hour)
	exp := &fakeExporter{}

	router := gin.New()
	api := router.Group("/api/v1")
	api.Use(middleware.Auth(middleware.AuthConfig{Signer: signer, LoginPath: "/login"}))
	NewHandler(svc, exp, "/dashboard").RegisterRoutes(api)
	return &harness{router: router, svc: svc, signer: signer, exporter: exp, events: rec}
}

func (h *harness) do(t *testing.T, method, path string, owner Owner, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if owner.UserID != "" {
		token, err := h.signer.Sign(owner.UserID, owner.Email, "", "")
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	h.router.ServeHTTP(resp, req)
	return resp
}

func TestHandlerCreateGetList(t *testing.T) {
	h := newHarness(t)

	resp := h.do(t, http.MethodPost, "/api/v1/templates/classic/resumes", ada, nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created model.Resume
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == "" || created.TemplateID != "classic" {
		t.Fatalf("unexpected resume %+v", created)
	}

	resp = h.do(t, http.MethodGet, "/api/v1/resumes/"+created.ID, ada, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", resp.Code)
	}

	resp = h.do(t, http.MethodGet, "/api/v1/resumes", ada, nil)
	var listed struct {
		Resumes []model.Resume `json:"resumes"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed.Resumes) != 1 || listed.Resumes[0].ID != created.ID {
		t.Fatalf("unexpected list %+v", listed.Resumes)
	}

	resp = h.do(t, http.MethodPatch, "/api/v1/resumes/"+created.ID, ada, map[string]string{"editName": "Platform CV"})
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "Platform CV") {
		t.Fatalf("rename: got %d %s", resp.Code, resp.Body.String())
	}
}

func TestHandlerForeignResumeRedirectsToDashboard(t *testing.T) {
	h := newHarness(t)
	r, err := h.svc.Create(context.Background(), ada, "classic")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	resp := h.do(t, http.MethodGet, "/api/v1/resumes/"+r.ID, Owner{UserID: "user-2", Email: "eve@example.com"}, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	var body struct {
		Error struct {
			Code    string            `json:"code"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "not_found" || body.Error.Details["redirect"] != "/dashboard" {
		t.Fatalf("unexpected error body %+v", body)
	}
}

func TestHandlerRequiresSession(t *testing.T) {
	h := newHarness(t)
	resp := h.do(t, http.MethodGet, "/api/v1/resumes", Owner{}, nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
	if strings.Contains(resp.Body.String(), "resumes\"") {
		t.Fatalf("unexpected resume data in body: %s", resp.Body.String())
	}
}

func TestHandlerPreviewRendersEmptySections(t *testing.T) {
	h := newHarness(t)
	r, _ := h.svc.Create(context.Background(), ada, "modern")

	for _, tmpl := range []string{"", "classic", "modern", "compact"} {
		path := "/api/v1/resumes/" + r.ID + "/preview"
		if tmpl != "" {
			path += "?template=" + tmpl
		}
		resp := h.do(t, http.MethodGet, path, ada, nil)
		if resp.Code != http.StatusOK {
			t.Fatalf("%q: expected 200, got %d", tmpl, resp.Code)
		}
		if !strings.Contains(resp.Body.String(), `id="resume-preview"`) {
			t.Fatalf("%q: preview root missing", tmpl)
		}
		if strings.Contains(resp.Body.String(), "Experience</h2>") {
			t.Fatalf("%q: empty experience should render nothing", tmpl)
		}
	}

	resp := h.do(t, http.MethodGet, "/api/v1/resumes/"+r.ID+"/preview?template=gothic", ada, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("unknown template: expected 400, got %d", resp.Code)
	}
}

func TestHandlerExport(t *testing.T) {
	h := newHarness(t)
	r, _ := h.svc.Create(context.Background(), ada, "classic")

	h.exporter.result = export.Result{Success: true, FileName: "Ada_2026-10-17.pdf", Pages: 1, PDF: []byte("%PDF-1.3")}
	resp := h.do(t, http.MethodGet, "/api/v1/resumes/"+r.ID+"/export", ada, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := resp.Header().Get("Content-Disposition"); cd != `attachment; filename="Ada_2026-10-17.pdf"` {
		t.Fatalf("unexpected disposition %q", cd)
	}
	if h.exporter.target.Selector != "#resume-preview" || !strings.Contains(h.exporter.target.HTML, "resume-preview") {
		t.Fatalf("unexpected export target %+v", h.exporter.target.Selector)
	}
	var exported bool
	for _, evt := range h.events.Events() {
		if evt.Type == events.ResumeExported && evt.ResumeID == r.ID {
			exported = true
		}
	}
	if !exported {
		t.Fatalf("expected resume.exported event")
	}

	h.exporter.result = export.Result{Error: export.MsgCaptureFailed}
	resp = h.do(t, http.MethodGet, "/api/v1/resumes/"+r.ID+"/export", ada, nil)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.Code)
	}
	var result export.Result
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Success || result.Error != "Unable to capture resume preview" {
		t.Fatalf("unexpected result %+v", result)
	}
}
