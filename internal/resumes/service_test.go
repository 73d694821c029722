package resumes

import (
	"context"
	"errors"
	"sync"
	"testing"

	"resume-builder/internal/shared/events"
	"resume-builder/internal/shared/storage/docstore"
	"resume-builder/internal/templates"
	"resume-builder/resume/model"
)

type updateCall struct {
	path   string
	fields map[string]any
}

// spyStore records partial updates on top of a MemoryStore.
type spyStore struct {
	*docstore.MemoryStore
	mu      sync.Mutex
	updates []updateCall
	failing error
}

func (s *spyStore) Update(ctx context.Context, p docstore.Path, fields map[string]any) error {
	s.mu.Lock()
	s.updates = append(s.updates, updateCall{path: p.String(), fields: fields})
	failing := s.failing
	s.mu.Unlock()
	if failing != nil {
		return failing
	}
	return s.MemoryStore.Update(ctx, p, fields)
}

type fakeResolver struct {
	err error
}

func (f fakeResolver) URL(_ context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://cdn.example.com/" + key, nil
}

func newTestService(t *testing.T) (*Service, *spyStore, *events.Recorder) {
	t.Helper()
	catalog, err := templates.LoadCatalog()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	store := &spyStore{MemoryStore: docstore.NewMemoryStore()}
	rec := &events.Recorder{}
	return NewService(store, catalog, fakeResolver{}, rec), store, rec
}

var ada = Owner{UserID: "user-1", Email: "ada@example.com"}

func TestCreateStampsOwnerAndTemplate(t *testing.T) {
	svc, _, rec := newTestService(t)
	ctx := context.Background()

	r, err := svc.Create(ctx, ada, "modern")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if r.ID == "" || r.UserID != "user-1" || r.UserEmail != "ada@example.com" {
		t.Fatalf("unexpected identity fields: %+v", r)
	}
	if r.TemplateID != "modern" || r.TemplateName != "Modern" || r.EditName != "Modern" {
		t.Fatalf("unexpected template fields: %+v", r)
	}
	if r.Experience == nil || r.EducationDetail == nil || r.Skills == nil {
		t.Fatalf("expected defaulted lists, got %+v", r)
	}
	if r.CreatedAt.IsZero() {
		t.Fatalf("expected createdAt from document metadata")
	}

	got, err := svc.Get(ctx, ada, r.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != r.ID || got.TemplateID != "modern" {
		t.Fatalf("unexpected reload: %+v", got)
	}

	evts := rec.Events()
	if len(evts) != 1 || evts[0].Type != events.ResumeCreated || evts[0].ResumeID != r.ID {
		t.Fatalf("unexpected events: %+v", evts)
	}
}

func TestCreateRejectsUnknownTemplate(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, err := svc.Create(context.Background(), ada, "gothic"); !errors.Is(err, ErrUnknownTemplate) {
		t.Fatalf("expected ErrUnknownTemplate, got %v", err)
	}
	if _, err := svc.Create(context.Background(), Owner{}, "classic"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestForeignResumeIsNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	r, err := svc.Create(ctx, ada, "classic")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	mallory := Owner{UserID: "user-2", Email: "mallory@example.com"}
	if _, err := svc.Get(ctx, mallory, r.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign owner, got %v", err)
	}
	if _, err := svc.Rename(ctx, mallory, r.ID, "Stolen"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on rename, got %v", err)
	}
	if _, err := svc.Get(ctx, ada, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing id, got %v", err)
	}
}

func TestListReturnsOnlyOwnedResumes(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	for _, tmpl := range []string{"classic", "compact"} {
		if _, err := svc.Create(ctx, ada, tmpl); err != nil {
			t.Fatalf("create %s: %v", tmpl, err)
		}
	}
	if _, err := svc.Create(ctx, Owner{UserID: "user-2"}, "modern"); err != nil {
		t.Fatalf("create other: %v", err)
	}

	items, err := svc.List(ctx, ada)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 resumes, got %d", len(items))
	}
	for _, r := range items {
		if r.UserID != "user-1" {
			t.Fatalf("listed foreign resume %+v", r)
		}
	}
}

func TestLegacyDocumentsNormalizeOnRead(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	p, _ := docstore.LegacyResumePath("classic", "ada@example.com")
	if _, err := store.Create(ctx, p, map[string]any{
		"summary": "Backend engineer",
		"skills":  "JavaScript\nPython, SQL",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	r, err := svc.GetLegacy(ctx, ada, "classic")
	if err != nil {
		t.Fatalf("get legacy: %v", err)
	}
	want := []string{"JavaScript", "Python", "SQL"}
	if len(r.Skills) != len(want) {
		t.Fatalf("expected skills %v, got %v", want, r.Skills)
	}
	for i := range want {
		if r.Skills[i] != want[i] {
			t.Fatalf("expected skills %v, got %v", want, r.Skills)
		}
	}
	if r.Experience == nil || r.EducationDetail == nil {
		t.Fatalf("expected defaulted lists, got %+v", r)
	}

	other := Owner{UserID: "user-2", Email: "bob@example.com"}
	if _, err := svc.GetLegacy(ctx, other, "classic"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another email, got %v", err)
	}
	if _, err := svc.GetLegacy(ctx, Owner{UserID: "user-3"}, "classic"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput without email, got %v", err)
	}
}

func TestOpenLegacyCreatesOnce(t *testing.T) {
	svc, _, rec := newTestService(t)
	ctx := context.Background()

	first, err := svc.OpenLegacy(ctx, ada, "compact")
	if err != nil {
		t.Fatalf("open legacy: %v", err)
	}
	if !first.Legacy || first.Path.String() != "resumes/compact/userEmail/ada@example.com" {
		t.Fatalf("unexpected entry: %+v", first)
	}
	if first.Resume.TemplateName != "Compact" || first.Resume.UserID != "user-1" {
		t.Fatalf("unexpected resume: %+v", first.Resume)
	}

	second, err := svc.OpenLegacy(ctx, ada, "compact")
	if err != nil {
		t.Fatalf("reopen legacy: %v", err)
	}
	if second.Path.String() != first.Path.String() {
		t.Fatalf("expected same path, got %s", second.Path)
	}
	if n := len(rec.Events()); n != 1 {
		t.Fatalf("expected one created event, got %d", n)
	}
}

func TestUpdateSectionWritesOneKey(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	r, err := svc.Create(ctx, ada, "classic")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	p, _ := docstore.FlatResumePath(r.ID)

	if err := svc.UpdateSection(ctx, p, model.SectionSummary, "Builds things"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(store.updates) != 1 {
		t.Fatalf("expected one update, got %d", len(store.updates))
	}
	fields := store.updates[0].fields
	if len(fields) != 1 || fields["summary"] != "Builds things" {
		t.Fatalf("unexpected payload %v", fields)
	}

	got, err := svc.Reload(ctx, p)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Summary != "Builds things" || got.TemplateID != "classic" {
		t.Fatalf("unexpected document after update: %+v", got)
	}

	if err := svc.UpdateSection(ctx, p, model.Section("hobbies"), "x"); !errors.Is(err, model.ErrUnknownSection) {
		t.Fatalf("expected ErrUnknownSection, got %v", err)
	}
	missing, _ := docstore.FlatResumePath("nope")
	if err := svc.UpdateSection(ctx, missing, model.SectionSummary, "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRename(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	r, _ := svc.Create(ctx, ada, "classic")

	if _, err := svc.Rename(ctx, ada, r.ID, "   "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	renamed, err := svc.Rename(ctx, ada, r.ID, " Backend CV ")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if renamed.EditName != "Backend CV" {
		t.Fatalf("unexpected edit name %q", renamed.EditName)
	}
}

func TestResolveAssets(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	r := model.Default()
	r.ProfilePhoto = "profilePhotos/1700000000_me.png"
	got := svc.ResolveAssets(ctx, r)
	if got.ProfilePhoto != "https://cdn.example.com/profilePhotos/1700000000_me.png" {
		t.Fatalf("unexpected photo url %q", got.ProfilePhoto)
	}
	if r.ProfilePhoto != "profilePhotos/1700000000_me.png" {
		t.Fatalf("input was mutated")
	}

	r.ProfilePhoto = "https://lh3.googleusercontent.com/a/photo"
	if got := svc.ResolveAssets(ctx, r); got.ProfilePhoto != r.ProfilePhoto {
		t.Fatalf("remote url should pass through, got %q", got.ProfilePhoto)
	}

	svc.Assets = fakeResolver{err: errors.New("boom")}
	r.ProfilePhoto = "profilePhotos/x.png"
	if got := svc.ResolveAssets(ctx, r); got.ProfilePhoto != "" {
		t.Fatalf("expected unresolved photo to be dropped, got %q", got.ProfilePhoto)
	}
}
