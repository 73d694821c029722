package resumes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"resume-builder/internal/shared/events"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/storage/docstore"
	"resume-builder/internal/shared/storage/object"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/templates"
	"resume-builder/resume/model"
)

// TemplateLookup resolves template ids to catalog entries.
type TemplateLookup interface {
	Get(id string) (templates.Template, error)
}

// URLResolver turns a storage key into a downloadable URL.
type URLResolver interface {
	URL(ctx context.Context, key string) (string, error)
}

// Entry is a loaded resume together with the document it came from.
type Entry struct {
	Path   docstore.Path
	Resume model.Resume
	Legacy bool
}

// Service contains the resume lifecycle: create, load, rename and
// section-scoped updates.
type Service struct {
	Store     docstore.Store
	Templates TemplateLookup
	Assets    URLResolver
	Events    events.Publisher
}

func NewService(store docstore.Store, catalog TemplateLookup, assets URLResolver, pub events.Publisher) *Service {
	return &Service{Store: store, Templates: catalog, Assets: assets, Events: pub}
}

// Create starts a new resume for owner from the given template.
func (s *Service) Create(ctx context.Context, owner Owner, templateID string) (model.Resume, error) {
	if owner.UserID == "" {
		return model.Resume{}, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	tmpl, err := s.template(templateID)
	if err != nil {
		return model.Resume{}, err
	}

	r := model.Default()
	r.ID = uuid.NewString()
	r.UserID = owner.UserID
	r.UserEmail = owner.Email
	r.TemplateID = tmpl.ID
	r.TemplateName = tmpl.Name
	r.EditName = tmpl.Name

	p, err := docstore.FlatResumePath(r.ID)
	if err != nil {
		return model.Resume{}, err
	}
	doc, err := s.Store.Create(ctx, p, r.Document())
	if err != nil {
		return model.Resume{}, fmt.Errorf("create resume: %w", err)
	}

	metrics.IncResumeCreated()
	events.Emit(ctx, s.Events, events.New(events.ResumeCreated, r.ID, owner.UserID))
	return fromDocument(doc), nil
}

// List returns the owner's flat resumes, newest first.
func (s *Service) List(ctx context.Context, owner Owner) ([]model.Resume, error) {
	if owner.UserID == "" {
		return nil, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	docs, err := s.Store.List(ctx, docstore.ResumesCollection, "userId", owner.UserID)
	if err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}
	out := make([]model.Resume, 0, len(docs))
	for _, d := range docs {
		out = append(out, fromDocument(d))
	}
	return out, nil
}

// Load reads the resume addressed by key through loc and checks ownership.
func (s *Service) Load(ctx context.Context, loc Locator, owner Owner, key string) (Entry, error) {
	p, err := loc.Locate(owner, key)
	if err != nil {
		return Entry{}, err
	}
	doc, err := s.Store.Get(ctx, p)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, fmt.Errorf("load resume: %w", err)
	}
	_, legacy := loc.(LegacyLocator)
	r := fromDocument(doc)
	if !owns(owner, r, p, legacy) {
		telemetry.Warn("resumes.owner_mismatch", map[string]any{
			"path":    p.String(),
			"user_id": owner.UserID,
		})
		return Entry{}, ErrNotFound
	}
	return Entry{Path: p, Resume: r, Legacy: legacy}, nil
}

// Get loads resumes/{id}.
func (s *Service) Get(ctx context.Context, owner Owner, id string) (model.Resume, error) {
	e, err := s.Load(ctx, FlatLocator{}, owner, id)
	if err != nil {
		return model.Resume{}, err
	}
	return e.Resume, nil
}

// GetLegacy loads resumes/{templateId}/userEmail/{email} for the session email.
func (s *Service) GetLegacy(ctx context.Context, owner Owner, templateID string) (model.Resume, error) {
	e, err := s.Load(ctx, LegacyLocator{}, owner, templateID)
	if err != nil {
		return model.Resume{}, err
	}
	return e.Resume, nil
}

// OpenLegacy loads the legacy document for templateID, creating it with
// defaults the first time the owner opens that template.
func (s *Service) OpenLegacy(ctx context.Context, owner Owner, templateID string) (Entry, error) {
	e, err := s.Load(ctx, LegacyLocator{}, owner, templateID)
	if err == nil || !errors.Is(err, ErrNotFound) {
		return e, err
	}
	tmpl, err := s.template(templateID)
	if err != nil {
		return Entry{}, err
	}
	p, err := LegacyLocator{}.Locate(owner, templateID)
	if err != nil {
		return Entry{}, err
	}

	r := model.Default()
	r.UserID = owner.UserID
	r.UserEmail = owner.Email
	r.TemplateID = tmpl.ID
	r.TemplateName = tmpl.Name
	r.EditName = tmpl.Name
	doc, err := s.Store.Create(ctx, p, r.Document())
	if errors.Is(err, docstore.ErrAlreadyExists) {
		return s.Load(ctx, LegacyLocator{}, owner, templateID)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("create legacy resume: %w", err)
	}
	metrics.IncResumeCreated()
	events.Emit(ctx, s.Events, events.New(events.ResumeCreated, p.String(), owner.UserID))
	return Entry{Path: p, Resume: fromDocument(doc), Legacy: true}, nil
}

// Rename updates the dashboard label of a resume.
func (s *Service) Rename(ctx context.Context, owner Owner, id, editName string) (model.Resume, error) {
	editName = strings.TrimSpace(editName)
	if editName == "" {
		return model.Resume{}, fmt.Errorf("%w: editName required", ErrInvalidInput)
	}
	e, err := s.Load(ctx, FlatLocator{}, owner, id)
	if err != nil {
		return model.Resume{}, err
	}
	if err := s.Store.Update(ctx, e.Path, map[string]any{"editName": editName}); err != nil {
		return model.Resume{}, s.storeErr("rename resume", err)
	}
	e.Resume.EditName = editName
	return e.Resume, nil
}

// UpdateSection writes exactly one top-level key to the document at p.
func (s *Service) UpdateSection(ctx context.Context, p docstore.Path, section model.Section, value any) error {
	if section.Step() < 0 {
		return model.ErrUnknownSection
	}
	if err := s.Store.Update(ctx, p, map[string]any{string(section): value}); err != nil {
		return s.storeErr("update section", err)
	}
	return nil
}

// Reload reads the document at p without an ownership check. Callers must
// have loaded it through Load first.
func (s *Service) Reload(ctx context.Context, p docstore.Path) (model.Resume, error) {
	doc, err := s.Store.Get(ctx, p)
	if err != nil {
		return model.Resume{}, s.storeErr("reload resume", err)
	}
	return fromDocument(doc), nil
}

// ResolveAssets replaces a stored profile photo key with a downloadable URL.
// A photo that cannot be resolved is dropped from the returned copy.
func (s *Service) ResolveAssets(ctx context.Context, r model.Resume) model.Resume {
	out := r.Normalized()
	if out.ProfilePhoto == "" || object.IsRemoteURL(out.ProfilePhoto) || s.Assets == nil {
		return out
	}
	url, err := s.Assets.URL(ctx, out.ProfilePhoto)
	if err != nil {
		telemetry.Warn("resumes.photo_url_failed", map[string]any{"resume_id": r.ID, "error": err})
		out.ProfilePhoto = ""
		return out
	}
	out.ProfilePhoto = url
	return out
}

func (s *Service) template(id string) (templates.Template, error) {
	if strings.TrimSpace(id) == "" {
		return templates.Template{}, fmt.Errorf("%w: template id required", ErrInvalidInput)
	}
	if s.Templates == nil {
		return templates.Template{ID: id, Name: id}, nil
	}
	t, err := s.Templates.Get(id)
	if err != nil {
		if errors.Is(err, templates.ErrNotFound) {
			return templates.Template{}, ErrUnknownTemplate
		}
		return templates.Template{}, err
	}
	return t, nil
}

func (s *Service) storeErr(op string, err error) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// fromDocument normalizes stored data and fills identity and timestamps
// from the document metadata when the data itself lacks them.
func fromDocument(d docstore.Document) model.Resume {
	r := model.Normalize(d.Data)
	if d.Path.Collection() == docstore.ResumesCollection {
		r.ID = d.Path.ID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = d.CreatedAt
	}
	if !d.UpdatedAt.IsZero() {
		r.UpdatedAt = d.UpdatedAt
	}
	return r
}
