package builder

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/storage/docstore"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/model"
)

var (
	ErrInvalidStep    = errors.New("invalid step")
	ErrInvalidIndex   = errors.New("invalid entry index")
	ErrNotEditing     = errors.New("not editing")
	ErrSaveInProgress = errors.New("save already in progress")
	ErrClosed         = errors.New("builder session closed")
)

// DisposedPolicy decides what happens to a save result that lands after
// the controller was closed.
type DisposedPolicy string

const (
	// DisposedIgnore drops the result; controller state stays as it was at Close.
	DisposedIgnore DisposedPolicy = "ignore"
	// DisposedApply applies the result to the closed controller's state.
	DisposedApply DisposedPolicy = "apply"
)

// ParseDisposedPolicy defaults to DisposedIgnore.
func ParseDisposedPolicy(raw string) (DisposedPolicy, error) {
	switch DisposedPolicy(raw) {
	case "", DisposedIgnore:
		return DisposedIgnore, nil
	case DisposedApply:
		return DisposedApply, nil
	default:
		return "", fmt.Errorf("unknown disposed result policy %q", raw)
	}
}

// Store is the persistence the controller saves through.
type Store interface {
	UpdateSection(ctx context.Context, p docstore.Path, section model.Section, value any) error
	Reload(ctx context.Context, p docstore.Path) (model.Resume, error)
}

type Options struct {
	RefreshAfterSave bool
	Disposed         DisposedPolicy
}

// State is a snapshot of the controller.
type State struct {
	Path      string        `json:"path"`
	Step      int           `json:"currentStep"`
	Section   model.Section `json:"section"`
	IsEditing bool          `json:"isEditing"`
	IsSaving  bool          `json:"isSaving"`
	Disposed  bool          `json:"disposed"`
	Editable  model.Resume  `json:"editableData"`
	Canonical model.Resume  `json:"resume"`
}

// SaveResult describes a completed section save.
type SaveResult struct {
	Section   model.Section  `json:"section"`
	Payload   map[string]any `json:"payload"`
	Resume    model.Resume   `json:"resume"`
	Refreshed bool           `json:"refreshed"`
	Discarded bool           `json:"discarded"`
}

// Controller is the multi-step form over one resume. It holds the canonical
// copy last persisted and the editable snapshot the user is changing.
type Controller struct {
	mu        sync.Mutex
	store     Store
	path      docstore.Path
	opts      Options
	step      int
	canonical model.Resume
	editable  model.Resume
	isEditing bool
	isSaving  bool
	disposed  bool
	// rev increments on every snapshot change.
	rev uint64
}

// NewController starts at step 0, not editing, with a defaulted copy of r.
func NewController(store Store, p docstore.Path, r model.Resume, opts Options) *Controller {
	if opts.Disposed == "" {
		opts.Disposed = DisposedIgnore
	}
	canonical := r.Normalized()
	return &Controller{
		store:     store,
		path:      p,
		opts:      opts,
		canonical: canonical,
		editable:  canonical.Clone(),
	}
}

// Next advances one step, stopping at the last section.
func (c *Controller) Next() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step < model.StepCount-1 {
		c.step++
	}
	return c.step
}

// Previous goes back one step, stopping at the first section.
func (c *Controller) Previous() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step > 0 {
		c.step--
	}
	return c.step
}

// JumpTo sets the step directly; every step is reachable at any time.
func (c *Controller) JumpTo(step int) error {
	if step < 0 || step >= model.StepCount {
		return fmt.Errorf("%w: %d", ErrInvalidStep, step)
	}
	c.mu.Lock()
	c.step = step
	c.mu.Unlock()
	return nil
}

func (c *Controller) BeginEdit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return ErrClosed
	}
	c.isEditing = true
	return nil
}

// Apply runs m against the editable snapshot. A failed mutation leaves the
// snapshot unchanged.
func (c *Controller) Apply(m Mutation) error {
	if m == nil {
		return ErrInvalidMutation
	}
	return c.edit(func(r model.Resume) (model.Resume, error) {
		return m.apply(r)
	})
}

// AddEntry appends an empty record to experience or educationDetail.
func (c *Controller) AddEntry(section model.Section) error {
	return c.edit(func(r model.Resume) (model.Resume, error) {
		switch section {
		case model.SectionExperience:
			r.Experience = append(r.Experience, model.EmptyExperience())
		case model.SectionEducationDetail:
			r.EducationDetail = append(r.EducationDetail, model.EmptyEducation())
		default:
			return r, fmt.Errorf("%w: %s has no entry template", ErrInvalidMutation, section)
		}
		return r, nil
	})
}

// RemoveEntry drops the entry at index; later entries shift down.
func (c *Controller) RemoveEntry(section model.Section, index int) error {
	return c.edit(func(r model.Resume) (model.Resume, error) {
		switch section {
		case model.SectionExperience:
			if index < 0 || index >= len(r.Experience) {
				return r, fmt.Errorf("%w: %d", ErrInvalidIndex, index)
			}
			r.Experience = append(r.Experience[:index:index], r.Experience[index+1:]...)
		case model.SectionEducationDetail:
			if index < 0 || index >= len(r.EducationDetail) {
				return r, fmt.Errorf("%w: %d", ErrInvalidIndex, index)
			}
			r.EducationDetail = append(r.EducationDetail[:index:index], r.EducationDetail[index+1:]...)
		case model.SectionSkills:
			if index < 0 || index >= len(r.Skills) {
				return r, fmt.Errorf("%w: %d", ErrInvalidIndex, index)
			}
			r.Skills = append(r.Skills[:index:index], r.Skills[index+1:]...)
		default:
			return r, fmt.Errorf("%w: %s is not a list section", ErrInvalidMutation, section)
		}
		return r, nil
	})
}

func (c *Controller) edit(fn func(model.Resume) (model.Resume, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return ErrClosed
	}
	if !c.isEditing {
		return ErrNotEditing
	}
	next, err := fn(c.editable.Clone())
	if err != nil {
		return err
	}
	c.editable = next.Normalized()
	c.rev++
	return nil
}

// Cancel discards the snapshot and reverts to the canonical copy.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editable = c.canonical.Clone()
	c.isEditing = false
	c.rev++
}

// SaveSection persists the section of the current step as a single-key
// partial update. On failure the controller stays in edit mode and nothing
// is applied locally. On success the canonical copy takes the value that was
// sent; edits made while the save was in flight keep edit mode on.
// Overlapping calls fail with ErrSaveInProgress.
func (c *Controller) SaveSection(ctx context.Context) (SaveResult, error) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return SaveResult{}, ErrClosed
	}
	section, _ := model.SectionAt(c.step)
	if c.isSaving {
		c.mu.Unlock()
		metrics.IncSectionSave(string(section), "busy")
		return SaveResult{Section: section}, ErrSaveInProgress
	}
	value, err := c.editable.SectionValue(section)
	if err != nil {
		c.mu.Unlock()
		return SaveResult{}, err
	}
	c.isSaving = true
	p := c.path
	startRev := c.rev
	c.mu.Unlock()

	ctx, span := telemetry.Tracer().Start(ctx, "builder.save_section")
	span.SetAttributes(attribute.String("resume.path", p.String()), attribute.String("resume.section", string(section)))
	defer span.End()

	result := SaveResult{Section: section, Payload: map[string]any{string(section): value}}
	saveErr := c.store.UpdateSection(ctx, p, section, value)

	var refreshed model.Resume
	var refreshErr error
	if saveErr == nil && c.opts.RefreshAfterSave {
		refreshed, refreshErr = c.store.Reload(ctx, p)
		if refreshErr != nil {
			telemetry.Warn("builder.refresh_failed", map[string]any{"path": p.String(), "error": refreshErr})
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.isSaving = false

	if saveErr != nil {
		span.RecordError(saveErr)
		span.SetStatus(codes.Error, saveErr.Error())
		metrics.IncSectionSave(string(section), "failed")
		telemetry.Error("builder.save_failed", map[string]any{"path": p.String(), "section": string(section), "error": saveErr})
		result.Resume = c.canonical.Clone()
		return result, fmt.Errorf("save %s: %w", section, saveErr)
	}
	metrics.IncSectionSave(string(section), "ok")

	if c.disposed && c.opts.Disposed == DisposedIgnore {
		telemetry.Info("builder.result_discarded", map[string]any{"path": p.String(), "section": string(section)})
		result.Discarded = true
		result.Resume = c.canonical.Clone()
		return result, nil
	}

	patched, err := c.canonical.WithSection(section, value)
	if err != nil {
		return result, err
	}
	if c.opts.RefreshAfterSave && refreshErr == nil {
		patched = refreshed.Normalized()
		result.Refreshed = true
		c.editable.UpdatedAt = patched.UpdatedAt
	}
	c.canonical = patched
	switch {
	case c.rev == startRev:
		c.isEditing = false
	case !c.isEditing:
		// Cancelled mid-save: the snapshot mirrors the new canonical copy.
		c.editable = c.canonical.Clone()
	}
	result.Resume = c.canonical.Clone()
	return result, nil
}

// Close marks the controller disposed. Saves already in flight complete
// and are handled per the disposed policy.
func (c *Controller) Close() {
	c.mu.Lock()
	c.disposed = true
	c.mu.Unlock()
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	section, _ := model.SectionAt(c.step)
	return State{
		Path:      c.path.String(),
		Step:      c.step,
		Section:   section,
		IsEditing: c.isEditing,
		IsSaving:  c.isSaving,
		Disposed:  c.disposed,
		Editable:  c.editable.Clone(),
		Canonical: c.canonical.Clone(),
	}
}

// Path is the document the controller saves to.
func (c *Controller) Path() docstore.Path {
	return c.path
}
