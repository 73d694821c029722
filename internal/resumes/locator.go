package resumes

import (
	"fmt"
	"strings"

	"resume-builder/internal/shared/storage/docstore"
	"resume-builder/resume/model"
)

// Owner is the session identity resumes are checked against.
type Owner struct {
	UserID string
	Email  string
}

// Locator maps a caller-supplied key to the document holding the resume.
// Both storage conventions stay readable and writable; neither supersedes
// the other.
type Locator interface {
	Locate(owner Owner, key string) (docstore.Path, error)
	Name() string
}

// FlatLocator addresses resumes/{id}.
type FlatLocator struct{}

func (FlatLocator) Locate(_ Owner, id string) (docstore.Path, error) {
	p, err := docstore.FlatResumePath(id)
	if err != nil {
		return docstore.Path{}, fmt.Errorf("%w: resume id", ErrInvalidInput)
	}
	return p, nil
}

func (FlatLocator) Name() string { return "flat" }

// LegacyLocator addresses resumes/{templateId}/userEmail/{email} using the
// session email, so one template holds at most one resume per user.
type LegacyLocator struct{}

func (LegacyLocator) Locate(owner Owner, templateID string) (docstore.Path, error) {
	if strings.TrimSpace(owner.Email) == "" {
		return docstore.Path{}, fmt.Errorf("%w: session has no email", ErrInvalidInput)
	}
	p, err := docstore.LegacyResumePath(templateID, owner.Email)
	if err != nil {
		return docstore.Path{}, fmt.Errorf("%w: template id", ErrInvalidInput)
	}
	return p, nil
}

func (LegacyLocator) Name() string { return "legacy" }

// owns reports whether the resume belongs to owner. Documents without a
// userId fall back to the email; legacy documents without either are owned
// through the email baked into their path.
func owns(owner Owner, r model.Resume, p docstore.Path, legacy bool) bool {
	if r.UserID != "" {
		return r.UserID == owner.UserID
	}
	if r.UserEmail != "" {
		return strings.EqualFold(r.UserEmail, owner.Email)
	}
	return legacy && strings.EqualFold(p.ID(), owner.Email)
}

var (
	_ Locator = FlatLocator{}
	_ Locator = LegacyLocator{}
)
