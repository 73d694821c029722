package docstore

import (
	"errors"
	"strings"
)

// ResumesCollection is the root collection holding resume documents.
const ResumesCollection = "resumes"

// ErrInvalidPath is returned for paths that do not name a document.
var ErrInvalidPath = errors.New("invalid document path")

// Path addresses one document as alternating collection/document segments,
// e.g. resumes/{id} or resumes/{templateId}/userEmail/{email}.
type Path struct {
	segments []string
}

// NewPath builds a document path. It needs an even, non-zero number of
// non-empty segments, none containing a slash.
func NewPath(segments ...string) (Path, error) {
	if len(segments) == 0 || len(segments)%2 != 0 {
		return Path{}, ErrInvalidPath
	}
	out := make([]string, len(segments))
	for i, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" || strings.Contains(seg, "/") {
			return Path{}, ErrInvalidPath
		}
		out[i] = seg
	}
	return Path{segments: out}, nil
}

// ParsePath splits a slash-separated document path.
func ParsePath(raw string) (Path, error) {
	return NewPath(strings.Split(strings.Trim(raw, "/"), "/")...)
}

// FlatResumePath is the current convention: resumes/{id}.
func FlatResumePath(id string) (Path, error) {
	return NewPath(ResumesCollection, id)
}

// LegacyResumePath is the older per-template-per-user convention.
func LegacyResumePath(templateID, email string) (Path, error) {
	return NewPath(ResumesCollection, templateID, "userEmail", email)
}

// String renders the path with slashes.
func (p Path) String() string {
	return strings.Join(p.segments, "/")
}

// ID is the last segment.
func (p Path) ID() string {
	if len(p.segments) == 0 {
		return ""
	}
	return p.segments[len(p.segments)-1]
}

// Collection is the path of the collection holding the document.
func (p Path) Collection() string {
	if len(p.segments) < 2 {
		return ""
	}
	return strings.Join(p.segments[:len(p.segments)-1], "/")
}

// IsZero reports whether p was never set.
func (p Path) IsZero() bool {
	return len(p.segments) == 0
}
