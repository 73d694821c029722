package docstore

import (
	"errors"
	"testing"
)

func TestResumePaths(t *testing.T) {
	flat, err := FlatResumePath("abc123")
	if err != nil {
		t.Fatalf("FlatResumePath: %v", err)
	}
	if flat.String() != "resumes/abc123" || flat.Collection() != "resumes" || flat.ID() != "abc123" {
		t.Fatalf("unexpected flat path %q collection=%q id=%q", flat, flat.Collection(), flat.ID())
	}

	legacy, err := LegacyResumePath("classic", "ada@example.com")
	if err != nil {
		t.Fatalf("LegacyResumePath: %v", err)
	}
	if legacy.String() != "resumes/classic/userEmail/ada@example.com" {
		t.Fatalf("unexpected legacy path %q", legacy)
	}
	if legacy.Collection() != "resumes/classic/userEmail" {
		t.Fatalf("unexpected legacy collection %q", legacy.Collection())
	}
}

func TestPathValidation(t *testing.T) {
	cases := []string{"", "resumes", "resumes//x", "resumes/a/b"}
	for _, raw := range cases {
		if _, err := ParsePath(raw); !errors.Is(err, ErrInvalidPath) {
			t.Fatalf("ParsePath(%q): expected ErrInvalidPath, got %v", raw, err)
		}
	}
	if _, err := FlatResumePath(""); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("expected empty id to be rejected")
	}
	if _, err := LegacyResumePath("classic", "a/b"); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("expected slash in segment to be rejected")
	}

	p, err := ParsePath("/resumes/xyz/")
	if err != nil || p.String() != "resumes/xyz" {
		t.Fatalf("ParsePath trimmed = %q, %v", p, err)
	}
}
