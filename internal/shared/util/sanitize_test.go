package util

import "testing"

func TestSanitizeFileName(t *testing.T) {
	got, err := SanitizeFileName("  my/photo\\final.png ")
	if err != nil {
		t.Fatalf("SanitizeFileName: %v", err)
	}
	if got != "my_photo_final.png" {
		t.Fatalf("unexpected name %q", got)
	}
	if _, err := SanitizeFileName("../secret"); err == nil {
		t.Fatalf("expected traversal to be rejected")
	}
	if _, err := SanitizeFileName("   "); err == nil {
		t.Fatalf("expected blank name to be rejected")
	}
}
