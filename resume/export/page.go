package export

import (
	"math"
	"strings"
)

// Page is a target paper size in millimetres.
type Page struct {
	Name     string
	WidthMM  float64
	HeightMM float64
}

var (
	PageA4     = Page{Name: "A4", WidthMM: 210, HeightMM: 297}
	PageLetter = Page{Name: "Letter", WidthMM: 215.9, HeightMM: 279.4}
)

// PageByName returns Letter for "letter" (any case) and A4 otherwise.
func PageByName(name string) Page {
	if strings.EqualFold(strings.TrimSpace(name), "letter") {
		return PageLetter
	}
	return PageA4
}

// Placement is where an image lands on a page, in millimetres.
type Placement struct {
	X, Y, W, H float64
}

// Fit scales a w×h pixel image to the largest size that fits the page while
// keeping its aspect ratio, centred horizontally and pinned to the top.
func Fit(w, h int, page Page) Placement {
	if w <= 0 || h <= 0 {
		return Placement{}
	}
	scale := math.Min(page.WidthMM/float64(w), page.HeightMM/float64(h))
	pw, ph := float64(w)*scale, float64(h)*scale
	return Placement{X: (page.WidthMM - pw) / 2, Y: 0, W: pw, H: ph}
}

// sliceHeights splits an image of height h (pixels, width w) into page-height
// slices once it is scaled to the full page width.
func sliceHeights(w, h int, page Page) []int {
	if w <= 0 || h <= 0 {
		return nil
	}
	perPage := int(math.Floor(page.HeightMM * float64(w) / page.WidthMM))
	if perPage <= 0 {
		perPage = h
	}
	var out []int
	for remaining := h; remaining > 0; remaining -= perPage {
		out = append(out, min(perPage, remaining))
	}
	return out
}
