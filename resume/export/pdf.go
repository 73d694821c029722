package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/go-pdf/fpdf"
)

// composePDF places the capture on one page (aspect fit) or, when paginate is
// set, slices it into full-width page-height strips, one per page.
func composePDF(c Capture, page Page, paginate bool) ([]byte, int, error) {
	if c.Width <= 0 || c.Height <= 0 || len(c.PNG) == 0 {
		return nil, 0, fmt.Errorf("empty capture")
	}

	doc := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: page.WidthMM, Ht: page.HeightMM},
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	opts := fpdf.ImageOptions{ImageType: "PNG"}

	heights := sliceHeights(c.Width, c.Height, page)
	if !paginate || len(heights) <= 1 {
		doc.AddPage()
		doc.RegisterImageOptionsReader("capture", opts, bytes.NewReader(c.PNG))
		at := Fit(c.Width, c.Height, page)
		doc.ImageOptions("capture", at.X, at.Y, at.W, at.H, false, opts, 0, "")
	} else {
		img, err := png.Decode(bytes.NewReader(c.PNG))
		if err != nil {
			return nil, 0, fmt.Errorf("decode capture: %w", err)
		}
		bounds := img.Bounds()
		mmPerPx := page.WidthMM / float64(c.Width)
		top := bounds.Min.Y
		for i, h := range heights {
			strip, err := cropPNG(img, image.Rect(bounds.Min.X, top, bounds.Max.X, top+h))
			if err != nil {
				return nil, 0, err
			}
			name := fmt.Sprintf("capture-%d", i)
			doc.AddPage()
			doc.RegisterImageOptionsReader(name, opts, bytes.NewReader(strip))
			doc.ImageOptions(name, 0, 0, page.WidthMM, float64(h)*mmPerPx, false, opts, 0, "")
			top += h
		}
	}

	if err := doc.Error(); err != nil {
		return nil, 0, err
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), doc.PageCount(), nil
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

func cropPNG(img image.Image, r image.Rectangle) ([]byte, error) {
	si, ok := img.(subImager)
	if !ok {
		return nil, fmt.Errorf("capture image %T cannot be sliced", img)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, si.SubImage(r)); err != nil {
		return nil, fmt.Errorf("encode slice: %w", err)
	}
	return buf.Bytes(), nil
}
