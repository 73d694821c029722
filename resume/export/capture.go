package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/png" // DecodeConfig for captured screenshots
	"strings"

	"resume-builder/internal/shared/telemetry"
)

// ErrNodeNotFound means the target node is missing or no longer attached.
var ErrNodeNotFound = errors.New("preview node not found")

// ForcedStyle pins the node on screen behind the page so it lays out at its
// real size without being visible to the user.
const ForcedStyle = "position: fixed; top: 0px; left: 0px; z-index: -1;"

// Target is the rendered document plus the selector of the node to capture.
type Target struct {
	HTML     string
	Selector string
}

// Capture is a PNG screenshot and its pixel size.
type Capture struct {
	PNG    []byte
	Width  int
	Height int
}

// Capturer rasterizes the target node at the given device scale factor.
type Capturer interface {
	Capture(ctx context.Context, target Target, scale float64) (Capture, error)
}

// Node is the slice of a DOM element the capture step needs.
type Node interface {
	Attached(ctx context.Context) (bool, error)
	InlineStyle(ctx context.Context) (string, error)
	SetInlineStyle(ctx context.Context, style string) error
	Screenshot(ctx context.Context) ([]byte, error)
}

// withForcedStyle appends ForcedStyle to an inline style, terminating the
// last existing declaration first.
func withForcedStyle(original string) string {
	style := strings.TrimSpace(original)
	if style == "" {
		return ForcedStyle
	}
	if !strings.HasSuffix(style, ";") {
		style += ";"
	}
	return style + " " + ForcedStyle
}

// CaptureNode forces the node into ForcedStyle, screenshots it, and puts the
// original inline style back whether or not the screenshot succeeded.
func CaptureNode(ctx context.Context, n Node) (shot Capture, err error) {
	if n == nil {
		return Capture{}, ErrNodeNotFound
	}
	attached, err := n.Attached(ctx)
	if err != nil || !attached {
		return Capture{}, ErrNodeNotFound
	}
	original, err := n.InlineStyle(ctx)
	if err != nil {
		return Capture{}, fmt.Errorf("read style: %w", err)
	}
	if err := n.SetInlineStyle(ctx, withForcedStyle(original)); err != nil {
		return Capture{}, fmt.Errorf("force style: %w", err)
	}
	defer func() {
		// Restore on a fresh context so a cancelled export still cleans up.
		if rerr := n.SetInlineStyle(context.WithoutCancel(ctx), original); rerr != nil {
			telemetry.Warn("export.style_restore_failed", map[string]any{"error": rerr})
			if err == nil {
				err = fmt.Errorf("restore style: %w", rerr)
			}
		}
	}()

	png, err := n.Screenshot(ctx)
	if err != nil {
		return Capture{}, fmt.Errorf("screenshot: %w", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(png))
	if err != nil {
		return Capture{}, fmt.Errorf("decode screenshot: %w", err)
	}
	return Capture{PNG: png, Width: cfg.Width, Height: cfg.Height}, nil
}
