package export

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// RodOptions selects the browser. ControlURL attaches to a running Chrome
// (DevTools websocket); otherwise Bin (or the launcher's default download)
// is started headless on first use.
type RodOptions struct {
	Bin        string
	ControlURL string
	Viewport   int
	Timeout    time.Duration
}

// RodCapturer screenshots nodes with headless Chrome via go-rod.
type RodCapturer struct {
	opts RodOptions

	mu      sync.Mutex
	browser *rod.Browser
}

func NewRodCapturer(opts RodOptions) *RodCapturer {
	if opts.Viewport <= 0 {
		opts.Viewport = 1024
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &RodCapturer{opts: opts}
}

func (c *RodCapturer) connect() (*rod.Browser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.browser != nil {
		return c.browser, nil
	}
	controlURL := c.opts.ControlURL
	if controlURL == "" {
		l := launcher.New().Headless(true)
		if c.opts.Bin != "" {
			l = l.Bin(c.opts.Bin)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch chrome: %w", err)
		}
		controlURL = u
	}
	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("connect chrome: %w", err)
	}
	c.browser = b
	return b, nil
}

// Capture loads target.HTML into a fresh tab and screenshots target.Selector.
func (c *RodCapturer) Capture(ctx context.Context, target Target, scale float64) (Capture, error) {
	if target.HTML == "" || target.Selector == "" {
		return Capture{}, ErrNodeNotFound
	}
	browser, err := c.connect()
	if err != nil {
		return Capture{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return Capture{}, fmt.Errorf("open tab: %w", err)
	}
	defer page.Close()

	err = proto.EmulationSetDeviceMetricsOverride{
		Width:             c.opts.Viewport,
		Height:            c.opts.Viewport,
		DeviceScaleFactor: scale,
	}.Call(page)
	if err != nil {
		return Capture{}, fmt.Errorf("set scale: %w", err)
	}
	if err := page.SetDocumentContent(target.HTML); err != nil {
		return Capture{}, fmt.Errorf("load document: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return Capture{}, fmt.Errorf("wait load: %w", err)
	}

	el, err := page.Sleeper(rod.NotFoundSleeper).Element(target.Selector)
	if err != nil {
		return Capture{}, ErrNodeNotFound
	}
	return CaptureNode(ctx, &rodNode{el: el})
}

// Close shuts the browser down if one was started.
func (c *RodCapturer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.browser == nil {
		return nil
	}
	err := c.browser.Close()
	c.browser = nil
	return err
}

type rodNode struct {
	el *rod.Element
}

func (n *rodNode) Attached(ctx context.Context) (bool, error) {
	res, err := n.el.Context(ctx).Eval(`() => this.isConnected`)
	if err != nil {
		return false, err
	}
	return res.Value.Bool(), nil
}

func (n *rodNode) InlineStyle(ctx context.Context) (string, error) {
	res, err := n.el.Context(ctx).Eval(`() => this.getAttribute("style") || ""`)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func (n *rodNode) SetInlineStyle(ctx context.Context, style string) error {
	_, err := n.el.Context(ctx).Eval(`(s) => { if (s) { this.setAttribute("style", s) } else { this.removeAttribute("style") } }`, style)
	return err
}

func (n *rodNode) Screenshot(ctx context.Context) ([]byte, error) {
	return n.el.Context(ctx).Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
}

var (
	_ Capturer = (*RodCapturer)(nil)
	_ Node     = (*rodNode)(nil)
)
