// Package browser wraps Rod to provide a player-verification-ready
// headless Chrome: fixed viewport, autoplay enabled, and helpers for the
// small set of interactions the verifier needs (fill, click, hover,
// visibility checks, screenshots).
package browser

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Config configures Chrome launch options.
type Config struct {
	Headless       bool          // Run in headless mode (default: true)
	Timeout        time.Duration // Default operation timeout (default: 30s)
	ViewportWidth  int           // Page viewport width in CSS pixels (default: 1280)
	ViewportHeight int           // Page viewport height in CSS pixels (default: 720)
}

// DefaultConfig returns sensible defaults for player verification.
func DefaultConfig() Config {
	return Config{
		Headless:       true,
		Timeout:        30 * time.Second,
		ViewportWidth:  1280,
		ViewportHeight: 720,
	}
}

// Client wraps Rod with a Chrome configured for media playback.
type Client struct {
	browser *rod.Browser
	page    *rod.Page
	cfg     Config
}

// NewClient creates a headless Chrome ready for media-heavy pages.
// The browser is configured with:
//   - Autoplay without user gesture (video starts without a click)
//   - Fake media streams and auto-granted permissions (captureStream
//     based pages work without a real camera)
//   - Muted audio
//   - No sandbox (for container compatibility)
func NewClient(cfg Config) (*Client, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		Set("no-sandbox").
		Set("disable-gpu").
		Set("mute-audio").
		Set("use-fake-device-for-media-stream").
		Set("use-fake-ui-for-media-stream").
		Set("autoplay-policy", "no-user-gesture-required")

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch Chrome: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to Chrome: %w", err)
	}

	return &Client{
		browser: browser,
		cfg:     cfg,
	}, nil
}

// Navigate opens a URL with the given timeout on a fresh page sized to
// the configured viewport. Navigation errors (connection refused, DNS
// failure) are returned so callers can retry while a server starts up.
func (c *Client) Navigate(url string, timeout time.Duration) (*rod.Page, error) {
	if c.page == nil {
		page, err := c.browser.Page(proto.TargetCreateTarget{})
		if err != nil {
			return nil, fmt.Errorf("failed to open page: %w", err)
		}
		if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             c.cfg.ViewportWidth,
			Height:            c.cfg.ViewportHeight,
			DeviceScaleFactor: 1,
		}); err != nil {
			return nil, fmt.Errorf("failed to set viewport: %w", err)
		}
		c.page = page
	}

	p := c.page.Timeout(timeout)
	err := p.Navigate(url)
	if err == nil {
		err = p.WaitLoad()
	}
	// Cancel timeout so later operations and Close() work
	p.CancelTimeout()
	if err != nil {
		return nil, fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return c.page, nil
}

// Page returns the current page, or nil if none open.
func (c *Client) Page() *rod.Page {
	return c.page
}

// Eval executes JavaScript on the current page and returns the result.
// Requires Navigate() to have been called first.
func (c *Client) Eval(js string) (interface{}, error) {
	if c.page == nil {
		return nil, errors.New("no page open, call Navigate first")
	}
	result, err := c.page.Eval(js)
	if err != nil {
		return nil, fmt.Errorf("eval failed: %w", err)
	}
	return result.Value, nil
}

// WaitStable waits for the page to be stable (no DOM changes).
func (c *Client) WaitStable() error {
	if c.page == nil {
		return errors.New("no page open")
	}
	return c.page.WaitStable(c.cfg.Timeout)
}

// Fill selects the element matching selector, clears it, and types text.
func (c *Client) Fill(selector, text string) error {
	if c.page == nil {
		return errors.New("no page open")
	}
	p := c.page.Timeout(c.cfg.Timeout)
	defer p.CancelTimeout()

	el, err := p.Element(selector)
	if err != nil {
		return fmt.Errorf("element %q not found: %w", selector, err)
	}
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("failed to select text in %q: %w", selector, err)
	}
	if err := el.Input(text); err != nil {
		return fmt.Errorf("failed to fill %q: %w", selector, err)
	}
	return nil
}

// ClickText clicks the first element matching selector whose text
// matches the given pattern (regular expression syntax).
func (c *Client) ClickText(selector, pattern string) error {
	if c.page == nil {
		return errors.New("no page open")
	}
	p := c.page.Timeout(c.cfg.Timeout)
	defer p.CancelTimeout()

	el, err := p.ElementR(selector, pattern)
	if err != nil {
		return fmt.Errorf("element %q with text %q not found: %w", selector, pattern, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("failed to click %q: %w", pattern, err)
	}
	return nil
}

// WaitVisible blocks until the element matching selector exists and is
// visible, or the timeout elapses.
func (c *Client) WaitVisible(selector string, timeout time.Duration) error {
	if c.page == nil {
		return errors.New("no page open")
	}
	p := c.page.Timeout(timeout)
	defer p.CancelTimeout()

	el, err := p.Element(selector)
	if err != nil {
		return fmt.Errorf("element %q not found: %w", selector, err)
	}
	if err := el.WaitVisible(); err != nil {
		return fmt.Errorf("element %q not visible: %w", selector, err)
	}
	return nil
}

// MoveMouse moves the cursor to viewport coordinates, dispatching
// mousemove events along the way.
func (c *Client) MoveMouse(x, y float64) error {
	if c.page == nil {
		return errors.New("no page open")
	}
	return c.page.Mouse.MoveTo(proto.Point{X: x, Y: y})
}

// Visible reports whether the element matching selector currently
// exists and is visible. A missing element is not an error: it reports
// false, so callers can treat visibility as a soft check.
func (c *Client) Visible(selector string) (bool, error) {
	if c.page == nil {
		return false, errors.New("no page open")
	}
	has, el, err := c.page.Has(selector)
	if err != nil {
		return false, fmt.Errorf("failed to query %q: %w", selector, err)
	}
	if !has {
		return false, nil
	}
	visible, err := el.Visible()
	if err != nil {
		return false, fmt.Errorf("failed to check visibility of %q: %w", selector, err)
	}
	return visible, nil
}

// Screenshot captures the current viewport as PNG and writes it to path.
func (c *Client) Screenshot(path string) error {
	if c.page == nil {
		return errors.New("no page open")
	}
	data, err := c.page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return fmt.Errorf("screenshot failed: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write screenshot %s: %w", path, err)
	}
	return nil
}

// Close cleans up browser resources.
// Always call this (via defer) to prevent orphaned Chrome processes.
func (c *Client) Close() error {
	if c.browser != nil {
		return c.browser.Close()
	}
	return nil
}
