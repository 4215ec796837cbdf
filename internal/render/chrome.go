package render

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"braces.dev/errtrace"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"go.abhg.dev/codesnap/internal/errdefer"
	"go.abhg.dev/codesnap/internal/linebuf"
)

const (
	// DefaultWidth is the default viewport width in CSS pixels.
	DefaultWidth = 1920

	// DefaultHeight is the viewport height in CSS pixels.
	// Content taller than this is captured beyond the viewport.
	DefaultHeight = 1080

	// _networkIdle is how long the network must be quiet
	// before a document is considered loaded.
	_networkIdle = 250 * time.Millisecond
)

// Chrome is a [Browser] backed by headless Chrome.
//
// Every surface gets its own browser:
// either a freshly launched Chrome process
// or, with RemoteURL, an incognito context in a running Chrome.
type Chrome struct {
	// Bin is the path to the Chrome binary.
	// If empty, a local installation is searched for
	// and downloaded if none is found.
	Bin string

	// RemoteURL is the DevTools WebSocket URL of a running Chrome.
	// If set, Chrome is not launched.
	RemoteURL string

	// NoSandbox disables the Chrome sandbox.
	// This is required in some containers.
	NoSandbox bool

	// Flags are additional Chrome command line switches
	// in the form "name" or "name=value".
	Flags []string

	// Width of the viewport in CSS pixels.
	// Defaults to DefaultWidth.
	Width int

	// Scale is the device scale factor.
	// Defaults to 1.
	Scale float64

	// DebugLog receives Chrome's output and lifecycle messages
	// if non-nil.
	DebugLog *log.Logger
}

var _ Browser = (*Chrome)(nil)

func (c *Chrome) width() int {
	if c.Width > 0 {
		return c.Width
	}
	return DefaultWidth
}

func (c *Chrome) scale() float64 {
	if c.Scale > 0 {
		return c.Scale
	}
	return 1
}

func (c *Chrome) debugf(format string, args ...any) {
	if c.DebugLog != nil {
		c.DebugLog.Printf(format, args...)
	}
}

// Acquire starts a new isolated page.
func (c *Chrome) Acquire(ctx context.Context) (_ Surface, err error) {
	// The browser connection outlives this call
	// but must not outlive the surface.
	bctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s := &chromeSurface{
		cancel: cancel,
		debugf: c.debugf,
	}
	defer errdefer.OnError(&err, s.Close)

	controlURL := c.RemoteURL
	if controlURL == "" {
		controlURL, err = s.launch(ctx, c)
		if err != nil {
			return nil, errtrace.Wrap(fmt.Errorf("launch chrome: %w", err))
		}
	}

	browser := rod.New().ControlURL(controlURL).Context(bctx)
	if err := browser.Connect(); err != nil {
		return nil, errtrace.Wrap(fmt.Errorf("connect to %v: %w", controlURL, err))
	}
	s.browser = browser

	if c.RemoteURL != "" {
		// Closing an incognito browser disposes its context
		// and leaves the remote Chrome running.
		incognito, err := browser.Incognito()
		if err != nil {
			return nil, errtrace.Wrap(fmt.Errorf("create browser context: %w", err))
		}
		s.browser = incognito
	}

	page, err := s.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, errtrace.Wrap(fmt.Errorf("open page: %w", err))
	}
	s.page = page

	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             c.width(),
		Height:            DefaultHeight,
		DeviceScaleFactor: c.scale(),
	})
	if err != nil {
		return nil, errtrace.Wrap(fmt.Errorf("set viewport: %w", err))
	}

	// Pixels outside the rounded container stay transparent.
	transparent := 0.0
	err = proto.EmulationSetDefaultBackgroundColorOverride{
		Color: &proto.DOMRGBA{A: &transparent},
	}.Call(page)
	if err != nil {
		return nil, errtrace.Wrap(fmt.Errorf("set background: %w", err))
	}

	c.debugf("opened page (width=%v, scale=%v)", c.width(), c.scale())
	return s, nil
}

type chromeSurface struct {
	launcher *launcher.Launcher // nil for remote browsers
	browser  *rod.Browser
	page     *rod.Page

	cancel func()
	flush  func() // flushes Chrome's output
	debugf func(string, ...any)
}

var _ Surface = (*chromeSurface)(nil)

func (s *chromeSurface) launch(ctx context.Context, c *Chrome) (string, error) {
	l := launcher.New().
		Context(ctx).
		Headless(true).
		NoSandbox(c.NoSandbox)
	if c.Bin != "" {
		l = l.Bin(c.Bin)
	}
	for _, f := range c.Flags {
		name, value, ok := strings.Cut(f, "=")
		if ok {
			l = l.Set(flags.Flag(name), value)
		} else {
			l = l.Set(flags.Flag(name))
		}
	}
	if c.DebugLog != nil {
		w, flush := linebuf.Logger(c.DebugLog, "[chrome] ")
		l = l.Logger(w)
		s.flush = flush
	}

	u, err := l.Launch()
	if err != nil {
		return "", errtrace.Wrap(err)
	}
	s.launcher = l
	c.debugf("launched chrome (pid %v)", l.PID())
	return u, nil
}

func (s *chromeSurface) Load(ctx context.Context, src string) error {
	page := s.page.Context(ctx)

	// Track requests from the moment the content is set
	// so that resources referenced by it are waited on.
	waitIdle := page.WaitRequestIdle(_networkIdle, nil, nil, []proto.NetworkResourceType{})
	if err := page.SetDocumentContent(src); err != nil {
		return errtrace.Wrap(fmt.Errorf("set content: %w", err))
	}
	if err := page.WaitLoad(); err != nil {
		return errtrace.Wrap(fmt.Errorf("wait for load: %w", err))
	}
	waitIdle()
	if err := ctx.Err(); err != nil {
		return errtrace.Wrap(fmt.Errorf("wait for network idle: %w", err))
	}

	// Layout depends on web fonts.
	if _, err := page.Eval(`() => document.fonts.ready.then(() => true)`); err != nil {
		return errtrace.Wrap(fmt.Errorf("wait for fonts: %w", err))
	}
	return nil
}

func (s *chromeSurface) Measure(ctx context.Context, selector string) (*Box, error) {
	page := s.page.Context(ctx)

	found, el, err := page.Has(selector)
	if err != nil {
		return nil, errtrace.Wrap(fmt.Errorf("query %q: %w", selector, err))
	}
	if !found {
		return nil, errtrace.Wrap(fmt.Errorf("%q: %w", selector, ErrNoElement))
	}

	shape, err := el.Shape()
	if err != nil {
		return nil, errtrace.Wrap(fmt.Errorf("get shape of %q: %w", selector, err))
	}
	rect := shape.Box()
	if rect == nil {
		return nil, nil
	}
	return &Box{
		X:      rect.X,
		Y:      rect.Y,
		Width:  rect.Width,
		Height: rect.Height,
	}, nil
}

func (s *chromeSurface) Capture(ctx context.Context, box Box) ([]byte, error) {
	bs, err := s.page.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
		Clip: &proto.PageViewport{
			X:      box.X,
			Y:      box.Y,
			Width:  box.Width,
			Height: box.Height,
			Scale:  1,
		},
		CaptureBeyondViewport: true,
	})
	return bs, errtrace.Wrap(err)
}

// Close tears down the page, its browser, and the Chrome process
// if one was launched.
// It is safe to call on a partially initialized surface.
func (s *chromeSurface) Close() (err error) {
	defer s.cancel()

	if s.browser != nil {
		// For launched browsers, this terminates the process.
		// For incognito browsers, this disposes the context.
		if cerr := s.browser.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close browser: %w", cerr))
		}
	}

	if l := s.launcher; l != nil {
		if s.browser == nil || err != nil {
			// Nobody asked Chrome to exit.
			l.Kill()
		}
		// Waits for the process to exit.
		l.Cleanup()
		s.debugf("chrome exited")
	}

	if s.flush != nil {
		s.flush()
	}
	return errtrace.Wrap(err)
}
