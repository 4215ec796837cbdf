package render

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"go.abhg.dev/codesnap/internal/atomicfile"
	"go.abhg.dev/codesnap/internal/errdefer"
	"go.abhg.dev/codesnap/internal/html"
	"go.abhg.dev/codesnap/internal/snapshot"
)

// DefaultLoadTimeout bounds how long a document may take to settle
// if [Engine.LoadTimeout] is unset.
const DefaultLoadTimeout = 30 * time.Second

// ErrNoElement is returned by [Surface.Measure]
// if nothing matches the selector.
var ErrNoElement = errors.New("no element matches selector")

// Box is a rectangle on a surface in CSS pixels.
type Box struct {
	X, Y          float64
	Width, Height float64
}

// Empty reports whether the box has no area.
func (b Box) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

func (b Box) String() string {
	return fmt.Sprintf("%gx%g@(%g,%g)", b.Width, b.Height, b.X, b.Y)
}

// Browser hands out isolated rendering surfaces.
type Browser interface {
	// Acquire returns a fresh surface.
	// The caller must Close it.
	Acquire(ctx context.Context) (Surface, error)
}

// Surface is a single browser page.
// It's not safe for concurrent use.
type Surface interface {
	// Load replaces the page with the given HTML
	// and waits until it has loaded
	// and the network has gone idle.
	Load(ctx context.Context, html string) error

	// Measure reports the bounding box of the first element
	// matching the CSS selector.
	//
	// It returns ErrNoElement if nothing matches,
	// and a nil box if the element isn't laid out.
	Measure(ctx context.Context, selector string) (*Box, error)

	// Capture takes a PNG screenshot clipped to the given box.
	// The box may extend beyond the viewport.
	Capture(ctx context.Context, box Box) ([]byte, error)

	// Close releases the surface and everything it holds.
	Close() error
}

// Engine renders composed documents into images.
type Engine struct {
	// Browser supplies rendering surfaces.
	Browser Browser

	// LoadTimeout bounds how long a document may take to load.
	// Defaults to DefaultLoadTimeout.
	LoadTimeout time.Duration

	// Scale is the device scale factor of the Browser's surfaces.
	// Captured images are expected to be this many times
	// the size of the measured box.
	// Defaults to 1.
	Scale float64

	// DebugLog receives diagnostic messages if non-nil.
	DebugLog *log.Logger
}

func (e *Engine) scale() float64 {
	if e.Scale > 0 {
		return e.Scale
	}
	return 1
}

func (e *Engine) loadTimeout() time.Duration {
	if e.LoadTimeout > 0 {
		return e.LoadTimeout
	}
	return DefaultLoadTimeout
}

func (e *Engine) debugf(format string, args ...any) {
	if e.DebugLog != nil {
		e.DebugLog.Printf(format, args...)
	}
}

// Render captures the content element of doc
// and writes it as a PNG to dest.
//
// dest is replaced atomically.
// If rendering fails, dest is not touched.
func (e *Engine) Render(ctx context.Context, doc *html.Document, dest string) (*snapshot.Image, error) {
	img, err := e.Capture(ctx, doc)
	if err != nil {
		return nil, err
	}

	if err := atomicfile.Write(dest, img.PNG, 0o644); err != nil {
		return nil, snapshot.Wrap(snapshot.ErrWrite, err)
	}
	e.debugf("wrote %v (%vx%v)", dest, img.Width, img.Height)
	return img, nil
}

// Capture renders the content element of doc into an image
// without writing it anywhere.
//
// The surface used to render is always released.
// Failures to release it are reported alongside any other error.
func (e *Engine) Capture(ctx context.Context, doc *html.Document) (_ *snapshot.Image, err error) {
	surface, err := e.Browser.Acquire(ctx)
	if err != nil {
		return nil, snapshot.Wrap(snapshot.ErrSurfaceInit, err)
	}
	e.debugf("acquired surface")
	defer func() {
		errdefer.Run(&err, func() error {
			return snapshot.Wrap(snapshot.ErrRelease, surface.Close())
		})
		e.debugf("released surface")
	}()

	if err := e.load(ctx, surface, doc.HTML); err != nil {
		return nil, err
	}

	box, err := surface.Measure(ctx, doc.Selector)
	switch {
	case errors.Is(err, ErrNoElement):
		return nil, snapshot.Wrap(snapshot.ErrContentElementNotFound, err)
	case err != nil:
		return nil, snapshot.Wrap(snapshot.ErrBoundingBoxUnavailable, err)
	case box == nil:
		return nil, snapshot.Errorf(snapshot.ErrBoundingBoxUnavailable, "%q is not laid out", doc.Selector)
	case box.Empty():
		return nil, snapshot.Errorf(snapshot.ErrBoundingBoxUnavailable, "%q has no area: %v", doc.Selector, box)
	}
	e.debugf("measured %v: %v", doc.Selector, box)

	bs, err := surface.Capture(ctx, *box)
	if err != nil {
		return nil, snapshot.Wrap(snapshot.ErrCapture, err)
	}

	img, err := snapshot.DecodeImage(bs)
	if err != nil {
		return nil, snapshot.Wrap(snapshot.ErrCapture, err)
	}
	if w, h, ok := e.matchesBox(img, box); !ok {
		e.debugf("image size %vx%v does not match %v (want %vx%v)", img.Width, img.Height, box, w, h)
	}
	return img, nil
}

// matchesBox reports whether img has the size of box at the engine's scale,
// and returns the expected size.
// Each dimension may be off by a pixel
// because boxes are not pixel-aligned.
func (e *Engine) matchesBox(img *snapshot.Image, box *Box) (w, h int, ok bool) {
	w = int(math.Round(box.Width * e.scale()))
	h = int(math.Round(box.Height * e.scale()))
	return w, h, abs(img.Width-w) <= 1 && abs(img.Height-h) <= 1
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (e *Engine) load(ctx context.Context, surface Surface, src string) error {
	timeout := e.loadTimeout()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	if err := surface.Load(ctx, src); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("document did not load within %v: %w", timeout, err)
		}
		return snapshot.Wrap(snapshot.ErrSurfaceInit, err)
	}
	e.debugf("loaded document in %v", time.Since(start).Round(time.Millisecond))
	return nil
}
