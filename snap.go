package main

import (
	"context"
	"log"

	"braces.dev/errtrace"
	"go.abhg.dev/codesnap/internal/highlight"
	"go.abhg.dev/codesnap/internal/html"
	"go.abhg.dev/codesnap/internal/render"
	"go.abhg.dev/codesnap/internal/snapshot"
)

// Highlighter turns source code into highlighted HTML.
type Highlighter interface {
	Highlight(highlight.Source) (*highlight.Document, error)
}

var _ Highlighter = (*highlight.Highlighter)(nil)

// Composer frames highlighted code into a complete HTML document.
type Composer interface {
	Compose(*highlight.Document, html.Layout) (*html.Document, error)
}

var _ Composer = (*html.Composer)(nil)

// Renderer renders an HTML document into a PNG file.
type Renderer interface {
	Render(ctx context.Context, doc *html.Document, dest string) (*snapshot.Image, error)
}

var _ Renderer = (*render.Engine)(nil)

// Snapshotter runs a snapshot request through
// highlighting, composition, and rendering, in that order.
//
// In terms of code organization,
// Snapshotter's purpose is to add a separation between main
// and the program's core logic to aid in testability.
type Snapshotter struct {
	Highlighter Highlighter
	Composer    Composer
	Renderer    Renderer

	// DebugLog receives diagnostic messages if non-nil.
	DebugLog *log.Logger
}

func (s *Snapshotter) debugf(format string, args ...any) {
	if s.DebugLog != nil {
		s.DebugLog.Printf(format, args...)
	}
}

// Snapshot renders the request's code
// into a PNG at the request's destination.
//
// Failures match one of the error kinds in the snapshot package.
func (s *Snapshotter) Snapshot(ctx context.Context, req *snapshot.Request) (*snapshot.Image, error) {
	if err := req.Validate(); err != nil {
		return nil, errtrace.Wrap(err)
	}

	code, err := s.Highlighter.Highlight(highlight.Source{
		Code:     req.Code,
		Language: req.Language,
		Theme:    req.Theme,
		Lines:    req.Lines,
	})
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	if _, ok := highlight.LookupTheme(req.Theme); !ok && req.Theme != "" {
		s.debugf("unknown theme %q, using %v", req.Theme, code.Theme)
	}
	s.debugf("highlighted %v", code)

	doc, err := s.Composer.Compose(code, html.Layout{
		Padding:        req.Padding,
		Background:     req.Background,
		LineNumbers:    req.LineNumbers,
		WindowControls: req.WindowControls,
		Title:          req.Title,
		Shadow:         req.Shadow,
	})
	if err != nil {
		return nil, errtrace.Wrap(err)
	}

	img, err := s.Renderer.Render(ctx, doc, req.Destination)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	return img, nil
}
