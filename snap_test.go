package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.abhg.dev/codesnap/internal/highlight"
	"go.abhg.dev/codesnap/internal/html"
	"go.abhg.dev/codesnap/internal/iotest"
	"go.abhg.dev/codesnap/internal/snapshot"
)

type fakeStages struct {
	calls []string

	highlightErr error
	composeErr   error
	renderErr    error

	gotSource highlight.Source
	gotLayout html.Layout
	gotDest   string
}

func (f *fakeStages) Highlight(src highlight.Source) (*highlight.Document, error) {
	f.calls = append(f.calls, "highlight")
	f.gotSource = src
	if f.highlightErr != nil {
		return nil, f.highlightErr
	}
	return &highlight.Document{Markup: "<pre>code</pre>", Lines: 1}, nil
}

func (f *fakeStages) Compose(_ *highlight.Document, layout html.Layout) (*html.Document, error) {
	f.calls = append(f.calls, "compose")
	f.gotLayout = layout
	if f.composeErr != nil {
		return nil, f.composeErr
	}
	return &html.Document{HTML: "<html></html>", Selector: html.ContentSelector}, nil
}

func (f *fakeStages) Render(_ context.Context, _ *html.Document, dest string) (*snapshot.Image, error) {
	f.calls = append(f.calls, "render")
	f.gotDest = dest
	if f.renderErr != nil {
		return nil, f.renderErr
	}
	return &snapshot.Image{PNG: []byte("png"), Width: 1, Height: 1}, nil
}

func (f *fakeStages) snapshotter(t *testing.T) *Snapshotter {
	return &Snapshotter{
		Highlighter: f,
		Composer:    f,
		Renderer:    f,
		DebugLog:    iotest.Logger(t),
	}
}

func validRequest() *snapshot.Request {
	return &snapshot.Request{
		Code:           "fmt.Println(1)",
		Language:       "go",
		Theme:          "nord",
		LineNumbers:    true,
		Background:     snapshot.MustParseBackground("#000"),
		Padding:        12,
		WindowControls: true,
		Title:          "main.go",
		Shadow:         true,
		Destination:    "out.png",
		Lines:          snapshot.LineRange{Start: 2, End: 3},
	}
}

func TestSnapshotter_Snapshot(t *testing.T) {
	t.Parallel()

	stages := new(fakeStages)
	img, err := stages.snapshotter(t).Snapshot(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), img.PNG)

	assert.Equal(t, []string{"highlight", "compose", "render"}, stages.calls)
	assert.Equal(t, highlight.Source{
		Code:     "fmt.Println(1)",
		Language: "go",
		Theme:    "nord",
		Lines:    snapshot.LineRange{Start: 2, End: 3},
	}, stages.gotSource)
	assert.Equal(t, html.Layout{
		Padding:        12,
		Background:     snapshot.MustParseBackground("#000"),
		LineNumbers:    true,
		WindowControls: true,
		Title:          "main.go",
		Shadow:         true,
	}, stages.gotLayout)
	assert.Equal(t, "out.png", stages.gotDest)
}

func TestSnapshotter_Snapshot_failures(t *testing.T) {
	t.Parallel()

	sadness := errors.New("great sadness")

	tests := []struct {
		desc      string
		stages    *fakeStages
		edit      func(*snapshot.Request)
		wantCalls []string
		wantKind  error
	}{
		{
			desc:     "invalid request",
			stages:   new(fakeStages),
			edit:     func(r *snapshot.Request) { r.Padding = -1 },
			wantKind: snapshot.ErrInvalidRequest,
		},
		{
			desc:     "no destination",
			stages:   new(fakeStages),
			edit:     func(r *snapshot.Request) { r.Destination = "" },
			wantKind: snapshot.ErrInvalidRequest,
		},
		{
			desc: "highlight",
			stages: &fakeStages{
				highlightErr: snapshot.Wrap(snapshot.ErrHighlight, sadness),
			},
			wantCalls: []string{"highlight"},
			wantKind:  snapshot.ErrHighlight,
		},
		{
			desc: "compose",
			stages: &fakeStages{
				composeErr: snapshot.Wrap(snapshot.ErrInvalidRequest, sadness),
			},
			wantCalls: []string{"highlight", "compose"},
			wantKind:  snapshot.ErrInvalidRequest,
		},
		{
			desc: "render",
			stages: &fakeStages{
				renderErr: snapshot.Wrap(snapshot.ErrContentElementNotFound, sadness),
			},
			wantCalls: []string{"highlight", "compose", "render"},
			wantKind:  snapshot.ErrContentElementNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			t.Parallel()

			req := validRequest()
			if tt.edit != nil {
				tt.edit(req)
			}

			_, err := tt.stages.snapshotter(t).Snapshot(context.Background(), req)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantKind)
			assert.Equal(t, tt.wantCalls, tt.stages.calls)
		})
	}
}

func TestSnapshotter_realStages(t *testing.T) {
	t.Parallel()

	stages := new(fakeStages)
	var gotHTML string
	snap := Snapshotter{
		Highlighter: new(highlight.Highlighter),
		Composer:    new(html.Composer),
		Renderer: rendererFunc(func(_ context.Context, doc *html.Document, dest string) (*snapshot.Image, error) {
			gotHTML = doc.HTML
			return stages.Render(context.Background(), doc, dest)
		}),
	}

	req := validRequest()
	req.Lines = snapshot.LineRange{}
	_, err := snap.Snapshot(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, gotHTML, "Println")
	assert.Contains(t, gotHTML, `id="snapshot"`)
}

type rendererFunc func(context.Context, *html.Document, string) (*snapshot.Image, error)

func (f rendererFunc) Render(ctx context.Context, doc *html.Document, dest string) (*snapshot.Image, error) {
	return f(ctx, doc, dest)
}
