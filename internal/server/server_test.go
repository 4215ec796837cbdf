package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.abhg.dev/codesnap/internal/highlight"
	"go.abhg.dev/codesnap/internal/iotest"
	"go.abhg.dev/codesnap/internal/snapshot"
)

type fakeSnapshotter struct {
	err error

	// Set by Snapshot.
	got *snapshot.Request
	// Whether the destination directory existed during Snapshot.
	dirExisted bool
}

func (f *fakeSnapshotter) Snapshot(_ context.Context, req *snapshot.Request) (*snapshot.Image, error) {
	f.got = req
	if _, err := os.Stat(filepath.Dir(req.Destination)); err == nil {
		f.dirExisted = true
	}
	if f.err != nil {
		return nil, f.err
	}
	return &snapshot.Image{PNG: []byte("png!"), Width: 1, Height: 1}, nil
}

func newTestServer(t *testing.T, snap Snapshotter) *Server {
	return &Server{
		Snapshotter: snap,
		Defaults: snapshot.Request{
			Theme:       "dark",
			LineNumbers: true,
			Padding:     40,
			Background:  snapshot.MustParseBackground(snapshot.DefaultBackground),
		},
		TempDir: t.TempDir(),
		Log:     iotest.Logger(t),
	}
}

func TestServer_themes(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, new(fakeSnapshotter))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/themes", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	var want []string
	for _, theme := range highlight.Themes() {
		want = append(want, theme.String())
	}
	assert.Equal(t, want, got)
	assert.Equal(t, "dark", got[0])
}

func TestServer_snapshot(t *testing.T) {
	t.Parallel()

	snap := new(fakeSnapshotter)
	srv := newTestServer(t, snap)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/snapshot",
		strings.NewReader(`{
			"code": "package main",
			"theme": "nord",
			"lineNumbers": false,
			"startLine": 2,
			"background": "linear-gradient(#000, #fff)",
			"windowControls": true,
			"title": "main.go"
		}`)))

	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "png!", rec.Body.String())

	got := snap.got
	require.NotNil(t, got)
	assert.Equal(t, "package main", got.Code)
	assert.Equal(t, "auto", got.Language)
	assert.Equal(t, "nord", got.Theme)
	assert.False(t, got.LineNumbers)
	assert.Equal(t, snapshot.LineRange{Start: 2}, got.Lines)
	assert.Equal(t, snapshot.Gradient, got.Background.Kind())
	assert.Equal(t, 40, got.Padding, "padding should use the default")
	assert.True(t, got.WindowControls)
	assert.Equal(t, "main.go", got.Title)
	assert.False(t, got.Shadow)

	assert.True(t, snap.dirExisted, "destination directory should exist while rendering")
	assert.True(t, strings.HasPrefix(got.Destination, srv.TempDir))
	_, err := os.Stat(filepath.Dir(got.Destination))
	assert.ErrorIs(t, err, os.ErrNotExist, "destination directory should be removed")
}

func TestServer_snapshotLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		desc string
		give string
		want snapshot.LineRange
	}{
		{
			desc: "absent",
			give: `{"code": "a\nb\nc\n"}`,
		},
		{
			desc: "end only",
			give: `{"code": "a\nb\nc\n", "endLine": 2}`,
			want: snapshot.LineRange{Start: 1, End: 2},
		},
		{
			desc: "start only",
			give: `{"code": "a\nb\nc\n", "startLine": 2}`,
			want: snapshot.LineRange{Start: 2},
		},
		{
			desc: "both",
			give: `{"code": "a\nb\nc\n", "startLine": 2, "endLine": 3}`,
			want: snapshot.LineRange{Start: 2, End: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			t.Parallel()

			snap := new(fakeSnapshotter)
			srv := newTestServer(t, snap)

			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/snapshot",
				strings.NewReader(tt.give)))
			require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

			got := snap.got
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Lines)
			assert.NoError(t, got.Validate())
		})
	}
}

func TestServer_snapshotErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		desc     string
		give     string
		err      error
		wantCode int
		wantBody string
	}{
		{
			desc:     "bad json",
			give:     `{"code":`,
			wantCode: http.StatusBadRequest,
			wantBody: "invalid request body",
		},
		{
			desc:     "unknown field",
			give:     `{"code": "x", "colour": "red"}`,
			wantCode: http.StatusBadRequest,
			wantBody: "colour",
		},
		{
			desc:     "no code",
			give:     `{"theme": "dark"}`,
			wantCode: http.StatusBadRequest,
			wantBody: "code is required",
		},
		{
			desc:     "bad background",
			give:     `{"code": "x", "background": "red; color: blue"}`,
			wantCode: http.StatusBadRequest,
			wantBody: "background",
		},
		{
			desc:     "invalid request",
			give:     `{"code": "x", "padding": -1}`,
			err:      snapshot.Errorf(snapshot.ErrInvalidRequest, "padding must not be negative"),
			wantCode: http.StatusBadRequest,
			wantBody: "padding must not be negative",
		},
		{
			desc:     "pipeline failure",
			give:     `{"code": "x"}`,
			err:      snapshot.Wrap(snapshot.ErrSurfaceInit, errors.New("great sadness")),
			wantCode: http.StatusInternalServerError,
			wantBody: "great sadness",
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			t.Parallel()

			srv := newTestServer(t, &fakeSnapshotter{err: tt.err})
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/snapshot", strings.NewReader(tt.give)))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestServer_methodNotAllowed(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, new(fakeSnapshotter))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/snapshot", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServer_Serve(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	srv := newTestServer(t, new(fakeSnapshotter))
	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx, ln)
	}()

	res, err := http.Get("http://" + ln.Addr().String() + "/themes")
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.NoError(t, res.Body.Close())
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), `"dark"`)

	cancel()
	assert.NoError(t, <-done)
}
