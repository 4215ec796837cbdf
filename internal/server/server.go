// Package server serves snapshots over HTTP.
//
// Two routes are available:
//
//	GET  /themes    names of the available themes, as JSON
//	POST /snapshot  renders the JSON request body into a PNG
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"braces.dev/errtrace"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.abhg.dev/codesnap/internal/highlight"
	"go.abhg.dev/codesnap/internal/sliceutil"
	"go.abhg.dev/codesnap/internal/snapshot"
	"golang.org/x/sync/errgroup"
)

const (
	// _maxRequestSize limits the size of request bodies.
	_maxRequestSize = 1 << 20 // 1 MiB

	_shutdownTimeout = 5 * time.Second
)

// Snapshotter renders snapshot requests.
type Snapshotter interface {
	Snapshot(context.Context, *snapshot.Request) (*snapshot.Image, error)
}

// Server handles snapshot requests over HTTP.
type Server struct {
	Snapshotter Snapshotter // required

	// Defaults fills in fields that requests leave out.
	// Its Code and Destination are ignored.
	Defaults snapshot.Request

	// TempDir holds images while they're being rendered.
	// Defaults to the system's temporary directory.
	TempDir string

	// Log receives a line for each request if non-nil.
	Log *log.Logger
}

// RegisterHTTP adds the server's routes to the given router.
func (s *Server) RegisterHTTP(r chi.Router) {
	r.Get("/themes", s.handleThemes)
	r.Post("/snapshot", s.handleSnapshot)
}

// Handler builds an [http.Handler] for the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if s.Log != nil {
		r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
			Logger:  s.Log,
			NoColor: true,
		}))
	}
	r.Use(middleware.Recoverer)
	s.RegisterHTTP(r)
	return r
}

// Serve accepts connections on ln until ctx is canceled.
// In-flight requests are given a few seconds to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	var g errgroup.Group
	g.Go(func() error {
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return errtrace.Wrap(err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), _shutdownTimeout)
		defer cancel()
		return errtrace.Wrap(srv.Shutdown(shutdownCtx))
	})
	return errtrace.Wrap(g.Wait())
}

func (s *Server) handleThemes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, sliceutil.Transform(highlight.Themes(), highlight.Theme.String))
}

// snapshotRequest is the body of POST /snapshot.
// Fields left out take the server's defaults.
type snapshotRequest struct {
	Code           string  `json:"code"`
	Language       *string `json:"language"`
	Theme          *string `json:"theme"`
	LineNumbers    *bool   `json:"lineNumbers"`
	StartLine      *int    `json:"startLine"`
	EndLine        *int    `json:"endLine"`
	Background     *string `json:"background"`
	Padding        *int    `json:"padding"`
	WindowControls *bool   `json:"windowControls"`
	Title          *string `json:"title"`
	Shadow         *bool   `json:"shadow"`
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, _maxRequestSize)

	var body snapshotRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	req, err := s.request(&body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	dir, err := os.MkdirTemp(s.TempDir, "codesnap-*")
	if err != nil {
		s.logf("create temporary directory: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			s.logf("clean up %v: %v", dir, err)
		}
	}()
	req.Destination = filepath.Join(dir, "snapshot.png")

	img, err := s.Snapshotter.Snapshot(r.Context(), req)
	if err != nil {
		if errors.Is(err, snapshot.ErrInvalidRequest) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.logf("snapshot: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(img.PNG)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(img.PNG); err != nil {
		s.logf("write response: %v", err)
	}
}

// request merges the body of a request with the server's defaults.
func (s *Server) request(body *snapshotRequest) (*snapshot.Request, error) {
	if body.Code == "" {
		return nil, errors.New("code is required")
	}

	req := s.Defaults
	req.Code = body.Code
	req.Destination = ""
	if req.Language == "" {
		req.Language = "auto"
	}

	setIfPresent(&req.Language, body.Language)
	setIfPresent(&req.Theme, body.Theme)
	setIfPresent(&req.LineNumbers, body.LineNumbers)
	setIfPresent(&req.Lines.Start, body.StartLine)
	setIfPresent(&req.Lines.End, body.EndLine)
	if req.Lines.Start == 0 && req.Lines.End != 0 {
		// The range is 1-based; an end alone starts at the first line.
		req.Lines.Start = 1
	}
	setIfPresent(&req.Padding, body.Padding)
	setIfPresent(&req.WindowControls, body.WindowControls)
	setIfPresent(&req.Title, body.Title)
	setIfPresent(&req.Shadow, body.Shadow)

	if body.Background != nil {
		bg, err := snapshot.ParseBackground(*body.Background)
		if err != nil {
			return nil, errtrace.Wrap(fmt.Errorf("background: %w", err))
		}
		req.Background = bg
	}
	if req.Background.IsZero() {
		req.Background = snapshot.MustParseBackground(snapshot.DefaultBackground)
	}

	return &req, nil
}

func (s *Server) logf(format string, args ...any) {
	if s.Log != nil {
		s.Log.Printf(format, args...)
	}
}

func setIfPresent[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
