// codesnap renders source code into PNG images
// of a window with syntax highlighting.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"braces.dev/errtrace"
	"go.abhg.dev/codesnap/internal/errdefer"
	"go.abhg.dev/codesnap/internal/flagvalue"
	"go.abhg.dev/codesnap/internal/highlight"
	"go.abhg.dev/codesnap/internal/html"
	"go.abhg.dev/codesnap/internal/render"
	"go.abhg.dev/codesnap/internal/server"
	"go.abhg.dev/codesnap/internal/sliceutil"
	"go.abhg.dev/codesnap/internal/snapshot"
)

func main() {
	cmd := mainCmd{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
	os.Exit(cmd.Run(os.Args[1:]))
}

// _stdinTitle is the default title for code read from stdin.
const _stdinTitle = "Code"

// mainCmd is the actual entry point to the program.
type mainCmd struct {
	Stdin  io.Reader // == os.Stdin
	Stdout io.Writer // == os.Stdout
	Stderr io.Writer // == os.Stderr

	// Browser renders snapshots.
	// Defaults to a Chrome configured from the command line.
	Browser render.Browser

	log      *log.Logger
	debugLog *log.Logger // nil unless -debug was set
}

func (cmd *mainCmd) Run(args []string) (exitCode int) {
	cmd.log = log.New(cmd.Stderr, "", 0)

	opts, err := (&cliParser{
		Stdout: cmd.Stdout,
		Stderr: cmd.Stderr,
	}).Parse(args)
	if err != nil {
		// '$cmd -h' should exit with zero.
		if errors.Is(err, errHelp) {
			return 0
		}
		// No need to print anything.
		// Parse prints messages.
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.run(ctx, opts); err != nil {
		cmd.log.Printf("codesnap: %v", err)
		return 1
	}
	return 0
}

func (cmd *mainCmd) run(ctx context.Context, opts *params) (err error) {
	debugOut, closeDebug, err := opts.Debug.Create(cmd.Stderr)
	if err != nil {
		return errtrace.Wrap(fmt.Errorf("open debug log: %w", err))
	}
	defer errdefer.Run(&err, closeDebug)
	if opts.Debug.Bool() {
		cmd.debugLog = log.New(debugOut, "", log.Ltime|log.Lmicroseconds)
	}

	switch {
	case opts.Themes:
		return cmd.listThemes()
	case opts.Serve != "":
		return cmd.serve(ctx, opts)
	case opts.OutDir != "":
		return cmd.snapshotAll(ctx, opts)
	default:
		return cmd.snapshotOne(ctx, opts)
	}
}

func (cmd *mainCmd) listThemes() error {
	for _, t := range highlight.Themes() {
		if _, err := fmt.Fprintln(cmd.Stdout, t); err != nil {
			return errtrace.Wrap(err)
		}
	}
	return nil
}

func (cmd *mainCmd) newSnapshotter(opts *params) *Snapshotter {
	browser := cmd.Browser
	if browser == nil {
		flags := sliceutil.Transform(opts.ChromeFlags, func(kv flagvalue.KeyValue) string {
			return kv.String()
		})
		browser = &render.Chrome{
			Bin:       opts.Chrome,
			RemoteURL: opts.ChromeURL,
			NoSandbox: opts.NoSandbox,
			Flags:     flags,
			Width:     opts.Width,
			Scale:     opts.Scale,
			DebugLog:  cmd.debugLog,
		}
	}

	return &Snapshotter{
		Highlighter: new(highlight.Highlighter),
		Composer:    new(html.Composer),
		Renderer: &render.Engine{
			Browser:     browser,
			LoadTimeout: opts.Timeout,
			Scale:       opts.Scale,
			DebugLog:    cmd.debugLog,
		},
		DebugLog: cmd.debugLog,
	}
}

func (cmd *mainCmd) snapshotOne(ctx context.Context, opts *params) error {
	input := opts.Inputs[0]

	var (
		req *snapshot.Request
		err error
	)
	if input == "-" {
		cmd.log.Printf("Reading stdin...")
		req, err = cmd.readStdin(opts)
	} else {
		cmd.log.Printf("Reading %v...", input)
		req, err = readFile(opts, input)
	}
	if err != nil {
		return errtrace.Wrap(err)
	}
	req.Destination = opts.Output

	if !req.Lines.IsZero() {
		cmd.log.Printf("Extracting lines %v", req.Lines)
	}
	cmd.log.Printf("Language: %v", req.Language)
	cmd.log.Printf("Theme: %v", req.Theme)

	img, err := cmd.newSnapshotter(opts).Snapshot(ctx, req)
	if err != nil {
		return errtrace.Wrap(err)
	}
	cmd.debugf("captured %vx%v image", img.Width, img.Height)

	fmt.Fprintf(cmd.Stdout, "Snapshot saved to: %v\n", req.Destination)
	return nil
}

func (cmd *mainCmd) readStdin(opts *params) (*snapshot.Request, error) {
	bs, err := io.ReadAll(cmd.Stdin)
	if err != nil {
		return nil, errtrace.Wrap(fmt.Errorf("read stdin: %w", err))
	}
	if len(strings.TrimSpace(string(bs))) == 0 {
		return nil, errtrace.Wrap(errors.New("no input received from stdin"))
	}
	return opts.request(string(bs), ""), nil
}

func readFile(opts *params, path string) (*snapshot.Request, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errtrace.Wrap(fmt.Errorf("file not found: %v", path))
		}
		return nil, errtrace.Wrap(err)
	}
	return opts.request(string(bs), path), nil
}

// request builds a request for the given code
// from the command line options.
//
// path is the file the code was read from,
// or empty if it was read from stdin.
// The destination is left unset.
func (p *params) request(code, path string) *snapshot.Request {
	lang := p.Language
	if lang == "" {
		if path == "" {
			lang = "auto"
		} else {
			lang = languageFor(path)
		}
	}

	title := p.Title
	if title == "" {
		if path == "" {
			title = _stdinTitle
		} else {
			title = filepath.Base(path)
		}
	}

	return &snapshot.Request{
		Code:           code,
		Language:       lang,
		Theme:          p.Theme,
		LineNumbers:    p.LineNumbers,
		Background:     p.Background.Background,
		Padding:        p.Padding,
		WindowControls: p.WindowControls,
		Title:          title,
		Shadow:         p.Shadow,
		Lines:          p.Lines(),
	}
}

func (cmd *mainCmd) serve(ctx context.Context, opts *params) error {
	ln, err := net.Listen("tcp", opts.Serve)
	if err != nil {
		return errtrace.Wrap(err)
	}

	defaults := opts.request("", "")
	defaults.Title = opts.Title

	srv := server.Server{
		Snapshotter: cmd.newSnapshotter(opts),
		Defaults:    *defaults,
		Log:         cmd.log,
	}
	cmd.log.Printf("Serving snapshots on http://%v", ln.Addr())
	return errtrace.Wrap(srv.Serve(ctx, ln))
}

func (cmd *mainCmd) debugf(format string, args ...any) {
	if cmd.debugLog != nil {
		cmd.debugLog.Printf(format, args...)
	}
}
