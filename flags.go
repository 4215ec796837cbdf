package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/peterbourgon/ff/v3"
	"go.abhg.dev/codesnap/internal/flagvalue"
	"go.abhg.dev/codesnap/internal/highlight"
	"go.abhg.dev/codesnap/internal/render"
	"go.abhg.dev/codesnap/internal/snapshot"
)

// _version is the version of codesnap.
// Release builds set it with -ldflags.
var _version = "dev"

// _envPrefix prefixes environment variables that set flags.
const _envPrefix = "CODESNAP"

var (
	errHelp             = flag.ErrHelp
	errInvalidArguments = errors.New("invalid arguments")
)

// params holds all arguments for codesnap.
type params struct {
	version bool
	help    Help
	config  string

	Output string
	OutDir string
	Jobs   int

	Theme          string
	Language       string
	LineNumbers    bool
	StartLine      int
	EndLine        int
	Background     backgroundFlag
	Padding        int
	WindowControls bool
	Title          string
	Shadow         bool
	Scale          float64
	Width          int

	Chrome      string
	ChromeURL   string
	ChromeFlags []flagvalue.KeyValue
	NoSandbox   bool
	Timeout     time.Duration

	Themes bool
	Serve  string
	Debug  flagvalue.LogSwitch

	// Inputs holds the file to render, "-" for stdin,
	// or glob patterns with -out-dir.
	Inputs []string
}

// Lines is the range of lines selected by -start-line and -end-line.
func (p *params) Lines() snapshot.LineRange {
	if p.StartLine <= 1 && p.EndLine == 0 {
		return snapshot.LineRange{}
	}
	return snapshot.LineRange{Start: p.StartLine, End: p.EndLine}
}

// cliParser parses the command line arguments for codesnap.
type cliParser struct {
	Stdout io.Writer
	Stderr io.Writer
}

func (cmd *cliParser) newFlagSet() (*params, *flag.FlagSet) {
	flag := flag.NewFlagSet("codesnap", flag.ContinueOnError)
	// Parse reports errors itself.
	flag.SetOutput(io.Discard)
	flag.Usage = func() {}

	p := params{
		Background: backgroundFlag{
			Background: snapshot.MustParseBackground(snapshot.DefaultBackground),
		},
	}

	// Output:
	flag.StringVar(&p.Output, "out", "./code-snap.png", "")
	flag.StringVar(&p.OutDir, "out-dir", "", "")
	flag.IntVar(&p.Jobs, "jobs", 2, "")

	// Appearance:
	flag.StringVar(&p.Theme, "theme", highlight.DefaultTheme.String(), "")
	flag.StringVar(&p.Language, "lang", "", "")
	flag.BoolVar(&p.LineNumbers, "line-numbers", true, "")
	flag.IntVar(&p.StartLine, "start-line", 1, "")
	flag.IntVar(&p.EndLine, "end-line", 0, "")
	flag.Var(&p.Background, "bg", "")
	flag.IntVar(&p.Padding, "padding", 40, "")
	flag.BoolVar(&p.WindowControls, "window-controls", false, "")
	flag.StringVar(&p.Title, "title", "", "")
	flag.BoolVar(&p.Shadow, "shadow", false, "")
	flag.Float64Var(&p.Scale, "scale", 1, "")
	flag.IntVar(&p.Width, "width", render.DefaultWidth, "")

	// Browser:
	flag.StringVar(&p.Chrome, "chrome", "", "")
	flag.StringVar(&p.ChromeURL, "chrome-url", "", "")
	flag.Var(flagvalue.ListOf(&p.ChromeFlags), "chrome-flag", "")
	flag.BoolVar(&p.NoSandbox, "no-sandbox", false, "")
	flag.DurationVar(&p.Timeout, "timeout", render.DefaultLoadTimeout, "")

	// Program-level:
	flag.BoolVar(&p.Themes, "themes", false, "")
	flag.StringVar(&p.Serve, "serve", "", "")
	flag.StringVar(&p.config, "config", "", "")
	flag.Var(&p.Debug, "debug", "")
	flag.BoolVar(&p.version, "version", false, "")
	flag.Var(&p.help, "help", "")
	flag.Var(&p.help, "h", "")

	return &p, flag
}

func (cmd *cliParser) Parse(args []string) (*params, error) {
	p, flag := cmd.newFlagSet()
	err := ff.Parse(flag, args,
		ff.WithEnvVarPrefix(_envPrefix),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(func(r io.Reader, set func(name, value string) error) error {
			// Flags have been parsed by the time
			// the configuration file is read.
			return configParser(p.config)(r, set)
		}),
	)
	if err != nil {
		fmt.Fprintln(cmd.Stderr, err)
		UsageHelp.Write(cmd.Stderr)
		return nil, errInvalidArguments
	}
	args = flag.Args()

	if p.version {
		fmt.Fprintln(cmd.Stdout, "codesnap", _version)
		return nil, errHelp
	}

	if p.help == DefaultHelp && len(args) > 0 {
		// The user might have done "-h foo"
		// instead of "-h=foo".
		// If the argument is a known help topic,
		// take it.
		var h Help
		if err := h.Set(args[0]); err == nil {
			p.help = h
		}
	}

	switch p.help {
	case NoHelp:
		// proceed as usual
	default:
		if err := p.help.Write(cmd.Stderr); err != nil {
			fmt.Fprintln(cmd.Stderr, err)
		}
		return nil, errHelp
	}

	p.Inputs = args
	if err := p.validate(); err != nil {
		fmt.Fprintln(cmd.Stderr, err)
		UsageHelp.Write(cmd.Stderr)
		return nil, errInvalidArguments
	}

	return p, nil
}

func (p *params) validate() error {
	var errs []error

	switch {
	case p.Themes:
		// Inputs are ignored.
	case p.Serve != "":
		if len(p.Inputs) > 0 {
			errs = append(errs, errors.New("-serve does not accept input files"))
		}
	case p.OutDir != "":
		if len(p.Inputs) == 0 {
			errs = append(errs, errors.New("please provide at least one pattern"))
		}
	default:
		switch len(p.Inputs) {
		case 0:
			errs = append(errs, errors.New("please provide a file, or '-' to read from stdin"))
		case 1:
			// ok
		default:
			errs = append(errs, fmt.Errorf("too many inputs: %q; use -out-dir to render multiple files", p.Inputs))
		}
	}

	if p.StartLine < 1 {
		errs = append(errs, fmt.Errorf("-start-line must be at least 1, got %d", p.StartLine))
	}
	if p.EndLine != 0 && p.EndLine < p.StartLine {
		errs = append(errs, fmt.Errorf("-end-line %d is before -start-line %d", p.EndLine, p.StartLine))
	}
	if p.Padding < 0 {
		errs = append(errs, fmt.Errorf("-padding must not be negative, got %d", p.Padding))
	}
	if p.Jobs < 1 {
		errs = append(errs, fmt.Errorf("-jobs must be at least 1, got %d", p.Jobs))
	}
	if p.Scale <= 0 {
		errs = append(errs, fmt.Errorf("-scale must be positive, got %v", p.Scale))
	}
	if p.Width <= 0 {
		errs = append(errs, fmt.Errorf("-width must be positive, got %d", p.Width))
	}
	if p.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("-timeout must be positive, got %v", p.Timeout))
	}

	return errors.Join(errs...)
}

// backgroundFlag is a CSS background passed in with -bg.
// Values are validated as soon as they're set.
type backgroundFlag struct{ snapshot.Background }

var _ flag.Getter = (*backgroundFlag)(nil)

func (bf *backgroundFlag) Get() any { return bf.Background }

func (bf *backgroundFlag) String() string { return bf.Value() }

func (bf *backgroundFlag) Set(s string) error {
	bg, err := snapshot.ParseBackground(s)
	if err != nil {
		return err
	}
	bf.Background = bg
	return nil
}

