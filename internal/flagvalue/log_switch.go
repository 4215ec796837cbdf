package flagvalue

import (
	"flag"
	"io"
	"os"
	"path/filepath"

	"braces.dev/errtrace"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Limits for log files created by [LogSwitch].
const (
	_logMaxSizeMB  = 10
	_logMaxBackups = 3
)

// LogSwitch is a flag that accepts both "-x" and "-x=path".
// Without a path, logs go to a fallback writer.
// With one, they go to a size-rotated log file at that path.
type LogSwitch string

var _ flag.Getter = (*LogSwitch)(nil)

// Get returns the path to the log file
// or '-' if no value was specified.
func (ls *LogSwitch) Get() any { return string(*ls) }

// String returns the path to the log file
// or '-' if no value was specified.
func (ls *LogSwitch) String() string {
	return string(*ls)
}

// IsBoolFlag marks this as a flag
// that doesn't require a value.
func (*LogSwitch) IsBoolFlag() bool {
	return true
}

// Set receives the value for this flag.
func (ls *LogSwitch) Set(v string) error {
	switch v {
	case "true":
		v = "-"
	case "false":
		v = ""
	}
	*ls = LogSwitch(v)
	return nil
}

// Bool reports whether this flag was set with any value.
func (ls *LogSwitch) Bool() bool {
	return len(*ls) > 0
}

// Create opens the destination for this flag,
// and returns an io.Writer to it and a function to close it.
//
// This has three possible behaviors:
//
//   - the flag wasn't passed in: returns an [io.Discard]
//   - the flag was passed without a value: returns the provided fallback
//   - the flag was passed with a value: returns a rotating log file
func (ls *LogSwitch) Create(fallback io.Writer) (w io.Writer, close func() error, err error) {
	switch *ls {
	case "":
		return io.Discard, nopClose, nil
	case "-":
		return fallback, nopClose, nil
	default:
		path := string(*ls)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, errtrace.Wrap(err)
		}
		f := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    _logMaxSizeMB,
			MaxBackups: _logMaxBackups,
		}
		return f, f.Close, nil
	}
}

func nopClose() error { return nil }
