// Package linebuf provides line-buffered IO utilities.
package linebuf

import (
	"bytes"
	"io"
	"log"
	"sync"
)

// Writer returns an io.Writer that splits its input into lines,
// calling fn for each line without its line terminator.
//
// Partial lines are held until the rest of the line arrives
// or done is called.
func Writer(fn func(line string)) (_ io.Writer, done func()) {
	w := writer{writeLine: fn}
	return &w, w.flush
}

// Logger returns an io.Writer that prints each line written to it
// to the given logger with a prefix.
func Logger(l *log.Logger, prefix string) (_ io.Writer, done func()) {
	return Writer(func(line string) {
		l.Print(prefix + line)
	})
}

type writer struct {
	writeLine func(string)

	mu   sync.Mutex
	buff bytes.Buffer // partial line from an earlier write
}

func (w *writer) Write(bs []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	total := len(bs)
	for len(bs) > 0 {
		idx := bytes.IndexByte(bs, '\n')
		if idx < 0 {
			w.buff.Write(bs)
			break
		}

		var line []byte
		line, bs = bs[:idx], bs[idx+1:]
		if w.buff.Len() > 0 {
			w.buff.Write(line)
			line = w.buff.Bytes()
		}
		w.writeLine(string(bytes.TrimSuffix(line, []byte{'\r'})))
		w.buff.Reset()
	}
	return total, nil
}

func (w *writer) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.buff.Len() > 0 {
		w.writeLine(w.buff.String())
		w.buff.Reset()
	}
}
