// Package iotest provides IO helpers for tests.
package iotest

import (
	"io"
	"log"
	"testing"

	"go.abhg.dev/codesnap/internal/linebuf"
)

// Writer builds an io.Writer that logs each line written to it
// to the given testing.TB.
func Writer(t testing.TB) io.Writer {
	w, done := linebuf.Writer(func(line string) {
		t.Logf("%s", line)
	})
	t.Cleanup(done)
	return w
}

// Logger builds a logger that writes to the given testing.TB.
func Logger(t testing.TB) *log.Logger {
	return log.New(Writer(t), "", 0)
}
