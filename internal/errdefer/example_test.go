package errdefer_test

import (
	"fmt"
	"os"
	"path/filepath"

	"go.abhg.dev/codesnap/internal/errdefer"
)

func writeDraft(dir string, data []byte) (_ string, err error) {
	f, err := os.CreateTemp(dir, "draft-*.png")
	if err != nil {
		return "", err
	}
	defer errdefer.Close(&err, f)
	defer errdefer.OnError(&err, func() error {
		return os.Remove(f.Name())
	})
	// NOTE: err must be a named return.

	if _, err := f.Write(data); err != nil {
		return "", err
	}
	return filepath.Base(f.Name()), nil
}

// This is a contrived example
// but to demonstrate errdefer,
// we need a function that returns an error.
func ExampleClose() {
	dir, err := os.MkdirTemp("", "errdefer")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	name, err := writeDraft(dir, []byte("hello"))
	if err != nil {
		panic(err)
	}
	fmt.Println(filepath.Ext(name))
	// Output: .png
}
