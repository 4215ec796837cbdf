// Package atomicfile writes files so that readers observe
// either the old contents or the new contents, never a partial write.
package atomicfile

import (
	"os"
	"path/filepath"

	"braces.dev/errtrace"
	"go.abhg.dev/codesnap/internal/errdefer"
)

// Write writes data to path through a temporary file
// in the same directory, renaming it into place once it's on disk.
//
// On failure, the temporary file is removed
// and an existing file at path is left untouched.
func Write(path string, data []byte, perm os.FileMode) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return errtrace.Wrap(err)
	}
	tmp := f.Name()
	defer errdefer.OnError(&err, func() error {
		_ = f.Close() // may already be closed
		return removeIfExists(tmp)
	})

	if _, err := f.Write(data); err != nil {
		return errtrace.Wrap(err)
	}
	if err := f.Sync(); err != nil {
		return errtrace.Wrap(err)
	}
	if err := f.Close(); err != nil {
		return errtrace.Wrap(err)
	}
	if err := os.Chmod(tmp, perm); err != nil {
		return errtrace.Wrap(err)
	}
	return errtrace.Wrap(os.Rename(tmp, path))
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errtrace.Wrap(err)
	}
	return nil
}
