package snapshot

import (
	"errors"
	"fmt"
)

// Kinds of failures a render may report.
// Match them with [errors.Is].
var (
	ErrInvalidRequest         = errors.New("invalid request")
	ErrHighlight              = errors.New("highlight failed")
	ErrSurfaceInit            = errors.New("rendering surface unavailable")
	ErrContentElementNotFound = errors.New("content element not found")
	ErrBoundingBoxUnavailable = errors.New("bounding box unavailable")
	ErrCapture                = errors.New("capture failed")
	ErrWrite                  = errors.New("write failed")
	ErrRelease                = errors.New("surface release failed")
)

// Error is a failure of a specific kind.
//
// It matches both its Kind and the underlying error with [errors.Is].
type Error struct {
	Kind error // one of the Err* values above
	Err  error // optional cause
}

var _ error = (*Error)(nil)

// Errorf builds an [Error] of the given kind
// with a printf-style cause.
func Errorf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Wrap wraps err in an [Error] of the given kind.
// It returns nil if err is nil.
func Wrap(kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

// Unwrap returns the kind and the cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
