package snapshot

import (
	"errors"
	"fmt"
)

// LineRange selects lines of the input to display.
// Lines are 1-indexed and the range is inclusive.
//
// The zero value selects all lines.
// An End of zero extends the range to the last line.
type LineRange struct {
	Start, End int
}

// IsZero reports whether this range selects the entire input.
func (r LineRange) IsZero() bool {
	return r == LineRange{}
}

// First is the number of the first selected line.
func (r LineRange) First() int {
	if r.Start < 1 {
		return 1
	}
	return r.Start
}

func (r LineRange) String() string {
	switch {
	case r.IsZero():
		return "all"
	case r.End == 0:
		return fmt.Sprintf("%d-", r.Start)
	default:
		return fmt.Sprintf("%d-%d", r.Start, r.End)
	}
}

func (r LineRange) validate() error {
	if r.IsZero() {
		return nil
	}
	if r.Start < 1 {
		return fmt.Errorf("start line must be at least 1, got %d", r.Start)
	}
	if r.End != 0 && r.End < r.Start {
		return fmt.Errorf("end line %d is before start line %d", r.End, r.Start)
	}
	return nil
}

// Request is a fully resolved request to snapshot some code.
//
// Requests are built by the caller and must not be modified
// once handed to the pipeline.
type Request struct {
	// Code to render.
	Code string

	// Language of the code.
	// Empty or "auto" means the language should be detected.
	Language string

	// Theme name. Unknown themes fall back to the default theme.
	Theme string

	// LineNumbers specifies whether line numbers are visible.
	LineNumbers bool

	// Background behind the window.
	Background Background

	// Padding around the window in pixels.
	Padding int

	// WindowControls adds a title bar with window controls.
	WindowControls bool

	// Title shown in the title bar.
	Title string

	// Shadow adds a drop shadow under the window.
	Shadow bool

	// Destination path of the PNG.
	Destination string

	// Lines of Code to display.
	Lines LineRange
}

// Validate reports whether this request is complete.
// Errors match [ErrInvalidRequest].
func (r *Request) Validate() error {
	var errs []error
	if r.Padding < 0 {
		errs = append(errs, fmt.Errorf("padding must not be negative, got %d", r.Padding))
	}
	if r.Background.IsZero() {
		errs = append(errs, errors.New("background is not set"))
	}
	if r.Destination == "" {
		errs = append(errs, errors.New("destination is not set"))
	}
	if err := r.Lines.validate(); err != nil {
		errs = append(errs, err)
	}
	return Wrap(ErrInvalidRequest, errors.Join(errs...))
}
