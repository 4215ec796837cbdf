// Package html composes highlighted code into a standalone HTML document
// ready to be rendered by a browser.
package html

import (
	"bytes"
	"embed"
	"html/template"

	"braces.dev/errtrace"
	"go.abhg.dev/codesnap/internal/highlight"
	"go.abhg.dev/codesnap/internal/snapshot"
)

// ContentSelector selects the element of a composed document
// that should be captured.
const ContentSelector = "#snapshot"

const (
	// HeaderHeight is the height in pixels of the window header,
	// including its bottom border.
	HeaderHeight = 40

	// CodePadding is the padding in pixels around the code
	// inside the window.
	// It does not depend on the outer padding.
	CodePadding = 20

	// BoxShadow is the shadow drawn under the window
	// when shadows are enabled.
	BoxShadow = "0 20px 68px rgba(0, 0, 0, 0.55)"

	_radius       = 12
	_windowRadius = 8
)

var (
	//go:embed tmpl/*.html
	_tmplFS embed.FS

	_snapshotTmpl = template.Must(
		template.New("snapshot.html").
			Funcs(template.FuncMap{"background": backgroundRule}).
			ParseFS(_tmplFS, "tmpl/snapshot.html"),
	)
)

// Layout specifies how highlighted code is framed.
type Layout struct {
	// Padding in pixels between the edge of the image and the window.
	Padding int

	// Background painted behind the window.
	Background snapshot.Background

	// LineNumbers controls whether line numbers are visible.
	LineNumbers bool

	// WindowControls adds a window header with
	// three dots and the Title.
	WindowControls bool

	// Title shown in the window header.
	// Ignored without WindowControls.
	Title string

	// Shadow draws a drop shadow under the window.
	Shadow bool
}

// Document is a complete HTML page.
type Document struct {
	// HTML source of the page.
	HTML string

	// Selector for the element holding the snapshot.
	Selector string
}

// Composer builds HTML documents from highlighted code.
type Composer struct{}

// Compose builds a standalone HTML document
// that frames the given code with the layout.
//
// Identical inputs produce identical documents.
func (*Composer) Compose(code *highlight.Document, layout Layout) (*Document, error) {
	if layout.Padding < 0 {
		return nil, snapshot.Errorf(snapshot.ErrInvalidRequest, "padding must not be negative: %v", layout.Padding)
	}
	if layout.Background.IsZero() {
		return nil, snapshot.Errorf(snapshot.ErrInvalidRequest, "background is required")
	}

	data := struct {
		Layout

		Code     template.HTML
		ThemeCSS template.CSS

		Radius       int
		WindowRadius int
		HeaderHeight int
		CodePadding  int
		BoxShadow    template.CSS
	}{
		Layout:       layout,
		Code:         code.Markup,
		ThemeCSS:     code.CSS,
		Radius:       _radius,
		WindowRadius: _windowRadius,
		HeaderHeight: HeaderHeight,
		CodePadding:  CodePadding,
		BoxShadow:    BoxShadow,
	}

	var buff bytes.Buffer
	if err := _snapshotTmpl.Execute(&buff, data); err != nil {
		return nil, errtrace.Wrap(err)
	}

	return &Document{
		HTML:     buff.String(),
		Selector: ContentSelector,
	}, nil
}

// backgroundRule renders the CSS declaration for a background.
// Backgrounds are validated when they're parsed
// so the value is trusted here.
func backgroundRule(bg snapshot.Background) template.CSS {
	switch bg.Kind() {
	case snapshot.Gradient:
		return template.CSS("background: " + bg.Value() + ";")
	default:
		return template.CSS("background-color: " + bg.Value() + ";")
	}
}
