package highlight

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	chroma "github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"go.abhg.dev/codesnap/internal/snapshot"
)

// Source is code that should be highlighted.
type Source struct {
	Code string

	// Language of the code.
	// See [LexerFor] for how this is resolved.
	Language string

	// Theme name.
	// Unknown themes resolve to [DefaultTheme].
	Theme string

	// Lines of Code to include in the output.
	Lines snapshot.LineRange
}

// Document is highlighted source code.
type Document struct {
	// Markup is a <pre class="chroma"> element
	// holding one span.line per source line.
	// Each line holds a span.ln with its number
	// and a span.cl with the code.
	Markup template.HTML

	// CSS styles the classes used in Markup.
	CSS template.CSS

	// Lines is the number of lines in Markup.
	Lines int

	// Theme used to color the code.
	Theme Theme

	// Language the code was highlighted as.
	Language string
}

// Highlighter turns [Source] into HTML.
type Highlighter struct {
	// TabWidth is the number of columns a tab occupies.
	// Defaults to 4.
	TabWidth int
}

func (h *Highlighter) tabWidth() int {
	if h.TabWidth > 0 {
		return h.TabWidth
	}
	return 4
}

// Highlight renders the given source into HTML.
//
// Unknown themes and languages are not errors.
// Errors match [snapshot.ErrHighlight].
func (h *Highlighter) Highlight(src Source) (*Document, error) {
	code := normalize(src.Code)
	lexer := LexerFor(src.Language, code)
	theme := ResolveTheme(src.Theme)

	tokens, err := lexer.Lex(code)
	if err != nil {
		return nil, snapshot.Errorf(snapshot.ErrHighlight, "tokenize %v: %w", lexer.Name(), err)
	}
	if !src.Lines.IsZero() {
		tokens = selectLines(code, tokens, src.Lines)
	}
	if len(tokens) == 0 {
		tokens = []chroma.Token{{Type: chroma.Text, Value: "\n"}}
	}

	formatter := chromahtml.New(
		chromahtml.WithClasses(true),
		chromahtml.WithLineNumbers(true),
		chromahtml.BaseLineNumber(src.Lines.First()),
		chromahtml.TabWidth(h.tabWidth()),
	)

	style := theme.Style()
	var markup, css bytes.Buffer
	if err := formatter.Format(&markup, style, chroma.Literator(tokens...)); err != nil {
		return nil, snapshot.Errorf(snapshot.ErrHighlight, "format: %w", err)
	}
	if err := formatter.WriteCSS(&css, style); err != nil {
		return nil, snapshot.Errorf(snapshot.ErrHighlight, "write css: %w", err)
	}

	return &Document{
		Markup:   template.HTML(markup.String()),
		CSS:      template.CSS(css.String()),
		Lines:    len(chroma.SplitTokensIntoLines(tokens)),
		Theme:    theme,
		Language: lexer.Name(),
	}, nil
}

// normalize converts "\r\n" and lone "\r" line endings to '\n'
// and terminates the last line.
// Empty input becomes a single empty line.
func normalize(code string) []byte {
	code = strings.ReplaceAll(code, "\r\n", "\n")
	code = strings.ReplaceAll(code, "\r", "\n")
	if !strings.HasSuffix(code, "\n") {
		code += "\n"
	}
	return []byte(code)
}

// selectLines returns the tokens of the given lines of code.
// code must end with a newline.
func selectLines(code []byte, tokens []chroma.Token, lines snapshot.LineRange) []chroma.Token {
	// offsets[i] is where line i+1 starts.
	// The final entry is len(code).
	offsets := []int{0}
	for i, b := range code {
		if b == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	numLines := len(offsets) - 1

	first := lines.First()
	if first > numLines {
		return nil
	}
	last := lines.End
	if last == 0 || last > numLines {
		last = numLines
	}

	return NewTokenIndex(tokens).Slice(offsets[first-1], offsets[last])
}

func (d *Document) String() string {
	return fmt.Sprintf("%v lines of %v (%v)", d.Lines, d.Language, d.Theme)
}
