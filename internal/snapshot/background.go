package snapshot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gorilla/css/scanner"
	"github.com/lucasb-eyer/go-colorful"
)

// DefaultBackground is the background used when none is specified.
const DefaultBackground = "#1e1e1e"

// BackgroundKind specifies how a [Background] value is applied.
type BackgroundKind int

const (
	// Solid backgrounds are a single CSS color
	// applied as 'background-color'.
	Solid BackgroundKind = iota + 1

	// Gradient backgrounds are full CSS background expressions
	// applied verbatim as 'background'.
	Gradient
)

func (k BackgroundKind) String() string {
	switch k {
	case Solid:
		return "solid"
	case Gradient:
		return "gradient"
	default:
		return fmt.Sprintf("BackgroundKind(%d)", int(k))
	}
}

// Background is the resolved background of a snapshot.
// Build one with [ParseBackground].
type Background struct {
	kind  BackgroundKind
	value string
}

// ParseBackground classifies and validates a background specification.
//
// Values that mention "gradient" are gradients;
// everything else is a solid color.
// Values that would not survive as a single CSS declaration are rejected.
func ParseBackground(s string) (Background, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Background{}, Errorf(ErrInvalidRequest, "background is empty")
	}

	kind := Solid
	if strings.Contains(s, "gradient") {
		kind = Gradient
	}

	if err := checkCSSValue(s); err != nil {
		return Background{}, Errorf(ErrInvalidRequest, "background %q: %w", s, err)
	}
	if kind == Solid && strings.HasPrefix(s, "#") {
		if err := checkHexColor(s); err != nil {
			return Background{}, Errorf(ErrInvalidRequest, "background %q: %w", s, err)
		}
	}

	return Background{kind: kind, value: s}, nil
}

// MustParseBackground is like [ParseBackground]
// but panics if the value is invalid.
func MustParseBackground(s string) Background {
	bg, err := ParseBackground(s)
	if err != nil {
		panic(err)
	}
	return bg
}

// Kind reports whether this is a solid color or a gradient.
// It is zero for the zero Background.
func (b Background) Kind() BackgroundKind { return b.kind }

// Value is the CSS value of the background.
func (b Background) Value() string { return b.value }

// IsZero reports whether this background was never parsed.
func (b Background) IsZero() bool { return b.kind == 0 }

func (b Background) String() string {
	return fmt.Sprintf("%v(%v)", b.kind, b.value)
}

// checkCSSValue verifies that s tokenizes as a CSS value
// and cannot terminate the declaration or the style element it lands in.
func checkCSSValue(s string) error {
	if i := strings.IndexAny(s, ";{}<>"); i >= 0 {
		return fmt.Errorf("unexpected %q", s[i])
	}

	var depth int
	sc := scanner.New(s)
	for {
		tok := sc.Next()
		switch tok.Type {
		case scanner.TokenEOF:
			if depth != 0 {
				return errors.New("unbalanced parentheses")
			}
			return nil

		case scanner.TokenError:
			return errors.New(tok.Value)

		case scanner.TokenAtKeyword, scanner.TokenCDO, scanner.TokenCDC:
			return fmt.Errorf("unexpected %q", tok.Value)

		case scanner.TokenFunction:
			depth++

		case scanner.TokenChar:
			switch tok.Value {
			case "(":
				depth++
			case ")":
				depth--
				if depth < 0 {
					return errors.New("unbalanced parentheses")
				}
			}
		}
	}
}

// checkHexColor verifies #rgb, #rgba, #rrggbb, and #rrggbbaa colors.
func checkHexColor(s string) error {
	var rgb, alpha string
	switch len(s) {
	case 4, 7:
		rgb = s
	case 5, 9:
		n := (len(s) - 1) / 4
		rgb, alpha = s[:len(s)-n], s[len(s)-n:]
	default:
		return fmt.Errorf("%v is not a hex color", s)
	}

	if _, err := colorful.Hex(rgb); err != nil {
		return err
	}
	if alpha != "" {
		if _, err := strconv.ParseUint(alpha, 16, 8); err != nil {
			return fmt.Errorf("%v has a bad alpha channel: %w", s, err)
		}
	}
	return nil
}
