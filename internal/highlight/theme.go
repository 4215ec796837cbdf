package highlight

import (
	"strings"

	chroma "github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
)

// Theme is a syntax highlighting theme.
type Theme int

// Supported themes.
const (
	ThemeDark Theme = iota
	ThemeLight
	ThemeMonokai
	ThemeNord
	ThemeDracula
	ThemeGitHubDark
	ThemeGitHubLight
	ThemeSolarizedDark
	ThemeSolarizedLight

	numThemes int = iota
)

// DefaultTheme is used in place of unknown themes.
const DefaultTheme = ThemeDark

// _themes maps each theme to its name
// and the Chroma style that implements it.
var _themes = [numThemes]struct {
	name  string
	style string
}{
	ThemeDark:           {"dark", "onedark"},
	ThemeLight:          {"light", "vs"},
	ThemeMonokai:        {"monokai", "monokai"},
	ThemeNord:           {"nord", "nord"},
	ThemeDracula:        {"dracula", "dracula"},
	ThemeGitHubDark:     {"github-dark", "github-dark"},
	ThemeGitHubLight:    {"github-light", "github"},
	ThemeSolarizedDark:  {"solarized-dark", "solarized-dark"},
	ThemeSolarizedLight: {"solarized-light", "solarized-light"},
}

// Themes returns all supported themes in a stable order.
func Themes() []Theme {
	ts := make([]Theme, numThemes)
	for i := range ts {
		ts[i] = Theme(i)
	}
	return ts
}

// LookupTheme finds a theme by name.
// Names are case-insensitive.
func LookupTheme(name string) (Theme, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, t := range _themes {
		if t.name == name {
			return Theme(i), true
		}
	}
	return DefaultTheme, false
}

// ResolveTheme finds a theme by name,
// falling back to [DefaultTheme] if the name is unknown.
func ResolveTheme(name string) Theme {
	t, _ := LookupTheme(name)
	return t
}

func (t Theme) valid() bool {
	return t >= 0 && int(t) < numThemes
}

// String returns the name of the theme.
func (t Theme) String() string {
	if !t.valid() {
		t = DefaultTheme
	}
	return _themes[t].name
}

// Style returns the Chroma style for this theme.
func (t Theme) Style() *chroma.Style {
	if !t.valid() {
		t = DefaultTheme
	}
	return styles.Get(_themes[t].style)
}
