package highlight

import (
	"strings"

	chroma "github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// GoLexer is a [Lexer] that recognizes Go.
var GoLexer Lexer = &chromaLexer{l: chroma.Coalesce(lexers.Go)}

// Lexer analyzes source code and generates a stream of tokens.
type Lexer interface {
	Name() string
	Lex(src []byte) ([]chroma.Token, error)
}

// chromaLexer builds a [Lexer] from a Chroma lexer.
type chromaLexer struct{ l chroma.Lexer }

// LexerFor finds a lexer for the named language.
//
// An empty name or "auto" picks a lexer by analyzing src.
// If nothing matches, a plain text lexer is returned.
func LexerFor(language string, src []byte) Lexer {
	var l chroma.Lexer
	switch name := strings.ToLower(strings.TrimSpace(language)); name {
	case "", "auto":
		l = lexers.Analyse(string(src))
	default:
		l = lexers.Get(name)
	}
	if l == nil {
		l = lexers.Fallback
	}
	return &chromaLexer{l: chroma.Coalesce(l)}
}

// Name of the language recognized by this lexer.
func (cl *chromaLexer) Name() string {
	return cl.l.Config().Name
}

// Lex lexically analyzes the given source code using Chroma.
func (cl *chromaLexer) Lex(src []byte) ([]chroma.Token, error) {
	return chroma.Tokenise(cl.l, nil, string(src))
}
