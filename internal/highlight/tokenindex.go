package highlight

import (
	"sort"

	chroma "github.com/alecthomas/chroma/v2"
)

// TokenIndex is a searchable collection of tokens.
type TokenIndex struct {
	tokens []chroma.Token
	starts []int // start offset in src of tokens[i]
	ends   []int // end offset in src of tokens[i]
}

// NewTokenIndex builds a token index over the tokens of some source code.
// The tokens must cover the source without gaps.
func NewTokenIndex(tokens []chroma.Token) *TokenIndex {
	starts := make([]int, len(tokens))
	ends := make([]int, len(tokens))
	for i, t := range tokens {
		var start int
		if i > 0 {
			start = ends[i-1]
		}
		starts[i] = start
		ends[i] = start + len(t.Value)
	}

	return &TokenIndex{
		tokens: tokens,
		starts: starts,
		ends:   ends,
	}
}

// Slice returns the tokens covering the source range [start, end).
//
// Tokens that straddle start or end are cut at the boundary
// and keep their type.
func (ts *TokenIndex) Slice(start, end int) []chroma.Token {
	if start >= end {
		return nil
	}

	// First token that ends after start.
	// Zero-width tokens at start are dropped.
	idx := sort.SearchInts(ts.ends, start+1)

	var out []chroma.Token
	for ; idx < len(ts.tokens) && ts.starts[idx] < end; idx++ {
		tok := ts.tokens[idx]
		lo := max(start-ts.starts[idx], 0)
		hi := min(end-ts.starts[idx], len(tok.Value))
		tok.Value = tok.Value[lo:hi]
		out = append(out, tok)
	}
	return out
}
