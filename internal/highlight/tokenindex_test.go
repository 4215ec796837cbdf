package highlight

import (
	"testing"

	chroma "github.com/alecthomas/chroma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIndex(t *testing.T) {
	t.Parallel()

	src := []byte("func foo() (int, error) {\n\treturn 42, nil\n}\n")
	tokens, err := GoLexer.Lex(src)
	require.NoError(t, err)

	tidx := NewTokenIndex(tokens)

	tests := []struct {
		desc       string
		start, end int
		want       []string

		// Type of the first token, if any.
		firstType chroma.TokenType
	}{
		{
			desc:      "exact boundaries",
			start:     0,
			end:       10,
			want:      []string{"func", " ", "foo", "()"},
			firstType: chroma.KeywordDeclaration,
		},
		{
			desc:      "cut leading token",
			start:     1,
			end:       10,
			want:      []string{"unc", " ", "foo", "()"},
			firstType: chroma.KeywordDeclaration,
		},
		{
			desc:      "cut trailing token",
			start:     0,
			end:       7,
			want:      []string{"func", " ", "fo"},
			firstType: chroma.KeywordDeclaration,
		},
		{
			desc:      "inside one token",
			start:     6,
			end:       8,
			want:      []string{"oo"},
			firstType: chroma.NameFunction,
		},
		{
			desc:  "empty range",
			start: 3,
			end:   3,
		},
		{
			desc:  "start out of range",
			start: 75,
			end:   100,
		},
		{
			desc:      "hit end of src",
			start:     38,
			end:       len(src),
			want:      []string{"nil", "\n", "}", "\n"},
			firstType: chroma.KeywordConstant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			t.Parallel()

			got := tidx.Slice(tt.start, tt.end)
			var values []string
			for _, tok := range got {
				values = append(values, tok.Value)
			}
			assert.Equal(t, tt.want, values)
			if len(got) > 0 {
				assert.Equal(t, tt.firstType, got[0].Type)
			}
		})
	}
}
