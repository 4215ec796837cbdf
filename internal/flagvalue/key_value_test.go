package flagvalue

import (
	"flag"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		desc string
		give string
		want KeyValue

		wantString string
	}{
		{
			desc:       "key only",
			give:       "disable-gpu",
			want:       KeyValue{Key: "disable-gpu"},
			wantString: "disable-gpu",
		},
		{
			desc:       "key and value",
			give:       "lang=en-US",
			want:       KeyValue{Key: "lang", Value: "en-US", HasValue: true},
			wantString: "lang=en-US",
		},
		{
			desc:       "leading dashes",
			give:       "--font-render-hinting=none",
			want:       KeyValue{Key: "font-render-hinting", Value: "none", HasValue: true},
			wantString: "font-render-hinting=none",
		},
		{
			desc:       "empty value",
			give:       "proxy-server=",
			want:       KeyValue{Key: "proxy-server", HasValue: true},
			wantString: "proxy-server=",
		},
		{
			desc:       "equals in value",
			give:       "host-rules=MAP * 127.0.0.1=x",
			want:       KeyValue{Key: "host-rules", Value: "MAP * 127.0.0.1=x", HasValue: true},
			wantString: "host-rules=MAP * 127.0.0.1=x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			t.Parallel()

			var kv KeyValue
			require.NoError(t, kv.Set(tt.give))
			assert.Equal(t, tt.want, kv)
			assert.Equal(t, tt.want, kv.Get())
			assert.Equal(t, tt.wantString, kv.String())
		})
	}
}

func TestKeyValue_errors(t *testing.T) {
	t.Parallel()

	for _, give := range []string{"", "=foo", "--", "  =x"} {
		var kv KeyValue
		assert.Error(t, kv.Set(give), "%q", give)
	}
}

func TestKeyValue_list(t *testing.T) {
	t.Parallel()

	fset := flag.NewFlagSet(t.Name(), flag.ContinueOnError)
	fset.SetOutput(io.Discard)

	var got []KeyValue
	fset.Var(ListOf(&got), "x", "")
	require.NoError(t, fset.Parse([]string{"-x", "a", "-x=b=c"}))

	assert.Equal(t, []KeyValue{
		{Key: "a"},
		{Key: "b", Value: "c", HasValue: true},
	}, got)
}
