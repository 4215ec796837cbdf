package snapshot

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeImage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 12, 7))))

	img, err := DecodeImage(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 12, img.Width)
	assert.Equal(t, 7, img.Height)
	assert.Equal(t, buf.Bytes(), img.PNG)
}

func TestDecodeImage_errors(t *testing.T) {
	t.Parallel()

	t.Run("not a png", func(t *testing.T) {
		t.Parallel()

		_, err := DecodeImage([]byte("GIF89a"))
		assert.ErrorContains(t, err, "decode png")
	})

	t.Run("truncated", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 4, 4))))

		_, err := DecodeImage(buf.Bytes()[:12])
		assert.ErrorContains(t, err, "decode png")
	})
}
