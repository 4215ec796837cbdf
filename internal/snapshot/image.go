package snapshot

import (
	"bytes"
	"fmt"
	"image/png"
)

// Image is a captured PNG.
type Image struct {
	PNG []byte

	// Dimensions in pixels.
	Width, Height int
}

// DecodeImage reads the dimensions of a PNG.
// It fails if either dimension is zero.
func DecodeImage(bs []byte) (*Image, error) {
	cfg, err := png.DecodeConfig(bytes.NewReader(bs))
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("empty image: %dx%d", cfg.Width, cfg.Height)
	}
	return &Image{
		PNG:    bs,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}
