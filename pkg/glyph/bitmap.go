package glyph

import (
	"image"

	"github.com/matzehuels/tilerow/pkg/texture"
)

// Bitmap is a rasterized string: one coverage byte per pixel.
// len(Pix) == Width*Height always holds.
type Bitmap struct {
	Pix    []byte
	Width  int
	Height int
}

// Empty reports whether the bitmap has no pixels.
func (b Bitmap) Empty() bool { return b.Width == 0 || b.Height == 0 }

// At returns the coverage at (x, y), or 0 outside the bitmap.
func (b Bitmap) At(x, y int) byte {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return 0
	}
	return b.Pix[y*b.Width+x]
}

// Image returns the bitmap as a grayscale image sharing Pix.
func (b Bitmap) Image() *image.Gray {
	return &image.Gray{
		Pix:    b.Pix,
		Stride: b.Width,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// Pixels returns the bitmap as a single-channel texture upload.
func (b Bitmap) Pixels() texture.Pixels {
	return texture.Pixels{Data: b.Pix, Width: b.Width, Height: b.Height, Channels: 1}
}
