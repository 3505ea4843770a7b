package glyph

import (
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Glyph is one shaped rune.
type Glyph struct {
	Pix      []byte // Width*Height coverage values, row-major
	Width    int
	Height   int
	Left     int // horizontal bearing from the cursor to the first column
	Top      int // rows from the baseline up to the first row (positive = above)
	AdvanceX int
	AdvanceY int
}

// Shaper turns a rune into a glyph bitmap.
type Shaper interface {
	Shape(r rune) (Glyph, error)
}

// FaceShaper shapes runes with a golang.org/x/image font face.
// A face is not safe for concurrent use, and neither is FaceShaper.
type FaceShaper struct {
	face font.Face
}

// NewFaceShaper wraps face.
func NewFaceShaper(face font.Face) *FaceShaper {
	return &FaceShaper{face: face}
}

// Shape renders r at the origin and copies its coverage mask.
func (s *FaceShaper) Shape(r rune) (Glyph, error) {
	dr, mask, maskp, advance, ok := s.face.Glyph(fixed.Point26_6{}, r)
	if !ok {
		return Glyph{}, fmt.Errorf("glyph: no glyph for %q", r)
	}

	g := Glyph{
		Width:    dr.Dx(),
		Height:   dr.Dy(),
		Left:     dr.Min.X,
		Top:      -dr.Min.Y,
		AdvanceX: advance.Round(),
	}
	if g.Width <= 0 || g.Height <= 0 {
		g.Width, g.Height = 0, 0
		return g, nil
	}

	g.Pix = make([]byte, g.Width*g.Height)
	if alpha, ok := mask.(*image.Alpha); ok {
		for y := range g.Height {
			off := alpha.PixOffset(maskp.X, maskp.Y+y)
			copy(g.Pix[y*g.Width:(y+1)*g.Width], alpha.Pix[off:off+g.Width])
		}
		return g, nil
	}
	for y := range g.Height {
		for x := range g.Width {
			_, _, _, a := mask.At(maskp.X+x, maskp.Y+y).RGBA()
			g.Pix[y*g.Width+x] = uint8(a >> 8)
		}
	}
	return g, nil
}
