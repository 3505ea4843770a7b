// Package fonts provides the font used to rasterize row titles.
//
// The Go Bold font ships inside golang.org/x/image, so titles render the
// same on every machine without a font file on disk.
package fonts

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
)

// Defaults match the title size used by the display layer.
const (
	DefaultSize = 40
	DefaultDPI  = 100
)

// TitleTTF returns the raw TTF data of the default title font.
func TitleTTF() []byte {
	return gobold.TTF
}

// Parsed default font (computed once on first access).
var (
	titleFont     *opentype.Font
	titleFontErr  error
	titleFontOnce sync.Once
)

// Title returns the parsed default title font.
func Title() (*opentype.Font, error) {
	titleFontOnce.Do(func() {
		titleFont, titleFontErr = opentype.Parse(gobold.TTF)
	})
	return titleFont, titleFontErr
}

// Face builds a font face at size points and dpi. Callers own the face and
// should Close it.
func Face(size, dpi float64) (font.Face, error) {
	f, err := Title()
	if err != nil {
		return nil, fmt.Errorf("fonts: parse title font: %w", err)
	}
	return newFace(f, size, dpi)
}

// FaceFromFile builds a face from a TTF/OTF file on disk.
func FaceFromFile(path string, size, dpi float64) (font.Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fonts: read %s: %w", path, err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("fonts: parse %s: %w", path, err)
	}
	return newFace(f, size, dpi)
}

func newFace(f *opentype.Font, size, dpi float64) (font.Face, error) {
	if size <= 0 {
		size = DefaultSize
	}
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
}
