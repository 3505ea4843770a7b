package glyph

import (
	"slices"

	"github.com/charmbracelet/log"
)

// Rasterizer composites shaped glyphs into a [Bitmap].
type Rasterizer struct {
	shaper Shaper
	logger *log.Logger
}

// NewRasterizer creates a Rasterizer. A nil logger uses log.Default().
func NewRasterizer(shaper Shaper, logger *log.Logger) *Rasterizer {
	if logger == nil {
		logger = log.Default()
	}
	return &Rasterizer{shaper: shaper, logger: logger}
}

// canvas holds composited rows keyed by their offset from the baseline.
type canvas struct {
	rows map[int][]byte
}

// blit adds g into the canvas with its origin at (x, y). x must already
// include the glyph's left bearing and be non-negative.
func (c *canvas) blit(g Glyph, x, y int) {
	yOff := y - g.Top
	for gy := range g.Height {
		key := gy + yOff
		row := c.rows[key]
		if need := x + g.Width; len(row) < need {
			row = append(row, make([]byte, need-len(row))...)
		}
		src := g.Pix[gy*g.Width : (gy+1)*g.Width]
		for gx, v := range src {
			row[x+gx] = addClamped(row[x+gx], v)
		}
		c.rows[key] = row
	}
}

// flatten emits rows in ascending order, zero-padded to the widest row.
func (c *canvas) flatten() Bitmap {
	if len(c.rows) == 0 {
		return Bitmap{}
	}
	keys := make([]int, 0, len(c.rows))
	width := 0
	for k, row := range c.rows {
		keys = append(keys, k)
		width = max(width, len(row))
	}
	if width == 0 {
		return Bitmap{}
	}
	slices.Sort(keys)

	b := Bitmap{Width: width, Height: len(keys)}
	b.Pix = make([]byte, width*len(keys))
	for i, k := range keys {
		copy(b.Pix[i*width:], c.rows[k])
	}
	return b
}

// placement is a shaped glyph at its pen position, left bearing applied.
type placement struct {
	g    Glyph
	x, y int
}

// Rasterize renders text. It never fails; runes that cannot be shaped are
// skipped without moving the cursor. Glyphs with a negative left bearing
// shift the whole bitmap right so no coverage is lost.
func (r *Rasterizer) Rasterize(text string) Bitmap {
	var placed []placement
	minX := 0
	x, y := 0, 0
	for _, ch := range text {
		g, err := r.shaper.Shape(ch)
		if err != nil {
			r.logger.Warn("skipping glyph", "rune", string(ch), "err", err)
			continue
		}
		if g.Width > 0 && g.Height > 0 {
			left := x + g.Left
			if len(placed) == 0 || left < minX {
				minX = left
			}
			placed = append(placed, placement{g: g, x: left, y: y})
		}
		x += g.AdvanceX
		y += g.AdvanceY
	}

	c := &canvas{rows: make(map[int][]byte)}
	for _, p := range placed {
		c.blit(p.g, p.x-minX, p.y)
	}
	return c.flatten()
}

func addClamped(a, b byte) byte {
	if s := int(a) + int(b); s < 255 {
		return byte(s)
	}
	return 255
}
