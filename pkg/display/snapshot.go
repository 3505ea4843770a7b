package display

import (
	"slices"

	"github.com/matzehuels/tilerow/pkg/glyph"
)

// Snapshot is an immutable copy of a model, safe to hand to other
// goroutines.
type Snapshot struct {
	Rows        []RowSnapshot `json:"rows"`
	SelectedRow int           `json:"selected_row"`
	Viewport    Viewport      `json:"viewport"`
	Ready       bool          `json:"ready"`
	BundlesDone int           `json:"bundles_done"`
	Bundles     int           `json:"bundles"`
}

// RowSnapshot is one row of a [Snapshot]. Title pixels are shared with the
// model; bitmaps are never mutated after loading.
type RowSnapshot struct {
	Title                string  `json:"title"`
	TitleWidth           int     `json:"title_width"`
	TitleHeight          int     `json:"title_height"`
	Tiles                []Tile  `json:"tiles"`
	SelectedIndex        float64 `json:"selected_index"`
	DesiredSelectedIndex float64 `json:"desired_selected_index"`
	Degraded             bool    `json:"degraded"`
	Done                 bool    `json:"done"`
	TitlePix             []byte  `json:"-"`
}

// Snapshot copies the model.
func (m *Model) Snapshot() *Snapshot {
	s := &Snapshot{
		Rows:        make([]RowSnapshot, len(m.rows)),
		SelectedRow: m.selectedRow,
		Viewport:    m.viewport,
		Ready:       m.TilesReady(),
		BundlesDone: m.bundlesDone,
		Bundles:     len(m.rows),
	}
	for i, r := range m.rows {
		s.Rows[i] = RowSnapshot{
			Title:                r.Title,
			TitleWidth:           r.Bitmap.Width,
			TitleHeight:          r.Bitmap.Height,
			Tiles:                slices.Clone(r.Tiles),
			SelectedIndex:        r.SelectedIndex,
			DesiredSelectedIndex: r.DesiredSelectedIndex,
			Degraded:             r.Degraded,
			Done:                 r.Done,
			TitlePix:             r.Bitmap.Pix,
		}
	}
	return s
}

// TitleBitmap returns the row's rasterized title.
func (r RowSnapshot) TitleBitmap() glyph.Bitmap {
	return glyph.Bitmap{Pix: r.TitlePix, Width: r.TitleWidth, Height: r.TitleHeight}
}
