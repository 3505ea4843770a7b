package display

import (
	"math"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tilerow/pkg/glyph"
	"github.com/matzehuels/tilerow/pkg/loader"
	"github.com/matzehuels/tilerow/pkg/texture"
)

// Vec2 is a 2D position.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Viewport is the camera. Position chases DesiredPosition.
type Viewport struct {
	Position        Vec2 `json:"position"`
	DesiredPosition Vec2 `json:"desired_position"`
}

// Tile is one loaded image.
type Tile struct {
	Texture texture.Handle `json:"texture"`
	Scale   float64        `json:"scale"`
	Border  float64        `json:"border"`
}

// Row is a titled, horizontally scrolling list of tiles.
type Row struct {
	Title                string
	Bitmap               glyph.Bitmap
	TitleTexture         texture.Handle
	Tiles                []Tile
	SelectedIndex        float64
	DesiredSelectedIndex float64
	Degraded             bool // the row's refset could not be resolved
	Done                 bool // the row's bundle has finished
}

// Model is the state of one browsing session. It is not safe for concurrent
// use.
type Model struct {
	cfg      Config
	renderer texture.Renderer
	logger   *log.Logger

	rows        []Row
	viewport    Viewport
	selectedRow int
	bundlesDone int
	closed      bool
}

// NewModel creates a model for the rows a load produced. The model takes
// ownership of their title textures and of every tile texture applied later;
// renderer releases them on Close.
func NewModel(rows []loader.Row, renderer texture.Renderer, cfg Config, logger *log.Logger) *Model {
	if logger == nil {
		logger = log.Default()
	}
	m := &Model{
		cfg:      cfg.withDefaults(),
		renderer: renderer,
		logger:   logger,
		rows:     make([]Row, len(rows)),
	}
	for i, r := range rows {
		m.rows[i] = Row{Title: r.Title, Bitmap: r.Bitmap, TitleTexture: r.TitleTexture}
	}
	return m
}

// Config returns the effective animation settings.
func (m *Model) Config() Config { return m.cfg }

// Rows returns the rows. The slice is owned by the model.
func (m *Model) Rows() []Row { return m.rows }

// SelectedRow returns the index of the selected row.
func (m *Model) SelectedRow() int { return m.selectedRow }

// Viewport returns the camera state.
func (m *Model) Viewport() Viewport { return m.viewport }

// Progress returns how many rows have finished loading.
func (m *Model) Progress() (done, total int) { return m.bundlesDone, len(m.rows) }

// Apply folds one loader event into the model.
func (m *Model) Apply(ev loader.Event) {
	if ev.Row < 0 || ev.Row >= len(m.rows) || m.closed {
		m.logger.Warn("dropping event", "row", ev.Row, "kind", ev.Kind)
		m.release(ev)
		return
	}
	r := &m.rows[ev.Row]
	switch ev.Kind {
	case loader.EventImageLoaded:
		r.Tiles = append(r.Tiles, Tile{Texture: ev.Texture, Scale: 1})
	case loader.EventRefsetFailed:
		r.Degraded = true
	case loader.EventBundleDone:
		if !r.Done {
			r.Done = true
			m.bundlesDone++
		}
	}
}

// Tick drains every pending event from c, then advances the animation by
// dt seconds. It returns the number of events applied.
func (m *Model) Tick(c *loader.Completions, dt float64) int {
	n := c.Drain(m.Apply)
	m.Update(dt)
	return n
}

// Update advances the animation by dt seconds. The viewport may overshoot
// on long frames; a row's selected index never passes its target and stays
// within the row's tiles.
func (m *Model) Update(dt float64) {
	step := dt / m.cfg.Smoothing

	m.viewport.DesiredPosition.Y = (m.cfg.TitleHeight + m.cfg.RowHeight) * float64(m.selectedRow)
	m.viewport.Position.Y += (m.viewport.DesiredPosition.Y - m.viewport.Position.Y) * step

	for i := range m.rows {
		r := &m.rows[i]
		r.SelectedIndex += (r.DesiredSelectedIndex - r.SelectedIndex) * math.Min(step, 1)
		r.SelectedIndex = clamp(r.SelectedIndex, 0, math.Max(0, float64(len(r.Tiles)-1)))

		focus := -1
		if i == m.selectedRow {
			focus = int(math.Round(r.DesiredSelectedIndex))
		}
		for j := range r.Tiles {
			t := &r.Tiles[j]
			if j == focus {
				t.Border = m.cfg.Border
				t.Scale = clamp(t.Scale+dt, 1, m.cfg.ZoomCeiling)
			} else {
				t.Border = 0
				t.Scale = clamp(t.Scale-dt, 1, m.cfg.ZoomCeiling)
			}
		}
	}
}

// NextTile moves the selection right, stopping at the last loaded tile.
func (m *Model) NextTile() {
	if r := m.current(); r != nil && r.DesiredSelectedIndex < float64(len(r.Tiles)-1) {
		r.DesiredSelectedIndex++
	}
}

// PrevTile moves the selection left, stopping at the first tile.
func (m *Model) PrevTile() {
	if r := m.current(); r != nil && r.DesiredSelectedIndex > 0 {
		r.DesiredSelectedIndex--
	}
}

// NextRow moves the selection down.
func (m *Model) NextRow() {
	if m.selectedRow < len(m.rows)-1 {
		m.selectedRow++
	}
}

// PrevRow moves the selection up.
func (m *Model) PrevRow() {
	if m.selectedRow > 0 {
		m.selectedRow--
	}
}

// TilesReady reports whether enough tiles have arrived to start showing the
// session.
func (m *Model) TilesReady() bool {
	heuristic := m.cfg.ReadyRow < len(m.rows) && len(m.rows[m.cfg.ReadyRow].Tiles) > m.cfg.ReadyMin
	if m.cfg.Readiness == ReadinessHeuristic {
		return heuristic
	}
	return heuristic || m.bundlesDone == len(m.rows)
}

// Close closes c, then releases every texture the model owns, including
// those carried by events that were sent but never applied. It returns the
// number of textures released.
func (m *Model) Close(c *loader.Completions) int {
	released := 0
	if c != nil {
		for _, ev := range c.Close() {
			if m.release(ev) {
				released++
			}
		}
	}
	if m.closed {
		return released
	}
	m.closed = true
	if m.renderer == nil {
		return released
	}
	for i := range m.rows {
		r := &m.rows[i]
		for _, t := range r.Tiles {
			m.renderer.Release(t.Texture)
			released++
		}
		r.Tiles = nil
		if r.TitleTexture != 0 {
			m.renderer.Release(r.TitleTexture)
			r.TitleTexture = 0
			released++
		}
	}
	m.logger.Debug("display closed", "released", released)
	return released
}

// current returns the selected row, or nil when there are no rows.
func (m *Model) current() *Row {
	if m.selectedRow >= len(m.rows) {
		return nil
	}
	return &m.rows[m.selectedRow]
}

func (m *Model) release(ev loader.Event) bool {
	if ev.Kind != loader.EventImageLoaded || ev.Texture == 0 || m.renderer == nil {
		return false
	}
	m.renderer.Release(ev.Texture)
	return true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
