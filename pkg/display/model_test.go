package display

import (
	"io"
	"math"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tilerow/pkg/loader"
	"github.com/matzehuels/tilerow/pkg/texture"
)

func newModel(t *testing.T, rows int, cfg Config) (*Model, *texture.MemoryStore) {
	t.Helper()
	store := texture.NewMemoryStore()
	seed := make([]loader.Row, rows)
	for i := range seed {
		h, _ := store.Allocate()
		seed[i] = loader.Row{Title: "row", TitleTexture: h}
	}
	return NewModel(seed, store, cfg, log.New(io.Discard)), store
}

func addTiles(t *testing.T, m *Model, store *texture.MemoryStore, row, n int) {
	t.Helper()
	for range n {
		h, err := store.Allocate()
		if err != nil {
			t.Fatalf("Allocate: %v", err)
		}
		m.Apply(loader.Event{Row: row, Kind: loader.EventImageLoaded, Texture: h})
	}
}

func TestApply(t *testing.T) {
	m, store := newModel(t, 2, DefaultConfig())
	addTiles(t, m, store, 0, 3)
	m.Apply(loader.Event{Row: 1, Kind: loader.EventRefsetFailed})
	m.Apply(loader.Event{Row: 1, Kind: loader.EventBundleDone})
	m.Apply(loader.Event{Row: 1, Kind: loader.EventBundleDone})

	rows := m.Rows()
	if len(rows[0].Tiles) != 3 {
		t.Errorf("row 0: %d tiles, want 3", len(rows[0].Tiles))
	}
	for _, tile := range rows[0].Tiles {
		if tile.Scale != 1 || tile.Border != 0 {
			t.Errorf("new tile = %+v, want scale 1 border 0", tile)
		}
	}
	if !rows[1].Degraded || !rows[1].Done {
		t.Errorf("row 1 = %+v, want degraded and done", rows[1])
	}
	if done, total := m.Progress(); done != 1 || total != 2 {
		t.Errorf("Progress() = %d/%d, want 1/2", done, total)
	}
}

func TestApplyUnknownRowReleasesTexture(t *testing.T) {
	m, store := newModel(t, 1, DefaultConfig())
	h, _ := store.Allocate()
	live := store.Live()

	m.Apply(loader.Event{Row: 5, Kind: loader.EventImageLoaded, Texture: h})
	if store.Live() != live-1 {
		t.Errorf("texture for unknown row not released")
	}
	if len(m.Rows()[0].Tiles) != 0 {
		t.Error("tile appended to wrong row")
	}
}

func TestNextTileClampsToLoadedTiles(t *testing.T) {
	m, store := newModel(t, 1, DefaultConfig())

	m.NextTile()
	if got := m.Rows()[0].DesiredSelectedIndex; got != 0 {
		t.Fatalf("NextTile on empty row: desired = %v, want 0", got)
	}

	addTiles(t, m, store, 0, 2)
	for range 5 {
		m.NextTile()
	}
	if got := m.Rows()[0].DesiredSelectedIndex; got != 1 {
		t.Fatalf("desired = %v, want 1 with 2 tiles", got)
	}

	// More tiles arrive while the user is browsing.
	addTiles(t, m, store, 0, 3)
	m.NextTile()
	m.NextTile()
	if got := m.Rows()[0].DesiredSelectedIndex; got != 3 {
		t.Errorf("desired = %v, want 3", got)
	}

	for range 10 {
		m.PrevTile()
	}
	if got := m.Rows()[0].DesiredSelectedIndex; got != 0 {
		t.Errorf("desired after PrevTile = %v, want 0", got)
	}
}

func TestRowNavigation(t *testing.T) {
	m, _ := newModel(t, 3, DefaultConfig())
	m.PrevRow()
	if m.SelectedRow() != 0 {
		t.Fatalf("PrevRow at top: row = %d", m.SelectedRow())
	}
	for range 5 {
		m.NextRow()
	}
	if m.SelectedRow() != 2 {
		t.Fatalf("NextRow past bottom: row = %d, want 2", m.SelectedRow())
	}
	m.PrevRow()
	if m.SelectedRow() != 1 {
		t.Errorf("row = %d, want 1", m.SelectedRow())
	}
}

func TestNavigationWithoutRows(t *testing.T) {
	m, _ := newModel(t, 0, DefaultConfig())
	m.NextTile()
	m.PrevTile()
	m.NextRow()
	m.PrevRow()
	m.Update(0.016)
	if m.SelectedRow() != 0 {
		t.Errorf("row = %d", m.SelectedRow())
	}
}

func TestViewportConverges(t *testing.T) {
	m, _ := newModel(t, 3, DefaultConfig())
	m.NextRow()
	want := 200.0 + 280.0

	prev := 0.0
	for range 1000 {
		m.Update(0.01)
		vp := m.Viewport()
		if vp.DesiredPosition.Y != want {
			t.Fatalf("desired = %v, want %v", vp.DesiredPosition.Y, want)
		}
		if vp.Position.Y < prev || vp.Position.Y > want {
			t.Fatalf("position %v moved backwards or overshot (prev %v)", vp.Position.Y, prev)
		}
		prev = vp.Position.Y
	}
	if math.Abs(prev-want) > 1e-6 {
		t.Errorf("position = %v, want %v", prev, want)
	}

	// Moving back up converges from above.
	m.PrevRow()
	for range 1000 {
		m.Update(0.01)
	}
	if y := m.Viewport().Position.Y; math.Abs(y) > 1e-6 {
		t.Errorf("position = %v, want 0", y)
	}
}

func TestSelectedIndexConverges(t *testing.T) {
	m, store := newModel(t, 1, DefaultConfig())
	addTiles(t, m, store, 0, 4)
	m.NextTile()
	m.NextTile()

	for range 1000 {
		m.Update(0.01)
		if got := m.Rows()[0].SelectedIndex; got > 2 {
			t.Fatalf("selected index overshot: %v", got)
		}
	}
	if got := m.Rows()[0].SelectedIndex; math.Abs(got-2) > 1e-6 {
		t.Errorf("selected index = %v, want 2", got)
	}
}

func TestSelectedIndexLongFrames(t *testing.T) {
	m, store := newModel(t, 1, DefaultConfig())
	addTiles(t, m, store, 0, 3)

	tests := []struct {
		move func()
		dt   float64
		want float64
	}{
		{m.NextTile, 0.3, 1},
		{m.PrevTile, 0.3, 0},
		{m.NextTile, 5, 1},
		{m.NextTile, 0.25, 2},
		{m.PrevTile, 1, 1},
	}
	for i, tt := range tests {
		tt.move()
		m.Update(tt.dt)
		got := m.Rows()[0].SelectedIndex
		if got < 0 || got > 2 {
			t.Fatalf("step %d: selected index %v outside [0, 2]", i, got)
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("step %d: selected index = %v, want %v", i, got, tt.want)
		}
	}
}

func TestTileScale(t *testing.T) {
	cfg := DefaultConfig()
	m, store := newModel(t, 2, cfg)
	addTiles(t, m, store, 0, 3)
	addTiles(t, m, store, 1, 2)
	m.NextTile()

	for range 20 {
		m.Update(0.05)
		for _, r := range m.Rows() {
			for _, tile := range r.Tiles {
				if tile.Scale < 1 || tile.Scale > cfg.ZoomCeiling {
					t.Fatalf("scale %v outside [1, %v]", tile.Scale, cfg.ZoomCeiling)
				}
			}
		}
	}

	rows := m.Rows()
	if got := rows[0].Tiles[1]; got.Scale != cfg.ZoomCeiling || got.Border != cfg.Border {
		t.Errorf("focused tile = %+v, want scale %v border %v", got, cfg.ZoomCeiling, cfg.Border)
	}
	for _, j := range []int{0, 2} {
		if got := rows[0].Tiles[j]; got.Scale != 1 || got.Border != 0 {
			t.Errorf("tile %d = %+v, want resting", j, got)
		}
	}
	// Only the selected row has a focused tile.
	for j, tile := range rows[1].Tiles {
		if tile.Scale != 1 || tile.Border != 0 {
			t.Errorf("row 1 tile %d = %+v, want resting", j, tile)
		}
	}

	// Focus moves on; the old tile shrinks back.
	m.NextTile()
	for range 20 {
		m.Update(0.05)
	}
	if got := m.Rows()[0].Tiles[1]; got.Scale != 1 || got.Border != 0 {
		t.Errorf("previously focused tile = %+v, want resting", got)
	}
	if got := m.Rows()[0].Tiles[2]; got.Scale != cfg.ZoomCeiling {
		t.Errorf("newly focused tile scale = %v", got.Scale)
	}
}

func TestTilesReady(t *testing.T) {
	t.Run("heuristic", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Readiness = ReadinessHeuristic
		m, store := newModel(t, 2, cfg)
		m.Apply(loader.Event{Row: 0, Kind: loader.EventBundleDone})
		m.Apply(loader.Event{Row: 1, Kind: loader.EventBundleDone})
		if m.TilesReady() {
			t.Fatal("ready with empty row 1")
		}
		addTiles(t, m, store, 1, 3)
		if m.TilesReady() {
			t.Fatal("ready with exactly 3 tiles")
		}
		addTiles(t, m, store, 1, 1)
		if !m.TilesReady() {
			t.Error("not ready with 4 tiles in row 1")
		}
	})

	t.Run("heuristic with one row", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Readiness = ReadinessHeuristic
		m, store := newModel(t, 1, cfg)
		addTiles(t, m, store, 0, 10)
		if m.TilesReady() {
			t.Error("ready without a row 1")
		}
	})

	t.Run("bundles", func(t *testing.T) {
		m, _ := newModel(t, 2, DefaultConfig())
		m.Apply(loader.Event{Row: 0, Kind: loader.EventBundleDone})
		if m.TilesReady() {
			t.Fatal("ready with one bundle outstanding")
		}
		m.Apply(loader.Event{Row: 1, Kind: loader.EventRefsetFailed})
		m.Apply(loader.Event{Row: 1, Kind: loader.EventBundleDone})
		if !m.TilesReady() {
			t.Error("not ready after every bundle finished")
		}
	})

	t.Run("bundles falls back to heuristic", func(t *testing.T) {
		m, store := newModel(t, 3, DefaultConfig())
		addTiles(t, m, store, 1, 4)
		if !m.TilesReady() {
			t.Error("not ready with 4 tiles in row 1")
		}
	})
}

func TestTick(t *testing.T) {
	m, store := newModel(t, 1, DefaultConfig())
	c := loader.NewCompletions()
	for range 3 {
		h, _ := store.Allocate()
		c.Send(loader.Event{Row: 0, Kind: loader.EventImageLoaded, Texture: h})
	}
	if n := m.Tick(c, 0.016); n != 3 {
		t.Errorf("Tick applied %d events, want 3", n)
	}
	if len(m.Rows()[0].Tiles) != 3 {
		t.Errorf("%d tiles, want 3", len(m.Rows()[0].Tiles))
	}
	if n := m.Tick(c, 0.016); n != 0 {
		t.Errorf("second Tick applied %d events", n)
	}
}

func TestClose(t *testing.T) {
	m, store := newModel(t, 2, DefaultConfig())
	addTiles(t, m, store, 0, 2)
	addTiles(t, m, store, 1, 1)

	c := loader.NewCompletions()
	h, _ := store.Allocate()
	c.Send(loader.Event{Row: 0, Kind: loader.EventImageLoaded, Texture: h})
	c.Send(loader.Event{Row: 0, Kind: loader.EventBundleDone})

	if n := m.Close(c); n != 2+3+1 {
		t.Errorf("Close released %d textures, want 6", n)
	}
	if store.Live() != 0 {
		t.Errorf("%d textures still live", store.Live())
	}
	if err := c.Send(loader.Event{}); err != loader.ErrReceiverClosed {
		t.Errorf("Send after Close: %v", err)
	}
	if n := m.Close(c); n != 0 {
		t.Errorf("second Close released %d", n)
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	m, store := newModel(t, 2, DefaultConfig())
	addTiles(t, m, store, 0, 2)
	m.Update(0.05)

	s := m.Snapshot()
	if len(s.Rows) != 2 || len(s.Rows[0].Tiles) != 2 || s.Bundles != 2 {
		t.Fatalf("snapshot = %+v", s)
	}
	scale := s.Rows[0].Tiles[0].Scale

	addTiles(t, m, store, 0, 1)
	m.NextRow()
	for range 10 {
		m.Update(0.05)
	}
	if len(s.Rows[0].Tiles) != 2 || s.Rows[0].Tiles[0].Scale != scale || s.SelectedRow != 0 {
		t.Errorf("snapshot changed after model update: %+v", s.Rows[0])
	}
}

func TestConfigDefaults(t *testing.T) {
	m, _ := newModel(t, 0, Config{})
	got, want := m.Config(), DefaultConfig()
	if got.Smoothing != want.Smoothing || got.ZoomCeiling != want.ZoomCeiling ||
		got.TitleHeight != want.TitleHeight || got.RowHeight != want.RowHeight ||
		got.Readiness != want.Readiness {
		t.Errorf("Config() = %+v, want defaults for unset fields", got)
	}
}
