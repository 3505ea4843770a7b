package display

// Readiness selects how [Model.TilesReady] decides that enough has loaded.
type Readiness string

const (
	// ReadinessBundles is ready once every bundle has finished, or earlier
	// when the heuristic row fills up.
	ReadinessBundles Readiness = "bundles"
	// ReadinessHeuristic is ready only when row ReadyRow holds more than
	// ReadyMin tiles.
	ReadinessHeuristic Readiness = "heuristic"
)

// Config tunes the animation.
type Config struct {
	Smoothing   float64 // seconds-ish time constant; smaller is snappier
	ZoomCeiling float64 // maximum scale of the selected tile
	Border      float64 // border width of the selected tile
	TitleHeight float64 // vertical space of a row title
	RowHeight   float64 // vertical space of a row of tiles
	Readiness   Readiness
	ReadyRow    int
	ReadyMin    int
}

// DefaultConfig returns the stock animation settings.
func DefaultConfig() Config {
	return Config{
		Smoothing:   0.1,
		ZoomCeiling: 1.20,
		Border:      0.01,
		TitleHeight: 200,
		RowHeight:   280,
		Readiness:   ReadinessBundles,
		ReadyRow:    1,
		ReadyMin:    3,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Smoothing <= 0 {
		c.Smoothing = d.Smoothing
	}
	if c.ZoomCeiling < 1 {
		c.ZoomCeiling = d.ZoomCeiling
	}
	if c.Border < 0 {
		c.Border = d.Border
	}
	if c.TitleHeight <= 0 {
		c.TitleHeight = d.TitleHeight
	}
	if c.RowHeight <= 0 {
		c.RowHeight = d.RowHeight
	}
	if c.Readiness == "" {
		c.Readiness = d.Readiness
	}
	if c.ReadyRow < 0 {
		c.ReadyRow = d.ReadyRow
	}
	if c.ReadyMin < 0 {
		c.ReadyMin = d.ReadyMin
	}
	return c
}
