// Package config loads tilerow's TOML configuration.
//
// The file lives at $XDG_CONFIG_HOME/tilerow/config.toml (falling back to
// ~/.config/tilerow/config.toml). A missing file is not an error: every
// field has a default, and a file only needs the keys it changes.
//
//	catalog_url = "https://cd-static.bamgrid.com/dp-117731241344/home.json"
//	workers = 4
//	http_timeout = "5s"
//
//	[animation]
//	readiness = "heuristic"
//
//	[cache]
//	enabled = true
//	ttl = "1h"
package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/tilerow/pkg/catalog"
	"github.com/matzehuels/tilerow/pkg/display"
	"github.com/matzehuels/tilerow/pkg/errors"
	"github.com/matzehuels/tilerow/pkg/fonts"
	"github.com/matzehuels/tilerow/pkg/imagefetch"
	"github.com/matzehuels/tilerow/pkg/remote"
)

const appName = "tilerow"

// Duration is a time.Duration written as a string such as "10s" or "1h30m".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full configuration.
type Config struct {
	CatalogURL      string   `toml:"catalog_url"`
	RefsetURL       string   `toml:"refset_url"`
	Workers         int      `toml:"workers"` // 0 means one less than the CPU count
	HTTPTimeout     Duration `toml:"http_timeout"`
	CatalogAttempts int      `toml:"catalog_attempts"`

	Image     ImageConfig     `toml:"image"`
	Text      TextConfig      `toml:"text"`
	Animation AnimationConfig `toml:"animation"`
	Cache     CacheConfig     `toml:"cache"`
}

// ImageConfig sets the tile texture size.
type ImageConfig struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// TextConfig sets how row titles are rasterized.
type TextConfig struct {
	Size float64 `toml:"size"`
	DPI  float64 `toml:"dpi"`
	Font string  `toml:"font,omitempty"` // TTF/OTF path; empty uses the embedded font
}

// AnimationConfig mirrors display.Config.
type AnimationConfig struct {
	Smoothing   float64 `toml:"smoothing"`
	ZoomCeiling float64 `toml:"zoom_ceiling"`
	Border      float64 `toml:"border"`
	TitleHeight float64 `toml:"title_height"`
	RowHeight   float64 `toml:"row_height"`
	Readiness   string  `toml:"readiness"`
	ReadyRow    int     `toml:"ready_row"`
	ReadyMin    int     `toml:"ready_min"`
}

// CacheConfig controls the catalog document cache. RedisAddr, when set,
// takes precedence over the file cache in Dir.
type CacheConfig struct {
	Enabled   bool     `toml:"enabled"`
	TTL       Duration `toml:"ttl"`
	Dir       string   `toml:"dir,omitempty"`
	RedisAddr string   `toml:"redis_addr,omitempty"`
	RedisDB   int      `toml:"redis_db,omitempty"`
	Scope     string   `toml:"scope,omitempty"` // key prefix, for sharing one Redis between environments
}

// Default returns the built-in configuration.
func Default() Config {
	anim := display.DefaultConfig()
	return Config{
		CatalogURL:      catalog.DefaultCatalogURL,
		RefsetURL:       catalog.DefaultRefsetURL,
		HTTPTimeout:     Duration(remote.DefaultTimeout),
		CatalogAttempts: 1,
		Image: ImageConfig{
			Width:  imagefetch.DefaultWidth,
			Height: imagefetch.DefaultHeight,
		},
		Text: TextConfig{
			Size: fonts.DefaultSize,
			DPI:  fonts.DefaultDPI,
		},
		Animation: AnimationConfig{
			Smoothing:   anim.Smoothing,
			ZoomCeiling: anim.ZoomCeiling,
			Border:      anim.Border,
			TitleHeight: anim.TitleHeight,
			RowHeight:   anim.RowHeight,
			Readiness:   string(anim.Readiness),
			ReadyRow:    anim.ReadyRow,
			ReadyMin:    anim.ReadyMin,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     Duration(time.Hour),
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the file at path over the defaults and validates the result.
// A missing file yields the defaults. Unknown keys are rejected so typos do
// not pass silently.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if err := decode(string(data), &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	return cfg, cfg.Validate()
}

// Parse decodes TOML text over the defaults and validates the result.
func Parse(text string) (Config, error) {
	cfg := Default()
	if err := decode(text, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	return cfg, cfg.Validate()
}

func decode(text string, cfg *Config) error {
	md, err := toml.Decode(text, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// Write encodes cfg as TOML.
func (c Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Validate checks every field and reports the first problem as
// INVALID_CONFIG.
func (c Config) Validate() error {
	if err := errors.ValidateURL(c.CatalogURL); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "catalog_url")
	}
	if err := errors.ValidateTemplate(c.RefsetURL, catalog.RefsetPlaceholder); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "refset_url")
	}

	checks := []struct {
		ok  bool
		msg string
	}{
		{c.Workers >= 0, "workers must not be negative"},
		{c.HTTPTimeout > 0, "http_timeout must be positive"},
		{c.CatalogAttempts >= 1, "catalog_attempts must be at least 1"},
		{c.Image.Width > 0 && c.Image.Height > 0, "image width and height must be positive"},
		{c.Text.Size > 0 && c.Text.DPI > 0, "text size and dpi must be positive"},
		{c.Animation.Smoothing > 0, "animation.smoothing must be positive"},
		{c.Animation.ZoomCeiling >= 1, "animation.zoom_ceiling must be at least 1"},
		{c.Animation.Border >= 0, "animation.border must not be negative"},
		{c.Animation.TitleHeight > 0 && c.Animation.RowHeight > 0, "animation title_height and row_height must be positive"},
		{c.Animation.ReadyRow >= 0 && c.Animation.ReadyMin >= 0, "animation ready_row and ready_min must not be negative"},
		{c.Cache.TTL >= 0, "cache.ttl must not be negative"},
	}
	for _, ch := range checks {
		if !ch.ok {
			return errors.New(errors.ErrCodeInvalidConfig, "%s", ch.msg)
		}
	}

	switch display.Readiness(c.Animation.Readiness) {
	case display.ReadinessBundles, display.ReadinessHeuristic:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "animation.readiness must be %q or %q, got %q",
			display.ReadinessBundles, display.ReadinessHeuristic, c.Animation.Readiness)
	}
	return nil
}

// Display returns the animation settings as a display.Config.
func (a AnimationConfig) Display() display.Config {
	return display.Config{
		Smoothing:   a.Smoothing,
		ZoomCeiling: a.ZoomCeiling,
		Border:      a.Border,
		TitleHeight: a.TitleHeight,
		RowHeight:   a.RowHeight,
		Readiness:   display.Readiness(a.Readiness),
		ReadyRow:    a.ReadyRow,
		ReadyMin:    a.ReadyMin,
	}
}
