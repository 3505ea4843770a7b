package cli

import (
	"context"

	"github.com/charmbracelet/log"
	"golang.org/x/image/font"

	"github.com/matzehuels/tilerow/pkg/buildinfo"
	"github.com/matzehuels/tilerow/pkg/cache"
	"github.com/matzehuels/tilerow/pkg/config"
	"github.com/matzehuels/tilerow/pkg/fonts"
	"github.com/matzehuels/tilerow/pkg/glyph"
	"github.com/matzehuels/tilerow/pkg/imagefetch"
	"github.com/matzehuels/tilerow/pkg/loader"
	"github.com/matzehuels/tilerow/pkg/remote"
	"github.com/matzehuels/tilerow/pkg/texture"
)

// session wires the loading pipeline for one command invocation.
type session struct {
	cfg    config.Config
	logger *log.Logger
	cache  cache.Cache
	client *remote.Client
	store  *texture.MemoryStore
	face   font.Face
	loader *loader.Loader
}

// openSession builds the pipeline from the effective config. Close releases
// the font face and the cache.
func (c *CLI) openSession(ctx context.Context, logger *log.Logger) (*session, error) {
	cfg := c.cfg
	face, err := newFace(cfg.Text)
	if err != nil {
		return nil, err
	}

	registerTraceHooks(logger)
	docs := newCache(ctx, cfg.Cache, logger)
	client := remote.NewClient(remote.Options{
		Timeout:  cfg.HTTPTimeout.Std(),
		Headers:  map[string]string{"User-Agent": buildinfo.UserAgent()},
		Cache:    docs,
		Keyer:    newKeyer(cfg.Cache),
		CacheTTL: cfg.Cache.TTL.Std(),
	})
	store := texture.NewMemoryStore()

	l := loader.New(
		client,
		imagefetch.New(client, store, cfg.Image.Width, cfg.Image.Height),
		store,
		glyph.NewRasterizer(glyph.NewFaceShaper(face), logger),
		loader.Options{
			CatalogURL:      cfg.CatalogURL,
			RefsetURL:       cfg.RefsetURL,
			Workers:         cfg.Workers,
			CatalogAttempts: cfg.CatalogAttempts,
			Refresh:         c.overrides.refresh,
			Logger:          logger,
		},
	)

	return &session{
		cfg:    cfg,
		logger: logger,
		cache:  docs,
		client: client,
		store:  store,
		face:   face,
		loader: l,
	}, nil
}

// Close releases the session's resources.
func (s *session) Close() {
	if err := s.face.Close(); err != nil {
		s.logger.Debug("close font face", "err", err)
	}
	if err := s.cache.Close(); err != nil {
		s.logger.Debug("close cache", "err", err)
	}
}

// newFace opens the configured title font.
func newFace(cfg config.TextConfig) (font.Face, error) {
	if cfg.Font != "" {
		return fonts.FaceFromFile(cfg.Font, cfg.Size, cfg.DPI)
	}
	return fonts.Face(cfg.Size, cfg.DPI)
}
