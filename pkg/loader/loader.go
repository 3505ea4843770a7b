package loader

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tilerow/pkg/catalog"
	"github.com/matzehuels/tilerow/pkg/errors"
	"github.com/matzehuels/tilerow/pkg/glyph"
	"github.com/matzehuels/tilerow/pkg/httputil"
	"github.com/matzehuels/tilerow/pkg/observability"
	"github.com/matzehuels/tilerow/pkg/remote"
	"github.com/matzehuels/tilerow/pkg/texture"
)

// Options configures a [Loader].
type Options struct {
	CatalogURL      string        // root catalog; default catalog.DefaultCatalogURL
	RefsetURL       string        // refset template; default catalog.DefaultRefsetURL
	Workers         int           // worker count; < 1 means DefaultWorkers()
	CatalogAttempts int           // root fetch attempts; < 1 means 1
	RetryDelay      time.Duration // initial backoff between root fetch attempts
	Refresh         bool          // bypass the document cache
	Logger          *log.Logger
}

// WithDefaults returns a copy with zero fields replaced by defaults.
func (o Options) WithDefaults() Options {
	if o.CatalogURL == "" {
		o.CatalogURL = catalog.DefaultCatalogURL
	}
	if o.RefsetURL == "" {
		o.RefsetURL = catalog.DefaultRefsetURL
	}
	if o.Workers < 1 {
		o.Workers = DefaultWorkers()
	}
	if o.CatalogAttempts < 1 {
		o.CatalogAttempts = 1
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = 500 * time.Millisecond
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o
}

// Row is what the loader knows about a row before any tile arrives.
type Row struct {
	Title        string
	Bitmap       glyph.Bitmap
	TitleTexture texture.Handle // 0 if the title could not be uploaded
	RefsetID     string
	RefsetKind   string
	Items        int // image URLs known at catalog time
}

// Result is a started load. Rows are final; tiles arrive on Completions.
type Result struct {
	Rows        []Row
	Queue       *Queue
	Completions *Completions
	Pool        *Pool
	Bundles     int
}

// Loader fetches the catalog and starts the worker pool.
type Loader struct {
	client     *remote.Client
	fetcher    ImageFetcher
	renderer   texture.Renderer
	rasterizer *glyph.Rasterizer
	opts       Options
}

// New creates a Loader.
func New(client *remote.Client, fetcher ImageFetcher, renderer texture.Renderer, rasterizer *glyph.Rasterizer, opts Options) *Loader {
	return &Loader{
		client:     client,
		fetcher:    fetcher,
		renderer:   renderer,
		rasterizer: rasterizer,
		opts:       opts.WithDefaults(),
	}
}

// Load fetches and parses the root catalog, rasterizes and uploads every row
// title, queues one bundle per row and spawns the workers. It returns as
// soon as the workers are started.
//
// The only error is CATALOG_UNAVAILABLE. Workers run under ctx, so it must
// outlive the load, not just this call.
func (l *Loader) Load(ctx context.Context) (*Result, error) {
	url := l.opts.CatalogURL
	logger := l.opts.Logger.With("catalog", url)
	start := time.Now()
	observability.Loader().OnCatalogStart(ctx, url)

	containers, err := l.fetchCatalog(ctx)
	observability.Loader().OnCatalogComplete(ctx, url, len(containers), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	logger.Debug("catalog parsed", "rows", len(containers), "elapsed", time.Since(start).Round(time.Millisecond))

	res := &Result{
		Rows:        make([]Row, 0, len(containers)),
		Queue:       NewQueue(),
		Completions: NewCompletions(),
	}
	for i, c := range containers {
		row := l.row(logger, i, c)
		res.Rows = append(res.Rows, row)
		res.Queue.PushBack(Bundle{
			Row:        i,
			RefsetID:   c.RefID,
			RefsetKind: c.RefType,
			ImageURLs:  catalog.ImageURLs(c.Items, logger.With("row", i)),
		})
	}
	res.Bundles = res.Queue.Len()

	res.Pool = Spawn(ctx, l.opts.Workers, res.Queue, res.Completions, Deps{
		Client:    l.client,
		Fetcher:   l.fetcher,
		Renderer:  l.renderer,
		RefsetURL: l.opts.RefsetURL,
		Refresh:   l.opts.Refresh,
		Logger:    l.opts.Logger,
	})
	logger.Debug("workers started", "workers", res.Pool.Workers(), "bundles", res.Bundles)
	return res, nil
}

func (l *Loader) fetchCatalog(ctx context.Context) ([]catalog.Container, error) {
	url := l.opts.CatalogURL
	key := l.client.Keyer().CatalogKey(url)

	var data []byte
	err := httputil.Retry(ctx, l.opts.CatalogAttempts, l.opts.RetryDelay, func() error {
		var err error
		data, err = l.client.Document(ctx, key, url, l.opts.Refresh)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCatalogUnavailable, err, "fetch %s", url)
	}

	containers, err := catalog.ParseRoot(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCatalogUnavailable, err, "parse %s", url)
	}
	return containers, nil
}

// row rasterizes and uploads the container's title.
func (l *Loader) row(logger *log.Logger, i int, c catalog.Container) Row {
	row := Row{
		Title:      c.Title,
		RefsetID:   c.RefID,
		RefsetKind: c.RefType,
		Items:      len(c.Items),
	}
	if c.Title == "" {
		logger.Warn("row has no title", "row", i)
	}
	if l.rasterizer != nil {
		row.Bitmap = l.rasterizer.Rasterize(c.Title)
	}
	if l.renderer != nil && !row.Bitmap.Empty() {
		h, err := texture.UploadNew(l.renderer, row.Bitmap.Pixels())
		if err != nil {
			logger.Warn("title upload failed", "row", i, "err", err)
		} else {
			row.TitleTexture = h
		}
	}
	return row
}
