package loader

import (
	"context"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/tilerow/pkg/catalog"
	"github.com/matzehuels/tilerow/pkg/errors"
	"github.com/matzehuels/tilerow/pkg/observability"
	"github.com/matzehuels/tilerow/pkg/remote"
	"github.com/matzehuels/tilerow/pkg/texture"
)

// ImageFetcher turns an image URL into an uploaded texture.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (texture.Handle, error)
}

// Deps are the collaborators shared by every worker.
type Deps struct {
	Client    *remote.Client   // refset documents
	Fetcher   ImageFetcher     // tile images
	Renderer  texture.Renderer // releases textures the consumer will never see; may be nil
	RefsetURL string           // template containing catalog.RefsetPlaceholder
	Refresh   bool             // bypass the document cache
	Logger    *log.Logger
}

// DefaultWorkers leaves one CPU for the consumer.
func DefaultWorkers() int {
	return max(1, runtime.NumCPU()-1)
}

// Pool is a set of running workers.
type Pool struct {
	g       errgroup.Group
	workers int
}

// Spawn starts count workers (DefaultWorkers if count < 1) that drain queue
// and report to results. It returns immediately.
func Spawn(ctx context.Context, count int, queue *Queue, results *Completions, deps Deps) *Pool {
	if count < 1 {
		count = DefaultWorkers()
	}
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	if deps.RefsetURL == "" {
		deps.RefsetURL = catalog.DefaultRefsetURL
	}

	p := &Pool{workers: count}
	for id := range count {
		w := &worker{id: id, queue: queue, results: results, deps: deps}
		p.g.Go(func() error { return w.run(ctx) })
	}
	return p
}

// Workers returns the number of workers spawned.
func (p *Pool) Workers() int { return p.workers }

// Wait blocks until every worker has exited. It returns the context error if
// the workers were cancelled. Interactive consumers never call Wait; they
// close the completion channel instead.
func (p *Pool) Wait() error {
	return p.g.Wait()
}

type worker struct {
	id      int
	queue   *Queue
	results *Completions
	deps    Deps
}

func (w *worker) run(ctx context.Context) error {
	logger := w.deps.Logger.With("worker", w.id)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if w.results.Closed() {
			logger.Debug("receiver closed, exiting")
			return nil
		}
		b, ok := w.queue.PopFront()
		if !ok {
			logger.Debug("queue empty, exiting")
			return nil
		}
		if err := w.process(ctx, logger, b); err != nil {
			if err == ErrReceiverClosed {
				logger.Debug("receiver closed, exiting")
				return nil
			}
			return err
		}
	}
}

func (w *worker) process(ctx context.Context, logger *log.Logger, b Bundle) error {
	start := time.Now()
	logger = logger.With("row", b.Row)

	urls := append([]string(nil), b.ImageURLs...)
	if b.HasRefset() {
		extra, err := w.resolveRefset(ctx, logger, b)
		observability.Loader().OnRefsetResolved(ctx, b.Row, b.RefsetID, len(extra), err)
		if err != nil {
			logger.Warn("refset unavailable, row degraded", "refset", b.RefsetID, "kind", b.RefsetKind, "err", err)
			if err := w.results.Send(Event{Row: b.Row, Kind: EventRefsetFailed}); err != nil {
				return err
			}
		} else {
			urls = append(urls, extra...)
		}
	}
	observability.Loader().OnBundleStart(ctx, b.Row, len(urls))

	var loaded, failed int
	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return err
		}
		if w.results.Closed() {
			return ErrReceiverClosed
		}
		h, err := w.deps.Fetcher.Fetch(ctx, u)
		if err != nil {
			failed++
			logger.Debug("skipping tile", "url", u, "code", errors.GetCode(err), "err", err)
			continue
		}
		if err := w.results.Send(Event{Row: b.Row, Kind: EventImageLoaded, Texture: h}); err != nil {
			if w.deps.Renderer != nil {
				w.deps.Renderer.Release(h)
			}
			return err
		}
		loaded++
	}

	elapsed := time.Since(start)
	observability.Loader().OnBundleComplete(ctx, b.Row, loaded, failed, elapsed)
	logger.Debug("bundle done", "loaded", loaded, "failed", failed, "elapsed", elapsed.Round(time.Millisecond))
	return w.results.Send(Event{Row: b.Row, Kind: EventBundleDone})
}

// resolveRefset fetches the bundle's refset document and returns the image
// URLs of its items.
func (w *worker) resolveRefset(ctx context.Context, logger *log.Logger, b Bundle) ([]string, error) {
	url, err := catalog.RefsetURL(w.deps.RefsetURL, b.RefsetID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRefsetResolution, err, "refset %s", b.RefsetID)
	}
	if w.deps.Client == nil {
		return nil, errors.New(errors.ErrCodeInternal, "no client for refset %s", b.RefsetID)
	}
	data, err := w.deps.Client.Document(ctx, w.deps.Client.Keyer().RefsetKey(url), url, w.deps.Refresh)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "fetch refset %s", b.RefsetID)
	}
	items, err := catalog.RefsetItems(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRefsetResolution, err, "refset %s", b.RefsetID)
	}
	return catalog.ImageURLs(items, logger), nil
}
