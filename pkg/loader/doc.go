// Package loader turns a remote catalog into rows of textured tiles.
//
// Loading happens in two phases. [Loader.Load] fetches the root catalog
// synchronously, rasterizes every row title, and seeds a [Queue] with one
// [Bundle] per row. It then spawns a [Pool] of workers and returns at once;
// the caller's rows exist before any bundle is processed.
//
// Each worker pops bundles until the queue is empty. A bundle that names a
// refset first resolves it into extra image URLs; a refset failure degrades
// the row but never stops the worker. Every image that downloads and decodes
// becomes an [EventImageLoaded] on the [Completions] channel, which a single
// consumer drains once per frame without blocking.
//
// Shutdown is driven by the consumer: closing [Completions] makes the next
// Send fail with [ErrReceiverClosed], and workers that see it exit quietly.
//
// # Usage
//
//	res, err := l.Load(ctx)
//	if err != nil {
//	    return err // catalog unavailable
//	}
//	defer res.Completions.Close()
//	for {
//	    res.Completions.Drain(model.Apply)
//	    // ... render a frame ...
//	}
package loader
