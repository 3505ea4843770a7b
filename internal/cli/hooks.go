package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tilerow/pkg/observability"
)

// traceHooks logs pipeline events at debug level. They are registered only
// when --verbose is set, so the default path keeps the no-op hooks.
type traceHooks struct {
	logger *log.Logger
}

func registerTraceHooks(logger *log.Logger) {
	if logger.GetLevel() > log.DebugLevel {
		return
	}
	h := traceHooks{logger: logger.WithPrefix("trace")}
	observability.SetLoaderHooks(h)
	observability.SetHTTPHooks(h)
	observability.SetCacheHooks(h)
}

func (h traceHooks) OnCatalogStart(_ context.Context, url string) {
	h.logger.Debug("catalog start", "url", url)
}

func (h traceHooks) OnCatalogComplete(_ context.Context, url string, rows int, d time.Duration, err error) {
	h.logger.Debug("catalog complete", "url", url, "rows", rows, "elapsed", d.Round(time.Millisecond), "err", err)
}

func (h traceHooks) OnBundleStart(_ context.Context, row, urls int) {
	h.logger.Debug("bundle start", "row", row, "urls", urls)
}

func (h traceHooks) OnRefsetResolved(_ context.Context, row int, id string, items int, err error) {
	h.logger.Debug("refset", "row", row, "id", id, "items", items, "err", err)
}

func (h traceHooks) OnBundleComplete(_ context.Context, row, loaded, failed int, d time.Duration) {
	h.logger.Debug("bundle complete", "row", row, "loaded", loaded, "failed", failed, "elapsed", d.Round(time.Millisecond))
}

func (h traceHooks) OnRequest(_ context.Context, method, host, path string) {}

func (h traceHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http", "method", method, "host", host, "path", path, "status", status, "elapsed", d.Round(time.Millisecond))
}

func (h traceHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "err", err)
}

func (h traceHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h traceHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h traceHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

var (
	_ observability.LoaderHooks = traceHooks{}
	_ observability.HTTPHooks   = traceHooks{}
	_ observability.CacheHooks  = traceHooks{}
)
