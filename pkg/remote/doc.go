// Package remote provides the HTTP client used for every network call
// tilerow makes: the root catalog, refset documents, and tile images.
//
// [Client] applies default headers, tags each request with an X-Request-ID,
// classifies failures into [ErrNetwork] and [ErrNotFound], and reports
// request timings through the observability HTTP hooks. JSON documents can
// be served from a [cache.Cache]; image bytes never are.
//
// Transport failures and 5xx responses are wrapped in
// [httputil.RetryableError] so callers that opt into retries (the root
// catalog fetch) can use [httputil.Retry]. The client itself never retries.
package remote
