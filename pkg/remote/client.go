package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/tilerow/pkg/cache"
	"github.com/matzehuels/tilerow/pkg/httputil"
	"github.com/matzehuels/tilerow/pkg/observability"
)

// DefaultTimeout bounds a single request. A hung request stalls only the
// goroutine that issued it.
const DefaultTimeout = 10 * time.Second

// maxBodySize caps how much of a response is read into memory.
const maxBodySize = 32 << 20

var (
	// ErrNotFound is returned when the remote resource doesn't exist.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, non-2xx responses).
	ErrNetwork = errors.New("network error")
)

// Options configures a [Client].
type Options struct {
	Timeout  time.Duration     // per-request timeout; 0 means DefaultTimeout
	Headers  map[string]string // applied to every request
	Cache    cache.Cache       // document cache; nil disables caching
	Keyer    cache.Keyer       // key derivation; nil uses cache.DefaultKeyer
	CacheTTL time.Duration     // TTL for cached documents
}

// Client performs GET requests for catalog documents and image bytes.
// It is safe for concurrent use by multiple workers.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	keyer   cache.Keyer
	ttl     time.Duration
	headers map[string]string
	maxBody int64
}

// NewClient creates a Client from opts.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := opts.Cache
	if c == nil {
		c = cache.NewNullCache()
	}
	k := opts.Keyer
	if k == nil {
		k = cache.NewDefaultKeyer()
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		cache:   c,
		keyer:   k,
		ttl:     opts.CacheTTL,
		headers: opts.Headers,
		maxBody: maxBodySize,
	}
}

// WithHTTPClient replaces the underlying *http.Client. Tests use this to
// route requests to an httptest server.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

// Keyer returns the keyer used for document cache keys.
func (c *Client) Keyer() cache.Keyer { return c.keyer }

// GetBytes performs an HTTP GET request and returns the full response body.
// A body larger than 32 MiB is an [ErrNetwork] failure, never a truncation.
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	body, err := c.doRequest(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	data, err := io.ReadAll(io.LimitReader(body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrNetwork, err)
	}
	if int64(len(data)) > c.maxBody {
		return nil, fmt.Errorf("%w: body too large (over %d bytes)", ErrNetwork, c.maxBody)
	}
	return data, nil
}

// Document returns the body of a JSON document, consulting the document
// cache under key first. Fresh bodies are stored only when they are valid
// JSON, so a truncated response is never cached. If refresh is true the cache
// read is skipped.
func (c *Client) Document(ctx context.Context, key, url string, refresh bool) ([]byte, error) {
	if !refresh {
		if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
			observability.Cache().OnCacheHit(ctx, keyType(key))
			return data, nil
		}
		observability.Cache().OnCacheMiss(ctx, keyType(key))
	}

	data, err := c.GetBytes(ctx, url)
	if err != nil {
		return nil, err
	}
	if json.Valid(data) {
		if err := c.cache.Set(ctx, key, data, c.ttl); err == nil {
			observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
		}
	}
	return data, nil
}

func (c *Client) doRequest(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	host, path := req.URL.Host, req.URL.Path
	observability.HTTP().OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, req.Method, host, path, err)
		return nil, &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	observability.HTTP().OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return &httputil.RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

// keyType extracts the key family ("catalog", "refset") for cache hooks.
func keyType(key string) string {
	if i := strings.LastIndex(key, ":"); i >= 0 {
		key = key[:i]
	}
	if i := strings.LastIndex(key, ":"); i >= 0 {
		key = key[i+1:]
	}
	return key
}
