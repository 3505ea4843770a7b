// Package cache stores remote catalog and refset documents between runs.
//
// Image bytes are never cached here; only the JSON documents that describe
// rows are, so a warm start can build every row without touching the network
// before the workers begin fetching tiles.
//
// Three backends implement [Cache]:
//   - [FileCache]: one JSON file per entry under the user cache directory
//   - [RedisCache]: shared cache for several tilerow instances
//   - [NullCache]: caching disabled
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by helpers that need to distinguish a miss from
// an empty value.
var ErrCacheMiss = errors.New("cache miss")

// Cache is a byte-oriented key/value store with per-entry TTL.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the stored bytes and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
