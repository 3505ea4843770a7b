// Package httputil provides retry helpers for remote document fetches.
//
// # Retry
//
// [Retry] runs an operation up to a fixed number of attempts with
// exponential backoff. Only errors wrapped in [RetryableError] are retried;
// everything else is returned immediately:
//
//	var data []byte
//	err := httputil.Retry(ctx, 3, time.Second, func() (err error) {
//	    data, err = client.Document(ctx, key, url, false)
//	    return err
//	})
//
// tilerow applies retries to the root catalog fetch only, and only when
// configured (catalog_attempts > 1). Tile images and refset documents are
// fetched exactly once: a failure there drops the tile or degrades the row.
package httputil
