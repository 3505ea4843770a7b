package loader

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tilerow/pkg/errors"
	"github.com/matzehuels/tilerow/pkg/texture"
)

func quiet() *log.Logger { return log.New(io.Discard) }

// catalogServer serves a two-row catalog: row 0 has three inline tiles, row 1
// points at refset "abc" with five items. The refset answers with
// refsetStatus. The refset's last image (brokenImage) is not an image, so
// four of its tiles load.
type catalogServer struct {
	*httptest.Server
	refsetStatus int
	tile         []byte
}

func newCatalogServer(t *testing.T, refsetStatus int) *catalogServer {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	cs := &catalogServer{refsetStatus: refsetStatus, tile: buf.Bytes()}

	mux := http.NewServeMux()
	mux.HandleFunc("/home.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"data": {"StandardCollection": {"containers": [
			{"set": {"refId": null, "text": %s, "items": [%s, %s, %s]}},
			{"set": {"refId": "abc", "refType": "CuratedSet", "text": %s}}
		]}}}`,
			title("New to Disney+"),
			item(cs.URL, "series", 0), item(cs.URL, "program", 1), item(cs.URL, "default", 2),
			title("Trending"),
		)
	})
	mux.HandleFunc("/sets/abc.json", func(w http.ResponseWriter, r *http.Request) {
		if cs.refsetStatus != http.StatusOK {
			w.WriteHeader(cs.refsetStatus)
			return
		}
		items := make([]string, 5)
		for i := range items {
			items[i] = item(cs.URL, "series", 10+i)
		}
		fmt.Fprintf(w, `{"data": {"CuratedSet": {"items": [%s]}}}`, strings.Join(items, ","))
	})
	mux.HandleFunc("/img/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == brokenImage {
			w.Write([]byte("not an image"))
			return
		}
		w.Write(cs.tile)
	})
	cs.Server = httptest.NewServer(mux)
	t.Cleanup(cs.Close)
	return cs
}

// brokenImage is the path of the refset item that fails to decode.
const brokenImage = "/img/14.png"

func title(s string) string {
	return fmt.Sprintf(`{"title": {"full": {"set": {"default": {"content": %q}}}}}`, s)
}

func item(base, layout string, n int) string {
	return fmt.Sprintf(`{"image": {"tile": {"1.78": {%q: {"default": {"url": "%s/img/%d.png"}}}}}}`, layout, base, n)
}

// fakeFetcher hands out textures for URLs not listed in fail.
type fakeFetcher struct {
	store *texture.MemoryStore
	fail  map[string]bool

	mu    sync.Mutex
	calls []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (texture.Handle, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.mu.Unlock()
	if f.fail[url] || url == "" {
		return 0, errors.New(errors.ErrCodeNetwork, "fetch %s", url)
	}
	h, err := f.store.Allocate()
	if err != nil {
		return 0, err
	}
	return h, f.store.Upload(h, texture.Pixels{Data: make([]byte, 4), Width: 1, Height: 1, Channels: 4})
}

// tally counts drained events per row and kind.
type tally struct {
	loaded   map[int]int
	degraded map[int]bool
	done     map[int]int
	total    int
}

func drain(c *Completions) tally {
	t := tally{loaded: map[int]int{}, degraded: map[int]bool{}, done: map[int]int{}}
	c.Drain(func(ev Event) {
		switch ev.Kind {
		case EventImageLoaded:
			t.loaded[ev.Row]++
			t.total++
		case EventRefsetFailed:
			t.degraded[ev.Row] = true
		case EventBundleDone:
			t.done[ev.Row]++
		}
	})
	return t
}
