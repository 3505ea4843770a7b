package cli

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tilerow/pkg/config"
)

// newCatalogServer serves a catalog with two rows of two tiles each. The
// second row comes from refset "r1".
func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 8, 8))); err != nil {
		t.Fatal(err)
	}
	tile := buf.Bytes()

	var srv *httptest.Server
	item := func(n int) string {
		return fmt.Sprintf(`{"image": {"tile": {"1.78": {"series": {"default": {"url": "%s/img/%d.png"}}}}}}`, srv.URL, n)
	}
	title := func(s string) string {
		return fmt.Sprintf(`{"title": {"full": {"set": {"default": {"content": %q}}}}}`, s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/home.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"data": {"StandardCollection": {"containers": [
			{"set": {"text": %s, "items": [%s, %s]}},
			{"set": {"refId": "r1", "refType": "CuratedSet", "text": %s}}
		]}}}`, title("Featured"), item(1), item(2), title("Trending"))
	})
	mux.HandleFunc("/sets/r1.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"data": {"CuratedSet": {"items": [%s, %s]}}}`, item(3), item(4))
	})
	mux.HandleFunc("/img/", func(w http.ResponseWriter, r *http.Request) {
		w.Write(tile)
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// testCLI returns a CLI configured against srv with caching disabled.
func testCLI(t *testing.T, srv *httptest.Server) *CLI {
	t.Helper()
	c := New(io.Discard, LogInfo)
	cfg := config.Default()
	cfg.CatalogURL = srv.URL + "/home.json"
	cfg.RefsetURL = srv.URL + "/sets/{{id}}.json"
	cfg.Workers = 2
	cfg.Image.Width, cfg.Image.Height = 16, 9
	cfg.Cache.Enabled = false
	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	c.cfg = cfg
	return c
}

func quietLogger() *log.Logger { return log.New(io.Discard) }
