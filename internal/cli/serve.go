package cli

import (
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tilerow/pkg/cache"
	"github.com/matzehuels/tilerow/pkg/display"
)

// serveCommand creates the preview server command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr string
		fps  int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load the catalog and publish its state over HTTP",
		Long: `Serve loads the catalog like browse, but instead of drawing it publishes a
read-only JSON view of the rows, tiles and animation state.

Endpoints:
  GET /healthz
  GET /api/session
  GET /api/rows
  GET /api/rows/{row}
  GET /api/rows/{row}/title.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			s, err := c.openSession(ctx, logger)
			if err != nil {
				return err
			}
			defer s.Close()

			res, err := s.loader.Load(ctx)
			if err != nil {
				return err
			}
			model := display.NewModel(res.Rows, s.store, s.cfg.Animation.Display(), logger)
			defer model.Close(res.Completions)

			ps := newPreviewServer(logger)
			ps.publish(model.Snapshot())

			srv := &http.Server{Addr: addr, Handler: ps.routes(), ReadHeaderTimeout: 5 * time.Second}
			serveErr := make(chan error, 1)
			go func() { serveErr <- srv.ListenAndServe() }()

			printKeyValue("Listening", "http://"+displayAddr(addr))
			printKeyValue("Session", ps.session)

			interval := time.Second / time.Duration(max(1, fps))
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			last := time.Now()

			for {
				select {
				case now := <-ticker.C:
					model.Tick(res.Completions, now.Sub(last).Seconds())
					last = now
					ps.publish(model.Snapshot())
				case err := <-serveErr:
					if errors.Is(err, http.ErrServerClosed) {
						return nil
					}
					return err
				case <-ctx.Done():
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					if err := srv.Shutdown(shutdownCtx); err != nil {
						logger.Warn("shutdown", "err", err)
					}
					return ctx.Err()
				}
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "listen address")
	cmd.Flags().IntVar(&fps, "fps", 30, "snapshot updates per second")
	return cmd
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}

// previewServer serves the latest published snapshot. The consumer loop
// publishes; handlers only read, so they never touch the model itself.
type previewServer struct {
	snap    atomic.Pointer[display.Snapshot]
	session string
	logger  *log.Logger
}

func newPreviewServer(logger *log.Logger) *previewServer {
	return &previewServer{session: uuid.NewString(), logger: logger}
}

func (s *previewServer) publish(snap *display.Snapshot) {
	s.snap.Store(snap)
}

func (s *previewServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(s.sessionHeader)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok\n"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/session", s.handleSession)
		r.Get("/rows", s.handleRows)
		r.Get("/rows/{row}", s.handleRow)
		r.Get("/rows/{row}/title.png", s.handleTitle)
	})
	return r
}

func (s *previewServer) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"elapsed", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *previewServer) sessionHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Session-ID", s.session)
		next.ServeHTTP(w, r)
	})
}

type sessionResponse struct {
	Session     string           `json:"session"`
	Ready       bool             `json:"ready"`
	BundlesDone int              `json:"bundles_done"`
	Bundles     int              `json:"bundles"`
	SelectedRow int              `json:"selected_row"`
	Viewport    display.Viewport `json:"viewport"`
	Tiles       int              `json:"tiles"`
}

func (s *previewServer) handleSession(w http.ResponseWriter, r *http.Request) {
	snap := s.snap.Load()
	writeJSON(w, http.StatusOK, sessionResponse{
		Session:     s.session,
		Ready:       snap.Ready,
		BundlesDone: snap.BundlesDone,
		Bundles:     snap.Bundles,
		SelectedRow: snap.SelectedRow,
		Viewport:    snap.Viewport,
		Tiles:       tileCount(snap),
	})
}

type rowSummary struct {
	Index    int    `json:"index"`
	Title    string `json:"title"`
	Tiles    int    `json:"tiles"`
	Degraded bool   `json:"degraded"`
	Done     bool   `json:"done"`
}

func (s *previewServer) handleRows(w http.ResponseWriter, r *http.Request) {
	snap := s.snap.Load()
	out := make([]rowSummary, len(snap.Rows))
	for i, row := range snap.Rows {
		out[i] = rowSummary{Index: i, Title: row.Title, Tiles: len(row.Tiles), Degraded: row.Degraded, Done: row.Done}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *previewServer) handleRow(w http.ResponseWriter, r *http.Request) {
	row, ok := s.row(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func (s *previewServer) handleTitle(w http.ResponseWriter, r *http.Request) {
	row, ok := s.row(w, r)
	if !ok {
		return
	}
	bmp := row.TitleBitmap()
	if bmp.Empty() {
		writeError(w, http.StatusNotFound, "row has no title")
		return
	}

	etag := `"` + cache.Hash(bmp.Pix)[:16] + `"`
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("ETag", etag)
	if err := png.Encode(w, bmp.Image()); err != nil {
		s.logger.Warn("encode title", "err", err)
	}
}

// row resolves the {row} URL parameter against the current snapshot and
// writes a 404 if it does not exist.
func (s *previewServer) row(w http.ResponseWriter, r *http.Request) (display.RowSnapshot, bool) {
	snap := s.snap.Load()
	idx, err := strconv.Atoi(chi.URLParam(r, "row"))
	if err != nil || idx < 0 || idx >= len(snap.Rows) {
		writeError(w, http.StatusNotFound, "no such row")
		return display.RowSnapshot{}, false
	}
	return snap.Rows[idx], true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
