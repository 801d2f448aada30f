// Package server exposes a loaded table over a small JSON and PNG HTTP API.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/KaramelBytes/ioscope/internal/dataset"
	"github.com/KaramelBytes/ioscope/internal/fuzzy"
	"github.com/KaramelBytes/ioscope/internal/keymap"
	"github.com/KaramelBytes/ioscope/internal/render"
	"github.com/KaramelBytes/ioscope/internal/view"
)

// errBadParam marks malformed query parameters.
var errBadParam = errors.New("bad parameter")

// Options configures a Server.
type Options struct {
	Defaults    view.Defaults
	Match       fuzzy.Options
	CacheSize   int
	CacheTTL    time.Duration
	ChartWidth  int
	ChartHeight int
}

// Server serves one table. Handlers never mutate the table, so requests
// run concurrently without locking.
type Server struct {
	table   *dataset.Table
	opt     Options
	log     *logrus.Logger
	matcher *fuzzy.Matcher
	renders singleflight.Group
	router  *chi.Mux
}

// New builds a server for t.
func New(t *dataset.Table, opt Options, log *logrus.Logger) *Server {
	if opt.Defaults == (view.Defaults{}) {
		opt.Defaults = view.DefaultDefaults()
	}
	if opt.ChartWidth <= 0 {
		opt.ChartWidth = render.DefaultWidth
	}
	if opt.ChartHeight <= 0 {
		opt.ChartHeight = render.DefaultHeight
	}
	if opt.Match == (fuzzy.Options{}) {
		opt.Match = fuzzy.DefaultOptions()
	}
	s := &Server{
		table:   t,
		opt:     opt,
		log:     log,
		matcher: fuzzy.NewMatcher(opt.Match, opt.CacheSize, opt.CacheTTL),
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(requestLogger(s.log))
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/columns", s.handleColumns)
		r.Get("/match", s.handleMatch)
		r.Get("/views", s.handleViews)
		r.Get("/keys", s.handleKeys)
		r.Get("/scatter", s.handleScatter)
		r.Get("/scatter.png", s.handlePNG(view.Scatter))
		r.Get("/histogram", s.handleHistogram)
		r.Get("/histogram.png", s.handlePNG(view.Histogram))
	})
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.WithField("addr", addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) handleColumns(w http.ResponseWriter, r *http.Request) {
	set, err := view.ParseColumnSet(r.URL.Query().Get("kind"))
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadParam, err))
		return
	}
	writeJSON(w, http.StatusOK, view.ColumnOptions(s.table, set))
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	set, err := view.ParseColumnSet(q.Get("kind"))
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadParam, err))
		return
	}
	hits := s.matcher.Match(view.ColumnOptions(s.table, set), q.Get("q"))
	if hits == nil {
		hits = []fuzzy.Option{}
	}
	writeJSON(w, http.StatusOK, hits)
}

func (s *Server) handleViews(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, view.KindOptions())
}

// handleKeys binds a left and a right panel of the requested kinds and lists
// the resulting chords, optionally for one side only.
func (s *Server) handleKeys(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	router := keymap.NewRouter()
	left := view.NewPanel(keymap.Left, view.ParseKind(q.Get("left")), s.opt.Defaults)
	right := view.NewPanel(keymap.Right, view.ParseKind(q.Get("right")), s.opt.Defaults)
	for _, p := range []*view.Panel{left, right} {
		if err := p.Bind(router); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	type entry struct {
		Position    string `json:"position"`
		Field       string `json:"field"`
		Keys        string `json:"keys"`
		Placeholder string `json:"placeholder"`
	}
	only := q.Get("position")
	var want keymap.Position
	if only != "" {
		p, err := keymap.ParsePosition(only)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("%w: %v", errBadParam, err))
			return
		}
		want = p
	}
	out := []entry{}
	for _, b := range router.Bindings() {
		pos := keymap.Left
		if b.Target.Panel == right.ID {
			pos = keymap.Right
		}
		if only != "" && pos != want {
			continue
		}
		out = append(out, entry{
			Position:    pos.String(),
			Field:       string(b.Target.Field),
			Keys:        b.Keys,
			Placeholder: b.Chord.Placeholder(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleScatter(w http.ResponseWriter, r *http.Request) {
	out, err := s.output(view.Scatter, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out.Scatter)
}

func (s *Server) handleHistogram(w http.ResponseWriter, r *http.Request) {
	out, err := s.output(view.Histogram, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out.Histogram)
}

// handlePNG renders the panel as a chart. Identical concurrent requests
// share one render.
func (s *Server) handlePNG(kind view.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		width, err := queryInt(q.Get("width"), s.opt.ChartWidth)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		height, err := queryInt(q.Get("height"), s.opt.ChartHeight)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		key := kind.String() + "?" + q.Encode()
		v, err, shared := s.renders.Do(key, func() (any, error) {
			out, err := s.output(kind, r)
			if err != nil {
				return nil, err
			}
			var buf bytes.Buffer
			if err := render.OutputPNG(&buf, out, width, height); err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if shared {
			s.log.WithField("key", key).Debug("shared render")
		}
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(v.([]byte))
	}
}

// output builds a panel from the request's query and renders it.
func (s *Server) output(kind view.Kind, r *http.Request) (view.Output, error) {
	q := r.URL.Query()
	p := view.NewPanel(keymap.Left, kind, s.opt.Defaults)
	if kind == view.Histogram {
		var err error
		if p.Filter.RangeMin, err = queryFloat(q.Get("min"), p.Filter.RangeMin); err != nil {
			return view.Output{}, err
		}
		if p.Filter.RangeMax, err = queryFloat(q.Get("max"), p.Filter.RangeMax); err != nil {
			return view.Output{}, err
		}
		if p.Filter.BinCount, err = queryInt(q.Get("bins"), p.Filter.BinCount); err != nil {
			return view.Output{}, err
		}
	}
	inKey, outKey := "x", "y"
	if kind == view.Histogram {
		inKey, outKey = "input", "output"
	}
	for _, sel := range []struct {
		field keymap.Field
		key   string
	}{{keymap.FieldInput, inKey}, {keymap.FieldOutput, outKey}} {
		col, err := view.ResolveColumn(p.Options(s.table, sel.field), q.Get(sel.key))
		if err != nil {
			return view.Output{}, fmt.Errorf("%s: %w", sel.key, err)
		}
		if err := p.Select(sel.field, col); err != nil {
			return view.Output{}, err
		}
	}
	return p.Render(s.table), nil
}

func queryFloat(raw string, def float64) (float64, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	f, err := cast.ToFloat64E(strings.TrimSpace(raw))
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q is not a finite number", errBadParam, raw)
	}
	return f, nil
}

func queryInt(raw string, def int) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", errBadParam, raw)
	}
	return n, nil
}

type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, view.ErrUnknownColumn), errors.Is(err, errBadParam):
		status = http.StatusBadRequest
	case errors.Is(err, keymap.ErrChordTaken):
		status = http.StatusConflict
	}
	entry := s.log.WithError(err).WithField("path", r.URL.Path)
	if status >= 500 {
		entry.Error("request failed")
	} else {
		entry.Debug("rejected request")
	}
	writeJSON(w, status, errorBody{Error: err.Error(), RequestID: RequestID(r.Context())})
}

// writeJSON encodes v before touching the response, so an encoding failure
// becomes a 500 instead of a truncated 2xx.
func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		b, _ = json.Marshal(errorBody{Error: fmt.Sprintf("encode response: %v", err)})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(b, '\n'))
}
