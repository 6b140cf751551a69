package cli

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/visast/internal/metrics"
	"github.com/matzehuels/visast/pkg/buildinfo"
	"github.com/matzehuels/visast/pkg/cache"
	"github.com/matzehuels/visast/pkg/errors"
	"github.com/matzehuels/visast/pkg/observability"
	"github.com/matzehuels/visast/pkg/pipeline"
	"github.com/matzehuels/visast/pkg/render"
)

const (
	// maxSourceBytes caps the request body of POST /render.
	maxSourceBytes = 1 << 20

	shutdownTimeout = 5 * time.Second

	// artifactTTL is how long a rendered response stays cached.
	artifactTTL = 24 * time.Hour
)

func (c *CLI) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Render syntax trees over HTTP",
		Long: `Serve an HTTP API that renders Python source posted to /render.

  POST /render?plotter=static|interactive   body: Python source
  GET  /healthz
  GET  /metrics                               Prometheus metrics

Rendered output is returned in the response and never written to disk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			plotter, err := c.cfg.PlotterKind()
			if err != nil {
				return err
			}
			metrics.Install()
			s := newServer(c.newRunner(), plotter, c.Logger)
			s.cache = c.openCache()
			defer s.cache.Close()
			return c.serve(cmd.Context(), c.cfg.Addr, s)
		},
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	return cmd
}

// serve runs the HTTP server until ctx is cancelled, then drains it.
func (c *CLI) serve(ctx context.Context, addr string, s *server) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	printInfo(c.Out, "Listening on %s", addr)

	select {
	case err := <-errc:
		return errors.Wrap(errors.ErrCodeNetwork, err, "listen on %s", addr)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		c.Logger.Warn("shutdown", "err", err)
	}
	return ctx.Err()
}

// =============================================================================
// Server
// =============================================================================

type server struct {
	runner  *pipeline.Runner
	plotter pipeline.Plotter
	logger  *log.Logger
	cache   cache.Cache
}

func newServer(runner *pipeline.Runner, plotter pipeline.Plotter, logger *log.Logger) *server {
	return &server{runner: runner, plotter: plotter, logger: logger, cache: cache.NullCache{}}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Post("/render", s.handleRender)
	return r
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Get().Version,
	})
}

func (s *server) handleRender(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	plotter := s.plotter
	if name := r.URL.Query().Get("plotter"); name != "" {
		p, err := pipeline.ParsePlotter(name)
		if err != nil {
			writeError(w, r, err)
			return
		}
		plotter = p
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSourceBytes))
	if err != nil {
		writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body"))
		return
	}
	if len(body) == 0 {
		writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "request body must contain Python source"))
		return
	}

	title := r.URL.Query().Get("title")
	key := cache.Key(cache.NamespaceArtifact, plotter.String(), title, string(body))
	if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		w.Header().Set("Content-Type", mediaType(plotter))
		w.Header().Set("X-Cache", "hit")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	start := time.Now()
	tree, err := s.runner.Loader.FromString(ctx, string(body))
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.runner.Visualize(ctx, tree, time.Since(start), pipeline.Options{
		Plotter: plotter,
		Title:   title,
		Logger:  s.logger,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.cache.Set(ctx, key, res.Artifact.Data, artifactTTL); err != nil {
		s.logger.Warn("cache artifact", "err", err)
	}

	w.Header().Set("Content-Type", res.Artifact.MediaType)
	w.Header().Set("X-Node-Count", strconv.Itoa(res.Stats.NodeCount))
	w.Header().Set("X-Cache", "miss")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifact.Data)
}

// mediaType is the content type a plotter produces when rendering in memory.
func mediaType(p pipeline.Plotter) string {
	if p == pipeline.PlotterInteractive {
		return render.MediaHTML
	}
	return render.MediaSVG
}

// =============================================================================
// Middleware
// =============================================================================

type requestIDKey struct{}

const headerRequestID = "X-Request-ID"

// requestID propagates a caller's UUID request ID or assigns a new one, and
// echoes it on the response.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// instrument reports each request to the HTTP hooks under its route pattern.
func (s *server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, route, status, elapsed)
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", elapsed,
			"request_id", requestIDFrom(r.Context()))
	})
}

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, statusFor(err), map[string]errorBody{"error": {
		Code:      string(code),
		Message:   errors.UserMessage(err),
		RequestID: requestIDFrom(r.Context()),
	}})
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeUnsupported, errors.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
