package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/visast/pkg/cache"
	"github.com/matzehuels/visast/pkg/errors"
	"github.com/matzehuels/visast/pkg/observability"
	"github.com/matzehuels/visast/pkg/pipeline"
)

func testServer() http.Handler {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	return newServer(pipeline.NewRunner(nil, logger), pipeline.PlotterInteractive, logger).routes()
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body map[string]errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body["error"]
}

func TestServe_Health(t *testing.T) {
	rec := do(testServer(), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s", rec.Body)
	}
	if _, err := uuid.Parse(rec.Header().Get("X-Request-ID")); err != nil {
		t.Errorf("X-Request-ID = %q is not a UUID", rec.Header().Get("X-Request-ID"))
	}
}

func TestServe_RequestIDPropagates(t *testing.T) {
	h := testServer()
	id := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", id)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != id {
		t.Errorf("X-Request-ID = %q, want %q", got, id)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "not-a-uuid")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got == "not-a-uuid" || got == "" {
		t.Errorf("invalid request ID was not replaced: %q", got)
	}
}

func TestServe_Render(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		media   string
		content string
	}{
		{"default plotter", "/render", "text/html; charset=utf-8", "vis-network"},
		{"interactive", "/render?plotter=pyvis&title=hello", "text/html; charset=utf-8", "<title>hello</title>"},
		{"static", "/render?plotter=static", "image/svg+xml", "<svg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(testServer(), http.MethodPost, tt.target, helloWorld)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
			}
			if got := rec.Header().Get("Content-Type"); got != tt.media {
				t.Errorf("Content-Type = %q, want %q", got, tt.media)
			}
			if rec.Header().Get("X-Node-Count") == "" {
				t.Error("X-Node-Count missing")
			}
			if !strings.Contains(rec.Body.String(), tt.content) {
				t.Errorf("body does not contain %q", tt.content)
			}
		})
	}
}

func TestServe_RenderCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logger := log.NewWithOptions(io.Discard, log.Options{})
	s := newServer(pipeline.NewRunner(nil, logger), pipeline.PlotterInteractive, logger)
	s.cache = fc
	h := s.routes()

	first := do(h, http.MethodPost, "/render", helloWorld)
	second := do(h, http.MethodPost, "/render", helloWorld)
	other := do(h, http.MethodPost, "/render?title=other", helloWorld)

	if first.Header().Get("X-Cache") != "miss" || second.Header().Get("X-Cache") != "hit" {
		t.Errorf("X-Cache = %q then %q, want miss then hit", first.Header().Get("X-Cache"), second.Header().Get("X-Cache"))
	}
	if other.Header().Get("X-Cache") != "miss" {
		t.Error("a different title should not share the cache entry")
	}
	if first.Body.String() != second.Body.String() {
		t.Error("cached body differs from the rendered one")
	}
	if got := second.Header().Get("Content-Type"); got != "text/html; charset=utf-8" {
		t.Errorf("cached Content-Type = %q", got)
	}
}

func TestServe_RenderErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
		status int
		code   string
	}{
		{"unknown plotter", "/render?plotter=bokeh", helloWorld, http.StatusBadRequest, "UNSUPPORTED"},
		{"empty body", "/render", "", http.StatusBadRequest, "INVALID_INPUT"},
		{"syntax error", "/render", "def (:\n", http.StatusBadRequest, "INVALID_INPUT"},
		{"too large", "/render", strings.Repeat("x", maxSourceBytes+1), http.StatusRequestEntityTooLarge, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(testServer(), http.MethodPost, tt.target, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			body := decodeError(t, rec)
			if body.Code != tt.code {
				t.Errorf("code = %q, want %q", body.Code, tt.code)
			}
			if body.RequestID == "" || body.RequestID != rec.Header().Get("X-Request-ID") {
				t.Errorf("request_id = %q, header = %q", body.RequestID, rec.Header().Get("X-Request-ID"))
			}
		})
	}
}

func TestServe_MethodNotAllowed(t *testing.T) {
	if rec := do(testServer(), http.MethodGet, "/render", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /render status = %d, want 405", rec.Code)
	}
}

func TestServe_Metrics(t *testing.T) {
	rec := do(testServer(), http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "visast_") {
		t.Errorf("status = %d, visast metrics present = %v", rec.Code, strings.Contains(rec.Body.String(), "visast_"))
	}
}

func TestServe_HTTPHooks(t *testing.T) {
	rec := &httpRecorder{}
	observability.SetHTTPHooks(rec)
	t.Cleanup(observability.Reset)

	do(testServer(), http.MethodPost, "/render?plotter=nope", helloWorld)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.responses) != 1 || rec.responses[0] != "POST /render 400" {
		t.Errorf("responses = %v", rec.responses)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New(errors.ErrCodeInvalidInput, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeUnsupported, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeNetwork, "x"), http.StatusInternalServerError},
		{fmt.Errorf("plain"), http.StatusInternalServerError},
		{errors.Wrap(errors.ErrCodeInvalidInput, &http.MaxBytesError{Limit: 1}, "x"), http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestServe_Shutdown(t *testing.T) {
	tc := newTestCLI(t)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		logger := log.NewWithOptions(io.Discard, log.Options{})
		errc <- tc.serve(ctx, "127.0.0.1:0", newServer(pipeline.NewRunner(nil, logger), pipeline.PlotterStatic, logger))
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-errc:
		if err != context.Canceled {
			t.Errorf("serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
	}
	if !bytes.Contains(tc.out.Bytes(), []byte("Listening on")) {
		t.Errorf("output = %q", tc.out)
	}
}

type httpRecorder struct {
	observability.NoopHTTPHooks
	mu        sync.Mutex
	responses []string
}

func (r *httpRecorder) OnResponse(_ context.Context, method, route string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses = append(r.responses, fmt.Sprintf("%s %s %d", method, route, status))
}
