// Package metrics defines Prometheus metrics for visast and adapts them to
// the observability hooks.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/visast/pkg/errors"
	"github.com/matzehuels/visast/pkg/observability"
)

var (
	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "visast_stage_duration_seconds",
			Help:    "Pipeline stage duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	StageErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visast_stage_errors_total",
			Help: "Pipeline stage failures by error code",
		},
		[]string{"stage", "code"},
	)

	GraphNodes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "visast_graph_nodes",
			Help:    "Nodes per built graph",
			Buckets: prometheus.ExponentialBuckets(4, 4, 8),
		},
	)

	RendersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visast_renders_total",
			Help: "Rendered artifacts by plotter",
		},
		[]string{"plotter"},
	)

	RenderBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visast_render_bytes_total",
			Help: "Bytes of rendered output by plotter",
		},
		[]string{"plotter"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "visast_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visast_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	InFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "visast_http_requests_in_flight",
			Help: "Requests currently being served",
		},
	)
)

func init() {
	prometheus.MustRegister(
		StageDuration, StageErrors, GraphNodes,
		RendersTotal, RenderBytes,
		RequestDuration, RequestsTotal, InFlight,
	)
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Install registers the Prometheus hooks with the observability package.
func Install() {
	observability.SetPipelineHooks(PipelineHooks{})
	observability.SetHTTPHooks(HTTPHooks{})
}

// =============================================================================
// Pipeline
// =============================================================================

// PipelineHooks records pipeline events.
type PipelineHooks struct{}

var _ observability.PipelineHooks = PipelineHooks{}

func (PipelineHooks) OnLoadStart(context.Context, string) {}

func (PipelineHooks) OnLoadComplete(_ context.Context, _ string, _ int, d time.Duration, err error) {
	observe("load", d, err)
}

func (PipelineHooks) OnBuildComplete(_ context.Context, nodes, _ int, d time.Duration) {
	StageDuration.WithLabelValues("build").Observe(d.Seconds())
	GraphNodes.Observe(float64(nodes))
}

func (PipelineHooks) OnLayoutStart(context.Context, int) {}

func (PipelineHooks) OnLayoutComplete(_ context.Context, d time.Duration, err error) {
	observe("layout", d, err)
}

func (PipelineHooks) OnRenderStart(context.Context, string) {}

func (PipelineHooks) OnRenderComplete(_ context.Context, plotter string, size int, d time.Duration, err error) {
	observe("render", d, err)
	if err == nil {
		RendersTotal.WithLabelValues(plotter).Inc()
		RenderBytes.WithLabelValues(plotter).Add(float64(size))
	}
}

func observe(stage string, d time.Duration, err error) {
	StageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if err != nil {
		StageErrors.WithLabelValues(stage, codeLabel(err)).Inc()
	}
}

func codeLabel(err error) string {
	if code := errors.GetCode(err); code != "" {
		return string(code)
	}
	return "UNKNOWN"
}

// =============================================================================
// HTTP
// =============================================================================

// HTTPHooks records server traffic.
type HTTPHooks struct{}

var _ observability.HTTPHooks = HTTPHooks{}

func (HTTPHooks) OnRequest(context.Context, string, string) {
	InFlight.Inc()
}

func (HTTPHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	InFlight.Dec()
	code := strconv.Itoa(status)
	RequestsTotal.WithLabelValues(method, route, code).Inc()
	RequestDuration.WithLabelValues(method, route, code).Observe(d.Seconds())
}
