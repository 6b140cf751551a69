// Package pipeline runs the complete visast conversion: syntax tree → graph
// → colors → layout → rendered artifact.
//
// The CLI and the HTTP server both go through this package so that plotter
// selection, defaults and instrumentation stay in one place.
//
// # Plotters
//
// [Plotter] is a closed set. [ParsePlotter] accepts the canonical names
// "static" and "interactive" as well as "matplotlib" and "pyvis", the names
// older configurations used for the same backends. Anything else is an
// UNSUPPORTED error; there is no silent fallback.
//
// # Usage
//
//	tree, err := source.Load(ctx, "hello.py")
//	res, err := pipeline.Visualize(ctx, tree, pipeline.Options{
//	    Plotter: pipeline.PlotterInteractive,
//	    Render:  render.Options{Show: true, Viewer: render.OpenInViewer},
//	})
//
// Or load and visualize in one step with a [Runner]:
//
//	res, err := pipeline.NewRunner(nil, logger).Run(ctx, "hello.py", opts)
package pipeline

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/visast/pkg/astgraph"
	"github.com/matzehuels/visast/pkg/errors"
	"github.com/matzehuels/visast/pkg/layout"
	"github.com/matzehuels/visast/pkg/render"
	"github.com/matzehuels/visast/pkg/render/interactive"
	"github.com/matzehuels/visast/pkg/render/static"
)

// =============================================================================
// Plotters
// =============================================================================

// Plotter selects a rendering backend.
type Plotter int

const (
	// PlotterStatic draws a fixed Graphviz diagram (SVG, PNG, PDF).
	PlotterStatic Plotter = iota
	// PlotterInteractive writes a vis-network HTML page.
	PlotterInteractive
)

// DefaultPlotter is used when no plotter is configured.
const DefaultPlotter = PlotterStatic

var plotterNames = map[string]Plotter{
	"static":      PlotterStatic,
	"matplotlib":  PlotterStatic,
	"interactive": PlotterInteractive,
	"pyvis":       PlotterInteractive,
}

// String returns the canonical plotter name.
func (p Plotter) String() string {
	switch p {
	case PlotterStatic:
		return "static"
	case PlotterInteractive:
		return "interactive"
	default:
		return fmt.Sprintf("Plotter(%d)", int(p))
	}
}

// ParsePlotter resolves a plotter name, case-insensitively.
func ParsePlotter(name string) (Plotter, error) {
	if p, ok := plotterNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return p, nil
	}
	return 0, errors.New(errors.ErrCodeUnsupported,
		"unknown plotter %q (must be one of: static, interactive)", name)
}

// Plotters returns the canonical plotter names.
func Plotters() []string {
	return []string{PlotterStatic.String(), PlotterInteractive.String()}
}

// DefaultOutput returns the file a plotter writes when no output is set.
func DefaultOutput(p Plotter) string {
	if p == PlotterInteractive {
		return interactive.DefaultOutput
	}
	return static.DefaultOutput
}

// NewRenderer returns the backend for p.
func NewRenderer(p Plotter, opts render.Options) (render.Renderer, error) {
	switch p {
	case PlotterStatic:
		return static.New(opts), nil
	case PlotterInteractive:
		return interactive.New(opts), nil
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported plotter %s", p)
	}
}

// =============================================================================
// Options and Results
// =============================================================================

// Options configures one pipeline run.
type Options struct {
	Plotter Plotter
	Render  render.Options

	// Title is drawn above the diagram. Empty uses render.DefaultTitle.
	Title string
	// Identity overrides the per-build identity arena.
	Identity astgraph.IdentityFunc
	// Layout tunes the hierarchy layout.
	Layout []layout.Option

	Logger *log.Logger
}

func (o *Options) setDefaults() {
	if o.Title == "" {
		o.Title = render.DefaultTitle
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Graph     *astgraph.Graph
	Positions layout.Positions
	Artifact  render.Artifact
	Stats     Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	LoadTime   time.Duration
	BuildTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}
