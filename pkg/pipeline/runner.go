package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/visast/pkg/observability"
	"github.com/matzehuels/visast/pkg/source"
	"github.com/matzehuels/visast/pkg/syntax"
)

// Runner loads program references and visualizes them.
//
// A Runner holds no per-run state; multiple goroutines can share one as long
// as each run that shows its output uses a distinct output path.
type Runner struct {
	Loader *source.Loader
	Logger *log.Logger
}

// NewRunner returns a runner. A nil loader uses [source.New]; a nil logger
// uses log.Default().
func NewRunner(loader *source.Loader, logger *log.Logger) *Runner {
	if loader == nil {
		loader = source.New()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Loader: loader, Logger: logger}
}

// Load reads ref into a syntax tree and reports the load hooks.
func (r *Runner) Load(ctx context.Context, ref string) (*syntax.Element, time.Duration, error) {
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, ref)

	start := time.Now()
	tree, err := r.Loader.Load(ctx, ref)
	elapsed := time.Since(start)

	count := 0
	if err == nil {
		count = syntax.Count(tree)
	}
	hooks.OnLoadComplete(ctx, ref, count, elapsed, err)
	if err != nil {
		return nil, elapsed, err
	}

	r.Logger.Debug("loaded source", "ref", ref, "nodes", count, "duration", elapsed)
	return tree, elapsed, nil
}

// Run loads ref and visualizes it.
func (r *Runner) Run(ctx context.Context, ref string, opts Options) (*Result, error) {
	tree, elapsed, err := r.Load(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", ref, err)
	}
	return r.Visualize(ctx, tree, elapsed, opts)
}

// Visualize renders an already loaded tree, recording loadTime in the stats.
func (r *Runner) Visualize(ctx context.Context, tree syntax.Node, loadTime time.Duration, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	res, err := Visualize(ctx, tree, opts)
	if err != nil {
		return nil, err
	}
	res.Stats.LoadTime = loadTime
	return res, nil
}
