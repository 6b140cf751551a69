package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/visast/pkg/astgraph"
	"github.com/matzehuels/visast/pkg/layout"
	"github.com/matzehuels/visast/pkg/observability"
	"github.com/matzehuels/visast/pkg/render"
	"github.com/matzehuels/visast/pkg/syntax"
)

// Visualize converts root to a graph, lays it out and renders it with the
// configured plotter.
func Visualize(ctx context.Context, root syntax.Node, opts Options) (*Result, error) {
	opts.setDefaults()
	hooks := observability.Pipeline()

	renderer, err := NewRenderer(opts.Plotter, opts.Render)
	if err != nil {
		return nil, err
	}

	result := &Result{}

	// Stage 1: Build
	buildStart := time.Now()
	var buildOpts []astgraph.Option
	if opts.Identity != nil {
		buildOpts = append(buildOpts, astgraph.WithIdentity(opts.Identity))
	}
	g := astgraph.Build(root, buildOpts...)
	result.Graph = g
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()
	hooks.OnBuildComplete(ctx, g.NodeCount(), g.EdgeCount(), result.Stats.BuildTime)

	opts.Logger.Debug("built graph",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"duration", result.Stats.BuildTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	hooks.OnLayoutStart(ctx, g.NodeCount())
	pos, err := layout.Hierarchy(g, opts.Layout...)
	result.Stats.LayoutTime = time.Since(layoutStart)
	hooks.OnLayoutComplete(ctx, result.Stats.LayoutTime, err)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Positions = pos

	opts.Logger.Debug("computed layout", "duration", result.Stats.LayoutTime)

	// Stage 3: Render
	scene := render.NewScene(g, pos)
	scene.Title = opts.Title

	renderStart := time.Now()
	hooks.OnRenderStart(ctx, opts.Plotter.String())
	art, err := renderer.Render(ctx, scene)
	result.Stats.RenderTime = time.Since(renderStart)
	hooks.OnRenderComplete(ctx, opts.Plotter.String(), len(art.Data), result.Stats.RenderTime, err)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifact = art

	opts.Logger.Debug("rendered",
		"plotter", opts.Plotter,
		"bytes", len(art.Data),
		"path", art.Path,
		"duration", result.Stats.RenderTime)

	return result, nil
}
