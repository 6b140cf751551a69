package cli

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/visast/internal/watch"
	"github.com/matzehuels/visast/pkg/errors"
	"github.com/matzehuels/visast/pkg/pipeline"
	"github.com/matzehuels/visast/pkg/syntax"
)

// loadConcurrency bounds how many inputs are fetched and parsed at once.
const loadConcurrency = 4

func (c *CLI) renderCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "render <file|url>...",
		Short: "Draw the syntax tree of Python sources",
		Long: `Draw the syntax tree of each Python file or URL in turn.

The plotter decides the output: "static" writes a Graphviz diagram (SVG by
default, PNG, PDF or DOT by output extension), "interactive" writes an HTML
page. With several inputs each one gets its own output file, named after
the input.`,
		Example: `  visast render hello.py
  visast render -p interactive -o ast.html hello.py
  visast render --watch a.py b.py`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args)
		},
	}
}

// runRender loads every ref concurrently, then renders them one at a time.
func (c *CLI) runRender(ctx context.Context, refs []string) error {
	plotter, err := c.cfg.PlotterKind()
	if err != nil {
		return err
	}
	runner := c.newRunner()

	spin := newSpinner(ctx, c.Err, "Parsing sources...")
	if !c.cfg.Verbose {
		spin.Start()
	}
	inputs, err := loadAll(ctx, runner, refs)
	spin.Stop()
	if err != nil {
		return err
	}

	outputs := outputsFor(c.cfg.Output, pipeline.DefaultOutput(plotter), refs)
	for i, in := range inputs {
		in.output = outputs[i]
		if err := c.renderInput(ctx, runner, plotter, in); err != nil {
			return err
		}
	}

	if c.cfg.Watch {
		return c.watchAndRender(ctx, runner, plotter, refs, outputs)
	}
	return nil
}

// input is a loaded source ready to render.
type input struct {
	ref      string
	output   string
	tree     *syntax.Element
	loadTime time.Duration
}

// loadAll parses refs concurrently; results keep the order of refs.
func loadAll(ctx context.Context, runner *pipeline.Runner, refs []string) ([]input, error) {
	out := make([]input, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)
	for i, ref := range refs {
		g.Go(func() error {
			tree, took, err := runner.Load(gctx, ref)
			if err != nil {
				return fmt.Errorf("load %s: %w", ref, err)
			}
			out[i] = input{ref: ref, tree: tree, loadTime: took}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CLI) renderInput(ctx context.Context, runner *pipeline.Runner, plotter pipeline.Plotter, in input) error {
	prog := newProgress(c.Logger)

	res, err := runner.Visualize(ctx, in.tree, in.loadTime, pipeline.Options{
		Plotter: plotter,
		Render:  c.renderOptions(in.output),
		Title:   c.cfg.Title,
	})
	if err != nil {
		return fmt.Errorf("render %s: %w", in.ref, err)
	}
	prog.done("rendered", "ref", in.ref)

	printSuccess(c.Out, "Rendered %s", in.ref)
	if res.Artifact.Path != "" {
		printFile(c.Out, res.Artifact.Path)
	} else {
		printInfo(c.Out, "show is off; nothing written")
	}
	s := res.Stats
	printStats(c.Out, s.NodeCount, s.EdgeCount, plotter.String(), s.LoadTime+s.BuildTime+s.LayoutTime+s.RenderTime)
	return nil
}

// outputsFor picks one output path per ref. A single input uses output (or
// the plotter default) as is; with several inputs the input's base name is
// appended to the stem, e.g. ast.svg + pkg/util.py -> ast-util.svg. Inputs
// sharing a base name get a counter: a/x.py, b/x.py -> ast-x.svg, ast-x-2.svg.
func outputsFor(output, def string, refs []string) []string {
	if output == "" {
		output = def
	}
	if len(refs) == 1 {
		return []string{output}
	}
	ext := filepath.Ext(output)
	stem := strings.TrimSuffix(output, ext)

	taken := make(map[string]bool, len(refs))
	out := make([]string, len(refs))
	for i, ref := range refs {
		base := stem + "-" + inputName(ref)
		name := base + ext
		for n := 2; taken[name]; n++ {
			name = fmt.Sprintf("%s-%d%s", base, n, ext)
		}
		taken[name] = true
		out[i] = name
	}
	return out
}

// inputName is the base name of a path or URL without its extension.
func inputName(ref string) string {
	base := filepath.Base(ref)
	if errors.IsURL(ref) {
		u, err := url.Parse(ref)
		switch {
		case err != nil:
		case u.Path != "" && u.Path != "/":
			base = path.Base(u.Path)
		default:
			base = u.Hostname()
		}
	}
	if name := strings.TrimSuffix(base, path.Ext(base)); name != "" {
		return name
	}
	return base
}

// watchAndRender re-renders local inputs whenever they change, until ctx is
// cancelled. Failures are reported and watching continues.
func (c *CLI) watchAndRender(ctx context.Context, runner *pipeline.Runner, plotter pipeline.Plotter, refs, outputs []string) error {
	var local []int
	for i, ref := range refs {
		if !errors.IsURL(ref) {
			local = append(local, i)
		}
	}
	if len(local) == 0 {
		printWarning(c.Out, "--watch has no local files to watch")
		return nil
	}

	paths := make([]string, len(local))
	for i, idx := range local {
		paths[i] = refs[idx]
	}
	w, err := watch.New(paths...)
	if err != nil {
		return err
	}
	w.Logger = c.Logger

	abs := make(map[string][]int, len(local))
	for _, idx := range local {
		p, _ := filepath.Abs(refs[idx])
		abs[p] = append(abs[p], idx)
	}

	printInfo(c.Out, "Watching %d file(s), press Ctrl+C to stop", len(local))
	err = w.Run(ctx, func(changed []string) {
		slices.Sort(changed)
		for _, p := range changed {
			for _, idx := range abs[p] {
				ref := refs[idx]
				tree, took, err := runner.Load(ctx, ref)
				if err == nil {
					err = c.renderInput(ctx, runner, plotter, input{ref: ref, output: outputs[idx], tree: tree, loadTime: took})
				}
				if err != nil {
					printError(c.Out, "%s: %v", ref, err)
				}
			}
		}
	})
	if err != nil {
		return err
	}
	return ctx.Err()
}
