package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/visast/pkg/errors"
	"github.com/matzehuels/visast/pkg/observability"
	"github.com/matzehuels/visast/pkg/render"
	"github.com/matzehuels/visast/pkg/source"
	"github.com/matzehuels/visast/pkg/syntax"
)

func tree() syntax.Node {
	return syntax.Module(
		syntax.FunctionDef("main",
			syntax.New("Expr", syntax.New("Call", syntax.Name("print", syntax.Load()), syntax.Constant("hi"))),
		),
	)
}

func TestParsePlotter(t *testing.T) {
	tests := []struct {
		in      string
		want    Plotter
		wantErr bool
	}{
		{"static", PlotterStatic, false},
		{"interactive", PlotterInteractive, false},
		{"matplotlib", PlotterStatic, false},
		{"pyvis", PlotterInteractive, false},
		{" Interactive ", PlotterInteractive, false},
		{"bokeh", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePlotter(tt.in)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeUnsupported) {
					t.Errorf("ParsePlotter(%q) error = %v, want UNSUPPORTED", tt.in, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParsePlotter(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestPlotterString(t *testing.T) {
	if PlotterStatic.String() != "static" || PlotterInteractive.String() != "interactive" {
		t.Errorf("String() = %q, %q", PlotterStatic, PlotterInteractive)
	}
	if got := Plotter(9).String(); got != "Plotter(9)" {
		t.Errorf("String() = %q", got)
	}
	for _, name := range Plotters() {
		if _, err := ParsePlotter(name); err != nil {
			t.Errorf("Plotters() lists %q which does not parse", name)
		}
	}
}

func TestNewRenderer(t *testing.T) {
	for _, p := range []Plotter{PlotterStatic, PlotterInteractive} {
		if r, err := NewRenderer(p, render.Options{}); err != nil || r == nil {
			t.Errorf("NewRenderer(%s) = %v, %v", p, r, err)
		}
	}
	if _, err := NewRenderer(Plotter(42), render.Options{}); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("NewRenderer(42) error = %v, want UNSUPPORTED", err)
	}
}

func TestDefaultOutput(t *testing.T) {
	if DefaultOutput(PlotterStatic) != "visast.svg" || DefaultOutput(PlotterInteractive) != "visast.html" {
		t.Errorf("DefaultOutput = %q, %q", DefaultOutput(PlotterStatic), DefaultOutput(PlotterInteractive))
	}
}

func TestVisualize(t *testing.T) {
	tests := []struct {
		plotter Plotter
		media   string
		prefix  string
	}{
		{PlotterStatic, render.MediaSVG, "<svg"},
		{PlotterInteractive, render.MediaHTML, "<!DOCTYPE html>"},
	}
	for _, tt := range tests {
		t.Run(tt.plotter.String(), func(t *testing.T) {
			res, err := Visualize(context.Background(), tree(), Options{Plotter: tt.plotter})
			if err != nil {
				t.Fatalf("Visualize() error: %v", err)
			}
			if res.Stats.NodeCount != 7 || res.Stats.EdgeCount != 6 {
				t.Errorf("stats = %+v", res.Stats)
			}
			if len(res.Positions) != res.Stats.NodeCount {
				t.Errorf("len(Positions) = %d", len(res.Positions))
			}
			if res.Artifact.MediaType != tt.media || res.Artifact.Path != "" {
				t.Errorf("artifact = %q at %q", res.Artifact.MediaType, res.Artifact.Path)
			}
			if !bytes.Contains(res.Artifact.Data, []byte(tt.prefix)) {
				t.Errorf("artifact does not contain %q", tt.prefix)
			}
		})
	}
}

func TestVisualize_Show(t *testing.T) {
	out := filepath.Join(t.TempDir(), "ast.html")
	var viewed string
	res, err := Visualize(context.Background(), tree(), Options{
		Plotter: PlotterInteractive,
		Title:   "hello.py",
		Render: render.Options{Output: out, Show: true, Viewer: func(p string) error {
			viewed = p
			return nil
		}},
	})
	if err != nil {
		t.Fatalf("Visualize() error: %v", err)
	}
	if res.Artifact.Path != out || viewed != out {
		t.Errorf("Path = %q, viewed = %q", res.Artifact.Path, viewed)
	}
	data, _ := os.ReadFile(out)
	if !bytes.Contains(data, []byte("<title>hello.py</title>")) {
		t.Error("custom title missing from page")
	}
}

func TestVisualize_UnsupportedPlotter(t *testing.T) {
	_, err := Visualize(context.Background(), tree(), Options{Plotter: Plotter(3)})
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("Visualize() error = %v, want UNSUPPORTED", err)
	}
}

func TestVisualize_Hooks(t *testing.T) {
	rec := &recorder{}
	observability.SetPipelineHooks(rec)
	t.Cleanup(observability.Reset)

	if _, err := Visualize(context.Background(), tree(), Options{Plotter: PlotterInteractive}); err != nil {
		t.Fatalf("Visualize() error: %v", err)
	}
	if rec.builds != 1 || rec.layouts != 1 || rec.renders != 1 {
		t.Errorf("hooks: builds=%d layouts=%d renders=%d", rec.builds, rec.layouts, rec.renders)
	}
	if rec.plotter != "interactive" || rec.bytes == 0 {
		t.Errorf("render hook got plotter=%q bytes=%d", rec.plotter, rec.bytes)
	}
}

func TestRunner_Run(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.py")
	os.WriteFile(path, []byte("def main():\n    print('hi')\n"), 0o644)

	rec := &recorder{}
	observability.SetPipelineHooks(rec)
	t.Cleanup(observability.Reset)

	r := NewRunner(nil, nil)
	res, err := r.Run(context.Background(), path, Options{Plotter: PlotterInteractive})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.Stats.NodeCount == 0 || rec.loads != 1 || rec.loadErr != nil {
		t.Errorf("stats = %+v, loads = %d, err = %v", res.Stats, rec.loads, rec.loadErr)
	}
}

func TestRunner_RunLoadError(t *testing.T) {
	r := NewRunner(source.New(), nil)
	_, err := r.Run(context.Background(), filepath.Join(t.TempDir(), "missing.py"), Options{})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Run() error = %v, want FILE_NOT_FOUND", err)
	}
}

type recorder struct {
	observability.NoopPipelineHooks
	loads, builds, layouts, renders int
	loadErr                         error
	plotter                         string
	bytes                           int
}

func (r *recorder) OnLoadComplete(_ context.Context, _ string, _ int, _ time.Duration, err error) {
	r.loads++
	r.loadErr = err
}

func (r *recorder) OnBuildComplete(context.Context, int, int, time.Duration) { r.builds++ }

func (r *recorder) OnLayoutComplete(context.Context, time.Duration, error) { r.layouts++ }

func (r *recorder) OnRenderComplete(_ context.Context, plotter string, size int, _ time.Duration, _ error) {
	r.renders++
	r.plotter = plotter
	r.bytes = size
}
