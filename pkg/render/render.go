package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/matzehuels/visast/pkg/astgraph"
	"github.com/matzehuels/visast/pkg/errors"
	"github.com/matzehuels/visast/pkg/layout"
)

// DefaultTitle is the heading drawn above every diagram.
const DefaultTitle = "Abstract Syntax Tree:"

// Media types reported in [Artifact.MediaType].
const (
	MediaSVG  = "image/svg+xml"
	MediaPNG  = "image/png"
	MediaPDF  = "application/pdf"
	MediaDOT  = "text/vnd.graphviz"
	MediaHTML = "text/html; charset=utf-8"
	MediaJSON = "application/json"
)

// Scene is the input to a [Renderer].
type Scene struct {
	Graph     *astgraph.Graph
	Positions layout.Positions
	Colors    []string // aligned with Graph.Nodes()
	Title     string
}

// NewScene assembles a scene with colors derived from the graph labels.
func NewScene(g *astgraph.Graph, pos layout.Positions) Scene {
	return Scene{
		Graph:     g,
		Positions: pos,
		Colors:    astgraph.Colors(g),
		Title:     DefaultTitle,
	}
}

// Validate checks that every node has a color and a position.
func (s Scene) Validate() error {
	if s.Graph == nil {
		return errors.New(errors.ErrCodeInvalidInput, "scene has no graph")
	}
	nodes := s.Graph.Nodes()
	if len(s.Colors) != len(nodes) {
		return errors.New(errors.ErrCodeInvalidInput, "scene has %d colors for %d nodes", len(s.Colors), len(nodes))
	}
	for _, id := range nodes {
		if _, ok := s.Positions[id]; !ok {
			return errors.New(errors.ErrCodeInvalidInput, "node %q has no position", id)
		}
	}
	return nil
}

// Artifact is a rendered diagram.
type Artifact struct {
	Path      string // where Data was written; empty when kept in memory
	Data      []byte
	MediaType string
}

// Renderer draws a scene.
type Renderer interface {
	Render(ctx context.Context, s Scene) (Artifact, error)
}

// Viewer displays a written artifact, typically by launching an external
// program.
type Viewer func(path string) error

// Options controls what a renderer does with its output.
type Options struct {
	// Output is the destination path. Backends pick a default file name when
	// it is empty. Concurrent callers should use distinct paths.
	Output string
	// Show writes the artifact to Output and passes it to Viewer.
	// When false the artifact is only returned in memory.
	Show bool
	// Viewer is called with the written path when Show is set. Nil skips it.
	Viewer Viewer
}

// Deliver applies opts to a rendered artifact: it writes the data and opens
// the viewer when Show is set, and returns the artifact unchanged otherwise.
func Deliver(a Artifact, opts Options, defaultOutput string) (Artifact, error) {
	if !opts.Show {
		return a, nil
	}

	path := opts.Output
	if path == "" {
		path = defaultOutput
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return a, fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, a.Data, 0o644); err != nil {
		return a, fmt.Errorf("write %s: %w", path, err)
	}
	a.Path = path

	if opts.Viewer != nil {
		if err := opts.Viewer(path); err != nil {
			return a, fmt.Errorf("open %s: %w", path, err)
		}
	}
	return a, nil
}
