// Package render defines the contract between the conversion pipeline and
// its drawing backends.
//
// # Overview
//
// A [Scene] bundles everything a backend needs: the converted graph, the
// layout positions, one color per node and a title. A [Renderer] turns a
// scene into an [Artifact], the rendered bytes plus the path they were
// written to, if any.
//
// Two backends ship with visast:
//
//   - [static]: a Graphviz drawing with nodes pinned to the layout, written
//     as SVG, PNG, PDF or DOT
//   - [interactive]: a standalone HTML page with a pannable, zoomable
//     vis-network diagram
//
// # Showing Output
//
// Both backends honour [Options]. With Show unset nothing touches the
// filesystem and the artifact only carries bytes, which is what tests and the
// HTTP server want. With Show set the artifact is written to Output (or the
// backend's default name) and handed to Viewer.
//
//	r := static.New(render.Options{Show: true, Viewer: render.OpenInViewer})
//	art, err := r.Render(ctx, scene)
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert SVG using the external rsvg-convert tool
// (from librsvg).
//
// [static]: github.com/matzehuels/visast/pkg/render/static
// [interactive]: github.com/matzehuels/visast/pkg/render/interactive
package render
