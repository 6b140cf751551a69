// Package pkg holds the visast libraries.
//
// visast turns a Python program into a picture of its abstract syntax tree:
// every syntax node becomes a labelled, colored vertex and every parent to
// child link becomes an edge, laid out top-down like a family tree.
//
// # Architecture
//
//	Python source (file, URL, string)
//	         ↓
//	    [source] (tree-sitter parse, lowered to [syntax] nodes)
//	         ↓
//	    [astgraph] (labels, identities, breadth-first graph, colors)
//	         ↓
//	    [layout] (hierarchical positions)
//	         ↓
//	    [render/static] or [render/interactive]
//	         ↓
//	    SVG / PNG / PDF / DOT / JSON, or an HTML page
//
// # Quick Start
//
//	tree, _ := source.Load(ctx, "hello.py")
//	res, _ := pipeline.Visualize(ctx, tree, pipeline.Options{
//	    Plotter: pipeline.PlotterInteractive,
//	    Render:  render.Options{Output: "ast.html", Show: true},
//	})
//
// # Main Packages
//
// [syntax] - The syntax-tree contract and the concrete Element type.
//
// [source] - Loaders for paths, URLs and strings; [source/python] lowers the
// tree-sitter parse into Python ast-shaped nodes.
//
// [astgraph] - Tree to graph conversion with collision-safe identities.
//
// [layout] - Top-down hierarchy layout on a gonum graph.
//
// [render] - Scene, artifact and viewer plumbing shared by the backends, plus
// SVG to PNG/PDF conversion.
//
// [graphio] - JSON node-link export and import of laid-out graphs.
//
// [pipeline] - Plotter selection and the build → layout → render run used by
// the CLI and the HTTP server.
//
// ## Infrastructure
//
// [cache] - File-backed cache for fetched sources and served renders.
//
// [httputil] - Remote fetching with retries.
//
// [errors] - Coded errors shared across packages.
//
// [observability] - Hooks for metrics and tracing.
//
// [buildinfo] - Version information set at build time.
package pkg
