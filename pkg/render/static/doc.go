// Package static renders a scene as a fixed Graphviz drawing.
//
// Nodes are pinned to the layout positions and drawn with the neato engine
// so Graphviz does not re-layout the tree. The output format follows the
// extension of [render.Options.Output]:
//
//	.svg (default)  SVG from go-graphviz
//	.png            SVG converted with rsvg-convert at 2x scale
//	.pdf            SVG converted with rsvg-convert
//	.dot            the DOT source itself
//	.json           the laid-out graph as a node-link document (see graphio)
//
// The default output file is [DefaultOutput].
package static
