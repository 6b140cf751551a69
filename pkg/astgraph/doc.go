// Package astgraph converts a syntax tree into a labelled directed graph.
//
// # Overview
//
// [Build] walks a [syntax.Node] tree breadth-first and records one edge per
// parent/child pair, one label per node and the identity of the root:
//
//	g := astgraph.Build(tree)
//	fmt.Println(g.Label(g.Root)) // "Module"
//	for _, e := range g.Edges {
//	    fmt.Println(g.Label(e.From), "->", g.Label(e.To))
//	}
//
// # Labels
//
// A label is the node's type tag, with the literal value appended for
// Constant nodes and the declared name appended for function definitions:
// "Constant None", "FunctionDef main", "Name".
//
// # Identities
//
// Every node gets a string identity exactly once, on first encounter. The
// default [Arena] numbers nodes in traversal order ("Name#7"), which cannot
// collide. [HandleIdentity] reproduces the older tag-plus-runtime-handle
// scheme. Whatever [IdentityFunc] is used, an edge destination that repeats
// an earlier destination is disambiguated once by appending
// [CollisionMarker], so no edge is ever dropped.
//
// # Colors
//
// [ColorFor] classifies a label by its leading type tag: Module, ClassDef and
// FunctionDef get pastel highlights, everything else the default blue.
// [Colors] returns the colors aligned with [Graph.Nodes].
//
// # Preconditions
//
// The input must be a finite tree. Cyclic or shared-child input is a
// precondition violation; Build may not terminate on it.
package astgraph
