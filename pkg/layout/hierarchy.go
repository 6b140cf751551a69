package layout

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/matzehuels/visast/pkg/astgraph"
)

var (
	// ErrNotTree is returned by [Hierarchy] when the graph contains a cycle
	// or a node with more than one parent.
	ErrNotTree = errors.New("graph is not a tree")

	// ErrUnknownRoot is returned by [Hierarchy] when the root identity has no
	// label in the graph.
	ErrUnknownRoot = errors.New("root is not a labelled node")
)

// Point is a position in layout coordinates. Y decreases downward from the
// root at 0.
type Point struct {
	X float64
	Y float64
}

// Positions maps node identities to their layout coordinates.
type Positions map[string]Point

// Bounds returns the smallest and largest coordinates in p.
// Both are zero for an empty map.
func (p Positions) Bounds() (lo, hi Point) {
	first := true
	for _, pt := range p {
		if first {
			lo, hi = pt, pt
			first = false
			continue
		}
		lo.X, lo.Y = min(lo.X, pt.X), min(lo.Y, pt.Y)
		hi.X, hi.Y = max(hi.X, pt.X), max(hi.Y, pt.Y)
	}
	return lo, hi
}

// Options controls the hierarchy layout.
type Options struct {
	Width      float64 // horizontal extent of the layout
	VertGap    float64 // distance between consecutive rows
	VertLoc    float64 // y of the root row
	LeafFactor float64 // weight of the leaf-driven placement, in [0, 1]
}

// DefaultOptions returns the standard layout parameters.
func DefaultOptions() Options {
	return Options{
		Width:      1,
		VertGap:    0.2,
		VertLoc:    0,
		LeafFactor: 0.5,
	}
}

// Option configures [Hierarchy].
type Option func(*Options)

// WithWidth sets the horizontal extent of the layout.
func WithWidth(w float64) Option { return func(o *Options) { o.Width = w } }

// WithVertGap sets the distance between rows.
func WithVertGap(gap float64) Option { return func(o *Options) { o.VertGap = gap } }

// WithLeafFactor sets how strongly leaf spacing drives x placement.
func WithLeafFactor(f float64) Option { return func(o *Options) { o.LeafFactor = f } }

// Hierarchy lays out the tree in g, rooted at g.Root.
func Hierarchy(g *astgraph.Graph, opts ...Option) (Positions, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if _, ok := g.Labels[g.Root]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRoot, g.Root)
	}

	dg, ids, err := toDirected(g)
	if err != nil {
		return nil, err
	}

	if len(g.Children(g.Root)) == 0 {
		return Positions{g.Root: {X: o.Width / 2, Y: o.VertLoc}}, nil
	}

	l := &hierarchy{
		g:       g,
		leafDX:  o.Width / float64(countLeaves(dg, ids[g.Root])),
		vertGap: o.VertGap,
		rootPos: make(Positions),
		leafPos: make(Positions),
	}
	l.place(g.Root, 0, o.Width, o.VertLoc, o.Width/2)

	pos := make(Positions, len(l.rootPos))
	xmax := 0.0
	for id, rp := range l.rootPos {
		lp := l.leafPos[id]
		x := o.LeafFactor*lp.X + (1-o.LeafFactor)*rp.X
		pos[id] = Point{X: x, Y: lp.Y}
		xmax = max(xmax, x)
	}
	if xmax > 0 {
		for id, p := range pos {
			pos[id] = Point{X: p.X * o.Width / xmax, Y: p.Y}
		}
	}
	return pos, nil
}

type hierarchy struct {
	g       *astgraph.Graph
	leafDX  float64
	vertGap float64
	rootPos Positions
	leafPos Positions
}

// place positions id and its subtree and returns the number of leaves below
// it. leftmost is the x of the next free leaf slot; width and xcenter
// describe the slot id was given by its parent.
func (h *hierarchy) place(id string, leftmost, width, y, xcenter float64) int {
	h.rootPos[id] = Point{X: xcenter, Y: y}

	children := h.g.Children(id)
	if len(children) == 0 {
		h.leafPos[id] = Point{X: leftmost, Y: y}
		return 1
	}

	dx := width / float64(len(children))
	nextX := xcenter - width/2 - dx/2
	leaves := 0
	for _, child := range children {
		nextX += dx
		leaves += h.place(child, leftmost+float64(leaves)*h.leafDX, dx, y-h.vertGap, nextX)
	}

	lo, hi := h.leafPos[children[0]].X, h.leafPos[children[0]].X
	for _, child := range children[1:] {
		lo = min(lo, h.leafPos[child].X)
		hi = max(hi, h.leafPos[child].X)
	}
	h.leafPos[id] = Point{X: (lo + hi) / 2, Y: y}
	return leaves
}

// toDirected loads g into a gonum graph and checks that it is a tree.
func toDirected(g *astgraph.Graph) (*simple.DirectedGraph, map[string]int64, error) {
	dg := simple.NewDirectedGraph()
	ids := make(map[string]int64, len(g.Labels))
	node := func(id string) graph.Node {
		n, ok := ids[id]
		if !ok {
			n = int64(len(ids))
			ids[id] = n
			dg.AddNode(simple.Node(n))
		}
		return dg.Node(n)
	}

	node(g.Root)
	for _, e := range g.Edges {
		if e.From == e.To {
			return nil, nil, fmt.Errorf("%w: self edge on %q", ErrNotTree, e.From)
		}
		from, to := node(e.From), node(e.To)
		if dg.HasEdgeFromTo(from.ID(), to.ID()) || dg.To(to.ID()).Len() > 0 {
			return nil, nil, fmt.Errorf("%w: %q has more than one parent", ErrNotTree, e.To)
		}
		dg.SetEdge(dg.NewEdge(from, to))
	}

	if _, err := topo.Sort(dg); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrNotTree, err)
	}
	return dg, ids, nil
}

// countLeaves returns the number of nodes below root with no children.
func countLeaves(dg *simple.DirectedGraph, root int64) int {
	leaves := 0
	var bf traverse.BreadthFirst
	bf.Walk(dg, dg.Node(root), func(n graph.Node, _ int) bool {
		if n.ID() != root && dg.From(n.ID()).Len() == 0 {
			leaves++
		}
		return false
	})
	return max(leaves, 1)
}
