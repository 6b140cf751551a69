package astgraph

import (
	"slices"

	"github.com/matzehuels/visast/pkg/syntax"
)

// Edge is a directed parent→child connection between node identities.
type Edge struct {
	From string
	To   string
}

// Graph is the result of converting one syntax tree.
//
// Labels holds exactly one entry per distinct identity; Edges are in the
// order they were recorded. A Graph is not safe for concurrent mutation.
type Graph struct {
	Root   string
	Edges  []Edge
	Labels map[string]string

	order    []string
	children map[string][]string
}

// NewGraph returns a graph holding only the root node.
// Most callers get their graph from [Build]; NewGraph is for hand-built ones.
func NewGraph(root, label string) *Graph {
	g := &Graph{
		Labels:   make(map[string]string),
		children: make(map[string][]string),
	}
	g.Root = root
	g.SetLabel(root, label)
	return g
}

// SetLabel records or replaces the label of id.
func (g *Graph) SetLabel(id, label string) {
	if _, ok := g.Labels[id]; !ok {
		g.order = append(g.order, id)
	}
	g.Labels[id] = label
}

// AddEdge appends an edge. It does not check for duplicates or cycles.
func (g *Graph) AddEdge(from, to string) {
	g.Edges = append(g.Edges, Edge{From: from, To: to})
	g.children[from] = append(g.children[from], to)
}

// Nodes returns every identity in the order it was first labelled.
// The root always comes first.
func (g *Graph) Nodes() []string { return slices.Clone(g.order) }

// Label returns the label recorded for id, or "" if there is none.
func (g *Graph) Label(id string) string { return g.Labels[id] }

// Children returns the destinations of edges leaving id, in edge order.
// The returned slice should not be modified.
func (g *Graph) Children(id string) []string { return g.children[id] }

// NodeCount returns the number of labelled identities.
func (g *Graph) NodeCount() int { return len(g.Labels) }

// EdgeCount returns the number of recorded edges.
func (g *Graph) EdgeCount() int { return len(g.Edges) }

// Option configures [Build].
type Option func(*buildConfig)

type buildConfig struct {
	identity IdentityFunc
}

// WithIdentity replaces the default per-build [Arena] with fn.
func WithIdentity(fn IdentityFunc) Option {
	return func(c *buildConfig) { c.identity = fn }
}

// Build converts the tree rooted at root into a Graph.
//
// The walk is breadth-first. Each node is identified and labelled once, when
// it is first reached (the root up front, every other node while its parent
// is being expanded), and that identity is reused when the node is expanded
// in turn.
//
// For every child, the candidate identity is checked against the
// destinations of edges already recorded; a repeat gets [CollisionMarker]
// appended once, without re-checking the result. A label is only recorded
// if the resolved identity has none yet.
//
// Context markers (Load, Store, Del) that carry an identifier and have
// children have their own label replaced by that identifier while their
// children are recorded.
func Build(root syntax.Node, opts ...Option) *Graph {
	var cfg buildConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	identify := cfg.identity
	if identify == nil {
		identify = NewArena().Identity
	}

	type entry struct {
		node syntax.Node
		id   string
	}

	g := NewGraph(identify(root), Label(root))

	destinations := make(map[string]struct{})
	queue := []entry{{node: root, id: g.Root}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		override, hasOverride := contextLabel(cur.node)
		for _, child := range cur.node.Children() {
			id := identify(child)
			if _, dup := destinations[id]; dup {
				id += CollisionMarker
			}
			if _, ok := g.Labels[id]; !ok {
				g.SetLabel(id, Label(child))
			}
			if hasOverride {
				g.SetLabel(cur.id, override)
			}
			g.AddEdge(cur.id, id)
			destinations[id] = struct{}{}
			queue = append(queue, entry{node: child, id: id})
		}
	}
	return g
}

// contextLabel returns the identifier carried by a Load/Store/Del marker.
func contextLabel(n syntax.Node) (string, bool) {
	if !syntax.IsContextMarker(n.Kind()) {
		return "", false
	}
	return n.Identifier()
}
