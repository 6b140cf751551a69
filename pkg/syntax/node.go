// Package syntax defines the syntax-tree contract consumed by the graph
// builder, plus a concrete [Element] type used by the loaders and tests.
//
// Trees are strict: every node has exactly one parent except the root, and
// no node appears twice. Producers guarantee this; consumers do not check it.
package syntax

import "slices"

// Well-known type tags.
const (
	KindModule           = "Module"
	KindClassDef         = "ClassDef"
	KindFunctionDef      = "FunctionDef"
	KindAsyncFunctionDef = "AsyncFunctionDef"
	KindConstant         = "Constant"
	KindName             = "Name"
	KindLoad             = "Load"
	KindStore            = "Store"
	KindDel              = "Del"
)

// Node is one syntactic construct in a parsed program.
type Node interface {
	// Kind returns the node's type tag, e.g. "FunctionDef".
	Kind() string
	// Literal returns the textual form of a constant's value.
	Literal() (string, bool)
	// DeclaredName returns the name bound by a function or class definition.
	DeclaredName() (string, bool)
	// Identifier returns the identifier referenced by a name node.
	Identifier() (string, bool)
	// Children returns the direct children in source order.
	Children() []Node
}

// IsContextMarker reports whether kind is one of the Load/Store/Del markers.
func IsContextMarker(kind string) bool {
	return kind == KindLoad || kind == KindStore || kind == KindDel
}

// Element is the concrete Node produced by the loaders.
// The zero value is not useful; build elements with [New] and friends.
type Element struct {
	kind     string
	literal  *string
	name     *string
	ident    *string
	children []Node
}

// New returns an element with the given type tag and children.
func New(kind string, children ...Node) *Element {
	return &Element{kind: kind, children: children}
}

// Constant returns a Constant element whose value renders as text.
func Constant(text string) *Element {
	return New(KindConstant).WithLiteral(text)
}

// Name returns a Name element referencing id, with ctx as its only child.
func Name(id string, ctx Node) *Element {
	return New(KindName, ctx).WithIdentifier(id)
}

// FunctionDef returns a FunctionDef element declaring name.
func FunctionDef(name string, children ...Node) *Element {
	return New(KindFunctionDef, children...).WithName(name)
}

// ClassDef returns a ClassDef element declaring name.
func ClassDef(name string, children ...Node) *Element {
	return New(KindClassDef, children...).WithName(name)
}

// Module returns a Module element.
func Module(body ...Node) *Element {
	return New(KindModule, body...)
}

// Load returns a fresh Load context marker.
func Load() *Element { return New(KindLoad) }

// Store returns a fresh Store context marker.
func Store() *Element { return New(KindStore) }

// Del returns a fresh Del context marker.
func Del() *Element { return New(KindDel) }

// WithLiteral sets the literal value text and returns e.
func (e *Element) WithLiteral(text string) *Element {
	e.literal = &text
	return e
}

// WithName sets the declared name and returns e.
func (e *Element) WithName(name string) *Element {
	e.name = &name
	return e
}

// WithIdentifier sets the referenced identifier and returns e.
func (e *Element) WithIdentifier(id string) *Element {
	e.ident = &id
	return e
}

// Append adds children and returns e.
func (e *Element) Append(children ...Node) *Element {
	e.children = append(e.children, children...)
	return e
}

func (e *Element) Kind() string { return e.kind }

func (e *Element) Literal() (string, bool) { return deref(e.literal) }

func (e *Element) DeclaredName() (string, bool) { return deref(e.name) }

func (e *Element) Identifier() (string, bool) { return deref(e.ident) }

// Children returns a copy of the child list.
func (e *Element) Children() []Node { return slices.Clone(e.children) }

func deref(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	return *p, true
}

// Walk visits n and its descendants breadth-first, parents before children.
// Returning false from fn stops the walk.
func Walk(n Node, fn func(Node) bool) {
	queue := []Node{n}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if !fn(cur) {
			return
		}
		queue = append(queue, cur.Children()...)
	}
}

// Count returns the number of nodes in the tree rooted at n.
func Count(n Node) int {
	total := 0
	Walk(n, func(Node) bool {
		total++
		return true
	})
	return total
}
