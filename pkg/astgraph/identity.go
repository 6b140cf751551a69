package astgraph

import (
	"fmt"
	"strconv"

	"github.com/matzehuels/visast/pkg/syntax"
)

// CollisionMarker is appended to an edge destination identity that repeats
// an earlier destination. Arena identities never contain it.
const CollisionMarker = "'"

// IdentityFunc computes the identity of a node. It is called exactly once
// per node during a build.
type IdentityFunc func(syntax.Node) string

// Arena hands out identities made of the type tag and a counter that
// increases with every call, so two calls never return the same value.
//
// An Arena is not safe for concurrent use; [Build] creates a fresh one per
// call unless [WithIdentity] overrides it.
type Arena struct {
	next int
}

// NewArena returns an arena whose first identity uses index 0.
func NewArena() *Arena { return &Arena{} }

// Identity returns the next identity for n, e.g. "FunctionDef#3".
func (a *Arena) Identity(n syntax.Node) string {
	id := n.Kind() + "#" + strconv.Itoa(a.next)
	a.next++
	return id
}

// HandleIdentity derives the identity from the type tag and the node's
// runtime handle (its pointer value). Distinct live nodes get distinct
// handles, but handles are not stable across runs and custom Node
// implementations backed by values all print the same, so collisions are
// possible and are patched by [Build].
func HandleIdentity(n syntax.Node) string {
	return fmt.Sprintf("%s@%p", n.Kind(), n)
}
