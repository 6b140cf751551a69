package astgraph

import "github.com/matzehuels/visast/pkg/syntax"

// Label derives the display text for n.
//
// The base label is the type tag. Constant nodes get " " plus the textual
// value appended, function definitions get " " plus the declared name. No
// other kinds receive a suffix.
func Label(n syntax.Node) string {
	label := n.Kind()
	switch label {
	case syntax.KindConstant:
		if v, ok := n.Literal(); ok {
			label += " " + v
		}
	case syntax.KindFunctionDef, syntax.KindAsyncFunctionDef:
		if name, ok := n.DeclaredName(); ok {
			label += " " + name
		}
	}
	return label
}
