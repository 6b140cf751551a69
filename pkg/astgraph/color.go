package astgraph

import "strings"

// Node colors by classification.
const (
	ColorModule      = "#b3ffb3" // light green
	ColorClassDef    = "#ffffb3" // light yellow
	ColorFunctionDef = "#ffb3ff" // light magenta
	ColorDefault     = "#1f78b4" // blue
)

// ColorFor classifies label by its leading type tag, ignoring any value or
// name suffix added by [Label].
func ColorFor(label string) string {
	tag, _, _ := strings.Cut(label, " ")
	switch tag {
	case "Module":
		return ColorModule
	case "ClassDef":
		return ColorClassDef
	case "FunctionDef":
		return ColorFunctionDef
	default:
		return ColorDefault
	}
}

// Colors returns one color per node, aligned with g.Nodes().
func Colors(g *Graph) []string {
	nodes := g.Nodes()
	colors := make([]string, len(nodes))
	for i, id := range nodes {
		colors[i] = ColorFor(g.Labels[id])
	}
	return colors
}
