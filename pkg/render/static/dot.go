package static

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/visast/pkg/render"
)

const (
	nodeAlpha = "99" // 0.6 opacity
	edgeColor = "#00000080"

	inchesPerLeaf = 1.4
	minWidth      = 6.0
	inchesPerRow  = 1.0
	rowGap        = 0.2 // layout units between rows
)

// ToDOT converts a scene to Graphviz DOT with every node pinned in place.
// Positions are mapped from layout units to inches so that leaves get
// roughly [inchesPerLeaf] of horizontal room each.
func ToDOT(s render.Scene) string {
	g := s.Graph
	xScale, yScale := scale(s)

	var buf bytes.Buffer
	buf.WriteString("digraph AST {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  splines=false;\n")
	buf.WriteString("  bgcolor=\"white\";\n")
	if s.Title != "" {
		fmt.Fprintf(&buf, "  label=%s;\n  labelloc=t;\n  fontsize=20;\n", quote(s.Title))
	}
	buf.WriteString("  node [shape=ellipse, style=filled, color=\"#00000000\", fontsize=12];\n")
	fmt.Fprintf(&buf, "  edge [color=%q, arrowsize=0.6];\n", edgeColor)
	buf.WriteString("\n")

	for i, id := range g.Nodes() {
		p := s.Positions[id]
		fmt.Fprintf(&buf, "  %s [label=%s, fillcolor=%q, pos=\"%.3f,%.3f!\"];\n",
			quote(id), quote(g.Label(id)), s.Colors[i]+nodeAlpha, p.X*xScale, p.Y*yScale)
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %s -> %s;\n", quote(e.From), quote(e.To))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func scale(s render.Scene) (x, y float64) {
	leaves := 0
	for _, id := range s.Graph.Nodes() {
		if len(s.Graph.Children(id)) == 0 {
			leaves++
		}
	}
	lo, hi := s.Positions.Bounds()
	width := hi.X - lo.X
	if width <= 0 {
		width = 1
	}
	return max(minWidth, float64(leaves)*inchesPerLeaf) / width, inchesPerRow / rowGap
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`)

// quote returns s as a DOT double-quoted string.
func quote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}
