package interactive

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"

	"github.com/matzehuels/visast/pkg/render"
)

// DefaultOutput is written when [render.Options.Output] is empty.
const DefaultOutput = "visast.html"

// Pixel size of one layout unit.
const (
	pixelsPerLeaf = 120.0
	minWidth      = 800.0
	pixelsPerRow  = 90.0
	rowGap        = 0.2
)

//go:embed page.html.tmpl
var pageSource string

var page = template.Must(template.New("page").Parse(pageSource))

type visNode struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Color string  `json:"color"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

type visEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type pageData struct {
	Title string
	Nodes []visNode
	Edges []visEdge
}

// Renderer writes vis-network pages.
type Renderer struct {
	opts render.Options
}

// New returns an interactive renderer.
func New(opts render.Options) *Renderer {
	return &Renderer{opts: opts}
}

// Render builds the HTML page for s and delivers it according to the
// renderer's options.
func (r *Renderer) Render(_ context.Context, s render.Scene) (render.Artifact, error) {
	if err := s.Validate(); err != nil {
		return render.Artifact{}, err
	}
	html, err := HTML(s)
	if err != nil {
		return render.Artifact{}, err
	}
	return render.Deliver(render.Artifact{Data: html, MediaType: render.MediaHTML}, r.opts, DefaultOutput)
}

// HTML returns the page for s.
func HTML(s render.Scene) ([]byte, error) {
	var buf bytes.Buffer
	if err := page.Execute(&buf, toPageData(s)); err != nil {
		return nil, fmt.Errorf("execute page template: %w", err)
	}
	return buf.Bytes(), nil
}

func toPageData(s render.Scene) pageData {
	g := s.Graph
	xScale, yScale := scale(s)
	lo, _ := s.Positions.Bounds()

	data := pageData{Title: s.Title}
	for i, id := range g.Nodes() {
		p := s.Positions[id]
		data.Nodes = append(data.Nodes, visNode{
			ID:    id,
			Label: g.Label(id),
			Color: s.Colors[i],
			X:     (p.X - lo.X) * xScale,
			Y:     -p.Y * yScale,
		})
	}
	for _, e := range g.Edges {
		data.Edges = append(data.Edges, visEdge{From: e.From, To: e.To})
	}
	return data
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
	return max(minWidth, float64(leaves)*pixelsPerLeaf) / width, pixelsPerRow / rowGap
}
