package graphio

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/matzehuels/visast/pkg/errors"
	"github.com/matzehuels/visast/pkg/render"
)

type document struct {
	Title string `json:"title,omitempty"`
	Root  string `json:"root"`
	Nodes []node `json:"nodes"`
	Edges []edge `json:"edges"`
}

type node struct {
	ID    string   `json:"id"`
	Label string   `json:"label"`
	Color string   `json:"color,omitempty"`
	X     *float64 `json:"x,omitempty"`
	Y     *float64 `json:"y,omitempty"`
}

type edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// WriteJSON encodes s as an indented JSON document.
func WriteJSON(w io.Writer, s render.Scene) error {
	if s.Graph == nil {
		return errors.New(errors.ErrCodeInvalidInput, "scene has no graph")
	}
	g := s.Graph
	out := document{Title: s.Title, Root: g.Root}

	for i, id := range g.Nodes() {
		n := node{ID: id, Label: g.Label(id)}
		if i < len(s.Colors) {
			n.Color = s.Colors[i]
		}
		if p, ok := s.Positions[id]; ok {
			n.X, n.Y = &p.X, &p.Y
		}
		out.Nodes = append(out.Nodes, n)
	}
	for _, e := range g.Edges {
		out.Edges = append(out.Edges, edge{From: e.From, To: e.To})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
