package interactive

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/visast/pkg/astgraph"
	"github.com/matzehuels/visast/pkg/layout"
	"github.com/matzehuels/visast/pkg/render"
	"github.com/matzehuels/visast/pkg/syntax"
)

func helloScene(t *testing.T) render.Scene {
	t.Helper()
	g := astgraph.Build(syntax.Module(
		syntax.ClassDef("Greeter", syntax.FunctionDef("greet", syntax.New("Pass"))),
		syntax.New("Expr", syntax.Constant("<b>bold</b>")),
	))
	pos, err := layout.Hierarchy(g)
	if err != nil {
		t.Fatalf("Hierarchy() error: %v", err)
	}
	return render.NewScene(g, pos)
}

func TestHTML(t *testing.T) {
	html, err := HTML(helloScene(t))
	if err != nil {
		t.Fatalf("HTML() error: %v", err)
	}
	page := string(html)

	for _, want := range []string{
		"<title>Abstract Syntax Tree:</title>",
		"vis-network.min.js",
		"physics: false",
		`"label":"FunctionDef greet"`,
		`"color":"#ffffb3"`,
		`"from":"Module#0"`,
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(page, "<b>bold</b>") {
		t.Error("label markup was not escaped")
	}
}

func TestToPageData(t *testing.T) {
	s := helloScene(t)
	data := toPageData(s)

	if len(data.Nodes) != s.Graph.NodeCount() || len(data.Edges) != s.Graph.EdgeCount() {
		t.Fatalf("got %d nodes, %d edges", len(data.Nodes), len(data.Edges))
	}
	root := data.Nodes[0]
	if root.ID != s.Graph.Root || root.Y != 0 {
		t.Errorf("root = %+v", root)
	}
	for _, n := range data.Nodes[1:] {
		if n.Y <= root.Y {
			t.Errorf("node %s at y=%v is not below the root", n.ID, n.Y)
		}
		if n.X < 0 {
			t.Errorf("node %s at negative x %v", n.ID, n.X)
		}
	}
}

func TestRender_InMemory(t *testing.T) {
	t.Chdir(t.TempDir())

	art, err := New(render.Options{}).Render(context.Background(), helloScene(t))
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if art.Path != "" || art.MediaType != render.MediaHTML {
		t.Errorf("artifact = %q, %q", art.Path, art.MediaType)
	}
	if !bytes.HasPrefix(art.Data, []byte("<!DOCTYPE html>")) {
		t.Error("artifact is not HTML")
	}
	if _, err := os.Stat(DefaultOutput); !os.IsNotExist(err) {
		t.Error("file written although Show is false")
	}
}

func TestRender_Shown(t *testing.T) {
	out := filepath.Join(t.TempDir(), "tree.html")
	var viewed string

	r := New(render.Options{Output: out, Show: true, Viewer: func(p string) error {
		viewed = p
		return nil
	}})
	art, err := r.Render(context.Background(), helloScene(t))
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if art.Path != out || viewed != out {
		t.Errorf("Path = %q, viewed = %q, want %q", art.Path, viewed, out)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output missing: %v", err)
	}
}

func TestRender_DefaultOutput(t *testing.T) {
	t.Chdir(t.TempDir())

	art, err := New(render.Options{Show: true}).Render(context.Background(), helloScene(t))
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if art.Path != DefaultOutput {
		t.Errorf("Path = %q, want %q", art.Path, DefaultOutput)
	}
}
