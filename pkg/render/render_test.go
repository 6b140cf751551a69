package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/visast/pkg/astgraph"
	"github.com/matzehuels/visast/pkg/errors"
	"github.com/matzehuels/visast/pkg/layout"
	"github.com/matzehuels/visast/pkg/syntax"
)

func scene(t *testing.T) Scene {
	t.Helper()
	g := astgraph.Build(syntax.Module(syntax.FunctionDef("main", syntax.New("Pass"))))
	pos, err := layout.Hierarchy(g)
	if err != nil {
		t.Fatalf("Hierarchy() error: %v", err)
	}
	return NewScene(g, pos)
}

func TestNewScene(t *testing.T) {
	s := scene(t)
	if s.Title != DefaultTitle {
		t.Errorf("Title = %q, want %q", s.Title, DefaultTitle)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestSceneValidate(t *testing.T) {
	missingColor := scene(t)
	missingColor.Colors = missingColor.Colors[:1]

	missingPos := scene(t)
	missingPos.Positions = layout.Positions{}

	for name, s := range map[string]Scene{
		"no graph":      {},
		"missing color": missingColor,
		"missing pos":   missingPos,
	} {
		t.Run(name, func(t *testing.T) {
			if err := s.Validate(); !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Validate() error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestDeliver_NotShown(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "ast.svg")
	called := false

	a, err := Deliver(Artifact{Data: []byte("x")}, Options{
		Output: out,
		Viewer: func(string) error { called = true; return nil },
	}, "unused.svg")
	if err != nil {
		t.Fatalf("Deliver() error: %v", err)
	}
	if a.Path != "" {
		t.Errorf("Path = %q, want empty", a.Path)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("output written although Show is false")
	}
	if called {
		t.Error("viewer called although Show is false")
	}
}

func TestDeliver_Shown(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "ast.svg")
	var viewed string

	a, err := Deliver(Artifact{Data: []byte("<svg/>")}, Options{
		Output: out,
		Show:   true,
		Viewer: func(p string) error { viewed = p; return nil },
	}, "unused.svg")
	if err != nil {
		t.Fatalf("Deliver() error: %v", err)
	}
	if a.Path != out || viewed != out {
		t.Errorf("Path = %q, viewed = %q, want %q", a.Path, viewed, out)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if string(data) != "<svg/>" {
		t.Errorf("written data = %q", data)
	}
}

func TestDeliver_DefaultOutput(t *testing.T) {
	t.Chdir(t.TempDir())

	a, err := Deliver(Artifact{Data: []byte("x")}, Options{Show: true}, "visast.svg")
	if err != nil {
		t.Fatalf("Deliver() error: %v", err)
	}
	if a.Path != "visast.svg" {
		t.Errorf("Path = %q, want visast.svg", a.Path)
	}
	if _, err := os.Stat("visast.svg"); err != nil {
		t.Errorf("default output missing: %v", err)
	}
}
