package syntax

import (
	"slices"
	"testing"
)

func TestElementAccessors(t *testing.T) {
	c := Constant("None")
	if got, ok := c.Literal(); !ok || got != "None" {
		t.Errorf("Literal() = %q, %v, want %q, true", got, ok, "None")
	}
	if _, ok := c.DeclaredName(); ok {
		t.Error("Constant should not have a declared name")
	}

	fn := FunctionDef("main")
	if got, ok := fn.DeclaredName(); !ok || got != "main" {
		t.Errorf("DeclaredName() = %q, %v, want %q, true", got, ok, "main")
	}

	n := Name("print", Load())
	if got, ok := n.Identifier(); !ok || got != "print" {
		t.Errorf("Identifier() = %q, %v, want %q, true", got, ok, "print")
	}
	if kids := n.Children(); len(kids) != 1 || kids[0].Kind() != KindLoad {
		t.Errorf("Name children = %v, want [Load]", kids)
	}
}

func TestEmptyLiteralIsPresent(t *testing.T) {
	c := Constant("")
	if _, ok := c.Literal(); !ok {
		t.Error("empty string literal should still be present")
	}
}

func TestChildrenIsCopy(t *testing.T) {
	m := Module(Constant("1"))
	kids := m.Children()
	kids[0] = Constant("2")

	got, _ := m.Children()[0].Literal()
	if got != "1" {
		t.Errorf("mutating Children() result changed the tree: got %q", got)
	}
}

func TestIsContextMarker(t *testing.T) {
	for _, k := range []string{KindLoad, KindStore, KindDel} {
		if !IsContextMarker(k) {
			t.Errorf("IsContextMarker(%q) = false, want true", k)
		}
	}
	for _, k := range []string{KindName, "AugLoad", ""} {
		if IsContextMarker(k) {
			t.Errorf("IsContextMarker(%q) = true, want false", k)
		}
	}
}

func TestWalkBreadthFirst(t *testing.T) {
	tree := Module(
		FunctionDef("f", New("Pass")),
		New("Expr", Constant("1")),
	)

	var kinds []string
	Walk(tree, func(n Node) bool {
		kinds = append(kinds, n.Kind())
		return true
	})

	want := []string{"Module", "FunctionDef", "Expr", "Pass", "Constant"}
	if !slices.Equal(kinds, want) {
		t.Errorf("Walk order = %v, want %v", kinds, want)
	}
}

func TestWalkStops(t *testing.T) {
	tree := Module(New("Pass"), New("Pass"))
	visited := 0
	Walk(tree, func(Node) bool {
		visited++
		return visited < 2
	})
	if visited != 2 {
		t.Errorf("visited = %d, want 2", visited)
	}
}

func TestCount(t *testing.T) {
	tree := Module(New("Expr", Name("x", Load())))
	if got := Count(tree); got != 4 {
		t.Errorf("Count() = %d, want 4", got)
	}
}
