package python

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/matzehuels/visast/pkg/syntax"
)

// SyntaxError reports the first error or missing token tree-sitter found.
// Line and Column are 1-based.
type SyntaxError struct {
	Line   uint
	Column uint
	Near   string
}

func (e *SyntaxError) Error() string {
	if e.Near == "" {
		return fmt.Sprintf("syntax error at line %d, column %d", e.Line, e.Column)
	}
	return fmt.Sprintf("syntax error at line %d, column %d near %q", e.Line, e.Column, e.Near)
}

// Parse parses src and returns its Module tree.
func Parse(src []byte) (*syntax.Element, error) {
	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(tree_sitter.NewLanguage(tree_sitter_python.Language())); err != nil {
		return nil, fmt.Errorf("load python grammar: %w", err)
	}

	tree := parser.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("parse python: no tree produced")
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, firstError(root, src)
	}

	l := &lowerer{src: src}
	return l.module(root), nil
}

// maxNear bounds the source excerpt quoted in a SyntaxError, in runes.
const maxNear = 20

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// firstError returns the position of the first ERROR or MISSING node in
// document order.
func firstError(n *tree_sitter.Node, src []byte) *SyntaxError {
	if n.IsError() || n.IsMissing() {
		p := n.StartPosition()
		near := truncate(n.Utf8Text(src), maxNear)
		if n.IsMissing() {
			near = n.Kind()
		}
		return &SyntaxError{Line: p.Row + 1, Column: p.Column + 1, Near: near}
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c != nil && (c.HasError() || c.IsMissing()) {
			if err := firstError(c, src); err != nil {
				return err
			}
		}
	}
	p := n.StartPosition()
	return &SyntaxError{Line: p.Row + 1, Column: p.Column + 1}
}
