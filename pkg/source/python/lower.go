package python

import (
	"strings"
	"unicode"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/matzehuels/visast/pkg/syntax"
)

type lowerer struct {
	src []byte
}

func (l *lowerer) text(n *tree_sitter.Node) string { return n.Utf8Text(l.src) }

// named returns the named children of n, without comments.
func named(n *tree_sitter.Node) []*tree_sitter.Node {
	if n == nil {
		return nil
	}
	out := make([]*tree_sitter.Node, 0, n.NamedChildCount())
	for i := uint(0); i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		if c == nil || c.Kind() == "comment" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// all returns every child of n, named or not, without comments.
func all(n *tree_sitter.Node) []*tree_sitter.Node {
	out := make([]*tree_sitter.Node, 0, n.ChildCount())
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil || c.Kind() == "comment" {
			continue
		}
		out = append(out, c)
	}
	return out
}

func hasToken(n *tree_sitter.Node, token string) bool {
	for _, c := range all(n) {
		if !c.IsNamed() && c.Kind() == token {
			return true
		}
	}
	return false
}

func same(a, b *tree_sitter.Node) bool {
	return a != nil && b != nil && a.Id() == b.Id()
}

func (l *lowerer) module(n *tree_sitter.Node) *syntax.Element {
	return syntax.Module(l.body(n)...)
}

// body lowers the statements of a module, block or clause.
func (l *lowerer) body(n *tree_sitter.Node) []syntax.Node {
	if n == nil {
		return nil
	}
	if n.Kind() != "block" && n.Kind() != "module" {
		if b := n.ChildByFieldName("body"); b != nil {
			n = b
		}
	}
	var out []syntax.Node
	for _, c := range named(n) {
		if c.Kind() == "block" {
			out = append(out, l.body(c)...)
			continue
		}
		out = append(out, l.stmt(c))
	}
	return out
}

func (l *lowerer) stmt(n *tree_sitter.Node) syntax.Node {
	switch n.Kind() {
	case "expression_statement":
		return l.exprStatement(n)
	case "return_statement":
		ret := syntax.New("Return")
		if kids := named(n); len(kids) > 0 {
			ret.Append(l.expr(kids[0], syntax.KindLoad))
		}
		return ret
	case "pass_statement":
		return syntax.New("Pass")
	case "break_statement":
		return syntax.New("Break")
	case "continue_statement":
		return syntax.New("Continue")
	case "delete_statement":
		return syntax.New("Delete", l.targets(named(n), syntax.KindDel)...)
	case "raise_statement":
		return l.raise(n)
	case "assert_statement":
		return syntax.New("Assert", l.exprs(named(n), syntax.KindLoad)...)
	case "global_statement":
		return syntax.New("Global")
	case "nonlocal_statement":
		return syntax.New("Nonlocal")
	case "import_statement":
		return syntax.New("Import", l.aliases(n, nil)...)
	case "import_from_statement", "future_import_statement":
		return syntax.New("ImportFrom", l.aliases(n, n.ChildByFieldName("module_name"))...)
	case "if_statement":
		return l.ifStatement(n)
	case "for_statement":
		return l.forStatement(n)
	case "while_statement":
		return syntax.New("While", l.expr(n.ChildByFieldName("condition"), syntax.KindLoad)).
			Append(l.body(n.ChildByFieldName("body"))...).
			Append(l.orelse(n.ChildByFieldName("alternative"))...)
	case "try_statement":
		return l.tryStatement(n)
	case "with_statement":
		return l.withStatement(n)
	case "function_definition":
		return l.functionDef(n, nil)
	case "class_definition":
		return l.classDef(n, nil)
	case "decorated_definition":
		return l.decorated(n)
	}
	return l.expr(n, syntax.KindLoad)
}

func (l *lowerer) exprStatement(n *tree_sitter.Node) syntax.Node {
	kids := named(n)
	if len(kids) == 1 {
		switch kids[0].Kind() {
		case "assignment":
			return l.assignment(kids[0])
		case "augmented_assignment":
			return l.augAssignment(kids[0])
		}
		return syntax.New("Expr", l.expr(kids[0], syntax.KindLoad))
	}
	return syntax.New("Expr", l.tuple(kids, syntax.KindLoad))
}

func (l *lowerer) assignment(n *tree_sitter.Node) syntax.Node {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")

	if typ := n.ChildByFieldName("type"); typ != nil {
		ann := syntax.New("AnnAssign", l.expr(left, syntax.KindStore), l.expr(typ, syntax.KindLoad))
		if right != nil {
			ann.Append(l.expr(right, syntax.KindLoad))
		}
		return ann
	}

	targets := []syntax.Node{l.expr(left, syntax.KindStore)}
	for right != nil && right.Kind() == "assignment" && right.ChildByFieldName("type") == nil {
		targets = append(targets, l.expr(right.ChildByFieldName("left"), syntax.KindStore))
		right = right.ChildByFieldName("right")
	}
	return syntax.New("Assign", targets...).Append(l.expr(right, syntax.KindLoad))
}

func (l *lowerer) augAssignment(n *tree_sitter.Node) syntax.Node {
	op := strings.TrimSuffix(l.text(n.ChildByFieldName("operator")), "=")
	return syntax.New("AugAssign",
		l.expr(n.ChildByFieldName("left"), syntax.KindStore),
		binOp(op),
		l.expr(n.ChildByFieldName("right"), syntax.KindLoad),
	)
}

func (l *lowerer) raise(n *tree_sitter.Node) syntax.Node {
	r := syntax.New("Raise")
	cause := n.ChildByFieldName("cause")
	for _, c := range named(n) {
		if same(c, cause) {
			continue
		}
		r.Append(l.expr(c, syntax.KindLoad))
	}
	if cause != nil {
		r.Append(l.expr(cause, syntax.KindLoad))
	}
	return r
}

// aliases lowers the imported names of an import statement, skipping the
// module it imports from.
func (l *lowerer) aliases(n, module *tree_sitter.Node) []syntax.Node {
	var out []syntax.Node
	for _, c := range named(n) {
		if same(c, module) {
			continue
		}
		switch c.Kind() {
		case "aliased_import":
			out = append(out, syntax.New("alias").WithName(l.text(c.ChildByFieldName("name"))))
		case "wildcard_import":
			out = append(out, syntax.New("alias").WithName("*"))
		default:
			out = append(out, syntax.New("alias").WithName(l.text(c)))
		}
	}
	return out
}

func (l *lowerer) ifStatement(n *tree_sitter.Node) syntax.Node {
	var alts []*tree_sitter.Node
	for _, c := range named(n) {
		if c.Kind() == "elif_clause" || c.Kind() == "else_clause" {
			alts = append(alts, c)
		}
	}
	return l.ifChain(n.ChildByFieldName("condition"), n.ChildByFieldName("consequence"), alts)
}

// ifChain builds the nested If nodes Python uses for elif.
func (l *lowerer) ifChain(cond, cons *tree_sitter.Node, alts []*tree_sitter.Node) syntax.Node {
	node := syntax.New("If", l.expr(cond, syntax.KindLoad)).Append(l.body(cons)...)
	if len(alts) == 0 {
		return node
	}
	next := alts[0]
	if next.Kind() == "else_clause" {
		return node.Append(l.body(next)...)
	}
	return node.Append(l.ifChain(next.ChildByFieldName("condition"), next.ChildByFieldName("consequence"), alts[1:]))
}

func (l *lowerer) orelse(n *tree_sitter.Node) []syntax.Node {
	if n == nil {
		return nil
	}
	return l.body(n)
}

func (l *lowerer) forStatement(n *tree_sitter.Node) syntax.Node {
	kind := "For"
	if hasToken(n, "async") {
		kind = "AsyncFor"
	}
	return syntax.New(kind,
		l.expr(n.ChildByFieldName("left"), syntax.KindStore),
		l.expr(n.ChildByFieldName("right"), syntax.KindLoad),
	).Append(l.body(n.ChildByFieldName("body"))...).
		Append(l.orelse(n.ChildByFieldName("alternative"))...)
}

func (l *lowerer) tryStatement(n *tree_sitter.Node) syntax.Node {
	kind := "Try"
	var handlers, orelse, final []syntax.Node
	for _, c := range named(n) {
		switch c.Kind() {
		case "except_clause":
			handlers = append(handlers, l.exceptHandler(c))
		case "except_group_clause":
			kind = "TryStar"
			handlers = append(handlers, l.exceptHandler(c))
		case "else_clause":
			orelse = l.body(c)
		case "finally_clause":
			final = l.body(c)
		}
	}
	return syntax.New(kind, l.body(n.ChildByFieldName("body"))...).
		Append(handlers...).Append(orelse...).Append(final...)
}

func (l *lowerer) exceptHandler(n *tree_sitter.Node) syntax.Node {
	h := syntax.New("ExceptHandler")
	var body []syntax.Node
	for i, c := range named(n) {
		switch {
		case c.Kind() == "block":
			body = l.body(c)
		case c.Kind() == "as_pattern":
			kids := named(c)
			if len(kids) > 0 {
				h.Append(l.expr(kids[0], syntax.KindLoad))
			}
			if alias := c.ChildByFieldName("alias"); alias != nil {
				h.WithName(l.text(alias))
			}
		case i == 0:
			h.Append(l.expr(c, syntax.KindLoad))
		default:
			h.WithName(l.text(c))
		}
	}
	return h.Append(body...)
}

func (l *lowerer) withStatement(n *tree_sitter.Node) syntax.Node {
	kind := "With"
	if hasToken(n, "async") {
		kind = "AsyncWith"
	}
	w := syntax.New(kind)
	for _, c := range named(n) {
		if c.Kind() != "with_clause" {
			continue
		}
		for _, item := range named(c) {
			if item.Kind() == "with_item" {
				w.Append(l.withItem(item))
			}
		}
	}
	return w.Append(l.body(n.ChildByFieldName("body"))...)
}

func (l *lowerer) withItem(n *tree_sitter.Node) syntax.Node {
	value := n.ChildByFieldName("value")
	if value == nil {
		if kids := named(n); len(kids) > 0 {
			value = kids[0]
		}
	}
	item := syntax.New("withitem")
	if value != nil && value.Kind() == "as_pattern" {
		kids := named(value)
		item.Append(l.expr(kids[0], syntax.KindLoad))
		if alias := value.ChildByFieldName("alias"); alias != nil {
			target := alias
			if inner := named(alias); alias.Kind() == "as_pattern_target" && len(inner) == 1 {
				target = inner[0]
			}
			item.Append(l.expr(target, syntax.KindStore))
		}
		return item
	}
	return item.Append(l.expr(value, syntax.KindLoad))
}

func (l *lowerer) decorated(n *tree_sitter.Node) syntax.Node {
	var decorators []syntax.Node
	for _, c := range named(n) {
		if c.Kind() == "decorator" {
			if kids := named(c); len(kids) > 0 {
				decorators = append(decorators, l.expr(kids[0], syntax.KindLoad))
			}
		}
	}
	def := n.ChildByFieldName("definition")
	if def != nil && def.Kind() == "class_definition" {
		return l.classDef(def, decorators)
	}
	return l.functionDef(def, decorators)
}

func (l *lowerer) functionDef(n *tree_sitter.Node, decorators []syntax.Node) syntax.Node {
	kind := syntax.KindFunctionDef
	if hasToken(n, "async") {
		kind = syntax.KindAsyncFunctionDef
	}
	fn := syntax.New(kind, l.arguments(n.ChildByFieldName("parameters"))).
		WithName(l.text(n.ChildByFieldName("name"))).
		Append(l.body(n.ChildByFieldName("body"))...).
		Append(decorators...)
	if ret := n.ChildByFieldName("return_type"); ret != nil {
		fn.Append(l.expr(ret, syntax.KindLoad))
	}
	return fn
}

func (l *lowerer) classDef(n *tree_sitter.Node, decorators []syntax.Node) syntax.Node {
	cls := syntax.ClassDef(l.text(n.ChildByFieldName("name")))
	if supers := n.ChildByFieldName("superclasses"); supers != nil {
		args, keywords := l.callArguments(supers)
		cls.Append(args...).Append(keywords...)
	}
	return cls.Append(l.body(n.ChildByFieldName("body"))...).Append(decorators...)
}

// generic keeps an unknown construct under a CamelCase tag.
func (l *lowerer) generic(n *tree_sitter.Node) syntax.Node {
	e := syntax.New(camel(n.Kind()))
	for _, c := range named(n) {
		if c.Kind() == "block" {
			e.Append(l.body(c)...)
			continue
		}
		e.Append(l.stmt(c))
	}
	return e
}

func camel(kind string) string {
	var b strings.Builder
	for _, part := range strings.Split(kind, "_") {
		if part == "" {
			continue
		}
		r := []rune(part)
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}
	return b.String()
}
