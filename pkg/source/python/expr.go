package python

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/matzehuels/visast/pkg/syntax"
)

var binOps = map[string]string{
	"+": "Add", "-": "Sub", "*": "Mult", "@": "MatMult", "/": "Div",
	"%": "Mod", "**": "Pow", "<<": "LShift", ">>": "RShift",
	"|": "BitOr", "^": "BitXor", "&": "BitAnd", "//": "FloorDiv",
}

var unaryOps = map[string]string{"-": "USub", "+": "UAdd", "~": "Invert", "not": "Not"}

var boolOps = map[string]string{"and": "And", "or": "Or"}

var cmpOps = map[string]string{
	"==": "Eq", "!=": "NotEq", "<>": "NotEq", "<": "Lt", "<=": "LtE",
	">": "Gt", ">=": "GtE", "is": "Is", "is not": "IsNot", "in": "In", "not in": "NotIn",
}

func op(table map[string]string, token string) syntax.Node {
	if name, ok := table[token]; ok {
		return syntax.New(name)
	}
	return syntax.New(camel(token))
}

func binOp(token string) syntax.Node { return op(binOps, token) }

func marker(ctx string) syntax.Node { return syntax.New(ctx) }

func (l *lowerer) exprs(ns []*tree_sitter.Node, ctx string) []syntax.Node {
	out := make([]syntax.Node, 0, len(ns))
	for _, n := range ns {
		out = append(out, l.expr(n, ctx))
	}
	return out
}

// targets lowers the operands of del or a similar statement, flattening a
// bare comma-separated list.
func (l *lowerer) targets(ns []*tree_sitter.Node, ctx string) []syntax.Node {
	if len(ns) == 1 && ns[0].Kind() == "expression_list" {
		ns = named(ns[0])
	}
	return l.exprs(ns, ctx)
}

func (l *lowerer) tuple(elts []*tree_sitter.Node, ctx string) syntax.Node {
	return syntax.New("Tuple", l.exprs(elts, ctx)...).Append(marker(ctx))
}

func (l *lowerer) expr(n *tree_sitter.Node, ctx string) syntax.Node {
	if n == nil {
		return syntax.Constant("None")
	}
	switch n.Kind() {
	case "identifier":
		return syntax.Name(l.text(n), marker(ctx))
	case "attribute":
		return syntax.New("Attribute", l.expr(n.ChildByFieldName("object"), syntax.KindLoad), marker(ctx))
	case "subscript":
		return l.subscript(n, ctx)
	case "call":
		return l.call(n)
	case "string":
		return l.str(n)
	case "concatenated_string":
		return l.concatenated(n)
	case "integer":
		return syntax.Constant(formatInt(l.text(n)))
	case "float":
		return syntax.Constant(formatFloat(l.text(n)))
	case "true":
		return syntax.Constant("True")
	case "false":
		return syntax.Constant("False")
	case "none":
		return syntax.Constant("None")
	case "ellipsis":
		return syntax.Constant("Ellipsis")
	case "parenthesized_expression":
		if kids := named(n); len(kids) == 1 {
			return l.expr(kids[0], ctx)
		}
		return l.generic(n)
	case "binary_operator":
		return syntax.New("BinOp",
			l.expr(n.ChildByFieldName("left"), syntax.KindLoad),
			binOp(l.text(n.ChildByFieldName("operator"))),
			l.expr(n.ChildByFieldName("right"), syntax.KindLoad),
		)
	case "unary_operator":
		return syntax.New("UnaryOp",
			op(unaryOps, l.text(n.ChildByFieldName("operator"))),
			l.expr(n.ChildByFieldName("argument"), syntax.KindLoad),
		)
	case "not_operator":
		return syntax.New("UnaryOp", syntax.New("Not"), l.expr(n.ChildByFieldName("argument"), syntax.KindLoad))
	case "boolean_operator":
		return l.boolOp(n)
	case "comparison_operator":
		return l.compare(n)
	case "lambda":
		return syntax.New("Lambda",
			l.arguments(n.ChildByFieldName("parameters")),
			l.expr(n.ChildByFieldName("body"), syntax.KindLoad),
		)
	case "conditional_expression":
		kids := named(n)
		if len(kids) != 3 {
			return l.generic(n)
		}
		return syntax.New("IfExp", l.expr(kids[1], syntax.KindLoad), l.expr(kids[0], syntax.KindLoad), l.expr(kids[2], syntax.KindLoad))
	case "named_expression":
		return syntax.New("NamedExpr",
			l.expr(n.ChildByFieldName("name"), syntax.KindStore),
			l.expr(n.ChildByFieldName("value"), syntax.KindLoad),
		)
	case "await":
		return syntax.New("Await", l.exprs(named(n), syntax.KindLoad)...)
	case "yield":
		kind := "Yield"
		if hasToken(n, "from") {
			kind = "YieldFrom"
		}
		return syntax.New(kind, l.exprs(named(n), syntax.KindLoad)...)
	case "list", "list_pattern":
		return syntax.New("List", l.exprs(named(n), ctx)...).Append(marker(ctx))
	case "tuple", "expression_list", "pattern_list", "tuple_pattern":
		return l.tuple(named(n), ctx)
	case "set":
		return syntax.New("Set", l.exprs(named(n), syntax.KindLoad)...)
	case "dictionary":
		return l.dict(n)
	case "list_comprehension":
		return l.comprehension("ListComp", n)
	case "set_comprehension":
		return l.comprehension("SetComp", n)
	case "generator_expression":
		return l.comprehension("GeneratorExp", n)
	case "dictionary_comprehension":
		return l.comprehension("DictComp", n)
	case "list_splat", "list_splat_pattern":
		kids := named(n)
		if len(kids) == 0 {
			return l.generic(n)
		}
		return syntax.New("Starred", l.expr(kids[0], ctx), marker(ctx))
	case "slice":
		return l.slice(n)
	case "keyword_argument":
		return l.keyword(n)
	case "dictionary_splat":
		return syntax.New("keyword", l.exprs(named(n), syntax.KindLoad)...)
	case "type":
		if kids := named(n); len(kids) == 1 {
			return l.expr(kids[0], ctx)
		}
	}
	return l.generic(n)
}

func (l *lowerer) subscript(n *tree_sitter.Node, ctx string) syntax.Node {
	value := n.ChildByFieldName("value")
	var slices []*tree_sitter.Node
	for _, c := range named(n) {
		if !same(c, value) {
			slices = append(slices, c)
		}
	}
	var slice syntax.Node
	if len(slices) == 1 {
		slice = l.expr(slices[0], syntax.KindLoad)
	} else {
		slice = l.tuple(slices, syntax.KindLoad)
	}
	return syntax.New("Subscript", l.expr(value, syntax.KindLoad), slice, marker(ctx))
}

func (l *lowerer) slice(n *tree_sitter.Node) syntax.Node {
	s := syntax.New("Slice")
	for _, c := range all(n) {
		if c.IsNamed() {
			s.Append(l.expr(c, syntax.KindLoad))
		}
	}
	return s
}

func (l *lowerer) call(n *tree_sitter.Node) syntax.Node {
	c := syntax.New("Call", l.expr(n.ChildByFieldName("function"), syntax.KindLoad))
	args := n.ChildByFieldName("arguments")
	if args == nil {
		return c
	}
	if args.Kind() == "generator_expression" {
		return c.Append(l.expr(args, syntax.KindLoad))
	}
	positional, keywords := l.callArguments(args)
	return c.Append(positional...).Append(keywords...)
}

// callArguments splits an argument list into positional arguments and
// keywords, the order Python keeps them in.
func (l *lowerer) callArguments(n *tree_sitter.Node) (positional, keywords []syntax.Node) {
	for _, c := range named(n) {
		switch c.Kind() {
		case "keyword_argument", "dictionary_splat":
			keywords = append(keywords, l.expr(c, syntax.KindLoad))
		default:
			positional = append(positional, l.expr(c, syntax.KindLoad))
		}
	}
	return positional, keywords
}

func (l *lowerer) keyword(n *tree_sitter.Node) syntax.Node {
	return syntax.New("keyword", l.expr(n.ChildByFieldName("value"), syntax.KindLoad)).
		WithName(l.text(n.ChildByFieldName("name")))
}

// boolOp flattens chains of the same operator the way Python does.
func (l *lowerer) boolOp(n *tree_sitter.Node) syntax.Node {
	token := l.text(n.ChildByFieldName("operator"))
	var values []syntax.Node
	var collect func(*tree_sitter.Node)
	collect = func(x *tree_sitter.Node) {
		if x.Kind() == "boolean_operator" && l.text(x.ChildByFieldName("operator")) == token {
			collect(x.ChildByFieldName("left"))
			collect(x.ChildByFieldName("right"))
			return
		}
		values = append(values, l.expr(x, syntax.KindLoad))
	}
	collect(n.ChildByFieldName("left"))
	collect(n.ChildByFieldName("right"))
	return syntax.New("BoolOp", op(boolOps, token)).Append(values...)
}

func (l *lowerer) compare(n *tree_sitter.Node) syntax.Node {
	var operands, ops []syntax.Node
	for _, c := range all(n) {
		if c.IsNamed() {
			operands = append(operands, l.expr(c, syntax.KindLoad))
			continue
		}
		if _, ok := cmpOps[c.Kind()]; ok {
			ops = append(ops, op(cmpOps, c.Kind()))
		}
	}
	if len(operands) == 0 {
		return l.generic(n)
	}
	return syntax.New("Compare", operands[0]).Append(ops...).Append(operands[1:]...)
}

func (l *lowerer) dict(n *tree_sitter.Node) syntax.Node {
	var keys, values []syntax.Node
	for _, c := range named(n) {
		switch c.Kind() {
		case "pair":
			keys = append(keys, l.expr(c.ChildByFieldName("key"), syntax.KindLoad))
			values = append(values, l.expr(c.ChildByFieldName("value"), syntax.KindLoad))
		case "dictionary_splat":
			values = append(values, l.exprs(named(c), syntax.KindLoad)...)
		}
	}
	return syntax.New("Dict", keys...).Append(values...)
}

// comprehension lowers list, set, dict and generator comprehensions. Each
// for clause becomes a comprehension node holding the if clauses after it.
func (l *lowerer) comprehension(kind string, n *tree_sitter.Node) syntax.Node {
	c := syntax.New(kind)
	body := n.ChildByFieldName("body")
	if body != nil && body.Kind() == "pair" {
		c.Append(
			l.expr(body.ChildByFieldName("key"), syntax.KindLoad),
			l.expr(body.ChildByFieldName("value"), syntax.KindLoad),
		)
	} else {
		c.Append(l.expr(body, syntax.KindLoad))
	}

	var gen *syntax.Element
	for _, clause := range named(n) {
		switch clause.Kind() {
		case "for_in_clause":
			if gen != nil {
				c.Append(gen)
			}
			gen = syntax.New("comprehension",
				l.expr(clause.ChildByFieldName("left"), syntax.KindStore),
				l.expr(clause.ChildByFieldName("right"), syntax.KindLoad),
			)
		case "if_clause":
			if gen != nil {
				gen.Append(l.exprs(named(clause), syntax.KindLoad)...)
			}
		}
	}
	if gen != nil {
		c.Append(gen)
	}
	return c
}

// arguments lowers a parameter list into Python's arguments node: positional
// only, regular, *args, keyword only, keyword defaults, **kwargs, defaults.
func (l *lowerer) arguments(n *tree_sitter.Node) syntax.Node {
	var (
		posonly, args, kwonly []syntax.Node
		vararg, kwarg         []syntax.Node
		defaults, kwDefaults  []syntax.Node
		keywordOnly           bool
	)
	for _, p := range named(n) {
		kind := p.Kind()
		if kind == "typed_parameter" {
			if inner := named(p); len(inner) > 0 {
				switch inner[0].Kind() {
				case "list_splat_pattern":
					vararg = append(vararg, l.arg(inner[0], p.ChildByFieldName("type")))
					keywordOnly = true
					continue
				case "dictionary_splat_pattern":
					kwarg = append(kwarg, l.arg(inner[0], p.ChildByFieldName("type")))
					continue
				}
			}
		}

		switch kind {
		case "positional_separator":
			posonly, args = append(posonly, args...), nil
			continue
		case "keyword_separator":
			keywordOnly = true
			continue
		case "list_splat_pattern":
			vararg = append(vararg, l.arg(p, nil))
			keywordOnly = true
			continue
		case "dictionary_splat_pattern":
			kwarg = append(kwarg, l.arg(p, nil))
			continue
		}

		a := l.arg(p, p.ChildByFieldName("type"))
		if keywordOnly {
			kwonly = append(kwonly, a)
		} else {
			args = append(args, a)
		}
		if value := p.ChildByFieldName("value"); value != nil {
			if keywordOnly {
				kwDefaults = append(kwDefaults, l.expr(value, syntax.KindLoad))
			} else {
				defaults = append(defaults, l.expr(value, syntax.KindLoad))
			}
		}
	}

	out := syntax.New("arguments", posonly...)
	for _, group := range [][]syntax.Node{args, vararg, kwonly, kwDefaults, kwarg, defaults} {
		out.Append(group...)
	}
	return out
}

// arg lowers one parameter. For splat patterns the name is their child.
func (l *lowerer) arg(p, annotation *tree_sitter.Node) syntax.Node {
	name := p.ChildByFieldName("name")
	if name == nil {
		for _, c := range named(p) {
			if c.Kind() == "identifier" {
				name = c
				break
			}
		}
	}
	if name == nil {
		name = p
	}
	a := syntax.New("arg").WithName(l.text(name))
	if annotation != nil {
		a.Append(l.expr(annotation, syntax.KindLoad))
	}
	return a
}
