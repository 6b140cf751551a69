// Package python parses Python source with tree-sitter and lowers the
// concrete syntax tree into [syntax.Element] trees shaped like the ones
// Python's own ast module produces.
//
// # Shape
//
// Type tags and child order follow the ast module: a function definition is
// FunctionDef (or AsyncFunctionDef) with its arguments, body, decorators and
// return annotation as children, a call is Call with its function, then
// positional arguments, then keywords, and so on. Operators become their own
// nodes (Add, Eq, Not, ...). Every Name, Attribute, Subscript, Starred, List
// and Tuple carries a fresh Load, Store or Del marker as its last child.
//
// Constants hold the text Python would print for their value: strings with
// escapes decoded, integers in decimal, floats in repr form, and True, False,
// None and Ellipsis by name.
//
// Constructs without a dedicated lowering keep their tree-sitter children
// under a CamelCase tag derived from the grammar kind, e.g. MatchStatement.
// Comments are dropped.
package python
