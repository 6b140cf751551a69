package python

import (
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/matzehuels/visast/pkg/syntax"
)

// strPart is one piece of a string literal: either literal text or an
// interpolated expression.
type strPart struct {
	text  string
	value syntax.Node
}

func (l *lowerer) str(n *tree_sitter.Node) syntax.Node {
	return l.joinStrings([]*tree_sitter.Node{n})
}

func (l *lowerer) concatenated(n *tree_sitter.Node) syntax.Node {
	var parts []*tree_sitter.Node
	for _, c := range named(n) {
		if c.Kind() == "string" {
			parts = append(parts, c)
		}
	}
	return l.joinStrings(parts)
}

// joinStrings lowers adjacent string literals. Plain strings collapse into
// one Constant; if any piece is an f-string the result is a JoinedStr of
// Constant and FormattedValue nodes.
func (l *lowerer) joinStrings(ns []*tree_sitter.Node) syntax.Node {
	var parts []strPart
	formatted, bytes := false, false
	for _, n := range ns {
		prefix, _, _ := splitString(l.text(n))
		lower := strings.ToLower(prefix)
		bytes = bytes || strings.Contains(lower, "b")
		if strings.Contains(lower, "f") {
			formatted = true
			parts = append(parts, l.fstringParts(n, strings.Contains(lower, "r"))...)
			continue
		}
		parts = append(parts, strPart{text: stringValue(l.text(n))})
	}

	if !formatted {
		var b strings.Builder
		for _, p := range parts {
			b.WriteString(p.text)
		}
		if bytes {
			return syntax.Constant(bytesRepr(b.String()))
		}
		return syntax.Constant(b.String())
	}

	js := syntax.New("JoinedStr")
	var pending strings.Builder
	flush := func() {
		if pending.Len() > 0 {
			js.Append(syntax.Constant(pending.String()))
			pending.Reset()
		}
	}
	for _, p := range parts {
		if p.value == nil {
			pending.WriteString(p.text)
			continue
		}
		flush()
		js.Append(p.value)
	}
	flush()
	return js
}

// fstringParts splits an f-string into literal text and interpolations using
// the byte offsets of its interpolation children.
func (l *lowerer) fstringParts(n *tree_sitter.Node, raw bool) []strPart {
	prefix, quote, _ := splitString(l.text(n))
	start := n.StartByte() + uint(len(prefix)+len(quote))
	end := n.EndByte() - uint(len(quote))

	literal := func(from, to uint) strPart {
		text := string(l.src[from:to])
		if !raw {
			text = decodeEscapes(text)
		}
		text = strings.NewReplacer("{{", "{", "}}", "}").Replace(text)
		return strPart{text: text}
	}

	var parts []strPart
	pos := start
	for _, c := range named(n) {
		if c.Kind() != "interpolation" {
			continue
		}
		if c.StartByte() > pos {
			parts = append(parts, literal(pos, c.StartByte()))
		}
		parts = append(parts, strPart{value: l.interpolation(c)})
		pos = c.EndByte()
	}
	if end > pos {
		parts = append(parts, literal(pos, end))
	}
	return parts
}

func (l *lowerer) interpolation(n *tree_sitter.Node) syntax.Node {
	expr := n.ChildByFieldName("expression")
	if expr == nil {
		if kids := named(n); len(kids) > 0 {
			expr = kids[0]
		}
	}
	fv := syntax.New("FormattedValue", l.expr(expr, syntax.KindLoad))
	for _, c := range named(n) {
		if c.Kind() == "format_specifier" {
			spec := strings.TrimPrefix(l.text(c), ":")
			fv.Append(syntax.New("JoinedStr", syntax.Constant(spec)))
		}
	}
	return fv
}

// splitString separates a literal into its prefix letters, quote and body.
func splitString(text string) (prefix, quote, body string) {
	i := strings.IndexAny(text, `'"`)
	if i < 0 {
		return "", "", text
	}
	prefix, rest := text[:i], text[i:]
	quote = rest[:1]
	if triple := strings.Repeat(quote, 3); len(rest) >= 6 && strings.HasPrefix(rest, triple) {
		quote = triple
	}
	body = strings.TrimSuffix(strings.TrimPrefix(rest, quote), quote)
	return prefix, quote, body
}

// stringValue returns the text a non-f-string literal evaluates to. Byte
// strings keep their source escapes.
func stringValue(text string) string {
	prefix, _, body := splitString(text)
	lower := strings.ToLower(prefix)
	if strings.Contains(lower, "r") || strings.Contains(lower, "b") {
		return body
	}
	return decodeEscapes(body)
}

// quoteEscapes undoes escaped quotes in a bytes body; escaped backslashes
// are matched first so \\' keeps its backslash pair.
var quoteEscapes = strings.NewReplacer(`\\`, `\\`, `\'`, `'`, `\"`, `"`)

// bytesRepr quotes a bytes body, still in source escape form, the way
// Python's repr does: double quotes when the value holds a single quote and
// no double quote, otherwise single quotes with inner ones escaped.
func bytesRepr(body string) string {
	v := quoteEscapes.Replace(body)
	if strings.Contains(v, "'") && !strings.Contains(v, `"`) {
		return `b"` + v + `"`
	}
	return "b'" + strings.ReplaceAll(v, "'", `\'`) + "'"
}

// decodeEscapes interprets Python backslash escapes. Unknown escapes and
// \N{...} are kept as written.
func decodeEscapes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch e := s[i]; e {
		case '\n':
		case '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
		case '\\', '\'', '"':
			b.WriteByte(e)
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'v':
			b.WriteByte('\v')
		case '0', '1', '2', '3', '4', '5', '6', '7':
			j := i
			for j < len(s) && j < i+3 && s[j] >= '0' && s[j] <= '7' {
				j++
			}
			v, _ := strconv.ParseUint(s[i:j], 8, 32)
			b.WriteRune(rune(v))
			i = j - 1
		case 'x', 'u', 'U':
			width := 2
			switch e {
			case 'u':
				width = 4
			case 'U':
				width = 8
			}
			if i+1+width > len(s) {
				b.WriteByte('\\')
				b.WriteByte(e)
				continue
			}
			v, err := strconv.ParseUint(s[i+1:i+1+width], 16, 32)
			if err != nil || !utf8.ValidRune(rune(v)) {
				b.WriteByte('\\')
				b.WriteByte(e)
				continue
			}
			b.WriteRune(rune(v))
			i += width
		default:
			b.WriteByte('\\')
			b.WriteByte(e)
		}
	}
	return b.String()
}

// formatInt renders an integer literal in decimal, as Python prints it.
func formatInt(text string) string {
	if imag, ok := strings.CutSuffix(strings.ToLower(text), "j"); ok {
		return formatImag(imag)
	}
	text = strings.TrimRight(text, "lL")
	var n big.Int
	if _, ok := n.SetString(text, 0); !ok {
		if _, ok := n.SetString(strings.ReplaceAll(text, "_", ""), 10); !ok {
			return text
		}
	}
	return n.String()
}

// formatFloat renders a float literal the way Python's repr does.
func formatFloat(text string) string {
	if imag, ok := strings.CutSuffix(strings.ToLower(text), "j"); ok {
		return formatImag(imag)
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64)
	if err != nil && !math.IsInf(f, 0) {
		return text
	}
	return reprFloat(f)
}

func reprFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	if abs := math.Abs(f); abs != 0 && (abs >= 1e16 || abs < 1e-4) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func formatImag(text string) string {
	f, err := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64)
	if err != nil && !math.IsInf(f, 0) {
		return text + "j"
	}
	return strconv.FormatFloat(f, 'g', -1, 64) + "j"
}
