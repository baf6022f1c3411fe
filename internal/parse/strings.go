package parse

import (
	"strconv"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/trackscan/internal/syntax"
)

// str converts a string node. f-strings are not constants; their
// interpolated expressions are kept as children so calls inside them are
// still visited.
func (c *converter) str(n *sitter.Node) syntax.Node {
	text := c.text(n)
	prefix := strings.ToLower(stringPrefix(text))

	if strings.Contains(prefix, "f") {
		var parts []syntax.Node
		for _, child := range named(n) {
			if child.Type() != "interpolation" {
				continue
			}
			for _, expr := range named(child) {
				if v := c.convert(expr); v != nil {
					parts = append(parts, v)
				}
			}
		}
		return &syntax.Other{Pos: pos(n), Kind: "fstring", Children: parts}
	}

	body := stringBody(text[len(prefix):])
	if strings.Contains(prefix, "b") {
		return &syntax.Constant{Pos: pos(n), Kind: syntax.ConstBytes, Text: text}
	}
	if !strings.Contains(prefix, "r") {
		body = unescape(body)
	}
	return &syntax.Constant{Pos: pos(n), Kind: syntax.ConstString, Text: body}
}

// concatenated joins adjacent literals. Any f-string or a mix of bytes and
// text makes the whole expression non-constant.
func (c *converter) concatenated(n *sitter.Node) syntax.Node {
	var b strings.Builder
	var kind syntax.ConstKind = -1
	var parts []syntax.Node
	constant := true

	for _, child := range named(n) {
		part := c.convert(child)
		parts = append(parts, part)
		lit, ok := part.(*syntax.Constant)
		if !ok {
			constant = false
			continue
		}
		if kind == -1 {
			kind = lit.Kind
		} else if kind != lit.Kind {
			constant = false
		}
		b.WriteString(lit.Text)
	}

	if !constant || kind != syntax.ConstString {
		return &syntax.Other{Pos: pos(n), Kind: n.Type(), Children: parts}
	}
	return &syntax.Constant{Pos: pos(n), Kind: syntax.ConstString, Text: b.String()}
}

func stringPrefix(text string) string {
	for i, r := range text {
		if r == '"' || r == '\'' {
			return text[:i]
		}
	}
	return text
}

// stringBody strips the surrounding quotes from a literal with its prefix
// already removed.
func stringBody(quoted string) string {
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if len(quoted) >= 2*len(q) && strings.HasPrefix(quoted, q) && strings.HasSuffix(quoted, q) {
			return quoted[len(q) : len(quoted)-len(q)]
		}
	}
	return quoted
}

var simpleEscapes = map[byte]string{
	'\\': `\`,
	'\'': `'`,
	'"':  `"`,
	'a':  "\a",
	'b':  "\b",
	'f':  "\f",
	'n':  "\n",
	'r':  "\r",
	't':  "\t",
	'v':  "\v",
	'\n': "",
}

// unescape decodes Python escape sequences. Unknown escapes are kept
// verbatim, as Python does.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		next := s[i+1]
		if rep, ok := simpleEscapes[next]; ok {
			b.WriteString(rep)
			i++
			continue
		}
		switch {
		case next >= '0' && next <= '7':
			j := i + 1
			for j < len(s) && j < i+4 && s[j] >= '0' && s[j] <= '7' {
				j++
			}
			v, _ := strconv.ParseUint(s[i+1:j], 8, 32)
			b.WriteRune(rune(v))
			i = j - 1
		case next == 'x' || next == 'u' || next == 'U':
			width := map[byte]int{'x': 2, 'u': 4, 'U': 8}[next]
			end := i + 2 + width
			if end > len(s) {
				b.WriteByte(s[i])
				continue
			}
			v, err := strconv.ParseUint(s[i+2:end], 16, 32)
			if err != nil || (next != 'x' && !utf8.ValidRune(rune(v))) {
				b.WriteByte(s[i])
				continue
			}
			b.WriteRune(rune(v))
			i = end - 1
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
