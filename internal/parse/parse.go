// Package parse converts Python source into internal/syntax trees using
// tree-sitter.
package parse

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/trackscan/internal/lang"
	"github.com/phobologic/trackscan/internal/syntax"
)

// ErrSyntax is returned when the source does not parse cleanly.
var ErrSyntax = errors.New("syntax error")

// Python parses source and converts it to a syntax tree. The parser must be
// created for the python language. Source with syntax errors is rejected
// with an error wrapping ErrSyntax.
func Python(ctx context.Context, parser *sitter.Parser, source []byte) (*syntax.Module, error) {
	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("%w at line %d", ErrSyntax, errorLine(root))
	}

	c := &converter{source: source}
	return &syntax.Module{Pos: pos(root), Body: c.statements(root)}, nil
}

// Source parses source with a throwaway parser. Callers parsing many files
// should hold their own parser and use Python.
func Source(source []byte) (*syntax.Module, error) {
	parser := lang.Languages[lang.Python].NewParser()
	defer parser.Close()
	return Python(context.Background(), parser, source)
}

// errorLine returns the 1-based line of the first ERROR or MISSING node.
func errorLine(n *sitter.Node) int {
	if n.Type() == "ERROR" || n.IsMissing() {
		return int(n.StartPoint().Row) + 1
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.HasError() || child.IsMissing() {
			return errorLine(child)
		}
	}
	return int(n.StartPoint().Row) + 1
}

func pos(n *sitter.Node) syntax.Pos {
	return syntax.Pos{Ln: int(n.StartPoint().Row) + 1}
}

type converter struct {
	source []byte
}

func (c *converter) text(n *sitter.Node) string {
	return lang.NodeText(n, c.source)
}

// named returns the named, non-comment children of n.
func named(n *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		out = append(out, child)
	}
	return out
}

func (c *converter) statements(n *sitter.Node) []syntax.Node {
	var out []syntax.Node
	for _, child := range named(n) {
		if s := c.convert(child); s != nil {
			out = append(out, s)
		}
	}
	return out
}

// convert maps one tree-sitter node to a syntax node. It returns nil only
// for nodes that carry nothing, such as comments.
func (c *converter) convert(n *sitter.Node) syntax.Node {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "comment":
		return nil
	case "expression_statement":
		return c.expressionStatement(n)
	case "decorated_definition":
		return c.decorated(n)
	case "function_definition":
		return c.function(n, nil)
	case "class_definition":
		return c.class(n)
	case "assignment":
		return c.assignment(n)
	case "call":
		return c.call(n)
	case "attribute":
		return &syntax.Attribute{
			Pos:   pos(n),
			Value: c.convert(n.ChildByFieldName("object")),
			Attr:  c.text(n.ChildByFieldName("attribute")),
		}
	case "identifier":
		return &syntax.Name{Pos: pos(n), ID: c.text(n)}
	case "string":
		return c.str(n)
	case "concatenated_string":
		return c.concatenated(n)
	case "integer":
		return c.number(n, syntax.ConstInt)
	case "float":
		return c.number(n, syntax.ConstFloat)
	case "true", "false":
		return &syntax.Constant{Pos: pos(n), Kind: syntax.ConstBool, Text: c.text(n), Bool: n.Type() == "true"}
	case "none":
		return &syntax.Constant{Pos: pos(n), Kind: syntax.ConstNone, Text: "None"}
	case "ellipsis":
		return &syntax.Constant{Pos: pos(n), Kind: syntax.ConstEllipsis, Text: "..."}
	case "dictionary":
		return c.dict(n)
	case "list":
		return &syntax.List{Pos: pos(n), Elts: c.statements(n)}
	case "tuple", "pattern_list", "expression_list":
		return &syntax.Tuple{Pos: pos(n), Elts: c.statements(n)}
	case "parenthesized_expression":
		if inner := named(n); len(inner) == 1 {
			return c.convert(inner[0])
		}
	case "subscript":
		return c.subscript(n)
	case "type":
		return c.annotation(n)
	case "generic_type":
		return c.genericType(n)
	}
	return c.other(n)
}

func (c *converter) other(n *sitter.Node) syntax.Node {
	return &syntax.Other{Pos: pos(n), Kind: n.Type(), Children: c.statements(n)}
}

// expressionStatement unwraps a single expression; `a, b` becomes a tuple.
func (c *converter) expressionStatement(n *sitter.Node) syntax.Node {
	children := named(n)
	if len(children) == 1 {
		return c.convert(children[0])
	}
	return &syntax.Tuple{Pos: pos(n), Elts: c.statements(n)}
}

func (c *converter) decorated(n *sitter.Node) syntax.Node {
	var decorators []syntax.Node
	for _, child := range named(n) {
		if child.Type() != "decorator" {
			continue
		}
		for _, expr := range named(child) {
			if d := c.convert(expr); d != nil {
				decorators = append(decorators, d)
			}
		}
	}

	def := n.ChildByFieldName("definition")
	if def == nil {
		return c.other(n)
	}
	switch def.Type() {
	case "function_definition":
		return c.function(def, decorators)
	case "class_definition":
		cls := c.class(def)
		// Class decorators run in the enclosing scope, before the class body.
		return &syntax.Other{Pos: pos(n), Kind: n.Type(), Children: append(decorators, cls)}
	}
	return c.other(n)
}

func (c *converter) function(n *sitter.Node, decorators []syntax.Node) syntax.Node {
	fn := &syntax.FunctionDef{
		Pos:        pos(n),
		Decorators: decorators,
	}
	if name := n.ChildByFieldName("name"); name != nil {
		fn.Name = c.text(name)
	}
	if params := n.ChildByFieldName("parameters"); params != nil {
		fn.Params = c.params(params)
	}
	if body := n.ChildByFieldName("body"); body != nil {
		fn.Body = c.statements(body)
	}
	return fn
}

func (c *converter) params(n *sitter.Node) []syntax.Param {
	var out []syntax.Param
	for _, p := range named(n) {
		param := syntax.Param{}
		switch p.Type() {
		case "identifier":
			param.Name = c.text(p)
		case "typed_parameter":
			for _, child := range named(p) {
				if child.Type() == "type" {
					continue
				}
				param.Name = c.paramName(child)
				break
			}
			param.Annotation = c.convert(p.ChildByFieldName("type"))
		case "default_parameter", "typed_default_parameter":
			param.Name = c.paramName(p.ChildByFieldName("name"))
			param.Annotation = c.convert(p.ChildByFieldName("type"))
			param.Default = c.convert(p.ChildByFieldName("value"))
		case "list_splat_pattern", "dictionary_splat_pattern":
			param.Name = c.paramName(p)
		default:
			continue
		}
		out = append(out, param)
	}
	return out
}

// paramName returns the identifier of a parameter, unwrapping *args and
// **kwargs patterns.
func (c *converter) paramName(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	if n.Type() == "identifier" {
		return c.text(n)
	}
	for _, child := range named(n) {
		if child.Type() == "identifier" {
			return c.text(child)
		}
	}
	return ""
}

func (c *converter) class(n *sitter.Node) syntax.Node {
	cls := &syntax.ClassDef{Pos: pos(n)}
	if name := n.ChildByFieldName("name"); name != nil {
		cls.Name = c.text(name)
	}
	if bases := n.ChildByFieldName("superclasses"); bases != nil {
		for _, b := range named(bases) {
			if b.Type() == "keyword_argument" {
				b = b.ChildByFieldName("value")
			}
			if base := c.convert(b); base != nil {
				cls.Bases = append(cls.Bases, base)
			}
		}
	}
	if body := n.ChildByFieldName("body"); body != nil {
		cls.Body = c.statements(body)
	}
	return cls
}

// assignment handles `a = v`, chained `a = b = v`, and annotated `a: T = v`.
func (c *converter) assignment(n *sitter.Node) syntax.Node {
	left := c.convert(n.ChildByFieldName("left"))
	if typ := n.ChildByFieldName("type"); typ != nil {
		return &syntax.AnnAssign{
			Pos:        pos(n),
			Target:     left,
			Annotation: c.convert(typ),
			Value:      c.convert(n.ChildByFieldName("right")),
		}
	}

	a := &syntax.Assign{Pos: pos(n)}
	if left != nil {
		a.Targets = append(a.Targets, left)
	}
	right := n.ChildByFieldName("right")
	for right != nil && right.Type() == "assignment" && right.ChildByFieldName("type") == nil {
		if t := c.convert(right.ChildByFieldName("left")); t != nil {
			a.Targets = append(a.Targets, t)
		}
		right = right.ChildByFieldName("right")
	}
	a.Value = c.convert(right)
	return a
}

func (c *converter) call(n *sitter.Node) syntax.Node {
	call := &syntax.Call{
		Pos:  pos(n),
		Func: c.convert(n.ChildByFieldName("function")),
	}
	args := n.ChildByFieldName("arguments")
	if args == nil {
		return call
	}
	if args.Type() == "generator_expression" {
		call.Args = append(call.Args, c.other(args))
		return call
	}
	for _, a := range named(args) {
		switch a.Type() {
		case "keyword_argument":
			call.Keywords = append(call.Keywords, syntax.Keyword{
				Name:  c.text(a.ChildByFieldName("name")),
				Value: c.convert(a.ChildByFieldName("value")),
			})
		case "dictionary_splat":
			call.Keywords = append(call.Keywords, syntax.Keyword{Value: c.other(a)})
		default:
			if v := c.convert(a); v != nil {
				call.Args = append(call.Args, v)
			}
		}
	}
	return call
}

func (c *converter) dict(n *sitter.Node) syntax.Node {
	d := &syntax.Dict{Pos: pos(n)}
	for _, child := range named(n) {
		switch child.Type() {
		case "pair":
			d.Items = append(d.Items, syntax.DictItem{
				Key:   c.convert(child.ChildByFieldName("key")),
				Value: c.convert(child.ChildByFieldName("value")),
			})
		case "dictionary_splat":
			d.Items = append(d.Items, syntax.DictItem{Value: c.other(child)})
		default:
			// Comprehension bodies and anything unexpected keep their calls reachable.
			d.Items = append(d.Items, syntax.DictItem{Value: c.convert(child)})
		}
	}
	return d
}

func (c *converter) subscript(n *sitter.Node) syntax.Node {
	children := named(n)
	if len(children) == 0 {
		return c.other(n)
	}
	s := &syntax.Subscript{Pos: pos(n), Value: c.convert(children[0])}
	s.Index = c.index(n, children[1:])
	return s
}

// index converts subscript indices; several indices form a tuple.
func (c *converter) index(n *sitter.Node, indices []*sitter.Node) syntax.Node {
	switch len(indices) {
	case 0:
		return nil
	case 1:
		return c.convert(indices[0])
	}
	t := &syntax.Tuple{Pos: pos(n)}
	for _, i := range indices {
		if v := c.convert(i); v != nil {
			t.Elts = append(t.Elts, v)
		}
	}
	return t
}

// annotation unwraps a `type` node to the expression it holds.
func (c *converter) annotation(n *sitter.Node) syntax.Node {
	children := named(n)
	if len(children) == 1 {
		return c.convert(children[0])
	}
	return c.other(n)
}

// genericType handles grammars that parse `List[int]` in annotations as
// generic_type rather than subscript.
func (c *converter) genericType(n *sitter.Node) syntax.Node {
	children := named(n)
	if len(children) == 0 {
		return c.other(n)
	}
	s := &syntax.Subscript{Pos: pos(n), Value: c.convert(children[0])}
	var params []*sitter.Node
	for _, child := range children[1:] {
		if child.Type() == "type_parameter" {
			params = append(params, named(child)...)
			continue
		}
		params = append(params, child)
	}
	s.Index = c.index(n, params)
	return s
}

func (c *converter) number(n *sitter.Node, kind syntax.ConstKind) syntax.Node {
	text := c.text(n)
	if last := text[len(text)-1]; last == 'j' || last == 'J' {
		kind = syntax.ConstComplex
	}
	return &syntax.Constant{Pos: pos(n), Kind: kind, Text: text}
}
