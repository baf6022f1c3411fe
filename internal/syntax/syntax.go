// Package syntax defines the closed set of Python syntax nodes the tracking
// analyzer understands. Trees are produced by internal/parse and consumed by
// internal/tracking; nothing here depends on tree-sitter.
package syntax

// Node is implemented only by the types in this package. Consumers switch
// exhaustively over the concrete types.
type Node interface {
	// Line is the 1-based source line of the node's first token.
	Line() int
	node()
}

// Pos carries a node's line number.
type Pos struct {
	Ln int
}

func (p Pos) Line() int { return p.Ln }
func (Pos) node()       {}

// Module is the root of a parsed file.
type Module struct {
	Pos
	Body []Node
}

// Param is a single function parameter. Annotation is nil when absent.
type Param struct {
	Name       string
	Annotation Node
	Default    Node
}

// FunctionDef is a def or async def statement.
type FunctionDef struct {
	Pos
	Name       string
	Params     []Param
	Decorators []Node
	Body       []Node
}

// ClassDef is a class statement.
type ClassDef struct {
	Pos
	Name  string
	Bases []Node
	Body  []Node
}

// Assign is `targets... = value`. Chained assignment yields several targets.
type Assign struct {
	Pos
	Targets []Node
	Value   Node
}

// AnnAssign is `target: annotation [= value]`. Value may be nil.
type AnnAssign struct {
	Pos
	Target     Node
	Annotation Node
	Value      Node
}

// Keyword is a `name=value` call argument. Name is empty for `**value`.
type Keyword struct {
	Name  string
	Value Node
}

// Call is `fn(args..., keywords...)`.
type Call struct {
	Pos
	Func     Node
	Args     []Node
	Keywords []Keyword
}

// Attribute is `value.attr`.
type Attribute struct {
	Pos
	Value Node
	Attr  string
}

// Name is a bare identifier.
type Name struct {
	Pos
	ID string
}

// ConstKind classifies a literal constant.
type ConstKind int

const (
	ConstString ConstKind = iota
	ConstBytes
	ConstInt
	ConstFloat
	ConstComplex
	ConstBool
	ConstNone
	ConstEllipsis
)

// Constant is a literal scalar. Text holds the decoded string value for
// ConstString and the source spelling otherwise.
type Constant struct {
	Pos
	Kind ConstKind
	Text string
	Bool bool
}

// DictItem is one `key: value` entry. Key is nil for `**spread` entries.
type DictItem struct {
	Key   Node
	Value Node
}

// Dict is a dictionary display.
type Dict struct {
	Pos
	Items []DictItem
}

// List is a list display.
type List struct {
	Pos
	Elts []Node
}

// Tuple is a tuple display, parenthesized or bare.
type Tuple struct {
	Pos
	Elts []Node
}

// Subscript is `value[index]`. A multi-element index is a Tuple.
type Subscript struct {
	Pos
	Value Node
	Index Node
}

// Other is any node the analyzer does not model. Its children are kept so
// nested calls are still reachable.
type Other struct {
	Pos
	Kind     string
	Children []Node
}

// IsString reports whether n is a string literal, returning its value.
func IsString(n Node) (string, bool) {
	c, ok := n.(*Constant)
	if !ok || c.Kind != ConstString {
		return "", false
	}
	return c.Text, true
}

// IsNone reports whether n is the None literal.
func IsNone(n Node) bool {
	c, ok := n.(*Constant)
	return ok && c.Kind == ConstNone
}

// NameOf returns the identifier of a bare Name node.
func NameOf(n Node) (string, bool) {
	nm, ok := n.(*Name)
	if !ok {
		return "", false
	}
	return nm.ID, true
}
