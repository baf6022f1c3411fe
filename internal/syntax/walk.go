package syntax

import "fmt"

// Children returns the direct children of n in source order. Parameter
// annotations and defaults precede a function body, decorators precede
// everything else.
func Children(n Node) []Node {
	switch n := n.(type) {
	case *Module:
		return n.Body
	case *FunctionDef:
		var out []Node
		out = append(out, n.Decorators...)
		for _, p := range n.Params {
			out = appendNonNil(out, p.Annotation, p.Default)
		}
		return append(out, n.Body...)
	case *ClassDef:
		out := append([]Node(nil), n.Bases...)
		return append(out, n.Body...)
	case *Assign:
		out := append([]Node(nil), n.Targets...)
		return appendNonNil(out, n.Value)
	case *AnnAssign:
		return appendNonNil(nil, n.Target, n.Annotation, n.Value)
	case *Call:
		out := appendNonNil(nil, n.Func)
		out = append(out, n.Args...)
		for _, kw := range n.Keywords {
			out = appendNonNil(out, kw.Value)
		}
		return out
	case *Attribute:
		return appendNonNil(nil, n.Value)
	case *Name, *Constant:
		return nil
	case *Dict:
		var out []Node
		for _, it := range n.Items {
			out = appendNonNil(out, it.Key, it.Value)
		}
		return out
	case *List:
		return n.Elts
	case *Tuple:
		return n.Elts
	case *Subscript:
		return appendNonNil(nil, n.Value, n.Index)
	case *Other:
		return n.Children
	case nil:
		return nil
	default:
		panic(fmt.Sprintf("syntax: unhandled node type %T", n))
	}
}

func appendNonNil(out []Node, nodes ...Node) []Node {
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}
