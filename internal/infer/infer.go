// Package infer derives JSON-Schema shaped types from Python annotations and
// value expressions, using only literals and bindings already in scope.
package infer

import (
	"math"

	"github.com/phobologic/trackscan/internal/model"
	"github.com/phobologic/trackscan/internal/syntax"
)

// Lookup resolves a bare identifier to the type bound in the current scope.
type Lookup interface {
	Lookup(name string) (*model.Type, bool)
}

var primitiveNames = map[string]model.Kind{
	"int":      model.Number,
	"float":    model.Number,
	"str":      model.String,
	"bool":     model.Boolean,
	"None":     model.Null,
	"NoneType": model.Null,
}

var arrayContainers = map[string]struct{}{
	"List": {}, "Tuple": {}, "Set": {},
	"list": {}, "tuple": {}, "set": {},
}

var objectContainers = map[string]struct{}{
	"Dict": {}, "dict": {},
}

// FromAnnotation maps a declared type to a Type. Unknown or missing
// annotations yield any.
func FromAnnotation(n syntax.Node) *model.Type {
	switch n := n.(type) {
	case *syntax.Name:
		if k, ok := primitiveNames[n.ID]; ok {
			return model.Primitive(k)
		}
	case *syntax.Constant:
		if n.Kind == syntax.ConstNone {
			return model.Primitive(model.Null)
		}
	case *syntax.Subscript:
		container, ok := syntax.NameOf(n.Value)
		if !ok {
			break
		}
		if _, ok := arrayContainers[container]; ok {
			if elem, ok := n.Index.(*syntax.Name); ok {
				return model.ArrayOf(FromAnnotation(elem))
			}
			return model.ArrayOf(model.Primitive(model.Any))
		}
		if _, ok := objectContainers[container]; ok {
			// Declared mappings carry no key information.
			return &model.Type{Kind: model.Object}
		}
	}
	return model.Primitive(model.Any)
}

// FromValue infers the type of a value expression.
func FromValue(n syntax.Node, scope Lookup) *model.Type {
	switch n := n.(type) {
	case *syntax.Constant:
		return Literal(n)
	case *syntax.Name:
		if scope != nil {
			if t, ok := scope.Lookup(n.ID); ok && t != nil {
				return t
			}
		}
		return model.Primitive(model.Any)
	case *syntax.Dict:
		return model.ObjectOf(DictProperties(n, scope))
	case *syntax.List:
		return model.ArrayOf(collapse(n.Elts, scope))
	case *syntax.Tuple:
		return model.ArrayOf(collapse(n.Elts, scope))
	}
	return model.Primitive(model.Any)
}

// Literal returns the primitive type of a constant.
func Literal(c *syntax.Constant) *model.Type {
	switch c.Kind {
	case syntax.ConstBool:
		return model.Primitive(model.Boolean)
	case syntax.ConstString:
		return model.Primitive(model.String)
	case syntax.ConstInt, syntax.ConstFloat:
		return model.Primitive(model.Number)
	case syntax.ConstNone:
		return model.Primitive(model.Null)
	}
	return model.Primitive(model.Any)
}

// DictProperties infers a type for each entry of d whose key is a literal
// constant. Spread entries and computed keys are skipped.
func DictProperties(d *syntax.Dict, scope Lookup) *model.Properties {
	props := model.NewProperties()
	for _, it := range d.Items {
		key, ok := Key(it.Key)
		if !ok {
			continue
		}
		props.Set(key, FromValue(it.Value, scope))
	}
	return props
}

// Key returns the property name of a literal dictionary key, spelled the
// way json.dumps spells Python dict keys.
func Key(n syntax.Node) (string, bool) {
	c, ok := n.(*syntax.Constant)
	if !ok {
		return "", false
	}
	switch c.Kind {
	case syntax.ConstString:
		return c.Text, true
	case syntax.ConstInt:
		v, ok := c.IntValue()
		if !ok {
			return c.Text, true
		}
		return v.String(), true
	case syntax.ConstFloat:
		f, ok := c.FloatValue()
		switch {
		case !ok:
			return c.Text, true
		case math.IsInf(f, 1):
			return "Infinity", true
		}
		return syntax.FormatFloat(f), true
	case syntax.ConstBool:
		if c.Bool {
			return "true", true
		}
		return "false", true
	case syntax.ConstNone:
		return "null", true
	}
	return "", false
}

// collapse reduces the element types of a sequence display to one item
// type. It is lossy on purpose: numbers mixed with strings become string,
// numbers mixed with booleans become number, anything else mixed is any.
func collapse(elts []syntax.Node, scope Lookup) *model.Type {
	if len(elts) == 0 {
		return model.Primitive(model.Any)
	}

	kinds := make(map[model.Kind]struct{}, 2)
	var first model.Kind
	for i, e := range elts {
		k := FromValue(e, scope).Kind
		if i == 0 {
			first = k
		}
		kinds[k] = struct{}{}
	}

	if len(kinds) == 1 {
		return model.Primitive(first)
	}
	if subsetOf(kinds, model.Number, model.String) {
		return model.Primitive(model.String)
	}
	if subsetOf(kinds, model.Number, model.Boolean) {
		return model.Primitive(model.Number)
	}
	return model.Primitive(model.Any)
}

func subsetOf(kinds map[model.Kind]struct{}, allowed ...model.Kind) bool {
	for k := range kinds {
		found := false
		for _, a := range allowed {
			if k == a {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
