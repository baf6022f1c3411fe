package tracking

import (
	"github.com/phobologic/trackscan/internal/infer"
	"github.com/phobologic/trackscan/internal/model"
	"github.com/phobologic/trackscan/internal/syntax"
)

// extract returns the event name and typed properties of a recognized call.
// ok is false when no literal event name can be found.
func extract(c *syntax.Call, src model.Source, scope infer.Lookup) (name string, props *model.Properties, ok bool) {
	conv, ok := conventions[src]
	if !ok {
		return "", nil, false
	}
	name, ok = eventName(c, conv)
	if !ok {
		return "", nil, false
	}
	return name, properties(c, conv, scope), true
}

func eventName(c *syntax.Call, conv convention) (string, bool) {
	var n syntax.Node
	if conv.ctor != "" {
		ctor, ok := constructor(c, conv.ctor)
		if !ok {
			return "", false
		}
		n, _ = keyword(ctor, conv.ctorEventKeyword)
	} else {
		if conv.eventKeyword != "" {
			if v, ok := keyword(c, conv.eventKeyword); ok {
				if s, ok := syntax.IsString(v); ok && s != "" {
					return s, true
				}
			}
		}
		n = arg(c, conv.eventArg)
	}
	s, ok := syntax.IsString(n)
	return s, ok && s != ""
}

func properties(c *syntax.Call, conv convention, scope infer.Lookup) *model.Properties {
	props := model.NewProperties()
	bag := propertyBag(c, conv)

	if conv.identity != "" && hasIdentity(c, conv, bag) {
		props.Set(conv.identity, model.Primitive(model.String))
	}

	if conv.ctorKeywordProps {
		if ctor, ok := constructor(c, conv.ctor); ok {
			keywordProperties(ctor, conv, scope, props)
		}
		return props
	}
	if bag != nil {
		dictProperties(bag, conv, scope, props)
	}
	return props
}

// propertyBag locates the dict literal holding a call's properties.
func propertyBag(c *syntax.Call, conv convention) *syntax.Dict {
	if conv.ctor != "" {
		if conv.ctorPropsKeyword == "" {
			return nil
		}
		ctor, ok := constructor(c, conv.ctor)
		if !ok {
			return nil
		}
		v, _ := keyword(ctor, conv.ctorPropsKeyword)
		d, _ := v.(*syntax.Dict)
		return d
	}
	if conv.propsKeyword != "" {
		if v, ok := keyword(c, conv.propsKeyword); ok {
			if d, ok := v.(*syntax.Dict); ok {
				return d
			}
		}
	}
	d, _ := arg(c, conv.propsArg).(*syntax.Dict)
	return d
}

func hasIdentity(c *syntax.Call, conv convention, bag *syntax.Dict) bool {
	if conv.anonymizable && bag != nil && anonymized(bag) {
		return false
	}
	if conv.ctorIdentityKeyword != "" {
		ctor, ok := constructor(c, conv.ctor)
		if !ok {
			return false
		}
		v, ok := keyword(ctor, conv.ctorIdentityKeyword)
		return ok && !syntax.IsNone(v)
	}
	subject := arg(c, conv.identityArg)
	if conv.literalIdentity {
		lit, ok := subject.(*syntax.Constant)
		return ok && lit.Truthy()
	}
	return subject != nil && !syntax.IsNone(subject)
}


// anonymized reports whether the bag sets $process_person_profile to False.
func anonymized(d *syntax.Dict) bool {
	for _, it := range d.Items {
		if k, ok := syntax.IsString(it.Key); !ok || k != personProfileKey {
			continue
		}
		if v, ok := it.Value.(*syntax.Constant); ok && v.Kind == syntax.ConstBool && !v.Bool {
			return true
		}
	}
	return false
}

func dictProperties(d *syntax.Dict, conv convention, scope infer.Lookup, props *model.Properties) {
	for _, it := range d.Items {
		key, ok := infer.Key(it.Key)
		if !ok {
			continue
		}
		if conv.expandSet {
			if _, ok := setKeys[key]; ok {
				if inner, ok := it.Value.(*syntax.Dict); ok {
					nested := infer.DictProperties(inner, scope)
					for p := nested.Oldest(); p != nil; p = p.Next() {
						props.Set(key+"."+p.Key, p.Value)
					}
				}
				continue
			}
		}
		if conv.anonymizable && key == personProfileKey {
			continue
		}
		props.Set(key, infer.FromValue(it.Value, scope))
	}
}

func keywordProperties(ctor *syntax.Call, conv convention, scope infer.Lookup, props *model.Properties) {
	for _, kw := range ctor.Keywords {
		if kw.Name == "" || kw.Name == conv.ctorEventKeyword {
			continue
		}
		key := kw.Name
		if renamed, ok := renamedKeywords[key]; ok {
			key = renamed
		}
		props.Set(key, infer.FromValue(kw.Value, scope))
	}
}

// constructor returns the first positional argument when it is a call to
// the named constructor.
func constructor(c *syntax.Call, name string) (*syntax.Call, bool) {
	first := firstArg(c)
	if !calls(first, name) {
		return nil, false
	}
	return first.(*syntax.Call), true
}
