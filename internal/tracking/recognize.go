package tracking

import (
	"github.com/phobologic/trackscan/internal/model"
	"github.com/phobologic/trackscan/internal/syntax"
)

// recognize reports which library, if any, a call targets. Receivers and
// callees are matched by conventional name only.
func recognize(c *syntax.Call, customFunction string) (model.Source, bool) {
	switch fn := c.Func.(type) {
	case *syntax.Attribute:
		return recognizeMethod(c, fn)
	case *syntax.Name:
		return recognizeFunction(c, fn.ID, customFunction)
	}
	return "", false
}

func recognizeMethod(c *syntax.Call, fn *syntax.Attribute) (model.Source, bool) {
	receiver, ok := syntax.NameOf(fn.Value)
	if !ok {
		return "", false
	}

	if src, ok := methodSources[[2]string{receiver, fn.Attr}]; ok {
		return src, true
	}
	if fn.Attr != "track" {
		return "", false
	}

	first := firstArg(c)
	if calls(first, baseEventCtor) {
		return model.Amplitude, true
	}
	if calls(first, structuredEventCtor) {
		return model.Snowplow, true
	}
	// Any bare identifier passed to tracker.track is assumed to be a
	// prebuilt Snowplow event. Unrelated objects named tracker match too.
	if _, ok := first.(*syntax.Name); ok && receiver == trackerObject {
		return model.Snowplow, true
	}
	return "", false
}

func recognizeFunction(c *syntax.Call, name, customFunction string) (model.Source, bool) {
	if _, ok := snowplowBuilders[name]; ok {
		return model.Snowplow, true
	}
	if name == snowplowDispatcher {
		if op, ok := syntax.IsString(firstArg(c)); ok && op == snowplowStructOp {
			return model.Snowplow, true
		}
	}
	if customFunction != "" && name == customFunction {
		return model.Custom, true
	}
	return "", false
}

func firstArg(c *syntax.Call) syntax.Node {
	return arg(c, 0)
}

func arg(c *syntax.Call, i int) syntax.Node {
	if i < 0 || i >= len(c.Args) {
		return nil
	}
	return c.Args[i]
}

func keyword(c *syntax.Call, name string) (syntax.Node, bool) {
	for _, kw := range c.Keywords {
		if kw.Name == name {
			return kw.Value, true
		}
	}
	return nil, false
}

// calls reports whether n is a call to the bare function name.
func calls(n syntax.Node, name string) bool {
	c, ok := n.(*syntax.Call)
	if !ok {
		return false
	}
	fn, ok := syntax.NameOf(c.Func)
	return ok && fn == name
}
