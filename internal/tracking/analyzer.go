// Package tracking finds analytics tracking calls in a Python syntax tree
// and describes each one as a model.Event.
package tracking

import (
	"github.com/phobologic/trackscan/internal/infer"
	"github.com/phobologic/trackscan/internal/model"
	"github.com/phobologic/trackscan/internal/scope"
	"github.com/phobologic/trackscan/internal/syntax"
)

// Analyze walks tree and returns one event per recognized tracking call, in
// traversal order. filePath is copied into every event. An empty
// customFunction disables the custom source. Analyze never panics; a tree
// it cannot walk yields an empty slice.
func Analyze(tree syntax.Node, filePath, customFunction string) (events []model.Event) {
	w := &walker{
		scope:  scope.New(),
		file:   filePath,
		custom: customFunction,
		events: []model.Event{},
	}

	defer func() {
		if r := recover(); r != nil {
			events = []model.Event{}
		}
	}()

	if tree == nil {
		return w.events
	}
	w.visit(tree)
	return w.events
}

type walker struct {
	scope  *scope.Tracker
	file   string
	custom string
	events []model.Event
}

func (w *walker) visit(n syntax.Node) {
	switch n := n.(type) {
	case *syntax.FunctionDef:
		w.function(n)
		return
	case *syntax.ClassDef:
		w.class(n)
		return
	case *syntax.Assign:
		w.assign(n)
	case *syntax.AnnAssign:
		w.annAssign(n)
	case *syntax.Call:
		w.call(n)
	}
	w.visitAll(syntax.Children(n))
}

func (w *walker) visitAll(nodes []syntax.Node) {
	for _, n := range nodes {
		w.visit(n)
	}
}

// function evaluates decorators and defaults in the enclosing scope, then
// walks the body in a fresh frame seeded from parameter annotations.
func (w *walker) function(fn *syntax.FunctionDef) {
	w.visitAll(fn.Decorators)

	params := make(map[string]*model.Type)
	for _, p := range fn.Params {
		if p.Default != nil {
			w.visit(p.Default)
		}
		if p.Annotation != nil && p.Name != "" {
			params[p.Name] = infer.FromAnnotation(p.Annotation)
		}
	}

	w.scope.Enter(fn.Name, params)
	defer w.scope.Exit()
	w.visitAll(fn.Body)
}

// class evaluates bases in the enclosing scope before opening the class frame.
func (w *walker) class(cls *syntax.ClassDef) {
	w.visitAll(cls.Bases)

	w.scope.Enter(cls.Name, nil)
	defer w.scope.Exit()
	w.visitAll(cls.Body)
}

// assign binds single-name targets assigned a literal scalar.
func (w *walker) assign(a *syntax.Assign) {
	if len(a.Targets) != 1 {
		return
	}
	target, ok := syntax.NameOf(a.Targets[0])
	if !ok {
		return
	}
	if c, ok := a.Value.(*syntax.Constant); ok {
		w.scope.Bind(target, infer.Literal(c))
	}
}

func (w *walker) annAssign(a *syntax.AnnAssign) {
	target, ok := syntax.NameOf(a.Target)
	if !ok || a.Annotation == nil {
		return
	}
	w.scope.Bind(target, infer.FromAnnotation(a.Annotation))
}

// call records an event for c if it is a tracking call. A failure while
// matching c drops only this call's event.
func (w *walker) call(c *syntax.Call) {
	defer func() {
		_ = recover()
	}()

	src, ok := recognize(c, w.custom)
	if !ok {
		return
	}
	name, props, ok := extract(c, src, w.scope)
	if !ok {
		return
	}
	w.events = append(w.events, model.Event{
		EventName:    name,
		Source:       src,
		Properties:   props,
		FilePath:     w.file,
		Line:         c.Line(),
		FunctionName: w.scope.Name(),
	})
}
