// Package scope tracks lexical contexts while walking a syntax tree.
package scope

import "github.com/phobologic/trackscan/internal/model"

// Frame is one function, method, or class body.
type Frame struct {
	Name     string
	Bindings map[string]*model.Type
}

// Tracker is a stack of frames. The root frame is named model.GlobalScope
// and is never popped. A Tracker is owned by one analysis run.
type Tracker struct {
	frames []*Frame
}

// New returns a Tracker holding only the root frame.
func New() *Tracker {
	return &Tracker{frames: []*Frame{newFrame(model.GlobalScope)}}
}

func newFrame(name string) *Frame {
	return &Frame{Name: name, Bindings: make(map[string]*model.Type)}
}

// Enter pushes a frame seeded with the given parameter types. The new frame
// does not see bindings of enclosing frames.
func (t *Tracker) Enter(name string, params map[string]*model.Type) {
	f := newFrame(name)
	for k, v := range params {
		f.Bindings[k] = v
	}
	t.frames = append(t.frames, f)
}

// Exit pops the current frame. It is a no-op on the root frame.
func (t *Tracker) Exit() {
	if len(t.frames) > 1 {
		t.frames[len(t.frames)-1] = nil
		t.frames = t.frames[:len(t.frames)-1]
	}
}

// Bind records a variable type in the current frame only.
func (t *Tracker) Bind(name string, typ *model.Type) {
	t.Current().Bindings[name] = typ
}

// Lookup returns the type bound to name in the current frame.
func (t *Tracker) Lookup(name string) (*model.Type, bool) {
	typ, ok := t.Current().Bindings[name]
	return typ, ok
}

// Current returns the innermost frame.
func (t *Tracker) Current() *Frame {
	return t.frames[len(t.frames)-1]
}

// Name returns the innermost frame's name.
func (t *Tracker) Name() string {
	return t.Current().Name
}

// Depth returns the number of frames, including the root.
func (t *Tracker) Depth() int {
	return len(t.frames)
}
