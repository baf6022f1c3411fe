package parse

import (
	"errors"
	"testing"

	"github.com/phobologic/trackscan/internal/syntax"
)

func mustParse(t *testing.T, source string) *syntax.Module {
	t.Helper()
	mod, err := Source([]byte(source))
	if err != nil {
		t.Fatalf("Source: %v", err)
	}
	return mod
}

func onlyStatement(t *testing.T, source string) syntax.Node {
	t.Helper()
	mod := mustParse(t, source)
	if len(mod.Body) != 1 {
		t.Fatalf("expected 1 statement, got %d: %#v", len(mod.Body), mod.Body)
	}
	return mod.Body[0]
}

func TestParseCall(t *testing.T) {
	t.Parallel()

	stmt := onlyStatement(t, `analytics.track(user_id, "Signed Up", {"plan": "pro"}, context=ctx, **extra)`)
	call, ok := stmt.(*syntax.Call)
	if !ok {
		t.Fatalf("expected *syntax.Call, got %T", stmt)
	}

	fn, ok := call.Func.(*syntax.Attribute)
	if !ok {
		t.Fatalf("func: expected attribute, got %T", call.Func)
	}
	if recv, _ := syntax.NameOf(fn.Value); recv != "analytics" || fn.Attr != "track" {
		t.Errorf("callee = %s.%s", recv, fn.Attr)
	}
	if len(call.Args) != 3 {
		t.Fatalf("args = %d, want 3", len(call.Args))
	}
	if s, ok := syntax.IsString(call.Args[1]); !ok || s != "Signed Up" {
		t.Errorf("arg 1 = %#v", call.Args[1])
	}
	if _, ok := call.Args[2].(*syntax.Dict); !ok {
		t.Errorf("arg 2: expected dict, got %T", call.Args[2])
	}
	if len(call.Keywords) != 2 {
		t.Fatalf("keywords = %d, want 2", len(call.Keywords))
	}
	if call.Keywords[0].Name != "context" {
		t.Errorf("keyword 0 = %q", call.Keywords[0].Name)
	}
	if call.Keywords[1].Name != "" {
		t.Errorf("splat keyword should be unnamed, got %q", call.Keywords[1].Name)
	}
	if call.Line() != 1 {
		t.Errorf("line = %d, want 1", call.Line())
	}
}

func TestParseLiterals(t *testing.T) {
	t.Parallel()

	tests := []struct {
		source string
		kind   syntax.ConstKind
		text   string
	}{
		{`"hello"`, syntax.ConstString, "hello"},
		{`'single'`, syntax.ConstString, "single"},
		{`"""triple"""`, syntax.ConstString, "triple"},
		{`r"raw\n"`, syntax.ConstString, `raw\n`},
		{`"tab\there"`, syntax.ConstString, "tab\there"},
		{`"\x41é"`, syntax.ConstString, "Aé"},
		{`"a" "b"`, syntax.ConstString, "ab"},
		{`b"bytes"`, syntax.ConstBytes, `b"bytes"`},
		{`42`, syntax.ConstInt, "42"},
		{`3.14`, syntax.ConstFloat, "3.14"},
		{`2j`, syntax.ConstComplex, "2j"},
		{`None`, syntax.ConstNone, "None"},
		{`...`, syntax.ConstEllipsis, "..."},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.source, func(t *testing.T) {
			t.Parallel()
			stmt := onlyStatement(t, tt.source)
			c, ok := stmt.(*syntax.Constant)
			if !ok {
				t.Fatalf("expected constant, got %T", stmt)
			}
			if c.Kind != tt.kind {
				t.Errorf("kind = %d, want %d", c.Kind, tt.kind)
			}
			if c.Text != tt.text {
				t.Errorf("text = %q, want %q", c.Text, tt.text)
			}
		})
	}
}

func TestParseBooleans(t *testing.T) {
	t.Parallel()

	mod := mustParse(t, "True\nFalse\n")
	for i, want := range []bool{true, false} {
		c, ok := mod.Body[i].(*syntax.Constant)
		if !ok || c.Kind != syntax.ConstBool || c.Bool != want {
			t.Errorf("statement %d = %#v, want bool %v", i, mod.Body[i], want)
		}
	}
}

func TestParseFStringIsNotConstant(t *testing.T) {
	t.Parallel()

	stmt := onlyStatement(t, `f"hello {track('x')}"`)
	other, ok := stmt.(*syntax.Other)
	if !ok {
		t.Fatalf("expected *syntax.Other, got %T", stmt)
	}
	if len(other.Children) != 1 {
		t.Fatalf("interpolations = %d, want 1", len(other.Children))
	}
	if _, ok := other.Children[0].(*syntax.Call); !ok {
		t.Errorf("interpolation should keep the call, got %T", other.Children[0])
	}
}

func TestParseFunction(t *testing.T) {
	t.Parallel()

	source := `@decorator
def handler(user_id: str, price: float = 1.0, *args, plan, **kwargs) -> None:
    pass
`
	stmt := onlyStatement(t, source)
	fn, ok := stmt.(*syntax.FunctionDef)
	if !ok {
		t.Fatalf("expected *syntax.FunctionDef, got %T", stmt)
	}
	if fn.Name != "handler" {
		t.Errorf("name = %q", fn.Name)
	}
	if len(fn.Decorators) != 1 {
		t.Errorf("decorators = %d, want 1", len(fn.Decorators))
	}

	want := []struct {
		name      string
		annotated bool
		def       bool
	}{
		{"user_id", true, false},
		{"price", true, true},
		{"args", false, false},
		{"plan", false, false},
		{"kwargs", false, false},
	}
	if len(fn.Params) != len(want) {
		t.Fatalf("params = %d, want %d: %+v", len(fn.Params), len(want), fn.Params)
	}
	for i, w := range want {
		p := fn.Params[i]
		if p.Name != w.name {
			t.Errorf("param %d name = %q, want %q", i, p.Name, w.name)
		}
		if (p.Annotation != nil) != w.annotated {
			t.Errorf("param %s annotated = %v", p.Name, p.Annotation != nil)
		}
		if (p.Default != nil) != w.def {
			t.Errorf("param %s default = %v", p.Name, p.Default != nil)
		}
	}
	if name, _ := syntax.NameOf(fn.Params[0].Annotation); name != "str" {
		t.Errorf("user_id annotation = %#v", fn.Params[0].Annotation)
	}
}

func TestParseGenericAnnotation(t *testing.T) {
	t.Parallel()

	stmt := onlyStatement(t, "def f(items: List[str]):\n    pass\n")
	fn := stmt.(*syntax.FunctionDef)
	sub, ok := fn.Params[0].Annotation.(*syntax.Subscript)
	if !ok {
		t.Fatalf("expected subscript annotation, got %T", fn.Params[0].Annotation)
	}
	if name, _ := syntax.NameOf(sub.Value); name != "List" {
		t.Errorf("container = %q", name)
	}
	if name, _ := syntax.NameOf(sub.Index); name != "str" {
		t.Errorf("element = %#v", sub.Index)
	}
}

func TestParseClass(t *testing.T) {
	t.Parallel()

	source := `class Checkout(Base, metaclass=Meta):
    def submit(self):
        pass
`
	stmt := onlyStatement(t, source)
	cls, ok := stmt.(*syntax.ClassDef)
	if !ok {
		t.Fatalf("expected *syntax.ClassDef, got %T", stmt)
	}
	if cls.Name != "Checkout" {
		t.Errorf("name = %q", cls.Name)
	}
	if len(cls.Bases) != 2 {
		t.Errorf("bases = %d, want 2", len(cls.Bases))
	}
	if len(cls.Body) != 1 {
		t.Fatalf("body = %d, want 1", len(cls.Body))
	}
	if fn, ok := cls.Body[0].(*syntax.FunctionDef); !ok || fn.Name != "submit" {
		t.Errorf("method = %#v", cls.Body[0])
	}
}

func TestParseAssignments(t *testing.T) {
	t.Parallel()

	mod := mustParse(t, "plan = 'pro'\ncount: int = 3\na = b = 1\nx, y = 1, 2\n")
	if len(mod.Body) != 4 {
		t.Fatalf("statements = %d, want 4", len(mod.Body))
	}

	a, ok := mod.Body[0].(*syntax.Assign)
	if !ok || len(a.Targets) != 1 {
		t.Fatalf("plain assign = %#v", mod.Body[0])
	}
	if _, ok := a.Value.(*syntax.Constant); !ok {
		t.Errorf("value = %T", a.Value)
	}

	ann, ok := mod.Body[1].(*syntax.AnnAssign)
	if !ok {
		t.Fatalf("annotated assign = %T", mod.Body[1])
	}
	if name, _ := syntax.NameOf(ann.Annotation); name != "int" {
		t.Errorf("annotation = %#v", ann.Annotation)
	}

	chained, ok := mod.Body[2].(*syntax.Assign)
	if !ok || len(chained.Targets) != 2 {
		t.Errorf("chained assign = %#v", mod.Body[2])
	}

	unpack, ok := mod.Body[3].(*syntax.Assign)
	if !ok || len(unpack.Targets) != 1 {
		t.Fatalf("unpacking assign = %#v", mod.Body[3])
	}
	if _, ok := unpack.Targets[0].(*syntax.Tuple); !ok {
		t.Errorf("unpacking target = %T", unpack.Targets[0])
	}
}

func TestParseLineNumbers(t *testing.T) {
	t.Parallel()

	mod := mustParse(t, "# comment\n\nfoo()\n\nbar(\n    1,\n)\n")
	if len(mod.Body) != 2 {
		t.Fatalf("statements = %d, want 2", len(mod.Body))
	}
	if got := mod.Body[0].Line(); got != 3 {
		t.Errorf("foo line = %d, want 3", got)
	}
	if got := mod.Body[1].Line(); got != 5 {
		t.Errorf("bar line = %d, want 5", got)
	}
}

func TestParseSyntaxError(t *testing.T) {
	t.Parallel()

	_, err := Source([]byte("def broken(:\n    pass\n"))
	if err == nil {
		t.Fatal("expected syntax error")
	}
	if !errors.Is(err, ErrSyntax) {
		t.Errorf("error = %v, want ErrSyntax", err)
	}
}

func TestParseEmpty(t *testing.T) {
	t.Parallel()

	mod := mustParse(t, "")
	if len(mod.Body) != 0 {
		t.Errorf("body = %d, want 0", len(mod.Body))
	}
}
