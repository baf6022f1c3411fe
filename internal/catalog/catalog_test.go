package catalog

import (
	"encoding/json"
	"testing"

	"github.com/phobologic/trackscan/internal/model"
)

func props(kv ...any) *model.Properties {
	p := model.NewProperties()
	for i := 0; i+1 < len(kv); i += 2 {
		p.Set(kv[i].(string), kv[i+1].(*model.Type))
	}
	return p
}

func event(name string, src model.Source, file string, line int, p *model.Properties) model.Event {
	return model.Event{
		EventName:    name,
		Source:       src,
		Properties:   p,
		FilePath:     file,
		Line:         line,
		FunctionName: model.GlobalScope,
	}
}

func propsJSON(t *testing.T, p *model.Properties) string {
	t.Helper()
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

func TestBuildGroupsByNameAndSource(t *testing.T) {
	t.Parallel()

	str := model.Primitive(model.String)
	events := []model.Event{
		event("Signed Up", model.Segment, "a.py", 3, props("plan", str)),
		event("Signed Up", model.Mixpanel, "b.py", 7, props("plan", str)),
		event("Signed Up", model.Segment, "c.py", 1, props("plan", str)),
		event("Added Item", model.Segment, "a.py", 9, props()),
	}

	entries := Build(events)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	want := []struct {
		name string
		src  model.Source
		occ  int
	}{
		{"Added Item", model.Segment, 1},
		{"Signed Up", model.Mixpanel, 1},
		{"Signed Up", model.Segment, 2},
	}
	for i, w := range want {
		e := entries[i]
		if e.EventName != w.name || e.Source != w.src || len(e.Occurrences) != w.occ {
			t.Errorf("entry %d = %s/%s x%d, want %s/%s x%d",
				i, e.EventName, e.Source, len(e.Occurrences), w.name, w.src, w.occ)
		}
	}

	occ := entries[2].Occurrences
	if occ[0].FilePath != "a.py" || occ[1].FilePath != "c.py" {
		t.Errorf("occurrences out of input order: %+v", occ)
	}
}

func TestBuildMergesProperties(t *testing.T) {
	t.Parallel()

	str := model.Primitive(model.String)
	num := model.Primitive(model.Number)
	events := []model.Event{
		event("Purchase", model.Segment, "a.py", 1, props("price", num, "sku", str)),
		event("Purchase", model.Segment, "a.py", 5, props("price", str, "coupon", str)),
		event("Purchase", model.Segment, "a.py", 9, props("price", num, "sku", str)),
	}

	entries := Build(events)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	got := propsJSON(t, entries[0].Properties)
	want := `{"price":{"type":"any"},"sku":{"type":"string"},"coupon":{"type":"string"}}`
	if got != want {
		t.Errorf("properties = %s\nwant %s", got, want)
	}
}

func TestBuildEmpty(t *testing.T) {
	t.Parallel()

	entries := Build(nil)
	if entries == nil || len(entries) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", entries)
	}
}

func TestFilter(t *testing.T) {
	t.Parallel()

	events := []model.Event{
		event("a", model.Segment, "a.py", 1, props()),
		event("b", model.PostHog, "a.py", 2, props()),
		event("c", model.Custom, "a.py", 3, props()),
	}

	tests := []struct {
		name    string
		sources []model.Source
		want    []string
	}{
		{"no filter", nil, []string{"a", "b", "c"}},
		{"single", []model.Source{model.PostHog}, []string{"b"}},
		{"several", []model.Source{model.Custom, model.Segment}, []string{"a", "c"}},
		{"none match", []model.Source{model.Snowplow}, nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Filter(events, tt.sources)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d events, want %d", len(got), len(tt.want))
			}
			for i, name := range tt.want {
				if got[i].EventName != name {
					t.Errorf("event %d = %q, want %q", i, got[i].EventName, name)
				}
			}
		})
	}
}
