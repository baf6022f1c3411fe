// Package model defines core data structures for trackscan.
package model

import (
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Source identifies which analytics SDK convention a call matches.
type Source string

const (
	Segment     Source = "segment"
	Mixpanel    Source = "mixpanel"
	Amplitude   Source = "amplitude"
	PostHog     Source = "posthog"
	Rudderstack Source = "rudderstack"
	Snowplow    Source = "snowplow"
	Custom      Source = "custom"
)

// Sources lists every library tag in a stable order.
var Sources = []Source{Segment, Mixpanel, Amplitude, PostHog, Rudderstack, Snowplow, Custom}

// ParseSource returns the Source named by s.
func ParseSource(s string) (Source, bool) {
	for _, src := range Sources {
		if string(src) == s {
			return src, true
		}
	}
	return "", false
}

// Kind is the JSON-Schema type name of a Type.
type Kind string

const (
	String  Kind = "string"
	Number  Kind = "number"
	Boolean Kind = "boolean"
	Null    Kind = "null"
	Any     Kind = "any"
	Object  Kind = "object"
	Array   Kind = "array"
)

// Properties maps property keys to their types in source order.
type Properties = orderedmap.OrderedMap[string, *Type]

// NewProperties returns an empty property map.
func NewProperties() *Properties {
	return orderedmap.New[string, *Type]()
}

// Type is an inferred, JSON-Schema shaped type. Values are treated as
// immutable once built.
type Type struct {
	Kind Kind
	// Properties is only set for Object.
	Properties *Properties
	// Items is only set for Array. It is nil when only the element kind
	// of a sequence was known and no element schema was recorded.
	Items *Type
}

// Primitive returns a Type with no nested structure.
func Primitive(k Kind) *Type {
	return &Type{Kind: k}
}

// ObjectOf returns an object Type. A nil props is treated as empty.
func ObjectOf(props *Properties) *Type {
	if props == nil {
		props = NewProperties()
	}
	return &Type{Kind: Object, Properties: props}
}

// ArrayOf returns an array Type with the given element type.
func ArrayOf(items *Type) *Type {
	return &Type{Kind: Array, Items: items}
}

type typeJSON struct {
	Type       Kind        `json:"type"`
	Properties *Properties `json:"properties,omitempty"`
	Items      *Type       `json:"items,omitempty"`
}

// MarshalJSON encodes the type as {"type": ..., "properties"?: ..., "items"?: ...}.
func (t *Type) MarshalJSON() ([]byte, error) {
	return json.Marshal(typeJSON{Type: t.Kind, Properties: t.Properties, Items: t.Items})
}

// UnmarshalJSON decodes the form produced by MarshalJSON.
func (t *Type) UnmarshalJSON(data []byte) error {
	var v typeJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	t.Kind, t.Properties, t.Items = v.Type, v.Properties, v.Items
	return nil
}

// Equal reports whether two types describe the same schema, including
// property order.
func (t *Type) Equal(o *Type) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Kind != o.Kind || !t.Items.Equal(o.Items) {
		return false
	}
	if (t.Properties == nil) != (o.Properties == nil) {
		return false
	}
	if t.Properties == nil {
		return true
	}
	if t.Properties.Len() != o.Properties.Len() {
		return false
	}
	for a, b := t.Properties.Oldest(), o.Properties.Oldest(); a != nil; a, b = a.Next(), b.Next() {
		if a.Key != b.Key || !a.Value.Equal(b.Value) {
			return false
		}
	}
	return true
}

// Event is a single tracking call found in a source file.
type Event struct {
	EventName    string      `json:"eventName"`
	Source       Source      `json:"source"`
	Properties   *Properties `json:"properties"`
	FilePath     string      `json:"filePath"`
	Line         int         `json:"line"`
	FunctionName string      `json:"functionName"`
}

// GlobalScope is the function name reported for module-level calls.
const GlobalScope = "global"

// Occurrence locates one call site of a catalogued event.
type Occurrence struct {
	FilePath     string `json:"filePath"`
	Line         int    `json:"line"`
	FunctionName string `json:"functionName"`
}

// CatalogEntry aggregates every call site of one event name for one source.
type CatalogEntry struct {
	EventName   string       `json:"eventName"`
	Source      Source       `json:"source"`
	Properties  *Properties  `json:"properties"`
	Occurrences []Occurrence `json:"occurrences"`
}
