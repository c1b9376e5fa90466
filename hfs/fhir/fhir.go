// Package fhir is the in-memory form of a decoded FHIR document.
//
// The types are shape-agnostic: a Composite is a bag of named members whose
// names and types are fixed by a schema.Definition, not by Go struct fields.
// Values form a tree; nothing is shared between two parents.
package fhir

// Value is any member value: *Primitive, *Composite, *Resource, *Choice or List.
type Value interface {
	isValue()
}

// Primitive is one logical primitive field. On the wire it is split over a
// plain member holding Value and a shadow member ("_name") holding ID and
// Extensions.
type Primitive struct {
	// Value is nil when absent. Its Go type is fixed by the primitive type,
	// see package primitive.
	Value interface{}
	ID    *string
	// Extensions is nil when absent. An empty non-nil slice is present.
	Extensions []*Extension
}

func (*Primitive) isValue() {}

// NewPrimitive returns a primitive holding only a value.
func NewPrimitive(v interface{}) *Primitive {
	return &Primitive{Value: v}
}

// IsPresent reports whether p carries anything worth writing.
func (p *Primitive) IsPresent() bool {
	return p != nil && (p.Value != nil || p.ID != nil || p.Extensions != nil)
}

// HasShadow reports whether p needs a shadow member.
func (p *Primitive) HasShadow() bool {
	return p != nil && (p.ID != nil || p.Extensions != nil)
}

// Extension is the recursive annotation attachable to any element.
type Extension struct {
	ID         *string
	Extensions []*Extension
	URL        string
	Value      *Choice
}

func (*Extension) isValue() {}

// Choice is the selected arm of a value[x] style field.
type Choice struct {
	// Type is the declared type name of the arm, e.g. "Quantity" or "string".
	Type  string
	Value Value
}

func (*Choice) isValue() {}

// NewChoice selects one arm.
func NewChoice(typeName string, v Value) *Choice {
	return &Choice{Type: typeName, Value: v}
}

// Valid reports whether exactly one arm is selected.
func (c *Choice) Valid() bool {
	return c != nil && c.Type != "" && c.Value != nil
}

// List is a repeated member. A nil List is absent, an empty one present.
type List []Value

func (List) isValue() {}

// String returns a pointer to s, for ID fields.
func String(s string) *string {
	return &s
}
