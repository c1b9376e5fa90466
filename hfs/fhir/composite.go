package fhir

import "sort"

// Composite is a fixed-shape record. Every composite can carry an element id
// and extensions; all other members are declared by its schema.
type Composite struct {
	// Type is the schema name the composite was decoded with.
	Type       string
	ID         *string
	Extensions []*Extension

	members map[string]Value
}

func (*Composite) isValue() {}

// NewComposite returns an empty composite of the named type.
func NewComposite(typeName string) *Composite {
	return &Composite{Type: typeName, members: map[string]Value{}}
}

// Get returns the named member or nil. Choice members are stored under their
// base name: "value", not "valueQuantity".
func (c *Composite) Get(name string) Value {
	if c == nil {
		return nil
	}
	return c.members[name]
}

// Set stores a member; a nil value removes it. On a nil composite it does
// nothing and returns nil, matching Get.
func (c *Composite) Set(name string, v Value) *Composite {
	if c == nil {
		return nil
	}
	if c.members == nil {
		c.members = map[string]Value{}
	}
	if isNil(v) {
		delete(c.members, name)
		return c
	}
	c.members[name] = v
	return c
}

// Delete removes the named member. It is a no-op on a nil composite.
func (c *Composite) Delete(name string) {
	if c == nil {
		return
	}
	delete(c.members, name)
}

// Has reports whether the named member is set.
func (c *Composite) Has(name string) bool {
	if c == nil {
		return false
	}
	_, ok := c.members[name]
	return ok
}

// Names returns the set member names in sorted order. Encoding uses the
// schema order instead.
func (c *Composite) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.members))
	for name := range c.members {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of set members, not counting id and extensions.
func (c *Composite) Len() int {
	if c == nil {
		return 0
	}
	return len(c.members)
}

// Primitive returns the named member if it is a primitive.
func (c *Composite) Primitive(name string) *Primitive {
	p, _ := c.Get(name).(*Primitive)
	return p
}

// Child returns the named member if it is a composite.
func (c *Composite) Child(name string) *Composite {
	child, _ := c.Get(name).(*Composite)
	return child
}

// List returns the named member if it is repeated.
func (c *Composite) List(name string) List {
	l, _ := c.Get(name).(List)
	return l
}

// Choice returns the named choice member.
func (c *Composite) Choice(name string) *Choice {
	ch, _ := c.Get(name).(*Choice)
	return ch
}

// Resource returns the named member if it is a nested resource.
func (c *Composite) Resource(name string) *Resource {
	r, _ := c.Get(name).(*Resource)
	return r
}

// isNil catches typed nils so Set(name, (*Primitive)(nil)) removes the member.
func isNil(v Value) bool {
	switch t := v.(type) {
	case nil:
		return true
	case *Primitive:
		return t == nil
	case *Composite:
		return t == nil
	case *Resource:
		return t == nil
	case *Choice:
		return t == nil
	case *Extension:
		return t == nil
	case List:
		return t == nil
	}
	return false
}
