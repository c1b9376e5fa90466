package schema

import (
	"fmt"
	"sort"

	"github.com/HeliosSoftware/hfs-sub000/hfs/primitive"
)

// Catalog is a validated, immutable set of definitions. Every type code used
// by an element resolves to a primitive, a built-in or another definition.
type Catalog struct {
	defs  map[string]*Definition
	order []*Definition
}

// NewCatalog validates defs and indexes them by name.
func NewCatalog(defs ...*Definition) (*Catalog, error) {
	c := &Catalog{defs: make(map[string]*Definition, len(defs))}
	for _, d := range defs {
		if d == nil {
			continue
		}
		if err := d.validateShape(); err != nil {
			return nil, err
		}
		if primitive.IsPrimitive(d.Name) || d.Name == ExtensionType || d.Name == ResourceType {
			return nil, fmt.Errorf("%s: name is reserved", d.Name)
		}
		if _, dup := c.defs[d.Name]; dup {
			return nil, fmt.Errorf("%s: defined twice", d.Name)
		}
		c.defs[d.Name] = d
		c.order = append(c.order, d)
	}

	for _, d := range c.order {
		if err := c.resolve(d); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) resolve(d *Definition) error {
	keys := map[string]string{
		IDMember:        IDMember,
		ExtensionMember: ExtensionMember,
	}
	for _, e := range d.Elements {
		for _, t := range e.Types {
			if !c.known(t) {
				return fmt.Errorf("%s.%s: unknown type %q", d.Name, e.Name(), t)
			}
			if ref, ok := c.defs[t]; ok && ref.Kind == Resource {
				return fmt.Errorf("%s.%s: use type Resource, not %s, for a nested resource", d.Name, e.Name(), t)
			}
		}
		for _, key := range e.WireKeys(primitive.IsPrimitive) {
			if other, clash := keys[key]; clash {
				return fmt.Errorf("%s.%s: wire key %q already used by %s", d.Name, e.Name(), key, other)
			}
			keys[key] = e.Name()
		}
	}
	return nil
}

func (c *Catalog) known(typeName string) bool {
	if typeName == ExtensionType || typeName == ResourceType || primitive.IsPrimitive(typeName) {
		return true
	}
	_, ok := c.defs[typeName]
	return ok
}

// Lookup returns the named definition.
func (c *Catalog) Lookup(name string) (*Definition, bool) {
	d, ok := c.defs[name]
	return d, ok
}

// Definitions returns every definition in the order given to NewCatalog.
func (c *Catalog) Definitions() []*Definition {
	out := make([]*Definition, len(c.order))
	copy(out, c.order)
	return out
}

// Resources returns the resource kinds, sorted.
func (c *Catalog) Resources() []string {
	return c.names(Resource)
}

// DataTypes returns the reusable datatypes, sorted. Together with the
// primitives they are the arms of Extension.value[x].
func (c *Catalog) DataTypes() []string {
	return c.names(DataType)
}

func (c *Catalog) names(kind Kind) []string {
	var names []string
	for _, d := range c.order {
		if d.Kind == kind {
			names = append(names, d.Name)
		}
	}
	sort.Strings(names)
	return names
}
