package codec

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/HeliosSoftware/hfs-sub000/hfs/primitive"
	"github.com/HeliosSoftware/hfs-sub000/hfs/schema"
)

// Registry holds one compiled codec per type in a catalogue. It is built once
// by Compile and never changes, so it is safe for concurrent use.
type Registry struct {
	catalog    *schema.Catalog
	values     map[string]*ValueCodec
	composites map[string]*CompositeCodec
	resources  map[string]*CompositeCodec
	ext        *extensionCodec
	dispatcher *Dispatcher
}

// Compile builds codecs for every definition in c. Types refer to each other
// by name, so cyclic schemas such as Identifier.assigner -> Reference
// -> Reference.identifier are fine: all codecs are allocated before any is
// linked.
func Compile(c *schema.Catalog) (*Registry, error) {
	if c == nil {
		return nil, errors.New("codec: nil catalogue")
	}
	reg := &Registry{
		catalog:    c,
		values:     map[string]*ValueCodec{},
		composites: map[string]*CompositeCodec{},
		resources:  map[string]*CompositeCodec{},
		ext:        &extensionCodec{},
	}
	reg.dispatcher = &Dispatcher{reg: reg}

	for _, name := range primitive.Names() {
		rule, _ := primitive.Lookup(name)
		reg.values[name] = &ValueCodec{rule: rule, ext: reg.ext}
	}

	defs := c.Definitions()
	for _, d := range defs {
		cc := &CompositeCodec{def: d, idRule: idRule, ext: reg.ext, known: map[string]bool{
			schema.IDMember:        true,
			schema.ExtensionMember: true,
		}}
		if d.Kind == schema.Resource {
			cc.idRule = resourceIDRule
			cc.known[schema.DiscriminatorField] = true
			reg.resources[d.Name] = cc
		}
		reg.composites[d.Name] = cc
	}

	for _, d := range defs {
		cc := reg.composites[d.Name]
		for _, e := range d.Elements {
			m, err := reg.link(e)
			if err != nil {
				return nil, errors.Wrapf(err, "%s.%s", d.Name, e.Name())
			}
			cc.members = append(cc.members, m)
			for _, key := range e.WireKeys(primitive.IsPrimitive) {
				cc.known[key] = true
			}
		}
	}

	reg.ext.value = newChoiceCodec("value")
	for _, name := range primitive.Names() {
		reg.ext.value.addArm(choiceArm{typeName: name, value: reg.values[name]})
	}
	for _, name := range c.DataTypes() {
		reg.ext.value.addArm(choiceArm{typeName: name, node: reg.composites[name]})
	}
	return reg, nil
}

func (reg *Registry) link(e schema.Element) (*memberCodec, error) {
	m := &memberCodec{elem: e, name: e.Name()}
	if !e.IsChoice() {
		if v, ok := reg.values[e.Type()]; ok {
			m.value = v
			return m, nil
		}
		node, err := reg.node(e.Type())
		if err != nil {
			return nil, err
		}
		m.node = node
		return m, nil
	}

	m.choice = newChoiceCodec(e.Name())
	for _, t := range e.Types {
		if v, ok := reg.values[t]; ok {
			m.choice.addArm(choiceArm{typeName: t, value: v})
			continue
		}
		node, err := reg.node(t)
		if err != nil {
			return nil, err
		}
		m.choice.addArm(choiceArm{typeName: t, node: node})
	}
	return m, nil
}

func (reg *Registry) node(typeName string) (nodeCodec, error) {
	switch typeName {
	case schema.ExtensionType:
		return reg.ext, nil
	case schema.ResourceType:
		return reg.dispatcher, nil
	}
	if cc, ok := reg.composites[typeName]; ok {
		return cc, nil
	}
	return nil, errors.Errorf("no codec for type %q", typeName)
}

// Catalog returns the catalogue the registry was compiled from.
func (reg *Registry) Catalog() *schema.Catalog {
	return reg.catalog
}

// Dispatcher returns the codec for polymorphic resources.
func (reg *Registry) Dispatcher() *Dispatcher {
	return reg.dispatcher
}

// Value returns the codec of a primitive type.
func (reg *Registry) Value(typeName string) (*ValueCodec, bool) {
	v, ok := reg.values[typeName]
	return v, ok
}

// Composite returns the codec of a datatype, backbone element or resource.
func (reg *Registry) Composite(typeName string) (*CompositeCodec, bool) {
	cc, ok := reg.composites[typeName]
	return cc, ok
}

// ExtensionValue returns the open choice used by Extension.value[x].
func (reg *Registry) ExtensionValue() *ChoiceCodec {
	return reg.ext.value
}

// Kinds returns every resource kind, sorted.
func (reg *Registry) Kinds() []string {
	kinds := make([]string, 0, len(reg.resources))
	for k := range reg.resources {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
