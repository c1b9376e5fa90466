package codec

import (
	"fmt"

	"github.com/HeliosSoftware/hfs-sub000/hfs/fhir"
	"github.com/HeliosSoftware/hfs-sub000/hfs/primitive"
	"github.com/HeliosSoftware/hfs-sub000/hfs/schema"
	"github.com/HeliosSoftware/hfs-sub000/hfs/tree"
)

// nodeCodec is a codec whose value occupies a single wire member: a
// composite, an extension or a nested resource.
type nodeCodec interface {
	typeName() string
	decodeNode(n *tree.Node, at *loc, st *state) (fhir.Value, error)
	encodeNode(v fhir.Value, at *loc, st *state) (*tree.Node, error)
}

// CompositeCodec decodes and encodes the composite described by one
// schema.Definition. Resources use it too, through the Dispatcher.
type CompositeCodec struct {
	def     *schema.Definition
	idRule  primitive.Rule
	ext     *extensionCodec
	members []*memberCodec
	known   map[string]bool
}

// memberCodec is one schema element. Exactly one of value, node and choice
// is set.
type memberCodec struct {
	elem   schema.Element
	name   string
	value  *ValueCodec
	node   nodeCodec
	choice *ChoiceCodec
}

// Definition returns the schema the codec was compiled from.
func (c *CompositeCodec) Definition() *schema.Definition {
	return c.def
}

// Choice returns the codec of a choice member by base name.
func (c *CompositeCodec) Choice(name string) (*ChoiceCodec, bool) {
	for _, m := range c.members {
		if m.name == name && m.choice != nil {
			return m.choice, true
		}
	}
	return nil, false
}

// Decode reads a composite from a JSON object.
func (c *CompositeCodec) Decode(n *tree.Node) (*fhir.Composite, error) {
	opts := newOptions()
	v, err := c.decodeNode(n, rootLoc(c.def.Name), newState(&opts, false))
	if err != nil {
		return nil, err
	}
	return v.(*fhir.Composite), nil
}

// Encode writes a composite as a JSON object, members in schema order.
func (c *CompositeCodec) Encode(v *fhir.Composite) (*tree.Node, error) {
	opts := newOptions()
	return c.encodeNode(v, rootLoc(c.def.Name), newState(&opts, true))
}

func (c *CompositeCodec) typeName() string { return c.def.Name }

func (c *CompositeCodec) decodeNode(n *tree.Node, at *loc, st *state) (fhir.Value, error) {
	if err := st.enter(at); err != nil {
		return nil, err
	}
	defer st.leave()

	out := fhir.NewComposite(c.def.Name)
	if err := c.decodeInto(n, out, at, st); err != nil {
		return nil, err
	}
	return out, nil
}

// decodeInto fills out from n: built-ins first, then the schema members in
// order, then every member nobody claimed is reported.
func (c *CompositeCodec) decodeInto(n *tree.Node, out *fhir.Composite, at *loc, st *state) error {
	if n.Kind() != tree.Object {
		return &LexicalError{Path: at.path(), Type: c.def.Name, Reason: "expected JSON object, found " + n.Kind().String()}
	}

	id, exts, err := c.ext.decodeBuiltins(n, c.idRule, at, st)
	if err != nil {
		return err
	}
	out.ID = id
	out.Extensions = exts

	for _, m := range c.members {
		v, err := m.decode(n, at, st)
		if err != nil {
			return err
		}
		if v == nil {
			if m.elem.Required() {
				return &MissingRequiredMemberError{Path: at.path(), Member: m.elem.Path}
			}
			continue
		}
		out.Set(m.name, v)
	}

	for _, key := range n.Keys() {
		if c.known[key] {
			continue
		}
		if err := st.unknown(at, key); err != nil {
			return err
		}
	}
	return nil
}

func (c *CompositeCodec) encodeNode(v fhir.Value, at *loc, st *state) (*tree.Node, error) {
	comp, ok := v.(*fhir.Composite)
	if !ok || comp == nil {
		return nil, &EncodeError{Path: at.path(), Reason: typeMismatch(c.def.Name, v)}
	}
	if comp.Type != "" && comp.Type != c.def.Name {
		return nil, &EncodeError{Path: at.path(), Reason: fmt.Sprintf("expected %s, found %s", c.def.Name, comp.Type)}
	}
	if err := st.enter(at); err != nil {
		return nil, err
	}
	defer st.leave()

	out := tree.NewObject()
	if err := c.encodeInto(comp, out, at, st); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CompositeCodec) encodeInto(v *fhir.Composite, out *tree.Node, at *loc, st *state) error {
	if err := c.ext.encodeBuiltins(out, v.ID, v.Extensions, c.idRule, at, st); err != nil {
		return err
	}
	for _, name := range v.Names() {
		if _, ok := c.def.Element(name); !ok {
			return &EncodeError{Path: at.child(name).path(), Reason: fmt.Sprintf("%s has no member %s", c.def.Name, name)}
		}
	}
	for _, m := range c.members {
		val := v.Get(m.name)
		if val == nil {
			if m.elem.Required() {
				return &EncodeError{Path: at.path(), Reason: "required member " + m.name + " is absent"}
			}
			continue
		}
		members, err := m.encode(val, at, st)
		if err != nil {
			return err
		}
		for _, wm := range members {
			out.Set(wm.Key, wm.Value)
		}
	}
	return nil
}

func (m *memberCodec) decode(obj *tree.Node, at *loc, st *state) (fhir.Value, error) {
	switch {
	case m.choice != nil:
		ch, err := m.choice.decode(obj, at, st)
		if err != nil || ch == nil {
			return nil, err
		}
		return ch, nil

	case m.value != nil:
		plain, _ := obj.Get(m.name)
		shadow, _ := obj.Get("_" + m.name)
		plainAt, shadowAt := at.child(m.name), at.child("_"+m.name)
		if m.elem.Repeated() {
			list, err := m.value.decodeList(plain, shadow, plainAt, shadowAt, st)
			if err != nil || list == nil {
				return nil, err
			}
			return list, nil
		}
		p, err := m.value.decode(plain, shadow, plainAt, shadowAt, st)
		if err != nil || p == nil {
			return nil, err
		}
		return p, nil
	}

	n, ok := obj.Get(m.name)
	if !ok {
		return nil, nil
	}
	at = at.child(m.name)
	if n.IsNull() {
		return nil, &LexicalError{Path: at.path(), Type: m.node.typeName(), Reason: "unexpected null"}
	}
	if !m.elem.Repeated() {
		return m.node.decodeNode(n, at, st)
	}
	if n.Kind() != tree.Array {
		return nil, &LexicalError{Path: at.path(), Type: m.node.typeName(), Reason: "expected JSON array, found " + n.Kind().String()}
	}
	list := make(fhir.List, 0, n.Len())
	for i, item := range n.Items() {
		if item.IsNull() {
			return nil, &LexicalError{Path: at.at(i).path(), Type: m.node.typeName(), Reason: "unexpected null"}
		}
		v, err := m.node.decodeNode(item, at.at(i), st)
		if err != nil {
			return nil, err
		}
		list = append(list, v)
	}
	return list, nil
}

func (m *memberCodec) encode(v fhir.Value, at *loc, st *state) ([]tree.Member, error) {
	if m.choice != nil {
		ch, ok := v.(*fhir.Choice)
		if !ok {
			return nil, &EncodeError{Path: at.child(m.name).path(), Reason: typeMismatch("choice", v)}
		}
		return m.choice.encode(ch, at, st)
	}

	var list fhir.List
	if m.elem.Repeated() {
		l, ok := v.(fhir.List)
		if !ok {
			return nil, &EncodeError{Path: at.child(m.name).path(), Reason: typeMismatch("list", v)}
		}
		list = l
	}

	if m.value != nil {
		plainAt, shadowAt := at.child(m.name), at.child("_"+m.name)
		var plain, shadow *tree.Node
		var err error
		if m.elem.Repeated() {
			plain, shadow, err = m.value.encodeList(list, plainAt, shadowAt, st)
		} else {
			p, ok := v.(*fhir.Primitive)
			if !ok || !p.IsPresent() {
				return nil, &EncodeError{Path: plainAt.path(), Reason: "expected a non-empty " + m.value.Type() + " primitive"}
			}
			plain, shadow, err = m.value.encode(p, plainAt, shadowAt, st)
		}
		if err != nil {
			return nil, err
		}
		var members []tree.Member
		if plain != nil {
			members = append(members, tree.Member{Key: m.name, Value: plain})
		}
		if shadow != nil {
			members = append(members, tree.Member{Key: "_" + m.name, Value: shadow})
		}
		return members, nil
	}

	at = at.child(m.name)
	if !m.elem.Repeated() {
		n, err := m.node.encodeNode(v, at, st)
		if err != nil {
			return nil, err
		}
		return []tree.Member{{Key: m.name, Value: n}}, nil
	}
	arr := tree.NewArray()
	for i, item := range list {
		n, err := m.node.encodeNode(item, at.at(i), st)
		if err != nil {
			return nil, err
		}
		arr.Append(n)
	}
	return []tree.Member{{Key: m.name, Value: arr}}, nil
}

func typeMismatch(want string, v fhir.Value) string {
	return fmt.Sprintf("expected %s, found %T", want, v)
}
