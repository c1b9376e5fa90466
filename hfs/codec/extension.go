package codec

import (
	"github.com/HeliosSoftware/hfs-sub000/hfs/fhir"
	"github.com/HeliosSoftware/hfs-sub000/hfs/primitive"
	"github.com/HeliosSoftware/hfs-sub000/hfs/schema"
	"github.com/HeliosSoftware/hfs-sub000/hfs/tree"
)

var (
	// idRule checks element ids; resource ids use the stricter resourceIDRule.
	idRule         = mustRule("string")
	resourceIDRule = mustRule("id")
	urlRule        = mustRule("uri")
)

func mustRule(name string) primitive.Rule {
	r, ok := primitive.Lookup(name)
	if !ok {
		panic("codec: no primitive rule " + name)
	}
	return r
}

// extensionCodec handles the built-in Extension element. Its value[x] is
// open: every primitive and every catalogue datatype is an arm.
type extensionCodec struct {
	value *ChoiceCodec
}

func (c *extensionCodec) typeName() string { return schema.ExtensionType }

// decodeBuiltins reads the id and extension members every element carries.
func (c *extensionCodec) decodeBuiltins(n *tree.Node, rule primitive.Rule, at *loc, st *state) (*string, []*fhir.Extension, error) {
	var id *string
	if v, ok := n.Get(schema.IDMember); ok {
		s, err := rule.Parse(v)
		if err != nil {
			return nil, nil, &LexicalError{Path: at.child(schema.IDMember).path(), Type: rule.Name(), Reason: err.Error()}
		}
		str := s.(string)
		id = &str
	}

	var exts []*fhir.Extension
	if v, ok := n.Get(schema.ExtensionMember); ok {
		var err error
		if exts, err = c.decodeList(v, at.child(schema.ExtensionMember), st); err != nil {
			return nil, nil, err
		}
	}
	return id, exts, nil
}

func (c *extensionCodec) encodeBuiltins(out *tree.Node, id *string, exts []*fhir.Extension, rule primitive.Rule, at *loc, st *state) error {
	if id != nil {
		n, err := rule.Format(*id)
		if err != nil {
			return &EncodeError{Path: at.child(schema.IDMember).path(), Reason: err.Error()}
		}
		out.Set(schema.IDMember, n)
	}
	if exts != nil {
		n, err := c.encodeList(exts, at.child(schema.ExtensionMember), st)
		if err != nil {
			return err
		}
		out.Set(schema.ExtensionMember, n)
	}
	return nil
}

func (c *extensionCodec) decodeList(n *tree.Node, at *loc, st *state) ([]*fhir.Extension, error) {
	if n.Kind() != tree.Array {
		return nil, &LexicalError{Path: at.path(), Type: schema.ExtensionType, Reason: "expected JSON array, found " + n.Kind().String()}
	}
	out := make([]*fhir.Extension, 0, n.Len())
	for i, item := range n.Items() {
		e, err := c.decode(item, at.at(i), st)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (c *extensionCodec) encodeList(exts []*fhir.Extension, at *loc, st *state) (*tree.Node, error) {
	arr := tree.NewArray()
	for i, e := range exts {
		n, err := c.encode(e, at.at(i), st)
		if err != nil {
			return nil, err
		}
		arr.Append(n)
	}
	return arr, nil
}

func (c *extensionCodec) decode(n *tree.Node, at *loc, st *state) (*fhir.Extension, error) {
	if err := st.enter(at); err != nil {
		return nil, err
	}
	defer st.leave()

	if n.Kind() != tree.Object {
		return nil, &LexicalError{Path: at.path(), Type: schema.ExtensionType, Reason: "expected JSON object, found " + n.Kind().String()}
	}
	id, exts, err := c.decodeBuiltins(n, idRule, at, st)
	if err != nil {
		return nil, err
	}
	e := &fhir.Extension{ID: id, Extensions: exts}

	u, ok := n.Get("url")
	if !ok {
		return nil, &MissingRequiredMemberError{Path: at.path(), Member: "url"}
	}
	s, err := urlRule.Parse(u)
	if err != nil {
		return nil, &LexicalError{Path: at.child("url").path(), Type: urlRule.Name(), Reason: err.Error()}
	}
	e.URL = s.(string)

	if e.Value, err = c.value.decode(n, at, st); err != nil {
		return nil, err
	}

	for _, key := range n.Keys() {
		switch {
		case key == schema.IDMember, key == schema.ExtensionMember, key == "url", c.value.owns(key):
			continue
		}
		if err := st.unknown(at, key); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (c *extensionCodec) encode(e *fhir.Extension, at *loc, st *state) (*tree.Node, error) {
	if e == nil {
		return nil, &EncodeError{Path: at.path(), Reason: "nil extension"}
	}
	if err := st.enter(at); err != nil {
		return nil, err
	}
	defer st.leave()

	u, err := urlRule.Format(e.URL)
	if err != nil {
		return nil, &EncodeError{Path: at.child("url").path(), Reason: err.Error()}
	}
	// url first
	out := tree.NewObject(tree.Member{Key: "url", Value: u})
	if err := c.encodeBuiltins(out, e.ID, e.Extensions, idRule, at, st); err != nil {
		return nil, err
	}

	if e.Value != nil {
		members, err := c.value.encode(e.Value, at, st)
		if err != nil {
			return nil, err
		}
		for _, m := range members {
			out.Set(m.Key, m.Value)
		}
	}
	return out, nil
}

func (c *extensionCodec) decodeNode(n *tree.Node, at *loc, st *state) (fhir.Value, error) {
	e, err := c.decode(n, at, st)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (c *extensionCodec) encodeNode(v fhir.Value, at *loc, st *state) (*tree.Node, error) {
	e, ok := v.(*fhir.Extension)
	if !ok {
		return nil, &EncodeError{Path: at.path(), Reason: typeMismatch(schema.ExtensionType, v)}
	}
	return c.encode(e, at, st)
}
