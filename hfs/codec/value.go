package codec

import (
	"fmt"

	"github.com/HeliosSoftware/hfs-sub000/hfs/fhir"
	"github.com/HeliosSoftware/hfs-sub000/hfs/primitive"
	"github.com/HeliosSoftware/hfs-sub000/hfs/tree"
)

// ValueCodec converts one primitive type between its plain and shadow wire
// members and a fhir.Primitive.
type ValueCodec struct {
	rule primitive.Rule
	ext  *extensionCodec
}

// Type returns the primitive type name.
func (c *ValueCodec) Type() string {
	return c.rule.Name()
}

// Decode merges a plain member and its shadow. Either may be nil when the
// member is absent; both nil decodes to nil.
func (c *ValueCodec) Decode(plain, shadow *tree.Node) (*fhir.Primitive, error) {
	opts := newOptions()
	return c.decode(plain, shadow, nil, nil, newState(&opts, false))
}

// Encode splits p into its plain and shadow members. A nil result means the
// member is omitted. When p has id or extensions but no value the plain
// member is an explicit null.
func (c *ValueCodec) Encode(p *fhir.Primitive) (plain, shadow *tree.Node, err error) {
	opts := newOptions()
	return c.encode(p, nil, nil, newState(&opts, true))
}

func (c *ValueCodec) decode(plain, shadow *tree.Node, plainAt, shadowAt *loc, st *state) (*fhir.Primitive, error) {
	if plain == nil && shadow == nil {
		return nil, nil
	}

	p := &fhir.Primitive{}
	if plain != nil && !plain.IsNull() {
		v, err := c.rule.Parse(plain)
		if err != nil {
			return nil, &LexicalError{Path: plainAt.path(), Type: c.rule.Name(), Reason: err.Error()}
		}
		p.Value = v
	}
	if shadow != nil {
		if err := c.decodeShadow(shadow, p, shadowAt, st); err != nil {
			return nil, err
		}
	}
	if p.Value == nil && !p.HasShadow() {
		return nil, &LexicalError{Path: plainAt.path(), Type: c.rule.Name(), Reason: "null without id or extension"}
	}
	return p, nil
}

func (c *ValueCodec) decodeShadow(n *tree.Node, p *fhir.Primitive, at *loc, st *state) error {
	if n.Kind() != tree.Object {
		return &LexicalError{Path: at.path(), Type: "Element", Reason: "expected JSON object, found " + n.Kind().String()}
	}
	id, exts, err := c.ext.decodeBuiltins(n, idRule, at, st)
	if err != nil {
		return err
	}
	for _, key := range n.Keys() {
		if key == "id" || key == "extension" {
			continue
		}
		if err := st.unknown(at, key); err != nil {
			return err
		}
	}
	if id == nil && exts == nil {
		return &LexicalError{Path: at.path(), Type: "Element", Reason: "shadow member carries neither id nor extension"}
	}
	p.ID = id
	p.Extensions = exts
	return nil
}

func (c *ValueCodec) encode(p *fhir.Primitive, plainAt, shadowAt *loc, st *state) (plain, shadow *tree.Node, err error) {
	if !p.IsPresent() {
		return nil, nil, nil
	}
	if p.Value == nil {
		plain = tree.NewNull()
	} else {
		plain, err = c.rule.Format(p.Value)
		if err != nil {
			return nil, nil, &EncodeError{Path: plainAt.path(), Reason: err.Error()}
		}
	}
	if p.HasShadow() {
		shadow = tree.NewObject()
		if err := c.ext.encodeBuiltins(shadow, p.ID, p.Extensions, idRule, shadowAt, st); err != nil {
			return nil, nil, err
		}
	}
	return plain, shadow, nil
}

// decodeList aligns a repeated primitive's plain and shadow arrays by index.
func (c *ValueCodec) decodeList(plain, shadow *tree.Node, plainAt, shadowAt *loc, st *state) (fhir.List, error) {
	if plain == nil && shadow == nil {
		return nil, nil
	}
	if plain != nil && plain.Kind() != tree.Array {
		return nil, &LexicalError{Path: plainAt.path(), Type: c.rule.Name(), Reason: "expected JSON array, found " + plain.Kind().String()}
	}
	if shadow != nil && shadow.Kind() != tree.Array {
		return nil, &LexicalError{Path: shadowAt.path(), Type: "Element", Reason: "expected JSON array, found " + shadow.Kind().String()}
	}
	var n int
	if plain == nil {
		n = shadow.Len()
	} else if n = plain.Len(); shadow != nil && shadow.Len() != n {
		return nil, &LexicalError{
			Path:   shadowAt.path(),
			Type:   "Element",
			Reason: fmt.Sprintf("has %d entries but the value array has %d", shadow.Len(), n),
		}
	}

	list := make(fhir.List, 0, n)
	for i := 0; i < n; i++ {
		pv, sv := entry(plain, i), entry(shadow, i)
		if pv == nil && sv == nil {
			return nil, &LexicalError{Path: plainAt.at(i).path(), Type: c.rule.Name(), Reason: "entry has neither value nor id or extension"}
		}
		p, err := c.decode(pv, sv, plainAt.at(i), shadowAt.at(i), st)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, nil
}

// entry returns the i-th item of arr, treating null as absent.
func entry(arr *tree.Node, i int) *tree.Node {
	if arr == nil {
		return nil
	}
	item := arr.Items()[i]
	if item.IsNull() {
		return nil
	}
	return item
}

func (c *ValueCodec) encodeList(list fhir.List, plainAt, shadowAt *loc, st *state) (plain, shadow *tree.Node, err error) {
	if len(list) == 0 {
		return tree.NewArray(), nil, nil
	}
	plains := make([]*tree.Node, len(list))
	shadows := make([]*tree.Node, len(list))
	var anyValue, anyShadow bool
	for i, v := range list {
		p, ok := v.(*fhir.Primitive)
		if !ok || !p.IsPresent() {
			return nil, nil, &EncodeError{Path: plainAt.at(i).path(), Reason: fmt.Sprintf("entry must be a non-empty %s primitive, not %T", c.rule.Name(), v)}
		}
		pn, sn, err := c.encode(p, plainAt.at(i), shadowAt.at(i), st)
		if err != nil {
			return nil, nil, err
		}
		plains[i] = pn
		anyValue = anyValue || p.Value != nil
		if sn == nil {
			sn = tree.NewNull()
		} else {
			anyShadow = true
		}
		shadows[i] = sn
	}
	if anyValue {
		plain = tree.NewArray(plains...)
	}
	if anyShadow {
		shadow = tree.NewArray(shadows...)
	}
	return plain, shadow, nil
}
