package codec

import (
	"fmt"

	"github.com/HeliosSoftware/hfs-sub000/hfs/fhir"
	"github.com/HeliosSoftware/hfs-sub000/hfs/schema"
	"github.com/HeliosSoftware/hfs-sub000/hfs/tree"
)

// ChoiceCodec handles a value[x] style member. Each permitted type is an arm
// with its own wire key, the base name followed by the type suffix. Keys are
// matched exactly, so valueDate never claims valueDateTime.
type ChoiceCodec struct {
	base string
	arms []choiceArm
	keys map[string]bool
}

type choiceArm struct {
	typeName string
	key      string
	value    *ValueCodec
	node     nodeCodec
}

func newChoiceCodec(base string) *ChoiceCodec {
	return &ChoiceCodec{base: base, keys: map[string]bool{}}
}

func (c *ChoiceCodec) addArm(arm choiceArm) {
	arm.key = c.base + schema.Suffix(arm.typeName)
	c.arms = append(c.arms, arm)
	c.keys[arm.key] = true
	if arm.value != nil {
		c.keys["_"+arm.key] = true
	}
}

// Base returns the member name without "[x]".
func (c *ChoiceCodec) Base() string {
	return c.base
}

// Types returns the permitted arm types in declaration order.
func (c *ChoiceCodec) Types() []string {
	types := make([]string, len(c.arms))
	for i, arm := range c.arms {
		types[i] = arm.typeName
	}
	return types
}

// Decode finds the arm present in obj. No arm present decodes to nil.
func (c *ChoiceCodec) Decode(obj *tree.Node) (*fhir.Choice, error) {
	opts := newOptions()
	return c.decode(obj, nil, newState(&opts, false))
}

// Encode returns the wire members of the selected arm: one member, or the
// plain and shadow pair for a primitive arm.
func (c *ChoiceCodec) Encode(ch *fhir.Choice) ([]tree.Member, error) {
	opts := newOptions()
	return c.encode(ch, nil, newState(&opts, true))
}

func (c *ChoiceCodec) owns(key string) bool {
	return c.keys[key]
}

func (c *ChoiceCodec) decode(obj *tree.Node, at *loc, st *state) (*fhir.Choice, error) {
	var (
		found   *choiceArm
		matched []string
	)
	for i := range c.arms {
		arm := &c.arms[i]
		key := arm.key
		present := obj.Has(key)
		if !present && arm.value != nil && obj.Has("_"+key) {
			key, present = "_"+key, true
		}
		if present {
			found = arm
			matched = append(matched, key)
		}
	}
	switch len(matched) {
	case 0:
		return nil, nil
	case 1:
	default:
		return nil, &AmbiguousChoiceError{Path: at.path(), Choice: c.base, Keys: matched}
	}

	var (
		v   fhir.Value
		err error
	)
	if found.value != nil {
		plain, _ := obj.Get(found.key)
		shadow, _ := obj.Get("_" + found.key)
		var p *fhir.Primitive
		p, err = found.value.decode(plain, shadow, at.child(found.key), at.child("_"+found.key), st)
		v = p
	} else {
		n, _ := obj.Get(found.key)
		if n.IsNull() {
			return nil, &LexicalError{Path: at.child(found.key).path(), Type: found.typeName, Reason: "unexpected null"}
		}
		v, err = found.node.decodeNode(n, at.child(found.key), st)
	}
	if err != nil {
		return nil, err
	}
	return fhir.NewChoice(found.typeName, v), nil
}

func (c *ChoiceCodec) encode(ch *fhir.Choice, at *loc, st *state) ([]tree.Member, error) {
	if ch == nil {
		return nil, nil
	}
	if !ch.Valid() {
		return nil, &EncodeError{Path: at.child(c.base).path(), Reason: fmt.Sprintf("%s[x] has no selected type", c.base)}
	}
	var arm *choiceArm
	for i := range c.arms {
		if c.arms[i].typeName == ch.Type {
			arm = &c.arms[i]
			break
		}
	}
	if arm == nil {
		return nil, &EncodeError{Path: at.child(c.base).path(), Reason: fmt.Sprintf("type %s is not permitted for %s[x]", ch.Type, c.base)}
	}

	if arm.node != nil {
		n, err := arm.node.encodeNode(ch.Value, at.child(arm.key), st)
		if err != nil {
			return nil, err
		}
		return []tree.Member{{Key: arm.key, Value: n}}, nil
	}

	p, ok := ch.Value.(*fhir.Primitive)
	if !ok || !p.IsPresent() {
		return nil, &EncodeError{Path: at.child(arm.key).path(), Reason: fmt.Sprintf("%s[x] needs a non-empty primitive, not %T", c.base, ch.Value)}
	}
	plain, shadow, err := arm.value.encode(p, at.child(arm.key), at.child("_"+arm.key), st)
	if err != nil {
		return nil, err
	}
	members := []tree.Member{{Key: arm.key, Value: plain}}
	if shadow != nil {
		members = append(members, tree.Member{Key: "_" + arm.key, Value: shadow})
	}
	return members, nil
}
