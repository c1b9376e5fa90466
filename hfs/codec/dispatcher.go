package codec

import (
	"github.com/HeliosSoftware/hfs-sub000/hfs/fhir"
	"github.com/HeliosSoftware/hfs-sub000/hfs/schema"
	"github.com/HeliosSoftware/hfs-sub000/hfs/tree"
)

// Dispatcher selects a resource codec by the resourceType member. It serves
// the document root and every element typed Resource, such as contained and
// Bundle.entry.resource.
type Dispatcher struct {
	reg *Registry
}

// Decode reads a resource of any registered kind.
func (d *Dispatcher) Decode(n *tree.Node) (*fhir.Resource, error) {
	opts := newOptions()
	return d.decode(n, nil, newState(&opts, false))
}

// Encode writes r with resourceType as the first member.
func (d *Dispatcher) Encode(r *fhir.Resource) (*tree.Node, error) {
	opts := newOptions()
	return d.encode(r, nil, newState(&opts, true))
}

func (d *Dispatcher) typeName() string { return schema.ResourceType }

// decode reads a resource at. A nil at is the document root; the path then
// starts with the resource kind.
func (d *Dispatcher) decode(n *tree.Node, at *loc, st *state) (*fhir.Resource, error) {
	if n.Kind() != tree.Object {
		return nil, &LexicalError{Path: at.path(), Type: schema.ResourceType, Reason: "expected JSON object, found " + n.Kind().String()}
	}
	disc, ok := n.Get(schema.DiscriminatorField)
	if !ok || disc.Kind() != tree.String || disc.Text() == "" {
		return nil, &MissingDiscriminatorError{Path: at.path()}
	}
	kind := disc.Text()
	cc, ok := d.reg.resources[kind]
	if !ok {
		return nil, &UnknownResourceKindError{Path: at.child(schema.DiscriminatorField).path(), Kind: kind}
	}
	if at == nil {
		at = rootLoc(kind)
	}
	st.opts.Logger.Debugf("decoding %s", kind)

	if err := st.enter(at); err != nil {
		return nil, err
	}
	defer st.leave()

	r := fhir.NewResource(kind)
	if err := cc.decodeInto(n, &r.Composite, at, st); err != nil {
		return nil, err
	}
	return r, nil
}

func (d *Dispatcher) encode(r *fhir.Resource, at *loc, st *state) (*tree.Node, error) {
	if r == nil || r.Kind() == "" {
		return nil, &EncodeError{Path: at.path(), Reason: "resource without a kind"}
	}
	cc, ok := d.reg.resources[r.Kind()]
	if !ok {
		return nil, &EncodeError{Path: at.path(), Reason: "unknown resource kind " + r.Kind()}
	}
	if at == nil {
		at = rootLoc(r.Kind())
	}
	if err := st.enter(at); err != nil {
		return nil, err
	}
	defer st.leave()

	out := tree.NewObject(tree.Member{Key: schema.DiscriminatorField, Value: tree.NewString(r.Kind())})
	if err := cc.encodeInto(&r.Composite, out, at, st); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *Dispatcher) decodeNode(n *tree.Node, at *loc, st *state) (fhir.Value, error) {
	r, err := d.decode(n, at, st)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (d *Dispatcher) encodeNode(v fhir.Value, at *loc, st *state) (*tree.Node, error) {
	r, ok := v.(*fhir.Resource)
	if !ok {
		return nil, &EncodeError{Path: at.path(), Reason: typeMismatch(schema.ResourceType, v)}
	}
	return d.encode(r, at, st)
}
