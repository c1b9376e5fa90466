package codec

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/HeliosSoftware/hfs-sub000/hfs/fhir"
	"github.com/HeliosSoftware/hfs-sub000/hfs/schema"
	"github.com/HeliosSoftware/hfs-sub000/hfs/tree"
)

// Decoder turns trees into resources under a fixed set of Options. It keeps
// no state between calls and may be shared by goroutines.
type Decoder struct {
	reg  *Registry
	opts Options
}

// NewDecoder returns a Decoder over reg.
func NewDecoder(reg *Registry, opts ...Option) *Decoder {
	return &Decoder{reg: reg, opts: newOptions(opts...)}
}

// Options returns the effective options.
func (d *Decoder) Options() Options {
	return d.opts
}

// Decode reads a resource of whatever kind n declares.
func (d *Decoder) Decode(n *tree.Node) (*fhir.Resource, error) {
	return d.reg.dispatcher.decode(n, nil, newState(&d.opts, false))
}

// DecodeAs reads a resource and checks it is of the given kind. A document
// of another registered kind fails with a LexicalError at its discriminator.
func (d *Decoder) DecodeAs(kind string, n *tree.Node) (*fhir.Resource, error) {
	if _, ok := d.reg.resources[kind]; !ok {
		return nil, errors.Errorf("codec: unknown resource kind %q", kind)
	}
	r, err := d.Decode(n)
	if err != nil {
		return nil, err
	}
	if r.Kind() != kind {
		return nil, &LexicalError{
			Path:   Path{{Member: r.Kind()}, {Member: schema.DiscriminatorField}},
			Type:   schema.DiscriminatorField,
			Reason: fmt.Sprintf("expected %s, found %s", kind, r.Kind()),
		}
	}
	return r, nil
}

// DecodeComposite reads a datatype or backbone element outside a resource.
func (d *Decoder) DecodeComposite(typeName string, n *tree.Node) (*fhir.Composite, error) {
	cc, ok := d.reg.composites[typeName]
	if !ok {
		return nil, errors.Errorf("codec: unknown type %q", typeName)
	}
	v, err := cc.decodeNode(n, rootLoc(typeName), newState(&d.opts, false))
	if err != nil {
		return nil, err
	}
	return v.(*fhir.Composite), nil
}

// Encoder turns resources into trees.
type Encoder struct {
	reg  *Registry
	opts Options
}

// NewEncoder returns an Encoder over reg. Only MaxDepth and Logger apply;
// the depth bound catches values that contain cycles.
func NewEncoder(reg *Registry, opts ...Option) *Encoder {
	return &Encoder{reg: reg, opts: newOptions(opts...)}
}

// Encode writes r. The result always decodes back to an equal resource.
func (e *Encoder) Encode(r *fhir.Resource) (*tree.Node, error) {
	return e.reg.dispatcher.encode(r, nil, newState(&e.opts, true))
}

// EncodeComposite writes a datatype or backbone element.
func (e *Encoder) EncodeComposite(c *fhir.Composite) (*tree.Node, error) {
	if c == nil {
		return nil, &EncodeError{Reason: "nil composite"}
	}
	cc, ok := e.reg.composites[c.Type]
	if !ok {
		return nil, &EncodeError{Reason: "unknown type " + c.Type}
	}
	return cc.encodeNode(c, rootLoc(c.Type), newState(&e.opts, true))
}
