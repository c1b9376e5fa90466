package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// SyntaxError reports input that is not a single well-formed JSON value.
type SyntaxError struct {
	Offset int64
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid JSON at offset %d: %s", e.Offset, e.Msg)
}

// Parse reads exactly one JSON value from data. maxDepth bounds the nesting of
// arrays and objects; zero means unbounded. Duplicate object keys are rejected
// since the codec could otherwise never see the first occurrence.
func Parse(data []byte, maxDepth int) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	p := &parser{dec: dec, maxDepth: maxDepth}

	n, err := p.value(0)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &SyntaxError{Offset: dec.InputOffset(), Msg: "unexpected data after top-level value"}
	}
	return n, nil
}

type parser struct {
	dec      *json.Decoder
	maxDepth int
}

func (p *parser) value(depth int) (*Node, error) {
	tok, err := p.dec.Token()
	if err != nil {
		return nil, p.syntax(err)
	}

	switch t := tok.(type) {
	case nil:
		return NewNull(), nil
	case bool:
		return NewBool(t), nil
	case json.Number:
		return NewNumber(t.String()), nil
	case string:
		return NewString(t), nil
	case json.Delim:
		if p.maxDepth > 0 && depth >= p.maxDepth {
			return nil, &SyntaxError{
				Offset: p.dec.InputOffset(),
				Msg:    fmt.Sprintf("nesting exceeds %d levels", p.maxDepth),
			}
		}
		if t == '{' {
			return p.object(depth)
		}
		return p.array(depth)
	}
	return nil, &SyntaxError{Offset: p.dec.InputOffset(), Msg: fmt.Sprintf("unexpected token %v", tok)}
}

func (p *parser) object(depth int) (*Node, error) {
	obj := NewObject()
	for p.dec.More() {
		tok, err := p.dec.Token()
		if err != nil {
			return nil, p.syntax(err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, &SyntaxError{Offset: p.dec.InputOffset(), Msg: "object key is not a string"}
		}
		if obj.Has(key) {
			return nil, &SyntaxError{Offset: p.dec.InputOffset(), Msg: fmt.Sprintf("duplicate key %q", key)}
		}
		v, err := p.value(depth + 1)
		if err != nil {
			return nil, err
		}
		obj.Set(key, v)
	}
	// closing '}'
	if _, err := p.dec.Token(); err != nil {
		return nil, p.syntax(err)
	}
	return obj, nil
}

func (p *parser) array(depth int) (*Node, error) {
	arr := NewArray()
	for p.dec.More() {
		v, err := p.value(depth + 1)
		if err != nil {
			return nil, err
		}
		arr.Append(v)
	}
	// closing ']'
	if _, err := p.dec.Token(); err != nil {
		return nil, p.syntax(err)
	}
	return arr, nil
}

func (p *parser) syntax(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return &SyntaxError{Offset: p.dec.InputOffset(), Msg: "unexpected end of input"}
	}
	if se, ok := err.(*json.SyntaxError); ok {
		return &SyntaxError{Offset: se.Offset, Msg: se.Error()}
	}
	return &SyntaxError{Offset: p.dec.InputOffset(), Msg: err.Error()}
}
