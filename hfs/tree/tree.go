// Package tree is the generic JSON value model the codec reads and writes.
//
// It differs from decoding into map[string]interface{} in the two ways the FHIR
// codec cares about: number literals keep their original text (so a decimal
// "1.50" is never routed through a float64) and object members keep the order
// they were written in.
package tree

import "fmt"

// Kind identifies the JSON type of a Node.
type Kind uint8

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Node is one JSON value. An absent member is represented by a nil *Node,
// an explicit JSON null by a Node of kind Null.
type Node struct {
	kind    Kind
	boolean bool
	text    string
	items   []*Node
	members []Member
	index   map[string]int
}

// Member is a single key/value pair of an object.
type Member struct {
	Key   string
	Value *Node
}

func NewNull() *Node {
	return &Node{kind: Null}
}

func NewBool(b bool) *Node {
	return &Node{kind: Bool, boolean: b}
}

// NewNumber wraps a number literal. The literal is written back verbatim, the
// caller is responsible for it being valid JSON number syntax.
func NewNumber(literal string) *Node {
	return &Node{kind: Number, text: literal}
}

func NewString(s string) *Node {
	return &Node{kind: String, text: s}
}

func NewArray(items ...*Node) *Node {
	if items == nil {
		items = []*Node{}
	}
	return &Node{kind: Array, items: items}
}

// NewObject builds an object from members. Later members replace earlier
// members with the same key.
func NewObject(members ...Member) *Node {
	n := &Node{kind: Object, index: make(map[string]int, len(members))}
	for _, m := range members {
		n.Set(m.Key, m.Value)
	}
	return n
}

func (n *Node) Kind() Kind {
	return n.kind
}

func (n *Node) IsNull() bool {
	return n != nil && n.kind == Null
}

// Bool returns the value of a Bool node.
func (n *Node) Bool() bool {
	return n.boolean
}

// Text returns the contents of a String node or the literal of a Number node.
func (n *Node) Text() string {
	return n.text
}

// Items returns the elements of an Array node.
func (n *Node) Items() []*Node {
	return n.items
}

// Len returns the number of elements of an array or members of an object.
func (n *Node) Len() int {
	switch n.kind {
	case Array:
		return len(n.items)
	case Object:
		return len(n.members)
	}
	return 0
}

// Members returns the members of an Object node in insertion order.
func (n *Node) Members() []Member {
	return n.members
}

// Keys returns the member keys of an Object node in insertion order.
func (n *Node) Keys() []string {
	keys := make([]string, len(n.members))
	for i, m := range n.members {
		keys[i] = m.Key
	}
	return keys
}

// Get looks up a member of an Object node.
func (n *Node) Get(key string) (*Node, bool) {
	if n == nil || n.kind != Object {
		return nil, false
	}
	i, ok := n.index[key]
	if !ok {
		return nil, false
	}
	return n.members[i].Value, true
}

// Has reports whether an Object node has a member named key.
func (n *Node) Has(key string) bool {
	_, ok := n.Get(key)
	return ok
}

// Set adds or replaces a member of an Object node. Replacing keeps the
// original position.
func (n *Node) Set(key string, v *Node) {
	if n.kind != Object {
		panic(fmt.Sprintf("tree: Set on %s node", n.kind))
	}
	if n.index == nil {
		n.index = make(map[string]int)
	}
	if i, ok := n.index[key]; ok {
		n.members[i].Value = v
		return
	}
	n.index[key] = len(n.members)
	n.members = append(n.members, Member{Key: key, Value: v})
}

// Append adds an element to an Array node.
func (n *Node) Append(v *Node) {
	if n.kind != Array {
		panic(fmt.Sprintf("tree: Append on %s node", n.kind))
	}
	n.items = append(n.items, v)
}
