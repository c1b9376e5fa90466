// Package primitive holds the lexical rules of the FHIR primitive types: how
// each one looks on the JSON wire and which Go type carries its value.
//
//	boolean                          bool
//	integer, positiveInt, unsignedInt int64 (JSON number)
//	integer64                        int64 (JSON string)
//	decimal                          Decimal (literal preserved)
//	base64Binary                     []byte
//	everything else                  string
package primitive

import (
	"fmt"
	"sort"

	"github.com/HeliosSoftware/hfs-sub000/hfs/tree"
)

// Rule is the parse/format pair of one primitive type.
//
// Parse is only called with a non-null node. It returns an error describing
// the lexical problem without location; the caller knows where it is.
// Format returns an error when v is not the Go type the rule uses.
type Rule interface {
	Name() string
	Parse(n *tree.Node) (interface{}, error)
	Format(v interface{}) (*tree.Node, error)
}

var rules = map[string]Rule{}

func register(r Rule) {
	if _, dup := rules[r.Name()]; dup {
		panic("primitive: duplicate rule " + r.Name())
	}
	rules[r.Name()] = r
}

// Lookup returns the rule for a FHIR primitive type name such as "dateTime".
func Lookup(name string) (Rule, bool) {
	r, ok := rules[name]
	return r, ok
}

// IsPrimitive reports whether name is a primitive type.
func IsPrimitive(name string) bool {
	_, ok := rules[name]
	return ok
}

// Names returns every primitive type name in sorted order.
func Names() []string {
	names := make([]string, 0, len(rules))
	for name := range rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func wrongKind(want tree.Kind, n *tree.Node) error {
	return fmt.Errorf("expected JSON %s, found %s", want, n.Kind())
}

func wrongType(rule string, v interface{}) error {
	return fmt.Errorf("%s value must not be %T", rule, v)
}
