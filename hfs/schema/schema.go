// Package schema describes the shape of FHIR composites as data.
//
// A Definition is an ordered list of Elements, each modelled on a FHIR
// ElementDefinition: a path, a cardinality and one or more type codes. A path
// ending in "[x]" is a choice over its types. The codec consumes definitions
// generically; there is no per-resource Go code.
package schema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind separates reusable datatypes from backbone elements (types local to
// one resource) and resources.
type Kind string

const (
	DataType Kind = "datatype"
	Backbone Kind = "backbone"
	Resource Kind = "resource"
)

// Built-in type codes that are not catalogue definitions.
const (
	// ExtensionType is the recursive Extension element.
	ExtensionType = "Extension"
	// ResourceType makes an element polymorphic over every resource kind,
	// as in contained or Bundle.entry.resource.
	ResourceType = "Resource"
)

// Members every composite carries without declaring them.
const (
	IDMember           = "id"
	ExtensionMember    = "extension"
	DiscriminatorField = "resourceType"
)

var pathRegex = regexp.MustCompile(`^[a-z][A-Za-z0-9]*(\[x\])?$`)

// Element is one member of a Definition.
type Element struct {
	Path  string   `yaml:"path"`
	Min   int      `yaml:"min,omitempty"`
	Max   string   `yaml:"max,omitempty"`
	Types []string `yaml:"type"`
}

// Name is the member name: the path without a trailing "[x]".
func (e Element) Name() string {
	return strings.TrimSuffix(e.Path, "[x]")
}

// IsChoice reports whether the element is a value[x] style choice.
func (e Element) IsChoice() bool {
	return strings.HasSuffix(e.Path, "[x]")
}

// Repeated reports whether more than one occurrence is allowed.
func (e Element) Repeated() bool {
	if e.Max == "*" {
		return true
	}
	n, err := strconv.Atoi(e.Max)
	return err == nil && n > 1
}

// Required reports whether the member must be present.
func (e Element) Required() bool {
	return e.Min > 0
}

// Type returns the single type code of a non-choice element.
func (e Element) Type() string {
	if len(e.Types) == 0 {
		return ""
	}
	return e.Types[0]
}

// Suffix is the key suffix a choice arm of typeName uses on the wire:
// "valueQuantity" for Quantity, "valueDateTime" for dateTime.
func Suffix(typeName string) string {
	r, size := utf8.DecodeRuneInString(typeName)
	if r == utf8.RuneError {
		return typeName
	}
	return string(unicode.ToUpper(r)) + typeName[size:]
}

// WireKeys lists every JSON member name the element can occupy, shadow keys
// included when the type is primitive.
func (e Element) WireKeys(isPrimitive func(string) bool) []string {
	var keys []string
	add := func(key, typeName string) {
		keys = append(keys, key)
		if isPrimitive(typeName) {
			keys = append(keys, "_"+key)
		}
	}
	if !e.IsChoice() {
		add(e.Name(), e.Type())
		return keys
	}
	for _, t := range e.Types {
		add(e.Name()+Suffix(t), t)
	}
	return keys
}

// Definition is the shape of one composite type or resource.
type Definition struct {
	Name     string    `yaml:"name"`
	Kind     Kind      `yaml:"kind"`
	Elements []Element `yaml:"elements"`
}

// Element returns the element with the given member name.
func (d *Definition) Element(name string) (Element, bool) {
	for _, e := range d.Elements {
		if e.Name() == name {
			return e, true
		}
	}
	return Element{}, false
}

func (d *Definition) validateShape() error {
	if d.Name == "" {
		return fmt.Errorf("definition without a name")
	}
	switch d.Kind {
	case DataType, Backbone, Resource:
	default:
		return fmt.Errorf("%s: unknown kind %q", d.Name, d.Kind)
	}

	seen := map[string]bool{}
	for _, e := range d.Elements {
		if !pathRegex.MatchString(e.Path) {
			return fmt.Errorf("%s: invalid element path %q", d.Name, e.Path)
		}
		name := e.Name()
		switch name {
		case IDMember, ExtensionMember, DiscriminatorField:
			return fmt.Errorf("%s.%s: %q is built in and cannot be declared", d.Name, name, name)
		}
		if seen[name] {
			return fmt.Errorf("%s.%s: declared twice", d.Name, name)
		}
		seen[name] = true

		if e.Min < 0 {
			return fmt.Errorf("%s.%s: negative min", d.Name, name)
		}
		if e.Max != "" && e.Max != "*" {
			n, err := strconv.Atoi(e.Max)
			if err != nil || n < 1 {
				return fmt.Errorf("%s.%s: invalid max %q", d.Name, name, e.Max)
			}
			if e.Min > n {
				return fmt.Errorf("%s.%s: min %d exceeds max %d", d.Name, name, e.Min, n)
			}
		}
		if len(e.Types) == 0 {
			return fmt.Errorf("%s.%s: no type", d.Name, name)
		}
		if e.IsChoice() {
			if e.Repeated() {
				return fmt.Errorf("%s.%s: a choice cannot repeat", d.Name, name)
			}
			arms := map[string]bool{}
			for _, t := range e.Types {
				if t == ResourceType {
					return fmt.Errorf("%s.%s: Resource cannot be a choice arm", d.Name, name)
				}
				if arms[Suffix(t)] {
					return fmt.Errorf("%s.%s: choice arm %s listed twice", d.Name, name, t)
				}
				arms[Suffix(t)] = true
			}
		} else if len(e.Types) > 1 {
			return fmt.Errorf("%s.%s: several types on a non-choice element", d.Name, name)
		}
	}
	return nil
}
