package codec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HeliosSoftware/hfs-sub000/hfs/fhir"
	"github.com/HeliosSoftware/hfs-sub000/hfs/schema"
	"github.com/HeliosSoftware/hfs-sub000/hfs/tree"
)

const testCatalog = `
definitions:
  - name: Coding
    kind: datatype
    elements:
      - {path: system, type: [uri]}
      - {path: code, type: [code]}
      - {path: display, type: [string]}
  - name: CodeableConcept
    kind: datatype
    elements:
      - {path: coding, max: "*", type: [Coding]}
      - {path: text, type: [string]}
  - name: Quantity
    kind: datatype
    elements:
      - {path: value, type: [decimal]}
      - {path: unit, type: [string]}
  - name: Identifier
    kind: datatype
    elements:
      - {path: system, type: [uri]}
      - {path: value, type: [string]}
      - {path: assigner, type: [Reference]}
  - name: Reference
    kind: datatype
    elements:
      - {path: reference, type: [string]}
      - {path: identifier, type: [Identifier]}
  - name: HumanName
    kind: datatype
    elements:
      - {path: family, type: [string]}
      - {path: given, max: "*", type: [string]}
  - name: PatientContact
    kind: backbone
    elements:
      - {path: name, type: [HumanName]}
  - name: Patient
    kind: resource
    elements:
      - {path: identifier, max: "*", type: [Identifier]}
      - {path: active, type: [boolean]}
      - {path: name, max: "*", type: [HumanName]}
      - {path: birthDate, type: [date]}
      - {path: "deceased[x]", type: [boolean, dateTime]}
      - {path: contact, max: "*", type: [PatientContact]}
      - {path: contained, max: "*", type: [Resource]}
      - {path: modifierExtension, max: "*", type: [Extension]}
  - name: ObservationComponent
    kind: backbone
    elements:
      - {path: code, min: 1, type: [CodeableConcept]}
      - {path: "value[x]", type: [Quantity, string]}
  - name: Observation
    kind: resource
    elements:
      - {path: status, min: 1, type: [code]}
      - {path: code, min: 1, type: [CodeableConcept]}
      - {path: subject, type: [Reference]}
      - {path: "value[x]", type: [Quantity, string, boolean, integer]}
      - {path: component, max: "*", type: [ObservationComponent]}
`

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	defs, err := schema.LoadYAML(strings.NewReader(testCatalog))
	require.NoError(t, err)
	cat, err := schema.NewCatalog(defs...)
	require.NoError(t, err)
	reg, err := Compile(cat)
	require.NoError(t, err)
	return reg
}

func parse(t *testing.T, doc string) *tree.Node {
	t.Helper()
	n, err := tree.Parse([]byte(doc), 0)
	require.NoError(t, err)
	return n
}

func marshal(t *testing.T, n *tree.Node) string {
	t.Helper()
	b, err := tree.Marshal(n)
	require.NoError(t, err)
	return string(b)
}

// roundTrip decodes doc, re-encodes it and checks the output matches doc
// byte for byte after whitespace is removed. doc must list members in
// canonical order.
func roundTrip(t *testing.T, reg *Registry, doc string) *fhir.Resource {
	t.Helper()
	in := parse(t, doc)
	r, err := NewDecoder(reg).Decode(in)
	require.NoError(t, err)
	out, err := NewEncoder(reg).Encode(r)
	require.NoError(t, err)
	assert.Equal(t, marshal(t, in), marshal(t, out))
	return r
}

func TestCompile(t *testing.T) {
	reg := testRegistry(t)
	assert.Equal(t, []string{"Observation", "Patient"}, reg.Kinds())

	_, ok := reg.Value("dateTime")
	assert.True(t, ok)
	_, ok = reg.Composite("PatientContact")
	assert.True(t, ok)
	_, ok = reg.Composite("Nope")
	assert.False(t, ok)

	obs, _ := reg.Composite("Observation")
	value, ok := obs.Choice("value")
	require.True(t, ok)
	assert.Equal(t, []string{"Quantity", "string", "boolean", "integer"}, value.Types())

	_, err := Compile(nil)
	assert.Error(t, err)
}

func TestExtensionValueIsOpen(t *testing.T) {
	reg := testRegistry(t)
	types := reg.ExtensionValue().Types()
	assert.Contains(t, types, "string")
	assert.Contains(t, types, "base64Binary")
	assert.Contains(t, types, "Quantity")
	assert.Contains(t, types, "CodeableConcept")
	assert.NotContains(t, types, "PatientContact")
	assert.NotContains(t, types, "Patient")
	assert.NotContains(t, types, "Extension")
}

func TestPathString(t *testing.T) {
	p := rootLoc("Patient").child("contact").at(0).child("name").child("given").at(1).path()
	assert.Equal(t, "Patient.contact[0].name.given[1]", p.String())
	assert.Equal(t, "", Path(nil).String())

	var root *loc
	assert.Equal(t, "[2]", root.at(2).String())
}

func TestErrorMessages(t *testing.T) {
	p := Path{{Member: "Observation"}}
	assert.Equal(t, "Observation: ambiguous choice value[x]: found valueQuantity, valueString",
		(&AmbiguousChoiceError{Path: p, Choice: "value", Keys: []string{"valueQuantity", "valueString"}}).Error())
	assert.Equal(t, "Observation: missing required member status",
		(&MissingRequiredMemberError{Path: p, Member: "status"}).Error())
	assert.Equal(t, "missing resourceType", (&MissingDiscriminatorError{}).Error())
	assert.Equal(t, "cannot encode: nil composite", (&EncodeError{Reason: "nil composite"}).Error())
}
