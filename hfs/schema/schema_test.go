package schema

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
definitions:
  - name: Quantity
    kind: datatype
    elements:
      - path: value
        type: [decimal]
      - path: unit
        type: [string]
  - name: Observation
    kind: resource
    elements:
      - path: status
        min: 1
        type: [code]
      - path: value[x]
        type: [Quantity, string, dateTime]
      - path: contained
        max: "*"
        type: [Resource]
      - path: modifierExtension
        max: "*"
        type: [Extension]
`

func TestLoadYAML(t *testing.T) {
	defs, err := LoadYAML(strings.NewReader(sampleYAML))
	require.NoError(t, err)
	require.Len(t, defs, 2)

	c, err := NewCatalog(defs...)
	require.NoError(t, err)

	obs, ok := c.Lookup("Observation")
	require.True(t, ok)
	assert.Equal(t, Resource, obs.Kind)

	status, ok := obs.Element("status")
	require.True(t, ok)
	assert.True(t, status.Required())
	assert.False(t, status.Repeated())
	assert.Equal(t, "code", status.Type())

	value, ok := obs.Element("value")
	require.True(t, ok)
	assert.True(t, value.IsChoice())
	assert.Equal(t, []string{"Quantity", "string", "dateTime"}, value.Types)

	contained, _ := obs.Element("contained")
	assert.True(t, contained.Repeated())
	assert.False(t, contained.Required())

	assert.Equal(t, []string{"Observation"}, c.Resources())
	assert.Equal(t, []string{"Quantity"}, c.DataTypes())
	assert.Len(t, c.Definitions(), 2)
}

func TestLoadYAMLRejectsUnknownKeys(t *testing.T) {
	_, err := LoadYAML(strings.NewReader(`
definitions:
  - name: Quantity
    kind: datatype
    elemnts: []
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode catalogue")
}

func TestLoadYAMLEmpty(t *testing.T) {
	_, err := LoadYAML(strings.NewReader(""))
	assert.EqualError(t, err, "catalogue is empty")
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0600))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Observation"}, c.Resources())

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestSuffix(t *testing.T) {
	assert.Equal(t, "Quantity", Suffix("Quantity"))
	assert.Equal(t, "String", Suffix("string"))
	assert.Equal(t, "DateTime", Suffix("dateTime"))
	assert.Equal(t, "Base64Binary", Suffix("base64Binary"))
	assert.Equal(t, "", Suffix(""))
}

func TestWireKeys(t *testing.T) {
	isPrimitive := func(name string) bool { return name == "string" || name == "boolean" }

	e := Element{Path: "value[x]", Types: []string{"Quantity", "string"}}
	assert.Equal(t, []string{"valueQuantity", "valueString", "_valueString"}, e.WireKeys(isPrimitive))

	e = Element{Path: "active", Types: []string{"boolean"}}
	assert.Equal(t, []string{"active", "_active"}, e.WireKeys(isPrimitive))

	e = Element{Path: "code", Types: []string{"CodeableConcept"}}
	assert.Equal(t, []string{"code"}, e.WireKeys(isPrimitive))
}

func TestNewCatalogRejects(t *testing.T) {
	tests := []struct {
		name string
		def  *Definition
		msg  string
	}{
		{"no name", &Definition{Kind: DataType}, "definition without a name"},
		{"bad kind", &Definition{Name: "X", Kind: "thing"}, `unknown kind "thing"`},
		{"bad path", &Definition{Name: "X", Kind: DataType, Elements: []Element{{Path: "Bad", Types: []string{"string"}}}}, "invalid element path"},
		{"built-in id", &Definition{Name: "X", Kind: DataType, Elements: []Element{{Path: "id", Types: []string{"string"}}}}, "built in"},
		{"built-in extension", &Definition{Name: "X", Kind: DataType, Elements: []Element{{Path: "extension", Max: "*", Types: []string{"Extension"}}}}, "built in"},
		{"twice", &Definition{Name: "X", Kind: DataType, Elements: []Element{{Path: "a", Types: []string{"string"}}, {Path: "a", Types: []string{"code"}}}}, "declared twice"},
		{"no type", &Definition{Name: "X", Kind: DataType, Elements: []Element{{Path: "a"}}}, "no type"},
		{"bad max", &Definition{Name: "X", Kind: DataType, Elements: []Element{{Path: "a", Max: "0", Types: []string{"string"}}}}, "invalid max"},
		{"min over max", &Definition{Name: "X", Kind: DataType, Elements: []Element{{Path: "a", Min: 2, Max: "1", Types: []string{"string"}}}}, "exceeds max"},
		{"repeated choice", &Definition{Name: "X", Kind: DataType, Elements: []Element{{Path: "a[x]", Max: "*", Types: []string{"string", "boolean"}}}}, "cannot repeat"},
		{"resource arm", &Definition{Name: "X", Kind: DataType, Elements: []Element{{Path: "a[x]", Types: []string{"string", "Resource"}}}}, "cannot be a choice arm"},
		{"arm twice", &Definition{Name: "X", Kind: DataType, Elements: []Element{{Path: "a[x]", Types: []string{"string", "string"}}}}, "listed twice"},
		{"multi type", &Definition{Name: "X", Kind: DataType, Elements: []Element{{Path: "a", Types: []string{"string", "code"}}}}, "several types"},
		{"unknown type", &Definition{Name: "X", Kind: DataType, Elements: []Element{{Path: "a", Types: []string{"Nope"}}}}, `unknown type "Nope"`},
		{"reserved name", &Definition{Name: "string", Kind: DataType}, "reserved"},
		{"key clash", &Definition{Name: "X", Kind: DataType, Elements: []Element{
			{Path: "value[x]", Types: []string{"string", "boolean"}},
			{Path: "valueString", Types: []string{"string"}},
		}}, `wire key "valueString" already used by value`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.def)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestNewCatalogRejectsDuplicatesAndResourceRefs(t *testing.T) {
	q := &Definition{Name: "Q", Kind: DataType}
	_, err := NewCatalog(q, q)
	assert.EqualError(t, err, "Q: defined twice")

	patient := &Definition{Name: "Patient", Kind: Resource}
	holder := &Definition{Name: "H", Kind: DataType, Elements: []Element{{Path: "p", Types: []string{"Patient"}}}}
	_, err = NewCatalog(patient, holder)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "use type Resource")
}
