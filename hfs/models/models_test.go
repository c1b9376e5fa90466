package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HeliosSoftware/hfs-sub000/hfs/codec"
	"github.com/HeliosSoftware/hfs-sub000/hfs/fhir"
	"github.com/HeliosSoftware/hfs-sub000/hfs/primitive"
	"github.com/HeliosSoftware/hfs-sub000/hfs/tree"
)

func TestRegistry(t *testing.T) {
	reg, err := Registry()
	require.NoError(t, err)
	assert.Equal(t, []string{"Basic", "Bundle", "Observation", "OperationOutcome", "Patient"}, reg.Kinds())

	again, err := Registry()
	require.NoError(t, err)
	assert.Same(t, reg, again)

	cat, err := Catalog()
	require.NoError(t, err)
	assert.Same(t, cat, reg.Catalog())
	assert.Contains(t, cat.DataTypes(), "HumanName")
}

func TestSource(t *testing.T) {
	src := Source()
	assert.Contains(t, string(src), "name: Patient")
	src[0] = 'x'
	assert.NotEqual(t, byte('x'), Source()[0])
}

// The fixtures are written in schema order so the encoded form can be
// compared with the input byte for byte after compaction.
func TestExamplesRoundTrip(t *testing.T) {
	reg, err := Registry()
	require.NoError(t, err)
	dec := codec.NewDecoder(reg)
	enc := codec.NewEncoder(reg)

	files, err := filepath.Glob("testdata/*.json")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			data, err := os.ReadFile(file)
			require.NoError(t, err)
			in, err := tree.Parse(data, 0)
			require.NoError(t, err)
			want, err := tree.Marshal(in)
			require.NoError(t, err)

			r, err := dec.Decode(in)
			require.NoError(t, err)
			out, err := enc.Encode(r)
			require.NoError(t, err)
			got, err := tree.Marshal(out)
			require.NoError(t, err)
			assert.Equal(t, string(want), string(got))
		})
	}
}

func decodeFile(t *testing.T, name string) *fhir.Resource {
	reg, err := Registry()
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	n, err := tree.Parse(data, 0)
	require.NoError(t, err)
	r, err := codec.NewDecoder(reg).Decode(n)
	require.NoError(t, err)
	return r
}

func TestPatientExample(t *testing.T) {
	r := decodeFile(t, "patient-example.json")
	assert.Equal(t, "Patient", r.Kind())
	id, ok := r.ResourceID()
	require.True(t, ok)
	assert.Equal(t, "example", id)

	birth := r.Primitive("birthDate")
	require.NotNil(t, birth)
	assert.Equal(t, "1974-12-25", birth.Value)
	require.Len(t, birth.Extensions, 1)
	assert.Equal(t, "http://hl7.org/fhir/StructureDefinition/patient-birthTime", birth.Extensions[0].URL)
	assert.Equal(t, "dateTime", birth.Extensions[0].Value.Type)

	deceased := r.Choice("deceased")
	require.NotNil(t, deceased)
	assert.Equal(t, "boolean", deceased.Type)
	assert.Equal(t, false, deceased.Value.(*fhir.Primitive).Value)

	contact := r.List("contact")[0].(*fhir.Composite)
	family := contact.Child("name").Primitive("family")
	assert.Equal(t, "du Marché", family.Value)
	require.Len(t, family.Extensions, 1)
	assert.Equal(t, "VV", family.Extensions[0].Value.Value.(*fhir.Primitive).Value)

	rank := r.List("telecom")[1].(*fhir.Composite).Primitive("rank")
	assert.Equal(t, int64(1), rank.Value)
}

func TestBundleExamples(t *testing.T) {
	tx := decodeFile(t, "bundle-transaction.json")
	entries := tx.List("entry")
	require.Len(t, entries, 3)

	patient := entries[0].(*fhir.Composite).Resource("resource")
	require.NotNil(t, patient)
	gender := patient.Primitive("gender")
	assert.Equal(t, "male", gender.Value)
	require.NotNil(t, gender.ID)
	assert.Equal(t, "g1", *gender.ID)

	obs := entries[1].(*fhir.Composite).Resource("resource")
	require.NotNil(t, obs)
	value := obs.Choice("value")
	require.Equal(t, "Quantity", value.Type)
	weight := value.Value.(*fhir.Composite).Primitive("value").Value.(primitive.Decimal)
	assert.Equal(t, "185.50", weight.String())

	assert.Nil(t, entries[2].(*fhir.Composite).Resource("resource"))

	resp := decodeFile(t, "bundle-response.json")
	outcome := resp.List("entry")[1].(*fhir.Composite).Child("response").Resource("outcome")
	require.NotNil(t, outcome)
	assert.Equal(t, "OperationOutcome", outcome.Kind())
}

func TestBasicNestedExtensions(t *testing.T) {
	r := decodeFile(t, "basic-referral.json")
	require.Len(t, r.Extensions, 3)
	nested := r.Extensions[2]
	assert.Nil(t, nested.Value)
	require.Len(t, nested.Extensions, 2)
	assert.Equal(t, "integer", nested.Extensions[0].Value.Type)
	assert.Equal(t, "decimal", nested.Extensions[1].Value.Type)

	mods := r.List("modifierExtension")
	require.Len(t, mods, 1)
	assert.Equal(t, "code", mods[0].(*fhir.Extension).Value.Type)
}
