package document

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/HeliosSoftware/hfs-sub000/hfs/codec"
	"github.com/HeliosSoftware/hfs-sub000/hfs/fhir"
	"github.com/HeliosSoftware/hfs-sub000/hfs/models"
	"github.com/HeliosSoftware/hfs-sub000/hfs/tree"
)

const patient = `{"resourceType":"Patient","id":"p1","active":true,"_active":{"id":"a1"},"birthDate":"1974-12-25"}`

type DocumentTestSuite struct {
	suite.Suite
	reg *codec.Registry
}

func (s *DocumentTestSuite) SetupSuite() {
	reg, err := models.Registry()
	s.Require().NoError(err)
	s.reg = reg
}

func TestDocumentTestSuite(t *testing.T) {
	suite.Run(t, new(DocumentTestSuite))
}

func (s *DocumentTestSuite) TestContentType() {
	assert.Equal(s.T(), "application/fhir+json", New(s.reg).ContentType())
}

func (s *DocumentTestSuite) TestRoundTrip() {
	d := New(s.reg)
	r, err := d.Unmarshal([]byte(patient))
	s.Require().NoError(err)
	assert.Equal(s.T(), "Patient", r.Kind())

	out, err := d.Marshal(r)
	s.Require().NoError(err)
	assert.Equal(s.T(), patient, string(out))
}

func (s *DocumentTestSuite) TestByteOrderMark() {
	data := append([]byte{0xEF, 0xBB, 0xBF}, patient...)
	r, err := New(s.reg).Unmarshal(data)
	s.Require().NoError(err)
	assert.Equal(s.T(), "Patient", r.Kind())
}

func (s *DocumentTestSuite) TestComments() {
	data := []byte(`{
		// exported by hand
		"resourceType": "Patient",
		/* no identifier yet */
		"active": true,
	}`)

	_, err := New(s.reg).Unmarshal(data)
	var syntax *tree.SyntaxError
	assert.ErrorAs(s.T(), err, &syntax)

	r, err := New(s.reg, WithComments(true)).Unmarshal(data)
	s.Require().NoError(err)
	assert.Equal(s.T(), true, r.Primitive("active").Value)
}

func (s *DocumentTestSuite) TestIndent() {
	d := New(s.reg, WithIndent("", "  "))
	r := fhir.NewResource("Patient")
	r.Set("active", fhir.NewPrimitive(true))

	out, err := d.Marshal(r)
	s.Require().NoError(err)
	assert.Equal(s.T(), "{\n  \"resourceType\": \"Patient\",\n  \"active\": true\n}", string(out))
}

func (s *DocumentTestSuite) TestEncode() {
	r := fhir.NewResource("Patient")
	r.ID = fhir.String("p1")

	var buf bytes.Buffer
	s.Require().NoError(New(s.reg).Encode(&buf, r))
	assert.Equal(s.T(), `{"resourceType":"Patient","id":"p1"}`+"\n", buf.String())

	err := New(s.reg).Encode(&buf, fhir.NewResource("Nope"))
	var encErr *codec.EncodeError
	assert.ErrorAs(s.T(), err, &encErr)
}

func (s *DocumentTestSuite) TestDecodeErrorsPassThrough() {
	_, err := New(s.reg).Unmarshal([]byte(`{"resourceType":"Patient","activ":true}`))
	var unknown *codec.UnrecognizedMemberError
	s.Require().ErrorAs(err, &unknown)
	assert.Equal(s.T(), "activ", unknown.Member)

	logger, hook := test.NewNullLogger()
	r, err := New(s.reg, WithUnknownMembers(true), WithLogger(logger)).
		Unmarshal([]byte(`{"resourceType":"Patient","activ":true}`))
	s.Require().NoError(err)
	assert.Equal(s.T(), 0, r.Len())
	s.Require().Len(hook.Entries, 1)
	assert.Equal(s.T(), logrus.WarnLevel, hook.LastEntry().Level)
}

// nestedBasic wraps depth extensions inside a Basic resource. Each
// extension is two JSON levels deep.
func nestedBasic(depth int) []byte {
	var b strings.Builder
	b.WriteString(`{"resourceType":"Basic","code":{"text":"deep"},"extension":[`)
	b.WriteString(strings.Repeat(`{"url":"http://example.org/n","extension":[`, depth-1))
	b.WriteString(`{"url":"http://example.org/n","valueString":"leaf"}`)
	b.WriteString(strings.Repeat(`]}`, depth-1))
	b.WriteString(`]}`)
	return []byte(b.String())
}

func (s *DocumentTestSuite) TestDepthGuard() {
	data := nestedBasic(1000)

	_, err := New(s.reg, WithMaxDepth(500)).Unmarshal(data)
	var limit *codec.RecursionLimitExceededError
	s.Require().ErrorAs(err, &limit)
	assert.Equal(s.T(), 500, limit.Limit)

	r, err := New(s.reg, WithMaxDepth(2000)).Unmarshal(data)
	s.Require().NoError(err)
	assert.Len(s.T(), r.Extensions, 1)

	// far past the guard the parser stops before the codec runs
	_, err = New(s.reg, WithMaxDepth(10)).Unmarshal(data)
	var syntax *tree.SyntaxError
	assert.ErrorAs(s.T(), err, &syntax)
}

func (s *DocumentTestSuite) TestDecodeBatch() {
	docs := [][]byte{
		[]byte(patient),
		[]byte(`{"resourceType":"Patient","active":"yes"}`),
		[]byte(`{"active":true}`),
		[]byte(`{"resourceType":"Basic","code":{"text":"x"}}`),
	}

	results := New(s.reg, WithWorkers(2)).DecodeBatch(context.Background(), docs)
	s.Require().Len(results, 4)

	s.Require().NoError(results[0].Err)
	assert.Equal(s.T(), "Patient", results[0].Resource.Kind())

	var lexical *codec.LexicalError
	assert.ErrorAs(s.T(), results[1].Err, &lexical)
	assert.Nil(s.T(), results[1].Resource)

	var missing *codec.MissingDiscriminatorError
	assert.ErrorAs(s.T(), results[2].Err, &missing)

	s.Require().NoError(results[3].Err)
	assert.Equal(s.T(), "Basic", results[3].Resource.Kind())
}

func (s *DocumentTestSuite) TestDecodeBatchCancelled() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := New(s.reg).DecodeBatch(ctx, [][]byte{[]byte(patient), []byte(patient)})
	s.Require().Len(results, 2)
	for _, r := range results {
		assert.ErrorIs(s.T(), r.Err, context.Canceled)
		assert.Nil(s.T(), r.Resource)
	}
}

func TestNewClampsWorkers(t *testing.T) {
	reg, err := models.Registry()
	require.NoError(t, err)
	d := New(reg, WithWorkers(0))
	assert.Equal(t, 1, d.cfg.workers)
	assert.Equal(t, 4*codec.DefaultMaxDepth+16, d.parseDepth)
}
