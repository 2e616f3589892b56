package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenCortex/owmeta-core/rdf"
)

func TestNewSchemaDefaults(t *testing.T) {
	s, err := NewSchema(SchemaConfig{
		Name:    "Person",
		Module:  "example.org/people",
		RDFType: "http://ex.org/Person",
		Properties: []PropertySpec{
			{Name: "name", Kind: DatatypeKind, Key: true},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, rdf.IRI("http://ex.org/Person/"), s.Namespace)
	assert.Equal(t, rdf.IRI("http://ex.org/Person/name"), s.Spec("name").Link)

	// rdf_type is injected automatically.
	typeSpec := s.Spec(TypeAttributeName)
	require.NotNil(t, typeSpec)
	assert.Equal(t, ObjectKind, typeSpec.Kind)
	assert.True(t, typeSpec.Multiple)
}

func TestNewSchemaValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  SchemaConfig
	}{
		{
			name: "missing name",
			cfg:  SchemaConfig{RDFType: "http://ex.org/T"},
		},
		{
			name: "missing rdf type",
			cfg:  SchemaConfig{Name: "T"},
		},
		{
			name: "unnamed property",
			cfg: SchemaConfig{
				Name:       "T",
				RDFType:    "http://ex.org/T",
				Properties: []PropertySpec{{Kind: DatatypeKind}},
			},
		},
		{
			name: "duplicate property",
			cfg: SchemaConfig{
				Name:    "T",
				RDFType: "http://ex.org/T",
				Properties: []PropertySpec{
					{Name: "x", Kind: DatatypeKind},
					{Name: "x", Kind: DatatypeKind},
				},
			},
		},
		{
			name: "alias to unknown property",
			cfg: SchemaConfig{
				Name:    "T",
				RDFType: "http://ex.org/T",
				Properties: []PropertySpec{
					{Name: "x", Kind: DatatypeKind, Aliases: []string{"missing"}},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSchema(tt.cfg)
			assert.Error(t, err)
		})
	}
}

func TestKeyIdentifierDeterministic(t *testing.T) {
	ns := rdf.IRI("http://ex.org/Person/")
	name := rdf.Literal{Val: "alice", Datatype: rdf.XSDString}
	email := rdf.Literal{Val: "a@ex.org", Datatype: rdf.XSDString}

	a := KeyIdentifier(ns, map[string][]rdf.Term{"name": {name}, "email": {email}})
	b := KeyIdentifier(ns, map[string][]rdf.Term{"email": {email}, "name": {name}})
	assert.Equal(t, a, b, "map iteration order must not affect the identifier")

	c := KeyIdentifier(ns, map[string][]rdf.Term{"name": {name}})
	assert.NotEqual(t, a, c)

	other := KeyIdentifier(ns, map[string][]rdf.Term{
		"name": {rdf.Literal{Val: "bob", Datatype: rdf.XSDString}},
	})
	assert.NotEqual(t, c, other)
}

func TestKeyIdentifierMultiValueOrder(t *testing.T) {
	ns := rdf.IRI("http://ex.org/T/")
	x := rdf.Literal{Val: "x", Datatype: rdf.XSDString}
	y := rdf.Literal{Val: "y", Datatype: rdf.XSDString}

	a := KeyIdentifier(ns, map[string][]rdf.Term{"tags": {x, y}})
	b := KeyIdentifier(ns, map[string][]rdf.Term{"tags": {y, x}})
	assert.Equal(t, a, b, "value order within a key must not affect the identifier")
}
