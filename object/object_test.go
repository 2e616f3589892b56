package object

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/OpenCortex/owmeta-core/rdf"
	"github.com/OpenCortex/owmeta-core/storage"
)

// testSchemas builds a small domain for the object-model tests: a Person
// with a key name, a plain nickname, and an object-valued friend.
func testSchemas(t *testing.T) *Schema {
	t.Helper()
	person, err := NewSchema(SchemaConfig{
		Name:    "Person",
		Module:  "example.org/people",
		RDFType: "http://ex.org/Person",
		Properties: []PropertySpec{
			{Name: "name", Kind: DatatypeKind, Key: true},
			{Name: "nickname", Kind: DatatypeKind, Multiple: true},
			{Name: "friend", Kind: ObjectKind, ValueRDFType: "http://ex.org/Person"},
		},
	})
	require.NoError(t, err)
	person.Spec("friend").ValueSchema = person
	return person
}

// keylessSchema is a Person variant with no key properties, for
// query-by-example scenarios where the owner must stay undefined.
func keylessSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := NewSchema(SchemaConfig{
		Name:    "Person",
		Module:  "example.org/people",
		RDFType: "http://ex.org/Person",
		Properties: []PropertySpec{
			{Name: "name", Kind: DatatypeKind},
			{Name: "friend", Kind: ObjectKind},
		},
	})
	require.NoError(t, err)
	return s
}

func newTestContext(t *testing.T, id string) (*Context, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	c := NewContext(rdf.IRI(id), WithStore(store))
	return c, store
}
