package object

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenCortex/owmeta-core/rdf"
	"github.com/OpenCortex/owmeta-core/vocabulary/registry"
)

func TestAddImportRejectsCycles(t *testing.T) {
	a := NewContext("http://ex.org/ctx/a")
	b := NewContext("http://ex.org/ctx/b")
	c := NewContext("http://ex.org/ctx/c")

	require.NoError(t, a.AddImport(b))
	require.NoError(t, b.AddImport(c))

	assert.ErrorIs(t, a.AddImport(a), ErrCyclicImport)
	assert.ErrorIs(t, b.AddImport(a), ErrCyclicImport)
	assert.ErrorIs(t, c.AddImport(a), ErrCyclicImport)
}

func TestImportClosureTransitive(t *testing.T) {
	a := NewContext("http://ex.org/ctx/a")
	b := NewContext("http://ex.org/ctx/b")
	c := NewContext("http://ex.org/ctx/c")

	require.NoError(t, a.AddImport(b))

	closure := a.ImportClosure()
	assert.Len(t, closure, 2)

	// The cached closure must be invalidated when a transitive edge is
	// added afterwards.
	require.NoError(t, b.AddImport(c))
	closure = a.ImportClosure()
	assert.Len(t, closure, 3)
}

func TestImportIdempotent(t *testing.T) {
	a := NewContext("http://ex.org/ctx/a")
	b := NewContext("http://ex.org/ctx/b")

	require.NoError(t, a.AddImport(b))
	require.NoError(t, a.AddImport(b))
	assert.Len(t, a.Imports(), 1)
}

func TestSaveCommitsOwnStatementsOnly(t *testing.T) {
	person := testSchemas(t)
	c1, store := newTestContext(t, "http://ex.org/ctx/1")
	c2 := NewContext("http://ex.org/ctx/2", WithStore(store))
	ctx := context.Background()

	alice := c1.Bind(person.New())
	_, err := alice.Prop("name").Set("alice")
	require.NoError(t, err)

	bob := c2.Bind(person.New())
	_, err = bob.Prop("name").Set("bob")
	require.NoError(t, err)

	require.NoError(t, c1.Save(ctx))

	cur, err := store.MatchTriples(ctx, rdf.Pattern{Context: rdf.IRI("http://ex.org/ctx/1")})
	require.NoError(t, err)
	saved, err := rdf.CollectQuads(cur)
	require.NoError(t, err)
	assert.NotEmpty(t, saved)

	cur, err = store.MatchTriples(ctx, rdf.Pattern{Context: rdf.IRI("http://ex.org/ctx/2")})
	require.NoError(t, err)
	unsaved, err := rdf.CollectQuads(cur)
	require.NoError(t, err)
	assert.Empty(t, unsaved, "a context's save must not commit another context's statements")
}

func TestSaveUndefinedSubjectFails(t *testing.T) {
	person := keylessSchema(t)
	c, _ := newTestContext(t, "http://ex.org/ctx/1")
	ctx := context.Background()

	p := c.Bind(person.New())
	_, err := p.Prop("name").Set("nameless")
	require.NoError(t, err)

	assert.ErrorIs(t, c.Save(ctx), ErrIdentifierMissing)
}

func TestSaveImportsSeparateFromData(t *testing.T) {
	c1, store := newTestContext(t, "http://ex.org/ctx/1")
	c2 := NewContext("http://ex.org/ctx/2", WithStore(store))
	ctx := context.Background()

	require.NoError(t, c1.AddImport(c2))
	require.NoError(t, c1.SaveImports(ctx))

	cur, err := store.MatchTriples(ctx, rdf.Pattern{Context: registry.ImportsContext})
	require.NoError(t, err)
	quads, err := rdf.CollectQuads(cur)
	require.NoError(t, err)
	require.Len(t, quads, 1)
	assert.Equal(t, rdf.Term(rdf.IRI("http://ex.org/ctx/1")), quads[0].Subject)
	assert.Equal(t, registry.Imports, quads[0].Predicate)
	assert.Equal(t, rdf.Term(rdf.IRI("http://ex.org/ctx/2")), quads[0].Object)

	// Data contexts stay untouched.
	cur, err = store.MatchTriples(ctx, rdf.Pattern{Context: rdf.IRI("http://ex.org/ctx/1")})
	require.NoError(t, err)
	data, err := rdf.CollectQuads(cur)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestLoadImportsRoundTrip(t *testing.T) {
	c1, store := newTestContext(t, "http://ex.org/ctx/1")
	c2 := NewContext("http://ex.org/ctx/2", WithStore(store))
	ctx := context.Background()

	require.NoError(t, c1.AddImport(c2))
	require.NoError(t, c1.SaveImports(ctx))

	fresh := NewContext("http://ex.org/ctx/1", WithStore(store))
	known := map[rdf.IRI]*Context{}
	require.NoError(t, fresh.LoadImports(ctx, known))

	imports := fresh.Imports()
	require.Len(t, imports, 1)
	assert.Equal(t, rdf.IRI("http://ex.org/ctx/2"), imports[0].Identifier())
}

func TestImportGovernsVisibility(t *testing.T) {
	person := testSchemas(t)
	c1, store := newTestContext(t, "http://ex.org/ctx/1")
	c2 := NewContext("http://ex.org/ctx/2", WithStore(store))
	ctx := context.Background()

	alice := c1.Bind(person.New())
	_, err := alice.Prop("name").Set("alice")
	require.NoError(t, err)
	require.NoError(t, c1.Save(ctx))

	id := alice.Identifier().(rdf.IRI)

	// Through c2, without an import, the value is invisible.
	hidden := c2.Bind(person.New(WithID(id)))
	vals, err := hidden.Prop("name").Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, vals)

	// After importing c1, it becomes visible.
	require.NoError(t, c2.AddImport(c1))
	visible := c2.Bind(person.New(WithID(id)))
	vals, err = visible.Prop("name").Get(ctx)
	require.NoError(t, err)
	require.Len(t, vals, 1)
	assert.Equal(t, "alice", vals[0])
}

func TestBindLeavesOriginalUntouched(t *testing.T) {
	person := testSchemas(t)
	c1, store := newTestContext(t, "http://ex.org/ctx/1")
	c2 := NewContext("http://ex.org/ctx/2", WithStore(store))

	alice := c1.Bind(person.New())
	_, err := alice.Prop("name").Set("alice")
	require.NoError(t, err)

	view2 := c2.Bind(alice)
	_, err = view2.Prop("name").Set("malice")
	require.NoError(t, err)

	vals := alice.Prop("name").Values()
	require.Len(t, vals, 1)
	assert.Equal(t, rdf.Term(rdf.Literal{Val: "alice", Datatype: rdf.XSDString}), vals[0].Identifier())
}

func TestNewObjectAppliesValuesAndAliases(t *testing.T) {
	s, err := NewSchema(SchemaConfig{
		Name:    "Doc",
		RDFType: "http://ex.org/Doc",
		Properties: []PropertySpec{
			{Name: "title", Kind: DatatypeKind, Aliases: []string{"heading"}},
			{Name: "heading", Kind: DatatypeKind},
		},
	})
	require.NoError(t, err)

	c, _ := newTestContext(t, "http://ex.org/ctx/1")

	doc, err := c.NewObject(s, map[string]any{"title": "On Graphs"})
	require.NoError(t, err)
	assert.True(t, doc.Prop("title").HasValue())
	assert.True(t, doc.Prop("heading").HasValue(), "alias must receive the value too")

	// Conflicting alias assignments fail.
	_, err = c.NewObject(s, map[string]any{"title": "A", "heading": "B"})
	assert.ErrorIs(t, err, ErrDuplicateAlias)

	// Agreeing alias assignments are fine.
	_, err = c.NewObject(s, map[string]any{"title": "A", "heading": "A"})
	assert.NoError(t, err)
}

func TestDeriveContextIdempotent(t *testing.T) {
	person := testSchemas(t)
	c, _ := newTestContext(t, "http://ex.org/ctx/1")

	maker := c.Bind(person.New())
	_, err := maker.Prop("name").Set("alice")
	require.NoError(t, err)

	d1, err := c.DeriveContext(maker, map[string]string{"kind": "beliefs", "rev": "1"})
	require.NoError(t, err)
	d2, err := c.DeriveContext(maker, map[string]string{"rev": "1", "kind": "beliefs"})
	require.NoError(t, err)
	assert.Same(t, d1, d2, "equal parameters must yield the same derived context")

	d3, err := c.DeriveContext(maker, map[string]string{"kind": "beliefs", "rev": "2"})
	require.NoError(t, err)
	assert.NotEqual(t, d1.Identifier(), d3.Identifier())
}

func TestDeriveContextRequiresDefinedMaker(t *testing.T) {
	person := keylessSchema(t)
	c, _ := newTestContext(t, "http://ex.org/ctx/1")

	maker := c.Bind(person.New())
	_, err := c.DeriveContext(maker, nil)
	assert.ErrorIs(t, err, ErrIdentifierMissing)
}

func TestEffectiveStoreRequiresStore(t *testing.T) {
	c := NewContext("http://ex.org/ctx/bare")
	_, err := c.EffectiveStore()
	assert.ErrorIs(t, err, ErrUnboundContext)
}
