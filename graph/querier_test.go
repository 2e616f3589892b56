package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenCortex/owmeta-core/rdf"
	"github.com/OpenCortex/owmeta-core/storage"
)

// fakeObject is a minimal Object for driving the resolver in tests.
type fakeObject struct {
	id     rdf.Term
	props  []Property
	owners []Property
}

func (f *fakeObject) Identifier() rdf.Term        { return f.id }
func (f *fakeObject) Defined() bool               { return f.id != nil }
func (f *fakeObject) Properties() []Property      { return f.props }
func (f *fakeObject) OwnerProperties() []Property { return f.owners }

type fakeProp struct {
	link   rdf.IRI
	owner  Object
	values []Object
}

func (f *fakeProp) Link() rdf.IRI    { return f.link }
func (f *fakeProp) Owner() Object    { return f.owner }
func (f *fakeProp) Values() []Object { return f.values }

func literalObj(s string) *fakeObject {
	return &fakeObject{id: rdf.Literal{Val: s, Datatype: rdf.XSDString}}
}

const (
	nameLink   = rdf.IRI("http://ex.org/name")
	friendLink = rdf.IRI("http://ex.org/friend")
)

func populate(t *testing.T, s rdf.Store) {
	t.Helper()
	ctx := context.Background()
	quads := []rdf.Quad{
		{Subject: rdf.IRI("http://ex.org/bob1"), Predicate: nameLink, Object: rdf.Literal{Val: "Bob", Datatype: rdf.XSDString}},
		{Subject: rdf.IRI("http://ex.org/bob1"), Predicate: friendLink, Object: rdf.IRI("http://ex.org/carol")},
		{Subject: rdf.IRI("http://ex.org/bob2"), Predicate: nameLink, Object: rdf.Literal{Val: "Bob", Datatype: rdf.XSDString}},
		{Subject: rdf.IRI("http://ex.org/bob2"), Predicate: friendLink, Object: rdf.IRI("http://ex.org/dave")},
		{Subject: rdf.IRI("http://ex.org/eve"), Predicate: nameLink, Object: rdf.Literal{Val: "Eve", Datatype: rdf.XSDString}},
		{Subject: rdf.IRI("http://ex.org/eve"), Predicate: friendLink, Object: rdf.IRI("http://ex.org/frank")},
	}
	for _, q := range quads {
		require.NoError(t, s.AddQuad(ctx, q))
	}
}

// queryByExample builds the pattern: an undefined person whose name is
// "Bob", with a free variable in the friend position.
func queryByExample() *Variable {
	person := &fakeObject{}
	nameProp := &fakeProp{link: nameLink, owner: person, values: []Object{literalObj("Bob")}}
	v := NewVariable()
	friendProp := &fakeProp{link: friendLink, owner: person, values: []Object{v}}
	person.props = []Property{nameProp, friendProp}
	v.BindOwner(friendProp)
	return v
}

func TestResolveQueryByExample(t *testing.T) {
	store := storage.NewMemoryStore()
	populate(t, store)

	q := NewQuerier(store)
	result, err := q.Resolve(context.Background(), queryByExample())
	require.NoError(t, err)

	assert.Len(t, result, 2)
	assert.True(t, result.Contains(rdf.IRI("http://ex.org/carol")))
	assert.True(t, result.Contains(rdf.IRI("http://ex.org/dave")))
	assert.False(t, result.Contains(rdf.IRI("http://ex.org/frank")))
}

func TestResolveParallelMatchesSequential(t *testing.T) {
	store := storage.NewMemoryStore()
	populate(t, store)

	seq, err := NewQuerier(store).Resolve(context.Background(), queryByExample())
	require.NoError(t, err)

	par, err := NewQuerier(store, WithParallel(true)).Resolve(context.Background(), queryByExample())
	require.NoError(t, err)

	assert.Equal(t, seq, par)
}

func TestResolveUnconstrainedVariable(t *testing.T) {
	store := storage.NewMemoryStore()
	populate(t, store)

	// A variable with no defined anchors anywhere in its pattern.
	person := &fakeObject{}
	v := NewVariable()
	friendProp := &fakeProp{link: friendLink, owner: person, values: []Object{v}}
	person.props = []Property{friendProp}
	v.BindOwner(friendProp)

	result, err := NewQuerier(store).Resolve(context.Background(), v)
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestResolveDirectValueConstraint(t *testing.T) {
	store := storage.NewMemoryStore()
	populate(t, store)

	// The root holds a defined value: (?, friend, carol).
	root := &fakeObject{}
	prop := &fakeProp{link: friendLink, owner: root, values: []Object{
		&fakeObject{id: rdf.IRI("http://ex.org/carol")},
	}}
	root.props = []Property{prop}

	result, err := NewQuerier(store).Resolve(context.Background(), root)
	require.NoError(t, err)
	assert.Len(t, result, 1)
	assert.True(t, result.Contains(rdf.IRI("http://ex.org/bob1")))
}

// diamondPattern builds an undefined root with two paths that reconverge
// on a shared interior node anchored by a literal:
// root -p1-> a -p3-> c, root -p2-> b -p4-> c, c -p5-> "d".
func diamondPattern() *fakeObject {
	root := &fakeObject{}
	a := &fakeObject{}
	b := &fakeObject{}
	c := &fakeObject{}

	p1 := &fakeProp{link: "http://ex.org/p1", owner: root, values: []Object{a}}
	p2 := &fakeProp{link: "http://ex.org/p2", owner: root, values: []Object{b}}
	p3 := &fakeProp{link: "http://ex.org/p3", owner: a, values: []Object{c}}
	p4 := &fakeProp{link: "http://ex.org/p4", owner: b, values: []Object{c}}
	p5 := &fakeProp{link: "http://ex.org/p5", owner: c, values: []Object{literalObj("d")}}

	root.props = []Property{p1, p2}
	a.props = []Property{p3}
	a.owners = []Property{p1}
	b.props = []Property{p4}
	b.owners = []Property{p2}
	c.props = []Property{p5}
	c.owners = []Property{p3, p4}
	return root
}

func TestResolveDiamondPattern(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()

	// v1 satisfies both arms of the diamond, v2 only the p1 arm.
	quads := []rdf.Quad{
		{Subject: rdf.IRI("http://ex.org/v1"), Predicate: "http://ex.org/p1", Object: rdf.IRI("http://ex.org/a1")},
		{Subject: rdf.IRI("http://ex.org/a1"), Predicate: "http://ex.org/p3", Object: rdf.IRI("http://ex.org/c1")},
		{Subject: rdf.IRI("http://ex.org/v1"), Predicate: "http://ex.org/p2", Object: rdf.IRI("http://ex.org/b1")},
		{Subject: rdf.IRI("http://ex.org/b1"), Predicate: "http://ex.org/p4", Object: rdf.IRI("http://ex.org/c1")},
		{Subject: rdf.IRI("http://ex.org/c1"), Predicate: "http://ex.org/p5", Object: rdf.Literal{Val: "d", Datatype: rdf.XSDString}},
		{Subject: rdf.IRI("http://ex.org/v2"), Predicate: "http://ex.org/p1", Object: rdf.IRI("http://ex.org/a2")},
		{Subject: rdf.IRI("http://ex.org/a2"), Predicate: "http://ex.org/p3", Object: rdf.IRI("http://ex.org/c2")},
		{Subject: rdf.IRI("http://ex.org/c2"), Predicate: "http://ex.org/p5", Object: rdf.Literal{Val: "d", Datatype: rdf.XSDString}},
	}
	for _, q := range quads {
		require.NoError(t, store.AddQuad(ctx, q))
	}

	// Both arms must constrain the root: v2 matches only one arm and is
	// excluded.
	seq, err := NewQuerier(store).Resolve(ctx, diamondPattern())
	require.NoError(t, err)
	assert.Len(t, seq, 1)
	assert.True(t, seq.Contains(rdf.IRI("http://ex.org/v1")))

	par, err := NewQuerier(store, WithParallel(true)).Resolve(ctx, diamondPattern())
	require.NoError(t, err)
	assert.Equal(t, seq, par)
}

func TestHopScorerOrdersTypeLast(t *testing.T) {
	typeHop := Hop{Predicate: "http://www.w3.org/1999/02/22-rdf-syntax-ns#type", NeighborDefined: true}
	plainHop := Hop{Predicate: nameLink, NeighborDefined: true}
	assert.Greater(t, DefaultHopScorer(typeHop), DefaultHopScorer(plainHop))

	undefined := Hop{Predicate: nameLink}
	assert.Greater(t, DefaultHopScorer(undefined), DefaultHopScorer(plainHop))
}
