package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenCortex/owmeta-core/rdf"
)

func quad(s, p, o, c string) rdf.Quad {
	return rdf.Quad{
		Subject:   rdf.IRI(s),
		Predicate: rdf.IRI(p),
		Object:    rdf.IRI(o),
		Context:   rdf.IRI(c),
	}
}

func TestMemoryStoreAddIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	q := quad("http://ex.org/a", "http://ex.org/p", "http://ex.org/b", "http://ex.org/ctx")
	require.NoError(t, s.AddQuad(ctx, q))
	require.NoError(t, s.AddQuad(ctx, q))

	assert.Equal(t, 1, s.Len())
}

func TestMemoryStoreMatch(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.AddQuad(ctx, quad("http://ex.org/a", "http://ex.org/p", "http://ex.org/b", "http://ex.org/c1")))
	require.NoError(t, s.AddQuad(ctx, quad("http://ex.org/a", "http://ex.org/p", "http://ex.org/c", "http://ex.org/c2")))
	require.NoError(t, s.AddQuad(ctx, quad("http://ex.org/x", "http://ex.org/q", "http://ex.org/b", "http://ex.org/c1")))

	t.Run("by subject", func(t *testing.T) {
		cur, err := s.MatchTriples(ctx, rdf.Pattern{Subject: rdf.IRI("http://ex.org/a")})
		require.NoError(t, err)
		quads, err := rdf.CollectQuads(cur)
		require.NoError(t, err)
		assert.Len(t, quads, 2)
	})

	t.Run("by object and context", func(t *testing.T) {
		cur, err := s.MatchTriples(ctx, rdf.Pattern{
			Object:  rdf.IRI("http://ex.org/b"),
			Context: rdf.IRI("http://ex.org/c1"),
		})
		require.NoError(t, err)
		quads, err := rdf.CollectQuads(cur)
		require.NoError(t, err)
		assert.Len(t, quads, 2)
	})

	t.Run("wildcard", func(t *testing.T) {
		cur, err := s.MatchTriples(ctx, rdf.Pattern{})
		require.NoError(t, err)
		quads, err := rdf.CollectQuads(cur)
		require.NoError(t, err)
		assert.Len(t, quads, 3)
	})
}

func TestMemoryStoreRemove(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	q1 := quad("http://ex.org/a", "http://ex.org/p", "http://ex.org/b", "http://ex.org/c")
	q2 := quad("http://ex.org/a", "http://ex.org/p", "http://ex.org/c", "http://ex.org/c")
	require.NoError(t, s.AddQuad(ctx, q1))
	require.NoError(t, s.AddQuad(ctx, q2))

	require.NoError(t, s.RemoveQuad(ctx, q1))
	// Removing an absent quad is a no-op.
	require.NoError(t, s.RemoveQuad(ctx, q1))

	cur, err := s.MatchTriples(ctx, rdf.Pattern{})
	require.NoError(t, err)
	quads, err := rdf.CollectQuads(cur)
	require.NoError(t, err)
	require.Len(t, quads, 1)
	assert.Equal(t, q2, quads[0])
}

func TestMemoryStoreMatchBatched(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.AddQuad(ctx, quad("http://ex.org/a", "http://ex.org/p", "http://ex.org/v1", "http://ex.org/c")))
	require.NoError(t, s.AddQuad(ctx, quad("http://ex.org/b", "http://ex.org/p", "http://ex.org/v2", "http://ex.org/c")))
	require.NoError(t, s.AddQuad(ctx, quad("http://ex.org/z", "http://ex.org/p", "http://ex.org/v3", "http://ex.org/c")))

	cur, err := s.MatchTriplesBatched(ctx, rdf.BatchPattern{
		Subjects:  []rdf.Term{rdf.IRI("http://ex.org/a"), rdf.IRI("http://ex.org/b")},
		Predicate: rdf.IRI("http://ex.org/p"),
	})
	require.NoError(t, err)
	quads, err := rdf.CollectQuads(cur)
	require.NoError(t, err)
	assert.Len(t, quads, 2)
}

func TestQuadCodecRoundTrip(t *testing.T) {
	q := rdf.Quad{
		Subject:   rdf.IRI("http://ex.org/a"),
		Predicate: rdf.IRI("http://ex.org/p"),
		Object:    rdf.Literal{Val: "42", Datatype: rdf.XSDInteger},
		Context:   rdf.IRI("http://ex.org/c"),
	}
	data, err := MarshalQuad(q)
	require.NoError(t, err)

	got, err := UnmarshalQuad(data)
	require.NoError(t, err)
	assert.Equal(t, q, got)
}

func TestQuadKeyDistinguishesTermKinds(t *testing.T) {
	iriObj := rdf.Quad{
		Subject:   rdf.IRI("http://ex.org/a"),
		Predicate: rdf.IRI("http://ex.org/p"),
		Object:    rdf.IRI("hello"),
	}
	litObj := rdf.Quad{
		Subject:   rdf.IRI("http://ex.org/a"),
		Predicate: rdf.IRI("http://ex.org/p"),
		Object:    rdf.Literal{Val: "hello", Datatype: rdf.XSDString},
	}
	assert.NotEqual(t, quadKey(iriObj), quadKey(litObj))
	assert.Equal(t, quadKey(iriObj), quadKey(iriObj))
}
