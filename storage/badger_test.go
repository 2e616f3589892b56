package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenCortex/owmeta-core/rdf"
)

func openTestBadger(t *testing.T) *BadgerStore {
	t.Helper()
	s, err := OpenBadgerStore("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBadgerStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestBadger(t)

	q := rdf.Quad{
		Subject:   rdf.IRI("http://ex.org/a"),
		Predicate: rdf.IRI("http://ex.org/p"),
		Object:    rdf.Literal{Val: "hello", Datatype: rdf.XSDString},
		Context:   rdf.IRI("http://ex.org/c"),
	}
	require.NoError(t, s.AddQuad(ctx, q))

	for name, pat := range map[string]rdf.Pattern{
		"by subject":   {Subject: rdf.IRI("http://ex.org/a")},
		"by predicate": {Predicate: rdf.IRI("http://ex.org/p")},
		"by object":    {Object: rdf.Literal{Val: "hello", Datatype: rdf.XSDString}},
		"full scan":    {},
	} {
		t.Run(name, func(t *testing.T) {
			cur, err := s.MatchTriples(ctx, pat)
			require.NoError(t, err)
			quads, err := rdf.CollectQuads(cur)
			require.NoError(t, err)
			require.Len(t, quads, 1)
			assert.Equal(t, q, quads[0])
		})
	}
}

func TestBadgerStoreRemove(t *testing.T) {
	ctx := context.Background()
	s := openTestBadger(t)

	q := rdf.Quad{
		Subject:   rdf.IRI("http://ex.org/a"),
		Predicate: rdf.IRI("http://ex.org/p"),
		Object:    rdf.IRI("http://ex.org/b"),
	}
	require.NoError(t, s.AddQuad(ctx, q))
	require.NoError(t, s.RemoveQuad(ctx, q))

	cur, err := s.MatchTriples(ctx, rdf.Pattern{})
	require.NoError(t, err)
	quads, err := rdf.CollectQuads(cur)
	require.NoError(t, err)
	assert.Empty(t, quads)
}

func TestBadgerStorePrefixSelectivity(t *testing.T) {
	ctx := context.Background()
	s := openTestBadger(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.AddQuad(ctx, rdf.Quad{
			Subject:   rdf.IRI("http://ex.org/a"),
			Predicate: rdf.IRI("http://ex.org/p"),
			Object:    rdf.Literal{Val: string(rune('x' + i)), Datatype: rdf.XSDString},
		}))
	}
	require.NoError(t, s.AddQuad(ctx, rdf.Quad{
		Subject:   rdf.IRI("http://ex.org/other"),
		Predicate: rdf.IRI("http://ex.org/p"),
		Object:    rdf.IRI("http://ex.org/b"),
	}))

	cur, err := s.MatchTriples(ctx, rdf.Pattern{
		Subject:   rdf.IRI("http://ex.org/a"),
		Predicate: rdf.IRI("http://ex.org/p"),
	})
	require.NoError(t, err)
	quads, err := rdf.CollectQuads(cur)
	require.NoError(t, err)
	assert.Len(t, quads, 3)
}
