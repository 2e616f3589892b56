package rdf

import "context"

// Store is the minimal quad-store contract required by the mapping layer.
// Implementations own their transaction boundaries; the mapping layer
// never retries a failed call.
type Store interface {
	// AddQuad asserts a quad. Adding an existing quad is a no-op.
	AddQuad(ctx context.Context, q Quad) error

	// RemoveQuad retracts a quad. Removing an absent quad is a no-op.
	RemoveQuad(ctx context.Context, q Quad) error

	// MatchTriples returns a lazy sequence of quads satisfying the
	// pattern. The cursor must be closed by the caller.
	MatchTriples(ctx context.Context, p Pattern) (Cursor, error)

	// MatchTriplesBatched returns quads matching the predicate across
	// many candidate subjects or objects at once.
	MatchTriplesBatched(ctx context.Context, p BatchPattern) (Cursor, error)
}

// Cursor iterates a sequence of quads.
type Cursor interface {
	// Next returns the next quad, or ok=false when the sequence is
	// exhausted or an error occurred.
	Next() (q Quad, ok bool)

	// Err returns the first error encountered during iteration, if any.
	Err() error

	Close() error
}

// SliceCursor adapts an in-memory slice to the Cursor interface.
// Store implementations that materialize results can return one directly.
type SliceCursor struct {
	quads []Quad
	pos   int
}

// NewSliceCursor returns a cursor over the given quads.
func NewSliceCursor(quads []Quad) *SliceCursor {
	return &SliceCursor{quads: quads}
}

// Next implements Cursor.
func (c *SliceCursor) Next() (Quad, bool) {
	if c.pos >= len(c.quads) {
		return Quad{}, false
	}
	q := c.quads[c.pos]
	c.pos++
	return q, true
}

// Err implements Cursor.
func (c *SliceCursor) Err() error { return nil }

// Close implements Cursor.
func (c *SliceCursor) Close() error { return nil }

// CollectQuads drains a cursor into a slice, closing it afterwards.
func CollectQuads(c Cursor) ([]Quad, error) {
	defer c.Close()
	var out []Quad
	for {
		q, ok := c.Next()
		if !ok {
			break
		}
		out = append(out, q)
	}
	return out, c.Err()
}

// MatchBatched emulates MatchTriplesBatched on top of MatchTriples for
// stores without a native batched lookup.
func MatchBatched(ctx context.Context, s Store, p BatchPattern) ([]Quad, error) {
	var out []Quad
	collect := func(pat Pattern) error {
		cur, err := s.MatchTriples(ctx, pat)
		if err != nil {
			return err
		}
		quads, err := CollectQuads(cur)
		if err != nil {
			return err
		}
		out = append(out, quads...)
		return nil
	}

	switch {
	case len(p.Subjects) > 0:
		for _, subj := range p.Subjects {
			pat := Pattern{Subject: subj, Predicate: p.Predicate, Context: p.Context}
			if len(p.Objects) == 1 {
				pat.Object = p.Objects[0]
			}
			if err := collect(pat); err != nil {
				return nil, err
			}
		}
	case len(p.Objects) > 0:
		for _, obj := range p.Objects {
			if err := collect(Pattern{Predicate: p.Predicate, Object: obj, Context: p.Context}); err != nil {
				return nil, err
			}
		}
	default:
		if err := collect(Pattern{Predicate: p.Predicate, Context: p.Context}); err != nil {
			return nil, err
		}
	}
	return out, nil
}
