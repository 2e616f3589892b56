package graph

import (
	"context"
	"fmt"

	"github.com/OpenCortex/owmeta-core/rdf"
	"github.com/OpenCortex/owmeta-core/vocabulary/rdfns"
)

// ClosureDirection selects which way closure edges are followed.
type ClosureDirection int

const (
	// Down follows closure edges from subject to object.
	Down ClosureDirection = iota
	// Up follows closure edges from object to subject.
	Up
)

// ClosurePosition selects which pattern field the closure expands.
type ClosurePosition int

const (
	// ObjectPosition expands the pattern's object term.
	ObjectPosition ClosurePosition = iota
	// PredicatePosition expands the pattern's predicate term.
	PredicatePosition
)

// ZeroOrMore rewrites a single triple-pattern lookup into a closure over
// zero-or-more hops along Predicate, starting from Identifier.
type ZeroOrMore struct {
	Identifier rdf.Term
	Predicate  rdf.IRI
	Direction  ClosureDirection
	Position   ClosurePosition
}

// SubClassClosure matches instances of a type and all its registered
// subtypes: a pattern (?, rdf:type, T) also matches entities typed with
// any T' reachable via rdfs:subClassOf* up to T.
func SubClassClosure(rdfType rdf.Term) *ZeroOrMore {
	return &ZeroOrMore{
		Identifier: rdfType,
		Predicate:  rdfns.SubClassOf,
		Direction:  Up,
		Position:   ObjectPosition,
	}
}

// SubPropertyClosure matches a predicate and everything declared a
// specialization of it via rdfs:subPropertyOf.
func SubPropertyClosure(predicate rdf.Term) *ZeroOrMore {
	return &ZeroOrMore{
		Identifier: predicate,
		Predicate:  rdfns.SubPropertyOf,
		Direction:  Up,
		Position:   PredicatePosition,
	}
}

// ClosureModifier inspects a pattern and, when the pattern warrants
// transitive matching, returns the closure to apply. Returning nil leaves
// the pattern untouched.
type ClosureModifier func(p rdf.Pattern) *ZeroOrMore

// ZeroOrMoreLayer is a store decorator applying a ClosureModifier to
// every pattern lookup. Visited-term deduplication guarantees termination
// even over cyclic underlying data.
type ZeroOrMoreLayer struct {
	base     rdf.Store
	modifier ClosureModifier
}

// NewZeroOrMoreLayer wraps base with the given modifier.
func NewZeroOrMoreLayer(base rdf.Store, modifier ClosureModifier) *ZeroOrMoreLayer {
	return &ZeroOrMoreLayer{base: base, modifier: modifier}
}

// AddQuad implements rdf.Store by delegating to the base store.
func (z *ZeroOrMoreLayer) AddQuad(ctx context.Context, q rdf.Quad) error {
	return z.base.AddQuad(ctx, q)
}

// RemoveQuad implements rdf.Store by delegating to the base store.
func (z *ZeroOrMoreLayer) RemoveQuad(ctx context.Context, q rdf.Quad) error {
	return z.base.RemoveQuad(ctx, q)
}

// MatchTriples implements rdf.Store. When the modifier flags the pattern,
// the flagged field is expanded to the closure set before matching.
func (z *ZeroOrMoreLayer) MatchTriples(ctx context.Context, p rdf.Pattern) (rdf.Cursor, error) {
	zom := z.modifier(p)
	if zom == nil {
		return z.base.MatchTriples(ctx, p)
	}

	closure, err := z.closure(ctx, zom)
	if err != nil {
		return nil, err
	}

	seen := make(map[rdf.Quad]struct{})
	var out []rdf.Quad
	for _, term := range closure {
		expanded := p
		switch zom.Position {
		case ObjectPosition:
			expanded.Object = term
		case PredicatePosition:
			expanded.Predicate = term
		}
		cur, err := z.base.MatchTriples(ctx, expanded)
		if err != nil {
			return nil, err
		}
		quads, err := rdf.CollectQuads(cur)
		if err != nil {
			return nil, err
		}
		for _, q := range quads {
			if _, dup := seen[q]; dup {
				continue
			}
			seen[q] = struct{}{}
			out = append(out, q)
		}
	}
	return rdf.NewSliceCursor(out), nil
}

// MatchTriplesBatched implements rdf.Store. Batched lookups are expanded
// through MatchTriples so the closure applies uniformly.
func (z *ZeroOrMoreLayer) MatchTriplesBatched(ctx context.Context, p rdf.BatchPattern) (rdf.Cursor, error) {
	quads, err := rdf.MatchBatched(ctx, z, p)
	if err != nil {
		return nil, err
	}
	return rdf.NewSliceCursor(quads), nil
}

// closure computes the zero-or-more closure from the starting identifier,
// breadth-first with visited deduplication.
func (z *ZeroOrMoreLayer) closure(ctx context.Context, zom *ZeroOrMore) ([]rdf.Term, error) {
	visited := map[rdf.Term]struct{}{zom.Identifier: {}}
	order := []rdf.Term{zom.Identifier}
	frontier := []rdf.Term{zom.Identifier}

	for len(frontier) > 0 {
		var next []rdf.Term
		for _, term := range frontier {
			pat := rdf.Pattern{Predicate: zom.Predicate}
			if zom.Direction == Up {
				pat.Object = term
			} else {
				pat.Subject = term
			}
			cur, err := z.base.MatchTriples(ctx, pat)
			if err != nil {
				return nil, fmt.Errorf("closure over %s: %w", zom.Predicate, err)
			}
			quads, err := rdf.CollectQuads(cur)
			if err != nil {
				return nil, fmt.Errorf("closure over %s: %w", zom.Predicate, err)
			}
			for _, q := range quads {
				var hop rdf.Term
				if zom.Direction == Up {
					hop = q.Subject
				} else {
					hop = q.Object
				}
				if _, seen := visited[hop]; seen {
					continue
				}
				visited[hop] = struct{}{}
				order = append(order, hop)
				next = append(next, hop)
			}
		}
		frontier = next
	}
	return order, nil
}
