package graph

import (
	"github.com/OpenCortex/owmeta-core/rdf"
	"github.com/OpenCortex/owmeta-core/vocabulary/rdfns"
)

// Hop is one candidate traversal step considered by the resolver: follow
// Predicate from the node being resolved toward a neighboring node.
// Inverse is true when the node being resolved sits in the object
// position of the underlying triple.
type Hop struct {
	Predicate rdf.IRI

	// Inverse indicates the triple reads (neighbor, Predicate, node)
	// rather than (node, Predicate, neighbor).
	Inverse bool

	// NeighborDefined is true when the far end of the hop already has an
	// identifier, making the hop a direct pattern lookup.
	NeighborDefined bool
}

// HopScorer estimates the relative cost of a hop. Lower scores are
// evaluated first. This is a heuristic, not a statistics-driven
// optimizer; callers may substitute scorers tuned to their workloads.
type HopScorer func(h Hop) int

// DefaultHopScorer ranks rdf:type hops after everything else, since type
// triples tend to have the largest fan-out, and prefers hops anchored on
// an already-defined neighbor.
func DefaultHopScorer(h Hop) int {
	score := 0
	if h.Predicate == rdfns.Type {
		score += 2
	}
	if !h.NeighborDefined {
		score++
	}
	return score
}
