package graph

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/OpenCortex/owmeta-core/rdf"
)

// Querier resolves a free variable embedded in one or more property
// chains against a quad store. Traversal order is decided by a pluggable
// hop scorer; evaluation order never affects the result.
type Querier struct {
	store    rdf.Store
	scorer   HopScorer
	parallel bool
	logger   *slog.Logger
}

// QuerierOption configures a Querier.
type QuerierOption func(*Querier)

// WithHopScorer replaces the default hop scorer.
func WithHopScorer(s HopScorer) QuerierOption {
	return func(q *Querier) { q.scorer = s }
}

// WithParallel enables concurrent evaluation of independent sub-patterns.
// Results are merged by set operations, so the outcome is identical to
// sequential evaluation.
func WithParallel(parallel bool) QuerierOption {
	return func(q *Querier) { q.parallel = parallel }
}

// WithLogger sets the logger used for traversal diagnostics.
func WithLogger(logger *slog.Logger) QuerierOption {
	return func(q *Querier) { q.logger = logger }
}

// NewQuerier creates a Querier over the given store.
func NewQuerier(store rdf.Store, opts ...QuerierOption) *Querier {
	q := &Querier{
		store:  store,
		scorer: DefaultHopScorer,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Resolve returns the deduplicated set of terms consistent with the
// whole pattern reachable from root. A pattern with no defined anchors
// resolves to the empty set.
func (q *Querier) Resolve(ctx context.Context, root Object) (TermSet, error) {
	start := time.Now()
	visited := map[Object]bool{root: true}
	result, constrained, err := q.resolveNode(ctx, root, visited)
	resolveDuration.Observe(time.Since(start).Seconds())
	resolveTotal.Inc()
	if err != nil {
		return nil, err
	}
	if !constrained || result == nil {
		q.logger.Debug("query pattern has no anchors", "root", fmt.Sprintf("%T", root))
		return TermSet{}, nil
	}
	return result, nil
}

// edge is one traversal step out of a node under resolution.
type edge struct {
	hop      Hop
	neighbor Object
}

func (q *Querier) collectEdges(node Object, visited map[Object]bool) []edge {
	var edges []edge
	for _, p := range node.Properties() {
		for _, v := range p.Values() {
			if visited[v] {
				continue
			}
			edges = append(edges, edge{
				hop:      Hop{Predicate: p.Link(), NeighborDefined: v.Defined()},
				neighbor: v,
			})
		}
	}
	for _, p := range node.OwnerProperties() {
		owner := p.Owner()
		if owner == nil || visited[owner] {
			continue
		}
		edges = append(edges, edge{
			hop:      Hop{Predicate: p.Link(), Inverse: true, NeighborDefined: owner.Defined()},
			neighbor: owner,
		})
	}

	sort.SliceStable(edges, func(i, j int) bool {
		si, sj := q.scorer(edges[i].hop), q.scorer(edges[j].hop)
		if si != sj {
			return si < sj
		}
		return edges[i].hop.Predicate < edges[j].hop.Predicate
	})
	return edges
}

// resolveNode computes the candidate terms for a node by intersecting the
// candidates contributed by each constraining edge. The second return is
// false when no edge constrains the node at all.
func (q *Querier) resolveNode(ctx context.Context, node Object, visited map[Object]bool) (TermSet, bool, error) {
	edges := q.collectEdges(node, visited)
	if len(edges) == 0 {
		return nil, false, nil
	}
	if q.parallel && len(edges) > 1 {
		return q.resolveNodeParallel(ctx, node, edges, visited)
	}

	var result TermSet
	constrained := false
	for _, e := range edges {
		// Sibling edges are independent sub-patterns; each walks its
		// own copy of the visited set so one branch's interior nodes
		// do not mask another branch's constraints.
		cand, ok, err := q.evalEdge(ctx, e, cloneVisited(visited))
		if err != nil {
			return nil, false, err
		}
		if !ok {
			continue
		}
		constrained = true
		if result == nil {
			result = cand
		} else {
			result = result.Intersect(cand)
		}
		if len(result) == 0 {
			break
		}
	}
	return result, constrained, nil
}

// resolveNodeParallel evaluates each edge concurrently and merges by
// intersection in a fixed order, so the result matches sequential
// evaluation exactly.
func (q *Querier) resolveNodeParallel(ctx context.Context, node Object, edges []edge, visited map[Object]bool) (TermSet, bool, error) {
	type branch struct {
		cand TermSet
		ok   bool
	}
	branches := make([]branch, len(edges))
	g, gctx := errgroup.WithContext(ctx)
	for i, e := range edges {
		g.Go(func() error {
			cand, ok, err := q.evalEdge(gctx, e, cloneVisited(visited))
			if err != nil {
				return err
			}
			branches[i] = branch{cand: cand, ok: ok}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, false, err
	}

	var result TermSet
	constrained := false
	for _, b := range branches {
		if !b.ok {
			continue
		}
		constrained = true
		if result == nil {
			result = b.cand
		} else {
			result = result.Intersect(b.cand)
		}
	}
	return result, constrained, nil
}

func cloneVisited(visited map[Object]bool) map[Object]bool {
	local := make(map[Object]bool, len(visited)+1)
	for k, v := range visited {
		local[k] = v
	}
	return local
}

// evalEdge computes the candidate terms an edge contributes to the node
// it leads away from. ok is false when the branch places no constraint
// on the node (an undefined neighbor with no constraints of its own).
func (q *Querier) evalEdge(ctx context.Context, e edge, visited map[Object]bool) (TermSet, bool, error) {
	hopsTotal.Inc()

	var neighborTerms []rdf.Term
	if e.neighbor.Defined() {
		neighborTerms = []rdf.Term{e.neighbor.Identifier()}
	} else {
		visited[e.neighbor] = true
		sub, ok, err := q.resolveNode(ctx, e.neighbor, visited)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, nil
		}
		if len(sub) == 0 {
			return TermSet{}, true, nil
		}
		neighborTerms = sub.Slice()
	}

	pattern := rdf.BatchPattern{Predicate: e.hop.Predicate}
	if e.hop.Inverse {
		// The node under resolution is the object: (neighbor, link, ?).
		pattern.Subjects = neighborTerms
	} else {
		// The node under resolution is the subject: (?, link, neighbor).
		pattern.Objects = neighborTerms
	}

	cur, err := q.store.MatchTriplesBatched(ctx, pattern)
	if err != nil {
		return nil, false, fmt.Errorf("match %s hop: %w", e.hop.Predicate, err)
	}
	quads, err := rdf.CollectQuads(cur)
	if err != nil {
		return nil, false, fmt.Errorf("collect %s hop: %w", e.hop.Predicate, err)
	}

	out := make(TermSet, len(quads))
	for _, quad := range quads {
		if e.hop.Inverse {
			out.Add(quad.Object)
		} else {
			out.Add(quad.Subject)
		}
	}
	return out, true, nil
}
