package object

import (
	"context"
	"fmt"
	"sort"

	"github.com/OpenCortex/owmeta-core/rdf"
)

type subExprKey struct {
	kind string // "name" or "link"
	key  string
}

// Expr is a lazily-evaluated, cached path expression over one or more
// properties. Terms and triples are materialized once per expression and
// reused; sub-expressions share their parent's materialized terms.
type Expr struct {
	prop   *Property // set on root expressions
	parent *Expr     // set on traversal sub-expressions
	specs  []*PropertySpec
	combos []*Expr // set on union expressions

	terms   []rdf.Term
	triples []rdf.Quad
	ready   bool

	subs map[subExprKey]*Expr
}

func newRootExpr(p *Property) *Expr {
	return &Expr{prop: p, subs: make(map[subExprKey]*Expr)}
}

// rootProps returns every property the expression draws from, traversing
// union provenance.
func (e *Expr) rootProps() []*Property {
	if e.combos != nil {
		var out []*Property
		for _, c := range e.combos {
			out = append(out, c.rootProps()...)
		}
		return out
	}
	if e.prop != nil {
		return []*Property{e.prop}
	}
	return e.parent.rootProps()
}

// valueSchemas returns the declared value types reachable at this point
// of the path.
func (e *Expr) valueSchemas() []*Schema {
	if e.combos != nil {
		var out []*Schema
		for _, c := range e.combos {
			out = append(out, c.valueSchemas()...)
		}
		return out
	}
	if e.prop != nil {
		if e.prop.spec.ValueSchema != nil {
			return []*Schema{e.prop.spec.ValueSchema}
		}
		return nil
	}
	var out []*Schema
	for _, spec := range e.specs {
		if spec.ValueSchema != nil {
			out = append(out, spec.ValueSchema)
		}
	}
	return out
}

// Or unions two expressions. Already-materialized sides contribute their
// cached terms and triples without re-querying.
func (e *Expr) Or(other *Expr) *Expr {
	u := &Expr{combos: []*Expr{e, other}, subs: make(map[subExprKey]*Expr)}
	if e.ready && other.ready {
		u.terms = unionTerms(e.terms, other.terms)
		u.triples = append(append([]rdf.Quad(nil), e.triples...), other.triples...)
		u.ready = true
	}
	return u
}

// Sub resolves a traversal one hop deeper, following the property with
// the given attribute name on each value type reachable from this
// expression. The result is cached per name.
func (e *Expr) Sub(name string) (*Expr, error) {
	key := subExprKey{kind: "name", key: name}
	if sub, ok := e.subs[key]; ok {
		return sub, nil
	}
	var specs []*PropertySpec
	for _, vs := range e.valueSchemas() {
		if spec := vs.Spec(name); spec != nil {
			specs = append(specs, spec)
		}
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("no value type declares property %q: %w", name, ErrInvalidValue)
	}
	sub := &Expr{parent: e, specs: specs, subs: make(map[subExprKey]*Expr)}
	e.subs[key] = sub
	return sub, nil
}

// SubByLink resolves a traversal one hop deeper along the given
// predicate, regardless of attribute naming on the value types.
func (e *Expr) SubByLink(link rdf.IRI) (*Expr, error) {
	key := subExprKey{kind: "link", key: string(link)}
	if sub, ok := e.subs[key]; ok {
		return sub, nil
	}
	var specs []*PropertySpec
	for _, vs := range e.valueSchemas() {
		for _, spec := range vs.Specs() {
			if spec.Link == link {
				specs = append(specs, spec)
			}
		}
	}
	if len(specs) == 0 {
		// Predicate traversal does not require a declared spec; follow
		// the raw link from whatever terms the parent produced.
		specs = []*PropertySpec{{Name: string(link), Link: link, Kind: ObjectKind}}
	}
	sub := &Expr{parent: e, specs: specs, subs: make(map[subExprKey]*Expr)}
	e.subs[key] = sub
	return sub, nil
}

func unionTerms(a, b []rdf.Term) []rdf.Term {
	seen := make(map[rdf.Term]struct{}, len(a)+len(b))
	var out []rdf.Term
	for _, t := range a {
		if _, ok := seen[t]; !ok {
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	for _, t := range b {
		if _, ok := seen[t]; !ok {
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

func (e *Expr) materialize(ctx context.Context) error {
	if e.ready {
		return nil
	}
	switch {
	case e.combos != nil:
		for _, c := range e.combos {
			if err := c.materialize(ctx); err != nil {
				return err
			}
		}
		e.terms = nil
		e.triples = nil
		for _, c := range e.combos {
			e.terms = unionTerms(e.terms, c.terms)
			e.triples = append(e.triples, c.triples...)
		}
	case e.prop != nil:
		set, err := e.prop.GetTerms(ctx)
		if err != nil {
			return err
		}
		terms := set.Slice()
		sortTerms(terms)
		e.terms = terms
		if e.prop.owner.Defined() {
			subj := e.prop.owner.Identifier()
			for _, t := range e.terms {
				e.triples = append(e.triples, rdf.Quad{Subject: subj, Predicate: e.prop.Link(), Object: t})
			}
		}
	default:
		if err := e.parent.materialize(ctx); err != nil {
			return err
		}
		if err := e.traverse(ctx); err != nil {
			return err
		}
	}
	e.ready = true
	return nil
}

// traverse fetches the next hop of the path with one batched lookup per
// distinct predicate.
func (e *Expr) traverse(ctx context.Context) error {
	roots := e.rootProps()
	if len(roots) == 0 {
		return fmt.Errorf("expression has no source property: %w", ErrInvalidValue)
	}
	store, err := roots[0].queryStore()
	if err != nil {
		return err
	}

	links := make(map[rdf.IRI]struct{})
	for _, spec := range e.specs {
		links[spec.Link] = struct{}{}
	}
	ordered := make([]rdf.IRI, 0, len(links))
	for link := range links {
		ordered = append(ordered, link)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	seen := make(map[rdf.Term]struct{})
	for _, link := range ordered {
		cur, err := store.MatchTriplesBatched(ctx, rdf.BatchPattern{
			Subjects:  e.parent.terms,
			Predicate: link,
		})
		if err != nil {
			return err
		}
		quads, err := rdf.CollectQuads(cur)
		if err != nil {
			return err
		}
		for _, q := range quads {
			e.triples = append(e.triples, q)
			if _, ok := seen[q.Object]; !ok {
				seen[q.Object] = struct{}{}
				e.terms = append(e.terms, q.Object)
			}
		}
	}
	return nil
}

// Terms returns the deduplicated object-side terms the expression
// produces, memoized after the first call.
func (e *Expr) Terms(ctx context.Context) ([]rdf.Term, error) {
	if err := e.materialize(ctx); err != nil {
		return nil, err
	}
	return append([]rdf.Term(nil), e.terms...), nil
}

// ToDict materializes the expression as subject to object(s). With
// multiple false, a subject carrying more than one distinct value fails
// with ErrMultiValueConflict.
func (e *Expr) ToDict(ctx context.Context, multiple bool) (map[rdf.Term]any, error) {
	if err := e.materialize(ctx); err != nil {
		return nil, err
	}
	out := make(map[rdf.Term]any)
	for _, q := range e.triples {
		existing, ok := out[q.Subject]
		if !multiple {
			if ok && existing != q.Object {
				return nil, fmt.Errorf("subject %s has multiple values: %w", q.Subject.Value(), ErrMultiValueConflict)
			}
			out[q.Subject] = q.Object
			continue
		}
		var values []rdf.Term
		if ok {
			values = existing.([]rdf.Term)
		}
		if !containsTerm(values, q.Object) {
			out[q.Subject] = append(values, q.Object)
		}
	}
	return out, nil
}

func containsTerm(terms []rdf.Term, t rdf.Term) bool {
	for _, existing := range terms {
		if existing == t {
			return true
		}
	}
	return false
}

// ToObjects wraps each produced term in a read-only traversal object.
func (e *Expr) ToObjects(ctx context.Context) ([]*ExprResultObj, error) {
	if err := e.materialize(ctx); err != nil {
		return nil, err
	}
	out := make([]*ExprResultObj, 0, len(e.terms))
	for _, t := range e.terms {
		out = append(out, &ExprResultObj{term: t, expr: e})
	}
	return out, nil
}

func sortTerms(terms []rdf.Term) {
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Kind() != terms[j].Kind() {
			return terms[i].Kind() < terms[j].Kind()
		}
		return terms[i].Value() < terms[j].Value()
	})
}

// ExprResultObj is a read-only view over one term produced by a path
// expression. Sub-expressions registered on the producing expression can
// be re-resolved per term, recursing into nested results.
type ExprResultObj struct {
	term rdf.Term
	expr *Expr
}

// Term returns the wrapped term.
func (r *ExprResultObj) Term() rdf.Term { return r.term }

// Sub returns this term's values for the named sub-property, wrapped for
// further traversal.
func (r *ExprResultObj) Sub(ctx context.Context, name string) ([]*ExprResultObj, error) {
	sub, err := r.expr.Sub(name)
	if err != nil {
		return nil, err
	}
	return r.resolve(ctx, sub)
}

// SubByLink returns this term's values along the given predicate.
func (r *ExprResultObj) SubByLink(ctx context.Context, link rdf.IRI) ([]*ExprResultObj, error) {
	sub, err := r.expr.SubByLink(link)
	if err != nil {
		return nil, err
	}
	return r.resolve(ctx, sub)
}

func (r *ExprResultObj) resolve(ctx context.Context, sub *Expr) ([]*ExprResultObj, error) {
	if err := sub.materialize(ctx); err != nil {
		return nil, err
	}
	var out []*ExprResultObj
	for _, q := range sub.triples {
		if q.Subject == r.term {
			out = append(out, &ExprResultObj{term: q.Object, expr: sub})
		}
	}
	return out, nil
}
