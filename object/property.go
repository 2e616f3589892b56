package object

import (
	"context"
	"fmt"
	"reflect"

	"github.com/OpenCortex/owmeta-core/graph"
	"github.com/OpenCortex/owmeta-core/rdf"
	"github.com/OpenCortex/owmeta-core/vocabulary/rdfns"
)

// propertyState holds the statements of one property across every
// context. Views over the same instance share it.
type propertyState struct {
	statements []*Statement
}

// Property is a class-declared, instance-bound relation with Query and
// Update forms: Set stages a statement in the bound context, Get queries
// the context's effective graph. A property view sees exactly the
// statements whose context equals its bound context.
type Property struct {
	spec    *PropertySpec
	state   *propertyState
	owner   *DataObject
	context *Context
	expr    *Expr
}

// Spec returns the property's declaration.
func (p *Property) Spec() *PropertySpec { return p.spec }

// Link implements graph.Property.
func (p *Property) Link() rdf.IRI { return p.spec.Link }

// Owner implements graph.Property.
func (p *Property) Owner() graph.Object { return p.owner }

// Values implements graph.Property: the objects of every statement
// visible in the bound context.
func (p *Property) Values() []graph.Object {
	var out []graph.Object
	for _, st := range p.state.statements {
		if sameContext(st.Context, p.context) {
			out = append(out, st.Object)
		}
	}
	return out
}

// DefinedValues returns the visible values that already have an
// identifier.
func (p *Property) DefinedValues() []graph.Object {
	var out []graph.Object
	for _, v := range p.Values() {
		if v.Defined() {
			out = append(out, v)
		}
	}
	return out
}

// HasValue reports whether any statement is visible in the bound
// context.
func (p *Property) HasValue() bool { return len(p.Values()) > 0 }

// HasDefinedValue reports whether any visible value is defined.
func (p *Property) HasDefinedValue() bool { return len(p.DefinedValues()) > 0 }

// Set stages a value in the bound context and returns the resulting
// statement. Nil values fail with ErrInvalidValue; object-valued
// properties reject non-graph-object values with ErrTypeMismatch. When
// the property is single-valued, prior values in the bound context are
// cleared first.
func (p *Property) Set(v any) (*Statement, error) {
	if v == nil {
		return nil, fmt.Errorf("set %s: %w", p.spec.Name, ErrInvalidValue)
	}
	obj, err := p.coerce(v)
	if err != nil {
		return nil, fmt.Errorf("set %s: %w", p.spec.Name, err)
	}
	if !p.spec.Multiple {
		p.clearContext()
	}
	return p.insert(obj), nil
}

// coerce wraps bare scalars into graph-aware value holders.
func (p *Property) coerce(v any) (graph.Object, error) {
	if obj, ok := v.(graph.Object); ok {
		return obj, nil
	}
	if p.spec.Kind == ObjectKind {
		return nil, fmt.Errorf("got %T: %w", v, ErrTypeMismatch)
	}
	return NewPropertyValue(v)
}

// insert appends a statement for the value in the bound context,
// deduplicating against value-identical statements.
func (p *Property) insert(v graph.Object) *Statement {
	stmt := &Statement{Subject: p.owner, Property: p, Object: v, Context: p.context}
	for _, existing := range p.state.statements {
		if existing.Equal(stmt) {
			return existing
		}
	}
	p.state.statements = append(p.state.statements, stmt)
	if tracker, ok := v.(ownerTracker); ok {
		tracker.BindOwner(p)
	}
	if p.context != nil {
		p.context.addStatement(stmt)
	}
	return stmt
}

// removeStatement drops one statement, unbinding the value's owner index
// and unstaging it from its context.
func (p *Property) removeStatement(stmt *Statement) {
	for i, existing := range p.state.statements {
		if existing == stmt {
			p.state.statements = append(p.state.statements[:i], p.state.statements[i+1:]...)
			break
		}
	}
	if tracker, ok := stmt.Object.(ownerTracker); ok {
		tracker.UnbindOwner(p)
	}
	if stmt.Context != nil {
		stmt.Context.removeStatement(stmt)
	}
}

// clearContext removes every statement visible in the bound context.
func (p *Property) clearContext() {
	visible := make([]*Statement, 0)
	for _, st := range p.state.statements {
		if sameContext(st.Context, p.context) {
			visible = append(visible, st)
		}
	}
	for _, st := range visible {
		p.removeStatement(st)
	}
}

// Clear removes the property's statements in all contexts. This is a
// global reset, not a context-scoped one.
func (p *Property) Clear() {
	all := append([]*Statement(nil), p.state.statements...)
	for _, st := range all {
		p.removeStatement(st)
	}
}

// Unset removes one value from the bound context.
func (p *Property) Unset(v any) error {
	if v == nil {
		return fmt.Errorf("unset %s: %w", p.spec.Name, ErrInvalidValue)
	}
	obj, err := p.coerce(v)
	if err != nil {
		return fmt.Errorf("unset %s: %w", p.spec.Name, err)
	}
	probe := &Statement{Subject: p.owner, Property: p, Object: obj, Context: p.context}
	for _, st := range p.state.statements {
		if sameContext(st.Context, p.context) && st.Equal(probe) {
			p.removeStatement(st)
			return nil
		}
	}
	return fmt.Errorf("unset %s: value %v is not set", p.spec.Name, v)
}

// Statements returns the staged statements visible in the bound context.
func (p *Property) Statements() []*Statement {
	var out []*Statement
	for _, st := range p.state.statements {
		if sameContext(st.Context, p.context) {
			out = append(out, st)
		}
	}
	return out
}

// queryStore builds the store view Get queries: the context's effective
// graph, wrapped in a subtype-closure layer when the declared value type
// requests subtype matching.
func (p *Property) queryStore() (rdf.Store, error) {
	if p.context == nil {
		return nil, fmt.Errorf("property %s: %w", p.spec.Name, ErrUnboundContext)
	}
	store, err := p.context.EffectiveStore()
	if err != nil {
		return nil, err
	}
	if p.spec.SubtypeMatch && p.spec.ValueRDFType != "" {
		valueType := p.spec.ValueRDFType
		store = graph.NewZeroOrMoreLayer(store, func(pat rdf.Pattern) *graph.ZeroOrMore {
			if pat.Predicate == rdf.Term(rdfns.Type) && pat.Object == rdf.Term(valueType) {
				return graph.SubClassClosure(pat.Object)
			}
			return nil
		})
	}
	return store, nil
}

// GetTerms resolves the property query to raw terms. When the owner is
// defined this is a direct pattern lookup; otherwise a placeholder
// variable is inserted, the owner's full property graph is submitted to
// the querier, and the placeholder is removed again.
func (p *Property) GetTerms(ctx context.Context) (graph.TermSet, error) {
	store, err := p.queryStore()
	if err != nil {
		return nil, err
	}

	if p.owner.Defined() {
		cur, err := store.MatchTriples(ctx, rdf.Pattern{
			Subject:   p.owner.Identifier(),
			Predicate: p.spec.Link,
		})
		if err != nil {
			return nil, fmt.Errorf("get %s: %w", p.spec.Name, err)
		}
		quads, err := rdf.CollectQuads(cur)
		if err != nil {
			return nil, fmt.Errorf("get %s: %w", p.spec.Name, err)
		}
		results := make(graph.TermSet, len(quads))
		for _, q := range quads {
			results.Add(q.Object)
		}
		return results, nil
	}

	v := graph.NewVariable()
	stmt := p.insert(v)
	defer p.removeStatement(stmt)

	querier := graph.NewQuerier(store, p.context.querierOptions()...)
	results, err := querier.Resolve(ctx, v)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", p.spec.Name, err)
	}
	return results, nil
}

// Get resolves and materializes the property's values: native scalars
// for datatype properties, typed instances for object properties, and a
// mixture for union properties. Staged defined values in the bound
// context are included.
func (p *Property) Get(ctx context.Context) ([]any, error) {
	terms, err := p.GetTerms(ctx)
	if err != nil {
		return nil, err
	}

	staged := p.DefinedValues()
	switch p.spec.Kind {
	case DatatypeKind:
		return p.materializeData(terms, staged)
	case ObjectKind:
		return p.materializeObjects(ctx, terms, staged)
	default:
		var stagedData, stagedObjs []graph.Object
		for _, v := range staged {
			if v.Identifier().Kind() == rdf.KindLiteral {
				stagedData = append(stagedData, v)
			} else {
				stagedObjs = append(stagedObjs, v)
			}
		}
		data, err := p.materializeData(literalsOnly(terms), stagedData)
		if err != nil {
			return nil, err
		}
		objs, err := p.materializeObjects(ctx, nonLiteralsOnly(terms), stagedObjs)
		if err != nil {
			return nil, err
		}
		return append(data, objs...), nil
	}
}

// materializeData deserializes literal terms to native values. Decoded
// values that cannot serve as map keys are kept in a side list instead
// of being dropped by deduplication.
func (p *Property) materializeData(terms graph.TermSet, staged []graph.Object) ([]any, error) {
	var out []any
	var side []any
	seen := make(map[any]struct{})

	add := func(v any) {
		if !comparableValue(v) {
			side = append(side, v)
			return
		}
		if _, dup := seen[v]; dup {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	decode := func(t rdf.Term) error {
		lit, ok := t.(rdf.Literal)
		if !ok {
			add(t)
			return nil
		}
		v, err := lit.Native()
		if err != nil {
			return fmt.Errorf("get %s: %w", p.spec.Name, err)
		}
		add(v)
		return nil
	}

	for t := range terms {
		if err := decode(t); err != nil {
			return nil, err
		}
	}
	for _, v := range staged {
		if err := decode(v.Identifier()); err != nil {
			return nil, err
		}
	}
	return append(out, side...), nil
}

// materializeObjects resolves identifier terms into typed instances via
// the context's mapper, preceded by the staged defined values.
func (p *Property) materializeObjects(ctx context.Context, terms graph.TermSet, staged []graph.Object) ([]any, error) {
	var out []any
	seen := make(map[rdf.Term]struct{})
	for _, v := range staged {
		if _, dup := seen[v.Identifier()]; dup {
			continue
		}
		seen[v.Identifier()] = struct{}{}
		out = append(out, v)
	}
	for t := range terms {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		obj, err := p.context.LoadObject(ctx, t, p.spec.ValueSchema)
		if err != nil {
			return nil, fmt.Errorf("get %s: %w", p.spec.Name, err)
		}
		out = append(out, obj)
	}
	return out, nil
}

// One returns a single value, or nil when the query is empty.
func (p *Property) One(ctx context.Context) (any, error) {
	vals, err := p.Get(ctx)
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, nil
	}
	return vals[0], nil
}

// OneDefined returns the first staged defined value without querying the
// store, or nil.
func (p *Property) OneDefined() graph.Object {
	vals := p.DefinedValues()
	if len(vals) == 0 {
		return nil
	}
	return vals[0]
}

// Count returns the number of resolved values.
func (p *Property) Count(ctx context.Context) (int, error) {
	vals, err := p.Get(ctx)
	if err != nil {
		return 0, err
	}
	return len(vals), nil
}

// Fill replaces the bound context's staged values with the query result.
func (p *Property) Fill(ctx context.Context) error {
	vals, err := p.Get(ctx)
	if err != nil {
		return err
	}
	p.clearContext()
	for _, v := range vals {
		if _, err := p.Set(v); err != nil {
			return err
		}
	}
	return nil
}

// GetMultiple resolves the property across several subjects in one
// batched store call, returning subject to objects.
func (p *Property) GetMultiple(ctx context.Context, subjects []rdf.Term) (map[rdf.Term][]rdf.Term, error) {
	store, err := p.queryStore()
	if err != nil {
		return nil, err
	}
	cur, err := store.MatchTriplesBatched(ctx, rdf.BatchPattern{
		Subjects:  subjects,
		Predicate: p.spec.Link,
	})
	if err != nil {
		return nil, fmt.Errorf("get multiple %s: %w", p.spec.Name, err)
	}
	quads, err := rdf.CollectQuads(cur)
	if err != nil {
		return nil, fmt.Errorf("get multiple %s: %w", p.spec.Name, err)
	}
	out := make(map[rdf.Term][]rdf.Term)
	for _, q := range quads {
		out[q.Subject] = append(out[q.Subject], q.Object)
	}
	return out, nil
}

// Expr returns the lazily-created path expression rooted at this
// property.
func (p *Property) Expr() *Expr {
	if p.expr == nil {
		p.expr = newRootExpr(p)
	}
	return p.expr
}

func (p *Property) String() string {
	return fmt.Sprintf("%s(owner=%v)", p.spec.Name, p.owner)
}

func comparableValue(v any) bool {
	if v == nil {
		return true
	}
	return reflect.TypeOf(v).Comparable()
}

func literalsOnly(terms graph.TermSet) graph.TermSet {
	out := make(graph.TermSet)
	for t := range terms {
		if t.Kind() == rdf.KindLiteral {
			out.Add(t)
		}
	}
	return out
}

func nonLiteralsOnly(terms graph.TermSet) graph.TermSet {
	out := make(graph.TermSet)
	for t := range terms {
		if t.Kind() != rdf.KindLiteral {
			out.Add(t)
		}
	}
	return out
}
