package object

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/OpenCortex/owmeta-core/graph"
	"github.com/OpenCortex/owmeta-core/rdf"
	"github.com/OpenCortex/owmeta-core/vocabulary/rdfns"
	"github.com/OpenCortex/owmeta-core/vocabulary/registry"
)

// Context is a named, independently persistable scope of statements,
// composable through imports. Statements staged in a context are
// committed with Save; the set of statements visible to queries through
// a context is the transitive closure of its imports.
type Context struct {
	id            rdf.IRI
	baseNamespace rdf.IRI
	store         rdf.Store
	mapper        *Mapper
	logger        *slog.Logger

	imports    []*Context
	importedBy []*Context
	statements []*Statement

	closure []*Context // cached transitive closure, nil when invalid

	derived map[string]*Context

	hopScorer HopScorerFunc
	parallel  bool
}

// HopScorerFunc mirrors graph.HopScorer for context-level configuration.
type HopScorerFunc = graph.HopScorer

// ContextOption configures a Context.
type ContextOption func(*Context)

// WithStore attaches the backing quad store.
func WithStore(store rdf.Store) ContextOption {
	return func(c *Context) { c.store = store }
}

// WithMapper attaches the type mapper used to materialize query results.
func WithMapper(m *Mapper) ContextOption {
	return func(c *Context) { c.mapper = m }
}

// WithBaseNamespace sets the namespace for objects created through this
// context.
func WithBaseNamespace(ns rdf.IRI) ContextOption {
	return func(c *Context) { c.baseNamespace = ns }
}

// WithContextLogger sets the logger.
func WithContextLogger(logger *slog.Logger) ContextOption {
	return func(c *Context) { c.logger = logger }
}

// WithContextHopScorer overrides the hop scorer used by queries through
// this context.
func WithContextHopScorer(s HopScorerFunc) ContextOption {
	return func(c *Context) { c.hopScorer = s }
}

// WithParallelQueries enables the querier's parallel evaluation mode for
// queries through this context.
func WithParallelQueries(parallel bool) ContextOption {
	return func(c *Context) { c.parallel = parallel }
}

// NewContext creates a named context.
func NewContext(id rdf.IRI, opts ...ContextOption) *Context {
	c := &Context{
		id:            id,
		baseNamespace: rdf.IRI(registry.EntityNamespace),
		logger:        slog.Default(),
		derived:       make(map[string]*Context),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Identifier returns the context's IRI.
func (c *Context) Identifier() rdf.IRI { return c.id }

// BaseNamespace returns the namespace for entities of this context.
func (c *Context) BaseNamespace() rdf.IRI { return c.baseNamespace }

// Mapper returns the attached mapper, possibly nil.
func (c *Context) Mapper() *Mapper { return c.mapper }

// Store returns the backing store, possibly nil.
func (c *Context) Store() rdf.Store { return c.store }

// AddImport adds a directed import edge. The edge is rejected with
// ErrCyclicImport when it would close a cycle.
func (c *Context) AddImport(other *Context) error {
	if other == nil {
		return fmt.Errorf("add import: %w", ErrInvalidValue)
	}
	if other == c || other.importsTransitively(c) {
		return fmt.Errorf("import of %s into %s: %w", other.id, c.id, ErrCyclicImport)
	}
	for _, existing := range c.imports {
		if existing == other {
			return nil
		}
	}
	c.imports = append(c.imports, other)
	other.importedBy = append(other.importedBy, c)
	c.invalidateClosure()
	return nil
}

// Imports returns the direct import edges.
func (c *Context) Imports() []*Context {
	return append([]*Context(nil), c.imports...)
}

func (c *Context) importsTransitively(target *Context) bool {
	for _, imp := range c.imports {
		if imp == target || imp.importsTransitively(target) {
			return true
		}
	}
	return false
}

// invalidateClosure drops the cached closure of this context and every
// context importing it, directly or transitively.
func (c *Context) invalidateClosure() {
	c.closure = nil
	for _, dep := range c.importedBy {
		dep.invalidateClosure()
	}
}

// ImportClosure returns this context and everything it imports,
// transitively, in deterministic preorder. The result is cached and
// invalidated when any import edge in the closure changes.
func (c *Context) ImportClosure() []*Context {
	if c.closure != nil {
		return c.closure
	}
	seen := make(map[*Context]bool)
	var order []*Context
	var walk func(*Context)
	walk = func(cur *Context) {
		if seen[cur] {
			return
		}
		seen[cur] = true
		order = append(order, cur)
		for _, imp := range cur.imports {
			walk(imp)
		}
	}
	walk(c)
	c.closure = order
	return order
}

// addStatement stages a statement, deduplicating value-identical ones.
func (c *Context) addStatement(stmt *Statement) {
	for _, existing := range c.statements {
		if existing == stmt || existing.Equal(stmt) {
			return
		}
	}
	c.statements = append(c.statements, stmt)
}

func (c *Context) removeStatement(stmt *Statement) {
	for i, existing := range c.statements {
		if existing == stmt {
			c.statements = append(c.statements[:i], c.statements[i+1:]...)
			return
		}
	}
}

// Statements returns the staged statements owned by this context.
func (c *Context) Statements() []*Statement {
	return append([]*Statement(nil), c.statements...)
}

// EffectiveStore returns a view of the backing store restricted to the
// quads of this context's import closure.
func (c *Context) EffectiveStore() (rdf.Store, error) {
	if c.store == nil {
		return nil, fmt.Errorf("context %s has no store: %w", c.id, ErrUnboundContext)
	}
	allowed := make(map[rdf.IRI]struct{})
	for _, member := range c.ImportClosure() {
		allowed[member.id] = struct{}{}
	}
	return &scopedStore{base: c.store, write: c.id, allowed: allowed}, nil
}

// Save commits the context's own staged statements to the store. It runs
// inside the caller's transaction boundary and never retries; a failure
// propagates as-is and may leave earlier quads written.
func (c *Context) Save(ctx context.Context) error {
	if c.store == nil {
		return fmt.Errorf("save %s: %w", c.id, ErrUnboundContext)
	}
	for _, stmt := range c.statements {
		q, err := stmt.Quad()
		if err != nil {
			return fmt.Errorf("save %s: %w", c.id, err)
		}
		q.Context = c.id
		if err := c.store.AddQuad(ctx, q); err != nil {
			return fmt.Errorf("save %s: %w", c.id, err)
		}
	}
	c.logger.Debug("context saved", "context", string(c.id), "statements", len(c.statements))
	return nil
}

// SaveImports commits only the context's import edges, into the
// well-known imports graph, so composition provenance can be committed
// and audited separately from data.
func (c *Context) SaveImports(ctx context.Context) error {
	if c.store == nil {
		return fmt.Errorf("save imports %s: %w", c.id, ErrUnboundContext)
	}
	for _, imp := range c.imports {
		q := rdf.Quad{
			Subject:   c.id,
			Predicate: registry.Imports,
			Object:    imp.id,
			Context:   registry.ImportsContext,
		}
		if err := c.store.AddQuad(ctx, q); err != nil {
			return fmt.Errorf("save imports %s: %w", c.id, err)
		}
	}
	return nil
}

// LoadImports reads this context's import edges back from the imports
// graph, creating bare contexts for identifiers not seen before.
func (c *Context) LoadImports(ctx context.Context, known map[rdf.IRI]*Context) error {
	if c.store == nil {
		return fmt.Errorf("load imports %s: %w", c.id, ErrUnboundContext)
	}
	cur, err := c.store.MatchTriples(ctx, rdf.Pattern{
		Subject:   c.id,
		Predicate: registry.Imports,
		Context:   registry.ImportsContext,
	})
	if err != nil {
		return fmt.Errorf("load imports %s: %w", c.id, err)
	}
	quads, err := rdf.CollectQuads(cur)
	if err != nil {
		return fmt.Errorf("load imports %s: %w", c.id, err)
	}
	for _, q := range quads {
		id, ok := q.Object.(rdf.IRI)
		if !ok {
			continue
		}
		imp := known[id]
		if imp == nil {
			imp = NewContext(id,
				WithStore(c.store),
				WithMapper(c.mapper),
				WithBaseNamespace(c.baseNamespace),
				WithContextLogger(c.logger))
			if known != nil {
				known[id] = imp
			}
		}
		if err := c.AddImport(imp); err != nil {
			return err
		}
	}
	return nil
}

// Bind returns a view of the object bound to this context. The original
// view is untouched; both views share the object's statement state.
func (c *Context) Bind(o *DataObject) *DataObject {
	if o.context == c {
		return o
	}
	view := newView(o.schema, o.st, c)
	view.stageType()
	return view
}

// NewObject creates an instance of the schema bound to this context,
// assigning the given construction values with alias propagation.
func (c *Context) NewObject(s *Schema, values map[string]any, opts ...InstanceOption) (*DataObject, error) {
	obj := c.Bind(s.New(opts...))
	if err := applyValues(obj, values); err != nil {
		return nil, err
	}
	return obj, nil
}

// DeriveContext returns an ad hoc sub-context distinguished from the
// maker by the given parameters. The identifier is deterministic in the
// maker's identifier and the sorted parameter encoding, and derivation
// is memoized per distinguishing key, so equal calls return the same
// context.
func (c *Context) DeriveContext(maker graph.Object, params map[string]string) (*Context, error) {
	if !maker.Defined() {
		return nil, fmt.Errorf("derive context: maker: %w", ErrIdentifierMissing)
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(maker.Identifier().Value())
	for _, k := range keys {
		b.WriteByte('&')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	key := b.String()

	if derived, ok := c.derived[key]; ok {
		return derived, nil
	}
	sum := sha256.Sum256([]byte(key))
	id := rdf.IRI(maker.Identifier().Value()) + "/ctx/" + rdf.IRI(hex.EncodeToString(sum[:16]))
	derived := NewContext(id,
		WithStore(c.store),
		WithMapper(c.mapper),
		WithBaseNamespace(c.baseNamespace),
		WithContextLogger(c.logger),
		WithContextHopScorer(c.hopScorer),
		WithParallelQueries(c.parallel))
	c.derived[key] = derived
	return derived, nil
}

// LoadObject materializes an identifier term into a typed instance bound
// to this context. Terms with no usable type resolution come back as
// bare Nodes; literals come back as value holders.
func (c *Context) LoadObject(ctx context.Context, id rdf.Term, base *Schema) (graph.Object, error) {
	iri, ok := id.(rdf.IRI)
	if !ok {
		return NewNode(id), nil
	}
	store, err := c.EffectiveStore()
	if err != nil {
		return nil, err
	}
	cur, err := store.MatchTriples(ctx, rdf.Pattern{Subject: iri, Predicate: rdfns.Type})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", iri, err)
	}
	quads, err := rdf.CollectQuads(cur)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", iri, err)
	}

	var types []rdf.IRI
	for _, q := range quads {
		if t, ok := q.Object.(rdf.IRI); ok {
			types = append(types, t)
		}
	}

	var schema *Schema
	if c.mapper != nil {
		var baseType rdf.IRI
		if base != nil {
			baseType = base.RDFType
		}
		schema = c.mapper.MostSpecificType(ctx, types, baseType)
	}
	if schema == nil {
		schema = base
	}
	if schema == nil {
		return NewNode(id), nil
	}
	return c.Bind(schema.New(WithID(iri))), nil
}

// querierOptions assembles the querier configuration for this context.
func (c *Context) querierOptions() []graph.QuerierOption {
	opts := []graph.QuerierOption{
		graph.WithParallel(c.parallel),
		graph.WithLogger(c.logger),
	}
	if c.hopScorer != nil {
		opts = append(opts, graph.WithHopScorer(c.hopScorer))
	}
	return opts
}

func (c *Context) String() string {
	return fmt.Sprintf("Context(%s)", c.id)
}

// scopedStore restricts reads to the quads of an import closure and
// directs writes into one context.
type scopedStore struct {
	base    rdf.Store
	write   rdf.IRI
	allowed map[rdf.IRI]struct{}
}

func (s *scopedStore) AddQuad(ctx context.Context, q rdf.Quad) error {
	if q.Context == "" {
		q.Context = s.write
	}
	return s.base.AddQuad(ctx, q)
}

func (s *scopedStore) RemoveQuad(ctx context.Context, q rdf.Quad) error {
	if q.Context == "" {
		q.Context = s.write
	}
	return s.base.RemoveQuad(ctx, q)
}

func (s *scopedStore) MatchTriples(ctx context.Context, p rdf.Pattern) (rdf.Cursor, error) {
	if p.Context != nil {
		id, ok := p.Context.(rdf.IRI)
		if !ok {
			return rdf.NewSliceCursor(nil), nil
		}
		if _, ok := s.allowed[id]; !ok {
			return rdf.NewSliceCursor(nil), nil
		}
		return s.base.MatchTriples(ctx, p)
	}
	cur, err := s.base.MatchTriples(ctx, p)
	if err != nil {
		return nil, err
	}
	quads, err := rdf.CollectQuads(cur)
	if err != nil {
		return nil, err
	}
	var out []rdf.Quad
	for _, q := range quads {
		if _, ok := s.allowed[q.Context]; ok {
			out = append(out, q)
		}
	}
	return rdf.NewSliceCursor(out), nil
}

func (s *scopedStore) MatchTriplesBatched(ctx context.Context, p rdf.BatchPattern) (rdf.Cursor, error) {
	quads, err := rdf.MatchBatched(ctx, s, p)
	if err != nil {
		return nil, err
	}
	return rdf.NewSliceCursor(quads), nil
}
