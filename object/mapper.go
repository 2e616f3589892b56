package object

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sort"

	"github.com/OpenCortex/owmeta-core/rdf"
	"github.com/OpenCortex/owmeta-core/vocabulary/rdfns"
	"github.com/OpenCortex/owmeta-core/vocabulary/registry"
)

// TypeLoader loads the schema for a type found only in persisted
// registry descriptors, given the recorded module path and type name.
type TypeLoader func(ctx context.Context, modulePath, typeName string) (*Schema, error)

// Mapper maintains the RDF type table: type IRI to implementing schema.
// Registration can be persisted as descriptor quads so a type can be
// recovered purely from stored data through a TypeLoader.
//
// A Mapper is not safe for concurrent mutation; callers synchronize
// externally.
type Mapper struct {
	types    map[rdf.IRI]*Schema
	byName   map[string]*Schema
	imported []*Mapper
	loader   TypeLoader
	store    rdf.Store
	logger   *slog.Logger
}

// MapperOption configures a Mapper.
type MapperOption func(*Mapper)

// WithMapperStore attaches the store used for descriptor persistence and
// recovery.
func WithMapperStore(store rdf.Store) MapperOption {
	return func(m *Mapper) { m.store = store }
}

// WithTypeLoader sets the callback that loads schemas named by persisted
// descriptors.
func WithTypeLoader(loader TypeLoader) MapperOption {
	return func(m *Mapper) { m.loader = loader }
}

// WithImportedMapper chains another mapper consulted on lookup misses.
func WithImportedMapper(other *Mapper) MapperOption {
	return func(m *Mapper) { m.imported = append(m.imported, other) }
}

// WithMapperLogger sets the logger.
func WithMapperLogger(logger *slog.Logger) MapperOption {
	return func(m *Mapper) { m.logger = logger }
}

// NewMapper creates an empty type table.
func NewMapper(opts ...MapperOption) *Mapper {
	m := &Mapper{
		types:  make(map[rdf.IRI]*Schema),
		byName: make(map[string]*Schema),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RegisterType adds a schema to the table. Registering a different
// schema under an already-mapped type IRI fails with ErrTypeRedefinition.
func (m *Mapper) RegisterType(s *Schema) error {
	if existing, ok := m.types[s.RDFType]; ok {
		if existing == s {
			return nil
		}
		return fmt.Errorf("type %s already mapped to %s: %w", s.RDFType, existing.Name, ErrTypeRedefinition)
	}
	m.types[s.RDFType] = s
	m.byName[s.Module+"."+s.Name] = s
	return nil
}

// Lookup returns the schema mapped to the type IRI, consulting imported
// mappers on a miss. Returns nil when unmapped.
func (m *Mapper) Lookup(typeIRI rdf.IRI) *Schema {
	if s, ok := m.types[typeIRI]; ok {
		return s
	}
	for _, imp := range m.imported {
		if s := imp.Lookup(typeIRI); s != nil {
			return s
		}
	}
	return nil
}

// RegisteredTypes returns the locally registered type IRIs in sorted
// order.
func (m *Mapper) RegisteredTypes() []rdf.IRI {
	out := make([]rdf.IRI, 0, len(m.types))
	for t := range m.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func registryNode(kind string, seed string) rdf.IRI {
	sum := sha256.Sum256([]byte(seed))
	return rdf.IRI(registry.Namespace) + rdf.IRI(kind) + "/" + rdf.IRI(hex.EncodeToString(sum[:16]))
}

// Save persists a descriptor for every locally registered type, so the
// table can be rebuilt from stored data alone.
func (m *Mapper) Save(ctx context.Context) error {
	if m.store == nil {
		return fmt.Errorf("mapper save: %w", ErrUnboundContext)
	}
	for _, typeIRI := range m.RegisteredTypes() {
		s := m.types[typeIRI]
		entry := registryNode("registryEntry", string(typeIRI))
		desc := registryNode("classDescription", s.Module+"."+s.Name)
		module := registryNode("module", s.Module)

		quads := []rdf.Quad{
			{Subject: entry, Predicate: rdfns.Type, Object: registry.ClassRegistryEntry},
			{Subject: entry, Predicate: registry.RDFClass, Object: typeIRI},
			{Subject: entry, Predicate: registry.ClassDescriptionLink, Object: desc},
			{Subject: desc, Predicate: rdfns.Type, Object: registry.ClassDescription},
			{Subject: desc, Predicate: registry.ClassName, Object: rdf.Literal{Val: s.Name, Datatype: rdf.XSDString}},
			{Subject: desc, Predicate: registry.Module, Object: module},
			{Subject: module, Predicate: rdfns.Type, Object: registry.ClassModule},
			{Subject: module, Predicate: registry.ModuleName, Object: rdf.Literal{Val: s.Module, Datatype: rdf.XSDString}},
		}
		for _, q := range quads {
			q.Context = registry.RegistryContext
			if err := m.store.AddQuad(ctx, q); err != nil {
				return fmt.Errorf("mapper save %s: %w", typeIRI, err)
			}
		}
	}
	return nil
}

// ResolveType returns the schema for the type IRI, recovering unmapped
// types from persisted descriptors through the TypeLoader. Recovery is
// attempted once; a loader that does not register the type yields
// ErrUnmappedType.
func (m *Mapper) ResolveType(ctx context.Context, typeIRI rdf.IRI) (*Schema, error) {
	if s := m.Lookup(typeIRI); s != nil {
		return s, nil
	}
	if m.store == nil || m.loader == nil {
		return nil, fmt.Errorf("type %s: %w", typeIRI, ErrUnmappedType)
	}

	modulePath, typeName, err := m.describedType(ctx, typeIRI)
	if err != nil {
		return nil, err
	}
	if modulePath == "" {
		return nil, fmt.Errorf("type %s has no persisted descriptor: %w", typeIRI, ErrUnmappedType)
	}

	loaded, err := m.loader(ctx, modulePath, typeName)
	if err != nil {
		return nil, fmt.Errorf("load type %s from %s: %w", typeName, modulePath, err)
	}
	if loaded != nil {
		if err := m.RegisterType(loaded); err != nil {
			return nil, err
		}
	}
	if s := m.Lookup(typeIRI); s != nil {
		return s, nil
	}
	return nil, fmt.Errorf("type %s not registered by loader: %w", typeIRI, ErrUnmappedType)
}

// describedType reads the persisted descriptor shape for a type IRI,
// returning the recorded module path and type name.
func (m *Mapper) describedType(ctx context.Context, typeIRI rdf.IRI) (modulePath, typeName string, err error) {
	entry, err := m.singleSubject(ctx, registry.RDFClass, typeIRI)
	if err != nil || entry == "" {
		return "", "", err
	}
	desc, err := m.singleObjectIRI(ctx, entry, registry.ClassDescriptionLink)
	if err != nil || desc == "" {
		return "", "", err
	}
	typeName, err = m.singleObjectString(ctx, desc, registry.ClassName)
	if err != nil {
		return "", "", err
	}
	module, err := m.singleObjectIRI(ctx, desc, registry.Module)
	if err != nil || module == "" {
		return "", "", err
	}
	modulePath, err = m.singleObjectString(ctx, module, registry.ModuleName)
	if err != nil {
		return "", "", err
	}
	return modulePath, typeName, nil
}

func (m *Mapper) singleSubject(ctx context.Context, pred rdf.IRI, obj rdf.Term) (rdf.IRI, error) {
	cur, err := m.store.MatchTriples(ctx, rdf.Pattern{
		Predicate: pred,
		Object:    obj,
		Context:   registry.RegistryContext,
	})
	if err != nil {
		return "", err
	}
	quads, err := rdf.CollectQuads(cur)
	if err != nil {
		return "", err
	}
	for _, q := range quads {
		if s, ok := q.Subject.(rdf.IRI); ok {
			return s, nil
		}
	}
	return "", nil
}

func (m *Mapper) singleObjectIRI(ctx context.Context, subj rdf.IRI, pred rdf.IRI) (rdf.IRI, error) {
	cur, err := m.store.MatchTriples(ctx, rdf.Pattern{
		Subject:   subj,
		Predicate: pred,
		Context:   registry.RegistryContext,
	})
	if err != nil {
		return "", err
	}
	quads, err := rdf.CollectQuads(cur)
	if err != nil {
		return "", err
	}
	for _, q := range quads {
		if o, ok := q.Object.(rdf.IRI); ok {
			return o, nil
		}
	}
	return "", nil
}

func (m *Mapper) singleObjectString(ctx context.Context, subj rdf.IRI, pred rdf.IRI) (string, error) {
	cur, err := m.store.MatchTriples(ctx, rdf.Pattern{
		Subject:   subj,
		Predicate: pred,
		Context:   registry.RegistryContext,
	})
	if err != nil {
		return "", err
	}
	quads, err := rdf.CollectQuads(cur)
	if err != nil {
		return "", err
	}
	for _, q := range quads {
		if lit, ok := q.Object.(rdf.Literal); ok {
			return lit.Val, nil
		}
	}
	return "", nil
}

// isAncestor reports whether anc appears in desc's registered ancestry.
func (m *Mapper) isAncestor(anc, desc rdf.IRI) bool {
	return m.walkAncestry(anc, desc, make(map[rdf.IRI]bool))
}

func (m *Mapper) walkAncestry(anc, desc rdf.IRI, seen map[rdf.IRI]bool) bool {
	if seen[desc] {
		return false
	}
	seen[desc] = true
	s := m.Lookup(desc)
	if s == nil {
		return false
	}
	for _, parent := range s.Parents {
		if parent == anc || m.walkAncestry(anc, parent, seen) {
			return true
		}
	}
	return false
}

// MostSpecificType returns the most-derived registered type consistent
// with all asserted types, narrowed to descendants of base when base is
// non-empty. Returns nil when no asserted type is registered or when
// more than one maximally derived candidate survives and they are
// mutually incomparable.
func (m *Mapper) MostSpecificType(ctx context.Context, types []rdf.IRI, base rdf.IRI) *Schema {
	var candidates []*Schema
	dedup := make(map[rdf.IRI]bool, len(types))
	for _, t := range types {
		s := m.Lookup(t)
		if s == nil {
			// Descriptor recovery is best effort here; an asserted type
			// with no recoverable schema just does not constrain.
			var err error
			s, err = m.ResolveType(ctx, t)
			if err != nil {
				continue
			}
		}
		if dedup[s.RDFType] {
			continue
		}
		dedup[s.RDFType] = true
		if base != "" && s.RDFType != base && !m.isAncestor(base, s.RDFType) {
			continue
		}
		candidates = append(candidates, s)
	}
	if len(candidates) == 0 {
		return nil
	}

	// Keep only the minimal (most-derived) candidates: a type with a
	// strict descendant elsewhere in the set is subsumed by it. An
	// asserted ancestry diamond then collapses to its bottom type.
	var minimal []*Schema
	for _, c := range candidates {
		subsumed := false
		for _, o := range candidates {
			if o == c {
				continue
			}
			if m.isAncestor(c.RDFType, o.RDFType) && !m.isAncestor(o.RDFType, c.RDFType) {
				subsumed = true
				break
			}
		}
		if !subsumed {
			minimal = append(minimal, c)
		}
	}
	if len(minimal) == 0 {
		return nil
	}

	sort.Slice(minimal, func(i, j int) bool { return minimal[i].Name < minimal[j].Name })
	best := minimal[0]
	for _, c := range minimal[1:] {
		// Survivors with symmetric ancestry cannot rank by depth and
		// fall back to the deterministic name order; anything else left
		// here is truly incomparable.
		if !m.isAncestor(best.RDFType, c.RDFType) || !m.isAncestor(c.RDFType, best.RDFType) {
			return nil
		}
	}
	return best
}
