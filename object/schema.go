// Package object implements the typed object model over RDF-style
// statements: declarative schemas, properties with Query/Update duality,
// lazy path expressions, named statement contexts, and the mapper that
// recovers implementing types from persisted data.
package object

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/OpenCortex/owmeta-core/rdf"
	"github.com/OpenCortex/owmeta-core/vocabulary/rdfns"
)

// PropertyKind discriminates what a property's values may be.
type PropertyKind int

const (
	// DatatypeKind properties hold literal values.
	DatatypeKind PropertyKind = iota
	// ObjectKind properties hold graph objects.
	ObjectKind
	// UnionKind properties hold either.
	UnionKind
)

// PropertySpec is the class-level declaration of a property: its
// predicate, multiplicity, and (for object-valued properties) the
// declared value type.
type PropertySpec struct {
	// Name is the property's attribute name within its schema.
	Name string

	// Link is the predicate IRI. Defaults to the schema namespace plus
	// the property name.
	Link rdf.IRI

	// Kind selects datatype, object, or union semantics.
	Kind PropertyKind

	// Multiple permits more than one value per context. When false, a
	// set replaces any prior value in the bound context.
	Multiple bool

	// ValueRDFType is the declared RDF type of object values.
	ValueRDFType rdf.IRI

	// ValueSchema is the declared implementing type of object values,
	// used by path-expression traversal.
	ValueSchema *Schema

	// SubtypeMatch requests that queries through this property match
	// subtypes of ValueRDFType as well as the exact type.
	SubtypeMatch bool

	// Key marks the property as part of the owner's derived identifier.
	Key bool

	// Aliases names sibling properties that must agree with this one
	// when values are supplied at construction.
	Aliases []string
}

// TypeAttributeName is the built-in attribute under which every schema
// declares its rdf:type property.
const TypeAttributeName = "rdf_type"

// Schema is the static declaration of a mapped type: its RDF type, its
// ancestry, and its property table. Schemas are immutable after
// construction; instances are created with New or Context.NewObject.
type Schema struct {
	// Name is the implementing type's name within its module.
	Name string

	// Module is the path of the module providing the type, persisted in
	// the registry so the type can be recovered from stored data.
	Module string

	// RDFType is the type IRI asserted for every instance.
	RDFType rdf.IRI

	// Namespace prefixes derived instance identifiers. Defaults to
	// RDFType + "/".
	Namespace rdf.IRI

	// Parents are the direct ancestor RDF types.
	Parents []rdf.IRI

	specs  []*PropertySpec
	byName map[string]*PropertySpec
	keys   []*PropertySpec
}

// SchemaConfig carries the declaration for NewSchema.
type SchemaConfig struct {
	Name       string
	Module     string
	RDFType    rdf.IRI
	Namespace  rdf.IRI
	Parents    []rdf.IRI
	Properties []PropertySpec
}

// NewSchema validates a declaration and builds the property table. An
// rdf_type property is injected automatically when not declared.
func NewSchema(cfg SchemaConfig) (*Schema, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("schema requires a name")
	}
	if cfg.RDFType == "" {
		return nil, fmt.Errorf("schema %s requires an rdf type", cfg.Name)
	}
	ns := cfg.Namespace
	if ns == "" {
		ns = cfg.RDFType + "/"
	}

	s := &Schema{
		Name:      cfg.Name,
		Module:    cfg.Module,
		RDFType:   cfg.RDFType,
		Namespace: ns,
		Parents:   append([]rdf.IRI(nil), cfg.Parents...),
		byName:    make(map[string]*PropertySpec, len(cfg.Properties)+1),
	}

	for i := range cfg.Properties {
		spec := cfg.Properties[i]
		if spec.Name == "" {
			return nil, fmt.Errorf("schema %s: property %d has no name", cfg.Name, i)
		}
		if _, dup := s.byName[spec.Name]; dup {
			return nil, fmt.Errorf("schema %s: duplicate property %q", cfg.Name, spec.Name)
		}
		if spec.Link == "" {
			spec.Link = ns + rdf.IRI(spec.Name)
		}
		if spec.ValueSchema != nil && spec.ValueRDFType == "" {
			spec.ValueRDFType = spec.ValueSchema.RDFType
		}
		p := &spec
		s.specs = append(s.specs, p)
		s.byName[spec.Name] = p
		if spec.Key {
			s.keys = append(s.keys, p)
		}
	}

	if _, ok := s.byName[TypeAttributeName]; !ok {
		typeSpec := &PropertySpec{
			Name:     TypeAttributeName,
			Link:     rdfns.Type,
			Kind:     ObjectKind,
			Multiple: true,
		}
		s.specs = append(s.specs, typeSpec)
		s.byName[TypeAttributeName] = typeSpec
	}

	for _, spec := range s.specs {
		for _, alias := range spec.Aliases {
			if _, ok := s.byName[alias]; !ok {
				return nil, fmt.Errorf("schema %s: property %q aliases unknown property %q",
					cfg.Name, spec.Name, alias)
			}
		}
	}
	return s, nil
}

// Spec returns the property declaration for the given attribute name, or
// nil when the schema has no such property.
func (s *Schema) Spec(name string) *PropertySpec { return s.byName[name] }

// Specs returns all property declarations in declaration order.
func (s *Schema) Specs() []*PropertySpec {
	return append([]*PropertySpec(nil), s.specs...)
}

// KeySpecs returns the properties participating in identifier derivation.
func (s *Schema) KeySpecs() []*PropertySpec {
	return append([]*PropertySpec(nil), s.keys...)
}

// HasKeys reports whether identifiers can be derived for instances.
func (s *Schema) HasKeys() bool { return len(s.keys) > 0 }

// KeyIdentifier derives an instance identifier from key-property values.
// The result is a pure function of the sorted, canonically-encoded
// values: same inputs always yield the same identifier.
func KeyIdentifier(namespace rdf.IRI, keyValues map[string][]rdf.Term) rdf.IRI {
	names := make([]string, 0, len(keyValues))
	for name := range keyValues {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		encoded := make([]string, 0, len(keyValues[name]))
		for _, t := range keyValues[name] {
			encoded = append(encoded, t.String())
		}
		sort.Strings(encoded)
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(strings.Join(encoded, "|"))
		b.WriteByte('\n')
	}

	sum := sha256.Sum256([]byte(b.String()))
	return namespace + rdf.IRI(hex.EncodeToString(sum[:]))
}
