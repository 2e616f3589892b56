// Package graph provides the graph-object abstraction and the pattern
// resolver that finds terms for free variables embedded in a property
// graph, without requiring a pre-known identifier.
package graph

import (
	"strings"

	"github.com/google/uuid"

	"github.com/OpenCortex/owmeta-core/rdf"
)

// Object is anything that can appear as the subject or object of a
// statement: a typed domain entity, a wrapped literal value, or a free
// variable awaiting resolution.
type Object interface {
	// Identifier returns the term identifying this object, or nil when
	// the object is not yet defined.
	Identifier() rdf.Term

	// Defined reports whether enough state exists to produce an
	// identifier.
	Defined() bool

	// Properties returns the properties owned by this object.
	Properties() []Property

	// OwnerProperties returns the properties holding this object as a
	// value. This is a lookup index, not an ownership relation.
	OwnerProperties() []Property
}

// Property is the view of a property the resolver needs: its predicate,
// its owner, and its current values.
type Property interface {
	Link() rdf.IRI
	Owner() Object
	Values() []Object
}

// Variable is a free query variable. It is never defined; the resolver
// finds the set of terms consistent with the property graph around it.
type Variable struct {
	name   string
	owners []Property
}

// NewVariable returns a fresh variable with a unique name.
func NewVariable() *Variable {
	return &Variable{name: "var-" + strings.ReplaceAll(uuid.New().String(), "-", "")}
}

// Name returns the variable's unique name.
func (v *Variable) Name() string { return v.name }

// Identifier implements Object. Variables have no identifier.
func (v *Variable) Identifier() rdf.Term { return nil }

// Defined implements Object.
func (v *Variable) Defined() bool { return false }

// Properties implements Object. Variables own no properties.
func (v *Variable) Properties() []Property { return nil }

// OwnerProperties implements Object.
func (v *Variable) OwnerProperties() []Property { return v.owners }

// BindOwner records a property currently holding this variable as a value.
func (v *Variable) BindOwner(p Property) {
	v.owners = append(v.owners, p)
}

// UnbindOwner removes a previously bound owner property.
func (v *Variable) UnbindOwner(p Property) {
	for i, o := range v.owners {
		if o == p {
			v.owners = append(v.owners[:i], v.owners[i+1:]...)
			return
		}
	}
}

// TermSet is a deduplicated set of terms.
type TermSet map[rdf.Term]struct{}

// Add inserts a term.
func (s TermSet) Add(t rdf.Term) { s[t] = struct{}{} }

// Contains reports membership.
func (s TermSet) Contains(t rdf.Term) bool {
	_, ok := s[t]
	return ok
}

// Slice returns the members in unspecified order.
func (s TermSet) Slice() []rdf.Term {
	out := make([]rdf.Term, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	return out
}

// Union merges other into s.
func (s TermSet) Union(other TermSet) {
	for t := range other {
		s[t] = struct{}{}
	}
}

// Intersect returns the intersection of s and other.
func (s TermSet) Intersect(other TermSet) TermSet {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make(TermSet, len(small))
	for t := range small {
		if large.Contains(t) {
			out.Add(t)
		}
	}
	return out
}
