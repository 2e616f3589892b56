package object

import (
	"fmt"

	"github.com/OpenCortex/owmeta-core/graph"
	"github.com/OpenCortex/owmeta-core/rdf"
)

// Statement is one (subject, property, object, context) assertion held
// by a Property. Value-identical statements are deduplicated: no two
// statements of a property may be value-equal in the same context.
type Statement struct {
	Subject  graph.Object
	Property *Property
	Object   graph.Object
	Context  *Context
}

// Equal reports value equality: defined subjects and objects compare by
// identifier, undefined ones by identity, and contexts by identifier.
func (s *Statement) Equal(o *Statement) bool {
	if s == o {
		return true
	}
	if o == nil || s == nil {
		return false
	}
	return s.Property.Link() == o.Property.Link() &&
		sameObject(s.Subject, o.Subject) &&
		sameObject(s.Object, o.Object) &&
		sameContext(s.Context, o.Context)
}

// Quad converts the statement to a storable quad. Both ends must be
// defined.
func (s *Statement) Quad() (rdf.Quad, error) {
	if !s.Subject.Defined() {
		return rdf.Quad{}, fmt.Errorf("statement subject: %w", ErrIdentifierMissing)
	}
	if !s.Object.Defined() {
		return rdf.Quad{}, fmt.Errorf("statement object: %w", ErrIdentifierMissing)
	}
	subj := s.Subject.Identifier()
	subjIRI, ok := subj.(rdf.IRI)
	if !ok {
		return rdf.Quad{}, fmt.Errorf("statement subject %s is not an IRI", subj)
	}
	q := rdf.Quad{
		Subject:   subjIRI,
		Predicate: s.Property.Link(),
		Object:    s.Object.Identifier(),
	}
	if s.Context != nil {
		q.Context = s.Context.Identifier()
	}
	return q, nil
}

func (s *Statement) String() string {
	ctx := "<none>"
	if s.Context != nil {
		ctx = string(s.Context.Identifier())
	}
	return fmt.Sprintf("Statement(%v, %s, %v, %s)", s.Subject, s.Property.Link(), s.Object, ctx)
}

func sameObject(a, b graph.Object) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Defined() && b.Defined() {
		return a.Identifier() == b.Identifier()
	}
	return false
}

func sameContext(a, b *Context) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.Identifier() == b.Identifier()
}
