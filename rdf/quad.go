package rdf

import "fmt"

// Quad is a single (subject, predicate, object, context) assertion.
// Context is the IRI of the named context holding the statement; empty
// means the assertion is context-free.
type Quad struct {
	Subject   Term
	Predicate IRI
	Object    Term
	Context   IRI
}

func (q Quad) String() string {
	if q.Context == "" {
		return fmt.Sprintf("%s %s %s .", q.Subject, q.Predicate.String(), q.Object)
	}
	return fmt.Sprintf("%s %s %s %s .", q.Subject, q.Predicate.String(), q.Object, q.Context.String())
}

// Pattern is a quad pattern. A nil field is a wildcard.
type Pattern struct {
	Subject   Term
	Predicate Term
	Object    Term
	Context   Term
}

// Matches reports whether the quad satisfies the pattern.
func (p Pattern) Matches(q Quad) bool {
	if p.Subject != nil && p.Subject != q.Subject {
		return false
	}
	if p.Predicate != nil && p.Predicate != Term(q.Predicate) {
		return false
	}
	if p.Object != nil && p.Object != q.Object {
		return false
	}
	if p.Context != nil && p.Context != Term(q.Context) {
		return false
	}
	return true
}

// BatchPattern looks up one predicate across many candidate subjects or
// objects in a single store call. Exactly one of Subjects or Objects is
// normally non-empty; empty slices behave as wildcards.
type BatchPattern struct {
	Subjects  []Term
	Predicate Term
	Objects   []Term
	Context   Term
}
