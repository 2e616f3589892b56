// Package rdf defines the term and quad model shared by the rest of the
// module, along with the minimal quad-store contract the mapping layer
// requires from a storage backend.
package rdf

import "fmt"

// TermKind discriminates the concrete kinds of graph terms.
type TermKind int

const (
	// KindIRI is an absolute IRI naming an entity or predicate.
	KindIRI TermKind = iota
	// KindLiteral is a typed data value.
	KindLiteral
	// KindBlank is an anonymous node with store-local identity.
	KindBlank
)

// Term is a node that can appear in the subject or object position of a
// quad. All implementations are comparable values, so Terms can be used
// directly as map keys.
type Term interface {
	Kind() TermKind
	// Value returns the lexical form: the IRI string, the literal's
	// encoded value, or the blank node label.
	Value() string
	fmt.Stringer
}

// IRI is an absolute IRI.
type IRI string

// Kind implements Term.
func (i IRI) Kind() TermKind { return KindIRI }

// Value implements Term.
func (i IRI) Value() string { return string(i) }

func (i IRI) String() string { return "<" + string(i) + ">" }

// Literal is a typed data value. Datatype may be empty for plain strings.
type Literal struct {
	Val      string
	Datatype IRI
}

// Kind implements Term.
func (l Literal) Kind() TermKind { return KindLiteral }

// Value implements Term.
func (l Literal) Value() string { return l.Val }

func (l Literal) String() string {
	if l.Datatype == "" {
		return fmt.Sprintf("%q", l.Val)
	}
	return fmt.Sprintf("%q^^%s", l.Val, l.Datatype.String())
}

// Blank is an anonymous node.
type Blank string

// Kind implements Term.
func (b Blank) Kind() TermKind { return KindBlank }

// Value implements Term.
func (b Blank) Value() string { return string(b) }

func (b Blank) String() string { return "_:" + string(b) }
