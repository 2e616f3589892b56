// Package storage provides quad store backends: an in-memory store for
// tests and ephemeral work, a NATS KV backed store, and a Badger backed
// store with positional indexes.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/OpenCortex/owmeta-core/rdf"
)

// storedTerm is the JSON shape of one term.
type storedTerm struct {
	Kind     string `json:"kind"` // iri, literal, blank
	Value    string `json:"value"`
	Datatype string `json:"datatype,omitempty"`
}

// storedQuad is the JSON shape of one quad.
type storedQuad struct {
	Subject   storedTerm `json:"subject"`
	Predicate string     `json:"predicate"`
	Object    storedTerm `json:"object"`
	Context   string     `json:"context,omitempty"`
}

func encodeTerm(t rdf.Term) (storedTerm, error) {
	switch v := t.(type) {
	case rdf.IRI:
		return storedTerm{Kind: "iri", Value: string(v)}, nil
	case rdf.Literal:
		return storedTerm{Kind: "literal", Value: v.Val, Datatype: string(v.Datatype)}, nil
	case rdf.Blank:
		return storedTerm{Kind: "blank", Value: string(v)}, nil
	default:
		return storedTerm{}, fmt.Errorf("unsupported term type %T", t)
	}
}

func decodeTerm(st storedTerm) (rdf.Term, error) {
	switch st.Kind {
	case "iri":
		return rdf.IRI(st.Value), nil
	case "literal":
		return rdf.Literal{Val: st.Value, Datatype: rdf.IRI(st.Datatype)}, nil
	case "blank":
		return rdf.Blank(st.Value), nil
	default:
		return nil, fmt.Errorf("unknown term kind %q", st.Kind)
	}
}

// MarshalQuad encodes a quad as JSON for storage values.
func MarshalQuad(q rdf.Quad) ([]byte, error) {
	subj, err := encodeTerm(q.Subject)
	if err != nil {
		return nil, fmt.Errorf("marshal quad subject: %w", err)
	}
	obj, err := encodeTerm(q.Object)
	if err != nil {
		return nil, fmt.Errorf("marshal quad object: %w", err)
	}
	return json.Marshal(storedQuad{
		Subject:   subj,
		Predicate: string(q.Predicate),
		Object:    obj,
		Context:   string(q.Context),
	})
}

// UnmarshalQuad decodes a stored quad value.
func UnmarshalQuad(data []byte) (rdf.Quad, error) {
	var sq storedQuad
	if err := json.Unmarshal(data, &sq); err != nil {
		return rdf.Quad{}, fmt.Errorf("unmarshal quad: %w", err)
	}
	subj, err := decodeTerm(sq.Subject)
	if err != nil {
		return rdf.Quad{}, err
	}
	obj, err := decodeTerm(sq.Object)
	if err != nil {
		return rdf.Quad{}, err
	}
	return rdf.Quad{
		Subject:   subj,
		Predicate: rdf.IRI(sq.Predicate),
		Object:    obj,
		Context:   rdf.IRI(sq.Context),
	}, nil
}

// termKey encodes a term as a single key component with its kind tag, so
// an IRI and a literal of the same text never collide.
func termKey(t rdf.Term) string {
	switch v := t.(type) {
	case rdf.IRI:
		return "i~" + url.QueryEscape(string(v))
	case rdf.Literal:
		return "l~" + url.QueryEscape(v.Val) + "~" + url.QueryEscape(string(v.Datatype))
	case rdf.Blank:
		return "b~" + url.QueryEscape(string(v))
	default:
		return "?~" + url.QueryEscape(t.Value())
	}
}

// quadKey returns a deterministic content-addressed key for a quad,
// restricted to the character set NATS KV keys allow.
func quadKey(q rdf.Quad) string {
	canonical := strings.Join([]string{
		termKey(q.Subject),
		termKey(q.Predicate),
		termKey(q.Object),
		termKey(q.Context),
	}, "\n")
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
