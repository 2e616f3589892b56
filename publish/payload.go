// Package publish exports context statements to the knowledge graph
// ingestion stream as entity triple messages.
package publish

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"

	"github.com/OpenCortex/owmeta-core/rdf"
)

func init() {
	err := component.RegisterPayload(&component.PayloadRegistration{
		Domain:      "graph",
		Category:    "entity",
		Version:     "v1",
		Description: "Entity payload for graph ingestion with triples",
		Factory:     func() any { return &EntityPayload{} },
	})
	if err != nil {
		panic("failed to register EntityPayload: " + err.Error())
	}
}

// EntityType is the message type for graph entity payloads.
var EntityType = message.Type{Domain: "graph", Category: "entity", Version: "v1"}

// EntityPayload implements message.Payload for entity ingestion. One
// payload carries the triples of a single subject, with the named
// context they were committed under.
type EntityPayload struct {
	EntityID_  string           `json:"id"`
	Graph      string           `json:"graph,omitempty"`
	TripleData []message.Triple `json:"triples"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// NewEntityPayload builds a payload for one subject's triples.
func NewEntityPayload(id string, graph rdf.IRI, triples []message.Triple, at time.Time) *EntityPayload {
	return &EntityPayload{
		EntityID_:  id,
		Graph:      string(graph),
		TripleData: triples,
		UpdatedAt:  at,
	}
}

func (e *EntityPayload) EntityID() string          { return e.EntityID_ }
func (e *EntityPayload) Triples() []message.Triple { return e.TripleData }
func (e *EntityPayload) Schema() message.Type      { return EntityType }

// Validate checks the payload invariants: a subject id is required, and
// every triple must belong to that subject.
func (e *EntityPayload) Validate() error {
	if e.EntityID_ == "" {
		return errors.New("entity ID is required")
	}
	for _, t := range e.TripleData {
		if t.Subject != e.EntityID_ {
			return fmt.Errorf("triple subject %s does not match entity %s", t.Subject, e.EntityID_)
		}
	}
	return nil
}

func (e *EntityPayload) MarshalJSON() ([]byte, error) {
	type Alias EntityPayload
	return json.Marshal((*Alias)(e))
}

func (e *EntityPayload) UnmarshalJSON(data []byte) error {
	type Alias EntityPayload
	return json.Unmarshal(data, (*Alias)(e))
}
