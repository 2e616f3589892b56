package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/c360studio/semstreams/message"
	"github.com/c360studio/semstreams/natsclient"

	"github.com/OpenCortex/owmeta-core/object"
	"github.com/OpenCortex/owmeta-core/rdf"
)

// GraphIngestSubject is the default subject for graph ingestion.
const GraphIngestSubject = "graph.ingest.entity"

// DefaultBatchSize caps triples per published message.
const DefaultBatchSize = 100

// Publisher exports statements to the ingestion stream, one message per
// subject entity.
type Publisher struct {
	nc        *natsclient.Client
	subject   string
	source    string
	batchSize int
	logger    *slog.Logger
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithSubject overrides the publish subject.
func WithSubject(subject string) PublisherOption {
	return func(p *Publisher) { p.subject = subject }
}

// WithSource sets the triple provenance source.
func WithSource(source string) PublisherOption {
	return func(p *Publisher) { p.source = source }
}

// WithBatchSize caps triples per message.
func WithBatchSize(n int) PublisherOption {
	return func(p *Publisher) { p.batchSize = n }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) { p.logger = logger }
}

// NewPublisher creates a publisher over the given NATS client.
func NewPublisher(nc *natsclient.Client, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		nc:        nc,
		subject:   GraphIngestSubject,
		source:    "owmeta.context",
		batchSize: DefaultBatchSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PublishContext publishes the staged statements of a context. Contexts
// with undefined subjects or objects fail before anything is sent.
func (p *Publisher) PublishContext(ctx context.Context, c *object.Context) error {
	if p.nc == nil {
		return nil // Skip publishing if no NATS client (graceful degradation)
	}
	var quads []rdf.Quad
	for _, stmt := range c.Statements() {
		q, err := stmt.Quad()
		if err != nil {
			return fmt.Errorf("publish context %s: %w", c.Identifier(), err)
		}
		q.Context = c.Identifier()
		quads = append(quads, q)
	}
	return p.PublishQuads(ctx, quads)
}

// PublishQuads publishes quads grouped by subject, batched.
func (p *Publisher) PublishQuads(ctx context.Context, quads []rdf.Quad) error {
	if p.nc == nil || len(quads) == 0 {
		return nil
	}
	now := time.Now()

	bySubject := make(map[string][]message.Triple)
	graphs := make(map[string]rdf.IRI)
	for _, q := range quads {
		id := q.Subject.Value()
		if _, ok := graphs[id]; !ok {
			graphs[id] = q.Context
		}
		bySubject[id] = append(bySubject[id], message.Triple{
			Subject:    id,
			Predicate:  string(q.Predicate),
			Object:     tripleObject(q.Object),
			Source:     p.source,
			Timestamp:  now,
			Confidence: 1.0,
		})
	}

	subjects := make([]string, 0, len(bySubject))
	for id := range bySubject {
		subjects = append(subjects, id)
	}
	sort.Strings(subjects)

	for _, id := range subjects {
		triples := bySubject[id]
		for start := 0; start < len(triples); start += p.batchSize {
			end := start + p.batchSize
			if end > len(triples) {
				end = len(triples)
			}
			if err := p.send(ctx, id, graphs[id], triples[start:end], now); err != nil {
				return err
			}
		}
	}

	p.logger.Debug("published entity triples",
		"subjects", len(subjects),
		"quads", len(quads))
	return nil
}

func (p *Publisher) send(ctx context.Context, id string, graph rdf.IRI, triples []message.Triple, now time.Time) error {
	payload := NewEntityPayload(id, graph, triples, now)
	if err := payload.Validate(); err != nil {
		return fmt.Errorf("entity %s: %w", id, err)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal entity %s: %w", id, err)
	}
	if err := p.nc.PublishToStream(ctx, p.subject, data); err != nil {
		return fmt.Errorf("publish entity %s: %w", id, err)
	}
	return nil
}

// tripleObject converts a graph term to the wire object value: literals
// decode to their native scalar, everything else passes as its lexical
// form.
func tripleObject(t rdf.Term) any {
	if lit, ok := t.(rdf.Literal); ok {
		if v, err := lit.Native(); err == nil {
			return v
		}
		return lit.Val
	}
	return t.Value()
}
