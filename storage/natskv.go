package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/OpenCortex/owmeta-core/rdf"
)

// DefaultQuadBucket is the KV bucket used when none is configured.
const DefaultQuadBucket = "OWMETA_QUADS"

// KVStore is a quad store backed by a NATS JetStream KV bucket. Keys are
// content-addressed from the quad, so adds are idempotent; matching scans
// the bucket and filters, which suits modest graph sizes and keeps the
// bucket free of positional index bookkeeping.
type KVStore struct {
	kv jetstream.KeyValue
}

// NewKVStore creates a KV-backed store, creating the bucket if it
// doesn't exist.
func NewKVStore(ctx context.Context, js jetstream.JetStream, bucket string) (*KVStore, error) {
	if bucket == "" {
		bucket = DefaultQuadBucket
	}
	kv, err := getOrCreateBucket(ctx, js, bucket)
	if err != nil {
		return nil, fmt.Errorf("create quad bucket: %w", err)
	}
	return &KVStore{kv: kv}, nil
}

func getOrCreateBucket(ctx context.Context, js jetstream.JetStream, name string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, name)
	if err == nil {
		return kv, nil
	}
	// Bucket doesn't exist, create it
	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: fmt.Sprintf("owmeta %s quad storage", strings.ToLower(name)),
		History:     1,
	})
}

// AddQuad stores a quad under its content key.
func (s *KVStore) AddQuad(ctx context.Context, q rdf.Quad) error {
	data, err := MarshalQuad(q)
	if err != nil {
		return err
	}
	if _, err := s.kv.Put(ctx, quadKey(q), data); err != nil {
		return fmt.Errorf("store quad: %w", err)
	}
	return nil
}

// RemoveQuad deletes a quad. Removing an absent quad is a no-op.
func (s *KVStore) RemoveQuad(ctx context.Context, q rdf.Quad) error {
	if err := s.kv.Delete(ctx, quadKey(q)); err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("remove quad: %w", err)
	}
	return nil
}

// MatchTriples scans the bucket and returns quads matching the pattern.
func (s *KVStore) MatchTriples(ctx context.Context, p rdf.Pattern) (rdf.Cursor, error) {
	keys, err := s.kv.Keys(ctx)
	if err != nil {
		if err == jetstream.ErrNoKeysFound {
			return rdf.NewSliceCursor(nil), nil
		}
		return nil, fmt.Errorf("list quad keys: %w", err)
	}

	var out []rdf.Quad
	for _, key := range keys {
		entry, err := s.kv.Get(ctx, key)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("get quad %s: %w", key, err)
		}
		q, err := UnmarshalQuad(entry.Value())
		if err != nil {
			continue // Skip entries that fail to decode
		}
		if p.Matches(q) {
			out = append(out, q)
		}
	}
	return rdf.NewSliceCursor(out), nil
}

// MatchTriplesBatched matches many candidates in one bucket scan.
func (s *KVStore) MatchTriplesBatched(ctx context.Context, p rdf.BatchPattern) (rdf.Cursor, error) {
	subjects := make(map[rdf.Term]struct{}, len(p.Subjects))
	for _, t := range p.Subjects {
		subjects[t] = struct{}{}
	}
	objects := make(map[rdf.Term]struct{}, len(p.Objects))
	for _, t := range p.Objects {
		objects[t] = struct{}{}
	}

	cur, err := s.MatchTriples(ctx, rdf.Pattern{Predicate: p.Predicate, Context: p.Context})
	if err != nil {
		return nil, err
	}
	quads, err := rdf.CollectQuads(cur)
	if err != nil {
		return nil, err
	}

	var out []rdf.Quad
	for _, q := range quads {
		if len(subjects) > 0 {
			if _, ok := subjects[q.Subject]; !ok {
				continue
			}
		}
		if len(objects) > 0 {
			if _, ok := objects[q.Object]; !ok {
				continue
			}
		}
		out = append(out, q)
	}
	return rdf.NewSliceCursor(out), nil
}

// isNotFound checks if an error indicates a key was not found.
func isNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "key not found")
}
