package storage

import (
	"context"
	"sync"

	"github.com/OpenCortex/owmeta-core/rdf"
)

// MemoryStore is an in-memory quad store. It is safe for concurrent use
// and keeps insertion order, so repeated matches over unchanged data
// return quads in a stable order.
type MemoryStore struct {
	mu    sync.RWMutex
	quads []rdf.Quad
	index map[rdf.Quad]int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{index: make(map[rdf.Quad]int)}
}

// AddQuad stores a quad. Adding an already-present quad is a no-op.
func (s *MemoryStore) AddQuad(_ context.Context, q rdf.Quad) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[q]; ok {
		return nil
	}
	s.index[q] = len(s.quads)
	s.quads = append(s.quads, q)
	return nil
}

// RemoveQuad deletes a quad. Removing an absent quad is a no-op.
func (s *MemoryStore) RemoveQuad(_ context.Context, q rdf.Quad) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[q]
	if !ok {
		return nil
	}
	delete(s.index, q)
	s.quads = append(s.quads[:i], s.quads[i+1:]...)
	for j := i; j < len(s.quads); j++ {
		s.index[s.quads[j]] = j
	}
	return nil
}

// MatchTriples returns all quads matching the pattern.
func (s *MemoryStore) MatchTriples(_ context.Context, p rdf.Pattern) (rdf.Cursor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []rdf.Quad
	for _, q := range s.quads {
		if p.Matches(q) {
			out = append(out, q)
		}
	}
	return rdf.NewSliceCursor(out), nil
}

// MatchTriplesBatched matches one predicate against many candidate
// subjects or objects in a single pass.
func (s *MemoryStore) MatchTriplesBatched(ctx context.Context, p rdf.BatchPattern) (rdf.Cursor, error) {
	quads, err := rdf.MatchBatched(ctx, s, p)
	if err != nil {
		return nil, err
	}
	return rdf.NewSliceCursor(quads), nil
}

// Len returns the number of stored quads.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.quads)
}
