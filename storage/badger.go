package storage

import (
	"context"
	"fmt"
	"strings"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/OpenCortex/owmeta-core/rdf"
)

// Index prefixes. Every quad is written under all three so any bound
// position can be served by a prefix scan.
const (
	idxSPOC = "spoc"
	idxPOSC = "posc"
	idxOSPC = "ospc"
)

// BadgerStore is a quad store backed by Badger. Quads are stored under
// three positional indexes; pattern matching picks the index whose
// leading components are bound and filters the remainder.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens or creates a Badger-backed store at the given
// path. An empty path opens an in-memory database.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(path)
	}
	opts = opts.WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Close releases the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func indexKeys(q rdf.Quad) []string {
	s := termKey(q.Subject)
	p := termKey(q.Predicate)
	o := termKey(q.Object)
	c := termKey(q.Context)
	return []string{
		strings.Join([]string{idxSPOC, s, p, o, c}, "|"),
		strings.Join([]string{idxPOSC, p, o, s, c}, "|"),
		strings.Join([]string{idxOSPC, o, s, p, c}, "|"),
	}
}

// AddQuad writes the quad under all three indexes in one transaction.
func (s *BadgerStore) AddQuad(_ context.Context, q rdf.Quad) error {
	data, err := MarshalQuad(q)
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		for _, key := range indexKeys(q) {
			if err := txn.Set([]byte(key), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store quad: %w", err)
	}
	return nil
}

// RemoveQuad deletes the quad's index entries. Removing an absent quad
// is a no-op.
func (s *BadgerStore) RemoveQuad(_ context.Context, q rdf.Quad) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, key := range indexKeys(q) {
			if err := txn.Delete([]byte(key)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("remove quad: %w", err)
	}
	return nil
}

// scanPrefix picks the most selective index prefix for the pattern.
func scanPrefix(p rdf.Pattern) string {
	switch {
	case p.Subject != nil:
		prefix := idxSPOC + "|" + termKey(p.Subject)
		if p.Predicate != nil {
			prefix += "|" + termKey(p.Predicate)
			if p.Object != nil {
				prefix += "|" + termKey(p.Object)
			}
		}
		return prefix + "|"
	case p.Object != nil:
		prefix := idxOSPC + "|" + termKey(p.Object)
		return prefix + "|"
	case p.Predicate != nil:
		return idxPOSC + "|" + termKey(p.Predicate) + "|"
	default:
		return idxSPOC + "|"
	}
}

// MatchTriples prefix-scans the best index and filters the remainder of
// the pattern.
func (s *BadgerStore) MatchTriples(_ context.Context, p rdf.Pattern) (rdf.Cursor, error) {
	prefix := []byte(scanPrefix(p))
	var out []rdf.Quad
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				q, err := UnmarshalQuad(val)
				if err != nil {
					return err
				}
				if p.Matches(q) {
					out = append(out, q)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("match quads: %w", err)
	}
	return rdf.NewSliceCursor(out), nil
}

// MatchTriplesBatched runs one indexed scan per candidate term.
func (s *BadgerStore) MatchTriplesBatched(ctx context.Context, p rdf.BatchPattern) (rdf.Cursor, error) {
	quads, err := rdf.MatchBatched(ctx, s, p)
	if err != nil {
		return nil, err
	}
	return rdf.NewSliceCursor(quads), nil
}
