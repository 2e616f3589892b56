package storage

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/OpenCortex/owmeta-core/config"
	"github.com/OpenCortex/owmeta-core/rdf"
)

// Open builds the quad store named by the configuration. The returned
// close function releases whatever the backend holds (database handles,
// broker connections) and must be called when the store is done.
func Open(ctx context.Context, cfg *config.Config) (rdf.Store, func() error, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return NewMemoryStore(), func() error { return nil }, nil

	case config.BackendBadger:
		store, err := OpenBadgerStore(cfg.Store.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open badger store: %w", err)
		}
		return store, store.Close, nil

	case config.BackendNATS:
		nc, err := nats.Connect(cfg.NATS.URL, nats.Name(cfg.NATS.Name))
		if err != nil {
			return nil, nil, fmt.Errorf("connect to NATS: %w", err)
		}
		js, err := jetstream.New(nc)
		if err != nil {
			nc.Close()
			return nil, nil, fmt.Errorf("create JetStream context: %w", err)
		}
		store, err := NewKVStore(ctx, js, cfg.Store.Bucket)
		if err != nil {
			nc.Close()
			return nil, nil, err
		}
		close := func() error {
			nc.Close()
			return nil
		}
		return store, close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend: %s", cfg.Store.Backend)
	}
}
