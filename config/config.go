// Package config provides configuration loading and management for the
// mapping layer: store backend selection, graph namespaces, query
// behavior, and publishing.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Store backend names.
const (
	BackendMemory = "memory"
	BackendNATS   = "nats"
	BackendBadger = "badger"
)

// Config represents the complete configuration
type Config struct {
	Store   StoreConfig   `yaml:"store"`
	NATS    NATSConfig    `yaml:"nats"`
	Graph   GraphConfig   `yaml:"graph"`
	Publish PublishConfig `yaml:"publish"`
	Logging LoggingConfig `yaml:"logging"`
}

// StoreConfig selects and configures the quad store backend
type StoreConfig struct {
	// Backend is one of memory, nats, badger
	Backend string `yaml:"backend"`
	// Bucket is the KV bucket for the nats backend
	Bucket string `yaml:"bucket"`
	// Path is the database directory for the badger backend (empty = in-memory)
	Path string `yaml:"path"`
}

// NATSConfig configures the NATS connection
type NATSConfig struct {
	// URL is the NATS server URL
	URL string `yaml:"url"`
	// Name is the client connection name
	Name string `yaml:"name"`
}

// GraphConfig configures graph and query behavior
type GraphConfig struct {
	// BaseNamespace prefixes derived entity identifiers
	BaseNamespace string `yaml:"base_namespace"`
	// DefaultContext is the context written to when none is named
	DefaultContext string `yaml:"default_context"`
	// ParallelQueries enables concurrent sub-pattern evaluation
	ParallelQueries bool `yaml:"parallel_queries"`
}

// PublishConfig configures triple publishing to streams
type PublishConfig struct {
	// Stream is the JetStream stream name
	Stream string `yaml:"stream"`
	// Subject is the subject triples are published to
	Subject string `yaml:"subject"`
	// BatchSize caps triples per published message
	BatchSize int `yaml:"batch_size"`
}

// LoggingConfig configures log output
type LoggingConfig struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level"`
	// Format is one of text, json
	Format string `yaml:"format"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Backend: BackendMemory,
			Bucket:  "OWMETA_QUADS",
		},
		NATS: NATSConfig{
			URL:  "nats://localhost:4222",
			Name: "owmeta-core",
		},
		Graph: GraphConfig{
			BaseNamespace:  "https://opencortex.dev/entity/",
			DefaultContext: "https://opencortex.dev/context/default",
		},
		Publish: PublishConfig{
			Stream:    "ENTITY_INGEST",
			Subject:   "entity.ingest.graph",
			BatchSize: 100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendBadger:
	case BackendNATS:
		if c.NATS.URL == "" {
			return fmt.Errorf("nats.url is required for the nats backend")
		}
		if c.Store.Bucket == "" {
			return fmt.Errorf("store.bucket is required for the nats backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Graph.BaseNamespace == "" {
		return fmt.Errorf("graph.base_namespace is required")
	}
	if c.Publish.BatchSize < 0 {
		return fmt.Errorf("publish.batch_size must not be negative")
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown logging level %q", c.Logging.Level)
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Store
	if other.Store.Backend != "" {
		c.Store.Backend = other.Store.Backend
	}
	if other.Store.Bucket != "" {
		c.Store.Bucket = other.Store.Bucket
	}
	if other.Store.Path != "" {
		c.Store.Path = other.Store.Path
	}

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
	if other.NATS.Name != "" {
		c.NATS.Name = other.NATS.Name
	}

	// Graph
	if other.Graph.BaseNamespace != "" {
		c.Graph.BaseNamespace = other.Graph.BaseNamespace
	}
	if other.Graph.DefaultContext != "" {
		c.Graph.DefaultContext = other.Graph.DefaultContext
	}
	if other.Graph.ParallelQueries {
		c.Graph.ParallelQueries = true
	}

	// Publish
	if other.Publish.Stream != "" {
		c.Publish.Stream = other.Publish.Stream
	}
	if other.Publish.Subject != "" {
		c.Publish.Subject = other.Publish.Subject
	}
	if other.Publish.BatchSize != 0 {
		c.Publish.BatchSize = other.Publish.BatchSize
	}

	// Logging
	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if other.Logging.Format != "" {
		c.Logging.Format = other.Logging.Format
	}
}
