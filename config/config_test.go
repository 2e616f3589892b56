package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Store.Backend != BackendMemory {
		t.Errorf("expected default backend memory, got %s", cfg.Store.Backend)
	}
	if cfg.Store.Bucket != "OWMETA_QUADS" {
		t.Errorf("expected default bucket OWMETA_QUADS, got %s", cfg.Store.Bucket)
	}
	if cfg.Graph.BaseNamespace == "" {
		t.Error("expected a default base namespace")
	}
	if cfg.Publish.BatchSize != 100 {
		t.Errorf("expected default batch size 100, got %d", cfg.Publish.BatchSize)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "unknown backend",
			modify:  func(c *Config) { c.Store.Backend = "postgres" },
			wantErr: true,
		},
		{
			name: "nats backend without url",
			modify: func(c *Config) {
				c.Store.Backend = BackendNATS
				c.NATS.URL = ""
			},
			wantErr: true,
		},
		{
			name: "nats backend without bucket",
			modify: func(c *Config) {
				c.Store.Backend = BackendNATS
				c.Store.Bucket = ""
			},
			wantErr: true,
		},
		{
			name:    "missing base namespace",
			modify:  func(c *Config) { c.Graph.BaseNamespace = "" },
			wantErr: true,
		},
		{
			name:    "negative batch size",
			modify:  func(c *Config) { c.Publish.BatchSize = -1 },
			wantErr: true,
		},
		{
			name:    "unknown log level",
			modify:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temp file with config
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
store:
  backend: badger
  path: "/var/lib/owmeta"
nats:
  url: "nats://test:4222"
graph:
  base_namespace: "https://example.org/entity/"
  parallel_queries: true
publish:
  subject: "graph.ingest.test"
  batch_size: 25
logging:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Store.Backend != BackendBadger {
		t.Errorf("expected backend badger, got %s", cfg.Store.Backend)
	}
	if cfg.Store.Path != "/var/lib/owmeta" {
		t.Errorf("expected store path /var/lib/owmeta, got %s", cfg.Store.Path)
	}
	if cfg.NATS.URL != "nats://test:4222" {
		t.Errorf("expected NATS URL nats://test:4222, got %s", cfg.NATS.URL)
	}
	if cfg.Graph.BaseNamespace != "https://example.org/entity/" {
		t.Errorf("expected base namespace https://example.org/entity/, got %s", cfg.Graph.BaseNamespace)
	}
	if !cfg.Graph.ParallelQueries {
		t.Error("expected parallel queries enabled")
	}
	if cfg.Publish.Subject != "graph.ingest.test" {
		t.Errorf("expected subject graph.ingest.test, got %s", cfg.Publish.Subject)
	}
	if cfg.Publish.BatchSize != 25 {
		t.Errorf("expected batch size 25, got %d", cfg.Publish.BatchSize)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}
}

func TestConfigMerge(t *testing.T) {
	base := DefaultConfig()
	override := &Config{
		Store: StoreConfig{
			Backend: BackendBadger,
			Path:    "/override/path",
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}

	base.Merge(override)

	if base.Store.Backend != BackendBadger {
		t.Errorf("expected backend badger, got %s", base.Store.Backend)
	}
	if base.Store.Path != "/override/path" {
		t.Errorf("expected store path /override/path, got %s", base.Store.Path)
	}
	// Bucket should remain from base since override didn't set it
	if base.Store.Bucket != "OWMETA_QUADS" {
		t.Errorf("expected bucket to remain default, got %s", base.Store.Bucket)
	}
	if base.Logging.Level != "warn" {
		t.Errorf("expected log level warn, got %s", base.Logging.Level)
	}
}

func TestConfigSaveToFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "subdir", "config.yaml")

	cfg := DefaultConfig()
	cfg.Store.Backend = BackendBadger

	if err := cfg.SaveToFile(configPath); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	// Verify file was created
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("config file was not created")
	}

	// Load and verify
	loaded, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}
	if loaded.Store.Backend != BackendBadger {
		t.Errorf("expected backend badger, got %s", loaded.Store.Backend)
	}
}

func TestLoaderApplyEnv(t *testing.T) {
	t.Setenv("OWMETA_STORE_BACKEND", BackendBadger)
	t.Setenv("OWMETA_STORE_PATH", "/var/lib/owmeta")
	t.Setenv("OWMETA_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	NewLoader(nil).applyEnv(cfg)

	if cfg.Store.Backend != BackendBadger {
		t.Errorf("expected backend badger, got %s", cfg.Store.Backend)
	}
	if cfg.Store.Path != "/var/lib/owmeta" {
		t.Errorf("expected overridden path, got %s", cfg.Store.Path)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug level, got %s", cfg.Logging.Level)
	}
	// Unset variables leave the layered value alone.
	if cfg.NATS.URL != "nats://localhost:4222" {
		t.Errorf("unexpected NATS URL override: %s", cfg.NATS.URL)
	}
}
