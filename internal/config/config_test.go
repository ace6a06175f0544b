package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.ChunkSize != 512 {
		t.Errorf("expected default chunk_size 512, got %d", cfg.ChunkSize)
	}
	if cfg.RetrieveTopK != 5 {
		t.Errorf("expected default retrieve_top_k 5, got %d", cfg.RetrieveTopK)
	}
	if cfg.InjectionType != InjectionSystem {
		t.Errorf("expected default injection_type %q, got %q", InjectionSystem, cfg.InjectionType)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.filerag.yml")

	original := DefaultConfig()
	original.DataDir = filepath.Join(dir, "data")
	original.ChunkSize = 256
	original.FileMaxRounds = 3
	original.InjectionType = InjectionPrompt
	original.EnabledGroups = []string{"guild-*", "12345"}

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.DataDir != original.DataDir {
		t.Errorf("data_dir: got %q, want %q", loaded.DataDir, original.DataDir)
	}
	if loaded.ChunkSize != original.ChunkSize {
		t.Errorf("chunk_size: got %d, want %d", loaded.ChunkSize, original.ChunkSize)
	}
	if loaded.FileMaxRounds != original.FileMaxRounds {
		t.Errorf("file_max_rounds: got %d, want %d", loaded.FileMaxRounds, original.FileMaxRounds)
	}
	if loaded.InjectionType != original.InjectionType {
		t.Errorf("injection_type: got %q, want %q", loaded.InjectionType, original.InjectionType)
	}
	if len(loaded.EnabledGroups) != 2 {
		t.Errorf("enabled_groups: got %v", loaded.EnabledGroups)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ChunkSize != 512 {
		t.Errorf("expected defaults for missing file, got chunk_size %d", cfg.ChunkSize)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }, true},
		{"overlap >= size", func(c *Config) { c.ChunkOverlap = c.ChunkSize }, true},
		{"fetch_k below top_k", func(c *Config) { c.FetchK = c.RetrieveTopK - 1 }, true},
		{"bad injection type", func(c *Config) { c.InjectionType = "inline" }, true},
		{"negative keep rounds", func(c *Config) { c.SystemContextKeepRounds = -1 }, true},
		{"no embedding providers", func(c *Config) { c.EmbeddingProviders = nil }, true},
		{"cohere as embedder", func(c *Config) {
			c.EmbeddingProviders = []EmbeddingProviderConfig{{ID: "x", Type: ProviderCohere}}
		}, true},
		{"zero retention allowed", func(c *Config) { c.FileRetentionTime = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FileRetentionTime = 90
	cfg.CleanupInterval = 5
	cfg.MaxFileSize = 2

	if got := cfg.RetentionDuration(); got != 90*time.Minute {
		t.Errorf("RetentionDuration() = %v", got)
	}
	if got := cfg.CleanupIntervalDuration(); got != 5*time.Minute {
		t.Errorf("CleanupIntervalDuration() = %v", got)
	}
	if got := cfg.MaxFileSizeBytes(); got != 2*1024*1024 {
		t.Errorf("MaxFileSizeBytes() = %d", got)
	}
}

func TestTypeSupported(t *testing.T) {
	cfg := DefaultConfig()
	for _, ext := range []string{"pdf", "txt", "go", ""} {
		if !cfg.TypeSupported(ext) {
			t.Errorf("expected %q to be supported by default", ext)
		}
	}
	if cfg.TypeSupported("exe") {
		t.Error("exe should not be supported")
	}
}
