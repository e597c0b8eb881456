package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.Pipeline.MaxChunkSize)
	assert.Equal(t, 50, cfg.Pipeline.ChunkOverlap)
	assert.Equal(t, 500*time.Millisecond, cfg.Pipeline.ProgressUpdateInterval)
	assert.False(t, cfg.Pipeline.ParallelProcessing)
	assert.Equal(t, 3, cfg.Pipeline.MaxParallelChunks)
	assert.Equal(t, 80.0, cfg.Pipeline.MemoryLimitPercent)
	assert.True(t, cfg.Pipeline.EnableAutoSave)
	assert.Equal(t, 10, cfg.Pipeline.AutoSaveInterval)
	assert.Equal(t, 10*time.Minute, cfg.Pipeline.DefaultTimeout)

	assert.Equal(t, "raw", cfg.Strategy.Provider)
	assert.Equal(t, "memory", cfg.JobStore.Backend)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "humanizer.yaml")
	content := `
pipeline:
  max_chunk_size: 500
  parallel_processing: true
  max_parallel_chunks: 5
strategy:
  provider: openai
  api_key: test-key
  model: gpt-4o
debug: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Pipeline.MaxChunkSize)
	assert.True(t, cfg.Pipeline.ParallelProcessing)
	assert.Equal(t, 5, cfg.Pipeline.MaxParallelChunks)
	// 未覆盖的键保持默认值
	assert.Equal(t, 50, cfg.Pipeline.ChunkOverlap)

	assert.Equal(t, "openai", cfg.Strategy.Provider)
	assert.Equal(t, "test-key", cfg.Strategy.APIKey)
	assert.Equal(t, "gpt-4o", cfg.Strategy.Model)
	assert.True(t, cfg.Debug)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load("/nonexistent/humanizer.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(c *AppConfig) {},
		},
		{
			name:    "openai without key",
			mutate:  func(c *AppConfig) { c.Strategy.Provider = "openai" },
			wantErr: "api key",
		},
		{
			name:    "unknown provider",
			mutate:  func(c *AppConfig) { c.Strategy.Provider = "carrier-pigeon" },
			wantErr: "unknown provider",
		},
		{
			name:    "postgres without dsn",
			mutate:  func(c *AppConfig) { c.JobStore.Backend = "postgres" },
			wantErr: "dsn",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *AppConfig) { c.JobStore.Backend = "floppy" },
			wantErr: "unknown backend",
		},
		{
			name:    "invalid pipeline config",
			mutate:  func(c *AppConfig) { c.Pipeline.MaxChunkSize = 0 },
			wantErr: "pipeline config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)
			tt.mutate(cfg)

			err = cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
