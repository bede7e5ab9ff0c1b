package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tempDir := t.TempDir()

	mainConfigContent := `
[store]
backend = "leveldb"
path = "data/entries"
compressor = "none"

[cache]
proof_cache_size = 64

[log]
level = "debug"
format = "json"

[prove]
workers = 3
`

	mainConfigPath := filepath.Join(tempDir, "cmt.toml")
	require.NoError(t, os.WriteFile(mainConfigPath, []byte(mainConfigContent), 0644))

	config, err := LoadConfig(mainConfigPath)
	require.NoError(t, err)
	require.NotNil(t, config)

	assert.Equal(t, "leveldb", config.Store.Backend)
	assert.Equal(t, "data/entries", config.Store.Path)
	assert.Equal(t, "none", config.Store.Compressor)
	assert.Equal(t, 64, config.Cache.ProofCacheSize)
	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, "json", config.Log.Format)
	assert.Equal(t, 3, config.Prove.Workers)

	assert.Equal(t, mainConfigPath, config.GetConfigPath())
	assert.Equal(t, filepath.Join(tempDir, "data/entries"), config.ResolveStorePath())
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "pebble", config.Store.Backend)
	assert.Equal(t, "cmt-data", config.Store.Path)
	assert.Equal(t, "lz4", config.Store.Compressor)
	assert.Equal(t, 1024, config.Cache.ProofCacheSize)
	assert.Equal(t, "info", config.Log.Level)
	assert.Equal(t, "text", config.Log.Format)
	assert.Equal(t, 0, config.Prove.Workers)
	assert.Equal(t, "cmt-data", config.ResolveStorePath())
}

func TestLoadConfigPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cmt.toml")
	require.NoError(t, os.WriteFile(path, []byte("[store]\nbackend = \"bbolt\"\npath = \"/var/lib/cmt/entries.db\"\n"), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "bbolt", config.Store.Backend)
	assert.Equal(t, "/var/lib/cmt/entries.db", config.ResolveStorePath())
	assert.Equal(t, "lz4", config.Store.Compressor)
	assert.Equal(t, 1024, config.Cache.ProofCacheSize)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("CMT_STORE_BACKEND", "memory")
	t.Setenv("CMT_CACHE_PROOF_CACHE_SIZE", "8")
	t.Setenv("CMT_LOG_LEVEL", "warn")

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "memory", config.Store.Backend)
	assert.Equal(t, 8, config.Cache.ProofCacheSize)
	assert.Equal(t, "warn", config.Log.Level)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestConfigValidationErrors(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Store: StoreConfig{Backend: "pebble", Path: "data", Compressor: "lz4"},
			Cache: CacheConfig{ProofCacheSize: 10},
			Log:   LogConfig{Level: "info", Format: "text"},
		}
	}
	require.NoError(t, ValidateConfig(valid()))

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"EmptyBackend", func(c *Config) { c.Store.Backend = "" }},
		{"UnknownBackend", func(c *Config) { c.Store.Backend = "rocksdb" }},
		{"MissingPath", func(c *Config) { c.Store.Path = "" }},
		{"UnknownCompressor", func(c *Config) { c.Store.Compressor = "zstd" }},
		{"ZeroCache", func(c *Config) { c.Cache.ProofCacheSize = 0 }},
		{"BadLogLevel", func(c *Config) { c.Log.Level = "verbose" }},
		{"BadLogFormat", func(c *Config) { c.Log.Format = "xml" }},
		{"NegativeWorkers", func(c *Config) { c.Prove.Workers = -1 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := valid()
			tc.mutate(c)
			assert.Error(t, ValidateConfig(c))
		})
	}

	c := valid()
	c.Store.Backend = "memory"
	c.Store.Path = ""
	assert.NoError(t, ValidateConfig(c))
}
