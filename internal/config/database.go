package config

import "fmt"

// StoreConfig represents the [store] section
// Configures the persistent entry store
type StoreConfig struct {
	Backend    string `toml:"backend" mapstructure:"backend"`
	Path       string `toml:"path" mapstructure:"path"`
	Compressor string `toml:"compressor" mapstructure:"compressor"`
}

var (
	validBackends    = []string{"pebble", "leveldb", "bbolt", "memory"}
	validCompressors = []string{"none", "lz4"}
)

// Validate performs validation on the store configuration
func (s *StoreConfig) Validate() error {
	if s.Backend == "" {
		return fmt.Errorf("store backend is required")
	}
	if !contains_slice(validBackends, s.Backend) {
		return fmt.Errorf("invalid store backend: %s (valid options: %v)", s.Backend, validBackends)
	}

	// The memory backend has no files.
	if s.Path == "" && s.Backend != "memory" {
		return fmt.Errorf("store path is required for backend %s", s.Backend)
	}

	if !contains_slice(validCompressors, s.Compressor) {
		return fmt.Errorf("invalid store compressor: %s (valid options: %v)", s.Compressor, validCompressors)
	}

	return nil
}

// Validate performs validation on the cache configuration
func (c *CacheConfig) Validate() error {
	if c.ProofCacheSize < 1 {
		return fmt.Errorf("proof_cache_size must be positive, got %d", c.ProofCacheSize)
	}
	return nil
}

// contains_slice checks if a string slice contains an item
func contains_slice(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
