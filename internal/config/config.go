package config

import (
	"path/filepath"
)

// Config represents the complete cmt configuration
type Config struct {
	// [store] where entries and the committed root are kept
	Store StoreConfig `toml:"store" mapstructure:"store"`

	// [cache] proof cache sizing
	Cache CacheConfig `toml:"cache" mapstructure:"cache"`

	// [log] logging output
	Log LogConfig `toml:"log" mapstructure:"log"`

	// [prove] batch proof generation
	Prove ProveConfig `toml:"prove" mapstructure:"prove"`

	// Path of the file the configuration was read from, if any
	configPath string
}

// CacheConfig represents the [cache] section
type CacheConfig struct {
	ProofCacheSize int `toml:"proof_cache_size" mapstructure:"proof_cache_size"`
}

// LogConfig represents the [log] section
type LogConfig struct {
	Level  string `toml:"level" mapstructure:"level"`
	Format string `toml:"format" mapstructure:"format"`
}

// ProveConfig represents the [prove] section
type ProveConfig struct {
	// Workers bounds batch proof goroutines; 0 means GOMAXPROCS
	Workers int `toml:"workers" mapstructure:"workers"`
}

// GetConfigPath returns the path of the loaded configuration file, or the
// empty string when only defaults and environment were used
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// ResolveStorePath returns the store path, relative paths being resolved
// against the directory of the configuration file
func (c *Config) ResolveStorePath() string {
	if c.Store.Path == "" || filepath.IsAbs(c.Store.Path) || c.configPath == "" {
		return c.Store.Path
	}
	return filepath.Join(filepath.Dir(c.configPath), c.Store.Path)
}
