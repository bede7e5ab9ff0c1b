package config

import "github.com/spf13/viper"

// setDefaults sets the default value of every key, which also makes every
// key visible to environment overrides
func setDefaults(v *viper.Viper) {
	// Store defaults
	v.SetDefault("store.backend", "pebble")
	v.SetDefault("store.path", "cmt-data")
	v.SetDefault("store.compressor", "lz4")

	// Cache defaults
	v.SetDefault("cache.proof_cache_size", 1024)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Prove defaults
	v.SetDefault("prove.workers", 0) // 0 means GOMAXPROCS
}
