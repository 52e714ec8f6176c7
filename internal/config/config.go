// Package config defines the engine's run configuration: read YAML, fall
// back to defaults when the file is absent.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultCacheSize = 1024

// EngineConfig is { per-file timeout, per-rule timeout, baseline set,
// suppress comment token }, plus the cache sizing knobs left to the engine.
// BaselinePath is loaded into a baseline set by the caller.
type EngineConfig struct {
	PerFileTimeout     time.Duration `yaml:"per_file_timeout,omitempty"`
	PerRuleTimeout     time.Duration `yaml:"per_rule_timeout,omitempty"`
	BaselinePath       string        `yaml:"baseline_path,omitempty"`
	SuppressComment    string        `yaml:"suppress_comment,omitempty"`
	RuleCacheSize      int           `yaml:"rule_cache_size,omitempty"`
	CanonPathCacheSize int           `yaml:"canon_path_cache_size,omitempty"`
}

// Default returns the zero-configuration engine defaults: no timeouts, no
// baseline, no suppression token, 1024-entry caches.
func Default() *EngineConfig {
	return &EngineConfig{
		RuleCacheSize:      defaultCacheSize,
		CanonPathCacheSize: defaultCacheSize,
	}
}

// Load reads path as YAML; if the file does not exist, it returns Default().
func Load(path string) (*EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.RuleCacheSize <= 0 {
		cfg.RuleCacheSize = defaultCacheSize
	}
	if cfg.CanonPathCacheSize <= 0 {
		cfg.CanonPathCacheSize = defaultCacheSize
	}
	return cfg, nil
}
