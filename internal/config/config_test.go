package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadParsesYAMLOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
per_file_timeout: 2s
suppress_comment: "nolint"
rule_cache_size: 256
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2*time.Second, cfg.PerFileTimeout)
	require.Equal(t, "nolint", cfg.SuppressComment)
	require.Equal(t, 256, cfg.RuleCacheSize)
	require.Equal(t, defaultCacheSize, cfg.CanonPathCacheSize, "an omitted cache size must still fall back to the default")
}

func TestLoadNormalizesNonPositiveCacheSizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rule_cache_size: -1
canon_path_cache_size: 0
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, defaultCacheSize, cfg.RuleCacheSize)
	require.Equal(t, defaultCacheSize, cfg.CanonPathCacheSize)
}
