package canonpath

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanonicalizeReturnsAbsoluteCleanedPath(t *testing.T) {
	c := New(0)
	got, err := c.Canonicalize("./foo/../bar.go")
	require.NoError(t, err)
	require.True(t, filepath.IsAbs(got))
	require.Equal(t, "bar.go", filepath.Base(got))
}

func TestCanonicalizeCachesHitsAndMisses(t *testing.T) {
	c := New(0)
	_, err := c.Canonicalize("a.go")
	require.NoError(t, err)
	_, err = c.Canonicalize("a.go")
	require.NoError(t, err)

	hits, misses := c.HitMiss()
	require.Equal(t, int64(1), hits)
	require.Equal(t, int64(1), misses)
}

func TestResetClearsCacheAndCounters(t *testing.T) {
	c := New(0)
	_, err := c.Canonicalize("a.go")
	require.NoError(t, err)

	c.Reset()
	hits, misses := c.HitMiss()
	require.Equal(t, int64(0), hits)
	require.Equal(t, int64(0), misses)

	_, err = c.Canonicalize("a.go")
	require.NoError(t, err)
	hits, misses = c.HitMiss()
	require.Equal(t, int64(0), hits)
	require.Equal(t, int64(1), misses, "after Reset the entry must be re-computed as a fresh miss")
}
