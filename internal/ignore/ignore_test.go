package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsEmptyMatcher(t *testing.T) {
	m, err := Load(t.TempDir())
	require.NoError(t, err)
	require.False(t, m.Match("anything.go"))
}

func TestLoadParsesPatternsSkippingCommentsAndBlanks(t *testing.T) {
	dir := t.TempDir()
	content := "# comment\n\nvendor/**\n*.generated.go\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".staticignore"), []byte(content), 0644))

	m, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, []string{"vendor/**", "*.generated.go"}, m.patterns)
}

func TestMatchDirectoryGlobExcludesNestedPaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".staticignore"), []byte("vendor/**\n"), 0644))

	m, err := Load(dir)
	require.NoError(t, err)
	require.True(t, m.Match("vendor/pkg/mod.go"))
	require.False(t, m.Match("internal/pkg/mod.go"))
}

func TestMatchExtensionGlobMatchesBaseName(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".staticignore"), []byte("*.generated.go\n"), 0644))

	m, err := Load(dir)
	require.NoError(t, err)
	require.True(t, m.Match("internal/models/user.generated.go"))
	require.False(t, m.Match("internal/models/user.go"))
}

func TestNilMatcherNeverMatches(t *testing.T) {
	var m *Matcher
	require.False(t, m.Match("anything"))
}
