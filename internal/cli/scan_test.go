package cli

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpandPathsIncludesBareFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.py")
	require.NoError(t, os.WriteFile(path, []byte("x = 1\n"), 0644))

	got, err := expandPaths([]string{path})
	require.NoError(t, err)
	require.Equal(t, []string{path}, got)
}

func TestExpandPathsWalksDirectorySkippingGit(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.py"), []byte("x\n"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.py"), []byte("y\n"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git", "HEAD"), []byte("ref\n"), 0644))

	got, err := expandPaths([]string{dir})
	require.NoError(t, err)

	var names []string
	for _, p := range got {
		names = append(names, filepath.Base(p))
	}
	sort.Strings(names)
	require.Equal(t, []string{"a.py", "b.py"}, names)
}

func TestExpandPathsHonorsStaticignore(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.py"), []byte("x\n"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "vendor"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vendor", "lib.py"), []byte("y\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".staticignore"), []byte("vendor/**\n"), 0644))

	got, err := expandPaths([]string{dir})
	require.NoError(t, err)

	var names []string
	for _, p := range got {
		names = append(names, filepath.Base(p))
	}
	sort.Strings(names)
	require.Equal(t, []string{".staticignore", "a.py"}, names)
}

func TestExpandPathsMissingRootErrors(t *testing.T) {
	_, err := expandPaths([]string{filepath.Join(t.TempDir(), "does-not-exist")})
	require.Error(t, err)
}

func TestScanCommandRequiresRulesFlag(t *testing.T) {
	rulesPath = ""
	defer func() { rulesPath = "" }()

	err := scanCommand(scanCmd, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "--rules")
}

func TestScanCommandCleanFileProducesNoFindingsAndDoesNotExit(t *testing.T) {
	dir := t.TempDir()
	rulesDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.py"), []byte("x = 1\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(rulesDir, "rules.yaml"), []byte(`
rules:
  - id: hardcoded-secret
    severity: MEDIUM
    message: hardcoded secret
    patterns:
      - pattern: 'password\s*=\s*"'
`), 0644))

	rulesPath = rulesDir
	configPath = ""
	logPath = ""
	baseline = ""
	format = "text"
	defer func() {
		rulesPath, configPath, logPath, baseline, format = "", "", "", "", "text"
	}()

	err := scanCommand(scanCmd, []string{dir})
	require.NoError(t, err, "a clean scan must return nil rather than calling os.Exit")
}
