package rules

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerifyCollectsCompileErrorsAndContinues(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, "bad.yaml", `
rules:
  - id: missing-severity
    message: oops
    patterns:
      - pattern: 'foo'
`)
	writeRuleFile(t, dir, "good.yaml", `
rules:
  - id: ok-rule
    severity: HIGH
    message: fine
    patterns:
      - pattern: 'bar'
`)

	set, errs := Verify(dir)
	require.Len(t, errs, 1)
	require.Equal(t, 1, set.Len())
	_, ok := set.Get("ok-rule")
	require.True(t, ok)
}

func TestVerifyCollectsDuplicateOncePerFile(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, "dups.yaml", `
rules:
  - id: dup
    severity: HIGH
    message: first
    patterns:
      - pattern: 'foo'
  - id: dup
    severity: HIGH
    message: second
    patterns:
      - pattern: 'bar'
  - id: third
    severity: LOW
    message: third
    patterns:
      - pattern: 'baz'
`)

	set, errs := Verify(dir)
	require.Len(t, errs, 1, "the duplicate is flagged once, the rest of the file still loads")
	require.Equal(t, 2, set.Len())
}
