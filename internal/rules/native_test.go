package rules

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polyglotscan/engine/internal/matcher"
)

func TestCompileNativeSinglePatternProducesTextRegex(t *testing.T) {
	entry := nativeEntry{
		ID:       "r1",
		Severity: "HIGH",
		Patterns: []nativePattern{{Pattern: `exec\(`}},
	}
	rule, err := compileNative("native.yaml", entry)
	require.NoError(t, err)
	m, ok := rule.Matcher.(matcher.TextRegex)
	require.True(t, ok)
	require.Equal(t, `exec\(`, m.Regex)
}

func TestCompileNativeMultiplePatternsProducesTextRegexMulti(t *testing.T) {
	entry := nativeEntry{
		ID:       "r2",
		Severity: "LOW",
		Patterns: []nativePattern{{Pattern: "a"}, {Pattern: "b"}},
	}
	rule, err := compileNative("native.yaml", entry)
	require.NoError(t, err)
	m, ok := rule.Matcher.(matcher.TextRegexMulti)
	require.True(t, ok)
	require.Equal(t, []string{"a", "b"}, m.Allow)
}

func TestCompileNativeMissingIDFails(t *testing.T) {
	_, err := compileNative("native.yaml", nativeEntry{Severity: "LOW", Patterns: []nativePattern{{Pattern: "a"}}})
	require.Error(t, err)
}

func TestCompileNativeUnknownSeverityFails(t *testing.T) {
	entry := nativeEntry{ID: "r3", Severity: "NOPE", Patterns: []nativePattern{{Pattern: "a"}}}
	_, err := compileNative("native.yaml", entry)
	require.Error(t, err)
}

func TestCompileNativeNoMatcherFails(t *testing.T) {
	entry := nativeEntry{ID: "r4", Severity: "LOW"}
	_, err := compileNative("native.yaml", entry)
	require.Error(t, err)
}

func TestCompileNativeAstPatternWithMetavariables(t *testing.T) {
	entry := nativeEntry{
		ID:       "r5",
		Severity: "CRITICAL",
		AstPattern: &nativeAstPattern{
			Kind:   "CallExpr",
			Within: "func",
			Metavariables: []nativeAstMetavariable{
				{Name: "$X", Kind: "ident"},
			},
		},
	}
	rule, err := compileNative("native.yaml", entry)
	require.NoError(t, err)
	m, ok := rule.Matcher.(matcher.AstPattern)
	require.True(t, ok)
	require.Equal(t, "CallExpr", m.Kind)
	require.Len(t, m.Metavariables, 1)
	require.Equal(t, "$X", m.Metavariables[0].Name)
}
