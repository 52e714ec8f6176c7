package rules

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polyglotscan/engine/internal/matcher"
)

func TestCompileSemgrepSinglePattern(t *testing.T) {
	entry := map[string]any{
		"id":       "hardcoded-secret",
		"severity": "MEDIUM",
		"message":  "hardcoded secret",
		"pattern":  `password = "$VALUE"`,
	}

	rule, err := compileSemgrep("secrets.yaml", entry)
	require.NoError(t, err)
	require.Equal(t, "hardcoded-secret", rule.ID)
	tr, ok := rule.Matcher.(matcher.TextRegex)
	require.True(t, ok)
	require.Equal(t, `password = "$VALUE"`, tr.Original)
	require.Contains(t, tr.Regex, `([^\n]*?)`)
}

func TestCompileSemgrepPatternEither(t *testing.T) {
	entry := map[string]any{
		"id":       "weak-hash",
		"severity": "LOW",
		"pattern-either": []any{
			map[string]any{"pattern": "md5($X)"},
			map[string]any{"pattern": "sha1($X)"},
		},
	}

	rule, err := compileSemgrep("hash.yaml", entry)
	require.NoError(t, err)
	trm, ok := rule.Matcher.(matcher.TextRegexMulti)
	require.True(t, ok)
	require.Len(t, trm.Allow, 2)
}

func TestCompileSemgrepPatternsConjunction(t *testing.T) {
	entry := map[string]any{
		"id":       "conjunction-rule",
		"severity": "HIGH",
		"patterns": []any{
			map[string]any{"pattern": "exec($CMD)"},
			map[string]any{"pattern-not-inside": "def safe_exec(...):"},
		},
	}

	rule, err := compileSemgrep("conj.yaml", entry)
	require.NoError(t, err)
	trm, ok := rule.Matcher.(matcher.TextRegexMulti)
	require.True(t, ok)
	require.Len(t, trm.Allow, 1)
	require.Len(t, trm.NotInside, 1)
}

func TestCompileSemgrepTaintRule(t *testing.T) {
	entry := map[string]any{
		"id":       "sql-injection",
		"severity": "HIGH",
		"message":  "tainted input reaches a query sink",
		"pattern-sources": []any{
			map[string]any{"pattern": "$VAR = request.GET[...]"},
		},
		"pattern-sanitizers": []any{
			map[string]any{"pattern": "escape($VAR)"},
		},
		"pattern-sinks": []any{
			map[string]any{"pattern": "execute($VAR)"},
		},
	}

	rule, err := compileSemgrep("taint.yaml", entry)
	require.NoError(t, err)
	taint, ok := rule.Matcher.(matcher.TaintRule)
	require.True(t, ok)
	require.Len(t, taint.Sources, 1)
	require.Len(t, taint.Sanitizers, 1)
	require.Len(t, taint.Sinks, 1)
	require.Equal(t, []string{"$VAR = request.GET[...]"}, rule.Sources)
	require.Equal(t, []string{"execute($VAR)"}, rule.Sinks)
}

func TestCompileSemgrepMissingIDFails(t *testing.T) {
	_, err := compileSemgrep("bad.yaml", map[string]any{"severity": "HIGH", "pattern": "foo"})
	require.Error(t, err)
}

func TestCompileSemgrepNoPatternFails(t *testing.T) {
	_, err := compileSemgrep("bad.yaml", map[string]any{"id": "no-pattern", "severity": "HIGH"})
	require.Error(t, err)
}

func TestCompileSemgrepMetavariableRegexInlined(t *testing.T) {
	entry := map[string]any{
		"id":       "typed-metavar",
		"severity": "LOW",
		"pattern":  "level = $LEVEL",
		"metavariable-regex": []any{
			map[string]any{"metavariable": "$LEVEL", "regex": `\A\d+\z`},
		},
	}

	rule, err := compileSemgrep("mv.yaml", entry)
	require.NoError(t, err)
	tr, ok := rule.Matcher.(matcher.TextRegex)
	require.True(t, ok)
	require.Contains(t, tr.Regex, `(\d+)`)
}
