package evaluator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polyglotscan/engine/internal/config"
	"github.com/polyglotscan/engine/internal/ir"
	"github.com/polyglotscan/engine/internal/matcher"
	"github.com/polyglotscan/engine/internal/rules"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func ruleSetOf(t *testing.T, rule *rules.CompiledRule) *rules.RuleSet {
	t.Helper()
	set := rules.NewRuleSet()
	require.NoError(t, set.Add(rule))
	return set
}

func TestAnalyzeTextRuleMatch(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "app.py", "password = \"hunter2\"\n")

	rule := &rules.CompiledRule{
		ID:       "hardcoded-secret",
		Severity: ir.SeverityMedium,
		Message:  "hardcoded secret",
		Matcher:  matcher.TextRegex{Regex: `password\s*=\s*"`},
	}

	eval := New(config.Default())
	found, metrics, err := eval.Analyze(context.Background(), []string{path}, ruleSetOf(t, rule), config.Default(), nil)
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "hardcoded-secret", found[0].RuleID)
	require.Equal(t, 1, metrics.FilesParsed)
	require.NotEmpty(t, metrics.RunID)
}

func TestAnalyzeTextRuleNotInsideExcludesMatch(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "app.py", "# password = \"hunter2\"\n")

	rule := &rules.CompiledRule{
		ID:       "hardcoded-secret",
		Severity: ir.SeverityMedium,
		Matcher: matcher.TextRegexMulti{
			Allow: []string{`password\s*=\s*"`},
			Deny:  []string{`^\s*#`},
		},
	}

	eval := New(config.Default())
	found, _, err := eval.Analyze(context.Background(), []string{path}, ruleSetOf(t, rule), config.Default(), nil)
	require.NoError(t, err)
	require.Empty(t, found, "a commented-out line denied by the deny pattern must not match")
}

func TestAnalyzeTaintWithoutSanitizerFindsFlow(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "app.py", "q = request.GET['q']\nexecute(q)\n")

	rule := &rules.CompiledRule{
		ID:       "sql-injection",
		Severity: ir.SeverityHigh,
		Message:  "tainted input reaches execute()",
		Matcher: matcher.TaintRule{
			Sources: []matcher.TaintPatternSet{{Allow: []string{`(\w+)\s*=\s*request\.GET\[`}}},
			Sinks:   []matcher.TaintPatternSet{{Allow: []string{`execute\(\w+\)`}}},
		},
	}

	eval := New(config.Default())
	found, _, err := eval.Analyze(context.Background(), []string{path}, ruleSetOf(t, rule), config.Default(), nil)
	require.NoError(t, err)
	require.Len(t, found, 1)
}

func TestAnalyzeTaintWithSanitizerSuppressesFlow(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "app.py", "q = request.GET['q']\nq = escape(q)\nexecute(q)\n")

	rule := &rules.CompiledRule{
		ID:       "sql-injection",
		Severity: ir.SeverityHigh,
		Matcher: matcher.TaintRule{
			Sources:    []matcher.TaintPatternSet{{Allow: []string{`(\w+)\s*=\s*request\.GET\[`}}},
			Sanitizers: []matcher.TaintPatternSet{{Allow: []string{`(\w+)\s*=\s*escape\(`}}},
			Sinks:      []matcher.TaintPatternSet{{Allow: []string{`execute\(\w+\)`}}},
		},
	}

	eval := New(config.Default())
	found, _, err := eval.Analyze(context.Background(), []string{path}, ruleSetOf(t, rule), config.Default(), nil)
	require.NoError(t, err)
	require.Empty(t, found, "escape() must sanitize the flow before it reaches execute()")
}

func TestAnalyzeJSONPathRuleMatch(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.json", `{"debug": true}`)

	rule := &rules.CompiledRule{
		ID:       "debug-enabled",
		Severity: ir.SeverityLow,
		Matcher:  matcher.JsonPathEq{Path: "debug", Literal: true},
	}

	eval := New(config.Default())
	found, _, err := eval.Analyze(context.Background(), []string{path}, ruleSetOf(t, rule), config.Default(), nil)
	require.NoError(t, err)
	require.Len(t, found, 1)
}

func TestAnalyzeLanguageFilterSkipsNonMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	pyPath := writeFile(t, dir, "app.py", "password = \"hunter2\"\n")
	rbPath := writeFile(t, dir, "app.rb", "password = \"hunter2\"\n")

	rule := &rules.CompiledRule{
		ID:        "hardcoded-secret",
		Severity:  ir.SeverityMedium,
		Languages: []string{"python"},
		Matcher:   matcher.TextRegex{Regex: `password\s*=\s*"`},
	}

	eval := New(config.Default())
	found, _, err := eval.Analyze(context.Background(), []string{pyPath, rbPath}, ruleSetOf(t, rule), config.Default(), nil)
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, pyPath, found[0].File)
}

func TestAnalyzeDedupsIdenticalFindings(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "app.py", "password = \"hunter2\"\n")

	rule := &rules.CompiledRule{
		ID:       "hardcoded-secret",
		Severity: ir.SeverityMedium,
		Matcher:  matcher.TextRegex{Regex: `password\s*=\s*"`},
	}
	set := rules.NewRuleSet()
	require.NoError(t, set.Add(rule))

	eval := New(config.Default())
	found1, _, err := eval.Analyze(context.Background(), []string{path}, set, config.Default(), nil)
	require.NoError(t, err)
	found2, _, err := eval.Analyze(context.Background(), []string{path}, set, config.Default(), nil)
	require.NoError(t, err)
	require.Equal(t, found1[0].ID, found2[0].ID, "the same (rule, file, line, column) must hash to the same identifier")
}
