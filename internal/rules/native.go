package rules

import (
	"fmt"

	"github.com/polyglotscan/engine/internal/engineerr"
	"github.com/polyglotscan/engine/internal/ir"
	"github.com/polyglotscan/engine/internal/matcher"
)

// nativeEntry mirrors the native YAML dialect's rule fields. Raw
// textual patterns here are used directly as fancy-regexes — no Semgrep
// metavariable/ellipsis translation applies.
type nativeEntry struct {
	ID          string            `yaml:"id"`
	Severity    string            `yaml:"severity"`
	Category    string            `yaml:"category"`
	Patterns    []nativePattern   `yaml:"patterns"`
	AstQuery    *nativeAstQuery   `yaml:"ast_query"`
	AstPattern  *nativeAstPattern `yaml:"ast-pattern"`
	Message     string            `yaml:"message"`
	Remediation string            `yaml:"remediation"`
	Fix         string            `yaml:"fix"`
	Interfile   bool              `yaml:"interfile"`
	Languages   []string          `yaml:"languages"`
}

type nativePattern struct {
	Pattern string `yaml:"pattern"`
}

type nativeAstQuery struct {
	KindRegex  string `yaml:"kind_regex"`
	ValueRegex string `yaml:"value_regex"`
}

type nativeAstPattern struct {
	Kind          string                   `yaml:"kind"`
	Within        string                   `yaml:"within"`
	Metavariables []nativeAstMetavariable  `yaml:"metavariables"`
}

type nativeAstMetavariable struct {
	Name  string `yaml:"name"`
	Kind  string `yaml:"kind"`
	Value any    `yaml:"value"`
}

// compileNative turns one native-dialect entry into a CompiledRule.
func compileNative(source string, entry nativeEntry) (*CompiledRule, error) {
	if entry.ID == "" {
		return nil, &engineerr.RuleCompileError{Source: source, Err: fmt.Errorf("native rule missing id")}
	}
	sev, ok := ir.ParseSeverity(entry.Severity)
	if !ok {
		return nil, &engineerr.RuleCompileError{Source: source, RuleID: entry.ID, Err: fmt.Errorf("unknown severity %q", entry.Severity)}
	}

	var m matcher.Matcher
	switch {
	case entry.AstPattern != nil:
		mvs := make([]matcher.Metavariable, 0, len(entry.AstPattern.Metavariables))
		for _, mv := range entry.AstPattern.Metavariables {
			mvs = append(mvs, matcher.Metavariable{Name: mv.Name, Kind: mv.Kind, Literal: mv.Value})
		}
		m = matcher.AstPattern{Kind: entry.AstPattern.Kind, Within: entry.AstPattern.Within, Metavariables: mvs}
	case entry.AstQuery != nil:
		m = matcher.AstQuery{KindRegex: entry.AstQuery.KindRegex, ValueRegex: entry.AstQuery.ValueRegex}
	case len(entry.Patterns) == 1:
		m = matcher.TextRegex{Regex: entry.Patterns[0].Pattern, Original: entry.Patterns[0].Pattern}
	case len(entry.Patterns) > 1:
		allow := make([]string, 0, len(entry.Patterns))
		for _, p := range entry.Patterns {
			allow = append(allow, p.Pattern)
		}
		m = matcher.TextRegexMulti{Allow: allow}
	default:
		return nil, &engineerr.RuleCompileError{Source: source, RuleID: entry.ID, Err: fmt.Errorf("native rule has no patterns, ast_query, or ast-pattern")}
	}

	return &CompiledRule{
		ID:          entry.ID,
		Severity:    sev,
		Category:    entry.Category,
		Message:     entry.Message,
		Remediation: entry.Remediation,
		Fix:         entry.Fix,
		Interfile:   entry.Interfile,
		Languages:   entry.Languages,
		Source:      source,
		Matcher:     m,
	}, nil
}
