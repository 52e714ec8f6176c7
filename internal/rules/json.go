package rules

import (
	"fmt"

	"github.com/polyglotscan/engine/internal/engineerr"
	"github.com/polyglotscan/engine/internal/ir"
	"github.com/polyglotscan/engine/internal/matcher"
)

// compileJSONRules walks a decoded JSON document's top-level "rules" object
// looking for leaf objects (identified by a "severity" key); their dotted
// path from the root becomes the rule id "rules.<ns>.<id>".
func compileJSONRules(source string, doc map[string]any) ([]*CompiledRule, error) {
	root, ok := doc["rules"].(map[string]any)
	if !ok {
		return nil, &engineerr.RuleCompileError{Source: source, Err: fmt.Errorf("json rule file missing top-level \"rules\" object")}
	}

	var out []*CompiledRule
	var walk func(prefix string, node map[string]any) error
	walk = func(prefix string, node map[string]any) error {
		if _, hasSeverity := node["severity"]; hasSeverity {
			rule, err := compileJSONEntry(source, prefix, node)
			if err != nil {
				return err
			}
			out = append(out, rule)
			return nil
		}
		for key, v := range node {
			child, ok := v.(map[string]any)
			if !ok {
				continue
			}
			id := key
			if prefix != "" {
				id = prefix + "." + key
			}
			if err := walk(id, child); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk("", root); err != nil {
		return nil, err
	}
	return out, nil
}

func compileJSONEntry(source, id string, node map[string]any) (*CompiledRule, error) {
	severityStr, _ := node["severity"].(string)
	sev, ok := ir.ParseSeverity(severityStr)
	if !ok {
		return nil, &engineerr.RuleCompileError{Source: source, RuleID: id, Err: fmt.Errorf("unknown severity %q", severityStr)}
	}
	message, _ := node["message"].(string)
	category, _ := node["category"].(string)

	var m matcher.Matcher
	if q, ok := node["query"].(map[string]any); ok {
		path, _ := q["path"].(string)
		switch {
		case q["regex"] != nil:
			regex, _ := q["regex"].(string)
			m = matcher.JsonPathRegex{Path: path, Regex: regex}
		case q["value"] != nil:
			m = matcher.JsonPathEq{Path: path, Literal: q["value"]}
		}
	}
	if m == nil {
		if aq, ok := node["ast_query"].(map[string]any); ok {
			kindRegex, _ := aq["kind_regex"].(string)
			valueRegex, _ := aq["value_regex"].(string)
			m = matcher.AstQuery{KindRegex: kindRegex, ValueRegex: valueRegex}
		}
	}
	if m == nil {
		if ap, ok := node["ast-pattern"].(map[string]any); ok {
			kind, _ := ap["kind"].(string)
			within, _ := ap["within"].(string)
			var mvs []matcher.Metavariable
			for _, raw := range toSlice(ap["metavariables"]) {
				mv, ok := raw.(map[string]any)
				if !ok {
					continue
				}
				name, _ := mv["name"].(string)
				kind2, _ := mv["kind"].(string)
				mvs = append(mvs, matcher.Metavariable{Name: name, Kind: kind2, Literal: mv["value"]})
			}
			m = matcher.AstPattern{Kind: kind, Within: within, Metavariables: mvs}
		}
	}
	if m == nil {
		return nil, &engineerr.RuleCompileError{Source: source, RuleID: id, Err: fmt.Errorf("json rule has no query/ast_query/ast-pattern")}
	}

	return &CompiledRule{ID: id, Severity: sev, Category: category, Message: message, Source: source, Matcher: m}, nil
}
