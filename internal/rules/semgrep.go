package rules

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/polyglotscan/engine/internal/engineerr"
	"github.com/polyglotscan/engine/internal/ir"
	"github.com/polyglotscan/engine/internal/matcher"
)

var (
	metavarRe = regexp.MustCompile(`\$[A-Za-z_][A-Za-z0-9_]*`)
	wsRunRe   = regexp.MustCompile(`[ \t]+`)
)

// translateCore applies the shared Semgrep pattern -> regex translation
// steps: metavariable substitution, ellipsis, whitespace
// collapse, brace escaping — in that order.
func translateCore(pattern string, mvRegex map[string]string) string {
	s := replaceMetavariables(pattern, mvRegex)
	s = strings.ReplaceAll(s, "...", ".*?")
	s = wsRunRe.ReplaceAllString(s, `\s+`)
	s = strings.ReplaceAll(s, "{", `\{`)
	s = strings.ReplaceAll(s, "}", `\}`)
	return s
}

// replaceMetavariables substitutes every $VAR with a capturing group: an
// unconstrained "([^\n]*?)" unless mvRegex names a metavariable-regex for
// that variable, in which case its regex is inlined with \A/\Z/\z rewritten
// to ^/$ and those anchors stripped (they become interior to the group).
func replaceMetavariables(pattern string, mvRegex map[string]string) string {
	return metavarRe.ReplaceAllStringFunc(pattern, func(tok string) string {
		if re, ok := mvRegex[tok]; ok {
			return "(" + inlineMvRegex(re) + ")"
		}
		return `([^\n]*?)`
	})
}

func inlineMvRegex(re string) string {
	replacer := strings.NewReplacer(`\A`, "^", `\Z`, "$", `\z`, "$")
	re = replacer.Replace(re)
	re = strings.TrimPrefix(re, "^")
	re = strings.TrimSuffix(re, "$")
	return re
}

// translateExact produces the precise-range form used under allow/deny/
// inside/not-inside semantics.
func translateExact(pattern string, mvRegex map[string]string) string {
	return "(?s)" + translateCore(pattern, mvRegex)
}

// translatePermissive produces the "found anywhere" form for basic text
// scans that don't otherwise gate on inside/not-inside.
func translatePermissive(pattern string, mvRegex map[string]string) string {
	return "(?s).*" + translateCore(pattern, mvRegex) + ".*?"
}

// parseMvRegex normalises metavariable-regex, which YAML may give as a list
// of {metavariable, regex} or a map of metavariable -> regex.
func parseMvRegex(raw any) map[string]string {
	out := make(map[string]string)
	switch v := raw.(type) {
	case map[string]any:
		for k, val := range v {
			if s, ok := val.(string); ok {
				out[k] = s
			}
		}
	case []any:
		for _, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			name, _ := m["metavariable"].(string)
			re, _ := m["regex"].(string)
			if name != "" && re != "" {
				out[name] = re
			}
		}
	}
	return out
}

func toSlice(raw any) []any {
	if raw == nil {
		return nil
	}
	if s, ok := raw.([]any); ok {
		return s
	}
	return []any{raw}
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		i, _ := strconv.Atoi(n)
		return i
	default:
		return 0
	}
}

// compileTaintPatternSet builds one taint pattern-set element from a
// list of plain pattern strings or {pattern, pattern-not, pattern-inside,
// pattern-not-inside, focus-metavariable, allow_focus_groups,
// inside_focus_groups} maps.
func compileTaintPatternSet(items []any, mvRegex map[string]string) matcher.TaintPatternSet {
	var set matcher.TaintPatternSet
	for _, raw := range items {
		switch v := raw.(type) {
		case string:
			set.Allow = append(set.Allow, translateExact(v, mvRegex))
		case map[string]any:
			if p, ok := v["pattern"].(string); ok {
				set.Allow = append(set.Allow, translateExact(p, mvRegex))
			}
			if p, ok := v["pattern-not"].(string); ok {
				set.Deny = append(set.Deny, translateExact(p, mvRegex))
			}
			if p, ok := v["pattern-inside"].(string); ok {
				set.Inside = append(set.Inside, translateExact(p, mvRegex))
			}
			if p, ok := v["pattern-not-inside"].(string); ok {
				set.NotInside = append(set.NotInside, translateExact(p, mvRegex))
			}
			if f, ok := v["focus-metavariable"].(string); ok {
				set.Focus = f
			}
			for _, g := range toSlice(v["allow_focus_groups"]) {
				set.AllowFocusGroups = append(set.AllowFocusGroups, toInt(g))
			}
			for _, g := range toSlice(v["inside_focus_groups"]) {
				set.InsideFocusGroups = append(set.InsideFocusGroups, toInt(g))
			}
		}
	}
	return set
}

// patternSetTexts returns the untranslated Allow-pattern source texts of a
// taint pattern-set list, for CompiledRule.Sources/Sinks name tracking.
func patternSetTexts(items []any) []string {
	var out []string
	for _, raw := range items {
		switch v := raw.(type) {
		case string:
			out = append(out, v)
		case map[string]any:
			if p, ok := v["pattern"].(string); ok {
				out = append(out, p)
			}
		}
	}
	return out
}

// compileSemgrep compiles one Semgrep-dialect entry (already identified by
// classifyDialect). entry is the raw decoded YAML map for the rule.
func compileSemgrep(source string, entry map[string]any) (*CompiledRule, error) {
	id, _ := entry["id"].(string)
	if id == "" {
		return nil, &engineerr.RuleCompileError{Source: source, Err: fmt.Errorf("semgrep rule missing id")}
	}
	severityStr, _ := entry["severity"].(string)
	sev, ok := ir.ParseSeverity(severityStr)
	if !ok {
		return nil, &engineerr.RuleCompileError{Source: source, RuleID: id, Err: fmt.Errorf("unknown severity %q", severityStr)}
	}
	message, _ := entry["message"].(string)
	fix, _ := entry["fix"].(string)
	category, _ := entry["category"].(string)
	remediation, _ := entry["remediation"].(string)
	var languages []string
	for _, l := range toSlice(entry["languages"]) {
		if s, ok := l.(string); ok {
			languages = append(languages, s)
		}
	}

	mvRegex := parseMvRegex(entry["metavariable-regex"])

	rule := &CompiledRule{
		ID: id, Severity: sev, Category: category, Message: message,
		Remediation: remediation, Fix: fix, Languages: languages, Source: source,
	}

	if _, isTaint := entry["pattern-sources"]; isTaint {
		taint := matcher.TaintRule{
			Sources:    compileTaintPatternSet(toSlice(entry["pattern-sources"]), mvRegex),
			Sanitizers: compileTaintPatternSet(toSlice(entry["pattern-sanitizers"]), mvRegex),
			Reclass:    compileTaintPatternSet(toSlice(entry["pattern-reclass"]), mvRegex),
			Sinks:      compileTaintPatternSet(toSlice(entry["pattern-sinks"]), mvRegex),
		}
		rule.Matcher = taint
		rule.Sources = patternSetTexts(toSlice(entry["pattern-sources"]))
		rule.Sinks = patternSetTexts(toSlice(entry["pattern-sinks"]))
		return rule, nil
	}

	var allow, deny, inside, notInside []string

	if p, ok := entry["pattern"].(string); ok {
		allow = append(allow, p)
	}
	if pr, ok := entry["pattern-regex"].(string); ok {
		allow = append(allow, pr) // already a regex, used verbatim
	}
	for _, item := range toSlice(entry["pattern-either"]) {
		if m, ok := item.(map[string]any); ok {
			if p, ok := m["pattern"].(string); ok {
				allow = append(allow, translateExact(p, mvRegex))
			}
		}
	}
	if p, ok := entry["pattern-not"].(string); ok {
		deny = append(deny, translateExact(p, mvRegex))
	}
	if p, ok := entry["pattern-inside"].(string); ok {
		inside = append(inside, translateExact(p, mvRegex))
	}
	if p, ok := entry["pattern-not-inside"].(string); ok {
		notInside = append(notInside, translateExact(p, mvRegex))
	}
	// "patterns" is the AND-conjunction form: a list of single-key maps,
	// each contributing to the same allow/deny/inside/not-inside buckets.
	for _, item := range toSlice(entry["patterns"]) {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if p, ok := m["pattern"].(string); ok {
			allow = append(allow, translateExact(p, mvRegex))
		}
		if p, ok := m["pattern-not"].(string); ok {
			deny = append(deny, translateExact(p, mvRegex))
		}
		if p, ok := m["pattern-inside"].(string); ok {
			inside = append(inside, translateExact(p, mvRegex))
		}
		if p, ok := m["pattern-not-inside"].(string); ok {
			notInside = append(notInside, translateExact(p, mvRegex))
		}
		for _, sub := range toSlice(m["pattern-either"]) {
			if sm, ok := sub.(map[string]any); ok {
				if p, ok := sm["pattern"].(string); ok {
					allow = append(allow, translateExact(p, mvRegex))
				}
			}
		}
	}

	if len(allow) == 0 {
		return nil, &engineerr.RuleCompileError{Source: source, RuleID: id, Err: fmt.Errorf("semgrep rule has no pattern/pattern-regex/patterns/pattern-either")}
	}

	if len(deny) == 0 && len(inside) == 0 && len(notInside) == 0 && len(allow) == 1 {
		if _, isRaw := entry["pattern-regex"]; isRaw {
			rule.Matcher = matcher.TextRegex{Regex: allow[0], Original: allow[0]}
		} else if raw, ok := entry["pattern"].(string); ok {
			rule.Matcher = matcher.TextRegex{Regex: translatePermissive(raw, mvRegex), Original: raw}
		} else {
			rule.Matcher = matcher.TextRegex{Regex: allow[0], Original: allow[0]}
		}
		return rule, nil
	}

	rule.Matcher = matcher.TextRegexMulti{Allow: allow, Deny: deny, Inside: inside, NotInside: notInside}
	return rule, nil
}
