package matcher

import (
	"regexp"
	"strings"

	"github.com/polyglotscan/engine/internal/ir"
)

// dottedHeadRe finds a dotted or "::"-scoped call head's leading identifier,
// e.g. the "A" in "A.b.c(" or "A::b::c(".
var dottedHeadRe = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*)((?:\.[A-Za-z_][A-Za-z0-9_]*|::[A-Za-z_][A-Za-z0-9_]*)+\()`)

// buildAliasMap collects every known alias -> canonical-module mapping for
// a file: symbol-table entries whose canonical target is a "::"-scoped
// module reference, and import/import_from nodes.
func buildAliasMap(fileIR *ir.FileIR) map[string]string {
	out := make(map[string]string)
	for name, sym := range fileIR.Symbols {
		if sym.AliasOf == "" {
			continue
		}
		if strings.Contains(sym.AliasOf, "::") {
			out[name] = ir.ResolveAlias(fileIR.Symbols, name)
		}
	}
	for _, n := range fileIR.Nodes {
		var full string
		switch {
		case strings.HasPrefix(n.Path, "import_from."):
			full = strings.TrimPrefix(n.Path, "import_from.")
		case strings.HasPrefix(n.Path, "import."):
			full = strings.TrimPrefix(n.Path, "import.")
		default:
			continue
		}
		segs := strings.FieldsFunc(full, func(r rune) bool { return r == '.' || r == '/' })
		if len(segs) == 0 {
			continue
		}
		out[segs[len(segs)-1]] = full
	}
	return out
}

// expandAliasPatterns returns pattern plus, for every dotted/scoped call
// head "A...(" whose leading identifier A has a known alias, a variant with
// A rewritten to its canonical module. The matcher tries all
// variants rather than failing fast, since a cheap regex re-scan is less
// costly than missing a match.
func expandAliasPatterns(fileIR *ir.FileIR, pattern string) []string {
	variants := []string{pattern}
	aliasMap := buildAliasMap(fileIR)
	if len(aliasMap) == 0 {
		return variants
	}
	for _, m := range dottedHeadRe.FindAllStringSubmatchIndex(pattern, -1) {
		head := pattern[m[2]:m[3]]
		target, ok := aliasMap[head]
		if !ok {
			continue
		}
		rewritten := pattern[:m[2]] + target + pattern[m[3]:]
		variants = append(variants, rewritten)
	}
	return variants
}
