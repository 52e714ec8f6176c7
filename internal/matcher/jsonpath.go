package matcher

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/polyglotscan/engine/internal/findings"
	"github.com/polyglotscan/engine/internal/ir"
)

// configurationKinds are the semantic-node kinds treated as
// JSON-path addressable configuration data.
var configurationKinds = map[string]bool{
	"k8s": true, "terraform": true, "yaml": true, "json": true,
}

// jsonPathToRegex translates a dotted JSON-path pattern (optionally
// "[*]"-wildcarded) into an anchored regex matching a node's dotted Path.
func jsonPathToRegex(path string) (*regexp.Regexp, error) {
	p := strings.TrimPrefix(path, "$.")
	p = strings.TrimPrefix(p, "$")

	var sb strings.Builder
	sb.WriteString("^")
	for i := 0; i < len(p); {
		switch {
		case strings.HasPrefix(p[i:], "[*]"):
			sb.WriteString(`\[[0-9]+\]`)
			i += 3
		case p[i] == '.':
			sb.WriteString(`\.`)
			i++
		default:
			sb.WriteString(regexp.QuoteMeta(string(p[i])))
			i++
		}
	}
	sb.WriteString("$")
	return regexp.Compile(sb.String())
}

func scanJSONPathEq(fileIR *ir.FileIR, canonicalPath string, meta RuleMeta, j JsonPathEq) ([]findings.Finding, error) {
	pathRe, err := jsonPathToRegex(j.Path)
	if err != nil {
		return nil, err
	}
	var out []findings.Finding
	for _, node := range fileIR.Nodes {
		if !configurationKinds[node.Kind] || !pathRe.MatchString(node.Path) {
			continue
		}
		if fmt.Sprintf("%v", node.Value) != fmt.Sprintf("%v", j.Literal) {
			continue
		}
		if fileIR.SuppressedLines[node.Location.Line] {
			continue
		}
		out = append(out, buildFinding(fileIR, canonicalPath, meta, node.Location, fileIR.Line(node.Location.Line)))
	}
	return out, nil
}

func scanJSONPathRegex(fileIR *ir.FileIR, canonicalPath string, meta RuleMeta, j JsonPathRegex) ([]findings.Finding, error) {
	pathRe, err := jsonPathToRegex(j.Path)
	if err != nil {
		return nil, err
	}
	valueRe, err := regexp.Compile(j.Regex)
	if err != nil {
		return nil, err
	}
	var out []findings.Finding
	for _, node := range fileIR.Nodes {
		if !configurationKinds[node.Kind] || !pathRe.MatchString(node.Path) {
			continue
		}
		if !valueRe.MatchString(fmt.Sprintf("%v", node.Value)) {
			continue
		}
		if fileIR.SuppressedLines[node.Location.Line] {
			continue
		}
		out = append(out, buildFinding(fileIR, canonicalPath, meta, node.Location, fileIR.Line(node.Location.Line)))
	}
	return out, nil
}
