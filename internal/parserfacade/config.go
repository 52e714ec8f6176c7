package parserfacade

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/polyglotscan/engine/internal/ir"
)

// ConfigParser turns structured configuration files (YAML/JSON/Terraform
// HCL treated as YAML-adjacent key:value text) into flat ir.Nodes for
// JSON-path matchers. It produces no AST or DFG — JSON-path rules
// only need the node/value/location triple.
type ConfigParser struct {
	kind string // "yaml", "json", "terraform"
}

// NewConfigParser returns a config front-end tagged with kind, one of
// "yaml", "json", or "terraform".
func NewConfigParser(kind string) *ConfigParser { return &ConfigParser{kind: kind} }

func (p *ConfigParser) Language() string { return p.kind }

func (p *ConfigParser) Parse(path, source string, _ Options) (*ir.FileIR, error) {
	fileIR := ir.NewFileIR(path, p.kind)
	fileIR.Source = source

	var doc any
	var err error
	switch p.kind {
	case "json":
		err = json.Unmarshal([]byte(source), &doc)
	default: // yaml, terraform (treated as YAML-shaped)
		err = yaml.Unmarshal([]byte(source), &doc)
	}
	if err != nil {
		// Tolerant: emit no nodes rather than fail the whole file, since a
		// malformed config is still useful for textual matchers.
		return fileIR, nil
	}

	lineIndex := buildKeyLineIndex(source)
	walkConfigValue(fileIR, p.kind, "", doc, lineIndex)
	return fileIR, nil
}

// walkConfigValue recursively emits one ir.Node per scalar leaf, with a
// dotted JSON-path-style Path (e.g. "services.web.image") so JsonPathEq/
// JsonPathRegex matchers can address it directly.
func walkConfigValue(fileIR *ir.FileIR, kind, path string, v any, lineIndex map[string]int) {
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			childPath := k
			if path != "" {
				childPath = path + "." + k
			}
			walkConfigValue(fileIR, kind, childPath, child, lineIndex)
		}
	case map[any]any: // yaml.v2-style maps can surface via some decoders
		for k, child := range val {
			childPath := fmt.Sprintf("%v", k)
			if path != "" {
				childPath = path + "." + childPath
			}
			walkConfigValue(fileIR, kind, childPath, child, lineIndex)
		}
	case []any:
		for i, child := range val {
			childPath := fmt.Sprintf("%s[%d]", path, i)
			walkConfigValue(fileIR, kind, childPath, child, lineIndex)
		}
	default:
		line := lineIndex[lastSegment(path)]
		fileIR.Nodes = append(fileIR.Nodes, ir.Node{
			Kind:     kind,
			Path:     path,
			Value:    val,
			Location: ir.Location{File: fileIR.Path, Line: line, Column: 1},
		})
	}
}

func lastSegment(path string) string {
	idx := strings.LastIndexAny(path, ".")
	if idx < 0 {
		return path
	}
	return path[idx+1:]
}

// buildKeyLineIndex maps a bare key name to the 1-based line it first
// appears on as "key:" — a best-effort line locator since the YAML/JSON
// decoders above don't carry positions for plain any-typed trees.
func buildKeyLineIndex(source string) map[string]int {
	index := make(map[string]int)
	for i, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimSpace(line)
		trimmed = strings.TrimPrefix(trimmed, "- ")
		if colon := strings.Index(trimmed, ":"); colon > 0 {
			key := strings.TrimSpace(trimmed[:colon])
			key = strings.Trim(key, `"'`)
			if key != "" {
				if _, exists := index[key]; !exists {
					index[key] = i + 1
				}
			}
		}
	}
	return index
}
