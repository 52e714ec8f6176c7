package rules

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/polyglotscan/engine/internal/engineerr"
	"github.com/polyglotscan/engine/internal/ignore"
)

// PackMeta is the optional "pack.yaml" manifest naming and versioning a
// directory of rule files, the local (non-distributed) analogue of a
// Semgrep registry pack.
type PackMeta struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Author      string `yaml:"author"`
	Description string `yaml:"description"`
}

func loadPackMeta(root string) (*PackMeta, error) {
	data, err := os.ReadFile(filepath.Join(root, "pack.yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var meta PackMeta
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse pack.yaml: %w", err)
	}
	return &meta, nil
}

// semgrepOnlyKeys distinguishes a Semgrep-dialect YAML entry from a native
// one. "patterns" is deliberately excluded here since both dialects
// use that key with different shapes — isNativePatternsList disambiguates it.
var semgrepOnlyKeys = []string{
	"pattern", "pattern-not", "pattern-either", "pattern-regex",
	"pattern-sources", "pattern-sinks", "pattern-sanitizers", "pattern-reclass",
	"metavariable-pattern", "metavariable-regex", "focus-metavariable",
	"pattern-inside", "pattern-not-inside",
}

// classifyDialect decides whether a YAML rule entry is native or Semgrep.
func classifyDialect(entry map[string]any) string {
	for _, key := range semgrepOnlyKeys {
		if _, ok := entry[key]; ok {
			return "semgrep"
		}
	}
	if raw, ok := entry["patterns"]; ok {
		if isNativePatternsList(raw) {
			return "native"
		}
		return "semgrep"
	}
	return "native"
}

// isNativePatternsList reports whether raw is a list of {pattern: "..."}
// maps with no other keys — the native dialect's "patterns" shape, as
// opposed to Semgrep's AND-conjunction "patterns" list.
func isNativePatternsList(raw any) bool {
	list, ok := raw.([]any)
	if !ok || len(list) == 0 {
		return false
	}
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return false
		}
		if _, ok := m["pattern"]; !ok {
			return false
		}
		for k := range m {
			if k != "pattern" {
				return false
			}
		}
	}
	return true
}

type yamlRuleFile struct {
	Rules []map[string]any `yaml:"rules"`
}

// Load walks root recursively, ignoring ".git" and anything matched by
// root's own .staticignore, and compiles every .yaml/.yml/.json/.wasm file
// it finds into a RuleSet. An optional root/pack.yaml names and versions the
// pack; its fields land on the returned RuleSet.Pack. Duplicate rule
// identifiers are a hard error.
func Load(root string) (*RuleSet, error) {
	set := NewRuleSet()

	pack, err := loadPackMeta(root)
	if err != nil {
		return nil, err
	}
	set.Pack = pack

	matcher, err := ignore.Load(root)
	if err != nil {
		return nil, err
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		if d.IsDir() {
			if d.Name() == ".git" || matcher.Match(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if matcher.Match(rel) {
			return nil
		}
		if d.Name() == "pack.yaml" || d.Name() == ".staticignore" {
			return nil
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			if strings.HasSuffix(strings.ToLower(path), ".wasm.yaml") || strings.HasSuffix(strings.ToLower(path), ".wasm.yml") {
				return nil // sidecar metadata, consumed alongside its .wasm
			}
			return loadYAMLFile(set, path, rel)
		case ".json":
			if strings.HasSuffix(strings.ToLower(path), ".wasm.json") {
				return nil
			}
			return loadJSONFile(set, path, rel)
		case ".wasm":
			return loadWasmFile(set, path, rel)
		default:
			return nil
		}
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

func loadYAMLFile(set *RuleSet, path, rel string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	var file yamlRuleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return &engineerr.RuleCompileError{Source: rel, Err: fmt.Errorf("parse yaml: %w", err)}
	}
	for _, entry := range file.Rules {
		var (
			rule *CompiledRule
			err  error
		)
		if classifyDialect(entry) == "semgrep" {
			rule, err = compileSemgrep(rel, entry)
		} else {
			raw, marshalErr := yaml.Marshal(entry)
			if marshalErr != nil {
				return &engineerr.RuleCompileError{Source: rel, Err: marshalErr}
			}
			var ne nativeEntry
			if unmarshalErr := yaml.Unmarshal(raw, &ne); unmarshalErr != nil {
				return &engineerr.RuleCompileError{Source: rel, Err: unmarshalErr}
			}
			rule, err = compileNative(rel, ne)
		}
		if err != nil {
			return err
		}
		if err := set.Add(rule); err != nil {
			return err
		}
	}
	return nil
}

func loadJSONFile(set *RuleSet, path, rel string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return &engineerr.RuleCompileError{Source: rel, Err: fmt.Errorf("parse json: %w", err)}
	}
	compiled, err := compileJSONRules(rel, doc)
	if err != nil {
		return err
	}
	for _, rule := range compiled {
		if err := set.Add(rule); err != nil {
			return err
		}
	}
	return nil
}

func loadWasmFile(set *RuleSet, path, rel string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	var meta *wasmMetadata
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		sidecar := path + ext
		sidecarData, readErr := os.ReadFile(sidecar)
		if readErr != nil {
			continue
		}
		m := &wasmMetadata{}
		var parseErr error
		if ext == ".json" {
			parseErr = json.Unmarshal(sidecarData, m)
		} else {
			parseErr = yaml.Unmarshal(sidecarData, m)
		}
		if parseErr != nil {
			return &engineerr.RuleCompileError{Source: rel, Err: fmt.Errorf("parse wasm sidecar %s: %w", ext, parseErr)}
		}
		meta = m
		break
	}

	rule, err := compileWasmRule(rel, data, meta)
	if err != nil {
		return err
	}
	return set.Add(rule)
}
