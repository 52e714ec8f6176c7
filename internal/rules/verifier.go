package rules

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Verify loads every rule file under root like Load, but never stops at the
// first error: it collects every compile error and continues. A duplicate
// rule id is collected once per file and does not prevent the rest of that
// file's rules from loading — the Open Question decision recorded in
// DESIGN.md.
func Verify(root string) (*RuleSet, []error) {
	set := NewRuleSet()
	var errs []error

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		lower := strings.ToLower(path)

		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			if strings.HasSuffix(lower, ".wasm.yaml") || strings.HasSuffix(lower, ".wasm.yml") {
				return nil
			}
			verifyYAMLFile(set, path, rel, &errs)
		case ".json":
			if strings.HasSuffix(lower, ".wasm.json") {
				return nil
			}
			verifyJSONFile(set, path, rel, &errs)
		case ".wasm":
			if err := loadWasmFile(set, path, rel); err != nil {
				errs = append(errs, err)
			}
		}
		return nil
	})

	return set, errs
}

func verifyYAMLFile(set *RuleSet, path, rel string, errs *[]error) {
	data, err := os.ReadFile(path)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("read %s: %w", path, err))
		return
	}
	var file yamlRuleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		*errs = append(*errs, fmt.Errorf("%s: parse yaml: %w", rel, err))
		return
	}

	flaggedDuplicateInFile := false
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
				*errs = append(*errs, marshalErr)
				continue
			}
			var ne nativeEntry
			if unmarshalErr := yaml.Unmarshal(raw, &ne); unmarshalErr != nil {
				*errs = append(*errs, unmarshalErr)
				continue
			}
			rule, err = compileNative(rel, ne)
		}
		if err != nil {
			*errs = append(*errs, err)
			continue
		}
		if addErr := set.Add(rule); addErr != nil {
			if !flaggedDuplicateInFile {
				*errs = append(*errs, addErr)
				flaggedDuplicateInFile = true
			}
			continue
		}
	}
}

func verifyJSONFile(set *RuleSet, path, rel string, errs *[]error) {
	data, err := os.ReadFile(path)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("read %s: %w", path, err))
		return
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		*errs = append(*errs, fmt.Errorf("%s: parse json: %w", rel, err))
		return
	}
	compiled, err := compileJSONRules(rel, doc)
	if err != nil {
		*errs = append(*errs, err)
		return
	}
	flaggedDuplicateInFile := false
	for _, rule := range compiled {
		if addErr := set.Add(rule); addErr != nil {
			if !flaggedDuplicateInFile {
				*errs = append(*errs, addErr)
				flaggedDuplicateInFile = true
			}
			continue
		}
	}
}
