// Package rules implements the rule compiler: it recognises the four
// input dialects (native YAML, Semgrep-compatible YAML, JSON, WASM) during a
// single discovery pass over a directory and emits CompiledRule values whose
// Matcher field is one of the internal/matcher sum-type variants.
package rules

import (
	"github.com/polyglotscan/engine/internal/ir"
	"github.com/polyglotscan/engine/internal/matcher"
)

// CompiledRule is the compiler's output record.
type CompiledRule struct {
	ID          string
	Severity    ir.Severity
	Category    string
	Message     string
	Remediation string
	Fix         string
	Interfile   bool
	Source      string // source-file path, relative to the load root
	Languages   []string

	// Sources/Sinks name the taint source/sink allow-pattern texts, kept
	// alongside the compiled matcher so the evaluator can cheaply tell a
	// taint rule apart from a non-taint rule without inspecting Matcher.
	Sources []string
	Sinks   []string

	Matcher matcher.Matcher
}

// RuleSet is the deduplicated, load-ordered collection the loader produces.
type RuleSet struct {
	rules []*CompiledRule
	byID  map[string]*CompiledRule

	// Pack is the load root's pack.yaml manifest, if present.
	Pack *PackMeta
}

// NewRuleSet returns an empty set.
func NewRuleSet() *RuleSet {
	return &RuleSet{byID: make(map[string]*CompiledRule)}
}

// Add inserts rule, returning a DuplicateIDError if its ID was already
// present — duplicate identifiers are a hard error.
func (s *RuleSet) Add(rule *CompiledRule) error {
	if _, exists := s.byID[rule.ID]; exists {
		return &DuplicateIDError{ID: rule.ID, Source: rule.Source}
	}
	s.byID[rule.ID] = rule
	s.rules = append(s.rules, rule)
	return nil
}

// All returns every rule in load order.
func (s *RuleSet) All() []*CompiledRule { return s.rules }

// Len reports the number of loaded rules.
func (s *RuleSet) Len() int { return len(s.rules) }

// Get looks up a rule by id.
func (s *RuleSet) Get(id string) (*CompiledRule, bool) {
	r, ok := s.byID[id]
	return r, ok
}

// DuplicateIDError reports a rule identifier collision during loading.
type DuplicateIDError struct {
	ID     string
	Source string
}

func (e *DuplicateIDError) Error() string {
	return "duplicate rule id " + e.ID + " in " + e.Source
}
