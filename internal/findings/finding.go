// Package findings defines the engine's output record and its content-hash
// identifier scheme.
package findings

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/polyglotscan/engine/internal/ir"
)

// Finding is a single rule violation.
type Finding struct {
	ID          string
	RuleID      string
	RuleSource  string
	Severity    ir.Severity
	File        string
	Line        int
	Column      int
	Excerpt     string
	Message     string
	Remediation string
	Fix         string
}

// Identifier returns the hex digest of "rule_id:canonical_path:line:column",
// canonicalPath must already be canonicalized by the caller.
func Identifier(ruleID, canonicalPath string, line, column int) string {
	payload := fmt.Sprintf("%s:%s:%d:%d", ruleID, canonicalPath, line, column)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// New builds a Finding with its Identifier already computed.
func New(ruleID, ruleSource, canonicalPath string, sev ir.Severity, line, column int, excerpt, message, remediation, fix string) Finding {
	return Finding{
		ID:          Identifier(ruleID, canonicalPath, line, column),
		RuleID:      ruleID,
		RuleSource:  ruleSource,
		Severity:    sev,
		File:        canonicalPath,
		Line:        line,
		Column:      column,
		Excerpt:     excerpt,
		Message:     message,
		Remediation: remediation,
		Fix:         fix,
	}
}

// BaselineEntry is the projection {identifier, canonical_path, line} used
// for baseline comparison.
type BaselineEntry struct {
	ID   string `json:"id"`
	File string `json:"file"`
	Line int    `json:"line"`
}

// Baseline projects a Finding to its BaselineEntry.
func (f Finding) Baseline() BaselineEntry {
	return BaselineEntry{ID: f.ID, File: f.File, Line: f.Line}
}

// Dedup removes findings with a duplicate Identifier, keeping the first
// occurrence (insertion order of the survivors).
func Dedup(in []Finding) []Finding {
	seen := make(map[string]bool, len(in))
	out := make([]Finding, 0, len(in))
	for _, f := range in {
		if seen[f.ID] {
			continue
		}
		seen[f.ID] = true
		out = append(out, f)
	}
	return out
}
