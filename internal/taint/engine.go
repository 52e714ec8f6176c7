// Package taint implements inter-procedural taint propagation with
// sanitizer and reclass awareness: symbol classification, sink-hit
// extraction, DFG path search, and branch-merge sanitization semantics.
package taint

import (
	"github.com/polyglotscan/engine/internal/findings"
	"github.com/polyglotscan/engine/internal/ir"
	"github.com/polyglotscan/engine/internal/matcher"
)

// Engine evaluates TaintRule matchers against a file's IR, optionally
// consulting a shared CallGraph for inter-procedural propagation.
type Engine struct {
	callGraph *CallGraph
}

// NewEngine returns a taint engine. callGraph may be nil for single-file,
// intra-procedural-only evaluation.
func NewEngine(callGraph *CallGraph) *Engine {
	return &Engine{callGraph: callGraph}
}

// Dispatch satisfies matcher.TaintDispatchFunc.
func (e *Engine) Dispatch(fileIR *ir.FileIR, rule matcher.TaintRule, meta matcher.RuleMeta) ([]findings.Finding, error) {
	classified := e.classify(fileIR, rule)

	sanitizedNodes, sanitizedSymbols := propagateSanitization(fileIR.DFG, classified.sanitizerDefs, e.callGraph)

	sinkHits := scanAllow(fileIR.Source, wrapSinks(rule.Sinks))
	var out []findings.Finding
	for _, sh := range sinkHits {
		vars := referencedVars(sh.FullMatch)
		if allSanitized(vars, sanitizedSymbols) {
			continue
		}
		for name, defs := range classified.sourceDefs {
			for _, varName := range vars {
				if sanitizedSymbols[varName] {
					continue
				}
				if taintPathExists(fileIR.DFG, defs, varName, sanitizedNodes, e.callGraph) {
					sev := meta.Severity
					if classified.reclassSymbols[name] {
						sev = ir.SeverityLow
					}
					loc := ir.Location{File: fileIR.Path, Line: sh.Line, Column: sh.Column}
					out = append(out, findings.New(meta.ID, meta.Source, fileIR.Path, sev, loc.Line, loc.Column, fileIR.Line(sh.Line), meta.Message, meta.Remediation, meta.Fix))
					break
				}
			}
		}
	}
	return out, nil
}

// wrapSinks adapts a []TaintPatternSet into the single pattern set shape
// scanAllow expects by flattening allow/deny/inside/not-inside across every
// element — sinks are evaluated as one combined candidate pool.
func wrapSinks(sets []matcher.TaintPatternSet) matcher.TaintPatternSet {
	var out matcher.TaintPatternSet
	for _, s := range sets {
		out.Allow = append(out.Allow, s.Allow...)
		out.Deny = append(out.Deny, s.Deny...)
		out.Inside = append(out.Inside, s.Inside...)
		out.NotInside = append(out.NotInside, s.NotInside...)
	}
	return out
}

func allSanitized(vars []string, sanitizedSymbols map[string]bool) bool {
	if len(vars) == 0 {
		return false
	}
	for _, v := range vars {
		if !sanitizedSymbols[v] {
			return false
		}
	}
	return true
}

// classification holds the per-file symbol classes derived from a taint
// rule's source/sanitizer/reclass pattern sets.
type classification struct {
	sourceDefs      map[string][]int // symbol name -> DFG Def/Assign node ids
	sanitizerDefs   []int
	reclassSymbols  map[string]bool
}

func (e *Engine) classify(fileIR *ir.FileIR, rule matcher.TaintRule) classification {
	c := classification{
		sourceDefs:     make(map[string][]int),
		reclassSymbols: make(map[string]bool),
	}

	for _, set := range rule.Sources {
		for _, h := range scanAllow(fileIR.Source, set) {
			name := deriveSymbol(set, h, fileIR.Line(h.Line))
			if name == "" {
				continue
			}
			c.sourceDefs[name] = append(c.sourceDefs[name], fileIR.DFG.NodesNamed(name)...)
		}
	}

	for _, set := range rule.Sanitizers {
		for _, h := range scanAllow(fileIR.Source, set) {
			name := deriveSymbol(set, h, fileIR.Line(h.Line))
			if name == "" {
				continue
			}
			c.sanitizerDefs = append(c.sanitizerDefs, fileIR.DFG.NodesNamed(name)...)
		}
	}

	for _, set := range rule.Reclass {
		for _, h := range scanAllow(fileIR.Source, set) {
			name := deriveSymbol(set, h, fileIR.Line(h.Line))
			if name == "" {
				continue
			}
			c.reclassSymbols[name] = true
		}
	}

	return c
}
