// Package matcher dispatches a compiled rule's matcher against a file's IR
// and produces findings. It never reads or writes rule files itself
// (internal/rules owns compilation) and never hosts WASM directly (internal/
// wasmhost owns that); the evaluator wires both together.
package matcher

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/polyglotscan/engine/internal/findings"
	"github.com/polyglotscan/engine/internal/ir"
)

// RuleMeta carries the non-matcher fields of a compiled rule that the
// runtime needs to build a Finding. It's a narrow projection rather than
// the rules package's CompiledRule to avoid an import cycle (rules already
// imports matcher for the Matcher sum type).
type RuleMeta struct {
	ID          string
	Severity    ir.Severity
	Source      string
	Message     string
	Remediation string
	Fix         string
}

// cacheKey is the per-rule result cache's key.
type cacheKey struct {
	CanonicalPath string
	RuleID        string
}

// TaintDispatchFunc evaluates a TaintRule against a file's IR (and, for
// inter-procedural propagation, a call graph the caller closes over). The
// runtime calls this rather than importing internal/taint directly, since
// the taint engine itself depends on this package's TaintRule type.
type TaintDispatchFunc func(fileIR *ir.FileIR, rule TaintRule, meta RuleMeta) ([]findings.Finding, error)

// Runtime holds the shared per-rule result cache: an LRU keyed
// by (canonical path, rule id), readers sharing and writers serialising.
type Runtime struct {
	mu    sync.Mutex
	cache *lru.Cache[cacheKey, []findings.Finding]
}

const defaultCacheCapacity = 1024

// NewRuntime builds a runtime with the given cache capacity (≤0 uses the
// default of 1024).
func NewRuntime(capacity int) *Runtime {
	if capacity <= 0 {
		capacity = defaultCacheCapacity
	}
	cache, _ := lru.New[cacheKey, []findings.Finding](capacity)
	return &Runtime{cache: cache}
}

// Reset clears the result cache, supporting "explicit reset operations for
// tests; never hidden mutable globals".
func (r *Runtime) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Purge()
}

// Match dispatches m against fileIR, consulting and populating the result
// cache for every non-taint matcher kind (taint results depend on the call
// graph across files and are not cached here; the taint engine owns its own
// memoization if any).
func (r *Runtime) Match(fileIR *ir.FileIR, canonicalPath string, meta RuleMeta, m Matcher, taintDispatch TaintDispatchFunc) ([]findings.Finding, error) {
	if _, isTaint := m.(TaintRule); !isTaint {
		key := cacheKey{CanonicalPath: canonicalPath, RuleID: meta.ID}
		r.mu.Lock()
		if cached, ok := r.cache.Get(key); ok {
			r.mu.Unlock()
			return cached, nil
		}
		r.mu.Unlock()

		found, err := r.dispatch(fileIR, canonicalPath, meta, m, taintDispatch)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.cache.Add(key, found)
		r.mu.Unlock()
		return found, nil
	}
	return r.dispatch(fileIR, canonicalPath, meta, m, taintDispatch)
}

func (r *Runtime) dispatch(fileIR *ir.FileIR, canonicalPath string, meta RuleMeta, m Matcher, taintDispatch TaintDispatchFunc) ([]findings.Finding, error) {
	switch v := m.(type) {
	case TextRegex:
		return scanTextRegex(fileIR, canonicalPath, meta, v)
	case TextRegexMulti:
		return scanTextRegexMulti(fileIR, canonicalPath, meta, v)
	case JsonPathEq:
		return scanJSONPathEq(fileIR, canonicalPath, meta, v)
	case JsonPathRegex:
		return scanJSONPathRegex(fileIR, canonicalPath, meta, v)
	case AstQuery:
		return scanAstQuery(fileIR, canonicalPath, meta, v)
	case AstPattern:
		return scanAstPattern(fileIR, canonicalPath, meta, v)
	case TaintRule:
		if taintDispatch == nil {
			return nil, nil
		}
		return taintDispatch(fileIR, v, meta)
	case RegoWasm:
		// Dispatched by the evaluator directly through internal/wasmhost,
		// which needs the instance pool and fuel/memory limits this
		// package deliberately doesn't depend on.
		return nil, nil
	default:
		return nil, nil
	}
}

// buildFinding constructs a Finding at loc, using fileIR's source line as
// the excerpt.
func buildFinding(fileIR *ir.FileIR, canonicalPath string, meta RuleMeta, loc ir.Location, excerpt string) findings.Finding {
	return findings.New(meta.ID, meta.Source, canonicalPath, meta.Severity, loc.Line, loc.Column, excerpt, meta.Message, meta.Remediation, meta.Fix)
}
