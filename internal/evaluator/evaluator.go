// Package evaluator implements the top-level analyze() orchestration: parse
// every file, build a call graph, warm up WASM modules, evaluate every
// (file, rule) pair under per-file and per-rule timeouts, then apply the
// baseline filter, suppression filter, and dedup.
package evaluator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/polyglotscan/engine/internal/baseline"
	"github.com/polyglotscan/engine/internal/canonpath"
	"github.com/polyglotscan/engine/internal/config"
	"github.com/polyglotscan/engine/internal/filecache"
	"github.com/polyglotscan/engine/internal/findings"
	"github.com/polyglotscan/engine/internal/ir"
	"github.com/polyglotscan/engine/internal/logger"
	"github.com/polyglotscan/engine/internal/matcher"
	"github.com/polyglotscan/engine/internal/parserfacade"
	"github.com/polyglotscan/engine/internal/rules"
	"github.com/polyglotscan/engine/internal/taint"
	"github.com/polyglotscan/engine/internal/wasmhost"
)

// maxFileConcurrency bounds how many files are parsed/evaluated at once,
// following the shared-worker-pool model: bounded parallelism across
// file/rule pairs rather than one goroutine per file.
const maxFileConcurrency = 8

// defaultPerRuleTimeout caps a single rule's evaluation when the caller
// leaves config.PerRuleTimeout unset (zero means "no per-rule timeout" is
// too permissive in practice since a pathological rule can hang a worker).
const defaultPerRuleTimeout = 5 * time.Second

// Evaluator owns the shared, run-scoped resources: the parser registry, the
// per-rule result cache, the WASM instance pool, and the canonical-path
// cache.
type Evaluator struct {
	registry *parserfacade.Registry
	runtime  *matcher.Runtime
	wasmPool *wasmhost.Pool
	canon    *canonpath.Cache
	diag     *logger.Diag
	audit    *logger.AuditLogger
}

// New builds an Evaluator from an EngineConfig's cache-sizing knobs.
func New(cfg *config.EngineConfig) *Evaluator {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Evaluator{
		registry: parserfacade.NewRegistry(),
		runtime:  matcher.NewRuntime(cfg.RuleCacheSize),
		wasmPool: wasmhost.NewPool(),
		canon:    canonpath.New(cfg.CanonPathCacheSize),
		diag:     logger.DefaultDiag(),
	}
}

// WithAuditLogger attaches an AuditLogger that Analyze logs one RunEvent to
// per invocation. Optional — an Evaluator with no audit logger simply skips
// the Log call.
func (e *Evaluator) WithAuditLogger(audit *logger.AuditLogger) *Evaluator {
	e.audit = audit
	return e
}

// Analyze runs the full evaluation described above over paths, against
// ruleSet, honoring cfg's timeouts and baseline/suppression settings.
// fileCache may be nil to disable whole-file memoization.
func (e *Evaluator) Analyze(ctx context.Context, paths []string, ruleSet *rules.RuleSet, cfg *config.EngineConfig, fileCache filecache.Cache) ([]findings.Finding, *Metrics, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	metrics := newMetrics()
	start := time.Now()
	rulesLoaded := 0
	if ruleSet != nil {
		rulesLoaded = len(ruleSet.All())
	}

	var runErr error
	var final []findings.Finding
	defer func() {
		if e.audit == nil {
			return
		}
		event := logger.RunEvent{
			Timestamp:    start.UTC().Format(time.RFC3339),
			FilesScanned: metrics.FilesParsed,
			RulesLoaded:  rulesLoaded,
			Findings:     len(final),
			ElapsedMS:    time.Since(start).Milliseconds(),
		}
		if runErr != nil {
			event.Error = runErr.Error()
		}
		if logErr := e.audit.Log(event); logErr != nil {
			e.diag.ErrorContext(ctx, "audit log write failed", "error", logErr)
		}
	}()

	fileIRs, canonicalPaths := e.parseAll(ctx, paths, cfg, metrics)

	if err := e.warmWasm(ruleSet); err != nil {
		runErr = err
		return nil, metrics, err
	}

	callGraph := buildCallGraph(fileIRs)
	taintEngine := taint.NewEngine(callGraph)

	var baselineSet baseline.Set
	if cfg.BaselinePath != "" {
		set, err := baseline.Load(cfg.BaselinePath)
		if err != nil {
			runErr = err
			return nil, metrics, err
		}
		baselineSet = set
	}

	var (
		mu  sync.Mutex
		all []findings.Finding
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxFileConcurrency)
	for i, fileIR := range fileIRs {
		i, fileIR := i, fileIR
		canonicalPath := canonicalPaths[i]
		g.Go(func() error {
			start := time.Now()
			found, err := e.analyzeFile(gctx, fileIR, canonicalPath, ruleSet, cfg, fileCache, taintEngine, metrics)
			if err != nil {
				return err
			}
			mu.Lock()
			all = append(all, found...)
			metrics.PerFileMillis[fileIR.Path] = time.Since(start).Milliseconds()
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		runErr = err
		return nil, metrics, err
	}

	all = baseline.Filter(baselineSet, all)
	all = findings.Dedup(all)
	metrics.FindingsTotal = len(all)

	hits, misses := e.canon.HitMiss()
	metrics.CanonPathHits, metrics.CanonPathMisses = hits, misses

	final = all
	return all, metrics, nil
}

func (e *Evaluator) parseAll(ctx context.Context, paths []string, cfg *config.EngineConfig, metrics *Metrics) ([]*ir.FileIR, []string) {
	var (
		mu             sync.Mutex
		fileIRs        []*ir.FileIR
		canonicalPaths []string
	)
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(maxFileConcurrency)
	for _, p := range paths {
		p := p
		g.Go(func() error {
			canonicalPath, err := e.canon.Canonicalize(p)
			if err != nil {
				canonicalPath = p
			}
			fileIR, err := e.registry.Parse(p, "", parserfacade.Options{SuppressComment: cfg.SuppressComment})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				metrics.ParseErrors++
				e.diag.ParseFailure(ctx, p, err)
				return nil
			}
			metrics.FilesParsed++
			fileIRs = append(fileIRs, fileIR)
			canonicalPaths = append(canonicalPaths, canonicalPath)
			return nil
		})
	}
	_ = g.Wait() // parse errors are per-file and already isolated above
	return fileIRs, canonicalPaths
}

// warmWasm reads and validates every WASM rule's module once, ahead of
// evaluation.
func (e *Evaluator) warmWasm(ruleSet *rules.RuleSet) error {
	if ruleSet == nil {
		return nil
	}
	for _, rule := range ruleSet.All() {
		wasmMatcher, ok := rule.Matcher.(matcher.RegoWasm)
		if !ok {
			continue
		}
		data, err := os.ReadFile(wasmMatcher.WasmPath)
		if err != nil {
			return err
		}
		if err := e.wasmPool.Warm(wasmMatcher.WasmPath, data); err != nil {
			return err
		}
	}
	return nil
}

// analyzeFile evaluates every applicable rule against one file, honoring
// cfg.PerFileTimeout (break out early, keeping partial results) and
// cfg.PerRuleTimeout (empty result for that rule on elapse). A whole-file
// cache hit short-circuits rule iteration entirely.
func (e *Evaluator) analyzeFile(ctx context.Context, fileIR *ir.FileIR, canonicalPath string, ruleSet *rules.RuleSet, cfg *config.EngineConfig, fileCache filecache.Cache, taintEngine *taint.Engine, metrics *Metrics) ([]findings.Finding, error) {
	hash := contentHash(fileIR)
	if fileCache != nil {
		if cached, ok := fileCache.Get(hash); ok {
			return cached, nil
		}
	}

	if cfg.PerFileTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.PerFileTimeout)
		defer cancel()
	}

	var out []findings.Finding
	for _, rule := range ruleSet.All() {
		if ctx.Err() != nil {
			break
		}
		if !languageApplies(rule.Languages, fileIR.Language) {
			continue
		}
		start := time.Now()
		found := e.evalRule(ctx, fileIR, canonicalPath, rule, cfg, taintEngine)
		metrics.PerRuleMillis[rule.ID] += time.Since(start).Milliseconds()
		out = append(out, found...)
	}

	if fileCache != nil {
		fileCache.Insert(hash, out)
	}
	return out, nil
}

func languageApplies(ruleLanguages []string, fileLanguage string) bool {
	if len(ruleLanguages) == 0 {
		return true
	}
	for _, l := range ruleLanguages {
		if l == fileLanguage {
			return true
		}
	}
	return false
}

// evalRule runs one rule against fileIR on its own goroutine, returning an
// empty result if cfg.PerRuleTimeout (or the default) elapses first. The
// worker is never forcibly cancelled — it keeps running to completion, its
// result simply isn't joined, matching the cooperative-cancellation model.
func (e *Evaluator) evalRule(ctx context.Context, fileIR *ir.FileIR, canonicalPath string, rule *rules.CompiledRule, cfg *config.EngineConfig, taintEngine *taint.Engine) []findings.Finding {
	meta := matcher.RuleMeta{
		ID:          rule.ID,
		Severity:    rule.Severity,
		Source:      rule.Source,
		Message:     rule.Message,
		Remediation: rule.Remediation,
		Fix:         rule.Fix,
	}

	resultCh := make(chan []findings.Finding, 1)
	go func() {
		var out []findings.Finding
		var err error
		switch m := rule.Matcher.(type) {
		case matcher.RegoWasm:
			out, err = e.evalWasm(fileIR, canonicalPath, meta, m)
		default:
			out, err = e.runtime.Match(fileIR, canonicalPath, meta, rule.Matcher, taintEngine.Dispatch)
		}
		if err != nil {
			out = nil
		}
		resultCh <- out
	}()

	timeout := cfg.PerRuleTimeout
	if timeout <= 0 {
		timeout = defaultPerRuleTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case out := <-resultCh:
		return out
	case <-timer.C:
		e.diag.RuleTimeout(ctx, fileIR.Path, rule.ID)
		return nil
	case <-ctx.Done():
		return nil
	}
}

func contentHash(fileIR *ir.FileIR) string {
	sum := sha256.Sum256([]byte(fileIR.Language + "\x00" + fileIR.Source))
	return hex.EncodeToString(sum[:])
}
