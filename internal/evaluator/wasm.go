package evaluator

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/polyglotscan/engine/internal/engineerr"
	"github.com/polyglotscan/engine/internal/findings"
	"github.com/polyglotscan/engine/internal/ir"
	"github.com/polyglotscan/engine/internal/matcher"
	"github.com/polyglotscan/engine/internal/wasmhost"
)

// evalWasm serialises fileIR to JSON, evaluates m's entrypoint through the
// shared WASM pool, and turns every interpreted hit into a Finding. A
// WasmError other than entrypoint-not-found aborts with no findings for
// this (file, rule) pair, per the error taxonomy; entrypoint-not-found is
// already retried across candidates inside wasmhost.Pool.Eval.
func (e *Evaluator) evalWasm(fileIR *ir.FileIR, canonicalPath string, meta matcher.RuleMeta, m matcher.RegoWasm) ([]findings.Finding, error) {
	input, err := json.Marshal(fileIR)
	if err != nil {
		return nil, err
	}

	out, err := e.wasmPool.Eval(m.WasmPath, input, m.Entrypoint)
	if err != nil {
		if errors.Is(err, engineerr.ErrEntrypointNotFound) {
			return nil, nil
		}
		e.diag.WasmError(context.Background(), m.WasmPath, err)
		return nil, nil
	}

	hits := wasmhost.InterpretOutput(out)
	found := make([]findings.Finding, 0, len(hits))
	for _, h := range hits {
		message := h.Message
		if message == "" {
			message = meta.Message
		}
		excerpt := h.Path
		if excerpt == "" && h.Line > 0 {
			excerpt = fileIR.Line(h.Line)
		}
		found = append(found, findings.New(meta.ID, meta.Source, canonicalPath, meta.Severity, h.Line, h.Column, excerpt, message, meta.Remediation, meta.Fix))
	}
	return found, nil
}
