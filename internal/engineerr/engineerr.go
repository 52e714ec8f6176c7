// Package engineerr defines the error taxonomy: compile-time errors
// bubble up to the caller, run-time errors are isolated to the (file, rule)
// pair so one bad rule cannot poison the run.
package engineerr

import "errors"

// Sentinel errors used with errors.Is/As; plain error wrapping throughout,
// no custom panic/recover control flow.
var (
	// ErrRuleCompile covers unknown severity, invalid regex, invalid WASM
	// module, duplicate identifier, and malformed dialect errors.
	ErrRuleCompile = errors.New("rule compile error")

	// ErrParseFailure is a per-file parse error; the file contributes no IR
	// and no findings for the rule set.
	ErrParseFailure = errors.New("parse failure")

	// ErrTimeout is a per-file or per-rule timeout; it never reaches the
	// caller as an error, only as an empty finding list, but is used
	// internally to distinguish "timed out" from "ran and found nothing".
	ErrTimeout = errors.New("timeout")

	// ErrWasm covers WASM evaluation errors other than entrypoint-not-found,
	// which instead falls through to the next entrypoint candidate.
	ErrWasm = errors.New("wasm evaluation error")

	// ErrEntrypointNotFound signals the current entrypoint candidate doesn't
	// exist in the module; callers should try the next candidate.
	ErrEntrypointNotFound = errors.New("wasm entrypoint not found")
)

// RuleCompileError wraps ErrRuleCompile with the offending rule's source
// path and identifier for diagnostics.
type RuleCompileError struct {
	Source string
	RuleID string
	Err    error
}

func (e *RuleCompileError) Error() string {
	if e.RuleID != "" {
		return e.Source + ": rule " + e.RuleID + ": " + e.Err.Error()
	}
	return e.Source + ": " + e.Err.Error()
}

func (e *RuleCompileError) Unwrap() error { return e.Err }

func (e *RuleCompileError) Is(target error) bool { return target == ErrRuleCompile }

// ParseFailureError wraps ErrParseFailure with the offending file path.
type ParseFailureError struct {
	Path string
	Err  error
}

func (e *ParseFailureError) Error() string {
	return "parse " + e.Path + ": " + e.Err.Error()
}

func (e *ParseFailureError) Unwrap() error { return e.Err }

func (e *ParseFailureError) Is(target error) bool { return target == ErrParseFailure }

// WasmError wraps ErrWasm with the underlying wasmtime/runtime error; it
// aborts evaluation for the current (file, rule) pair with no findings.
type WasmError struct {
	Path string
	Err  error
}

func (e *WasmError) Error() string {
	if e.Path != "" {
		return "wasm " + e.Path + ": " + e.Err.Error()
	}
	return "wasm: " + e.Err.Error()
}

func (e *WasmError) Unwrap() error { return e.Err }

func (e *WasmError) Is(target error) bool { return target == ErrWasm }
