package rules

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/polyglotscan/engine/internal/engineerr"
	"github.com/polyglotscan/engine/internal/ir"
	"github.com/polyglotscan/engine/internal/matcher"
)

const (
	minWasmSize = 8
	maxWasmSize = 10 * 1024 * 1024
)

var wasmMagic = []byte{0x00, 'a', 's', 'm', 0x01, 0x00, 0x00, 0x00}

// wasmMetadata is the optional sidecar "<id>.wasm.{json|yaml|yml}" payload.
type wasmMetadata struct {
	ID          string `yaml:"id" json:"id"`
	Severity    string `yaml:"severity" json:"severity"`
	Category    string `yaml:"category" json:"category"`
	Message     string `yaml:"message" json:"message"`
	Remediation string `yaml:"remediation" json:"remediation"`
	Fix         string `yaml:"fix" json:"fix"`
	Entrypoint  string `yaml:"entrypoint" json:"entrypoint"`
}

// validateWasmModule checks the size and header invariants of a compiled module.
func validateWasmModule(data []byte) error {
	if len(data) < minWasmSize || len(data) > maxWasmSize {
		return fmt.Errorf("wasm module size %d out of [%d, %d] bounds", len(data), minWasmSize, maxWasmSize)
	}
	if !bytes.Equal(data[:8], wasmMagic) {
		return fmt.Errorf("invalid wasm header")
	}
	return nil
}

// compileWasmRule builds a CompiledRule from a validated module's bytes and
// optional sidecar metadata. Default entrypoint is "deny"; the
// matcher runtime applies the stripped-candidate fallback order at eval
// time, not here.
func compileWasmRule(wasmPath string, data []byte, meta *wasmMetadata) (*CompiledRule, error) {
	if err := validateWasmModule(data); err != nil {
		return nil, &engineerr.RuleCompileError{Source: wasmPath, Err: err}
	}

	id := strings.TrimSuffix(filepath.Base(wasmPath), ".wasm")
	severity := ir.SeverityMedium
	entrypoint := "deny"
	var category, message, remediation, fix string

	if meta != nil {
		if meta.ID != "" {
			id = meta.ID
		}
		if meta.Severity != "" {
			sev, ok := ir.ParseSeverity(meta.Severity)
			if !ok {
				return nil, &engineerr.RuleCompileError{Source: wasmPath, RuleID: id, Err: fmt.Errorf("unknown severity %q", meta.Severity)}
			}
			severity = sev
		}
		category = meta.Category
		message = meta.Message
		remediation = meta.Remediation
		fix = meta.Fix
		if meta.Entrypoint != "" {
			entrypoint = meta.Entrypoint
		}
	}

	return &CompiledRule{
		ID: id, Severity: severity, Category: category, Message: message,
		Remediation: remediation, Fix: fix, Source: wasmPath,
		Matcher: matcher.RegoWasm{WasmPath: wasmPath, Entrypoint: entrypoint},
	}, nil
}
