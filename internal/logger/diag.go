package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Diag wraps slog.Logger for the engine's internal diagnostics (parse
// failures, timeouts, WASM errors) — structured fields instead of
// fmt.Printf, following crashappsec-zero/pkg/core/logging's slog wrapper.
type Diag struct {
	*slog.Logger
}

var defaultDiag = NewDiag(os.Stderr, slog.LevelInfo)

// DefaultDiag returns the package-level default diagnostics logger.
func DefaultDiag() *Diag { return defaultDiag }

// SetDefaultDiag replaces the package-level default diagnostics logger.
func SetDefaultDiag(d *Diag) { defaultDiag = d }

// NewDiag creates a diagnostics logger writing JSON lines to w at level.
func NewDiag(w io.Writer, level slog.Level) *Diag {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return &Diag{Logger: slog.New(handler)}
}

// ParseFailure logs a recoverable per-file parse failure.
func (d *Diag) ParseFailure(ctx context.Context, path string, err error) {
	d.ErrorContext(ctx, "parse failure", "path", path, "error", err)
}

// RuleTimeout logs a per-rule timeout.
func (d *Diag) RuleTimeout(ctx context.Context, file, ruleID string) {
	d.WarnContext(ctx, "rule timeout", "file", file, "rule_id", ruleID)
}

// WasmError logs a non-entrypoint-not-found WASM error.
func (d *Diag) WasmError(ctx context.Context, modulePath string, err error) {
	d.ErrorContext(ctx, "wasm evaluation error", "module", modulePath, "error", err)
}
