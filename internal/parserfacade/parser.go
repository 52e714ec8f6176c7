// Package parserfacade implements the parser contract: turning
// a source file into an ir.FileIR. Individual language grammars are
// out of core scope — front-ends here are either a real grammar (bash, via
// mvdan.cc/sh/v3) or a tolerant, best-effort line scanner, sufficient to
// drive every matcher kind.
package parserfacade

import (
	"path/filepath"
	"strings"

	"github.com/polyglotscan/engine/internal/ir"
)

// Options configures a single Parse call.
type Options struct {
	// SuppressComment, if set, marks every source line containing this
	// token as a single-line comment as suppressed.
	SuppressComment string
}

// Parser is the interface every language front-end implements.
type Parser interface {
	Language() string
	Parse(path, source string, opts Options) (*ir.FileIR, error)
}

// languageForPath infers a language tag from a file extension, used by the
// registry to pick a front-end when the caller doesn't specify one.
func languageForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sh", ".bash":
		return "bash"
	case ".py":
		return "python"
	case ".js", ".jsx", ".mjs", ".cjs":
		return "javascript"
	case ".ts", ".tsx":
		return "typescript"
	case ".java":
		return "java"
	case ".go":
		return "go"
	case ".rb":
		return "ruby"
	case ".php":
		return "php"
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	case ".tf":
		return "terraform"
	default:
		return "generic"
	}
}

// applySuppression scans source line-by-line for a single-line comment
// containing token and records every matching 1-based line number.
func applySuppression(fileIR *ir.FileIR, source, token string) {
	if token == "" {
		return
	}
	lines := strings.Split(source, "\n")
	for i, line := range lines {
		if strings.Contains(line, token) {
			fileIR.SuppressedLines[i+1] = true
		}
	}
}
