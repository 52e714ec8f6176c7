package matcher

import (
	"fmt"
	"regexp"
	"time"

	"github.com/polyglotscan/engine/internal/findings"
	"github.com/polyglotscan/engine/internal/ir"
)

// astNodeCeiling and astWallClockCeiling bound AST traversal:
// 10,000 nodes or 100ms, whichever comes first.
const (
	astNodeCeiling      = 10000
	astWallClockCeiling = 100 * time.Millisecond
)

func scanAstQuery(fileIR *ir.FileIR, canonicalPath string, meta RuleMeta, q AstQuery) ([]findings.Finding, error) {
	if fileIR.AST == nil || len(fileIR.AST.Index) == 0 {
		return nil, nil
	}
	kindRe, err := regexp.Compile(q.KindRegex)
	if err != nil {
		return nil, err
	}
	var valueRe *regexp.Regexp
	if q.ValueRegex != "" {
		valueRe, err = regexp.Compile(q.ValueRegex)
		if err != nil {
			return nil, err
		}
	}

	var out []findings.Finding
	deadline := time.Now().Add(astWallClockCeiling)
	fileIR.AST.Walk(0, astNodeCeiling, func(idx int, n *ir.ASTNode) bool {
		if time.Now().After(deadline) {
			return false
		}
		if !kindRe.MatchString(n.Kind) {
			return true
		}
		if valueRe != nil && !valueRe.MatchString(fmt.Sprintf("%v", n.Value)) {
			return true
		}
		if fileIR.SuppressedLines[n.Location.Line] {
			return true
		}
		out = append(out, buildFinding(fileIR, canonicalPath, meta, n.Location, fileIR.Line(n.Location.Line)))
		return true
	})
	return out, nil
}

func scanAstPattern(fileIR *ir.FileIR, canonicalPath string, meta RuleMeta, p AstPattern) ([]findings.Finding, error) {
	if fileIR.AST == nil {
		return nil, nil
	}
	ast := fileIR.AST
	var out []findings.Finding
	for idx := range ast.Index {
		n := &ast.Index[idx]
		if n.Kind != p.Kind {
			continue
		}
		if p.Within != "" && !hasAncestorKind(ast, idx, p.Within) {
			continue
		}
		if !satisfiesMetavariables(ast, idx, p.Metavariables) {
			continue
		}
		if fileIR.SuppressedLines[n.Location.Line] {
			continue
		}
		out = append(out, buildFinding(fileIR, canonicalPath, meta, n.Location, fileIR.Line(n.Location.Line)))
	}
	return out, nil
}

func hasAncestorKind(ast *ir.AST, idx int, kind string) bool {
	cur := ast.Index[idx].Parent
	for cur >= 0 && cur < len(ast.Index) {
		if ast.Index[cur].Kind == kind {
			return true
		}
		cur = ast.Index[cur].Parent
	}
	return false
}

// satisfiesMetavariables reports whether every declared metavariable is
// supplied by some descendant of idx matching its Kind (and Literal value,
// if set).
func satisfiesMetavariables(ast *ir.AST, idx int, mvs []Metavariable) bool {
	if len(mvs) == 0 {
		return true
	}
	satisfied := make([]bool, len(mvs))
	ast.Walk(idx, astNodeCeiling, func(i int, n *ir.ASTNode) bool {
		for mi, mv := range mvs {
			if satisfied[mi] {
				continue
			}
			if n.Kind != mv.Kind {
				continue
			}
			if mv.Literal == nil || fmt.Sprintf("%v", n.Value) == fmt.Sprintf("%v", mv.Literal) {
				satisfied[mi] = true
			}
		}
		return true
	})
	for _, ok := range satisfied {
		if !ok {
			return false
		}
	}
	return true
}
