package matcher

import (
	"github.com/polyglotscan/engine/internal/findings"
	"github.com/polyglotscan/engine/internal/ir"
)

// scanTextRegexMulti implements multi-pattern gating: allow expressions yield candidates;
// a candidate is dropped if deny matches its line, if inside expressions
// exist but none covers its enclosing brace block, or if a not-inside
// expression covers its enclosing brace block.
func scanTextRegexMulti(fileIR *ir.FileIR, canonicalPath string, meta RuleMeta, t TextRegexMulti) ([]findings.Finding, error) {
	lineStarts := lineStartOffsets(fileIR.Source)

	var candidates []patternHit
	for _, pattern := range t.Allow {
		for _, variant := range expandAliasPatterns(fileIR, pattern) {
			re, err := compileFancyRegex(variant)
			if err != nil {
				continue
			}
			candidates = append(candidates, scanPatternOverLines(re, fileIR.Source)...)
		}
	}

	var out []findings.Finding
	for _, hit := range candidates {
		if fileIR.SuppressedLines[hit.Line] {
			continue
		}
		lineText := fileIR.Line(hit.Line)
		if anyPatternMatches(t.Deny, lineText) {
			continue
		}

		if len(t.Inside) > 0 || len(t.NotInside) > 0 {
			blockText := lineText
			if hit.Line-1 < len(lineStarts) {
				offset := lineStarts[hit.Line-1]
				if start, end, ok := enclosingBraceBlock(fileIR.Source, offset); ok {
					blockText = fileIR.Source[start : end+1]
				}
			}
			if len(t.Inside) > 0 && !anyPatternMatches(t.Inside, blockText) {
				continue
			}
			if anyPatternMatches(t.NotInside, blockText) {
				continue
			}
		}

		out = append(out, buildFinding(fileIR, canonicalPath, meta, ir.Location{File: fileIR.Path, Line: hit.Line, Column: hit.Column}, lineText))
	}
	return out, nil
}

func anyPatternMatches(patterns []string, text string) bool {
	for _, p := range patterns {
		if matchesAnywhere(p, text) {
			return true
		}
	}
	return false
}

// lineStartOffsets returns the byte offset of the first character of each
// 1-based line (index 0 holds line 1's offset).
func lineStartOffsets(source string) []int {
	starts := []int{0}
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// enclosingBraceBlock finds the smallest {...} block (by byte offset)
// containing targetOffset, scanning forward and tracking a stack of open
// brace positions. Since nested blocks close before their enclosing block,
// the first closing brace whose open/close range covers targetOffset is
// the innermost enclosing block.
func enclosingBraceBlock(source string, targetOffset int) (start, end int, ok bool) {
	var stack []int
	for i := 0; i < len(source); i++ {
		switch source[i] {
		case '{':
			stack = append(stack, i)
		case '}':
			if len(stack) == 0 {
				continue
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if open <= targetOffset && targetOffset <= i {
				return open, i, true
			}
		}
	}
	return 0, 0, false
}
