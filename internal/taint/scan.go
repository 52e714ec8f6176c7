package taint

import (
	"regexp"
	"strings"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/polyglotscan/engine/internal/matcher"
)

const (
	guardTimeout  = 300 * time.Millisecond
	maxHitsPerRun = 1000
)

// hit is one allow-pattern match, carrying its capture groups so the caller
// can derive a propagated symbol name.
type hit struct {
	PatternIndex int
	Line, Column int
	FullMatch    string
	Groups       []string // 0-indexed; Groups[0] is capture group 1
}

// scanAllow runs every Allow pattern in set against source, gating each
// candidate by Deny (same line) and Inside/NotInside (enclosing brace
// block), mirroring internal/matcher's TextRegexMulti semantics but
// surfacing capture groups for focus derivation.
func scanAllow(source string, set matcher.TaintPatternSet) []hit {
	lineStarts := lineStartOffsets(source)
	var out []hit
	for pi, pattern := range set.Allow {
		for _, h := range scanPattern(source, pattern, pi) {
			lineText := lineAt(source, h.Line)
			if anyMatches(set.Deny, lineText) {
				continue
			}
			if len(set.Inside) > 0 || len(set.NotInside) > 0 {
				blockText := lineText
				if h.Line-1 < len(lineStarts) {
					if start, end, ok := enclosingBraceBlock(source, lineStarts[h.Line-1]); ok {
						blockText = source[start : end+1]
					}
				}
				if len(set.Inside) > 0 && !anyMatches(set.Inside, blockText) {
					continue
				}
				if anyMatches(set.NotInside, blockText) {
					continue
				}
			}
			out = append(out, h)
		}
	}
	return out
}

func scanPattern(source, pattern string, patternIndex int) []hit {
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil
	}
	re.MatchTimeout = guardTimeout

	var out []hit
	lines := strings.Split(source, "\n")
	total := 0
	for i, line := range lines {
		m, err := re.FindStringMatch(line)
		for m != nil && err == nil {
			groups := make([]string, 0)
			for _, g := range m.Groups()[1:] {
				groups = append(groups, g.String())
			}
			out = append(out, hit{PatternIndex: patternIndex, Line: i + 1, Column: m.Index + 1, FullMatch: m.String(), Groups: groups})
			total++
			if total >= maxHitsPerRun {
				return out
			}
			m, err = re.FindNextMatch(m)
		}
		if err != nil {
			break
		}
	}
	return out
}

func anyMatches(patterns []string, text string) bool {
	for _, p := range patterns {
		re, err := regexp2.Compile(p, regexp2.None)
		if err != nil {
			continue
		}
		re.MatchTimeout = guardTimeout
		if m, err := re.FindStringMatch(text); err == nil && m != nil {
			return true
		}
	}
	return false
}

func lineAt(source string, line int) string {
	lines := strings.Split(source, "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	return lines[line-1]
}

func lineStartOffsets(source string) []int {
	starts := []int{0}
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// enclosingBraceBlock finds the smallest {...} block containing offset.
func enclosingBraceBlock(source string, offset int) (start, end int, ok bool) {
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
			if open <= offset && offset <= i {
				return open, i, true
			}
		}
	}
	return 0, 0, false
}

var assignmentLHSRe = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s*(?::\s*[\w.\[\]<>]+\s*)?=[^=]`)

// deriveAssignmentLHS extracts "name" from "name[:type] = ..." on a line,
// the fallback symbol-derivation rule.
func deriveAssignmentLHS(line string) (string, bool) {
	m := assignmentLHSRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

var identRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// referencedVars extracts every bare identifier from sink-hit text, used as
// a stand-in for "variables referenced by $NAME metavariables in sink text"
//: the $NAME capture in a sink pattern is, after matching, exactly
// the identifier text appearing in that position of the source.
func referencedVars(text string) []string {
	return identRe.FindAllString(text, -1)
}

// deriveSymbol implements the three-step focus derivation order: (a) the
// capture group named by allow_focus_groups[i] (default 1) when Focus is
// set, (b) the focus capture of an Inside pattern, (c) the left-hand side
// of an enclosing assignment on the same line.
func deriveSymbol(set matcher.TaintPatternSet, h hit, sourceLine string) string {
	if set.Focus != "" {
		groupIdx := 1
		if h.PatternIndex < len(set.AllowFocusGroups) && set.AllowFocusGroups[h.PatternIndex] > 0 {
			groupIdx = set.AllowFocusGroups[h.PatternIndex]
		}
		if groupIdx-1 < len(h.Groups) && h.Groups[groupIdx-1] != "" {
			return h.Groups[groupIdx-1]
		}
	}
	for idx, insidePattern := range set.Inside {
		groupIdx := 1
		if idx < len(set.InsideFocusGroups) && set.InsideFocusGroups[idx] > 0 {
			groupIdx = set.InsideFocusGroups[idx]
		}
		for _, ih := range scanPattern(sourceLine, insidePattern, idx) {
			if groupIdx-1 < len(ih.Groups) && ih.Groups[groupIdx-1] != "" {
				return ih.Groups[groupIdx-1]
			}
		}
	}
	if name, ok := deriveAssignmentLHS(sourceLine); ok {
		return name
	}
	return ""
}
