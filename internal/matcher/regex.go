package matcher

import (
	"strings"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/polyglotscan/engine/internal/findings"
	"github.com/polyglotscan/engine/internal/ir"
)

// regexGuardTimeout and maxMatchesPerSegment enforce the fancy-regex
// guard: every scan runs under a 300ms wall-clock budget and stops after
// 1000 matches, to defeat catastrophic backtracking. When the guard fires
// the scan is abandoned for that pattern/file; matches collected so far are
// kept.
const (
	regexGuardTimeout    = 300 * time.Millisecond
	maxMatchesPerSegment = 1000
)

type patternHit struct {
	Line   int
	Column int
	Text   string
}

// compileFancyRegex compiles pattern with the look-around/back-reference
// dialect, guarded by regexGuardTimeout.
func compileFancyRegex(pattern string) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = regexGuardTimeout
	return re, nil
}

// scanPatternOverLines runs a compiled fancy-regex against source line by
// line, matching once per line per TextRegex semantics, and
// stopping early (keeping what it has) if the guard fires or the segment
// match cap is hit.
func scanPatternOverLines(re *regexp2.Regexp, source string) []patternHit {
	lines := strings.Split(source, "\n")
	var hits []patternHit
	total := 0
	for i, line := range lines {
		m, err := re.FindStringMatch(line)
		if err != nil {
			break // guard (timeout) fired; keep what's collected so far
		}
		if m != nil {
			hits = append(hits, patternHit{Line: i + 1, Column: m.Index + 1, Text: m.String()})
			total++
		}
		if total >= maxMatchesPerSegment {
			break
		}
	}
	return hits
}

// matchesAnywhere reports whether pattern matches anywhere within text,
// under the same guard.
func matchesAnywhere(pattern, text string) bool {
	re, err := compileFancyRegex(pattern)
	if err != nil {
		return false
	}
	m, err := re.FindStringMatch(text)
	return err == nil && m != nil
}

func scanTextRegex(fileIR *ir.FileIR, canonicalPath string, meta RuleMeta, t TextRegex) ([]findings.Finding, error) {
	seenLines := make(map[int]bool)
	var out []findings.Finding
	for _, variant := range expandAliasPatterns(fileIR, t.Regex) {
		re, err := compileFancyRegex(variant)
		if err != nil {
			if variant == t.Regex {
				return nil, err
			}
			continue
		}
		for _, hit := range scanPatternOverLines(re, fileIR.Source) {
			if fileIR.SuppressedLines[hit.Line] || seenLines[hit.Line] {
				continue
			}
			seenLines[hit.Line] = true
			out = append(out, buildFinding(fileIR, canonicalPath, meta, ir.Location{File: fileIR.Path, Line: hit.Line, Column: hit.Column}, fileIR.Line(hit.Line)))
		}
	}
	return out, nil
}
