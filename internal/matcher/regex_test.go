package matcher

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polyglotscan/engine/internal/ir"
)

func TestScanTextRegexMatchesOncePerLine(t *testing.T) {
	fileIR := ir.NewFileIR("app.py", "python")
	fileIR.Source = "password = \"hunter2\"\nother = 1\npassword = \"hunter3\"\n"

	meta := RuleMeta{ID: "hardcoded-secret", Severity: ir.SeverityMedium}
	found, err := scanTextRegex(fileIR, "app.py", meta, TextRegex{Regex: `password\s*=\s*"`})
	require.NoError(t, err)
	require.Len(t, found, 2)
	require.Equal(t, 1, found[0].Line)
	require.Equal(t, 3, found[1].Line)
}

func TestScanTextRegexSkipsSuppressedLine(t *testing.T) {
	fileIR := ir.NewFileIR("app.py", "python")
	fileIR.Source = "password = \"hunter2\"\n"
	fileIR.SuppressedLines[1] = true

	meta := RuleMeta{ID: "hardcoded-secret", Severity: ir.SeverityMedium}
	found, err := scanTextRegex(fileIR, "app.py", meta, TextRegex{Regex: `password\s*=\s*"`})
	require.NoError(t, err)
	require.Empty(t, found)
}

func TestScanTextRegexInvalidPatternErrors(t *testing.T) {
	fileIR := ir.NewFileIR("app.py", "python")
	fileIR.Source = "x\n"

	meta := RuleMeta{ID: "bad-pattern", Severity: ir.SeverityLow}
	_, err := scanTextRegex(fileIR, "app.py", meta, TextRegex{Regex: `(unclosed`})
	require.Error(t, err)
}

func TestMatchesAnywhere(t *testing.T) {
	require.True(t, matchesAnywhere(`foo`, "a foo b"))
	require.False(t, matchesAnywhere(`bar`, "a foo b"))
	require.False(t, matchesAnywhere(`(unclosed`, "a foo b"))
}
