package taint

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polyglotscan/engine/internal/matcher"
)

func TestScanAllowFindsMatchAndAppliesDeny(t *testing.T) {
	source := "q = request.GET['q']\n# q = request.GET['q']\n"
	set := matcher.TaintPatternSet{
		Allow: []string{`(\w+)\s*=\s*request\.GET\[`},
		Deny:  []string{`^\s*#`},
	}
	hits := scanAllow(source, set)
	require.Len(t, hits, 1)
	require.Equal(t, 1, hits[0].Line)
	require.Equal(t, "q", hits[0].Groups[0])
}

func TestScanAllowInsideRequiresBraceBlock(t *testing.T) {
	source := "func risky() {\n  q = request.GET['q']\n}\n"
	set := matcher.TaintPatternSet{
		Allow:  []string{`(\w+)\s*=\s*request\.GET\[`},
		Inside: []string{`func risky`},
	}
	hits := scanAllow(source, set)
	require.Len(t, hits, 1)
}

func TestDeriveSymbolUsesFocusCaptureGroup(t *testing.T) {
	set := matcher.TaintPatternSet{Focus: "$VAR"}
	h := hit{Groups: []string{"q"}}
	require.Equal(t, "q", deriveSymbol(set, h, "q = request.GET['q']"))
}

func TestDeriveSymbolFallsBackToAssignmentLHS(t *testing.T) {
	set := matcher.TaintPatternSet{}
	h := hit{}
	require.Equal(t, "q", deriveSymbol(set, h, "q = request.GET['q']"))
}

func TestDeriveSymbolReturnsEmptyWhenNothingMatches(t *testing.T) {
	set := matcher.TaintPatternSet{}
	h := hit{}
	require.Equal(t, "", deriveSymbol(set, h, "execute(q)"))
}

func TestDeriveAssignmentLHSExtractsName(t *testing.T) {
	name, ok := deriveAssignmentLHS("count: int = 5")
	require.True(t, ok)
	require.Equal(t, "count", name)
}

func TestReferencedVarsExtractsBareIdentifiers(t *testing.T) {
	require.Equal(t, []string{"execute", "q", "db"}, referencedVars("execute(q, db)"))
}
