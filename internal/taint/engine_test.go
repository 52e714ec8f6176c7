package taint

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polyglotscan/engine/internal/ir"
	"github.com/polyglotscan/engine/internal/matcher"
)

func sourceSinkRule() matcher.TaintRule {
	return matcher.TaintRule{
		Sources: []matcher.TaintPatternSet{{
			Allow: []string{`(\w+)\s*=\s*request\.GET\[`},
		}},
		Sanitizers: []matcher.TaintPatternSet{{
			Allow: []string{`(\w+)\s*=\s*escape\(`},
		}},
		Sinks: []matcher.TaintPatternSet{{
			Allow: []string{`execute\(\w+\)`},
		}},
	}
}

func buildFileIR(t *testing.T, source string) *ir.FileIR {
	t.Helper()
	fileIR := ir.NewFileIR("app.py", "python")
	fileIR.Source = source
	fileIR.DFG = ir.NewDFG()
	return fileIR
}

func TestDispatchFindsUnsanitizedFlow(t *testing.T) {
	fileIR := buildFileIR(t, "q = request.GET['q']\nexecute(q)\n")
	def := fileIR.DFG.AddNode("q", ir.DFGDef, -1)
	use := fileIR.DFG.AddNode("q", ir.DFGUse, -1)
	require.NoError(t, fileIR.DFG.AddEdge(def, use))

	engine := NewEngine(nil)
	meta := matcher.RuleMeta{ID: "taint-sql", Severity: ir.SeverityHigh, Message: "unsanitized input reaches execute()"}
	found, err := engine.Dispatch(fileIR, sourceSinkRule(), meta)
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, ir.SeverityHigh, found[0].Severity)
}

func TestDispatchSkipsSanitizedFlow(t *testing.T) {
	fileIR := buildFileIR(t, "q = request.GET['q']\nq = escape(q)\nexecute(q)\n")
	rawDef := fileIR.DFG.AddNode("q", ir.DFGDef, -1)
	sanitizerCall := fileIR.DFG.AddNode("q", ir.DFGDef, -1)
	assign := fileIR.DFG.AddNode("q", ir.DFGAssign, -1)
	use := fileIR.DFG.AddNode("q", ir.DFGUse, -1)
	require.NoError(t, fileIR.DFG.AddEdge(rawDef, assign))
	require.NoError(t, fileIR.DFG.AddEdge(sanitizerCall, assign))
	require.NoError(t, fileIR.DFG.AddEdge(assign, use))

	engine := NewEngine(nil)
	meta := matcher.RuleMeta{ID: "taint-sql", Severity: ir.SeverityHigh, Message: "unsanitized input reaches execute()"}
	found, err := engine.Dispatch(fileIR, sourceSinkRule(), meta)
	require.NoError(t, err)
	require.Empty(t, found, "a sanitized assignment must not reach the sink as tainted")
}

func TestDispatchReclassLowersSeverity(t *testing.T) {
	fileIR := buildFileIR(t, "q = request.GET['q']\nexecute(q)\n")
	def := fileIR.DFG.AddNode("q", ir.DFGDef, -1)
	use := fileIR.DFG.AddNode("q", ir.DFGUse, -1)
	require.NoError(t, fileIR.DFG.AddEdge(def, use))

	rule := sourceSinkRule()
	rule.Reclass = []matcher.TaintPatternSet{{
		Allow: []string{`(\w+)\s*=\s*request\.GET\[`},
	}}

	engine := NewEngine(nil)
	meta := matcher.RuleMeta{ID: "taint-sql", Severity: ir.SeverityHigh}
	found, err := engine.Dispatch(fileIR, rule, meta)
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, ir.SeverityLow, found[0].Severity)
}
