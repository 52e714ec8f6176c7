package evaluator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polyglotscan/engine/internal/ir"
)

func TestFilterByKindSelectsOnlyMatchingNodes(t *testing.T) {
	dfg := ir.NewDFG()
	param := dfg.AddNode("handler", ir.DFGParam, -1)
	dfg.AddNode("handler", ir.DFGDef, -1)
	ret := dfg.AddNode("handler", ir.DFGReturn, -1)

	ids := dfg.NodesNamed("handler")
	require.Equal(t, []int{param}, filterByKind(dfg, ids, ir.DFGParam))
	require.Equal(t, []int{ret}, filterByKind(dfg, ids, ir.DFGReturn))
}

func TestBuildCallGraphRegistersFunctionsFromDFGCalls(t *testing.T) {
	fileIR := ir.NewFileIR("app.py", "python")
	fileIR.DFG.Calls["main"] = []string{"handler"}
	param := fileIR.DFG.AddNode("handler", ir.DFGParam, -1)

	cg := buildCallGraph([]*ir.FileIR{fileIR})
	fn, ok := cg.Lookup("app.py", "handler")
	require.True(t, ok)
	require.Equal(t, []int{param}, fn.ParamNodeIDs)
}

func TestBuildCallGraphSkipsFilesWithoutDFG(t *testing.T) {
	fileIR := &ir.FileIR{Path: "app.py"}
	cg := buildCallGraph([]*ir.FileIR{fileIR})
	_, ok := cg.Lookup("app.py", "anything")
	require.False(t, ok)
}
