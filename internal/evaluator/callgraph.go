package evaluator

import (
	"github.com/polyglotscan/engine/internal/ir"
	"github.com/polyglotscan/engine/internal/taint"
)

// buildCallGraph registers every function name a file calls into, deriving
// its parameter/return DFG node ids from that same file's DFG.
//
// Current front-ends don't emit function-boundary Param/Return nodes or
// populate DFG.Calls with real data (tracked as a known limitation — see
// DESIGN.md), so in practice this only links calls within the same file;
// a caller in one file referencing a callee defined in another resolves to
// an empty FunctionInfo until a front-end populates those maps.
func buildCallGraph(fileIRs []*ir.FileIR) *taint.CallGraph {
	cg := taint.NewCallGraph()
	for _, fileIR := range fileIRs {
		if fileIR.DFG == nil {
			continue
		}
		for _, callees := range fileIR.DFG.Calls {
			for _, callee := range callees {
				if _, ok := cg.Lookup(fileIR.Path, callee); ok {
					continue
				}
				ids := fileIR.DFG.NodesNamed(callee)
				params := filterByKind(fileIR.DFG, ids, ir.DFGParam)
				returns := filterByKind(fileIR.DFG, ids, ir.DFGReturn)
				cg.AddFunction(fileIR.Path, callee, params, returns)
			}
		}
	}
	return cg
}

func filterByKind(dfg *ir.DFG, ids []int, kind ir.DFGNodeKind) []int {
	var out []int
	for _, id := range ids {
		if n := dfg.Node(id); n != nil && n.Kind == kind {
			out = append(out, id)
		}
	}
	return out
}
