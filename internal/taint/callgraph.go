package taint

import "github.com/polyglotscan/engine/internal/ir"

// FunctionInfo records one function's parameter and return DFG node ids,
// keyed by file+name in CallGraph, so inter-procedural edges can be added
// once every file in a run has been parsed.
type FunctionInfo struct {
	File          string
	Name          string
	ParamNodeIDs  []int
	ReturnNodeIDs []int
}

// CallGraph is built once per analyze() invocation and is
// read-only during evaluation. The evaluator populates it from every file's
// DFG.Calls map before dispatching any taint rule.
type CallGraph struct {
	Functions map[string]*FunctionInfo
}

// NewCallGraph returns an empty call graph.
func NewCallGraph() *CallGraph {
	return &CallGraph{Functions: make(map[string]*FunctionInfo)}
}

func functionKey(file, name string) string { return file + "::" + name }

// AddFunction registers a function's parameter/return node ids.
func (g *CallGraph) AddFunction(file, name string, params, returns []int) {
	g.Functions[functionKey(file, name)] = &FunctionInfo{File: file, Name: name, ParamNodeIDs: params, ReturnNodeIDs: returns}
}

// Lookup finds a previously registered function by file and name.
func (g *CallGraph) Lookup(file, name string) (*FunctionInfo, bool) {
	fn, ok := g.Functions[functionKey(file, name)]
	return fn, ok
}

// propagateSanitization forward-propagates the sanitized flag from seed
// DFG nodes to every reachable successor: "once a node is
// sanitized, every successor that is not a pure Assign merge also becomes
// sanitized". A pure Assign merge node (tracked in dfg.Merges) only becomes
// sanitized when every one of its recorded predecessors is sanitized
// (the branch-merge conjunction rule).
func propagateSanitization(dfg *ir.DFG, seeds []int, _ *CallGraph) (sanitizedNodes map[int]bool, sanitizedSymbols map[string]bool) {
	sanitizedNodes = make(map[int]bool)
	var queue []int
	for _, s := range seeds {
		if dfg.Node(s) == nil || sanitizedNodes[s] {
			continue
		}
		sanitizedNodes[s] = true
		queue = append(queue, s)
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, succ := range dfg.Successors(cur) {
			if sanitizedNodes[succ] {
				continue
			}
			n := dfg.Node(succ)
			if n == nil {
				continue
			}
			if n.Kind == ir.DFGAssign && n.BranchID == -1 {
				if preds, ok := dfg.Merges[succ]; ok {
					allSanitized := true
					for _, p := range preds {
						if !sanitizedNodes[p] {
							allSanitized = false
							break
						}
					}
					if !allSanitized {
						continue
					}
				}
			}
			sanitizedNodes[succ] = true
			queue = append(queue, succ)
		}
	}

	sanitizedSymbols = make(map[string]bool)
	for id := range sanitizedNodes {
		if n := dfg.Node(id); n != nil && n.Name != "" {
			sanitizedSymbols[n.Name] = true
		}
	}
	return sanitizedNodes, sanitizedSymbols
}

// taintPathExists searches forward from sourceDefs for a Use node named
// varName that survives without passing through an already-sanitized node.
// Cross-file edges recorded via cg are already folded into dfg.Edges by the
// evaluator before this runs, so cg itself isn't consulted here — it's
// threaded through for callers that need the function metadata directly
// (e.g. diagnostics).
func taintPathExists(dfg *ir.DFG, sourceDefs []int, varName string, sanitizedNodes map[int]bool, _ *CallGraph) bool {
	visited := make(map[int]bool)
	var queue []int
	for _, d := range sourceDefs {
		if !visited[d] {
			visited[d] = true
			queue = append(queue, d)
		}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, succ := range dfg.Successors(cur) {
			if visited[succ] {
				continue
			}
			n := dfg.Node(succ)
			if n == nil {
				continue
			}
			if n.Kind == ir.DFGUse && n.Name == varName && !sanitizedNodes[succ] {
				return true
			}
			if sanitizedNodes[succ] {
				continue
			}
			visited[succ] = true
			queue = append(queue, succ)
		}
	}
	return false
}
