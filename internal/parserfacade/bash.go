package parserfacade

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/polyglotscan/engine/internal/ir"
)

// BashParser builds a real AST and DFG for shell scripts using
// mvdan.cc/sh/v3/syntax: it walks syntax.CallExpr/BinaryCmd/Subshell nodes
// and emits ir.Node/ir.AST/ir.DFG entries for each.
type BashParser struct{}

// NewBashParser returns a bash front-end. One instance is safe to reuse
// sequentially (never concurrently), per the registry's pool contract.
func NewBashParser() *BashParser { return &BashParser{} }

func (p *BashParser) Language() string { return "bash" }

func (p *BashParser) Parse(path, source string, _ Options) (*ir.FileIR, error) {
	fileIR := ir.NewFileIR(path, "bash")
	fileIR.Source = source

	reader := strings.NewReader(source)
	parser := syntax.NewParser(syntax.KeepComments(false), syntax.Variant(syntax.LangBash))
	file, err := parser.Parse(reader, path)
	if err != nil {
		// Tolerant parsers must still produce best-effort nodes on partial
		// syntax errors; fall back to a line scan.
		fallbackLineScan(fileIR, source)
		return fileIR, nil
	}

	fileIR.AST = &ir.AST{}
	rootIdx := appendASTNode(fileIR.AST, ir.ASTNode{Kind: "File", Parent: -1, Location: ir.Location{File: path, Line: 1, Column: 1}})

	w := &bashWalker{fileIR: fileIR, path: path, source: source}
	for _, stmt := range file.Stmts {
		w.walkStmt(rootIdx, stmt)
	}
	return fileIR, nil
}

// appendASTNode appends n to ast.Index, wires it under its parent (if any),
// and returns its index.
func appendASTNode(ast *ir.AST, n ir.ASTNode) int {
	idx := len(ast.Index)
	ast.Index = append(ast.Index, n)
	if n.Parent >= 0 && n.Parent < idx {
		ast.Index[n.Parent].Children = append(ast.Index[n.Parent].Children, idx)
	}
	return idx
}

type bashWalker struct {
	fileIR *ir.FileIR
	path   string
	source string
}

func (w *bashWalker) loc(pos syntax.Pos) ir.Location {
	return ir.Location{File: w.path, Line: int(pos.Line()), Column: int(pos.Col())}
}

func (w *bashWalker) walkStmt(parent int, stmt *syntax.Stmt) {
	if stmt == nil || stmt.Cmd == nil {
		return
	}
	loc := w.loc(stmt.Pos())

	switch cmd := stmt.Cmd.(type) {
	case *syntax.CallExpr:
		w.walkCall(parent, cmd, loc)
	case *syntax.BinaryCmd:
		idx := appendASTNode(w.fileIR.AST, ir.ASTNode{Kind: "BinaryCmd", Parent: parent, Location: loc, Value: cmd.Op.String()})
		w.walkStmt(idx, cmd.X)
		w.walkStmt(idx, cmd.Y)
	case *syntax.Subshell:
		idx := appendASTNode(w.fileIR.AST, ir.ASTNode{Kind: "Subshell", Parent: parent, Location: loc})
		for _, s := range cmd.Stmts {
			w.walkStmt(idx, s)
		}
	case *syntax.IfClause:
		idx := appendASTNode(w.fileIR.AST, ir.ASTNode{Kind: "IfClause", Parent: parent, Location: loc})
		branchID := w.fileIR.DFG.AddNode("", ir.DFGBranch, -1)
		for _, s := range cmd.Cond {
			w.walkStmtBranch(idx, s, branchID)
		}
		for _, s := range cmd.Then {
			w.walkStmtBranch(idx, s, branchID)
		}
		for _, elif := range cmd.Elifs {
			for _, s := range elif.Then {
				w.walkStmtBranch(idx, s, branchID)
			}
		}
		if cmd.Else != nil {
			for _, s := range cmd.Else.Then {
				w.walkStmtBranch(idx, s, branchID)
			}
		}
	case *syntax.WhileClause:
		idx := appendASTNode(w.fileIR.AST, ir.ASTNode{Kind: "WhileClause", Parent: parent, Location: loc})
		branchID := w.fileIR.DFG.AddNode("", ir.DFGBranch, -1)
		for _, s := range cmd.Do {
			w.walkStmtBranch(idx, s, branchID)
		}
	case *syntax.ForClause:
		idx := appendASTNode(w.fileIR.AST, ir.ASTNode{Kind: "ForClause", Parent: parent, Location: loc})
		branchID := w.fileIR.DFG.AddNode("", ir.DFGBranch, -1)
		for _, s := range cmd.Do {
			w.walkStmtBranch(idx, s, branchID)
		}
	default:
		appendASTNode(w.fileIR.AST, ir.ASTNode{Kind: "Unknown", Parent: parent, Location: loc})
	}
}

// walkStmtBranch walks a statement known to be inside a branch scope,
// tagging any DFG nodes it creates with branchID.
func (w *bashWalker) walkStmtBranch(parent int, stmt *syntax.Stmt, branchID int) {
	before := len(w.fileIR.DFG.Nodes)
	w.walkStmt(parent, stmt)
	for i := before; i < len(w.fileIR.DFG.Nodes); i++ {
		if w.fileIR.DFG.Nodes[i].BranchID == -1 {
			w.fileIR.DFG.Nodes[i].BranchID = branchID
		}
	}
}

func (w *bashWalker) walkCall(parent int, call *syntax.CallExpr, loc ir.Location) {
	// Assignments (FOO=bar cmd, or a bare "FOO=bar" statement) come first.
	for _, assign := range call.Assigns {
		name := assign.Name.Value
		valueStr := ""
		if assign.Value != nil {
			valueStr = wordString(assign.Value)
		}
		defID := w.fileIR.DFG.AddNode(name, ir.DFGAssign, -1)
		w.fileIR.Symbols[name] = ir.Symbol{Name: name, DefNodeID: defID}
		w.fileIR.Nodes = append(w.fileIR.Nodes, ir.Node{
			Kind: "assign", Path: "assign." + name, Value: valueStr, Location: loc,
		})
		w.recordUses(valueStr, loc)
		appendASTNode(w.fileIR.AST, ir.ASTNode{Kind: "Assign", Parent: parent, Value: name, Location: loc})
	}

	if len(call.Args) == 0 {
		return
	}

	words := make([]string, 0, len(call.Args))
	for _, word := range call.Args {
		words = append(words, wordString(word))
	}

	exe := words[0]
	callIdx := appendASTNode(w.fileIR.AST, ir.ASTNode{Kind: "Call", Parent: parent, Value: exe, Location: loc})
	for _, arg := range words[1:] {
		appendASTNode(w.fileIR.AST, ir.ASTNode{Kind: "Arg", Parent: callIdx, Value: arg, Location: loc})
		w.recordUses(arg, loc)
	}

	dotted := exe
	w.fileIR.Nodes = append(w.fileIR.Nodes, ir.Node{
		Kind: "call", Path: "call." + dotted, Value: strings.Join(words, " "), Location: loc,
	})

	// "source" / "." load another file's definitions into scope — modeled
	// as an import_from node, matching the import alias machinery.
	if (exe == "source" || exe == ".") && len(words) > 1 {
		w.fileIR.Nodes = append(w.fileIR.Nodes, ir.Node{
			Kind: "import_from", Path: "import_from." + words[1], Location: loc,
		})
	}
}

// recordUses scans text for $NAME / ${NAME} references and adds Use nodes
// edged from the symbol's current Def/Assign node.
func (w *bashWalker) recordUses(text string, loc ir.Location) {
	for _, name := range extractVarRefs(text) {
		sym, ok := w.fileIR.Symbols[name]
		if !ok {
			continue
		}
		useID := w.fileIR.DFG.AddNode(name, ir.DFGUse, -1)
		if sym.DefNodeID >= 0 {
			_ = w.fileIR.DFG.AddEdge(sym.DefNodeID, useID)
		}
	}
}

func wordString(word *syntax.Word) string {
	var sb strings.Builder
	printer := syntax.NewPrinter()
	printer.Print(&sb, word)
	return sb.String()
}

// extractVarRefs finds $NAME and ${NAME...} references in text.
func extractVarRefs(text string) []string {
	var names []string
	for i := 0; i < len(text); i++ {
		if text[i] != '$' {
			continue
		}
		i++
		braced := false
		if i < len(text) && text[i] == '{' {
			braced = true
			i++
		}
		start := i
		for i < len(text) && isIdentByte(text[i]) {
			i++
		}
		if i > start {
			names = append(names, text[start:i])
		}
		_ = braced
		i--
	}
	return names
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// fallbackParse handles scripts mvdan.cc/sh can't parse: best-effort line
// scanning so partial syntax errors still produce usable nodes.
func fallbackLineScan(fileIR *ir.FileIR, source string) {
	lines := strings.Split(source, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		loc := ir.Location{File: fileIR.Path, Line: i + 1, Column: 1}
		words := strings.Fields(trimmed)
		if len(words) == 0 {
			continue
		}
		if eq := strings.Index(words[0], "="); eq > 0 && !strings.ContainsAny(words[0][:eq], " \t") {
			name := words[0][:eq]
			fileIR.Nodes = append(fileIR.Nodes, ir.Node{Kind: "assign", Path: "assign." + name, Location: loc})
			continue
		}
		fileIR.Nodes = append(fileIR.Nodes, ir.Node{Kind: "call", Path: "call." + words[0], Value: trimmed, Location: loc})
	}
}
