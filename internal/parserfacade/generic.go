package parserfacade

import (
	"regexp"
	"strings"

	"github.com/polyglotscan/engine/internal/ir"
)

// GenericParser is the tolerant, best-effort line-oriented front-end used
// for every language without a real grammar front-end. It never
// fails: a line it can't classify simply contributes no node. It builds a
// shallow AST (one "Line" node per source line) and a DFG via simple
// assign/use heuristics, enough to drive textual, JSON-path, AST-query/
// pattern, and taint matchers at reduced precision.
type GenericParser struct {
	lang     string
	assignRe *regexp.Regexp
	importRe *regexp.Regexp
	callRe   *regexp.Regexp
}

// languageSyntax holds the regexes that distinguish one language family's
// assignment/import/call surface syntax from another's.
type languageSyntax struct {
	assign *regexp.Regexp
	imp    *regexp.Regexp
	call   *regexp.Regexp
}

var genericSyntax = map[string]languageSyntax{
	"python": {
		assign: regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*=\s*([^=].*)$`),
		imp:    regexp.MustCompile(`^(?:from\s+([\w.]+)\s+import\s+[\w, *]+|import\s+([\w.]+))`),
		call:   regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_.]*)\s*\(`),
	},
	"javascript": {
		assign: regexp.MustCompile(`^(?:const|let|var)?\s*([A-Za-z_$][A-Za-z0-9_$]*)\s*=\s*([^=].*)$`),
		imp:    regexp.MustCompile(`(?:require\(['"]([^'"]+)['"]\)|from\s+['"]([^'"]+)['"])`),
		call:   regexp.MustCompile(`([A-Za-z_$][A-Za-z0-9_$.]*)\s*\(`),
	},
	"typescript": {
		assign: regexp.MustCompile(`^(?:const|let|var)?\s*([A-Za-z_$][A-Za-z0-9_$]*)\s*(?::\s*[\w<>\[\]]+\s*)?=\s*([^=].*)$`),
		imp:    regexp.MustCompile(`(?:require\(['"]([^'"]+)['"]\)|from\s+['"]([^'"]+)['"])`),
		call:   regexp.MustCompile(`([A-Za-z_$][A-Za-z0-9_$.]*)\s*\(`),
	},
	"java": {
		assign: regexp.MustCompile(`^(?:[\w<>\[\]]+\s+)?([A-Za-z_][A-Za-z0-9_]*)\s*=\s*([^=].*);?$`),
		imp:    regexp.MustCompile(`^import\s+(?:static\s+)?([\w.]+)\s*;`),
		call:   regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_.]*)\s*\(`),
	},
	"go": {
		assign: regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*(?::=|=)\s*([^=].*)$`),
		imp:    regexp.MustCompile(`^\s*(?:_ |[\w]+ )?"([\w./-]+)"\s*$`),
		call:   regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_.]*)\s*\(`),
	},
	"ruby": {
		assign: regexp.MustCompile(`^([A-Za-z_@][A-Za-z0-9_]*)\s*=\s*([^=].*)$`),
		imp:    regexp.MustCompile(`^(?:require|require_relative)\s+['"]([^'"]+)['"]`),
		call:   regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_.!?]*)\s*\(`),
	},
	"php": {
		assign: regexp.MustCompile(`^\$([A-Za-z_][A-Za-z0-9_]*)\s*=\s*([^=].*);?$`),
		imp:    regexp.MustCompile(`^(?:require|require_once|include|include_once)\s*\(?['"]([^'"]+)['"]`),
		call:   regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_\\]*)\s*\(`),
	},
	"generic": {
		assign: regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*=\s*([^=].*)$`),
		imp:    regexp.MustCompile(`^(?:import|include|require)\s+['"]?([\w./-]+)['"]?`),
		call:   regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_.]*)\s*\(`),
	},
}

// NewGenericParser returns a line-oriented front-end tuned for lang's
// assignment/import/call surface syntax, falling back to a generic
// punctuation-agnostic heuristic for unrecognized languages.
func NewGenericParser(lang string) *GenericParser {
	syn, ok := genericSyntax[lang]
	if !ok {
		syn = genericSyntax["generic"]
	}
	return &GenericParser{lang: lang, assignRe: syn.assign, importRe: syn.imp, callRe: syn.call}
}

func (p *GenericParser) Language() string { return p.lang }

func (p *GenericParser) Parse(path, source string, _ Options) (*ir.FileIR, error) {
	fileIR := ir.NewFileIR(path, p.lang)
	fileIR.Source = source

	fileIR.AST = &ir.AST{}
	rootIdx := appendASTNode(fileIR.AST, ir.ASTNode{Kind: "File", Parent: -1, Location: ir.Location{File: path, Line: 1, Column: 1}})

	lines := strings.Split(source, "\n")
	for i, raw := range lines {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		loc := ir.Location{File: path, Line: i + 1, Column: leadingWhitespace(raw) + 1}
		lineIdx := appendASTNode(fileIR.AST, ir.ASTNode{Kind: "Line", Parent: rootIdx, Value: trimmed, Location: loc})

		if m := p.importRe.FindStringSubmatch(trimmed); m != nil {
			module := firstNonEmpty(m[1:])
			if module != "" {
				fileIR.Nodes = append(fileIR.Nodes, ir.Node{Kind: "import_from", Path: "import_from." + module, Location: loc})
			}
			continue
		}

		if m := p.assignRe.FindStringSubmatch(trimmed); m != nil {
			name, rhs := m[1], m[2]
			defID := fileIR.DFG.AddNode(name, ir.DFGAssign, -1)
			fileIR.Symbols[name] = ir.Symbol{Name: name, DefNodeID: defID}
			fileIR.Nodes = append(fileIR.Nodes, ir.Node{Kind: "assign", Path: "assign." + name, Value: rhs, Location: loc})
			appendASTNode(fileIR.AST, ir.ASTNode{Kind: "Assign", Parent: lineIdx, Value: name, Location: loc})
			p.recordUses(fileIR, rhs, loc)
			continue
		}

		for _, m := range p.callRe.FindAllStringSubmatch(trimmed, -1) {
			callee := m[1]
			fileIR.Nodes = append(fileIR.Nodes, ir.Node{Kind: "call", Path: "call." + callee, Value: trimmed, Location: loc})
			appendASTNode(fileIR.AST, ir.ASTNode{Kind: "Call", Parent: lineIdx, Value: callee, Location: loc})
			p.recordUses(fileIR, trimmed, loc)
		}
	}

	return fileIR, nil
}

var identRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// recordUses treats any bare identifier in text that is already a known
// symbol as a Use, edged from its last Def/Assign node. This is coarser
// than the bash front-end's $NAME scan since generic-language identifiers
// aren't sigil-marked, but it's sufficient to seed taint path search.
func (p *GenericParser) recordUses(fileIR *ir.FileIR, text string, loc ir.Location) {
	for _, name := range identRe.FindAllString(text, -1) {
		sym, ok := fileIR.Symbols[name]
		if !ok {
			continue
		}
		useID := fileIR.DFG.AddNode(name, ir.DFGUse, -1)
		if sym.DefNodeID >= 0 {
			_ = fileIR.DFG.AddEdge(sym.DefNodeID, useID)
		}
	}
}

func leadingWhitespace(s string) int {
	n := 0
	for _, r := range s {
		if r != ' ' && r != '\t' {
			break
		}
		n++
	}
	return n
}

func firstNonEmpty(groups []string) string {
	for _, g := range groups {
		if g != "" {
			return g
		}
	}
	return ""
}
