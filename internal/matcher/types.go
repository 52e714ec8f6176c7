// Package matcher defines the compiled matcher taxonomy and the
// runtime that dispatches a compiled matcher against a file's IR to produce
// findings. The rule compiler (internal/rules) builds these values; this
// package only ever reads them.
package matcher

// Matcher is the tagged-variant sum type every compiled rule resolves to.
// It is a closed set: an unexported tag method lets the runtime
// type-switch dispatch without an interface method per behavior.
type Matcher interface {
	matcherTag()
}

// TextRegex is a whole-file line-by-line fancy-regex scan; a match counts
// once per line.
type TextRegex struct {
	Regex    string // compiled lazily by the runtime via regexp2
	Original string // the untranslated source pattern, for diagnostics
}

func (TextRegex) matcherTag() {}

// TextRegexMulti composes allow/deny/inside/not-inside expressions: allow
// yields candidates, the rest gate which candidates survive.
type TextRegexMulti struct {
	Allow     []string
	Deny      []string
	Inside    []string
	NotInside []string
}

func (TextRegexMulti) matcherTag() {}

// JsonPathEq matches semantic nodes (configuration kinds) whose dotted path
// (honoring "[*]" wildcards) resolves to Value equal to Literal.
type JsonPathEq struct {
	Path    string
	Literal any
}

func (JsonPathEq) matcherTag() {}

// JsonPathRegex matches semantic nodes whose path resolves and whose string
// Value matches Regex.
type JsonPathRegex struct {
	Path  string
	Regex string
}

func (JsonPathRegex) matcherTag() {}

// AstQuery is a depth-first AST traversal emitting a finding wherever a
// node's Kind matches KindRegex and (if set) its Value matches ValueRegex.
type AstQuery struct {
	KindRegex  string
	ValueRegex string // empty means "match on kind alone"
}

func (AstQuery) matcherTag() {}

// Metavariable is one declared capture an AstPattern requires among a
// matched node's descendants.
type Metavariable struct {
	Name    string
	Kind    string // descendant AST kind that must supply the capture
	Literal any    // optional: descendant Value must equal this
}

// AstPattern matches AST nodes of Kind whose ancestor chain contains a
// Within-kind node (if set) and whose descendants supply every declared
// metavariable.
type AstPattern struct {
	Kind          string
	Within        string // empty means "no ancestor constraint"
	Metavariables []Metavariable
}

func (AstPattern) matcherTag() {}

// RegoWasm evaluates a WASM policy module; the file's IR is serialised as
// its input.
type RegoWasm struct {
	WasmPath   string
	Entrypoint string
}

func (RegoWasm) matcherTag() {}

// TaintPatternSet is one element of a taint rule's sources/sanitizers/
// reclass/sinks pattern lists.
type TaintPatternSet struct {
	Allow             []string
	Deny              []string
	Inside            []string
	NotInside         []string
	Focus             string // metavariable name whose capture is propagated
	AllowFocusGroups  []int  // per-Allow-pattern capture group override, 1-based
	InsideFocusGroups []int  // per-Inside-pattern capture group override, 1-based
}

// TaintRule is the compiled form of a source/sanitizer/sink rule.
type TaintRule struct {
	Sources    []TaintPatternSet
	Sanitizers []TaintPatternSet
	Reclass    []TaintPatternSet
	Sinks      []TaintPatternSet
}

func (TaintRule) matcherTag() {}
