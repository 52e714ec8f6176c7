package matcher

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polyglotscan/engine/internal/ir"
)

func TestExpandAliasPatternsNoAliasesReturnsOriginal(t *testing.T) {
	fileIR := ir.NewFileIR("app.py", "python")
	variants := expandAliasPatterns(fileIR, `os.system(`)
	require.Equal(t, []string{`os.system(`}, variants)
}

func TestExpandAliasPatternsRewritesImportAlias(t *testing.T) {
	fileIR := ir.NewFileIR("app.go", "go")
	fileIR.Nodes = []ir.Node{
		{Kind: "import", Path: "import.net/http", Value: "http"},
	}

	variants := expandAliasPatterns(fileIR, `http.Get(`)
	require.Contains(t, variants, `http.Get(`)
	require.Contains(t, variants, `net/http.Get(`)
}

func TestExpandAliasPatternsRewritesSymbolAlias(t *testing.T) {
	fileIR := ir.NewFileIR("app.go", "go")
	fileIR.Symbols["h"] = ir.Symbol{Name: "h", AliasOf: "net::http"}

	variants := expandAliasPatterns(fileIR, `h.Get(`)
	require.Contains(t, variants, `net::http.Get(`)
}
