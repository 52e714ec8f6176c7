package parserfacade

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polyglotscan/engine/internal/ir"
)

func TestBashParserAssignAndCall(t *testing.T) {
	p := NewBashParser()
	fileIR, err := p.Parse("deploy.sh", "NAME=world\necho \"hello $NAME\"\n", Options{})
	require.NoError(t, err)
	require.Equal(t, "bash", fileIR.Language)
	require.NotNil(t, fileIR.AST)

	var sawAssign, sawCall bool
	for _, n := range fileIR.Nodes {
		if n.Kind == "assign" && n.Path == "assign.NAME" {
			sawAssign = true
		}
		if n.Kind == "call" && n.Path == "call.echo" {
			sawCall = true
		}
	}
	require.True(t, sawAssign)
	require.True(t, sawCall)
}

func TestBashParserSourceCommandEmitsImportFrom(t *testing.T) {
	p := NewBashParser()
	fileIR, err := p.Parse("deploy.sh", "source ./lib.sh\n", Options{})
	require.NoError(t, err)

	var sawImport bool
	for _, n := range fileIR.Nodes {
		if n.Kind == "import_from" {
			sawImport = true
		}
	}
	require.True(t, sawImport)
}

func TestExtractVarRefsFindsBracedAndBare(t *testing.T) {
	names := extractVarRefs("echo $FOO ${BAR} baz")
	require.Equal(t, []string{"FOO", "BAR"}, names)
}

func TestFallbackLineScanSkipsCommentsAndBlankLines(t *testing.T) {
	fileIR := ir.NewFileIR("deploy.sh", "bash")
	fallbackLineScan(fileIR, "# comment\n\nVAR=1\nrun-something arg\n")

	require.Len(t, fileIR.Nodes, 2)
	require.Equal(t, "assign", fileIR.Nodes[0].Kind)
	require.Equal(t, "call", fileIR.Nodes[1].Kind)
}
