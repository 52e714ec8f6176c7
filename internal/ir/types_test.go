package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileIRLineReturnsOneBasedLine(t *testing.T) {
	f := NewFileIR("app.py", "python")
	f.Source = "first\nsecond\nthird"

	require.Equal(t, "first", f.Line(1))
	require.Equal(t, "second", f.Line(2))
	require.Equal(t, "third", f.Line(3))
	require.Equal(t, "", f.Line(0))
	require.Equal(t, "", f.Line(4))
}

func TestOffsetToLocationTracksLineAndColumn(t *testing.T) {
	source := "abc\ndef\nghi"
	line, col := OffsetToLocation(source, 0)
	require.Equal(t, 1, line)
	require.Equal(t, 1, col)

	line, col = OffsetToLocation(source, 5) // 'e' in "def"
	require.Equal(t, 2, line)
	require.Equal(t, 2, col)

	line, col = OffsetToLocation(source, len(source))
	require.Equal(t, 3, line)
	require.Equal(t, 4, col)
}

func TestOffsetToLocationCountsRunesNotBytes(t *testing.T) {
	source := "héllo\nworld"
	// offset just past "héllo\n" (h=1,é=2 bytes,l,l,o,\n = 1+2+1+1+1+1 = 7 bytes)
	line, col := OffsetToLocation(source, 7)
	require.Equal(t, 2, line)
	require.Equal(t, 1, col)
}

func TestASTWalkStopsAtNodeCeiling(t *testing.T) {
	ast := &AST{Index: []ASTNode{
		{Kind: "Root", Parent: -1, Children: []int{1, 2}},
		{Kind: "A", Parent: 0},
		{Kind: "B", Parent: 0},
	}}

	visited := 0
	ast.Walk(0, 2, func(idx int, n *ASTNode) bool {
		visited++
		return true
	})
	require.Equal(t, 2, visited, "walk must stop once the ceiling is reached")
}

func TestASTWalkVisitsDepthFirst(t *testing.T) {
	ast := &AST{Index: []ASTNode{
		{Kind: "Root", Parent: -1, Children: []int{1, 2}},
		{Kind: "A", Parent: 0},
		{Kind: "B", Parent: 0},
	}}

	var order []string
	ast.Walk(0, 0, func(idx int, n *ASTNode) bool {
		order = append(order, n.Kind)
		return true
	})
	require.Equal(t, []string{"Root", "A", "B"}, order)
}
