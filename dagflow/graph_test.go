package dagflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNode(id string) *Node {
	return NewNode(id, func(any, map[string]any, *RunState) (any, error) { return nil, nil })
}

func TestGraph_AddEdgeRejectsCycle(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.AddNode(mustNode("a")))
	require.NoError(t, g.AddNode(mustNode("b")))
	require.NoError(t, g.AddEdge("a", "b"))

	err := g.AddEdge("b", "a")
	var cycleErr *CycleError
	assert.ErrorAs(t, err, &cycleErr)
}

func TestGraph_AddEdgeRejectsSelfLoop(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.AddNode(mustNode("a")))
	var cycleErr *CycleError
	assert.ErrorAs(t, g.AddEdge("a", "a"), &cycleErr)
}

func TestGraph_ParallelConditionalEdgesAreBothRecorded(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.AddNode(mustNode("u")))
	require.NoError(t, g.AddNode(mustNode("v")))
	require.NoError(t, g.AddConditionalEdge("u", Emptyset{}, "v"))
	require.NoError(t, g.AddConditionalEdge("u", NonEmptyset{}, "v"))

	edges := g.EdgesFrom("u")
	assert.Len(t, edges, 2)
	assert.Equal(t, []string{"v"}, g.Successors("u")) // structural successor set stays deduped
	assert.Equal(t, []string{"u"}, g.Predecessors("v"))
}

func TestGraph_SourcesAndTerminals(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.AddNode(mustNode("a")))
	require.NoError(t, g.AddNode(mustNode("b")))
	require.NoError(t, g.AddNode(mustNode("c")))
	require.NoError(t, g.AddEdge("a", "b"))
	require.NoError(t, g.AddEdge("b", "c"))

	assert.Equal(t, []string{"a"}, g.Sources())
	assert.Equal(t, []string{"c"}, g.Terminals())
}

func TestGraph_AddNodeRejectsDuplicate(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.AddNode(mustNode("a")))
	var syntaxErr *GraphSyntaxError
	assert.ErrorAs(t, g.AddNode(mustNode("a")), &syntaxErr)
}
