package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallGraphFreezeOrdersEdges(t *testing.T) {
	g := NewCallGraph()
	g.AddEdges([]CallEdge{
		{Caller: "b.go#b#1", Callee: "a.go#a#1", Line: 5},
		{Caller: "a.go#a#1", Callee: "c.go#c#1", Line: 9},
		{Caller: "a.go#a#1", Callee: "b.go#b#1", Line: 2},
		{Caller: "a.go#a#1", Callee: "a.go#a#1", Line: 2},
	})
	g.Freeze()

	want := []CallEdge{
		{Caller: "a.go#a#1", Callee: "a.go#a#1", Line: 2},
		{Caller: "a.go#a#1", Callee: "b.go#b#1", Line: 2},
		{Caller: "a.go#a#1", Callee: "c.go#c#1", Line: 9},
		{Caller: "b.go#b#1", Callee: "a.go#a#1", Line: 5},
	}
	assert.Equal(t, want, g.Edges)
}

func TestCallGraphInDegreeExcludesSelfLoops(t *testing.T) {
	g := NewCallGraph()
	g.AddEdges([]CallEdge{
		{Caller: "a.go#f#1", Callee: "a.go#f#1", Line: 3},
		{Caller: "a.go#f#1", Callee: "a.go#g#10", Line: 4},
	})
	g.Freeze()

	assert.Equal(t, 0, g.InDegree("a.go#f#1"))
	assert.Equal(t, 1, g.InDegree("a.go#g#10"))
}

func TestCallGraphShortestChain(t *testing.T) {
	g := NewCallGraph()
	g.AddEdges([]CallEdge{
		{Caller: "a", Callee: "b"},
		{Caller: "b", Callee: "c"},
		{Caller: "a", Callee: "c"},
		{Caller: "c", Callee: "d"},
	})
	g.Freeze()

	assert.Equal(t, []string{"a", "c", "d"}, g.ShortestChain("a", "d"))
	assert.Equal(t, []string{"b"}, g.ShortestChain("b", "b"))
	assert.Nil(t, g.ShortestChain("d", "a"))
}

func TestCallGraphCallees(t *testing.T) {
	g := NewCallGraph()
	g.AddEdges([]CallEdge{
		{Caller: "a", Callee: "c", Line: 2},
		{Caller: "a", Callee: "b", Line: 1},
	})
	g.Freeze()

	assert.Equal(t, []string{"b", "c"}, g.Callees("a"))
	assert.Empty(t, g.Callees("b"))
}

func TestImportGraphFreezeDedupes(t *testing.T) {
	g := NewImportGraph()
	g.AddFile("b.py")
	g.AddFile("a.py")
	g.AddEdge("a.py", "b.py")
	g.AddEdge("a.py", "b.py")
	g.AddEdge("b.py", "a.py")
	g.Freeze()

	require.Equal(t, []string{"a.py", "b.py"}, g.Files)
	assert.Equal(t, []ImportEdge{
		{From: "a.py", To: "b.py"},
		{From: "b.py", To: "a.py"},
	}, g.Edges)
	assert.True(t, g.ImportedBy("a.py", "b.py"))
	assert.False(t, g.ImportedBy("a.py", "c.py"))
	assert.Equal(t, []string{"b.py"}, g.Neighbors("a.py"))
}
