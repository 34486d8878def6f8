package callgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auspexlab/auspex/internal/symtab"
	"github.com/auspexlab/auspex/pkg/config"
	"github.com/auspexlab/auspex/pkg/models"
)

func fn(file, name string, line uint32, refs ...models.CallRef) *models.Symbol {
	return &models.Symbol{
		ID:            models.SymbolID(file, name, line),
		Name:          name,
		QualifiedName: file + "." + name,
		Kind:          models.KindFunction,
		Language:      models.LangPython,
		File:          file,
		StartLine:     line,
		EndLine:       line + 5,
		CallRefs:      refs,
	}
}

func buildTable(t *testing.T, byFile map[string][]*models.Symbol) *symtab.Table {
	t.Helper()
	tab := symtab.New()
	for path, syms := range byFile {
		require.NoError(t, tab.Register(
			models.FileNode{Path: path, Language: models.LangPython}, syms,
		))
	}
	tab.Freeze()
	return tab
}

func importGraph(files []string, edges ...models.ImportEdge) *models.ImportGraph {
	g := models.NewImportGraph()
	for _, f := range files {
		g.AddFile(f)
	}
	for _, e := range edges {
		g.AddEdge(e.From, e.To)
	}
	g.Freeze()
	return g
}

func TestBuildSameFileWins(t *testing.T) {
	tab := buildTable(t, map[string][]*models.Symbol{
		"a.py": {
			fn("a.py", "target", 1),
			fn("a.py", "caller", 10, models.CallRef{Name: "target", Line: 12}),
		},
		"b.py": {fn("b.py", "target", 1)},
	})
	g := importGraph([]string{"a.py", "b.py"}, models.ImportEdge{From: "a.py", To: "b.py"})

	graph, diags := New(tab, g, config.CallConfig{AmbiguousEdges: config.AmbiguousAll}, 1).Build()
	assert.Empty(t, diags)
	require.Len(t, graph.Edges, 1)
	assert.Equal(t, "a.py#target#1", graph.Edges[0].Callee)
	assert.False(t, graph.Edges[0].Ambiguous)
}

func TestBuildImportedBeatsGlobal(t *testing.T) {
	tab := buildTable(t, map[string][]*models.Symbol{
		"a.py": {fn("a.py", "caller", 1, models.CallRef{Name: "target", Line: 2})},
		"b.py": {fn("b.py", "target", 1)},
		"c.py": {fn("c.py", "target", 1)},
	})
	g := importGraph([]string{"a.py", "b.py", "c.py"}, models.ImportEdge{From: "a.py", To: "b.py"})

	graph, diags := New(tab, g, config.CallConfig{AmbiguousEdges: config.AmbiguousAll}, 1).Build()
	assert.Empty(t, diags)
	require.Len(t, graph.Edges, 1)
	assert.Equal(t, "b.py#target#1", graph.Edges[0].Callee)
	assert.False(t, graph.Edges[0].Ambiguous)
}

func TestBuildGlobalFallback(t *testing.T) {
	tab := buildTable(t, map[string][]*models.Symbol{
		"a.py": {fn("a.py", "caller", 1, models.CallRef{Name: "target", Line: 2})},
		"c.py": {fn("c.py", "target", 1)},
	})
	g := importGraph([]string{"a.py", "c.py"})

	graph, _ := New(tab, g, config.CallConfig{AmbiguousEdges: config.AmbiguousAll}, 1).Build()
	require.Len(t, graph.Edges, 1)
	assert.Equal(t, "c.py#target#1", graph.Edges[0].Callee)
}

func TestBuildAmbiguousAll(t *testing.T) {
	tab := buildTable(t, map[string][]*models.Symbol{
		"a.py": {fn("a.py", "caller", 1, models.CallRef{Name: "target", Line: 2})},
		"b.py": {fn("b.py", "target", 1)},
		"c.py": {fn("c.py", "target", 1)},
	})
	g := importGraph([]string{"a.py", "b.py", "c.py"})

	graph, diags := New(tab, g, config.CallConfig{AmbiguousEdges: config.AmbiguousAll}, 1).Build()
	assert.Empty(t, diags)
	require.Len(t, graph.Edges, 2)
	assert.Equal(t, "b.py#target#1", graph.Edges[0].Callee)
	assert.Equal(t, "c.py#target#1", graph.Edges[1].Callee)
	assert.True(t, graph.Edges[0].Ambiguous)
	assert.True(t, graph.Edges[1].Ambiguous)
}

func TestBuildAmbiguousFirst(t *testing.T) {
	tab := buildTable(t, map[string][]*models.Symbol{
		"a.py": {fn("a.py", "caller", 1, models.CallRef{Name: "target", Line: 2})},
		"b.py": {fn("b.py", "target", 1)},
		"c.py": {fn("c.py", "target", 1)},
	})
	g := importGraph([]string{"a.py", "b.py", "c.py"})

	graph, _ := New(tab, g, config.CallConfig{AmbiguousEdges: config.AmbiguousFirst}, 1).Build()
	require.Len(t, graph.Edges, 1)
	assert.Equal(t, "b.py#target#1", graph.Edges[0].Callee)
	assert.True(t, graph.Edges[0].Ambiguous)
}

func TestBuildUnresolvedDiagnostic(t *testing.T) {
	tab := buildTable(t, map[string][]*models.Symbol{
		"a.py": {fn("a.py", "caller", 1, models.CallRef{Name: "vanished", Line: 4})},
	})
	g := importGraph([]string{"a.py"})

	graph, diags := New(tab, g, config.CallConfig{AmbiguousEdges: config.AmbiguousAll}, 1).Build()
	assert.Empty(t, graph.Edges)
	require.Len(t, diags, 1)
	assert.Equal(t, models.DiagUnresolvedCall, diags[0].Kind)
	assert.Equal(t, "a.py#caller#1", diags[0].SymbolID)
	assert.Equal(t, uint32(4), diags[0].Line)
	assert.Contains(t, diags[0].Message, "vanished")
}

func TestBuildSelfRecursionEdge(t *testing.T) {
	tab := buildTable(t, map[string][]*models.Symbol{
		"a.py": {fn("a.py", "loop_forever", 1, models.CallRef{Name: "loop_forever", Line: 3})},
	})
	g := importGraph([]string{"a.py"})

	graph, _ := New(tab, g, config.CallConfig{AmbiguousEdges: config.AmbiguousAll}, 1).Build()
	require.Len(t, graph.Edges, 1)
	assert.Equal(t, graph.Edges[0].Caller, graph.Edges[0].Callee)
	assert.Equal(t, 0, graph.InDegree(graph.Edges[0].Callee))
}

func TestBuildDeterministicAcrossWorkers(t *testing.T) {
	byFile := map[string][]*models.Symbol{}
	files := []string{"a.py", "b.py", "c.py", "d.py"}
	for _, f := range files {
		byFile[f] = []*models.Symbol{
			fn(f, "shared", 1),
			fn(f, "use_"+f[:1], 10, models.CallRef{Name: "shared", Line: 11}),
		}
	}

	run := func(workers int) []models.CallEdge {
		tab := buildTable(t, byFile)
		g := importGraph(files)
		graph, _ := New(tab, g, config.CallConfig{AmbiguousEdges: config.AmbiguousAll}, workers).Build()
		return graph.Edges
	}

	assert.Equal(t, run(1), run(8))
}
