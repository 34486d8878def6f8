package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auspexlab/auspex/internal/symtab"
	"github.com/auspexlab/auspex/pkg/config"
	"github.com/auspexlab/auspex/pkg/models"
)

func deadCfg() config.DeadCodeConfig {
	return config.DeadCodeConfig{
		EntryPoints:  []string{"main"},
		TestPatterns: []string{"test_*", "Test*"},
	}
}

func registerAll(t *testing.T, tab *symtab.Table, syms ...*models.Symbol) {
	t.Helper()
	byFile := map[string][]*models.Symbol{}
	for _, s := range syms {
		byFile[s.File] = append(byFile[s.File], s)
	}
	for path, ss := range byFile {
		require.NoError(t, tab.Register(
			models.FileNode{Path: path, Language: ss[0].Language}, ss,
		))
	}
	tab.Freeze()
}

func callable(file, name string, line uint32) *models.Symbol {
	return &models.Symbol{
		ID:            models.SymbolID(file, name, line),
		Name:          name,
		QualifiedName: name,
		Kind:          models.KindFunction,
		Language:      models.LangPython,
		File:          file,
		StartLine:     line,
		EndLine:       line + 3,
	}
}

func frozenGraph(edges ...models.CallEdge) *models.CallGraph {
	g := models.NewCallGraph()
	g.AddEdges(edges)
	g.Freeze()
	return g
}

func deadNames(dead []models.DeadSymbol) []string {
	names := make([]string, len(dead))
	for i, d := range dead {
		names[i] = d.Name
	}
	return names
}

func TestFindDeadCodeUncalled(t *testing.T) {
	tab := symtab.New()
	f := callable("a.py", "f", 1)
	g := callable("a.py", "g", 10)
	unused := callable("a.py", "unused", 20)
	registerAll(t, tab, f, g, unused)

	graph := frozenGraph(models.CallEdge{Caller: f.ID, Callee: g.ID, Line: 2})

	dead, err := FindDeadCode(tab, graph, deadCfg())
	require.NoError(t, err)
	assert.Equal(t, []string{"f", "unused"}, deadNames(dead))
}

func TestFindDeadCodeEntryPoints(t *testing.T) {
	tab := symtab.New()
	main := callable("app.py", "main", 1)
	helper := callable("app.py", "helper", 10)
	registerAll(t, tab, main, helper)

	graph := frozenGraph(models.CallEdge{Caller: main.ID, Callee: helper.ID, Line: 2})

	dead, err := FindDeadCode(tab, graph, deadCfg())
	require.NoError(t, err)
	assert.Empty(t, dead)
}

func TestFindDeadCodeTestPatterns(t *testing.T) {
	tab := symtab.New()
	registerAll(t, tab,
		callable("t.py", "test_reconnect", 1),
		callable("t.py", "reconnect", 10),
	)

	dead, err := FindDeadCode(tab, frozenGraph(), deadCfg())
	require.NoError(t, err)
	assert.Equal(t, []string{"reconnect"}, deadNames(dead))
}

func TestFindDeadCodeSelfRecursionIsDead(t *testing.T) {
	tab := symtab.New()
	loop := callable("a.py", "spin", 1)
	registerAll(t, tab, loop)

	graph := frozenGraph(models.CallEdge{Caller: loop.ID, Callee: loop.ID, Line: 2})

	dead, err := FindDeadCode(tab, graph, deadCfg())
	require.NoError(t, err)
	assert.Equal(t, []string{"spin"}, deadNames(dead))
}

func TestFindDeadCodeClassesNeverReported(t *testing.T) {
	tab := symtab.New()
	cls := &models.Symbol{
		ID: "a.py#Widget#1", Name: "Widget", QualifiedName: "a.Widget",
		Kind: models.KindClass, Language: models.LangPython,
		File: "a.py", StartLine: 1, EndLine: 20,
	}
	registerAll(t, tab, cls)

	dead, err := FindDeadCode(tab, frozenGraph(), deadCfg())
	require.NoError(t, err)
	assert.Empty(t, dead)
}

func TestFindDeadCodeExportedLiveByDefault(t *testing.T) {
	// Under the stock configuration an exported symbol with no visible
	// caller stays live: external callers are assumed.
	tab := symtab.New()
	pub := callable("lib.py", "publish", 1)
	pub.Exported = true
	priv := callable("lib.py", "_internal", 10)
	registerAll(t, tab, pub, priv)

	dead, err := FindDeadCode(tab, frozenGraph(), config.Default().DeadCode)
	require.NoError(t, err)
	assert.Equal(t, []string{"_internal"}, deadNames(dead))
}

func TestFindDeadCodeExportedOptOut(t *testing.T) {
	tab := symtab.New()
	pub := callable("a.py", "publish", 1)
	pub.Exported = true
	registerAll(t, tab, pub)

	cfg := deadCfg()
	cfg.ExportedIsEntry = false
	dead, err := FindDeadCode(tab, frozenGraph(), cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"publish"}, deadNames(dead))
}

func TestFindDeadCodeConstructorWithSubclass(t *testing.T) {
	tab := symtab.New()
	base := &models.Symbol{
		ID: "base.py#Animal#1", Name: "Animal", QualifiedName: "base.Animal",
		Kind: models.KindClass, Language: models.LangPython,
		File: "base.py", StartLine: 1, EndLine: 10,
	}
	ctor := &models.Symbol{
		ID: "base.py#__init__#2", Name: "__init__", QualifiedName: "base.Animal.__init__",
		Kind: models.KindConstructor, Language: models.LangPython,
		File: "base.py", StartLine: 2, EndLine: 4, Class: "Animal",
	}
	child := &models.Symbol{
		ID: "dog.py#Dog#1", Name: "Dog", QualifiedName: "dog.Dog",
		Kind: models.KindClass, Language: models.LangPython,
		File: "dog.py", StartLine: 1, EndLine: 10, Bases: []string{"Animal"},
	}
	registerAll(t, tab, base, ctor, child)

	cfg := deadCfg()
	cfg.EntryPoints = nil
	dead, err := FindDeadCode(tab, frozenGraph(), cfg)
	require.NoError(t, err)
	assert.Empty(t, deadNames(dead))
}

func TestFindDeadCodeBadPattern(t *testing.T) {
	tab := symtab.New()
	registerAll(t, tab, callable("a.py", "f", 1))

	cfg := deadCfg()
	cfg.TestPatterns = []string{"[unclosed"}
	_, err := FindDeadCode(tab, frozenGraph(), cfg)
	assert.Error(t, err)
}
