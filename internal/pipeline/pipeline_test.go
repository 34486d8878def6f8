package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auspexlab/auspex/pkg/config"
	"github.com/auspexlab/auspex/pkg/models"
)

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestRunFullAnalysis(t *testing.T) {
	root := writeProject(t, map[string]string{
		"app.py": `import models

def main():
    item = models.build_item()
    print(item)
`,
		"models.py": `import app

def build_item():
    return {"id": 1}
`,
		"orphan.py": `def _unused():
    return 42
`,
		"dup_a.py": `def load_ids(path):
    rows = read(path)
    out = []
    for row in rows:
        out.append(row.id)
    return out
`,
		"dup_b.py": `def fetch_keys(src):
    recs = read(src)
    acc = []
    for rec in recs:
        acc.append(rec.id)
    return acc
`,
	})

	result, err := Run(context.Background(), Options{Root: root, Config: config.Default()})
	require.NoError(t, err)

	assert.Equal(t, 5, result.Stats.FilesScanned)
	assert.Equal(t, 0, result.Stats.FilesFailed)
	require.Len(t, result.Files, 5)

	// app.py <-> models.py import each other.
	require.Len(t, result.Cycles, 1)
	assert.Equal(t, []string{"app.py", "models.py"}, result.Cycles[0].Files)

	// main -> build_item resolves across the import edge.
	var found bool
	for _, e := range result.CallGraph.Edges {
		if e.Caller == "app.py#app.main#3" && e.Callee == "models.py#models.build_item#3" {
			found = true
			assert.False(t, e.Ambiguous)
		}
	}
	assert.True(t, found, "missing main -> build_item edge, got %v", result.CallGraph.Edges)

	deadNames := map[string]bool{}
	for _, d := range result.DeadCode {
		deadNames[d.Name] = true
	}
	assert.True(t, deadNames["_unused"])
	assert.False(t, deadNames["main"], "entry point reported dead")
	assert.False(t, deadNames["build_item"], "called function reported dead")

	require.Len(t, result.Duplicates, 1)
	assert.ElementsMatch(t,
		[]string{"dup_a.py#dup_a.load_ids#1", "dup_b.py#dup_b.fetch_keys#1"},
		result.Duplicates[0].Symbols)

	assert.Equal(t, result.Stats.Symbols, len(result.Symbols))
	assert.Equal(t, result.Stats.CallEdges, len(result.CallGraph.Edges))
	assert.Equal(t, result.Stats.ImportEdges, len(result.ImportGraph.Edges))
}

func TestRunResolvedImportsOnFiles(t *testing.T) {
	root := writeProject(t, map[string]string{
		"a.py": "import b\nimport json\n",
		"b.py": "x = 1\n",
	})

	result, err := Run(context.Background(), Options{Root: root, Config: config.Default()})
	require.NoError(t, err)

	var a models.FileNode
	for _, f := range result.Files {
		if f.Path == "a.py" {
			a = f
		}
	}
	require.Len(t, a.Imports, 2)
	assert.True(t, a.Imports[0].Resolved)
	assert.Equal(t, "b.py", a.Imports[0].Target)
	assert.False(t, a.Imports[1].Resolved)

	assert.Equal(t, []models.ImportEdge{{From: "a.py", To: "b.py"}}, result.ImportGraph.Edges)
}

func TestRunSelfImportCycle(t *testing.T) {
	root := writeProject(t, map[string]string{
		"a.py": "import a\n\nx = 1\n",
	})

	result, err := Run(context.Background(), Options{Root: root, Config: config.Default()})
	require.NoError(t, err)

	assert.Equal(t, []models.ImportEdge{{From: "a.py", To: "a.py"}}, result.ImportGraph.Edges)
	require.Len(t, result.Cycles, 1)
	assert.Equal(t, []string{"a.py"}, result.Cycles[0].Files)
	assert.Equal(t, []string{"a.py", "a.py"}, result.Cycles[0].Walk)
}

func TestRunInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Duplicates.SimilarityThreshold = 2.0

	_, err := Run(context.Background(), Options{Root: t.TempDir(), Config: cfg})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "similarity_threshold")
}

func TestRunEmptyRoot(t *testing.T) {
	result, err := Run(context.Background(), Options{Root: t.TempDir(), Config: config.Default()})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Stats.FilesScanned)
	assert.Empty(t, result.Symbols)
	assert.Empty(t, result.Cycles)
	assert.Empty(t, result.DeadCode)
	assert.Empty(t, result.Duplicates)
}

func TestRunCanceled(t *testing.T) {
	root := writeProject(t, map[string]string{"a.py": "x = 1\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, Options{Root: root, Config: config.Default()})
	assert.ErrorIs(t, err, context.Canceled)
}
