package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auspexlab/auspex/pkg/config"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestScanFiltersAndSorts(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.py":                 "print('hi')\n",
		"pkg/util.go":             "package pkg\n",
		"web/app.ts":              "export {}\n",
		"README.md":               "docs\n",
		"notes.txt":               "n/a\n",
		"node_modules/dep/x.js":   "ignored\n",
		"__pycache__/main.pyc":    "ignored\n",
		".hidden.py":              "ignored\n",
		"vendor/lib/y.go":         "ignored\n",
		"sub/.git/objects/abc.py": "ignored\n",
	})

	sc, err := New(config.Default())
	require.NoError(t, err)
	files, err := sc.Scan(root)
	require.NoError(t, err)

	assert.Equal(t, []string{"main.py", "pkg/util.go", "web/app.ts"}, files)
}

func TestScanLanguageSubset(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.py": "pass\n",
		"b.go": "package b\n",
		"c.rb": "puts 1\n",
	})

	cfg := config.Default()
	cfg.Languages = []string{"python", "ruby"}
	sc, err := New(cfg)
	require.NoError(t, err)

	files, err := sc.Scan(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.py", "c.rb"}, files)
}

func TestScanExcludePatterns(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"app.js":        "ok\n",
		"bundle.min.js": "minified\n",
		"gen/schema.py": "generated\n",
	})

	cfg := config.Default()
	cfg.Exclude.Patterns = append(cfg.Exclude.Patterns, "gen/**")
	sc, err := New(cfg)
	require.NoError(t, err)

	files, err := sc.Scan(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"app.js"}, files)
}

func TestScanGitignore(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":   "generated/\nscratch.py\n",
		"keep.py":      "pass\n",
		"scratch.py":   "pass\n",
		"generated/g.py": "pass\n",
	})

	sc, err := New(config.Default())
	require.NoError(t, err)
	files, err := sc.Scan(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep.py"}, files)

	cfg := config.Default()
	cfg.Exclude.Gitignore = false
	sc, err = New(cfg)
	require.NoError(t, err)
	files, err = sc.Scan(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"generated/g.py", "keep.py", "scratch.py"}, files)
}

func TestScanRejectsBadPattern(t *testing.T) {
	cfg := config.Default()
	cfg.Exclude.Patterns = []string{"[bad"}
	_, err := New(cfg)
	assert.Error(t, err)
}
