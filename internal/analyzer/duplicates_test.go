package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auspexlab/auspex/internal/symtab"
	"github.com/auspexlab/auspex/pkg/config"
	"github.com/auspexlab/auspex/pkg/models"
)

func dupCfg() config.DuplicateConfig {
	return config.DuplicateConfig{
		SimilarityThreshold: 0.8,
		MinTokens:           5,
		NgramSize:           3,
	}
}

func bodied(file, name string, line uint32, lang models.Language, body string) *models.Symbol {
	return &models.Symbol{
		ID:            models.SymbolID(file, name, line),
		Name:          name,
		QualifiedName: name,
		Kind:          models.KindFunction,
		Language:      lang,
		File:          file,
		StartLine:     line,
		EndLine:       line + 5,
		Body:          body,
	}
}

func dupTable(t *testing.T, syms ...*models.Symbol) *symtab.Table {
	t.Helper()
	tab := symtab.New()
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
	return tab
}

func TestFindDuplicatesRenamedBodies(t *testing.T) {
	// Same structure, different identifiers and literals: positional
	// normalization makes the token streams identical.
	tab := dupTable(t,
		bodied("a.py", "add_points", 1, models.LangPython,
			"total = x + y\nif total > 10:\n    return total\nreturn 0"),
		bodied("b.py", "sum_coords", 1, models.LangPython,
			"acc = a + b\nif acc > 99:\n    return acc\nreturn 0"),
	)

	clusters := FindDuplicates(tab, dupCfg(), 1)
	require.Len(t, clusters, 1)
	assert.Equal(t, []string{"a.py#add_points#1", "b.py#sum_coords#1"}, clusters[0].Symbols)
	assert.Equal(t, 1.0, clusters[0].Similarity)
	assert.Equal(t, models.LangPython, clusters[0].Language)
}

func TestFindDuplicatesDissimilarBodies(t *testing.T) {
	tab := dupTable(t,
		bodied("a.py", "parse", 1, models.LangPython,
			"for line in lines:\n    out.append(line.strip())\nreturn out"),
		bodied("b.py", "render", 1, models.LangPython,
			"with open(path) as f:\n    data = json.load(f)\nreturn data['key']"),
	)

	assert.Empty(t, FindDuplicates(tab, dupCfg(), 1))
}

func TestFindDuplicatesMinTokensGate(t *testing.T) {
	tab := dupTable(t,
		bodied("a.py", "tiny_a", 1, models.LangPython, "return 1"),
		bodied("b.py", "tiny_b", 1, models.LangPython, "return 2"),
	)

	assert.Empty(t, FindDuplicates(tab, dupCfg(), 1))
}

func TestFindDuplicatesMinTokensBoundary(t *testing.T) {
	// Exactly MinTokens does not qualify; one more token does.
	atLimit := "x = y + 1" // 5 tokens, MinTokens 5
	over := "return x + y + 1"
	tab := dupTable(t,
		bodied("a.py", "at_a", 1, models.LangPython, atLimit),
		bodied("b.py", "at_b", 1, models.LangPython, atLimit),
		bodied("c.py", "over_a", 1, models.LangPython, over),
		bodied("d.py", "over_b", 1, models.LangPython, over),
	)

	clusters := FindDuplicates(tab, dupCfg(), 1)
	require.Len(t, clusters, 1)
	assert.Equal(t, []string{"c.py#over_a#1", "d.py#over_b#1"}, clusters[0].Symbols)
}

func TestFindDuplicatesLanguagesNeverMix(t *testing.T) {
	body := "total = x + y\nif total > 10:\n    return total\nreturn 0"
	tab := dupTable(t,
		bodied("a.py", "f", 1, models.LangPython, body),
		bodied("b.rb", "g", 1, models.LangRuby, body),
	)

	assert.Empty(t, FindDuplicates(tab, dupCfg(), 1))
}

func TestFindDuplicatesTransitiveCluster(t *testing.T) {
	body := func(v1, v2 string) string {
		return v1 + " = load(path)\nfor item in " + v1 + ":\n    " + v2 + ".append(item.id)\nreturn " + v2
	}
	tab := dupTable(t,
		bodied("a.py", "one", 1, models.LangPython, body("rows", "ids")),
		bodied("b.py", "two", 1, models.LangPython, body("recs", "keys")),
		bodied("c.py", "three", 1, models.LangPython, body("data", "out")),
	)

	clusters := FindDuplicates(tab, dupCfg(), 1)
	require.Len(t, clusters, 1)
	assert.Len(t, clusters[0].Symbols, 3)
	assert.Equal(t, 1.0, clusters[0].Similarity)
}

func TestFindDuplicatesSkipsClasses(t *testing.T) {
	body := "total = x + y\nif total > 10:\n    return total\nreturn 0"
	cls := bodied("a.py", "Widget", 1, models.LangPython, body)
	cls.Kind = models.KindClass
	tab := dupTable(t, cls, bodied("b.py", "calc", 1, models.LangPython, body))

	assert.Empty(t, FindDuplicates(tab, dupCfg(), 1))
}

func TestNormalizeTokens(t *testing.T) {
	got := normalizeTokens(tokenize(`count = count + 1
name = "hello"
return offset`))
	want := []string{
		"ID0", "=", "ID0", "+", "NUM",
		"ID1", "=", "STR",
		"return", "ID2",
	}
	assert.Equal(t, want, got)
}

func TestNormalizeTokensKeepsStrictOperators(t *testing.T) {
	// Every operator the tokenizer can emit must survive normalization
	// literally instead of being renamed like an identifier.
	got := normalizeTokens(tokenize("a === b ?? c; mask &= bits; mask <<= 2"))
	want := []string{
		"ID0", "===", "ID1", "??", "ID2", ";",
		"ID3", "&=", "ID4", ";",
		"ID3", "<<=", "NUM",
	}
	assert.Equal(t, want, got)
}

func TestTokenizeDropsComments(t *testing.T) {
	tokens := tokenize("x = 1 // trailing\n/* block */ y = 2\n# hash\nz = 3")
	assert.Equal(t, []string{"x", "=", "1", "y", "=", "2", "z", "=", "3"}, tokens)
}

func TestMultisetJaccardCountsMultiplicity(t *testing.T) {
	a := &fragment{shingles: map[uint64]int{1: 3, 2: 1}, total: 4}
	b := &fragment{shingles: map[uint64]int{1: 1, 3: 1}, total: 2}
	// intersection min(3,1)=1, union 4+2-1=5
	assert.InDelta(t, 0.2, multisetJaccard(a, b), 1e-9)
}
