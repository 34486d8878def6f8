package analyzer

import (
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"

	"github.com/auspexlab/auspex/internal/fileproc"
	"github.com/auspexlab/auspex/internal/symtab"
	"github.com/auspexlab/auspex/pkg/config"
	"github.com/auspexlab/auspex/pkg/models"
)

// fragment is one symbol body prepared for similarity comparison.
type fragment struct {
	sym      *models.Symbol
	tokens   int
	shingles map[uint64]int // n-gram hash -> occurrence count
	total    int
	bodyHash [32]byte
}

// FindDuplicates clusters near-identical function bodies. Token streams are
// normalized (identifiers become positional placeholders, literals collapse)
// and compared with multiset Jaccard over hashed n-grams; pairs at or above
// the threshold merge transitively into clusters. Bodies in different
// languages never compare.
func FindDuplicates(table *symtab.Table, cfg config.DuplicateConfig, workers int) []models.DuplicateCluster {
	var candidates []*models.Symbol
	for _, sym := range table.Symbols() {
		if sym.Body != "" && sym.Kind != models.KindClass {
			candidates = append(candidates, sym)
		}
	}
	if len(candidates) < 2 {
		return nil
	}

	fragments := fileproc.Map(candidates, workers, func(sym *models.Symbol) (*fragment, error) {
		return makeFragment(sym, cfg), nil
	})
	compact := fragments[:0]
	for _, f := range fragments {
		if f != nil {
			compact = append(compact, f)
		}
	}
	fragments = compact
	sort.Slice(fragments, func(i, j int) bool {
		return fragments[i].sym.ID < fragments[j].sym.ID
	})

	// Group by language before the pairwise scan.
	byLang := make(map[models.Language][]*fragment)
	for _, f := range fragments {
		byLang[f.sym.Language] = append(byLang[f.sym.Language], f)
	}
	langs := make([]models.Language, 0, len(byLang))
	for lang := range byLang {
		langs = append(langs, lang)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })

	var clusters []models.DuplicateCluster
	for _, lang := range langs {
		clusters = append(clusters, clusterLanguage(byLang[lang], lang, cfg.SimilarityThreshold)...)
	}
	sort.Slice(clusters, func(i, j int) bool {
		return clusters[i].Symbols[0] < clusters[j].Symbols[0]
	})
	return clusters
}

type simPair struct {
	a, b       int
	similarity float64
}

func clusterLanguage(frags []*fragment, lang models.Language, threshold float64) []models.DuplicateCluster {
	if len(frags) < 2 {
		return nil
	}

	var pairs []simPair
	for i := 0; i < len(frags); i++ {
		for j := i + 1; j < len(frags); j++ {
			var sim float64
			if frags[i].bodyHash == frags[j].bodyHash {
				sim = 1.0
			} else {
				sim = multisetJaccard(frags[i], frags[j])
			}
			if sim >= threshold {
				pairs = append(pairs, simPair{a: i, b: j, similarity: sim})
			}
		}
	}
	if len(pairs) == 0 {
		return nil
	}

	parent := make([]int, len(frags))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}
	for _, p := range pairs {
		ra, rb := find(p.a), find(p.b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	members := make(map[int][]int)
	for i := range frags {
		root := find(i)
		members[root] = append(members[root], i)
	}
	simSum := make(map[int]float64)
	simCount := make(map[int]int)
	for _, p := range pairs {
		root := find(p.a)
		simSum[root] += p.similarity
		simCount[root]++
	}

	var clusters []models.DuplicateCluster
	for root, idxs := range members {
		if len(idxs) < 2 {
			continue
		}
		ids := make([]string, 0, len(idxs))
		for _, i := range idxs {
			ids = append(ids, frags[i].sym.ID)
		}
		sort.Strings(ids)
		clusters = append(clusters, models.DuplicateCluster{
			Symbols:    ids,
			Similarity: simSum[root] / float64(simCount[root]),
			Language:   lang,
		})
	}
	return clusters
}

// makeFragment tokenizes and normalizes one body, returning nil when the
// body is too short to compare meaningfully. Bodies must exceed MinTokens;
// one of exactly MinTokens is still skipped.
func makeFragment(sym *models.Symbol, cfg config.DuplicateConfig) *fragment {
	tokens := normalizeTokens(tokenize(sym.Body))
	if len(tokens) <= cfg.MinTokens {
		return nil
	}

	f := &fragment{
		sym:      sym,
		tokens:   len(tokens),
		shingles: make(map[uint64]int),
		bodyHash: blake3.Sum256([]byte(strings.Join(tokens, " "))),
	}

	n := cfg.NgramSize
	if len(tokens) < n {
		f.shingles[hashShingle(tokens)] = 1
		f.total = 1
		return f
	}
	for i := 0; i+n <= len(tokens); i++ {
		f.shingles[hashShingle(tokens[i:i+n])]++
		f.total++
	}
	return f
}

func hashShingle(tokens []string) uint64 {
	var h xxhash.Digest
	h.Reset()
	for _, t := range tokens {
		h.WriteString(t)
		h.WriteString("\x00")
	}
	return h.Sum64()
}

// multisetJaccard computes sum(min counts) / sum(max counts) over the two
// shingle multisets. Repeated n-grams must match in multiplicity, so a body
// that repeats one statement ten times does not collapse to a single shingle.
func multisetJaccard(a, b *fragment) float64 {
	inter := 0
	for h, ca := range a.shingles {
		if cb, ok := b.shingles[h]; ok {
			inter += min(ca, cb)
		}
	}
	union := a.total + b.total - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// normalizeTokens rewrites a token stream so that renamings and literal
// changes do not break similarity: identifiers become positional
// placeholders in order of first appearance, numbers and strings collapse
// to NUM/STR, keywords and operators stay as-is.
func normalizeTokens(tokens []string) []string {
	ids := make(map[string]string)
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		switch {
		case tok == "":
		case keywords[tok] || operators[tok]:
			out = append(out, tok)
		case tok[0] == '"' || tok[0] == '\'' || tok[0] == '`':
			out = append(out, "STR")
		case tok[0] >= '0' && tok[0] <= '9':
			out = append(out, "NUM")
		default:
			id, ok := ids[tok]
			if !ok {
				id = "ID" + strconv.Itoa(len(ids))
				ids[tok] = id
			}
			out = append(out, id)
		}
	}
	return out
}

var keywords = map[string]bool{
	// go
	"func": true, "return": true, "if": true, "else": true, "for": true,
	"range": true, "switch": true, "case": true, "default": true, "break": true,
	"continue": true, "defer": true, "go": true, "select": true, "chan": true,
	"map": true, "struct": true, "interface": true, "type": true, "var": true,
	"const": true, "package": true, "import": true, "nil": true, "true": true,
	"false": true,
	// rust
	"fn": true, "let": true, "mut": true, "match": true, "loop": true,
	"while": true, "impl": true, "trait": true, "mod": true, "use": true,
	"pub": true, "crate": true, "self": true, "where": true, "async": true,
	"await": true, "static": true, "enum": true, "ref": true, "as": true,
	"in": true,
	// python
	"def": true, "class": true, "elif": true, "try": true, "except": true,
	"finally": true, "with": true, "lambda": true, "yield": true,
	"assert": true, "raise": true, "pass": true, "del": true, "global": true,
	"and": true, "or": true, "not": true, "is": true, "from": true,
	"None": true, "True": true, "False": true,
	// js/ts, java, c
	"function": true, "new": true, "this": true, "super": true,
	"extends": true, "implements": true, "export": true, "throw": true,
	"catch": true, "instanceof": true, "typeof": true, "void": true,
	"null": true, "undefined": true, "public": true, "private": true,
	"protected": true, "int": true, "long": true, "float": true,
	"double": true, "char": true, "bool": true, "boolean": true,
	"end": true, "do": true, "then": true, "require": true,
}

var operators = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true,
	"=": true, "==": true, "!=": true, "<": true, ">": true,
	"<=": true, ">=": true, "&&": true, "||": true, "!": true,
	"&": true, "|": true, "^": true, "<<": true, ">>": true,
	"+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"&=": true, "|=": true, "^=": true, "<<=": true, ">>=": true,
	"===": true, "!==": true, "??": true,
	"++": true, "--": true, "->": true, "=>": true, "::": true,
	"..": true, "...": true, "?": true, ":": true,
	"(": true, ")": true, "[": true, "]": true, "{": true, "}": true,
	",": true, ";": true, ".": true,
}

// tokenize splits a source body into string literals, numbers, identifiers,
// operators, and single-character delimiters. Line and block comments and
// whitespace are dropped.
func tokenize(content string) []string {
	var tokens []string
	runes := []rune(content)
	i := 0

	for i < len(runes) {
		c := runes[i]

		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			i++
			continue
		}

		if c == '/' && i+1 < len(runes) {
			if runes[i+1] == '/' {
				for i < len(runes) && runes[i] != '\n' {
					i++
				}
				continue
			}
			if runes[i+1] == '*' {
				i += 2
				for i+1 < len(runes) && !(runes[i] == '*' && runes[i+1] == '/') {
					i++
				}
				i += 2
				continue
			}
		}
		if c == '#' {
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
			continue
		}

		if c == '"' || c == '\'' || c == '`' {
			tokens = append(tokens, collectString(runes, &i, c))
			continue
		}

		if c >= '0' && c <= '9' {
			tokens = append(tokens, collectNumber(runes, &i))
			continue
		}

		if isIdentStart(c) {
			tokens = append(tokens, collectIdent(runes, &i))
			continue
		}

		if op := collectOperator(runes, &i); op != "" {
			tokens = append(tokens, op)
			continue
		}

		tokens = append(tokens, string(c))
		i++
	}

	return tokens
}

func collectString(runes []rune, i *int, quote rune) string {
	var sb strings.Builder
	sb.WriteRune(runes[*i])
	*i++
	for *i < len(runes) {
		c := runes[*i]
		sb.WriteRune(c)
		*i++
		if c == quote {
			break
		}
		if c == '\\' && *i < len(runes) {
			sb.WriteRune(runes[*i])
			*i++
		}
	}
	return sb.String()
}

func collectNumber(runes []rune, i *int) string {
	var sb strings.Builder
	for *i < len(runes) {
		c := runes[*i]
		if (c >= '0' && c <= '9') || c == '.' || c == '_' ||
			(c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') ||
			c == 'x' || c == 'X' || c == 'o' || c == 'O' || c == 'e' || c == 'E' {
			sb.WriteRune(c)
			*i++
		} else {
			break
		}
	}
	return sb.String()
}

func collectIdent(runes []rune, i *int) string {
	var sb strings.Builder
	for *i < len(runes) {
		c := runes[*i]
		if isIdentStart(c) || (c >= '0' && c <= '9') {
			sb.WriteRune(c)
			*i++
		} else {
			break
		}
	}
	return sb.String()
}

func collectOperator(runes []rune, i *int) string {
	if *i+2 < len(runes) {
		op3 := string(runes[*i : *i+3])
		if op3 == "<<=" || op3 == ">>=" || op3 == "..." || op3 == "===" || op3 == "!==" {
			*i += 3
			return op3
		}
	}
	if *i+1 < len(runes) {
		op2 := string(runes[*i : *i+2])
		switch op2 {
		case "==", "!=", "<=", ">=", "&&", "||", "<<", ">>",
			"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
			"++", "--", "->", "=>", "::", "..", "??":
			*i += 2
			return op2
		}
	}
	return ""
}

func isIdentStart(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}
