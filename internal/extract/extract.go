// Package extract turns per-file parse trees into language-agnostic symbol
// records. One adapter exists per supported language; everything downstream
// of this package operates only on the models types, never on parse trees.
package extract

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/auspexlab/auspex/pkg/models"
	"github.com/auspexlab/auspex/pkg/parser"
)

// FileExtraction is the result of extracting one file: its file node (with
// raw, unresolved import specifiers) and its symbols in source order.
type FileExtraction struct {
	File    models.FileNode
	Symbols []*models.Symbol
}

// Extractor converts one file's parse tree into symbol records.
type Extractor interface {
	Extract(result *parser.ParseResult) (*FileExtraction, error)
}

// ForLanguage returns the extractor variant for a language tag, or nil when
// the language is unsupported.
func ForLanguage(lang models.Language) Extractor {
	switch lang {
	case models.LangGo:
		return goExtractor{}
	case models.LangPython:
		return pythonExtractor{}
	case models.LangJavaScript, models.LangTypeScript:
		return scriptExtractor{}
	case models.LangJava:
		return javaExtractor{}
	case models.LangC, models.LangCPP:
		return cExtractor{}
	case models.LangRust, models.LangRuby:
		return genericExtractor{}
	default:
		return nil
	}
}

// moduleName derives the dotted module name for a file path: the path with
// its extension stripped and separators replaced by dots, matching the
// qualified-name convention module.class.method / module.function.
func moduleName(path string) string {
	p := strings.TrimSuffix(path, filepath.Ext(path))
	p = strings.TrimSuffix(p, "/__init__") // python package files name the package
	return strings.ReplaceAll(filepath.ToSlash(p), "/", ".")
}

// qualify builds a qualified name from module, optional class, and name.
func qualify(module, class, name string) string {
	if class != "" {
		return module + "." + class + "." + name
	}
	return module + "." + name
}

// finish assigns ids, validates, and sorts symbols by start line so the
// extraction output is deterministic regardless of tree walk order.
func finish(fx *FileExtraction) (*FileExtraction, error) {
	sort.Slice(fx.Symbols, func(i, j int) bool {
		if fx.Symbols[i].StartLine != fx.Symbols[j].StartLine {
			return fx.Symbols[i].StartLine < fx.Symbols[j].StartLine
		}
		return fx.Symbols[i].QualifiedName < fx.Symbols[j].QualifiedName
	})
	for _, sym := range fx.Symbols {
		sym.ID = models.SymbolID(sym.File, sym.QualifiedName, sym.StartLine)
		if err := sym.Validate(); err != nil {
			return nil, err
		}
	}
	return fx, nil
}

// trimQuotes strips a single layer of surrounding quote characters.
func trimQuotes(s string) string {
	if len(s) >= 2 {
		switch s[0] {
		case '"', '\'', '`', '<':
			return s[1 : len(s)-1]
		}
	}
	return s
}

// lastSegment reduces a dotted or arrow-qualified callee expression to its
// final identifier: obj.method -> method, ptr->fn -> fn.
func lastSegment(name string) string {
	if i := strings.LastIndex(name, "->"); i >= 0 {
		name = name[i+2:]
	}
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "::"); i >= 0 {
		name = name[i+2:]
	}
	return name
}
