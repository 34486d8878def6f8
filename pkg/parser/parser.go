// Package parser wraps tree-sitter for multi-language parsing. It is the
// adapter for the per-language parser collaborator: callers hand in file
// contents and receive a parse tree or a structured failure.
package parser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/auspexlab/auspex/pkg/models"
)

// Parser parses source files into tree-sitter trees. Not safe for concurrent
// use; create one per worker.
type Parser struct {
	parser *sitter.Parser
}

// ParseResult contains the parsed tree and metadata for one file.
type ParseResult struct {
	Tree     *sitter.Tree
	Language models.Language
	Source   []byte
	Path     string
}

// ParseFailure reports a file that could not be parsed. It is a non-fatal,
// per-file condition: the file contributes no symbols and analysis proceeds.
type ParseFailure struct {
	Path string
	Err  error
}

func (e *ParseFailure) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseFailure) Unwrap() error { return e.Err }

// New creates a parser instance.
func New() *Parser {
	return &Parser{parser: sitter.NewParser()}
}

// ParseFile reads and parses a source file.
func (p *Parser) ParseFile(ctx context.Context, path string) (*ParseResult, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseFailure{Path: path, Err: err}
	}

	lang := DetectLanguage(path)
	if lang == models.LangUnknown {
		return nil, &ParseFailure{Path: path, Err: fmt.Errorf("unsupported language")}
	}
	return p.Parse(ctx, source, lang, path)
}

// Parse parses source with an explicit language tag.
func (p *Parser) Parse(ctx context.Context, source []byte, lang models.Language, path string) (*ParseResult, error) {
	tsLang, err := grammarFor(lang)
	if err != nil {
		return nil, &ParseFailure{Path: path, Err: err}
	}

	p.parser.SetLanguage(tsLang)
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, &ParseFailure{Path: path, Err: err}
	}

	return &ParseResult{
		Tree:     tree,
		Language: lang,
		Source:   source,
		Path:     path,
	}, nil
}

// Close releases parser resources.
func (p *Parser) Close() {
	p.parser.Close()
}

// grammarFor returns the tree-sitter grammar for a language tag.
func grammarFor(lang models.Language) (*sitter.Language, error) {
	switch lang {
	case models.LangGo:
		return golang.GetLanguage(), nil
	case models.LangPython:
		return python.GetLanguage(), nil
	case models.LangJavaScript:
		return javascript.GetLanguage(), nil
	case models.LangTypeScript:
		return typescript.GetLanguage(), nil
	case models.LangJava:
		return java.GetLanguage(), nil
	case models.LangC:
		return c.GetLanguage(), nil
	case models.LangCPP:
		return cpp.GetLanguage(), nil
	case models.LangRust:
		return rust.GetLanguage(), nil
	case models.LangRuby:
		return ruby.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
}

// DetectLanguage determines the source language from a file path.
func DetectLanguage(path string) models.Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		return models.LangGo
	case ".py", ".pyw", ".pyi":
		return models.LangPython
	case ".js", ".mjs", ".cjs", ".jsx":
		return models.LangJavaScript
	case ".ts", ".tsx":
		return models.LangTypeScript
	case ".java":
		return models.LangJava
	case ".c", ".h":
		return models.LangC
	case ".cpp", ".cc", ".cxx", ".hpp", ".hxx":
		return models.LangCPP
	case ".rs":
		return models.LangRust
	case ".rb":
		return models.LangRuby
	default:
		return models.LangUnknown
	}
}

// Extensions returns the file extensions associated with a language tag.
func Extensions(lang models.Language) []string {
	switch lang {
	case models.LangGo:
		return []string{".go"}
	case models.LangPython:
		return []string{".py", ".pyw", ".pyi"}
	case models.LangJavaScript:
		return []string{".js", ".mjs", ".cjs", ".jsx"}
	case models.LangTypeScript:
		return []string{".ts", ".tsx"}
	case models.LangJava:
		return []string{".java"}
	case models.LangC:
		return []string{".c", ".h"}
	case models.LangCPP:
		return []string{".cpp", ".cc", ".cxx", ".hpp", ".hxx"}
	case models.LangRust:
		return []string{".rs"}
	case models.LangRuby:
		return []string{".rb"}
	default:
		return nil
	}
}

// NodeVisitor visits AST nodes. Returning false stops descent into children.
type NodeVisitor func(node *sitter.Node, source []byte) bool

// Walk traverses the tree depth-first, calling visitor for each node.
func Walk(node *sitter.Node, source []byte, visitor NodeVisitor) {
	if node == nil {
		return
	}
	if !visitor(node, source) {
		return
	}
	for i := range int(node.ChildCount()) {
		Walk(node.Child(i), source, visitor)
	}
}

// NodeText extracts the source text for a node. Returns "" for nil nodes or
// out-of-bounds offsets.
func NodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start, end := node.StartByte(), node.EndByte()
	if start > end || end > uint32(len(source)) {
		return ""
	}
	return string(source[start:end])
}
