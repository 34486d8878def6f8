package models

import (
	"fmt"
	"strconv"
)

// SymbolKind classifies a symbol definition.
type SymbolKind string

const (
	KindFunction    SymbolKind = "function"
	KindMethod      SymbolKind = "method"
	KindClass       SymbolKind = "class"
	KindConstructor SymbolKind = "constructor"
)

// Language tags the source language a symbol or file was extracted from.
type Language string

const (
	LangGo         Language = "go"
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangJava       Language = "java"
	LangC          Language = "c"
	LangCPP        Language = "cpp"
	LangRust       Language = "rust"
	LangRuby       Language = "ruby"
	LangUnknown    Language = "unknown"
)

// Param describes one parameter in a symbol signature.
type Param struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// Signature is the ordered parameter list plus an optional return type hint.
type Signature struct {
	Params []Param `json:"params,omitempty"`
	Return string  `json:"return,omitempty"`
}

// CallRef is one raw callee-name reference observed in a symbol body.
type CallRef struct {
	Name string `json:"name"`
	Line uint32 `json:"line"`
}

// Symbol is one function, method, class, or constructor definition.
// Symbols are created once during extraction and are immutable afterward;
// the symbol table owns them for the lifetime of a run.
type Symbol struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	QualifiedName string     `json:"qualified_name"`
	Kind          SymbolKind `json:"kind"`
	Language      Language   `json:"language"`
	File          string     `json:"file"`
	StartLine     uint32     `json:"start_line"`
	EndLine       uint32     `json:"end_line"`
	Signature     Signature  `json:"signature"`

	// Body is the raw body text. Normalized token sequences are derived
	// lazily by duplicate detection and never stored here.
	Body string `json:"-"`

	CallRefs []CallRef `json:"call_refs,omitempty"`

	// Exported reports whether the language marks this symbol as part of
	// the public API surface (capitalized in Go, not underscore-prefixed
	// and module-level in Python, export-declared in JS/TS).
	Exported bool `json:"exported,omitempty"`

	// Class is the enclosing class name for methods and constructors.
	Class string `json:"class,omitempty"`

	// Bases lists parent class names for class symbols.
	Bases []string `json:"bases,omitempty"`
}

// SymbolID builds the stable run-unique identifier for a symbol.
func SymbolID(file, qualifiedName string, startLine uint32) string {
	return file + "#" + qualifiedName + "#" + strconv.FormatUint(uint64(startLine), 10)
}

// Validate checks the extractor-supplied invariants. A failure here means an
// upstream extractor bug, not a user error.
func (s *Symbol) Validate() error {
	if s.ID == "" {
		return &InvariantError{File: s.File, Invariant: "symbol id must be non-empty"}
	}
	if s.File == "" {
		return &InvariantError{SymbolID: s.ID, Invariant: "symbol file must be non-empty"}
	}
	if s.StartLine > s.EndLine {
		return &InvariantError{
			File:      s.File,
			SymbolID:  s.ID,
			Invariant: fmt.Sprintf("start_line %d > end_line %d", s.StartLine, s.EndLine),
		}
	}
	return nil
}

// Import is one import/include statement observed in a file. Resolved imports
// name another file in the project; unresolved imports are external packages
// and never become edges.
type Import struct {
	Spec     string `json:"spec"`
	Line     uint32 `json:"line"`
	Resolved bool   `json:"resolved"`
	Target   string `json:"target,omitempty"`
}

// FileNode is one analyzed source file. Exactly one exists per input path.
type FileNode struct {
	Path     string   `json:"path"`
	Language Language `json:"language"`
	Imports  []Import `json:"imports,omitempty"`
}

// InvariantError reports a programming/invariant violation detected during a
// run: duplicate symbol ids, malformed symbol records. These abort the run
// loudly rather than being absorbed, since the graph passes assume well-formed
// input.
type InvariantError struct {
	File      string
	SymbolID  string
	Invariant string
}

func (e *InvariantError) Error() string {
	msg := "invariant violation: " + e.Invariant
	if e.SymbolID != "" {
		msg += " (symbol " + e.SymbolID + ")"
	}
	if e.File != "" {
		msg += " in " + e.File
	}
	return msg
}
