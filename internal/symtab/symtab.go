// Package symtab holds the process-wide symbol index. Registration happens
// concurrently during extraction, one lock acquisition per file; after Freeze
// the table is immutable and all lookups are lock-free.
package symtab

import (
	"sort"
	"sync"

	"github.com/auspexlab/auspex/pkg/models"
)

// Table indexes every extracted symbol by id, qualified name, bare name, and
// file. It also keeps the file set for the import graph and a subclass index
// used by the constructor liveness rule.
type Table struct {
	mu     sync.Mutex
	frozen bool

	byID        map[string]*models.Symbol
	byQualified map[string]*models.Symbol
	byName      map[string][]*models.Symbol
	byFile      map[string][]*models.Symbol

	files      map[string]models.FileNode
	subclassed map[subclassKey]bool
}

type subclassKey struct {
	lang models.Language
	name string
}

func New() *Table {
	return &Table{
		byID:        make(map[string]*models.Symbol),
		byQualified: make(map[string]*models.Symbol),
		byName:      make(map[string][]*models.Symbol),
		byFile:      make(map[string][]*models.Symbol),
		files:       make(map[string]models.FileNode),
		subclassed:  make(map[subclassKey]bool),
	}
}

// Register adds one file's extraction output. Safe for concurrent use before
// Freeze; a duplicate symbol id is an invariant violation, not a user error,
// and aborts the run.
func (t *Table) Register(file models.FileNode, symbols []*models.Symbol) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.frozen {
		return &models.InvariantError{File: file.Path, Invariant: "register after freeze"}
	}

	for _, sym := range symbols {
		if _, exists := t.byID[sym.ID]; exists {
			return &models.InvariantError{
				File:      sym.File,
				SymbolID:  sym.ID,
				Invariant: "duplicate symbol id",
			}
		}
		t.byID[sym.ID] = sym
		t.byQualified[sym.QualifiedName] = sym
		t.byName[sym.Name] = append(t.byName[sym.Name], sym)
		t.byFile[sym.File] = append(t.byFile[sym.File], sym)
		if sym.Kind == models.KindClass {
			for _, base := range sym.Bases {
				t.subclassed[subclassKey{sym.Language, base}] = true
			}
		}
	}
	t.files[file.Path] = file
	return nil
}

// Freeze sorts every lookup slice into deterministic (file, start_line)
// order and makes the table read-only.
func (t *Table) Freeze() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, syms := range t.byName {
		sortSymbols(syms)
	}
	for _, syms := range t.byFile {
		sortSymbols(syms)
	}
	t.frozen = true
}

func sortSymbols(syms []*models.Symbol) {
	sort.Slice(syms, func(i, j int) bool {
		if syms[i].File != syms[j].File {
			return syms[i].File < syms[j].File
		}
		return syms[i].StartLine < syms[j].StartLine
	})
}

// LookupByID returns the symbol with the given id.
func (t *Table) LookupByID(id string) (*models.Symbol, bool) {
	s, ok := t.byID[id]
	return s, ok
}

// LookupByName returns every symbol sharing a bare name, across all files,
// ordered by (file path, start line).
func (t *Table) LookupByName(name string) []*models.Symbol {
	return t.byName[name]
}

// LookupByQualified returns the unique symbol with a qualified name.
func (t *Table) LookupByQualified(q string) (*models.Symbol, bool) {
	s, ok := t.byQualified[q]
	return s, ok
}

// InFile returns the symbols defined in one file, in source order.
func (t *Table) InFile(path string) []*models.Symbol {
	return t.byFile[path]
}

// Files returns every registered file node, sorted by path.
func (t *Table) Files() []models.FileNode {
	out := make([]models.FileNode, 0, len(t.files))
	for _, f := range t.files {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Symbols returns every symbol, ordered by (file path, start line).
func (t *Table) Symbols() []*models.Symbol {
	out := make([]*models.Symbol, 0, len(t.byID))
	for _, s := range t.byID {
		out = append(out, s)
	}
	sortSymbols(out)
	return out
}

// Len reports the number of registered symbols.
func (t *Table) Len() int {
	return len(t.byID)
}

// HasSubclass reports whether any registered class of the given language
// names class as a base.
func (t *Table) HasSubclass(lang models.Language, class string) bool {
	return t.subclassed[subclassKey{lang, class}]
}
