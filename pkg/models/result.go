package models

import "sort"

// DiagnosticKind labels a non-fatal per-file problem.
type DiagnosticKind string

const (
	DiagParseFailure     DiagnosticKind = "parse_failure"
	DiagUnresolvedImport DiagnosticKind = "unresolved_import"
	DiagUnresolvedCall   DiagnosticKind = "unresolved_call"
)

// Diagnostic records a non-fatal problem attached to a file or symbol.
// Diagnostics never escalate; analysis proceeds over the remaining data.
type Diagnostic struct {
	Kind     DiagnosticKind `json:"kind"`
	File     string         `json:"file"`
	SymbolID string         `json:"symbol_id,omitempty"`
	Line     uint32         `json:"line,omitempty"`
	Message  string         `json:"message"`
}

// SortDiagnostics orders diagnostics by (file, line, symbol id, kind) so
// concurrently collected batches always report identically.
func SortDiagnostics(diags []Diagnostic) {
	sort.Slice(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.SymbolID != b.SymbolID {
			return a.SymbolID < b.SymbolID
		}
		return a.Kind < b.Kind
	})
}

// Cycle is one import cycle: the full SCC membership plus one representative
// closed walk through it. Walk repeats its first file at the end.
type Cycle struct {
	Files []string `json:"files"`
	Walk  []string `json:"walk"`
}

// DeadSymbol is one dead-code candidate: a symbol with no incoming call
// edges that is not a designated entry point.
type DeadSymbol struct {
	SymbolID string     `json:"symbol_id"`
	Name     string     `json:"name"`
	Kind     SymbolKind `json:"kind"`
	File     string     `json:"file"`
	Line     uint32     `json:"line"`
}

// DuplicateCluster is a disjoint set of mutually similar symbols with a
// representative similarity score. Clusters never mix languages.
type DuplicateCluster struct {
	Symbols    []string `json:"symbols"`
	Similarity float64  `json:"similarity"`
	Language   Language `json:"language"`
}

// Stats summarizes one run.
type Stats struct {
	FilesScanned  int `json:"files_scanned"`
	FilesFailed   int `json:"files_failed"`
	Symbols       int `json:"symbols"`
	CallEdges     int `json:"call_edges"`
	ImportEdges   int `json:"import_edges"`
	UnresolvedRef int `json:"unresolved_refs"`
}

// Result is the finished output of one analysis run: the symbol table
// snapshot, both graphs, the three cross-file result sets, and the
// diagnostics for whatever was skipped along the way. It is an in-memory
// contract for downstream consumers; this core defines no file format.
type Result struct {
	Files       []FileNode         `json:"files"`
	Symbols     []Symbol           `json:"symbols"`
	CallGraph   *CallGraph         `json:"call_graph"`
	ImportGraph *ImportGraph       `json:"import_graph"`
	Cycles      []Cycle            `json:"cycles"`
	DeadCode    []DeadSymbol       `json:"dead_code"`
	Duplicates  []DuplicateCluster `json:"duplicates"`
	Diagnostics []Diagnostic       `json:"diagnostics,omitempty"`
	Stats       Stats              `json:"stats"`
}
