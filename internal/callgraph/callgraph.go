// Package callgraph builds the caller→callee edge set by resolving each
// symbol's call references against the frozen symbol table. Resolution is
// sharded by caller symbol; shard outputs merge into one graph and are
// ordered deterministically when the graph freezes.
package callgraph

import (
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/auspexlab/auspex/internal/fileproc"
	"github.com/auspexlab/auspex/internal/symtab"
	"github.com/auspexlab/auspex/pkg/config"
	"github.com/auspexlab/auspex/pkg/models"
)

// Builder resolves call references using the tie-break ladder: a match in
// the caller's own file wins, then a match in a file the caller's file
// imports, then any name match in the project. Remaining ties become
// ambiguous edges to every candidate, or to the first candidate only when
// so configured.
type Builder struct {
	table   *symtab.Table
	imports *models.ImportGraph
	cfg     config.CallConfig
	workers int
}

// New creates a builder over a frozen table and import graph.
func New(table *symtab.Table, imports *models.ImportGraph, cfg config.CallConfig, workers int) *Builder {
	return &Builder{table: table, imports: imports, cfg: cfg, workers: workers}
}

// Build resolves every call reference and returns the frozen graph plus
// diagnostics for references that matched nothing.
func (b *Builder) Build() (*models.CallGraph, []models.Diagnostic) {
	symbols := b.table.Symbols()

	const shardSize = 64
	var shards [][]*models.Symbol
	for start := 0; start < len(symbols); start += shardSize {
		end := min(start+shardSize, len(symbols))
		shards = append(shards, symbols[start:end])
	}

	graph := models.NewCallGraph()
	var diags []models.Diagnostic
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(fileproc.Workers(b.workers))
	for _, shard := range shards {
		p.Go(func() {
			var edges []models.CallEdge
			var shardDiags []models.Diagnostic
			for _, sym := range shard {
				e, d := b.resolveSymbol(sym)
				edges = append(edges, e...)
				shardDiags = append(shardDiags, d...)
			}
			mu.Lock()
			graph.AddEdges(edges)
			diags = append(diags, shardDiags...)
			mu.Unlock()
		})
	}
	p.Wait()

	graph.Freeze()
	models.SortDiagnostics(diags)
	return graph, diags
}

func (b *Builder) resolveSymbol(sym *models.Symbol) ([]models.CallEdge, []models.Diagnostic) {
	var edges []models.CallEdge
	var diags []models.Diagnostic

	for _, ref := range sym.CallRefs {
		candidates := b.candidates(sym, ref.Name)
		if len(candidates) == 0 {
			diags = append(diags, models.Diagnostic{
				Kind:     models.DiagUnresolvedCall,
				File:     sym.File,
				SymbolID: sym.ID,
				Line:     ref.Line,
				Message:  "call to " + ref.Name + " matches no known symbol",
			})
			continue
		}

		ambiguous := len(candidates) > 1
		if ambiguous && b.cfg.AmbiguousEdges == config.AmbiguousFirst {
			candidates = candidates[:1]
		}
		for _, callee := range candidates {
			edges = append(edges, models.CallEdge{
				Caller:    sym.ID,
				Callee:    callee.ID,
				Line:      ref.Line,
				Ambiguous: ambiguous,
			})
		}
	}
	return edges, diags
}

// candidates applies the resolution ladder. Name matches come from the
// table pre-sorted by (file, start line), so every tier is deterministic.
func (b *Builder) candidates(caller *models.Symbol, name string) []*models.Symbol {
	matches := b.table.LookupByName(name)
	if len(matches) == 0 {
		return nil
	}

	var local []*models.Symbol
	for _, m := range matches {
		if m.File == caller.File {
			local = append(local, m)
		}
	}
	if len(local) > 0 {
		return local
	}

	imported := make(map[string]bool)
	for _, to := range b.imports.Neighbors(caller.File) {
		imported[to] = true
	}
	var viaImport []*models.Symbol
	for _, m := range matches {
		if imported[m.File] {
			viaImport = append(viaImport, m)
		}
	}
	if len(viaImport) > 0 {
		return viaImport
	}

	return matches
}
