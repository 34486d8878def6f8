package analyzer

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/gobwas/glob"

	"github.com/auspexlab/auspex/internal/symtab"
	"github.com/auspexlab/auspex/pkg/config"
	"github.com/auspexlab/auspex/pkg/models"
)

// FindDeadCode reports callable symbols with no incoming call edge that are
// not entry points. Self-recursion does not keep a symbol alive: a function
// whose only caller is itself is still dead. Ambiguous edges do count, which
// biases the pass toward fewer false positives.
func FindDeadCode(table *symtab.Table, graph *models.CallGraph, cfg config.DeadCodeConfig) ([]models.DeadSymbol, error) {
	entryNames := make(map[string]bool, len(cfg.EntryPoints))
	for _, name := range cfg.EntryPoints {
		entryNames[name] = true
	}
	testPatterns := make([]glob.Glob, 0, len(cfg.TestPatterns))
	for _, p := range cfg.TestPatterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, err
		}
		testPatterns = append(testPatterns, g)
	}

	symbols := table.Symbols()
	live := roaring.New()

	for i, sym := range symbols {
		idx := uint32(i)
		switch {
		case sym.Kind == models.KindClass:
			live.Add(idx)
		case graph.InDegree(sym.ID) > 0:
			live.Add(idx)
		case entryNames[sym.Name]:
			live.Add(idx)
		case cfg.ExportedIsEntry && sym.Exported:
			live.Add(idx)
		case sym.Kind == models.KindConstructor && sym.Class != "" && table.HasSubclass(sym.Language, sym.Class):
			// A subclass can invoke the parent constructor implicitly,
			// without a visible call site.
			live.Add(idx)
		default:
			for _, g := range testPatterns {
				if g.Match(sym.Name) {
					live.Add(idx)
					break
				}
			}
		}
	}

	var dead []models.DeadSymbol
	for i, sym := range symbols {
		if live.Contains(uint32(i)) {
			continue
		}
		dead = append(dead, models.DeadSymbol{
			SymbolID: sym.ID,
			Name:     sym.Name,
			Kind:     sym.Kind,
			File:     sym.File,
			Line:     sym.StartLine,
		})
	}
	return dead, nil
}
