// Package pipeline wires the full analysis run: scan, parallel parse and
// extract, symbol table freeze, import resolution, call graph construction,
// and the three cross-file passes. Data flows strictly forward; nothing
// downstream starts before its inputs are complete.
package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/auspexlab/auspex/internal/analyzer"
	"github.com/auspexlab/auspex/internal/callgraph"
	"github.com/auspexlab/auspex/internal/extract"
	"github.com/auspexlab/auspex/internal/fileproc"
	"github.com/auspexlab/auspex/internal/progress"
	"github.com/auspexlab/auspex/internal/resolve"
	"github.com/auspexlab/auspex/internal/scanner"
	"github.com/auspexlab/auspex/internal/symtab"
	"github.com/auspexlab/auspex/pkg/config"
	"github.com/auspexlab/auspex/pkg/models"
	"github.com/auspexlab/auspex/pkg/parser"
)

// Options controls one analysis run.
type Options struct {
	Root     string
	Config   *config.Config
	Progress bool
}

// fileOutcome is the per-file merge unit: resolved import edges plus any
// resolution diagnostics. Symbols go straight into the table inside the
// worker, one lock acquisition per file.
type fileOutcome struct {
	edges []models.ImportEdge
	diags []models.Diagnostic
}

// Run executes a full analysis. Per-file problems degrade to diagnostics;
// invariant violations and invalid configuration abort the run.
func Run(ctx context.Context, opts Options) (*models.Result, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sc, err := scanner.New(cfg)
	if err != nil {
		return nil, err
	}
	files, err := sc.Scan(opts.Root)
	if err != nil {
		return nil, err
	}

	// The project file set is fixed once scanning completes, so the
	// resolver can be built before any file is parsed.
	nodes := make([]models.FileNode, len(files))
	for i, f := range files {
		nodes[i] = models.FileNode{Path: f, Language: parser.DetectLanguage(f)}
	}
	resolver := resolve.New(nodes)

	table := symtab.New()
	tracker := progress.NewTracker("analyzing", len(files), opts.Progress)

	outcomes, failed := fileproc.MapFiles(ctx, files, cfg.Workers,
		func(ctx context.Context, psr *parser.Parser, rel string) (fileOutcome, error) {
			source, err := os.ReadFile(filepath.Join(opts.Root, rel))
			if err != nil {
				return fileOutcome{}, err
			}
			result, err := psr.Parse(ctx, source, parser.DetectLanguage(rel), rel)
			if err != nil {
				return fileOutcome{}, err
			}

			ex := extract.ForLanguage(result.Language)
			if ex == nil {
				return fileOutcome{}, &parser.ParseFailure{Path: rel, Err: errUnsupported}
			}
			fx, err := ex.Extract(result)
			if err != nil {
				return fileOutcome{}, err
			}

			edges, diags := resolver.File(&fx.File)
			if err := table.Register(fx.File, fx.Symbols); err != nil {
				return fileOutcome{}, err
			}
			return fileOutcome{edges: edges, diags: diags}, nil
		}, tracker.Tick)
	tracker.Finish()

	var diags []models.Diagnostic
	for _, fe := range failed {
		var inv *models.InvariantError
		if errors.As(fe.Err, &inv) {
			return nil, inv
		}
		if ctx.Err() != nil && errors.Is(fe.Err, ctx.Err()) {
			return nil, ctx.Err()
		}
		diags = append(diags, models.Diagnostic{
			Kind:    models.DiagParseFailure,
			File:    fe.Path,
			Message: fe.Err.Error(),
		})
	}

	table.Freeze()

	imports := models.NewImportGraph()
	for _, f := range files {
		imports.AddFile(f)
	}
	for _, oc := range outcomes {
		for _, e := range oc.edges {
			imports.AddEdge(e.From, e.To)
		}
		diags = append(diags, oc.diags...)
	}
	imports.Freeze()

	calls, callDiags := callgraph.New(table, imports, cfg.Calls, cfg.Workers).Build()
	diags = append(diags, callDiags...)

	cycles := analyzer.DetectCycles(imports)
	dead, err := analyzer.FindDeadCode(table, calls, cfg.DeadCode)
	if err != nil {
		return nil, err
	}
	dupes := analyzer.FindDuplicates(table, cfg.Duplicates, cfg.Workers)

	models.SortDiagnostics(diags)

	symbols := table.Symbols()
	result := &models.Result{
		Files:       table.Files(),
		Symbols:     make([]models.Symbol, len(symbols)),
		CallGraph:   calls,
		ImportGraph: imports,
		Cycles:      cycles,
		DeadCode:    dead,
		Duplicates:  dupes,
		Diagnostics: diags,
	}
	for i, s := range symbols {
		result.Symbols[i] = *s
	}

	unresolved := 0
	for _, d := range diags {
		if d.Kind == models.DiagUnresolvedCall {
			unresolved++
		}
	}
	result.Stats = models.Stats{
		FilesScanned:  len(files),
		FilesFailed:   len(failed),
		Symbols:       table.Len(),
		CallEdges:     len(calls.Edges),
		ImportEdges:   len(imports.Edges),
		UnresolvedRef: unresolved,
	}
	return result, nil
}

var errUnsupported = errors.New("no extractor for language")
