package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/auspexlab/auspex/internal/output"
	"github.com/auspexlab/auspex/internal/pipeline"
	"github.com/auspexlab/auspex/pkg/models"
)

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"a"},
		Usage:     "Run the full analysis: cycles, dead code, duplicates",
		ArgsUsage: "[path]",
		Action:    runAnalyze,
	}
}

func runAnalyze(c *cli.Context) error {
	result, err := runPipeline(c)
	if err != nil {
		return err
	}

	format := output.ParseFormat(c.String("format"))
	formatter, err := output.NewFormatter(format, c.String("output"), true)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if format == output.FormatJSON || format == output.FormatToon {
		return formatter.Output(result)
	}

	report := &output.Report{
		Title: "Analysis Report",
		Data:  result,
		Sections: []output.Renderable{
			summarySection(result.Stats),
			cyclesTable(result.Cycles),
			deadCodeTable(result.DeadCode),
			duplicatesTable(result.Duplicates),
		},
	}
	if len(result.Diagnostics) > 0 {
		report.Sections = append(report.Sections, diagnosticsTable(result.Diagnostics))
	}
	return formatter.Output(report)
}

func runPipeline(c *cli.Context) (*models.Result, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	root, err := filepath.Abs(getPath(c))
	if err != nil {
		return nil, fmt.Errorf("invalid path %s: %w", getPath(c), err)
	}

	result, err := pipeline.Run(c.Context, pipeline.Options{
		Root:     root,
		Config:   cfg,
		Progress: !c.Bool("quiet") && c.String("output") == "",
	})
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}
	return result, nil
}

func summarySection(s models.Stats) output.Renderable {
	return &output.Section{
		Title: "Summary",
		Content: fmt.Sprintf(
			"Files: %d (%d failed)\nSymbols: %d\nCall edges: %d\nImport edges: %d\nUnresolved references: %d",
			s.FilesScanned, s.FilesFailed, s.Symbols, s.CallEdges, s.ImportEdges, s.UnresolvedRef),
		Data: s,
	}
}

func cyclesTable(cycles []models.Cycle) output.Renderable {
	rows := make([][]string, len(cycles))
	for i, cy := range cycles {
		rows[i] = []string{
			fmt.Sprintf("%d", len(cy.Files)),
			strings.Join(cy.Walk, " -> "),
		}
	}
	return &output.Table{
		Title:   fmt.Sprintf("Import Cycles (%d)", len(cycles)),
		Headers: []string{"Size", "Walk"},
		Rows:    rows,
		Data:    cycles,
	}
}

func deadCodeTable(dead []models.DeadSymbol) output.Renderable {
	rows := make([][]string, len(dead))
	for i, d := range dead {
		rows[i] = []string{
			fmt.Sprintf("%s:%d", d.File, d.Line),
			d.Name,
			string(d.Kind),
		}
	}
	return &output.Table{
		Title:   fmt.Sprintf("Dead Symbols (%d)", len(dead)),
		Headers: []string{"Location", "Symbol", "Kind"},
		Rows:    rows,
		Data:    dead,
	}
}

func duplicatesTable(clusters []models.DuplicateCluster) output.Renderable {
	rows := make([][]string, len(clusters))
	for i, cl := range clusters {
		rows[i] = []string{
			fmt.Sprintf("%d", len(cl.Symbols)),
			fmt.Sprintf("%.2f", cl.Similarity),
			string(cl.Language),
			strings.Join(cl.Symbols, ", "),
		}
	}
	return &output.Table{
		Title:   fmt.Sprintf("Duplicate Clusters (%d)", len(clusters)),
		Headers: []string{"Size", "Similarity", "Language", "Members"},
		Rows:    rows,
		Data:    clusters,
	}
}

func diagnosticsTable(diags []models.Diagnostic) output.Renderable {
	rows := make([][]string, len(diags))
	for i, d := range diags {
		rows[i] = []string{
			fmt.Sprintf("%s:%d", d.File, d.Line),
			string(d.Kind),
			d.Message,
		}
	}
	return &output.Table{
		Title:   fmt.Sprintf("Diagnostics (%d)", len(diags)),
		Headers: []string{"Location", "Kind", "Message"},
		Rows:    rows,
		Data:    diags,
	}
}
