package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/auspexlab/auspex/internal/output"
	"github.com/auspexlab/auspex/pkg/models"
)

func symbolsCmd() *cli.Command {
	return &cli.Command{
		Name:      "symbols",
		Aliases:   []string{"sym"},
		Usage:     "Dump the extracted symbol index",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "kind",
				Usage: "Filter by kind: function, method, class",
			},
			&cli.BoolFlag{
				Name:  "exported",
				Usage: "Show only exported symbols",
			},
		},
		Action: runSymbols,
	}
}

func runSymbols(c *cli.Context) error {
	result, err := runPipeline(c)
	if err != nil {
		return err
	}

	kind := models.SymbolKind(c.String("kind"))
	exportedOnly := c.Bool("exported")

	var symbols []models.Symbol
	for _, s := range result.Symbols {
		if kind != "" && s.Kind != kind {
			continue
		}
		if exportedOnly && !s.Exported {
			continue
		}
		symbols = append(symbols, s)
	}

	formatter, err := output.NewFormatter(output.ParseFormat(c.String("format")), c.String("output"), true)
	if err != nil {
		return err
	}
	defer formatter.Close()

	rows := make([][]string, len(symbols))
	for i, s := range symbols {
		visibility := "private"
		if s.Exported {
			visibility = "exported"
		}
		rows[i] = []string{
			fmt.Sprintf("%s:%d", s.File, s.StartLine),
			s.QualifiedName,
			string(s.Kind),
			string(s.Language),
			visibility,
		}
	}

	return formatter.Output(&output.Table{
		Title:   fmt.Sprintf("Symbols (%d)", len(symbols)),
		Headers: []string{"Location", "Qualified Name", "Kind", "Language", "Visibility"},
		Rows:    rows,
		Data:    symbols,
	})
}
