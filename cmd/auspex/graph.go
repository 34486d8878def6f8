package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/auspexlab/auspex/internal/output"
)

func graphCmd() *cli.Command {
	return &cli.Command{
		Name:      "graph",
		Aliases:   []string{"g"},
		Usage:     "Dump call and import graph edges",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "type",
				Value: "calls",
				Usage: "Graph to dump: calls, imports",
			},
			&cli.StringFlag{
				Name:  "chain-from",
				Usage: "Symbol id to trace a call chain from (requires --chain-to)",
			},
			&cli.StringFlag{
				Name:  "chain-to",
				Usage: "Symbol id to trace a call chain to",
			},
		},
		Action: runGraph,
	}
}

func runGraph(c *cli.Context) error {
	result, err := runPipeline(c)
	if err != nil {
		return err
	}

	formatter, err := output.NewFormatter(output.ParseFormat(c.String("format")), c.String("output"), true)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if from, to := c.String("chain-from"), c.String("chain-to"); from != "" || to != "" {
		if from == "" || to == "" {
			return fmt.Errorf("--chain-from and --chain-to must be used together")
		}
		chain := result.CallGraph.ShortestChain(from, to)
		if chain == nil {
			formatter.Warning("no call chain from %s to %s", from, to)
			return nil
		}
		rows := make([][]string, len(chain))
		for i, id := range chain {
			rows[i] = []string{fmt.Sprintf("%d", i), id}
		}
		return formatter.Output(&output.Table{
			Title:   "Call Chain",
			Headers: []string{"Step", "Symbol"},
			Rows:    rows,
			Data:    chain,
		})
	}

	switch c.String("type") {
	case "imports":
		rows := make([][]string, len(result.ImportGraph.Edges))
		for i, e := range result.ImportGraph.Edges {
			rows[i] = []string{e.From, e.To}
		}
		return formatter.Output(&output.Table{
			Title:   fmt.Sprintf("Import Edges (%d)", len(rows)),
			Headers: []string{"From", "To"},
			Rows:    rows,
			Data:    result.ImportGraph,
		})
	case "calls":
		rows := make([][]string, len(result.CallGraph.Edges))
		for i, e := range result.CallGraph.Edges {
			marker := ""
			if e.Ambiguous {
				marker = "ambiguous"
			}
			rows[i] = []string{e.Caller, fmt.Sprintf("%d", e.Line), e.Callee, marker}
		}
		return formatter.Output(&output.Table{
			Title:   fmt.Sprintf("Call Edges (%d)", len(rows)),
			Headers: []string{"Caller", "Line", "Callee", ""},
			Rows:    rows,
			Data:    result.CallGraph,
		})
	default:
		return fmt.Errorf("unknown graph type %q (want calls or imports)", c.String("type"))
	}
}
