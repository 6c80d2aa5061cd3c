package main

import (
	"fmt"
	"io"

	"github.com/aretw0/magnetrade"
	"github.com/aretw0/magnetrade/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <file>",
	Short: "Export the strategy graph as a Mermaid diagram",
	Long: `Recompiles the strategy and outputs a Mermaid flowchart (graph TD).
Condition blocks are drawn as diamonds, Action blocks as rectangles, and any
bound evaluation results are shown on their Condition blocks.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		studio, closer, err := newStudio(offline(cfg), logger, nil)
		if err != nil {
			return err
		}
		defer closer.Close()
		return runGraph(cmd.OutOrStdout(), cmd.InOrStdin(), studio, args[0])
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}

func runGraph(w io.Writer, stdin io.Reader, studio *magnetrade.Studio, path string) error {
	strategy, err := readStrategy(path, stdin)
	if err != nil {
		return err
	}
	// Results are kept so an evaluated file renders its outcome.
	// A cycle does not prevent drawing; the graph is returned recompiled either way.
	g, _, _ := studio.Compile(strategy.Graph)
	_, err = fmt.Fprint(w, graph.GenerateMermaid(g))
	return err
}
