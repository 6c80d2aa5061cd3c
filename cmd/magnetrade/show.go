package main

import (
	"io"

	"github.com/aretw0/magnetrade"
	"github.com/aretw0/magnetrade/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Print a readable report of a strategy file",
	Long: `Renders the strategy blocks, their summaries, timeframes and results, and
the compiled workflow. Output is styled on a terminal and plain markdown otherwise.`,
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

		plain, _ := cmd.Flags().GetBool("plain")
		return runShow(cmd.OutOrStdout(), cmd.InOrStdin(), studio, args[0], plain)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().Bool("plain", false, "Print markdown without terminal styling")
}

func runShow(w io.Writer, stdin io.Reader, studio *magnetrade.Studio, path string, plain bool) error {
	strategy, err := readStrategy(path, stdin)
	if err != nil {
		return err
	}
	g, workflow, err := studio.Compile(strategy.Graph)
	if err != nil {
		return err
	}
	strategy.Graph = g
	strategy.Workflow = workflow
	return printMarkdown(w, tui.StrategyReport(strategy), plain)
}
