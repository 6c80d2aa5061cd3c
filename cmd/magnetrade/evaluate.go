package main

import (
	"fmt"

	"github.com/aretw0/magnetrade/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <id>",
	Short: "Evaluate a stored strategy against the execution service",
	Long: `Submits the workflow of a stored strategy to the execution service, binds
the returned results onto its Condition blocks, saves it and prints the report.`,
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
		studio, closer, err := newStudio(cfg, logger, nil)
		if err != nil {
			return err
		}
		defer closer.Close()

		strategy, report, err := studio.Evaluate(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		plain, _ := cmd.Flags().GetBool("plain")
		if err := printMarkdown(w, tui.StrategyReport(strategy), plain); err != nil {
			return err
		}
		if len(report.Missed) > 0 {
			fmt.Fprintf(w, "No result for conditions: %v\n", report.Missed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
	evaluateCmd.Flags().Bool("plain", false, "Print markdown without terminal styling")
}
