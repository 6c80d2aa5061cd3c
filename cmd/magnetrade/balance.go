package main

import (
	"github.com/aretw0/magnetrade/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show the account balance reported by the execution service",
	Args:  cobra.NoArgs,
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

		balance, err := studio.Balance(cmd.Context())
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(cmd.OutOrStdout(), balance)
		}
		plain, _ := cmd.Flags().GetBool("plain")
		return printMarkdown(cmd.OutOrStdout(), tui.BalanceReport(balance), plain)
	},
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.Flags().Bool("json", false, "Print the raw balance as JSON")
	balanceCmd.Flags().Bool("plain", false, "Print markdown without terminal styling")
}
