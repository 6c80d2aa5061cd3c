package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list <owner>",
	Short: "List the stored strategies of a user, oldest first",
	Args:  cobra.ExactArgs(1),
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

		strategies, err := studio.List(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(cmd.OutOrStdout(), strategies)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tFREQUENCY\tBLOCKS\tUPDATED")
		for _, s := range strategies {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
				s.ID, s.Name, s.Frequency, len(s.Graph.Nodes), s.UpdatedAt.Format(time.RFC3339))
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().Bool("json", false, "Print the strategies as JSON")
}
