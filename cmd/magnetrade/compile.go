package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/magnetrade"
	"github.com/spf13/cobra"
)

var compileCmd = &cobra.Command{
	Use:   "compile <file>",
	Short: "Recompile summaries and extract the workflow of a strategy file",
	Long: `Reads a strategy (document, strategy or bare graph JSON, "-" for stdin),
recomputes every node summary and prints the stored document shape with the
ordered workflow. No store or execution service is contacted.`,
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

		commands, _ := cmd.Flags().GetBool("commands")
		return runCompile(cmd.OutOrStdout(), cmd.InOrStdin(), studio, args[0], commands)
	},
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().Bool("commands", false, "Print only the workflow commands, one path per line")
}

func runCompile(w io.Writer, stdin io.Reader, studio *magnetrade.Studio, path string, commandsOnly bool) error {
	strategy, err := readStrategy(path, stdin)
	if err != nil {
		return err
	}
	g, workflow, err := studio.Compile(strategy.Graph)
	if err != nil {
		return err
	}

	if commandsOnly {
		for _, p := range workflow {
			fmt.Fprintln(w, strings.Join(p, " -> "))
		}
		return nil
	}

	strategy.Graph = g
	strategy.Workflow = workflow
	doc, err := strategy.ToDocument()
	if err != nil {
		return err
	}
	return printJSON(w, doc)
}
