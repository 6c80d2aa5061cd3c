package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/magnetrade"
	"github.com/aretw0/magnetrade/pkg/compiler"
	"github.com/spf13/cobra"
)

// errInvalid signals that validation found errors. The issues are already printed.
var errInvalid = errors.New("strategy has structural errors")

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a strategy graph for structural problems",
	Long: `Reports dangling and self-referencing edges, unconfigured blocks, Condition
blocks that lead nowhere, and cycles. Warnings do not fail the command.`,
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
		return runValidate(cmd.OutOrStdout(), cmd.InOrStdin(), studio, args[0])
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(w io.Writer, stdin io.Reader, studio *magnetrade.Studio, path string) error {
	strategy, err := readStrategy(path, stdin)
	if err != nil {
		return err
	}

	issues := studio.Validate(strategy.Graph)
	for _, issue := range issues {
		fmt.Fprintln(w, issue)
	}
	if compiler.HasErrors(issues) {
		return errInvalid
	}
	fmt.Fprintln(w, "Strategy is valid! ✅")
	return nil
}
