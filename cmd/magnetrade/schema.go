package main

import (
	"fmt"
	"io"

	"github.com/aretw0/magnetrade/pkg/schema"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the menu catalog used to build and summarize blocks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		catalog := schema.Default()
		if cfg.Catalog != "" {
			if catalog, err = schema.Load(cfg.Catalog); err != nil {
				return err
			}
		}
		format, _ := cmd.Flags().GetString("format")
		return runSchema(cmd.OutOrStdout(), catalog, format)
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().StringP("format", "f", "yaml", "Output format: yaml or json")
}

func runSchema(w io.Writer, catalog *schema.Catalog, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(catalog); err != nil {
			return fmt.Errorf("failed to encode catalog: %w", err)
		}
		return enc.Close()
	case "json":
		return printJSON(w, catalog)
	}
	return fmt.Errorf("unknown format %q: supported yaml, json", format)
}
