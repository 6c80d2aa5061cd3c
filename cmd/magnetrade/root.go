package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/magnetrade/internal/config"
	"github.com/aretw0/magnetrade/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "magnetrade",
	Short: "Magnetrade compiles visual trading strategies into executable workflows",
	Long: `Magnetrade turns node graphs of Condition and Action blocks into ordered
command workflows, stores them per user and binds evaluation results from the
execution service back onto the graph.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (overrides config)")
}

// loadConfig reads the configuration named by --config and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}
