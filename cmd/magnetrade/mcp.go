package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/magnetrade/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the catalog, compilation and stored strategies as MCP tools so
agents can inspect and compile strategies.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("transport") {
			cfg.MCP.Transport, _ = cmd.Flags().GetString("transport")
		}
		if cmd.Flags().Changed("port") {
			cfg.MCP.Port, _ = cmd.Flags().GetInt("port")
		}

		// The logger writes to stderr so it never corrupts JSON-RPC on stdout.
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		studio, closer, err := newStudio(cfg, logger, nil)
		if err != nil {
			return err
		}
		defer closer.Close()

		srv := mcp.NewServer(studio, version, logger)

		switch cfg.MCP.Transport {
		case "stdio":
			log.SetOutput(os.Stderr)
			logger.Info("starting MCP server (stdio)")
			return srv.ServeStdio()
		case "sse":
			logger.Info("starting MCP server (SSE)", "port", cfg.MCP.Port)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.ServeSSE(ctx, cfg.MCP.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("MCP server stopped gracefully")
			return nil
		}
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", cfg.MCP.Transport)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8081, "Port to listen on (only for SSE)")
}
