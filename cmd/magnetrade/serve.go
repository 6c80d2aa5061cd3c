package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/magnetrade/internal/presentation/tui"
	httpAdapter "github.com/aretw0/magnetrade/pkg/adapters/http"
	"github.com/aretw0/magnetrade/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Starts the strategy API over HTTP: schema, compilation, strategy storage,
evaluation, balance and, unless disabled, Prometheus metrics on /metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.Server.Addr, _ = cmd.Flags().GetString("addr")
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}

		handlerOpts := []httpAdapter.Option{
			httpAdapter.WithLogger(logger),
			httpAdapter.WithVersion(version),
		}
		var metrics *observability.Metrics
		if cfg.Server.Metrics {
			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			metrics = observability.NewMetrics(reg)
			handlerOpts = append(handlerOpts, httpAdapter.WithMetrics(metrics, reg))
		}

		studio, closer, err := newStudio(cfg, logger, metrics)
		if err != nil {
			return err
		}
		defer closer.Close()

		srv := &http.Server{
			Addr:    cfg.Server.Addr,
			Handler: httpAdapter.NewHandler(studio, handlerOpts...),
		}

		if isTerminal(os.Stdout) {
			tui.PrintBanner(os.Stdout)
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("starting magnetrade server",
				"addr", srv.Addr,
				"store", cfg.Store.Driver,
				"exec_url", cfg.Exec.URL,
				"metrics", cfg.Server.Metrics,
			)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("shutdown started", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown did not complete",
					"timeout", cfg.Server.ShutdownTimeout,
					"err", err,
				)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("failed to stop server: %w", err)
				}
			}
			logger.Info("magnetrade server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (overrides server.addr)")
}
