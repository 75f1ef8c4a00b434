package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/flowedit"
	"github.com/aretw0/flowedit/internal/cli"
	"github.com/aretw0/flowedit/internal/presentation/tui"
	httpAdapter "github.com/aretw0/flowedit/pkg/adapters/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the workspaces of the configured store as a JSON API, with Prometheus
metrics at /metrics. --seed imports flow files at startup.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			cfg.Server.Addr, _ = cmd.Flags().GetString("addr")
		}
		seeds, _ := cmd.Flags().GetStringArray("seed")
		quiet, _ := cmd.Flags().GetBool("quiet")

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		manager, backend, err := workspaces(reg)
		if err != nil {
			return err
		}
		defer backend.Close()

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		if err := seed(ctx, manager, seeds); err != nil {
			return err
		}

		handler := httpAdapter.NewHandler(manager,
			httpAdapter.WithLogger(logger),
			httpAdapter.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
			httpAdapter.WithWriteLimit(cfg.Server.WriteRate, cfg.Server.WriteBurst),
			httpAdapter.WithExpansionLimit(cfg.Server.MaxBranches),
		)
		srv := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		if !quiet {
			tui.PrintBanner(cmd.ErrOrStderr(), flowedit.Version)
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("Starting flowedit server", "addr", srv.Addr, "storage", cfg.Storage.Backend)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case <-ctx.Done():
			logger.Info("Start shutdown", "signal", ctx.Signal())

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("Graceful shutdown did not complete", "err", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			logger.Info("Server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
	serveCmd.Flags().StringArray("seed", nil, "Import a flow at startup: name=path, or a path to get a random name (repeatable)")
	serveCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner")
}
