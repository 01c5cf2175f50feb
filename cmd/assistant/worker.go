package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/ovozpay/nlu-engine/pkg/config"
	"github.com/ovozpay/nlu-engine/pkg/metrics"
)

func workerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the background worker: scheduled jobs and the metrics endpoint",
		Long: `Connect to the database, start the periodic jobs (reminder delivery,
reconciliation sweep, overdue debt notices, rate refresh) and serve the
Prometheus scrape endpoint until interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			deps, err := InitDependencies(cfg, slog.Default())
			if err != nil {
				return err
			}
			defer deps.Cleanup()

			if err := deps.Scheduler.Start(); err != nil {
				return fmt.Errorf("failed to start scheduler: %w", err)
			}

			var metricsSrv *http.Server
			if cfg.Observability.MetricsEnabled {
				mux := http.NewServeMux()
				mux.Handle("/metrics", metrics.Handler())
				metricsSrv = &http.Server{
					Addr:              fmt.Sprintf(":%d", cfg.Observability.MetricsPort),
					Handler:           mux,
					ReadHeaderTimeout: 5 * time.Second,
				}
				go func() {
					deps.Logger.Info("metrics endpoint listening", slog.Int("port", cfg.Observability.MetricsPort))
					if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						deps.Logger.Error("metrics endpoint failed", slog.Any("error", err))
					}
				}()
			}

			deps.Logger.Info("worker running")
			<-ctx.Done()

			// Let in-flight jobs finish before closing anything they use
			<-deps.Scheduler.Stop().Done()

			if metricsSrv != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
					deps.Logger.Warn("metrics endpoint shutdown failed", slog.Any("error", err))
				}
			}

			deps.Logger.Info("worker stopped")
			return nil
		},
	}
}
