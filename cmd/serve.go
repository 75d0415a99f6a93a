package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/artcava/XPoster/internal/job"
	"github.com/artcava/XPoster/internal/logger"
	"github.com/artcava/XPoster/internal/metrics"
	"github.com/artcava/XPoster/internal/schedule"
)

const (
	shutdownTimeout   = 30 * time.Second
	readHeaderTimeout = 5 * time.Second
	// runTimeout bounds one scheduled invocation.
	runTimeout = 10 * time.Minute
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "serve",
		Short:             "Run on the configured cron schedule and expose metrics",
		PersistentPreRunE: setup,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := configFrom(ctx)
			if err != nil {
				return err
			}
			log := logger.FromContext(ctx)
			defer func() { _ = log.Sync() }()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

			app, err := newApp(ctx, cfg, schedule.SystemClock, metrics.New(reg), log)
			if err != nil {
				return err
			}
			defer app.Close()

			scheduler, err := job.New(cfg.Schedule.Cron, app.location, app.poster, runTimeout, log)
			if err != nil {
				return err
			}

			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
			mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			server := &http.Server{
				Addr:              cfg.Metrics.Address,
				Handler:           mux,
				ReadHeaderTimeout: readHeaderTimeout,
			}

			errChan := make(chan error, 1)
			go func() {
				log.Info("metrics server listening", logger.String("address", cfg.Metrics.Address))
				if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
					errChan <- serveErr
				}
			}()

			scheduler.Start()

			var runErr error
			select {
			case <-ctx.Done():
				log.Info("shutdown signal received")
			case serveErr := <-errChan:
				log.Error("metrics server failed", logger.Error(serveErr))
				runErr = fmt.Errorf("metrics server: %w", serveErr)
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := scheduler.Stop(shutdownCtx); err != nil {
				log.Error("failed to stop scheduler", logger.Error(err))
			}
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Error("failed to stop metrics server", logger.Error(err))
				return fmt.Errorf("stop metrics server: %w", err)
			}
			return runErr
		},
	}
}
