// Package main provides the entry point for the journal library HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"github.com/celnetamit/hlwp/internal/app"
	"github.com/celnetamit/hlwp/internal/config"
	"github.com/celnetamit/hlwp/internal/observability"
	"github.com/celnetamit/hlwp/internal/render"
	httpserver "github.com/celnetamit/hlwp/internal/server/http"
)

// catalogRefreshTimeout bounds one scheduled catalog reload.
const catalogRefreshTimeout = 2 * time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Set up structured logging.
	base := app.NewLogger(cfg)
	logger := base.With().Str("component", "server").Logger()
	logger.Info().Msg("journal-library server starting")

	// Set up context with graceful shutdown via OS signals.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(cfg.Metrics.Namespace)
	}

	components := app.New(cfg, base, metrics)

	// Load the catalog. Search answers 503 until this succeeds, so a failed
	// first load is logged rather than fatal.
	if _, err := components.Catalog.Reload(ctx); err != nil {
		logger.Error().Err(err).Msg("initial catalog load failed")
	}

	scheduler := cron.New()
	if spec := cfg.Catalog.RefreshSchedule; spec != "" {
		if err := app.Schedule(ctx, scheduler, spec, catalogRefreshTimeout, components.Catalog.Refresh); err != nil {
			return fmt.Errorf("catalog refresh: %w", err)
		}
		logger.Info().Str("schedule", spec).Msg("catalog refresh scheduled")
	}
	scheduler.Start()

	if cfg.Catalog.Watch {
		go func() {
			if err := components.Catalog.Watch(ctx, cfg.Catalog.Path); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("catalog watcher stopped")
			}
		}()
	}

	pages, err := render.NewPageRenderer()
	if err != nil {
		return fmt.Errorf("load page templates: %w", err)
	}

	httpCfg := httpserver.Config{
		Address:         cfg.Server.HTTPAddress(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     2 * time.Minute,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}
	httpSrv := httpserver.NewServer(httpCfg, httpserver.Deps{
		Source:   components.Source,
		Catalog:  components.Catalog,
		Search:   components.Search,
		Builder:  components.Builder,
		Pages:    pages,
		Markdown: render.NewMarkdownRenderer(),
		Site:     components.Site,
	}, base, metrics)

	// Set up Prometheus metrics handler on a separate port if configured.
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle(cfg.Metrics.Path, promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress(),
			Handler:      metricsMux,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}
	}

	// Channel to collect server errors.
	errCh := make(chan error, 2)

	go func() {
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	if metricsServer != nil {
		go func() {
			logger.Info().
				Str("address", metricsServer.Addr).
				Msg("metrics server starting")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
	}

	readyLog := logger.Info().
		Str("http_address", httpCfg.Address).
		Str("catalog_source", cfg.Catalog.Source).
		Str("environment", cfg.Site.Environment)
	if metricsServer != nil {
		readyLog = readyLog.Str("metrics_address", metricsServer.Addr)
	}
	readyLog.Msg("journal-library server is ready")

	// Wait for shutdown signal or server error.
	select {
	case <-ctx.Done():
		logger.Info().Msg("received shutdown signal")
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	}

	// Graceful shutdown.
	logger.Info().Msg("shutting down journal-library server")

	<-scheduler.Stop().Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("metrics server shutdown error")
		}
	}

	logger.Info().Msg("journal-library server shutdown complete")
	return nil
}
