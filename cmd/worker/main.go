// Package main provides the entry point for the snapshot publishing worker.
// It renders sitemap.xml, feed.xml and robots.txt on a schedule and uploads
// them to object storage.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/celnetamit/hlwp/internal/app"
	"github.com/celnetamit/hlwp/internal/config"
	"github.com/celnetamit/hlwp/internal/observability"
	"github.com/celnetamit/hlwp/internal/publish"
)

// publishTimeout bounds one publish run.
const publishTimeout = 5 * time.Minute

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
	if !cfg.Publish.Enabled {
		return errors.New("publishing is disabled (set publish.enabled)")
	}

	// Set up structured logging.
	base := app.NewLogger(cfg)
	logger := base.With().Str("component", "worker").Logger()
	logger.Info().Msg("journal-library worker starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(cfg.Metrics.Namespace)
	}

	components := app.New(cfg, base, metrics)
	if _, err := components.Catalog.Reload(ctx); err != nil {
		// The sitemap is still built from the backend posts.
		logger.Error().Err(err).Msg("catalog load failed")
	}

	publisher, err := components.NewPublisher(ctx, cfg, base, metrics)
	if err != nil {
		return err
	}

	job := publishJob(publisher, logger)

	scheduler := cron.New()
	if err := app.Schedule(ctx, scheduler, cfg.Publish.Schedule, publishTimeout, job); err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	// Publish once at start-up so a fresh deployment does not wait for the
	// first tick.
	runCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	job(runCtx)
	cancel()

	scheduler.Start()
	logger.Info().
		Str("schedule", cfg.Publish.Schedule).
		Str("bucket", cfg.Publish.Bucket).
		Msg("journal-library worker is ready")

	<-ctx.Done()
	logger.Info().Msg("received shutdown signal, waiting for running jobs")
	<-scheduler.Stop().Done()
	logger.Info().Msg("journal-library worker shutdown complete")
	return nil
}

func publishJob(p *publish.Publisher, logger zerolog.Logger) func(context.Context) {
	return func(ctx context.Context) {
		report, err := p.Publish(ctx)
		if err != nil {
			logger.Error().Err(err).Strs("failed", report.Failed).Msg("publish run failed")
			return
		}
		logger.Info().Strs("uploaded", report.Uploaded).Dur("duration", report.Duration).Msg("publish run complete")
	}
}
