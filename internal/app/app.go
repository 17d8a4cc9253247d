// Package app wires the service components from configuration. The server,
// the worker and the operator CLI share it.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/celnetamit/hlwp/internal/catalog"
	"github.com/celnetamit/hlwp/internal/config"
	"github.com/celnetamit/hlwp/internal/contentsource/wordpress"
	"github.com/celnetamit/hlwp/internal/observability"
	"github.com/celnetamit/hlwp/internal/publish"
	"github.com/celnetamit/hlwp/internal/search"
	"github.com/celnetamit/hlwp/internal/seo"
)

// Components are the long-lived collaborators built from configuration.
type Components struct {
	Source  *wordpress.Client
	Catalog *catalog.Store
	Search  *search.Service
	Builder *publish.Builder
	Site    seo.Site
}

// NewLogger builds the process logger from configuration.
func NewLogger(cfg *config.Config) zerolog.Logger {
	return observability.NewLogger(observability.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: cfg.Logging.TimeFormat,
	})
}

// Site returns the public site identity.
func Site(cfg *config.Config) seo.Site {
	return seo.Site{
		URL:         cfg.Site.URL,
		Name:        cfg.Site.Name,
		Description: cfg.Site.Description,
		FeedTitle:   cfg.Site.FeedTitle,
	}
}

// RobotsPolicy returns the crawler policy of the configured environment.
func RobotsPolicy(cfg *config.Config) seo.RobotsPolicy {
	return seo.RobotsPolicy{
		SiteURL:          cfg.Site.URL,
		Production:       cfg.Site.IsProduction(),
		BlockDrafts:      cfg.Site.BlockDrafts,
		BlockUserContent: cfg.Site.BlockUserContent,
	}
}

// New builds the components. The catalog is created but not loaded. metrics
// may be nil.
func New(cfg *config.Config, logger zerolog.Logger, metrics *observability.Metrics) *Components {
	source := wordpress.New(wordpress.Config{
		BaseURL:    cfg.WordPress.APIURL,
		Username:   cfg.WordPress.Username,
		Password:   cfg.WordPress.Password,
		Timeout:    cfg.WordPress.Timeout,
		RateLimit:  cfg.WordPress.RateLimit,
		BurstSize:  cfg.WordPress.Burst,
		MaxRetries: cfg.WordPress.MaxRetries,
		UserAgent:  cfg.WordPress.UserAgent,
	}, logger, metrics)

	var loader catalog.Loader
	switch cfg.Catalog.Source {
	case config.CatalogSourceWordPress:
		loader = catalog.NewWordPressLoader(source, cfg.Catalog.MaxPages)
	default:
		loader = catalog.NewFileLoader(cfg.Catalog.Path)
	}
	store := catalog.NewStore(loader, logger, metrics)

	site := Site(cfg)
	return &Components{
		Source:  source,
		Catalog: store,
		Search: search.NewService(store, search.Config{
			DefaultLimit: cfg.Search.DefaultLimit,
			MaxLimit:     cfg.Search.MaxLimit,
		}, logger, metrics),
		Builder: publish.NewBuilder(source, store, publish.BuilderConfig{
			Site:        site,
			Robots:      RobotsPolicy(cfg),
			FeedSize:    cfg.WordPress.FeedSize,
			SitemapSize: cfg.WordPress.SitemapSize,
		}, logger),
		Site: site,
	}
}

// NewPublisher builds the snapshot publisher on top of c.
func (c *Components) NewPublisher(ctx context.Context, cfg *config.Config, logger zerolog.Logger, metrics *observability.Metrics) (*publish.Publisher, error) {
	client, err := publish.NewS3Client(ctx, cfg.Publish)
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}
	uploader := publish.NewS3Uploader(client, cfg.Publish.Bucket, cfg.Publish.Prefix)
	return publish.NewPublisher(c.Builder, uploader, logger, metrics), nil
}

// Schedule registers job on a cron scheduler under spec. Each run gets its
// own timeout-bound context derived from ctx.
func Schedule(ctx context.Context, c *cron.Cron, spec string, timeout time.Duration, job func(context.Context)) error {
	_, err := c.AddFunc(spec, func() {
		runCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		job(runCtx)
	})
	if err != nil {
		return fmt.Errorf("schedule %q: %w", spec, err)
	}
	return nil
}
