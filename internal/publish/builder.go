// Package publish builds the crawler-facing artefacts (sitemap, RSS feed
// and robots.txt) and uploads them to object storage.
//
// The HTTP handlers serve the same artefacts through Builder, so a
// published snapshot is byte-for-byte what the live endpoints return at the
// same instant.
package publish

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/celnetamit/hlwp/internal/catalog"
	"github.com/celnetamit/hlwp/internal/contentsource"
	"github.com/celnetamit/hlwp/internal/domain"
	"github.com/celnetamit/hlwp/internal/seo"
)

// Artefact names.
const (
	SitemapName = "sitemap.xml"
	FeedName    = "feed.xml"
	RobotsName  = "robots.txt"
)

// Cache policies of the artefacts.
const (
	SitemapCacheControl = "public, max-age=3600"
	FeedCacheControl    = "max-age=0, s-maxage=300, stale-while-revalidate=600"
	RobotsCacheControl  = "public, max-age=86400"
)

// Artifact is one rendered file ready to be served or uploaded.
type Artifact struct {
	Name         string
	ContentType  string
	CacheControl string
	Body         []byte
}

// Catalog is the part of the catalog store the builder reads.
type Catalog interface {
	Articles() []catalog.Entry
}

// BuilderConfig configures a Builder.
type BuilderConfig struct {
	Site        seo.Site
	Robots      seo.RobotsPolicy
	FeedSize    int
	SitemapSize int
}

// Builder renders artefacts from the content backend and the catalog.
type Builder struct {
	source  contentsource.ContentSource
	catalog Catalog
	cfg     BuilderConfig
	logger  zerolog.Logger
	now     func() time.Time
}

// NewBuilder creates a Builder. catalog may be nil.
func NewBuilder(source contentsource.ContentSource, cat Catalog, cfg BuilderConfig, logger zerolog.Logger) *Builder {
	cfg.FeedSize = clampPageSize(cfg.FeedSize, 50)
	cfg.SitemapSize = clampPageSize(cfg.SitemapSize, 100)
	return &Builder{
		source:  source,
		catalog: cat,
		cfg:     cfg,
		logger:  logger.With().Str("component", "publisher").Logger(),
		now:     time.Now,
	}
}

func clampPageSize(n, fallback int) int {
	if n <= 0 {
		n = fallback
	}
	return min(n, contentsource.MaxPerPage)
}

// posts fetches the newest backend posts. A degraded backend yields no
// posts; the artefacts are still produced from the remaining sources.
func (b *Builder) posts(ctx context.Context, perPage int, orderBy string) ([]domain.Article, error) {
	res, err := b.source.List(ctx, contentsource.ListParams{
		Page:    1,
		PerPage: perPage,
		OrderBy: orderBy,
		Order:   contentsource.OrderDesc,
	})
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	if res.Degraded() {
		b.logger.Warn().Err(res.BackendErr).Str("source", b.source.Name()).Msg("backend unavailable, building without posts")
		return nil, nil
	}
	return res.Articles, nil
}

func (b *Builder) catalogArticles() []*domain.Article {
	if b.catalog == nil {
		return nil
	}
	entries := b.catalog.Articles()
	out := make([]*domain.Article, len(entries))
	for i, e := range entries {
		out[i] = e.Article
	}
	return out
}

// Sitemap renders sitemap.xml.
func (b *Builder) Sitemap(ctx context.Context) (Artifact, error) {
	posts, err := b.posts(ctx, b.cfg.SitemapSize, contentsource.OrderByModified)
	if err != nil {
		return Artifact{}, err
	}

	now := b.now()
	siteURL := b.cfg.Site.URL
	entries := seo.BuildSitemap(
		seo.BaseRoutes(siteURL, now),
		seo.PostRoutes(siteURL, posts, now),
		seo.CatalogRoutes(siteURL, b.catalogArticles(), now),
	)

	var buf bytes.Buffer
	if err := seo.WriteSitemap(&buf, entries); err != nil {
		return Artifact{}, err
	}
	return Artifact{
		Name:         SitemapName,
		ContentType:  "application/xml",
		CacheControl: SitemapCacheControl,
		Body:         buf.Bytes(),
	}, nil
}

// Feed renders feed.xml.
func (b *Builder) Feed(ctx context.Context) (Artifact, error) {
	posts, err := b.posts(ctx, b.cfg.FeedSize, contentsource.OrderByDate)
	if err != nil {
		return Artifact{}, err
	}

	var buf bytes.Buffer
	if err := seo.WriteFeed(&buf, seo.BuildFeed(b.cfg.Site, posts, b.now())); err != nil {
		return Artifact{}, err
	}
	return Artifact{
		Name:         FeedName,
		ContentType:  "application/xml; charset=utf-8",
		CacheControl: FeedCacheControl,
		Body:         buf.Bytes(),
	}, nil
}

// Robots renders robots.txt.
func (b *Builder) Robots() Artifact {
	return Artifact{
		Name:         RobotsName,
		ContentType:  "text/plain; charset=utf-8",
		CacheControl: RobotsCacheControl,
		Body:         []byte(seo.Robots(b.cfg.Robots)),
	}
}

// Build renders every artefact.
func (b *Builder) Build(ctx context.Context) ([]Artifact, error) {
	sitemap, err := b.Sitemap(ctx)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", SitemapName, err)
	}
	feed, err := b.Feed(ctx)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", FeedName, err)
	}
	return []Artifact{sitemap, feed, b.Robots()}, nil
}
