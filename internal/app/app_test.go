package app

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celnetamit/hlwp/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Site: config.SiteConfig{
			URL:         "https://article.stmjournals.com",
			Name:        "STM Journals",
			FeedTitle:   "Latest",
			Environment: config.EnvironmentStaging,
			BlockDrafts: true,
		},
		WordPress: config.WordPressConfig{
			APIURL:      "https://journals.example.org/wp-json/wp/v2",
			RateLimit:   5,
			Burst:       5,
			FeedSize:    20,
			SitemapSize: 40,
		},
		Catalog: config.CatalogConfig{Source: config.CatalogSourceFile},
		Search:  config.SearchConfig{DefaultLimit: 20, MaxLimit: 100},
	}
}

func TestSiteAndRobotsPolicy(t *testing.T) {
	cfg := testConfig()

	site := Site(cfg)
	assert.Equal(t, "https://article.stmjournals.com", site.URL)
	assert.Equal(t, "Latest", site.FeedTitle)

	policy := RobotsPolicy(cfg)
	assert.False(t, policy.Production)
	assert.True(t, policy.BlockDrafts)

	cfg.Site.Environment = config.EnvironmentProduction
	assert.True(t, RobotsPolicy(cfg).Production)
}

func TestNew_LoadsEmbeddedCatalog(t *testing.T) {
	c := New(testConfig(), zerolog.Nop(), nil)

	assert.Equal(t, "WordPress", c.Source.Name())
	assert.False(t, c.Catalog.Loaded())

	_, err := c.Catalog.Reload(context.Background())
	require.NoError(t, err)
	assert.Len(t, c.Catalog.Journals(), 2)
	assert.Equal(t, 20, c.Search.DefaultLimit())
}

func TestSchedule(t *testing.T) {
	c := cron.New(cron.WithSeconds())
	var runs atomic.Int32

	err := Schedule(context.Background(), c, "* * * * * *", time.Second, func(ctx context.Context) {
		_, ok := ctx.Deadline()
		if ok {
			runs.Add(1)
		}
	})
	require.NoError(t, err)

	c.Start()
	defer c.Stop()
	assert.Eventually(t, func() bool { return runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)

	assert.Error(t, Schedule(context.Background(), cron.New(), "not a spec", time.Second, func(context.Context) {}))
}
