package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celnetamit/hlwp/internal/config"
	"github.com/celnetamit/hlwp/internal/search"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[]"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, backendURL string, args ...string) (string, error) {
	t.Helper()
	load := func() (*config.Config, error) {
		return &config.Config{
			Site: config.SiteConfig{
				URL:         "https://article.stmjournals.com",
				Name:        "STM Journals",
				Environment: config.EnvironmentProduction,
			},
			WordPress: config.WordPressConfig{
				APIURL:    backendURL,
				Timeout:   2 * time.Second,
				RateLimit: 100,
				Burst:     10,
			},
			Catalog: config.CatalogConfig{Source: config.CatalogSourceFile},
			Search:  config.SearchConfig{DefaultLimit: search.DefaultLimit, MaxLimit: search.MaxLimit},
		}, nil
	}

	var out bytes.Buffer
	root := newRootCmd(load)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSearchCommand(t *testing.T) {
	backend := newBackend(t)

	out, err := execute(t, backend.URL, "search", "quantum", "computing", "--type", "article")
	require.NoError(t, err)

	var resp search.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "quantum computing", resp.Query)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "quantum-computing-breakthrough-2024", resp.Results[0].ID)
}

func TestSearchCommand_InvalidType(t *testing.T) {
	backend := newBackend(t)

	_, err := execute(t, backend.URL, "search", "quantum", "--type", "book")
	assert.Error(t, err)
}

func TestGetCommand(t *testing.T) {
	backend := newBackend(t)

	t.Run("catalog article by slug", func(t *testing.T) {
		out, err := execute(t, backend.URL, "get", "advanced-neural-interfaces-bci")
		require.NoError(t, err)

		var view ArticleView
		require.NoError(t, json.Unmarshal([]byte(out), &view))
		assert.Equal(t, "neural-interfaces-brain-computer-2024", view.ID)
		assert.Equal(t, "catalog", view.Source)
		assert.Contains(t, view.Citation, "STM Journals")
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := execute(t, backend.URL, "get", "no-such-article")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "article not found")
	})
}

func TestRobotsCommand(t *testing.T) {
	backend := newBackend(t)

	out, err := execute(t, backend.URL, "robots")
	require.NoError(t, err)
	assert.Contains(t, out, "Allow: /\n")
	assert.Contains(t, out, "Sitemap: https://article.stmjournals.com/sitemap.xml")
}

func TestSitemapCommand_IncludesCatalogArticles(t *testing.T) {
	backend := newBackend(t)

	out, err := execute(t, backend.URL, "sitemap")
	require.NoError(t, err)
	assert.Contains(t, out, "<urlset")
	assert.Contains(t, out, "https://article.stmjournals.com/article/quantum-computing-breakthrough-2024")
}

func TestCheckCommand(t *testing.T) {
	backend := newBackend(t)

	out, err := execute(t, backend.URL, "check", "--human")
	require.NoError(t, err)
	assert.Contains(t, out, "catalog: 2 journals, 3 articles")
	assert.Contains(t, out, "backend: WordPress ok")
}

func TestPublishCommand_RequiresBucket(t *testing.T) {
	backend := newBackend(t)

	_, err := execute(t, backend.URL, "publish")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish.bucket")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
