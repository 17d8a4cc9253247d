package seo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/robotstxt"
)

func TestRobots_Production(t *testing.T) {
	body := Robots(RobotsPolicy{SiteURL: testSite.URL, Production: true})

	robots, err := robotstxt.FromString(body)
	require.NoError(t, err)

	tests := []struct {
		path    string
		allowed bool
	}{
		{"/", true},
		{"/article/quantum-computing-breakthrough-2024", true},
		{"/journal/quantum-advances", true},
		{"/sitemap.xml", true},
		{"/api/search", false},
		{"/admin/settings", false},
		{"/private/x", false},
		{"/temp/upload", false},
		{"/drafts/x", true},
		{"/user/1", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.allowed, robots.TestAgent(tt.path, "Googlebot"))
		})
	}

	assert.Equal(t, []string{testSite.URL + "/sitemap.xml"}, robots.Sitemaps)
	assert.Contains(t, body, "Host: "+testSite.URL+"\n")
	assert.Contains(t, body, "Disallow: /*.json\n")
	assert.Contains(t, body, "Disallow: /search?*\n")
}

func TestRobots_OptionalBlocks(t *testing.T) {
	body := Robots(RobotsPolicy{SiteURL: testSite.URL, Production: true, BlockDrafts: true, BlockUserContent: true})

	robots, err := robotstxt.FromString(body)
	require.NoError(t, err)

	for _, path := range []string{"/drafts/a", "/preview/a", "/user/1", "/profile/me"} {
		assert.False(t, robots.TestAgent(path, "Bingbot"), path)
	}
}

func TestRobots_NonProduction(t *testing.T) {
	body := Robots(RobotsPolicy{SiteURL: "https://staging.example.org"})

	robots, err := robotstxt.FromString(body)
	require.NoError(t, err)

	assert.False(t, robots.TestAgent("/", "Googlebot"))
	assert.False(t, robots.TestAgent("/article/1", "Googlebot"))
	assert.Equal(t, []string{"https://staging.example.org/sitemap.xml"}, robots.Sitemaps)
	assert.NotContains(t, body, "Host:")
}
