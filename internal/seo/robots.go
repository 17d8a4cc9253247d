package seo

import "strings"

// RobotsPolicy selects the robots.txt rules for a deployment.
type RobotsPolicy struct {
	SiteURL string

	// Production enables crawling. Any other deployment disallows everything.
	Production bool

	BlockDrafts      bool
	BlockUserContent bool
}

// Disallowed returns the paths closed to crawlers in production.
func (p RobotsPolicy) Disallowed() []string {
	paths := []string{"/api/", "/admin/", "/private/", "/temp/", "/*.json", "/search?*"}
	if p.BlockDrafts {
		paths = append(paths, "/drafts/", "/preview/")
	}
	if p.BlockUserContent {
		paths = append(paths, "/user/", "/profile/")
	}
	return paths
}

// Robots renders robots.txt for the policy.
func Robots(p RobotsPolicy) string {
	var b strings.Builder
	b.WriteString("User-agent: *\n")

	if !p.Production {
		b.WriteString("Disallow: /\n\n")
		b.WriteString("Sitemap: " + p.SiteURL + "/sitemap.xml\n")
		return b.String()
	}

	b.WriteString("Allow: /\n")
	for _, path := range p.Disallowed() {
		b.WriteString("Disallow: " + path + "\n")
	}
	b.WriteString("\n")
	b.WriteString("Host: " + p.SiteURL + "\n")
	b.WriteString("Sitemap: " + p.SiteURL + "/sitemap.xml\n")
	return b.String()
}
