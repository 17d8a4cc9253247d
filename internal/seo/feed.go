package seo

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/celnetamit/hlwp/internal/domain"
)

// feedDescriptionLength bounds RSS item descriptions.
const feedDescriptionLength = 500

// DefaultFeedTitle is the channel title when the site sets none.
const DefaultFeedTitle = "STM Journals - Latest Research"

type cdata struct {
	Text string `xml:",cdata"`
}

type rssGUID struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// RSSItem is one <item> of the feed.
type RSSItem struct {
	Title       cdata   `xml:"title"`
	Link        string  `xml:"link"`
	GUID        rssGUID `xml:"guid"`
	Description cdata   `xml:"description"`
	PubDate     string  `xml:"pubDate,omitempty"`
	Author      cdata   `xml:"author"`
	Category    *cdata  `xml:"category,omitempty"`
}

// RSSChannel is the feed channel.
type RSSChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Items         []RSSItem `xml:"item"`
}

// RSS is an RSS 2.0 document.
type RSS struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel RSSChannel `xml:"channel"`
}

// FeedItem projects one backend post into an RSS item.
func FeedItem(site Site, p *domain.Article) RSSItem {
	title := p.Title
	if title == "" {
		title = "Item #" + p.ID
	}
	link := p.Link
	if link == "" {
		link = site.JournalURL(p.Slug)
	}
	excerpt := p.Excerpt
	if excerpt == "" {
		excerpt = p.Abstract
	}

	item := RSSItem{
		Title:       cdata{title},
		Link:        link,
		GUID:        rssGUID{IsPermaLink: "false", Value: site.URL + "/wp/" + p.ID},
		Description: cdata{domain.Truncate(strings.TrimSpace(domain.StripHTML(excerpt)), feedDescriptionLength)},
		Author:      cdata{AuthorList(p.Authors)},
	}
	if !p.PublishedDate.IsZero() {
		item.PubDate = p.PublishedDate.UTC().Format(http.TimeFormat)
	}
	if len(p.Subjects) > 0 {
		item.Category = &cdata{strings.Join(p.Subjects, ", ")}
	}
	return item
}

// BuildFeed returns the RSS document for posts, built at now.
func BuildFeed(site Site, posts []domain.Article, now time.Time) RSS {
	title := site.FeedTitle
	if title == "" {
		title = DefaultFeedTitle
	}
	items := make([]RSSItem, len(posts))
	for i := range posts {
		items[i] = FeedItem(site, &posts[i])
	}
	return RSS{
		Version: "2.0",
		Channel: RSSChannel{
			Title:         title,
			Link:          site.URL,
			Description:   "Latest academic research articles and journals",
			Language:      "en-us",
			LastBuildDate: now.UTC().Format(http.TimeFormat),
			Items:         items,
		},
	}
}

// WriteFeed encodes the feed as XML.
func WriteFeed(w io.Writer, feed RSS) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("write feed header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(feed); err != nil {
		return fmt.Errorf("encode feed: %w", err)
	}
	return enc.Close()
}
