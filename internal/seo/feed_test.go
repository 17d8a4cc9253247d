package seo

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celnetamit/hlwp/internal/domain"
)

func TestFeedItem(t *testing.T) {
	post := &domain.Article{
		ID:            "123",
		Slug:          "quantum-advances",
		Title:         "Quantum &amp; Beyond",
		Excerpt:       "<p>" + strings.Repeat("a", 600) + "</p>",
		Authors:       []string{"Ada", "Grace"},
		Subjects:      []string{"Physics", "Computing"},
		PublishedDate: time.Date(2024, 7, 15, 9, 30, 0, 0, time.UTC),
	}

	item := FeedItem(testSite, post)
	assert.Equal(t, "Quantum &amp; Beyond", item.Title.Text)
	assert.Equal(t, testSite.URL+"/journal/quantum-advances", item.Link)
	assert.Equal(t, testSite.URL+"/wp/123", item.GUID.Value)
	assert.Equal(t, "false", item.GUID.IsPermaLink)
	assert.Len(t, item.Description.Text, 500)
	assert.Equal(t, "Mon, 15 Jul 2024 09:30:00 GMT", item.PubDate)
	assert.Equal(t, "Ada, Grace", item.Author.Text)
	require.NotNil(t, item.Category)
	assert.Equal(t, "Physics, Computing", item.Category.Text)
}

func TestFeedItem_Defaults(t *testing.T) {
	post := &domain.Article{ID: "9", Link: "https://journals.example.org/?p=9"}

	item := FeedItem(testSite, post)
	assert.Equal(t, "Item #9", item.Title.Text)
	assert.Equal(t, "https://journals.example.org/?p=9", item.Link)
	assert.Equal(t, UnknownAuthor, item.Author.Text)
	assert.Nil(t, item.Category)
	assert.Empty(t, item.PubDate)
}

func TestWriteFeed(t *testing.T) {
	now := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	feed := BuildFeed(testSite, []domain.Article{
		{ID: "1", Slug: "one", Title: "One", Excerpt: "First <b>post</b>"},
		{ID: "2", Slug: "two", Title: "Two ]]> tricky"},
	}, now)

	var buf bytes.Buffer
	require.NoError(t, WriteFeed(&buf, feed))
	out := buf.String()

	assert.Contains(t, out, `<rss version="2.0">`)
	assert.Contains(t, out, "<title>"+DefaultFeedTitle+"</title>")
	assert.Contains(t, out, "<language>en-us</language>")
	assert.Contains(t, out, "<lastBuildDate>Sun, 01 Sep 2024 00:00:00 GMT</lastBuildDate>")
	assert.Contains(t, out, "<![CDATA[First post]]>")
	assert.Contains(t, out, `<guid isPermaLink="false">https://article.stmjournals.com/wp/1</guid>`)
	assert.NotContains(t, out, "<category>")

	var doc RSS
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Channel.Items, 2)
	assert.Equal(t, "Two ]]> tricky", doc.Channel.Items[1].Title.Text)
}
