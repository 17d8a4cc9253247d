package seo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celnetamit/hlwp/internal/domain"
)

func metaValues(tags []MetaTag, name string) []string {
	var out []string
	for _, t := range tags {
		if t.Name == name {
			out = append(out, t.Content)
		}
	}
	return out
}

func TestArticleMeta(t *testing.T) {
	a := quantumArticle()
	url := testSite.ArticleURL(a.ID)
	tags := ArticleMeta(a, url, testSite)

	tests := []struct {
		name string
		want []string
	}{
		{"citation_title", []string{"Breakthrough Advances in Quantum Computing"}},
		{"citation_author", []string{"Dr. Sarah Chen", "Dr. Michael Rodriguez"}},
		{"citation_publication_date", []string{"2024-07-15"}},
		{"citation_journal_title", []string{"Nature Science & Technology"}},
		{"citation_publisher", []string{"STM Journals"}},
		{"citation_firstpage", []string{"123"}},
		{"citation_lastpage", []string{"138"}},
		{"citation_volume", []string{"628"}},
		{"citation_issue", []string{"8006"}},
		{"citation_doi", []string{"10.1038/s41586-024-07123-4"}},
		{"citation_issn", []string{"2157-846X"}},
		{"citation_pdf_url", []string{"/pdfs/quantum-computing-breakthrough-2024.pdf"}},
		{"citation_abstract_html_url", []string{url}},
		{"citation_fulltext_html_url", []string{url}},
		{"citation_language", []string{"en"}},
		{"dc.identifier", []string{"10.1038/s41586-024-07123-4"}},
		{"dc.type", []string{"Text"}},
		{"dc.subject", []string{"quantum computing, error correction"}},
		{"prism.startingPage", []string{"123"}},
		{"prism.endingPage", []string{"138"}},
		{"hw.author", []string{"Dr. Sarah Chen, Dr. Michael Rodriguez"}},
		{"hw.year", []string{"2024"}},
		{"og:type", []string{"article"}},
		{"og:url", []string{url}},
		{"twitter:card", []string{"summary_large_image"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, metaValues(tags, tt.name))
		})
	}

	for _, tag := range tags {
		assert.NotEmpty(t, tag.Content, tag.Name)
		if tag.Name == "og:title" {
			assert.True(t, tag.Property)
		}
	}
}

func TestArticleMeta_SparseRecord(t *testing.T) {
	a := &domain.Article{ID: "42", Title: "Sparse", Year: "2021"}
	a.Normalize()
	url := testSite.ArticleURL(a.ID)
	tags := ArticleMeta(a, url, testSite)

	assert.Empty(t, metaValues(tags, "citation_author"))
	assert.Empty(t, metaValues(tags, "citation_doi"))
	assert.Empty(t, metaValues(tags, "citation_firstpage"))
	assert.Equal(t, []string{"2021"}, metaValues(tags, "citation_publication_date"))
	assert.Equal(t, []string{"Journal Library"}, metaValues(tags, "citation_publisher"))
	assert.Equal(t, []string{url}, metaValues(tags, "dc.identifier"), "page url stands in for a missing DOI")
	assert.Equal(t, []string{UnknownAuthor}, metaValues(tags, "hw.author"))
}

func TestCollectionMeta(t *testing.T) {
	tags := CollectionMeta(testSite, testSite.URL+"/articles")
	assert.Equal(t, []string{"Journal Library - Article Collection"}, metaValues(tags, "citation_title"))
	assert.Equal(t, []string{"Journal Library Team"}, metaValues(tags, "citation_author"))
}

func TestArticleJSONLD(t *testing.T) {
	a := quantumArticle()
	doc := ArticleJSONLD(a, testSite.ArticleURL(a.ID), testSite)

	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &got))

	assert.Equal(t, "https://schema.org", got["@context"])
	assert.Equal(t, "ScholarlyArticle", got["@type"])
	assert.Equal(t, "Breakthrough Advances in Quantum Computing", got["headline"])
	assert.Equal(t, "2024-07-15T00:00:00Z", got["datePublished"])
	assert.Len(t, got["author"], 2)
	assert.Equal(t, "quantum computing, error correction", got["keywords"])

	ids := got["identifier"].([]interface{})
	require.Len(t, ids, 1)
	assert.Equal(t, "DOI", ids[0].(map[string]interface{})["propertyID"])

	partOf := got["isPartOf"].(map[string]interface{})
	assert.Equal(t, "Periodical", partOf["@type"])
	assert.Equal(t, "2157-846X", partOf["issn"])

	assert.NotContains(t, got, "image")
}

func TestArticleJSONLD_UnknownAuthor(t *testing.T) {
	doc := ArticleJSONLD(&domain.Article{ID: "1", Title: "T"}, "u", testSite)
	require.Len(t, doc.Author, 1)
	assert.Equal(t, UnknownAuthor, doc.Author[0].Name)
	assert.Nil(t, doc.Identifier)
	assert.Nil(t, doc.IsPartOf)
	assert.Equal(t, "Journal Library", doc.Publisher.Name)
}

func TestJournalBreadcrumbs(t *testing.T) {
	bc := JournalBreadcrumbs(testSite, "quantum-advances")
	require.Len(t, bc.ItemListElement, 3)
	assert.Equal(t, "Home", bc.ItemListElement[0].Name)
	assert.Equal(t, testSite.URL, bc.ItemListElement[0].Item)
	assert.Equal(t, testSite.URL+"/#journals", bc.ItemListElement[1].Item)
	assert.Equal(t, 3, bc.ItemListElement[2].Position)
	assert.Equal(t, testSite.URL+"/journal/quantum-advances", bc.ItemListElement[2].Item)
}

func TestCollectionJSONLD_CapsItems(t *testing.T) {
	articles := make([]*domain.Article, 60)
	for i := range articles {
		articles[i] = &domain.Article{ID: "a", Title: "T"}
	}

	doc := CollectionJSONLD(testSite, articles)
	assert.Equal(t, 60, doc.MainEntity.NumberOfItems)
	assert.Len(t, doc.MainEntity.ItemListElement, 50)
	assert.Equal(t, testSite.URL+"/articles", doc.URL)
}

func TestWebSiteJSONLD(t *testing.T) {
	doc := WebSiteJSONLD(testSite)
	assert.Equal(t, "https://article.stmjournals.com/search?q={search_term_string}", doc.PotentialAction.Target)
	assert.Equal(t, "required name=search_term_string", doc.PotentialAction.QueryInput)
}
