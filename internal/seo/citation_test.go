package seo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/celnetamit/hlwp/internal/domain"
)

func quantumArticle() *domain.Article {
	a := &domain.Article{
		ID:            "quantum-computing-breakthrough-2024",
		Slug:          "quantum-computing-breakthrough-advances",
		Title:         "Breakthrough Advances in <em>Quantum</em> Computing",
		Authors:       []string{"Dr. Sarah Chen", "Dr. Michael Rodriguez"},
		Abstract:      "<p>This comprehensive study presents advances in quantum error correction.</p>",
		Keywords:      []string{"quantum computing", "error correction"},
		DOI:           "10.1038/s41586-024-07123-4",
		PublishedDate: time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC),
		Volume:        "628",
		Issue:         "8006",
		Pages:         "123-138",
		Publisher:     "STM Journals",
		ISSN:          "2157-846X",
		JournalTitle:  "Nature Science & Technology",
		PDFURL:        "/pdfs/quantum-computing-breakthrough-2024.pdf",
	}
	a.Normalize()
	return a
}

var testSite = Site{URL: "https://article.stmjournals.com", Name: "Journal Library"}

func TestAuthorList(t *testing.T) {
	assert.Equal(t, UnknownAuthor, AuthorList(nil))
	assert.Equal(t, UnknownAuthor, AuthorList([]string{}))
	assert.Equal(t, "Ada, Grace", AuthorList([]string{"Ada", "Grace"}))
}

func TestAuthorList_DoesNotTouchRecord(t *testing.T) {
	a := &domain.Article{ID: "x", Title: "No authors"}
	a.Normalize()

	assert.Contains(t, CitationString(a, "Site"), UnknownAuthor)
	assert.Empty(t, a.Authors)
	assert.NotNil(t, a.Authors)
}

func TestCitationString(t *testing.T) {
	tests := []struct {
		name    string
		article *domain.Article
		want    string
	}{
		{
			name:    "full record",
			article: quantumArticle(),
			want:    "Dr. Sarah Chen, Dr. Michael Rodriguez (2024). Breakthrough Advances in Quantum Computing. STM Journals.",
		},
		{
			name:    "explicit year and site publisher",
			article: &domain.Article{Title: "Notes", Year: "2019", Authors: []string{"Ada"}},
			want:    "Ada (2019). Notes. Journal Library.",
		},
		{
			name:    "nothing known",
			article: &domain.Article{Title: "Bare"},
			want:    "Unknown Author (). Bare. Journal Library.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CitationString(tt.article, testSite.Name))
		})
	}
}

func TestFormattedCitation(t *testing.T) {
	assert.Equal(t,
		"Dr. Sarah Chen, Dr. Michael Rodriguez. (2024). Breakthrough Advances in Quantum Computing. STM Journals, 628(8006), 123-138. https://doi.org/10.1038/s41586-024-07123-4",
		FormattedCitation(quantumArticle()))

	assert.Equal(t,
		"Unknown Author. (2020). Bare. STM Journals.",
		FormattedCitation(&domain.Article{Title: "Bare", Year: "2020"}))
}

func TestPageRange(t *testing.T) {
	first, last := PageRange("123-138")
	assert.Equal(t, "123", first)
	assert.Equal(t, "138", last)

	first, last = PageRange("e1001")
	assert.Equal(t, "e1001", first)
	assert.Empty(t, last)
}

func TestDescription(t *testing.T) {
	a := quantumArticle()
	assert.Equal(t, "This comprehensive study presents advances in quantum error correction.", Description(a, 160))
	assert.Equal(t, "This", Description(a, 4))
}
