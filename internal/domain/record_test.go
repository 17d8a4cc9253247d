package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArticle_Normalize(t *testing.T) {
	a := Article{
		ID:       " 42 ",
		Title:    "  <em>Quantum</em> Advances ",
		Authors:  []string{" Dr. Sarah Chen ", "", "Prof. Michael Rodriguez"},
		Keywords: nil,
		Subjects: []string{"Physics", "Physics"},
	}

	a.Normalize()

	assert.Equal(t, "42", a.ID)
	assert.Equal(t, "<em>Quantum</em> Advances", a.Title)
	assert.Equal(t, []string{"Dr. Sarah Chen", "Prof. Michael Rodriguez"}, a.Authors)
	assert.NotNil(t, a.Keywords)
	assert.Empty(t, a.Keywords)
	assert.NotNil(t, a.References)
	assert.NotNil(t, a.Categories)
	assert.Equal(t, []string{"Physics", "Physics"}, a.Subjects, "duplicates are kept")
}

func TestArticle_Normalize_KeepsAuthorsEmpty(t *testing.T) {
	a := Article{ID: "1"}
	a.Normalize()

	require.NotNil(t, a.Authors)
	assert.Empty(t, a.Authors)
}

func TestJournal_Normalize_PropagatesToArticles(t *testing.T) {
	j := Journal{
		ID:        "nature-science-tech",
		Title:     "Nature Science & Technology",
		Publisher: "STM Journals",
		ISSN:      "2157-846X",
		Articles: []Article{
			{ID: "a1"},
			{ID: "a2", Publisher: "Other Press"},
		},
	}

	j.Normalize()

	assert.Equal(t, "nature-science-tech", j.Slug)
	assert.Equal(t, "Nature Science & Technology", j.Articles[0].JournalTitle)
	assert.Equal(t, "STM Journals", j.Articles[0].Publisher)
	assert.Equal(t, "2157-846X", j.Articles[0].ISSN)
	assert.Equal(t, "Other Press", j.Articles[1].Publisher)
}

func TestArticle_PublicationYear(t *testing.T) {
	date := time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		article  Article
		wantYear int
		wantOK   bool
	}{
		{name: "explicit year wins", article: Article{Year: "2023", PublishedDate: date}, wantYear: 2023, wantOK: true},
		{name: "falls back to date", article: Article{PublishedDate: date}, wantYear: 2024, wantOK: true},
		{name: "non numeric year uses date", article: Article{Year: "n/a", PublishedDate: date}, wantYear: 2024, wantOK: true},
		{name: "unknown", article: Article{}, wantYear: 0, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			year, ok := tt.article.PublicationYear()
			assert.Equal(t, tt.wantYear, year)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestArticle_EffectiveSubjects(t *testing.T) {
	parent := &Journal{Subjects: []string{"Science", "Technology"}}

	own := Article{Subjects: []string{"Quantum Physics"}}
	assert.Equal(t, []string{"Quantum Physics"}, own.EffectiveSubjects(parent))

	inherited := Article{Subjects: []string{}}
	assert.Equal(t, []string{"Science", "Technology"}, inherited.EffectiveSubjects(parent))
	assert.Empty(t, inherited.EffectiveSubjects(nil))
}

func TestArticle_MatchesKey(t *testing.T) {
	a := Article{ID: "123", Slug: "quantum-advances"}

	assert.True(t, a.MatchesKey("123"))
	assert.True(t, a.MatchesKey("quantum-advances"))
	assert.False(t, a.MatchesKey(""))
	assert.False(t, a.MatchesKey("other"))
	assert.Equal(t, "quantum-advances", a.Key())
	assert.Equal(t, "123", (&Article{ID: "123"}).Key())
}

func TestErrors_Unwrap(t *testing.T) {
	assert.True(t, errors.Is(NewNotFoundError("article", "x"), ErrNotFound))
	assert.True(t, errors.Is(NewValidationError("limit", "too big"), ErrInvalidInput))
	assert.True(t, errors.Is(NewRateLimitError("WordPress", time.Second), ErrRateLimited))
	assert.True(t, errors.Is(NewExternalAPIError("WordPress", 502, "bad gateway", nil), ErrServiceUnavailable))

	cause := errors.New("boom")
	apiErr := NewExternalAPIError("WordPress", 200, "malformed response", cause)
	assert.True(t, errors.Is(apiErr, cause))
	assert.True(t, errors.Is(apiErr, ErrServiceUnavailable), "a decode failure is still a backend outage")
	assert.Equal(t, "WordPress API error (status 200): malformed response", apiErr.Error())
}

func TestErrors_Messages(t *testing.T) {
	assert.Equal(t, "journal not found: nature", NewNotFoundError("journal", "nature").Error())
	assert.Equal(t, "article not found", NewNotFoundError("article", "").Error())
	assert.Equal(t, "rate limited by WordPress", NewRateLimitError("WordPress", 0).Error())
	assert.Equal(t, "rate limited by WordPress: retry after 30s", NewRateLimitError("WordPress", 30*time.Second).Error())
	assert.Equal(t, "validation error: limit: must be at most 100", NewValidationError("limit", "must be at most 100").Error())
}
