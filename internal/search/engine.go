// Package search ranks journals and articles against a free-text query.
//
// Scoring is plain substring counting: the query is lower-cased, split on
// whitespace and stripped of tokens of two characters or fewer. Each
// remaining token adds its occurrence count in the record's searchable text
// to the record's score. Records that score zero are dropped. Article
// filters act as gates that zero the score; they never weigh in.
package search

import (
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/celnetamit/hlwp/internal/domain"
)

// minTokenLen is the shortest token that takes part in scoring.
const minTokenLen = 3

// Result is one ranked match.
type Result struct {
	Type           string   `json:"type"`
	ID             string   `json:"id"`
	Slug           string   `json:"slug,omitempty"`
	Title          string   `json:"title"`
	Authors        []string `json:"authors,omitempty"`
	Journal        string   `json:"journal,omitempty"`
	Abstract       string   `json:"abstract,omitempty"`
	PublishedDate  string   `json:"publishedDate,omitempty"`
	RelevanceScore int      `json:"relevanceScore"`
	Subjects       []string `json:"subjects,omitempty"`
	Keywords       []string `json:"keywords,omitempty"`
}

// Pagination describes the returned window.
type Pagination struct {
	Offset  int  `json:"offset"`
	Limit   int  `json:"limit"`
	HasMore bool `json:"hasMore"`
}

// Response is a page of ranked results.
type Response struct {
	Results    []Result   `json:"results"`
	Total      int        `json:"total"`
	Query      string     `json:"query"`
	Filters    Filters    `json:"filters"`
	Pagination Pagination `json:"pagination"`
}

// Empty returns the zero-result response for a blank query.
func Empty(limit int) Response {
	return Response{
		Results:    []Result{},
		Query:      "",
		Filters:    Filters{},
		Pagination: Pagination{Offset: 0, Limit: limit},
	}
}

// Tokenize lower-cases the query and returns its scoring tokens.
func Tokenize(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	tokens := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= minTokenLen {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// Score sums the non-overlapping occurrences of every token in haystack.
func Score(haystack string, tokens []string) int {
	score := 0
	for _, t := range tokens {
		score += strings.Count(haystack, t)
	}
	return score
}

func journalText(j *domain.Journal) string {
	return strings.ToLower(j.Title + " " + j.Description + " " + strings.Join(j.Subjects, " "))
}

func articleText(a *domain.Article) string {
	return strings.ToLower(a.Title + " " + a.Abstract + " " +
		strings.Join(a.Keywords, " ") + " " + strings.Join(a.Authors, " "))
}

// admits reports whether the article passes every set filter. An article
// missing the filtered field does not pass.
func (f Filters) admits(a *domain.Article, parent *domain.Journal) bool {
	if f.Year != "" {
		want, err := strconv.Atoi(f.Year)
		if err != nil {
			return false
		}
		got, ok := a.PublicationYear()
		if !ok || got != want {
			return false
		}
	}
	if f.Subject != "" && !containsFold(a.EffectiveSubjects(parent), f.Subject) {
		return false
	}
	if f.Author != "" && !containsFold(a.Authors, f.Author) {
		return false
	}
	return true
}

func containsFold(values []string, needle string) bool {
	needle = strings.ToLower(needle)
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

// Rank scores every journal and article in catalog order and returns the
// matches sorted by score, highest first. Equal scores keep catalog order
// (each journal followed by its articles).
func Rank(journals []domain.Journal, query string, filters Filters) []Result {
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return []Result{}
	}

	results := make([]Result, 0)
	for i := range journals {
		j := &journals[i]
		if score := Score(journalText(j), tokens); score > 0 {
			results = append(results, journalResult(j, score))
		}

		for k := range j.Articles {
			a := &j.Articles[k]
			score := Score(articleText(a), tokens)
			if score == 0 || !filters.admits(a, j) {
				continue
			}
			results = append(results, articleResult(a, j, score))
		}
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].RelevanceScore > results[b].RelevanceScore
	})
	return results
}

// Run executes req against journals. req must be normalized.
func Run(journals []domain.Journal, req Request) Response {
	if strings.TrimSpace(req.Query) == "" {
		return Empty(req.Limit)
	}

	ranked := Rank(journals, req.Query, req.Filters)
	if req.Type == TypeJournal || req.Type == TypeArticle {
		kept := ranked[:0]
		for _, r := range ranked {
			if r.Type == req.Type {
				kept = append(kept, r)
			}
		}
		ranked = kept
	}

	total := len(ranked)
	start := min(max(req.Offset, 0), total)
	end := min(start+max(req.Limit, 0), total)
	page := make([]Result, end-start)
	copy(page, ranked[start:end])

	return Response{
		Results: page,
		Total:   total,
		Query:   req.Query,
		Filters: req.Filters,
		Pagination: Pagination{
			Offset:  req.Offset,
			Limit:   req.Limit,
			HasMore: req.Offset+req.Limit < total,
		},
	}
}

func journalResult(j *domain.Journal, score int) Result {
	return Result{
		Type:           TypeJournal,
		ID:             j.ID,
		Slug:           j.Slug,
		Title:          j.Title,
		Abstract:       j.Description,
		Subjects:       j.Subjects,
		RelevanceScore: score,
	}
}

func articleResult(a *domain.Article, j *domain.Journal, score int) Result {
	r := Result{
		Type:           TypeArticle,
		ID:             a.ID,
		Slug:           a.Slug,
		Title:          a.Title,
		Authors:        a.Authors,
		Journal:        j.Title,
		Abstract:       a.Abstract,
		Subjects:       a.Subjects,
		Keywords:       a.Keywords,
		RelevanceScore: score,
	}
	if !a.PublishedDate.IsZero() {
		r.PublishedDate = a.PublishedDate.UTC().Format(time.RFC3339)
	}
	return r
}
