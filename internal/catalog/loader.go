package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/celnetamit/hlwp/internal/contentsource"
	"github.com/celnetamit/hlwp/internal/domain"
)

//go:embed data/journals.yaml
var defaultCatalog []byte

// Loader produces a complete catalog snapshot.
type Loader interface {
	Load(ctx context.Context) ([]domain.Journal, error)
}

// FileLoader reads the catalog from a YAML file. An empty Path loads the
// catalog embedded in the binary.
type FileLoader struct {
	Path string
}

// NewFileLoader creates a FileLoader for path.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{Path: path}
}

// Load implements Loader.
func (l *FileLoader) Load(ctx context.Context) ([]domain.Journal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data := defaultCatalog
	if l.Path != "" {
		b, err := os.ReadFile(l.Path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", l.Path, err)
		}
		data = b
	}
	return ParseYAML(data)
}

// ParseYAML decodes a catalog document and normalizes every record.
func ParseYAML(data []byte) ([]domain.Journal, error) {
	var doc catalogFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	journals := make([]domain.Journal, 0, len(doc.Journals))
	seen := make(map[string]bool, len(doc.Journals))
	for i, fj := range doc.Journals {
		j, err := fj.toDomain()
		if err != nil {
			return nil, fmt.Errorf("journal %d: %w", i, err)
		}
		if seen[j.ID] {
			return nil, fmt.Errorf("journal %d: duplicate id %q", i, j.ID)
		}
		seen[j.ID] = true
		journals = append(journals, j)
	}
	return journals, nil
}

type catalogFile struct {
	Journals []journalFile `yaml:"journals"`
}

type journalFile struct {
	ID              string        `yaml:"id"`
	Slug            string        `yaml:"slug"`
	Title           string        `yaml:"title"`
	Description     string        `yaml:"description"`
	Subjects        []string      `yaml:"subjects"`
	Publisher       string        `yaml:"publisher"`
	ISSN            string        `yaml:"issn"`
	EISSN           string        `yaml:"eissn"`
	LastUpdated     string        `yaml:"last_updated"`
	PublishedDate   string        `yaml:"published_date"`
	ActivelyUpdated bool          `yaml:"actively_updated"`
	Articles        []articleFile `yaml:"articles"`
}

type articleFile struct {
	ID            string   `yaml:"id"`
	Slug          string   `yaml:"slug"`
	Title         string   `yaml:"title"`
	Authors       []string `yaml:"authors"`
	Abstract      string   `yaml:"abstract"`
	FullText      string   `yaml:"full_text"`
	Keywords      []string `yaml:"keywords"`
	Subjects      []string `yaml:"subjects"`
	DOI           string   `yaml:"doi"`
	PublishedDate string   `yaml:"published_date"`
	Year          string   `yaml:"year"`
	Volume        string   `yaml:"volume"`
	Issue         string   `yaml:"issue"`
	Pages         string   `yaml:"pages"`
	PDFURL        string   `yaml:"pdf_url"`
	Citations     int      `yaml:"citations"`
	Language      string   `yaml:"language"`
	References    []string `yaml:"references"`
	ImageURL      string   `yaml:"image_url"`
}

func (f journalFile) toDomain() (domain.Journal, error) {
	if strings.TrimSpace(f.ID) == "" {
		return domain.Journal{}, domain.NewValidationError("id", "journal id is required")
	}
	lastUpdated, err := parseDate(f.LastUpdated)
	if err != nil {
		return domain.Journal{}, domain.NewValidationError("last_updated", err.Error())
	}
	published, err := parseDate(f.PublishedDate)
	if err != nil {
		return domain.Journal{}, domain.NewValidationError("published_date", err.Error())
	}

	j := domain.Journal{
		ID:              f.ID,
		Slug:            f.Slug,
		Title:           f.Title,
		Description:     f.Description,
		Subjects:        f.Subjects,
		Publisher:       f.Publisher,
		ISSN:            f.ISSN,
		EISSN:           f.EISSN,
		LastUpdated:     lastUpdated,
		PublishedDate:   published,
		ActivelyUpdated: f.ActivelyUpdated,
		Articles:        make([]domain.Article, 0, len(f.Articles)),
	}
	for _, fa := range f.Articles {
		a, err := fa.toDomain()
		if err != nil {
			return domain.Journal{}, fmt.Errorf("journal %s: %w", f.ID, err)
		}
		j.Articles = append(j.Articles, a)
	}
	j.Normalize()
	return j, nil
}

func (f articleFile) toDomain() (domain.Article, error) {
	if strings.TrimSpace(f.ID) == "" {
		return domain.Article{}, domain.NewValidationError("id", "article id is required")
	}
	published, err := parseDate(f.PublishedDate)
	if err != nil {
		return domain.Article{}, domain.NewValidationError("published_date", fmt.Sprintf("article %s: %v", f.ID, err))
	}
	return domain.Article{
		ID:            f.ID,
		Slug:          f.Slug,
		Title:         f.Title,
		Authors:       f.Authors,
		Abstract:      f.Abstract,
		Excerpt:       f.Abstract,
		FullText:      f.FullText,
		Keywords:      f.Keywords,
		Subjects:      f.Subjects,
		DOI:           f.DOI,
		PublishedDate: published,
		Year:          f.Year,
		Volume:        f.Volume,
		Issue:         f.Issue,
		Pages:         f.Pages,
		PDFURL:        f.PDFURL,
		Citations:     f.Citations,
		Language:      f.Language,
		References:    f.References,
		ImageURL:      f.ImageURL,
	}, nil
}

// parseDate accepts RFC 3339 timestamps and bare dates. Empty means unknown.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized date %q", s)
	}
	return t, nil
}

// WordPressLoader builds the catalog from the content backend: one journal
// per category, holding the posts filed under it.
type WordPressLoader struct {
	source   contentsource.ContentSource
	perPage  int
	maxPages int
}

// NewWordPressLoader creates a loader that pages through at most maxPages
// pages of posts. A non-positive maxPages means no cap.
func NewWordPressLoader(source contentsource.ContentSource, maxPages int) *WordPressLoader {
	return &WordPressLoader{
		source:   source,
		perPage:  contentsource.MaxPerPage,
		maxPages: maxPages,
	}
}

// Load implements Loader. A degraded listing fails the load so that the
// caller keeps its previous snapshot.
func (l *WordPressLoader) Load(ctx context.Context) ([]domain.Journal, error) {
	categories, err := l.source.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	var posts []domain.Article
	for page := 1; l.maxPages <= 0 || page <= l.maxPages; page++ {
		res, err := l.source.List(ctx, contentsource.ListParams{
			Page:    page,
			PerPage: l.perPage,
			OrderBy: contentsource.OrderByDate,
			Order:   contentsource.OrderDesc,
		})
		if err != nil {
			return nil, fmt.Errorf("list posts page %d: %w", page, err)
		}
		if res.Degraded() {
			return nil, fmt.Errorf("list posts page %d: %w", page, res.BackendErr)
		}
		posts = append(posts, res.Articles...)
		if page >= res.TotalPages || len(res.Articles) == 0 {
			break
		}
	}

	return groupByCategory(categories, posts), nil
}

// groupByCategory files posts under their categories. Categories without
// posts are dropped; a post in several categories appears in each.
func groupByCategory(categories []contentsource.Category, posts []domain.Article) []domain.Journal {
	byID := make(map[int]int, len(categories))
	journals := make([]domain.Journal, 0, len(categories))
	for _, c := range categories {
		name := strings.TrimSpace(c.Name)
		if name == "" || strings.EqualFold(c.Slug, "uncategorized") {
			continue
		}
		byID[c.ID] = len(journals)
		journals = append(journals, domain.Journal{
			ID:       strconv.Itoa(c.ID),
			Slug:     c.Slug,
			Title:    name,
			Subjects: []string{name},
		})
	}

	for _, p := range posts {
		for _, cid := range p.Categories {
			idx, ok := byID[cid]
			if !ok {
				continue
			}
			j := &journals[idx]
			j.Articles = append(j.Articles, p)
			if p.Modified.After(j.LastUpdated) {
				j.LastUpdated = p.Modified
			}
		}
	}

	out := journals[:0]
	for _, j := range journals {
		if len(j.Articles) == 0 {
			continue
		}
		j.ActivelyUpdated = true
		j.Normalize()
		out = append(out, j)
	}
	sort.SliceStable(out, func(i, k int) bool {
		return out[i].LastUpdated.After(out[k].LastUpdated)
	})
	return out
}
