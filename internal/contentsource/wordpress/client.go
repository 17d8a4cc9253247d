// Package wordpress implements contentsource.ContentSource on top of the
// WordPress REST API (wp-json/wp/v2).
package wordpress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/celnetamit/hlwp/internal/contentsource"
	"github.com/celnetamit/hlwp/internal/domain"
	"github.com/celnetamit/hlwp/internal/observability"
)

const (
	// DefaultBaseURL is the default WordPress REST base URL.
	DefaultBaseURL = "https://journals.stmjournals.com/wp-json/wp/v2"

	// DefaultRateLimit is the default rate limit for requests per second.
	DefaultRateLimit = 10.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 10

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	// sourceName labels logs, metrics and errors.
	sourceName = "WordPress"

	// metricsSource is the metrics label for this backend.
	metricsSource = "wordpress"

	// maxBodySize bounds decoded response bodies.
	maxBodySize = 10 << 20

	// wpTimeLayout is the layout of WordPress date fields (no zone; *_gmt is UTC).
	wpTimeLayout = "2006-01-02T15:04:05"
)

var numericKey = regexp.MustCompile(`^\d+$`)

// Config holds configuration for the WordPress client.
type Config struct {
	// BaseURL is the REST base, e.g. https://example.org/wp-json/wp/v2.
	BaseURL string

	// Username and Password are optional Basic credentials (application password).
	Username string
	Password string

	// Timeout is the request timeout. Defaults to 30 seconds.
	Timeout time.Duration

	// RateLimit is the maximum requests per second. Defaults to 10.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed. Defaults to 10.
	BurstSize int

	// MaxRetries enables retries on 429/5xx. Zero (the default) disables them.
	MaxRetries int

	// UserAgent overrides the default User-Agent.
	UserAgent string
}

// applyDefaults sets default values for unset configuration fields.
func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RateLimit == 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.BurstSize == 0 {
		c.BurstSize = DefaultBurstSize
	}
}

// Client implements contentsource.ContentSource for WordPress.
type Client struct {
	config     Config
	httpClient *contentsource.HTTPClient
	logger     zerolog.Logger
	metrics    *observability.Metrics
}

// Ensure Client implements ContentSource interface.
var _ contentsource.ContentSource = (*Client)(nil)

// New creates a new WordPress client. metrics may be nil.
func New(cfg Config, logger zerolog.Logger, metrics *observability.Metrics) *Client {
	cfg.applyDefaults()

	httpClient := contentsource.NewHTTPClient(contentsource.HTTPClientConfig{
		Timeout:    cfg.Timeout,
		RateLimit:  cfg.RateLimit,
		BurstSize:  cfg.BurstSize,
		MaxRetries: cfg.MaxRetries,
		UserAgent:  cfg.UserAgent,
		Username:   cfg.Username,
		Password:   cfg.Password,
	})

	return NewWithHTTPClient(cfg, httpClient, logger, metrics)
}

// NewWithHTTPClient creates a new WordPress client with a custom HTTP client.
// This is useful for testing with mock servers.
func NewWithHTTPClient(cfg Config, httpClient *contentsource.HTTPClient, logger zerolog.Logger, metrics *observability.Metrics) *Client {
	cfg.applyDefaults()

	return &Client{
		config:     cfg,
		httpClient: httpClient,
		logger:     logger.With().Str("component", "wordpress").Logger(),
		metrics:    metrics,
	}
}

// Name returns the backend name.
func (c *Client) Name() string {
	return sourceName
}

// List returns one page of posts as articles. Backend failures yield the
// empty sentinel with BackendErr set; only invalid params return an error.
func (c *Client) List(ctx context.Context, params contentsource.ListParams) (*contentsource.ListResult, error) {
	params.Normalize()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("_embed", "true")
	query.Set("per_page", strconv.Itoa(params.PerPage))
	query.Set("page", strconv.Itoa(params.Page))
	query.Set("orderby", params.OrderBy)
	query.Set("order", params.Order)
	if s := strings.TrimSpace(params.Search); s != "" {
		query.Set("search", s)
	}
	if len(params.Categories) > 0 {
		ids := make([]string, len(params.Categories))
		for i, id := range params.Categories {
			ids[i] = strconv.Itoa(id)
		}
		query.Set("categories", strings.Join(ids, ","))
	}

	var posts []Post
	header, err := c.getJSON(ctx, "posts", "/posts", query, &posts)
	if err != nil {
		c.logger.Warn().Err(err).Int("page", params.Page).Msg("listing posts failed, returning empty result")
		return contentsource.EmptyResult(err), nil
	}

	articles := make([]domain.Article, 0, len(posts))
	for i := range posts {
		articles = append(articles, postToArticle(&posts[i]))
	}

	return &contentsource.ListResult{
		Articles:   articles,
		Total:      headerInt(header, "X-WP-Total", 0),
		TotalPages: headerInt(header, "X-WP-TotalPages", 1),
	}, nil
}

// GetBySlugOrID resolves a numeric key by id first and falls back to the slug.
func (c *Client) GetBySlugOrID(ctx context.Context, key string) (*domain.Article, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, domain.NewNotFoundError("article", key)
	}

	if numericKey.MatchString(key) {
		article, err := c.getByID(ctx, key)
		if err == nil {
			return article, nil
		}
		c.logLookupFailure(err, "id", key)
	}

	article, err := c.GetBySlug(ctx, key)
	if err != nil {
		return nil, domain.NewNotFoundError("article", key)
	}
	return article, nil
}

// GetBySlug resolves a post by slug.
func (c *Client) GetBySlug(ctx context.Context, slug string) (*domain.Article, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, domain.NewNotFoundError("article", slug)
	}

	query := url.Values{}
	query.Set("slug", slug)
	query.Set("_embed", "true")

	var posts []Post
	if _, err := c.getJSON(ctx, "posts", "/posts", query, &posts); err != nil {
		c.logLookupFailure(err, "slug", slug)
		return nil, domain.NewNotFoundError("article", slug)
	}
	if len(posts) == 0 {
		return nil, domain.NewNotFoundError("article", slug)
	}

	article := postToArticle(&posts[0])
	return &article, nil
}

func (c *Client) getByID(ctx context.Context, id string) (*domain.Article, error) {
	query := url.Values{}
	query.Set("_embed", "true")

	var post Post
	if _, err := c.getJSON(ctx, "post", "/posts/"+id, query, &post); err != nil {
		return nil, err
	}
	if post.ID == 0 {
		return nil, domain.NewNotFoundError("article", id)
	}

	article := postToArticle(&post)
	return &article, nil
}

// Categories returns every category. Failures degrade to an empty list.
func (c *Client) Categories(ctx context.Context) ([]contentsource.Category, error) {
	query := url.Values{}
	query.Set("per_page", strconv.Itoa(contentsource.MaxPerPage))

	var raw []CategoryResponse
	if _, err := c.getJSON(ctx, "categories", "/categories", query, &raw); err != nil {
		c.logger.Warn().Err(err).Msg("listing categories failed, returning empty result")
		return []contentsource.Category{}, nil
	}

	categories := make([]contentsource.Category, 0, len(raw))
	for _, cat := range raw {
		categories = append(categories, contentsource.Category{
			ID:    cat.ID,
			Name:  domain.PlainText(cat.Name),
			Slug:  cat.Slug,
			Count: cat.Count,
		})
	}
	return categories, nil
}

// Authors returns every author. Failures degrade to an empty list.
func (c *Client) Authors(ctx context.Context) ([]contentsource.Author, error) {
	query := url.Values{}
	query.Set("per_page", strconv.Itoa(contentsource.MaxPerPage))

	var users []User
	if _, err := c.getJSON(ctx, "users", "/users", query, &users); err != nil {
		c.logger.Warn().Err(err).Msg("listing authors failed, returning empty result")
		return []contentsource.Author{}, nil
	}

	authors := make([]contentsource.Author, 0, len(users))
	for _, u := range users {
		authors = append(authors, contentsource.Author{
			ID:          u.ID,
			Name:        u.Name,
			Slug:        u.Slug,
			Description: u.Description,
			AvatarURL:   largestAvatar(u.AvatarURLs),
		})
	}
	return authors, nil
}

// TestConnection fetches a single post and reports any failure.
func (c *Client) TestConnection(ctx context.Context) error {
	query := url.Values{}
	query.Set("per_page", "1")

	var posts []json.RawMessage
	if _, err := c.getJSON(ctx, "posts", "/posts", query, &posts); err != nil {
		return fmt.Errorf("wordpress connection test: %w", err)
	}
	return nil
}

// getJSON performs a GET against the REST base and decodes the JSON body
// into out. It returns the response headers on success.
func (c *Client) getJSON(ctx context.Context, endpoint, path string, query url.Values, out interface{}) (http.Header, error) {
	startTime := time.Now()

	reqURL := c.config.BaseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	c.recordRequest(endpoint, time.Since(startTime))
	if err != nil {
		c.recordFailure(endpoint, "network")
		logger := observability.WithSourceContext(c.logger, metricsSource, endpoint)
		logger.Debug().Err(err).Msg("request failed")
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
		c.recordFailure(endpoint, "not_found")
		return nil, domain.NewNotFoundError(endpoint, path)
	case resp.StatusCode == http.StatusTooManyRequests:
		c.recordFailure(endpoint, "rate_limited")
		if c.metrics != nil {
			c.metrics.RecordContentRateLimited(metricsSource)
		}
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return nil, domain.NewRateLimitError(sourceName, time.Duration(retryAfter)*time.Second)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		c.recordFailure(endpoint, "status_"+strconv.Itoa(resp.StatusCode))
		return nil, domain.NewExternalAPIError(sourceName, resp.StatusCode, strings.TrimSpace(string(body)), nil)
	}

	// Limit body to 10MB to prevent resource exhaustion.
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(out); err != nil {
		c.recordFailure(endpoint, "decode")
		return nil, domain.NewExternalAPIError(sourceName, resp.StatusCode, "malformed response", err)
	}

	return resp.Header, nil
}

func (c *Client) logLookupFailure(err error, by, key string) {
	logger := observability.WithRecordContext(c.logger, string(domain.KindArticle), key)
	event := logger.Warn()
	if errors.Is(err, domain.ErrNotFound) {
		event = logger.Debug()
	}
	event.Err(err).Str("lookup", by).Msg("article lookup failed")
}

func (c *Client) recordRequest(endpoint string, d time.Duration) {
	if c.metrics != nil {
		c.metrics.RecordContentRequest(metricsSource, endpoint, d.Seconds())
	}
}

func (c *Client) recordFailure(endpoint, errorType string) {
	if c.metrics != nil {
		c.metrics.RecordContentRequestFailed(metricsSource, endpoint, errorType)
	}
}

// postToArticle maps a WordPress post onto the canonical article record.
func postToArticle(p *Post) domain.Article {
	a := domain.Article{
		ID:         strconv.Itoa(p.ID),
		Slug:       p.Slug,
		Title:      p.Title.Rendered,
		Content:    p.Content.Rendered,
		Excerpt:    p.Excerpt.Rendered,
		Abstract:   string(p.Meta.Abstract),
		Authors:    []string(p.Meta.Authors),
		Keywords:   []string(p.Meta.Keywords),
		Subjects:   []string(p.Meta.Subjects),
		Year:       string(p.Meta.Year),
		DOI:        string(p.Meta.DOI),
		Pages:      string(p.Meta.Pages),
		Volume:     string(p.Meta.Volume),
		Issue:      string(p.Meta.Issue),
		Publisher:  string(p.Meta.Publisher),
		PDFURL:     string(p.Meta.PDFURL),
		ISSN:       string(p.Meta.ISSN),
		Citations:  p.Meta.CitationCount.Int(),
		References: []string(p.Meta.References),
		Link:       p.Link,
		Categories: p.Categories,
	}

	a.PublishedDate = parseWPTime(p.DateGMT, p.Date)
	a.Modified = parseWPTime(p.ModifiedGMT, p.Modified)

	if strings.TrimSpace(a.Abstract) == "" {
		a.Abstract = domain.PlainText(p.Excerpt.Rendered)
	}

	if p.Embedded != nil {
		if len(p.Embedded.FeaturedMedia) > 0 {
			a.ImageURL = p.Embedded.FeaturedMedia[0].SourceURL
		}
		categories, tags := embeddedTerms(p.Embedded)
		if len(a.Subjects) == 0 {
			a.Subjects = categories
		}
		if len(a.Keywords) == 0 {
			a.Keywords = tags
		}
	}

	a.Normalize()
	return a
}

// embeddedTerms splits embedded terms into category and tag names.
func embeddedTerms(e *Embedded) (categories, tags []string) {
	for _, group := range e.Terms {
		for _, term := range group {
			name := domain.PlainText(term.Name)
			switch term.Taxonomy {
			case "category":
				if !strings.EqualFold(term.Slug, "uncategorized") {
					categories = append(categories, name)
				}
			case "post_tag":
				tags = append(tags, name)
			}
		}
	}
	return categories, tags
}

// parseWPTime parses the GMT variant when present, falling back to the
// site-local value interpreted as UTC. Unparseable values yield zero time.
func parseWPTime(gmt, local string) time.Time {
	for _, v := range []string{gmt, local} {
		if v == "" {
			continue
		}
		if t, err := time.Parse(wpTimeLayout, v); err == nil {
			return t.UTC()
		}
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func headerInt(h http.Header, key string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(h.Get(key)))
	if err != nil {
		return fallback
	}
	return n
}

// largestAvatar picks the biggest avatar size WordPress offers.
func largestAvatar(urls map[string]string) string {
	best, bestSize := "", -1
	for size, u := range urls {
		n, err := strconv.Atoi(size)
		if err != nil {
			continue
		}
		if n > bestSize {
			best, bestSize = u, n
		}
	}
	return best
}
