// Package contentsource defines the read-only interface the service uses to
// reach its content backend, together with the rate-limited HTTP transport
// shared by backend clients.
//
// Example usage:
//
//	src := wordpress.New(wordpress.Config{BaseURL: cfg.WordPress.APIURL}, logger, metrics)
//	res, err := src.List(ctx, contentsource.ListParams{Page: 1, PerPage: 10})
//	if res.BackendErr != nil {
//		// the backend is down; res is the empty sentinel
//	}
package contentsource

import (
	"context"
	"fmt"

	"github.com/celnetamit/hlwp/internal/domain"
)

// Sort keys accepted by List.
const (
	OrderByDate     = "date"
	OrderByTitle    = "title"
	OrderByModified = "modified"
)

// Sort orders accepted by List.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// MaxPerPage is the largest page size the backend accepts.
const MaxPerPage = 100

// ListParams selects one page of articles. The zero value is not valid;
// use Normalize before Validate to fill defaults.
type ListParams struct {
	// Page is 1-based.
	Page int

	// PerPage bounds the page size (1..MaxPerPage).
	PerPage int

	// Search is an optional free-text filter evaluated by the backend.
	Search string

	// Categories restricts results to the given category ids.
	Categories []int

	// OrderBy is one of OrderByDate, OrderByTitle or OrderByModified.
	OrderBy string

	// Order is OrderAsc or OrderDesc.
	Order string
}

// Normalize fills unset sort fields with their defaults (newest first).
func (p *ListParams) Normalize() {
	if p.OrderBy == "" {
		p.OrderBy = OrderByDate
	}
	if p.Order == "" {
		p.Order = OrderDesc
	}
}

// Validate reports programming errors in the parameters.
func (p ListParams) Validate() error {
	if p.Page < 1 {
		return domain.NewValidationError("page", fmt.Sprintf("must be >= 1, got %d", p.Page))
	}
	if p.PerPage < 1 || p.PerPage > MaxPerPage {
		return domain.NewValidationError("per_page", fmt.Sprintf("must be between 1 and %d, got %d", MaxPerPage, p.PerPage))
	}
	switch p.OrderBy {
	case OrderByDate, OrderByTitle, OrderByModified:
	default:
		return domain.NewValidationError("orderby", fmt.Sprintf("unsupported sort key %q", p.OrderBy))
	}
	switch p.Order {
	case OrderAsc, OrderDesc:
	default:
		return domain.NewValidationError("order", fmt.Sprintf("unsupported sort order %q", p.Order))
	}
	return nil
}

// ListResult is one page of articles.
type ListResult struct {
	Articles   []domain.Article
	Total      int
	TotalPages int

	// BackendErr is set when the backend could not be reached or answered
	// with garbage. The other fields then hold the empty sentinel
	// (no articles, Total 0, TotalPages 1).
	BackendErr error
}

// Degraded reports whether the result is the fail-soft sentinel.
func (r *ListResult) Degraded() bool {
	return r.BackendErr != nil
}

// EmptyResult returns the fail-soft sentinel carrying cause.
func EmptyResult(cause error) *ListResult {
	return &ListResult{
		Articles:   []domain.Article{},
		Total:      0,
		TotalPages: 1,
		BackendErr: cause,
	}
}

// Category is a backend category with its member count.
type Category struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

// Author is a backend user that may author posts.
type Author struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

// ContentSource is the read-only view of the content backend.
//
// Implementations swallow anticipated backend failures: listings degrade to
// empty results (with ListResult.BackendErr set) and single-record lookups
// return *domain.NotFoundError. Only invalid arguments produce other errors.
type ContentSource interface {
	// List returns one page of articles.
	List(ctx context.Context, params ListParams) (*ListResult, error)

	// GetBySlugOrID resolves key as a numeric id first (when it is numeric)
	// and as a slug otherwise or as a fallback.
	GetBySlugOrID(ctx context.Context, key string) (*domain.Article, error)

	// GetBySlug resolves key as a slug only.
	GetBySlug(ctx context.Context, slug string) (*domain.Article, error)

	// Categories returns all categories in backend order.
	Categories(ctx context.Context) ([]Category, error)

	// Authors returns all authors in backend order.
	Authors(ctx context.Context) ([]Author, error)

	// TestConnection performs a minimal request and reports any failure.
	TestConnection(ctx context.Context) error

	// Name returns a human-readable name for logs and metrics.
	Name() string
}
