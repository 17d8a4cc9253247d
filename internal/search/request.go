package search

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/celnetamit/hlwp/internal/domain"
)

// Record type selectors.
const (
	TypeAll     = "all"
	TypeJournal = "journal"
	TypeArticle = "article"
)

// Pagination defaults.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Filters narrow article matches. Filters never apply to journals.
type Filters struct {
	// Year must equal the article's publication year.
	Year string `json:"year,omitempty" validate:"omitempty,numeric,len=4"`

	// Subject is a case-insensitive substring of one of the article's subjects.
	Subject string `json:"subject,omitempty"`

	// Author is a case-insensitive substring of one of the article's authors.
	Author string `json:"author,omitempty"`

	// Journal is accepted and echoed back but does not affect matching.
	Journal string `json:"journal,omitempty"`
}

// IsZero reports whether no filter is set.
func (f Filters) IsZero() bool {
	return f == Filters{}
}

// Request is a search query with its filters and page window.
type Request struct {
	Query   string  `json:"query"`
	Filters Filters `json:"filters"`
	Type    string  `json:"type" validate:"oneof=all journal article"`
	Limit   int     `json:"limit" validate:"min=1,max=100"`
	Offset  int     `json:"offset" validate:"min=0"`
}

// Normalize trims the inputs and fills unset type and limit.
func (r *Request) Normalize() {
	r.Query = strings.TrimSpace(r.Query)
	r.Type = strings.ToLower(strings.TrimSpace(r.Type))
	if r.Type == "" {
		r.Type = TypeAll
	}
	if r.Limit == 0 {
		r.Limit = DefaultLimit
	}
	r.Filters.Year = strings.TrimSpace(r.Filters.Year)
	r.Filters.Subject = strings.TrimSpace(r.Filters.Subject)
	r.Filters.Author = strings.TrimSpace(r.Filters.Author)
	r.Filters.Journal = strings.TrimSpace(r.Filters.Journal)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the request bounds. The first violation is reported as a
// *domain.ValidationError.
func (r *Request) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.NewValidationError("request", err.Error())
	}
	fe := verrs[0]
	return domain.NewValidationError(fieldName(fe), violation(fe))
}

func fieldName(fe validator.FieldError) string {
	switch fe.StructNamespace() {
	case "Request.Filters.Year":
		return "year"
	default:
		return strings.ToLower(fe.Field())
	}
}

func violation(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "numeric", "len":
		return "must be a four-digit year"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
