package wordpress

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Rendered is a WordPress field delivered as {"rendered": "..."}.
type Rendered struct {
	Rendered string `json:"rendered"`
}

// Post is a WordPress post as returned by /wp/v2/posts with _embed.
type Post struct {
	ID            int       `json:"id"`
	Date          string    `json:"date"`
	DateGMT       string    `json:"date_gmt"`
	Modified      string    `json:"modified"`
	ModifiedGMT   string    `json:"modified_gmt"`
	Slug          string    `json:"slug"`
	Link          string    `json:"link"`
	Title         Rendered  `json:"title"`
	Content       Rendered  `json:"content"`
	Excerpt       Rendered  `json:"excerpt"`
	Author        int       `json:"author"`
	FeaturedMedia int       `json:"featured_media"`
	Categories    []int     `json:"categories"`
	Tags          []int     `json:"tags"`
	Meta          PostMeta  `json:"meta"`
	Embedded      *Embedded `json:"_embedded,omitempty"`
}

// PostMeta holds the journal_* custom fields registered on the backend.
type PostMeta struct {
	ISSN          FlexString  `json:"journal_issn"`
	DOI           FlexString  `json:"journal_doi"`
	Volume        FlexString  `json:"journal_volume"`
	Issue         FlexString  `json:"journal_issue"`
	Pages         FlexString  `json:"journal_pages"`
	Publisher     FlexString  `json:"journal_publisher"`
	Year          FlexString  `json:"journal_year"`
	Authors       FlexStrings `json:"journal_authors"`
	Keywords      FlexStrings `json:"journal_keywords"`
	Subjects      FlexStrings `json:"journal_subjects"`
	Abstract      FlexString  `json:"journal_abstract"`
	PDFURL        FlexString  `json:"journal_pdf_url"`
	CitationCount FlexString  `json:"journal_citation_count"`
	References    FlexStrings `json:"references"`
}

// UnmarshalJSON accepts the empty array WordPress sends when a post has no meta.
func (m *PostMeta) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] == '[' || bytes.Equal(trimmed, []byte("null")) {
		*m = PostMeta{}
		return nil
	}
	type plain PostMeta
	return json.Unmarshal(trimmed, (*plain)(m))
}

// Embedded carries the resources requested with _embed.
type Embedded struct {
	Author        []EmbeddedAuthor `json:"author"`
	FeaturedMedia []Media          `json:"wp:featuredmedia"`
	Terms         [][]Term         `json:"wp:term"`
}

// EmbeddedAuthor is the WordPress user that owns a post.
type EmbeddedAuthor struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Media is a featured image.
type Media struct {
	ID        int    `json:"id"`
	SourceURL string `json:"source_url"`
	AltText   string `json:"alt_text"`
}

// Term is a category or tag attached to a post.
type Term struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Taxonomy string `json:"taxonomy"`
}

// User is a WordPress user from /wp/v2/users.
type User struct {
	ID          int               `json:"id"`
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	Description string            `json:"description"`
	AvatarURLs  map[string]string `json:"avatar_urls"`
}

// CategoryResponse is a WordPress category from /wp/v2/categories.
type CategoryResponse struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

// FlexString decodes a meta value that may arrive as a string, a number,
// a single-element array or null.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*f = FlexString(scalarString(raw))
	return nil
}

// Int returns the value as an integer, or 0 when it is not numeric.
func (f FlexString) Int() int {
	n, err := strconv.Atoi(strings.TrimSpace(string(f)))
	if err != nil {
		return 0
	}
	return n
}

// FlexStrings decodes a meta list that may arrive as an array, a single
// comma-separated string or null.
type FlexStrings []string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexStrings) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := []string{}
	switch v := raw.(type) {
	case []interface{}:
		for _, item := range v {
			if s := scalarString(item); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, part := range strings.Split(v, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
	}
	*f = out
	return nil
}

func scalarString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []interface{}:
		if len(t) > 0 {
			return scalarString(t[0])
		}
	}
	return ""
}
