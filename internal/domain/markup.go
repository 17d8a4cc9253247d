package domain

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// StripHTML removes every markup tag from s. Entities are left untouched.
func StripHTML(s string) string {
	return tagPattern.ReplaceAllString(s, "")
}

// PlainText extracts readable text from an HTML fragment: tags are dropped,
// entities decoded and runs of whitespace collapsed to a single space.
func PlainText(fragment string) string {
	if fragment == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(StripHTML(fragment)), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
