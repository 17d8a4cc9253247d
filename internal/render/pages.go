package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// PageRenderer executes the embedded page templates.
type PageRenderer struct {
	tpl *template.Template
}

// NewPageRenderer parses the embedded templates.
func NewPageRenderer() (*PageRenderer, error) {
	tpl, err := template.New("").Funcs(templateFuncs()).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &PageRenderer{tpl: tpl}, nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"date": func(t time.Time, layout string) string {
			if t.IsZero() {
				return ""
			}
			return t.UTC().Format(layout)
		},
		"join": strings.Join,
		"nowYear": func() int {
			return time.Now().Year()
		},
	}
}

func (r *PageRenderer) RenderArticle(ctx context.Context, page ArticlePage) ([]byte, error) {
	return r.exec("article.tmpl", page)
}

func (r *PageRenderer) RenderCollection(ctx context.Context, page CollectionPage) ([]byte, error) {
	return r.exec("collection.tmpl", page)
}

func (r *PageRenderer) RenderNotFound(ctx context.Context, page NotFoundPage) ([]byte, error) {
	return r.exec("notfound.tmpl", page)
}

func (r *PageRenderer) exec(name string, data any) ([]byte, error) {
	t := r.tpl.Lookup(name)
	if t == nil {
		return nil, fmt.Errorf("template %s not found", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
