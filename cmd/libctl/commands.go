package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/celnetamit/hlwp/internal/domain"
	"github.com/celnetamit/hlwp/internal/publish"
	"github.com/celnetamit/hlwp/internal/search"
	"github.com/celnetamit/hlwp/internal/seo"
)

// CheckResult reports catalog and backend health.
type CheckResult struct {
	Catalog CatalogStatus `json:"catalog"`
	Backend BackendStatus `json:"backend"`
}

// CatalogStatus summarizes the loaded catalog.
type CatalogStatus struct {
	Journals   int    `json:"journals"`
	Articles   int    `json:"articles"`
	Generation uint64 `json:"generation"`
}

// BackendStatus reports whether the content backend answered.
type BackendStatus struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func (c *cli) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load the catalog and check the content backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			_, comps, _, err := c.setup(ctx, true)
			if err != nil {
				return err
			}

			result := CheckResult{
				Catalog: CatalogStatus{
					Journals:   len(comps.Catalog.Journals()),
					Articles:   len(comps.Catalog.Articles()),
					Generation: comps.Catalog.Generation(),
				},
				Backend: BackendStatus{Name: comps.Source.Name(), OK: true},
			}
			backendErr := comps.Source.TestConnection(ctx)
			if backendErr != nil {
				result.Backend.OK = false
				result.Backend.Error = backendErr.Error()
			}

			if c.human {
				c.outputHuman("catalog: %d journals, %d articles (generation %d)\n",
					result.Catalog.Journals, result.Catalog.Articles, result.Catalog.Generation)
				if result.Backend.OK {
					c.outputHuman("backend: %s ok\n", result.Backend.Name)
				} else {
					c.outputHuman("backend: %s unreachable: %s\n", result.Backend.Name, result.Backend.Error)
				}
			} else if err := c.outputJSON(result); err != nil {
				return err
			}

			if backendErr != nil {
				return fmt.Errorf("backend check failed: %w", backendErr)
			}
			return nil
		},
	}
}

func (c *cli) searchCmd() *cobra.Command {
	var req search.Request

	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Search journals and articles in the catalog",
		Long: `Search journals and articles in the catalog.

Example:
  libctl search quantum computing --type article --year 2024`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, comps, _, err := c.setup(ctx, true)
			if err != nil {
				return err
			}

			req.Query = strings.Join(args, " ")
			resp, err := comps.Search.Search(ctx, req)
			if err != nil {
				return err
			}

			if !c.human {
				return c.outputJSON(resp)
			}
			if resp.Total == 0 {
				c.outputHuman("No results for %q\n", resp.Query)
				return nil
			}
			c.outputHuman("%d result(s) for %q\n\n", resp.Total, resp.Query)
			for _, r := range resp.Results {
				c.outputHuman("[%s] %s (score %d)\n", r.Type, truncate(r.Title, humanTitleMaxLen), r.RelevanceScore)
				if r.Type == search.TypeArticle {
					c.outputHuman("    %s | %s | %s\n", joinOrDash(r.Authors), r.Journal, r.PublishedDate)
				}
			}
			if resp.Pagination.HasMore {
				c.outputHuman("\nmore results: --offset %d\n", resp.Pagination.Offset+resp.Pagination.Limit)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Type, "type", search.TypeAll, "Result type: all, journal or article")
	cmd.Flags().IntVar(&req.Limit, "limit", search.DefaultLimit, "Maximum number of results")
	cmd.Flags().IntVar(&req.Offset, "offset", 0, "Number of results to skip")
	cmd.Flags().StringVar(&req.Filters.Year, "year", "", "Publication year")
	cmd.Flags().StringVar(&req.Filters.Subject, "subject", "", "Subject substring")
	cmd.Flags().StringVar(&req.Filters.Author, "author", "", "Author substring")
	cmd.Flags().StringVar(&req.Filters.Journal, "journal", "", "Journal (echoed only)")
	return cmd
}

// ArticleView is the JSON shape of one article.
type ArticleView struct {
	ID            string   `json:"id"`
	Slug          string   `json:"slug"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Journal       string   `json:"journal,omitempty"`
	PublishedDate string   `json:"publishedDate,omitempty"`
	DOI           string   `json:"doi,omitempty"`
	PDFURL        string   `json:"pdfUrl,omitempty"`
	Abstract      string   `json:"abstract,omitempty"`
	Keywords      []string `json:"keywords"`
	Citation      string   `json:"citation"`
	Source        string   `json:"source"`
}

func newArticleView(a *domain.Article, source, siteName string) ArticleView {
	v := ArticleView{
		ID:       a.ID,
		Slug:     a.Slug,
		Title:    a.PlainTitle(),
		Authors:  a.Authors,
		Journal:  a.JournalTitle,
		DOI:      a.DOI,
		PDFURL:   a.PDFURL,
		Abstract: domain.PlainText(a.Abstract),
		Keywords: a.Keywords,
		Citation: seo.CitationString(a, siteName),
		Source:   source,
	}
	if !a.PublishedDate.IsZero() {
		v.PublishedDate = a.PublishedDate.UTC().Format("2006-01-02")
	}
	return v
}

func (c *cli) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id-or-slug>",
		Short: "Look up one article in the catalog or the content backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, comps, logger, err := c.setup(ctx, false)
			if err != nil {
				return err
			}

			var view ArticleView
			if _, err := comps.Catalog.Reload(ctx); err != nil {
				logger.Warn().Err(err).Msg("catalog unavailable, asking the backend only")
			}
			if entry, err := comps.Catalog.Article(args[0]); err == nil {
				view = newArticleView(entry.Article, "catalog", cfg.Site.Name)
			} else {
				article, err := comps.Source.GetBySlugOrID(ctx, args[0])
				if err != nil {
					if errors.Is(err, domain.ErrNotFound) {
						return fmt.Errorf("article not found: %s", args[0])
					}
					return err
				}
				view = newArticleView(article, comps.Source.Name(), cfg.Site.Name)
			}

			if !c.human {
				return c.outputJSON(view)
			}
			c.outputHuman("%s\n", view.Title)
			c.outputHuman("  authors:   %s\n", joinOrDash(view.Authors))
			c.outputHuman("  journal:   %s\n", view.Journal)
			c.outputHuman("  published: %s\n", view.PublishedDate)
			if view.DOI != "" {
				c.outputHuman("  doi:       %s\n", view.DOI)
			}
			c.outputHuman("  source:    %s\n\n%s\n", view.Source, view.Citation)
			return nil
		},
	}
}

// artifactCmd renders one SEO artefact to standard output. The artefact is
// written as-is regardless of --human.
func (c *cli) artifactCmd(name, short string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			_, comps, logger, err := c.setup(ctx, false)
			if err != nil {
				return err
			}
			// The sitemap lists catalog articles; without them it still
			// carries the static routes and backend posts.
			if _, err := comps.Catalog.Reload(ctx); err != nil {
				logger.Warn().Err(err).Msg("catalog unavailable")
			}

			var artifact publish.Artifact
			switch name {
			case "sitemap":
				artifact, err = comps.Builder.Sitemap(ctx)
			case "feed":
				artifact, err = comps.Builder.Feed(ctx)
			default:
				artifact = comps.Builder.Robots()
			}
			if err != nil {
				return err
			}
			_, err = c.out.Write(artifact.Body)
			return err
		},
	}
}

func (c *cli) publishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Build the SEO artefacts and upload them to object storage once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, comps, logger, err := c.setup(ctx, false)
			if err != nil {
				return err
			}
			if cfg.Publish.Bucket == "" {
				return errors.New("publish.bucket is not configured")
			}
			if _, err := comps.Catalog.Reload(ctx); err != nil {
				logger.Warn().Err(err).Msg("catalog unavailable")
			}

			publisher, err := comps.NewPublisher(ctx, cfg, logger, nil)
			if err != nil {
				return err
			}
			report, err := publisher.Publish(ctx)
			if c.human {
				c.outputHuman("uploaded: %s\n", joinOrDash(report.Uploaded))
				if len(report.Failed) > 0 {
					c.outputHuman("failed:   %s\n", joinOrDash(report.Failed))
				}
			} else if outErr := c.outputJSON(publishReport{
				Uploaded:   nonNil(report.Uploaded),
				Failed:     nonNil(report.Failed),
				DurationMS: report.Duration.Milliseconds(),
			}); outErr != nil {
				return outErr
			}
			return err
		},
	}
}

type publishReport struct {
	Uploaded   []string `json:"uploaded"`
	Failed     []string `json:"failed"`
	DurationMS int64    `json:"durationMs"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
