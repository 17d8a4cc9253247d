// Package main provides the libctl operator CLI. It runs searches against
// the catalog, looks up backend articles, renders the SEO artefacts and
// triggers a one-off publish run.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/celnetamit/hlwp/internal/app"
	"github.com/celnetamit/hlwp/internal/config"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	if err := newRootCmd(config.Load).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// cli carries the state shared by all subcommands.
type cli struct {
	loadConfig func() (*config.Config, error)
	human      bool
	verbose    bool
	out        io.Writer
}

func newRootCmd(load func() (*config.Config, error)) *cobra.Command {
	c := &cli{loadConfig: load}

	root := &cobra.Command{
		Use:   "libctl",
		Short: "Operate the journal library",
		Long: `libctl inspects and operates the journal library.

It reads the same configuration as the server (config.yaml, JOURNALLIB_*
environment variables and the legacy WORDPRESS_API_URL / NEXT_PUBLIC_*
names). All commands output JSON by default.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			c.out = cmd.OutOrStdout()
		},
	}
	root.PersistentFlags().BoolVar(&c.human, "human", false, "Use human-readable output instead of JSON")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Log to stderr")

	root.AddCommand(
		c.checkCmd(),
		c.searchCmd(),
		c.getCmd(),
		c.artifactCmd("sitemap", "Render sitemap.xml"),
		c.artifactCmd("feed", "Render feed.xml"),
		c.artifactCmd("robots", "Render robots.txt"),
		c.publishCmd(),
	)
	return root
}

// setup loads configuration and builds the components. The catalog is
// loaded when loadCatalog is set.
func (c *cli) setup(ctx context.Context, loadCatalog bool) (*config.Config, *app.Components, zerolog.Logger, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}

	base := zerolog.Nop()
	if c.verbose {
		logCfg := *cfg
		logCfg.Logging.Output = "stderr"
		base = app.NewLogger(&logCfg)
	}
	logger := base.With().Str("component", "libctl").Logger()

	components := app.New(cfg, base, nil)
	if loadCatalog {
		if _, err := components.Catalog.Reload(ctx); err != nil {
			return nil, nil, logger, fmt.Errorf("load catalog: %w", err)
		}
	}
	return cfg, components, logger, nil
}
