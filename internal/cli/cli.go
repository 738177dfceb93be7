// Package cli implements the collagefm command-line interface.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/collagefm/pkg/buildinfo"
	"github.com/matzehuels/collagefm/pkg/cache"
	"github.com/matzehuels/collagefm/pkg/config"
	"github.com/matzehuels/collagefm/pkg/discogs"
	errs "github.com/matzehuels/collagefm/pkg/errors"
	"github.com/matzehuels/collagefm/pkg/imageload"
	"github.com/matzehuels/collagefm/pkg/lastfm"
	"github.com/matzehuels/collagefm/pkg/observability"
	"github.com/matzehuels/collagefm/pkg/pipeline"
	"github.com/matzehuels/collagefm/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any subcommand runs.
	Config config.Config

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "collagefm turns Last.fm charts into image collages",
		Long: `collagefm fetches a Last.fm user's top albums, tracks or artists and
packs their artwork into a collage: varying templates with large and
medium tiles, or uniform rows × cols grids.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/collagefm/config.toml)")

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.planCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.layoutsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.scheduleCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the configuration and wires the logger into the context.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	if c.verbose {
		c.SetLogLevel(LogDebug)
		hooks := observability.NewLogHooks(c.Logger)
		observability.SetPipelineHooks(hooks)
		observability.SetCacheHooks(hooks)
		observability.SetHTTPHooks(hooks)
	}

	path := c.configPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			return err
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("config loaded", "path", path)

	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. The caller closes it.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(c.newSource(cc), imageload.New(imageload.WithCache(cc)), cc, c.Logger), nil
}

// newSource builds the Last.fm client. Artist charts need Discogs for
// pictures; without a token they come back empty.
func (c *CLI) newSource(cc cache.Cache) *lastfm.Client {
	opts := []lastfm.Option{lastfm.WithCache(cc)}
	if c.Config.LastFM.BaseURL != "" {
		opts = append(opts, lastfm.WithBaseURL(c.Config.LastFM.BaseURL))
	}
	if c.Config.Discogs.Token != "" {
		opts = append(opts, lastfm.WithArtistImages(discogs.NewClient(c.Config.Discogs.Token, cc)))
	} else {
		c.Logger.Debug("no discogs token, artist charts will have no images")
	}
	return lastfm.NewClient(c.Config.LastFM.APIKey, opts...)
}

func (c *CLI) newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	opts, err := c.Config.CacheOptions()
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.Open(opts)
}

func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	return store.Open(ctx, c.Config.StoreOptions())
}

// requireAPIKey fails early for commands that talk to Last.fm.
func (c *CLI) requireAPIKey() error {
	if c.Config.LastFM.APIKey == "" {
		return errs.New(errs.ErrCodeUnauthorized, "no Last.fm API key: set LASTFM_API_KEY or [lastfm] api_key in %s", c.configHint())
	}
	return nil
}

func (c *CLI) configHint() string {
	if c.configPath != "" {
		return c.configPath
	}
	if p, err := config.Path(); err == nil {
		return p
	}
	return "config.toml"
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/collagefm/).
func cacheDir() (string, error) {
	return config.CacheDir()
}

// stdout is where command results go; tests swap it.
var stdout io.Writer = os.Stdout
