// Package cli implements the tilerow command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tilerow/pkg/buildinfo"
	"github.com/matzehuels/tilerow/pkg/cache"
	"github.com/matzehuels/tilerow/pkg/config"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "tilerow"

	// redisPrefix namespaces tilerow's keys in a shared Redis.
	redisPrefix = "tilerow:"
)

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

	configPath string
	overrides  overrides
	cfg        config.Config
}

// overrides are persistent flags that take precedence over the config file.
type overrides struct {
	catalogURL string
	workers    int
	noCache    bool
	refresh    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Tilerow browses a media catalog as rows of tiles",
		Long:         `Tilerow loads a remote media catalog, fetches every tile image on a pool of workers, and lets you browse the rows in the terminal or over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/tilerow/config.toml)")
	flags.StringVar(&c.overrides.catalogURL, "catalog-url", "", "root catalog URL")
	flags.IntVarP(&c.overrides.workers, "workers", "w", 0, "worker count (default: CPUs - 1)")
	flags.BoolVar(&c.overrides.noCache, "no-cache", false, "disable the document cache")
	flags.BoolVar(&c.overrides.refresh, "refresh", false, "ignore cached documents and refetch")

	registerFlagCompletions(root)

	root.AddCommand(c.loadCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.titleCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file and applies flag overrides.
func (c *CLI) loadConfig() error {
	path := c.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			c.Logger.Debug("no config directory", "err", err)
			return nil
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if c.overrides.catalogURL != "" {
		cfg.CatalogURL = c.overrides.catalogURL
	}
	if c.overrides.workers > 0 {
		cfg.Workers = c.overrides.workers
	}
	if c.overrides.noCache {
		cfg.Cache.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg
	c.Logger.Debug("config loaded", "path", path, "catalog", cfg.CatalogURL)
	return nil
}

// =============================================================================
// Cache Factory
// =============================================================================

// newCache builds the document cache: Redis when an address is configured,
// otherwise files under the cache directory. Any failure falls back to no
// caching, because a cache is never required to browse.
func newCache(ctx context.Context, cfg config.CacheConfig, logger *log.Logger) cache.Cache {
	if !cfg.Enabled {
		return cache.NewNullCache()
	}
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:   cfg.RedisAddr,
			DB:     cfg.RedisDB,
			Prefix: redisPrefix,
		})
		if err == nil {
			return rc
		}
		logger.Warn("redis unavailable, caching disabled", "addr", cfg.RedisAddr, "err", err)
		return cache.NewNullCache()
	}

	dir := cfg.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache()
		}
		dir = d
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		logger.Warn("cache directory unusable, caching disabled", "dir", dir, "err", err)
		return cache.NewNullCache()
	}
	return fc
}

// newKeyer scopes cache keys when the config names a scope.
func newKeyer(cfg config.CacheConfig) cache.Keyer {
	if cfg.Scope == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(nil, cfg.Scope+":")
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/tilerow/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
