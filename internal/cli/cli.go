package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/buildinfo"
	"github.com/matzehuels/kintree/pkg/cache"
	"github.com/matzehuels/kintree/pkg/config"
	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/family/backend"
	"github.com/matzehuels/kintree/pkg/layout"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "kintree"

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
	dataPath   string
	backend    string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "kintree keeps a family tree and lays it out by generation",
		Long: `kintree maintains a family graph of people and parent/child links, keeps every
link mirrored on both sides, saves after each change, and computes a
generational layout that can be rendered to SVG, PDF or PNG.`,
		Version:      buildinfo.Resolve().Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default ~/.config/kintree/config.toml)")
	flags.StringVar(&c.dataPath, "data", "", "data file or database path (overrides storage.path)")
	flags.StringVar(&c.backend, "backend", "", "storage backend: file, sqlite, redis, mongo, neo4j")

	root.AddCommand(c.addCommand())
	root.AddCommand(c.updateCommand())
	root.AddCommand(c.deleteCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.seedCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Store Factory
// =============================================================================

// loadConfig reads the config file and applies command-line overrides.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if c.dataPath != "" {
		cfg.Storage.Path = c.dataPath
	}
	if c.backend != "" {
		cfg.Storage.Backend = c.backend
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// openStore opens the configured backend and loads the store.
// The caller must Close the returned store.
func (c *CLI) openStore(ctx context.Context) (*family.Store, config.Config, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, config.Config{}, err
	}

	b, err := backend.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, config.Config{}, err
	}
	store := family.NewStore(b, family.WithLogger(c.Logger))
	if err := store.Load(ctx); err != nil {
		store.Close()
		return nil, config.Config{}, err
	}
	c.Logger.Debug("store loaded", "backend", cfg.Storage.Backend, "people", store.Len())
	return store, cfg, nil
}

func layoutOptions(cfg config.Config) layout.Options {
	return layout.Options{
		XGap:           cfg.Layout.XGap,
		YGap:           cfg.Layout.YGap,
		PlaceUnreached: cfg.Layout.PlaceUnreached,
	}
}

// newCache returns the render cache, or a NullCache when caching is off or
// the cache directory cannot be created.
func newCache(cfg config.Config, noCache bool) cache.Cache {
	if noCache || !cfg.Render.Cache {
		return cache.NewNullCache()
	}
	dir, err := cacheDir(cfg)
	if err != nil {
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return cache.NewNullCache()
	}
	return fc
}

func cacheDir(cfg config.Config) (string, error) {
	if cfg.Render.CacheDir != "" {
		return cfg.Render.CacheDir, nil
	}
	return config.DefaultCacheDir()
}

// countLinks returns the number of parent→child links.
func countLinks(people []family.Person) int {
	n := 0
	for _, p := range people {
		n += len(p.Children)
	}
	return n
}
