// Package cli implements the visast command-line interface.
//
// The root command renders each argument in turn, the same as the render
// subcommand. Settings come from internal/config (defaults, visast.toml,
// VISAST_* environment variables, flags).
//
// # Commands
//
//   - render: draw the syntax tree of one or more Python files or URLs
//   - explore: browse a file's syntax tree in the terminal
//   - serve: render over HTTP and expose Prometheus metrics
//   - completion: generate shell completion scripts
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/visast/internal/config"
	"github.com/matzehuels/visast/pkg/buildinfo"
	"github.com/matzehuels/visast/pkg/cache"
	"github.com/matzehuels/visast/pkg/pipeline"
	"github.com/matzehuels/visast/pkg/render"
	"github.com/matzehuels/visast/pkg/source"
)

const appName = "visast"

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
	// Out receives user-facing status lines.
	Out io.Writer
	// Err receives transient progress output such as the spinner.
	Err io.Writer
	// Viewer opens written artifacts when the open setting is on.
	Viewer render.Viewer
	// Loader reads program sources. Nil uses source.New().
	Loader *source.Loader
	// Environ replaces os.Environ when loading config, for tests.
	Environ func() []string

	cfg        config.Config
	configPath string
}

// New creates a CLI that logs to w at the given level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
		Err:    w,
		Viewer: render.OpenInViewer,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName + " [files...]",
		Short: "visast draws the syntax tree of Python programs",
		Long: `visast parses Python source files (or URLs) and draws their abstract syntax
tree as a top-down diagram, either as a static Graphviz image or as an
interactive HTML page.`,
		Version:           buildinfo.Get().Version,
		Args:              cobra.ArbitraryArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.loadConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return c.runRender(cmd.Context(), args)
		},
	}
	root.SetVersionTemplate(buildinfo.Template())

	config.RegisterFlags(root.PersistentFlags())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ./"+config.FileName+")")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())
	registerCompletions(root)

	return root
}

// loadConfig resolves settings before any command runs.
func (c *CLI) loadConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Flags(), config.Options{Path: c.configPath, Environ: c.Environ})
	if err != nil {
		return err
	}
	c.cfg = cfg
	if cfg.Verbose {
		c.SetLogLevel(LogDebug)
	}
	c.Logger.Debug("config loaded", "plotter", cfg.Plotter, "show", cfg.Show, "open", cfg.Open, "output", cfg.Output)
	return nil
}

// newRunner creates a pipeline runner for CLI use. Unless a loader was
// injected, remote sources go through the on-disk cache.
func (c *CLI) newRunner() *pipeline.Runner {
	loader := c.Loader
	if loader == nil {
		loader = source.NewCached(c.openCache(), source.DefaultSourceTTL)
	}
	return pipeline.NewRunner(loader, c.Logger)
}

// openCache returns the on-disk cache, or a NullCache when caching is off
// or the cache directory is unusable.
func (c *CLI) openCache() cache.Cache {
	if !c.cfg.Cache {
		return cache.NullCache{}
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Debug("cache disabled", "err", err)
		return cache.NullCache{}
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("cache disabled", "dir", dir, "err", err)
		return cache.NullCache{}
	}
	return fc
}

// cacheDir follows the XDG convention (~/.cache/visast/).
func cacheDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// renderOptions maps the loaded config onto renderer options for output.
func (c *CLI) renderOptions(output string) render.Options {
	opts := render.Options{Output: output, Show: c.cfg.Show}
	if c.cfg.Open {
		opts.Viewer = c.Viewer
	}
	return opts
}
