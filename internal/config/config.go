// Package config loads visast settings from defaults, an optional
// visast.toml, VISAST_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/matzehuels/visast/pkg/errors"
	"github.com/matzehuels/visast/pkg/pipeline"
)

const (
	// FileName is the config file looked up in the working directory.
	FileName = "visast.toml"
	// EnvPrefix prefixes every environment override, e.g. VISAST_PLOTTER.
	EnvPrefix = "VISAST_"
)

// Config holds the resolved settings.
type Config struct {
	Plotter string `koanf:"plotter"`
	Show    bool   `koanf:"show"`
	Open    bool   `koanf:"open"`
	Output  string `koanf:"output"`
	Title   string `koanf:"title"`
	Verbose bool   `koanf:"verbose"`
	Watch   bool   `koanf:"watch"`
	Cache   bool   `koanf:"cache"`
	Addr    string `koanf:"addr"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Plotter: pipeline.DefaultPlotter.String(),
		Show:    true,
		Open:    true,
		Cache:   true,
		Addr:    ":8080",
	}
}

// PlotterKind parses the configured plotter name.
func (c Config) PlotterKind() (pipeline.Plotter, error) {
	return pipeline.ParsePlotter(c.Plotter)
}

// RegisterFlags adds the flags that override config keys to fs. Flag names
// match the keys so the posflag provider can map them directly.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.StringP("plotter", "p", d.Plotter, "plotter: "+strings.Join(pipeline.Plotters(), ", "))
	fs.Bool("show", d.Show, "write the rendered artifact to disk")
	fs.Bool("open", d.Open, "open the artifact in a viewer after writing it")
	fs.StringP("output", "o", d.Output, "output file (default depends on the plotter)")
	fs.String("title", d.Title, "diagram title")
	fs.BoolP("verbose", "v", d.Verbose, "enable debug logging")
	fs.BoolP("watch", "w", d.Watch, "re-render when an input file changes")
	fs.Bool("cache", d.Cache, "cache downloaded sources and served renders")
}

// Options tunes where Load reads from.
type Options struct {
	// Path overrides the config file location. Empty uses FileName.
	Path string
	// Environ replaces os.Environ, for tests.
	Environ func() []string
}

// Load resolves the configuration. A missing config file is not an error;
// an unreadable or malformed one is.
func Load(fs *pflag.FlagSet, opts Options) (Config, error) {
	k := koanf.New(".")

	d := Default()
	if err := k.Load(mapProvider{
		"plotter": d.Plotter,
		"show":    d.Show,
		"open":    d.Open,
		"output":  d.Output,
		"title":   d.Title,
		"verbose": d.Verbose,
		"watch":   d.Watch,
		"cache":   d.Cache,
		"addr":    d.Addr,
	}, nil); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInternal, err, "load defaults")
	}

	path := opts.Path
	if path == "" {
		path = FileName
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), tomlParser{}); err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
		}
	} else if opts.Path != "" {
		return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	}

	if err := k.Load(envProvider(opts.Environ), nil); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read environment")
	}

	// really_show is the older spelling of show.
	if k.Exists("really_show") {
		if err := k.Set("show", k.Bool("really_show")); err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInternal, err, "apply really_show")
		}
	}

	if fs != nil {
		if err := k.Load(posflag.Provider(fs, ".", k), nil); err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read flags")
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if _, err := cfg.PlotterKind(); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "plotter")
	}
	return cfg, nil
}

func envProvider(environ func() []string) koanf.Provider {
	cb := func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}
	if environ == nil {
		return env.Provider(EnvPrefix, ".", cb)
	}
	vars := mapProvider{}
	for _, kv := range environ() {
		key, val, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(key, EnvPrefix) {
			vars[cb(key)] = val
		}
	}
	return vars
}

type mapProvider map[string]any

func (p mapProvider) Read() (map[string]any, error) { return p, nil }

func (mapProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New(errors.ErrCodeUnsupported, "map provider has no byte form")
}
