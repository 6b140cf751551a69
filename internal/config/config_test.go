package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"

	"github.com/matzehuels/visast/pkg/errors"
	"github.com/matzehuels/visast/pkg/pipeline"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func noEnv() []string { return nil }

func flags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatal(err)
	}
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(flags(t), Options{Environ: noEnv})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load() = %+v, want %+v", cfg, Default())
	}
	if p, _ := cfg.PlotterKind(); p != pipeline.PlotterStatic {
		t.Errorf("PlotterKind() = %v, want static", p)
	}
}

func TestLoad_Precedence(t *testing.T) {
	path := writeConfig(t, "plotter = \"interactive\"\noutput = \"file.html\"\nverbose = true\n")
	environ := func() []string {
		return []string{"VISAST_OUTPUT=env.html", "VISAST_SHOW=false", "HOME=/root"}
	}

	tests := []struct {
		name string
		args []string
		want Config
	}{
		{
			name: "file and env",
			want: Config{Plotter: "interactive", Show: false, Open: true, Output: "env.html", Verbose: true, Cache: true, Addr: ":8080"},
		},
		{
			name: "flags win",
			args: []string{"-p", "pyvis", "-o", "flag.html", "--show"},
			want: Config{Plotter: "pyvis", Show: true, Open: true, Output: "flag.html", Verbose: true, Cache: true, Addr: ":8080"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(flags(t, tt.args...), Options{Path: path, Environ: environ})
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if cfg != tt.want {
				t.Errorf("Load() = %+v, want %+v", cfg, tt.want)
			}
		})
	}
}

func TestLoad_ReallyShow(t *testing.T) {
	path := writeConfig(t, "really_show = false\n")
	cfg, err := Load(nil, Options{Path: path, Environ: noEnv})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Show {
		t.Error("really_show = false should disable show")
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts func(t *testing.T) Options
		code errors.Code
	}{
		{"unknown plotter", func(t *testing.T) Options {
			return Options{Path: writeConfig(t, "plotter = \"bokeh\"\n"), Environ: noEnv}
		}, errors.ErrCodeInvalidConfig},
		{"malformed file", func(t *testing.T) Options {
			return Options{Path: writeConfig(t, "plotter = \n"), Environ: noEnv}
		}, errors.ErrCodeInvalidConfig},
		{"missing explicit file", func(t *testing.T) Options {
			return Options{Path: filepath.Join(t.TempDir(), "nope.toml"), Environ: noEnv}
		}, errors.ErrCodeFileNotFound},
		{"bad env bool", func(t *testing.T) Options {
			return Options{Path: writeConfig(t, ""), Environ: func() []string { return []string{"VISAST_WATCH=maybe"} }}
		}, errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(nil, tt.opts(t))
			if !errors.Is(err, tt.code) {
				t.Errorf("Load() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestTOMLParser(t *testing.T) {
	m, err := tomlParser{}.Unmarshal([]byte("plotter = \"static\"\nshow = true\n"))
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if m["plotter"] != "static" || m["show"] != true {
		t.Errorf("Unmarshal() = %v", m)
	}
	b, err := tomlParser{}.Marshal(m)
	if err != nil || len(b) == 0 {
		t.Errorf("Marshal() = %q, %v", b, err)
	}
}
