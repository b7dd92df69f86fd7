package cli

import (
	"context"
	"slices"
	"testing"

	"github.com/indaco/pkgmeta/internal/config"
)

func TestNew_Commands(t *testing.T) {
	app := New(config.Default())

	var names []string
	for _, c := range app.Commands {
		names = append(names, c.Name)
	}
	for _, want := range []string{"init", "build", "version", "doctor", "sync"} {
		if !slices.Contains(names, want) {
			t.Errorf("missing command %q in %v", want, names)
		}
	}
}

func TestNew_ConfigSeam(t *testing.T) {
	orig := config.LoadConfigFn
	t.Cleanup(func() { config.LoadConfigFn = orig })

	config.LoadConfigFn = func() (*config.Config, error) {
		cfg := &config.Config{Source: config.SourceConfig{Path: "from-seam.py"}, Root: "/seam"}
		cfg.ApplyDefaults()
		return cfg, nil
	}

	cfg := config.Default()
	app := New(cfg)
	if err := app.Run(context.Background(), []string{"pkgmeta"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if cfg.Source.Path != "from-seam.py" || cfg.Root != "/seam" {
		t.Errorf("cfg = %+v, want loaded config", cfg.Source)
	}
}

func TestNew_SourceFlagOverridesConfig(t *testing.T) {
	orig := config.LoadConfigFn
	t.Cleanup(func() { config.LoadConfigFn = orig })
	config.LoadConfigFn = func() (*config.Config, error) { return nil, nil }

	cfg := config.Default()
	if err := New(cfg).Run(context.Background(), []string{"pkgmeta", "--source", "lib/tool.py"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if cfg.Source.Path != "lib/tool.py" || cfg.Source.Script != "" {
		t.Errorf("source = %+v", cfg.Source)
	}
}
