package initialize

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/indaco/pkgmeta/internal/config"
	"github.com/indaco/pkgmeta/internal/testutils"
	"github.com/urfave/cli/v3"
)

func newApp() *cli.Command {
	return testutils.BuildCLIForTests([]*cli.Command{Run()})
}

func TestCLI_Init(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteTempFile(t, dir, "ddgr", "#!/usr/bin/env python3\n_VERSION_ = '2.2'\n")
	testutils.WriteTempFile(t, dir, "README.md", "# ddgr\n")

	output, err := testutils.CaptureStdout(func() {
		testutils.RunCLITest(t, newApp(), []string{"pkgmeta", "init"}, dir)
	})
	if err != nil {
		t.Fatalf("Failed to capture stdout: %v", err)
	}
	if !strings.Contains(output, "Created .pkgmeta.yaml") || !strings.Contains(output, "version 2.2") {
		t.Errorf("output = %q", output)
	}

	cfg, err := config.LoadFrom(filepath.Join(dir, config.DefaultConfigFile))
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if cfg.Source.Path != "ddgr.py" || cfg.Source.Script != "ddgr" || cfg.Description.Path != "README.md" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestCLI_Init_ExistingConfig(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteTempConfig(t, dir, "source:\n  path: keep.py\n")

	err := testutils.RunCLITestAllowError(t, newApp(), []string{"pkgmeta", "init"}, dir)
	if !errors.Is(err, ErrConfigExists) {
		t.Fatalf("error = %v, want ErrConfigExists", err)
	}
	if got := testutils.ReadTempFile(t, filepath.Join(dir, config.DefaultConfigFile)); !strings.Contains(got, "keep.py") {
		t.Error("existing config was modified")
	}

	_, _ = testutils.CaptureStdout(func() {
		testutils.RunCLITest(t, newApp(), []string{"pkgmeta", "init", "--force"}, dir)
	})
	if got := testutils.ReadTempFile(t, filepath.Join(dir, config.DefaultConfigFile)); strings.Contains(got, "keep.py") {
		t.Error("--force did not overwrite the config")
	}
}

func TestCLI_Init_CustomPath(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteTempFile(t, dir, "tools/app.py", "_VERSION_ = '0.3'\n")

	_, _ = testutils.CaptureStdout(func() {
		testutils.RunCLITest(t, newApp(), []string{"pkgmeta", "init", "--path", "tools/.pkgmeta.yaml"}, dir)
	})

	cfg, err := config.LoadFrom(filepath.Join(dir, "tools", ".pkgmeta.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Source.Path != "app.py" || cfg.Source.Script != "" {
		t.Errorf("source = %+v", cfg.Source)
	}
}
