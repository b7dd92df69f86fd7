package sync

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/indaco/pkgmeta/internal/config"
	"github.com/indaco/pkgmeta/internal/core"
	"github.com/indaco/pkgmeta/internal/parser"
	"github.com/indaco/pkgmeta/internal/testutils"
	"github.com/urfave/cli/v3"
)

func syncConfig(targets ...config.SyncFile) *config.Config {
	cfg := &config.Config{Root: "/proj", Sync: targets}
	cfg.ApplyDefaults()
	return cfg
}

func TestSyncFiles(t *testing.T) {
	mfs := core.NewMockFileSystem()
	mfs.SetFile("/proj/package.json", []byte("{\n  \"name\": \"ddgr\",\n  \"version\": \"2.1\"\n}\n"))
	mfs.SetFile("/proj/pyproject.toml", []byte("[project]\nname = \"ddgr\"\nversion = \"2.1\"\n"))
	mfs.SetFile("/proj/Chart.yaml", []byte("name: ddgr\nversion: \"2.2\"\n"))
	mfs.SetFile("/proj/ddgr.1", []byte(".TH DDGR 1 \"Version 2.1\"\n"))
	mfs.SetFile("/proj/VERSION", []byte("2.1\n"))

	cfg := syncConfig(
		config.SyncFile{Path: "package.json"},
		config.SyncFile{Path: "pyproject.toml"},
		config.SyncFile{Path: "Chart.yaml"},
		config.SyncFile{Path: "ddgr.1", Pattern: `Version ([\d.]+)`},
		config.SyncFile{Path: "VERSION"},
	)

	results, err := SyncFiles(context.Background(), mfs, cfg, "2.2", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantStatus := []Status{StatusUpdated, StatusUpdated, StatusUpToDate, StatusUpdated, StatusUpdated}
	for i, r := range results {
		if r.Status != wantStatus[i] {
			t.Errorf("%s: status = %v, want %v", r.Path, r.Status, wantStatus[i])
		}
	}

	reader := parser.NewReader(mfs)
	for _, target := range cfg.Sync {
		got, err := reader.ReadVersion(context.Background(), target.FileConfig(cfg.Root))
		if err != nil {
			t.Fatalf("%s: %v", target.Path, err)
		}
		if got != "2.2" {
			t.Errorf("%s: version = %q, want 2.2", target.Path, got)
		}
	}

	pkg, _ := mfs.GetFile("/proj/package.json")
	if !strings.Contains(string(pkg), "\"name\": \"ddgr\",\n  \"version\": \"2.2\"") {
		t.Errorf("package.json formatting lost:\n%s", pkg)
	}
}

func TestSyncFiles_DryRun(t *testing.T) {
	mfs := core.NewMockFileSystem()
	mfs.SetFile("/proj/package.json", []byte(`{"version": "2.1"}`))

	results, err := SyncFiles(context.Background(), mfs, syncConfig(config.SyncFile{Path: "package.json"}), "2.2", Options{DryRun: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].Status != StatusWouldUpdate || results[0].Previous != "2.1" {
		t.Errorf("results = %+v", results)
	}
	if got, _ := mfs.GetFile("/proj/package.json"); string(got) != `{"version": "2.1"}` {
		t.Errorf("dry run wrote the file: %s", got)
	}
}

func TestSyncFiles_MissingField(t *testing.T) {
	mfs := core.NewMockFileSystem()
	mfs.SetFile("/proj/package.json", []byte(`{"name": "ddgr"}`))

	results, err := SyncFiles(context.Background(), mfs, syncConfig(config.SyncFile{Path: "package.json"}), "2.2", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].Status != StatusUpdated || results[0].Previous != "" {
		t.Errorf("results = %+v", results)
	}
}

func TestSyncFiles_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := SyncFiles(context.Background(), core.NewMockFileSystem(), syncConfig(config.SyncFile{Path: "package.json"}), "2.2", Options{})
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("regex without match", func(t *testing.T) {
		mfs := core.NewMockFileSystem()
		mfs.SetFile("/proj/ddgr.1", []byte("no version here\n"))
		cfg := syncConfig(config.SyncFile{Path: "ddgr.1", Pattern: `Version ([\d.]+)`})
		_, err := SyncFiles(context.Background(), mfs, cfg, "2.2", Options{})
		if !errors.Is(err, parser.ErrNoMatch) {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("stops at first failure", func(t *testing.T) {
		mfs := core.NewMockFileSystem()
		mfs.SetFile("/proj/b.json", []byte(`{"version": "1"}`))
		cfg := syncConfig(config.SyncFile{Path: "a.json"}, config.SyncFile{Path: "b.json"})
		results, err := SyncFiles(context.Background(), mfs, cfg, "2.2", Options{})
		if err == nil || len(results) != 0 {
			t.Errorf("results = %+v, err = %v", results, err)
		}
		if got, _ := mfs.GetFile("/proj/b.json"); string(got) != `{"version": "1"}` {
			t.Error("later target written after a failure")
		}
	})
}

func TestSyncFiles_Downgrade(t *testing.T) {
	newFS := func() *core.MockFileSystem {
		mfs := core.NewMockFileSystem()
		mfs.SetFile("/proj/package.json", []byte(`{"version": "2.3.0"}`))
		return mfs
	}
	cfg := syncConfig(config.SyncFile{Path: "package.json"})

	t.Run("refused by default", func(t *testing.T) {
		mfs := newFS()
		_, err := SyncFiles(context.Background(), mfs, cfg, "2.2.0", Options{})
		if !errors.Is(err, ErrDowngrade) {
			t.Fatalf("error = %v, want ErrDowngrade", err)
		}
		if !strings.Contains(err.Error(), "from 2.3.0 to 2.2.0") {
			t.Errorf("error = %q", err)
		}
		if got, _ := mfs.GetFile("/proj/package.json"); string(got) != `{"version": "2.3.0"}` {
			t.Errorf("target written on refusal: %s", got)
		}
	})

	t.Run("refused on dry run", func(t *testing.T) {
		_, err := SyncFiles(context.Background(), newFS(), cfg, "2.2.0", Options{DryRun: true})
		if !errors.Is(err, ErrDowngrade) {
			t.Errorf("error = %v, want ErrDowngrade", err)
		}
	})

	t.Run("allowed when requested", func(t *testing.T) {
		mfs := newFS()
		results, err := SyncFiles(context.Background(), mfs, cfg, "2.2.0", Options{AllowDowngrade: true})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if results[0].Status != StatusUpdated || results[0].Previous != "2.3.0" {
			t.Errorf("results = %+v", results)
		}
	})

	t.Run("upgrade passes", func(t *testing.T) {
		if _, err := SyncFiles(context.Background(), newFS(), cfg, "2.4.0", Options{}); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("non-semver versions are not compared", func(t *testing.T) {
		mfs := core.NewMockFileSystem()
		mfs.SetFile("/proj/package.json", []byte(`{"version": "2.3"}`))
		if _, err := SyncFiles(context.Background(), mfs, cfg, "2.2", Options{}); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestCLI_Sync_AllowDowngrade(t *testing.T) {
	dir := t.TempDir()
	cfgPath := testutils.WriteTempConfig(t, dir, "source:\n  path: ddgr.py\nsync:\n  - path: package.json\n")
	testutils.WriteTempFile(t, dir, "ddgr.py", "_VERSION_ = '2.2.0'\n")
	pkg := testutils.WriteTempFile(t, dir, "package.json", "{\n  \"version\": \"2.3.0\"\n}\n")

	cfg, err := config.LoadFrom(cfgPath)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	newApp := func() *cli.Command { return testutils.BuildCLIForTests([]*cli.Command{Run(cfg)}) }

	err = testutils.RunCLITestAllowError(t, newApp(), []string{"pkgmeta", "sync"}, dir)
	if !errors.Is(err, ErrDowngrade) {
		t.Fatalf("error = %v, want ErrDowngrade", err)
	}

	testutils.CaptureStdout(func() {
		testutils.RunCLITest(t, newApp(), []string{"pkgmeta", "sync", "--allow-downgrade"}, dir)
	})
	if !strings.Contains(testutils.ReadTempFile(t, pkg), "\"2.2.0\"") {
		t.Error("--allow-downgrade did not write package.json")
	}
}

func TestCLI_Sync(t *testing.T) {
	dir := t.TempDir()
	cfgPath := testutils.WriteTempConfig(t, dir, "source:\n  path: ddgr.py\nsync:\n  - path: package.json\n")
	testutils.WriteTempFile(t, dir, "ddgr.py", "_VERSION_ = '2.2'\n")
	pkg := testutils.WriteTempFile(t, dir, "package.json", "{\n  \"version\": \"2.1\"\n}\n")

	cfg, err := config.LoadFrom(cfgPath)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	newApp := func() *cli.Command { return testutils.BuildCLIForTests([]*cli.Command{Run(cfg)}) }

	output, _ := testutils.CaptureStdout(func() {
		testutils.RunCLITest(t, newApp(), []string{"pkgmeta", "sync", "--dry-run"}, dir)
	})
	if !strings.Contains(output, "would update 2.1 -> 2.2") {
		t.Errorf("dry-run output = %q", output)
	}
	if strings.Contains(testutils.ReadTempFile(t, pkg), "2.2") {
		t.Error("dry run wrote package.json")
	}

	output, _ = testutils.CaptureStdout(func() {
		testutils.RunCLITest(t, newApp(), []string{"pkgmeta", "sync"}, dir)
	})
	if !strings.Contains(output, "2.1 -> 2.2") || !strings.Contains(testutils.ReadTempFile(t, pkg), "\"2.2\"") {
		t.Errorf("sync output = %q", output)
	}

	output, _ = testutils.CaptureStdout(func() {
		testutils.RunCLITest(t, newApp(), []string{"pkgmeta", "sync"}, dir)
	})
	if !strings.Contains(output, "already at 2.2") {
		t.Errorf("second sync output = %q", output)
	}
}

func TestCLI_Sync_NothingConfigured(t *testing.T) {
	cfg := config.Default()
	app := testutils.BuildCLIForTests([]*cli.Command{Run(cfg)})
	output, _ := testutils.CaptureStdout(func() {
		testutils.RunCLITest(t, app, []string{"pkgmeta", "sync"}, t.TempDir())
	})
	if !strings.Contains(output, "Nothing to sync") {
		t.Errorf("output = %q", output)
	}
}
