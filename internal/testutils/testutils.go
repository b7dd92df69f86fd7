// Package testutils holds helpers shared by command and CLI tests.
package testutils

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/urfave/cli/v3"
)

// CaptureStdout runs fn and returns what it wrote to os.Stdout.
func CaptureStdout(fn func()) (string, error) {
	return capture(&os.Stdout, fn)
}

// CaptureStderr runs fn and returns what it wrote to os.Stderr.
func CaptureStderr(fn func()) (string, error) {
	return capture(&os.Stderr, fn)
}

func capture(target **os.File, fn func()) (string, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return "", err
	}
	old := *target
	*target = w

	done := make(chan struct{})
	var buf bytes.Buffer
	var copyErr error
	go func() {
		_, copyErr = io.Copy(&buf, r)
		close(done)
	}()

	defer func() {
		*target = old
	}()
	fn()
	_ = w.Close()
	<-done
	_ = r.Close()
	return buf.String(), copyErr
}

// WriteTempFile writes content to name inside dir and returns the path.
func WriteTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// WriteTempConfig writes a .pkgmeta.yaml into dir and returns its path.
func WriteTempConfig(t *testing.T, dir, content string) string {
	t.Helper()
	return WriteTempFile(t, dir, ".pkgmeta.yaml", content)
}

// ReadTempFile returns the contents of path.
func ReadTempFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// BuildCLIForTests wraps commands in a root command the way the real CLI
// does, without global flags.
func BuildCLIForTests(commands []*cli.Command) *cli.Command {
	return &cli.Command{
		Name:     "pkgmeta",
		Commands: commands,
	}
}

// RunCLITest runs app with args from workDir and fails the test on error.
func RunCLITest(t *testing.T, app *cli.Command, args []string, workDir string) {
	t.Helper()
	if err := RunCLITestAllowError(t, app, args, workDir); err != nil {
		t.Fatalf("app.Run(%v) failed: %v", args, err)
	}
}

// RunCLITestAllowError runs app with args from workDir and returns its error.
func RunCLITestAllowError(t *testing.T, app *cli.Command, args []string, workDir string) error {
	t.Helper()
	t.Chdir(workDir)
	return app.Run(context.Background(), args)
}
