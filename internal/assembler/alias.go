package assembler

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
)

// Cleanup undoes a filesystem change. It is safe to call more than once.
type Cleanup func() error

func noCleanup() error { return nil }

// EnsureReadableAlias copies the executable script to alias so the source can
// be read as text under a loadable name. The returned Cleanup restores alias
// to its prior state: removed if it did not exist, rewritten with its old
// content otherwise.
//
// When script is empty, identical to alias, or does not exist, nothing is
// copied and the Cleanup is a no-op. Cleanup ignores cancellation of ctx.
func (a *Assembler) EnsureReadableAlias(ctx context.Context, script, alias string) (Cleanup, error) {
	if script == "" || filepath.Clean(script) == filepath.Clean(alias) {
		return noCleanup, nil
	}

	info, err := a.fs.Stat(ctx, script)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			a.logger.Debug("no script to alias", "script", script)
			return noCleanup, nil
		}
		return noCleanup, fmt.Errorf("failed to stat script %q: %w", script, err)
	}
	if info.IsDir() {
		return noCleanup, fmt.Errorf("script %q is a directory", script)
	}

	restore, err := a.snapshot(ctx, alias)
	if err != nil {
		return noCleanup, err
	}

	data, err := a.fs.ReadFile(ctx, script)
	if err != nil {
		return noCleanup, fmt.Errorf("failed to read script %q: %w", script, err)
	}
	if err := a.fs.WriteFile(ctx, alias, data, info.Mode().Perm()); err != nil {
		return noCleanup, fmt.Errorf("failed to create alias %q for %q: %w", alias, script, err)
	}
	a.logger.Debug("created readable alias", "script", script, "alias", alias)

	done := false
	return func() error {
		if done {
			return nil
		}
		done = true
		return restore(context.WithoutCancel(ctx))
	}, nil
}

// snapshot records the current state of path and returns a function that
// puts it back.
func (a *Assembler) snapshot(ctx context.Context, path string) (func(context.Context) error, error) {
	info, err := a.fs.Stat(ctx, path)
	if errors.Is(err, fs.ErrNotExist) {
		return func(ctx context.Context) error {
			if err := a.fs.Remove(ctx, path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to remove alias %q: %w", path, err)
			}
			a.logger.Debug("removed readable alias", "alias", path)
			return nil
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat alias %q: %w", path, err)
	}

	prior, err := a.fs.ReadFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read alias %q: %w", path, err)
	}
	perm := info.Mode().Perm()
	return func(ctx context.Context) error {
		if err := a.fs.WriteFile(ctx, path, prior, perm); err != nil {
			return fmt.Errorf("failed to restore %q: %w", path, err)
		}
		a.logger.Debug("restored file replaced by alias", "alias", path)
		return nil
	}, nil
}
