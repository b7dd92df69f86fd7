// Package sync implements the "sync" command, which writes the source
// version into the manifests listed under sync in .pkgmeta.yaml.
package sync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/indaco/pkgmeta/internal/clix"
	"github.com/indaco/pkgmeta/internal/config"
	"github.com/indaco/pkgmeta/internal/core"
	"github.com/indaco/pkgmeta/internal/parser"
	"github.com/indaco/pkgmeta/internal/printer"
	"github.com/indaco/pkgmeta/internal/semver"
	"github.com/urfave/cli/v3"
)

// Status is the outcome of syncing one file.
type Status int

const (
	StatusUpToDate Status = iota
	StatusUpdated
	StatusWouldUpdate
)

// ErrDowngrade is returned when a target already carries a newer semantic
// version than the source.
var ErrDowngrade = errors.New("refusing to downgrade")

// Options controls SyncFiles.
type Options struct {
	// DryRun reports what would change without writing.
	DryRun bool
	// AllowDowngrade writes the source version even when a target is newer.
	AllowDowngrade bool
}

// FileResult describes what happened to one sync target.
type FileResult struct {
	Path     string
	Previous string
	Status   Status
}

// Run returns the "sync" command.
func Run(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "sync",
		Usage:     "Write the source version into the configured manifests",
		UsageText: "pkgmeta sync [--dry-run] [--allow-downgrade]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"n"},
				Usage:   "Show what would change without writing",
			},
			&cli.BoolFlag{
				Name:  "allow-downgrade",
				Usage: "Overwrite targets that carry a newer version",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runSyncCmd(ctx, cmd, cfg)
		},
	}
}

func runSyncCmd(ctx context.Context, cmd *cli.Command, cfg *config.Config) error {
	if len(cfg.Sync) == 0 {
		printer.PrintWarning(fmt.Sprintf("Nothing to sync: no sync entries in %s", config.DefaultConfigFile))
		return nil
	}

	fsys := clix.NewFileSystemFn()
	version, err := clix.NewAssembler(ctx, fsys, cfg).LocateVersion(ctx, cfg.Source)
	if err != nil {
		return err
	}

	opts := Options{
		DryRun:         cmd.Bool("dry-run"),
		AllowDowngrade: cmd.Bool("allow-downgrade"),
	}
	results, err := SyncFiles(ctx, fsys, cfg, version, opts)
	printResults(version, results)
	return err
}

// SyncFiles writes version into every sync target. Files that already
// carry it are left untouched. A target holding a newer semantic version
// fails with ErrDowngrade unless opts.AllowDowngrade is set. With
// opts.DryRun set nothing is written. It stops at the first failing file.
func SyncFiles(ctx context.Context, fsys core.FileSystem, cfg *config.Config, version string, opts Options) ([]FileResult, error) {
	rw := parser.NewReadWriter(fsys)
	results := make([]FileResult, 0, len(cfg.Sync))

	for _, target := range cfg.Sync {
		fc := target.FileConfig(cfg.Root)

		current, err := rw.ReadVersion(ctx, fc)
		if err != nil && !isMissingVersion(err) {
			if errors.Is(err, fs.ErrNotExist) {
				return results, fmt.Errorf("sync target %q does not exist: %w", fc.Path, err)
			}
			return results, fmt.Errorf("failed to read sync target %q: %w", fc.Path, err)
		}

		if current != version && !opts.AllowDowngrade {
			if err := checkDowngrade(current, version); err != nil {
				return results, fmt.Errorf("sync target %q: %w", fc.Path, err)
			}
		}

		res := FileResult{Path: target.Path, Previous: current}
		switch {
		case current == version:
			res.Status = StatusUpToDate
		case opts.DryRun:
			res.Status = StatusWouldUpdate
		default:
			if err := rw.Write(ctx, fc, version); err != nil {
				return results, fmt.Errorf("failed to sync %q: %w", fc.Path, err)
			}
			res.Status = StatusUpdated
		}
		results = append(results, res)
	}
	return results, nil
}

// checkDowngrade fails when both versions are semantic versions and next
// is older than current. Anything else is allowed through.
func checkDowngrade(current, next string) error {
	cur, err := semver.ParseVersion(current)
	if err != nil {
		return nil
	}
	nv, err := semver.ParseVersion(next)
	if err != nil {
		return nil
	}
	if nv.Compare(cur) < 0 {
		return fmt.Errorf("%w from %s to %s (use --allow-downgrade)", ErrDowngrade, cur.String(), nv.String())
	}
	return nil
}

// isMissingVersion reports errors for a readable file that carries no
// version yet. Such files are still written.
func isMissingVersion(err error) bool {
	return errors.Is(err, parser.ErrFieldNotFound) || errors.Is(err, parser.ErrEmptyVersion)
}

func printResults(version string, results []FileResult) {
	for _, r := range results {
		previous := r.Previous
		if previous == "" {
			previous = "none"
		}
		switch r.Status {
		case StatusUpToDate:
			fmt.Printf("  %s %s %s\n", printer.Faint("="), r.Path, printer.Faint("already at "+version))
		case StatusWouldUpdate:
			fmt.Printf("  %s %s %s\n", printer.Info("~"), r.Path, printer.Faint(fmt.Sprintf("would update %s -> %s", previous, version)))
		case StatusUpdated:
			fmt.Printf("  %s %s %s\n", printer.Success("✓"), r.Path, printer.Faint(fmt.Sprintf("%s -> %s", previous, version)))
		}
	}
}
