// Package build implements the "build" command: assemble the package
// descriptor and hand it to the packaging toolchain.
package build

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/indaco/pkgmeta/internal/clix"
	"github.com/indaco/pkgmeta/internal/config"
	"github.com/indaco/pkgmeta/internal/core"
	"github.com/indaco/pkgmeta/internal/descriptor"
	"github.com/indaco/pkgmeta/internal/printer"
	"github.com/indaco/pkgmeta/internal/publish"
	"github.com/urfave/cli/v3"
)

// ErrStaleDescriptor is returned by --check when the published descriptor
// no longer matches the project.
var ErrStaleDescriptor = errors.New("descriptor is out of date")

// Run returns the "build" command.
func Run(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "build",
		Usage:     "Assemble the package descriptor and publish it",
		UsageText: "pkgmeta build [--format json|yaml|toml] [--output FILE] [--publish] [--check FILE]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Descriptor encoding: json, yaml or toml",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the descriptor to FILE instead of stdout",
			},
			&cli.BoolFlag{
				Name:  "publish",
				Usage: "Pipe the descriptor to publish.command",
			},
			&cli.StringFlag{
				Name:  "check",
				Usage: "Fail if the descriptor in FILE differs from a fresh build",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runBuildCmd(ctx, cmd, cfg)
		},
	}
}

func runBuildCmd(ctx context.Context, cmd *cli.Command, cfg *config.Config) error {
	fs := clix.NewFileSystemFn()
	a := clix.NewAssembler(ctx, fs, cfg)

	d, err := a.Assemble(ctx, cfg)
	if err != nil {
		return err
	}

	if path := cmd.String("check"); path != "" {
		return checkDescriptor(ctx, fs, config.Resolve(cfg.Root, path), d)
	}

	p, err := publish.FromConfig(fs, cfg, publish.Options{
		Output: cmd.String("output"),
		Format: cmd.String("format"),
		Run:    cmd.Bool("publish"),
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	})
	if err != nil {
		return err
	}

	if err := a.Publish(ctx, p, d); err != nil {
		return err
	}

	switch p := p.(type) {
	case *publish.FilePublisher:
		printer.PrintSuccess(fmt.Sprintf("Wrote %s %s descriptor to %s", d.Name, d.Version, p.Path()))
	case *publish.CommandPublisher:
		printer.PrintSuccess(fmt.Sprintf("Published %s %s", d.Name, d.Version))
	}
	return nil
}

// checkDescriptor compares the descriptor stored at path with d by
// fingerprint, so the stored encoding does not matter.
func checkDescriptor(ctx context.Context, fs core.FileSystem, path string, d descriptor.Descriptor) error {
	data, err := fs.ReadFile(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to read descriptor %q: %w", path, err)
	}
	stored, err := descriptor.Decode(data, descriptor.FormatForPath(path))
	if err != nil {
		return fmt.Errorf("%q: %w", path, err)
	}

	want, err := descriptor.Fingerprint(d)
	if err != nil {
		return err
	}
	got, err := descriptor.Fingerprint(stored)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: %s does not match %s %s", ErrStaleDescriptor, path, d.Name, d.Version)
	}

	printer.PrintSuccess(fmt.Sprintf("%s is up to date (%s %s)", path, d.Name, d.Version))
	return nil
}
