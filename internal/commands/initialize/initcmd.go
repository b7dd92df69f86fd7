// Package initialize implements the "init" command, which writes a starter
// .pkgmeta.yaml based on the files found in the project.
package initialize

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/indaco/pkgmeta/internal/clix"
	"github.com/indaco/pkgmeta/internal/config"
	"github.com/indaco/pkgmeta/internal/discovery"
	"github.com/indaco/pkgmeta/internal/printer"
	"github.com/urfave/cli/v3"
)

// ErrConfigExists is returned when the target config exists and --force is
// not set.
var ErrConfigExists = errors.New("config file already exists")

// Run returns the "init" command.
func Run() *cli.Command {
	return &cli.Command{
		Name:      "init",
		Usage:     "Create a .pkgmeta.yaml from the files in the current directory",
		UsageText: "pkgmeta init [--path FILE] [--force]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "path",
				Usage: "Where to write the config",
				Value: config.DefaultConfigFile,
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing config",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runInitCmd(ctx, cmd)
		},
	}
}

func runInitCmd(ctx context.Context, cmd *cli.Command) error {
	fsys := clix.NewFileSystemFn()
	path := cmd.String("path")
	root := filepath.Dir(path)

	if _, err := fsys.Stat(ctx, path); err == nil {
		if !cmd.Bool("force") {
			return fmt.Errorf("%w: %s (use --force to overwrite)", ErrConfigExists, path)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to check %q: %w", path, err)
	}

	svc, err := discovery.NewService(fsys, "")
	if err != nil {
		return err
	}
	found, err := svc.Discover(ctx, root)
	if err != nil {
		return err
	}

	draft := DraftFromDiscovery(found)
	saver := config.NewConfigSaver(commentedMarshaler{}, fsys)
	if err := saver.SaveTo(ctx, draft, path); err != nil {
		return err
	}

	printSummary(path, draft, found)
	return nil
}

func printSummary(path string, draft *config.Config, found *discovery.Result) {
	printer.PrintSuccess(fmt.Sprintf("Created %s", path))

	if _, _, version, ok := found.Primary(); ok {
		source := draft.Source.Path
		if draft.Source.Script != "" {
			source = draft.Source.Script
		}
		fmt.Printf("  source:      %s (version %s)\n", source, version)
	} else {
		printer.PrintWarning(fmt.Sprintf("  no version marker found, defaulted to %s", draft.Source.Path))
	}

	if found.Readme() != "" {
		fmt.Printf("  description: %s\n", found.Readme())
	} else {
		fmt.Printf("  description: %s %s\n", draft.Description.Path, printer.Faint("(not found, fallback text will be used)"))
	}

	for _, m := range found.Mismatches {
		printer.PrintWarning(fmt.Sprintf("  %s has version %s, %s has %s", m.Alias, m.AliasVersion, m.Script, m.ScriptVersion))
	}

	fmt.Println()
	printer.PrintFaint("Fill in the metadata block, then run 'pkgmeta doctor'.")
}
