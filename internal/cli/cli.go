// Package cli assembles the root pkgmeta command.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/indaco/pkgmeta/internal/commands/build"
	"github.com/indaco/pkgmeta/internal/commands/doctor"
	"github.com/indaco/pkgmeta/internal/commands/initialize"
	"github.com/indaco/pkgmeta/internal/commands/show"
	"github.com/indaco/pkgmeta/internal/commands/sync"
	"github.com/indaco/pkgmeta/internal/config"
	"github.com/indaco/pkgmeta/internal/logging"
	"github.com/indaco/pkgmeta/internal/printer"
	"github.com/indaco/pkgmeta/internal/version"
	urfavecli "github.com/urfave/cli/v3"
)

// New builds and returns the root CLI command. The config file and global
// flags are applied to cfg in place before any subcommand runs, so every
// subcommand sees the final configuration. cfg should hold the defaults.
func New(cfg *config.Config) *urfavecli.Command {
	var (
		noColorFlag bool
		verboseFlag bool
	)

	return &urfavecli.Command{
		Name:                  "pkgmeta",
		Version:               fmt.Sprintf("v%s", version.GetVersion()),
		Usage:                 "Assemble package metadata from a project's source artifacts",
		EnableShellCompletion: true,
		Flags: []urfavecli.Flag{
			&urfavecli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the config file",
				Value:   config.DefaultConfigFile,
			},
			&urfavecli.StringFlag{
				Name:        "source",
				Aliases:     []string{"s"},
				Usage:       "Path to the source artifact holding the version marker",
				DefaultText: cfg.Source.Path,
				Sources:     urfavecli.EnvVars(config.SourceEnvVar),
			},
			&urfavecli.BoolFlag{
				Name:        "no-color",
				Usage:       "Disable colored output",
				Destination: &noColorFlag,
			},
			&urfavecli.BoolFlag{
				Name:        "verbose",
				Usage:       "Log diagnostics to stderr",
				Destination: &verboseFlag,
			},
		},
		Before: func(ctx context.Context, cmd *urfavecli.Command) (context.Context, error) {
			printer.Configure(noColorFlag)
			logger := logging.New(logging.Options{Verbose: verboseFlag, Writer: os.Stderr})

			if err := loadConfig(cmd, cfg); err != nil {
				return ctx, err
			}
			if cmd.IsSet("source") {
				if err := cfg.SetSourcePath(cmd.String("source")); err != nil {
					return ctx, err
				}
			}

			logger.Debug("configuration ready", "root", cfg.Root, "source", cfg.Source.Path, "script", cfg.Source.Script)
			return logging.NewContext(ctx, logger), nil
		},
		Commands: []*urfavecli.Command{
			initialize.Run(),
			build.Run(cfg),
			show.Run(cfg),
			doctor.Run(cfg),
			sync.Run(cfg),
		},
	}
}

// loadConfig replaces cfg with the file named by --config, or with
// .pkgmeta.yaml from the working directory when it exists.
func loadConfig(cmd *urfavecli.Command, cfg *config.Config) error {
	if cmd.IsSet("config") {
		path := cmd.String("config")
		loaded, err := config.LoadFromFn(path)
		if err != nil {
			return fmt.Errorf("failed to load config %q: %w", path, err)
		}
		*cfg = *loaded
		return nil
	}

	loaded, err := config.LoadConfigFn()
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", config.DefaultConfigFile, err)
	}
	if loaded != nil {
		*cfg = *loaded
	}
	return nil
}
