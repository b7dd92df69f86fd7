// Package show implements the "version" command, which prints the version
// extracted from the source artifact.
package show

import (
	"context"
	"fmt"

	"github.com/indaco/pkgmeta/internal/clix"
	"github.com/indaco/pkgmeta/internal/config"
	"github.com/indaco/pkgmeta/internal/printer"
	"github.com/urfave/cli/v3"
)

// Run returns the "version" command.
func Run(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "version",
		Aliases:   []string{"show"},
		Usage:     "Print the version found in the source artifact",
		UsageText: "pkgmeta version [--verbose-output]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose-output",
				Usage: "Also print where the version was read from",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runShowCmd(ctx, cmd, cfg)
		},
	}
}

func runShowCmd(ctx context.Context, cmd *cli.Command, cfg *config.Config) error {
	fs := clix.NewFileSystemFn()
	version, err := clix.NewAssembler(ctx, fs, cfg).LocateVersion(ctx, cfg.Source)
	if err != nil {
		return err
	}

	if !cmd.Bool("verbose-output") {
		fmt.Println(version)
		return nil
	}

	fmt.Println(printer.KeyValue("version", version))
	fmt.Println(printer.KeyValue("source", config.Resolve(cfg.Root, cfg.Source.Path)))
	if cfg.Source.Script != "" {
		fmt.Println(printer.KeyValue("script", config.Resolve(cfg.Root, cfg.Source.Script)))
	}
	fmt.Println(printer.KeyValue("format", cfg.Source.Format))
	return nil
}
