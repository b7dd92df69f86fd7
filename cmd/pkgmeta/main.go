package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/indaco/pkgmeta/internal/cli"
	"github.com/indaco/pkgmeta/internal/config"
	"github.com/indaco/pkgmeta/internal/printer"
)

func main() {
	if err := runCLI(os.Args); err != nil {
		printer.PrintFailure(err)
		os.Exit(1)
	}
}

// runCLI builds the root command with default settings and runs it.
// SIGINT and SIGTERM cancel the run; a readable alias created so far is
// still cleaned up.
func runCLI(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Default()
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}

	app := cli.New(cfg)
	return app.Run(ctx, args)
}
