// Package doctor implements the "doctor" command: validate the
// configuration and check that every input artifact can be read.
package doctor

import (
	"context"
	"errors"
	"fmt"

	"github.com/indaco/pkgmeta/internal/clix"
	"github.com/indaco/pkgmeta/internal/config"
	"github.com/indaco/pkgmeta/internal/core"
	"github.com/indaco/pkgmeta/internal/discovery"
	"github.com/indaco/pkgmeta/internal/parser"
	"github.com/indaco/pkgmeta/internal/printer"
	"github.com/indaco/pkgmeta/internal/semver"
	"github.com/urfave/cli/v3"
)

// ErrChecksFailed is returned when at least one check fails.
var ErrChecksFailed = errors.New("doctor checks failed")

// Run returns the "doctor" command.
func Run(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "doctor",
		Aliases:   []string{"validate"},
		Usage:     "Validate the configuration and the input artifacts",
		UsageText: "pkgmeta doctor [--quiet]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Only print failures and warnings",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runDoctorCmd(ctx, cmd, cfg)
		},
	}
}

func runDoctorCmd(ctx context.Context, cmd *cli.Command, cfg *config.Config) error {
	fs := clix.NewFileSystemFn()

	results, err := config.NewValidator(fs, cfg).Validate(ctx)
	if err != nil {
		return err
	}
	if !config.HasErrors(results) {
		results = append(results, checkArtifacts(ctx, fs, cfg)...)
	}

	quiet := cmd.Bool("quiet")
	for _, r := range results {
		printResult(r, quiet)
	}

	errCount := config.ErrorCount(results)
	warnCount := config.WarningCount(results)
	fmt.Println()
	switch {
	case errCount > 0:
		printer.PrintError(fmt.Sprintf("%d error(s), %d warning(s)", errCount, warnCount))
		return fmt.Errorf("%w: %d error(s)", ErrChecksFailed, errCount)
	case warnCount > 0:
		printer.PrintWarning(fmt.Sprintf("All checks passed with %d warning(s)", warnCount))
	default:
		printer.PrintSuccess("All checks passed")
	}
	return nil
}

// checkArtifacts runs the read side of an assembly without building a
// descriptor.
func checkArtifacts(ctx context.Context, fs core.FileSystem, cfg *config.Config) []config.ValidationResult {
	var results []config.ValidationResult
	add := func(category string, passed bool, message string, warning bool) {
		results = append(results, config.ValidationResult{Category: category, Passed: passed, Message: message, Warning: warning})
	}

	a := clix.NewAssembler(ctx, fs, cfg)
	sourcePath := config.Resolve(cfg.Root, cfg.Source.Path)

	version, err := a.LocateVersion(ctx, cfg.Source)
	switch {
	case err != nil:
		add("Version", false, err.Error(), false)
	case !semver.IsSemVer(version):
		add("Version", true, fmt.Sprintf("version %s found in %s", version, sourcePath), false)
		add("Version", false, fmt.Sprintf("%s is not a strict semantic version (accepted)", version), true)
	default:
		add("Version", true, fmt.Sprintf("version %s found in %s", version, sourcePath), false)
	}

	md, err := config.ResolveMetadata(ctx, fs, cfg)
	if err != nil {
		add("Metadata", false, err.Error(), false)
		return results
	}

	desc, err := a.LoadDescription(ctx, cfg.Description, md.URL)
	switch {
	case err != nil:
		add("Description", false, err.Error(), false)
	case desc.Fallback:
		add("Description", false, fmt.Sprintf("%s not found, using %q", cfg.Description.Path, desc.Text), true)
	default:
		add("Description", true, fmt.Sprintf("%s (%s)", desc.Path, desc.ContentType), false)
	}

	results = append(results, checkAliases(ctx, fs, cfg)...)
	return results
}

// checkAliases warns about scripts whose alias on disk carries another
// version. Only regex sources can be scanned.
func checkAliases(ctx context.Context, fs core.FileSystem, cfg *config.Config) []config.ValidationResult {
	if parser.ParseFormat(cfg.Source.Format) != parser.FormatRegex {
		return nil
	}
	svc, err := discovery.NewService(fs, cfg.Source.Pattern)
	if err != nil {
		return nil
	}
	found, err := svc.Discover(ctx, cfg.Root)
	if err != nil {
		return []config.ValidationResult{{Category: "Discovery", Message: err.Error(), Warning: true}}
	}

	var results []config.ValidationResult
	for _, m := range found.Mismatches {
		msg := fmt.Sprintf("%s has version %s but %s has %s; the build reads version %s from %s",
			m.Alias, m.AliasVersion, m.Script, m.ScriptVersion, m.ScriptVersion, m.Script)
		results = append(results, config.ValidationResult{Category: "Discovery", Message: msg, Warning: true})
	}
	return results
}

func printResult(r config.ValidationResult, quiet bool) {
	switch {
	case r.Passed:
		if !quiet {
			fmt.Printf("%s %s: %s\n", printer.Success("✓"), r.Category, r.Message)
		}
	case r.Warning:
		fmt.Printf("%s %s: %s\n", printer.Warning("!"), r.Category, r.Message)
	default:
		fmt.Printf("%s %s: %s\n", printer.Error("✗"), r.Category, r.Message)
	}
}
