package publish

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/indaco/pkgmeta/internal/config"
	"github.com/indaco/pkgmeta/internal/core"
	"github.com/indaco/pkgmeta/internal/descriptor"
)

// Environment variables set for CommandPublisher.
const (
	EnvVersion = "PKGMETA_VERSION"
	EnvName    = "PKGMETA_NAME"
)

// Publisher hands a finished descriptor to the packaging toolchain.
type Publisher interface {
	Publish(ctx context.Context, d descriptor.Descriptor) error
}

// WriterPublisher encodes the descriptor to an io.Writer.
type WriterPublisher struct {
	w      io.Writer
	format descriptor.Format
}

// NewWriterPublisher returns a publisher that writes to w.
func NewWriterPublisher(w io.Writer, format descriptor.Format) *WriterPublisher {
	return &WriterPublisher{w: w, format: format}
}

func (p *WriterPublisher) Publish(ctx context.Context, d descriptor.Descriptor) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := descriptor.Encode(d, p.format)
	if err != nil {
		return err
	}
	if _, err := p.w.Write(data); err != nil {
		return fmt.Errorf("failed to write descriptor: %w", err)
	}
	return nil
}

// FilePublisher encodes the descriptor to a file.
type FilePublisher struct {
	fs     core.FileSystem
	path   string
	format descriptor.Format
}

// NewFilePublisher returns a publisher that writes to path. An empty format
// is inferred from the file extension.
func NewFilePublisher(fs core.FileSystem, path string, format descriptor.Format) *FilePublisher {
	if format == "" {
		format = descriptor.FormatForPath(path)
	}
	return &FilePublisher{fs: fs, path: path, format: format}
}

// Path returns the destination file.
func (p *FilePublisher) Path() string { return p.path }

func (p *FilePublisher) Publish(ctx context.Context, d descriptor.Descriptor) error {
	data, err := descriptor.Encode(d, p.format)
	if err != nil {
		return err
	}
	if err := p.fs.MkdirAll(ctx, filepath.Dir(p.path), core.PermDir); err != nil {
		return fmt.Errorf("failed to create directory for %q: %w", p.path, err)
	}
	if err := p.fs.WriteFile(ctx, p.path, data, core.PermPublicRead); err != nil {
		return fmt.Errorf("failed to write descriptor to %q: %w", p.path, err)
	}
	return nil
}

// RunFunc executes a prepared command. It is replaced in tests.
type RunFunc func(cmd *exec.Cmd) error

// CommandPublisher runs a toolchain command with the encoded descriptor on
// stdin. The command inherits the environment plus PKGMETA_NAME and
// PKGMETA_VERSION.
type CommandPublisher struct {
	name   string
	args   []string
	dir    string
	format descriptor.Format
	stdout io.Writer
	stderr io.Writer
	run    RunFunc
}

// CommandOption configures a CommandPublisher.
type CommandOption func(*CommandPublisher)

// WithDir sets the working directory of the command.
func WithDir(dir string) CommandOption {
	return func(p *CommandPublisher) { p.dir = dir }
}

// WithOutput sets where the command's stdout and stderr go.
func WithOutput(stdout, stderr io.Writer) CommandOption {
	return func(p *CommandPublisher) {
		p.stdout = stdout
		p.stderr = stderr
	}
}

// WithRunner replaces the function that executes the command.
func WithRunner(run RunFunc) CommandOption {
	return func(p *CommandPublisher) {
		if run != nil {
			p.run = run
		}
	}
}

// NewCommandPublisher returns a publisher that runs name with args.
func NewCommandPublisher(name string, args []string, format descriptor.Format, opts ...CommandOption) *CommandPublisher {
	p := &CommandPublisher{
		name:   name,
		args:   args,
		format: format,
		stdout: os.Stdout,
		stderr: os.Stderr,
		run:    func(cmd *exec.Cmd) error { return cmd.Run() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *CommandPublisher) Publish(ctx context.Context, d descriptor.Descriptor) error {
	if p.name == "" {
		return fmt.Errorf("publish command is empty")
	}
	data, err := descriptor.Encode(d, p.format)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, p.name, p.args...)
	cmd.Dir = p.dir
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = p.stdout
	cmd.Stderr = p.stderr
	cmd.Env = append(os.Environ(), EnvName+"="+d.Name, EnvVersion+"="+d.Version)

	if err := p.run(cmd); err != nil {
		return fmt.Errorf("command %q failed: %w", p.commandLine(), err)
	}
	return nil
}

func (p *CommandPublisher) commandLine() string {
	return strings.TrimSpace(p.name + " " + strings.Join(p.args, " "))
}

// Options selects a publisher in FromConfig.
type Options struct {
	// Output overrides publish.output.
	Output string
	// Format overrides publish.format.
	Format string
	// Run enables publish.command.
	Run    bool
	Stdout io.Writer
	Stderr io.Writer
}

// FromConfig picks the publisher for a run: the configured command when
// opts.Run is set, otherwise a file when an output path is known, otherwise
// opts.Stdout.
func FromConfig(fs core.FileSystem, cfg *config.Config, opts Options) (Publisher, error) {
	formatName := cfg.Publish.Format
	if opts.Format != "" {
		formatName = opts.Format
	}
	output := cfg.Publish.Output
	if opts.Output != "" {
		output = opts.Output
	}

	var format descriptor.Format
	if formatName != "" {
		f, err := descriptor.ParseFormat(formatName)
		if err != nil {
			return nil, err
		}
		format = f
	}

	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	switch {
	case opts.Run:
		if cfg.Publish.Command == "" {
			return nil, fmt.Errorf("publish.command is not set in %s", config.DefaultConfigFile)
		}
		if format == "" {
			format = descriptor.FormatJSON
		}
		return NewCommandPublisher(cfg.Publish.Command, cfg.Publish.Args, format,
			WithDir(cfg.Root), WithOutput(stdout, stderr)), nil
	case output != "":
		if opts.Format == "" && opts.Output != "" {
			format = ""
		}
		return NewFilePublisher(fs, config.Resolve(cfg.Root, output), format), nil
	default:
		if format == "" {
			format = descriptor.FormatJSON
		}
		return NewWriterPublisher(stdout, format), nil
	}
}
