package assembler

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/indaco/pkgmeta/internal/config"
	"github.com/indaco/pkgmeta/internal/core"
	"github.com/indaco/pkgmeta/internal/descriptor"
	"github.com/indaco/pkgmeta/internal/markdown"
	"github.com/indaco/pkgmeta/internal/parser"
	"github.com/indaco/pkgmeta/internal/publish"
)

// Content types recorded for long descriptions.
const (
	ContentTypeMarkdown = "text/markdown"
	ContentTypeRST      = "text/x-rst"
	ContentTypePlain    = "text/plain"
)

// Description is a loaded long description.
type Description struct {
	Text string
	// ContentType is empty when Text is the fallback.
	ContentType string
	Path        string
	Fallback    bool
}

// Assembler builds package descriptors from the artifacts under a root directory.
type Assembler struct {
	fs     core.FileSystem
	reader *parser.Reader
	root   string
	logger *slog.Logger
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assembler) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithRoot sets the directory relative artifact paths are resolved against.
func WithRoot(root string) Option {
	return func(a *Assembler) {
		a.root = root
	}
}

// New creates an Assembler reading through fs.
func New(fs core.FileSystem, opts ...Option) *Assembler {
	a := &Assembler{
		fs:     fs,
		reader: parser.NewReader(fs),
		root:   ".",
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// LocateVersion extracts the version from the source artifact. If a script
// is configured it is first aliased to the source path, and the alias is
// cleaned up before returning unless KeepAlias is set.
//
// It returns a *MissingArtifactError when the source does not exist and a
// *MalformedVersionMarkerError when no version can be extracted from it.
func (a *Assembler) LocateVersion(ctx context.Context, src config.SourceConfig) (version string, err error) {
	fc := src.FileConfig(a.root)
	script := config.Resolve(a.root, src.Script)

	cleanup, err := a.EnsureReadableAlias(ctx, script, fc.Path)
	if err != nil {
		return "", err
	}
	if src.KeepAlias {
		cleanup = noCleanup
	}
	defer func() {
		if cerr := cleanup(); cerr != nil {
			version, err = "", errors.Join(err, cerr)
		}
	}()

	result, err := a.reader.Read(ctx, fc)
	if err != nil {
		return "", a.classifyReadError(err, fc, script)
	}

	a.logger.Debug("located version", "path", fc.Path, "format", fc.Format, "version", result.Version)
	return result.Version, nil
}

func (a *Assembler) classifyReadError(err error, fc parser.FileConfig, script string) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return &MissingArtifactError{Role: "source", Path: fc.Path, Script: script, Err: err}
	case errors.Is(err, parser.ErrNoMatch),
		errors.Is(err, parser.ErrFieldNotFound),
		errors.Is(err, parser.ErrEmptyVersion):
		merr := &MalformedVersionMarkerError{Path: fc.Path, Err: err}
		switch fc.Format {
		case parser.FormatRegex:
			merr.Pattern = fc.Pattern
		case parser.FormatRaw:
		default:
			merr.Field = fc.Field
		}
		return merr
	default:
		return err
	}
}

// LoadDescription reads the long description. A missing file yields the
// fallback text unless the description is required.
func (a *Assembler) LoadDescription(ctx context.Context, desc config.DescriptionConfig, projectURL string) (Description, error) {
	path := config.Resolve(a.root, desc.Path)
	if desc.Path == "" {
		return a.fallback(desc, projectURL), nil
	}

	data, err := a.fs.ReadFile(ctx, path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return Description{}, fmt.Errorf("failed to read description %q: %w", path, err)
		}
		if desc.Required {
			return Description{}, &MissingArtifactError{Role: "description", Path: path, Err: err}
		}
		a.logger.Debug("description not found, using fallback", "path", path)
		return a.fallback(desc, projectURL), nil
	}

	contentType := desc.ContentType
	if contentType == "" {
		contentType = ContentTypeFor(path)
	}
	return Description{Text: string(data), ContentType: contentType, Path: path}, nil
}

func (a *Assembler) fallback(desc config.DescriptionConfig, projectURL string) Description {
	text := desc.Fallback
	if text == "" {
		text = FallbackDescription(projectURL)
	}
	return Description{Text: text, Fallback: true}
}

// FallbackDescription is the long description used when no README exists.
func FallbackDescription(projectURL string) string {
	if projectURL == "" {
		return "See the project README for details."
	}
	return fmt.Sprintf("See %s#readme for details.", strings.TrimSuffix(projectURL, "/"))
}

// ContentTypeFor infers the long description content type from a file name.
func ContentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return ContentTypeMarkdown
	case ".rst":
		return ContentTypeRST
	default:
		return ContentTypePlain
	}
}

// AssembleDescriptor combines the version, long description and static
// metadata. It performs no I/O and returns equal descriptors for equal input.
// An empty static description is filled from the first paragraph of a
// markdown long description.
func AssembleDescriptor(version string, desc Description, md config.Metadata) descriptor.Descriptor {
	short := md.Description
	if short == "" && !desc.Fallback && desc.ContentType == ContentTypeMarkdown {
		short = markdown.Summary(desc.Text)
	}

	d := descriptor.Descriptor{
		Name:                       md.Name,
		Version:                    version,
		URL:                        md.URL,
		License:                    md.License,
		LicenseFile:                md.LicenseFile,
		Author:                     md.Author,
		AuthorEmail:                md.AuthorEmail,
		Description:                short,
		LongDescription:            desc.Text,
		LongDescriptionContentType: desc.ContentType,
		PythonRequires:             md.PythonRequires,
		Platforms:                  md.Platforms,
		PyModules:                  md.PyModules,
		EntryPoints:                md.EntryPoints,
		Classifiers:                md.Classifiers,
	}
	return d.Clone()
}

// Assemble runs the whole sequence for cfg and returns the descriptor.
func (a *Assembler) Assemble(ctx context.Context, cfg *config.Config) (descriptor.Descriptor, error) {
	version, err := a.LocateVersion(ctx, cfg.Source)
	if err != nil {
		return descriptor.Descriptor{}, err
	}

	md, err := config.ResolveMetadata(ctx, a.fs, cfg)
	if err != nil {
		return descriptor.Descriptor{}, err
	}

	desc, err := a.LoadDescription(ctx, cfg.Description, md.URL)
	if err != nil {
		return descriptor.Descriptor{}, err
	}

	d := AssembleDescriptor(version, desc, md)
	a.logger.Info("assembled descriptor", "name", d.Name, "version", d.Version, "fallback_description", desc.Fallback)
	return d, nil
}

// Publish hands d to the packaging toolchain.
func (a *Assembler) Publish(ctx context.Context, p publish.Publisher, d descriptor.Descriptor) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.Publish(ctx, d); err != nil {
		return fmt.Errorf("failed to publish %s %s: %w", d.Name, d.Version, err)
	}
	a.logger.Debug("published descriptor", "name", d.Name, "version", d.Version)
	return nil
}
