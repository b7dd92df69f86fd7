package config

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/indaco/pkgmeta/internal/core"
	"github.com/indaco/pkgmeta/internal/descriptor"
	"github.com/indaco/pkgmeta/internal/parser"
)

const (
	// DefaultConfigFile is the config file looked up in the working directory.
	DefaultConfigFile = ".pkgmeta.yaml"

	// DefaultSourcePath and DefaultSourceScript locate the version marker
	// when no source is configured.
	DefaultSourcePath   = "ddgr.py"
	DefaultSourceScript = "ddgr"

	// DefaultDescriptionPath is the long description read when none is configured.
	DefaultDescriptionPath = "README.md"

	// SourceEnvVar overrides source.path.
	SourceEnvVar = "PKGMETA_SOURCE"
)

// SourceConfig locates the primary source artifact and its version marker.
type SourceConfig struct {
	// Path is the text-loadable artifact the version is read from.
	Path string `yaml:"path"`

	// Script is an executable copied to Path before reading, when present.
	Script string `yaml:"script,omitempty"`

	// KeepAlias leaves the copy of Script in place after the run.
	KeepAlias bool `yaml:"keep_alias,omitempty"`

	Format  string `yaml:"format,omitempty"`
	Field   string `yaml:"field,omitempty"`
	Pattern string `yaml:"pattern,omitempty"`

	// formatDerived and fieldDerived mark values guessed from Path.
	formatDerived bool
	fieldDerived  bool
}

// applyDefaults fills the format, and the field or pattern it needs, from Path.
func (s *SourceConfig) applyDefaults() {
	if s.Format == "" {
		s.Format = parser.FormatForFile(s.Path).String()
		s.formatDerived = true
	}
	switch parser.ParseFormat(s.Format) {
	case parser.FormatRegex:
		if s.Pattern == "" {
			s.Pattern = parser.DefaultVersionPattern
		}
	case parser.FormatJSON, parser.FormatYAML, parser.FormatTOML:
		if s.Field == "" {
			s.Field = parser.FieldForFile(s.Path)
			s.fieldDerived = true
		}
	}
}

// FileConfig returns the parser configuration for the source artifact,
// resolved against root.
func (s SourceConfig) FileConfig(root string) parser.FileConfig {
	return parser.FileConfig{
		Path:    Resolve(root, s.Path),
		Format:  parser.ParseFormat(s.Format),
		Field:   s.Field,
		Pattern: s.Pattern,
	}
}

// DescriptionConfig locates the long description.
type DescriptionConfig struct {
	Path        string `yaml:"path"`
	ContentType string `yaml:"content_type,omitempty"`
	Fallback    string `yaml:"fallback,omitempty"`
	Required    bool   `yaml:"required,omitempty"`
}

// Metadata holds the static descriptor fields supplied by the project.
type Metadata struct {
	Name           string                 `yaml:"name,omitempty" toml:"name,omitempty" json:"name,omitempty"`
	URL            string                 `yaml:"url,omitempty" toml:"url,omitempty" json:"url,omitempty"`
	License        string                 `yaml:"license,omitempty" toml:"license,omitempty" json:"license,omitempty"`
	LicenseFile    string                 `yaml:"license_file,omitempty" toml:"license_file,omitempty" json:"license_file,omitempty"`
	Author         string                 `yaml:"author,omitempty" toml:"author,omitempty" json:"author,omitempty"`
	AuthorEmail    string                 `yaml:"author_email,omitempty" toml:"author_email,omitempty" json:"author_email,omitempty"`
	Description    string                 `yaml:"description,omitempty" toml:"description,omitempty" json:"description,omitempty"`
	PythonRequires string                 `yaml:"python_requires,omitempty" toml:"python_requires,omitempty" json:"python_requires,omitempty"`
	Platforms      []string               `yaml:"platforms,omitempty" toml:"platforms,omitempty" json:"platforms,omitempty"`
	PyModules      []string               `yaml:"py_modules,omitempty" toml:"py_modules,omitempty" json:"py_modules,omitempty"`
	EntryPoints    descriptor.EntryPoints `yaml:"entry_points,omitempty" toml:"entry_points,omitempty" json:"entry_points,omitzero"`
	Classifiers    []string               `yaml:"classifiers,omitempty" toml:"classifiers,omitempty" json:"classifiers,omitempty"`
}

// PublishConfig controls how the descriptor is handed to the toolchain.
type PublishConfig struct {
	Format  string   `yaml:"format,omitempty"`
	Output  string   `yaml:"output,omitempty"`
	Command string   `yaml:"command,omitempty"`
	Args    []string `yaml:"args,omitempty"`
}

// SyncFile is a manifest that should carry the same version as the source.
type SyncFile struct {
	Path    string `yaml:"path"`
	Format  string `yaml:"format,omitempty"`
	Field   string `yaml:"field,omitempty"`
	Pattern string `yaml:"pattern,omitempty"`
}

// FileConfig returns the parser configuration for the manifest, resolved
// against root. The format defaults to one guessed from the file name.
func (s SyncFile) FileConfig(root string) parser.FileConfig {
	format := parser.FormatForFile(s.Path)
	if s.Format != "" {
		format = parser.Format(s.Format)
	}
	field := s.Field
	if field == "" && format != parser.FormatRegex && format != parser.FormatRaw {
		field = parser.FieldForFile(s.Path)
	}
	return parser.FileConfig{
		Path:    Resolve(root, s.Path),
		Format:  format,
		Field:   field,
		Pattern: s.Pattern,
	}
}

// Config is the main configuration structure for pkgmeta.
type Config struct {
	Source       SourceConfig      `yaml:"source"`
	Description  DescriptionConfig `yaml:"description"`
	MetadataFile string            `yaml:"metadata_file,omitempty"`
	Metadata     Metadata          `yaml:"metadata"`
	Publish      PublishConfig     `yaml:"publish,omitempty"`
	Sync         []SyncFile        `yaml:"sync,omitempty"`

	// Root is the directory relative paths are resolved against.
	Root string `yaml:"-"`
}

// Default returns a configuration with every default applied and no
// project metadata.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills empty settings with their defaults.
func (c *Config) ApplyDefaults() {
	if c.Source.Path == "" {
		c.Source.Path = DefaultSourcePath
		if c.Source.Script == "" {
			c.Source.Script = DefaultSourceScript
		}
	}
	c.Source.applyDefaults()
	if c.Description.Path == "" {
		c.Description.Path = DefaultDescriptionPath
	}
	if c.Publish.Format == "" {
		c.Publish.Format = string(descriptor.FormatJSON)
	}
	if c.Root == "" {
		c.Root = "."
	}
}

// Resolve joins a relative path to root. Absolute paths are returned unchanged.
func Resolve(root, path string) string {
	if path == "" || filepath.IsAbs(path) || root == "" {
		return path
	}
	return filepath.Join(root, path)
}

// Function variables for testability.
var (
	LoadConfigFn = loadConfig
	LoadFromFn   = LoadFrom
	SaveConfigFn = func(ctx context.Context, cfg *Config, path string) error {
		return defaultConfigSaver.SaveTo(ctx, cfg, path)
	}
)

// loadConfig reads .pkgmeta.yaml from the working directory. It returns
// nil, nil when the file does not exist so callers can fall back to Default.
func loadConfig() (*Config, error) {
	cfg, err := LoadFrom(DefaultConfigFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return cfg, nil
}

// LoadFrom reads and strictly decodes a config file, applies defaults and
// the environment override. Root is set to the file's directory.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data), yaml.Strict())
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg.Root = filepath.Dir(path)
	cfg.ApplyDefaults()

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv applies the PKGMETA_SOURCE override.
func (c *Config) ApplyEnv() error {
	envPath := os.Getenv(SourceEnvVar)
	if envPath == "" {
		return nil
	}
	if err := c.SetSourcePath(envPath); err != nil {
		return fmt.Errorf("invalid %s: %w", SourceEnvVar, err)
	}
	return nil
}

// SetSourcePath reads the version from path instead of the configured
// source. The script alias is dropped since it targets the old path, and a
// format or field guessed from the old path is guessed again from the new
// one. Explicitly configured values are kept. Relative paths containing
// ".." are rejected.
func (c *Config) SetSourcePath(path string) error {
	cleanPath := filepath.Clean(path)
	if !filepath.IsAbs(cleanPath) && strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed in %q, use absolute path instead", path)
	}
	if cleanPath == c.Source.Path {
		return nil
	}

	c.Source.Path = cleanPath
	c.Source.Script = ""
	if c.Source.formatDerived {
		c.Source.Format = ""
		c.Source.formatDerived = false
	}
	if c.Source.fieldDerived {
		c.Source.Field = ""
		c.Source.fieldDerived = false
	}
	c.Source.applyDefaults()
	return nil
}

// ConfigSaver writes configuration files with injected dependencies.
type ConfigSaver struct {
	marshaler core.Marshaler
	fs        core.FileSystem
}

// yamlMarshaler is the production implementation of core.Marshaler.
type yamlMarshaler struct{}

func (m *yamlMarshaler) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

// NewConfigSaver creates a ConfigSaver. Nil dependencies are replaced by
// the production defaults.
func NewConfigSaver(marshaler core.Marshaler, fs core.FileSystem) *ConfigSaver {
	if marshaler == nil {
		marshaler = &yamlMarshaler{}
	}
	if fs == nil {
		fs = core.NewOSFileSystem()
	}
	return &ConfigSaver{marshaler: marshaler, fs: fs}
}

// SaveTo writes cfg to path.
func (s *ConfigSaver) SaveTo(ctx context.Context, cfg *Config, path string) error {
	data, err := s.marshaler.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config to %q: %w", path, err)
	}

	if err := s.fs.WriteFile(ctx, path, data, ConfigFilePerm); err != nil {
		return fmt.Errorf("failed to write config to %q: %w", path, err)
	}
	return nil
}

var defaultConfigSaver = NewConfigSaver(nil, nil)

// ConfigFilePerm is the permission used for written config files.
const ConfigFilePerm = core.PermPublicRead
