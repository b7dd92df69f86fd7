package config

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/indaco/pkgmeta/internal/core"
	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
)

// ResolveMetadata returns the static metadata for cfg. When MetadataFile is
// set, its fields form the base and every non-empty inline field overrides
// the matching one.
func ResolveMetadata(ctx context.Context, fs core.FileSystem, cfg *Config) (Metadata, error) {
	if cfg.MetadataFile == "" {
		return cfg.Metadata.clone(), nil
	}

	path := Resolve(cfg.Root, cfg.MetadataFile)
	base, err := LoadMetadataFile(ctx, fs, path)
	if err != nil {
		return Metadata{}, err
	}
	return base.merge(cfg.Metadata), nil
}

// LoadMetadataFile decodes a standalone metadata file. The format follows
// the extension: .toml, .json/.jsonc, otherwise YAML.
func LoadMetadataFile(ctx context.Context, fs core.FileSystem, path string) (Metadata, error) {
	data, err := fs.ReadFile(ctx, path)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to read metadata file %q: %w", path, err)
	}

	var md Metadata
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &md)
	case ".json", ".jsonc":
		err = json.Unmarshal(jsonc.ToJSON(data), &md)
	default:
		err = yaml.Unmarshal(data, &md)
	}
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to parse metadata file %q: %w", path, err)
	}
	return md, nil
}

// merge returns m with every non-empty field of override applied.
func (m Metadata) merge(override Metadata) Metadata {
	out := m.clone()
	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setList := func(dst *[]string, v []string) {
		if len(v) > 0 {
			*dst = slices.Clone(v)
		}
	}

	setString(&out.Name, override.Name)
	setString(&out.URL, override.URL)
	setString(&out.License, override.License)
	setString(&out.LicenseFile, override.LicenseFile)
	setString(&out.Author, override.Author)
	setString(&out.AuthorEmail, override.AuthorEmail)
	setString(&out.Description, override.Description)
	setString(&out.PythonRequires, override.PythonRequires)
	setList(&out.Platforms, override.Platforms)
	setList(&out.PyModules, override.PyModules)
	setList(&out.EntryPoints.ConsoleScripts, override.EntryPoints.ConsoleScripts)
	setList(&out.Classifiers, override.Classifiers)
	return out
}

func (m Metadata) clone() Metadata {
	m.Platforms = slices.Clone(m.Platforms)
	m.PyModules = slices.Clone(m.PyModules)
	m.EntryPoints.ConsoleScripts = slices.Clone(m.EntryPoints.ConsoleScripts)
	m.Classifiers = slices.Clone(m.Classifiers)
	return m
}
