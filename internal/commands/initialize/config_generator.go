package initialize

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/indaco/pkgmeta/internal/config"
	"github.com/indaco/pkgmeta/internal/discovery"
)

// DraftFromDiscovery builds a starter configuration from what discovery
// found. Fields that cannot be inferred are left empty for the user.
func DraftFromDiscovery(found *discovery.Result) *config.Config {
	cfg := &config.Config{}

	if path, script, _, ok := found.Primary(); ok {
		cfg.Source.Path = path
		cfg.Source.Script = script
	} else {
		cfg.Source.Path = config.DefaultSourcePath
		cfg.Source.Script = config.DefaultSourceScript
	}

	cfg.Description.Path = found.Readme()
	if cfg.Description.Path == "" {
		cfg.Description.Path = config.DefaultDescriptionPath
	}

	name := moduleName(cfg.Source.Path)
	cfg.Metadata.Name = name
	cfg.Metadata.Platforms = []string{"any"}
	cfg.Metadata.PyModules = []string{name}
	cfg.Metadata.EntryPoints.ConsoleScripts = []string{fmt.Sprintf("%s = %s:main", name, name)}
	return cfg
}

func moduleName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

type section struct {
	comment string
	key     string
	value   any
}

// GenerateConfigWithComments renders cfg as a commented .pkgmeta.yaml.
func GenerateConfigWithComments(cfg *config.Config) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("# pkgmeta configuration file\n")
	buf.WriteString("# Run 'pkgmeta doctor' after editing to check it.\n\n")

	sections := []section{
		{
			comment: "Where the version marker lives. When script exists it is copied to path before reading.",
			key:     "source",
			value:   cfg.Source,
		},
		{
			comment: "Long description. A missing file falls back to a link to the project URL.",
			key:     "description",
			value:   cfg.Description,
		},
		{
			comment: "Static package metadata. Fill in url, license, author and classifiers.",
			key:     "metadata",
			value:   cfg.Metadata,
		},
	}
	if cfg.MetadataFile != "" {
		sections = append(sections, section{"Metadata file merged under the metadata block.", "metadata_file", cfg.MetadataFile})
	}
	if cfg.Publish.Format != "" || cfg.Publish.Output != "" || cfg.Publish.Command != "" {
		sections = append(sections, section{"How 'pkgmeta build' hands the descriptor over.", "publish", cfg.Publish})
	}
	if len(cfg.Sync) > 0 {
		sections = append(sections, section{"Files 'pkgmeta sync' keeps at the source version.", "sync", cfg.Sync})
	}

	for i, s := range sections {
		data, err := yaml.Marshal(map[string]any{s.key: s.value})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s: %w", s.key, err)
		}
		if i > 0 {
			buf.WriteString("\n")
		}
		fmt.Fprintf(&buf, "# %s\n", s.comment)
		buf.Write(data)
	}
	return buf.Bytes(), nil
}

// commentedMarshaler renders configs through GenerateConfigWithComments.
type commentedMarshaler struct{}

func (commentedMarshaler) Marshal(v any) ([]byte, error) {
	cfg, ok := v.(*config.Config)
	if !ok {
		return nil, fmt.Errorf("cannot render %T as a pkgmeta config", v)
	}
	return GenerateConfigWithComments(cfg)
}
