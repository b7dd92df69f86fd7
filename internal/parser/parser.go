package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/indaco/pkgmeta/internal/core"
	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
)

// Reader extracts versions from artifacts.
type Reader struct {
	fs core.FileSystem
}

// NewReader creates a new Reader with the given filesystem.
func NewReader(fs core.FileSystem) *Reader {
	return &Reader{fs: fs}
}

// Read extracts a version from an artifact based on the provided configuration.
// Read failures are returned wrapped so callers can test for fs.ErrNotExist.
func (r *Reader) Read(ctx context.Context, cfg FileConfig) (*Result, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("file path is required")
	}

	if !cfg.Format.IsValid() {
		return nil, fmt.Errorf("invalid format: %s", cfg.Format)
	}

	// Compile before touching the disk so a bad pattern is reported as such.
	var re *regexp.Regexp
	if cfg.Format == FormatRegex {
		var err error
		if re, err = CompilePattern(cfg.Pattern); err != nil {
			return nil, err
		}
	}

	data, err := r.fs.ReadFile(ctx, cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", cfg.Path, err)
	}

	var version string
	switch cfg.Format {
	case FormatRegex:
		version, err = extractRegex(data, cfg.Path, re)
	case FormatJSON:
		version, err = readStructured(data, cfg.Path, cfg.Field, "JSON", unmarshalJSONC)
	case FormatYAML:
		version, err = readStructured(data, cfg.Path, cfg.Field, "YAML", yaml.Unmarshal)
	case FormatTOML:
		version, err = readStructured(data, cfg.Path, cfg.Field, "TOML", toml.Unmarshal)
	case FormatRaw:
		version = strings.TrimSpace(string(data))
		if version == "" {
			err = fmt.Errorf("%w: %q is empty", ErrEmptyVersion, cfg.Path)
		}
	}
	if err != nil {
		return nil, err
	}

	return &Result{
		Version: version,
		Path:    cfg.Path,
		Format:  cfg.Format,
		Field:   cfg.Field,
	}, nil
}

// ReadVersion is a convenience method that returns just the version string.
func (r *Reader) ReadVersion(ctx context.Context, cfg FileConfig) (string, error) {
	result, err := r.Read(ctx, cfg)
	if err != nil {
		return "", err
	}
	return result.Version, nil
}

// CompilePattern compiles a version pattern and checks that it captures.
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, fmt.Errorf("pattern is required for regex format")
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern %q: %w", pattern, err)
	}
	if re.NumSubexp() < 1 {
		return nil, fmt.Errorf("regex pattern %q must have a capturing group", pattern)
	}
	return re, nil
}

// extractRegex returns the first capture of the leftmost match, which may be
// empty. Later matches are ignored.
func extractRegex(data []byte, path string, re *regexp.Regexp) (string, error) {
	matches := re.FindSubmatch(data)
	if matches == nil {
		return "", fmt.Errorf("%w in %q (pattern %q)", ErrNoMatch, path, re.String())
	}
	return string(matches[1]), nil
}

// unmarshalJSONC strips comments and trailing commas before decoding.
func unmarshalJSONC(data []byte, v any) error {
	return json.Unmarshal(jsonc.ToJSON(data), v)
}

func readStructured(data []byte, path, field, kind string, unmarshal func([]byte, any) error) (string, error) {
	if field == "" {
		return "", fmt.Errorf("field is required for %s format", kind)
	}

	var obj map[string]any
	if err := unmarshal(data, &obj); err != nil {
		return "", fmt.Errorf("failed to parse %s in %q: %w", kind, path, err)
	}

	value, err := getNestedValue(obj, field)
	if err != nil {
		return "", fmt.Errorf("in file %q: %w", path, err)
	}

	version, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("field %q in %q is not a string", field, path)
	}
	if version == "" {
		return "", fmt.Errorf("%w: field %q in %q", ErrEmptyVersion, field, path)
	}

	return version, nil
}

// getNestedValue retrieves a value from a nested map using dot notation.
// Example: "tool.poetry.version" accesses obj["tool"]["poetry"]["version"]
func getNestedValue(obj map[string]any, field string) (any, error) {
	if field == "" {
		return nil, fmt.Errorf("field path cannot be empty")
	}

	parts := strings.Split(field, ".")
	current := any(obj)

	for i, part := range parts {
		currentMap, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q is not an object at path %q", strings.Join(parts[:i], "."), part)
		}

		value, exists := currentMap[part]
		if !exists {
			return nil, fmt.Errorf("%w: %q", ErrFieldNotFound, field)
		}

		current = value
	}

	return current, nil
}

// FieldForFile returns the usual version field for well-known manifests.
func FieldForFile(filename string) string {
	fields := map[string]string{
		"package.json":   "version",
		"composer.json":  "version",
		"Cargo.toml":     "package.version",
		"pyproject.toml": "project.version",
		"Chart.yaml":     "version",
		"pubspec.yaml":   "version",
	}

	parts := strings.Split(filename, "/")
	if field, ok := fields[parts[len(parts)-1]]; ok {
		return field
	}
	return "version"
}

// FormatForFile guesses the format from a file name. Anything that is not
// a structured document or a plain version file is treated as source code.
func FormatForFile(filename string) Format {
	lower := strings.ToLower(filename)
	base := lower[strings.LastIndex(lower, "/")+1:]

	switch {
	case strings.HasSuffix(lower, ".json"), strings.HasSuffix(lower, ".jsonc"):
		return FormatJSON
	case strings.HasSuffix(lower, ".yaml"), strings.HasSuffix(lower, ".yml"):
		return FormatYAML
	case strings.HasSuffix(lower, ".toml"):
		return FormatTOML
	case base == "version", base == ".version", base == "version.txt":
		return FormatRaw
	default:
		return FormatRegex
	}
}
