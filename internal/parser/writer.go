package parser

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/indaco/pkgmeta/internal/core"
	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/sjson"
)

// Writer stamps a version into artifacts.
type Writer struct {
	fs core.FileSystem
}

// NewWriter creates a new Writer with the given filesystem.
func NewWriter(fs core.FileSystem) *Writer {
	return &Writer{fs: fs}
}

// Write writes a version to a file based on the provided configuration.
func (w *Writer) Write(ctx context.Context, cfg FileConfig, version string) error {
	if cfg.Path == "" {
		return fmt.Errorf("file path is required")
	}

	if !cfg.Format.IsValid() {
		return fmt.Errorf("invalid format: %s", cfg.Format)
	}

	switch cfg.Format {
	case FormatJSON:
		return w.writeJSON(ctx, cfg.Path, cfg.Field, version)
	case FormatYAML:
		return w.writeMapped(ctx, cfg.Path, cfg.Field, version, "YAML", yaml.Unmarshal, yaml.Marshal)
	case FormatTOML:
		return w.writeMapped(ctx, cfg.Path, cfg.Field, version, "TOML", toml.Unmarshal, toml.Marshal)
	case FormatRaw:
		return w.writeRaw(ctx, cfg.Path, version)
	default:
		return w.writeRegex(ctx, cfg.Path, cfg.Pattern, version)
	}
}

// writeJSON updates a single field with sjson so key order and formatting survive.
func (w *Writer) writeJSON(ctx context.Context, path, field, version string) error {
	if field == "" {
		return fmt.Errorf("field is required for JSON format")
	}

	data, err := w.fs.ReadFile(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to read file %q: %w", path, err)
	}

	updated, err := sjson.SetBytes(data, field, version)
	if err != nil {
		return fmt.Errorf("failed to set version in %q: %w", path, err)
	}

	if len(updated) > 0 && updated[len(updated)-1] != '\n' {
		updated = append(updated, '\n')
	}

	return w.save(ctx, path, updated)
}

func (w *Writer) writeMapped(
	ctx context.Context,
	path, field, version, kind string,
	unmarshal func([]byte, any) error,
	marshal func(any) ([]byte, error),
) error {
	if field == "" {
		return fmt.Errorf("field is required for %s format", kind)
	}

	data, err := w.fs.ReadFile(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to read file %q: %w", path, err)
	}

	var obj map[string]any
	if err := unmarshal(data, &obj); err != nil {
		return fmt.Errorf("failed to parse %s in %q: %w", kind, path, err)
	}
	if obj == nil {
		obj = make(map[string]any)
	}

	if err := setNestedValue(obj, field, version); err != nil {
		return fmt.Errorf("in file %q: %w", path, err)
	}

	updated, err := marshal(obj)
	if err != nil {
		return fmt.Errorf("failed to marshal %s for %q: %w", kind, path, err)
	}

	return w.save(ctx, path, updated)
}

func (w *Writer) writeRaw(ctx context.Context, path, version string) error {
	content := version
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return w.save(ctx, path, []byte(content))
}

// writeRegex replaces the first capture of every match, leaving the rest of
// the match untouched.
func (w *Writer) writeRegex(ctx context.Context, path, pattern, version string) error {
	re, err := CompilePattern(pattern)
	if err != nil {
		return err
	}

	data, err := w.fs.ReadFile(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to read file %q: %w", path, err)
	}

	locs := re.FindAllSubmatchIndex(data, -1)
	if len(locs) == 0 {
		return fmt.Errorf("%w: pattern %q does not match contents of %q", ErrNoMatch, pattern, path)
	}

	var sb strings.Builder
	sb.Grow(len(data))
	last := 0
	for _, loc := range locs {
		start, end := loc[2], loc[3]
		if start < 0 {
			continue
		}
		sb.Write(data[last:start])
		sb.WriteString(version)
		last = end
	}
	sb.Write(data[last:])

	return w.save(ctx, path, []byte(sb.String()))
}

// save writes data keeping the permissions of an existing file.
func (w *Writer) save(ctx context.Context, path string, data []byte) error {
	perm := core.PermPublicRead
	if info, err := w.fs.Stat(ctx, path); err == nil {
		perm = info.Mode().Perm()
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to stat %q: %w", path, err)
	}

	if err := w.fs.WriteFile(ctx, path, data, perm); err != nil {
		return fmt.Errorf("failed to write file %q: %w", path, err)
	}
	return nil
}

// setNestedValue sets a value in a nested map using dot notation,
// creating intermediate maps as needed.
func setNestedValue(obj map[string]any, field string, value any) error {
	if field == "" {
		return fmt.Errorf("field path cannot be empty")
	}

	parts := strings.Split(field, ".")
	current := obj

	for i := 0; i < len(parts)-1; i++ {
		part := parts[i]

		next, exists := current[part]
		if !exists {
			newMap := make(map[string]any)
			current[part] = newMap
			current = newMap
			continue
		}

		nextMap, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("field %q is not an object at path %q", strings.Join(parts[:i+1], "."), part)
		}

		current = nextMap
	}

	current[parts[len(parts)-1]] = value
	return nil
}

// ReadWriter combines Reader and Writer functionality.
type ReadWriter struct {
	*Reader
	*Writer
}

// NewReadWriter creates a new ReadWriter with the given filesystem.
func NewReadWriter(fs core.FileSystem) *ReadWriter {
	return &ReadWriter{
		Reader: NewReader(fs),
		Writer: NewWriter(fs),
	}
}
