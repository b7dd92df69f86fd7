package discovery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/indaco/pkgmeta/internal/core"
	"github.com/indaco/pkgmeta/internal/parser"
)

// MaxFileSize bounds the files that are read while scanning.
const MaxFileSize = 4 << 20

// AliasExt is appended to a script name to build its alias.
const AliasExt = ".py"

// readmeOrder ranks README names; lower is preferred.
var readmeOrder = map[string]int{
	"readme.md":       0,
	"readme.markdown": 1,
	"readme.rst":      2,
	"readme.txt":      3,
	"readme":          4,
}

// Service scans project directories.
type Service struct {
	fs      core.FileSystem
	pattern *regexp.Regexp
}

// NewService creates a Service matching pattern. An empty pattern selects
// parser.DefaultVersionPattern.
func NewService(fs core.FileSystem, pattern string) (*Service, error) {
	if pattern == "" {
		pattern = parser.DefaultVersionPattern
	}
	re, err := parser.CompilePattern(pattern)
	if err != nil {
		return nil, err
	}
	return &Service{fs: fs, pattern: re}, nil
}

// Discover scans the top level of root. Hidden files, directories and
// files larger than MaxFileSize are skipped.
func (s *Service) Discover(ctx context.Context, root string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{
		Sources:    make([]Source, 0),
		Scripts:    make([]ScriptPair, 0),
		Readmes:    make([]string, 0),
		Mismatches: make([]Mismatch, 0),
	}

	entries, err := s.fs.ReadDir(ctx, root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return result, nil
		}
		return nil, fmt.Errorf("failed to read directory %q: %w", root, err)
	}

	names := make(map[string]bool, len(entries))
	for _, e := range entries {
		names[e.Name()] = true
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if _, ok := readmeOrder[strings.ToLower(name)]; ok {
			result.Readmes = append(result.Readmes, name)
			continue
		}

		version, ok, err := s.versionOf(ctx, e, filepath.Join(root, name))
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		if filepath.Ext(name) == "" {
			result.Scripts = append(result.Scripts, ScriptPair{
				Script:      name,
				Alias:       name + AliasExt,
				AliasExists: names[name+AliasExt],
				Version:     version,
			})
			continue
		}
		result.Sources = append(result.Sources, Source{
			Path:    filepath.Join(root, name),
			RelPath: name,
			Version: version,
		})
	}

	slices.SortStableFunc(result.Readmes, func(a, b string) int {
		return readmeOrder[strings.ToLower(a)] - readmeOrder[strings.ToLower(b)]
	})
	result.Mismatches = DetectMismatches(result)
	return result, nil
}

// versionOf returns the first version marker in the file, if any.
func (s *Service) versionOf(ctx context.Context, e fs.DirEntry, path string) (string, bool, error) {
	info, err := e.Info()
	if err != nil {
		return "", false, nil
	}
	if info.Size() > MaxFileSize {
		return "", false, nil
	}

	data, err := s.fs.ReadFile(ctx, path)
	if err != nil {
		if ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		return "", false, nil
	}
	m := s.pattern.FindSubmatch(data)
	if m == nil || len(m[1]) == 0 {
		return "", false, nil
	}
	return string(m[1]), true, nil
}

// DetectMismatches pairs each script with an existing alias found among
// the sources and reports differing versions.
func DetectMismatches(result *Result) []Mismatch {
	if result == nil {
		return nil
	}

	bySource := make(map[string]string, len(result.Sources))
	for _, src := range result.Sources {
		bySource[src.RelPath] = src.Version
	}

	mismatches := make([]Mismatch, 0)
	for _, sp := range result.Scripts {
		aliasVersion, ok := bySource[sp.Alias]
		if !ok || aliasVersion == sp.Version {
			continue
		}
		mismatches = append(mismatches, Mismatch{
			Script:        sp.Script,
			Alias:         sp.Alias,
			ScriptVersion: sp.Version,
			AliasVersion:  aliasVersion,
		})
	}
	return mismatches
}
