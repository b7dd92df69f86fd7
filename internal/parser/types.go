package parser

import "errors"

// Format represents the supported artifact formats for version extraction.
type Format string

const (
	// FormatRegex extracts the first capture of a pattern. This is the default.
	FormatRegex Format = "regex"

	// FormatJSON is for JSON and JSONC documents (package.json, etc.).
	FormatJSON Format = "json"

	// FormatYAML is for YAML documents.
	FormatYAML Format = "yaml"

	// FormatTOML is for TOML documents (pyproject.toml, Cargo.toml, etc.).
	FormatTOML Format = "toml"

	// FormatRaw is for plain text files whose whole content is the version.
	FormatRaw Format = "raw"
)

// DefaultVersionPattern matches `_VERSION_ = '<literal>'` and captures the literal.
const DefaultVersionPattern = `_VERSION_ = '(.*?)'`

var (
	// ErrNoMatch is returned when a regex pattern finds nothing in the artifact.
	ErrNoMatch = errors.New("version marker not found")

	// ErrFieldNotFound is returned when a structured document lacks the version field.
	ErrFieldNotFound = errors.New("version field not found")

	// ErrEmptyVersion is returned when a raw file or structured field holds no version.
	ErrEmptyVersion = errors.New("version marker is empty")
)

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// IsValid returns true if the format is a known valid format.
func (f Format) IsValid() bool {
	switch f {
	case FormatRegex, FormatJSON, FormatYAML, FormatTOML, FormatRaw:
		return true
	default:
		return false
	}
}

// ParseFormat converts a string to a Format. Empty or unknown input maps
// to FormatRegex, the format of the version marker.
func ParseFormat(s string) Format {
	f := Format(s)
	if f.IsValid() {
		return f
	}
	return FormatRegex
}

// FileConfig describes where and how to find a version in an artifact.
type FileConfig struct {
	// Path is the artifact path (absolute or relative).
	Path string

	// Format selects the extraction strategy.
	Format Format

	// Field is the dot-notation path to the version field (json/yaml/toml).
	Field string

	// Pattern is the regex for FormatRegex. It must contain a capturing group.
	Pattern string
}

// Result is a version extracted from an artifact.
type Result struct {
	Version string
	Path    string
	Format  Format
	Field   string
}
