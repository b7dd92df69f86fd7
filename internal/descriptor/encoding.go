package descriptor

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"github.com/zeebo/blake3"
)

// Format is an output encoding for a Descriptor.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Formats lists the supported encodings.
var Formats = []Format{FormatJSON, FormatYAML, FormatTOML}

// ParseFormat validates an encoding name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatYAML, FormatTOML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported descriptor format %q (available: json, yaml, toml)", s)
	}
}

// FormatForPath picks the encoding from a file extension, defaulting to JSON.
func FormatForPath(path string) Format {
	if f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), ".")); err == nil {
		return f
	}
	return FormatJSON
}

// Encode renders d in the given format. Output always ends with a newline
// and is byte-stable for equal descriptors.
func Encode(d Descriptor, format Format) ([]byte, error) {
	d = d.Clone()

	var (
		out []byte
		err error
	)
	switch format {
	case FormatJSON:
		out, err = json.MarshalIndent(d, "", "  ")
	case FormatYAML:
		out, err = yaml.Marshal(d)
	case FormatTOML:
		var buf bytes.Buffer
		enc := toml.NewEncoder(&buf)
		enc.SetIndentTables(true)
		err = enc.Encode(d)
		out = buf.Bytes()
	default:
		return nil, fmt.Errorf("unsupported descriptor format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode descriptor as %s: %w", format, err)
	}

	if len(out) == 0 || out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	return out, nil
}

// Decode parses a previously encoded descriptor.
func Decode(data []byte, format Format) (Descriptor, error) {
	var (
		d   Descriptor
		err error
	)
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &d)
	case FormatYAML:
		err = yaml.Unmarshal(data, &d)
	case FormatTOML:
		err = toml.Unmarshal(data, &d)
	default:
		return Descriptor{}, fmt.Errorf("unsupported descriptor format %q", format)
	}
	if err != nil {
		return Descriptor{}, fmt.Errorf("failed to decode %s descriptor: %w", format, err)
	}
	return d.Clone(), nil
}

// Fingerprint returns the hex BLAKE3 digest of the canonical JSON form of d.
// Equal descriptors always share a fingerprint, whatever format they were
// read from.
func Fingerprint(d Descriptor) (string, error) {
	canonical, err := json.Marshal(d.Clone())
	if err != nil {
		return "", fmt.Errorf("failed to encode descriptor: %w", err)
	}
	sum := blake3.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
