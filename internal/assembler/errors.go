package assembler

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingArtifact marks a required input file that does not exist.
	ErrMissingArtifact = errors.New("missing artifact")

	// ErrMalformedVersionMarker marks a source file without a usable version marker.
	ErrMalformedVersionMarker = errors.New("malformed version marker")
)

// MissingArtifactError reports a required artifact that could not be found.
type MissingArtifactError struct {
	// Role is "source" or "description".
	Role string
	Path string
	// Script is the executable that would have been aliased to Path, if any.
	Script string
	Err    error
}

func (e *MissingArtifactError) Error() string {
	if e.Script != "" {
		return fmt.Sprintf("missing %s artifact: neither %s nor %s exists", e.Role, e.Script, e.Path)
	}
	return fmt.Sprintf("missing %s artifact: %s", e.Role, e.Path)
}

// Unwrap exposes both the sentinel and the underlying read error.
func (e *MissingArtifactError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMissingArtifact}
	}
	return []error{ErrMissingArtifact, e.Err}
}

// Suggestion returns guidance on fixing the error.
func (e *MissingArtifactError) Suggestion() string {
	var sb strings.Builder
	switch e.Role {
	case "description":
		fmt.Fprintf(&sb, "The long description file %s is marked as required but does not exist.\n", e.Path)
		sb.WriteString("Create it, or set description.required to false to use the fallback text.\n")
	default:
		fmt.Fprintf(&sb, "The source file %s does not exist.\n", e.Path)
		sb.WriteString("Check source.path (and source.script) in .pkgmeta.yaml, or set PKGMETA_SOURCE.\n")
	}
	return sb.String()
}

// MalformedVersionMarkerError reports a source artifact whose version marker
// is absent, or a raw or structured source that holds no version.
type MalformedVersionMarkerError struct {
	Path    string
	Pattern string
	Field   string
	Err     error
}

func (e *MalformedVersionMarkerError) Error() string {
	return fmt.Sprintf("%s in %s: %v", ErrMalformedVersionMarker, e.Path, e.Err)
}

// Unwrap exposes both the sentinel and the parser error.
func (e *MalformedVersionMarkerError) Unwrap() []error {
	return []error{ErrMalformedVersionMarker, e.Err}
}

// Suggestion returns guidance on fixing the error.
func (e *MalformedVersionMarkerError) Suggestion() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "No version could be extracted from %s.\n\n", e.Path)
	switch {
	case e.Pattern != "":
		fmt.Fprintf(&sb, "The file must contain a line matching:\n  %s\n", e.Pattern)
		sb.WriteString("for example:\n  _VERSION_ = '2.2'\n")
	case e.Field != "":
		fmt.Fprintf(&sb, "The document must define a non-empty string at %q.\n", e.Field)
	default:
		sb.WriteString("The file must contain the version and nothing else.\n")
	}
	return sb.String()
}
