// Package version exposes the pkgmeta release version.
package version

import (
	_ "embed"
	"strings"
)

//go:embed .version
var raw string

// GetVersion returns the release version of the pkgmeta binary.
func GetVersion() string {
	return strings.TrimSpace(raw)
}
