// Package semver parses and compares strict semantic versions. pkgmeta
// accepts any version literal; doctor uses this package to flag non-semver
// versions and sync uses it to refuse downgrades.
package semver

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// SemVersion represents a semantic version (major.minor.patch-preRelease+build).
type SemVersion struct {
	Major      int
	Minor      int
	Patch      int
	PreRelease string
	Build      string
}

var (
	// versionRegex matches semantic version strings with optional "v" prefix,
	// optional pre-release (e.g., "-beta.1"), and optional build metadata (e.g., "+build.123").
	versionRegex = regexp.MustCompile(
		`^v?(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)` + // major.minor.patch
			`(?:-([0-9A-Za-z\-\.]+))?` + // optional pre-release
			`(?:\+([0-9A-Za-z\-\.]+))?$`, // optional build metadata
	)

	// ErrInvalidVersion is returned when a string is not a semantic version.
	ErrInvalidVersion = errors.New("invalid version format")
)

// maxVersionLength guards the regex against pathological input.
const maxVersionLength = 128

// String returns the string representation of the semantic version.
func (v SemVersion) String() string {
	var sb strings.Builder
	sb.Grow(20)
	sb.WriteString(strconv.Itoa(v.Major))
	sb.WriteByte('.')
	sb.WriteString(strconv.Itoa(v.Minor))
	sb.WriteByte('.')
	sb.WriteString(strconv.Itoa(v.Patch))
	if v.PreRelease != "" {
		sb.WriteByte('-')
		sb.WriteString(v.PreRelease)
	}
	if v.Build != "" {
		sb.WriteByte('+')
		sb.WriteString(v.Build)
	}
	return sb.String()
}

// ParseVersion parses a semantic version string.
//
// Supported formats:
//   - "1.2.3"
//   - "v1.2.3"
//   - "1.2.3-alpha.1"
//   - "1.2.3+build.123"
//   - "1.2.3-rc.1+build.456"
func ParseVersion(s string) (SemVersion, error) {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) > maxVersionLength {
		return SemVersion{}, fmt.Errorf("%w: version string exceeds maximum length of %d", ErrInvalidVersion, maxVersionLength)
	}

	matches := versionRegex.FindStringSubmatch(trimmed)
	if matches == nil {
		return SemVersion{}, fmt.Errorf("%w: %q", ErrInvalidVersion, trimmed)
	}

	major, err := strconv.Atoi(matches[1])
	if err != nil {
		return SemVersion{}, fmt.Errorf("%w: invalid major version: %s", ErrInvalidVersion, err.Error())
	}
	minor, err := strconv.Atoi(matches[2])
	if err != nil {
		return SemVersion{}, fmt.Errorf("%w: invalid minor version: %s", ErrInvalidVersion, err.Error())
	}
	patch, err := strconv.Atoi(matches[3])
	if err != nil {
		return SemVersion{}, fmt.Errorf("%w: invalid patch version: %s", ErrInvalidVersion, err.Error())
	}

	return SemVersion{Major: major, Minor: minor, Patch: patch, PreRelease: matches[4], Build: matches[5]}, nil
}

// IsSemVer reports whether s parses as a strict semantic version.
func IsSemVer(s string) bool {
	_, err := ParseVersion(s)
	return err == nil
}

// Compare compares two semantic versions.
// It returns -1 if v < other, 0 if v == other, and +1 if v > other.
// Build metadata is ignored.
func (v SemVersion) Compare(other SemVersion) int {
	if c := compareInt(v.Major, other.Major); c != 0 {
		return c
	}
	if c := compareInt(v.Minor, other.Minor); c != 0 {
		return c
	}
	if c := compareInt(v.Patch, other.Patch); c != 0 {
		return c
	}

	// 1.0.0-alpha < 1.0.0
	switch {
	case v.PreRelease == "" && other.PreRelease == "":
		return 0
	case v.PreRelease == "":
		return 1
	case other.PreRelease == "":
		return -1
	default:
		return comparePreRelease(v.PreRelease, other.PreRelease)
	}
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func comparePreRelease(a, b string) int {
	aIDs := strings.Split(a, ".")
	bIDs := strings.Split(b, ".")

	n := min(len(aIDs), len(bIDs))
	for i := range n {
		if c := compareIdentifier(aIDs[i], bIDs[i]); c != 0 {
			return c
		}
	}

	return compareInt(len(aIDs), len(bIDs))
}

func compareIdentifier(a, b string) int {
	aNum, aIsNum := parseNumericIdentifier(a)
	bNum, bIsNum := parseNumericIdentifier(b)

	switch {
	case aIsNum && bIsNum:
		return compareInt(aNum, bNum)
	case aIsNum:
		return -1 // numeric < non-numeric
	case bIsNum:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

// SemVer numeric identifiers: only digits, no leading zeros unless exactly "0".
func parseNumericIdentifier(s string) (int, bool) {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
