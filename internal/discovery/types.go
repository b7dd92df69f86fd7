package discovery

// Result is what Discover found in a project root.
type Result struct {
	// Sources are files carrying a version marker, sorted by name.
	Sources []Source

	// Scripts are extensionless executables paired with an alias name.
	Scripts []ScriptPair

	// Readmes are README files, best candidate first.
	Readmes []string

	// Mismatches are scripts whose existing alias reports another version.
	Mismatches []Mismatch
}

// IsEmpty reports whether no version source was found.
func (r *Result) IsEmpty() bool {
	return len(r.Sources) == 0 && len(r.Scripts) == 0
}

// HasMismatches reports whether any alias disagrees with its script.
func (r *Result) HasMismatches() bool {
	return len(r.Mismatches) > 0
}

// Primary returns the recommended source configuration. A script pair
// wins over a plain source file since the script is what gets installed.
func (r *Result) Primary() (path, script, version string, ok bool) {
	if len(r.Scripts) > 0 {
		s := r.Scripts[0]
		return s.Alias, s.Script, s.Version, true
	}
	if len(r.Sources) > 0 {
		s := r.Sources[0]
		return s.RelPath, "", s.Version, true
	}
	return "", "", "", false
}

// Readme returns the preferred README, or "" when there is none.
func (r *Result) Readme() string {
	if len(r.Readmes) == 0 {
		return ""
	}
	return r.Readmes[0]
}

// Source is a text file with a version marker.
type Source struct {
	// Path is the file path joined to the discovery root.
	Path string

	// RelPath is relative to the discovery root.
	RelPath string

	Version string
}

// ScriptPair is an executable and the alias it would be copied to.
type ScriptPair struct {
	// Script and Alias are relative to the discovery root.
	Script string
	Alias  string

	// AliasExists reports whether the alias is already on disk.
	AliasExists bool

	Version string
}

// Mismatch reports an alias whose version differs from its script.
type Mismatch struct {
	Script        string
	Alias         string
	ScriptVersion string
	AliasVersion  string
}
