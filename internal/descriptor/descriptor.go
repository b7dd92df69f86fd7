// Package descriptor defines the PackageDescriptor record handed to a
// packaging toolchain, along with its encodings and fingerprint.
package descriptor

import (
	"bytes"
	"encoding/json"
	"slices"
)

// EntryPoints maps entry point groups to their declarations.
type EntryPoints struct {
	ConsoleScripts []string `json:"console_scripts" yaml:"console_scripts" toml:"console_scripts"`
}

// Descriptor is the package metadata consumed by a packaging toolchain.
//
// A Descriptor is built once by the assembler and then only read. Values
// are passed by copy and Clone detaches the slices, so holders never share
// backing arrays with the configuration it was built from.
type Descriptor struct {
	Name                       string      `json:"name" yaml:"name" toml:"name"`
	Version                    string      `json:"version" yaml:"version" toml:"version"`
	URL                        string      `json:"url" yaml:"url" toml:"url"`
	License                    string      `json:"license" yaml:"license" toml:"license"`
	LicenseFile                string      `json:"license_file,omitempty" yaml:"license_file,omitempty" toml:"license_file,omitempty"`
	Author                     string      `json:"author" yaml:"author" toml:"author"`
	AuthorEmail                string      `json:"author_email" yaml:"author_email" toml:"author_email"`
	Description                string      `json:"description" yaml:"description" toml:"description"`
	LongDescription            string      `json:"long_description" yaml:"long_description" toml:"long_description"`
	LongDescriptionContentType string      `json:"long_description_content_type,omitempty" yaml:"long_description_content_type,omitempty" toml:"long_description_content_type,omitempty"`
	PythonRequires             string      `json:"python_requires" yaml:"python_requires" toml:"python_requires"`
	Platforms                  []string    `json:"platforms" yaml:"platforms" toml:"platforms"`
	PyModules                  []string    `json:"py_modules" yaml:"py_modules" toml:"py_modules"`
	EntryPoints                EntryPoints `json:"entry_points" yaml:"entry_points" toml:"entry_points"`
	Classifiers                []string    `json:"classifiers" yaml:"classifiers" toml:"classifiers"`
}

// Clone returns a deep copy of d. Nil slices become empty slices so every
// encoding renders lists as lists.
func (d Descriptor) Clone() Descriptor {
	d.Platforms = cloneList(d.Platforms)
	d.PyModules = cloneList(d.PyModules)
	d.EntryPoints.ConsoleScripts = cloneList(d.EntryPoints.ConsoleScripts)
	d.Classifiers = cloneList(d.Classifiers)
	return d
}

// Equal reports whether d and other carry the same metadata.
// Nil and empty lists compare equal.
func (d Descriptor) Equal(other Descriptor) bool {
	a, errA := json.Marshal(d.Clone())
	b, errB := json.Marshal(other.Clone())
	return errA == nil && errB == nil && bytes.Equal(a, b)
}

func cloneList(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}
