// Package discovery scans a project directory for the artifacts pkgmeta
// reads: source files carrying a version marker, executable scripts that
// need a readable alias, and README files. It also reports scripts whose
// alias holds a different version.
package discovery
