// Package assembler builds a package descriptor from a project's artifacts.
//
// Assembly is a single linear pass: make the source readable, extract the
// version marker, load the long description, combine it with the static
// metadata, and hand the result to a publisher. Any failure aborts the pass
// and no descriptor is returned.
package assembler
