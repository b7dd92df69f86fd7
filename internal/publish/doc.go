// Package publish delivers an assembled descriptor to the packaging
// toolchain: printed, written to a file, or piped to a command.
package publish
