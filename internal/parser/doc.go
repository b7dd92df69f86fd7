// Package parser reads and writes version strings embedded in project
// artifacts. A version can live behind a regex marker in a source file
// (the default, e.g. `_VERSION_ = '2.2'`), at a dot-notation field of a
// JSON/JSONC, YAML or TOML document, or make up a whole raw text file.
package parser
