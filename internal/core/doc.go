// Package core holds the small set of abstractions shared by every other
// package: the context-aware FileSystem used for all artifact I/O, its OS
// and in-memory implementations, and common permission constants.
package core
