package core

import (
	"context"
	"os"
)

// FileMode is an alias kept so callers do not need to import os for permissions.
type FileMode = os.FileMode

const (
	// PermOwnerRW is read/write for the owner only.
	PermOwnerRW FileMode = 0o600

	// PermPublicRead is read/write for the owner, read for everyone else.
	PermPublicRead FileMode = 0o644

	// PermDir is the default permission for created directories.
	PermDir FileMode = 0o755
)

// FileSystem abstracts the file operations needed by pkgmeta.
// Every call takes a context and must fail fast once it is cancelled.
type FileSystem interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFile(ctx context.Context, path string, data []byte, perm os.FileMode) error
	Stat(ctx context.Context, path string) (os.FileInfo, error)
	MkdirAll(ctx context.Context, path string, perm os.FileMode) error
	Remove(ctx context.Context, path string) error
	ReadDir(ctx context.Context, path string) ([]os.DirEntry, error)
}

// Marshaler encodes a value into bytes.
type Marshaler interface {
	Marshal(v any) ([]byte, error)
}

// OSFileSystem implements FileSystem on top of the os package.
type OSFileSystem struct{}

// NewOSFileSystem returns the production FileSystem.
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

func (OSFileSystem) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

func (OSFileSystem) WriteFile(ctx context.Context, path string, data []byte, perm os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.WriteFile(path, data, perm)
}

func (OSFileSystem) Stat(ctx context.Context, path string) (os.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Stat(path)
}

func (OSFileSystem) MkdirAll(ctx context.Context, path string, perm os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.MkdirAll(path, perm)
}

func (OSFileSystem) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.Remove(path)
}

func (OSFileSystem) ReadDir(ctx context.Context, path string) ([]os.DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadDir(path)
}

var _ FileSystem = (*OSFileSystem)(nil)
